// Package input holds the file access shared by all of the table readers
// along with the errors they report.
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/brentp/xopen"
	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when a declared input path does not exist.
	ErrNotFound = errors.New("input not found")
	// ErrParse is returned when a file does not have the expected layout.
	ErrParse = errors.New("parse error")
	// ErrInvariant is returned when data read successfully is inconsistent
	// (e.g. a depth series shorter than the reference).
	ErrInvariant = errors.New("data invariant violation")
)

// Check returns ErrNotFound for the first path that does not exist.
// Empty paths are optional inputs and are skipped.
func Check(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				return errors.Wrapf(ErrNotFound, "%s", p)
			}
			return errors.Wrapf(err, "checking %s", p)
		}
	}
	return nil
}

// Open opens path for reading. gzip and bgzip files are decompressed transparently.
func Open(path string) (*xopen.Reader, error) {
	if err := Check(path); err != nil {
		return nil, err
	}
	rdr, err := xopen.Ropen(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	return rdr, nil
}

// Fields splits a table line on tabs and spaces.
func Fields(line string) []string {
	return strings.Fields(line)
}

// Parsef wraps ErrParse with the location of the problem.
func Parsef(path string, line int, format string, args ...interface{}) error {
	return errors.Wrapf(ErrParse, "%s:%d: %s", path, line, fmt.Sprintf(format, args...))
}

// Invariantf wraps ErrInvariant.
func Invariantf(format string, args ...interface{}) error {
	return errors.Wrap(ErrInvariant, fmt.Sprintf(format, args...))
}

// EachLine calls fn with every line of r (1-based line number, trailing newline removed)
// including a final line without a newline. Iteration stops at the first error from fn.
func EachLine(r *bufio.Reader, fn func(lineNo int, line string) error) error {
	lineNo := 0
	for {
		line, err := r.ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		if len(line) > 0 {
			lineNo++
			if ferr := fn(lineNo, strings.TrimRight(line, "\r\n")); ferr != nil {
				return ferr
			}
		}
		if err == io.EOF {
			return nil
		}
	}
}
