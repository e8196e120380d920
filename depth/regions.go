package depth

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/hts/bgzf"
	"github.com/brentp/xopen"
	"github.com/pkg/errors"
)

// Coverage classes written to the regions BED.
const (
	NoCoverage  = "NO_COVERAGE"
	LowCoverage = "LOW_COVERAGE"
)

// Region is a classified interval ready to be written as BED.
type Region struct {
	Interval
	Class string
}

// Subtract returns the parts of a not covered by b. Both must be Valid.
func Subtract(a, b Intervals) Intervals {
	var out Intervals
	j := 0
	for _, iv := range a {
		start := iv.Start
		for j < len(b) && b[j].End < start {
			j++
		}
		for k := j; k < len(b) && b[k].Start <= iv.End; k++ {
			if b[k].Start > start {
				out = append(out, Interval{start, b[k].Start - 1})
			}
			start = b[k].End + 1
		}
		if start <= iv.End {
			out = append(out, Interval{start, iv.End})
		}
	}
	return out
}

// Classify merges zero and low intervals into one sorted list of regions where
// zero-depth runs are NO_COVERAGE and the remainder of the low runs are LOW_COVERAGE.
func Classify(low, zero Intervals) []Region {
	lowOnly := Subtract(low, zero)
	regions := make([]Region, 0, len(lowOnly)+len(zero))
	i, j := 0, 0
	for i < len(lowOnly) || j < len(zero) {
		if j == len(zero) || (i < len(lowOnly) && lowOnly[i].Start < zero[j].Start) {
			regions = append(regions, Region{lowOnly[i], LowCoverage})
			i++
		} else {
			regions = append(regions, Region{zero[j], NoCoverage})
			j++
		}
	}
	return regions
}

// WriteBED writes regions as chrom, 0-based start, end, class, sample.
func WriteBED(w io.Writer, chrom, sample string, regions []Region) error {
	bw := bufio.NewWriter(w)
	for _, r := range regions {
		if _, err := fmt.Fprintf(bw, "%s\t%d\t%d\t%s\t%s\n", chrom, r.Start-1, r.End, r.Class, sample); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// RegionWriter writes BED to a plain or bgzipped file depending on the path suffix.
type RegionWriter struct {
	io.Writer
	close func() error
}

// NewRegionWriter creates path. A ".gz" suffix gives a bgzf file that can be tabix indexed.
func NewRegionWriter(path string) (*RegionWriter, error) {
	if strings.HasSuffix(path, ".gz") {
		fh, err := os.Create(path)
		if err != nil {
			return nil, errors.Wrapf(err, "creating %s", path)
		}
		bgz := bgzf.NewWriter(fh, 1)
		return &RegionWriter{Writer: bgz, close: func() error {
			if err := bgz.Close(); err != nil {
				fh.Close()
				return err
			}
			return fh.Close()
		}}, nil
	}
	wtr, err := xopen.Wopen(path)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s", path)
	}
	return &RegionWriter{Writer: wtr, close: wtr.Close}, nil
}

// Close flushes and closes the underlying file.
func (r *RegionWriter) Close() error { return r.close() }
