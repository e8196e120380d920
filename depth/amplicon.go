package depth

import (
	"strconv"
	"strings"

	"github.com/brentp/wgscovplot/input"
)

// Colors used to tell neighbouring amplicon pools apart.
const (
	OddPoolColor  = "violet"
	EvenPoolColor = "skyblue"
)

// Amplicon is the mean depth over one amplicon region.
type Amplicon struct {
	Reference string
	// 0-based start as given in the region file.
	Start int
	End   int
	Name  string
	Depth float64
	// Pool is the integer suffix of Name, e.g. 2 for "nCoV-2019_12_pool_2".
	Pool int
}

// Odd reports whether the amplicon belongs to an odd-numbered pool.
func (a Amplicon) Odd() bool { return a.Pool%2 != 0 }

// Color returns the fill color for the amplicon's pool parity.
func (a Amplicon) Color() string {
	if a.Odd() {
		return OddPoolColor
	}
	return EvenPoolColor
}

// PoolFromName extracts the pool number after the last underscore of an amplicon id.
func PoolFromName(name string) (int, error) {
	tok := name[strings.LastIndex(name, "_")+1:]
	return strconv.Atoi(tok)
}

// ReadAmpliconRegions reads the (reference, start, end, amplicon, depth) table.
func ReadAmpliconRegions(path string) ([]Amplicon, error) {
	rdr, err := input.Open(path)
	if err != nil {
		return nil, err
	}
	defer rdr.Close()

	var amps []Amplicon
	err = input.EachLine(rdr.Reader, func(lineNo int, line string) error {
		var err error
		toks := input.Fields(line)
		if len(toks) == 0 {
			return nil
		}
		if len(toks) != 5 {
			return input.Parsef(path, lineNo, "expected 5 columns, got %d", len(toks))
		}
		a := Amplicon{Reference: toks[0], Name: toks[3]}
		if a.Start, err = parseInt(path, lineNo, "start", toks[1]); err != nil {
			return err
		}
		if a.End, err = parseInt(path, lineNo, "end", toks[2]); err != nil {
			return err
		}
		if a.Depth, err = parseDepth(path, lineNo, toks[4]); err != nil {
			return err
		}
		if a.Pool, err = PoolFromName(a.Name); err != nil {
			return input.Parsef(path, lineNo, "no numeric pool suffix in amplicon %q", a.Name)
		}
		amps = append(amps, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return amps, nil
}
