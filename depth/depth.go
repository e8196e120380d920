// Package depth reads per-base and per-amplicon depth tables and collapses
// depth series into runs of low or missing coverage.
//
// Three table layouts are supported, none of which have a header:
//  1. regular:          sample  reference  position  depth
//  2. amplicon perbase: reference  start  end  depth       (0-based, half-open run)
//  3. amplicon region:  reference  start  end  amplicon  depth
package depth

import (
	"math"
	"strconv"

	"github.com/brentp/wgscovplot/input"
	log "github.com/sirupsen/logrus"
)

// Epsilon stands in for a depth of exactly 0 so that charting does not treat
// true zero specially. It is far below any real depth so it does not move the
// mean or median.
const Epsilon = 1e-10

// Series is the per-base depth of one sample over one reference.
// Positions are 1-based.
type Series struct {
	Sample    string
	Reference string
	Positions []int
	Depths    []float64
}

// Len returns the number of positions in the series.
func (s *Series) Len() int { return len(s.Depths) }

// MaskZeros replaces every depth of exactly 0 with Epsilon.
func (s *Series) MaskZeros() {
	for i, d := range s.Depths {
		if d == 0 {
			s.Depths[i] = Epsilon
		}
	}
}

// Validate checks that positions run 1..n without gaps and, when refLength > 0,
// that n equals the reference length.
func (s *Series) Validate(refLength int) error {
	if len(s.Positions) != len(s.Depths) {
		return input.Invariantf("%s: %d positions but %d depths", s.Sample, len(s.Positions), len(s.Depths))
	}
	for i, p := range s.Positions {
		if p != i+1 {
			return input.Invariantf("%s: expected position %d at row %d, got %d", s.Sample, i+1, i+1, p)
		}
	}
	if refLength > 0 && len(s.Depths) != refLength {
		return input.Invariantf("%s: depth series has %d positions; reference length is %d", s.Sample, len(s.Depths), refLength)
	}
	return nil
}

func parseDepth(path string, lineNo int, tok string) (float64, error) {
	d, err := strconv.ParseFloat(tok, 64)
	if err != nil || d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, input.Parsef(path, lineNo, "bad depth: %q", tok)
	}
	return d, nil
}

func parseInt(path string, lineNo int, name, tok string) (int, error) {
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, input.Parsef(path, lineNo, "bad %s: %q", name, tok)
	}
	return v, nil
}

// ReadRegular reads a per-base depth table with columns sample, reference,
// position and depth.
func ReadRegular(path string) (*Series, error) {
	rdr, err := input.Open(path)
	if err != nil {
		return nil, err
	}
	defer rdr.Close()

	s := &Series{Positions: make([]int, 0, 32768), Depths: make([]float64, 0, 32768)}
	err = input.EachLine(rdr.Reader, func(lineNo int, line string) error {
		toks := input.Fields(line)
		if len(toks) == 0 {
			return nil
		}
		if len(toks) != 4 {
			return input.Parsef(path, lineNo, "expected 4 columns, got %d", len(toks))
		}
		pos, err := parseInt(path, lineNo, "position", toks[2])
		if err != nil {
			return err
		}
		d, err := parseDepth(path, lineNo, toks[3])
		if err != nil {
			return err
		}
		if s.Sample == "" {
			s.Sample, s.Reference = toks[0], toks[1]
		}
		s.Positions = append(s.Positions, pos)
		s.Depths = append(s.Depths, d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(s.Depths) == 0 {
		return nil, input.Parsef(path, 0, "no depth rows")
	}
	return s, nil
}

// ReadAmpliconPerbase reads runs of (reference, start, end, depth) and expands them to
// one depth per reference position. Positions never written stay at 0 and later rows
// overwrite earlier ones.
func ReadAmpliconPerbase(path string, refLength int) (*Series, error) {
	if refLength <= 0 {
		return nil, input.Invariantf("reference length must be positive to expand %s", path)
	}
	rdr, err := input.Open(path)
	if err != nil {
		return nil, err
	}
	defer rdr.Close()

	s := &Series{Positions: make([]int, refLength), Depths: make([]float64, refLength)}
	for i := range s.Positions {
		s.Positions[i] = i + 1
	}
	nClipped := 0
	err = input.EachLine(rdr.Reader, func(lineNo int, line string) error {
		toks := input.Fields(line)
		if len(toks) == 0 {
			return nil
		}
		if len(toks) != 4 {
			return input.Parsef(path, lineNo, "expected 4 columns, got %d", len(toks))
		}
		start, err := parseInt(path, lineNo, "start", toks[1])
		if err != nil {
			return err
		}
		end, err := parseInt(path, lineNo, "end", toks[2])
		if err != nil {
			return err
		}
		if start < 0 || end < start {
			return input.Parsef(path, lineNo, "bad interval: %d-%d", start, end)
		}
		d, err := parseDepth(path, lineNo, toks[3])
		if err != nil {
			return err
		}
		if s.Reference == "" {
			s.Reference = toks[0]
		}
		if end > refLength {
			end = refLength
			nClipped++
		}
		for i := start; i < end; i++ {
			s.Depths[i] = d
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if nClipped > 0 {
		log.WithField("path", path).Warnf("clipped %d rows extending past reference length %d", nClipped, refLength)
	}
	return s, nil
}
