package depth

import (
	"fmt"
	"strings"
)

// Interval is a closed range of 1-based positions.
type Interval struct {
	Start, End int
}

func (i Interval) String() string {
	return fmt.Sprintf("%d-%d", i.Start, i.End)
}

// Len is the number of positions in the interval.
func (i Interval) Len() int { return i.End - i.Start + 1 }

// Intervals are sorted by start and no two of them touch or overlap.
type Intervals []Interval

// String joins the intervals as "1-3; 6-8".
func (ivs Intervals) String() string {
	s := make([]string, len(ivs))
	for i, iv := range ivs {
		s[i] = iv.String()
	}
	return strings.Join(s, "; ")
}

// Valid reports whether ivs are sorted, well-formed and pairwise non-adjacent.
func (ivs Intervals) Valid() bool {
	for i, iv := range ivs {
		if iv.End < iv.Start {
			return false
		}
		if i > 0 && iv.Start <= ivs[i-1].End+1 {
			return false
		}
	}
	return true
}

// Positions returns the total number of positions covered by ivs.
func (ivs Intervals) Positions() int {
	n := 0
	for _, iv := range ivs {
		n += iv.Len()
	}
	return n
}

// Coalesce returns the runs of consecutive positions whose depth is <= threshold.
// Callers wanting depth < N pass N-1. Positions in s must be ascending.
func Coalesce(s *Series, threshold float64) Intervals {
	var ivs Intervals
	for i, d := range s.Depths {
		if d > threshold {
			continue
		}
		pos := s.Positions[i]
		if n := len(ivs); n > 0 && ivs[n-1].End+1 == pos {
			ivs[n-1].End = pos
			continue
		}
		ivs = append(ivs, Interval{Start: pos, End: pos})
	}
	return ivs
}
