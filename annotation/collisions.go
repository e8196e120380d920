package annotation

import (
	"github.com/biogo/store/interval"
)

// irange is a closed feature span stored in an interval tree.
type irange struct {
	Start, End int
	UID        uintptr
}

func (i irange) Overlap(b interval.IntRange) bool {
	// trees hold half-open ranges so ends are stored +1.
	return i.End > b.Start && i.Start < b.End
}
func (i irange) ID() uintptr              { return i.UID }
func (i irange) Range() interval.IntRange { return interval.IntRange{Start: i.Start, End: i.End} }

type row struct {
	strand, level int
}

// RowCollisions counts features that overlap an earlier feature drawn on the same
// strand and level. Layout only looks back one feature so dense annotations can
// still produce collisions; this reports them without moving anything.
func RowCollisions(features []Feature) int {
	trees := make(map[row]*interval.IntTree)
	n := 0
	for i, f := range features {
		k := row{f.Strand, f.Level}
		t, ok := trees[k]
		if !ok {
			t = &interval.IntTree{}
			trees[k] = t
		}
		q := irange{Start: f.Start, End: f.End + 1, UID: uintptr(i)}
		hit := false
		t.DoMatching(func(interval.IntInterface) bool {
			hit = true
			return true
		}, q)
		if hit {
			n++
		}
		if err := t.Insert(q, false); err != nil {
			panic(err)
		}
	}
	return n
}
