// Package annotation reads GenBank feature tables and lays the features out in
// per-strand tracks for drawing under the coverage charts.
package annotation

import (
	"encoding/json"

	"github.com/brentp/wgscovplot/input"
)

// Properties are the drawing constants shared with the report.
type Properties struct {
	MaxGridHeight    int    `json:"max_grid_height"`
	RecItemsHeight   int    `json:"rec_items_height"`
	PlusStrandLevel  int    `json:"plus_strand_level"`
	MinusStrandLevel int    `json:"minus_strand_level"`
	GridHeight       string `json:"grid_height"`
}

// DefaultProperties are used by Layout.
var DefaultProperties = Properties{
	MaxGridHeight:    80,
	RecItemsHeight:   12,
	PlusStrandLevel:  0,
	MinusStrandLevel: 55,
	GridHeight:       "15%",
}

// Elevated is the second row of a track whose first row is at base.
func (p Properties) Elevated(base int) int {
	return base + p.RecItemsHeight + 3
}

// Feature is an annotation feature placed on a row of its strand's track.
type Feature struct {
	// Index is contiguous over the features that are laid out.
	Index  int
	Name   string
	Start  int // 1-based
	End    int // inclusive
	Strand int
	Level  int
	Color  string
}

// MarshalJSON gives the {name, value, itemStyle} object the charting code expects.
func (f Feature) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name      string            `json:"name"`
		Value     []interface{}     `json:"value"`
		ItemStyle map[string]string `json:"itemStyle"`
	}{
		Name:      f.Name,
		Value:     []interface{}{f.Index, f.Start, f.End, f.Level, f.Strand, "gene_feature"},
		ItemStyle: map[string]string{"color": f.Color},
	})
}

// Overlaps reports whether two closed intervals share a position.
func Overlaps(start1, end1, start2, end2 int) bool {
	return start1 <= end2 && start2 <= end1
}

// track remembers only the last feature placed on one strand.
type track struct {
	base, elevated int
	set            bool
	start, end     int
	level          int
}

// place puts a feature on the elevated row when it overlaps the previous feature
// on this strand, unless that one was already elevated in which case it drops back
// to the base row. Only one feature of look-back is kept, so three or more
// mutually overlapping features may still collide.
func (t *track) place(start, end int) int {
	level := t.base
	if t.set && Overlaps(t.start, t.end, start, end) && t.level != t.elevated {
		level = t.elevated
	}
	t.set, t.start, t.end, t.level = true, start, end, level
	return level
}

func label(f GBFeature) string {
	if f.Type == "5'UTR" || f.Type == "3'UTR" {
		return f.Type
	}
	if g, ok := f.Qualifier("gene"); ok {
		return g
	}
	if lt, ok := f.Qualifier("locus_tag"); ok {
		return lt
	}
	return f.Type
}

func skipped(typ string) bool {
	return typ == "CDS" || typ == "source"
}

// Layout assigns an index, row level and color to each feature in file order.
// CDS and source features are skipped and take no index.
func Layout(features []GBFeature, props Properties) []Feature {
	plus := &track{base: props.PlusStrandLevel, elevated: props.Elevated(props.PlusStrandLevel)}
	minus := &track{base: props.MinusStrandLevel, elevated: props.Elevated(props.MinusStrandLevel)}

	out := make([]Feature, 0, len(features))
	for _, gf := range features {
		if skipped(gf.Type) {
			continue
		}
		f := Feature{Index: len(out), Name: label(gf), Start: gf.Start + 1, End: gf.End, Strand: gf.Strand}
		t := minus
		if f.Strand == 1 {
			t = plus
		}
		f.Level = t.place(f.Start, f.End)
		f.Color = ColorForIndex(f.Index)
		out = append(out, f)
	}
	return out
}

// Select returns the record named ref, or the first record when ref is empty.
func Select(records []Record, ref string) (Record, error) {
	if ref == "" && len(records) > 0 {
		return records[0], nil
	}
	for _, r := range records {
		if r.Name == ref {
			return r, nil
		}
	}
	return Record{}, input.Invariantf("no annotation record named %q", ref)
}

// LayoutFile reads a GenBank file and lays out the features of the record for ref.
func LayoutFile(path, ref string) (Record, []Feature, error) {
	records, err := ReadGenBank(path)
	if err != nil {
		return Record{}, nil, err
	}
	rec, err := Select(records, ref)
	if err != nil {
		return Record{}, nil, err
	}
	return rec, Layout(rec.Features, DefaultProperties), nil
}
