// Package report renders the coverage bundle as a self-contained HTML page along
// with optional summary and thumbnail plots.
package report

import (
	"html/template"
	"io"

	"github.com/brentp/wgscovplot/annotation"
	"github.com/brentp/wgscovplot/covstats"
	"github.com/brentp/wgscovplot/reference"
	"github.com/brentp/wgscovplot/samples"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	// DefaultECharts is the echarts build referenced by the page.
	DefaultECharts = "https://cdn.jsdelivr.net/npm/echarts@5.4.3/dist/echarts.min.js"
	// DefaultJQuery is the jquery build referenced by the page.
	DefaultJQuery = "https://cdn.jsdelivr.net/npm/jquery@3.7.1/dist/jquery.min.js"
)

// Options for the HTML page.
type Options struct {
	Title   string
	Version string
	ECharts string
	JQuery  string
	// Height of the chart area in pixels. Scaled by the number of samples when 0.
	Height     int
	Properties annotation.Properties
}

var tmpl = template.Must(template.New("report").Parse(reportTemplate))

type ampliconView struct {
	Name  string  `json:"name"`
	Start int     `json:"start"`
	End   int     `json:"end"`
	Depth float64 `json:"depth"`
	Color string  `json:"color"`
}

func amplicons(b *samples.Bundle) [][]ampliconView {
	if !b.Amplicon {
		return nil
	}
	out := make([][]ampliconView, len(b.Amplicons))
	for i, amps := range b.Amplicons {
		if amps == nil {
			continue
		}
		out[i] = make([]ampliconView, len(amps))
		for j, a := range amps {
			out[i][j] = ampliconView{Name: a.Name, Start: a.Start + 1, End: a.End, Depth: a.Depth, Color: a.Color()}
		}
	}
	return out
}

// caller is the variant caller of sample i, "." when unknown or there is no VCF.
func caller(b *samples.Bundle, i int) string {
	if i < len(b.Callers) && b.Callers[i] != "" {
		return b.Callers[i]
	}
	return "."
}

func pageData(b *samples.Bundle, ref reference.Sequence, opts Options) map[string]interface{} {
	if opts.ECharts == "" {
		opts.ECharts = DefaultECharts
	}
	if opts.JQuery == "" {
		opts.JQuery = DefaultJQuery
	}
	if opts.Title == "" {
		opts.Title = "wgscovplot"
	}
	if opts.Properties == (annotation.Properties{}) {
		opts.Properties = annotation.DefaultProperties
	}
	height := opts.Height
	if height == 0 {
		height = 300 + 200*len(b.Samples)
	}
	rows := make([][]string, len(b.Stats))
	for i, st := range b.Stats {
		rows[i] = append(st.Row(), caller(b, i))
	}
	features := b.Features
	if features == nil {
		features = []annotation.Feature{}
	}
	return map[string]interface{}{
		"id":         uuid.New().String(),
		"title":      opts.Title,
		"version":    opts.Version,
		"ECharts":    opts.ECharts,
		"JQuery":     opts.JQuery,
		"height":     height,
		"nSamples":   len(b.Samples),
		"samples":    b.Samples,
		"sampleIdx":  b.SampleIndex(),
		"depths":     b.Depths,
		"variants":   b.Variants,
		"amplicon":   b.Amplicon,
		"amplicons":  amplicons(b),
		"features":   features,
		"properties": opts.Properties,
		"low":        b.LowThreshold,
		"header":     append(append([]string{}, covstats.Header...), "variant_caller"),
		"rows":       rows,
		"refName":    ref.Name,
		"refSeq":     ref.Seq,
		"refLength":  ref.Len(),
	}
}

// Write renders the HTML report for b over the reference sequence ref.
func Write(w io.Writer, b *samples.Bundle, ref reference.Sequence, opts Options) error {
	if ref.Len() == 0 {
		return errors.New("report: empty reference sequence")
	}
	if err := tmpl.Execute(w, pageData(b, ref, opts)); err != nil {
		return errors.Wrap(err, "report: rendering html")
	}
	return nil
}
