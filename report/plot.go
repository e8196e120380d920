package report

import (
	"html/template"
	"image/color"
	"io"
	"math/rand"

	"github.com/JaderDias/movingmedian"
	chartjs "github.com/brentp/go-chartjs"
	"github.com/brentp/go-chartjs/types"
	"github.com/brentp/wgscovplot/covstats"
	"github.com/brentp/wgscovplot/samples"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

type vs struct {
	xs []float64
	ys []float64
}

func (v *vs) Xs() []float64 { return v.xs }
func (v *vs) Ys() []float64 { return v.ys }
func (v *vs) Rs() []float64 { return nil }
func (v *vs) Len() int      { return len(v.xs) }

// XY meets gonum/plot plotter.XYer
func (v *vs) XY(i int) (x, y float64) { return v.xs[i], v.ys[i] }

// Sample keeps every nth point.
func (v *vs) Sample(nth int) *vs {
	o := &vs{xs: make([]float64, 0, 10+len(v.xs)/nth),
		ys: make([]float64, 0, 10+len(v.xs)/nth)}
	for i, x := range v.xs {
		if i%nth == 0 {
			o.xs = append(o.xs, x)
			o.ys = append(o.ys, v.ys[i])
		}
	}
	return o
}

func sampleColor(s int) *types.RGBA {
	r := rand.New(rand.NewSource(int64(s)))
	return &types.RGBA{
		R: uint8(r.Intn(256)),
		G: uint8(r.Intn(256)),
		B: uint8(r.Intn(256)),
		A: 240}
}

// maximum depth shown on the cumulative coverage plot.
const curveMax = 500

func coverageChart(b *samples.Bundle) (chartjs.Chart, error) {
	chart := chartjs.Chart{Label: "cumulative coverage"}
	xa, err := chart.AddXAxis(chartjs.Axis{Type: chartjs.Linear, Position: chartjs.Bottom,
		ScaleLabel: &chartjs.ScaleLabel{FontSize: 16, LabelString: "depth", Display: chartjs.True}})
	if err != nil {
		return chart, err
	}
	ya, err := chart.AddYAxis(chartjs.Axis{Type: chartjs.Linear, Position: chartjs.Left,
		Tick:       &chartjs.Tick{Min: 0, Max: 1},
		ScaleLabel: &chartjs.ScaleLabel{FontSize: 16, LabelString: "proportion of genome covered", Display: chartjs.True}})
	if err != nil {
		return chart, err
	}
	for i, depths := range b.Depths {
		curve := covstats.CoverageCurve(depths, curveMax)
		xys := &vs{xs: make([]float64, len(curve)), ys: curve}
		for j := range curve {
			xys.xs[j] = float64(j)
		}
		c := sampleColor(i)
		dataset := chartjs.Dataset{Data: xys, Label: b.Samples[i], Fill: chartjs.False, PointRadius: 0, BorderWidth: 2,
			BorderColor: c, PointBackgroundColor: c, BackgroundColor: c, PointHitRadius: 8, PointHoverRadius: 3}
		dataset.XAxisID = xa
		dataset.YAxisID = ya
		chart.AddDataset(dataset)
	}
	chart.Options.Responsive = chartjs.False
	chart.Options.Tooltip = &chartjs.Tooltip{Mode: "nearest"}
	return chart, nil
}

// WriteSummary writes an html page with the cumulative coverage of every sample.
func WriteSummary(w io.Writer, b *samples.Bundle, link string) error {
	chart, err := coverageChart(b)
	if err != nil {
		return errors.Wrap(err, "report: building coverage chart")
	}
	ctx := map[string]interface{}{"width": 850, "height": 550}
	if link != "" {
		ctx["customHTML"] = template.HTML(`<a href="` + template.HTMLEscapeString(link) + `">back to report</a>`)
	}
	return errors.Wrap(chart.SaveHTML(w, ctx), "report: writing summary")
}

// DefaultWindow is the moving median window used for PNG thumbnails.
const DefaultWindow = 101

// smooth returns the moving median of depths, centered on each position.
func smooth(depths []float64, window int) []float64 {
	out := make([]float64, len(depths))
	if window < 2 {
		copy(out, depths)
		return out
	}
	half := window / 2
	mm := movingmedian.NewMovingMedian(window)
	for i := 0; i < half && i < len(depths); i++ {
		mm.Push(depths[i])
	}
	for i := range depths {
		if i+half < len(depths) {
			mm.Push(depths[i+half])
		}
		out[i] = mm.Median()
	}
	return out
}

// WritePNG saves a static depth plot of one sample. Depths are smoothed with a
// moving median of the given window (DefaultWindow when 0) and thinned for long genomes.
func WritePNG(path, sample string, depths []float64, window int) error {
	if len(depths) == 0 {
		return errors.Errorf("report: no depths for %s", sample)
	}
	if window == 0 {
		window = DefaultWindow
	}
	ys := smooth(depths, window)
	data := &vs{xs: make([]float64, len(ys)), ys: ys}
	for i := range ys {
		data.xs[i] = float64(i + 1)
	}
	// gonum plotting is slow for large series so we sample.
	if data.Len() > 20000 {
		data = data.Sample(data.Len() / 10000)
	}

	p := plot.New()
	p.Title.Text = sample
	p.X.Label.Text = "position"
	p.Y.Label.Text = "depth"
	p.Y.Min = 0

	l, err := plotter.NewLine(data)
	if err != nil {
		return errors.Wrapf(err, "report: plotting %s", sample)
	}
	c := color.RGBA(*sampleColor(0))
	c.A = 255
	l.LineStyle.Width = vg.Points(0.8)
	l.Color = c
	p.Add(l)
	if err := p.Save(6*vg.Inch, 2*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "report: saving %s", path)
	}
	return nil
}
