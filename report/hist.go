package report

import (
	"github.com/brentp/wgscovplot/samples"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// capped copies depths with every value above max set to max so that a few
// very deep positions do not squash the histogram.
func capped(depths []float64, max float64) plotter.Values {
	v := make(plotter.Values, len(depths))
	for i, d := range depths {
		if d > max {
			d = max
		}
		v[i] = d
	}
	return v
}

// WriteHistogram saves a grouped bar chart of the depth distribution of every
// sample. Depths above max are counted in the last bin.
func WriteHistogram(path string, b *samples.Bundle, bins int, max float64) error {
	if len(b.Samples) == 0 {
		return errors.New("report: no samples for histogram")
	}
	if bins <= 0 {
		bins = 20
	}
	p := plot.New()
	p.X.Label.Text = "depth bin"
	p.Y.Label.Text = "positions"

	w := 30 / float64(len(b.Samples)) * 20 / float64(bins)
	var bars []plot.Plotter
	for i, s := range b.Samples {
		if len(b.Depths[i]) == 0 {
			continue
		}
		h, err := plotter.NewHist(capped(b.Depths[i], max), bins)
		if err != nil {
			return errors.Wrapf(err, "report: histogram for %s", s)
		}
		vals := make(plotter.Values, len(h.Bins))
		for j, bin := range h.Bins {
			vals[j] = bin.Weight
		}
		bar, err := plotter.NewBarChart(vals, vg.Points(w+0.01))
		if err != nil {
			return errors.Wrapf(err, "report: histogram for %s", s)
		}
		bar.LineStyle.Width = vg.Length(0.1)
		bar.Color = plotutil.Color(i)
		bar.Offset = vg.Points(float64(i) * w)
		p.Legend.Add(s, bar)
		bars = append(bars, bar)
	}
	p.Add(bars...)
	p.Legend.Top = true
	if err := p.Save(10*vg.Inch, 3*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "report: saving %s", path)
	}
	return nil
}
