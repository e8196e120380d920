// Package covplot is the plot sub-command: it reads a sample manifest and writes
// the interactive coverage report.
package covplot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	arg "github.com/alexflint/go-arg"
	"github.com/brentp/wgscovplot/annotation"
	"github.com/brentp/wgscovplot/depth"
	"github.com/brentp/wgscovplot/input"
	"github.com/brentp/wgscovplot/reference"
	"github.com/brentp/wgscovplot/report"
	"github.com/brentp/wgscovplot/samples"
	"github.com/brentp/xopen"
	"github.com/fatih/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Env holds defaults read from WGSCOVPLOT_* environment variables.
type Env struct {
	Threads  int    `default:"4"`
	Low      int    `default:"10"`
	LogLevel string `split_words:"true" default:"info"`
	ECharts  string `envconfig:"ECHARTS_URL"`
	JQuery   string `envconfig:"JQUERY_URL"`
}

// Options are the arguments of the plot sub-command.
type Options struct {
	Samples    string `arg:"-s,required" help:"sample manifest (tab-delimited with header, or .yaml)"`
	Annotation string `arg:"-a" help:"GenBank file with features to draw under the coverage charts"`
	Reference  string `arg:"-r" help:"reference FASTA. the GenBank sequence is used when not given"`
	Name       string `arg:"-n" help:"name of the reference sequence and GenBank record. default is the first"`
	Amplicon   bool   `help:"read amplicon perbase and region depth files instead of per-base depth"`
	Low        int    `arg:"-l" help:"depth below which a position is low coverage"`
	Threads    int    `arg:"-t" help:"number of samples to read at once"`
	Summary    string `help:"optional path for a cumulative coverage html page"`
	PNG        string `help:"optional directory for a static depth plot per sample"`
	Hist       string `help:"optional path for a png histogram of depth per sample"`
	HistMax    int    `arg:"--hist-max" help:"depth at which the histogram is capped"`
	Regions    string `help:"optional BED of low and zero coverage regions (.gz for bgzip)"`
	Title      string `help:"report title"`
	Output     string `arg:"-o" help:"output html"`

	Version string `arg:"-"`
	env     Env
}

func pcheck(e error) {
	if e != nil {
		c := color.New(color.BgRed).Add(color.Bold)
		fmt.Fprintf(os.Stderr, "%s\n", c.SprintFunc()(fmt.Sprintf("ERROR: %s", e)))
		os.Exit(1)
	}
}

// Defaults loads environment defaults into a new Options.
func Defaults() (*Options, error) {
	var e Env
	if err := envconfig.Process("wgscovplot", &e); err != nil {
		return nil, errors.Wrap(err, "reading environment")
	}
	return &Options{Low: e.Low, Threads: e.Threads, HistMax: 500, Output: "wgscovplot.html", env: e}, nil
}

func loadReference(opts *Options, rec *annotation.Record) (reference.Sequence, error) {
	if opts.Reference != "" {
		return reference.Load(opts.Reference, opts.Name)
	}
	if rec != nil && rec.Sequence != "" {
		return reference.Sequence{Name: rec.Name, Seq: rec.Sequence}, nil
	}
	return reference.Sequence{}, errors.Wrap(input.ErrParse, "no reference: need --reference or a GenBank file with an ORIGIN sequence")
}

func create(path string, fn func(*xopen.Writer) error) error {
	wtr, err := xopen.Wopen(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := fn(wtr); err != nil {
		wtr.Close()
		return err
	}
	return wtr.Close()
}

// Run writes the report and the optional extra outputs described by opts.
func Run(ctx context.Context, opts *Options) error {
	if err := input.Check(opts.Samples, opts.Annotation, opts.Reference); err != nil {
		return err
	}
	m, err := samples.ReadManifest(opts.Samples)
	if err != nil {
		return err
	}

	var rec *annotation.Record
	var features []annotation.Feature
	if opts.Annotation != "" {
		r, feats, err := annotation.LayoutFile(opts.Annotation, opts.Name)
		if err != nil && opts.Reference != "" && opts.Name != "" && errors.Is(err, input.ErrInvariant) {
			// FASTA and GenBank names often differ by version suffix.
			r, feats, err = annotation.LayoutFile(opts.Annotation, "")
		}
		if err != nil {
			return err
		}
		rec, features = &r, feats
		if n := annotation.RowCollisions(features); n > 0 {
			log.WithFields(log.Fields{"path": opts.Annotation}).Warnf("%d features overlap others drawn on the same row", n)
		}
	}
	ref, err := loadReference(opts, rec)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"reference": ref.Name, "length": ref.Len(), "samples": len(m)}).Info("reading samples")

	b, err := samples.Aggregate(ctx, m, features, samples.Options{
		Amplicon:  opts.Amplicon,
		Low:       opts.Low,
		RefLength: ref.Len(),
		Threads:   opts.Threads,
	})
	if err != nil {
		return err
	}

	ropts := report.Options{Title: opts.Title, Version: opts.Version, ECharts: opts.env.ECharts, JQuery: opts.env.JQuery}
	if err := create(opts.Output, func(w *xopen.Writer) error { return report.Write(w, b, ref, ropts) }); err != nil {
		return err
	}
	log.WithFields(log.Fields{"path": opts.Output}).Info("wrote report")

	if opts.Summary != "" {
		link := filepath.Base(opts.Output)
		if err := create(opts.Summary, func(w *xopen.Writer) error { return report.WriteSummary(w, b, link) }); err != nil {
			return err
		}
	}
	if opts.PNG != "" {
		if err := os.MkdirAll(opts.PNG, 0755); err != nil {
			return errors.Wrapf(err, "creating %s", opts.PNG)
		}
		for i, s := range b.Samples {
			if err := report.WritePNG(filepath.Join(opts.PNG, s+".png"), s, b.Depths[i], 0); err != nil {
				return err
			}
		}
	}
	if opts.Hist != "" {
		if err := report.WriteHistogram(opts.Hist, b, 20, float64(opts.HistMax)); err != nil {
			return err
		}
	}
	if opts.Regions != "" {
		if err := writeRegions(opts.Regions, ref.Name, b); err != nil {
			return err
		}
	}
	return nil
}

func writeRegions(path, chrom string, b *samples.Bundle) error {
	w, err := depth.NewRegionWriter(path)
	if err != nil {
		return err
	}
	for i, st := range b.Stats {
		if err := depth.WriteBED(w, chrom, b.Samples[i], depth.Classify(st.LowRegions, st.ZeroRegions)); err != nil {
			w.Close()
			return errors.Wrapf(err, "writing %s", path)
		}
	}
	return w.Close()
}

// Main is called from the dispatcher
func Main(version string) {
	opts, err := Defaults()
	pcheck(err)
	opts.Version = version
	arg.MustParse(opts)
	if lvl, err := log.ParseLevel(opts.env.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	pcheck(Run(context.Background(), opts))
}
