package samples

import (
	"context"
	"runtime"

	"github.com/brentp/wgscovplot/annotation"
	"github.com/brentp/wgscovplot/covstats"
	"github.com/brentp/wgscovplot/depth"
	"github.com/brentp/wgscovplot/input"
	"github.com/brentp/wgscovplot/vcf"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Options control how each sample is read.
type Options struct {
	// Amplicon selects the amplicon perbase depth table instead of the regular one.
	Amplicon bool
	// Low is the depth below which a position counts as low coverage.
	Low int
	// RefLength is the reference length. Required in amplicon mode where depth
	// arrays are sized from it.
	RefLength int
	// Threads bounds the number of samples read at once.
	Threads int
}

// Bundle holds everything the report needs. All per-sample slices are aligned
// with Samples, which is in manifest order.
type Bundle struct {
	Samples    []string
	References []string // reference name given in each depth file
	Callers    []string
	Depths     [][]float64
	Variants   []map[int]vcf.Allele
	Stats      []covstats.Stat
	Amplicons  [][]depth.Amplicon
	Features   []annotation.Feature

	Amplicon     bool
	LowThreshold int
}

// SampleIndex maps each sample's index to its name.
func (b *Bundle) SampleIndex() map[int]string {
	m := make(map[int]string, len(b.Samples))
	for i, s := range b.Samples {
		m[i] = s
	}
	return m
}

// sampleData is what one sample contributes to the Bundle.
type sampleData struct {
	reference string
	caller    string
	depths    []float64
	variants  map[int]vcf.Allele
	stat      covstats.Stat
	amplicons []depth.Amplicon
}

func required(m Manifest, opts Options) error {
	for _, e := range m {
		if opts.Amplicon && e.AmpliconPerbase == "" {
			return errors.Wrapf(input.ErrParse, "sample %s: amplicon mode needs amplicon_perbase_file", e.Name)
		}
		if !opts.Amplicon && e.DepthPath == "" {
			return errors.Wrapf(input.ErrParse, "sample %s: no depth_file", e.Name)
		}
		if err := input.Check(e.Paths()...); err != nil {
			return errors.Wrapf(err, "sample %s", e.Name)
		}
	}
	return nil
}

// Aggregate reads every sample of the manifest. All declared paths are checked
// before any file is read so a missing file never yields a partial bundle.
func Aggregate(ctx context.Context, m Manifest, features []annotation.Feature, opts Options) (*Bundle, error) {
	if opts.Low <= 0 {
		opts.Low = covstats.DefaultLow
	}
	if opts.Amplicon && opts.RefLength <= 0 {
		return nil, input.Invariantf("amplicon mode needs the reference length")
	}
	if err := required(m, opts); err != nil {
		return nil, err
	}
	threads := opts.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}

	data := make([]sampleData, len(m))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for i, e := range m {
		i, e := i, e
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := readSample(e, opts)
			if err != nil {
				return errors.Wrapf(err, "sample %s", e.Name)
			}
			data[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b := &Bundle{
		Samples:      m.Names(),
		References:   make([]string, len(m)),
		Callers:      make([]string, len(m)),
		Depths:       make([][]float64, len(m)),
		Variants:     make([]map[int]vcf.Allele, len(m)),
		Stats:        make([]covstats.Stat, len(m)),
		Features:     features,
		Amplicon:     opts.Amplicon,
		LowThreshold: opts.Low,
	}
	if opts.Amplicon {
		b.Amplicons = make([][]depth.Amplicon, len(m))
	}
	for i, d := range data {
		b.References[i] = d.reference
		b.Callers[i] = d.caller
		b.Depths[i] = d.depths
		b.Variants[i] = d.variants
		b.Stats[i] = d.stat
		if opts.Amplicon {
			b.Amplicons[i] = d.amplicons
		}
	}
	return b, nil
}

func readSample(e Entry, opts Options) (sampleData, error) {
	var d sampleData
	var s *depth.Series
	var err error
	if opts.Amplicon {
		s, err = depth.ReadAmpliconPerbase(e.AmpliconPerbase, opts.RefLength)
	} else {
		s, err = depth.ReadRegular(e.DepthPath)
	}
	if err != nil {
		return d, err
	}
	s.Sample = e.Name
	if err := s.Validate(opts.RefLength); err != nil {
		log.WithFields(log.Fields{"sample": e.Name}).Warn(err)
	}
	s.MaskZeros()
	d.depths = s.Depths
	d.reference = s.Reference

	if d.stat, err = covstats.Compute(e.Name, s, opts.Low); err != nil {
		if s.Len() == 0 || !errors.Is(err, input.ErrInvariant) {
			return d, err
		}
		log.WithFields(log.Fields{"sample": e.Name}).Warn(err)
	}

	d.variants = map[int]vcf.Allele{}
	if e.VCF != "" {
		caller, variants, err := vcf.Read(e.VCF)
		if err != nil {
			return d, err
		}
		d.caller = caller
		d.variants = vcf.ByPosition(variants)
		log.WithFields(log.Fields{"sample": e.Name, "path": e.VCF}).Debugf("%d variants from %s", len(d.variants), caller)
	}

	if opts.Amplicon && e.AmpliconRegions != "" {
		if d.amplicons, err = depth.ReadAmpliconRegions(e.AmpliconRegions); err != nil {
			return d, err
		}
	}
	return d, nil
}
