// Package covstats summarises per-base depth series: mean and median depth, the
// proportion of the genome at or above a low-coverage threshold, and the runs of
// low and zero coverage.
package covstats

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	arg "github.com/alexflint/go-arg"
	"github.com/brentp/wgscovplot/depth"
	"github.com/brentp/wgscovplot/input"
	"github.com/fatih/color"
	"go4.org/sort"
	"gonum.org/v1/gonum/stat"
)

// DefaultLow is the depth below which a position is low coverage.
const DefaultLow = 10

// Stat holds the coverage summary for one sample.
type Stat struct {
	Sample string
	Low    int

	MeanDepth   float64
	MedianDepth float64
	// PercentCovered is the percentage (0-100) of positions with depth >= Low.
	PercentCovered float64
	// LowPositions is the count of positions with depth < Low.
	LowPositions int
	// ZeroPositions is the count of positions with no coverage.
	ZeroPositions int

	LowRegions  depth.Intervals
	ZeroRegions depth.Intervals
}

// Mean is formatted like "35.2X".
func (s Stat) Mean() string { return fmt.Sprintf("%.1fX", s.MeanDepth) }

// Median is formatted like "35.0X".
func (s Stat) Median() string { return fmt.Sprintf("%.1fX", s.MedianDepth) }

// Percent is formatted like "99.12%".
func (s Stat) Percent() string { return fmt.Sprintf("%.2f%%", s.PercentCovered) }

// Row is the table row shown in the report.
func (s Stat) Row() []string {
	return []string{s.Sample, s.Mean(), s.Median(), s.Percent(),
		strconv.Itoa(s.LowPositions), strconv.Itoa(s.ZeroPositions),
		s.LowRegions.String(), s.ZeroRegions.String()}
}

// Header names the columns of Row.
var Header = []string{"sample", "mean_coverage", "median_coverage", "genome_coverage",
	"positions_low_coverage", "positions_no_coverage", "low_coverage_regions", "no_coverage_regions"}

func median(vals []float64) float64 {
	a := make([]float64, len(vals))
	copy(a, vals)
	sort.Slice(a, func(i, j int) bool { return a[i] < a[j] })
	m := len(a) / 2
	if len(a)%2 == 0 {
		return (a[m-1] + a[m]) / 2
	}
	return a[m]
}

// Compute summarises s, which is expected to have had zeros masked with depth.Epsilon.
// Zero coverage is any depth at or below depth.Epsilon so unmasked zeros are also found.
func Compute(sample string, s *depth.Series, low int) (Stat, error) {
	st := Stat{Sample: sample, Low: low}
	n := s.Len()
	if n == 0 {
		return st, input.Invariantf("%s: empty depth series", sample)
	}
	flow := float64(low)
	covered := 0
	for _, d := range s.Depths {
		if d >= flow {
			covered++
		} else {
			st.LowPositions++
		}
		if d <= depth.Epsilon {
			st.ZeroPositions++
		}
	}
	st.MeanDepth = stat.Mean(s.Depths, nil)
	st.MedianDepth = median(s.Depths)
	st.PercentCovered = 100 * float64(covered) / float64(n)
	st.LowRegions = depth.Coalesce(s, flow-1)
	st.ZeroRegions = depth.Coalesce(s, depth.Epsilon)
	if !st.LowRegions.Valid() || !st.ZeroRegions.Valid() {
		return st, input.Invariantf("%s: coalesced intervals overlap", sample)
	}
	return st, nil
}

// CoverageCurve returns, for each depth t in 0..max, the proportion of positions
// with depth >= t.
func CoverageCurve(depths []float64, max int) []float64 {
	counts := make([]int, max+1)
	for _, d := range depths {
		var k int
		switch {
		case math.IsNaN(d) || d < 0:
			k = 0
		case d >= float64(max):
			k = max
		default:
			k = int(d)
		}
		counts[k]++
	}
	curve := make([]float64, max+1)
	if len(depths) == 0 {
		return curve
	}
	tot := 0
	for i := max; i >= 0; i-- {
		tot += counts[i]
		curve[i] = float64(tot) / float64(len(depths))
	}
	return curve
}

var cli = struct {
	Low    int      `arg:"-l" help:"depth below which a position is low coverage"`
	Depths []string `arg:"positional,required" help:"per-base depth files (sample, reference, position, depth)"`
}{Low: DefaultLow}

func pcheck(e error) {
	if e != nil {
		c := color.New(color.BgRed).Add(color.Bold)
		fmt.Fprintf(os.Stderr, "%s\n", c.SprintFunc()(fmt.Sprintf("ERROR: %s", e)))
		os.Exit(1)
	}
}

// Main is called from the dispatcher
func Main() {
	arg.MustParse(&cli)
	fmt.Fprintln(os.Stdout, strings.Join(Header, "\t"))
	for _, p := range cli.Depths {
		s, err := depth.ReadRegular(p)
		pcheck(err)
		pcheck(s.Validate(0))
		s.MaskZeros()
		st, err := Compute(s.Sample, s, cli.Low)
		pcheck(err)
		fmt.Fprintln(os.Stdout, strings.Join(st.Row(), "\t"))
	}
}
