package covstats

import (
	"math"
	"math/rand"
	"testing"

	"github.com/brentp/wgscovplot/depth"
	"github.com/brentp/wgscovplot/input"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(depths ...float64) *depth.Series {
	s := &depth.Series{Positions: make([]int, len(depths)), Depths: depths}
	for i := range depths {
		s.Positions[i] = i + 1
	}
	return s
}

func TestCompute(t *testing.T) {
	s := series(5, 0, 0, 12, 12, 8, 8, 8)
	s.MaskZeros()
	st, err := Compute("s1", s, DefaultLow)
	require.NoError(t, err)

	assert.Equal(t, "1-3; 6-8", st.LowRegions.String())
	assert.Equal(t, "2-3", st.ZeroRegions.String())
	assert.Equal(t, 6, st.LowPositions)
	assert.Equal(t, 2, st.ZeroPositions)
	assert.Equal(t, "25.00%", st.Percent())
	assert.Equal(t, "6.6X", st.Mean())
	assert.Equal(t, "8.0X", st.Median())
	assert.Equal(t, []string{"s1", "6.6X", "8.0X", "25.00%", "6", "2", "1-3; 6-8", "2-3"}, st.Row())
	assert.Len(t, st.Row(), len(Header))
}

func TestComputeAllCovered(t *testing.T) {
	s := series(10, 11, 400, 10)
	s.MaskZeros()
	st, err := Compute("s1", s, DefaultLow)
	require.NoError(t, err)
	assert.Equal(t, "100.00%", st.Percent())
	assert.Empty(t, st.LowRegions)
	assert.Empty(t, st.ZeroRegions)
	assert.Equal(t, "", st.LowRegions.String())
	assert.Equal(t, 0, st.LowPositions)
}

func TestComputeEmpty(t *testing.T) {
	_, err := Compute("s1", series(), DefaultLow)
	assert.True(t, errors.Is(err, input.ErrInvariant))
}

func TestComputeBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		d := make([]float64, 1+rng.Intn(500))
		for k := range d {
			d[k] = float64(rng.Intn(30))
		}
		s := series(d...)
		s.MaskZeros()
		st, err := Compute("x", s, 1+rng.Intn(20))
		require.NoError(t, err)
		assert.True(t, st.MeanDepth >= 0)
		assert.True(t, st.MedianDepth >= 0)
		assert.True(t, st.PercentCovered >= 0 && st.PercentCovered <= 100)
		assert.Equal(t, st.ZeroPositions, st.ZeroRegions.Positions())
	}
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 2.5, median([]float64{4, 1, 3, 2}))
	vals := []float64{3, 1, 2}
	assert.Equal(t, 2.0, median(vals))
	assert.Equal(t, []float64{3, 1, 2}, vals, "input must not be reordered")
}

func TestCoverageCurve(t *testing.T) {
	c := CoverageCurve([]float64{0, 1, 2, 2, 50}, 3)
	assert.Equal(t, []float64{1, 0.8, 0.6, 0.2}, c)
	assert.Equal(t, []float64{0, 0}, CoverageCurve(nil, 1))
	assert.Equal(t, []float64{1, 0.5, 0.5}, CoverageCurve([]float64{math.NaN(), math.Inf(1)}, 2))
}
