package smc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/inferkit/smc-go/pkg/distributions"
)

func skewedPool(t *testing.T, n int) *Pool {
	t.Helper()
	prior := distributions.NewNormal([]float64{0.5}, []float64{0.2})
	p, err := NewPool(testRNG(), prior, n)
	require.NoError(t, err)

	// Weight particles toward larger locations to make the weights uneven.
	liks := make([]float64, n)
	locs := p.Locations()
	for i := 0; i < n; i++ {
		x := locs.At(i, 0)
		liks[i] = 0.01 + x*x
	}
	require.NoError(t, p.Reweight(liks))
	return p
}

func TestShouldResampleThreshold(t *testing.T) {
	locs := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	p, err := NewPoolFromLocations(locs)
	require.NoError(t, err)

	r := NewLiuWestResampler(WithThreshold(0.5))
	// Uniform weights: ESS = n, no resampling.
	assert.False(t, r.ShouldResample(p))

	require.NoError(t, p.Reweight([]float64{1, 1e-8, 1e-8, 1e-8}))
	assert.True(t, r.ShouldResample(p))
}

func TestResamplePreservesMean(t *testing.T) {
	p := skewedPool(t, 5000)
	before := p.Mean()

	r := NewLiuWestResampler()
	require.NoError(t, r.Resample(testRNG(), p))

	after := p.Mean()
	assert.InDelta(t, before[0], after[0], 0.05)
}

func TestResampleRestoresUniformWeights(t *testing.T) {
	p := skewedPool(t, 1000)
	r := NewLiuWestResampler()
	require.NoError(t, r.Resample(testRNG(), p))

	w := p.Weights()
	for _, v := range w {
		assert.InDelta(t, 1.0/1000, v, 1e-12)
	}
	assert.InDelta(t, 1000.0, p.ESS(), 1e-6)
}

func TestResampleKeepsDiversity(t *testing.T) {
	p := skewedPool(t, 1000)
	r := NewLiuWestResampler()
	require.NoError(t, r.Resample(testRNG(), p))

	locs := p.Locations()
	min, max := locs.At(0, 0), locs.At(0, 0)
	for i := 1; i < 1000; i++ {
		v := locs.At(i, 0)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	assert.Greater(t, max, min, "resampling must not collapse the pool to a point")
}

func TestResampleRespectsValidity(t *testing.T) {
	prior := distributions.NewUniform([]float64{0}, []float64{1})
	p, err := NewPool(testRNG(), prior, 500)
	require.NoError(t, err)

	liks := make([]float64, 500)
	for i := range liks {
		liks[i] = p.Locations().At(i, 0) + 0.01
	}
	require.NoError(t, p.Reweight(liks))

	r := NewLiuWestResampler(WithValidity(func(params []float64) bool {
		return params[0] >= 0 && params[0] <= 1
	}))
	require.NoError(t, r.Resample(testRNG(), p))

	locs := p.Locations()
	for i := 0; i < 500; i++ {
		v := locs.At(i, 0)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestShrinkageOneSkipsKernel(t *testing.T) {
	p := skewedPool(t, 200)
	r := NewLiuWestResampler(WithShrinkage(1))
	require.NoError(t, r.Resample(testRNG(), p))

	// With a = 1 every new location must be an existing ancestor location.
	assert.InDelta(t, 1.0/200, p.Weights()[0], 1e-12)
}
