package smc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/inferkit/smc-go/pkg/distributions"
	"github.com/inferkit/smc-go/pkg/errors"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewSource(7))
}

func sumWeights(w []float64) float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return total
}

func TestNewPoolUniformWeights(t *testing.T) {
	prior := distributions.NewUniform([]float64{0}, []float64{1})
	p, err := NewPool(testRNG(), prior, 100)
	require.NoError(t, err)

	assert.Equal(t, 100, p.Len())
	assert.Equal(t, 1, p.Dim())

	w := p.Weights()
	assert.InDelta(t, 1.0, sumWeights(w), 1e-12)
	for _, v := range w {
		assert.InDelta(t, 0.01, v, 1e-12)
	}
	assert.InDelta(t, 100.0, p.ESS(), 1e-9)
}

func TestNewPoolRejectsBadInputs(t *testing.T) {
	prior := distributions.NewUniform([]float64{0}, []float64{1})

	_, err := NewPool(testRNG(), nil, 10)
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.Code(err))

	_, err = NewPool(testRNG(), prior, 1)
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.Code(err))
}

func TestReweightNormalizes(t *testing.T) {
	locs := mat.NewDense(4, 1, []float64{0.1, 0.2, 0.3, 0.4})
	p, err := NewPoolFromLocations(locs)
	require.NoError(t, err)

	require.NoError(t, p.Reweight([]float64{1, 2, 3, 4}))

	w := p.Weights()
	assert.InDelta(t, 1.0, sumWeights(w), 1e-12)
	assert.InDelta(t, 0.1, w[0], 1e-12)
	assert.InDelta(t, 0.4, w[3], 1e-12)
}

func TestReweightRepeatedCallsStayNormalized(t *testing.T) {
	prior := distributions.NewUniform([]float64{0}, []float64{1})
	p, err := NewPool(testRNG(), prior, 200)
	require.NoError(t, err)

	liks := make([]float64, 200)
	for round := 0; round < 50; round++ {
		for i := range liks {
			liks[i] = 0.1 + float64(i%7)*0.05
		}
		require.NoError(t, p.Reweight(liks))
		assert.InDelta(t, 1.0, sumWeights(p.Weights()), 1e-9)
	}
}

func TestReweightDegenerateLeavesPoolUnchanged(t *testing.T) {
	locs := mat.NewDense(3, 1, []float64{1, 2, 3})
	p, err := NewPoolFromLocations(locs)
	require.NoError(t, err)

	before := p.Weights()

	err = p.Reweight([]float64{0, 0, 0})
	require.Error(t, err)
	assert.Equal(t, errors.DegeneratePosterior, errors.Code(err))
	assert.Equal(t, before, p.Weights())
}

func TestReweightNumericFailures(t *testing.T) {
	locs := mat.NewDense(3, 1, []float64{1, 2, 3})

	tests := []struct {
		name string
		liks []float64
	}{
		{name: "NaN likelihood", liks: []float64{1, nanValue(), 1}},
		{name: "Inf likelihood", liks: []float64{1, infValue(), 1}},
		{name: "negative likelihood", liks: []float64{1, -0.5, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPoolFromLocations(mat.DenseCopyOf(locs))
			require.NoError(t, err)
			before := p.Weights()

			err = p.Reweight(tt.liks)
			require.Error(t, err)
			assert.Equal(t, errors.NumericFailure, errors.Code(err))
			assert.Equal(t, before, p.Weights())
		})
	}
}

func TestReweightLengthMismatch(t *testing.T) {
	locs := mat.NewDense(3, 1, []float64{1, 2, 3})
	p, err := NewPoolFromLocations(locs)
	require.NoError(t, err)

	err = p.Reweight([]float64{1, 2})
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.Code(err))
}

func TestMeanIsWeightedAverage(t *testing.T) {
	locs := mat.NewDense(2, 2, []float64{0, 0, 1, 2})
	p, err := NewPoolFromLocations(locs)
	require.NoError(t, err)

	// Shift all mass to the second particle.
	require.NoError(t, p.Reweight([]float64{1, 3}))

	mean := p.Mean()
	assert.InDelta(t, 0.75, mean[0], 1e-12)
	assert.InDelta(t, 1.5, mean[1], 1e-12)
}

func TestESSTracksDegeneracy(t *testing.T) {
	locs := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	p, err := NewPoolFromLocations(locs)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, p.ESS(), 1e-12)

	// Concentrate nearly all mass on one particle.
	require.NoError(t, p.Reweight([]float64{1e-9, 1e-9, 1e-9, 1}))
	assert.Less(t, p.ESS(), 1.001)
}

func TestCredibleRegion(t *testing.T) {
	locs := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	p, err := NewPoolFromLocations(locs)
	require.NoError(t, err)
	require.NoError(t, p.Reweight([]float64{8, 1, 0.5, 0.5}))

	region, err := p.CredibleRegion(0.8)
	require.NoError(t, err)
	rows, cols := region.Dims()
	assert.Equal(t, 1, rows) // the top particle alone carries 0.8
	assert.Equal(t, 1, cols)
	assert.Equal(t, 1.0, region.At(0, 0))

	_, err = p.CredibleRegion(1.5)
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.Code(err))
}

func TestReplace(t *testing.T) {
	locs := mat.NewDense(3, 1, []float64{1, 2, 3})
	p, err := NewPoolFromLocations(locs)
	require.NoError(t, err)

	newLocs := mat.NewDense(3, 1, []float64{4, 5, 6})
	require.NoError(t, p.Replace(newLocs, []float64{2, 2, 2}))

	// Weights renormalized.
	w := p.Weights()
	assert.InDelta(t, 1.0/3, w[0], 1e-12)
	assert.Equal(t, 4.0, p.Locations().At(0, 0))

	// Shape mismatch rejected.
	err = p.Replace(mat.NewDense(2, 1, []float64{1, 2}), []float64{1, 1})
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.Code(err))
}

func nanValue() float64 {
	return math.NaN()
}

func infValue() float64 {
	return math.Inf(1)
}
