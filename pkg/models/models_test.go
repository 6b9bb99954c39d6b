package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/inferkit/smc-go/pkg/core"
	"github.com/inferkit/smc-go/pkg/errors"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewSource(3))
}

func TestCoinLikelihood(t *testing.T) {
	m := NewCoinModel()
	locs := mat.NewDense(3, 1, []float64{0.0, 0.25, 1.0})
	ep, err := core.NewExpParams(m.ExpParamsSchema(), nil)
	require.NoError(t, err)

	heads, err := m.Likelihood(1, locs, ep)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.0, 0.25, 1.0}, heads)

	tails, err := m.Likelihood(0, locs, ep)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0, 0.75, 0.0}, tails)

	_, err = m.Likelihood(2, locs, ep)
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.Code(err))
}

func TestCoinLikelihoodClampsStrayParticles(t *testing.T) {
	m := NewCoinModel()
	locs := mat.NewDense(2, 1, []float64{-0.1, 1.1})
	ep, err := core.NewExpParams(m.ExpParamsSchema(), nil)
	require.NoError(t, err)

	liks, err := m.Likelihood(1, locs, ep)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.0, 1.0}, liks)
}

func TestCoinSimulate(t *testing.T) {
	m := NewCoinModel()
	ep, err := core.NewExpParams(m.ExpParamsSchema(), nil)
	require.NoError(t, err)

	rnd := testRNG()
	heads := 0
	for i := 0; i < 1000; i++ {
		outcome, err := m.SimulateExperiment(rnd, []float64{0.7}, ep)
		require.NoError(t, err)
		require.Contains(t, []int{0, 1}, outcome)
		heads += outcome
	}
	assert.InDelta(t, 700, heads, 60)

	_, err = m.SimulateExperiment(rnd, []float64{1.5}, ep)
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.Code(err))
}

func TestPrecessionLikelihood(t *testing.T) {
	m := NewPrecessionModel()
	ep, err := core.NewExpParams(m.ExpParamsSchema(), []float64{math.Pi})
	require.NoError(t, err)

	locs := mat.NewDense(2, 1, []float64{1.0, 0.5})
	liks, err := m.Likelihood(1, locs, ep)
	require.NoError(t, err)

	// sin^2(omega * t / 2) at t = pi.
	assert.InDelta(t, 1.0, liks[0], 1e-12)
	assert.InDelta(t, 0.5, liks[1], 1e-12)

	zeros, err := m.Likelihood(0, locs, ep)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, zeros[0], 1e-12)
	assert.InDelta(t, 0.5, zeros[1], 1e-12)
}

func TestPrecessionMissingTime(t *testing.T) {
	m := NewPrecessionModel()
	bare, err := core.NewExpParams(core.Schema{}, nil)
	require.NoError(t, err)

	_, err = m.Likelihood(1, mat.NewDense(1, 1, []float64{1}), bare)
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.Code(err))
}

func TestPrecessionSimulateMatchesProbability(t *testing.T) {
	m := NewPrecessionModel()
	ep, err := core.NewExpParams(m.ExpParamsSchema(), []float64{math.Pi})
	require.NoError(t, err)

	// omega = 1, t = pi: Pr(1) = sin^2(pi/2) = 1.
	rnd := testRNG()
	for i := 0; i < 20; i++ {
		outcome, err := m.SimulateExperiment(rnd, []float64{1}, ep)
		require.NoError(t, err)
		assert.Equal(t, 1, outcome)
	}
}

func TestPrecessionValidParams(t *testing.T) {
	m := NewPrecessionModel(WithMinFreq(0.1))
	assert.True(t, m.ValidParams([]float64{0.5}))
	assert.False(t, m.ValidParams([]float64{0.05}))
	assert.False(t, m.ValidParams([]float64{0.5, 0.5}))
}
