package heuristics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/inferkit/smc-go/pkg/core"
	"github.com/inferkit/smc-go/pkg/distributions"
	"github.com/inferkit/smc-go/pkg/errors"
	"github.com/inferkit/smc-go/pkg/models"
	"github.com/inferkit/smc-go/pkg/smc"
)

func newPrecessionUpdater(t *testing.T, seed uint64) *smc.Updater {
	t.Helper()
	u, err := smc.NewUpdater(
		models.NewPrecessionModel(),
		200,
		distributions.NewUniform([]float64{0}, []float64{1}),
		smc.WithSeed(seed),
	)
	require.NoError(t, err)
	return u
}

func TestFixedFactory(t *testing.T) {
	u := newPrecessionUpdater(t, 7)

	h, err := NewFixedFactory(2.5)(u)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		ep, err := h.Design()
		require.NoError(t, err)
		tv, ok := ep.Get(models.FieldT)
		require.True(t, ok)
		assert.Equal(t, 2.5, tv)
	}
}

func TestFixedFactoryWrongArity(t *testing.T) {
	u := newPrecessionUpdater(t, 7)

	_, err := NewFixedFactory(1.0, 2.0)(u)
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.Code(err))
}

func TestExpSparseSchedule(t *testing.T) {
	u := newPrecessionUpdater(t, 7)

	h, err := NewExpSparseFactory(0.5, 2)(u)
	require.NoError(t, err)

	want := []float64{0.5, 1, 2, 4, 8}
	for _, w := range want {
		ep, err := h.Design()
		require.NoError(t, err)
		tv, _ := ep.Get(models.FieldT)
		assert.InDelta(t, w, tv, 1e-12)
	}
}

func TestExpSparseFactoryValidation(t *testing.T) {
	u := newPrecessionUpdater(t, 7)

	tests := []struct {
		name  string
		base  float64
		scale float64
	}{
		{name: "zero base", base: 0, scale: 1.1},
		{name: "negative base", base: -1, scale: 1.1},
		{name: "shrinking scale", base: 1, scale: 0.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExpSparseFactory(tt.base, tt.scale)(u)
			require.Error(t, err)
			assert.Equal(t, errors.InvalidInput, errors.Code(err))
		})
	}
}

func TestExpSparseRejectsSchemalessModel(t *testing.T) {
	u, err := smc.NewUpdater(
		models.NewCoinModel(),
		100,
		distributions.NewUniform([]float64{0}, []float64{1}),
		smc.WithSeed(7),
	)
	require.NoError(t, err)

	_, err = NewExpSparseFactory(1, 2)(u)
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.Code(err))
}

func TestPGHDesignsFinitePositiveTimes(t *testing.T) {
	u := newPrecessionUpdater(t, 11)

	h, err := NewPGHFactory()(u)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		ep, err := h.Design()
		require.NoError(t, err)
		tv, ok := ep.Get(models.FieldT)
		require.True(t, ok)
		assert.True(t, tv > 0, "evolution time must be positive, got %v", tv)
		assert.False(t, math.IsInf(tv, 0))
		assert.False(t, math.IsNaN(tv))
	}
}

func TestPGHCollapsedPosteriorFallback(t *testing.T) {
	// Every particle at the same location: separation is always zero and the
	// covariance trace is zero, so the fallback unit time applies.
	point := pointMass{}
	u, err := smc.NewUpdater(models.NewPrecessionModel(), 50, point, smc.WithSeed(5))
	require.NoError(t, err)

	h, err := NewPGHFactory()(u)
	require.NoError(t, err)

	ep, err := h.Design()
	require.NoError(t, err)
	tv, _ := ep.Get(models.FieldT)
	assert.Equal(t, 1.0, tv)
}

type pointMass struct{}

var _ core.Distribution = pointMass{}

func (pointMass) Dim() int { return 1 }

func (pointMass) Sample(rnd *rand.Rand, n int) *mat.Dense {
	d := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		d.Set(i, 0, 0.5)
	}
	return d
}
