// Package heuristics implements experiment-design strategies: a constant
// design, an exponentially sparse time schedule, and the adaptive
// particle-guess heuristic.
package heuristics

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/inferkit/smc-go/pkg/core"
	"github.com/inferkit/smc-go/pkg/errors"
	"github.com/inferkit/smc-go/pkg/smc"
)

// Factory builds a heuristic around an updater, giving adaptive strategies
// access to the evolving posterior.
type Factory func(u *smc.Updater) (core.Heuristic, error)

// Fixed returns the same experiment-parameter record on every call.
type Fixed struct {
	ep core.ExpParams
}

// NewFixedFactory binds the given positional values to the model's schema
// once, at trial start.
func NewFixedFactory(values ...float64) Factory {
	return func(u *smc.Updater) (core.Heuristic, error) {
		ep, err := core.NewExpParams(u.Model().ExpParamsSchema(), values)
		if err != nil {
			return nil, err
		}
		return &Fixed{ep: ep}, nil
	}
}

func (h *Fixed) Design() (core.ExpParams, error) {
	return h.ep, nil
}

// ExpSparse emits a geometrically growing time schedule t_k = base * scale^k
// for models with a single float experiment parameter. Long evolution times
// resolve fine frequency differences, so the schedule sweeps coarse to fine.
type ExpSparse struct {
	schema core.Schema
	base   float64
	scale  float64
	k      int
}

// NewExpSparseFactory builds the schedule; base must be positive and scale
// at least 1.
func NewExpSparseFactory(base, scale float64) Factory {
	return func(u *smc.Updater) (core.Heuristic, error) {
		schema := u.Model().ExpParamsSchema()
		if len(schema) != 1 || schema[0].Kind != core.FieldFloat {
			return nil, errors.New(errors.InvalidInput,
				"exp-sparse heuristic needs a single float experiment parameter")
		}
		if base <= 0 || scale < 1 {
			return nil, errors.WithFields(
				errors.New(errors.InvalidInput, "exp-sparse schedule parameters out of range"),
				errors.Fields{"base": base, "scale": scale},
			)
		}
		return &ExpSparse{schema: schema, base: base, scale: scale}, nil
	}
}

func (h *ExpSparse) Design() (core.ExpParams, error) {
	t := h.base * math.Pow(h.scale, float64(h.k))
	h.k++
	return core.NewExpParams(h.schema, []float64{t})
}

// PGH is the particle-guess heuristic: draw two particles from the current
// posterior and set the evolution time to the inverse of their separation,
// so experiments probe the scale of the remaining uncertainty.
type PGH struct {
	u        *smc.Updater
	schema   core.Schema
	maxDraws int
}

// NewPGHFactory builds a particle-guess heuristic for models with a single
// float experiment parameter.
func NewPGHFactory() Factory {
	return func(u *smc.Updater) (core.Heuristic, error) {
		schema := u.Model().ExpParamsSchema()
		if len(schema) != 1 || schema[0].Kind != core.FieldFloat {
			return nil, errors.New(errors.InvalidInput,
				"particle-guess heuristic needs a single float experiment parameter")
		}
		return &PGH{u: u, schema: schema, maxDraws: 100}, nil
	}
}

func (h *PGH) Design() (core.ExpParams, error) {
	pool := h.u.Pool()
	locs := pool.Locations()
	dim := pool.Dim()

	draw := distuv.NewCategorical(pool.Weights(), h.u.RNG())
	x1 := make([]float64, dim)
	x2 := make([]float64, dim)

	sep := 0.0
	for try := 0; try < h.maxDraws; try++ {
		mat.Row(x1, int(draw.Rand()), locs)
		mat.Row(x2, int(draw.Rand()), locs)
		sep = 0
		for j := range x1 {
			d := x1[j] - x2[j]
			sep += d * d
		}
		sep = math.Sqrt(sep)
		if sep > 0 {
			break
		}
	}
	if sep == 0 {
		// A fully collapsed posterior: fall back to the covariance scale,
		// and past that to unit time.
		tr := 0.0
		cov := pool.Covariance()
		for j := 0; j < dim; j++ {
			tr += cov.At(j, j)
		}
		if tr > 0 {
			sep = math.Sqrt(tr)
		} else {
			sep = 1
		}
	}

	return core.NewExpParams(h.schema, []float64{1 / sep})
}
