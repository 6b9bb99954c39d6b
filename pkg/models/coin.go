// Package models provides reference experiment models used by the examples
// and tests: a Bernoulli coin and a single-qubit Larmor precession model.
package models

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/inferkit/smc-go/pkg/core"
	"github.com/inferkit/smc-go/pkg/errors"
)

// CoinModel is the simplest nontrivial experiment: one unknown bias p, one
// coin flip per experiment, outcome 1 with probability p. It has no tunable
// experiment parameters, so its schema is empty.
type CoinModel struct{}

// NewCoinModel returns a Bernoulli coin model.
func NewCoinModel() *CoinModel {
	return &CoinModel{}
}

func (m *CoinModel) NumParameters() int {
	return 1
}

func (m *CoinModel) ExpParamsSchema() core.Schema {
	return core.Schema{}
}

func (m *CoinModel) LossMatrix() *mat.SymDense {
	return mat.NewSymDense(1, []float64{1})
}

func (m *CoinModel) ValidParams(params []float64) bool {
	return len(params) == 1 && params[0] >= 0 && params[0] <= 1
}

func (m *CoinModel) SimulateExperiment(rnd *rand.Rand, params []float64, ep core.ExpParams) (int, error) {
	if !m.ValidParams(params) {
		return 0, errors.WithFields(
			errors.New(errors.InvalidInput, "coin bias must lie in [0, 1]"),
			errors.Fields{"params": params},
		)
	}
	flip := distuv.Bernoulli{P: params[0], Src: rnd}
	return int(flip.Rand()), nil
}

func (m *CoinModel) Likelihood(outcome int, locations mat.Matrix, ep core.ExpParams) ([]float64, error) {
	if outcome != 0 && outcome != 1 {
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "coin outcome must be 0 or 1"),
			errors.Fields{"outcome": outcome},
		)
	}

	n, _ := locations.Dims()
	liks := make([]float64, n)
	for i := 0; i < n; i++ {
		p := locations.At(i, 0)
		// Particles pushed outside [0, 1] carry no likelihood rather than a
		// negative one.
		if p < 0 {
			p = 0
		} else if p > 1 {
			p = 1
		}
		if outcome == 1 {
			liks[i] = p
		} else {
			liks[i] = 1 - p
		}
	}
	return liks, nil
}
