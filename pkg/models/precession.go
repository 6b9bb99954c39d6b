package models

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/inferkit/smc-go/pkg/core"
	"github.com/inferkit/smc-go/pkg/errors"
)

// FieldT names the evolution-time experiment parameter of PrecessionModel.
const FieldT = "t"

// PrecessionModel is single-parameter Larmor frequency estimation: the
// unknown is a precession frequency omega, the experiment parameter is an
// evolution time t, and the excited-state outcome probability is
// sin^2(omega * t / 2).
type PrecessionModel struct {
	minFreq float64
}

// PrecessionOption configures a PrecessionModel.
type PrecessionOption func(*PrecessionModel)

// WithMinFreq sets the lowest admissible frequency (default 0).
func WithMinFreq(min float64) PrecessionOption {
	return func(m *PrecessionModel) {
		m.minFreq = min
	}
}

// NewPrecessionModel returns a Larmor precession model.
func NewPrecessionModel(opts ...PrecessionOption) *PrecessionModel {
	m := &PrecessionModel{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *PrecessionModel) NumParameters() int {
	return 1
}

func (m *PrecessionModel) ExpParamsSchema() core.Schema {
	return core.Schema{{Name: FieldT, Kind: core.FieldFloat}}
}

func (m *PrecessionModel) LossMatrix() *mat.SymDense {
	return mat.NewSymDense(1, []float64{1})
}

func (m *PrecessionModel) ValidParams(params []float64) bool {
	return len(params) == 1 && params[0] >= m.minFreq
}

// pr1 is the excited-state probability for frequency omega at time t.
func pr1(omega, t float64) float64 {
	s := math.Sin(omega * t / 2)
	return s * s
}

func (m *PrecessionModel) SimulateExperiment(rnd *rand.Rand, params []float64, ep core.ExpParams) (int, error) {
	t, ok := ep.Get(FieldT)
	if !ok {
		return 0, errors.New(errors.InvalidInput, "missing evolution time t")
	}
	if !m.ValidParams(params) {
		return 0, errors.WithFields(
			errors.New(errors.InvalidInput, "invalid precession frequency"),
			errors.Fields{"params": params},
		)
	}
	shot := distuv.Bernoulli{P: pr1(params[0], t), Src: rnd}
	return int(shot.Rand()), nil
}

func (m *PrecessionModel) Likelihood(outcome int, locations mat.Matrix, ep core.ExpParams) ([]float64, error) {
	if outcome != 0 && outcome != 1 {
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "precession outcome must be 0 or 1"),
			errors.Fields{"outcome": outcome},
		)
	}
	t, ok := ep.Get(FieldT)
	if !ok {
		return nil, errors.New(errors.InvalidInput, "missing evolution time t")
	}

	n, _ := locations.Dims()
	liks := make([]float64, n)
	for i := 0; i < n; i++ {
		p := pr1(locations.At(i, 0), t)
		if outcome == 1 {
			liks[i] = p
		} else {
			liks[i] = 1 - p
		}
	}
	return liks, nil
}
