// Package testutil provides test doubles shared across package tests.
package testutil

import (
	"sync"

	"github.com/stretchr/testify/mock"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/inferkit/smc-go/pkg/core"
)

// MockProgressReporter is a mock implementation of perf.ProgressReporter.
type MockProgressReporter struct {
	mock.Mock
	mu      sync.Mutex
	updates []int
	deleted bool
}

func (m *MockProgressReporter) Update(progress int) error {
	args := m.Called(progress)
	m.mu.Lock()
	m.updates = append(m.updates, progress)
	m.mu.Unlock()
	return args.Error(0)
}

func (m *MockProgressReporter) Delete() error {
	args := m.Called()
	m.mu.Lock()
	m.deleted = true
	m.mu.Unlock()
	return args.Error(0)
}

// Updates returns the progress values received so far.
func (m *MockProgressReporter) Updates() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.updates))
	copy(out, m.updates)
	return out
}

// Deleted reports whether Delete was called.
func (m *MockProgressReporter) Deleted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleted
}

// UniformOutcomeModel returns the same likelihood for every particle
// regardless of outcome: an uninformative experiment. Updates against it
// must leave the posterior untouched.
type UniformOutcomeModel struct {
	Params int
}

func (m *UniformOutcomeModel) NumParameters() int {
	if m.Params == 0 {
		return 1
	}
	return m.Params
}

func (m *UniformOutcomeModel) ExpParamsSchema() core.Schema {
	return core.Schema{}
}

func (m *UniformOutcomeModel) LossMatrix() *mat.SymDense {
	d := m.NumParameters()
	q := mat.NewSymDense(d, nil)
	for i := 0; i < d; i++ {
		q.SetSym(i, i, 1)
	}
	return q
}

func (m *UniformOutcomeModel) SimulateExperiment(rnd *rand.Rand, params []float64, ep core.ExpParams) (int, error) {
	return int(rnd.Uint64() & 1), nil
}

func (m *UniformOutcomeModel) Likelihood(outcome int, locations mat.Matrix, ep core.ExpParams) ([]float64, error) {
	n, _ := locations.Dims()
	liks := make([]float64, n)
	for i := range liks {
		liks[i] = 0.5
	}
	return liks, nil
}

// ZeroLikelihoodModel assigns zero likelihood to every particle, forcing the
// degenerate-posterior path.
type ZeroLikelihoodModel struct {
	UniformOutcomeModel
}

func (m *ZeroLikelihoodModel) Likelihood(outcome int, locations mat.Matrix, ep core.ExpParams) ([]float64, error) {
	n, _ := locations.Dims()
	return make([]float64, n), nil
}
