package core

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Model maps (parameter vector, experiment parameters) to outcome
// probabilities and a simulation procedure. Implementations are immutable
// from the updater's point of view: repeated calls with the same arguments
// describe the same experiment.
type Model interface {
	// NumParameters returns the dimension of a parameter vector.
	NumParameters() int

	// ExpParamsSchema declares the model's experiment-parameter record
	// layout. Heuristics must produce records bound to this schema.
	ExpParamsSchema() Schema

	// LossMatrix returns the quadratic loss weighting matrix Q, of size
	// NumParameters x NumParameters.
	LossMatrix() *mat.SymDense

	// SimulateExperiment draws one outcome for the given true parameters
	// and experiment configuration.
	SimulateExperiment(rnd *rand.Rand, params []float64, ep ExpParams) (int, error)

	// Likelihood evaluates Pr(outcome | params, ep) for every row of
	// locations in one call. The returned slice is index-aligned with the
	// rows of locations. This is the dominant numerical cost of an update
	// and must not be called per-particle.
	Likelihood(outcome int, locations mat.Matrix, ep ExpParams) ([]float64, error)
}

// ConstrainedModel restricts the valid region of parameter space. Resampling
// uses it to reject kernel-perturbed particles that land outside the region.
type ConstrainedModel interface {
	Model

	// ValidParams reports whether a single parameter vector is admissible.
	ValidParams(params []float64) bool
}

// Distribution is a prior (or proposal) over parameter vectors.
type Distribution interface {
	// Dim returns the dimension of a sampled vector.
	Dim() int

	// Sample draws n parameter vectors, returned as an n x Dim matrix with
	// one vector per row.
	Sample(rnd *rand.Rand, n int) *mat.Dense
}

// Heuristic chooses the next experiment to perform. Implementations are
// typically constructed around an updater so the choice can adapt to the
// current posterior.
type Heuristic interface {
	// Design produces one experiment-parameter record.
	Design() (ExpParams, error)
}
