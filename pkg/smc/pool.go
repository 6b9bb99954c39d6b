// Package smc implements the sequential Monte Carlo core: the weighted
// particle pool, the Liu-West resampler and the sequential Bayesian updater.
package smc

import (
	"math"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/inferkit/smc-go/pkg/core"
	"github.com/inferkit/smc-go/pkg/errors"
)

// Pool owns the weighted particle set: n parameter hypotheses paired
// one-to-one with non-negative importance weights summing to 1. The particle
// count is fixed for the lifetime of the pool.
type Pool struct {
	n, d      int
	locations *mat.Dense // n x d, row i is particle i
	weights   []float64
	scratch   []float64 // reweight workspace, so errors leave weights intact
}

// NewPool draws n particles from the prior and assigns uniform weights.
func NewPool(rnd *rand.Rand, prior core.Distribution, n int) (*Pool, error) {
	if prior == nil {
		return nil, errors.New(errors.InvalidInput, "nil prior")
	}
	if n < 2 {
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "particle count must be at least 2"),
			errors.Fields{"n_particles": n},
		)
	}
	return NewPoolFromLocations(prior.Sample(rnd, n))
}

// NewPoolFromLocations wraps an existing n x d location matrix with uniform
// weights. The matrix is owned by the pool afterwards.
func NewPoolFromLocations(locations *mat.Dense) (*Pool, error) {
	n, d := locations.Dims()
	if n < 2 || d < 1 {
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "degenerate particle matrix"),
			errors.Fields{"rows": n, "cols": d},
		)
	}
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1 / float64(n)
	}
	return &Pool{
		n:         n,
		d:         d,
		locations: locations,
		weights:   weights,
		scratch:   make([]float64, n),
	}, nil
}

// Len returns the particle count.
func (p *Pool) Len() int {
	return p.n
}

// Dim returns the parameter dimension.
func (p *Pool) Dim() int {
	return p.d
}

// Weights returns a copy of the importance weights, index-aligned with
// Locations rows.
func (p *Pool) Weights() []float64 {
	w := make([]float64, p.n)
	copy(w, p.weights)
	return w
}

// Locations returns the particle location matrix. Callers must treat it as
// read-only; mutating it corrupts the posterior.
func (p *Pool) Locations() *mat.Dense {
	return p.locations
}

// Reweight multiplies each weight by the corresponding likelihood and
// renormalizes. A zero total is a DegeneratePosterior error and a NaN/Inf
// likelihood or total is a NumericFailure; in both cases the pool is left
// unchanged so it stays queryable.
func (p *Pool) Reweight(likelihoods []float64) error {
	if len(likelihoods) != p.n {
		return errors.WithFields(
			errors.New(errors.InvalidInput, "likelihood vector length mismatch"),
			errors.Fields{"want": p.n, "got": len(likelihoods)},
		)
	}

	total := 0.0
	for i, lik := range likelihoods {
		if math.IsNaN(lik) || math.IsInf(lik, 0) || lik < 0 {
			return errors.WithFields(
				errors.New(errors.NumericFailure, "invalid likelihood value"),
				errors.Fields{"particle": i, "likelihood": lik},
			)
		}
		p.scratch[i] = p.weights[i] * lik
		total += p.scratch[i]
	}

	if math.IsNaN(total) || math.IsInf(total, 0) {
		return errors.WithFields(
			errors.New(errors.NumericFailure, "non-finite weight sum after reweighting"),
			errors.Fields{"sum": total},
		)
	}
	if total == 0 {
		return errors.New(errors.DegeneratePosterior,
			"all particle weights collapsed to zero: the observed data are impossible under every retained hypothesis")
	}

	for i := range p.scratch {
		p.weights[i] = p.scratch[i] / total
	}
	return nil
}

// Mean returns the weighted average location, the posterior-mean estimate.
func (p *Pool) Mean() []float64 {
	mean := make([]float64, p.d)
	for i := 0; i < p.n; i++ {
		w := p.weights[i]
		for j := 0; j < p.d; j++ {
			mean[j] += w * p.locations.At(i, j)
		}
	}
	return mean
}

// Covariance returns the weighted second-moment matrix of the particle set.
func (p *Pool) Covariance() *mat.SymDense {
	cov := mat.NewSymDense(p.d, nil)
	stat.CovarianceMatrix(cov, p.locations, p.weights)
	return cov
}

// ESS is the effective sample size 1 / sum(w_i^2); it equals n for uniform
// weights and approaches 1 as the pool degenerates.
func (p *Pool) ESS() float64 {
	sumSq := 0.0
	for _, w := range p.weights {
		sumSq += w * w
	}
	return 1 / sumSq
}

// CredibleRegion returns the locations of the smallest set of
// highest-weighted particles whose total mass reaches level.
func (p *Pool) CredibleRegion(level float64) (*mat.Dense, error) {
	if level <= 0 || level > 1 {
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "credible level must be in (0, 1]"),
			errors.Fields{"level": level},
		)
	}

	order := make([]int, p.n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return p.weights[order[a]] > p.weights[order[b]]
	})

	mass := 0.0
	count := 0
	for _, idx := range order {
		mass += p.weights[idx]
		count++
		if mass >= level {
			break
		}
	}

	region := mat.NewDense(count, p.d, nil)
	row := make([]float64, p.d)
	for i := 0; i < count; i++ {
		mat.Row(row, order[i], p.locations)
		region.SetRow(i, row)
	}
	return region, nil
}

// Replace atomically swaps in a new particle set, used by resampling. The
// new weights are renormalized; a zero or non-finite sum is rejected.
func (p *Pool) Replace(locations *mat.Dense, weights []float64) error {
	n, d := locations.Dims()
	if n != p.n || d != p.d {
		return errors.WithFields(
			errors.New(errors.InvalidInput, "replacement particle matrix has wrong shape"),
			errors.Fields{"want_rows": p.n, "want_cols": p.d, "rows": n, "cols": d},
		)
	}
	if len(weights) != p.n {
		return errors.New(errors.InvalidInput, "replacement weight vector length mismatch")
	}

	total := 0.0
	for _, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return errors.New(errors.NumericFailure, "invalid replacement weight")
		}
		total += w
	}
	if total == 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return errors.New(errors.NumericFailure, "replacement weights do not normalize")
	}

	p.locations = locations
	for i, w := range weights {
		p.weights[i] = w / total
	}
	return nil
}
