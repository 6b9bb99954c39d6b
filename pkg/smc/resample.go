package smc

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/inferkit/smc-go/pkg/errors"
)

// Resampler detects weight degeneracy and regenerates the particle set from
// the current weighted empirical distribution.
type Resampler interface {
	// ShouldResample reports whether the pool is degenerate enough to warrant
	// resampling.
	ShouldResample(p *Pool) bool

	// Resample redraws the pool in place and resets weights to uniform.
	Resample(rnd *rand.Rand, p *Pool) error
}

// LiuWestResampler draws ancestors from the weighted empirical distribution
// and perturbs them with a Gaussian kernel, mean-shrunk so that the posterior
// mean and covariance are preserved in expectation: a new particle is
// a*x + (1-a)*mean + N(0, (1-a^2)*Cov).
type LiuWestResampler struct {
	a         float64
	threshold float64 // ESS fraction of n below which resampling fires
	maxTries  int
	valid     func(params []float64) bool
}

// LiuWestOption configures a LiuWestResampler.
type LiuWestOption func(*LiuWestResampler)

// WithShrinkage sets the Liu-West shrinkage parameter a in (0, 1]. a = 1
// disables the kernel perturbation entirely.
func WithShrinkage(a float64) LiuWestOption {
	return func(r *LiuWestResampler) {
		r.a = a
	}
}

// WithThreshold sets the degeneracy threshold as a fraction of the particle
// count: resampling fires when ESS < threshold * n.
func WithThreshold(fraction float64) LiuWestOption {
	return func(r *LiuWestResampler) {
		r.threshold = fraction
	}
}

// WithValidity installs a parameter-constraint predicate; perturbed particles
// failing it are redrawn, keeping the unperturbed ancestor after maxTries.
func WithValidity(valid func(params []float64) bool) LiuWestOption {
	return func(r *LiuWestResampler) {
		r.valid = valid
	}
}

// WithKernelRetries bounds the per-particle validity redraws.
func WithKernelRetries(n int) LiuWestOption {
	return func(r *LiuWestResampler) {
		r.maxTries = n
	}
}

// NewLiuWestResampler returns a resampler with a = 0.98 and an ESS threshold
// of half the particle count.
func NewLiuWestResampler(opts ...LiuWestOption) *LiuWestResampler {
	r := &LiuWestResampler{
		a:         0.98,
		threshold: 0.5,
		maxTries:  100,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *LiuWestResampler) ShouldResample(p *Pool) bool {
	return p.ESS() < r.threshold*float64(p.Len())
}

func (r *LiuWestResampler) Resample(rnd *rand.Rand, p *Pool) error {
	n, d := p.Len(), p.Dim()
	mean := p.Mean()

	kernel, err := r.kernel(rnd, p)
	if err != nil {
		return err
	}

	ancestors := distuv.NewCategorical(p.Weights(), rnd)

	newLocs := mat.NewDense(n, d, nil)
	ancestor := make([]float64, d)
	candidate := make([]float64, d)
	noise := make([]float64, d)

	for i := 0; i < n; i++ {
		mat.Row(ancestor, int(ancestors.Rand()), p.Locations())

		accepted := false
		for try := 0; try <= r.maxTries; try++ {
			if kernel != nil {
				kernel.Rand(noise)
			}
			for j := 0; j < d; j++ {
				candidate[j] = r.a*ancestor[j] + (1-r.a)*mean[j] + noise[j]
			}
			if r.valid == nil || r.valid(candidate) {
				accepted = true
				break
			}
			if kernel == nil {
				break // deterministic shrink cannot improve on retry
			}
		}
		if !accepted {
			// Fall back to the untouched ancestor, which was valid by
			// construction.
			copy(candidate, ancestor)
		}
		newLocs.SetRow(i, candidate)
	}

	uniform := make([]float64, n)
	for i := range uniform {
		uniform[i] = 1 / float64(n)
	}
	if err := p.Replace(newLocs, uniform); err != nil {
		return errors.Wrap(err, errors.ResamplingFailed, "failed to install resampled particles")
	}
	return nil
}

// kernel builds the zero-mean perturbation distribution N(0, (1-a^2)*Cov),
// or nil when the shrinkage disables it. A covariance that is not positive
// definite gets a small diagonal ridge before giving up.
func (r *LiuWestResampler) kernel(rnd *rand.Rand, p *Pool) (*distmv.Normal, error) {
	h2 := 1 - r.a*r.a
	if h2 <= 0 {
		return nil, nil
	}

	d := p.Dim()
	cov := p.Covariance()
	kcov := mat.NewSymDense(d, nil)
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			kcov.SetSym(i, j, h2*cov.At(i, j))
		}
	}

	zero := make([]float64, d)
	if kernel, ok := distmv.NewNormal(zero, kcov, rnd); ok {
		return kernel, nil
	}

	for i := 0; i < d; i++ {
		kcov.SetSym(i, i, kcov.At(i, i)+1e-12)
	}
	kernel, ok := distmv.NewNormal(zero, kcov, rnd)
	if !ok {
		return nil, errors.New(errors.ResamplingFailed,
			"kernel covariance is not positive definite")
	}
	return kernel, nil
}
