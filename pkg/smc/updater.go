package smc

import (
	"context"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/inferkit/smc-go/pkg/core"
	"github.com/inferkit/smc-go/pkg/errors"
	"github.com/inferkit/smc-go/pkg/logging"
)

// Updater performs the sequential Bayesian update: likelihood evaluation,
// reweighting, degeneracy check and optional resampling, one experiment at a
// time. Updates must be applied in the order the experiments were performed;
// the updater does not reorder on the caller's behalf.
//
// An Updater is not safe for concurrent use. Each trial owns its own
// instance and its own RNG stream.
type Updater struct {
	model     core.Model
	pool      *Pool
	resampler Resampler
	rnd       *rand.Rand
	logger    *logging.Logger

	updates       int
	resampleCount int
}

// UpdaterOption configures NewUpdater.
type UpdaterOption func(*Updater)

// WithRNG fixes the updater's random stream; without it a time-seeded stream
// is used.
func WithRNG(rnd *rand.Rand) UpdaterOption {
	return func(u *Updater) {
		u.rnd = rnd
	}
}

// WithSeed derives the updater's random stream from a fixed seed.
func WithSeed(seed uint64) UpdaterOption {
	return func(u *Updater) {
		u.rnd = rand.New(rand.NewSource(seed))
	}
}

// WithResampler replaces the default Liu-West resampling policy.
func WithResampler(r Resampler) UpdaterOption {
	return func(u *Updater) {
		u.resampler = r
	}
}

// WithLogger replaces the package-global logger.
func WithLogger(l *logging.Logger) UpdaterOption {
	return func(u *Updater) {
		u.logger = l
	}
}

// NewUpdater samples nParticles hypotheses from the prior and prepares the
// update loop. The prior dimension must match the model's parameter count.
func NewUpdater(model core.Model, nParticles int, prior core.Distribution, opts ...UpdaterOption) (*Updater, error) {
	if model == nil {
		return nil, errors.New(errors.InvalidInput, "nil model")
	}
	if prior == nil {
		return nil, errors.New(errors.InvalidInput, "nil prior")
	}
	if prior.Dim() != model.NumParameters() {
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "prior dimension does not match model parameter count"),
			errors.Fields{"prior_dim": prior.Dim(), "model_params": model.NumParameters()},
		)
	}
	if err := model.ExpParamsSchema().Validate(); err != nil {
		return nil, err
	}

	u := &Updater{model: model}
	for _, opt := range opts {
		opt(u)
	}
	if u.rnd == nil {
		u.rnd = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	if u.resampler == nil {
		var rOpts []LiuWestOption
		if cm, ok := model.(core.ConstrainedModel); ok {
			rOpts = append(rOpts, WithValidity(cm.ValidParams))
		}
		u.resampler = NewLiuWestResampler(rOpts...)
	}
	if u.logger == nil {
		u.logger = logging.GetLogger()
	}

	pool, err := NewPool(u.rnd, prior, nParticles)
	if err != nil {
		return nil, err
	}
	u.pool = pool
	return u, nil
}

// Update consumes one datum: it evaluates the per-particle likelihood of the
// outcome under expparams, reweights the pool, and resamples if the
// effective sample size dropped below the policy threshold.
//
// An all-zero likelihood vector surfaces as a NoLikelihoodSupport error over
// a DegeneratePosterior cause; NaN/Inf weights surface as NumericFailure.
// Both leave the pool in its pre-update state.
func (u *Updater) Update(ctx context.Context, outcome int, expparams core.ExpParams) error {
	if err := errors.CheckContext(ctx, "update"); err != nil {
		return err
	}
	if err := u.checkSchema(expparams); err != nil {
		return err
	}

	likelihoods, err := u.model.Likelihood(outcome, u.pool.Locations(), expparams)
	if err != nil {
		code := errors.Code(err)
		if code == errors.Unknown {
			code = errors.NumericFailure
		}
		return errors.Wrap(err, code, "likelihood evaluation failed")
	}

	if err := u.pool.Reweight(likelihoods); err != nil {
		if errors.Code(err) == errors.DegeneratePosterior {
			return errors.WithFields(
				errors.Wrap(err, errors.NoLikelihoodSupport, "no particle supports the observed outcome"),
				errors.Fields{"outcome": outcome, "update": u.updates},
			)
		}
		return errors.WithFields(err, errors.Fields{"outcome": outcome, "update": u.updates})
	}

	if u.resampler.ShouldResample(u.pool) {
		ess := u.pool.ESS()
		if err := u.resampler.Resample(u.rnd, u.pool); err != nil {
			return err
		}
		u.resampleCount++
		u.logger.Debug(ctx, "resampled: ess %.1f of %d particles, count %d",
			ess, u.pool.Len(), u.resampleCount)
	}

	u.updates++
	return nil
}

// EstMean returns the current posterior-mean estimate. Valid at any time,
// including before the first update, when it is the prior mean.
func (u *Updater) EstMean() []float64 {
	return u.pool.Mean()
}

// EstCovarianceMtx returns the current posterior covariance estimate.
func (u *Updater) EstCovarianceMtx() *mat.SymDense {
	return u.pool.Covariance()
}

// EstCredibleRegion returns the highest-weight particles covering the given
// posterior mass.
func (u *Updater) EstCredibleRegion(level float64) (*mat.Dense, error) {
	return u.pool.CredibleRegion(level)
}

// ResampleCount returns the number of triggered resamples so far; it is
// monotonically non-decreasing over the updater's lifetime.
func (u *Updater) ResampleCount() int {
	return u.resampleCount
}

// Updates returns the number of completed update calls.
func (u *Updater) Updates() int {
	return u.updates
}

// Pool exposes the particle pool for heuristics that read posterior state.
func (u *Updater) Pool() *Pool {
	return u.pool
}

// RNG exposes the updater's random stream so collaborators (heuristics,
// simulators in the same trial) can share it.
func (u *Updater) RNG() *rand.Rand {
	return u.rnd
}

// Model returns the model under inference.
func (u *Updater) Model() core.Model {
	return u.model
}

func (u *Updater) checkSchema(expparams core.ExpParams) error {
	want := u.model.ExpParamsSchema()
	got := expparams.Schema()
	if len(want) != len(got) {
		return errors.WithFields(
			errors.New(errors.InvalidInput, "experiment parameters bound to wrong schema"),
			errors.Fields{"want_fields": len(want), "got_fields": len(got)},
		)
	}
	for i := range want {
		if want[i].Name != got[i].Name {
			return errors.WithFields(
				errors.New(errors.InvalidInput, "experiment parameter field mismatch"),
				errors.Fields{"index": i, "want": want[i].Name, "got": got[i].Name},
			)
		}
	}
	return nil
}
