package perf

import (
	"context"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/inferkit/smc-go/pkg/core"
	"github.com/inferkit/smc-go/pkg/errors"
	"github.com/inferkit/smc-go/pkg/logging"
	"github.com/inferkit/smc-go/pkg/smc"
)

// TrialOptions configures one trial of sequential estimation.
type TrialOptions struct {
	// Model under inference.
	Model core.Model

	// Prior over the model's parameters.
	Prior core.Distribution

	// NParticles is the SMC particle count.
	NParticles int

	// NExperiments is the number of sequential updates to run.
	NExperiments int

	// NewHeuristic builds the experiment-design heuristic around the trial's
	// updater.
	NewHeuristic func(u *smc.Updater) (core.Heuristic, error)

	// TrueModel generates the experimental data. Defaults to Model; setting
	// it differently exercises model misspecification.
	TrueModel core.Model

	// TruePrior is sampled for the true parameters when TrueParams is nil.
	// Defaults to Prior.
	TruePrior core.Distribution

	// TrueParams fixes the true parameters. It must hold exactly one row:
	// the performance record carries a single outcome axis, so a trial can
	// only follow one true model.
	TrueParams *mat.Dense

	// Seed fixes the trial's RNG stream; 0 means time-seeded.
	Seed uint64

	// UpdaterOptions are passed through to smc.NewUpdater.
	UpdaterOptions []smc.UpdaterOption

	// Logger defaults to the package-global logger.
	Logger *logging.Logger
}

func (o *TrialOptions) validate() error {
	if o.Model == nil {
		return errors.New(errors.InvalidInput, "nil model")
	}
	if o.Prior == nil {
		return errors.New(errors.InvalidInput, "nil prior")
	}
	if o.NewHeuristic == nil {
		return errors.New(errors.InvalidInput, "nil heuristic factory")
	}
	if o.NParticles < 2 {
		return errors.WithFields(
			errors.New(errors.InvalidInput, "particle count must be at least 2"),
			errors.Fields{"n_particles": o.NParticles},
		)
	}
	if o.NExperiments < 1 {
		return errors.WithFields(
			errors.New(errors.InvalidInput, "experiment count must be positive"),
			errors.Fields{"n_experiments": o.NExperiments},
		)
	}

	trueModel := o.TrueModel
	if trueModel == nil {
		trueModel = o.Model
	}
	if o.TrueParams == nil {
		truePrior := o.TruePrior
		if truePrior == nil {
			truePrior = o.Prior
		}
		if truePrior.Dim() != trueModel.NumParameters() {
			return errors.WithFields(
				errors.New(errors.InvalidInput, "true prior dimension does not match the true model"),
				errors.Fields{"want": trueModel.NumParameters(), "got": truePrior.Dim()},
			)
		}
	}
	if o.TrueParams != nil {
		rows, cols := o.TrueParams.Dims()
		if rows != 1 {
			return errors.WithFields(
				errors.New(errors.InvalidInput,
					"exactly one set of true parameters is supported per trial"),
				errors.Fields{"rows": rows},
			)
		}
		if cols != trueModel.NumParameters() {
			return errors.WithFields(
				errors.New(errors.InvalidInput, "true parameter dimension mismatch"),
				errors.Fields{"want": trueModel.NumParameters(), "got": cols},
			)
		}
	}
	return nil
}

// Trial runs one trial: sample a prior particle set, then perform
// NExperiments cycles of heuristic design, simulation from the true model,
// and a timed Bayesian update, recording loss, resample count, elapsed time,
// outcome and experiment parameters per cycle.
func Trial(ctx context.Context, opts TrialOptions) (*Table, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	trueModel := opts.TrueModel
	if trueModel == nil {
		trueModel = opts.Model
	}
	truePrior := opts.TruePrior
	if truePrior == nil {
		truePrior = opts.Prior
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.GetLogger()
	}

	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rnd := rand.New(rand.NewSource(seed))

	trueParams := make([]float64, trueModel.NumParameters())
	if opts.TrueParams != nil {
		mat.Row(trueParams, 0, opts.TrueParams)
	} else {
		mat.Row(trueParams, 0, truePrior.Sample(rnd, 1))
	}

	updaterOpts := append([]smc.UpdaterOption{smc.WithRNG(rnd), smc.WithLogger(logger)},
		opts.UpdaterOptions...)
	updater, err := smc.NewUpdater(opts.Model, opts.NParticles, opts.Prior, updaterOpts...)
	if err != nil {
		return nil, err
	}

	heuristic, err := opts.NewHeuristic(updater)
	if err != nil {
		return nil, errors.Wrap(err, errors.TrialFailed, "heuristic construction failed")
	}

	table := NewTable(opts.Model.ExpParamsSchema())
	ctx = logging.WithTrialID(ctx, table.ID.String())
	logger.Debug(ctx, "trial started: %d particles, %d experiments, seed %d",
		opts.NParticles, opts.NExperiments, seed)

	q := opts.Model.LossMatrix()
	dim := opts.Model.NumParameters()
	delta := mat.NewVecDense(dim, nil)

	for idx := 0; idx < opts.NExperiments; idx++ {
		expCtx := logging.WithExperiment(ctx, idx)
		if err := errors.CheckContext(expCtx, "trial"); err != nil {
			return nil, err
		}

		expparams, err := heuristic.Design()
		if err != nil {
			return nil, trialErr(err, "experiment design failed", idx)
		}

		outcome, err := trueModel.SimulateExperiment(rnd, trueParams, expparams)
		if err != nil {
			return nil, trialErr(err, "simulation failed", idx)
		}

		timer := NewTimer()
		err = updater.Update(expCtx, outcome, expparams)
		timer.Stop()
		if err != nil {
			return nil, trialErr(err, "update failed", idx)
		}

		mean := updater.EstMean()
		for j := 0; j < dim; j++ {
			delta.SetVec(j, mean[j]-trueParams[j])
		}
		loss := mat.Inner(delta, q, delta)

		rec := Record{
			Loss:          loss,
			ResampleCount: updater.ResampleCount(),
			ElapsedTime:   timer.DeltaT(),
			Outcome:       outcome,
			ExpParams:     expparams,
		}
		if err := table.Append(rec); err != nil {
			return nil, trialErr(err, "record append failed", idx)
		}
	}

	logger.Debug(ctx, "trial finished: final loss %.6g, %d resamples, %.3fs",
		table.FinalLoss(), updater.ResampleCount(), table.TotalElapsed())
	return table, nil
}

func trialErr(err error, message string, experiment int) error {
	return errors.WithFields(
		errors.Wrap(err, errors.TrialFailed, message),
		errors.Fields{"experiment": experiment},
	)
}
