package perf

import (
	"context"
	"time"

	"github.com/inferkit/smc-go/pkg/errors"
	"github.com/inferkit/smc-go/pkg/logging"
)

// RunOptions configures a multi-trial performance run.
type RunOptions struct {
	// Trial is the per-trial configuration; each trial gets an independent
	// RNG stream derived from Trial.Seed.
	Trial TrialOptions

	// NTrials is the number of independent trials.
	NTrials int

	// Apply dispatches trials. Defaults to Serial; Parallel runs them on a
	// worker pool behind the same contract.
	Apply Apply

	// Reporter, when set, receives completed-trial counts, best effort.
	Reporter ProgressReporter

	// Logger defaults to the package-global logger.
	Logger *logging.Logger
}

// Run executes NTrials independent trials through the configured dispatcher
// and returns their performance tables in dispatch order. Trials share no
// mutable state; a failing trial's error propagates when its result is
// collected, without suppressing trials that already succeeded.
func Run(ctx context.Context, opts RunOptions) ([]*Table, error) {
	if opts.NTrials < 1 {
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "trial count must be positive"),
			errors.Fields{"n_trials": opts.NTrials},
		)
	}
	// Caller-input problems, including the single-true-model precondition,
	// surface before any trial executes.
	if err := opts.Trial.validate(); err != nil {
		return nil, err
	}

	apply := opts.Apply
	if apply == nil {
		apply = NewSerial()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.GetLogger()
	}

	var notifier *progressNotifier
	if opts.Reporter != nil {
		notifier = newProgressNotifier(opts.Reporter, logger)
		notifier.Start(ctx)
		defer notifier.Stop(ctx)
	}

	baseSeed := opts.Trial.Seed
	if baseSeed == 0 {
		baseSeed = uint64(time.Now().UnixNano())
	}

	// Dispatch every trial first; collect afterwards so parallel dispatchers
	// overlap the work.
	handles := make([]Handle, opts.NTrials)
	for i := 0; i < opts.NTrials; i++ {
		trialOpts := opts.Trial
		trialOpts.Seed = trialSeed(baseSeed, i)
		trialOpts.Logger = logger
		handles[i] = apply.Apply(func() (*Table, error) {
			return Trial(ctx, trialOpts)
		})
	}

	tables := make([]*Table, opts.NTrials)
	for i, h := range handles {
		table, err := h.Get()
		if err != nil {
			return nil, errors.WithFields(
				errors.Wrap(err, errors.TrialFailed, "trial failed"),
				errors.Fields{"trial": i},
			)
		}
		tables[i] = table
		if notifier != nil {
			notifier.Set(i + 1)
		}
	}

	return tables, nil
}

// trialSeed derives an independent per-trial seed via a splitmix64 step, so
// neighbouring trials do not share correlated streams.
func trialSeed(base uint64, trial int) uint64 {
	z := base + uint64(trial+1)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z ^= z >> 31
	if z == 0 {
		z = 1 // seed 0 means time-seeded elsewhere
	}
	return z
}
