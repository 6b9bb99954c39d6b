// Package runner turns a validated configuration into an executed benchmark.
package runner

import (
	"context"
	"fmt"
	"io"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/inferkit/smc-go/pkg/config"
	"github.com/inferkit/smc-go/pkg/core"
	"github.com/inferkit/smc-go/pkg/distributions"
	"github.com/inferkit/smc-go/pkg/errors"
	"github.com/inferkit/smc-go/pkg/heuristics"
	"github.com/inferkit/smc-go/pkg/logging"
	"github.com/inferkit/smc-go/pkg/models"
	"github.com/inferkit/smc-go/pkg/perf"
	"github.com/inferkit/smc-go/pkg/smc"
)

// Execute runs the configured benchmark and writes a summary to out.
func Execute(ctx context.Context, cfg *config.Config, out io.Writer) error {
	logger, closeLogs, err := buildLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer closeLogs()

	model, err := buildModel(cfg.Model)
	if err != nil {
		return err
	}
	if len(cfg.Model.PriorLower) != model.NumParameters() {
		return errors.WithFields(
			errors.New(errors.ValidationFailed, "prior dimension does not match the model"),
			errors.Fields{"model": cfg.Model.Name, "want": model.NumParameters()},
		)
	}

	heuristic, err := buildHeuristic(cfg.Heuristic)
	if err != nil {
		return err
	}

	resampler := smc.NewLiuWestResampler(
		smc.WithShrinkage(cfg.Estimation.ResampleA),
		smc.WithThreshold(cfg.Estimation.ResampleThreshold),
	)

	trial := perf.TrialOptions{
		Model:          model,
		Prior:          distributions.NewUniform(cfg.Model.PriorLower, cfg.Model.PriorUpper),
		NParticles:     cfg.Estimation.Particles,
		NExperiments:   cfg.Estimation.Experiments,
		NewHeuristic:   heuristic,
		Seed:           cfg.Estimation.Seed,
		UpdaterOptions: []smc.UpdaterOption{smc.WithResampler(resampler)},
		Logger:         logger,
	}
	if len(cfg.Model.TrueParams) > 0 {
		params := make([]float64, len(cfg.Model.TrueParams))
		copy(params, cfg.Model.TrueParams)
		trial.TrueParams = mat.NewDense(1, len(params), params)
	}

	runOpts := perf.RunOptions{
		Trial:    trial,
		NTrials:  cfg.Estimation.Trials,
		Reporter: &consoleReporter{out: out},
		Logger:   logger,
	}
	if cfg.Concurrency.Workers > 0 {
		par := perf.NewParallel(cfg.Concurrency.Workers)
		defer par.Wait()
		runOpts.Apply = par
	}

	tables, err := perf.Run(ctx, runOpts)
	if err != nil {
		return err
	}

	if err := saveResults(ctx, cfg.Output, tables); err != nil {
		return err
	}
	printSummary(out, cfg, tables)
	return nil
}

func buildModel(cfg config.ModelConfig) (core.Model, error) {
	switch cfg.Name {
	case "coin":
		return models.NewCoinModel(), nil
	case "precession":
		return models.NewPrecessionModel(), nil
	default:
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "unknown model"),
			errors.Fields{"name": cfg.Name},
		)
	}
}

func buildHeuristic(cfg config.HeuristicConfig) (heuristics.Factory, error) {
	switch cfg.Name {
	case "fixed":
		return heuristics.NewFixedFactory(cfg.Values...), nil
	case "expsparse":
		return heuristics.NewExpSparseFactory(cfg.Base, cfg.Scale), nil
	case "pgh":
		return heuristics.NewPGHFactory(), nil
	default:
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "unknown heuristic"),
			errors.Fields{"name": cfg.Name},
		)
	}
}

func buildLogger(cfg config.LoggingConfig) (*logging.Logger, func(), error) {
	severity := logging.INFO
	if cfg.Level != "" {
		severity = logging.ParseSeverity(cfg.Level)
	}

	outputs := []logging.Output{logging.NewConsoleOutput(true)}
	closeLogs := func() {}
	if cfg.File != "" {
		fileOut, err := logging.NewFileOutput(cfg.File)
		if err != nil {
			return nil, nil, errors.WithFields(
				errors.Wrap(err, errors.InvalidInput, "failed to open log file"),
				errors.Fields{"path": cfg.File},
			)
		}
		outputs = append(outputs, fileOut)
		closeLogs = func() { _ = fileOut.Close() }
	}

	logger := logging.NewLogger(logging.Config{
		Severity: severity,
		Outputs:  outputs,
	})
	logging.SetLogger(logger)
	return logger, closeLogs, nil
}

func saveResults(ctx context.Context, cfg config.OutputConfig, tables []*perf.Table) error {
	if cfg.SQLitePath != "" {
		store, err := perf.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.SaveTables(ctx, tables); err != nil {
			return err
		}
	}
	if cfg.ParquetPath != "" {
		if err := perf.ExportParquet(cfg.ParquetPath, tables); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(out io.Writer, cfg *config.Config, tables []*perf.Table) {
	finals := make([]float64, len(tables))
	elapsed := 0.0
	records := 0
	resamples := 0
	for i, t := range tables {
		finals[i] = t.FinalLoss()
		elapsed += t.TotalElapsed()
		records += t.Len()
		if n := t.Len(); n > 0 {
			resamples += t.Records[n-1].ResampleCount
		}
	}

	p := message.NewPrinter(language.English)
	p.Fprintf(out, "\nmodel      %s (%d particles, %d experiments per trial)\n",
		cfg.Model.Name, cfg.Estimation.Particles, cfg.Estimation.Experiments)
	p.Fprintf(out, "trials     %d (%d records)\n", len(tables), records)
	p.Fprintf(out, "final loss mean %.4g, median %.4g\n",
		stat.Mean(finals, nil), median(finals))
	p.Fprintf(out, "resamples  %d across all trials\n", resamples)
	p.Fprintf(out, "update time %.3fs total\n", elapsed)
}

func median(xs []float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	// stat.Quantile needs sorted input.
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

type consoleReporter struct {
	out io.Writer
}

func (r *consoleReporter) Update(progress int) error {
	_, err := fmt.Fprintf(r.out, "completed %d trials\n", progress)
	return err
}

func (r *consoleReporter) Delete() error {
	return nil
}
