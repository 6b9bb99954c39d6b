// Package commands implements the smc-bench subcommands.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/inferkit/smc-go/cmd/smc-bench/internal/runner"
	"github.com/inferkit/smc-go/pkg/config"
)

// NewRunCommand builds the `run` subcommand: load a configuration, execute
// the trials, and summarize the results.
func NewRunCommand() *cobra.Command {
	var configPath string
	var trials int
	var particles int
	var experiments int
	var workers int
	var seed uint64

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a multi-trial estimation benchmark",
		Long: `Run a benchmark described by a YAML configuration file. Without --config
the built-in default runs: the precession model under a uniform prior with the
exponentially sparse time schedule. Flags override the file.`,
		Example: `  # Run the built-in default benchmark
  smc-bench run

  # Run a configured benchmark with 8 parallel workers
  smc-bench run --config bench.yaml --workers 8

  # Quick smoke run
  smc-bench run --trials 2 --particles 500 --experiments 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadOrDefault(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("trials") {
				cfg.Estimation.Trials = trials
			}
			if cmd.Flags().Changed("particles") {
				cfg.Estimation.Particles = particles
			}
			if cmd.Flags().Changed("experiments") {
				cfg.Estimation.Experiments = experiments
			}
			if cmd.Flags().Changed("workers") {
				cfg.Concurrency.Workers = workers
			}
			if cmd.Flags().Changed("seed") {
				cfg.Estimation.Seed = seed
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(),
				os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runner.Execute(ctx, cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the YAML configuration")
	cmd.Flags().IntVar(&trials, "trials", 0, "override the trial count")
	cmd.Flags().IntVar(&particles, "particles", 0, "override the particle count")
	cmd.Flags().IntVar(&experiments, "experiments", 0, "override the experiments per trial")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel trial workers (0 = serial)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "base RNG seed (0 = time-seeded)")
	return cmd
}

func loadOrDefault(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}
