package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/inferkit/smc-go/cmd/smc-bench/internal/commands"
)

var rootCmd = &cobra.Command{
	Use:   "smc-bench",
	Short: "Benchmark sequential Monte Carlo parameter estimation",
	Long: `smc-bench runs performance trials of sequential Monte Carlo parameter
estimation: it repeatedly designs experiments, simulates their outcomes from a
known true model, feeds them to a Bayesian particle-filter updater, and records
the quadratic loss, resample count and wall time of every update.

Results can be summarized on the console, persisted to SQLite, or exported to
Parquet for analysis elsewhere.`,
	Version: "0.1.0",
}

func main() {
	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewInitCommand())
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
