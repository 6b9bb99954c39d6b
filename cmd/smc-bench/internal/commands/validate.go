package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inferkit/smc-go/pkg/config"
)

// NewValidateCommand builds the `validate` subcommand, which checks a
// configuration file without running anything.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config>",
		Short: "Validate a benchmark configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"%s: ok (%s model, %d particles, %d experiments, %d trials)\n",
				args[0], cfg.Model.Name,
				cfg.Estimation.Particles, cfg.Estimation.Experiments, cfg.Estimation.Trials)
			return nil
		},
	}
}
