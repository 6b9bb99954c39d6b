package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/inferkit/smc-go/pkg/errors"
)

var validate = validator.New()

// Load reads and validates a configuration file. Fields absent from the
// file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to read config file"),
			errors.Fields{"path": path},
		)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to parse config file"),
			errors.Fields{"path": path},
		)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct tags plus the cross-field constraints the tags
// cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, errors.ValidationFailed, "invalid configuration")
	}

	if len(c.Model.PriorLower) != len(c.Model.PriorUpper) {
		return errors.WithFields(
			errors.New(errors.ValidationFailed, "prior bounds must have equal length"),
			errors.Fields{"lower": len(c.Model.PriorLower), "upper": len(c.Model.PriorUpper)},
		)
	}
	for i := range c.Model.PriorLower {
		if c.Model.PriorLower[i] >= c.Model.PriorUpper[i] {
			return errors.WithFields(
				errors.New(errors.ValidationFailed, "prior lower bound must be below upper bound"),
				errors.Fields{"index": i},
			)
		}
	}
	if len(c.Model.TrueParams) > 0 && len(c.Model.TrueParams) != len(c.Model.PriorLower) {
		return errors.New(errors.ValidationFailed,
			"true parameters must match the prior dimension")
	}
	if c.Heuristic.Name == "fixed" && len(c.Heuristic.Values) == 0 && c.Model.Name != "coin" {
		return errors.New(errors.ValidationFailed,
			"fixed heuristic needs explicit experiment-parameter values")
	}
	return nil
}
