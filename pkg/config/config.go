// Package config holds the benchmark runner configuration, loaded from YAML
// and checked with struct-tag validation.
package config

// Config represents the complete configuration for a benchmark run.
type Config struct {
	// Model selection and ground truth
	Model ModelConfig `yaml:"model" validate:"required"`

	// Estimation parameters
	Estimation EstimationConfig `yaml:"estimation" validate:"required"`

	// Experiment-design heuristic
	Heuristic HeuristicConfig `yaml:"heuristic" validate:"required"`

	// Trial dispatch
	Concurrency ConcurrencyConfig `yaml:"concurrency,omitempty" validate:"omitempty"`

	// Result sinks
	Output OutputConfig `yaml:"output,omitempty" validate:"omitempty"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging,omitempty" validate:"omitempty"`
}

// ModelConfig selects the experiment model and its ground truth.
type ModelConfig struct {
	// Model name (coin, precession)
	Name string `yaml:"name" validate:"required,oneof=coin precession"`

	// True parameters for data generation; empty means sampled from the
	// prior. At most one parameter vector is supported per trial.
	TrueParams []float64 `yaml:"true_params,omitempty"`

	// Prior bounds, one pair per parameter
	PriorLower []float64 `yaml:"prior_lower" validate:"required,min=1"`
	PriorUpper []float64 `yaml:"prior_upper" validate:"required,min=1"`
}

// EstimationConfig holds the SMC parameters.
type EstimationConfig struct {
	// Number of SMC particles
	Particles int `yaml:"particles" validate:"required,min=2"` // Default: 1000

	// Sequential updates per trial
	Experiments int `yaml:"experiments" validate:"required,min=1"` // Default: 100

	// Independent trials
	Trials int `yaml:"trials" validate:"required,min=1"` // Default: 1

	// ESS fraction below which resampling fires
	ResampleThreshold float64 `yaml:"resample_threshold,omitempty" validate:"omitempty,gt=0,lte=1"` // Default: 0.5

	// Liu-West shrinkage parameter
	ResampleA float64 `yaml:"resample_a,omitempty" validate:"omitempty,gt=0,lte=1"` // Default: 0.98

	// Base RNG seed; 0 means time-seeded
	Seed uint64 `yaml:"seed,omitempty"`
}

// HeuristicConfig selects the experiment-design strategy.
type HeuristicConfig struct {
	// Heuristic name (fixed, expsparse, pgh)
	Name string `yaml:"name" validate:"required,oneof=fixed expsparse pgh"`

	// Fixed heuristic: the constant experiment-parameter values
	Values []float64 `yaml:"values,omitempty"`

	// ExpSparse heuristic schedule t_k = base * scale^k
	Base  float64 `yaml:"base,omitempty" validate:"omitempty,gt=0"`  // Default: 1
	Scale float64 `yaml:"scale,omitempty" validate:"omitempty,gte=1"` // Default: 1.1
}

// ConcurrencyConfig controls trial dispatch.
type ConcurrencyConfig struct {
	// Worker count; 0 runs trials serially
	Workers int `yaml:"workers,omitempty" validate:"omitempty,min=0"`
}

// OutputConfig names the result sinks; empty paths disable a sink.
type OutputConfig struct {
	SQLitePath  string `yaml:"sqlite_path,omitempty"`
	ParquetPath string `yaml:"parquet_path,omitempty"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	// Severity level (DEBUG, INFO, WARN, ERROR)
	Level string `yaml:"level,omitempty" validate:"omitempty,oneof=DEBUG INFO WARN ERROR FATAL"`

	// Optional log file in addition to the console
	File string `yaml:"file,omitempty"`
}

// DefaultConfig returns a runnable configuration: the precession model with
// a uniform prior on [0, 1] and the exponentially sparse schedule.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Name:       "precession",
			PriorLower: []float64{0},
			PriorUpper: []float64{1},
		},
		Estimation: EstimationConfig{
			Particles:         1000,
			Experiments:       100,
			Trials:            1,
			ResampleThreshold: 0.5,
			ResampleA:         0.98,
		},
		Heuristic: HeuristicConfig{
			Name:  "expsparse",
			Base:  1,
			Scale: 1.1,
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
	}
}
