// Package smcgo implements online Bayesian parameter estimation via
// sequential Monte Carlo (particle filtering) for models of physical
// experiments whose outcomes are probabilistic functions of unknown
// parameters.
//
// Users supply a parametric model, a prior over its parameters and a
// heuristic that picks the next experiment to run; the library maintains a
// weighted particle approximation to the posterior and updates it one
// experiment at a time.
//
// Key components:
//
//   - Core: the Model, Distribution and Heuristic capability contracts, plus
//     the experiment-parameter record schema that binds a model's declared
//     fields to performance records.
//
//   - SMC: the particle pool, the Liu-West resampler and the sequential
//     updater, which performs the Bayesian update step with
//     effective-sample-size degeneracy control.
//
//   - Distributions: uniform, normal, multivariate-normal, product and
//     constrained priors backed by gonum.
//
//   - Models: reference Bernoulli-coin and Larmor-precession models used in
//     examples and tests.
//
//   - Heuristics: fixed, exponentially-sparse and particle-guess experiment
//     design strategies.
//
//   - Perf: the performance-testing harness: timed single trials, parallel
//     multi-trial runs behind a pluggable dispatch abstraction, progress
//     reporting, and SQLite/Parquet persistence of performance records.
//
// Minimal example:
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/inferkit/smc-go/pkg/distributions"
//	    "github.com/inferkit/smc-go/pkg/heuristics"
//	    "github.com/inferkit/smc-go/pkg/models"
//	    "github.com/inferkit/smc-go/pkg/perf"
//	)
//
//	func main() {
//	    model := models.NewPrecessionModel()
//	    prior := distributions.NewUniform([]float64{0}, []float64{1})
//
//	    table, err := perf.Trial(context.Background(), perf.TrialOptions{
//	        Model:        model,
//	        Prior:        prior,
//	        NParticles:   1000,
//	        NExperiments: 100,
//	        NewHeuristic: heuristics.NewExpSparseFactory(1, 1.1),
//	    })
//	    if err != nil {
//	        log.Fatalf("trial failed: %v", err)
//	    }
//
//	    fmt.Printf("final loss: %g\n", table.FinalLoss())
//	}
package smcgo
