package perf

import (
	"math"

	"github.com/google/uuid"

	"github.com/inferkit/smc-go/pkg/core"
	"github.com/inferkit/smc-go/pkg/errors"
)

// Record is one row of performance data, produced per experiment within a
// trial: the quadratic loss against the true parameters, the cumulative
// resample count, the wall time of the update, the simulated outcome, and
// the experiment parameters that were run.
type Record struct {
	Loss          float64
	ResampleCount int
	ElapsedTime   float64 // seconds
	Outcome       int
	ExpParams     core.ExpParams
}

// Table is the append-only performance-record sequence of one trial, indexed
// by experiment number. The experiment-parameter schema is bound at
// construction; every appended record must match it.
type Table struct {
	ID      uuid.UUID
	Schema  core.Schema
	Records []Record
}

// NewTable creates an empty table bound to the given schema with a fresh
// trial identifier.
func NewTable(schema core.Schema) *Table {
	return &Table{
		ID:     uuid.New(),
		Schema: schema,
	}
}

// Append adds one record, enforcing the schema binding.
func (t *Table) Append(r Record) error {
	got := r.ExpParams.Schema()
	if len(got) != len(t.Schema) {
		return errors.WithFields(
			errors.New(errors.InvalidInput, "record does not match table schema"),
			errors.Fields{"want_fields": len(t.Schema), "got_fields": len(got)},
		)
	}
	for i := range t.Schema {
		if t.Schema[i].Name != got[i].Name {
			return errors.WithFields(
				errors.New(errors.InvalidInput, "record field mismatch"),
				errors.Fields{"index": i, "want": t.Schema[i].Name, "got": got[i].Name},
			)
		}
	}
	t.Records = append(t.Records, r)
	return nil
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.Records)
}

// Losses returns the per-experiment loss sequence.
func (t *Table) Losses() []float64 {
	losses := make([]float64, len(t.Records))
	for i, r := range t.Records {
		losses[i] = r.Loss
	}
	return losses
}

// FirstLoss returns the loss after the first experiment, or NaN for an empty
// table.
func (t *Table) FirstLoss() float64 {
	if len(t.Records) == 0 {
		return math.NaN()
	}
	return t.Records[0].Loss
}

// FinalLoss returns the loss after the last experiment, or NaN for an empty
// table.
func (t *Table) FinalLoss() float64 {
	if len(t.Records) == 0 {
		return math.NaN()
	}
	return t.Records[len(t.Records)-1].Loss
}

// TotalElapsed returns the summed update wall time in seconds.
func (t *Table) TotalElapsed() float64 {
	total := 0.0
	for _, r := range t.Records {
		total += r.ElapsedTime
	}
	return total
}
