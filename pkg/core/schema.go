package core

import (
	"github.com/inferkit/smc-go/pkg/errors"
)

// FieldKind is the storage type of a schema field.
type FieldKind int

const (
	FieldFloat FieldKind = iota
	FieldInt
)

func (k FieldKind) String() string {
	switch k {
	case FieldFloat:
		return "float64"
	case FieldInt:
		return "int64"
	default:
		return "unknown"
	}
}

// Field is one named, typed entry of an experiment-parameter record.
type Field struct {
	Name string
	Kind FieldKind
}

// Schema is the ordered field layout a model declares for its
// experiment-parameter records. The order is significant: record values are
// stored positionally and performance tables bind columns to it at
// construction time.
type Schema []Field

// Validate checks that field names are non-empty and unique.
func (s Schema) Validate() error {
	seen := make(map[string]struct{}, len(s))
	for _, f := range s {
		if f.Name == "" {
			return errors.New(errors.ValidationFailed, "schema field with empty name")
		}
		if _, dup := seen[f.Name]; dup {
			return errors.WithFields(
				errors.New(errors.ValidationFailed, "duplicate schema field"),
				errors.Fields{"field": f.Name},
			)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

// Index returns the position of the named field, or -1.
func (s Schema) Index(name string) int {
	for i, f := range s {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Names returns the ordered field names.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// ExpParams is one experiment-parameter record: a schema plus positional
// values. Integer-kind fields are stored as float64 and truncated on typed
// access.
type ExpParams struct {
	schema Schema
	values []float64
}

// NewExpParams binds values to a schema, failing when the lengths disagree.
func NewExpParams(schema Schema, values []float64) (ExpParams, error) {
	if len(values) != len(schema) {
		return ExpParams{}, errors.WithFields(
			errors.New(errors.InvalidInput, "experiment parameters do not match schema"),
			errors.Fields{"want": len(schema), "got": len(values)},
		)
	}
	vals := make([]float64, len(values))
	copy(vals, values)
	return ExpParams{schema: schema, values: vals}, nil
}

// Schema returns the record's schema.
func (ep ExpParams) Schema() Schema {
	return ep.schema
}

// Len returns the number of fields.
func (ep ExpParams) Len() int {
	return len(ep.values)
}

// Get returns the value of the named field.
func (ep ExpParams) Get(name string) (float64, bool) {
	idx := ep.schema.Index(name)
	if idx < 0 {
		return 0, false
	}
	return ep.values[idx], true
}

// GetInt returns the named field truncated to int64.
func (ep ExpParams) GetInt(name string) (int64, bool) {
	v, ok := ep.Get(name)
	return int64(v), ok
}

// Values returns a copy of the positional values.
func (ep ExpParams) Values() []float64 {
	vals := make([]float64, len(ep.values))
	copy(vals, ep.values)
	return vals
}
