package logging

import "context"

// LogEntry represents a structured log record with fields relevant to
// sequential inference runs.
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// Inference-specific fields
	TrialID    string // The trial this entry belongs to, if any
	Experiment int    // Experiment index within the trial (-1 when unset)

	// General structured data
	Fields map[string]interface{}
}

type contextKey int

const (
	trialIDKey contextKey = iota
	experimentKey
)

// WithTrialID returns a context carrying the trial identifier, picked up by
// every log entry written under that context.
func WithTrialID(ctx context.Context, trialID string) context.Context {
	return context.WithValue(ctx, trialIDKey, trialID)
}

// GetTrialID extracts the trial identifier from the context.
func GetTrialID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(trialIDKey).(string)
	return id, ok
}

// WithExperiment returns a context carrying the current experiment index.
func WithExperiment(ctx context.Context, idx int) context.Context {
	return context.WithValue(ctx, experimentKey, idx)
}

// GetExperiment extracts the experiment index from the context.
func GetExperiment(ctx context.Context) (int, bool) {
	idx, ok := ctx.Value(experimentKey).(int)
	return idx, ok
}
