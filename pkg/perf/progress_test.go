package perf

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/inferkit/smc-go/internal/testutil"
	"github.com/inferkit/smc-go/pkg/errors"
	"github.com/inferkit/smc-go/pkg/logging"
)

func quietLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{
		Severity: logging.ERROR,
		Outputs: []logging.Output{
			logging.NewConsoleOutput(false, logging.WithWriter(&bytes.Buffer{})),
		},
	})
}

func TestNotifierDeliversFinalProgress(t *testing.T) {
	reporter := &testutil.MockProgressReporter{}
	reporter.On("Update", mock.AnythingOfType("int")).Return(nil)
	reporter.On("Delete").Return(nil)

	n := newProgressNotifier(reporter, quietLogger())
	n.Start(context.Background())
	for i := 1; i <= 10; i++ {
		n.Set(i)
	}
	n.Stop(context.Background())

	updates := reporter.Updates()
	require.NotEmpty(t, updates)
	// Intermediate values may be coalesced, but the last set value must land.
	assert.Equal(t, 10, updates[len(updates)-1])
	assert.True(t, reporter.Deleted())
}

func TestNotifierStopIsIdempotent(t *testing.T) {
	reporter := &testutil.MockProgressReporter{}
	reporter.On("Delete").Return(nil)

	n := newProgressNotifier(reporter, quietLogger())
	n.Start(context.Background())
	n.Stop(context.Background())
	n.Stop(context.Background())

	reporter.AssertNumberOfCalls(t, "Delete", 1)
}

func TestNotifierSurvivesReporterErrors(t *testing.T) {
	reporter := &testutil.MockProgressReporter{}
	reporter.On("Update", mock.AnythingOfType("int")).
		Return(errors.New(errors.Unknown, "reporter offline"))
	reporter.On("Delete").Return(errors.New(errors.Unknown, "reporter offline"))

	n := newProgressNotifier(reporter, quietLogger())
	n.Start(context.Background())
	n.Set(1)
	n.Stop(context.Background())

	// Errors are logged, never raised; the notifier still shuts down cleanly.
	assert.True(t, reporter.Deleted())
}
