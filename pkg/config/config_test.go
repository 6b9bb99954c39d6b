package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferkit/smc-go/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "precession", cfg.Model.Name)
	assert.Equal(t, 1000, cfg.Estimation.Particles)
	assert.Equal(t, 0.5, cfg.Estimation.ResampleThreshold)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
model:
  name: coin
  prior_lower: [0]
  prior_upper: [1]
estimation:
  particles: 500
  experiments: 50
  trials: 3
heuristic:
  name: fixed
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "coin", cfg.Model.Name)
	assert.Equal(t, 500, cfg.Estimation.Particles)
	assert.Equal(t, 3, cfg.Estimation.Trials)
	// Untouched fields keep their defaults.
	assert.Equal(t, 0.98, cfg.Estimation.ResampleA)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "unknown model",
			content: `
model:
  name: pendulum
  prior_lower: [0]
  prior_upper: [1]
`,
		},
		{
			name: "mismatched prior bounds",
			content: `
model:
  name: coin
  prior_lower: [0, 0]
  prior_upper: [1]
heuristic:
  name: fixed
`,
		},
		{
			name: "inverted prior bounds",
			content: `
model:
  name: coin
  prior_lower: [1]
  prior_upper: [0]
heuristic:
  name: fixed
`,
		},
		{
			name: "true params wrong dimension",
			content: `
model:
  name: coin
  true_params: [0.5, 0.5]
  prior_lower: [0]
  prior_upper: [1]
heuristic:
  name: fixed
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Equal(t, errors.ValidationFailed, errors.Code(err))
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.Code(err))
}
