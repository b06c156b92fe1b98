package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dropsim.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, 24, cfg.Cleanup.MaxDropped)
	assert.Equal(t, 30.0, cfg.Cleanup.LifetimeSeconds)
	assert.Equal(t, time.Second, cfg.Cleanup.SweepInterval.Duration)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.False(t, cfg.Database.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[cleanup]
max_dropped = 8
lifetime_seconds = 45.5
sweep_interval = "250ms"

[logging]
level = "debug"
format = "json"
`))
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Cleanup.MaxDropped)
	assert.Equal(t, 45.5, cfg.Cleanup.LifetimeSeconds)
	assert.Equal(t, 250*time.Millisecond, cfg.Cleanup.SweepInterval.Duration)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "max_dropped above cap",
			body: "[cleanup]\nmax_dropped = 32\n",
		},
		{
			name: "negative max_dropped",
			body: "[cleanup]\nmax_dropped = -1\n",
		},
		{
			name: "negative lifetime",
			body: "[cleanup]\nlifetime_seconds = -5.0\n",
		},
		{
			name: "zero sweep interval",
			body: "[cleanup]\nsweep_interval = \"0s\"\n",
		},
		{
			name: "zero tick rate",
			body: "[simulation]\ntick_rate = \"0s\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadZeroBoundsAreValid(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[cleanup]
max_dropped = 0
lifetime_seconds = 0.0
`))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Cleanup.MaxDropped, "0 means disabled, not invalid")
	assert.Equal(t, 0.0, cfg.Cleanup.LifetimeSeconds)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
