package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8090", cfg.Server.Addr)
	assert.Equal(t, 1500*time.Millisecond, cfg.Feed.Interval)
	assert.Equal(t, 15, cfg.Feed.ScenarioEvery)
	assert.Equal(t, 25, cfg.Feed.ResetEvery)
	assert.Equal(t, 0.4, cfg.Scoring.RuleBasedWeight)
	assert.Equal(t, "info", cfg.Logging.Level)

	// The ingest token deliberately has no default.
	assert.Empty(t, cfg.Ingest.Token)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exfilsense.yaml")
	data := []byte(`
server:
  addr: ":9000"
feed:
  interval: 250ms
  scenario_every: 5
sinks:
  file:
    enabled: true
    path: /tmp/alerts.jsonl
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 250*time.Millisecond, cfg.Feed.Interval)
	assert.Equal(t, 5, cfg.Feed.ScenarioEvery)
	assert.Equal(t, 25, cfg.Feed.ResetEvery) // default preserved
	assert.True(t, cfg.Sinks.File.Enabled)
}

func TestIngestTokenFromEnv(t *testing.T) {
	t.Setenv("ALERT_INGESTION_TOKEN", "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Ingest.Token)
}

func TestValidateRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exfilsense.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sinks:\n  http:\n    enabled: true\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestMissingExplicitFileIsAnError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
