package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Load reads the process environment, so these tests use t.Setenv and
// cannot run in parallel.

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LERNKARTE_DATABASE_URL", "postgres://localhost:5432/lernkarte")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 10, cfg.Study.NewCardsPerSession)
	assert.Equal(t, 21, cfg.Study.MatureThresholdDays)
	assert.Equal(t, "English", cfg.Study.TargetLanguage)
	assert.Equal(t, 0.9, cfg.SRS.DesiredRetention)
	assert.True(t, cfg.SRS.EnableFuzz)
	assert.Equal(t, 4, cfg.SRS.LeechLapseLimit)
	assert.Empty(t, cfg.Gemini.APIKey)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("LERNKARTE_DATABASE_URL", "postgres://localhost:5432/lernkarte")
	t.Setenv("LERNKARTE_SERVER_PORT", "9090")
	t.Setenv("LERNKARTE_SERVER_LOG_LEVEL", "debug")
	t.Setenv("LERNKARTE_STUDY_NEW_CARDS_PER_SESSION", "5")
	t.Setenv("LERNKARTE_SRS_ENABLE_FUZZ", "false")
	t.Setenv("LERNKARTE_GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 5, cfg.Study.NewCardsPerSession)
	assert.False(t, cfg.SRS.EnableFuzz)
	assert.Equal(t, "test-key", cfg.Gemini.APIKey)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("LERNKARTE_DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	t.Setenv("LERNKARTE_DATABASE_URL", "postgres://localhost:5432/lernkarte")
	t.Setenv("LERNKARTE_SERVER_LOG_LEVEL", "verbose")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvalidRetention(t *testing.T) {
	t.Setenv("LERNKARTE_DATABASE_URL", "postgres://localhost:5432/lernkarte")
	t.Setenv("LERNKARTE_SRS_DESIRED_RETENTION", "1.5")

	_, err := Load()
	assert.Error(t, err)
}
