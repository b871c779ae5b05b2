package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv_Overlay(t *testing.T) {
	t.Setenv("VOTEKEEPER_MASTER_KEY", "super-secret")
	t.Setenv("VOTEKEEPER_SMTP_HOST", "smtp.env.example.org")
	t.Setenv("VOTEKEEPER_DELAY_MIN", "250ms")
	t.Setenv("VOTEKEEPER_PRODUCTION", "true")
	t.Setenv("VOTEKEEPER_CRITICAL_FILES", "a.csv,b.csv")

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, "super-secret", cfg.MasterKey)
	assert.Equal(t, "smtp.env.example.org", cfg.SMTPHost)
	assert.Equal(t, 250*time.Millisecond, cfg.DelayMin)
	assert.True(t, cfg.Production)
	assert.Equal(t, []string{"a.csv", "b.csv"}, cfg.CriticalFiles)

	// untouched by the environment
	assert.Equal(t, 12*time.Second, cfg.DelayMax)
}

func Test_parseEnv_InvalidValueFails(t *testing.T) {
	t.Setenv("VOTEKEEPER_BATCH_SIZE", "not-a-number")

	cfg := &Config{}
	cfg.LoadDefaults()
	require.Error(t, parseEnv(cfg))
}

func Test_parseEnv_NothingSetKeepsValues(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()
	before := *cfg

	require.NoError(t, parseEnv(cfg))
	assert.Equal(t, before.LedgerPath, cfg.LedgerPath)
	assert.Equal(t, before.BatchSize, cfg.BatchSize)
}
