package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.False(t, c.Production)
	assert.False(t, c.Deterministic)
	assert.Equal(t, "data/keys_ledger.csv", c.LedgerPath)
	assert.Equal(t, "data/audit_log.csv", c.AuditLogPath)
	assert.Equal(t, "data/voters.csv", c.RosterPath)
	assert.Equal(t, "keys", c.SheetName)
	assert.Equal(t, "H1", c.TriggerCell)
	assert.Equal(t, 465, c.SMTPPort)
	assert.Equal(t, 6*time.Second, c.DelayMin)
	assert.Equal(t, 12*time.Second, c.DelayMax)
	assert.Equal(t, 30, c.BatchSize)
	assert.Equal(t, 3*time.Minute, c.BatchPause)
	assert.Equal(t, 3, c.MaxRetries)
	assert.Empty(t, c.MasterKey, "secrets must not have defaults")
	assert.Empty(t, c.SMTPPassword, "secrets must not have defaults")
}

func TestLoad_EmptyPathKeepsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.NotNil(t, cfg)
	assert.Equal(t, "data/keys_ledger.csv", cfg.LedgerPath)
	assert.Equal(t, 30, cfg.BatchSize)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load("definitely/not/here.json")
	require.Error(t, err)
}
