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
	t.Chdir(t.TempDir())
	t.Setenv("DISHLEDGER_DB", "")
	t.Setenv("DISHLEDGER_EXPORT_DIR", "")
	t.Setenv("DISHLEDGER_QUERY_TIMEOUT", "")

	cfg := Load()
	assert.Equal(t, "dishledger.db", cfg.DatabaseDSN)
	assert.Equal(t, ".", cfg.ExportDir)
	assert.Equal(t, 60*time.Second, cfg.QueryTimeout)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DISHLEDGER_DB", "/var/lib/dishledger/sales.db")
	t.Setenv("DISHLEDGER_EXPORT_DIR", "/tmp/exports")
	t.Setenv("DISHLEDGER_QUERY_TIMEOUT", "5")

	cfg := Load()
	assert.Equal(t, "/var/lib/dishledger/sales.db", cfg.DatabaseDSN)
	assert.Equal(t, "/tmp/exports", cfg.ExportDir)
	assert.Equal(t, 5*time.Second, cfg.QueryTimeout)
}

func TestLoadInvalidTimeoutFallsBack(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DISHLEDGER_QUERY_TIMEOUT", "soon")
	assert.Equal(t, 60*time.Second, Load().QueryTimeout)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DISHLEDGER_EXPORT_DIR=exports\n"), 0o600))
	t.Setenv("DISHLEDGER_EXPORT_DIR", "")
	os.Unsetenv("DISHLEDGER_EXPORT_DIR")

	assert.Equal(t, "exports", Load().ExportDir)
}
