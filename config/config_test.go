package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig("")
	assert.Equal(t, "127.0.0.1", cfg.Web.Host)
	assert.Equal(t, 9186, cfg.Web.Port)
	assert.Equal(t, "127.0.0.1:9186", cfg.Web.Listen())
	assert.Equal(t, "none", cfg.Sync.Mode)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	cfile := filepath.Join(dir, "posbridge.yml")
	yml := `
web:
  port: 9200
sync:
  mode: http
  endpoint: https://api.example.test/pos
printing:
  default_printer: EPSON-TM20
`
	require.NoError(t, os.WriteFile(cfile, []byte(yml), 0644))

	t.Setenv("POSBRIDGE_WEB_PORT", "9300")
	t.Setenv("POSBRIDGE_SYNC_APIKEY", "k123")
	t.Setenv("POSBRIDGE_PRINT_CODEPAGE", "cp852")
	t.Setenv("POSBRIDGE_PRINT_WORKERS", "4")

	cfg := LoadConfig(cfile)
	// env wins over file
	assert.Equal(t, 9300, cfg.Web.Port)
	assert.Equal(t, "http", cfg.Sync.Mode)
	assert.Equal(t, "https://api.example.test/pos", cfg.Sync.Endpoint)
	assert.Equal(t, "k123", cfg.Sync.APIKey)
	assert.Equal(t, "EPSON-TM20", cfg.Printing.DefaultPrinter)
	assert.Equal(t, "cp852", cfg.Printing.Codepage)
	assert.Equal(t, 4, cfg.Printing.Workers)
}

func TestStorePathFallback(t *testing.T) {
	cfg := *DefaultAppConfig
	cfg.Store.Path = ""
	cfg.System.Workdir = "/tmp/pb"
	assert.Equal(t, filepath.Join("/tmp/pb", "data", "posbridge.db"), cfg.GetStorePath())

	cfg.Store.Path = "/custom/pos.db"
	assert.Equal(t, "/custom/pos.db", cfg.GetStorePath())
}
