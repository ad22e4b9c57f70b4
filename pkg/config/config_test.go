package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "files", cfg.Corpus.Source)
	assert.Equal(t, 20, cfg.Search.MaxTableRows)
	assert.Equal(t, 4, cfg.Corpus.Workers)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boolsearch.yaml")
	data := []byte(`
corpus:
  dir: ./data
  extensions: [txt, md]
  limit: 50
search:
  maxTableRows: 5
redis:
  enabled: true
  cacheTTL: 30s
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	t.Setenv("BS_CORPUS_LIMIT", "7")
	t.Setenv("BS_LOGGING_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "./data", cfg.Corpus.Dir)
	assert.Equal(t, []string{"txt", "md"}, cfg.Corpus.Extensions)
	assert.Equal(t, 7, cfg.Corpus.Limit)
	assert.Equal(t, 5, cfg.Search.MaxTableRows)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// untouched sections keep their defaults
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadRejectsUnknownSource(t *testing.T) {
	t.Setenv("BS_CORPUS_SOURCE", "s3")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("corpus: [unterminated"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=d sslmode=disable", p.DSN())
}
