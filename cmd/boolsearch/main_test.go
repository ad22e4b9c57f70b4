package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollikk/pre-inf1101-p2-v2/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestApplyFlags(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, applyFlags(cfg, []string{"data/"}, "txt,md", 10, ""))
	assert.Equal(t, "data", cfg.Corpus.Dir)
	assert.Equal(t, []string{"txt", "md"}, cfg.Corpus.Extensions)
	assert.Equal(t, 10, cfg.Corpus.Limit)
}

func TestApplyFlagsKeepsConfigWhenUnset(t *testing.T) {
	cfg := testConfig(t)
	cfg.Corpus.Dir = "corpus"
	cfg.Corpus.Limit = 5
	require.NoError(t, applyFlags(cfg, nil, "", -1, ""))
	assert.Equal(t, "corpus", cfg.Corpus.Dir)
	assert.Equal(t, 5, cfg.Corpus.Limit)
}

func TestApplyFlagsErrors(t *testing.T) {
	assert.ErrorContains(t, applyFlags(testConfig(t), nil, "", -1, ""), "<data-dir>")
	assert.Error(t, applyFlags(testConfig(t), []string{"a", "b"}, "", -1, ""))
	assert.Error(t, applyFlags(testConfig(t), []string{"a"}, "", -1, "s3"))

	// postgres needs no directory
	assert.NoError(t, applyFlags(testConfig(t), nil, "", -1, "postgres"))
}
