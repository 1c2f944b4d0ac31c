package main

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsSentinel/internal/collector"
	"NewsSentinel/internal/config"
	"NewsSentinel/internal/recorder"
	"NewsSentinel/internal/sentiment"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	cfg, err := config.Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	cfg.Cache.SentimentPath = filepath.Join(t.TempDir(), "cache.json")
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "runs.db")
	return cfg
}

func TestNewPriceFetcher(t *testing.T) {
	cfg := testConfig(t)
	for provider, name := range map[string]string{"yahoo": "yahoo", "barsapi": "barsapi", "mock": "mock"} {
		cfg.DataSource.Provider = provider
		f, err := newPriceFetcher(cfg)
		require.NoError(t, err)
		assert.Equal(t, name, f.Name())
	}
	cfg.DataSource.Provider = "stooq"
	_, err := newPriceFetcher(cfg)
	assert.Error(t, err)
}

func TestNewNewsSource(t *testing.T) {
	cfg := testConfig(t)

	cfg.News.MarketAuxKey = ""
	src := newNewsSource(cfg, zerolog.Nop())
	require.NotNil(t, src)
	assert.Equal(t, "googlenews", src.Name(), "marketaux needs a key")

	cfg.News.MarketAuxKey = "key"
	src = newNewsSource(cfg, zerolog.Nop())
	fb, ok := src.(*collector.FallbackNewsSource)
	require.True(t, ok)
	require.Len(t, fb.Sources, 2)
	assert.Equal(t, "marketaux", fb.Sources[0].Name())

	cfg.News.Providers = []string{"marketaux"}
	cfg.News.MarketAuxKey = ""
	assert.Nil(t, newNewsSource(cfg, zerolog.Nop()))
}

func TestNewExtractor(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLM.APIKey = ""
	ex, cache := newExtractor(cfg, zerolog.Nop())
	require.NotNil(t, cache)
	assert.Equal(t, "noop", ex.Name())
	_, cached := ex.(*sentiment.CachedExtractor)
	assert.True(t, cached)

	cfg.LLM.APIKey = "sk-test"
	cfg.Cache.SentimentPath = ""
	ex, cache = newExtractor(cfg, zerolog.Nop())
	assert.Nil(t, cache)
	assert.Equal(t, "openai:"+cfg.LLM.Model, ex.Name())
}

func TestBuildRunner(t *testing.T) {
	cfg := testConfig(t)
	cfg.DataSource.Provider = "mock"
	r, err := buildRunner(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer r.Recorder.Close()

	_, isSQLite := r.Recorder.(*recorder.SQLiteRecorder)
	assert.True(t, isSQLite)
	assert.Equal(t, cfg.Reports.Dir, r.ReportDir)
	assert.Equal(t, cfg.LLM.Concurrency, r.Concurrency)
	assert.NotNil(t, r.Cache)

	cfg.Engine.NoiseFloor = 2
	_, err = buildRunner(cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestRootCmd_ReportRequiresTicker(t *testing.T) {
	t.Chdir(t.TempDir())
	cmd := newRootCmd()
	cmd.SetArgs([]string{"report", "--start", "2024-11-20", "--end", "2024-11-29"})
	assert.Error(t, cmd.Execute())
}
