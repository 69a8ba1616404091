package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnavadev/fraud-watch/internal/infrastructure/config"
	"github.com/gnavadev/fraud-watch/internal/infrastructure/feed"
	"github.com/gnavadev/fraud-watch/pkg/testutil"
)

func writeFeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "licensing.csv")
	require.NoError(t, os.WriteFile(path, []byte(testutil.LicensingCSV), 0o600))
	return path
}

func TestLoadBatch_FiltersCity(t *testing.T) {
	records, err := loadBatch(writeFeed(t), feed.Selection{City: "minneapolis"})

	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, testutil.TestProviderID1, records[0].ProviderID)
	assert.Equal(t, testutil.TestProviderID2, records[1].ProviderID)
	// Rows without a license number are kept so ingestion reports them.
	assert.Empty(t, records[2].ProviderID)
}

func TestLoadBatch_LimitByCapacity(t *testing.T) {
	records, err := loadBatch(writeFeed(t), feed.Selection{Limit: 2})

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, testutil.TestProviderID1, records[0].ProviderID)
	assert.Equal(t, "Missing Number Daycare", records[1].LicenseHolder)
}

func TestLoadBatch_UnsupportedFile(t *testing.T) {
	_, err := loadBatch(filepath.Join(t.TempDir(), "feed.json"), feed.Selection{})
	assert.ErrorIs(t, err, feed.ErrUnsupportedFormat)
}

func TestApplyFlags(t *testing.T) {
	cfg := &config.Config{}
	cfg.Feed.City = "Duluth"
	cfg.Feed.Limit = 10
	cfg.Ingest.Workers = 1

	applyFlags(cfg, options{limit: -1})
	assert.Equal(t, "Duluth", cfg.Feed.City)
	assert.Equal(t, 10, cfg.Feed.Limit)
	assert.Equal(t, 1, cfg.Ingest.Workers)

	applyFlags(cfg, options{city: "Minneapolis", limit: 0, workers: 4})
	assert.Equal(t, "Minneapolis", cfg.Feed.City)
	assert.Equal(t, 0, cfg.Feed.Limit)
	assert.Equal(t, 4, cfg.Ingest.Workers)
}

func TestRun_PrintConfig(t *testing.T) {
	var out bytes.Buffer

	err := run(options{printConfig: true, city: "St. Paul", limit: -1}, &out)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "city: St. Paul")
	assert.NotContains(t, out.String(), "postgres://")
}

func TestRun_RequiresFile(t *testing.T) {
	err := run(options{limit: -1}, &bytes.Buffer{})
	assert.EqualError(t, err, "-file is required")
}
