package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolworks/catalog/common/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	return &config.Config{
		Service: config.ServiceConfig{Name: "catalog", Port: 3000, LogLevel: "error", LogFormat: "json"},
		Admin:   config.AdminConfig{User: "admin", Password: "secret"},
		Storage: config.StorageConfig{
			DataFile:       filepath.Join(dir, "data", "products.json"),
			UploadsDir:     filepath.Join(dir, "uploads"),
			MaxUploadBytes: 5 << 20,
		},
		Cache: config.CacheConfig{Enabled: true, DefaultTTL: time.Minute},
	}
}

func TestSetupSeedsStorageLayout(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	components, err := Setup(ctx, "catalog", WithCustomConfig(cfg), WithoutTelemetry())
	require.NoError(t, err)
	defer components.Shutdown(ctx)

	info, err := os.Stat(cfg.Storage.UploadsDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	data, err := os.ReadFile(cfg.Storage.DataFile)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))

	assert.NotNil(t, components.Cache)
	require.NoError(t, components.Health(ctx))
}

func TestSetupLeavesExistingDocumentAlone(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.Storage.DataFile), 0o755))
	existing := []byte(`[{"id":"p1","name":"Drill","tag":"","description":"","detailDescription":"","image":"","specs":[]}]`)
	require.NoError(t, os.WriteFile(cfg.Storage.DataFile, existing, 0o644))

	components, err := Setup(ctx, "catalog", WithCustomConfig(cfg), WithoutCache(), WithoutTelemetry())
	require.NoError(t, err)
	defer components.Shutdown(ctx)

	data, err := os.ReadFile(cfg.Storage.DataFile)
	require.NoError(t, err)
	assert.Equal(t, existing, data)
}
