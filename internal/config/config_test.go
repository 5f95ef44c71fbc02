package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()

	cfg, err := LoadOrCreate(fs, "/cfg/homeroom/config.toml")
	require.NoError(t, err)
	assert.Equal(t, StorageJSON, cfg.Storage)
	assert.Equal(t, 200, cfg.SaveDebounceMS)
	assert.True(t, cfg.Notifications)
	assert.Equal(t, 4, cfg.AttachmentWorkers)

	data, err := afero.ReadFile(fs, "/cfg/homeroom/config.toml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "save_debounce_ms = 200")
}

func TestLoadOrCreateReadsFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	body := `
data_dir = "/srv/homeroom"
storage = "SQLite"
save_debounce_ms = 500
notifications = false
`
	require.NoError(t, afero.WriteFile(fs, "/config.toml", []byte(body), 0o644))

	cfg, err := LoadOrCreate(fs, "/config.toml")
	require.NoError(t, err)
	assert.Equal(t, "/srv/homeroom", cfg.DataDir)
	assert.Equal(t, StorageSQLite, cfg.Storage)
	assert.Equal(t, 500, cfg.SaveDebounceMS)
	assert.False(t, cfg.Notifications)
	assert.Equal(t, "info", cfg.LogLevel, "missing keys keep defaults")
	assert.Equal(t, "/srv/homeroom/attachments", cfg.AttachmentDir())
	assert.Equal(t, "/srv/homeroom/homeroom.db", cfg.DBPath())
}

func TestEnvironmentOverrides(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/config.toml", []byte(`storage = "json"`), 0o644))

	t.Setenv("HOMEROOM_STORAGE", "sqlite")
	t.Setenv("HOMEROOM_LOG_LEVEL", "debug")
	t.Setenv("HOMEROOM_ATTACHMENT_WORKERS", "9")

	cfg, err := LoadOrCreate(fs, "/config.toml")
	require.NoError(t, err)
	assert.Equal(t, StorageSQLite, cfg.Storage)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9, cfg.AttachmentWorkers)
}

func TestInvalidStorage(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/config.toml", []byte(`storage = "mongo"`), 0o644))

	_, err := LoadOrCreate(fs, "/config.toml")
	assert.ErrorContains(t, err, "unknown storage")
}

func TestMalformedFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/config.toml", []byte(`storage = `), 0o644))

	_, err := LoadOrCreate(fs, "/config.toml")
	assert.Error(t, err)
}

func TestResolveConfigPathEnv(t *testing.T) {
	t.Setenv("HOMEROOM_CONFIG", "/tmp/custom.toml")
	assert.Equal(t, "/tmp/custom.toml", ResolveConfigPath())
}
