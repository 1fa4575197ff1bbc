package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("BENGKEL_DATABASE_URL", "postgres://localhost/bengkel")
	t.Setenv("PORT", "")

	cfg, err := loadConfig([]string{}, nil)
	require.NoError(t, err)

	assert.Equal(t, defaultAddr, cfg.Addr)
	assert.Equal(t, "postgres://localhost/bengkel", cfg.DatabaseURL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3*time.Second, cfg.Graceful.ReadinessDelay)
	assert.Equal(t, 15*time.Second, cfg.Graceful.ShutdownTimeout)
}

func TestLoadConfig_PlatformEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://platform/db")
	t.Setenv("PORT", "9090")

	cfg, err := loadConfig([]string{}, nil)
	require.NoError(t, err)

	assert.Equal(t, "postgres://platform/db", cfg.DatabaseURL)
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr)
}

func TestLoadConfig_Flags(t *testing.T) {
	cfg, err := loadConfig([]string{
		"-database-url=postgres://flag/db",
		"-request-timeout=2s",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "postgres://flag/db", cfg.DatabaseURL)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
}

func TestLoadConfig_File(t *testing.T) {
	t.Setenv("PORT", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: 127.0.0.1:7000\ndatabase_url: postgres://file/db\n"), 0o600))

	cfg, err := loadConfig([]string{}, []string{path})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7000", cfg.Addr)
	assert.Equal(t, "postgres://file/db", cfg.DatabaseURL)
}

func TestLoadConfig_MissingDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := loadConfig([]string{}, nil)
	require.ErrorContains(t, err, "database URL is required")
}
