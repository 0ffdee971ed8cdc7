package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadWithOptions(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "", cfg.GridTemplate)
	assert.Equal(t, "qr", cfg.Resolver)
	assert.Equal(t, "/qrcode/", cfg.URLBase)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, log.InfoLevel, cfg.Level())
	assert.False(t, cfg.UsesRedis())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ETIKET_SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("ETIKET_GRID_TEMPLATE", "label.toml")
	t.Setenv("ETIKET_REDIS_ADDR", "localhost:6379")
	t.Setenv("ETIKET_REDIS_DB", "2")
	t.Setenv("ETIKET_RESOLVER", "url")
	t.Setenv("ETIKET_CONCURRENCY", "8")
	t.Setenv("ETIKET_LOG_LEVEL", "DEBUG")

	cfg, err := LoadWithOptions(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.ServerAddr)
	assert.Equal(t, "label.toml", cfg.GridTemplate)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, "url", cfg.Resolver)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, log.DebugLevel, cfg.Level())
	assert.True(t, cfg.UsesRedis())
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etiket.env")
	require.NoError(t, os.WriteFile(path, []byte("SERVER_ADDR=:7070\nCONCURRENCY=2\n"), 0o644))

	cfg, err := LoadWithOptions(LoadOptions{EnvFile: path})
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.ServerAddr)
	assert.Equal(t, 2, cfg.Concurrency)
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	cfg, err := LoadWithOptions(LoadOptions{EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddr)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"zero concurrency", "ETIKET_CONCURRENCY", "0"},
		{"bad log level", "ETIKET_LOG_LEVEL", "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadWithOptions(LoadOptions{})
			assert.Error(t, err)
		})
	}
}
