package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at empty temp dirs so no
// real config or .env leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	return home
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".rapport", "rapport.db"), cfg.DB.Path)
	assert.Equal(t, "", cfg.Catalog.Path)
	assert.Equal(t, "127.0.0.1:8080", cfg.HTTP.Addr)
	assert.False(t, cfg.RedisEnabled())
	assert.Equal(t, "rapport:progression", cfg.Redis.Channel)
	assert.False(t, cfg.Progression.StrictGate)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("RAPPORT_DB_PATH", "/tmp/x.db")
	t.Setenv("RAPPORT_REDIS_ADDR", "localhost:6379")
	t.Setenv("RAPPORT_PROGRESSION_STRICT_GATE", "true")
	t.Setenv("RAPPORT_LOG_LEVEL", "DEBUG")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", cfg.DB.Path)
	assert.True(t, cfg.RedisEnabled())
	assert.True(t, cfg.Progression.StrictGate)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(".env", []byte("RAPPORT_HTTP_ADDR=0.0.0.0:9999\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("RAPPORT_HTTP_ADDR") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9999", cfg.HTTP.Addr)
}

func TestLoad_ConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "rapport.yaml")
	content := `
db:
  path: /data/rapport.db
catalog:
  path: /data/catalog.yaml
log:
  format: json
  use_cases: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/rapport.db", cfg.DB.Path)
	assert.Equal(t, "/data/catalog.yaml", cfg.Catalog.Path)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Log.UseCases)

	var buf bytes.Buffer
	cfg.NewLogger(&buf).Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"bad level", "RAPPORT_LOG_LEVEL", "loud", "Level"},
		{"bad format", "RAPPORT_LOG_FORMAT", "xml", "Format"},
		{"bad http addr", "RAPPORT_HTTP_ADDR", "not an address", "Addr"},
		{"bad redis db", "RAPPORT_REDIS_DB", "99", "DB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
