package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaultsAndOverrides(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
env: production
server:
  port: 9000
database:
  host: db.internal
jwt:
  expires_in: 12h
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 12*time.Hour, cfg.JWT.ExpiresIn)
	// Untouched sections keep their defaults.
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, int64(16), cfg.Upload.MaxSizeMB)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadEnvSecretsWin(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DB_PASSWORD", "also-from-env")

	path := writeFile(t, t.TempDir(), "config.yaml", `
jwt:
  secret: from-yaml
database:
  password: from-yaml
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "also-from-env", cfg.Database.Password)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadDotEnvLocalWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "MGED_TEST_VAR=base\nMGED_TEST_ONLY_BASE=base\n")
	writeFile(t, dir, ".env.local", "MGED_TEST_VAR=local\n")
	chdir(t, dir)
	os.Unsetenv("MGED_TEST_VAR")
	os.Unsetenv("MGED_TEST_ONLY_BASE")
	t.Cleanup(func() {
		os.Unsetenv("MGED_TEST_VAR")
		os.Unsetenv("MGED_TEST_ONLY_BASE")
	})

	loaded := LoadDotEnv()
	assert.Equal(t, []string{".env.local", ".env"}, loaded)
	assert.Equal(t, "local", os.Getenv("MGED_TEST_VAR"))
	assert.Equal(t, "base", os.Getenv("MGED_TEST_ONLY_BASE"))
}

func TestLoadDotEnvRealEnvironmentWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "MGED_TEST_VAR=file\n")
	chdir(t, dir)
	t.Setenv("MGED_TEST_VAR", "process")

	LoadDotEnv()
	assert.Equal(t, "process", os.Getenv("MGED_TEST_VAR"))
}
