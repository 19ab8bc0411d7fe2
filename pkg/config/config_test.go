package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, Init(filepath.Join(dir, "config.toml")))
	return dir
}

// TestInitWithCustomPath validates custom config path
func TestInitWithCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	customConfigPath := filepath.Join(tempDir, "custom", "path", "config.toml")

	require.NoError(t, Init(customConfigPath))

	assert.Equal(t, filepath.Join(tempDir, "custom", "path"), GetConfigDir())
	info, err := os.Stat(GetConfigDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCredentialsPathUnderConfigDir(t *testing.T) {
	dir := initTemp(t)

	assert.Equal(t, filepath.Join(dir, "credentials"), GetCredentialsPath())
}

func TestDefaults(t *testing.T) {
	initTemp(t)

	assert.Equal(t, "text", GetString("output.format"))
	assert.Equal(t, 30, GetInt("api.timeout"))
	assert.Equal(t, "info", GetString("log.level"))
	assert.Equal(t, 300, GetInt("search.debounce_ms"))
	assert.Equal(t, 60, GetInt("resend.seconds"))
}

func TestLoadSettings(t *testing.T) {
	initTemp(t)

	s := Load()
	assert.Equal(t, 30*time.Second, s.Timeout)
	assert.Equal(t, 300*time.Millisecond, s.SearchDebounce)
	assert.Equal(t, 5*time.Minute, s.SearchStaleTime)
	assert.Equal(t, 60, s.ResendSeconds)
	assert.Equal(t, "Athlink-CLI/"+Version, s.UserAgent)
}

func TestUserConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api]\nbase_url = \"https://api.athlink.test\"\n"), 0600))

	require.NoError(t, Init(path))

	assert.Equal(t, "https://api.athlink.test", GetString("api.base_url"))
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("ATHLINK_RESEND_SECONDS", "15")
	initTemp(t)

	assert.Equal(t, 15, GetInt("resend.seconds"))
}

func TestMultipleInitCalls(t *testing.T) {
	tempDir := t.TempDir()

	require.NoError(t, Init(filepath.Join(tempDir, "config1", "config.toml")))
	firstDir := GetConfigDir()
	require.NoError(t, Init(filepath.Join(tempDir, "config2", "config.toml")))

	assert.NotEqual(t, firstDir, GetConfigDir())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "logs/a.log"), expandPath("~/logs/a.log"))
	assert.Equal(t, "/var/log/a.log", expandPath("/var/log/a.log"))
}
