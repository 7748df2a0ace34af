package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every lookup at an empty temp tree.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("CONFIG_ENV", "test")
	t.Setenv("REWATCH_API_KEY", "")
	t.Setenv("REWATCH_SUBDOMAIN", "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	c, err := LoadWith(NewViper(), "")
	require.NoError(t, err)
	assert.Equal(t, "rewatch-transcripts", c.Pipeline.Name)
	assert.Equal(t, "info", c.Pipeline.LogLvl)
	assert.Equal(t, 60, c.Fetch.TimeoutSeconds)
	assert.Equal(t, ".", c.Paths.Outputs)
	assert.Equal(t, "debug_log.txt", c.Paths.DebugLog)
	assert.Equal(t, "Local", c.Rewatch.Timezone)
	assert.Empty(t, c.Rewatch.APIKey)
	assert.False(t, c.Fetch.Debug)
}

func TestLoadFromGuessPath(t *testing.T) {
	dir := isolate(t)
	p := filepath.Join(dir, "config", "test", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(`
pipeline:
  log_level: debug
rewatch:
  subdomain: acme
  timezone: Europe/Amsterdam
fetch:
  timeout_seconds: 15
  include_summary: true
paths:
  outputs: out
`), 0o644))

	c, err := LoadWith(NewViper(), "")
	require.NoError(t, err)
	assert.Equal(t, "acme", c.Rewatch.Subdomain)
	assert.Equal(t, "debug", c.Pipeline.LogLvl)
	assert.Equal(t, 15, c.Fetch.TimeoutSeconds)
	assert.True(t, c.Fetch.IncludeSummary)
	assert.Equal(t, "out", c.Paths.Outputs)
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("REWATCH_API_KEY", "from-env")
	t.Setenv("REWATCH_SUBDOMAIN", "envco")
	t.Setenv("REWATCH_FETCH_TIMEOUT_SECONDS", "5")

	c, err := LoadWith(NewViper(), "")
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.Rewatch.APIKey)
	assert.Equal(t, "envco", c.Rewatch.Subdomain)
	assert.Equal(t, 5, c.Fetch.TimeoutSeconds)
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.Unsetenv("REWATCH_API_KEY"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("REWATCH_API_KEY=dotenv-key\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("REWATCH_API_KEY") })

	c, err := LoadWith(NewViper(), "")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-key", c.Rewatch.APIKey)
}

func TestLoadExplicitPathMissing(t *testing.T) {
	dir := isolate(t)
	_, err := LoadWith(NewViper(), filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestSaveNeverWritesAPIKey(t *testing.T) {
	dir := isolate(t)
	c, err := LoadWith(NewViper(), "")
	require.NoError(t, err)
	c.Rewatch.Subdomain = "acme"
	c.Rewatch.APIKey = "super-secret"

	p := filepath.Join(dir, "xdg", "rewatch", "config.yaml")
	require.NoError(t, Save(p, c))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "super-secret")
	assert.Contains(t, string(b), "subdomain: acme")

	again, err := LoadWith(NewViper(), p)
	require.NoError(t, err)
	assert.Equal(t, "acme", again.Rewatch.Subdomain)
	assert.Empty(t, again.Rewatch.APIKey)
}

func TestLocation(t *testing.T) {
	c := &Root{}
	loc, err := c.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	c.Rewatch.Timezone = "UTC"
	loc, err = c.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	c.Rewatch.Timezone = "Mars/Olympus"
	_, err = c.Location()
	assert.Error(t, err)
}

func TestDurSeconds(t *testing.T) {
	assert.Equal(t, 90*time.Second, DurSeconds(90))
}

func TestReadFileIgnoresEnv(t *testing.T) {
	dir := isolate(t)
	t.Setenv("REWATCH_SUBDOMAIN", "envco")
	t.Setenv("REWATCH_FETCH_DEBUG", "true")

	c, err := ReadFile(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, c.Rewatch.Subdomain)
	assert.False(t, c.Fetch.Debug)
	assert.Equal(t, "Local", c.Rewatch.Timezone)

	p := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(p, []byte("rewatch:\n  subdomain: acme\n"), 0o600))
	c, err = ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "acme", c.Rewatch.Subdomain)
	assert.Equal(t, 60, c.Fetch.TimeoutSeconds)
}

func TestResolve(t *testing.T) {
	isolate(t)
	assert.Empty(t, Resolve())

	p := filepath.Join("config", "test", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("pipeline:\n  name: x\n"), 0o600))
	assert.Equal(t, p, Resolve())
}
