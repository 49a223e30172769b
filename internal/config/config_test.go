package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("EPICSHOP_CONTEXT_CWD", dir)

	cfg := Load()
	assert.Equal(t, dir, cfg.App.ContextCwd)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.True(t, cfg.App.EnableWatcher)
	assert.Equal(t, filepath.Join(dir, "workshop.yaml"), cfg.Workshop.CatalogPath)
	assert.Equal(t, 5*time.Minute, cfg.Presence.StaleAfter)
	assert.Equal(t, "distance", cfg.Presence.ScorePolicy)
	assert.Equal(t, time.Second, cfg.Coach.InitialDelay)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_DotEnvFromContextCwd(t *testing.T) {
	dir := t.TempDir()
	env := "EPICSHOP_DEPLOYED=true\nPRESENCE_STALE_AFTER=90s\nCOACH_CHAR_DELAY=5ms\nPRESENCE_BUS_BUFFER=oops\n"
	assert.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))
	t.Setenv("EPICSHOP_CONTEXT_CWD", dir)
	for _, key := range []string{"EPICSHOP_DEPLOYED", "PRESENCE_STALE_AFTER", "COACH_CHAR_DELAY", "PRESENCE_BUS_BUFFER"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()
	assert.True(t, cfg.Workshop.Deployed)
	assert.Equal(t, 90*time.Second, cfg.Presence.StaleAfter)
	assert.Equal(t, 5*time.Millisecond, cfg.Coach.CharDelay)
	assert.Equal(t, int64(256), cfg.Presence.BusBufferSize, "bad numbers fall back")
}

func TestLoad_EnvironmentWinsOverDotEnv(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GO_ENV=staging\n"), 0o600))
	t.Setenv("EPICSHOP_CONTEXT_CWD", dir)
	t.Setenv("GO_ENV", "production")

	assert.True(t, Load().IsProduction())
}
