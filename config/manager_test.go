/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T) *ConfigManager {
	t.Helper()
	cm := New(zap.NewNop())
	cm.Load()
	return cm
}

func TestLoadAppliesDefaults(t *testing.T) {
	cm := newTestManager(t)

	assert.Equal(t, DefaultAPIEndpoint, cm.GetString("AI_SHELL_API_ENDPOINT"))
	assert.Equal(t, DefaultModel, cm.GetString("AI_SHELL_MODEL"))
	assert.Equal(t, DefaultHistoryCapacity, cm.GetInt("AI_SHELL_HISTORY_CAPACITY", 0))
}

func TestEnvVarsOverrideDefaults(t *testing.T) {
	t.Setenv("AI_SHELL_MODEL", "gpt-4o")

	cm := newTestManager(t)
	assert.Equal(t, "gpt-4o", cm.GetString("AI_SHELL_MODEL"))
}

func TestSetHasHighestPriority(t *testing.T) {
	t.Setenv("AI_SHELL_MODEL", "gpt-4o")

	cm := newTestManager(t)
	cm.Set("AI_SHELL_MODEL", "o3-mini")
	assert.Equal(t, "o3-mini", cm.GetString("AI_SHELL_MODEL"))
}

func TestEnvFileIsLoaded(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("AI_SHELL_MODEL=from-env-file\n"), 0o600))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	cm := newTestManager(t)
	assert.Equal(t, "from-env-file", cm.GetString("AI_SHELL_MODEL"))
}

func TestGetIntAndBoolFallbacks(t *testing.T) {
	t.Setenv("AI_SHELL_SILENT", "not-a-bool")
	t.Setenv("AI_SHELL_HISTORY_CAPACITY", "not-a-number")

	cm := newTestManager(t)
	assert.False(t, cm.GetBool("AI_SHELL_SILENT", false))
	assert.Equal(t, 7, cm.GetInt("AI_SHELL_HISTORY_CAPACITY", 7))
	assert.Equal(t, 42, cm.GetInt("CHAVE_INEXISTENTE", 42))
}

func TestGetDuration(t *testing.T) {
	t.Setenv("AI_SHELL_WORKER_READY_TIMEOUT", "3s")

	cm := newTestManager(t)
	assert.Equal(t, 3*time.Second, cm.GetDuration("AI_SHELL_WORKER_READY_TIMEOUT", time.Minute))
	assert.Equal(t, time.Minute, cm.GetDuration("OUTRA_CHAVE", time.Minute))
}

func TestSettingsSnapshot(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("AI_SHELL_SILENT", "true")
	t.Setenv("AI_SHELL_LANG", "pt-BR")

	cm := newTestManager(t)
	settings := cm.Settings()

	assert.Equal(t, "sk-test", settings.APIKey)
	assert.True(t, settings.Silent)
	assert.Equal(t, "pt-BR", settings.Language)
	assert.Equal(t, DefaultModel, settings.Model)
}

func TestReloadPicksUpChanges(t *testing.T) {
	cm := newTestManager(t)
	cm.Set("AI_SHELL_MODEL", "transient")

	t.Setenv("AI_SHELL_MODEL", "reloaded")
	cm.Reload()

	// Reload descarta valores injetados e relê as fontes.
	assert.Equal(t, "reloaded", cm.GetString("AI_SHELL_MODEL"))
}
