package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pacer/internal/ui/preferences"
)

const testAppName = "PacerTest"

func setConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestLoadSettingsMissingFileReturnsDefaults(t *testing.T) {
	setConfigDir(t)

	settings, err := LoadSettings(testAppName)
	require.NoError(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	setConfigDir(t)

	saved := preferences.Settings{
		WorkMinutes:      50,
		WorkSeconds:      30,
		FreeMinutes:      10,
		FreeSeconds:      0,
		AlertInWork:      false,
		IdlePauseEnabled: true,
		HistoryLimit:     25,
		Autostart:        true,
	}
	require.NoError(t, SaveSettings(testAppName, saved))

	loaded, err := LoadSettings(testAppName)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestLoadSettingsKeepsDefaultTargetsForZeroValues(t *testing.T) {
	dir := setConfigDir(t)

	configPath := filepath.Join(dir, testAppName, settingsFileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0o755))
	require.NoError(t, os.WriteFile(configPath, []byte("alert_in_work: true\n"), 0o644))

	loaded, err := LoadSettings(testAppName)
	require.NoError(t, err)
	defaults := preferences.DefaultSettings()
	assert.Equal(t, defaults.WorkMinutes, loaded.WorkMinutes)
	assert.Equal(t, defaults.FreeMinutes, loaded.FreeMinutes)
	assert.Equal(t, defaults.HistoryLimit, loaded.HistoryLimit)
	assert.True(t, loaded.AlertInWork)
}

func TestLoadSettingsMalformedYaml(t *testing.T) {
	dir := setConfigDir(t)

	configPath := filepath.Join(dir, testAppName, settingsFileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0o755))
	require.NoError(t, os.WriteFile(configPath, []byte("{not yaml"), 0o644))

	settings, err := LoadSettings(testAppName)
	require.Error(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}
