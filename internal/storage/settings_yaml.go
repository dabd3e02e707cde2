package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"pacer/internal/ui/preferences"
	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	WorkMinutes      int  `yaml:"work_minutes"`
	WorkSeconds      int  `yaml:"work_seconds"`
	FreeMinutes      int  `yaml:"free_minutes"`
	FreeSeconds      int  `yaml:"free_seconds"`
	AlertInWork      bool `yaml:"alert_in_work"`
	IdlePauseEnabled bool `yaml:"idle_pause_enabled"`
	HistoryLimit     int  `yaml:"history_limit"`
	Autostart        bool `yaml:"autostart"`
}

// LoadSettings reads user preferences from YAML.
// If the config file does not exist, default settings are returned.
func LoadSettings(appName string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return settings, err
	}

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML.
func SaveSettings(appName string, settings preferences.Settings) error {
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		WorkMinutes:      settings.WorkMinutes,
		WorkSeconds:      settings.WorkSeconds,
		FreeMinutes:      settings.FreeMinutes,
		FreeSeconds:      settings.FreeSeconds,
		AlertInWork:      settings.AlertInWork,
		IdlePauseEnabled: settings.IdlePauseEnabled,
		HistoryLimit:     settings.HistoryLimit,
		Autostart:        settings.Autostart,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func resolveConfigPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if fileData.WorkMinutes > 0 || fileData.WorkSeconds > 0 {
		settings.WorkMinutes = fileData.WorkMinutes
		settings.WorkSeconds = fileData.WorkSeconds
	}
	if fileData.FreeMinutes > 0 || fileData.FreeSeconds > 0 {
		settings.FreeMinutes = fileData.FreeMinutes
		settings.FreeSeconds = fileData.FreeSeconds
	}
	if fileData.HistoryLimit > 0 {
		settings.HistoryLimit = fileData.HistoryLimit
	}

	settings.AlertInWork = fileData.AlertInWork
	settings.IdlePauseEnabled = fileData.IdlePauseEnabled
	settings.Autostart = fileData.Autostart
}
