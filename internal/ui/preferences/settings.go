package preferences

import (
	"time"

	"pacer/internal/core/model"
)

// Settings defines editable user preferences. Targets are entered as
// minutes (0-120) plus seconds (0-59) per mode.
type Settings struct {
	WorkMinutes int
	WorkSeconds int
	FreeMinutes int
	FreeSeconds int

	AlertInWork      bool
	IdlePauseEnabled bool

	HistoryLimit int
	Autostart    bool
}

// DefaultSettings returns default settings for Pacer.
func DefaultSettings() Settings {
	return Settings{
		WorkMinutes:      25,
		WorkSeconds:      0,
		FreeMinutes:      5,
		FreeSeconds:      0,
		AlertInWork:      true,
		IdlePauseEnabled: false,
		HistoryLimit:     100,
		Autostart:        false,
	}
}

// EngineConfig converts settings to an engine configuration, clamping the
// minute and second fields into their valid ranges.
func (settings Settings) EngineConfig() model.EngineConfig {
	return model.EngineConfig{
		WorkTarget:        targetDuration(settings.WorkMinutes, settings.WorkSeconds),
		FreeTarget:        targetDuration(settings.FreeMinutes, settings.FreeSeconds),
		AlertInWork:       settings.AlertInWork,
		IdlePauseEnabled:  settings.IdlePauseEnabled,
		IdlePauseAfter:    5 * time.Minute,
		IdleCheckInterval: 5 * time.Second,
	}
}

func targetDuration(minutes, seconds int) time.Duration {
	minutes = clamp(minutes, 0, 120)
	seconds = clamp(seconds, 0, 59)
	return time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
