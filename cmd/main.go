package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"pacer/internal/core/engine"
	"pacer/internal/core/notify"
	"pacer/internal/notifier"
	"pacer/internal/platform"
	"pacer/internal/storage"
	"pacer/internal/ui/preferences"
	"pacer/internal/ui/tray"

	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const appName = "Pacer"

func main() {
	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		log.Printf("single instance: %v", err)
		return
	}
	defer func() {
		_ = guard.Release()
	}()

	fyneApp := app.NewWithID("com.pacer.app")
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		log.Printf("system tray unsupported on this platform")
		return
	}

	trayWindow := fyneApp.NewWindow("Pacer")
	trayWindow.SetContent(widget.NewLabel("Pacer is running in the system tray."))
	trayWindow.SetCloseIntercept(func() {
		trayWindow.Hide()
	})
	trayWindow.Hide()
	desktopApp.SetSystemTrayWindow(trayWindow)

	settings, err := storage.LoadSettings(appName)
	if err != nil {
		log.Printf("load settings: %v", err)
	}

	history := openHistory(settings.HistoryLimit)
	if history != nil {
		defer history.Close()
	}

	scheduler := notifier.NewFyneScheduler(fyneApp)
	policy := notify.NewPolicy(scheduler)

	var store engine.SessionStore
	if history != nil {
		store = history
	}
	keeper := engine.New(settings.EngineConfig(), engine.Config{TickInterval: time.Second}, policy, store)
	keeper.SetIdleChecker(platform.NewIdleProvider())

	service := platform.NewService()
	prefsWindow := preferences.New(fyneApp, settings, func(updated preferences.Settings) {
		if updated.Autostart != settings.Autostart {
			applyAutostart(service, updated.Autostart)
		}
		settings = updated
		keeper.UpdateConfig(settings.EngineConfig())
		if history != nil {
			if err := history.SetLimit(settings.HistoryLimit); err != nil {
				log.Printf("update history limit: %v", err)
			}
		}
		if err := storage.SaveSettings(appName, settings); err != nil {
			log.Printf("save settings: %v", err)
		}
	})

	trayManager := tray.New(desktopApp, tray.Callbacks{
		OnBeginWork: func() {
			keeper.BeginWith(engine.ModeWork)
		},
		OnBeginFree: func() {
			keeper.BeginWith(engine.ModeFree)
		},
		OnTogglePause: func() {
			keeper.TogglePause()
		},
		OnSwitch: func() {
			keeper.StopAndSwitch()
		},
		OnFinish: func() {
			keeper.FinishSession()
		},
		OnReset: func() {
			keeper.Reset()
		},
		OnPreferences: func() {
			prefsWindow.Show()
		},
		OnQuit: func() {
			keeper.Stop()
			fyneApp.Quit()
		},
	})

	lifecycle := fyneApp.Lifecycle()
	lifecycle.SetOnExitedForeground(func() {
		keeper.HandleBackground(time.Now())
	})
	lifecycle.SetOnEnteredForeground(func() {
		keeper.HandleForeground(time.Now())
	})

	events := keeper.Subscribe(5)
	go func() {
		for event := range events {
			handleEvent(event, trayManager)
		}
	}()

	keeper.Start()
	fyneApp.Run()
	keeper.Stop()
}

func openHistory(limit int) *storage.History {
	service := platform.NewService()
	configDir, err := service.GetConfigDir()
	if err != nil {
		log.Printf("resolve config dir: %v", err)
		return nil
	}
	dir := filepath.Join(configDir, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("create data dir: %v", err)
		return nil
	}
	history, err := storage.OpenHistory(filepath.Join(dir, "history.db"), limit)
	if err != nil {
		log.Printf("open session history: %v", err)
		return nil
	}
	return history
}

func handleEvent(event engine.Event, trayManager *tray.Manager) {
	switch event.Type {
	case engine.EventStateChange, engine.EventProgress:
		trayManager.SetPhase(event.Snapshot.Phase)
		trayManager.SetStatus(formatStatus(event.Snapshot))
	case engine.EventStoreError:
		log.Printf("session store: %s", event.Message)
	case engine.EventIdleError:
		log.Printf("idle check: %s", event.Message)
	case engine.EventIdlePause:
		trayManager.SetPhase(event.Snapshot.Phase)
		trayManager.SetStatus(formatStatus(event.Snapshot) + " (idle)")
	}
}

func formatStatus(snapshot engine.Snapshot) string {
	switch snapshot.Phase {
	case engine.PhaseIdle:
		return "idle"
	case engine.PhaseFinished:
		return fmt.Sprintf("finished, %s worked", formatClock(snapshot.SessionWork))
	}

	label := "work"
	if snapshot.Mode == engine.ModeFree {
		label = "free"
	}
	if snapshot.Overtime {
		return fmt.Sprintf("%s +%s", label, formatClock(overtimeSeconds(snapshot)))
	}
	return fmt.Sprintf("%s %s", label, formatClock(snapshot.Display))
}

func overtimeSeconds(snapshot engine.Snapshot) int {
	if snapshot.Mode == engine.ModeWork {
		return snapshot.Display
	}
	// Free overtime pins elapsed at the target; the overrun is tick-counted.
	return snapshot.OvertimeTicks
}

func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func applyAutostart(service platform.Service, enabled bool) {
	if !enabled {
		if err := service.DisableAutostart(appName); err != nil {
			log.Printf("disable autostart: %v", err)
		}
		return
	}
	execPath, err := os.Executable()
	if err != nil {
		log.Printf("resolve executable: %v", err)
		return
	}
	if err := service.EnableAutostart(appName, execPath); err != nil {
		log.Printf("enable autostart: %v", err)
	}
}
