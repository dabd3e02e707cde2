package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"pacer/internal/core/engine"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnBeginWork   func()
	OnBeginFree   func()
	OnTogglePause func()
	OnSwitch      func()
	OnFinish      func()
	OnReset       func()
	OnPreferences func()
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	statusItem  *fyne.MenuItem
	beginWork   *fyne.MenuItem
	beginFree   *fyne.MenuItem
	pauseItem   *fyne.MenuItem
	switchItem  *fyne.MenuItem
	finishItem  *fyne.MenuItem
	resetItem   *fyne.MenuItem
	callbacks   Callbacks
	phase       engine.Phase
	statusLabel string
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
		phase:     engine.PhaseIdle,
	}

	manager.statusItem = fyne.NewMenuItem("Status: idle", nil)
	manager.statusItem.Disabled = true

	manager.beginWork = fyne.NewMenuItem("Start working", func() {
		if manager.callbacks.OnBeginWork != nil {
			manager.callbacks.OnBeginWork()
		}
	})
	manager.beginFree = fyne.NewMenuItem("Start free time", func() {
		if manager.callbacks.OnBeginFree != nil {
			manager.callbacks.OnBeginFree()
		}
	})
	manager.pauseItem = fyne.NewMenuItem("Pause", func() {
		if manager.callbacks.OnTogglePause != nil {
			manager.callbacks.OnTogglePause()
		}
	})
	manager.switchItem = fyne.NewMenuItem("Switch mode", func() {
		if manager.callbacks.OnSwitch != nil {
			manager.callbacks.OnSwitch()
		}
	})
	manager.finishItem = fyne.NewMenuItem("Finish session", func() {
		if manager.callbacks.OnFinish != nil {
			manager.callbacks.OnFinish()
		}
	})
	manager.resetItem = fyne.NewMenuItem("New session", func() {
		if manager.callbacks.OnReset != nil {
			manager.callbacks.OnReset()
		}
	})

	manager.applyPhase()
	manager.refreshMenu()
	return manager
}

// SetStatus updates the status label.
func (manager *Manager) SetStatus(status string) {
	manager.statusLabel = status
	manager.statusItem.Label = fmt.Sprintf("Status: %s", status)
	manager.refreshMenu()
}

// SetPhase enables the menu items legal for the given phase.
func (manager *Manager) SetPhase(phase engine.Phase) {
	if manager.phase == phase {
		return
	}
	manager.phase = phase
	manager.applyPhase()
	manager.refreshMenu()
}

func (manager *Manager) applyPhase() {
	idle := manager.phase == engine.PhaseIdle
	finished := manager.phase == engine.PhaseFinished
	active := !idle && !finished

	manager.beginWork.Disabled = !idle
	manager.beginFree.Disabled = !idle
	manager.pauseItem.Disabled = !(manager.phase == engine.PhaseRunning || manager.phase == engine.PhasePaused)
	manager.switchItem.Disabled = !active
	manager.finishItem.Disabled = !active
	manager.resetItem.Disabled = !finished

	if manager.phase == engine.PhasePaused {
		manager.pauseItem.Label = "Resume"
	} else {
		manager.pauseItem.Label = "Pause"
	}
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(fyne.NewMenu("Pacer",
		manager.statusItem,
		manager.beginWork,
		manager.beginFree,
		manager.pauseItem,
		manager.switchItem,
		manager.finishItem,
		manager.resetItem,
		fyne.NewMenuItem("Preferences", func() {
			if manager.callbacks.OnPreferences != nil {
				manager.callbacks.OnPreferences()
			}
		}),
		fyne.NewMenuItem("Quit", func() {
			if manager.callbacks.OnQuit != nil {
				manager.callbacks.OnQuit()
			}
		}),
	))
}
