package preferences

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the preferences UI.
type Window struct {
	window   fyne.Window
	settings Settings
	onSave   func(Settings)
	onCancel func()

	workMin   *widget.Entry
	workSec   *widget.Entry
	freeMin   *widget.Entry
	freeSec   *widget.Entry
	alertWork *widget.Check
	idlePause *widget.Check
	autostart *widget.Check
	history   *widget.Entry
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("Pacer Settings")

	workMin := widget.NewEntry()
	workSec := widget.NewEntry()
	freeMin := widget.NewEntry()
	freeSec := widget.NewEntry()
	history := widget.NewEntry()

	workMin.SetText(fmt.Sprintf("%d", settings.WorkMinutes))
	workSec.SetText(fmt.Sprintf("%d", settings.WorkSeconds))
	freeMin.SetText(fmt.Sprintf("%d", settings.FreeMinutes))
	freeSec.SetText(fmt.Sprintf("%d", settings.FreeSeconds))
	history.SetText(fmt.Sprintf("%d", settings.HistoryLimit))

	alertWork := widget.NewCheck("Alert when work target is reached", nil)
	alertWork.SetChecked(settings.AlertInWork)

	idlePause := widget.NewCheck("Pause work when inactive", nil)
	idlePause.SetChecked(settings.IdlePauseEnabled)

	autostart := widget.NewCheck("Launch at login", nil)
	autostart.SetChecked(settings.Autostart)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Targets", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Work target"), workMin, widget.NewLabel("min"), workSec, widget.NewLabel("sec")),
		container.NewHBox(widget.NewLabel("Free target"), freeMin, widget.NewLabel("min"), freeSec, widget.NewLabel("sec")),
		alertWork,
		idlePause,
		widget.NewLabelWithStyle("General", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Sessions kept in history"), history),
		autostart,
	)

	saveButton := widget.NewButton("Save", nil)
	cancelButton := widget.NewButton("Cancel", nil)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	content := container.NewBorder(nil, buttons, nil, nil, form)
	window.SetContent(content)
	window.Resize(fyne.NewSize(420, 360))

	prefs := &Window{
		window:    window,
		settings:  settings,
		onSave:    onSave,
		workMin:   workMin,
		workSec:   workSec,
		freeMin:   freeMin,
		freeSec:   freeSec,
		alertWork: alertWork,
		idlePause: idlePause,
		autostart: autostart,
		history:   history,
	}

	saveButton.OnTapped = prefs.handleSave
	cancelButton.OnTapped = func() {
		window.Hide()
		if prefs.onCancel != nil {
			prefs.onCancel()
		}
	}

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.workMin.SetText(fmt.Sprintf("%d", settings.WorkMinutes))
	prefs.workSec.SetText(fmt.Sprintf("%d", settings.WorkSeconds))
	prefs.freeMin.SetText(fmt.Sprintf("%d", settings.FreeMinutes))
	prefs.freeSec.SetText(fmt.Sprintf("%d", settings.FreeSeconds))
	prefs.history.SetText(fmt.Sprintf("%d", settings.HistoryLimit))
	prefs.alertWork.SetChecked(settings.AlertInWork)
	prefs.idlePause.SetChecked(settings.IdlePauseEnabled)
	prefs.autostart.SetChecked(settings.Autostart)
}

func (prefs *Window) handleSave() {
	settings := prefs.settings

	if minutes, ok := parseRange(prefs.workMin.Text, 0, 120); ok {
		settings.WorkMinutes = minutes
	}
	if seconds, ok := parseRange(prefs.workSec.Text, 0, 59); ok {
		settings.WorkSeconds = seconds
	}
	if minutes, ok := parseRange(prefs.freeMin.Text, 0, 120); ok {
		settings.FreeMinutes = minutes
	}
	if seconds, ok := parseRange(prefs.freeSec.Text, 0, 59); ok {
		settings.FreeSeconds = seconds
	}
	if limit, ok := parseRange(prefs.history.Text, 1, 10000); ok {
		settings.HistoryLimit = limit
	}

	settings.AlertInWork = prefs.alertWork.Checked
	settings.IdlePauseEnabled = prefs.idlePause.Checked
	settings.Autostart = prefs.autostart.Checked

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

func parseRange(value string, low, high int) (int, bool) {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < low || parsed > high {
		return 0, false
	}
	return parsed, true
}
