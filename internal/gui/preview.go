// Package gui holds the optional preview window that shows the input
// and the result of one CLI run.
package gui

import (
	"image"

	"ipcli/internal/gui/widgets"
	"ipcli/internal/logger"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const AppID = "io.github.ipcli.preview"

type Preview struct {
	fyneApp fyne.App
	window  fyne.Window
	display *widgets.ImageDisplay
	status  *widget.Label
	logger  logger.Logger
}

func NewPreview(title string, log logger.Logger) *Preview {
	fyneApp := app.NewWithID(AppID)
	window := fyneApp.NewWindow(title)

	p := &Preview{
		fyneApp: fyneApp,
		window:  window,
		display: widgets.NewImageDisplay(),
		status:  widget.NewLabel(""),
		logger:  log,
	}

	closeButton := widget.NewButton("Close", p.Close)
	footer := container.NewBorder(nil, nil, nil, closeButton, p.status)

	window.SetContent(container.NewBorder(nil, footer, nil, nil, p.display.GetContainer()))
	window.Resize(fyne.NewSize(widgets.ImageAreaWidth*2+40, widgets.ImageAreaHeight+90))
	window.CenterOnScreen()
	window.SetMaster()

	return p
}

// Show displays both images and blocks until the window is closed.
// result may be nil for operations that only report text.
func (p *Preview) Show(original, result image.Image, resultTitle, status string) {
	p.display.SetOriginalImage(original)
	if result != nil {
		p.display.SetResultImage(result, resultTitle)
	} else {
		p.display.SetResultImage(nil, "No image output")
	}
	p.status.SetText(status)

	p.logger.Debug("Preview", "window opened", map[string]interface{}{
		"result": resultTitle,
	})

	p.window.ShowAndRun()

	p.logger.Debug("Preview", "window closed", nil)
}

// Close quits the event loop. It is safe to call from any goroutine.
func (p *Preview) Close() {
	fyne.Do(func() {
		p.fyneApp.Quit()
	})
}
