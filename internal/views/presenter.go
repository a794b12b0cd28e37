// Package views shows a run's original and processed images in a fyne window.
package views

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"circle-inspector/internal/logger"
	"circle-inspector/internal/opencv/conversion"
	"circle-inspector/internal/opencv/safe"
	"circle-inspector/internal/views/components"
)

const (
	AppID   = "com.imageprocessing.circle-inspector"
	AppName = "Circle Inspector"
)

// WindowPresenter displays the two images side by side and blocks until the
// window is closed
type WindowPresenter struct {
	logger  logger.Logger
	version string
	status  string
}

func NewWindowPresenter(log logger.Logger, version string) *WindowPresenter {
	if log == nil {
		log = logger.NoOpLogger{}
	}
	return &WindowPresenter{logger: log, version: version, status: "Ready"}
}

// SetStatus sets the text of the status bar for the next Present call
func (p *WindowPresenter) SetStatus(status string) {
	p.status = status
}

func (p *WindowPresenter) Present(original, processed *safe.Mat) error {
	left, err := conversion.MatToImage(original)
	if err != nil {
		return fmt.Errorf("original image: %w", err)
	}
	right, err := conversion.MatToImage(processed)
	if err != nil {
		return fmt.Errorf("processed image: %w", err)
	}

	fyneApp := app.NewWithID(AppID)
	app.SetMetadata(fyne.AppMetadata{
		ID:      AppID,
		Name:    AppName,
		Version: p.version,
	})

	window := fyneApp.NewWindow(AppName)

	display := components.NewImageDisplay(left, right)
	w, h := display.OriginalSize()
	status := components.NewStatusBar(p.status, fmt.Sprintf("Image: %dx%d", w, h))

	window.SetContent(layout(display, status))
	window.Resize(fyne.NewSize(2*components.ImageAreaWidth, components.ImageAreaHeight+80))
	window.CenterOnScreen()

	p.logger.Info("views", "showing result window", map[string]interface{}{
		"width":  w,
		"height": h,
	})

	window.ShowAndRun()
	return nil
}
