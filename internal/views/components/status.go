package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// StatusBar shows the run summary under the images
type StatusBar struct {
	container   *fyne.Container
	statusLabel *widget.Label
	imageInfo   *widget.Label
}

func NewStatusBar(status, imageInfo string) *StatusBar {
	sb := &StatusBar{
		statusLabel: widget.NewLabel(status),
		imageInfo:   widget.NewLabel(imageInfo),
	}
	sb.container = container.NewHBox(
		sb.statusLabel,
		widget.NewSeparator(),
		sb.imageInfo,
	)
	return sb
}

func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}
