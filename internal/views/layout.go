package views

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"circle-inspector/internal/views/components"
)

func layout(display *components.ImageDisplay, status *components.StatusBar) fyne.CanvasObject {
	return container.NewBorder(
		nil,
		status.GetContainer(),
		nil,
		nil,
		display.GetContainer(),
	)
}
