package components

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const (
	ImageAreaWidth  = 600
	ImageAreaHeight = 450
)

// ImageDisplay shows the original and processed images in a resizable split
type ImageDisplay struct {
	container      *fyne.Container
	originalImage  *canvas.Image
	processedImage *canvas.Image
	splitView      *container.Split
}

func NewImageDisplay(original, processed image.Image) *ImageDisplay {
	display := &ImageDisplay{
		originalImage:  newCanvasImage(original),
		processedImage: newCanvasImage(processed),
	}
	display.setupLayout()
	return display
}

func newCanvasImage(img image.Image) *canvas.Image {
	ci := canvas.NewImageFromImage(img)
	ci.FillMode = canvas.ImageFillContain
	ci.ScaleMode = canvas.ImageScaleSmooth
	ci.SetMinSize(fyne.NewSize(ImageAreaWidth, ImageAreaHeight))
	return ci
}

func (id *ImageDisplay) setupLayout() {
	id.splitView = container.NewHSplit(
		titledPane("**Original image**", id.originalImage),
		titledPane("**Processed image**", id.processedImage),
	)
	id.splitView.SetOffset(0.5)

	id.container = container.NewStack(id.splitView)
}

func titledPane(title string, img *canvas.Image) fyne.CanvasObject {
	return container.NewBorder(
		container.NewHBox(widget.NewRichTextFromMarkdown(title)),
		nil, nil, nil,
		container.NewStack(
			canvas.NewRectangle(color.RGBA{R: 252, G: 252, B: 252, A: 255}),
			img,
		),
	)
}

// OriginalSize returns the dimensions of the displayed original
func (id *ImageDisplay) OriginalSize() (int, int) {
	if id.originalImage.Image == nil {
		return 0, 0
	}
	bounds := id.originalImage.Image.Bounds()
	return bounds.Dx(), bounds.Dy()
}

func (id *ImageDisplay) GetContainer() *fyne.Container {
	return id.container
}
