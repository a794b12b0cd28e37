package components

import (
	"image"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
)

func TestImageDisplayReportsOriginalSize(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	original := image.NewRGBA(image.Rect(0, 0, 40, 30))
	processed := image.NewGray(image.Rect(0, 0, 40, 30))

	display := NewImageDisplay(original, processed)

	w, h := display.OriginalSize()
	assert.Equal(t, 40, w)
	assert.Equal(t, 30, h)
	assert.NotNil(t, display.GetContainer())
}

func TestStatusBarInitialText(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	sb := NewStatusBar("3 circles", "Image: 40x30")
	assert.Equal(t, "3 circles", sb.statusLabel.Text)
	assert.Equal(t, "Image: 40x30", sb.imageInfo.Text)
}
