package conversion

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"circle-inspector/internal/opencv/safe"
)

func TestImageToMatAndBack(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.RGBA{R: 255, A: 255})
	src.Set(1, 0, color.RGBA{B: 255, A: 255})

	m, err := ImageToMat(src, nil, "bgr")
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 3, m.Channels())
	assert.Equal(t, []byte{0, 0, 255, 255, 0, 0}, m.Bytes())

	back, err := MatToImage(m)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, back.(*image.RGBA).Pix)
}

func TestGrayRoundTrip(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 3, 2))
	copy(src.Pix, []byte{0, 50, 100, 150, 200, 250})

	m, err := ImageToMat(src, nil, "gray")
	require.NoError(t, err)
	defer m.Close()
	assert.Equal(t, 1, m.Channels())

	back, err := MatToImage(m)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, back.(*image.Gray).Pix)
}

func TestGrayscaleAndBGR(t *testing.T) {
	bgr, err := safe.NewMatFromBytes(1, 2, gocv.MatTypeCV8UC3, []byte{255, 255, 255, 0, 0, 0}, nil, "bgr")
	require.NoError(t, err)
	defer bgr.Close()

	gray, err := ConvertToGrayscale(bgr)
	require.NoError(t, err)
	defer gray.Close()
	assert.Equal(t, []byte{255, 0}, gray.Bytes())

	again, err := ConvertToGrayscale(gray)
	require.NoError(t, err)
	defer again.Close()
	assert.Equal(t, gray.Bytes(), again.Bytes())

	promoted, err := ConvertToBGR(gray, "canvas")
	require.NoError(t, err)
	defer promoted.Close()
	assert.Equal(t, []byte{255, 255, 255, 0, 0, 0}, promoted.Bytes())
}

func TestConversionRejectsInvalid(t *testing.T) {
	_, err := ConvertToGrayscale(nil)
	assert.Error(t, err)

	_, err = MatToImage(nil)
	assert.Error(t, err)

	_, err = ImageToMat(nil, nil, "x")
	assert.Error(t, err)
}
