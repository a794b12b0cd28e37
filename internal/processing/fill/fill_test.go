package fill

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"circle-inspector/internal/models"
	"circle-inspector/internal/opencv/safe"
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

func newMask(t *testing.T, rows, cols int, draw func(m *gocv.Mat)) *safe.Mat {
	t.Helper()
	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC1)
	m.SetTo(gocv.NewScalar(0, 0, 0, 0))
	if draw != nil {
		draw(&m)
	}
	mask, err := safe.Wrap(m, nil, "test_mask")
	require.NoError(t, err)
	t.Cleanup(mask.Close)
	return mask
}

func ringMask(t *testing.T) *safe.Mat {
	return newMask(t, 60, 60, func(m *gocv.Mat) {
		gocv.Circle(m, image.Pt(30, 30), 15, white, 1)
	})
}

func TestFillClosesOutlineInterior(t *testing.T) {
	mask := ringMask(t)

	filled, err := Fill(mask)
	require.NoError(t, err)
	defer filled.Close()

	fm := filled.GetMat()
	assert.Equal(t, uint8(255), fm.GetUCharAt(30, 30))

	assert.Equal(t, uint8(0), fm.GetUCharAt(0, 0))

	assert.Greater(t, gocv.CountNonZero(filled.GetMat()), gocv.CountNonZero(mask.GetMat()))
}

func TestFillIsIdempotent(t *testing.T) {
	mask := ringMask(t)

	once, err := Fill(mask)
	require.NoError(t, err)
	defer once.Close()

	twice, err := Fill(once)
	require.NoError(t, err)
	defer twice.Close()

	assert.Equal(t, once.Bytes(), twice.Bytes())
}

func TestFillDoesNotModifyInput(t *testing.T) {
	mask := ringMask(t)
	before := mask.Bytes()

	filled, err := Fill(mask)
	require.NoError(t, err)
	filled.Close()

	assert.Equal(t, before, mask.Bytes())
}

func TestFillBlankMaskStaysBlank(t *testing.T) {
	mask := newMask(t, 20, 30, nil)

	filled, err := Fill(mask)
	require.NoError(t, err)
	defer filled.Close()

	assert.Zero(t, gocv.CountNonZero(filled.GetMat()))
}

func TestFillRejectsInvalidInput(t *testing.T) {
	gray := newMask(t, 10, 10, func(m *gocv.Mat) {
		m.SetUCharAt(5, 5, 128)
	})
	_, err := Fill(gray)
	var invalid *models.InvalidInputError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "fill", invalid.Op)

	color3 := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC3)
	bgr, err := safe.Wrap(color3, nil, "bgr")
	require.NoError(t, err)
	defer bgr.Close()
	_, err = Fill(bgr)
	assert.True(t, errors.As(err, &invalid))

	_, err = Fill(nil)
	assert.True(t, errors.As(err, &invalid))
}

func TestFillBytesSeedFallsBackAlongBorder(t *testing.T) {
	// 5x5 with the top-left corner set: the flood starts at (1,0) and still reaches
	// the outside, while the enclosed centre pixel is filled.
	pix := []byte{
		255, 0, 0, 0, 0,
		0, 255, 255, 255, 0,
		0, 255, 0, 255, 0,
		0, 255, 255, 255, 0,
		0, 0, 0, 0, 0,
	}

	seed, ok := Seed(pix, 5, 5)
	require.True(t, ok)
	assert.Equal(t, image.Pt(1, 0), seed)

	out := FillBytes(pix, 5, 5)
	assert.Equal(t, byte(255), out[0])
	assert.Equal(t, byte(255), out[2*5+2])
	assert.Equal(t, byte(0), out[4*5+4])
	assert.Equal(t, byte(0), out[1*5+0])
}

func TestSeedWalksBorderInOrder(t *testing.T) {
	full := func() []byte {
		pix := make([]byte, 16)
		for i := range pix {
			pix[i] = 255
		}
		return pix
	}

	tests := []struct {
		name string
		hole image.Point
	}{
		{"right column", image.Pt(3, 2)},
		{"bottom row", image.Pt(1, 3)},
		{"left column", image.Pt(0, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pix := full()
			pix[tt.hole.Y*4+tt.hole.X] = 0
			seed, ok := Seed(pix, 4, 4)
			require.True(t, ok)
			assert.Equal(t, tt.hole, seed)
		})
	}

	_, ok := Seed(full(), 4, 4)
	assert.False(t, ok)
	out := FillBytes(full(), 4, 4)
	assert.Equal(t, full(), out)
}
