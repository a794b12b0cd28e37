package safe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"circle-inspector/internal/models"
)

type countingTracker struct {
	live map[uint64]string
}

func (c *countingTracker) TrackAllocation(id uint64, size int64, tag string) {
	c.live[id] = tag
}

func (c *countingTracker) TrackDeallocation(id uint64, tag string) {
	delete(c.live, id)
}

func TestMatLifecycle(t *testing.T) {
	tracker := &countingTracker{live: map[uint64]string{}}

	m, err := NewMatFromBytes(2, 3, gocv.MatTypeCV8UC1, []byte{0, 255, 0, 255, 0, 255}, tracker, "mask")
	require.NoError(t, err)
	assert.Equal(t, 1, len(tracker.live))
	assert.Equal(t, 2, m.Rows())
	assert.Equal(t, 3, m.Cols())
	assert.Equal(t, "mask", m.Tag())

	gm := m.GetMat()
	assert.Equal(t, uint8(255), gm.GetUCharAt(0, 1))

	clone, err := m.Clone("copy")
	require.NoError(t, err)
	assert.Equal(t, m.Bytes(), clone.Bytes())
	assert.Equal(t, 2, len(tracker.live))

	m.Close()
	m.Close()
	assert.False(t, m.IsValid())
	assert.Nil(t, m.Bytes())
	assert.Equal(t, 1, len(tracker.live))

	clone.Close()
	assert.Empty(t, tracker.live)

	var nilMat *Mat
	nilMat.Close()
}

func TestValidators(t *testing.T) {
	var invalid *models.InvalidInputError

	err := ValidateImage(nil, "op")
	assert.True(t, errors.As(err, &invalid))

	mask, err := NewMatFromBytes(1, 3, gocv.MatTypeCV8UC1, []byte{0, 255, 0}, nil, "mask")
	require.NoError(t, err)
	defer mask.Close()
	assert.NoError(t, ValidateBinaryMask(mask, "op"))
	assert.NoError(t, ValidateImage(mask, "op"))

	gray, err := NewMatFromBytes(1, 3, gocv.MatTypeCV8UC1, []byte{0, 128, 255}, nil, "gray")
	require.NoError(t, err)
	defer gray.Close()
	err = ValidateBinaryMask(gray, "op")
	assert.True(t, errors.As(err, &invalid))
	assert.Contains(t, err.Error(), "128")
	assert.Contains(t, err.Error(), `"gray"`)

	color, err := NewMatFromBytes(1, 1, gocv.MatTypeCV8UC3, []byte{1, 2, 3}, nil, "bgr")
	require.NoError(t, err)
	defer color.Close()
	assert.Error(t, ValidateBinaryMask(color, "op"))
	assert.NoError(t, ValidateColorConversion(color, gocv.ColorBGRToGray))
	assert.Error(t, ValidateColorConversion(color, gocv.ColorGrayToBGR))

	closed, err := mask.Clone("closed")
	require.NoError(t, err)
	closed.Close()
	assert.Error(t, ValidateMatForOperation(closed, "op"))
}
