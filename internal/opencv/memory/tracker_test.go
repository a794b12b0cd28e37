package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gocv.io/x/gocv"

	"circle-inspector/internal/opencv/safe"
)

func TestTrackerCountsLiveMats(t *testing.T) {
	tracker := NewTracker()

	a, err := safe.Wrap(gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC1), tracker, "a")
	assert.NoError(t, err)
	b, err := a.Clone("b")
	assert.NoError(t, err)

	assert.Equal(t, 2, tracker.Live())
	assert.Equal(t, []string{"a", "b"}, tracker.LiveTags())

	a.Close()
	a.Close()
	assert.Equal(t, 1, tracker.Live())

	b.Close()
	stats := tracker.GetStats()
	assert.Equal(t, 0, stats.ActiveMats)
	assert.Equal(t, int64(2), stats.AllocationCount)
	assert.Equal(t, int64(32), stats.TotalAllocated)
	assert.Equal(t, stats.TotalAllocated, stats.TotalDeallocated)
}
