package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"circle-inspector/internal/debug/timing"
	"circle-inspector/internal/models"
	"circle-inspector/internal/opencv/memory"
	"circle-inspector/internal/opencv/safe"
)

var black = color.RGBA{A: 255}

// disksOnWhite draws dark filled disks {x, y, radius} on a white BGR canvas
func disksOnWhite(t *testing.T, tracker safe.MemoryTracker, disks ...[3]int) *safe.Mat {
	t.Helper()
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), 200, 220, gocv.MatTypeCV8UC3)
	for _, d := range disks {
		gocv.Circle(&m, image.Pt(d[0], d[1]), d[2], black, -1)
	}
	img, err := safe.Wrap(m, tracker, "input")
	require.NoError(t, err)
	t.Cleanup(img.Close)
	return img
}

// twoDiskConfig is the contour/captions/binary scenario. A rasterized 8px disk
// approximates to roughly eight polygon vertices, so the vertex floor is lowered.
func twoDiskConfig() models.Config {
	cfg := models.DefaultConfig()
	cfg.Run = models.RunConfig{Draw: models.DrawContour, Captions: true, Output: models.OutputBinary}
	cfg.Classifier.MinVertices = 5
	return cfg
}

func newCoordinator(t *testing.T, cfg models.Config) *Coordinator {
	t.Helper()
	c, err := NewCoordinator(cfg, nil, timing.NewTracker(nil))
	require.NoError(t, err)
	return c
}

func TestRunLargeAndSmallDisks(t *testing.T) {
	img := disksOnWhite(t, nil, [3]int{60, 100, 20}, [3]int{160, 100, 4})
	c := newCoordinator(t, twoDiskConfig())

	result, err := c.Run(context.Background(), img)
	require.NoError(t, err)
	defer result.Close()

	assert.Equal(t, 1, result.Report.CaptionCount("d > 10 pixels"))
	assert.Equal(t, 1, result.Report.CaptionCount("d < 10 pixels"))
	assert.Equal(t, 2, result.Report.CaptionCount("circle"))
	assert.Equal(t, 1, result.Report.OutlineCount())
	assert.Equal(t, 1, result.Summary.LargeCircles)
	assert.Equal(t, 1, result.Summary.SmallCircles)
	assert.False(t, result.HoughFound)

	assert.Same(t, img, result.Original)
	assert.Equal(t, 3, result.Processed.Channels())
	assert.Equal(t, img.Rows(), result.Processed.Rows())
	assert.Equal(t, img.Cols(), result.Processed.Cols())
}

func TestRunDefaultVertexFloorRejectsSmallDisk(t *testing.T) {
	img := disksOnWhite(t, nil, [3]int{60, 100, 20}, [3]int{160, 100, 4})
	cfg := twoDiskConfig()
	cfg.Classifier.MinVertices = models.DefaultClassifierParams().MinVertices
	c := newCoordinator(t, cfg)

	result, err := c.Run(context.Background(), img)
	require.NoError(t, err)
	defer result.Close()

	assert.Equal(t, 1, result.Summary.LargeCircles)
	assert.Zero(t, result.Summary.SmallCircles)
	assert.Equal(t, 1, result.Summary.NonCircles)
	assert.Equal(t, 1, result.Report.CaptionCount("non-circle"))
	assert.Zero(t, result.Report.CaptionCount("d < 10 pixels"))
	assert.Equal(t, 1, result.Report.OutlineCount())
}

func TestRunSummaryCarriesStageAverages(t *testing.T) {
	img := disksOnWhite(t, nil, [3]int{60, 100, 20})
	c := newCoordinator(t, twoDiskConfig())

	result, err := c.Run(context.Background(), img)
	require.NoError(t, err)
	defer result.Close()

	assert.Contains(t, result.Summary.StageAverages, "clean")
	assert.Contains(t, result.Summary.StageAverages, "classify")
	assert.NotContains(t, result.Summary.StageAverages, "hough")
	assert.Contains(t, result.Summary.Fields(), "clean_avg_ms")

	untimed, err := NewCoordinator(twoDiskConfig(), nil, nil)
	require.NoError(t, err)
	plain, err := untimed.Run(context.Background(), img)
	require.NoError(t, err)
	defer plain.Close()
	assert.Empty(t, plain.Summary.StageAverages)
}

func TestRunIsDeterministic(t *testing.T) {
	img := disksOnWhite(t, nil, [3]int{60, 100, 20}, [3]int{160, 100, 4})
	before := img.Bytes()
	c := newCoordinator(t, twoDiskConfig())

	first, err := c.Run(context.Background(), img)
	require.NoError(t, err)
	defer first.Close()
	second, err := c.Run(context.Background(), img)
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, first.Processed.Bytes(), second.Processed.Bytes())
	assert.Equal(t, first.Mask.Bytes(), second.Mask.Bytes())
	assert.Equal(t, before, img.Bytes())
}

func TestRunBinaryOutputUsesMaskAsBase(t *testing.T) {
	img := disksOnWhite(t, nil, [3]int{60, 100, 20})
	cfg := models.DefaultConfig()
	cfg.Run = models.RunConfig{Draw: models.DrawContour, Output: models.OutputBinary}
	// Outlines only for shapes wider than the frame, so nothing is drawn.
	cfg.Classifier.DiameterThreshold = 1000

	result, err := newCoordinator(t, cfg).Run(context.Background(), img)
	require.NoError(t, err)
	defer result.Close()

	channels := gocv.Split(result.Processed.GetMat())
	defer func() {
		for _, ch := range channels {
			ch.Close()
		}
	}()
	assert.Equal(t, result.Mask.Bytes(), channels[0].ToBytes())
	assert.Equal(t, result.Mask.Bytes(), channels[2].ToBytes())
}

func TestRunHoughFallsBackToClassifierOutput(t *testing.T) {
	img := disksOnWhite(t, nil)
	cfg := models.DefaultConfig()

	result, err := newCoordinator(t, cfg).Run(context.Background(), img)
	require.NoError(t, err)
	defer result.Close()

	assert.False(t, result.HoughFound)
	assert.Empty(t, result.HoughCircles)
	assert.Zero(t, result.Report.ContourCount)
	assert.Equal(t, img.Bytes(), result.Processed.Bytes())
	assert.NotSame(t, img, result.Processed)
}

func TestRunHoughOutlinesDisk(t *testing.T) {
	img := disksOnWhite(t, nil, [3]int{110, 100, 35})

	result, err := newCoordinator(t, models.DefaultConfig()).Run(context.Background(), img)
	require.NoError(t, err)
	defer result.Close()

	require.True(t, result.HoughFound)
	require.NotEmpty(t, result.HoughCircles)
	assert.InDelta(t, 110, result.HoughCircles[0].X, 6)
	assert.InDelta(t, 100, result.HoughCircles[0].Y, 6)
	assert.Zero(t, result.Report.OutlineCount())
	assert.NotEqual(t, img.Bytes(), result.Processed.Bytes())
}

func TestRunReleasesIntermediates(t *testing.T) {
	tracker := memory.NewTracker()
	img := disksOnWhite(t, tracker, [3]int{60, 100, 20}, [3]int{160, 100, 4})

	for _, cfg := range []models.Config{twoDiskConfig(), models.DefaultConfig()} {
		result, err := newCoordinator(t, cfg).Run(context.Background(), img)
		require.NoError(t, err)
		assert.Equal(t, 3, tracker.Live(), tracker.LiveTags())

		result.Close()
		assert.Equal(t, 1, tracker.Live(), tracker.LiveTags())
	}
}

func TestRunRejectsInvalidInput(t *testing.T) {
	c := newCoordinator(t, models.DefaultConfig())

	_, err := c.Run(context.Background(), nil)
	var invalid *models.InvalidInputError
	assert.True(t, errors.As(err, &invalid))
}

func TestNewCoordinatorValidatesConfig(t *testing.T) {
	cfg := models.DefaultConfig()
	cfg.Run.Draw = "circles"
	_, err := NewCoordinator(cfg, nil, nil)
	assert.Error(t, err)

	cfg = models.DefaultConfig()
	cfg.Annotation.OutlineColor = "navy"
	_, err = NewCoordinator(cfg, nil, nil)
	assert.Error(t, err)
}

func TestBatchRunPreservesOrder(t *testing.T) {
	c := newCoordinator(t, twoDiskConfig())
	images := []*safe.Mat{
		disksOnWhite(t, nil, [3]int{60, 100, 20}),
		nil,
		disksOnWhite(t, nil, [3]int{60, 100, 20}, [3]int{160, 100, 4}),
	}

	results := c.BatchRun(context.Background(), images, 2)
	require.Len(t, results, 3)
	defer func() {
		for _, r := range results {
			r.Result.Close()
		}
	}()

	for i, r := range results {
		assert.Equal(t, i, r.Index)
	}

	require.NoError(t, results[0].Err)
	assert.Equal(t, 1, results[0].Result.Summary.LargeCircles)
	assert.Zero(t, results[0].Result.Summary.SmallCircles)

	var invalid *models.InvalidInputError
	assert.True(t, errors.As(results[1].Err, &invalid))

	require.NoError(t, results[2].Err)
	assert.Equal(t, 1, results[2].Result.Summary.SmallCircles)
}

func TestBatchRunCancelled(t *testing.T) {
	c := newCoordinator(t, models.DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := c.BatchRun(ctx, []*safe.Mat{disksOnWhite(t, nil), disksOnWhite(t, nil)}, 1)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
		assert.Nil(t, r.Result)
	}
}
