package pipeline

import (
	"time"

	"gocv.io/x/gocv"

	"circle-inspector/internal/models"
	"circle-inspector/internal/opencv/safe"
)

// Summary condenses one run for logging and the command-line report
type Summary struct {
	Width          int
	Height         int
	MaskCoverage   float64
	Contours       int
	LargeCircles   int
	SmallCircles   int
	NonCircles     int
	Outlines       int
	HoughCircles   int
	HoughFound     bool
	ClassifyHalted bool
	Duration       time.Duration
	// StageAverages holds the mean duration per timed stage across every run of the
	// coordinator. Empty when no timing tracker is set.
	StageAverages map[string]time.Duration
}

// MaskCoverage is the fraction of mask pixels set to foreground
func MaskCoverage(mask *safe.Mat) float64 {
	if safe.ValidateMatForOperation(mask, "coverage") != nil {
		return 0
	}
	total := mask.Rows() * mask.Cols()
	return float64(gocv.CountNonZero(mask.GetMat())) / float64(total)
}

func summarize(result *Result, duration time.Duration, stageAverages map[string]time.Duration) Summary {
	report := result.Report
	return Summary{
		Width:          result.Processed.Cols(),
		Height:         result.Processed.Rows(),
		MaskCoverage:   MaskCoverage(result.Mask),
		Contours:       report.ContourCount,
		LargeCircles:   report.Count(models.KindCircle, models.SizeLarge),
		SmallCircles:   report.Count(models.KindCircle, models.SizeSmall),
		NonCircles:     report.Count(models.KindNonCircle, models.SizeNone),
		Outlines:       report.OutlineCount(),
		HoughCircles:   len(result.HoughCircles),
		HoughFound:     result.HoughFound,
		ClassifyHalted: report.Halted != nil,
		Duration:       duration,
		StageAverages:  stageAverages,
	}
}

func (s Summary) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"width":         s.Width,
		"height":        s.Height,
		"mask_coverage": s.MaskCoverage,
		"contours":      s.Contours,
		"large_circles": s.LargeCircles,
		"small_circles": s.SmallCircles,
		"non_circles":   s.NonCircles,
		"outlines":      s.Outlines,
		"hough_circles": s.HoughCircles,
		"hough_found":   s.HoughFound,
		"halted":        s.ClassifyHalted,
		"duration_ms":   s.Duration.Milliseconds(),
	}
	for stage, avg := range s.StageAverages {
		fields[stage+"_avg_ms"] = float64(avg.Microseconds()) / 1000
	}
	return fields
}
