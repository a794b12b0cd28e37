package filters

import (
	"context"
	"fmt"

	"gocv.io/x/gocv"

	"circle-inspector/internal/logger"
	"circle-inspector/internal/models"
	"circle-inspector/internal/opencv/safe"
)

// OtsuBinarizer maps pixels above the Otsu threshold to 255 and the rest to 0
type OtsuBinarizer struct {
	logger logger.Logger
}

func NewOtsuBinarizer(log logger.Logger) *OtsuBinarizer {
	if log == nil {
		log = logger.NoOpLogger{}
	}
	return &OtsuBinarizer{logger: log}
}

func (o *OtsuBinarizer) Name() string {
	return "otsu"
}

func (o *OtsuBinarizer) ShouldExecute(params models.CleanerParams) bool {
	return true
}

func (o *OtsuBinarizer) Apply(ctx context.Context, input *safe.Mat, params models.CleanerParams) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := safe.ValidateMatForOperation(input, "otsu threshold"); err != nil {
		return nil, err
	}
	if input.Type() != gocv.MatTypeCV8UC1 {
		return nil, models.NewInvalidInput("otsu threshold", "expected single-channel 8-bit input, got %d channels",
			input.Channels())
	}

	dst := gocv.NewMat()
	threshold := gocv.Threshold(input.GetMat(), &dst, 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)

	o.logger.Debug("otsu", "threshold selected", map[string]interface{}{
		"threshold": threshold,
	})

	result, err := input.Derive(dst, "otsu")
	if err != nil {
		return nil, fmt.Errorf("otsu output: %w", err)
	}
	return result, nil
}

// ForegroundInverter complements a binary mask. It runs only when InvertForeground is set.
type ForegroundInverter struct{}

func NewForegroundInverter() *ForegroundInverter {
	return &ForegroundInverter{}
}

func (f *ForegroundInverter) Name() string {
	return "invert"
}

func (f *ForegroundInverter) ShouldExecute(params models.CleanerParams) bool {
	return params.InvertForeground
}

func (f *ForegroundInverter) Apply(ctx context.Context, input *safe.Mat, params models.CleanerParams) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	return Invert(input, "inverted")
}

// Invert returns the bitwise complement of a single-channel mask
func Invert(input *safe.Mat, tag string) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(input, "invert"); err != nil {
		return nil, err
	}

	dst := gocv.NewMat()
	if err := gocv.BitwiseNot(input.GetMat(), &dst); err != nil {
		dst.Close()
		return nil, fmt.Errorf("bitwise not: %w", err)
	}
	return input.Derive(dst, tag)
}
