package filters

import (
	"context"

	"circle-inspector/internal/models"
	"circle-inspector/internal/opencv/conversion"
	"circle-inspector/internal/opencv/safe"
)

// GrayscaleConverter reduces BGR or BGRA input to one intensity channel
type GrayscaleConverter struct{}

func NewGrayscaleConverter() *GrayscaleConverter {
	return &GrayscaleConverter{}
}

func (g *GrayscaleConverter) Name() string {
	return "grayscale"
}

func (g *GrayscaleConverter) ShouldExecute(params models.CleanerParams) bool {
	return true
}

func (g *GrayscaleConverter) Apply(ctx context.Context, input *safe.Mat, params models.CleanerParams) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	return conversion.ConvertToGrayscale(input)
}
