package filters

import (
	"context"
	"fmt"

	"gocv.io/x/gocv"

	"circle-inspector/internal/models"
	"circle-inspector/internal/opencv/safe"
)

// CannyEdges traces the boundaries of the opened mask
type CannyEdges struct{}

func NewCannyEdges() *CannyEdges {
	return &CannyEdges{}
}

func (c *CannyEdges) Name() string {
	return "canny"
}

func (c *CannyEdges) ShouldExecute(params models.CleanerParams) bool {
	return true
}

func (c *CannyEdges) Apply(ctx context.Context, input *safe.Mat, params models.CleanerParams) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := safe.ValidateMatForOperation(input, "canny"); err != nil {
		return nil, err
	}

	edges := gocv.NewMat()
	if err := gocv.Canny(input.GetMat(), &edges, params.CannyLow, params.CannyHigh); err != nil {
		edges.Close()
		return nil, fmt.Errorf("canny: %w", err)
	}

	return input.Derive(edges, "edges")
}
