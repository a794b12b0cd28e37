// Package cleaner turns a raw image into a filled binary mask of the objects worth
// classifying: grayscale, Otsu, optional inversion, Euclidean opening, Canny, fill.
package cleaner

import (
	"context"
	"fmt"

	"circle-inspector/internal/debug/timing"
	"circle-inspector/internal/logger"
	"circle-inspector/internal/models"
	"circle-inspector/internal/opencv/safe"
	"circle-inspector/internal/processing/chain"
	"circle-inspector/internal/processing/fill"
	"circle-inspector/internal/processing/filters"
)

const component = "cleaner"

type Cleaner struct {
	params models.CleanerParams
	chain  *chain.ProcessingChain
	logger logger.Logger
}

func New(params models.CleanerParams, log logger.Logger, tracker *timing.Tracker) *Cleaner {
	if log == nil {
		log = logger.NoOpLogger{}
	}

	steps := []chain.ProcessingStep{
		filters.NewGrayscaleConverter(),
		filters.NewOtsuBinarizer(log),
		filters.NewForegroundInverter(),
		filters.NewEuclideanOpening(),
		filters.NewCannyEdges(),
		fill.NewStep(),
	}

	return &Cleaner{
		params: params,
		chain:  chain.NewProcessingChain(steps).WithTiming(tracker),
		logger: log,
	}
}

// Clean returns a new single-channel mask, 255 on filled objects and 0 elsewhere
func (c *Cleaner) Clean(ctx context.Context, img *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateImage(img, "clean"); err != nil {
		return nil, err
	}

	mask, err := c.chain.Execute(ctx, img, c.params)
	if err != nil {
		return nil, fmt.Errorf("cleaning failed: %w", err)
	}

	c.logger.Debug(component, "mask ready", map[string]interface{}{
		"rows":           mask.Rows(),
		"cols":           mask.Cols(),
		"opening_radius": c.params.OpeningRadius,
		"invert":         c.params.InvertForeground,
		"steps":          c.chain.GetStepNames(),
	})

	return mask, nil
}

// Stages runs the same pipeline as Clean and returns every intermediate raster in order.
// The last stage is the mask Clean would return. The caller closes the stages.
func (c *Cleaner) Stages(ctx context.Context, img *safe.Mat) ([]chain.Stage, error) {
	if err := safe.ValidateImage(img, "clean"); err != nil {
		return nil, err
	}

	stages, err := c.chain.ExecuteStages(ctx, img, c.params)
	if err != nil {
		return nil, fmt.Errorf("cleaning failed: %w", err)
	}
	return stages, nil
}
