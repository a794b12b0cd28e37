// Package pipeline wires the cleaner, the contour classifier and the Hough detector
// into one run over an image, plus loading and saving helpers around it.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"circle-inspector/internal/debug/timing"
	"circle-inspector/internal/detection/contour"
	"circle-inspector/internal/detection/hough"
	"circle-inspector/internal/logger"
	"circle-inspector/internal/models"
	"circle-inspector/internal/opencv/conversion"
	"circle-inspector/internal/opencv/safe"
	"circle-inspector/internal/processing/cleaner"
)

const component = "pipeline"

var stageNames = []string{"clean", "classify", "hough"}

// Result holds the outputs of one run. Original is the caller's input and is not owned
// by the Result; Close releases Processed and Mask.
type Result struct {
	Original     *safe.Mat
	Processed    *safe.Mat
	Mask         *safe.Mat
	Report       models.ClassificationReport
	HoughCircles []models.Circle
	HoughFound   bool
	Summary      Summary
}

func (r *Result) Close() {
	if r == nil {
		return
	}
	r.Processed.Close()
	r.Mask.Close()
}

type Coordinator struct {
	config     models.Config
	cleaner    *cleaner.Cleaner
	classifier *contour.Classifier
	detector   *hough.Detector
	logger     logger.Logger
	timing     *timing.Tracker
}

// NewCoordinator validates cfg and builds every stage from it. tracker may be nil.
func NewCoordinator(cfg models.Config, log logger.Logger, tracker *timing.Tracker) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if log == nil {
		log = logger.NoOpLogger{}
	}

	classifier, err := contour.New(cfg.Classifier, cfg.Annotation, cfg.Run, log)
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}
	detector, err := hough.New(cfg.Hough, cfg.Annotation, log)
	if err != nil {
		return nil, fmt.Errorf("hough detector: %w", err)
	}

	return &Coordinator{
		config:     cfg,
		cleaner:    cleaner.New(cfg.Cleaner, log, tracker),
		classifier: classifier,
		detector:   detector,
		logger:     log,
		timing:     tracker,
	}, nil
}

func (c *Coordinator) Cleaner() *cleaner.Cleaner {
	return c.cleaner
}

// Run cleans img, classifies its contours and, in hough mode, outlines the Hough circles
// on top of the classifier output. img is not modified.
func (c *Coordinator) Run(ctx context.Context, img *safe.Mat) (*Result, error) {
	start := time.Now()

	if err := safe.ValidateImage(img, "run"); err != nil {
		return nil, err
	}

	stageCtx := c.timing.StartTimingWith(ctx, "clean")
	mask, err := c.cleaner.Clean(stageCtx, img)
	c.timing.EndTiming(stageCtx)
	if err != nil {
		return nil, err
	}

	base := img
	if c.config.Run.Output == models.OutputBinary {
		base, err = conversion.ConvertToBGR(mask, "binary_base")
		if err != nil {
			mask.Close()
			return nil, fmt.Errorf("binary base: %w", err)
		}
		defer base.Close()
	}

	if err := ctx.Err(); err != nil {
		mask.Close()
		return nil, err
	}

	stageCtx = c.timing.StartTimingWith(ctx, "classify")
	classified, report, err := c.classifier.Classify(base, mask)
	c.timing.EndTiming(stageCtx)
	if err != nil {
		mask.Close()
		return nil, fmt.Errorf("classification failed: %w", err)
	}

	result := &Result{
		Original:  img,
		Processed: classified,
		Mask:      mask,
		Report:    report,
	}

	if c.config.Run.Draw == models.DrawHough {
		if err := c.applyHough(ctx, result); err != nil {
			result.Close()
			return nil, err
		}
	}

	result.Summary = summarize(result, time.Since(start), c.stageAverages())
	c.logger.Info(component, "run complete", result.Summary.Fields())

	return result, nil
}

func (c *Coordinator) applyHough(ctx context.Context, result *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stageCtx := c.timing.StartTimingWith(ctx, "hough")
	detected, found, err := c.detector.Detect(result.Processed, result.Mask)
	c.timing.EndTiming(stageCtx)
	if err != nil {
		return fmt.Errorf("hough detection failed: %w", err)
	}

	if !found {
		c.logger.Info(component, "no hough circles found, keeping classifier output", nil)
		return nil
	}

	result.Processed.Close()
	result.Processed = detected.Image
	result.HoughCircles = detected.Circles
	result.HoughFound = true
	return nil
}

// stageAverages reports the mean duration of every timed stage so far
func (c *Coordinator) stageAverages() map[string]time.Duration {
	averages := make(map[string]time.Duration, len(stageNames))
	for _, name := range stageNames {
		if avg := c.timing.GetAverageTime(name); avg > 0 {
			averages[name] = avg
		}
	}
	return averages
}

// BatchResult pairs one input of BatchRun with its outcome
type BatchResult struct {
	Index  int
	Result *Result
	Err    error
}

// BatchRun runs independent images concurrently with at most workers goroutines
// (runtime.NumCPU when workers <= 0). Results are returned in input order.
func (c *Coordinator) BatchRun(ctx context.Context, images []*safe.Mat, workers int) []BatchResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]BatchResult, len(images))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, img := range images {
		results[i].Index = i

		select {
		case <-ctx.Done():
			results[i].Err = ctx.Err()
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, img *safe.Mat) {
			defer wg.Done()
			defer func() { <-sem }()

			results[i].Result, results[i].Err = c.Run(ctx, img)
		}(i, img)
	}

	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	c.logger.Info(component, "batch complete", map[string]interface{}{
		"images":  len(images),
		"workers": workers,
		"failed":  failed,
	})

	return results
}
