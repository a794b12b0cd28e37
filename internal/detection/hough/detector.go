// Package hough finds circles in a binary mask with the gradient Hough transform.
package hough

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"

	"circle-inspector/internal/detection/annotate"
	"circle-inspector/internal/logger"
	"circle-inspector/internal/models"
	"circle-inspector/internal/opencv/conversion"
	"circle-inspector/internal/opencv/safe"
)

const component = "hough_detector"

// Result is the annotated copy of the base image and the circles drawn on it
type Result struct {
	Image   *safe.Mat
	Circles []models.Circle
}

func (r *Result) Close() {
	if r != nil {
		r.Image.Close()
	}
}

type Detector struct {
	params    models.HoughParams
	annotator *annotate.Annotator
	logger    logger.Logger
}

func New(params models.HoughParams, style models.AnnotationStyle, log logger.Logger) (*Detector, error) {
	annotator, err := annotate.NewAnnotator(style)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NoOpLogger{}
	}

	return &Detector{params: params, annotator: annotator, logger: log}, nil
}

// Circles runs the transform on mask and returns the detected circles rounded half to even
func (d *Detector) Circles(mask *safe.Mat) ([]models.Circle, error) {
	if err := safe.ValidateMatForOperation(mask, "hough"); err != nil {
		return nil, err
	}
	if mask.Type() != gocv.MatTypeCV8UC1 {
		return nil, models.NewInvalidInput("hough", "expected single-channel 8-bit mask, got %d channels",
			mask.Channels())
	}

	found := gocv.NewMat()
	defer found.Close()

	if err := gocv.HoughCirclesWithParams(mask.GetMat(), &found, gocv.HoughGradient,
		d.params.DP, d.params.MinDist, d.params.Param1, d.params.Param2,
		d.params.MinRadius, d.params.MaxRadius); err != nil {
		return nil, fmt.Errorf("hough transform: %w", err)
	}

	if found.Empty() {
		return nil, nil
	}

	circles := make([]models.Circle, 0, found.Cols())
	for i := 0; i < found.Cols(); i++ {
		v := found.GetVecfAt(0, i)
		if len(v) < 3 {
			continue
		}
		circles = append(circles, models.Circle{
			X:      int(math.RoundToEven(float64(v[0]))),
			Y:      int(math.RoundToEven(float64(v[1]))),
			Radius: int(math.RoundToEven(float64(v[2]))),
		})
	}

	return circles, nil
}

// Detect outlines every circle found in mask on a copy of base. found is false, with a nil
// result, when the transform finds nothing.
func (d *Detector) Detect(base, mask *safe.Mat) (result *Result, found bool, err error) {
	circles, err := d.Circles(mask)
	if err != nil {
		return nil, false, err
	}

	if len(circles) == 0 {
		d.logger.Debug(component, "no circles found", nil)
		return nil, false, nil
	}

	canvas, err := conversion.ConvertToBGR(base, "hough")
	if err != nil {
		return nil, false, fmt.Errorf("hough canvas: %w", err)
	}

	canvasMat := canvas.GetMat()
	for _, c := range circles {
		if err := d.annotator.Outline(&canvasMat, c); err != nil {
			canvas.Close()
			return nil, false, err
		}
	}

	d.logger.Debug(component, "circles drawn", map[string]interface{}{
		"count": len(circles),
	})

	return &Result{Image: canvas, Circles: circles}, true, nil
}
