// Package contour labels the external contours of a binary mask as circles or
// non-circles using circularity and polygon-approximation vertex counts.
package contour

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"circle-inspector/internal/detection/annotate"
	"circle-inspector/internal/logger"
	"circle-inspector/internal/models"
	"circle-inspector/internal/opencv/conversion"
	"circle-inspector/internal/opencv/safe"
)

const component = "contour_classifier"

type Classifier struct {
	params    models.ClassifierParams
	draw      models.DrawMode
	captions  bool
	annotator *annotate.Annotator
	logger    logger.Logger
}

func New(params models.ClassifierParams, style models.AnnotationStyle, run models.RunConfig, log logger.Logger) (*Classifier, error) {
	annotator, err := annotate.NewAnnotator(style)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NoOpLogger{}
	}

	return &Classifier{
		params:    params,
		draw:      run.Draw,
		captions:  run.Captions,
		annotator: annotator,
		logger:    log,
	}, nil
}

// Classify finds the external contours of mask and annotates a copy of base. Neither
// input is modified.
func (c *Classifier) Classify(base, mask *safe.Mat) (*safe.Mat, models.ClassificationReport, error) {
	if err := safe.ValidateBinaryMask(mask, "classify"); err != nil {
		return nil, models.ClassificationReport{}, err
	}

	contours := gocv.FindContours(mask.GetMat(), gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer contours.Close()

	points := make([][]image.Point, contours.Size())
	for i := range points {
		points[i] = contours.At(i).ToPoints()
	}

	return c.ClassifyContours(base, points)
}

// ClassifyContours runs the classification pass over caller-supplied contours in order
func (c *Classifier) ClassifyContours(base *safe.Mat, contours [][]image.Point) (*safe.Mat, models.ClassificationReport, error) {
	report := models.ClassificationReport{ContourCount: len(contours)}

	canvas, err := conversion.ConvertToBGR(base, "classified")
	if err != nil {
		return nil, report, fmt.Errorf("classification canvas: %w", err)
	}

	canvasMat := canvas.GetMat()

	for i, pts := range contours {
		shape, ok := Measure(pts, c.params)
		if !ok {
			degenerate := &models.DegenerateContourError{Index: i}
			switch c.params.OnDegenerate {
			case models.DegenerateSkip:
				report.Skipped = append(report.Skipped, i)
				continue
			case models.DegenerateAbort:
				canvas.Close()
				return nil, report, degenerate
			default:
				report.Halted = degenerate
			}
			c.logger.Warning(component, "zero-perimeter contour stopped classification", map[string]interface{}{
				"index":     i,
				"remaining": len(contours) - i - 1,
			})
			break
		}
		shape.Index = i

		if err := c.annotate(&canvasMat, &shape); err != nil {
			canvas.Close()
			return nil, report, fmt.Errorf("annotating contour %d: %w", i, err)
		}
		report.Shapes = append(report.Shapes, shape)
	}

	c.logger.Debug(component, "classification complete", map[string]interface{}{
		"contours":    report.ContourCount,
		"circles":     report.Count(models.KindCircle, models.SizeLarge) + report.Count(models.KindCircle, models.SizeSmall),
		"non_circles": report.Count(models.KindNonCircle, models.SizeNone),
		"outlines":    report.OutlineCount(),
		"skipped":     len(report.Skipped),
		"halted":      report.Halted != nil,
	})

	return canvas, report, nil
}

func (c *Classifier) annotate(canvas *gocv.Mat, shape *models.Shape) error {
	enclosing := shape.Enclosing()
	origin := enclosing.Center()

	if c.captions {
		label, err := c.annotator.Label(canvas, shape.Kind, origin)
		if err != nil {
			return err
		}
		shape.Captions = append(shape.Captions, label)

		if shape.Kind == models.KindCircle {
			note, err := c.annotator.SizeNote(canvas, shape.Size, c.params.DiameterThreshold, origin)
			if err != nil {
				return err
			}
			shape.Captions = append(shape.Captions, note)
		}
	}

	if c.draw == models.DrawContour && shape.Kind == models.KindCircle && shape.Size == models.SizeLarge {
		if err := c.annotator.Outline(canvas, enclosing); err != nil {
			return err
		}
		shape.Outlined = true
	}

	return nil
}

// Measure computes the geometry and label of one closed contour. It reports false when
// the perimeter is zero.
func Measure(pts []image.Point, params models.ClassifierParams) (models.Shape, bool) {
	if len(pts) == 0 {
		return models.Shape{}, false
	}

	pv := gocv.NewPointVectorFromPoints(pts)
	defer pv.Close()

	perimeter := gocv.ArcLength(pv, true)
	if perimeter == 0 {
		return models.Shape{}, false
	}

	area := gocv.ContourArea(pv)

	approx := gocv.ApproxPolyDP(pv, params.ApproxEpsilonFactor*perimeter, true)
	vertices := approx.Size()
	approx.Close()

	x, y, r := gocv.MinEnclosingCircle(pv)

	shape := models.Shape{
		Perimeter:   perimeter,
		Area:        area,
		Circularity: 4 * params.Pi * (area / (perimeter * perimeter)),
		Vertices:    vertices,
		CenterX:     x,
		CenterY:     y,
		Radius:      r,
		Kind:        models.KindNonCircle,
		Size:        models.SizeNone,
	}
	shape.Diameter = shape.Enclosing().Diameter()

	if shape.Circularity > params.MinCircularity && shape.Vertices > params.MinVertices {
		shape.Kind = models.KindCircle
		shape.Size = models.SizeSmall
		if shape.Diameter > params.DiameterThreshold {
			shape.Size = models.SizeLarge
		}
	}

	return shape, true
}
