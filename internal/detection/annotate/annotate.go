// Package annotate renders circle outlines and caption text onto BGR canvases.
package annotate

import (
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"gocv.io/x/gocv"

	"circle-inspector/internal/models"
)

type Annotator struct {
	outline        color.RGBA
	circleText     color.RGBA
	nonCircleText  color.RGBA
	thickness      int
	fontScale      float64
	textThickness  int
	secondLineDown int
}

func NewAnnotator(style models.AnnotationStyle) (*Annotator, error) {
	outline, err := ParseColor(style.OutlineColor)
	if err != nil {
		return nil, fmt.Errorf("outline color: %w", err)
	}
	circleText, err := ParseColor(style.CircleTextColor)
	if err != nil {
		return nil, fmt.Errorf("circle text color: %w", err)
	}
	nonCircleText, err := ParseColor(style.NonCircleColor)
	if err != nil {
		return nil, fmt.Errorf("non-circle text color: %w", err)
	}

	return &Annotator{
		outline:        outline,
		circleText:     circleText,
		nonCircleText:  nonCircleText,
		thickness:      style.OutlineThickness,
		fontScale:      style.FontScale,
		textThickness:  style.TextThickness,
		secondLineDown: style.SecondLineOffsetY,
	}, nil
}

// ParseColor reads a #RRGGBB string into an opaque color
func ParseColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// Outline draws the circle boundary
func (a *Annotator) Outline(canvas *gocv.Mat, c models.Circle) error {
	if err := gocv.Circle(canvas, c.Center(), c.Radius, a.outline, a.thickness); err != nil {
		return fmt.Errorf("outline at (%d,%d) r=%d: %w", c.X, c.Y, c.Radius, err)
	}
	return nil
}

// Label draws the first caption line at origin and returns what was drawn
func (a *Annotator) Label(canvas *gocv.Mat, kind models.ShapeKind, origin image.Point) (models.Caption, error) {
	text := string(kind)
	textColor := a.circleText
	if kind != models.KindCircle {
		textColor = a.nonCircleText
	}
	return a.put(canvas, text, origin, textColor)
}

// SizeNote draws the diameter caption one line below origin
func (a *Annotator) SizeNote(canvas *gocv.Mat, size models.SizeClass, threshold int, origin image.Point) (models.Caption, error) {
	relation := "<"
	if size == models.SizeLarge {
		relation = ">"
	}
	text := fmt.Sprintf("d %s %d pixels", relation, threshold)
	return a.put(canvas, text, origin.Add(image.Pt(0, a.secondLineDown)), a.circleText)
}

func (a *Annotator) put(canvas *gocv.Mat, text string, origin image.Point, c color.RGBA) (models.Caption, error) {
	caption := models.Caption{Text: text, Origin: origin}
	if err := gocv.PutText(canvas, text, origin, gocv.FontHersheySimplex, a.fontScale, c, a.textThickness); err != nil {
		return caption, fmt.Errorf("caption %q: %w", text, err)
	}
	return caption, nil
}
