package models

import "image"

// Circle is a circle candidate in integer pixel coordinates
type Circle struct {
	X      int
	Y      int
	Radius int
}

func (c Circle) Center() image.Point {
	return image.Point{X: c.X, Y: c.Y}
}

func (c Circle) Diameter() int {
	return 2 * c.Radius
}

// ShapeKind is the classification label of a contour
type ShapeKind string

const (
	KindCircle    ShapeKind = "circle"
	KindNonCircle ShapeKind = "non-circle"
)

// SizeClass splits circles around the diameter threshold
type SizeClass string

const (
	SizeNone  SizeClass = ""
	SizeLarge SizeClass = "large"
	SizeSmall SizeClass = "small"
)

// Caption is one text annotation drawn onto the processed image
type Caption struct {
	Text   string
	Origin image.Point
}

// Shape holds the measurements and label of one external contour
type Shape struct {
	Index       int
	Perimeter   float64
	Area        float64
	Circularity float64
	Vertices    int
	CenterX     float32
	CenterY     float32
	Radius      float32
	// Diameter is twice the truncated enclosing radius.
	Diameter int
	Kind     ShapeKind
	Size     SizeClass
	Captions []Caption
	Outlined bool
}

// Enclosing returns the minimum enclosing circle truncated to integers
func (s Shape) Enclosing() Circle {
	return Circle{X: int(s.CenterX), Y: int(s.CenterY), Radius: int(s.Radius)}
}

// ClassificationReport summarizes one classification pass
type ClassificationReport struct {
	Shapes       []Shape
	ContourCount int
	Skipped      []int
	Halted       *DegenerateContourError
}

// Count returns how many shapes carry the given label and size
func (r ClassificationReport) Count(kind ShapeKind, size SizeClass) int {
	n := 0
	for _, s := range r.Shapes {
		if s.Kind == kind && s.Size == size {
			n++
		}
	}
	return n
}

// CaptionCount returns how many captions with the given text were drawn
func (r ClassificationReport) CaptionCount(text string) int {
	n := 0
	for _, s := range r.Shapes {
		for _, c := range s.Captions {
			if c.Text == text {
				n++
			}
		}
	}
	return n
}

// OutlineCount returns how many circle outlines were drawn
func (r ClassificationReport) OutlineCount() int {
	n := 0
	for _, s := range r.Shapes {
		if s.Outlined {
			n++
		}
	}
	return n
}
