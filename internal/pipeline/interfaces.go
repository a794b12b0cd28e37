package pipeline

import (
	"circle-inspector/internal/opencv/safe"
)

// Presenter shows or persists the original and processed images side by side
type Presenter interface {
	Present(original, processed *safe.Mat) error
}

// FigureSaver presents by writing the side-by-side composite to a file
type FigureSaver struct {
	Path string
}

func (f FigureSaver) Present(original, processed *safe.Mat) error {
	return SaveFigure(f.Path, original, processed)
}
