package pipeline

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"

	"circle-inspector/internal/opencv/conversion"
	"circle-inspector/internal/opencv/safe"
	"circle-inspector/internal/processing/chain"
)

const figureGap = 10

// SaveImage writes one raster with OpenCV; the format follows the file extension
func SaveImage(path string, img *safe.Mat) error {
	if err := safe.ValidateImage(img, "save image"); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if !gocv.IMWrite(path, img.GetMat()) {
		return fmt.Errorf("failed to write image %s", path)
	}
	return nil
}

// SaveStages writes every intermediate raster into dir as NN_name.png
func SaveStages(dir string, stages []chain.Stage) ([]string, error) {
	paths := make([]string, 0, len(stages))
	for i, stage := range stages {
		path := filepath.Join(dir, fmt.Sprintf("%02d_%s.png", i+1, stage.Name))
		if err := SaveImage(path, stage.Output); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ComposeFigure places original and processed next to each other on a white canvas
func ComposeFigure(original, processed *safe.Mat) (image.Image, error) {
	left, err := conversion.MatToImage(original)
	if err != nil {
		return nil, fmt.Errorf("original: %w", err)
	}
	right, err := conversion.MatToImage(processed)
	if err != nil {
		return nil, fmt.Errorf("processed: %w", err)
	}

	lb, rb := left.Bounds(), right.Bounds()
	height := lb.Dy()
	if rb.Dy() > height {
		height = rb.Dy()
	}

	figure := imaging.New(lb.Dx()+figureGap+rb.Dx(), height, color.White)
	figure = imaging.Paste(figure, left, image.Pt(0, 0))
	figure = imaging.Paste(figure, right, image.Pt(lb.Dx()+figureGap, 0))
	return figure, nil
}

// SaveFigure writes the side-by-side composite; the format follows the file extension
func SaveFigure(path string, original, processed *safe.Mat) error {
	figure, err := ComposeFigure(original, processed)
	if err != nil {
		return fmt.Errorf("failed to compose figure: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := imaging.Save(figure, path); err != nil {
		return fmt.Errorf("failed to save figure %s: %w", path, err)
	}
	return nil
}
