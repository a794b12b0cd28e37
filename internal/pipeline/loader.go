package pipeline

import (
	"errors"
	"fmt"
	"os"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"

	"circle-inspector/internal/models"
	"circle-inspector/internal/opencv/conversion"
	"circle-inspector/internal/opencv/safe"
)

// LoadImage decodes path as a 3-channel BGR image. OpenCV is tried first; formats it
// cannot read fall back to the Go decoders. Any failure is a *models.DecodeError.
func LoadImage(path string, tracker safe.MemoryTracker) (*safe.Mat, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &models.DecodeError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &models.DecodeError{Path: path, Err: errors.New("path is a directory")}
	}

	mat := gocv.IMRead(path, gocv.IMReadColor)
	if !mat.Empty() {
		img, err := safe.Wrap(mat, tracker, "original")
		if err != nil {
			return nil, &models.DecodeError{Path: path, Err: err}
		}
		return img, nil
	}
	mat.Close()

	decoded, err := imaging.Open(path)
	if err != nil {
		return nil, &models.DecodeError{Path: path, Err: err}
	}

	img, err := conversion.ImageToMat(imaging.Clone(decoded), tracker, "original")
	if err != nil {
		return nil, &models.DecodeError{Path: path, Err: fmt.Errorf("conversion failed: %w", err)}
	}
	return img, nil
}

// DecodeImage decodes encoded image bytes (PNG, JPEG, BMP...) as a BGR image
func DecodeImage(data []byte, tracker safe.MemoryTracker) (*safe.Mat, error) {
	if len(data) == 0 {
		return nil, &models.DecodeError{Path: "<memory>", Err: errors.New("no data")}
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, &models.DecodeError{Path: "<memory>", Err: err}
	}
	if mat.Empty() {
		mat.Close()
		return nil, &models.DecodeError{Path: "<memory>", Err: errors.New("unrecognized image data")}
	}

	return safe.Wrap(mat, tracker, "original")
}
