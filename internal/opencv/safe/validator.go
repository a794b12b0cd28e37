package safe

import (
	"gocv.io/x/gocv"

	"circle-inspector/internal/models"
)

func ValidateMatForOperation(mat *Mat, operation string) error {
	if mat == nil {
		return models.NewInvalidInput(operation, "image is nil")
	}

	if !mat.IsValid() {
		return models.NewInvalidInput(operation, "image has been closed")
	}

	if mat.Empty() {
		return models.NewInvalidInput(operation, "image is empty")
	}

	if mat.Rows() <= 0 || mat.Cols() <= 0 {
		return models.NewInvalidInput(operation, "image has invalid dimensions %dx%d", mat.Cols(), mat.Rows())
	}

	return nil
}

// ValidateImage accepts 8-bit rasters with 1, 3 or 4 channels
func ValidateImage(mat *Mat, operation string) error {
	if err := ValidateMatForOperation(mat, operation); err != nil {
		return err
	}

	switch mat.Type() {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4:
		return nil
	default:
		return models.NewInvalidInput(operation, "unsupported type %v with %d channels for %q",
			mat.Type(), mat.Channels(), mat.Tag())
	}
}

// ValidateBinaryMask requires a single-channel 8-bit raster whose pixels are 0 or 255
func ValidateBinaryMask(mat *Mat, operation string) error {
	if err := ValidateMatForOperation(mat, operation); err != nil {
		return err
	}

	if mat.Type() != gocv.MatTypeCV8UC1 {
		return models.NewInvalidInput(operation, "binary mask must be single-channel 8-bit, got %d channels",
			mat.Channels())
	}

	for i, v := range mat.Bytes() {
		if v != 0 && v != 255 {
			return models.NewInvalidInput(operation, "binary mask %q holds value %d at pixel (%d,%d)",
				mat.Tag(), v, i%mat.Cols(), i/mat.Cols())
		}
	}

	return nil
}

func ValidateColorConversion(src *Mat, code gocv.ColorConversionCode) error {
	if err := ValidateMatForOperation(src, "CvtColor"); err != nil {
		return err
	}

	channels := src.Channels()

	switch code {
	case gocv.ColorBGRToGray:
		if channels != 3 {
			return models.NewInvalidInput("CvtColor", "BGR to gray conversion requires 3 channels, got %d", channels)
		}
	case gocv.ColorGrayToBGR:
		if channels != 1 {
			return models.NewInvalidInput("CvtColor", "gray to BGR conversion requires 1 channel, got %d", channels)
		}
	case gocv.ColorBGRAToBGR, gocv.ColorBGRAToGray:
		if channels != 4 {
			return models.NewInvalidInput("CvtColor", "BGRA conversion requires 4 channels, got %d", channels)
		}
	}

	return nil
}
