package conversion

import (
	"fmt"
	"image"
	"image/draw"

	"gocv.io/x/gocv"

	"circle-inspector/internal/opencv/safe"
)

// ConvertToGrayscale converts multi-channel images to single-channel grayscale.
// Single-channel input is cloned.
func ConvertToGrayscale(src *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateImage(src, "grayscale conversion"); err != nil {
		return nil, err
	}

	if src.Channels() == 1 {
		return src.Clone("gray")
	}

	code := gocv.ColorBGRToGray
	if src.Channels() == 4 {
		code = gocv.ColorBGRAToBGR
	}
	if err := safe.ValidateColorConversion(src, code); err != nil {
		return nil, err
	}

	srcMat := src.GetMat()
	dstMat := gocv.NewMat()

	switch src.Channels() {
	case 3:
		if err := gocv.CvtColor(srcMat, &dstMat, gocv.ColorBGRToGray); err != nil {
			dstMat.Close()
			return nil, fmt.Errorf("BGR to gray conversion failed: %w", err)
		}
	case 4:
		temp := gocv.NewMat()
		defer temp.Close()
		if err := gocv.CvtColor(srcMat, &temp, gocv.ColorBGRAToBGR); err != nil {
			dstMat.Close()
			return nil, fmt.Errorf("BGRA to BGR conversion failed: %w", err)
		}
		if err := gocv.CvtColor(temp, &dstMat, gocv.ColorBGRToGray); err != nil {
			dstMat.Close()
			return nil, fmt.Errorf("BGR to gray conversion failed: %w", err)
		}
	default:
		dstMat.Close()
		return nil, fmt.Errorf("unsupported channel count: %d", src.Channels())
	}

	return src.Derive(dstMat, "gray")
}

// ConvertToBGR returns a 3-channel copy of src suitable as an annotation canvas
func ConvertToBGR(src *safe.Mat, tag string) (*safe.Mat, error) {
	if err := safe.ValidateImage(src, "BGR conversion"); err != nil {
		return nil, err
	}

	srcMat := src.GetMat()

	var code gocv.ColorConversionCode
	switch src.Channels() {
	case 3:
		return src.Clone(tag)
	case 1:
		code = gocv.ColorGrayToBGR
	case 4:
		code = gocv.ColorBGRAToBGR
	default:
		return nil, fmt.Errorf("unsupported channel count: %d", src.Channels())
	}
	if err := safe.ValidateColorConversion(src, code); err != nil {
		return nil, err
	}

	dstMat := gocv.NewMat()
	if err := gocv.CvtColor(srcMat, &dstMat, code); err != nil {
		dstMat.Close()
		return nil, fmt.Errorf("conversion to BGR failed: %w", err)
	}

	return src.Derive(dstMat, tag)
}

// MatToImage converts a GoCV Mat to a standard Go image. BGR and BGRA input
// become RGBA; single-channel input becomes Gray.
func MatToImage(src *safe.Mat) (image.Image, error) {
	if err := safe.ValidateImage(src, "Mat to image conversion"); err != nil {
		return nil, err
	}

	rows := src.Rows()
	cols := src.Cols()
	channels := src.Channels()
	data := src.Bytes()

	switch channels {
	case 1:
		img := image.NewGray(image.Rect(0, 0, cols, rows))
		copy(img.Pix, data)
		return img, nil
	case 3, 4:
		img := image.NewRGBA(image.Rect(0, 0, cols, rows))
		for i, j := 0, 0; i+channels <= len(data); i, j = i+channels, j+4 {
			img.Pix[j] = data[i+2]
			img.Pix[j+1] = data[i+1]
			img.Pix[j+2] = data[i]
			img.Pix[j+3] = 255
			if channels == 4 {
				img.Pix[j+3] = data[i+3]
			}
		}
		return img, nil
	default:
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}
}

// ImageToMat converts a standard Go image to a BGR Mat, or a single-channel Mat
// for *image.Gray input
func ImageToMat(img image.Image, memTracker safe.MemoryTracker, tag string) (*safe.Mat, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if gray, ok := img.(*image.Gray); ok {
		data := make([]byte, 0, width*height)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			start := gray.PixOffset(bounds.Min.X, y)
			data = append(data, gray.Pix[start:start+width]...)
		}
		return safe.NewMatFromBytes(height, width, gocv.MatTypeCV8UC1, data, memTracker, tag)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	data := make([]byte, width*height*3)
	for i, j := 0, 0; i < len(data); i, j = i+3, j+4 {
		data[i] = rgba.Pix[j+2]
		data[i+1] = rgba.Pix[j+1]
		data[i+2] = rgba.Pix[j]
	}

	return safe.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, data, memTracker, tag)
}
