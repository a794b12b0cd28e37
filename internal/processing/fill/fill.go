// Package fill closes the interiors of boundary outlines in a binary edge mask.
package fill

import (
	"context"
	"image"

	"gocv.io/x/gocv"

	"circle-inspector/internal/models"
	"circle-inspector/internal/opencv/safe"
)

const (
	background byte = 0
	foreground byte = 255
)

var neighbors4 = [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// Fill floods the background reachable from the seed with 4-connectivity and marks every
// other pixel as foreground: result = edges OR NOT(flooded). The seed is (0,0) when it is
// background, otherwise the first background pixel on the border walking the top row, the
// right column, the bottom row and the left column. With no background on the border the
// whole image is enclosed and the result is all foreground.
func Fill(edges *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateBinaryMask(edges, "fill"); err != nil {
		return nil, err
	}

	rows, cols := edges.Rows(), edges.Cols()
	filled := FillBytes(edges.Bytes(), cols, rows)

	return safe.NewMatFromBytes(rows, cols, gocv.MatTypeCV8UC1, filled, edges.Tracker(), "filled")
}

// FillBytes applies Fill to a row-major single-channel pixel buffer and returns a new buffer
func FillBytes(pix []byte, width, height int) []byte {
	out := make([]byte, len(pix))
	for i := range out {
		out[i] = foreground
	}

	seed, ok := Seed(pix, width, height)
	if !ok {
		return out
	}

	visited := make([]bool, len(pix))
	queue := []int{seed.Y*width + seed.X}
	visited[queue[0]] = true

	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		out[idx] = background

		x, y := idx%width, idx/width
		for _, d := range neighbors4 {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || nx >= width || ny < 0 || ny >= height {
				continue
			}
			nIdx := ny*width + nx
			if visited[nIdx] || pix[nIdx] != background {
				continue
			}
			visited[nIdx] = true
			queue = append(queue, nIdx)
		}
	}

	return out
}

// Seed returns the flood origin for a mask, or false when no border pixel is background
func Seed(pix []byte, width, height int) (image.Point, bool) {
	if width <= 0 || height <= 0 || len(pix) < width*height {
		return image.Point{}, false
	}

	at := func(x, y int) bool { return pix[y*width+x] == background }

	for x := 0; x < width; x++ {
		if at(x, 0) {
			return image.Point{X: x, Y: 0}, true
		}
	}
	for y := 1; y < height; y++ {
		if at(width-1, y) {
			return image.Point{X: width - 1, Y: y}, true
		}
	}
	for x := width - 2; x >= 0 && height > 1; x-- {
		if at(x, height-1) {
			return image.Point{X: x, Y: height - 1}, true
		}
	}
	for y := height - 2; y > 0 && width > 1; y-- {
		if at(0, y) {
			return image.Point{X: 0, Y: y}, true
		}
	}

	return image.Point{}, false
}

// Step runs Fill as the last stage of a cleaning chain
type Step struct{}

func NewStep() *Step {
	return &Step{}
}

func (s *Step) Name() string {
	return "fill"
}

func (s *Step) ShouldExecute(params models.CleanerParams) bool {
	return true
}

func (s *Step) Apply(ctx context.Context, input *safe.Mat, params models.CleanerParams) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	return Fill(input)
}
