package filters

import (
	"context"
	"fmt"

	"gocv.io/x/gocv"

	"circle-inspector/internal/models"
	"circle-inspector/internal/opencv/safe"
)

// EuclideanOpening removes foreground regions narrower than twice the radius using two
// distance-transform thresholds instead of a structuring element, so surviving edges are
// not reshaped by a kernel.
type EuclideanOpening struct{}

func NewEuclideanOpening() *EuclideanOpening {
	return &EuclideanOpening{}
}

func (e *EuclideanOpening) Name() string {
	return "euclidean_opening"
}

func (e *EuclideanOpening) ShouldExecute(params models.CleanerParams) bool {
	return params.OpeningRadius > 0
}

func (e *EuclideanOpening) Apply(ctx context.Context, input *safe.Mat, params models.CleanerParams) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := safe.ValidateMatForOperation(input, "euclidean opening"); err != nil {
		return nil, err
	}
	if input.Type() != gocv.MatTypeCV8UC1 {
		return nil, models.NewInvalidInput("euclidean opening", "expected single-channel 8-bit mask, got %d channels",
			input.Channels())
	}

	radius := params.OpeningRadius

	// Erosion: pixels deeper than radius inside the foreground, stored inverted (0 = kept).
	erodedInv, err := thresholdDistance(input.GetMat(), radius, gocv.ThresholdBinaryInv)
	if err != nil {
		return nil, fmt.Errorf("erosion: %w", err)
	}
	defer erodedInv.Close()

	// Dilation of the eroded set: pixels farther than radius from it form the complement
	// of the opening.
	complement, err := thresholdDistance(erodedInv, radius, gocv.ThresholdBinary)
	if err != nil {
		return nil, fmt.Errorf("dilation: %w", err)
	}
	defer complement.Close()

	opened := gocv.NewMat()
	if err := gocv.BitwiseNot(complement, &opened); err != nil {
		opened.Close()
		return nil, fmt.Errorf("complement: %w", err)
	}

	return input.Derive(opened, "opened")
}

// thresholdDistance computes the L2 distance map of src and thresholds it at radius,
// returning an 8-bit mask
func thresholdDistance(src gocv.Mat, radius float32, typ gocv.ThresholdType) (gocv.Mat, error) {
	dist := gocv.NewMat()
	defer dist.Close()
	labels := gocv.NewMat()
	defer labels.Close()

	if err := gocv.DistanceTransform(src, &dist, &labels, gocv.DistL2, gocv.DistanceMask5, gocv.DistanceLabelCComp); err != nil {
		return gocv.NewMat(), fmt.Errorf("distance transform: %w", err)
	}
	if dist.Empty() {
		return gocv.NewMat(), fmt.Errorf("distance transform produced no output")
	}

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(dist, &binary, radius, 255, typ)

	out := gocv.NewMat()
	if err := binary.ConvertTo(&out, gocv.MatTypeCV8U); err != nil {
		out.Close()
		return gocv.NewMat(), fmt.Errorf("convert to 8-bit: %w", err)
	}
	return out, nil
}
