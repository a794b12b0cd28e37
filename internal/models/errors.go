package models

import "fmt"

// InvalidInputError reports a raster the pipeline cannot operate on, such as an
// empty or zero-dimension image.
type InvalidInputError struct {
	Op     string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input for %s: %s", e.Op, e.Reason)
}

// NewInvalidInput builds an InvalidInputError with a formatted reason
func NewInvalidInput(op, format string, args ...interface{}) *InvalidInputError {
	return &InvalidInputError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// DecodeError is raised by the image loader when a file is missing or cannot be decoded
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to decode image %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("failed to decode image %s", e.Path)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DegenerateContourError marks a contour with zero perimeter
type DegenerateContourError struct {
	Index int
}

func (e *DegenerateContourError) Error() string {
	return fmt.Sprintf("contour %d has zero perimeter", e.Index)
}
