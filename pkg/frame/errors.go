package frame

import (
	"errors"
	"fmt"
)

// Sentinel errors for buffers that cannot be decoded.
var (
	// ErrNilFrame is returned when no frame was supplied.
	ErrNilFrame = errors.New("frame: nil frame")

	// ErrZeroDimensions is returned for frames with a zero or negative size.
	ErrZeroDimensions = errors.New("frame: zero dimensions")

	// ErrUnsupportedFormat is returned for pixel formats outside the BGRA family.
	ErrUnsupportedFormat = errors.New("frame: unsupported pixel format")

	// ErrTooLarge is returned when the frame geometry does not fit in memory.
	ErrTooLarge = errors.New("frame: dimensions too large")

	// ErrShortBuffer is returned when the buffer is smaller than its geometry claims.
	ErrShortBuffer = errors.New("frame: buffer too short")
)

// DecodeError reports a frame that could not be turned into an image.
// Callers drop the frame and wait for the next one.
type DecodeError struct {
	Seq uint64
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("frame %d: decode: %v", e.Seq, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}
