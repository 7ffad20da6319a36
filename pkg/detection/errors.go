package detection

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrNilImage is returned when Detect is called without an image.
	ErrNilImage = errors.New("detection: nil image")

	// ErrClosed is returned when a closed detector is used.
	ErrClosed = errors.New("detection: detector closed")

	// ErrModelNotFound is returned when the model file does not exist.
	ErrModelNotFound = errors.New("detection: model file not found")

	// ErrBackendUnavailable is returned for backends not compiled into this binary.
	ErrBackendUnavailable = errors.New("detection: backend unavailable")

	// ErrNoURL is returned when the remote backend has no endpoint.
	ErrNoURL = errors.New("detection: remote URL required")
)

// DetectionError wraps a detector failure for one frame. The pipeline treats
// the frame as having no faces.
type DetectionError struct {
	// Seq is the sequence number of the frame that was being analysed.
	Seq uint64

	// Backend identifies the detector that failed.
	Backend string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *DetectionError) Error() string {
	if e.Backend != "" {
		return fmt.Sprintf("detection [%s]: frame %d: %v", e.Backend, e.Seq, e.Err)
	}
	return fmt.Sprintf("detection: frame %d: %v", e.Seq, e.Err)
}

// Unwrap returns the underlying error.
func (e *DetectionError) Unwrap() error {
	return e.Err
}

// RemoteError is a non-200 answer from the remote detection service.
type RemoteError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	return fmt.Sprintf("detection [remote]: HTTP %d: %s", e.StatusCode, e.Message)
}
