//go:build !opencv

package detection

import (
	"fmt"
	"log/slog"
)

const openCVAvailable = false

// newYuNet returns an error when built without the opencv tag.
func newYuNet(cfg Config, logger *slog.Logger) (Detector, error) {
	return nil, fmt.Errorf("%w: yunet needs a build with -tags opencv, or run with -detector remote", ErrBackendUnavailable)
}

// newYOLO returns an error when built without the opencv tag.
func newYOLO(cfg Config, logger *slog.Logger) (Detector, error) {
	return nil, fmt.Errorf("%w: yolo needs a build with -tags opencv, or run with -detector remote", ErrBackendUnavailable)
}
