//go:build !opencv

package camera

import (
	"fmt"
	"log/slog"
)

const openCVAvailable = false

// newOpenCVSource returns an error when built without the opencv tag.
func newOpenCVSource(cfg Config, logger *slog.Logger) (Source, error) {
	return nil, fmt.Errorf("OpenCV capture needs a build with -tags opencv")
}
