package detection

import (
	"fmt"
	"log/slog"

	"github.com/teslashibe/go-faceoverlay/internal/log"
)

// NewDetector creates the detector named by cfg.Backend.
func NewDetector(cfg Config, logger *slog.Logger) (Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger = log.Or(logger)
	logger.Info("creating face detector",
		"backend", cfg.Backend,
		"model", cfg.ModelPath,
		"confidence", cfg.ConfidenceThresh,
	)

	switch cfg.Backend {
	case BackendMock:
		return NewMockDetector(), nil
	case BackendRemote:
		return NewRemote(cfg, logger)
	case BackendYuNet:
		return newYuNet(cfg, logger)
	case BackendYOLO:
		return newYOLO(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Backend)
	}
}

// AvailableBackends returns the backends compiled into this binary.
func AvailableBackends() []Backend {
	backends := []Backend{BackendMock, BackendRemote}
	if openCVAvailable {
		backends = append(backends, BackendYuNet, BackendYOLO)
	}
	return backends
}
