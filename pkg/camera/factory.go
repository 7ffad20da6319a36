package camera

import (
	"fmt"
	"log/slog"

	"github.com/teslashibe/go-faceoverlay/internal/log"
)

// NewSource creates a new capture source with the given configuration.
// If cfg.Backend is BackendAuto, the best available backend is selected.
func NewSource(cfg Config, logger *slog.Logger) (Source, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %v", errs)
	}

	logger = log.Or(logger)

	backend := cfg.Backend
	if backend == BackendAuto || backend == "" {
		backend = detectBestBackend()
	}

	logger.Info("creating capture source",
		"backend", backend,
		"device", cfg.Device,
		"width", cfg.Width,
		"height", cfg.Height,
		"framerate", cfg.Framerate,
		"interface", cfg.Interface,
	)

	switch backend {
	case BackendMock:
		return NewMockSource(cfg, logger), nil
	case BackendOpenCV:
		return newOpenCVSource(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}

// detectBestBackend returns the best backend compiled into this binary.
func detectBestBackend() Backend {
	if openCVAvailable {
		return BackendOpenCV
	}
	return BackendMock
}

// AvailableBackends returns the list of backends compiled into this binary.
func AvailableBackends() []Backend {
	backends := []Backend{BackendMock}
	if openCVAvailable {
		backends = append(backends, BackendOpenCV)
	}
	return backends
}
