//go:build !opencv

package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-faceoverlay/internal/log"
)

func TestNewDetector(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"mock", Config{Backend: BackendMock}, nil},
		{"remote", Config{Backend: BackendRemote, URL: "http://127.0.0.1:1/detect"}, nil},
		{"yunet without opencv", DefaultConfig(), ErrBackendUnavailable},
		{"yolo without opencv", DefaultYOLOConfig(), ErrBackendUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDetector(tt.cfg, log.Discard())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, d.Close())
		})
	}
}

func TestAvailableBackends(t *testing.T) {
	assert.ElementsMatch(t, []Backend{BackendMock, BackendRemote}, AvailableBackends())
}
