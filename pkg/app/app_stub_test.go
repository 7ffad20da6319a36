//go:build !opencv

package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-faceoverlay/pkg/detection"
)

func TestInit_DefaultDetectorNeedsOpenCV(t *testing.T) {
	cfg := testConfig()
	cfg.Detector = DefaultConfig().Detector

	a, err := New(cfg)
	require.NoError(t, err)

	err = a.Init()
	require.ErrorIs(t, err, detection.ErrBackendUnavailable)
	assert.Contains(t, err.Error(), "-tags opencv")
	assert.Contains(t, err.Error(), "-detector remote")
	assert.Contains(t, err.Error(), "available: [")
}
