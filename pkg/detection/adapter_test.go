package detection

import (
	"context"
	"errors"
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-faceoverlay/internal/log"
	"github.com/teslashibe/go-faceoverlay/pkg/frame"
	"github.com/teslashibe/go-faceoverlay/pkg/geometry"
	"github.com/teslashibe/go-faceoverlay/pkg/orientation"
)

func testImage(seq uint64) *frame.OrientedImage {
	img := frame.NewOrientedImage(image.NewRGBA(image.Rect(0, 0, 8, 4)), orientation.Up)
	img.Seq = seq
	return img
}

func collect(t *testing.T, a *Adapter, img *frame.OrientedImage) []geometry.NormalizedRect {
	t.Helper()
	seq, err := a.Detect(context.Background(), img)
	require.NoError(t, err)
	var out []geometry.NormalizedRect
	for r := range seq {
		out = append(out, r)
	}
	return out
}

func TestAdapter_YieldsDetections(t *testing.T) {
	mock := NewMockDetector(WithResults(
		Detection{NormalizedRect: geometry.NormalizedRect{X: 0.1, Y: 0.2, W: 0.3, H: 0.4}, Confidence: 0.9},
		Detection{NormalizedRect: geometry.NormalizedRect{X: 0.5, Y: 0.5, W: 0.1, H: 0.1}, Confidence: 0.8},
	))
	a := NewAdapter(mock, log.Discard())

	got := collect(t, a, testImage(1))
	assert.Equal(t, []geometry.NormalizedRect{
		{X: 0.1, Y: 0.2, W: 0.3, H: 0.4},
		{X: 0.5, Y: 0.5, W: 0.1, H: 0.1},
	}, got)
	assert.Equal(t, int64(1), mock.Calls())
}

func TestAdapter_SequenceIsSingleUse(t *testing.T) {
	mock := NewMockDetector(WithResults(
		Detection{NormalizedRect: geometry.NormalizedRect{W: 0.1, H: 0.1}},
	))
	a := NewAdapter(mock, log.Discard())

	seq, err := a.Detect(context.Background(), testImage(1))
	require.NoError(t, err)

	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}
	assert.Equal(t, 1, first)
	assert.Equal(t, 0, second)
}

func TestAdapter_IsLazy(t *testing.T) {
	mock := NewMockDetector(WithResults(
		Detection{NormalizedRect: geometry.NormalizedRect{W: 0.1, H: 0.1}},
		Detection{NormalizedRect: geometry.NormalizedRect{W: 0.2, H: 0.2}},
	))
	a := NewAdapter(mock, log.Discard())

	seq, err := a.Detect(context.Background(), testImage(1))
	require.NoError(t, err)

	n := 0
	for range seq {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestAdapter_NoStateBetweenCalls(t *testing.T) {
	mock := NewMockDetector(WithResults(
		Detection{NormalizedRect: geometry.NormalizedRect{W: 0.1, H: 0.1}},
	))
	a := NewAdapter(mock, log.Discard())

	assert.Len(t, collect(t, a, testImage(1)), 1)
	mock.SetResults()
	assert.Empty(t, collect(t, a, testImage(2)))
}

func TestAdapter_WrapsErrors(t *testing.T) {
	boom := errors.New("inference failed")
	a := NewAdapter(NewMockDetector(WithError(boom)), log.Discard())

	seq, err := a.Detect(context.Background(), testImage(42))
	assert.Nil(t, seq)
	require.Error(t, err)

	var de *DetectionError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, uint64(42), de.Seq)
	assert.Equal(t, "mock", de.Backend)
	assert.ErrorIs(t, err, boom)
}

func TestAdapter_RecoversPanics(t *testing.T) {
	a := NewAdapter(FuncDetector(func(ctx context.Context, img *frame.OrientedImage) ([]Detection, error) {
		panic("tensor shape mismatch")
	}), log.Discard())

	seq, err := a.Detect(context.Background(), testImage(3))
	assert.Nil(t, seq)

	var de *DetectionError
	require.True(t, errors.As(err, &de))
	assert.Contains(t, de.Error(), "tensor shape mismatch")
}

func TestAdapter_NilImage(t *testing.T) {
	a := NewAdapter(NewMockDetector(), log.Discard())
	_, err := a.Detect(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilImage)
}

func TestAdapter_DropsDegenerateBoxes(t *testing.T) {
	mock := NewMockDetector(WithResults(
		Detection{NormalizedRect: geometry.NormalizedRect{X: 0.1, W: 0, H: 0.1}},
		Detection{NormalizedRect: geometry.NormalizedRect{X: math.NaN(), W: 0.1, H: 0.1}},
		Detection{NormalizedRect: geometry.NormalizedRect{X: -0.1, Y: 1.05, W: 0.2, H: 0.2}},
	))
	a := NewAdapter(mock, log.Discard())

	got := collect(t, a, testImage(1))
	require.Len(t, got, 1)
	// Out-of-range boxes are kept; only the transformer decides placement.
	assert.Equal(t, -0.1, got[0].X)
}

func TestAdapter_ContextCancel(t *testing.T) {
	gate := make(chan struct{})
	a := NewAdapter(NewMockDetector(WithGate(gate)), log.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Detect(ctx, testImage(1))
	assert.ErrorIs(t, err, context.Canceled)
}
