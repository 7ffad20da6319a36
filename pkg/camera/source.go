package camera

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/teslashibe/go-faceoverlay/pkg/frame"
	"github.com/teslashibe/go-faceoverlay/pkg/orientation"
)

// ErrClosed is returned when starting a source that has been closed.
var ErrClosed = errors.New("camera: source closed")

// FrameHandler receives frames one at a time on the capture goroutine.
// f.Data is only valid until the handler returns.
type FrameHandler func(f *frame.Frame)

// Source pushes frames from a camera or other input.
type Source interface {
	// Start begins capture and calls handler for every frame.
	// Calling Start on a running source is a no-op.
	Start(ctx context.Context, handler FrameHandler) error

	// Stop halts delivery. Once it returns the handler is not called again.
	// It is safe to call Stop multiple times but not from inside the handler.
	Stop() error

	// SetInterface changes the interface orientation attached to later frames.
	SetInterface(iface orientation.Interface)

	// Config returns the capture configuration.
	Config() Config

	// Name returns the backend name (e.g., "opencv", "mock").
	Name() string

	// Stats returns capture counters.
	Stats() SourceStats
}

// SourceStats contains statistics about a capture source.
type SourceStats struct {
	// FramesDelivered is the number of frames handed to the handler.
	FramesDelivered int64 `json:"frames_delivered"`

	// ReadErrors is the number of failed or empty reads from the device.
	ReadErrors int64 `json:"read_errors"`
}

// tagger stamps frames with sequence numbers and orientation.
type tagger struct {
	sensor orientation.Sensor
	iface  atomic.Int32
	seq    atomic.Uint64
}

func newTagger(cfg Config) *tagger {
	t := &tagger{sensor: cfg.Sensor()}
	t.iface.Store(int32(cfg.Interface))
	return t
}

func (t *tagger) SetInterface(iface orientation.Interface) {
	t.iface.Store(int32(iface))
}

func (t *tagger) tag(f *frame.Frame) {
	f.Seq = t.seq.Add(1)
	f.Sensor = t.sensor
	f.Interface = orientation.Interface(t.iface.Load())
}
