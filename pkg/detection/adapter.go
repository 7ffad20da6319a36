package detection

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/teslashibe/go-faceoverlay/internal/log"
	"github.com/teslashibe/go-faceoverlay/pkg/debug"
	"github.com/teslashibe/go-faceoverlay/pkg/frame"
	"github.com/teslashibe/go-faceoverlay/pkg/geometry"
)

// Adapter runs a Detector once per image and hands back the faces as a lazy
// sequence. It keeps no state between calls.
type Adapter struct {
	detector Detector
	name     string
	logger   *slog.Logger
}

// NewAdapter wraps d. A nil logger uses the process logger.
func NewAdapter(d Detector, logger *slog.Logger) *Adapter {
	return &Adapter{
		detector: d,
		name:     backendName(d),
		logger:   log.Or(logger).With("component", "detection", "backend", backendName(d)),
	}
}

// Detector returns the wrapped backend.
func (a *Adapter) Detector() Detector {
	return a.detector
}

// Detect performs a single detection pass over img.
//
// The returned sequence can be ranged over once; later ranges yield nothing.
// Any backend failure, including a panic, comes back as a *DetectionError.
func (a *Adapter) Detect(ctx context.Context, img *frame.OrientedImage) (seq iter.Seq[geometry.NormalizedRect], err error) {
	var frameSeq uint64
	if img != nil {
		frameSeq = img.Seq
	}

	defer func() {
		if r := recover(); r != nil {
			seq = nil
			err = &DetectionError{Seq: frameSeq, Backend: a.name, Err: fmt.Errorf("detector panic: %v", r)}
		}
	}()

	if img == nil || img.Image == nil {
		return nil, &DetectionError{Seq: frameSeq, Backend: a.name, Err: ErrNilImage}
	}

	dets, err := a.detector.Detect(ctx, img)
	if err != nil {
		return nil, &DetectionError{Seq: frameSeq, Backend: a.name, Err: err}
	}

	dets = usable(dets)
	if best := SelectBest(dets); best != nil {
		debug.FrameLog("👁️  frame %d: %d face(s), best at (%.2f, %.2f) conf %.2f\n",
			frameSeq, len(dets), best.X, best.Y, best.Confidence)
	}

	return singleUse(dets), nil
}

// Close closes the wrapped backend.
func (a *Adapter) Close() error {
	return a.detector.Close()
}

// usable drops boxes with non-finite coordinates or no area.
func usable(dets []Detection) []Detection {
	out := dets[:0:0]
	for _, d := range dets {
		if !finite(d.X, d.Y, d.W, d.H) || d.W <= 0 || d.H <= 0 {
			continue
		}
		out = append(out, d)
	}
	return out
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func singleUse(dets []Detection) iter.Seq[geometry.NormalizedRect] {
	var used atomic.Bool
	return func(yield func(geometry.NormalizedRect) bool) {
		if used.Swap(true) {
			return
		}
		for _, d := range dets {
			if !yield(d.NormalizedRect) {
				return
			}
		}
	}
}

func backendName(d Detector) string {
	if n, ok := d.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", d)
}
