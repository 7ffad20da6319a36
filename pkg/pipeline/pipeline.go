// Package pipeline turns capture frames into a displayed image plus face
// outlines, one frame at a time.
//
// Frames arrive on the capture context through HandleFrame. A frame that
// arrives while the previous one is still being processed is dropped.
// Accepted frames are decoded right away (the capture buffer is only valid
// during the callback), detection runs on a worker goroutine, and every
// view mutation is posted to a Presenter.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-faceoverlay/internal/log"
	"github.com/teslashibe/go-faceoverlay/pkg/debug"
	"github.com/teslashibe/go-faceoverlay/pkg/detection"
	"github.com/teslashibe/go-faceoverlay/pkg/frame"
	"github.com/teslashibe/go-faceoverlay/pkg/geometry"
	"github.com/teslashibe/go-faceoverlay/pkg/orientation"
	"github.com/teslashibe/go-faceoverlay/pkg/overlay"
)

// Display is the view that shows the preview.
// All methods are called on the presenter goroutine.
type Display interface {
	// ContainerSize returns the size of the view the image is fitted into.
	ContainerSize() geometry.Size

	// ShowImage displays img inside rect (container coordinates).
	ShowImage(img *frame.OrientedImage, rect geometry.Rect)

	// ShowOverlay replaces the outlined rectangles.
	ShowOverlay(set overlay.Set)
}

// Config controls pipeline behaviour.
type Config struct {
	// DiscardStale ignores detection results older than the last applied one.
	DiscardStale bool

	// PresenterQueue is the number of view mutations that may be pending.
	PresenterQueue int

	// Normalize maps the frame's sensor and interface orientation to the tag
	// attached to the decoded image. Defaults to orientation.Normalize.
	Normalize func(orientation.Sensor, orientation.Interface) orientation.Orientation
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		DiscardStale:   true,
		PresenterQueue: 8,
		Normalize:      orientation.Normalize,
	}
}

// ErrStopped is returned by Start after Stop.
var ErrStopped = errors.New("pipeline: stopped")

// task is one accepted frame. seq and img are set on the capture context and
// never modified; display and shown belong to the presenter.
type task struct {
	seq      uint64
	img      *frame.OrientedImage
	received time.Time

	display geometry.Rect
	shown   bool
}

// Pipeline wires decoder, normalizer, detection adapter, layout and overlay.
type Pipeline struct {
	cfg       Config
	id        string
	logger    *slog.Logger
	adapter   *detection.Adapter
	display   Display
	presenter *Presenter
	slot      *slot

	busy    atomic.Bool
	stopped atomic.Bool
	started atomic.Bool
	seq     atomic.Uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	stats counters

	// Owned by the presenter goroutine.
	lastOverlaySeq uint64
	lastTask       *task
	lastRects      []geometry.NormalizedRect
	shownTask      *task

	detectFailures int
}

// New creates a pipeline. Call Start before feeding frames.
func New(cfg Config, det detection.Detector, display Display, logger *slog.Logger) *Pipeline {
	if cfg.Normalize == nil {
		cfg.Normalize = orientation.Normalize
	}
	if cfg.PresenterQueue <= 0 {
		cfg.PresenterQueue = DefaultConfig().PresenterQueue
	}

	id := uuid.NewString()
	logger = log.Or(logger).With("component", "pipeline", "session", id)

	return &Pipeline{
		cfg:       cfg,
		id:        id,
		logger:    logger,
		adapter:   detection.NewAdapter(det, logger),
		display:   display,
		presenter: NewPresenter(cfg.PresenterQueue, logger),
		slot:      newSlot(),
	}
}

// ID returns the session ID attached to this pipeline's logs.
func (p *Pipeline) ID() string {
	return p.id
}

// Presenter returns the presentation context, so other view code can run
// on the same goroutine.
func (p *Pipeline) Presenter() *Presenter {
	return p.presenter
}

// Start launches the detection worker. ctx bounds every detection call.
func (p *Pipeline) Start(ctx context.Context) error {
	if p.stopped.Load() {
		return ErrStopped
	}
	if !p.started.CompareAndSwap(false, true) {
		return nil
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go p.worker()

	p.logger.Info("pipeline started", "discard_stale", p.cfg.DiscardStale)
	return nil
}

// HandleFrame is the capture callback. It never blocks on detection.
func (p *Pipeline) HandleFrame(f *frame.Frame) {
	p.stats.received.Add(1)

	if p.stopped.Load() {
		return
	}
	if !p.busy.CompareAndSwap(false, true) {
		p.stats.droppedBusy.Add(1)
		return
	}

	var sensor orientation.Sensor
	var iface orientation.Interface
	if f != nil {
		sensor, iface = f.Sensor, f.Interface
	}

	img, err := frame.Decode(f, p.cfg.Normalize(sensor, iface))
	if err != nil {
		p.stats.decodeErrors.Add(1)
		p.logger.Debug("dropping frame", "error", err)
		p.busy.Store(false)
		return
	}

	t := &task{
		seq:      p.seq.Add(1),
		img:      img,
		received: time.Now(),
	}
	img.Seq = t.seq

	debug.FrameLog("🎞️  frame %d: %dx%d %s → %s\n",
		t.seq, f.Width, f.Height, iface, img.Orientation)

	if !p.presenter.Post(func() { p.applyImage(t) }) || !p.slot.publish(t) {
		p.busy.Store(false)
	}
}

func (p *Pipeline) worker() {
	defer p.wg.Done()
	for {
		t := p.slot.take()
		if t == nil {
			return
		}
		p.process(t)
	}
}

// process runs detection for t and queues the overlay update.
func (p *Pipeline) process(t *task) {
	defer p.busy.Store(false)

	start := time.Now()
	rects, err := p.detect(t)
	p.stats.lastDetection.Store(int64(time.Since(start)))
	p.stats.processed.Add(1)

	if err != nil {
		p.stats.detectionErrors.Add(1)
		p.detectFailures++
		if p.detectFailures == 1 {
			p.logger.Warn("detection failed, showing frame without overlay", "seq", t.seq, "error", err)
		} else {
			p.logger.Debug("detection failed", "seq", t.seq, "error", err, "consecutive", p.detectFailures)
		}
		rects = nil
	} else if p.detectFailures > 0 {
		p.logger.Info("detection recovered", "seq", t.seq, "failed_frames", p.detectFailures)
		p.detectFailures = 0
	}

	p.presenter.Post(func() { p.applyOverlay(t, rects) })
}

func (p *Pipeline) detect(t *task) ([]geometry.NormalizedRect, error) {
	seq, err := p.adapter.Detect(p.ctx, t.img)
	if err != nil {
		return nil, err
	}
	var rects []geometry.NormalizedRect
	for r := range seq {
		rects = append(rects, r)
	}
	return rects, nil
}

// applyImage runs on the presenter.
func (p *Pipeline) applyImage(t *task) {
	if p.stopped.Load() {
		p.stats.stoppedDiscarded.Add(1)
		return
	}

	rect, ok := p.layout(t.img)
	if !ok {
		return
	}

	t.display = rect
	t.shown = true
	p.shownTask = t
	p.display.ShowImage(t.img, rect)
	p.stats.imagesShown.Add(1)
}

// applyOverlay runs on the presenter, always after applyImage for the same task.
func (p *Pipeline) applyOverlay(t *task, rects []geometry.NormalizedRect) {
	if p.stopped.Load() {
		p.stats.stoppedDiscarded.Add(1)
		return
	}
	if !t.shown {
		return
	}
	if p.cfg.DiscardStale && t.seq < p.lastOverlaySeq {
		p.stats.staleDiscarded.Add(1)
		return
	}

	set := overlay.Set(geometry.TransformAll(rects, t.display))
	p.display.ShowOverlay(set)

	p.lastOverlaySeq = t.seq
	p.lastTask = t
	p.lastRects = rects

	p.stats.overlaysApplied.Add(1)
	p.stats.lastFaces.Store(int64(len(set)))
	p.stats.lastSeq.Store(t.seq)

	debug.FrameLog("🟥 frame %d: %d face(s) in %s, %v after capture\n",
		t.seq, len(set), t.display, time.Since(t.received).Round(time.Millisecond))
}

func (p *Pipeline) layout(img *frame.OrientedImage) (geometry.Rect, bool) {
	rect, err := geometry.AspectFit(img.Size(), p.display.ContainerSize())
	if err != nil {
		p.stats.invalidDimensions.Add(1)
		p.logger.Debug("skipping frame", "seq", img.Seq, "error", err)
		return geometry.Rect{}, false
	}
	return rect, true
}

// Relayout recomputes the display rect of the frame on screen against the
// current container size and shows it again. The overlay is redrawn only
// when it belongs to that frame; otherwise the pending overlay picks up the
// new rect when it is applied. Call it when the container is resized.
func (p *Pipeline) Relayout() {
	p.presenter.Post(func() {
		if p.stopped.Load() || p.shownTask == nil {
			return
		}
		t := p.shownTask
		rect, ok := p.layout(t.img)
		if !ok {
			return
		}
		t.display = rect
		p.display.ShowImage(t.img, rect)
		if p.lastTask == t {
			p.display.ShowOverlay(overlay.Set(geometry.TransformAll(p.lastRects, rect)))
		}
	})
}

// Stop halts frame delivery. Detection already in progress may finish but
// its result is discarded. Safe to call more than once.
func (p *Pipeline) Stop() {
	if !p.stopped.CompareAndSwap(false, true) {
		return
	}
	p.slot.close()
	p.logger.Info("pipeline stopped", "stats", p.Stats())
}

// Wait is called after Stop. It blocks until the detection worker has
// exited, then shuts down the presenter. If ctx ends first the in-flight
// detection is cancelled and Wait returns without waiting for it; a
// detector that ignores cancellation keeps only its own goroutine alive.
func (p *Pipeline) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	if p.cancel != nil {
		p.cancel()
	}
	p.presenter.Close()
	return err
}

// Stats returns a snapshot of the pipeline counters.
func (p *Pipeline) Stats() Stats {
	return p.stats.snapshot()
}

// Busy reports whether a frame is currently being processed.
func (p *Pipeline) Busy() bool {
	return p.busy.Load()
}
