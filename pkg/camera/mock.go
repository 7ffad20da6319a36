package camera

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-faceoverlay/internal/log"
	"github.com/teslashibe/go-faceoverlay/pkg/frame"
)

// MockSource is a capture source for testing and demos.
// It generates a gradient with a bright square drifting across it, and
// reuses one buffer for every frame the way real capture drivers do.
type MockSource struct {
	*tagger

	cfg     Config
	logger  *slog.Logger
	format  frame.PixelFormat
	padding int

	mu      sync.Mutex
	running bool
	closed  bool
	stopCh  chan struct{}
	done    chan struct{}

	buf        []byte
	background []byte
	tick       int

	delivered  atomic.Int64
	readErrors atomic.Int64
}

// MockSourceOption configures a MockSource.
type MockSourceOption func(*MockSource)

// WithRowPadding adds n unused bytes at the end of every row.
func WithRowPadding(n int) MockSourceOption {
	return func(m *MockSource) {
		m.padding = n
	}
}

// NewMockSource creates a new mock capture source.
func NewMockSource(cfg Config, logger *slog.Logger, opts ...MockSourceOption) *MockSource {
	format, err := cfg.Format()
	if err != nil {
		format = frame.FormatBGRA
	}

	m := &MockSource{
		tagger: newTagger(cfg),
		cfg:    cfg,
		logger: log.Or(logger),
		format: format,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Start begins generating frames.
func (m *MockSource) Start(ctx context.Context, handler FrameHandler) error {
	if handler == nil {
		return errors.New("camera: nil frame handler")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if m.running {
		return nil
	}

	m.running = true
	m.stopCh = make(chan struct{})
	m.done = make(chan struct{})

	go m.generateLoop(ctx, handler, m.stopCh, m.done)

	m.logger.Info("mock camera started",
		"width", m.cfg.Width,
		"height", m.cfg.Height,
		"framerate", m.cfg.Framerate,
	)

	return nil
}

func (m *MockSource) generateLoop(ctx context.Context, handler FrameHandler, stopCh, done chan struct{}) {
	defer close(done)

	fps := m.cfg.Framerate
	if fps <= 0 {
		fps = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.mu.Lock()
			if m.stopCh == stopCh && m.running {
				m.running = false
				close(stopCh)
			}
			m.mu.Unlock()
			return
		case <-stopCh:
			return
		case <-ticker.C:
			// Stop may have raced with the tick.
			select {
			case <-stopCh:
				return
			default:
			}

			f := m.render()
			handler(f)
			m.delivered.Add(1)
		}
	}
}

// render fills the shared buffer with the next synthetic frame.
func (m *MockSource) render() *frame.Frame {
	w, h := m.cfg.Width, m.cfg.Height
	rowBytes := w * frame.BytesPerPixel
	stride := rowBytes + m.padding

	if len(m.buf) != stride*h {
		m.buf = make([]byte, stride*h)
		m.background = make([]byte, rowBytes)
	}

	// Horizontal gradient, shifting a little every frame.
	for x := 0; x < w; x++ {
		v := byte((x*255/max(w-1, 1) + m.tick) & 0xff)
		i := x * frame.BytesPerPixel
		m.background[i+0] = v / 2
		m.background[i+1] = 64
		m.background[i+2] = 255 - v
		m.background[i+3] = 0xff
	}
	for y := 0; y < h; y++ {
		copy(m.buf[y*stride:], m.background)
	}

	// A light square a fifth of the height tall, drifting left to right.
	side := max(h/5, 1)
	sx := (m.tick * 4) % max(w-side, 1)
	sy := (h - side) / 2
	for y := sy; y < sy+side && y < h; y++ {
		row := m.buf[y*stride:]
		for x := sx; x < sx+side && x < w; x++ {
			i := x * frame.BytesPerPixel
			row[i+0], row[i+1], row[i+2], row[i+3] = 200, 220, 240, 0xff
		}
	}
	m.tick++

	f := &frame.Frame{
		Data:        m.buf,
		Width:       w,
		Height:      h,
		BytesPerRow: stride,
		Format:      m.format,
		Timestamp:   time.Now(),
	}
	m.tag(f)
	return f
}

// Stop halts frame generation and waits for the loop to exit.
func (m *MockSource) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	close(m.stopCh)
	done := m.done
	m.mu.Unlock()

	<-done
	m.logger.Info("mock camera stopped", "frames", m.delivered.Load())
	return nil
}

// Close stops the source for good.
func (m *MockSource) Close() error {
	err := m.Stop()
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return err
}

// Config returns the capture configuration.
func (m *MockSource) Config() Config {
	return m.cfg
}

// Name returns "mock".
func (m *MockSource) Name() string {
	return string(BackendMock)
}

// Stats returns capture counters.
func (m *MockSource) Stats() SourceStats {
	return SourceStats{
		FramesDelivered: m.delivered.Load(),
		ReadErrors:      m.readErrors.Load(),
	}
}
