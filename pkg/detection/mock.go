package detection

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-faceoverlay/pkg/frame"
)

// MockDetector is a scripted detector for testing and demos.
type MockDetector struct {
	mu      sync.Mutex
	results []Detection
	err     error
	delay   time.Duration
	gate    <-chan struct{}
	closed  bool

	calls atomic.Int64
}

// MockOption configures a MockDetector.
type MockOption func(*MockDetector)

// WithResults makes every call return dets.
func WithResults(dets ...Detection) MockOption {
	return func(m *MockDetector) {
		m.results = append([]Detection(nil), dets...)
	}
}

// WithError makes every call fail with err.
func WithError(err error) MockOption {
	return func(m *MockDetector) {
		m.err = err
	}
}

// WithDelay makes every call take at least d.
func WithDelay(d time.Duration) MockOption {
	return func(m *MockDetector) {
		m.delay = d
	}
}

// WithGate makes every call block until gate is closed or receives.
func WithGate(gate <-chan struct{}) MockOption {
	return func(m *MockDetector) {
		m.gate = gate
	}
}

// NewMockDetector creates a mock that finds nothing unless configured.
func NewMockDetector(opts ...MockOption) *MockDetector {
	m := &MockDetector{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name identifies the backend in logs and errors.
func (m *MockDetector) Name() string { return string(BackendMock) }

// SetResults replaces the scripted results.
func (m *MockDetector) SetResults(dets ...Detection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append([]Detection(nil), dets...)
}

// SetError replaces the scripted error. nil clears it.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect ran.
func (m *MockDetector) Calls() int64 {
	return m.calls.Load()
}

// Detect returns the scripted results.
func (m *MockDetector) Detect(ctx context.Context, img *frame.OrientedImage) ([]Detection, error) {
	m.calls.Add(1)

	m.mu.Lock()
	closed, delay, gate := m.closed, m.delay, m.gate
	m.mu.Unlock()

	if closed {
		return nil, ErrClosed
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]Detection(nil), m.results...), nil
}

// Close marks the mock closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// FuncDetector adapts a plain function to the Detector interface.
type FuncDetector func(ctx context.Context, img *frame.OrientedImage) ([]Detection, error)

// Detect calls f.
func (f FuncDetector) Detect(ctx context.Context, img *frame.OrientedImage) ([]Detection, error) {
	return f(ctx, img)
}

// Close does nothing.
func (f FuncDetector) Close() error { return nil }

// Name identifies the backend in logs and errors.
func (f FuncDetector) Name() string { return "func" }
