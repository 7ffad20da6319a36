//go:build opencv

package camera

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-faceoverlay/internal/log"
	"github.com/teslashibe/go-faceoverlay/pkg/frame"
)

const openCVAvailable = true

// OpenCVSource captures from a webcam, video file, or stream URL through
// gocv.VideoCapture and converts every frame to BGRA.
type OpenCVSource struct {
	*tagger

	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	capture *gocv.VideoCapture
	running bool
	stopCh  chan struct{}
	done    chan struct{}

	delivered  atomic.Int64
	readErrors atomic.Int64
}

func newOpenCVSource(cfg Config, logger *slog.Logger) (Source, error) {
	return NewOpenCVSource(cfg, logger), nil
}

// NewOpenCVSource creates a source for cfg.Device. The device is opened on Start.
func NewOpenCVSource(cfg Config, logger *slog.Logger) *OpenCVSource {
	return &OpenCVSource{
		tagger: newTagger(cfg),
		cfg:    cfg,
		logger: log.Or(logger),
	}
}

func (s *OpenCVSource) open() (*gocv.VideoCapture, error) {
	var device interface{} = s.cfg.Device
	if id, err := strconv.Atoi(s.cfg.Device); err == nil {
		device = id
	}

	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("open capture device %q: %w", s.cfg.Device, err)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, float64(s.cfg.Width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(s.cfg.Height))
	capture.Set(gocv.VideoCaptureFPS, float64(s.cfg.Framerate))
	return capture, nil
}

// Start opens the device and begins capture.
func (s *OpenCVSource) Start(ctx context.Context, handler FrameHandler) error {
	if handler == nil {
		return errors.New("camera: nil frame handler")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	capture, err := s.open()
	if err != nil {
		return err
	}

	s.capture = capture
	s.running = true
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})

	go s.captureLoop(ctx, handler, capture, s.stopCh, s.done)

	s.logger.Info("opencv camera started",
		"device", s.cfg.Device,
		"width", capture.Get(gocv.VideoCaptureFrameWidth),
		"height", capture.Get(gocv.VideoCaptureFrameHeight),
	)
	return nil
}

func (s *OpenCVSource) captureLoop(ctx context.Context, handler FrameHandler, capture *gocv.VideoCapture, stopCh, done chan struct{}) {
	defer close(done)

	bgr := gocv.NewMat()
	defer bgr.Close()
	bgra := gocv.NewMat()
	defer bgra.Close()

	format, err := s.cfg.Format()
	if err != nil {
		format = frame.FormatBGRA
	}

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			owned := s.stopCh == stopCh && s.running
			if owned {
				s.running = false
				s.capture = nil
				close(stopCh)
			}
			s.mu.Unlock()
			if owned {
				capture.Close()
			}
			return
		case <-stopCh:
			return
		default:
		}

		if ok := capture.Read(&bgr); !ok || bgr.Empty() {
			s.readErrors.Add(1)
			time.Sleep(10 * time.Millisecond)
			continue
		}

		gocv.CvtColor(bgr, &bgra, gocv.ColorBGRToBGRA)

		select {
		case <-stopCh:
			return
		default:
		}

		f := &frame.Frame{
			Data:        bgra.ToBytes(),
			Width:       bgra.Cols(),
			Height:      bgra.Rows(),
			BytesPerRow: bgra.Step(),
			Format:      format,
			Timestamp:   time.Now(),
		}
		s.tag(f)
		handler(f)
		s.delivered.Add(1)
	}
}

// Stop halts capture, waits for the loop to exit and releases the device.
func (s *OpenCVSource) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	done := s.done
	capture := s.capture
	s.capture = nil
	s.mu.Unlock()

	<-done
	if capture != nil {
		capture.Close()
	}
	s.logger.Info("opencv camera stopped", "frames", s.delivered.Load())
	return nil
}

// Config returns the capture configuration.
func (s *OpenCVSource) Config() Config {
	return s.cfg
}

// Name returns "opencv".
func (s *OpenCVSource) Name() string {
	return string(BackendOpenCV)
}

// Stats returns capture counters.
func (s *OpenCVSource) Stats() SourceStats {
	return SourceStats{
		FramesDelivered: s.delivered.Load(),
		ReadErrors:      s.readErrors.Load(),
	}
}
