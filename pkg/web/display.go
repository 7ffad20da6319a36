package web

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"time"

	"github.com/teslashibe/go-faceoverlay/pkg/frame"
	"github.com/teslashibe/go-faceoverlay/pkg/geometry"
	"github.com/teslashibe/go-faceoverlay/pkg/overlay"
)

// ErrNoImage is returned while no frame has been shown yet.
var ErrNoImage = errors.New("web: no image shown yet")

// ContainerSize returns the current viewport.
func (s *Server) ContainerSize() geometry.Size {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewport
}

// ShowImage records the image and its display rect and pushes a preview.
func (s *Server) ShowImage(img *frame.OrientedImage, rect geometry.Rect) {
	s.mu.Lock()
	s.image = img
	s.display = rect
	s.mu.Unlock()

	s.publishPreview()
}

// ShowOverlay replaces the outlined rectangles and pushes both streams.
func (s *Server) ShowOverlay(set overlay.Set) {
	s.renderer.SetRects(set)

	if err := s.overlayHub.BroadcastJSON(s.Overlay()); err != nil {
		s.logger.Warn("encode overlay", "error", err)
	}
	s.publishPreview()
}

// SetViewport changes the container size the pipeline lays images out in.
// Sizes that are not positive or exceed MaxViewport are rejected.
func (s *Server) SetViewport(size geometry.Size) error {
	if !size.Positive() || size.W > MaxViewport.W || size.H > MaxViewport.H {
		return &geometry.InvalidDimensionsError{Container: size}
	}

	s.mu.Lock()
	changed := size != s.viewport
	s.viewport = size
	s.mu.Unlock()

	if !changed {
		return nil
	}
	s.renderer.Resize(size)
	s.logger.Info("viewport changed", "size", size)

	if s.OnViewportChange != nil {
		s.OnViewportChange(size)
	}
	return nil
}

// Overlay returns the current overlay state.
func (s *Server) Overlay() OverlayState {
	s.mu.RLock()
	img, display, viewport := s.image, s.display, s.viewport
	s.mu.RUnlock()

	st := OverlayState{
		Viewport:  viewport,
		Rects:     s.renderer.Rects(),
		Rendered:  s.renderer.Version(),
		Timestamp: time.Now().UnixMilli(),
	}
	if st.Rects == nil {
		st.Rects = []geometry.Rect{}
	}
	if img != nil {
		size := img.Size()
		st.Seq = img.Seq
		st.Image = &size
		st.Display = &display
	}
	return st
}

// Snapshot renders the current preview. Without withOverlay it returns the
// upright image at its own resolution.
func (s *Server) Snapshot(withOverlay bool) (image.Image, error) {
	s.mu.RLock()
	img, display, viewport := s.image, s.display, s.viewport
	s.mu.RUnlock()

	if img == nil {
		return nil, ErrNoImage
	}
	if !withOverlay {
		return img.Upright(), nil
	}
	return overlay.Compose(img.Upright(), display, s.renderer.Image(), viewport), nil
}

// SnapshotJPEG is Snapshot encoded as JPEG.
func (s *Server) SnapshotJPEG(withOverlay bool) ([]byte, error) {
	img, err := s.Snapshot(withOverlay)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	q := s.quality
	s.mu.RUnlock()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return buf.Bytes(), nil
}

// publishPreview encodes a preview only when someone is watching.
func (s *Server) publishPreview() {
	if s.previewHub.ClientCount() == 0 {
		return
	}
	data, err := s.SnapshotJPEG(true)
	if err != nil {
		s.logger.Debug("preview skipped", "error", err)
		return
	}
	s.previewHub.BroadcastBinary(data)
}
