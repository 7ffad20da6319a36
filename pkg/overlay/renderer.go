// Package overlay draws face rectangles as outlines on a transparent layer
// that sits on top of the camera preview.
package overlay

import (
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/fogleman/gg"

	"github.com/teslashibe/go-faceoverlay/pkg/geometry"
)

// Style is the stroke used for every rectangle.
type Style struct {
	Color     color.Color
	LineWidth float64
}

// DefaultStyle is a 2 px red outline.
func DefaultStyle() Style {
	return Style{
		Color:     color.RGBA{R: 255, A: 255},
		LineWidth: 2,
	}
}

// Set is the ordered list of view-space rectangles currently shown.
type Set []geometry.Rect

// Clone returns an independent copy of s.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	return append(Set(nil), s...)
}

// Renderer owns an overlay Set and the layer it was last drawn to.
// Every change goes through an explicit set-and-redraw call.
type Renderer struct {
	mu      sync.RWMutex
	size    geometry.Size
	style   Style
	rects   Set
	layer   *image.RGBA
	version uint64
}

// NewRenderer creates a renderer with an empty set and a transparent layer.
func NewRenderer(size geometry.Size, style Style) *Renderer {
	if style.Color == nil {
		style.Color = DefaultStyle().Color
	}
	if style.LineWidth <= 0 {
		style.LineWidth = DefaultStyle().LineWidth
	}
	r := &Renderer{size: size, style: style}
	r.redraw()
	return r
}

// SetRects replaces the whole set with a copy of rects and redraws.
func (r *Renderer) SetRects(rects Set) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rects = rects.Clone()
	r.redraw()
}

// Resize changes the layer size and redraws the current set.
func (r *Renderer) Resize(size geometry.Size) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if size == r.size {
		return
	}
	r.size = size
	r.redraw()
}

// Rects returns a copy of the current set.
func (r *Renderer) Rects() Set {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rects.Clone()
}

// Image returns the last rendered layer. It is replaced, never modified,
// on the next redraw, so callers may hold on to it.
func (r *Renderer) Image() *image.RGBA {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.layer
}

// Size returns the layer size.
func (r *Renderer) Size() geometry.Size {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}

// Version increases by one on every redraw.
func (r *Renderer) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// redraw must be called with mu held.
func (r *Renderer) redraw() {
	r.layer = Draw(r.rects, r.size, r.style)
	r.version++
}

// Draw renders rects as unfilled outlines on a new transparent image of the
// given size. Rectangles reaching outside the image are clipped.
func Draw(rects Set, size geometry.Size, style Style) *image.RGBA {
	w, h := pixels(size.W), pixels(size.H)
	dc := gg.NewContext(w, h)
	if len(rects) == 0 {
		return dc.Image().(*image.RGBA)
	}

	dc.SetColor(style.Color)
	dc.SetLineWidth(style.LineWidth)
	for _, rc := range rects {
		dc.DrawRectangle(rc.X, rc.Y, rc.W, rc.H)
	}
	dc.Stroke()

	return dc.Image().(*image.RGBA)
}

func pixels(v float64) int {
	if v <= 0 || math.IsNaN(v) {
		return 1
	}
	return int(math.Ceil(v))
}
