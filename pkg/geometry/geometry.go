// Package geometry maps face boxes from the detector's normalized space into
// the coordinate space of the view that shows the camera preview.
//
// Two spaces are involved:
//   - Normalized space: unit square, origin at the bottom-left of the upright image.
//   - View space: container pixels (or points), origin at the top-left.
package geometry

import "fmt"

// Size is a width/height pair in view units or image pixels.
type Size struct {
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Sz is shorthand for building a Size from integer pixel dimensions.
func Sz(w, h int) Size {
	return Size{W: float64(w), H: float64(h)}
}

// Aspect returns W/H. The caller must ensure H is non-zero.
func (s Size) Aspect() float64 {
	return s.W / s.H
}

// Positive reports whether both dimensions are greater than zero.
func (s Size) Positive() bool {
	return s.W > 0 && s.H > 0
}

func (s Size) String() string {
	return fmt.Sprintf("%gx%g", s.W, s.H)
}

// Rect is an axis-aligned rectangle in view space (top-left origin).
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.W }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.H }

// Size returns the rectangle dimensions.
func (r Rect) Size() Size { return Size{W: r.W, H: r.H} }

// Offset returns r translated by (dx, dy).
func (r Rect) Offset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", r.X, r.Y, r.W, r.H)
}

// NormalizedRect is a face location in the unit square with a bottom-left
// origin, as reported by detectors. Values are nominally in [0,1] but are not
// clamped anywhere in this package.
type NormalizedRect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// MaxY returns the top edge in normalized space.
func (n NormalizedRect) MaxY() float64 { return n.Y + n.H }

// Center returns the center point of the box.
func (n NormalizedRect) Center() (x, y float64) {
	return n.X + n.W/2, n.Y + n.H/2
}

// Area returns the area of the box as a fraction of the image.
func (n NormalizedRect) Area() float64 {
	return n.W * n.H
}
