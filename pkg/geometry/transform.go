package geometry

// Transform maps a normalized face box into view space through the display
// rect the image occupies. The vertical axis is flipped because normalized
// space has its origin at the bottom-left.
//
// The result is not clamped: boxes that extend past the display rect are
// returned as-is and left to the drawing surface to clip.
func Transform(n NormalizedRect, d Rect) Rect {
	return Rect{
		X: d.X + n.X*d.W,
		Y: d.Y + (1-n.MaxY())*d.H,
		W: n.W * d.W,
		H: n.H * d.H,
	}
}

// TransformAll maps every box in ns through d, preserving order.
func TransformAll(ns []NormalizedRect, d Rect) []Rect {
	out := make([]Rect, 0, len(ns))
	for _, n := range ns {
		out = append(out, Transform(n, d))
	}
	return out
}

// Inverse maps a view-space rect back into normalized space. It undoes
// Transform for any display rect with non-zero width and height.
func Inverse(v Rect, d Rect) NormalizedRect {
	w := v.W / d.W
	h := v.H / d.H
	return NormalizedRect{
		X: (v.X - d.X) / d.W,
		Y: 1 - (v.Y-d.Y)/d.H - h,
		W: w,
		H: h,
	}
}
