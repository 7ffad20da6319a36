// Package detection runs face detectors on oriented images and reports faces
// as normalized rectangles with a bottom-left origin.
package detection

import (
	"context"

	"github.com/teslashibe/go-faceoverlay/pkg/frame"
	"github.com/teslashibe/go-faceoverlay/pkg/geometry"
)

// Detection represents a detected face
type Detection struct {
	geometry.NormalizedRect
	Confidence float64 // Detection confidence (0-1)
}

// Detector is the interface for face detection backends.
// Implementations look at the upright pixels of img and return boxes in the
// upright image's normalized space.
type Detector interface {
	// Detect finds faces in the image and returns their positions
	Detect(ctx context.Context, img *frame.OrientedImage) ([]Detection, error)

	// Close releases resources
	Close() error
}

// FromPixelRect converts a box given in pixels with a top-left origin, as most
// vision libraries report them, into the normalized bottom-left space.
func FromPixelRect(x, y, w, h, imgW, imgH float64) geometry.NormalizedRect {
	return FromTopLeft(x/imgW, y/imgH, w/imgW, h/imgH)
}

// FromTopLeft flips a normalized box with a top-left origin to bottom-left.
func FromTopLeft(x, y, w, h float64) geometry.NormalizedRect {
	return geometry.NormalizedRect{
		X: x,
		Y: 1 - (y + h),
		W: w,
		H: h,
	}
}

// SelectBest picks the best face from multiple detections
// Priority: confidence * 0.7 + area * 0.3
func SelectBest(dets []Detection) *Detection {
	if len(dets) == 0 {
		return nil
	}

	if len(dets) == 1 {
		return &dets[0]
	}

	// Find max area for normalization
	maxArea := 0.0
	for _, d := range dets {
		if d.Area() > maxArea {
			maxArea = d.Area()
		}
	}
	if maxArea <= 0 {
		maxArea = 1
	}

	// Score each detection
	bestScore := -1.0
	var best *Detection

	for i := range dets {
		score := dets[i].Confidence*0.7 + (dets[i].Area()/maxArea)*0.3
		if score > bestScore {
			bestScore = score
			best = &dets[i]
		}
	}

	return best
}
