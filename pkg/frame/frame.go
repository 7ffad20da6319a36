// Package frame turns raw capture buffers into oriented raster images.
package frame

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"time"

	"github.com/teslashibe/go-faceoverlay/pkg/orientation"
)

// PixelFormat identifies the memory layout of a frame buffer.
type PixelFormat int

const (
	// FormatUnknown is the zero value and is never decodable.
	FormatUnknown PixelFormat = iota
	// FormatBGRA is 32 bits per pixel, byte order B,G,R,A, alpha premultiplied.
	FormatBGRA
	// FormatBGRX is 32 bits per pixel, byte order B,G,R,X, alpha ignored.
	FormatBGRX
)

// BytesPerPixel is the same for every supported format.
const BytesPerPixel = 4

func (f PixelFormat) String() string {
	switch f {
	case FormatBGRA:
		return "BGRA"
	case FormatBGRX:
		return "BGRX"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// ParsePixelFormat parses "BGRA" or "BGRX".
func ParsePixelFormat(s string) (PixelFormat, error) {
	switch s {
	case "BGRA", "bgra", "32BGRA":
		return FormatBGRA, nil
	case "BGRX", "bgrx":
		return FormatBGRX, nil
	}
	return FormatUnknown, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Frame is one capture event. Data is only valid until the capture callback
// returns; anything that must outlive the callback has to be copied.
type Frame struct {
	Data        []byte
	Width       int
	Height      int
	BytesPerRow int
	Format      PixelFormat

	Sensor    orientation.Sensor
	Interface orientation.Interface

	Seq       uint64
	Timestamp time.Time
}

// Validate checks that the buffer can be interpreted as an image.
func (f *Frame) Validate() error {
	if f == nil {
		return ErrNilFrame
	}
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrZeroDimensions, f.Width, f.Height)
	}
	if f.Format != FormatBGRA && f.Format != FormatBGRX {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f.Format)
	}
	if f.Width > math.MaxInt32/BytesPerPixel || f.Height > math.MaxInt32 ||
		f.BytesPerRow > math.MaxInt/f.Height {
		return fmt.Errorf("%w: %dx%d, %d bytes per row", ErrTooLarge, f.Width, f.Height, f.BytesPerRow)
	}
	if f.BytesPerRow < f.Width*BytesPerPixel {
		return fmt.Errorf("%w: %d bytes per row for width %d", ErrShortBuffer, f.BytesPerRow, f.Width)
	}
	need := f.BytesPerRow*(f.Height-1) + f.Width*BytesPerPixel
	if len(f.Data) < need {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrShortBuffer, len(f.Data), need)
	}
	return nil
}

// FromImage builds a tightly packed BGRA frame from any image. Capture
// backends that already hold decoded pictures use it, and so do tests.
func FromImage(img image.Image, iface orientation.Interface) *Frame {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Rect, img, b.Min, draw.Src)
	}

	w, h := b.Dx(), b.Dy()
	stride := w * BytesPerPixel
	data := make([]byte, stride*h)
	for y := 0; y < h; y++ {
		src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+stride]
		dst := data[y*stride : (y+1)*stride]
		for i := 0; i < stride; i += BytesPerPixel {
			dst[i+0] = src[i+2]
			dst[i+1] = src[i+1]
			dst[i+2] = src[i+0]
			dst[i+3] = src[i+3]
		}
	}

	return &Frame{
		Data:        data,
		Width:       w,
		Height:      h,
		BytesPerRow: stride,
		Format:      FormatBGRA,
		Interface:   iface,
		Timestamp:   time.Now(),
	}
}
