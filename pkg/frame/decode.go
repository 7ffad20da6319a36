package frame

import (
	"image"
	"sync"

	"github.com/teslashibe/go-faceoverlay/pkg/geometry"
	"github.com/teslashibe/go-faceoverlay/pkg/orientation"
)

// OrientedImage is a decoded frame plus the tag that says which way is up.
// It is never mutated after Decode returns.
type OrientedImage struct {
	Image       *image.RGBA
	Orientation orientation.Orientation
	Seq         uint64

	uprightOnce sync.Once
	upright     *image.NRGBA
}

// NewOrientedImage wraps an already decoded raster.
func NewOrientedImage(img *image.RGBA, o orientation.Orientation) *OrientedImage {
	return &OrientedImage{Image: img, Orientation: o}
}

// PixelSize returns the stored (sensor) dimensions.
func (o *OrientedImage) PixelSize() (int, int) {
	b := o.Image.Bounds()
	return b.Dx(), b.Dy()
}

// Size returns the upright dimensions, which is what the layout uses.
func (o *OrientedImage) Size() geometry.Size {
	w, h := o.PixelSize()
	return geometry.Sz(orientation.DisplaySize(w, h, o.Orientation))
}

// Upright returns the pixels rotated and mirrored into display orientation.
// The result is computed once and shared; callers must not modify it.
func (o *OrientedImage) Upright() *image.NRGBA {
	o.uprightOnce.Do(func() {
		o.upright = orientation.Apply(o.Image, o.Orientation)
	})
	return o.upright
}

// Decode copies the frame buffer into a new RGBA image tagged with o.
// The result never references f.Data, so the capture source may reuse the
// buffer as soon as Decode returns.
func Decode(f *Frame, o orientation.Orientation) (*OrientedImage, error) {
	if err := f.Validate(); err != nil {
		var seq uint64
		if f != nil {
			seq = f.Seq
		}
		return nil, &DecodeError{Seq: seq, Err: err}
	}
	if !o.IsValid() {
		o = orientation.Up
	}

	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	rowBytes := f.Width * BytesPerPixel
	opaque := f.Format == FormatBGRX

	for y := 0; y < f.Height; y++ {
		src := f.Data[y*f.BytesPerRow : y*f.BytesPerRow+rowBytes]
		dst := img.Pix[y*img.Stride : y*img.Stride+rowBytes]
		for i := 0; i < rowBytes; i += BytesPerPixel {
			dst[i+0] = src[i+2]
			dst[i+1] = src[i+1]
			dst[i+2] = src[i+0]
			if opaque {
				dst[i+3] = 0xff
			} else {
				dst[i+3] = src[i+3]
			}
		}
	}

	return &OrientedImage{Image: img, Orientation: o, Seq: f.Seq}, nil
}
