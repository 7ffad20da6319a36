package orientation

import (
	"image"

	"github.com/disintegration/imaging"
)

// Apply returns an upright copy of img, which is stored with orientation o.
// Unknown orientations are treated as Up.
func Apply(img image.Image, o Orientation) *image.NRGBA {
	switch o {
	case UpMirrored:
		return imaging.FlipH(img)
	case Down:
		return imaging.Rotate180(img)
	case DownMirrored:
		return imaging.FlipV(img)
	case LeftMirrored:
		return imaging.Transpose(img)
	case Right:
		return imaging.Rotate270(img)
	case RightMirrored:
		return imaging.Transverse(img)
	case Left:
		return imaging.Rotate90(img)
	default:
		return imaging.Clone(img)
	}
}
