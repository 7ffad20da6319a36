package overlay

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/teslashibe/go-faceoverlay/pkg/geometry"
)

// Compose renders what the viewer sees: a black container, the upright
// image scaled into display, and the overlay layer on top. layer may be nil.
func Compose(img image.Image, display geometry.Rect, layer image.Image, container geometry.Size) *image.RGBA {
	dc := gg.NewContext(pixels(container.W), pixels(container.H))
	dc.SetColor(color.Black)
	dc.Clear()

	w, h := int(math.Round(display.W)), int(math.Round(display.H))
	if img != nil && w > 0 && h > 0 {
		scaled := imaging.Resize(img, w, h, imaging.Linear)
		dc.DrawImage(scaled, int(math.Round(display.X)), int(math.Round(display.Y)))
	}

	if layer != nil {
		dc.DrawImage(layer, 0, 0)
	}

	return dc.Image().(*image.RGBA)
}
