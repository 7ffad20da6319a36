package geometry

import "fmt"

// InvalidDimensionsError is returned by the layout functions when either
// the image or the container has a zero or negative dimension.
type InvalidDimensionsError struct {
	Image     Size
	Container Size
}

// Error implements the error interface.
func (e *InvalidDimensionsError) Error() string {
	return fmt.Sprintf("geometry: invalid dimensions (image %s, container %s)", e.Image, e.Container)
}

// AspectFit computes where an image of the given size is drawn inside a
// container when scaled uniformly to fit (letterbox or pillarbox).
//
// When the image is relatively wider than the container it fills the
// container width and is centered vertically; otherwise it fills the height
// and is centered horizontally. The returned rect is in container coordinates.
func AspectFit(image, container Size) (Rect, error) {
	if !image.Positive() || !container.Positive() {
		return Rect{}, &InvalidDimensionsError{Image: image, Container: container}
	}

	if image.Aspect() > container.Aspect() {
		ratio := container.W / image.W
		h := ratio * image.H
		return Rect{
			X: 0,
			Y: (container.H - h) / 2,
			W: container.W,
			H: h,
		}, nil
	}

	ratio := container.H / image.H
	w := ratio * image.W
	return Rect{
		X: (container.W - w) / 2,
		Y: 0,
		W: w,
		H: container.H,
	}, nil
}

// AspectFitIn is AspectFit for a container that is itself placed at an
// offset inside its parent view. The result is in parent coordinates.
func AspectFitIn(image Size, frame Rect) (Rect, error) {
	r, err := AspectFit(image, frame.Size())
	if err != nil {
		return Rect{}, err
	}
	return r.Offset(frame.X, frame.Y), nil
}
