// Package orientation describes how raw sensor pixels relate to the upright
// picture and maps device interface orientations to that description.
package orientation

import (
	"fmt"
	"strings"
)

// Orientation tells how stored pixel rows must be transformed to appear
// upright. Values follow the EXIF numbering (1..8).
type Orientation int

const (
	// Up: pixels are already upright.
	Up Orientation = iota + 1
	// UpMirrored: mirrored horizontally.
	UpMirrored
	// Down: rotated 180°.
	Down
	// DownMirrored: mirrored vertically.
	DownMirrored
	// LeftMirrored: mirrored horizontally, then rotated 90° counter-clockwise.
	LeftMirrored
	// Right: must be rotated 90° clockwise to be upright.
	Right
	// RightMirrored: mirrored horizontally, then rotated 90° clockwise.
	RightMirrored
	// Left: must be rotated 90° counter-clockwise to be upright.
	Left
)

var orientationNames = map[Orientation]string{
	Up:            "up",
	UpMirrored:    "up-mirrored",
	Down:          "down",
	DownMirrored:  "down-mirrored",
	LeftMirrored:  "left-mirrored",
	Right:         "right",
	RightMirrored: "right-mirrored",
	Left:          "left",
}

func (o Orientation) String() string {
	if name, ok := orientationNames[o]; ok {
		return name
	}
	return fmt.Sprintf("orientation(%d)", int(o))
}

// IsValid reports whether o is one of the eight defined values.
func (o Orientation) IsValid() bool {
	return o >= Up && o <= Left
}

// Mirrored reports whether the orientation includes a mirror.
func (o Orientation) Mirrored() bool {
	switch o {
	case UpMirrored, DownMirrored, LeftMirrored, RightMirrored:
		return true
	}
	return false
}

// SwapsDimensions reports whether the upright picture has width and height
// exchanged relative to the stored pixels.
func (o Orientation) SwapsDimensions() bool {
	switch o {
	case Left, LeftMirrored, Right, RightMirrored:
		return true
	}
	return false
}

// DisplaySize returns the upright size of a w×h pixel buffer stored with o.
func DisplaySize(w, h int, o Orientation) (int, int) {
	if o.SwapsDimensions() {
		return h, w
	}
	return w, h
}

// Interface is the orientation of the device user interface at the moment a
// frame was captured.
type Interface int

const (
	InterfaceUnknown Interface = iota
	InterfacePortrait
	InterfacePortraitUpsideDown
	InterfaceLandscapeLeft
	InterfaceLandscapeRight
)

var interfaceNames = map[Interface]string{
	InterfaceUnknown:            "unknown",
	InterfacePortrait:           "portrait",
	InterfacePortraitUpsideDown: "portrait-upside-down",
	InterfaceLandscapeLeft:      "landscape-left",
	InterfaceLandscapeRight:     "landscape-right",
}

func (i Interface) String() string {
	if name, ok := interfaceNames[i]; ok {
		return name
	}
	return fmt.Sprintf("interface(%d)", int(i))
}

// ParseInterface parses names such as "portrait" or "landscape-left".
// Underscores and case are ignored.
func ParseInterface(s string) (Interface, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for i, name := range interfaceNames {
		if name == key {
			return i, nil
		}
	}
	return InterfaceUnknown, fmt.Errorf("orientation: unknown interface orientation %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (i Interface) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Interface) UnmarshalText(b []byte) error {
	v, err := ParseInterface(string(b))
	if err != nil {
		return err
	}
	*i = v
	return nil
}
