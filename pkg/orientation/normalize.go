package orientation

// Sensor is the native orientation of the sensor output relative to the
// device chassis.
type Sensor int

const (
	// SensorLandscapeRight is how rear-facing phone sensors deliver pixels.
	SensorLandscapeRight Sensor = iota
	// SensorLandscapeLeft is a sensor mounted rotated 180° from the rear one.
	SensorLandscapeLeft
)

// Table maps interface orientations to the tag attached to frames from one
// sensor mounting. Orientations missing from ByInterface use Fallback.
type Table struct {
	ByInterface map[Interface]Orientation
	Fallback    Orientation
}

// Lookup returns the tag for iface.
func (t Table) Lookup(iface Interface) Orientation {
	if o, ok := t.ByInterface[iface]; ok {
		return o
	}
	return t.Fallback
}

// RearCameraTable is the fixed mapping for a sensor that natively delivers
// landscape-right pixels. Do not edit it to suit other hardware; build a new
// Table from that hardware's sensor-to-chassis mounting angle instead.
var RearCameraTable = Table{
	ByInterface: map[Interface]Orientation{
		InterfaceLandscapeLeft:  Down,
		InterfaceLandscapeRight: Up,
	},
	Fallback: Right,
}

// landscapeLeftTable is RearCameraTable rotated by 180°.
var landscapeLeftTable = Table{
	ByInterface: map[Interface]Orientation{
		InterfaceLandscapeLeft:  Up,
		InterfaceLandscapeRight: Down,
	},
	Fallback: Left,
}

// Normalize returns the canonical orientation tag for a frame captured by
// sensor while the interface was in iface.
func Normalize(sensor Sensor, iface Interface) Orientation {
	switch sensor {
	case SensorLandscapeLeft:
		return landscapeLeftTable.Lookup(iface)
	default:
		return RearCameraTable.Lookup(iface)
	}
}
