package interact

import "gonum.org/v1/gonum/spatial/r2"

// Button identifies a pointer button
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// String returns the lowercase button name
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	case ButtonMiddle:
		return "middle"
	default:
		return "unknown"
	}
}

// ParseButton maps a button name to a Button
func ParseButton(s string) (Button, bool) {
	switch s {
	case "left", "":
		return ButtonLeft, true
	case "right":
		return ButtonRight, true
	case "middle":
		return ButtonMiddle, true
	default:
		return 0, false
	}
}

// ChangeKind tells the host what an event changed
type ChangeKind int

const (
	NoChange ChangeKind = iota
	HoverChanged
	PinChanged
)

// String returns a short name for logs and the wire
func (k ChangeKind) String() string {
	switch k {
	case HoverChanged:
		return "hover"
	case PinChanged:
		return "pin"
	default:
		return "none"
	}
}

// Change is returned by every event handler. ID is the new hovered or
// pinned plugin, empty when it was cleared.
type Change struct {
	Kind ChangeKind
	ID   string
}

// State is the gesture state machine
type State int

const (
	Idle State = iota
	Panning
	Dragging
)

// String returns the state name
func (s State) String() string {
	switch s {
	case Panning:
		return "panning"
	case Dragging:
		return "dragging"
	default:
		return "idle"
	}
}

// Options tune hit testing, zoom and gesture recognition
type Options struct {
	ZoomStep      float64 // factor per wheel notch
	ZoomMin       float64
	ZoomMax       float64
	NodeRadius    float64 // hit radius in world units
	RootRadius    float64
	DragThreshold float64 // screen pixels before a click becomes a drag
}

// DefaultOptions returns the standard interaction settings
func DefaultOptions() Options {
	return Options{
		ZoomStep:      1.1,
		ZoomMin:       0.2,
		ZoomMax:       10,
		NodeRadius:    20,
		RootRadius:    30,
		DragThreshold: 4,
	}
}

// Point is a convenience constructor for screen coordinates
func Point(x, y float64) r2.Vec {
	return r2.Vec{X: x, Y: y}
}
