package interact

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ritzau/spyglass/pkg/logging"
	"github.com/ritzau/spyglass/pkg/model"
)

// Controller turns pointer events into view changes, node drags and
// hover/pin focus. It mutates the bound graph directly (Fixed, Position,
// Velocity of the dragged node) and must run on the same goroutine as the
// layout step.
type Controller struct {
	opts Options
	view View
	g    *model.Graph

	state   State
	button  Button // button that started the current gesture
	dragged int
	pressAt r2.Vec
	lastAt  r2.Vec

	// pending pin toggle, cleared once a drag exceeds the threshold
	pinCandidate string

	hovered string
	pinned  string
}

// NewController creates a controller for a widget of the given size
func NewController(opts Options, size r2.Vec) *Controller {
	return &Controller{
		opts:    opts,
		view:    View{Zoom: 1, Size: size},
		dragged: -1,
	}
}

// Bind switches to a freshly built graph and discards all gesture, hover
// and pin state. The view is recentered.
func (c *Controller) Bind(g *model.Graph) {
	c.g = g
	c.state = Idle
	c.dragged = -1
	c.pinCandidate = ""
	c.hovered = ""
	c.pinned = ""
	c.Recenter()
}

// SetOptions replaces the interaction options. The current zoom is clamped
// into the new range.
func (c *Controller) SetOptions(opts Options) {
	c.opts = opts
	c.view.Zoom = c.clampZoom(c.view.Zoom)
}

// SetSize updates the widget size
func (c *Controller) SetSize(size r2.Vec) {
	c.view.Size = size
}

// Recenter resets pan and zoom
func (c *Controller) Recenter() {
	c.view.Offset = r2.Vec{}
	c.view.Zoom = 1
}

// View returns the current view transform
func (c *Controller) View() View { return c.view }

// State returns the gesture state
func (c *Controller) State() State { return c.state }

// Hovered returns the plugin under the pointer, or ""
func (c *Controller) Hovered() string { return c.hovered }

// Pinned returns the pinned plugin, or ""
func (c *Controller) Pinned() string { return c.pinned }

// Tooltip returns the plugin whose details should be shown on hover. It
// follows the pointer even while something is pinned.
func (c *Controller) Tooltip() string { return c.hovered }

// Focus returns the plugin to highlight: the pin wins over hover
func (c *Controller) Focus() string {
	if c.pinned != "" {
		return c.pinned
	}
	return c.hovered
}

// Dragged returns the ID of the node being dragged, or ""
func (c *Controller) Dragged() string {
	if c.state != Dragging || c.g == nil || !c.g.Valid(c.dragged) {
		return ""
	}
	return c.g.Nodes[c.dragged].ID
}

// HitTest returns the index of the first node whose circular hit area
// contains the local point. Nodes are tested in arena order.
func (c *Controller) HitTest(p r2.Vec) (int, bool) {
	if c.g == nil {
		return -1, false
	}
	for i := range c.g.Nodes {
		n := &c.g.Nodes[i]
		radius := c.opts.NodeRadius
		if n.IsRoot {
			radius = c.opts.RootRadius
		}
		radius *= c.view.Zoom
		if r2.Norm2(r2.Sub(c.view.ToScreen(n.Position), p)) <= radius*radius {
			return i, true
		}
	}
	return -1, false
}

// PointerDown starts a drag (left button over a node) or a pan (left off a
// node, or right anywhere). Presses during an active gesture are ignored.
func (c *Controller) PointerDown(b Button, p r2.Vec) Change {
	if c.state != Idle {
		return Change{}
	}

	switch b {
	case ButtonLeft:
		if i, ok := c.HitTest(p); ok {
			n := &c.g.Nodes[i]
			n.Fixed = true
			n.Velocity = r2.Vec{}
			c.state = Dragging
			c.dragged = i
			c.pinCandidate = n.ID
			logging.Trace("drag started", "node", n.ID)
		} else {
			c.state = Panning
		}
	case ButtonRight:
		c.state = Panning
	default:
		return Change{}
	}

	c.button = b
	c.pressAt = p
	c.lastAt = p
	return Change{}
}

// PointerMove drags, pans or updates hover depending on the gesture state
func (c *Controller) PointerMove(p r2.Vec) Change {
	delta := r2.Sub(p, c.lastAt)
	c.lastAt = p

	switch c.state {
	case Dragging:
		// The root stays anchored at the origin; grabbing it can only pin
		if c.g.Valid(c.dragged) && !c.g.Nodes[c.dragged].IsRoot {
			n := &c.g.Nodes[c.dragged]
			n.Position = r2.Add(n.Position, r2.Scale(1/c.view.Zoom, delta))
		}
		if r2.Norm(r2.Sub(p, c.pressAt)) > c.opts.DragThreshold {
			c.pinCandidate = ""
		}
		return Change{}
	case Panning:
		c.view.Offset = r2.Add(c.view.Offset, delta)
		return Change{}
	default:
		return c.updateHover(p)
	}
}

// PointerUp ends the gesture started by the same button. Releasing a node
// that was not dragged past the threshold toggles its pin.
func (c *Controller) PointerUp(b Button) Change {
	if c.state == Idle || b != c.button {
		return Change{}
	}

	state := c.state
	c.state = Idle
	if state == Panning {
		return c.updateHover(c.lastAt)
	}

	if c.g.Valid(c.dragged) {
		n := &c.g.Nodes[c.dragged]
		n.Fixed = false
		n.Velocity = r2.Vec{}
	}
	c.dragged = -1

	candidate := c.pinCandidate
	c.pinCandidate = ""
	if candidate == "" {
		return c.updateHover(c.lastAt)
	}

	if c.pinned == candidate {
		c.pinned = ""
	} else {
		c.pinned = candidate
	}
	logging.Debug("pin changed", "pinned", c.pinned)
	c.updateHover(c.lastAt)
	return Change{Kind: PinChanged, ID: c.pinned}
}

// Wheel zooms by ZoomStep^delta about the cursor
func (c *Controller) Wheel(delta float64, p r2.Vec) Change {
	zoom := c.clampZoom(c.view.Zoom * math.Pow(c.opts.ZoomStep, delta))
	c.view.zoomAbout(p, zoom)
	return Change{}
}

// Unpin clears the pin
func (c *Controller) Unpin() Change {
	if c.pinned == "" {
		return Change{}
	}
	c.pinned = ""
	return Change{Kind: PinChanged}
}

func (c *Controller) updateHover(p r2.Vec) Change {
	id := ""
	if i, ok := c.HitTest(p); ok {
		id = c.g.Nodes[i].ID
	}
	if id == c.hovered {
		return Change{}
	}
	c.hovered = id
	return Change{Kind: HoverChanged, ID: id}
}

func (c *Controller) clampZoom(z float64) float64 {
	return max(c.opts.ZoomMin, min(c.opts.ZoomMax, z))
}
