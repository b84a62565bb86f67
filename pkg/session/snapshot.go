package session

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ritzau/spyglass/pkg/model"
)

// Highlight roles of a node in a snapshot
const (
	RoleFocus      = "focus"
	RoleDownstream = "downstream"
	RoleUpstream   = "upstream"
)

// Point is a 2D coordinate on the wire
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func pointOf(v r2.Vec) Point {
	return Point{X: v.X, Y: v.Y}
}

// NodeView is the read-only render state of one node
type NodeView struct {
	ID            string  `json:"id"`
	Label         string  `json:"label"`
	Category      string  `json:"category"`
	CategoryIndex int     `json:"categoryIndex"`
	Color         string  `json:"color"`
	IsEngine      bool    `json:"isEngine"`
	IsEnabled     bool    `json:"isEnabled"`
	IsRoot        bool    `json:"isRoot,omitempty"`
	Fixed         bool    `json:"fixed"`
	InCycle       bool    `json:"inCycle,omitempty"`
	Position      Point   `json:"position"`
	Mass          float64 `json:"mass"`
	Impact        float64 `json:"impact"`
	Role          string  `json:"role,omitempty"`
}

// Snapshot is everything a renderer needs for one frame
type Snapshot struct {
	Frame      uint64       `json:"frame"`
	Nodes      []NodeView   `json:"nodes"`
	Edges      []model.Edge `json:"edges"`
	Focus      string       `json:"focus,omitempty"`
	Hovered    string       `json:"hovered,omitempty"`
	Pinned     string       `json:"pinned,omitempty"`
	Dragged    string       `json:"dragged,omitempty"`
	Downstream []string     `json:"downstream"`
	Upstream   []string     `json:"upstream"`
	ViewOffset Point        `json:"viewOffset"`
	Zoom       float64      `json:"zoom"`
	Heatmap    bool         `json:"heatmap"`
	Energy     float64      `json:"energy"`
}

// Snapshot captures the current frame. The result shares no memory with
// the session.
func (s *Session) Snapshot() Snapshot {
	h := s.Highlight()
	view := s.ctrl.View()

	nodes := make([]NodeView, len(s.graph.Nodes))
	for i := range s.graph.Nodes {
		n := &s.graph.Nodes[i]
		label := n.ID
		if n.Record != nil {
			label = n.Record.DisplayName()
		}

		role := ""
		switch {
		case n.ID == h.Focus:
			role = RoleFocus
		case h.Downstream.Has(n.ID):
			role = RoleDownstream
		case h.Upstream.Has(n.ID):
			role = RoleUpstream
		}

		nodes[i] = NodeView{
			ID:            n.ID,
			Label:         label,
			Category:      n.Category,
			CategoryIndex: n.CategoryIndex,
			Color:         n.ColorHex(s.opts.Heatmap),
			IsEngine:      n.IsEngine,
			IsEnabled:     n.IsEnabled,
			IsRoot:        n.IsRoot,
			Fixed:         n.Fixed,
			InCycle:       s.inCycle[n.ID],
			Position:      pointOf(n.Position),
			Mass:          n.Mass,
			Impact:        n.ImpactStrength,
			Role:          role,
		}
	}

	return Snapshot{
		Frame:      s.frame,
		Nodes:      nodes,
		Edges:      s.graph.Edges(),
		Focus:      h.Focus,
		Hovered:    s.ctrl.Hovered(),
		Pinned:     s.ctrl.Pinned(),
		Dragged:    s.ctrl.Dragged(),
		Downstream: h.Downstream.Sorted(),
		Upstream:   h.Upstream.Sorted(),
		ViewOffset: pointOf(view.Offset),
		Zoom:       view.Zoom,
		Heatmap:    s.opts.Heatmap,
		Energy:     s.stats.KineticEnergy,
	}
}
