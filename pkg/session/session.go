// Package session owns one visualizer instance: the plugin records, the
// built graph, the layout engine and the interaction controller. All
// methods must be called from a single goroutine (see Runner).
package session

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ritzau/spyglass/pkg/cycles"
	"github.com/ritzau/spyglass/pkg/interact"
	"github.com/ritzau/spyglass/pkg/layout"
	"github.com/ritzau/spyglass/pkg/logging"
	"github.com/ritzau/spyglass/pkg/model"
	"github.com/ritzau/spyglass/pkg/reach"
)

// ErrUnknownPlugin is returned by Info for an ID that has no node
var ErrUnknownPlugin = errors.New("unknown plugin")

// Rebuild reasons reported to observers
const (
	ReasonStartup  = "startup"
	ReasonFilters  = "filters"
	ReasonManifest = "manifest"
	ReasonRequest  = "request"
)

// Options is everything a session reads at build or tick time
type Options struct {
	Build    model.BuildOptions
	Layout   layout.Params
	Interact interact.Options
	Heatmap  bool
	// MaxDt caps the step length handed to the layout engine. Zero disables
	// the cap.
	MaxDt    float64
	Viewport r2.Vec
	Seed     uint64
}

// DefaultOptions returns the standard session settings
func DefaultOptions() Options {
	return Options{
		Build:    model.BuildOptions{Filter: model.DefaultFilter()},
		Layout:   layout.DefaultParams(),
		Interact: interact.DefaultOptions(),
		MaxDt:    0.05,
		Viewport: r2.Vec{X: 960, Y: 540},
		Seed:     1,
	}
}

// Summary describes a freshly built graph
type Summary struct {
	Nodes      int
	Edges      int
	Categories int
	Cycles     int
	Reason     string
}

// Observer is notified synchronously of focus changes and rebuilds
type Observer interface {
	FocusChanged(change interact.Change, hovered, pinned string)
	GraphRebuilt(summary Summary)
}

// Session is the frame owner
type Session struct {
	opts    Options
	records []model.PluginRecord

	graph      *model.Graph
	engine     *layout.Engine
	ctrl       *interact.Controller
	highlights *reach.Cache
	cycles     []cycles.PluginCycle
	inCycle    map[string]bool

	observer Observer
	frame    uint64
	stats    layout.Stats
}

// New creates a session and builds the initial graph
func New(records []model.PluginRecord, opts Options) *Session {
	s := &Session{
		opts:    opts,
		records: records,
		engine:  layout.NewEngine(opts.Seed),
		ctrl:    interact.NewController(opts.Interact, opts.Viewport),
	}
	s.Rebuild(ReasonStartup)
	return s
}

// SetObserver installs the observer; nil disables notifications
func (s *Session) SetObserver(o Observer) {
	s.observer = o
}

// Rebuild discards the graph and all transient state and builds a new one
// from the current records and options
func (s *Session) Rebuild(reason string) {
	s.graph = model.Build(s.records, s.opts.Build)
	s.ctrl.Bind(s.graph)
	if s.highlights == nil {
		s.highlights = reach.NewCache(s.graph)
	} else {
		s.highlights.Reset(s.graph)
	}
	s.cycles = cycles.FindPluginCycles(s.graph)
	s.inCycle = cycles.Membership(s.cycles)
	s.stats = layout.Stats{}

	summary := Summary{
		Nodes:      s.graph.Len(),
		Edges:      len(s.graph.Edges()),
		Categories: len(s.graph.Categories),
		Cycles:     len(s.cycles),
		Reason:     reason,
	}
	logging.Info("graph rebuilt",
		"reason", reason,
		"nodes", summary.Nodes,
		"edges", summary.Edges,
		"cycles", summary.Cycles)
	if s.observer != nil {
		s.observer.GraphRebuilt(summary)
	}
}

// SetRecords replaces the plugin records and rebuilds
func (s *Session) SetRecords(records []model.PluginRecord, reason string) {
	s.records = records
	s.Rebuild(reason)
}

// Options returns the current options
func (s *Session) Options() Options {
	return s.opts
}

// SetOptions applies new options. A change to the build options (filters,
// root, seed radius) rebuilds; everything else takes effect on the next
// tick or event.
func (s *Session) SetOptions(opts Options) {
	rebuild := opts.Build != s.opts.Build
	s.opts = opts
	s.ctrl.SetOptions(opts.Interact)
	s.ctrl.SetSize(opts.Viewport)
	if rebuild {
		s.Rebuild(ReasonFilters)
	}
}

// Tick advances the layout by dt seconds, clamped to MaxDt
func (s *Session) Tick(dt float64) layout.Stats {
	if s.opts.MaxDt > 0 {
		dt = min(dt, s.opts.MaxDt)
	}
	s.frame++
	s.stats = s.engine.Step(s.graph, s.opts.Layout, dt)
	return s.stats
}

// PointerDown forwards a button press in local coordinates
func (s *Session) PointerDown(b interact.Button, p r2.Vec) interact.Change {
	return s.notify(s.ctrl.PointerDown(b, p))
}

// PointerMove forwards a pointer move in local coordinates
func (s *Session) PointerMove(p r2.Vec) interact.Change {
	return s.notify(s.ctrl.PointerMove(p))
}

// PointerUp forwards a button release
func (s *Session) PointerUp(b interact.Button) interact.Change {
	return s.notify(s.ctrl.PointerUp(b))
}

// Wheel forwards a wheel event in local coordinates
func (s *Session) Wheel(delta float64, p r2.Vec) interact.Change {
	return s.notify(s.ctrl.Wheel(delta, p))
}

// Unpin clears the pinned plugin
func (s *Session) Unpin() interact.Change {
	return s.notify(s.ctrl.Unpin())
}

// Recenter resets pan and zoom
func (s *Session) Recenter() {
	s.ctrl.Recenter()
}

// Highlight returns the reachability sets for the current focus
func (s *Session) Highlight() reach.Highlight {
	return s.highlights.Highlight(s.ctrl.Focus())
}

// Graph returns the current graph. Callers must not keep it across a
// rebuild.
func (s *Session) Graph() *model.Graph {
	return s.graph
}

// Cycles returns the dependency cycles of the current graph
func (s *Session) Cycles() []cycles.PluginCycle {
	return s.cycles
}

// Controller exposes the interaction state for reads
func (s *Session) Controller() *interact.Controller {
	return s.ctrl
}

// Frame returns the number of ticks since the session was created
func (s *Session) Frame() uint64 {
	return s.frame
}

func (s *Session) notify(c interact.Change) interact.Change {
	if c.Kind != interact.NoChange {
		logging.Trace("focus changed", "kind", c.Kind.String(), "id", c.ID)
		if s.observer != nil {
			s.observer.FocusChanged(c, s.ctrl.Hovered(), s.ctrl.Pinned())
		}
	}
	return c
}
