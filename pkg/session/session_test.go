package session

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ritzau/spyglass/pkg/interact"
	"github.com/ritzau/spyglass/pkg/model"
)

func testRecords() []model.PluginRecord {
	return []model.PluginRecord{
		{ID: "Core", Category: "Engine", IsEngine: true, IsEnabled: true},
		{ID: "Render", Category: "Engine", IsEngine: true, IsEnabled: true, DependencyIDs: []string{"Core"}},
		{ID: "Game", Category: "Project", IsEnabled: true, DependencyIDs: []string{"Render"},
			FriendlyName: "Game Module", CreatedBy: "Studio", DocsURL: "https://example.com/game",
			Modules: []model.ModuleDescriptor{{Name: "GameRuntime", Type: "Runtime"}}},
		{ID: "Loop1", Category: "Project", IsEnabled: true, DependencyIDs: []string{"Loop2"}},
		{ID: "Loop2", Category: "Project", IsEnabled: true, DependencyIDs: []string{"Loop1"}},
	}
}

type recordingObserver struct {
	changes  []interact.Change
	rebuilds []Summary
}

func (o *recordingObserver) FocusChanged(c interact.Change, hovered, pinned string) {
	o.changes = append(o.changes, c)
}

func (o *recordingObserver) GraphRebuilt(s Summary) {
	o.rebuilds = append(o.rebuilds, s)
}

// screenOf returns the local screen position of a node
func screenOf(s *Session, id string) r2.Vec {
	return s.Controller().View().ToScreen(s.Graph().Node(id).Position)
}

func click(s *Session, id string) {
	p := screenOf(s, id)
	s.PointerDown(interact.ButtonLeft, p)
	s.PointerUp(interact.ButtonLeft)
}

func TestRebuildResetsTransientState(t *testing.T) {
	s := New(testRecords(), DefaultOptions())
	seeded := make(map[string]r2.Vec)
	for _, n := range s.Graph().Nodes {
		seeded[n.ID] = n.Position
	}

	for range 20 {
		s.Tick(0.016)
	}
	click(s, "Game")
	if s.Controller().Pinned() != "Game" {
		t.Fatalf("Expected Game pinned, got %q", s.Controller().Pinned())
	}

	s.PointerDown(interact.ButtonLeft, screenOf(s, "Core"))
	s.PointerMove(r2.Add(screenOf(s, "Core"), r2.Vec{X: 50}))
	if !s.Graph().Node("Core").Fixed {
		t.Fatal("Expected dragged node to be fixed")
	}

	s.Rebuild(ReasonRequest)

	if s.Controller().Pinned() != "" || s.Controller().State() != interact.Idle {
		t.Errorf("Expected pin and drag cleared, pinned %q state %v", s.Controller().Pinned(), s.Controller().State())
	}
	for _, n := range s.Graph().Nodes {
		if n.Fixed {
			t.Errorf("Node %s still fixed after rebuild", n.ID)
		}
		if n.Velocity != (r2.Vec{}) {
			t.Errorf("Node %s kept velocity %v", n.ID, n.Velocity)
		}
		if n.Position != seeded[n.ID] {
			t.Errorf("Node %s not reseeded: %v vs %v", n.ID, n.Position, seeded[n.ID])
		}
	}
	if h := s.Highlight(); !h.Empty() {
		t.Errorf("Expected no highlight after rebuild, got focus %q", h.Focus)
	}
}

func TestPinWinsOverHover(t *testing.T) {
	s := New(testRecords(), DefaultOptions())

	click(s, "Render")
	s.PointerMove(screenOf(s, "Game"))

	if s.Controller().Hovered() != "Game" {
		t.Fatalf("Expected Game hovered, got %q", s.Controller().Hovered())
	}
	h := s.Highlight()
	if h.Focus != "Render" {
		t.Errorf("Expected pinned Render to be the focus, got %q", h.Focus)
	}
	if !h.Downstream.Has("Core") || !h.Upstream.Has("Game") {
		t.Errorf("Unexpected highlight: down %v up %v", h.Downstream.Sorted(), h.Upstream.Sorted())
	}

	s.Unpin()
	if h := s.Highlight(); h.Focus != "Game" {
		t.Errorf("Expected hover to take over after unpin, got %q", h.Focus)
	}
}

func TestTickClampsDt(t *testing.T) {
	clamped := New(testRecords(), DefaultOptions())
	reference := New(testRecords(), DefaultOptions())

	clamped.Tick(2.5)
	reference.Tick(0.05)

	for i := range clamped.Graph().Nodes {
		a, b := clamped.Graph().Nodes[i], reference.Graph().Nodes[i]
		if a.Position != b.Position {
			t.Errorf("Node %s: large dt not clamped (%v vs %v)", a.ID, a.Position, b.Position)
		}
	}
	if clamped.Frame() != 1 {
		t.Errorf("Expected frame 1, got %d", clamped.Frame())
	}
}

func TestSetOptionsRebuildsOnFilterChange(t *testing.T) {
	s := New(testRecords(), DefaultOptions())
	obs := &recordingObserver{}
	s.SetObserver(obs)

	opts := s.Options()
	opts.Layout.Repulsion = 20000
	s.SetOptions(opts)
	if len(obs.rebuilds) != 0 {
		t.Errorf("Layout change should not rebuild, got %d rebuilds", len(obs.rebuilds))
	}

	opts.Build.Filter.ShowEngine = false
	s.SetOptions(opts)
	if len(obs.rebuilds) != 1 || obs.rebuilds[0].Reason != ReasonFilters {
		t.Fatalf("Expected one filter rebuild, got %+v", obs.rebuilds)
	}
	if s.Graph().Node("Core") != nil {
		t.Error("Engine plugins should be filtered out")
	}
	if obs.rebuilds[0].Nodes != 3 || obs.rebuilds[0].Cycles != 1 {
		t.Errorf("Unexpected summary: %+v", obs.rebuilds[0])
	}
}

func TestZenModeAddsRoot(t *testing.T) {
	opts := DefaultOptions()
	opts.Build.Root = true
	s := New(testRecords(), opts)

	if !s.Graph().HasRoot() {
		t.Fatal("Expected a root node")
	}
	for range 50 {
		s.Tick(0.05)
	}
	root := s.Graph().Nodes[s.Graph().RootIndex]
	if root.Position != (r2.Vec{}) {
		t.Errorf("Root drifted to %v", root.Position)
	}
}

func TestObserverSeesFocusChanges(t *testing.T) {
	s := New(testRecords(), DefaultOptions())
	obs := &recordingObserver{}
	s.SetObserver(obs)

	s.PointerMove(screenOf(s, "Core"))
	click(s, "Core")

	if len(obs.changes) != 2 {
		t.Fatalf("Expected hover and pin notifications, got %+v", obs.changes)
	}
	if obs.changes[0].Kind != interact.HoverChanged || obs.changes[1].Kind != interact.PinChanged {
		t.Errorf("Unexpected notifications: %+v", obs.changes)
	}
}

func TestSnapshot(t *testing.T) {
	s := New(testRecords(), DefaultOptions())
	click(s, "Render")
	s.Tick(0.016)

	snap := s.Snapshot()
	if snap.Frame != 1 || len(snap.Nodes) != 5 || len(snap.Edges) != 4 {
		t.Fatalf("Unexpected snapshot sizes: frame %d nodes %d edges %d", snap.Frame, len(snap.Nodes), len(snap.Edges))
	}
	if snap.Pinned != "Render" || snap.Focus != "Render" {
		t.Errorf("Unexpected focus in snapshot: %+v", snap)
	}

	roles := make(map[string]string)
	for _, n := range snap.Nodes {
		roles[n.ID] = n.Role
		if n.Color == "" {
			t.Errorf("Node %s has no color", n.ID)
		}
	}
	if roles["Render"] != RoleFocus || roles["Core"] != RoleDownstream || roles["Game"] != RoleUpstream || roles["Loop1"] != "" {
		t.Errorf("Unexpected roles: %v", roles)
	}

	for _, n := range snap.Nodes {
		if (n.ID == "Loop1" || n.ID == "Loop2") != n.InCycle {
			t.Errorf("Node %s: unexpected cycle flag %v", n.ID, n.InCycle)
		}
	}

	if len(snap.Downstream) != 1 || snap.Downstream[0] != "Core" {
		t.Errorf("Unexpected downstream: %v", snap.Downstream)
	}

	// the snapshot must not alias session state
	snap.Nodes[0].Position.X = 1e9
	if s.Graph().Nodes[0].Position.X == 1e9 {
		t.Error("Snapshot aliases node positions")
	}
}

func TestInfo(t *testing.T) {
	s := New(testRecords(), DefaultOptions())

	info, err := s.Info("Game")
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info.Name != "Game Module" || info.CreatedBy != "Studio" || info.DocsURL == "" {
		t.Errorf("Descriptor details missing: %+v", info)
	}
	if len(info.Modules) != 1 || info.Modules[0].Name != "GameRuntime" {
		t.Errorf("Unexpected modules: %+v", info.Modules)
	}
	if len(info.Dependencies) != 1 || info.Dependencies[0] != "Render" || len(info.Dependents) != 0 {
		t.Errorf("Unexpected edges: %v / %v", info.Dependencies, info.Dependents)
	}
	if info.ClosureSize != 2 || info.Impact != 1 {
		t.Errorf("Unexpected impact: size %d strength %v", info.ClosureSize, info.Impact)
	}

	loop, _ := s.Info("Loop1")
	if !loop.InCycle {
		t.Error("Expected Loop1 to be reported in a cycle")
	}

	if _, err := s.Info("Nope"); !errors.Is(err, ErrUnknownPlugin) {
		t.Errorf("Expected ErrUnknownPlugin, got %v", err)
	}
}
