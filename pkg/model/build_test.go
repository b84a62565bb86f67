package model

import (
	"math"
	"testing"
)

func sampleRecords() []PluginRecord {
	return []PluginRecord{
		{ID: "Core", Category: "Engine", IsEngine: true, IsEnabled: true},
		{ID: "Rendering", Category: "Engine", IsEngine: true, IsEnabled: true, DependencyIDs: []string{"Core"}},
		{ID: "Audio", Category: "Media", IsEngine: true, IsEnabled: true, DependencyIDs: []string{"Core"}},
		{ID: "Gameplay", Category: "Project", IsEnabled: true, DependencyIDs: []string{"Rendering", "Audio", "Missing"}},
		{ID: "Tools", Category: "", IsEnabled: true, DependencyIDs: []string{"Gameplay", "Tools"}},
		{ID: "Legacy", Category: "Project", IsEnabled: false, DependencyIDs: []string{"Core"}},
	}
}

func allFilter() FilterConfig {
	return FilterConfig{ShowEngine: true, ShowProject: true, ShowDisabled: true}
}

func contains(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func assertSymmetric(t *testing.T, g *Graph) {
	t.Helper()
	for a := range g.Nodes {
		for b := range g.Nodes {
			if contains(g.Nodes[a].Links, b) != contains(g.Nodes[b].Links, a) {
				t.Errorf("links not symmetric between %s and %s", g.Nodes[a].ID, g.Nodes[b].ID)
			}
			if contains(g.Nodes[a].Dependents, b) != contains(g.Nodes[b].Dependencies, a) {
				t.Errorf("dependents/dependencies not inverse between %s and %s", g.Nodes[a].ID, g.Nodes[b].ID)
			}
		}
		if contains(g.Nodes[a].Links, a) || contains(g.Nodes[a].Dependencies, a) {
			t.Errorf("node %s has a self edge", g.Nodes[a].ID)
		}
	}
}

func TestBuildEdgeSymmetry(t *testing.T) {
	g := Build(sampleRecords(), BuildOptions{Filter: allFilter()})

	if g.Len() != 6 {
		t.Fatalf("Expected 6 nodes, got %d", g.Len())
	}
	assertSymmetric(t, g)

	gameplay, _ := g.Index("Gameplay")
	rendering, _ := g.Index("Rendering")
	if !g.DependsOn(gameplay, rendering) {
		t.Error("Expected Gameplay to depend on Rendering")
	}
	if g.DependsOn(rendering, gameplay) {
		t.Error("Rendering should not depend on Gameplay")
	}
	if !g.HasLink(rendering, gameplay) {
		t.Error("Expected an undirected link between Rendering and Gameplay")
	}
}

func TestBuildDropsUnresolvedAndSelfDependencies(t *testing.T) {
	g := Build(sampleRecords(), BuildOptions{Filter: allFilter()})

	gameplay := g.Node("Gameplay")
	if len(gameplay.Dependencies) != 2 {
		t.Errorf("Expected 2 resolved dependencies for Gameplay, got %d", len(gameplay.Dependencies))
	}

	tools := g.Node("Tools")
	if len(tools.Dependencies) != 1 {
		t.Errorf("Expected self dependency to be dropped, got %v", g.IDs(tools.Dependencies))
	}
}

func TestBuildMassFollowsDegree(t *testing.T) {
	g := Build(sampleRecords(), BuildOptions{Filter: allFilter()})

	for _, n := range g.Nodes {
		want := 1 + float64(len(n.Links))
		if n.Mass != want {
			t.Errorf("Node %s: expected mass %v, got %v", n.ID, want, n.Mass)
		}
	}

	// Core is linked to Rendering, Audio and Legacy
	if core := g.Node("Core"); core.Mass != 4 {
		t.Errorf("Expected Core mass 4, got %v", core.Mass)
	}
}

func TestBuildFilterEngine(t *testing.T) {
	records := sampleRecords()
	filter := allFilter()
	filter.ShowEngine = false

	g := Build(records, BuildOptions{Filter: filter})

	for _, rec := range records {
		_, present := g.Index(rec.ID)
		if rec.IsEngine && present {
			t.Errorf("Engine plugin %s should be filtered out", rec.ID)
		}
		if !rec.IsEngine && !present {
			t.Errorf("Project plugin %s should be present", rec.ID)
		}
	}

	for _, e := range g.Edges() {
		if g.Node(e.From) == nil || g.Node(e.To) == nil {
			t.Errorf("Edge %s -> %s references a missing node", e.From, e.To)
		}
	}

	gameplay := g.Node("Gameplay")
	if len(gameplay.Dependencies) != 0 {
		t.Errorf("Expected Gameplay to lose its engine dependencies, got %v", g.IDs(gameplay.Dependencies))
	}
	assertSymmetric(t, g)
}

func TestBuildFilterDisabled(t *testing.T) {
	g := Build(sampleRecords(), BuildOptions{Filter: DefaultFilter()})

	if g.Node("Legacy") != nil {
		t.Error("Disabled plugin should not produce a node")
	}
	if core := g.Node("Core"); len(core.Dependents) != 2 {
		t.Errorf("Expected Core to have 2 dependents, got %v", g.IDs(core.Dependents))
	}
}

func TestBuildDuplicateIDs(t *testing.T) {
	records := []PluginRecord{
		{ID: "A", Category: "X", IsEnabled: true},
		{ID: "A", Category: "Y", IsEnabled: true},
		{ID: "B", IsEnabled: true, DependencyIDs: []string{"A"}},
	}

	g := Build(records, BuildOptions{Filter: DefaultFilter()})

	if g.Len() != 2 {
		t.Fatalf("Expected 2 nodes, got %d", g.Len())
	}
	if a := g.Node("A"); a.Category != "X" {
		t.Errorf("Expected first record to win, got category %s", a.Category)
	}
}

func TestBuildCategoryIndexOrder(t *testing.T) {
	g := Build(sampleRecords(), BuildOptions{Filter: allFilter()})

	expected := []string{"Engine", "Media", "Project", DefaultCategory}
	if len(g.Categories) != len(expected) {
		t.Fatalf("Expected categories %v, got %v", expected, g.Categories)
	}
	for i, c := range expected {
		if g.Categories[i] != c {
			t.Errorf("Category %d: expected %s, got %s", i, c, g.Categories[i])
		}
	}

	if tools := g.Node("Tools"); tools.CategoryIndex != 3 {
		t.Errorf("Expected Tools in Misc category (3), got %d", tools.CategoryIndex)
	}
}

func TestImpactNormalization(t *testing.T) {
	g := Build(sampleRecords(), BuildOptions{Filter: allFilter()})

	maxStrength := 0.0
	for _, n := range g.Nodes {
		if n.ImpactStrength < 0 || n.ImpactStrength > 1 {
			t.Errorf("Node %s impact %v out of range", n.ID, n.ImpactStrength)
		}
		maxStrength = math.Max(maxStrength, n.ImpactStrength)
		if len(n.Dependencies) == 0 && n.ImpactStrength != 0 {
			t.Errorf("Node %s has no dependencies but impact %v", n.ID, n.ImpactStrength)
		}
	}
	if maxStrength != 1 {
		t.Errorf("Expected max impact 1, got %v", maxStrength)
	}

	// Tools reaches Gameplay, Rendering, Audio, Core
	if tools := g.Node("Tools"); tools.ImpactStrength != 1 {
		t.Errorf("Expected Tools impact 1, got %v", tools.ImpactStrength)
	}
	// Rendering reaches only Core
	if r := g.Node("Rendering"); math.Abs(r.ImpactStrength-0.25) > 1e-9 {
		t.Errorf("Expected Rendering impact 0.25, got %v", r.ImpactStrength)
	}
}

func TestImpactWithoutDependencies(t *testing.T) {
	records := []PluginRecord{
		{ID: "A", IsEnabled: true},
		{ID: "B", IsEnabled: true},
	}
	g := Build(records, BuildOptions{Filter: DefaultFilter()})

	for _, n := range g.Nodes {
		if n.ImpactStrength != 0 {
			t.Errorf("Expected zero impact for %s, got %v", n.ID, n.ImpactStrength)
		}
	}
}

func TestImpactCycleTerminates(t *testing.T) {
	records := []PluginRecord{
		{ID: "A", IsEnabled: true, DependencyIDs: []string{"B"}},
		{ID: "B", IsEnabled: true, DependencyIDs: []string{"C"}},
		{ID: "C", IsEnabled: true, DependencyIDs: []string{"A"}},
	}
	g := Build(records, BuildOptions{Filter: DefaultFilter()})

	a, _ := g.Index("A")
	if size := g.ClosureSize(a); size != 2 {
		t.Errorf("Expected closure size 2, got %d", size)
	}
	for _, n := range g.Nodes {
		if n.ImpactStrength != 1 {
			t.Errorf("Expected impact 1 for %s, got %v", n.ID, n.ImpactStrength)
		}
	}
}

func TestSeedPositionsDistinct(t *testing.T) {
	g := Build(sampleRecords(), BuildOptions{Filter: allFilter()})

	for i := range g.Nodes {
		p := g.Nodes[i].Position
		if r := math.Hypot(p.X, p.Y); math.Abs(r-DefaultSeedRadius) > 1e-6 {
			t.Errorf("Node %s seeded at radius %v", g.Nodes[i].ID, r)
		}
		for j := i + 1; j < len(g.Nodes); j++ {
			q := g.Nodes[j].Position
			if math.Hypot(p.X-q.X, p.Y-q.Y) < 1 {
				t.Errorf("Nodes %s and %s seeded on top of each other", g.Nodes[i].ID, g.Nodes[j].ID)
			}
		}
	}
}

func TestBuildWithRoot(t *testing.T) {
	g := Build(sampleRecords(), BuildOptions{Filter: DefaultFilter(), Root: true})

	if !g.HasRoot() {
		t.Fatal("Expected a root node")
	}
	root := &g.Nodes[g.RootIndex]
	if root.ID != RootID || !root.IsRoot || root.Movable() {
		t.Errorf("Unexpected root node: %+v", root)
	}
	if root.Position.X != 0 || root.Position.Y != 0 {
		t.Errorf("Expected root at origin, got %v", root.Position)
	}

	// Core has no dependencies, so it hangs off the root
	core, _ := g.Index("Core")
	if !g.DependsOn(core, g.RootIndex) {
		t.Error("Expected Core to depend on the root")
	}
	rendering, _ := g.Index("Rendering")
	if g.DependsOn(rendering, g.RootIndex) {
		t.Error("Rendering has a dependency and should not attach to the root")
	}
	assertSymmetric(t, g)
}

func TestBuildDoesNotShareRecords(t *testing.T) {
	records := sampleRecords()
	g := Build(records, BuildOptions{Filter: allFilter()})

	records[0].ID = "Changed"
	if g.Node("Core").Record.ID != "Core" {
		t.Error("Graph should hold its own copy of the records")
	}
}

func TestResetTransient(t *testing.T) {
	g := Build(sampleRecords(), BuildOptions{Filter: allFilter()})
	g.Nodes[0].Fixed = true
	g.Nodes[1].Velocity.X = 5

	g.ResetTransient()

	if g.Nodes[0].Fixed || g.Nodes[1].Velocity.X != 0 {
		t.Error("Expected transient state to be cleared")
	}
}
