package reach

import (
	"slices"
	"testing"

	"github.com/ritzau/spyglass/pkg/model"
)

func build(records ...model.PluginRecord) *model.Graph {
	for i := range records {
		records[i].IsEnabled = true
	}
	return model.Build(records, model.BuildOptions{Filter: model.DefaultFilter()})
}

func plugin(id string, deps ...string) model.PluginRecord {
	return model.PluginRecord{ID: id, DependencyIDs: deps}
}

func assertSet(t *testing.T, name string, got Set, want ...string) {
	t.Helper()
	if !slices.Equal(got.Sorted(), want) {
		t.Errorf("%s: expected %v, got %v", name, want, got.Sorted())
	}
}

// diamond: App -> UI, App -> Net, UI -> Core, Net -> Core; Tool -> App
func diamond() *model.Graph {
	return build(
		plugin("App", "UI", "Net"),
		plugin("UI", "Core"),
		plugin("Net", "Core"),
		plugin("Core"),
		plugin("Tool", "App"),
		plugin("Lonely"),
	)
}

func TestDownstream(t *testing.T) {
	a := NewAnalyzer(diamond())

	assertSet(t, "App", a.Downstream("App"), "Core", "Net", "UI")
	assertSet(t, "Tool", a.Downstream("Tool"), "App", "Core", "Net", "UI")
	assertSet(t, "Core", a.Downstream("Core"))
}

func TestUpstream(t *testing.T) {
	a := NewAnalyzer(diamond())

	assertSet(t, "Core", a.Upstream("Core"), "App", "Net", "Tool", "UI")
	assertSet(t, "App", a.Upstream("App"), "Tool")
	assertSet(t, "Tool", a.Upstream("Tool"))
}

func TestCycleExcludesFocus(t *testing.T) {
	a := NewAnalyzer(build(plugin("A", "B"), plugin("B", "C"), plugin("C", "A")))

	h := a.Highlight("A")
	assertSet(t, "downstream", h.Downstream, "B", "C")
	assertSet(t, "upstream", h.Upstream, "B", "C")
	if h.Downstream.Has("A") || h.Upstream.Has("A") {
		t.Error("Focus must not appear in its own closures")
	}
}

func TestHighlightPartition(t *testing.T) {
	g := diamond()
	h := NewAnalyzer(g).Highlight("UI")

	assertSet(t, "downstream", h.Downstream, "Core")
	assertSet(t, "upstream", h.Upstream, "App", "Tool")

	related := 0
	for _, n := range g.Nodes {
		if h.Related(n.ID) {
			related++
		}
	}
	// UI itself, Core, App and Tool
	if related != 4 {
		t.Errorf("Expected 4 related nodes, got %d", related)
	}
	if h.Related("Net") || h.Related("Lonely") {
		t.Error("Siblings and unrelated plugins should not be highlighted")
	}
}

func TestHighlightWithoutFocus(t *testing.T) {
	a := NewAnalyzer(diamond())

	for _, focus := range []string{"", "Unknown"} {
		h := a.Highlight(focus)
		if !h.Empty() {
			t.Errorf("Expected empty highlight for %q", focus)
		}
		if h.Downstream.Len() != 0 || h.Upstream.Len() != 0 {
			t.Errorf("Expected empty sets for %q, got %v / %v", focus, h.Downstream, h.Upstream)
		}
	}
}

func TestCacheReusesLastFocus(t *testing.T) {
	g := diamond()
	c := NewCache(g)

	first := c.Highlight("App")
	second := c.Highlight("App")
	if first.Downstream.Len() != 3 || second.Downstream.Len() != 3 {
		t.Fatalf("Unexpected highlight: %v", second.Downstream.Sorted())
	}

	other := c.Highlight("Core")
	if other.Focus != "Core" || other.Upstream.Len() != 4 {
		t.Errorf("Expected cache to recompute on focus change, got %+v", other)
	}

	c.Reset(build(plugin("App")))
	if h := c.Highlight("App"); h.Downstream.Len() != 0 {
		t.Errorf("Expected reset cache to use the new graph, got %v", h.Downstream.Sorted())
	}
}
