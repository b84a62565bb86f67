package config

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ritzau/spyglass/pkg/interact"
	"github.com/ritzau/spyglass/pkg/layout"
	"github.com/ritzau/spyglass/pkg/model"
	"github.com/ritzau/spyglass/pkg/session"
)

// Slider ranges of the settings panel
const (
	MinRepulsion  = 10000.0
	MaxRepulsion  = 50000.0
	MinCenter     = 0.0
	MaxCenter     = 2.0
	MinAttraction = 0.1
	MaxAttraction = 2.0
)

// Coefficient presets toggled by zen mode
var (
	ZenPreset    = Layout{Repulsion: 35000, CenterForce: 0.2, AttractionScale: 1}
	NormalPreset = Layout{Repulsion: 15000, CenterForce: 0.05, AttractionScale: 1}
)

// Clamp forces user-facing values into their valid ranges. The simulation
// itself takes coefficients as given.
func (c *Config) Clamp() {
	c.Layout.Repulsion = clamp(c.Layout.Repulsion, MinRepulsion, MaxRepulsion)
	c.Layout.CenterForce = clamp(c.Layout.CenterForce, MinCenter, MaxCenter)
	c.Layout.AttractionScale = clamp(c.Layout.AttractionScale, MinAttraction, MaxAttraction)
	c.Layout.Damping = clamp(c.Layout.Damping, 0.01, 1)
	c.Layout.SpringLength = max(c.Layout.SpringLength, 0)
	c.Layout.MaxLinkDistance = max(c.Layout.MaxLinkDistance, 0)
	c.Layout.SimSpeed = max(c.Layout.SimSpeed, 0)
	c.Layout.MaxDt = max(c.Layout.MaxDt, 0)
	c.TickHz = int(clamp(float64(c.TickHz), 1, 240))
	if c.Viewport.Width <= 0 {
		c.Viewport.Width = 960
	}
	if c.Viewport.Height <= 0 {
		c.Viewport.Height = 540
	}
}

// ApplyZenPreset switches zen mode and loads the matching coefficient preset
func (c *Config) ApplyZenPreset(on bool) {
	c.Zen = on
	preset := NormalPreset
	if on {
		preset = ZenPreset
	}
	c.Layout.Repulsion = preset.Repulsion
	c.Layout.CenterForce = preset.CenterForce
	c.Layout.AttractionScale = preset.AttractionScale
}

// LayoutParams converts the layout settings for the engine
func (c *Config) LayoutParams() layout.Params {
	return layout.Params{
		Repulsion:       c.Layout.Repulsion,
		Gravity:         c.Layout.CenterForce,
		Attraction:      c.Layout.AttractionScale,
		SpringLength:    c.Layout.SpringLength,
		Damping:         c.Layout.Damping,
		SimSpeed:        c.Layout.SimSpeed,
		MaxLinkDistance: c.Layout.MaxLinkDistance,
	}
}

// BuildOptions converts the filter settings for a graph build. Zen mode
// adds the root node.
func (c *Config) BuildOptions() model.BuildOptions {
	return model.BuildOptions{
		Filter: model.FilterConfig{
			ShowEngine:   c.Filters.ShowEngine,
			ShowProject:  c.Filters.ShowProject,
			ShowDisabled: c.Filters.ShowDisabled,
		},
		Root: c.Zen,
	}
}

// SessionOptions assembles everything a session needs
func (c *Config) SessionOptions() session.Options {
	return session.Options{
		Build:    c.BuildOptions(),
		Layout:   c.LayoutParams(),
		Interact: interact.DefaultOptions(),
		Heatmap:  c.Filters.ImpactHeatmap,
		MaxDt:    c.Layout.MaxDt,
		Viewport: r2.Vec{X: c.Viewport.Width, Y: c.Viewport.Height},
		Seed:     c.Seed,
	}
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
