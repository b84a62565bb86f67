package model

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	hueStep         = 50.0
	paletteSat      = 160.0 / 255.0
	engineTint      = 0.3
	rootColorHex    = "#cc3333"
	neutralColorHex = "#ffffff"
)

var white = colorful.Color{R: 1, G: 1, B: 1}

// CategoryColor returns the color for the category at the given first-seen
// index. Engine plugins are washed toward white.
func CategoryColor(index int, engine bool) colorful.Color {
	if index < 0 {
		return white
	}
	hue := math.Mod(float64(index)*hueStep, 360)
	c := colorful.Hsv(hue, paletteSat, 1)
	if engine {
		c = c.BlendHsv(white, engineTint).Clamped()
	}
	return c
}

// HeatColor maps an impact strength to a blue (0) to red (1) ramp
func HeatColor(strength float64) colorful.Color {
	s := math.Max(0, math.Min(1, strength))
	return colorful.Hsv(240*(1-s), 0.85, 1)
}

// ColorHex returns the display color for a node
func (n *Node) ColorHex(heatmap bool) string {
	switch {
	case n.IsRoot:
		return rootColorHex
	case heatmap:
		return HeatColor(n.ImpactStrength).Hex()
	case n.CategoryIndex < 0:
		return neutralColorHex
	default:
		return CategoryColor(n.CategoryIndex, n.IsEngine).Hex()
	}
}
