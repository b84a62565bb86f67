package reach

import "github.com/ritzau/spyglass/pkg/model"

// Cache memoizes the highlight for the last focus. The interaction loop asks
// for the same focus every frame, so one entry is enough.
type Cache struct {
	analyzer *Analyzer
	last     Highlight
	valid    bool
}

// NewCache creates a cache over g
func NewCache(g *model.Graph) *Cache {
	return &Cache{analyzer: NewAnalyzer(g)}
}

// Highlight returns the (possibly cached) highlight for focus
func (c *Cache) Highlight(focus string) Highlight {
	if c.valid && c.last.Focus == focus {
		return c.last
	}
	c.last = c.analyzer.Highlight(focus)
	c.valid = true
	return c.last
}

// Reset drops the cached entry and switches to a new graph
func (c *Cache) Reset(g *model.Graph) {
	c.analyzer = NewAnalyzer(g)
	c.last = Highlight{}
	c.valid = false
}
