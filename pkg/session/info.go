package session

import (
	"fmt"
	"slices"

	"github.com/ritzau/spyglass/pkg/model"
)

// PluginInfo is the detail panel content for one plugin
type PluginInfo struct {
	ID           string                   `json:"id"`
	Name         string                   `json:"name"`
	Category     string                   `json:"category"`
	Description  string                   `json:"description,omitempty"`
	CreatedBy    string                   `json:"createdBy,omitempty"`
	DocsURL      string                   `json:"docsUrl,omitempty"`
	IsEngine     bool                     `json:"isEngine"`
	IsEnabled    bool                     `json:"isEnabled"`
	Modules      []model.ModuleDescriptor `json:"modules"`
	Dependencies []string                 `json:"dependencies"`
	Dependents   []string                 `json:"dependents"`
	Impact       float64                  `json:"impact"`
	ClosureSize  int                      `json:"closureSize"`
	InCycle      bool                     `json:"inCycle"`
}

// Info returns the details of a plugin in the current graph
func (s *Session) Info(id string) (PluginInfo, error) {
	i, ok := s.graph.Index(id)
	if !ok {
		return PluginInfo{}, fmt.Errorf("%w: %s", ErrUnknownPlugin, id)
	}
	n := &s.graph.Nodes[i]

	deps := s.graph.IDs(n.Dependencies)
	slices.Sort(deps)
	dependents := s.graph.IDs(n.Dependents)
	slices.Sort(dependents)

	info := PluginInfo{
		ID:           n.ID,
		Name:         n.ID,
		Category:     n.Category,
		IsEngine:     n.IsEngine,
		IsEnabled:    n.IsEnabled,
		Modules:      []model.ModuleDescriptor{},
		Dependencies: deps,
		Dependents:   dependents,
		Impact:       n.ImpactStrength,
		ClosureSize:  s.graph.ClosureSize(i),
		InCycle:      s.inCycle[n.ID],
	}
	if rec := n.Record; rec != nil {
		info.Name = rec.DisplayName()
		info.Description = rec.Description
		info.CreatedBy = rec.CreatedBy
		info.DocsURL = rec.DocsURL
		if len(rec.Modules) > 0 {
			info.Modules = slices.Clone(rec.Modules)
		}
	}
	return info, nil
}
