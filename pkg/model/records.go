package model

// RootID is the identifier of the synthetic anchor node added in zen mode
const RootID = "Root"

// DefaultCategory is used for plugins that do not declare a category
const DefaultCategory = "Misc"

// DefaultSeedRadius is the radius of the circle nodes are seeded on
const DefaultSeedRadius = 200.0

// ModuleDescriptor describes one code module shipped by a plugin
type ModuleDescriptor struct {
	Name string `json:"name"`
	Type string `json:"type"` // e.g., "Runtime", "Editor"
}

// PluginRecord is the resolved description of one installed plugin as
// reported by the host application.
type PluginRecord struct {
	ID            string   `json:"id"`
	Category      string   `json:"category"`
	IsEngine      bool     `json:"isEngine"`
	IsEnabled     bool     `json:"isEnabled"`
	DependencyIDs []string `json:"dependencies"`

	// Descriptor details, only used for the info panel
	FriendlyName string             `json:"friendlyName,omitempty"`
	Description  string             `json:"description,omitempty"`
	CreatedBy    string             `json:"createdBy,omitempty"`
	DocsURL      string             `json:"docsUrl,omitempty"`
	Modules      []ModuleDescriptor `json:"modules,omitempty"`
}

// DisplayName returns the friendly name if present, otherwise the ID
func (r *PluginRecord) DisplayName() string {
	if r.FriendlyName != "" {
		return r.FriendlyName
	}
	return r.ID
}

// FilterConfig selects which plugins become nodes
type FilterConfig struct {
	ShowEngine   bool `json:"showEngine"`
	ShowProject  bool `json:"showProject"`
	ShowDisabled bool `json:"showDisabled"`
}

// DefaultFilter shows every enabled plugin
func DefaultFilter() FilterConfig {
	return FilterConfig{ShowEngine: true, ShowProject: true, ShowDisabled: false}
}

// Accepts reports whether a record survives the filter
func (f FilterConfig) Accepts(r *PluginRecord) bool {
	if r.IsEngine && !f.ShowEngine {
		return false
	}
	if !r.IsEngine && !f.ShowProject {
		return false
	}
	if !r.IsEnabled && !f.ShowDisabled {
		return false
	}
	return true
}

// BuildOptions configures a graph build
type BuildOptions struct {
	Filter FilterConfig
	// Root adds a fixed anchor node at the origin. Plugins without any
	// surviving dependency are attached to it.
	Root bool
	// SeedRadius is the radius of the initial circle layout. Zero means
	// DefaultSeedRadius.
	SeedRadius float64
}
