package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// FileName is the optional settings file read from the working directory
// unless --config points elsewhere
const FileName = "spyglass.toml"

// EnvPrefix prefixes environment overrides. A double underscore separates
// key levels: SPYGLASS_LAYOUT__CENTER_FORCE=0.2 sets layout.center_force.
const EnvPrefix = "SPYGLASS_"

// Config holds all configuration for the application
type Config struct {
	ConfigFile string `koanf:"config"`
	Manifest   string `koanf:"manifest"`
	WebMode    bool   `koanf:"web"`
	Port       int    `koanf:"port"`
	Watch      bool   `koanf:"watch"`
	Report     bool   `koanf:"report"`
	Zen        bool   `koanf:"zen"`
	Seed       uint64 `koanf:"seed"`
	TickHz     int    `koanf:"tick_hz"`
	Verbosity  string `koanf:"verbosity"`
	VerboseCnt int    `koanf:"verbose"`

	Viewport Viewport `koanf:"viewport"`
	Layout   Layout   `koanf:"layout"`
	Filters  Filters  `koanf:"filters"`
}

// Viewport is the size of the virtual widget used for hit testing
type Viewport struct {
	Width  float64 `koanf:"width"`
	Height float64 `koanf:"height"`
}

// Layout holds the force simulation settings
type Layout struct {
	Repulsion       float64 `koanf:"repulsion"`
	CenterForce     float64 `koanf:"center_force"`
	AttractionScale float64 `koanf:"attraction_scale"`
	SpringLength    float64 `koanf:"spring_length"`
	Damping         float64 `koanf:"damping"`
	SimSpeed        float64 `koanf:"sim_speed"`
	MaxLinkDistance float64 `koanf:"max_link_distance"`
	MaxDt           float64 `koanf:"max_dt"`
}

// Filters selects which plugins are shown and how they are colored
type Filters struct {
	ShowEngine    bool `koanf:"show_engine"`
	ShowProject   bool `koanf:"show_project"`
	ShowDisabled  bool `koanf:"show_disabled"`
	ImpactHeatmap bool `koanf:"impact_heatmap"`
}

func defaults() map[string]any {
	return map[string]any{
		"config":                   FileName,
		"manifest":                 "plugins.json",
		"web":                      false,
		"port":                     8080,
		"watch":                    false,
		"report":                   false,
		"zen":                      false,
		"seed":                     1,
		"tick_hz":                  60,
		"verbosity":                "",
		"verbose":                  0,
		"viewport.width":           960.0,
		"viewport.height":          540.0,
		"layout.repulsion":         15000.0,
		"layout.center_force":      0.05,
		"layout.attraction_scale":  1.0,
		"layout.spring_length":     150.0,
		"layout.damping":           0.85,
		"layout.sim_speed":         5.0,
		"layout.max_link_distance": 300.0,
		"layout.max_dt":            0.05,
		"filters.show_engine":      true,
		"filters.show_project":     true,
		"filters.show_disabled":    false,
		"filters.impact_heatmap":   false,
	}
}

// flagKeys maps dashed flag names to config keys where they differ
var flagKeys = map[string]string{
	"tick-hz":       "tick_hz",
	"show-engine":   "filters.show_engine",
	"show-project":  "filters.show_project",
	"show-disabled": "filters.show_disabled",
	"heatmap":       "filters.impact_heatmap",
	"repulsion":     "layout.repulsion",
	"center-force":  "layout.center_force",
	"attraction":    "layout.attraction_scale",
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file (optional). A missing default file is skipped; a file
	// named with --config must exist.
	path := k.String("config")
	explicit := f != nil && changed(f, "config")
	if explicit {
		path = f.Lookup("config").Value.String()
	}
	if _, err := os.Stat(path); err == nil || explicit {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	// 3. Environment variables
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.ProviderWithValue(f, ".", k, flagKey), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ConfigFile = path
	return &cfg, nil
}

// envKey turns SPYGLASS_LAYOUT__CENTER_FORCE into layout.center_force
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

func flagKey(name, value string) (string, any) {
	if key, ok := flagKeys[name]; ok {
		return key, value
	}
	return strings.ReplaceAll(name, "-", "_"), value
}

func changed(f *pflag.FlagSet, name string) bool {
	fl := f.Lookup(name)
	return fl != nil && fl.Changed
}

// mapProvider serves flat dotted keys as a nested map
type mapProvider struct {
	m map[string]any
}

func makeMapProvider(m map[string]any) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]any, error) {
	return maps.Unflatten(p.m, "."), nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
