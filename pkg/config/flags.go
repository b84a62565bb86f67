package config

import "github.com/spf13/pflag"

// RegisterFlags defines the command line flags understood by Load
func RegisterFlags(f *pflag.FlagSet) {
	f.String("config", FileName, "Settings file (TOML)")
	f.String("manifest", "plugins.json", "Plugin manifest (JSON) exported by the host")
	f.Bool("web", false, "Serve the visualizer API instead of printing a report")
	f.Int("port", 8080, "Port for the web server")
	f.Bool("watch", false, "Rebuild when the manifest or settings file changes")
	f.Bool("report", false, "Print the impact and cycle report and exit")
	f.Bool("zen", false, "Anchor the graph to a fixed root node and use the zen force preset")
	f.Uint64("seed", 1, "Seed for the layout jitter")
	f.Int("tick-hz", 60, "Simulation frames per second")
	f.Bool("show-engine", true, "Show engine plugins")
	f.Bool("show-project", true, "Show project plugins")
	f.Bool("show-disabled", false, "Show disabled plugins")
	f.Bool("heatmap", false, "Color nodes by impact instead of category")
	f.Float64("repulsion", 15000, "Repulsion coefficient")
	f.Float64("center-force", 0.05, "Pull toward the origin")
	f.Float64("attraction", 1, "Link spring stiffness")
	f.String("verbosity", "", "Log level: trace, debug, info, warn, error")
	f.CountP("verbose", "v", "Increase log verbosity (-v debug, -vv trace)")
}
