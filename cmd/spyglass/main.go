package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/ritzau/spyglass/pkg/config"
	"github.com/ritzau/spyglass/pkg/cycles"
	"github.com/ritzau/spyglass/pkg/logging"
	"github.com/ritzau/spyglass/pkg/model"
	"github.com/ritzau/spyglass/pkg/output"
	"github.com/ritzau/spyglass/pkg/pubsub"
	"github.com/ritzau/spyglass/pkg/session"
	"github.com/ritzau/spyglass/pkg/source"
	"github.com/ritzau/spyglass/pkg/watcher"
	"github.com/ritzau/spyglass/pkg/web"
)

const reportLimit = 25

func main() {
	// Parse command-line flags
	flags := pflag.NewFlagSet("spyglass", pflag.ExitOnError)
	config.RegisterFlags(flags)
	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logging.SetLevel(logging.ParseLevel(cfg.Verbosity, cfg.VerboseCnt))

	records, err := source.Load(cfg.Manifest)
	if err != nil {
		logging.Fatal("failed to load manifest", "path", cfg.Manifest, "error", err)
	}

	if cfg.Report || !cfg.WebMode {
		printReport(cfg, records)
	}
	if !cfg.WebMode {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, flags, cfg, records); err != nil {
		logging.Fatal("server stopped", "error", err)
	}
}

// loadConfig loads and normalizes the configuration. Zen mode starts from
// its coefficient preset.
func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(flags)
	if err != nil {
		return nil, err
	}
	if cfg.Zen {
		cfg.ApplyZenPreset(true)
	}
	cfg.Clamp()
	return cfg, nil
}

func printReport(cfg *config.Config, records []model.PluginRecord) {
	g := model.Build(records, cfg.BuildOptions())
	output.PrintImpactReport(os.Stdout, cfg.Manifest, g, cycles.FindPluginCycles(g), reportLimit)
}

// serve runs the frame loop, the web server and, when enabled, the file
// watcher until ctx is cancelled or one of them fails
func serve(ctx context.Context, flags *pflag.FlagSet, cfg *config.Config, records []model.PluginRecord) error {
	publisher := pubsub.NewSSEPublisher()
	defer publisher.Close()

	sess := session.New(records, cfg.SessionOptions())
	runner := session.NewRunner(sess, publisher, cfg.TickHz)
	server := web.NewServer(runner, publisher, *cfg)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := runner.Run(ctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return server.Start(ctx, cfg.Port)
	})
	if cfg.Watch {
		g.Go(func() error {
			return watch(ctx, flags, cfg, runner, server)
		})
	}
	return g.Wait()
}

// watch reloads settings and records when their files change
func watch(ctx context.Context, flags *pflag.FlagSet, cfg *config.Config, runner *session.Runner, server *web.Server) error {
	fw, err := watcher.NewFileWatcher(cfg.Manifest, cfg.ConfigFile)
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}

	debouncer := watcher.NewDebouncer(fw.Events(), 300*time.Millisecond, 2*time.Second)
	debouncer.Start(ctx)
	logging.Info("watching for changes", "manifest", cfg.Manifest, "settings", cfg.ConfigFile)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-debouncer.Output():
			if !ok {
				return nil
			}
			batch := append([]watcher.ChangeEvent{event}, pending(debouncer.Output())...)
			for _, e := range batch {
				logging.Debug("files changed", "type", e.Type, "paths", e.Paths)
			}
			reload(ctx, flags, cfg.Manifest, runner, server, watcher.React(batch...))
		}
	}
}

// pending drains the events of a flush that are already queued
func pending(events <-chan watcher.ChangeEvent) []watcher.ChangeEvent {
	var out []watcher.ChangeEvent
	for {
		select {
		case e, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, e)
		default:
			return out
		}
	}
}

// reload applies one debounced reaction. Failures keep the previous state.
func reload(ctx context.Context, flags *pflag.FlagSet, manifest string, runner *session.Runner, server *web.Server, reaction watcher.Reaction) {
	if reaction.ReloadSettings {
		cfg, err := loadConfig(flags)
		if err != nil {
			logging.Warn("keeping previous settings", "error", err)
		} else if err := server.ApplySettings(ctx, *cfg); err != nil {
			logging.Warn("failed to apply settings", "error", err)
		} else {
			logging.Info("settings reloaded", "path", cfg.ConfigFile)
		}
	}

	if reaction.ReloadManifest {
		records, err := source.Load(manifest)
		if errors.Is(err, source.ErrEmptyManifest) {
			logging.Debug("manifest is empty, keeping previous records", "path", manifest)
			return
		}
		if err != nil {
			logging.Warn("keeping previous records", "error", err)
			return
		}
		err = runner.Do(ctx, func(s *session.Session) { s.SetRecords(records, session.ReasonManifest) })
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Warn("failed to apply manifest", "error", err)
		}
	}
}
