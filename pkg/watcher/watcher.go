package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/spyglass/pkg/logging"
)

// ChangeType represents which input file changed
type ChangeType int

const (
	ChangeTypeManifest ChangeType = iota
	ChangeTypeSettings
)

// String returns the change type name
func (t ChangeType) String() string {
	if t == ChangeTypeSettings {
		return "settings"
	}
	return "manifest"
}

// ChangeEvent represents a batch of changes to one watched file
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

// FileWatcher watches the manifest and the settings file. Editors often
// replace files instead of writing them in place, so the parent
// directories are watched and events are matched by file name.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	files   map[string]ChangeType // cleaned absolute path -> type
	events  chan ChangeEvent
}

// NewFileWatcher creates a watcher for the manifest and, if non-empty, the
// settings file
func NewFileWatcher(manifest, settings string) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher: w,
		files:   make(map[string]ChangeType),
		events:  make(chan ChangeEvent, 16),
	}
	if err := fw.track(manifest, ChangeTypeManifest); err != nil {
		w.Close()
		return nil, err
	}
	if settings != "" {
		if err := fw.track(settings, ChangeTypeSettings); err != nil {
			w.Close()
			return nil, err
		}
	}
	return fw, nil
}

func (fw *FileWatcher) track(path string, t ChangeType) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	fw.files[abs] = t
	return nil
}

// Start adds the directory watches and begins forwarding events
func (fw *FileWatcher) Start(ctx context.Context) error {
	dirs := make(map[string]bool)
	for path := range fw.files {
		dirs[filepath.Dir(path)] = true
	}
	for dir := range dirs {
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	logging.Info("watching input files", "files", len(fw.files), "directories", len(dirs))
	go fw.processEvents(ctx)
	return nil
}

// processEvents forwards relevant events, one ChangeEvent per fsnotify event.
// Batching is left to the Debouncer.
func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer close(fw.events)
	defer fw.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			t, relevant := Classify(event, fw.files)
			if !relevant {
				continue
			}
			logging.Trace("input file changed", "path", event.Name, "op", event.Op.String())
			select {
			case fw.events <- ChangeEvent{Type: t, Paths: []string{event.Name}, Timestamp: time.Now()}:
			case <-ctx.Done():
				return
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events. It is closed when the
// watcher stops.
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}
