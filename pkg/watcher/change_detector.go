package watcher

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Classify maps a filesystem event to the watched file it touches. Pure
// chmod events and events on other files are not relevant.
func Classify(event fsnotify.Event, files map[string]ChangeType) (ChangeType, bool) {
	if event.Op == fsnotify.Chmod {
		return 0, false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return 0, false
	}
	t, ok := files[abs]
	return t, ok
}

// Reaction tells the host what to reload after a batch of changes
type Reaction struct {
	ReloadSettings bool // re-read configuration, then apply options
	ReloadManifest bool // re-read plugin records, then rebuild
}

// React decides what to reload for a debounced event. Settings are applied
// before records so a filter change and a manifest change in the same batch
// cause a single rebuild with both.
func React(events ...ChangeEvent) Reaction {
	var r Reaction
	for _, e := range events {
		switch e.Type {
		case ChangeTypeSettings:
			r.ReloadSettings = true
		case ChangeTypeManifest:
			r.ReloadManifest = true
		}
	}
	return r
}
