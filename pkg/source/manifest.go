// Package source loads plugin records from a JSON manifest written by the
// host application.
package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ritzau/spyglass/pkg/logging"
	"github.com/ritzau/spyglass/pkg/model"
)

// ErrEmptyManifest is returned when a manifest parses but lists no plugins.
// Watchers treat it as a transient state (file truncated mid-write) and keep
// the previous records.
var ErrEmptyManifest = errors.New("manifest lists no plugins")

// Manifest is the on-disk document
type Manifest struct {
	Plugins []model.PluginRecord `json:"plugins"`
}

// Load reads and parses the manifest at path
func Load(path string) ([]model.PluginRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	records, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logging.Debug("loaded manifest", "path", path, "plugins", len(records))
	return records, nil
}

// Parse decodes a manifest. IDs and dependency IDs are trimmed; records
// without an ID are skipped with a warning.
func Parse(r io.Reader) ([]model.PluginRecord, error) {
	var m Manifest
	dec := json.NewDecoder(r)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	records := make([]model.PluginRecord, 0, len(m.Plugins))
	skipped := 0
	for _, rec := range m.Plugins {
		rec.ID = strings.TrimSpace(rec.ID)
		if rec.ID == "" {
			skipped++
			continue
		}
		rec.Category = strings.TrimSpace(rec.Category)
		deps := rec.DependencyIDs[:0:0]
		for _, dep := range rec.DependencyIDs {
			if dep = strings.TrimSpace(dep); dep != "" {
				deps = append(deps, dep)
			}
		}
		rec.DependencyIDs = deps
		records = append(records, rec)
	}

	if skipped > 0 {
		logging.Warn("skipped manifest entries without id", "count", skipped)
	}
	if len(records) == 0 {
		return nil, ErrEmptyManifest
	}
	return records, nil
}

// Write stores records as a manifest, e.g. to snapshot a host export
func Write(w io.Writer, records []model.PluginRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Manifest{Plugins: records}); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
