package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ritzau/spyglass/pkg/config"
	"github.com/ritzau/spyglass/pkg/session"
)

// Settings is the user-facing subset of the configuration: the filter
// toggles and the three simulation sliders
type Settings struct {
	Zen          bool    `json:"zen"`
	ShowEngine   bool    `json:"showEngine"`
	ShowProject  bool    `json:"showProject"`
	ShowDisabled bool    `json:"showDisabled"`
	Heatmap      bool    `json:"heatmap"`
	Repulsion    float64 `json:"repulsion"`
	CenterForce  float64 `json:"centerForce"`
	Attraction   float64 `json:"attraction"`
}

func settingsOf(cfg config.Config) Settings {
	return Settings{
		Zen:          cfg.Zen,
		ShowEngine:   cfg.Filters.ShowEngine,
		ShowProject:  cfg.Filters.ShowProject,
		ShowDisabled: cfg.Filters.ShowDisabled,
		Heatmap:      cfg.Filters.ImpactHeatmap,
		Repulsion:    cfg.Layout.Repulsion,
		CenterForce:  cfg.Layout.CenterForce,
		Attraction:   cfg.Layout.AttractionScale,
	}
}

// applyTo writes the settings into cfg. Switching zen mode loads the
// matching coefficient preset over any slider values.
func (st Settings) applyTo(cfg *config.Config) {
	cfg.Filters.ShowEngine = st.ShowEngine
	cfg.Filters.ShowProject = st.ShowProject
	cfg.Filters.ShowDisabled = st.ShowDisabled
	cfg.Filters.ImpactHeatmap = st.Heatmap
	cfg.Layout.Repulsion = st.Repulsion
	cfg.Layout.CenterForce = st.CenterForce
	cfg.Layout.AttractionScale = st.Attraction
	if st.Zen != cfg.Zen {
		cfg.ApplyZenPreset(st.Zen)
	}
}

// ApplySettings clamps cfg and hands it to the session. Filter changes
// rebuild the graph on the loop.
func (s *Server) ApplySettings(ctx context.Context, cfg config.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(ctx, cfg)
}

func (s *Server) applyLocked(ctx context.Context, cfg config.Config) error {
	cfg.Clamp()
	opts := cfg.SessionOptions()
	if err := s.runner.Do(ctx, func(sess *session.Session) { sess.SetOptions(opts) }); err != nil {
		return fmt.Errorf("failed to apply settings: %w", err)
	}
	s.settings = cfg
	return nil
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	current := settingsOf(s.settings)
	s.mu.Unlock()
	writeJSON(w, current)
}

// handlePutSettings accepts a partial Settings document; absent fields keep
// their current value
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	update := settingsOf(s.settings)
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, fmt.Sprintf("Invalid settings: %v", err), http.StatusBadRequest)
		return
	}

	cfg := s.settings
	update.applyTo(&cfg)
	if err := s.applyLocked(r.Context(), cfg); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, settingsOf(s.settings))
}
