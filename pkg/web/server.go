package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/ritzau/spyglass/pkg/config"
	"github.com/ritzau/spyglass/pkg/cycles"
	"github.com/ritzau/spyglass/pkg/interact"
	"github.com/ritzau/spyglass/pkg/logging"
	"github.com/ritzau/spyglass/pkg/pubsub"
	"github.com/ritzau/spyglass/pkg/session"
)

// Input event types accepted by /api/input
const (
	InputDown  = "down"
	InputUp    = "up"
	InputMove  = "move"
	InputWheel = "wheel"
)

// InputEvent is a pointer event in local widget coordinates
type InputEvent struct {
	Type   string  `json:"type"`
	Button string  `json:"button,omitempty"` // "left" (default), "right", "middle"
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Delta  float64 `json:"delta,omitempty"` // wheel notches, positive zooms in
}

// InputResult reports the focus state after an input event
type InputResult struct {
	Change  string `json:"change"` // "none", "hover", "pin"
	ID      string `json:"id,omitempty"`
	Hovered string `json:"hovered,omitempty"`
	Pinned  string `json:"pinned,omitempty"`
	Focus   string `json:"focus,omitempty"`
}

// Server represents the web server
type Server struct {
	router    *mux.Router
	runner    *session.Runner
	publisher *pubsub.SSEPublisher

	mu       sync.Mutex
	settings config.Config
}

// NewServer creates a web server that drives the session behind runner.
// cfg is the configuration the session was started with.
func NewServer(runner *session.Runner, publisher *pubsub.SSEPublisher, cfg config.Config) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		runner:    runner,
		publisher: publisher,
		settings:  cfg,
	}
	s.setupRoutes()
	return s
}

// Handler returns the routes wrapped in request logging
func (s *Server) Handler() http.Handler {
	return logging.RequestIDMiddleware(s.router)
}

func (s *Server) setupRoutes() {
	// SSE subscription endpoints
	s.router.HandleFunc("/api/subscribe/{topic}", s.handleSubscribe).Methods("GET")

	s.router.HandleFunc("/api/graph", s.handleGraph).Methods("GET")
	s.router.HandleFunc("/api/cycles", s.handleCycles).Methods("GET")
	s.router.HandleFunc("/api/plugins/{id}", s.handlePlugin).Methods("GET")
	s.router.HandleFunc("/api/settings", s.handleGetSettings).Methods("GET")
	s.router.HandleFunc("/api/settings", s.handlePutSettings).Methods("PUT")

	s.router.HandleFunc("/api/input", s.handleInput).Methods("POST")
	s.router.HandleFunc("/api/unpin", s.handleUnpin).Methods("POST")
	s.router.HandleFunc("/api/rebuild", s.handleRebuild).Methods("POST")
	s.router.HandleFunc("/api/view/recenter", s.handleRecenter).Methods("POST")
}

// do runs fn on the frame loop and reports a stopped loop as unavailable
func (s *Server) do(w http.ResponseWriter, r *http.Request, fn func(*session.Session)) bool {
	if err := s.runner.Do(r.Context(), fn); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("failed to encode response", "error", err)
	}
}

var topics = []string{pubsub.TopicFrames, pubsub.TopicFocus, pubsub.TopicGraph}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	topic := mux.Vars(r)["topic"]
	if !slices.Contains(topics, topic) {
		http.Error(w, fmt.Sprintf("Unknown topic: %s", topic), http.StatusNotFound)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub, err := s.publisher.Subscribe(r.Context(), topic)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer sub.Close()

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Send initial comment to establish connection
	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				// Publisher shut down
				return
			}
			if err := pubsub.WriteSSE(w, event); err != nil {
				logging.DebugContext(r.Context(), "stream write failed", "topic", topic, "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var snap session.Snapshot
	if !s.do(w, r, func(sess *session.Session) { snap = sess.Snapshot() }) {
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handleCycles(w http.ResponseWriter, r *http.Request) {
	var found []cycles.PluginCycle
	if !s.do(w, r, func(sess *session.Session) { found = slices.Clone(sess.Cycles()) }) {
		return
	}
	if found == nil {
		found = []cycles.PluginCycle{}
	}
	writeJSON(w, found)
}

func (s *Server) handlePlugin(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var info session.PluginInfo
	var err error
	if !s.do(w, r, func(sess *session.Session) { info, err = sess.Info(id) }) {
		return
	}
	if errors.Is(err, session.ErrUnknownPlugin) {
		http.Error(w, fmt.Sprintf("Plugin not found: %s", id), http.StatusNotFound)
		return
	}
	writeJSON(w, info)
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var ev InputEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, fmt.Sprintf("Invalid input event: %v", err), http.StatusBadRequest)
		return
	}
	button, ok := interact.ParseButton(ev.Button)
	if !ok {
		http.Error(w, fmt.Sprintf("Unknown button: %s", ev.Button), http.StatusBadRequest)
		return
	}

	p := interact.Point(ev.X, ev.Y)
	var apply func(*session.Session) interact.Change
	switch ev.Type {
	case InputDown:
		apply = func(sess *session.Session) interact.Change { return sess.PointerDown(button, p) }
	case InputUp:
		apply = func(sess *session.Session) interact.Change { return sess.PointerUp(button) }
	case InputMove:
		apply = func(sess *session.Session) interact.Change { return sess.PointerMove(p) }
	case InputWheel:
		apply = func(sess *session.Session) interact.Change { return sess.Wheel(ev.Delta, p) }
	default:
		http.Error(w, fmt.Sprintf("Unknown input type: %q", ev.Type), http.StatusBadRequest)
		return
	}

	s.respondChange(w, r, apply)
}

func (s *Server) handleUnpin(w http.ResponseWriter, r *http.Request) {
	s.respondChange(w, r, (*session.Session).Unpin)
}

func (s *Server) respondChange(w http.ResponseWriter, r *http.Request, apply func(*session.Session) interact.Change) {
	var result InputResult
	ok := s.do(w, r, func(sess *session.Session) {
		change := apply(sess)
		ctrl := sess.Controller()
		result = InputResult{
			Change:  change.Kind.String(),
			ID:      change.ID,
			Hovered: ctrl.Hovered(),
			Pinned:  ctrl.Pinned(),
			Focus:   ctrl.Focus(),
		}
	})
	if ok {
		writeJSON(w, result)
	}
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if s.do(w, r, func(sess *session.Session) { sess.Rebuild(session.ReasonRequest) }) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleRecenter(w http.ResponseWriter, r *http.Request) {
	if s.do(w, r, (*session.Session).Recenter) {
		w.WriteHeader(http.StatusNoContent)
	}
}

// Start serves on the given port until ctx is cancelled
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Open streams end with ctx
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Warn("web server shutdown", "error", err)
		}
	}()

	logging.Info("starting web server", "url", fmt.Sprintf("http://localhost:%d", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}
