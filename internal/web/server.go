// Package web provides the HTTP scoreboard and manual trigger endpoint for
// the cabinet daemon.
package web

import (
	"context"
	"net"
	"net/http"

	"github.com/sweeney/pinball-cabinet/internal/game"
	"github.com/sweeney/pinball-cabinet/internal/status"
)

// Server serves the scoreboard over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	actions    chan<- game.Action
}

// New creates a Server that reads state from the given tracker. Manual
// actions posted to /trigger are queued on actions; a nil channel disables
// the endpoint.
func New(addr string, tracker *status.Tracker, actions chan<- game.Action) *Server {
	s := &Server{tracker: tracker, actions: actions}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/trigger", s.handleTrigger)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap, s.actions != nil)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

// handleTrigger queues a manual action. The main loop applies it on its next
// tick, through the same gate as a physical trigger.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.actions == nil {
		http.Error(w, "manual triggers disabled", http.StatusNotFound)
		return
	}

	name := r.FormValue("source")
	action, ok := game.ParseAction(name)
	if !ok {
		http.Error(w, "unknown source: "+name, http.StatusBadRequest)
		return
	}

	select {
	case s.actions <- action:
	default:
		http.Error(w, "trigger queue full", http.StatusServiceUnavailable)
		return
	}

	// Form posts from the scoreboard page go back to it.
	if r.Header.Get("Content-Type") == "application/x-www-form-urlencoded" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
