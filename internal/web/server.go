// Package web serves the current plot over HTTP: an ECharts page, a PNG
// snapshot and a JSON status, alongside the session's debug routes.
package web

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/banshee-data/beacon.scope/internal/monitoring"
	"github.com/banshee-data/beacon.scope/internal/plot"
	"github.com/banshee-data/beacon.scope/internal/scope"
	"github.com/banshee-data/beacon.scope/internal/stream"
	"github.com/banshee-data/beacon.scope/internal/viewport"
)

var logf = monitoring.Component("web")

// Config configures a Server.
type Config struct {
	Address string
	// AssetsHost overrides where the chart page loads echarts from.
	AssetsHost string
}

// Server renders a scope.View for browsers.
type Server struct {
	view       *scope.View
	session    *stream.Session
	address    string
	assetsHost string
	mux        *http.ServeMux
	server     *http.Server
}

// NewServer builds the routes for view and session.
func NewServer(view *scope.View, session *stream.Session, cfg Config) *Server {
	s := &Server{
		view:       view,
		session:    session,
		address:    cfg.Address,
		assetsHost: cfg.AssetsHost,
		mux:        http.NewServeMux(),
	}
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/chart", s.handleChart)
	s.mux.HandleFunc("/plot.png", s.handlePNG)
	s.mux.HandleFunc("/api/status", s.handleStatus)
	s.mux.HandleFunc("/api/follow", s.handleFollow)
	session.AttachAdminRoutes(s.mux)

	s.server = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the route multiplexer.
func (s *Server) Handler() http.Handler { return s.mux }

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		logf("starting HTTP server on %s", s.address)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logf("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Status is the JSON body of /api/status.
type Status struct {
	Session stream.Status   `json:"session"`
	Mode    viewport.Mode   `json:"mode"`
	Window  viewport.Window `json:"window"`
	Total   int             `json:"total"`
	Stats   plot.Stats      `json:"stats"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	f := s.view.Frame()
	writeJSON(w, http.StatusOK, Status{
		Session: s.session.Status(),
		Mode:    f.Mode,
		Window:  f.Window,
		Total:   f.Total,
		Stats:   f.Stats,
	})
}

func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	s.view.ResetToLive()
	writeJSON(w, http.StatusOK, map[string]string{"mode": s.view.Mode().String()})
}

const indexHTML = `<!doctype html>
<html><head><meta charset="utf-8"><title>beacon scope</title>
<meta http-equiv="refresh" content="5">
<style>body{background:#020617;color:#fde047;font-family:monospace;margin:1em}
a{color:#38bdf8}img{max-width:100%%}</style></head>
<body><h1>beacon scope</h1>
<p>%s &middot; <a href="/chart">chart</a> &middot; <a href="/api/status">status</a> &middot; <a href="/debug/">debug</a></p>
<img src="/plot.png" alt="distance plot">
</body></html>`

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	st := s.session.Status()
	line := st.State.String()
	if st.URL != "" {
		line += " " + st.URL
	}
	if st.LastError != "" {
		line += ": " + st.LastError
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, indexHTML, html.EscapeString(line))
}
