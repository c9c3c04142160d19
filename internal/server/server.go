// Package server hosts the built site over HTTP in serve mode. Two
// listeners run side by side: the docs server serving the generated pages
// and an admin server exposing health, build history and metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/routes"
	"git.home.luguber.info/inful/docsite/internal/server/middleware"
	"git.home.luguber.info/inful/docsite/internal/site"
	"git.home.luguber.info/inful/docsite/internal/state"
)

// Server wires the docs and admin HTTP servers.
type Server struct {
	cfg      *config.Config
	store    *state.Store
	recorder metrics.Recorder
	registry *prom.Registry
	started  time.Time

	mu        sync.RWMutex
	lastBuild *site.Result
}

// New constructs the server. store and registry may be nil; the
// corresponding admin endpoints then degrade gracefully.
func New(cfg *config.Config, store *state.Store, registry *prom.Registry, recorder metrics.Recorder) *Server {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Server{
		cfg:      cfg,
		store:    store,
		recorder: recorder,
		registry: registry,
		started:  time.Now(),
	}
}

// SetLastBuild records the most recent build result for the status
// endpoint. Called by the watch loop after every build.
func (s *Server) SetLastBuild(res *site.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastBuild = res
}

// DocsHandler serves the generated site. Directory-style paths resolve to
// their index.html; unknown paths render the generated 404 page with a 404
// status. The site root redirects to the first flattened page.
func (s *Server) DocsHandler() http.Handler {
	chain := middleware.Chain(slog.Default(), s.recorder)
	return chain(http.HandlerFunc(s.serveDoc))
}

func (s *Server) serveDoc(w http.ResponseWriter, r *http.Request) {
	reqPath := strings.Trim(r.URL.Path, "/")
	if strings.Contains(reqPath, "..") {
		s.serveNotFound(w, r)
		return
	}

	if reqPath == "" {
		pages := s.cfg.Pages()
		if len(pages) == 0 {
			s.serveNotFound(w, r)
			return
		}
		http.Redirect(w, r, pages[0].Href, http.StatusFound)
		return
	}

	target := filepath.Join(s.cfg.Output.Dir, filepath.FromSlash(reqPath))
	if filepath.Ext(reqPath) == "" {
		target = filepath.Join(target, "index.html")
	}

	if st, err := os.Stat(target); err != nil || st.IsDir() {
		s.serveNotFound(w, r)
		return
	}
	http.ServeFile(w, r, target)
}

// serveNotFound renders the generated 404 page. Lookup misses are a normal
// outcome of serving, not an error path.
func (s *Server) serveNotFound(w http.ResponseWriter, r *http.Request) {
	page, err := os.ReadFile(filepath.Join(s.cfg.Output.Dir, "404.html"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write(page)
}

// AdminHandler exposes health, route listing, build history and metrics.
func (s *Server) AdminHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /api/routes", s.handleRoutes)
	mux.HandleFunc("GET /api/builds", s.handleBuilds)
	if s.registry != nil {
		mux.Handle("GET /metrics", metrics.HTTPHandler(s.registry))
	}
	return middleware.Chain(slog.Default(), metrics.NoopRecorder{})(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	last := s.lastBuild
	s.mu.RUnlock()

	resp := map[string]any{
		"status":         "ok",
		"uptime_seconds": int(time.Since(s.started).Seconds()),
	}
	if last != nil {
		resp["last_build_id"] = last.BuildID
		resp["last_build_warnings"] = len(last.Warnings)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRoutes(w http.ResponseWriter, _ *http.Request) {
	pages := s.cfg.Pages()
	out := make([]map[string]string, 0, len(pages))
	for _, p := range pages {
		out = append(out, map[string]string{"title": p.Title, "href": p.Href})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBuilds(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, []state.BuildRecord{})
		return
	}
	records, err := s.store.RecentBuilds(r.Context(), 20)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if records == nil {
		records = []state.BuildRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Start binds both listeners up front so address conflicts surface as one
// aggregate error, then serves until ctx is canceled and shuts both down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	binds := []struct {
		name    string
		addr    string
		handler http.Handler
	}{
		{"docs", s.cfg.Server.DocsAddr, s.DocsHandler()},
		{"admin", s.cfg.Server.AdminAddr, s.AdminHandler()},
	}

	var bindErrs []error
	listeners := make([]net.Listener, 0, len(binds))
	servers := make([]*http.Server, 0, len(binds))
	lc := net.ListenConfig{}
	for _, b := range binds {
		ln, err := lc.Listen(ctx, "tcp", b.addr)
		if err != nil {
			bindErrs = append(bindErrs, fmt.Errorf("bind %s server on %s: %w", b.name, b.addr, err))
			continue
		}
		listeners = append(listeners, ln)
		servers = append(servers, &http.Server{
			Handler:           b.handler,
			ReadHeaderTimeout: 10 * time.Second,
		})
		slog.Info("HTTP server listening", slog.String("server", b.name), slog.String("addr", ln.Addr().String()))
	}
	if len(bindErrs) > 0 {
		for _, ln := range listeners {
			_ = ln.Close()
		}
		return errors.Join(bindErrs...)
	}

	errCh := make(chan error, len(servers))
	for i, srv := range servers {
		go func(srv *http.Server, ln net.Listener) {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}(srv, listeners[i])
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var shutdownErrs []error
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			shutdownErrs = append(shutdownErrs, err)
		}
	}
	if err := errors.Join(shutdownErrs...); err != nil {
		slog.Warn("HTTP shutdown incomplete", logfields.Error(err))
		return err
	}
	return nil
}

// FirstPageHref returns the canonical entry page of the site (e.g. to log
// a clickable URL at startup).
func FirstPageHref(pages []routes.Page) string {
	if len(pages) == 0 {
		return "/"
	}
	return pages[0].Href
}
