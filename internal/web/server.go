// Package web serves the dashboard as an HTML page and a JSON API.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"finance-dashboard/internal/dashboard"
	"finance-dashboard/internal/logger"
	"finance-dashboard/internal/store"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

// Renderer builds a dashboard view.
type Renderer interface {
	Render(ctx context.Context, p dashboard.Params) (*dashboard.View, error)
}

// Server serves the dashboard page and API.
type Server struct {
	renderer Renderer
}

func NewServer(renderer Renderer) *Server {
	return &Server{renderer: renderer}
}

// RegisterRoutes registers all routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /healthz", s.handleHealth)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Dashboard listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info(ctx, "Shutting down dashboard server")
		return srv.Shutdown(shutdownCtx)
	}
}

type pageData struct {
	View  *dashboard.View
	Error string
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	p, err := parseParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data := pageData{}
	status := http.StatusOK
	data.View, err = s.renderer.Render(r.Context(), p)
	if err != nil {
		logger.ErrorWithErr(r.Context(), "Dashboard render failed", err, "ticker", p.Ticker)
		data.Error = err.Error()
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		logger.ErrorWithErr(r.Context(), "Executing page template", err)
	}
}

// dashboardResponse is the view plus the render error, if any.
type dashboardResponse struct {
	*dashboard.View
	Error string `json:"error,omitempty"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	p, err := parseParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := s.renderer.Render(r.Context(), p)
	if err != nil {
		logger.ErrorWithErr(r.Context(), "Dashboard render failed", err, "ticker", p.Ticker)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(dashboardResponse{View: view, Error: err.Error()})
		return
	}
	writeJSON(w, r, dashboardResponse{View: view})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]string{"status": "ok"})
}

// parseParams reads ticker, start and end. Dates are YYYY-MM-DD; empty means
// use the configured default.
func parseParams(r *http.Request) (dashboard.Params, error) {
	q := r.URL.Query()
	p := dashboard.Params{Ticker: strings.ToUpper(strings.TrimSpace(q.Get("ticker")))}

	var err error
	if p.Start, err = parseDate(q.Get("start")); err != nil {
		return p, fmt.Errorf("invalid start date: %w", err)
	}
	if p.End, err = parseDate(q.Get("end")); err != nil {
		return p, fmt.Errorf("invalid end date: %w", err)
	}
	return p, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(store.DateLayout, s)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.ErrorWithErr(r.Context(), "Encoding JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
