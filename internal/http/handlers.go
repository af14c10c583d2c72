package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"fireview/internal/firefly"
)

// fetchTimeout bounds one full dashboard computation: three paginated
// fetches plus aggregation.
const fetchTimeout = 2 * time.Minute

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), fetchTimeout)
	defer cancel()

	force := refreshRequested(r)
	rep, err := s.provider.Report(ctx, force)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	view, err := buildDashboardView(rep, s.cacheTTLMinutes, force)
	if err != nil {
		slog.ErrorContext(ctx, "Dashboard view build failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "dashboard.html", view); err != nil {
		slog.ErrorContext(ctx, "Dashboard template execution failed", "error", err, "template", "dashboard.html")
	}
}

func (s *Server) handleReportJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), fetchTimeout)
	defer cancel()

	rep, err := s.provider.Report(ctx, refreshRequested(r))
	if err != nil {
		status := http.StatusInternalServerError
		var fetchErr *firefly.FetchError
		if errors.As(err, &fetchErr) {
			status = http.StatusBadGateway
		}
		slog.ErrorContext(ctx, "Report fetch failed", "error", err)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(buildAPIReport(rep)); err != nil {
		slog.ErrorContext(ctx, "Report JSON encode failed", "error", err)
	}
}

// renderError shows an explicit error page. A failed computation must never
// degrade into a zero-valued dashboard.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "Something went wrong while preparing the dashboard."

	var fetchErr *firefly.FetchError
	if errors.As(err, &fetchErr) {
		status = http.StatusBadGateway
		message = "Could not fetch data from Firefly III. Check the configuration and network, then retry."
	}

	slog.ErrorContext(r.Context(), "Dashboard error", "error", err, "status", status)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if s.templates != nil {
		data := struct {
			Message string
			Detail  string
		}{Message: message, Detail: err.Error()}
		if terr := s.templates.ExecuteTemplate(w, "error.html", data); terr == nil {
			return
		}
	}
	_, _ = w.Write([]byte("<h1>Dashboard unavailable</h1>"))
}

// refreshRequested reads the manual refresh flag from the query string.
func refreshRequested(r *http.Request) bool {
	switch r.URL.Query().Get("refresh") {
	case "1", "true", "yes":
		return true
	}
	return false
}
