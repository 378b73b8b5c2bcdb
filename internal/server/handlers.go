package server

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/sozercan/ideator/apimodels"
	"github.com/sozercan/ideator/internal/analyzer"
)

//go:embed templates/dashboard.html
var templates embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templates, "templates/dashboard.html"))

// endpoint binds an analyzer variant to its wire format.
type endpoint struct {
	variant analyzer.Variant
	// upstreamStatus is answered when Reddit or the completion service fail
	upstreamStatus int
	cors           bool
	success        func(report *analyzer.Report) any
	failure        func(message string) any
}

var dashboardEndpoint = endpoint{
	variant:        analyzer.Dashboard,
	upstreamStatus: http.StatusInternalServerError,
	success: func(report *analyzer.Report) any {
		results := make([]apimodels.DashboardResult, 0, len(report.Results))
		for _, r := range report.Results {
			results = append(results, apimodels.DashboardResult{
				ID:       r.ID,
				Title:    r.Title,
				URL:      r.URL,
				Score:    r.Score,
				Analysis: r.Analysis,
			})
		}
		return apimodels.DashboardResponse{
			Status:    "success",
			Subreddit: report.Community,
			Results:   results,
		}
	},
	failure: func(message string) any {
		return apimodels.DashboardError{Status: "error", Message: message}
	},
}

var apiEndpoint = endpoint{
	variant:        analyzer.API,
	upstreamStatus: http.StatusBadRequest,
	cors:           true,
	success: func(report *analyzer.Report) any {
		data := make([]apimodels.APIResult, 0, len(report.Results))
		for _, r := range report.Results {
			data = append(data, apimodels.APIResult{
				ID:       r.ID,
				Title:    r.Title,
				URL:      r.URL,
				Upvotes:  r.Score,
				Analysis: r.Analysis,
			})
		}
		return apimodels.APIResponse{Data: data}
	},
	failure: func(message string) any {
		return apimodels.APIError{Error: message}
	},
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Home Page"))
}

func (s *Server) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"DefaultCommunity": analyzer.Dashboard.DefaultCommunity,
		"DefaultLimit":     analyzer.Dashboard.DefaultLimit,
		"MaxLimit":         analyzer.MaxLimit,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTemplate.Execute(w, data); err != nil {
		slog.Error("Failed to render dashboard", "error", err)
	}
}

func (s *Server) handleAnalyzeAPI(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		setCORSHeaders(w)
		writeJSON(w, http.StatusOK, struct{}{})
	case http.MethodPost:
		s.handleAnalyze(apiEndpoint)(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, apimodels.APIError{Error: "Invalid request method"})
	}
}

func (s *Server) handleAnalyze(e endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseAnalysisRequest(r)
		if err != nil {
			slog.Warn("Invalid analysis form", "error", err)
			writeJSON(w, http.StatusBadRequest, e.failure("Invalid form data"))
			return
		}

		slog.Debug("Received analysis request", "variant", e.variant.Name, "request", req)

		report, err := s.analyzer.Analyze(r.Context(), req, e.variant)
		if err != nil {
			status, message := translateError(err, e.upstreamStatus)
			slog.Error("Analysis request failed", "variant", e.variant.Name, "status", status, "error", err)
			writeJSON(w, status, e.failure(message))
			return
		}

		slog.Debug("Analysis request completed successfully", "results", len(report.Results), "duration", report.Duration)

		if e.cors {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		writeJSON(w, http.StatusOK, e.success(report))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseAnalysisRequest reads url-encoded or multipart forms. subreddit wins
// over community when both are sent.
func parseAnalysisRequest(r *http.Request) (apimodels.AnalysisRequest, error) {
	if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return apimodels.AnalysisRequest{}, err
	}

	community := r.PostFormValue("subreddit")
	if community == "" {
		community = r.PostFormValue("community")
	}
	return apimodels.AnalysisRequest{
		Community: community,
		Limit:     r.PostFormValue("limit"),
	}, nil
}

// translateError maps an analyzer failure to a status code and the message
// clients are allowed to see.
func translateError(err error, upstreamStatus int) (int, string) {
	var aerr *analyzer.Error
	if !errors.As(err, &aerr) {
		return http.StatusInternalServerError, "Internal server error"
	}

	switch aerr.Kind {
	case analyzer.KindInvalidInput:
		return http.StatusBadRequest, aerr.Message
	case analyzer.KindNotFound:
		return http.StatusNotFound, aerr.Message
	case analyzer.KindUpstream:
		return upstreamStatus, aerr.Message
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
