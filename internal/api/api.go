package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/joescharf/hotelops/internal/llm"
	"github.com/joescharf/hotelops/internal/metrics"
	"github.com/joescharf/hotelops/internal/models"
	"github.com/joescharf/hotelops/internal/service"
	"github.com/joescharf/hotelops/internal/stats"
)

// Suggester produces advisory triage for a free-text report.
type Suggester interface {
	SuggestTriage(ctx context.Context, roomNumber, description string) (*llm.Suggestion, error)
}

// Server provides the REST API handlers.
type Server struct {
	svc            *service.Service
	stats          *stats.Aggregator
	suggester      Suggester
	log            *slog.Logger
	allowedOrigins []string
}

// Option configures a Server.
type Option func(*Server)

// WithSuggester enables POST /requests/suggest.
func WithSuggester(s Suggester) Option {
	return func(srv *Server) { srv.suggester = s }
}

// WithLogger sets the access and error logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(srv *Server) { srv.log = l }
}

// WithAllowedOrigins sets the CORS allow list. Defaults to "*".
func WithAllowedOrigins(origins []string) Option {
	return func(srv *Server) {
		if len(origins) > 0 {
			srv.allowedOrigins = origins
		}
	}
}

// NewServer creates a new API server.
func NewServer(svc *service.Service, agg *stats.Aggregator, opts ...Option) *Server {
	s := &Server{
		svc:            svc,
		stats:          agg,
		log:            slog.Default(),
		allowedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns an http.Handler for the API routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	s.handle(mux, "GET /requests", "list_requests", s.listRequests)
	s.handle(mux, "POST /requests", "create_request", s.createRequest)
	s.handle(mux, "POST /requests/suggest", "suggest_triage", s.suggestTriage)
	s.handle(mux, "GET /requests/{id}", "get_request", s.getRequest)
	s.handle(mux, "PATCH /requests/{id}", "update_request", s.updateRequest)
	s.handle(mux, "DELETE /requests/{id}", "delete_request", s.deleteRequest)

	s.handle(mux, "GET /stats", "stats", s.getStats)

	mux.HandleFunc("GET /healthz", s.healthz)
	mux.Handle("GET /metrics", metrics.Handler())

	return requestID(s.accessLog(s.cors(mux)))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps the service error kinds onto HTTP status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *service.ValidationError
		nf *service.NotFoundError
	)
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.As(err, &nf):
		writeError(w, http.StatusNotFound, nf.Error())
	default:
		s.log.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// --- Requests ---

func (s *Server) listRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	requests, err := s.svc.List(r.Context(), service.Filter{
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		Category: q.Get("category"),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if requests == nil {
		requests = []*models.MaintenanceRequest{}
	}
	writeJSON(w, http.StatusOK, requests)
}

func (s *Server) createRequest(w http.ResponseWriter, r *http.Request) {
	var in service.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	created, err := s.svc.Create(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) getRequest(w http.ResponseWriter, r *http.Request) {
	req, err := s.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) updateRequest(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	patch, err := decodePatch(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.svc.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// decodePatch turns a JSON patch map into a service.Patch. A present key
// with null clears the field; an absent key leaves it alone.
func decodePatch(body map[string]any) (service.Patch, error) {
	var p service.Patch

	if v, ok := body["status"]; ok {
		str, ok := v.(string)
		if !ok {
			return p, fmt.Errorf("status: must be a string")
		}
		st := models.Status(str)
		p.Status = &st
	}

	var err error
	if p.AssignedTo, err = patchText(body, "assignedTo"); err != nil {
		return p, err
	}
	if p.Notes, err = patchText(body, "notes"); err != nil {
		return p, err
	}
	return p, nil
}

// patchText reads an optional nullable string from a JSON patch map.
func patchText(body map[string]any, key string) (*string, error) {
	v, ok := body[key]
	if !ok {
		return nil, nil
	}
	if v == nil {
		empty := ""
		return &empty, nil
	}
	str, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%s: must be a string or null", key)
	}
	return &str, nil
}

func (s *Server) deleteRequest(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type suggestBody struct {
	RoomNumber  string `json:"roomNumber"`
	Description string `json:"description"`
}

func (s *Server) suggestTriage(w http.ResponseWriter, r *http.Request) {
	if s.suggester == nil {
		writeError(w, http.StatusServiceUnavailable, "triage suggestions are not configured (set anthropic.api_key)")
		return
	}

	var body suggestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	body.Description = strings.TrimSpace(body.Description)
	if body.Description == "" {
		writeError(w, http.StatusBadRequest, "description: is required")
		return
	}

	suggestion, err := s.suggester.SuggestTriage(r.Context(), strings.TrimSpace(body.RoomNumber), body.Description)
	if err != nil {
		s.log.WarnContext(r.Context(), "triage suggestion failed", "error", err)
		writeError(w, http.StatusBadGateway, "triage suggestion failed")
		return
	}
	writeJSON(w, http.StatusOK, suggestion)
}

// --- Stats ---

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	summary, err := s.stats.Summarize(r.Context())
	if err != nil {
		s.log.ErrorContext(r.Context(), "summarize failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
