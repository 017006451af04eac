// Package server exposes a read-only HTTP API over the sweep store:
// sweep status, stored dealers, and scored leads.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/gridline-data/locator-cli/internal/model"
	"github.com/gridline-data/locator-cli/internal/store"
)

// Server serves lead and sweep queries.
type Server struct {
	st store.Store
}

// New creates a server backed by the given store.
func New(st store.Store) *Server {
	return &Server{st: st}
}

// Routes returns the chi router with all endpoints mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/sweeps", s.handleListSweeps)
	r.Get("/sweeps/{id}", s.handleGetSweep)
	r.Get("/dealers", s.handleListDealers)
	r.Get("/leads", s.handleListLeads)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListSweeps(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.SweepFilter{
		OEM:    q.Get("oem"),
		Status: model.SweepStatus(q.Get("status")),
		Limit:  intParam(q.Get("limit")),
		Offset: intParam(q.Get("offset")),
	}

	sweeps, err := s.st.ListSweeps(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sweeps": sweeps, "count": len(sweeps)})
}

func (s *Server) handleGetSweep(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sweep, err := s.st.GetSweep(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "sweep not found"})
		return
	}
	writeJSON(w, http.StatusOK, sweep)
}

func (s *Server) handleListDealers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.DealerFilter{
		OEM:    q.Get("oem"),
		State:  q.Get("state"),
		Limit:  intParam(q.Get("limit")),
		Offset: intParam(q.Get("offset")),
	}

	dealers, err := s.st.ListDealers(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dealers": dealers, "count": len(dealers)})
}

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.LeadFilter{
		Tier:   q.Get("tier"),
		Limit:  intParam(q.Get("limit")),
		Offset: intParam(q.Get("offset")),
	}
	if raw := q.Get("min_score"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid min_score"})
			return
		}
		f.MinScore = v
	}

	leads, err := s.st.ListLeads(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": leads, "count": len(leads)})
}

func intParam(raw string) int {
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, err error) {
	zap.L().Error("query failed", zap.String("component", "server"), zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
