// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/evalrank/evalrank/internal/domain/query"
	"github.com/evalrank/evalrank/internal/domain/ranking"
)

// RankingDependencies defines the interface for ranking read operations.
type RankingDependencies interface {
	Ranking(ctx context.Context, c query.Criteria) ([]ranking.Record, error)
	RankOf(ctx context.Context, staffID string) (ranking.Record, error)
	Departments(ctx context.Context) []string
	Summary(ctx context.Context) ranking.Summary
	SourceLabel(ctx context.Context) string
	Refresh(ctx context.Context, force bool) error
}

// RankingHandler handles ranking requests.
type RankingHandler struct {
	deps RankingDependencies
}

// NewRankingHandler creates a new ranking handler.
func NewRankingHandler(deps RankingDependencies) *RankingHandler {
	return &RankingHandler{deps: deps}
}

// rankingResponse bundles the filtered view with its data source label.
type rankingResponse struct {
	Source  string           `json:"source"`
	Count   int              `json:"count"`
	Records []ranking.Record `json:"records"`
}

// HandleRanking handles GET /ranking?department=X&grade=Y&q=Z&top=true requests.
func (h *RankingHandler) HandleRanking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	records, err := h.deps.Ranking(r.Context(), filterFromQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rankingResponse{
		Source:  h.deps.SourceLabel(r.Context()),
		Count:   len(records),
		Records: records,
	})
}

// HandleSummary handles GET /ranking/summary requests.
func (h *RankingHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Summary(r.Context()))
}

// HandleDepartments handles GET /departments requests.
func (h *RankingHandler) HandleDepartments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Departments(r.Context()))
}

// HandleGetRank handles GET /rank/{staff_id} requests.
func (h *RankingHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /rank/
	path := strings.TrimPrefix(r.URL.Path, "/rank/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	record, err := h.deps.RankOf(r.Context(), path)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// HandleRefresh handles POST /refresh requests. A forced refresh rebuilds
// the ranking even when the store revision has not moved.
func (h *RankingHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.Refresh(r.Context(), true); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "refreshed",
		"source": h.deps.SourceLabel(r.Context()),
	})
}
