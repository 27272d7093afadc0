// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/evalrank/evalrank/internal/app"
	"github.com/evalrank/evalrank/internal/domain/evaluation"
	"github.com/evalrank/evalrank/internal/domain/query"
	"github.com/evalrank/evalrank/internal/domain/ranking"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Evaluation session lifecycle.
	StartSession(ctx context.Context, staffID, name, department, status string) (evaluation.Snapshot, error)
	SessionSnapshot(ctx context.Context) (evaluation.Snapshot, error)
	SetScore(ctx context.Context, criterionID string, score int) error
	ResetScores(ctx context.Context) error
	SetComments(ctx context.Context, c evaluation.Comments) error
	SaveSession(ctx context.Context) error

	// Ranking read operations.
	Ranking(ctx context.Context, c query.Criteria) ([]ranking.Record, error)
	RankOf(ctx context.Context, staffID string) (ranking.Record, error)
	Departments(ctx context.Context) []string
	Summary(ctx context.Context) ranking.Summary
	SourceLabel(ctx context.Context) string
	Refresh(ctx context.Context, force bool) error

	// CSV exports.
	ExportRanking(ctx context.Context, c query.Criteria) (string, []byte, error)
	ExportEvaluation(ctx context.Context) (string, []byte, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	sessionHandler *SessionHandler
	rankingHandler *RankingHandler
	exportHandler  *ExportHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		sessionHandler: NewSessionHandler(deps),
		rankingHandler: NewRankingHandler(deps),
		exportHandler:  NewExportHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/session/scores", MetricsMiddleware(s.sessionHandler.HandleScores, "session_scores"))
	mux.HandleFunc("/session/comments", MetricsMiddleware(s.sessionHandler.HandleComments, "session_comments"))
	mux.HandleFunc("/session/save", MetricsMiddleware(s.sessionHandler.HandleSave, "session_save"))
	mux.HandleFunc("/session", MetricsMiddleware(s.sessionHandler.HandleSession, "session"))
	mux.HandleFunc("/ranking/summary", MetricsMiddleware(s.rankingHandler.HandleSummary, "ranking_summary"))
	mux.HandleFunc("/ranking", MetricsMiddleware(s.rankingHandler.HandleRanking, "ranking"))
	mux.HandleFunc("/departments", MetricsMiddleware(s.rankingHandler.HandleDepartments, "departments"))
	mux.HandleFunc("/rank/", MetricsMiddleware(s.rankingHandler.HandleGetRank, "rank"))
	mux.HandleFunc("/refresh", MetricsMiddleware(s.rankingHandler.HandleRefresh, "refresh"))
	mux.HandleFunc("/export/ranking", MetricsMiddleware(s.exportHandler.HandleRankingExport, "export_ranking"))
	mux.HandleFunc("/export/evaluation", MetricsMiddleware(s.exportHandler.HandleEvaluationExport, "export_evaluation"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates upstream errors into HTTP responses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNoSession):
		writeError(w, http.StatusConflict, "no_session", err)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrBusy):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "not_started", err)
	case errors.Is(err, evaluation.ErrInvalidScore), errors.Is(err, evaluation.ErrUnknownCriterion):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// filterFromQuery reads the ranking filter parameters shared by the list
// and export endpoints.
func filterFromQuery(r *http.Request) query.Criteria {
	q := r.URL.Query()
	return query.Criteria{
		Department:        q.Get("department"),
		Grade:             q.Get("grade"),
		Search:            q.Get("q"),
		TopPerformersOnly: q.Get("top") == "true" || q.Get("top") == "1",
	}
}
