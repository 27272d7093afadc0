// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/evalrank/evalrank/internal/domain/query"
)

// ExportDependencies defines the interface for CSV export operations.
type ExportDependencies interface {
	ExportRanking(ctx context.Context, c query.Criteria) (string, []byte, error)
	ExportEvaluation(ctx context.Context) (string, []byte, error)
}

// ExportHandler handles CSV download requests.
type ExportHandler struct {
	deps ExportDependencies
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps ExportDependencies) *ExportHandler {
	return &ExportHandler{deps: deps}
}

// HandleRankingExport handles GET /export/ranking requests. The same filter
// parameters as GET /ranking apply to the exported rows.
func (h *ExportHandler) HandleRankingExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	filename, data, err := h.deps.ExportRanking(r.Context(), filterFromQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeCSV(w, filename, data)
}

// HandleEvaluationExport handles GET /export/evaluation requests.
func (h *ExportHandler) HandleEvaluationExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	filename, data, err := h.deps.ExportEvaluation(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeCSV(w, filename, data)
}

func writeCSV(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
