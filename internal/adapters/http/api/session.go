// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/evalrank/evalrank/internal/domain/evaluation"
)

// SessionDependencies defines the interface for evaluation session operations.
type SessionDependencies interface {
	StartSession(ctx context.Context, staffID, name, department, status string) (evaluation.Snapshot, error)
	SessionSnapshot(ctx context.Context) (evaluation.Snapshot, error)
	SetScore(ctx context.Context, criterionID string, score int) error
	ResetScores(ctx context.Context) error
	SetComments(ctx context.Context, c evaluation.Comments) error
	SaveSession(ctx context.Context) error
}

// SessionHandler handles evaluation session requests.
type SessionHandler struct {
	deps SessionDependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps SessionDependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

// sessionRequest mirrors the schema for POST /session.
type sessionRequest struct {
	StaffID    string `json:"staff_id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Status     string `json:"status"`
}

func (s sessionRequest) validate() error {
	if strings.TrimSpace(s.StaffID) == "" {
		return errors.New("missing staff_id")
	}
	return nil
}

// scoreRequest mirrors the schema for POST /session/scores.
type scoreRequest struct {
	CriterionID string `json:"criterion_id"`
	Score       int    `json:"score"`
}

func (s scoreRequest) validate() error {
	if strings.TrimSpace(s.CriterionID) == "" {
		return errors.New("missing criterion_id")
	}
	return nil
}

// commentsRequest mirrors the schema for PUT /session/comments.
type commentsRequest struct {
	Strengths    string `json:"strengths"`
	Improvements string `json:"improvements"`
	Goals        string `json:"goals"`
}

// HandleSession handles POST /session (start) and GET /session (snapshot).
func (h *SessionHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleStart(w, r)
	case http.MethodGet:
		h.handleSnapshot(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *SessionHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	snap, err := h.deps.StartSession(r.Context(), req.StaffID, req.Name, req.Department, req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *SessionHandler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.deps.SessionSnapshot(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleScores handles POST /session/scores (record a score) and
// DELETE /session/scores (reset the whole sheet).
func (h *SessionHandler) HandleScores(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleSetScore(w, r)
	case http.MethodDelete:
		h.handleReset(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *SessionHandler) handleSetScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := h.deps.SetScore(r.Context(), req.CriterionID, req.Score); err != nil {
		writeServiceError(w, err)
		return
	}
	snap, err := h.deps.SessionSnapshot(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *SessionHandler) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.ResetScores(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	snap, err := h.deps.SessionSnapshot(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleComments handles PUT /session/comments requests.
func (h *SessionHandler) HandleComments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}
	var req commentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	comments := evaluation.Comments{
		Strengths:    req.Strengths,
		Improvements: req.Improvements,
		Goals:        req.Goals,
	}
	if err := h.deps.SetComments(r.Context(), comments); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleSave handles POST /session/save requests. Saving persists the
// current sheet and triggers a ranking rebuild.
func (h *SessionHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.SaveSession(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}
