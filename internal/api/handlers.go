package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/dotlint/internal/apperr"
	"github.com/starford/dotlint/internal/service"
)

// Handler holds API route handlers.
type Handler struct {
	svc *service.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// writeError maps service errors onto HTTP statuses.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrPathNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrHistoryDisabled):
		writeJSON(w, http.StatusNotImplemented, errorBody("history disabled"))
	case service.IsClientError(err):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// Validate handles POST /api/validate.
//
//	@Summary		Validate the repository or one path inside it
//	@Tags			validate
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ValidateRequest	false	"Path to validate; empty for the whole root"
//	@Success		200		{object}	Report
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/validate [post]
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req ValidateRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
			return
		}
	}
	rep, err := h.svc.Validate(r.Context(), req.Path)
	if err != nil {
		writeError(w, "validate", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// ListRuns handles GET /api/runs.
//
//	@Summary		List recorded validation runs, newest first
//	@Tags			history
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum number of runs"
//	@Success		200		{object}	RunListResponse
//	@Failure		501		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/runs [get]
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := h.svc.ListRuns(r.Context(), limit)
	if err != nil {
		writeError(w, "list runs", err)
		return
	}
	writeJSON(w, http.StatusOK, RunListResponse{Runs: runs})
}

// GetRun handles GET /api/runs/{id}.
//
//	@Summary		Get a recorded report
//	@Tags			history
//	@Produce		json
//	@Param			id	path		string	true	"Run ID"
//	@Success		200	{object}	Report
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/runs/{id} [get]
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get run", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// Protect handles GET /api/protect.
//
//	@Summary		Check a path against the sensitive-file filter
//	@Tags			protect
//	@Produce		json
//	@Param			path	query		string	true	"Path to check"
//	@Success		200		{object}	ProtectResult
//	@Security		BearerAuth
//	@Router			/protect [get]
func (h *Handler) Protect(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.IsProtected(r.URL.Query().Get("path")))
}

// Tokens handles GET /api/tokens.
//
//	@Summary		Measure a file against its token and line budget
//	@Tags			tokens
//	@Produce		json
//	@Param			path	query		string	true	"Root-relative file path"
//	@Success		200		{object}	TokenAnalysis
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tokens [get]
func (h *Handler) Tokens(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	a, err := h.svc.CountTokens(r.Context(), path)
	if err != nil {
		writeError(w, "count tokens", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
