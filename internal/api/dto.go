package api

import (
	"github.com/starford/dotlint/internal/history"
	"github.com/starford/dotlint/internal/models"
	"github.com/starford/dotlint/internal/service"
	"github.com/starford/dotlint/internal/tokens"
)

// ValidateRequest is the request body for POST /api/validate.
type ValidateRequest struct {
	Path string `json:"path" example:"skills/review/SKILL.md"`
}

// Report is the validation report response type (aliased from the domain layer).
type Report = models.Report

// RunRow is one stored run summary (aliased from the history layer).
type RunRow = history.RunRow

// RunListResponse wraps recorded runs.
type RunListResponse struct {
	Runs []RunRow `json:"runs" validate:"required"`
}

// ProtectResult is the filter verdict (aliased from the service layer).
type ProtectResult = service.ProtectResult

// TokenAnalysis is the budget measurement of one file.
type TokenAnalysis = tokens.Analysis
