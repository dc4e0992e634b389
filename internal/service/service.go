// Package service exposes dotlint's checks over a repository root for the
// HTTP and MCP front ends.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/dotlint/internal/apperr"
	"github.com/starford/dotlint/internal/frontmatter"
	"github.com/starford/dotlint/internal/history"
	"github.com/starford/dotlint/internal/links"
	"github.com/starford/dotlint/internal/models"
	"github.com/starford/dotlint/internal/protect"
	"github.com/starford/dotlint/internal/storage"
	"github.com/starford/dotlint/internal/tokens"
	"github.com/starford/dotlint/internal/validate"
)

// FrontmatterDetail is the parsed header of a Markdown file.
type FrontmatterDetail struct {
	Path       string            `json:"path"`
	Keys       []string          `json:"keys"`
	Fields     map[string]string `json:"fields"`
	BodyOffset int               `json:"body_offset"`
	// Canonical is the header re-rendered in normalised form.
	Canonical string `json:"canonical"`
}

// ProtectResult is the verdict of the sensitive-file filter.
type ProtectResult struct {
	Path      string `json:"path"`
	Protected bool   `json:"protected"`
	Reason    string `json:"reason,omitempty"`
}

// Service coordinates storage, validation and history.
type Service struct {
	store        storage.Provider
	orch         *validate.Orchestrator
	hist         history.Store
	counter      *tokens.Counter
	filter       *protect.Filter
	checkAnchors bool
	log          *slog.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithHistory records every validation in hist.
func WithHistory(hist history.Store) Option {
	return func(s *Service) { s.hist = hist }
}

// WithAnchors enables heading checks for link fragments.
func WithAnchors(enabled bool) Option {
	return func(s *Service) { s.checkAnchors = enabled }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService creates a new service.
func NewService(store storage.Provider, orch *validate.Orchestrator, counter *tokens.Counter, opts ...Option) *Service {
	s := &Service{
		store:   store,
		orch:    orch,
		counter: counter,
		filter:  protect.Default(),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the repository root.
func (s *Service) Root() string { return s.store.Root() }

// HistoryEnabled reports whether runs are recorded.
func (s *Service) HistoryEnabled() bool { return s.hist != nil }

// resolve confines path to the root and checks that it exists.
func (s *Service) resolve(path string) (string, error) {
	abs, err := s.store.Resolve(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("service: %s: %w", path, apperr.ErrPathNotFound)
		}
		return "", fmt.Errorf("service: stat: %w", err)
	}
	return abs, nil
}

// Validate runs the orchestrator on path (the whole root when empty) and
// records the report when history is enabled.
func (s *Service) Validate(ctx context.Context, path string) (*models.Report, error) {
	abs, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	rep, err := s.orch.Run(ctx, abs)
	if err != nil {
		return nil, err
	}
	if rep.Mode == models.ModeFile {
		rel := s.store.Rel(abs)
		rep.Root = rel
		for i := range rep.Results {
			rep.Results[i].RelPath = rel
		}
	}
	s.Record(rep)
	return rep, nil
}

// Record stores rep when history is enabled. Failures are logged only.
func (s *Service) Record(rep *models.Report) {
	if s.hist == nil || rep == nil {
		return
	}
	if err := s.hist.SaveRun(rep); err != nil {
		s.log.Warn("service: record run failed", slog.String("error", err.Error()))
	}
}

// ListRuns returns recent runs, newest first.
func (s *Service) ListRuns(_ context.Context, limit int) ([]history.RunRow, error) {
	if s.hist == nil {
		return nil, apperr.ErrHistoryDisabled
	}
	return s.hist.ListRuns(limit)
}

// GetRun returns a stored report.
func (s *Service) GetRun(_ context.Context, id string) (*models.Report, error) {
	if s.hist == nil {
		return nil, apperr.ErrHistoryDisabled
	}
	return s.hist.GetRun(id)
}

// CheckLinks checks the internal links of one Markdown file.
func (s *Service) CheckLinks(_ context.Context, path string) ([]models.Finding, error) {
	abs, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(abs, ".md") {
		return nil, fmt.Errorf("service: %s: %w", path, apperr.ErrUnsupported)
	}
	data, err := s.store.Read(abs)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	checker := links.NewChecker(s.store.Root(), s.checkAnchors, s.log)
	findings := checker.CheckContent(abs, string(data))
	if findings == nil {
		findings = []models.Finding{}
	}
	return findings, nil
}

// ParseFrontmatter extracts and maps the header of a Markdown file.
func (s *Service) ParseFrontmatter(_ context.Context, path string) (*FrontmatterDetail, error) {
	abs, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := s.store.Read(abs)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	block, err := frontmatter.Extract(string(data))
	if err != nil {
		return nil, err
	}
	m := frontmatter.Parse(block.Text)
	return &FrontmatterDetail{
		Path:       s.store.Rel(abs),
		Keys:       m.Keys(),
		Fields:     m.Map(),
		BodyOffset: block.BodyOffset,
		Canonical:  frontmatter.Marshal(m),
	}, nil
}

// IsProtected applies the sensitive-file filter to path. The path is not
// required to exist or to lie inside the root.
func (s *Service) IsProtected(path string) ProtectResult {
	ok, reason := s.filter.IsProtected(path)
	return ProtectResult{Path: path, Protected: ok, Reason: reason}
}

// CountTokens measures one file against its template budget.
func (s *Service) CountTokens(_ context.Context, path string) (*tokens.Analysis, error) {
	abs, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := s.store.Read(abs)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	a, err := s.counter.AnalyzeContent(filepath.ToSlash(s.store.Rel(abs)), string(data))
	if err != nil {
		return nil, err
	}
	return a, nil
}

// IsClientError reports whether err stems from bad input rather than a
// server fault.
func IsClientError(err error) bool {
	return errors.Is(err, apperr.ErrOutsideRoot) ||
		errors.Is(err, apperr.ErrUnsupported) ||
		errors.Is(err, frontmatter.ErrMissingFrontmatter) ||
		errors.Is(err, frontmatter.ErrMissingClosingDelimiter)
}
