package internal

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/starford/dotlint/internal/history"
	"github.com/starford/dotlint/internal/service"
	"github.com/starford/dotlint/internal/storage"
	"github.com/starford/dotlint/internal/tokens"
	"github.com/starford/dotlint/internal/validate"
)

// NewLogger returns the structured JSON logger used by every command.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewOrchestrator builds the validation orchestrator described by cfg.
func NewOrchestrator(cfg *Config, logger *slog.Logger) *validate.Orchestrator {
	return validate.New(validate.Options{
		Workers:      cfg.App.Workers,
		Discovery:    cfg.Validation.Discovery(),
		LenientJSON:  cfg.Validation.LenientJSON,
		CheckAnchors: cfg.Links.CheckAnchors,
		Logger:       logger,
	})
}

// Stack bundles the components shared by the CLI, HTTP and MCP front ends.
type Stack struct {
	Store   *storage.FS
	Orch    *validate.Orchestrator
	Counter *tokens.Counter
	// History is nil unless runs are recorded.
	History *history.DB
	Service *service.Service
}

// NewStack wires the components for cfg.Validation.Root. History is opened
// when cfg.History.Enabled is set.
func NewStack(cfg *Config, logger *slog.Logger) (*Stack, error) {
	store, err := storage.NewFS(cfg.Validation.Root)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	counter, err := tokens.NewCounter(tokens.Strategy(cfg.Tokens.Strategy))
	if err != nil {
		return nil, fmt.Errorf("init tokens: %w", err)
	}

	orch := NewOrchestrator(cfg, logger)

	s := &Stack{Store: store, Orch: orch, Counter: counter}

	opts := []service.Option{
		service.WithAnchors(cfg.Links.CheckAnchors),
		service.WithLogger(logger),
	}
	if cfg.History.Enabled {
		db, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("init history: %w", err)
		}
		s.History = db
		opts = append(opts, service.WithHistory(db))
	}

	s.Service = service.NewService(store, orch, counter, opts...)
	return s, nil
}

// Close releases the history database, if open.
func (s *Stack) Close() error {
	if s.History == nil {
		return nil
	}
	return s.History.Close()
}
