// Package validate orchestrates a validation run over a directory or a
// single file and aggregates the outcome into a report.
package validate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/starford/dotlint/internal/apperr"
	"github.com/starford/dotlint/internal/checksum"
	"github.com/starford/dotlint/internal/discovery"
	"github.com/starford/dotlint/internal/jsoncheck"
	"github.com/starford/dotlint/internal/links"
	"github.com/starford/dotlint/internal/models"
	"github.com/starford/dotlint/internal/schema"
	"github.com/starford/dotlint/internal/storage"
)

// Options configures an Orchestrator.
type Options struct {
	// Workers bounds per-phase concurrency; values below 1 mean 1.
	Workers   int
	Discovery discovery.Options
	// LenientJSON holds doublestar globs of root-relative JSON paths that
	// may contain comments and trailing commas.
	LenientJSON  []string
	CheckAnchors bool
	Logger       *slog.Logger
}

// Orchestrator runs every validator against a target.
type Orchestrator struct {
	opts Options
	log  *slog.Logger
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{opts: opts, log: log}
}

// Run validates target, which may be a directory or a single file.
// A missing target yields an error wrapping apperr.ErrPathNotFound; per-file
// problems are reported as findings.
func (o *Orchestrator) Run(ctx context.Context, target string) (*models.Report, error) {
	info, err := os.Stat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("validate: %s: %w", target, apperr.ErrPathNotFound)
		}
		return nil, fmt.Errorf("validate: stat: %w", err)
	}
	if info.IsDir() {
		return o.RunDirectory(ctx, target)
	}
	return o.RunFile(ctx, target)
}

func (o *Orchestrator) newReport(root string, mode models.Mode) *models.Report {
	return &models.Report{
		ID:        uuid.NewString(),
		Root:      root,
		Mode:      mode,
		StartedAt: time.Now().UTC(),
		Results:   []models.Result{},
	}
}

// RunDirectory discovers files under root and validates them phase by phase:
// JSON, skills, rules, agents, commands, then links in every Markdown file.
func (o *Orchestrator) RunDirectory(ctx context.Context, root string) (*models.Report, error) {
	store, err := storage.NewFS(root)
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	set, err := discovery.Discover(store, o.opts.Discovery)
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	o.log.Debug("validate: discovered files",
		slog.String("root", store.Root()),
		slog.Int("artifacts", set.Total()),
		slog.Int("json", len(set.JSON)),
		slog.Int("markdown", len(set.Markdown)))

	rep := o.newReport(root, models.ModeDirectory)
	checker := links.NewChecker(store.Root(), o.opts.CheckAnchors, o.log)

	phases := []struct {
		kind  models.ArtifactKind
		paths []string
	}{
		{models.KindJSON, set.JSON},
		{models.KindSkill, set.Skills},
		{models.KindRule, set.Rules},
		{models.KindAgent, set.Agents},
		{models.KindCommand, set.Commands},
	}
	for _, ph := range phases {
		results, err := o.runPhase(ctx, store, ph.paths, o.checkFor(ph.kind))
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			rep.Add(r, true)
		}
	}

	linkResults, err := o.runPhase(ctx, store, set.Markdown, func(abs, _ string) models.Result {
		return checker.Check(abs)
	})
	if err != nil {
		return nil, err
	}
	for _, r := range linkResults {
		if len(r.Findings) > 0 {
			rep.Add(r, false)
		}
	}
	return rep, nil
}

// runPhase applies check to every path on a bounded pool. Results keep the
// order of paths regardless of completion order.
func (o *Orchestrator) runPhase(ctx context.Context, store storage.Provider, paths []string, check func(abs, rel string) models.Result) ([]models.Result, error) {
	results := make([]models.Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Workers)
	for i, rel := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			abs, err := store.Resolve(rel)
			if err != nil {
				return err
			}
			r := check(abs, rel)
			r.RelPath = rel
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return results, nil
}

// checkFor returns the per-file check of a phase.
func (o *Orchestrator) checkFor(kind models.ArtifactKind) func(abs, rel string) models.Result {
	if kind == models.KindJSON {
		return o.checkJSON
	}
	v := schema.ForKind(kind)
	return func(abs, _ string) models.Result {
		return schema.Run(v, abs)
	}
}

func (o *Orchestrator) lenient(rel string) bool {
	for _, p := range o.opts.LenientJSON {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func (o *Orchestrator) checkJSON(abs, rel string) models.Result {
	res := models.Result{Path: abs, Kind: models.KindJSON}
	data, err := jsoncheck.CheckFile(abs, o.lenient(rel))
	if data != nil {
		res.Checksum = checksum.Sum(data)
	}
	var re *jsoncheck.ReadError
	switch {
	case err == nil:
	case errors.As(err, &re):
		res.ReadError = re.Error()
	default:
		res.Findings = []models.Finding{models.ErrorFinding(err.Error())}
	}
	return res
}

// RunFile validates a single file according to its type: JSON syntax for
// .json, the skill schema for SKILL.md and links for other Markdown.
// Anything else is recorded as skipped.
func (o *Orchestrator) RunFile(ctx context.Context, path string) (*models.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("validate: resolve: %w", err)
	}
	rep := o.newReport(path, models.ModeFile)
	name := filepath.Base(abs)

	var res models.Result
	switch {
	case filepath.Ext(name) == ".json":
		res = o.checkJSON(abs, filepath.ToSlash(path))
	case name == schema.SkillFileName:
		res = schema.Run(schema.ForKind(models.KindSkill), abs)
	case filepath.Ext(name) == ".md":
		root := RepoRoot(abs)
		o.log.Debug("validate: repository root", slog.String("root", root))
		res = links.NewChecker(root, o.opts.CheckAnchors, o.log).Check(abs)
	default:
		res = models.Result{Path: abs, Kind: models.KindUnknown, Skipped: true}
	}
	res.RelPath = path

	// A single file always counts, even when skipped.
	rep.Add(res, true)
	return rep, nil
}

// RepoRoot walks up from file's directory to the first directory containing
// .git or README.md. It falls back to the file's own directory.
func RepoRoot(file string) string {
	start := filepath.Dir(file)
	for dir := start; ; {
		for _, marker := range []string{".git", "README.md"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}
