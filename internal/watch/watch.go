// Package watch re-runs validation when files under a root change.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/starford/dotlint/internal/models"
)

// DefaultDebounce is the quiet period after the last change before a run.
const DefaultDebounce = 200 * time.Millisecond

// Change kinds passed to OnChange.
const (
	Created = "created"
	Updated = "updated"
	Deleted = "deleted"
	Renamed = "renamed"
)

// RunFunc performs one validation run.
type RunFunc func(ctx context.Context) (*models.Report, error)

// Options configures a Watcher.
type Options struct {
	// ExcludeDirs are directory names that are never watched.
	ExcludeDirs []string
	// Exclude holds doublestar globs matched against root-relative paths,
	// the same patterns discovery skips.
	Exclude  []string
	Debounce time.Duration
	Logger   *slog.Logger
	// OnChange is called for every relevant file event (optional).
	OnChange func(kind, rel string)
	// OnReport receives the outcome of every run, including the initial one.
	OnReport func(rep *models.Report, err error)
}

// Watcher drives debounced re-validation from fsnotify events.
type Watcher struct {
	root string
	opts Options
	log  *slog.Logger
}

// New creates a Watcher for root.
func New(root string, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{root: root, opts: opts, log: log}
}

// Run validates once, then watches the tree and validates again after each
// burst of relevant changes, until ctx is cancelled.
//
// New directories created at runtime are added to the watch list.
func (w *Watcher) Run(ctx context.Context, run RunFunc) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := w.addDirsRecursive(fw, w.root); err != nil {
		return err
	}
	w.log.Info("watcher: started", slog.String("root", w.root))

	w.validate(ctx, run)

	var timer *time.Timer
	var timerCh <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(w.opts.Debounce)
			timerCh = timer.C
		} else {
			timer.Reset(w.opts.Debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.log.Info("watcher: stopped")
			return nil

		case <-timerCh:
			w.validate(ctx, run)

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.handle(fw, ev) {
				schedule()
			}

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func (w *Watcher) validate(ctx context.Context, run RunFunc) {
	rep, err := run(ctx)
	if err != nil {
		w.log.Warn("watcher: validation failed", slog.String("error", err.Error()))
	} else {
		w.log.Debug("watcher: validated",
			slog.Int("errors", rep.Errors),
			slog.Int("warnings", rep.Warnings))
	}
	if w.opts.OnReport != nil {
		w.opts.OnReport(rep, err)
	}
}

// handle processes one event and reports whether it warrants a new run.
func (w *Watcher) handle(fw *fsnotify.Watcher, ev fsnotify.Event) bool {
	abs := ev.Name
	rel, err := filepath.Rel(w.root, abs)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if w.excluded(rel) {
		return false
	}

	if ev.Op&fsnotify.Create != 0 {
		if info, statErr := os.Stat(abs); statErr == nil && info.IsDir() {
			if addErr := w.addDirsRecursive(fw, abs); addErr != nil {
				w.log.Warn("watcher: add new dir failed",
					slog.String("path", abs),
					slog.String("error", addErr.Error()))
			} else {
				w.log.Debug("watcher: watching new dir", slog.String("path", abs))
			}
			return true
		}
	}

	relevant := strings.HasSuffix(abs, ".md") || strings.HasSuffix(abs, ".json")
	var kind string
	switch {
	case ev.Op&fsnotify.Create != 0:
		kind = Created
	case ev.Op&fsnotify.Write != 0:
		kind = Updated
	case ev.Op&fsnotify.Remove != 0:
		kind = Deleted
	case ev.Op&fsnotify.Rename != 0:
		// fsnotify reports the old path only; a removed directory also
		// invalidates everything below it.
		kind = Renamed
		relevant = true
	default:
		return false
	}
	if kind == Deleted {
		relevant = true
	}
	if !relevant {
		return false
	}

	w.log.Debug("watcher: change", slog.String("path", rel), slog.String("op", kind))
	if w.opts.OnChange != nil {
		w.opts.OnChange(kind, rel)
	}
	return true
}

func (w *Watcher) excluded(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if slices.Contains(w.opts.ExcludeDirs, seg) {
			return true
		}
	}
	return w.globExcluded(rel)
}

// globExcluded also matches rel's parent directories so that "vendor/**"
// covers events deep inside vendor.
func (w *Watcher) globExcluded(rel string) bool {
	for p := rel; p != "." && p != ""; p = path.Dir(p) {
		for _, g := range w.opts.Exclude {
			if ok, _ := doublestar.Match(g, p); ok {
				return true
			}
		}
	}
	return false
}

// addDirsRecursive adds root and all its non-excluded subdirectories.
func (w *Watcher) addDirsRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root {
			if slices.Contains(w.opts.ExcludeDirs, d.Name()) {
				return fs.SkipDir
			}
			if rel, relErr := filepath.Rel(w.root, p); relErr == nil && w.globExcluded(filepath.ToSlash(rel)) {
				return fs.SkipDir
			}
		}
		return fw.Add(p)
	})
}
