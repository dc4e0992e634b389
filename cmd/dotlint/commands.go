package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/dotlint/internal"
	"github.com/starford/dotlint/internal/apperr"
	"github.com/starford/dotlint/internal/history"
	"github.com/starford/dotlint/internal/mcpserver"
	"github.com/starford/dotlint/internal/models"
	"github.com/starford/dotlint/internal/protect"
	"github.com/starford/dotlint/internal/report"
	"github.com/starford/dotlint/internal/storage"
	"github.com/starford/dotlint/internal/tokens"
	"github.com/starford/dotlint/internal/watch"
)

func noColorFlag() cli.Flag {
	return &cli.BoolFlag{Name: "no-color", Usage: "Disable coloured output"}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate a repository directory or a single file",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			noColorFlag(),
			&cli.StringFlag{Name: "json-out", Usage: "Also write the report as JSON to this file", TakesFile: true},
			&cli.BoolFlag{Name: "record", Usage: "Store the run in the history database"},
		},
		Action: runValidate,
	}
}

func runValidate(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Bool("record") {
		cfg.History.Enabled = true
	}
	logger := stderrLogger(cmd, cfg)

	p := report.NewPrinter(cmd.Root().Writer, cmd.Bool("no-color"))
	p.Header()

	target := cfg.Validation.Root
	rep, err := internal.NewOrchestrator(cfg, logger).Run(ctx, target)
	if errors.Is(err, apperr.ErrPathNotFound) {
		p.PathNotFound(target)
		return errFailed
	}
	if err != nil {
		return err
	}
	p.Report(rep)

	if out := cmd.String("json-out"); out != "" {
		if err := report.WriteJSON(out, rep); err != nil {
			return err
		}
	}
	if cfg.History.Enabled {
		if err := record(cfg.History.Path, rep); err != nil {
			return err
		}
	}

	if rep.Failed() {
		return errFailed
	}
	return nil
}

func record(path string, rep *models.Report) error {
	db, err := history.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.SaveRun(rep)
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Validate a directory and re-validate on every change",
		ArgsUsage: "[path]",
		Flags:     []cli.Flag{noColorFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := stderrLogger(cmd, cfg)

			root := cfg.Validation.Root
			if fi, err := os.Stat(root); err != nil || !fi.IsDir() {
				report.NewPrinter(cmd.Root().Writer, cmd.Bool("no-color")).PathNotFound(root)
				return errFailed
			}

			orch := internal.NewOrchestrator(cfg, logger)
			p := report.NewPrinter(cmd.Root().Writer, cmd.Bool("no-color"))
			w := watch.New(root, watch.Options{
				ExcludeDirs: cfg.Validation.ExcludeDirs,
				Exclude:     cfg.Validation.Exclude,
				Logger:      logger,
				OnChange: func(kind, rel string) {
					p.Info(fmt.Sprintf("%s: %s", kind, rel))
				},
				OnReport: func(rep *models.Report, err error) {
					if err != nil {
						p.Fail(err.Error())
						return
					}
					p.Header()
					p.Report(rep)
					fmt.Fprintln(cmd.Root().Writer)
				},
			})
			return w.Run(ctx, func(ctx context.Context) (*models.Report, error) {
				return orch.Run(ctx, root)
			})
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:      "serve",
		Usage:     "Watch the repository and serve the HTTP API with live events",
		ArgsUsage: "[path]",
		Action:    runServe,
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:      "mcp",
		Usage:     "Serve dotlint tools over MCP on stdin/stdout",
		ArgsUsage: "[path]",
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			stack, err := internal.NewStack(cfg, stderrLogger(cmd, cfg))
			if err != nil {
				return err
			}
			defer stack.Close()
			return mcpserver.New(stack.Service, version).ServeStdio()
		},
	}
}

func tokensCommand() *cli.Command {
	return &cli.Command{
		Name:      "tokens",
		Usage:     "Measure CLAUDE.md, SKILL.md and claude-md/ files against their token budgets",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			noColorFlag(),
			&cli.StringFlag{Name: "strategy", Usage: "Counting strategy: auto, exact or estimate"},
		},
		Action: runTokens,
	}
}

func runTokens(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	strategy := cfg.Tokens.Strategy
	if s := cmd.String("strategy"); s != "" {
		strategy = s
	}
	counter, err := tokens.NewCounter(tokens.Strategy(strategy))
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	p := report.NewPrinter(out, cmd.Bool("no-color"))
	p.TokenHeader()

	target := cfg.Validation.Root
	files, base, err := tokenFiles(target, cfg.Validation.ExcludeDirs)
	if errors.Is(err, apperr.ErrPathNotFound) {
		p.PathNotFound(target)
		return errFailed
	}
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(out, "No CLAUDE.md or SKILL.md files found in %s\n", target)
		return nil
	}
	fmt.Fprintf(out, "Found %d file(s)\n\n", len(files))

	var over, total int
	for _, rel := range files {
		a, err := counter.Analyze(base(rel))
		if err != nil {
			p.AnalysisError(rel, err)
			fmt.Fprintln(out)
			continue
		}
		a.Path = rel
		p.Analysis(a)
		fmt.Fprintln(out)
		total += a.Tokens
		if a.OverBudget() {
			over++
		}
	}
	p.TokenSummary(len(files), over, total)

	if over > 0 {
		return errFailed
	}
	return nil
}

// tokenFiles lists the files to measure under target, or target itself when
// it is a Markdown file. base maps a listed path back to a readable one.
func tokenFiles(target string, excludeDirs []string) ([]string, func(string) string, error) {
	fi, err := os.Stat(target)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", target, apperr.ErrPathNotFound)
	}
	if !fi.IsDir() {
		identity := func(p string) string { return p }
		if !strings.HasSuffix(target, ".md") {
			return nil, identity, nil
		}
		return []string{target}, identity, nil
	}
	store, err := storage.NewFS(target)
	if err != nil {
		return nil, nil, err
	}
	files, err := tokens.Find(store, excludeDirs)
	if err != nil {
		return nil, nil, err
	}
	return files, func(rel string) string {
		abs, _ := store.Resolve(rel)
		return abs
	}, nil
}

// unexpandedHookPath is what a hook receives when the variable is unset.
const unexpandedHookPath = "$CLAUDE_FILE_PATH"

func protectCommand() *cli.Command {
	return &cli.Command{
		Name:      "protect",
		Usage:     "Exit 1 when a path is a sensitive file that must not be edited",
		ArgsUsage: "<path>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" || path == unexpandedHookPath {
				return nil
			}
			ok, reason := protect.IsProtected(path)
			if !ok {
				return nil
			}
			writeBlocked(cmd.Root().ErrWriter, path, reason)
			return errFailed
		},
	}
}

func writeBlocked(w io.Writer, path, reason string) {
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "BLOCKED: %s\n", reason)
	fmt.Fprintf(w, "File: %s\n", path)
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded validation runs, newest first",
		Flags: []cli.Flag{
			noColorFlag(),
			&cli.IntFlag{Name: "limit", Usage: "Maximum number of runs", Value: history.DefaultListLimit},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out := cmd.Root().Writer
			if _, err := os.Stat(cfg.History.Path); errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(out, "No runs recorded in %s\n", cfg.History.Path)
				return nil
			}
			db, err := history.Open(cfg.History.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := db.ListRuns(int(cmd.Int("limit")))
			if err != nil {
				return err
			}
			p := report.NewPrinter(out, cmd.Bool("no-color"))
			for _, r := range runs {
				line := fmt.Sprintf("%s  %s  %s  files=%d errors=%d warnings=%d",
					r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.ID, r.Root,
					r.FilesChecked, r.Errors, r.Warnings)
				if r.Errors > 0 {
					p.Fail(line)
				} else {
					p.Success(line)
				}
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
			}
			return nil
		},
	}
}
