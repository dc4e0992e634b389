package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/starford/dotlint/internal"
	pkgconfig "github.com/starford/dotlint/pkg/config"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// envPrefix prefixes every configuration override variable.
const envPrefix = "DOTLINT"

// errFailed signals exit status 1 after the command has already reported why.
var errFailed = errors.New("failed")

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "dotlint",
		Usage:   "Validate Claude configuration repositories: JSON, skills, agents, rules, commands and links",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (optional)",
				DefaultText: ".dotlint.yaml",
				Value:       ".dotlint.yaml",
				Sources:     cli.EnvVars("DOTLINT_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			validateCommand(),
			watchCommand(),
			serveCommand(),
			mcpCommand(),
			tokensCommand(),
			protectCommand(),
			historyCommand(),
		},
	}
}

// loadConfig reads the optional config file, applies DOTLINT_* overrides and
// takes the root from the first argument when one is given.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if arg := cmd.Args().First(); arg != "" {
		cfg.Validation.Root = arg
	}
	return cfg, nil
}

// stderrLogger keeps stdout free for reports.
func stderrLogger(cmd *cli.Command, cfg *internal.Config) *slog.Logger {
	w := cmd.Root().ErrWriter
	if w == nil {
		w = os.Stderr
	}
	return internal.NewLogger(w, cfg.App.LogLevel)
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithLogger(stderrLogger(cmd, cfg))); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}
