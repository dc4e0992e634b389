package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/dotlint/internal/testutil"
)

var fixture = map[string]string{
	"README.md":      "# Repo\n\n[Guide](./missing.md)\n",
	"settings.json":  `{"ok": true}`,
	"rules/hello.md": "hello",
	"CLAUDE.md":      "# Project\n\nUse Go.\n",
}

// run executes the CLI with args and returns stdout, stderr and the error.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run(context.Background(), append([]string{"dotlint"}, args...))
	return stdout.String(), stderr.String(), err
}

// configFile writes a config that keeps history inside the test's temp dir.
func configFile(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	db := filepath.Join(dir, "history.db")
	cfg := filepath.Join(dir, "dotlint.yaml")
	data := "history:\n  path: " + db + "\n"
	if err := os.WriteFile(cfg, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfg, db
}

func TestValidate_FailsOnErrors(t *testing.T) {
	root := testutil.WriteTree(t, fixture)
	cfg, _ := configFile(t)

	out, _, err := run(t, "--config", cfg, "validate", "--no-color", root)
	if !errors.Is(err, errFailed) {
		t.Fatalf("err = %v, want errFailed", err)
	}
	for _, want := range []string{
		"dotlint validator",
		"→ Validating directory: " + root,
		"✗ rules/hello.md",
		"! README.md",
		"    Broken link: [Guide](./missing.md)",
		"  Files checked: 2",
		"  Errors: 2",
		"  Warnings: 1",
		"Validation failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestValidate_PassingFile(t *testing.T) {
	root := testutil.WriteTree(t, fixture)
	cfg, _ := configFile(t)

	out, _, err := run(t, "--config", cfg, "validate", "--no-color", filepath.Join(root, "settings.json"))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "Validation passed") {
		t.Errorf("output:\n%s", out)
	}
}

func TestValidate_PathNotFound(t *testing.T) {
	cfg, _ := configFile(t)
	missing := filepath.Join(t.TempDir(), "nope")

	out, _, err := run(t, "--config", cfg, "validate", "--no-color", missing)
	if !errors.Is(err, errFailed) {
		t.Fatalf("err = %v, want errFailed", err)
	}
	if !strings.Contains(out, "✗ Path not found: "+missing) {
		t.Errorf("output:\n%s", out)
	}
}

func TestValidate_JSONOutAndHistory(t *testing.T) {
	root := testutil.WriteTree(t, fixture)
	cfg, db := configFile(t)
	jsonOut := filepath.Join(t.TempDir(), "report.json")

	_, _, err := run(t, "--config", cfg, "validate", "--no-color", "--record", "--json-out", jsonOut, root)
	if !errors.Is(err, errFailed) {
		t.Fatalf("err = %v, want errFailed", err)
	}
	data, err := os.ReadFile(jsonOut)
	if err != nil {
		t.Fatalf("json report: %v", err)
	}
	if !strings.Contains(string(data), `"files_checked": 2`) {
		t.Errorf("json report:\n%s", data)
	}
	if _, err := os.Stat(db); err != nil {
		t.Fatalf("history db: %v", err)
	}

	out, _, err := run(t, "--config", cfg, "history", "--no-color")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, root) || !strings.Contains(out, "errors=2 warnings=1") {
		t.Errorf("history output:\n%s", out)
	}
}

func TestHistory_NoDatabase(t *testing.T) {
	cfg, db := configFile(t)
	out, _, err := run(t, "--config", cfg, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if out != "No runs recorded in "+db+"\n" {
		t.Errorf("output = %q", out)
	}
}

func TestProtect(t *testing.T) {
	tests := []struct {
		path    string
		blocked bool
		reason  string
	}{
		{"config/.env", true, "BLOCKED: File matches protected pattern '.env'\nFile: config/.env\n"},
		{"/home/u/.ssh/known_hosts", true, "BLOCKED: Directory '.ssh' is protected\nFile: /home/u/.ssh/known_hosts\n"},
		{"src/main.go", false, ""},
		{"$CLAUDE_FILE_PATH", false, ""},
		{"", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			args := []string{"protect"}
			if tt.path != "" {
				args = append(args, tt.path)
			}
			_, stderr, err := run(t, args...)
			if tt.blocked != errors.Is(err, errFailed) {
				t.Fatalf("err = %v, want blocked=%v", err, tt.blocked)
			}
			if stderr != tt.reason {
				t.Errorf("stderr = %q, want %q", stderr, tt.reason)
			}
		})
	}
}

func TestTokens(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"CLAUDE.md":                "# Project\n\nUse Go.\n",
		"claude-md/minimal.md":     "# Minimal\n",
		"node_modules/x/CLAUDE.md": "# Ignored\n",
	})
	cfg, _ := configFile(t)

	out, _, err := run(t, "--config", cfg, "tokens", "--no-color", "--strategy", "estimate", root)
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	for _, want := range []string{
		"Found 2 file(s)",
		"  CLAUDE.md\n",
		"  claude-md/minimal.md\n",
		"Lines:  2 (target: 80, max: 150)",
		"All files within budget",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "node_modules") {
		t.Errorf("excluded directory measured:\n%s", out)
	}
}

func TestTokens_OverBudget(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"CLAUDE.md": strings.Repeat("line\n", 151),
	})
	cfg, _ := configFile(t)

	out, _, err := run(t, "--config", cfg, "tokens", "--no-color", "--strategy", "estimate", root)
	if !errors.Is(err, errFailed) {
		t.Fatalf("err = %v, want errFailed", err)
	}
	if !strings.Contains(out, "Exceeds maximum line count!") {
		t.Errorf("output:\n%s", out)
	}
}
