package validate

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/dotlint/internal/apperr"
	"github.com/starford/dotlint/internal/discovery"
	"github.com/starford/dotlint/internal/models"
	"github.com/starford/dotlint/internal/testutil"
)

var longBody = strings.Repeat("This body explains how the artifact is meant to be used. ", 4)

func validSkill(name string) string {
	return "---\nname: " + name + "\ndescription: Reviews code.\n---\n\n# Skill\n\n" + longBody
}

func fixtureRepo(t *testing.T) string {
	t.Helper()
	return testutil.WriteTree(t, map[string]string{
		"README.md":              "# Repo\n\nSee [Guide](./missing.md) and [Issue](../../issues/1).\n",
		"settings.json":          `{"a": 1}`,
		"broken.json":            "{\n  \"a\": 1,\n}",
		"skills/review/SKILL.md": validSkill("review"),
		"skills/bad/SKILL.md":    validSkill("Bad_Name"),
		"rules/hello.md":         "hello",
		"rules/README.md":        "readme",
		"agents/planner.md":      "---\nname: planner\ndescription: Plans.\n---\n\n" + longBody,
		"commands/ship.md":       "# Ship\n\n" + longBody,
		"node_modules/x/a.json":  "{oops",
	})
}

func newOrchestrator(workers int) *Orchestrator {
	return New(Options{Workers: workers, Discovery: discovery.DefaultOptions()})
}

func TestRunDirectory_Counts(t *testing.T) {
	root := fixtureRepo(t)
	rep, err := newOrchestrator(1).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// 2 JSON + 2 skills + 1 rule + 1 agent + 1 command.
	if rep.FilesChecked != 7 {
		t.Errorf("FilesChecked = %d, want 7", rep.FilesChecked)
	}
	// broken.json (1) + Bad_Name pattern (1) + hello heading and length (2).
	if rep.Errors != 4 {
		t.Errorf("Errors = %d, want 4", rep.Errors)
	}
	if rep.Warnings != 1 {
		t.Errorf("Warnings = %d, want 1", rep.Warnings)
	}
	if !rep.Failed() {
		t.Error("expected failed report")
	}
	if rep.Mode != models.ModeDirectory || rep.ID == "" {
		t.Errorf("mode = %q id = %q", rep.Mode, rep.ID)
	}
}

func TestRunDirectory_PhaseOrder(t *testing.T) {
	root := fixtureRepo(t)
	rep, err := newOrchestrator(1).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var got []string
	for _, r := range rep.Results {
		got = append(got, string(r.Kind)+":"+r.RelPath)
	}
	want := []string{
		"json:broken.json",
		"json:settings.json",
		"skill:skills/bad/SKILL.md",
		"skill:skills/review/SKILL.md",
		"rule:rules/hello.md",
		"agent:agents/planner.md",
		"command:commands/ship.md",
		"links:README.md",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result order mismatch (-want +got):\n%s", diff)
	}
}

func TestRunDirectory_RuleHelloHasTwoFindings(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{"rules/hello.md": "hello"})
	rep, err := newOrchestrator(1).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Errors != 2 || len(rep.Results) != 1 || len(rep.Results[0].Findings) != 2 {
		t.Errorf("errors = %d results = %+v, want 2 findings on one result", rep.Errors, rep.Results)
	}
}

func TestRunDirectory_BrokenLinkIsWarningOnly(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"README.md": "[Guide](./missing.md)\n[Issue](../../issues/1)\n",
	})
	rep, err := newOrchestrator(1).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Errors != 0 || rep.Warnings != 1 || rep.Failed() {
		t.Errorf("errors = %d warnings = %d failed = %v, want 0/1/false", rep.Errors, rep.Warnings, rep.Failed())
	}
	if rep.FilesChecked != 0 {
		t.Errorf("FilesChecked = %d, link checks must not count", rep.FilesChecked)
	}
}

func TestRunDirectory_Deterministic(t *testing.T) {
	root := fixtureRepo(t)
	first, err := newOrchestrator(1).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, workers := range []int{1, 4, 16} {
		rep, err := newOrchestrator(workers).Run(context.Background(), root)
		if err != nil {
			t.Fatalf("Run(workers=%d): %v", workers, err)
		}
		if rep.FilesChecked != first.FilesChecked || rep.Errors != first.Errors || rep.Warnings != first.Warnings {
			t.Errorf("workers=%d counts = %d/%d/%d, want %d/%d/%d", workers,
				rep.FilesChecked, rep.Errors, rep.Warnings,
				first.FilesChecked, first.Errors, first.Warnings)
		}
		if diff := cmp.Diff(first.Results, rep.Results); diff != "" {
			t.Errorf("workers=%d results differ (-first +got):\n%s", workers, diff)
		}
	}
}

func TestRunDirectory_LenientJSON(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		".vscode/settings.json": "{\n  // editor\n  \"a\": 1,\n}",
	})
	strict, err := newOrchestrator(1).Run(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if strict.Errors != 1 {
		t.Errorf("strict errors = %d, want 1", strict.Errors)
	}
	if got := strict.Results[0].Checksum; got == "" {
		t.Error("failed JSON check should still record a checksum")
	}

	o := New(Options{Discovery: discovery.DefaultOptions(), LenientJSON: []string{".vscode/*.json"}})
	lenient, err := o.Run(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if lenient.Errors != 0 {
		t.Errorf("lenient errors = %d, want 0", lenient.Errors)
	}
}

func TestRunDirectory_Cancelled(t *testing.T) {
	root := fixtureRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newOrchestrator(2).Run(ctx, root); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRun_PathNotFound(t *testing.T) {
	_, err := newOrchestrator(1).Run(context.Background(), filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, apperr.ErrPathNotFound) {
		t.Errorf("err = %v, want ErrPathNotFound", err)
	}
}

func TestRunFile(t *testing.T) {
	root := fixtureRepo(t)
	tests := []struct {
		rel      string
		kind     models.ArtifactKind
		errors   int
		warnings int
		skipped  bool
	}{
		{"broken.json", models.KindJSON, 1, 0, false},
		{"settings.json", models.KindJSON, 0, 0, false},
		{"skills/bad/SKILL.md", models.KindSkill, 1, 0, false},
		{"README.md", models.KindLinks, 0, 1, false},
		{"rules/hello.md", models.KindLinks, 0, 0, false},
		{"node_modules/x/a.json", models.KindJSON, 1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			path := filepath.Join(root, filepath.FromSlash(tt.rel))
			rep, err := newOrchestrator(1).Run(context.Background(), path)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if rep.Mode != models.ModeFile || rep.FilesChecked != 1 || len(rep.Results) != 1 {
				t.Fatalf("mode = %q files = %d results = %d", rep.Mode, rep.FilesChecked, len(rep.Results))
			}
			r := rep.Results[0]
			if r.Kind != tt.kind || rep.Errors != tt.errors || rep.Warnings != tt.warnings || r.Skipped != tt.skipped {
				t.Errorf("kind=%q errors=%d warnings=%d skipped=%v, want %q/%d/%d/%v",
					r.Kind, rep.Errors, rep.Warnings, r.Skipped, tt.kind, tt.errors, tt.warnings, tt.skipped)
			}
		})
	}
}

func TestRunFile_Unsupported(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{"script.sh": "echo hi"})
	rep, err := newOrchestrator(1).Run(context.Background(), filepath.Join(root, "script.sh"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	r := rep.Results[0]
	if r.Kind != models.KindUnknown || !r.Skipped || rep.FilesChecked != 1 || rep.Failed() {
		t.Errorf("result = %+v files = %d", r, rep.FilesChecked)
	}
}

func TestRepoRoot(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"README.md":         "# r",
		"docs/deep/page.md": "x",
	})
	got := RepoRoot(filepath.Join(root, "docs", "deep", "page.md"))
	if got != root {
		t.Errorf("RepoRoot = %q, want %q", got, root)
	}
}
