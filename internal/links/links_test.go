package links

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/dotlint/internal/models"
	"github.com/starford/dotlint/internal/testutil"
)

func messages(fs []models.Finding) []string {
	var out []string
	for _, f := range fs {
		out = append(out, f.Message)
	}
	return out
}

func TestCheck_BrokenRelativeLink(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"docs/guide.md": "See [Guide](./missing.md) and [Other](other.md).\n",
		"docs/other.md": "# Other\n",
	})
	c := NewChecker(root, false, nil)

	res := c.Check(filepath.Join(root, "docs", "guide.md"))
	want := []string{"Broken link: [Guide](./missing.md)"}
	if diff := cmp.Diff(want, messages(res.Findings)); diff != "" {
		t.Errorf("findings mismatch (-want +got):\n%s", diff)
	}
	if res.Findings[0].Severity != models.SeverityWarning {
		t.Errorf("severity = %q, want warning", res.Findings[0].Severity)
	}
	if res.Kind != models.KindLinks {
		t.Errorf("kind = %q, want links", res.Kind)
	}
}

func TestCheck_SkippedTargets(t *testing.T) {
	content := strings.Join([]string{
		"[Issue](../../issues/1)",
		"[Site](https://example.com/x.md)",
		"[Plain](http://example.com)",
		"[Mail](mailto:a@b.c)",
		"[Top](#top)",
		"[Here](url)",
		"[Ref](link)",
		"[Shield](badge)",
	}, "\n")
	root := testutil.WriteTree(t, map[string]string{"README.md": content})
	c := NewChecker(root, false, nil)

	if fs := c.Check(filepath.Join(root, "README.md")).Findings; len(fs) != 0 {
		t.Errorf("expected no findings, got %v", messages(fs))
	}
}

func TestCheck_IgnoresCodeFences(t *testing.T) {
	content := "Intro\n\n```md\n[Example](./nowhere.md)\n```\n\n[Real](./gone.md)\n"
	root := testutil.WriteTree(t, map[string]string{"README.md": content})
	c := NewChecker(root, false, nil)

	got := messages(c.Check(filepath.Join(root, "README.md")).Findings)
	want := []string{"Broken link: [Real](./gone.md)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("findings mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck_RootRelative(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"docs/deep/page.md": "[Top](/README.md) [Lost](/nope.md)",
		"README.md":         "# Root\n",
	})
	c := NewChecker(root, false, nil)

	got := messages(c.Check(filepath.Join(root, "docs", "deep", "page.md")).Findings)
	want := []string{"Broken link: [Lost](/nope.md)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("findings mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck_DotDotThroughMissingDirIsBroken(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"docs/page.md": "[Gone](gone/../a.md) [Here](sub/../a.md)",
		"docs/a.md":    "# A\n",
		"docs/sub/x":   "",
	})
	c := NewChecker(root, false, nil)

	got := messages(c.Check(filepath.Join(root, "docs", "page.md")).Findings)
	want := []string{"Broken link: [Gone](gone/../a.md)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("findings mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck_AnchorStrippedBeforeExistence(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"a.md": "[B](b.md#usage)",
		"b.md": "# B\n",
	})
	c := NewChecker(root, false, nil)

	if fs := c.Check(filepath.Join(root, "a.md")).Findings; len(fs) != 0 {
		t.Errorf("expected no findings with anchors unchecked, got %v", messages(fs))
	}
}

func TestCheck_ExemptNames(t *testing.T) {
	for _, name := range []string{"TEMPLATE.md", "SKILL_TEMPLATE.md", "API_SPEC.md"} {
		root := testutil.WriteTree(t, map[string]string{name: "[x](./missing.md)"})
		res := NewChecker(root, false, nil).Check(filepath.Join(root, name))
		if !res.Skipped || len(res.Findings) != 0 {
			t.Errorf("%s: skipped=%v findings=%v, want skipped with none", name, res.Skipped, messages(res.Findings))
		}
	}
}

func TestCheck_UnreadableFile(t *testing.T) {
	root := t.TempDir()
	res := NewChecker(root, false, nil).Check(filepath.Join(root, "absent.md"))
	if len(res.Findings) != 0 || res.ReadError != "" {
		t.Errorf("unreadable file: findings=%v readErr=%q, want none", res.Findings, res.ReadError)
	}
}

func TestCheck_Anchors(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"a.md": "[Ok](b.md#getting-started) [Bad](b.md#missing-section) [Case](b.md#Getting-Started)",
		"b.md": "# Guide\n\n## Getting Started\n\ntext\n",
	})
	c := NewChecker(root, true, nil)

	got := messages(c.Check(filepath.Join(root, "a.md")).Findings)
	want := []string{"Broken anchor: [Bad](b.md#missing-section)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("findings mismatch (-want +got):\n%s", diff)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		target string
		want   models.LinkClass
	}{
		{"https://x.dev", models.LinkExternal},
		{"mailto:me@x.dev", models.LinkExternal},
		{"#intro", models.LinkAnchor},
		{"../../pulls", models.LinkHostRelative},
		{"badge", models.LinkPlaceholder},
		{"../sibling.md", models.LinkInternal},
		{"docs/a.md", models.LinkInternal},
	}
	for _, tt := range tests {
		if got := Classify(tt.target); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.target, got, tt.want)
		}
	}
}

func TestExtract_Order(t *testing.T) {
	got := Extract("[a](1.md) text [b](2.md)")
	want := []models.Link{
		{Text: "a", Target: "1.md", Class: models.LinkInternal},
		{Text: "b", Target: "2.md", Class: models.LinkInternal},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Extract mismatch (-want +got):\n%s", diff)
	}
}
