package schema

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/dotlint/internal/models"
)

var longBody = strings.Repeat("This skill body explains the workflow in detail. ", 4)

func skillDoc(fm string, body string) Document {
	return Document{Path: "skills/x/SKILL.md", Name: "SKILL.md", Content: "---\n" + fm + "\n---\n" + body}
}

func messages(fs []models.Finding) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Message
	}
	return out
}

func TestSkill_Valid(t *testing.T) {
	doc := skillDoc("name: my-skill-2\ndescription: Does a thing", longBody)
	if got := (Skill{}).Validate(doc); len(got) != 0 {
		t.Errorf("findings = %v, want none", messages(got))
	}
}

func TestSkill_MissingFrontmatterShortCircuits(t *testing.T) {
	doc := Document{Name: "SKILL.md", Content: "# No header\n" + longBody}
	got := messages((Skill{}).Validate(doc))
	want := []string{"Missing YAML frontmatter (file should start with ---)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("findings mismatch (-want +got):\n%s", diff)
	}
}

func TestSkill_MissingClosingDelimiter(t *testing.T) {
	doc := Document{Name: "SKILL.md", Content: "---\nname: x\n" + longBody}
	got := messages((Skill{}).Validate(doc))
	want := []string{"Missing closing --- for frontmatter"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("findings mismatch (-want +got):\n%s", diff)
	}
}

func TestSkill_NameLengthBoundary(t *testing.T) {
	ok := strings.Repeat("a", 64)
	if got := (Skill{}).Validate(skillDoc("name: "+ok+"\ndescription: d", longBody)); len(got) != 0 {
		t.Errorf("64 chars: findings = %v, want none", messages(got))
	}

	tooLong := strings.Repeat("a", 65)
	got := messages((Skill{}).Validate(skillDoc("name: "+tooLong+"\ndescription: d", longBody)))
	want := []string{"name exceeds 64 characters: 65"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("65 chars mismatch (-want +got):\n%s", diff)
	}
}

func TestSkill_NamePattern(t *testing.T) {
	cases := []struct {
		name  string
		valid bool
	}{
		{"my-skill-2", true},
		{"a", true},
		{"My-Skill", false},
		{"2fast", false},
		{"-lead", false},
		{"under_score", false},
		{"", false},
	}
	for _, tc := range cases {
		got := (Skill{}).Validate(skillDoc("name: "+tc.name+"\ndescription: d", longBody))
		if tc.valid && len(got) != 0 {
			t.Errorf("name %q: findings = %v, want none", tc.name, messages(got))
		}
		if !tc.valid {
			want := []string{"name must be lowercase with hyphens: " + tc.name}
			if diff := cmp.Diff(want, messages(got)); diff != "" {
				t.Errorf("name %q mismatch (-want +got):\n%s", tc.name, diff)
			}
		}
	}
}

func TestSkill_DescriptionTooLong(t *testing.T) {
	desc := strings.Repeat("d", 1025)
	got := messages((Skill{}).Validate(skillDoc("name: ok\ndescription: "+desc, longBody)))
	want := []string{"description exceeds 1024 characters: 1025"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSkill_DescriptionCountsCharactersNotBytes(t *testing.T) {
	desc := strings.Repeat("é", 1024)
	if got := (Skill{}).Validate(skillDoc("name: ok\ndescription: "+desc, longBody)); len(got) != 0 {
		t.Errorf("findings = %v, want none", messages(got))
	}
}

func TestSkill_BlockScalarDescription(t *testing.T) {
	doc := skillDoc("name: ok\ndescription: |\n  line one\n  line two", longBody)
	if got := (Skill{}).Validate(doc); len(got) != 0 {
		t.Errorf("findings = %v, want none", messages(got))
	}
}

func TestSkill_AccumulatesFindings(t *testing.T) {
	got := messages((Skill{}).Validate(skillDoc("title: nope", "short")))
	want := []string{
		"Missing required field: name",
		"Missing required field: description",
		"SKILL.md body seems too short (< 100 chars)",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestAgent_Rules(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "valid",
			content: "---\nname: reviewer\ndescription: Reviews code\n---\n" + longBody,
		},
		{
			name:    "no frontmatter",
			content: "# Reviewer\n" + longBody,
			want:    []string{"Agent file should have YAML frontmatter (---)"},
		},
		{
			name:    "unclosed",
			content: "---\nname: reviewer\n",
			want:    []string{"Missing closing --- for frontmatter"},
		},
		{
			name:    "missing fields and short body",
			content: "---\nmodel: x\n---\nshort",
			want: []string{
				"Missing required field: name",
				"Missing required field: description",
				"Agent body seems too short (< 100 chars)",
			},
		},
		{
			name:    "name rules not applied",
			content: "---\nname: Not A Slug\ndescription: fine\n---\n" + longBody,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := messages((Agent{}).Validate(Document{Name: "reviewer.md", Content: tc.content}))
			if len(got) == 0 {
				got = nil
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRule_HelloFailsBoth(t *testing.T) {
	got := messages((Rule{}).Validate(Document{Name: "style.md", Content: "hello"}))
	want := []string{
		"Rule file should have a top-level heading (# Title)",
		"Rule file seems too short (< 200 chars)",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRule_HeadingAnywhere(t *testing.T) {
	content := "Intro line\n\n# Style Rules\n" + strings.Repeat("x", 200)
	if got := (Rule{}).Validate(Document{Name: "style.md", Content: content}); len(got) != 0 {
		t.Errorf("findings = %v, want none", messages(got))
	}
}

func TestRule_SecondLevelHeadingNotEnough(t *testing.T) {
	content := "## Sub only\n" + strings.Repeat("x", 200)
	got := messages((Rule{}).Validate(Document{Name: "style.md", Content: content}))
	want := []string{"Rule file should have a top-level heading (# Title)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCommand_Rules(t *testing.T) {
	ok := "# Deploy\n" + strings.Repeat("y", 100)
	if got := (Command{}).Validate(Document{Name: "deploy.md", Content: ok}); len(got) != 0 {
		t.Errorf("findings = %v, want none", messages(got))
	}
	got := messages((Command{}).Validate(Document{Name: "deploy.md", Content: "   \n"}))
	want := []string{
		"Command file should have a top-level heading",
		"Command file seems too short (< 100 chars)",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_ReadmeExemptForAgentAndRule(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "README.md")
	if err := os.WriteFile(p, []byte("tiny"), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, v := range []Validator{Agent{}, Rule{}} {
		res := Run(v, p)
		if !res.Skipped || !res.Valid() {
			t.Errorf("%s: README should be exempt, got %+v", v.Kind(), res)
		}
	}
	if res := Run(Command{}, p); res.Valid() {
		t.Error("command README should still be validated")
	}
}

func TestRun_CRLFCountsLikeLF(t *testing.T) {
	p := filepath.Join(t.TempDir(), "style.md")
	content := "# Title" + strings.Repeat("\r\nxxxxxxxxx", 19)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, _, err := Read(p)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if strings.Contains(doc.Content, "\r") {
		t.Errorf("content still holds carriage returns: %q", doc.Content)
	}
	got := messages(Run(Rule{}, p).Findings)
	want := []string{"Rule file seems too short (< 200 chars)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_ReadError(t *testing.T) {
	res := Run(Skill{}, filepath.Join(t.TempDir(), "missing", "SKILL.md"))
	if res.ReadError == "" {
		t.Fatal("expected read error")
	}
	if !strings.HasPrefix(res.ReadError, "Cannot read file: ") {
		t.Errorf("read error = %q", res.ReadError)
	}
	if res.Errors() != 1 {
		t.Errorf("errors = %d, want 1", res.Errors())
	}
}

func TestRun_InvalidUTF8(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.md")
	if err := os.WriteFile(p, []byte{0xff, 0xfe, '#'}, 0o644); err != nil {
		t.Fatal(err)
	}
	if res := Run(Rule{}, p); res.ReadError == "" {
		t.Error("expected read error for undecodable content")
	}
}

func TestForKind(t *testing.T) {
	for _, k := range []models.ArtifactKind{models.KindSkill, models.KindAgent, models.KindRule, models.KindCommand} {
		v := ForKind(k)
		if v == nil || v.Kind() != k {
			t.Errorf("ForKind(%s) = %v", k, v)
		}
	}
	if ForKind(models.KindJSON) != nil {
		t.Error("json is not a schema kind")
	}
}
