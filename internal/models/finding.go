// Package models defines the domain types shared by the dotlint validators.
package models

import "time"

// ArtifactKind names the category of a validated file.
type ArtifactKind string

// Artifact kinds, in the order the orchestrator runs them.
const (
	KindJSON    ArtifactKind = "json"
	KindSkill   ArtifactKind = "skill"
	KindRule    ArtifactKind = "rule"
	KindAgent   ArtifactKind = "agent"
	KindCommand ArtifactKind = "command"
	KindLinks   ArtifactKind = "links"
	KindUnknown ArtifactKind = "unknown"
)

// Severity is the kind of a single finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one validation outcome.
type Finding struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// ErrorFinding returns an error-severity finding.
func ErrorFinding(msg string) Finding {
	return Finding{Severity: SeverityError, Message: msg}
}

// WarningFinding returns a warning-severity finding.
func WarningFinding(msg string) Finding {
	return Finding{Severity: SeverityWarning, Message: msg}
}

// Result is the outcome of validating one file with one validator.
// ReadError is set when the file could not be read; Findings is then empty.
type Result struct {
	Path      string       `json:"path"`
	RelPath   string       `json:"rel_path"`
	Kind      ArtifactKind `json:"kind"`
	Checksum  string       `json:"checksum,omitempty"`
	ReadError string       `json:"read_error,omitempty"`
	Findings  []Finding    `json:"findings"`
	Skipped   bool         `json:"skipped,omitempty"`
}

// Valid reports whether the file produced no read error and no findings.
func (r Result) Valid() bool {
	return r.ReadError == "" && len(r.Findings) == 0
}

// Errors returns the number of errors the result contributes to a report.
func (r Result) Errors() int {
	if r.ReadError != "" {
		return 1
	}
	n := 0
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Warnings returns the number of warning findings.
func (r Result) Warnings() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

// Messages returns the read error or the finding messages in order.
func (r Result) Messages() []string {
	if r.ReadError != "" {
		return []string{r.ReadError}
	}
	out := make([]string, len(r.Findings))
	for i, f := range r.Findings {
		out[i] = f.Message
	}
	return out
}

// Mode is how the orchestrator interpreted its target.
type Mode string

const (
	ModeDirectory Mode = "directory"
	ModeFile      Mode = "file"
)

// Report aggregates every result of one validation run.
type Report struct {
	ID           string    `json:"id,omitempty"`
	Root         string    `json:"root"`
	Mode         Mode      `json:"mode"`
	StartedAt    time.Time `json:"started_at"`
	FilesChecked int       `json:"files_checked"`
	Errors       int       `json:"errors"`
	Warnings     int       `json:"warnings"`
	Results      []Result  `json:"results"`
}

// Add folds r into the report counters. counted controls whether the file
// contributes to FilesChecked; link results never do.
func (rep *Report) Add(r Result, counted bool) {
	if counted {
		rep.FilesChecked++
	}
	rep.Errors += r.Errors()
	rep.Warnings += r.Warnings()
	rep.Results = append(rep.Results, r)
}

// Failed reports whether the run must exit with a failure status.
// Warnings never fail a run.
func (rep *Report) Failed() bool {
	return rep.Errors > 0
}
