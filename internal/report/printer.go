// Package report renders validation reports for people and machines.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/starford/dotlint/internal/models"
)

// Title is printed at the top of every console report.
const Title = "dotlint validator"

// Printer writes console output. Colour is dropped automatically when the
// process is not attached to a terminal.
type Printer struct {
	w io.Writer

	green, red, yellow, blue, bold *color.Color
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer, noColor bool) *Printer {
	p := &Printer{
		w:      w,
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
		yellow: color.New(color.FgYellow),
		blue:   color.New(color.FgBlue),
		bold:   color.New(color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{p.green, p.red, p.yellow, p.blue, p.bold} {
			c.DisableColor()
		}
	}
	return p
}

// Header prints the title block.
func (p *Printer) Header() {
	fmt.Fprintf(p.w, "%s\n\n", p.bold.Sprint(Title))
}

// Success prints a green check line.
func (p *Printer) Success(msg string) {
	fmt.Fprintf(p.w, "%s %s\n", p.green.Sprint("✓"), msg)
}

// Fail prints a red cross line.
func (p *Printer) Fail(msg string) {
	fmt.Fprintf(p.w, "%s %s\n", p.red.Sprint("✗"), msg)
}

// Warn prints a yellow bang line.
func (p *Printer) Warn(msg string) {
	fmt.Fprintf(p.w, "%s %s\n", p.yellow.Sprint("!"), msg)
}

// Info prints a blue arrow line.
func (p *Printer) Info(msg string) {
	fmt.Fprintf(p.w, "%s %s\n", p.blue.Sprint("→"), msg)
}

// Detail prints an indented line under the previous status line.
func (p *Printer) Detail(msg string) {
	fmt.Fprintf(p.w, "    %s\n", msg)
}

// Section prints a bold heading preceded by a blank line.
func (p *Printer) Section(title string) {
	fmt.Fprintf(p.w, "\n%s\n", p.bold.Sprint(title))
}

// Field prints an indented "label: value" summary line.
func (p *Printer) Field(label, value string) {
	fmt.Fprintf(p.w, "  %s: %s\n", label, value)
}

// PathNotFound reports a missing validation target.
func (p *Printer) PathNotFound(path string) {
	p.Fail("Path not found: " + path)
}

// Result prints the status line of one result followed by its messages.
func (p *Printer) Result(r models.Result) {
	name := r.RelPath
	if name == "" {
		name = r.Path
	}
	switch {
	case r.Kind == models.KindUnknown:
		p.Info("Skipping unsupported file type: " + name)
		return
	case r.Errors() > 0:
		p.Fail(name)
	case r.Warnings() > 0:
		p.Warn(name)
	default:
		p.Success(name)
	}
	for _, m := range r.Messages() {
		p.Detail(m)
	}
}

// Report prints the target line, every result, the summary and the verdict.
func (p *Printer) Report(rep *models.Report) {
	if rep.Mode == models.ModeFile {
		p.Info("Validating file: " + rep.Root)
	} else {
		p.Info("Validating directory: " + rep.Root)
	}
	for _, r := range rep.Results {
		p.Result(r)
	}
	p.Summary(rep)
}

// Summary prints the counters and the final verdict.
func (p *Printer) Summary(rep *models.Report) {
	p.Section("Summary")
	p.Field("Files checked", fmt.Sprint(rep.FilesChecked))
	p.Field("Errors", p.count(rep.Errors, p.red))
	p.Field("Warnings", p.count(rep.Warnings, p.yellow))

	if rep.Failed() {
		fmt.Fprintf(p.w, "\n%s\n", p.red.Sprint("Validation failed"))
		return
	}
	fmt.Fprintf(p.w, "\n%s\n", p.green.Sprint("Validation passed"))
}

func (p *Printer) count(n int, nonZero *color.Color) string {
	if n > 0 {
		return nonZero.Sprint(n)
	}
	return p.green.Sprint(n)
}
