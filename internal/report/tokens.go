package report

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/starford/dotlint/internal/tokens"
)

// TokenTitle is printed at the top of the token report.
const TokenTitle = "dotlint token counter"

// TokenHeader prints the title block of the token report.
func (p *Printer) TokenHeader() {
	fmt.Fprintf(p.w, "%s\n\n", p.bold.Sprint(TokenTitle))
}

// Analysis prints the measurement of one file against its budget.
func (p *Printer) Analysis(a *tokens.Analysis) {
	est := ""
	if !a.Exact {
		est = " (est)"
	}
	b := a.Budget
	fmt.Fprintf(p.w, "  %s\n", a.Path)
	fmt.Fprintf(p.w, "    Tokens: %s%s (target: %d, max: %d)\n",
		p.level(a.Tokens, b.TokenTarget, b.TokenMax), est, b.TokenTarget, b.TokenMax)
	fmt.Fprintf(p.w, "    Lines:  %s (target: %d, max: %d)\n",
		p.level(a.Lines, b.LineTarget, b.LineMax), b.LineTarget, b.LineMax)

	if a.HeaderDrift() {
		fmt.Fprintf(p.w, "    %s Header comment says ~%d tokens, actual is %d\n",
			p.yellow.Sprint("!"), a.HeaderTokens, a.Tokens)
		fmt.Fprintf(p.w, "      Update it to: %s\n",
			tokens.HeaderComment(a.Tokens, a.Lines, b.TokenTarget))
	}
	if a.OverTokens() {
		fmt.Fprintf(p.w, "    %s Exceeds maximum token budget!\n", p.red.Sprint("⚠"))
	}
	if a.OverLines() {
		fmt.Fprintf(p.w, "    %s Exceeds maximum line count!\n", p.red.Sprint("⚠"))
	}
}

// AnalysisError prints a file that could not be measured.
func (p *Printer) AnalysisError(path string, err error) {
	fmt.Fprintf(p.w, "  %s %s: %v\n", p.red.Sprint("✗"), path, err)
}

// TokenSummary prints the totals and the budget verdict.
func (p *Printer) TokenSummary(files, overBudget, totalTokens int) {
	p.Section("Summary")
	p.Field("Files analyzed", fmt.Sprint(files))
	p.Field("Over budget", p.count(overBudget, p.red))
	p.Field("Total tokens", fmt.Sprint(totalTokens))

	if overBudget > 0 {
		fmt.Fprintf(p.w, "\n%s %d file(s) exceed budget\n", p.yellow.Sprint("Warning:"), overBudget)
		return
	}
	fmt.Fprintf(p.w, "\n%s\n", p.green.Sprint("All files within budget"))
}

// level colours n green up to target, yellow up to max and red beyond.
func (p *Printer) level(n, target, limit int) string {
	var c *color.Color
	switch {
	case n <= target:
		c = p.green
	case n <= limit:
		c = p.yellow
	default:
		c = p.red
	}
	return c.Sprint(n)
}
