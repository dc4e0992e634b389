// Package tokens measures instruction files against token and line budgets.
package tokens

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// Encoding is the BPE used for exact counts.
const Encoding = "cl100k_base"

// DriftThreshold is how far a header's token claim may be off before it is
// reported.
const DriftThreshold = 50

// Strategy selects how tokens are counted.
type Strategy string

const (
	// StrategyAuto counts exactly and falls back to the estimate when the
	// encoding cannot be loaded.
	StrategyAuto     Strategy = "auto"
	StrategyExact    Strategy = "exact"
	StrategyEstimate Strategy = "estimate"
)

var headerRe = regexp.MustCompile(`<!--\s*Tokens:\s*~?(\d+)`)

func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// Estimate approximates a token count by averaging words*1.3 and
// characters/4.
func Estimate(text string) int {
	words := float64(len(strings.Fields(text)))
	chars := float64(utf8.RuneCountInString(text))
	return int((words*1.3 + chars/4) / 2)
}

// CountLines returns the number of lines that are not blank.
func CountLines(text string) int {
	n := 0
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			n++
		}
	}
	return n
}

// HeaderCount extracts N from a "<!-- Tokens: ~N ... -->" comment.
func HeaderCount(text string) (int, bool) {
	m := headerRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// HeaderComment renders the header comment for a measured file.
func HeaderComment(tokens, lines, target int) string {
	return fmt.Sprintf("<!-- Tokens: ~%d (target: %d) | Lines: %d -->", tokens, target, lines)
}

// Counter counts tokens according to a Strategy. The encoding is loaded on
// first use; a Counter is safe for concurrent use.
type Counter struct {
	strategy Strategy

	once   sync.Once
	enc    *tiktoken.Tiktoken
	encErr error
}

// NewCounter returns a Counter for strategy; an empty strategy means auto.
func NewCounter(strategy Strategy) (*Counter, error) {
	switch strategy {
	case "":
		strategy = StrategyAuto
	case StrategyAuto, StrategyExact, StrategyEstimate:
	default:
		return nil, fmt.Errorf("tokens: unknown strategy %q", strategy)
	}
	return &Counter{strategy: strategy}, nil
}

func (c *Counter) encoding() (*tiktoken.Tiktoken, error) {
	c.once.Do(func() {
		c.enc, c.encErr = tiktoken.GetEncoding(Encoding)
	})
	return c.enc, c.encErr
}

// Count returns the token count of text and whether it is exact.
func (c *Counter) Count(text string) (int, bool, error) {
	if c.strategy == StrategyEstimate {
		return Estimate(text), false, nil
	}
	enc, err := c.encoding()
	if err != nil {
		if c.strategy == StrategyExact {
			return 0, false, fmt.Errorf("tokens: load %s: %w", Encoding, err)
		}
		return Estimate(text), false, nil
	}
	return len(enc.EncodeOrdinary(text)), true, nil
}

// Analysis is the measurement of one file.
type Analysis struct {
	Path         string       `json:"path"`
	Template     TemplateType `json:"template_type"`
	Tokens       int          `json:"tokens"`
	Exact        bool         `json:"exact"`
	Lines        int          `json:"lines"`
	Budget       Budget       `json:"budget"`
	HeaderTokens int          `json:"header_tokens,omitempty"`
}

// OverTokens reports whether the token count exceeds the maximum.
func (a *Analysis) OverTokens() bool { return a.Tokens > a.Budget.TokenMax }

// OverLines reports whether the line count exceeds the maximum.
func (a *Analysis) OverLines() bool { return a.Lines > a.Budget.LineMax }

// OverBudget reports whether either maximum is exceeded.
func (a *Analysis) OverBudget() bool { return a.OverTokens() || a.OverLines() }

// HeaderDrift reports whether a header comment claims a count more than
// DriftThreshold away from the measured one.
func (a *Analysis) HeaderDrift() bool {
	if a.HeaderTokens == 0 {
		return false
	}
	d := a.HeaderTokens - a.Tokens
	return d > DriftThreshold || d < -DriftThreshold
}

// AnalyzeContent measures content as if stored at path.
func (c *Counter) AnalyzeContent(path, content string) (*Analysis, error) {
	n, exact, err := c.Count(content)
	if err != nil {
		return nil, err
	}
	tmpl := TemplateFor(filepath.ToSlash(path))
	a := &Analysis{
		Path:     path,
		Template: tmpl,
		Tokens:   n,
		Exact:    exact,
		Lines:    CountLines(content),
		Budget:   BudgetFor(tmpl),
	}
	if h, ok := HeaderCount(content); ok {
		a.HeaderTokens = h
	}
	return a, nil
}

// Analyze reads and measures the file at path.
func (c *Counter) Analyze(path string) (*Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tokens: read %s: %w", path, err)
	}
	return c.AnalyzeContent(path, string(data))
}
