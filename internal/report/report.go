// Package report renders the verbose-mode CLI output: a summary of the
// policy trie compiled in phase 1 and a table of the (n, WC(n)) series from
// phase 2. Uses lipgloss for styling and golang.org/x/term for width-aware,
// wrapped row layout.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/janpfeifer/wcanalysis/internal/trend"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	labelStyle  = lipgloss.NewStyle().Faint(true)
	bestStyle   = lipgloss.NewStyle().Bold(true)
)

// terminalWidth returns the current stdout width, defaulting to 80 when it
// cannot be determined (e.g. output is redirected to a file).
func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// PolicySummary renders phase-1 diagnostics: how many distinct choices were
// recommended, their raw insertion counts, and each one's share of all
// insertions.
func PolicySummary(policyInputSize int, countForChoice func(choice int) int, frequencies map[int]float32, choices []int) string {
	var b strings.Builder
	fmt.Fprintln(&b, headerStyle.Render(fmt.Sprintf("Policy generated at N0=%d", policyInputSize)))
	if len(choices) == 0 {
		fmt.Fprintln(&b, labelStyle.Render("  (no branches observed; policy is empty)"))
		return b.String()
	}
	for _, c := range choices {
		fmt.Fprintf(&b, "  choice %d: recommended %d time(s) (%.1f%%)\n", c, countForChoice(c), frequencies[c]*100)
	}
	return b.String()
}

// Series renders the phase-2 (n, WC(n)) table plus the best-fitting trend
// model, width-limited to the current terminal.
func Series(series []trend.Point, models []trend.Model) string {
	var b strings.Builder
	fmt.Fprintln(&b, headerStyle.Render("Worst-case series"))

	width := terminalWidth()
	colWidth := 12
	perRow := width / colWidth
	if perRow < 1 {
		perRow = 1
	}

	for i := 0; i < len(series); i += perRow {
		end := i + perRow
		if end > len(series) {
			end = len(series)
		}
		var row strings.Builder
		for _, pt := range series[i:end] {
			fmt.Fprintf(&row, "%-12s", fmt.Sprintf("(%d,%g)", pt.N, pt.Cost))
		}
		fmt.Fprintln(&b, row.String())
	}

	if best, ok := trend.Best(models); ok {
		fmt.Fprintln(&b, bestStyle.Render(fmt.Sprintf("best fit: %s (R²=%.4f)", best.Shape, best.RSquared)))
	}
	return b.String()
}

// ModelSummary is the JSON-serializable projection of a trend.Model: its
// shape name and goodness of fit, omitting the unexported regression
// parameters (recoverable from Predict, not meant for external consumers).
type ModelSummary struct {
	Shape    string  `json:"shape"`
	RSquared float64 `json:"rSquared"`
}

// Summary is the machine-readable counterpart to the chart PNG, emitted
// alongside it in verbose mode: every number a human reading the chart
// would otherwise have to eyeball back out of it.
type Summary struct {
	PolicyInputSize int            `json:"policyInputSize"`
	InputMax        int            `json:"inputMax"`
	ReusedPolicy    bool           `json:"reusedPolicy"`
	Horizon         int            `json:"horizon"`
	Series          []trend.Point  `json:"series"`
	Models          []ModelSummary `json:"models"`
}

// NewSummary builds a Summary from a finished run's series and fitted
// models.
func NewSummary(policyInputSize, inputMax int, reusedPolicy bool, horizon int, series []trend.Point, models []trend.Model) Summary {
	ms := make([]ModelSummary, len(models))
	for i, m := range models {
		ms[i] = ModelSummary{Shape: string(m.Shape), RSquared: m.RSquared}
	}
	return Summary{
		PolicyInputSize: policyInputSize,
		InputMax:        inputMax,
		ReusedPolicy:    reusedPolicy,
		Horizon:         horizon,
		Series:          series,
		Models:          ms,
	}
}

// WriteJSON writes s to path as indented JSON.
func (s Summary) WriteJSON(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling run summary")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing summary to %s", path)
	}
	return nil
}
