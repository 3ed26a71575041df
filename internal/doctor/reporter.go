package doctor

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/kegadopt/kegadopt/internal/color"
)

// Reporter formats and outputs check results.
type Reporter interface {
	// Report outputs the results of health checks.
	Report(results []CheckResult)
}

// TableReporter renders results as a themed table.
type TableReporter struct {
	out   io.Writer
	theme color.Theme
}

// NewTableReporter creates a TableReporter writing to out with the
// given theme.
func NewTableReporter(out io.Writer, theme color.Theme) *TableReporter {
	return &TableReporter{out: out, theme: theme}
}

// statusIcon returns the styled single-width icon for a check result.
func (r *TableReporter) statusIcon(result CheckResult) string {
	switch result.Status {
	case StatusPass:
		return r.theme.Pass.Render("✓")
	case StatusFail:
		if result.Severity == SeverityError {
			return r.theme.Fail.Render("✗")
		}

		return r.theme.Warn.Render("!")
	case StatusSkipped:
		return r.theme.Skip.Render("-")
	default:
		return "?"
	}
}

// Report renders the results and a summary line.
func (r *TableReporter) Report(results []CheckResult) {
	if len(results) == 0 {
		return
	}

	t := tablewriter.NewTable(r.out)
	t.Header([]string{"", "Check", "Message"})

	for _, result := range results {
		row := []string{
			r.statusIcon(result),
			r.theme.Header.Render(result.Name),
			result.Message,
		}

		if len(result.Details) > 0 {
			row[2] += r.theme.Muted.Render(
				" (" + strings.Join(result.Details, "; ") + ")")
		}

		_ = t.Append(row)
	}

	_ = t.Render()

	fmt.Fprintln(r.out, r.summaryLine(results))
}

// summaryLine builds the trailing one-line summary, coloring the
// error and warning counts when they are non-zero.
func (r *TableReporter) summaryLine(results []CheckResult) string {
	var errs, warnings, passed, skipped int

	for _, result := range results {
		switch {
		case result.IsError():
			errs++
		case result.IsWarning():
			warnings++
		case result.IsSkipped():
			skipped++
		case result.IsPassed():
			passed++
		}
	}

	errPart := fmt.Sprintf("%d error(s)", errs)
	if errs > 0 {
		errPart = r.theme.Fail.Render(errPart)
	}

	warnPart := fmt.Sprintf("%d warning(s)", warnings)
	if warnings > 0 {
		warnPart = r.theme.Warn.Render(warnPart)
	}

	parts := []string{
		errPart,
		warnPart,
		fmt.Sprintf("%d passed", passed),
	}

	if skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", skipped))
	}

	return "Summary: " + strings.Join(parts, ", ")
}
