package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/returns"
)

// Report bundles everything a rendered returns report needs.
type Report struct {
	Window   returns.Range
	Currency string
	Result   returns.Result
	Diags    []returns.Diagnostic
}

// ReturnsMarkdown generates the markdown report for a single measurement.
func ReturnsMarkdown(rep *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Returns from %s to %s\n\n", rep.Window.From, rep.Window.To)
	fmt.Fprintf(&b, "Reporting currency: %s\n\n", rep.Currency)

	fmt.Fprintln(&b, "| Metric | Annualized |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Money-weighted rate of return | %s |\n", rate(rep.Result.MWRR))
	fmt.Fprintf(&b, "| Time-weighted rate of return | %s |\n", rate(rep.Result.TWRR))

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "\n## External Accounts\n\n")
		for _, account := range rep.Result.InflowAccounts {
			fmt.Fprintf(w, "- %s (inflow)\n", account)
		}
		for _, account := range rep.Result.OutflowAccounts {
			fmt.Fprintf(w, "- %s (outflow)\n", account)
		}
		return len(rep.Result.InflowAccounts)+len(rep.Result.OutflowAccounts) > 0
	})

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "\n## Warnings\n\n")
		for _, d := range rep.Diags {
			if d.Source != "" {
				fmt.Fprintf(w, "- %s: %s\n", d.Source, d.Message)
			} else {
				fmt.Fprintf(w, "- %s\n", d.Message)
			}
		}
		return len(rep.Diags) > 0
	})

	return b.String()
}

// rate formats an optional percentage, "n/a" when the metric has no value.
func rate(p *returns.Percent) string {
	if p == nil {
		return "n/a"
	}
	return p.SignedString()
}
