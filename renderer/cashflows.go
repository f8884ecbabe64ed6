package renderer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/etnz/returns"
)

// CashflowsMarkdown generates a markdown table of the external cashflows a
// measurement consumed, with a running net total.
func CashflowsMarkdown(cashflows []returns.Cashflow, currency string) string {
	var b strings.Builder

	fmt.Fprint(&b, "## Cashflows\n\n")
	if len(cashflows) == 0 {
		fmt.Fprint(&b, "No external cashflows in the period.\n")
		return b.String()
	}

	fmt.Fprintln(&b, "| Date | Amount | Net |")
	fmt.Fprintln(&b, "|:---|---:|---:|")
	net := 0.0
	for _, cf := range cashflows {
		net += cf.Amount
		fmt.Fprintf(&b, "| %s | %s | %s |\n",
			cf.Date,
			returns.M(cf.Amount, currency).SignedString(),
			returns.M(net, currency).SignedString(),
		)
	}
	return b.String()
}

// PeriodsMarkdown generates a markdown table of the sub-period values behind a
// time-weighted return, in chronological order.
func PeriodsMarkdown(periods map[returns.Date]returns.PeriodValue, currency string) string {
	var b strings.Builder

	fmt.Fprint(&b, "## Sub-Periods\n\n")
	if len(periods) == 0 {
		fmt.Fprint(&b, "No sub-periods in the period.\n")
		return b.String()
	}

	dates := make([]returns.Date, 0, len(periods))
	for d := range periods {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	fmt.Fprintln(&b, "| Date | Balance | Cashflow |")
	fmt.Fprintln(&b, "|:---|---:|---:|")
	for _, d := range dates {
		pv := periods[d]
		fmt.Fprintf(&b, "| %s | %s | %s |\n",
			d,
			returns.M(pv.Balance, currency).String(),
			returns.M(pv.Cashflow, currency).SignedString(),
		)
	}
	return b.String()
}
