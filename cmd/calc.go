package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/etnz/returns"
	"github.com/etnz/returns/renderer"
	"github.com/google/subcommands"
)

// calcCmd holds the flags for the 'calc' subcommand.
type calcCmd struct {
	accounts multiFlag
	internal multiFlag
	currency string
	start    string
	end      string
	period   string
	mwrr     bool
	twrr     bool
	periods  bool
	flows    bool
	verbose  bool
}

func (*calcCmd) Name() string     { return "calc" }
func (*calcCmd) Synopsis() string { return "money-weighted and time-weighted returns" }
func (*calcCmd) Usage() string {
	return `prr calc -account <regex> [-internal <regex>] [-c <currency>] [-s <date>] [-e <date>] [-period <period>]

  Calculates the annualized returns of the accounts matching the -account
  patterns. Postings on accounts matching -internal patterns (dividends,
  fees) count as performance instead of external cashflows.

Usage Examples:
# Returns of the whole brokerage over the last year.
$ prr calc -account 'Assets:Brokerage(:.*)?' -internal 'Income:.*' -s -1y

# Year-to-date returns.
$ prr calc -account 'Assets:Brokerage(:.*)?' -period year

`
}

func (c *calcCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.accounts, "account", "Regular expression selecting portfolio accounts. Repeatable.")
	f.Var(&c.internal, "internal", "Regular expression selecting internal accounts. Repeatable.")
	f.StringVar(&c.currency, "c", "USD", "Reporting currency.")
	f.StringVar(&c.start, "s", "", "Start date of the measurement window. Supports relative dates like -1y.")
	f.StringVar(&c.end, "e", "", "End date of the measurement window. Defaults to today.")
	f.StringVar(&c.period, "period", "", "Predefined window ending at the end date (day, week, month, quarter, year).")
	f.BoolVar(&c.mwrr, "mwrr", true, "Compute the money-weighted rate of return.")
	f.BoolVar(&c.twrr, "twrr", true, "Compute the time-weighted rate of return.")
	f.BoolVar(&c.periods, "periods", false, "Also render the time-weighted sub-period table.")
	f.BoolVar(&c.flows, "flows", false, "Also render the cashflow table.")
	f.BoolVar(&c.verbose, "v", false, "Log the calculation timing.")
}

func (c *calcCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if len(c.accounts) == 0 {
		fmt.Fprintln(os.Stderr, "at least one -account pattern is required")
		return subcommands.ExitUsageError
	}
	window, err := resolveWindow(c.start, c.end, c.period)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	ledger, err := DecodeLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	market, err := DecodeMarket()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading prices: %v\n", err)
		return subcommands.ExitFailure
	}

	engine := returns.New(ledger, market, c.currency)
	result, err := engine.Calculate(returns.Request{
		Interesting: c.accounts,
		Internal:    c.internal,
		Start:       window.From,
		End:         window.To,
		WantMWRR:    c.mwrr,
		WantTWRR:    c.twrr,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	report := &renderer.Report{
		Window:   window,
		Currency: c.currency,
		Result:   result,
		Diags:    engine.Diagnostics(),
	}
	md := renderer.ReturnsMarkdown(report)
	if c.flows {
		md += "\n" + renderer.CashflowsMarkdown(result.Cashflows, c.currency)
	}
	if c.periods {
		md += "\n" + renderer.PeriodsMarkdown(result.Periods, c.currency)
	}
	printMarkdown(md)

	if c.verbose {
		log.Printf("calculated in %v", engine.Elapsed())
	}
	return subcommands.ExitSuccess
}
