package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/returns"
	"github.com/etnz/returns/renderer"
	"github.com/google/subcommands"
)

// cashflowsCmd holds the flags for the 'cashflows' subcommand.
type cashflowsCmd struct {
	accounts multiFlag
	internal multiFlag
	currency string
	start    string
	end      string
	period   string
}

func (*cashflowsCmd) Name() string     { return "cashflows" }
func (*cashflowsCmd) Synopsis() string { return "external cashflows of a measurement" }
func (*cashflowsCmd) Usage() string {
	return `prr cashflows -account <regex> [-internal <regex>] [-c <currency>] [-s <date>] [-e <date>]

  Lists the external cashflows the returns calculation is based on, including
  the synthetic flows valuing the holdings at the window boundaries. Useful to
  audit a surprising rate.

`
}

func (c *cashflowsCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.accounts, "account", "Regular expression selecting portfolio accounts. Repeatable.")
	f.Var(&c.internal, "internal", "Regular expression selecting internal accounts. Repeatable.")
	f.StringVar(&c.currency, "c", "USD", "Reporting currency.")
	f.StringVar(&c.start, "s", "", "Start date of the measurement window. Supports relative dates like -1y.")
	f.StringVar(&c.end, "e", "", "End date of the measurement window. Defaults to today.")
	f.StringVar(&c.period, "period", "", "Predefined window ending at the end date (day, week, month, quarter, year).")
}

func (c *cashflowsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
		WantMWRR:    true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.CashflowsMarkdown(result.Cashflows, c.currency))
	printDiagnostics(engine.Diagnostics())
	return subcommands.ExitSuccess
}
