package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/returns"
	"github.com/google/subcommands"
)

// fetchCmd holds the flags for the 'fetch' subcommand.
type fetchCmd struct {
	ticker   string
	currency string
	start    string
	end      string
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "fetch end-of-day prices from EODHD.com" }
func (*fetchCmd) Usage() string {
	return `prr fetch -ticker <ticker> [-c <currency>] [-s <date>] [-e <date>]

  Fetches daily adjusted closing prices from EODHD.com and appends them to the
  price file. The ticker uses the EODHD form, e.g. "AAPL.US". The API key is
  read from the -eodhd-api-key flag or the EODHD_API_KEY environment variable.

Usage Examples:
# Fetch last year's prices for Apple.
$ prr fetch -ticker AAPL.US -s -1y

`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "ticker", "", "Ticker to fetch, in the EODHD form (e.g. AAPL.US).")
	f.StringVar(&c.currency, "c", "USD", "Currency the prices are quoted in.")
	f.StringVar(&c.start, "s", "-1m", "Start date of the range to fetch.")
	f.StringVar(&c.end, "e", "", "End date of the range to fetch. Defaults to today.")
}

func (c *fetchCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ticker == "" {
		fmt.Fprintln(os.Stderr, "the -ticker flag is required")
		return subcommands.ExitUsageError
	}
	window, err := resolveWindow(c.start, c.end, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	points, err := returns.FetchEODHD(c.ticker, window)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching %q: %v\n", c.ticker, err)
		return subcommands.ExitFailure
	}

	// Open the file in append mode, creating it if it doesn't exist.
	file, err := os.OpenFile(*pricesFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening price file %q: %v\n", *pricesFile, err)
		return subcommands.ExitFailure
	}
	defer file.Close()

	for _, p := range points {
		if err := returns.EncodePrice(file, c.ticker, p.Date, returns.M(p.Price, c.currency)); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing to price file %q: %v\n", *pricesFile, err)
			return subcommands.ExitFailure
		}
	}
	fmt.Printf("Successfully appended %d prices for %s to %s\n", len(points), c.ticker, *pricesFile)
	return subcommands.ExitSuccess
}
