// Package cmd implements the CLI application to measure portfolio returns.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/returns"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&calcCmd{}, "reports")
	c.Register(&cashflowsCmd{}, "reports")

	c.Register(&fetchCmd{}, "prices")

	c.Register(&topicCmd{}, "")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var ledgerFile = flag.String("ledger-file", "transactions.jsonl", "Path to the ledger file containing transactions (JSONL format)")
var pricesFile = flag.String("prices-file", "prices.jsonl", "Path to the price file (JSONL format)")

// DecodeLedger decodes the app default ledger file.
func DecodeLedger() (*returns.Ledger, error) {
	f, err := os.Open(*ledgerFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return returns.DecodeLedger(f, *ledgerFile)
}

// DecodeMarket decodes the app default price file. A missing file is an empty
// price table, not an error, so ledgers in a single currency work out of the box.
func DecodeMarket() (*returns.Market, error) {
	f, err := os.Open(*pricesFile)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("warning, price file %q does not exist, using an empty price table instead", *pricesFile)
		return returns.NewMarket(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return returns.DecodeMarket(f, *pricesFile)
}

// multiFlag collects the values of a repeatable string flag.
type multiFlag []string

func (m *multiFlag) String() string     { return strings.Join(*m, ",") }
func (m *multiFlag) Set(v string) error { *m = append(*m, v); return nil }

// resolveWindow turns the -s/-e/-period flags into a measurement window.
// Dates accept the relative forms of ParseDate ("-1y", "0d"). An empty start
// with an empty period means "since the beginning of the ledger".
func resolveWindow(start, end, period string) (returns.Range, error) {
	var window returns.Range

	if end != "" {
		e, err := returns.ParseDate(end)
		if err != nil {
			return window, fmt.Errorf("invalid end date: %w", err)
		}
		window.To = e
	} else {
		window.To = returns.Today()
	}

	switch {
	case start != "" && period != "":
		return window, errors.New("-s and -period flags cannot be used together")
	case start != "":
		s, err := returns.ParseDate(start)
		if err != nil {
			return window, fmt.Errorf("invalid start date: %w", err)
		}
		window.From = s
	case period != "":
		p, err := returns.ParsePeriod(period)
		if err != nil {
			return window, err
		}
		window.From = window.To.StartOf(p)
	default:
		window.From = returns.MinDate
	}

	if window.From.After(window.To) {
		return window, fmt.Errorf("start %s is after end %s", window.From, window.To)
	}
	return window, nil
}

// printMarkdown renders markdown for the terminal. On rendering errors the
// raw markdown is still printed.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}

// printDiagnostics reports the engine warnings on stderr.
func printDiagnostics(diags []returns.Diagnostic) {
	for _, d := range diags {
		if d.Source != "" {
			fmt.Fprintf(os.Stderr, "warning: %s: %s\n", d.Source, d.Message)
		} else {
			fmt.Fprintf(os.Stderr, "warning: %s\n", d.Message)
		}
	}
}
