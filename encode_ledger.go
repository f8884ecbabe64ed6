package returns

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// postingCmd is a specialized struct for decoding one posting line item.
type postingCmd struct {
	Account      string          `json:"account"`
	Amount       decimal.Decimal `json:"amount"`
	Commodity    string          `json:"commodity"`
	Cost         decimal.Decimal `json:"cost"`
	CostCurrency string          `json:"costCurrency"`
}

// txCmd is a specialized struct for decoding one transaction line.
type txCmd struct {
	Date      Date         `json:"date"`
	Narration string       `json:"narration"`
	Postings  []postingCmd `json:"postings"`
}

// priceCmd is a specialized struct for decoding one price line.
type priceCmd struct {
	Date     Date            `json:"date"`
	Ticker   string          `json:"ticker"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}

// DecodeLedger decodes transactions from a stream of JSONL data, one
// transaction per line, and returns a chronologically sorted Ledger. The
// name is used to tag each posting with its source location ("name:line")
// for diagnostics.
func DecodeLedger(r io.Reader, name string) (*Ledger, error) {
	ledger := NewLedger()
	scanner := bufio.NewScanner(r)

	lineno := 0
	for scanner.Scan() {
		lineno++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var cmd txCmd
		if err := json.Unmarshal(lineBytes, &cmd); err != nil {
			return nil, fmt.Errorf("invalid transaction in %s:%d: %w", name, lineno, err)
		}
		if cmd.Date.IsZero() {
			return nil, fmt.Errorf("invalid transaction in %s:%d: missing date", name, lineno)
		}

		tx := Transaction{Date: cmd.Date, Narration: cmd.Narration}
		for _, p := range cmd.Postings {
			if p.Account == "" {
				return nil, fmt.Errorf("invalid posting in %s:%d: missing account", name, lineno)
			}
			posting := Posting{
				Account: p.Account,
				Amount:  M(p.Amount, p.Commodity),
				Source:  fmt.Sprintf("%s:%d", name, lineno),
			}
			if p.CostCurrency != "" {
				cost := M(p.Cost, p.CostCurrency)
				posting.Cost = &cost
			}
			tx.Postings = append(tx.Postings, posting)
		}
		ledger.Append(tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read %s: %w", name, err)
	}
	return ledger, nil
}

// EncodeTransaction appends a single transaction as one JSONL line.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	var line jsonObjectWriter
	line.Append("date", tx.Date)
	line.Optional("narration", tx.Narration)

	postings := make([]json.RawMessage, 0, len(tx.Postings))
	for _, p := range tx.Postings {
		var pw jsonObjectWriter
		pw.Append("account", p.Account)
		pw.Append("amount", p.Amount.Amount())
		pw.Append("commodity", p.Amount.Currency())
		if p.Cost != nil {
			pw.Append("cost", p.Cost.Amount())
			pw.Append("costCurrency", p.Cost.Currency())
		}
		raw, err := pw.MarshalJSON()
		if err != nil {
			return err
		}
		postings = append(postings, raw)
	}
	line.Append("postings", postings)

	raw, err := line.MarshalJSON()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// DecodeMarket decodes a price table from a stream of JSONL data, one price
// point per line.
func DecodeMarket(r io.Reader, name string) (*Market, error) {
	market := NewMarket()
	scanner := bufio.NewScanner(r)

	lineno := 0
	for scanner.Scan() {
		lineno++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue
		}

		var cmd priceCmd
		if err := json.Unmarshal(lineBytes, &cmd); err != nil {
			return nil, fmt.Errorf("invalid price in %s:%d: %w", name, lineno, err)
		}
		if cmd.Ticker == "" || cmd.Currency == "" {
			return nil, fmt.Errorf("invalid price in %s:%d: missing ticker or currency", name, lineno)
		}
		market.Add(cmd.Ticker, cmd.Date, M(cmd.Price, cmd.Currency))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read %s: %w", name, err)
	}
	return market, nil
}

// EncodePrice appends a single price point as one JSONL line.
func EncodePrice(w io.Writer, ticker string, day Date, price Money) error {
	var line jsonObjectWriter
	line.Append("date", day)
	line.Append("ticker", ticker)
	line.Append("price", price.Amount())
	line.Append("currency", price.Currency())

	raw, err := line.MarshalJSON()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
