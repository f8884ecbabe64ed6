package returns

import (
	"iter"
	"sort"
	"strings"
)

// Posting is a single account/amount line within a transaction. The amount is
// a signed quantity of a commodity; Cost, when present, records the per-unit
// acquisition price of that commodity.
type Posting struct {
	Account string // hierarchical account path, e.g. "Assets:Brokerage:Cash"
	Amount  Money  // signed units of a currency or commodity
	Cost    *Money // optional per-unit cost at acquisition
	Source  string // where this posting was read from, e.g. "ledger.jsonl:42"
}

// Transaction is a dated set of postings. The upstream ledger guarantees
// that postings balance; this package does not re-validate it.
type Transaction struct {
	Date      Date
	Narration string
	Postings  []Posting
}

// Ledger represents a list of transactions.
//
// In a Ledger transactions are always in chronological order, ties broken by
// insertion order.
type Ledger struct {
	transactions []Transaction
	accounts     map[string]struct{} // index of all account paths seen
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		accounts: make(map[string]struct{}),
	}
}

// Append adds transactions to the ledger and restores chronological order.
func (l *Ledger) Append(txs ...Transaction) {
	l.transactions = append(l.transactions, txs...)
	sort.SliceStable(l.transactions, func(i, j int) bool {
		return l.transactions[i].Date.Before(l.transactions[j].Date)
	})
	for _, tx := range txs {
		for _, p := range tx.Postings {
			l.accounts[p.Account] = struct{}{}
		}
	}
}

// Len returns the number of transactions in the ledger.
func (l *Ledger) Len() int { return len(l.transactions) }

// Transactions returns an iterator over all transactions in chronological order.
func (l *Ledger) Transactions() iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for _, tx := range l.transactions {
			if !yield(tx) {
				return
			}
		}
	}
}

// AllAccounts returns the sorted list of distinct account paths in the ledger.
func (l *Ledger) AllAccounts() []string {
	accounts := make([]string, 0, len(l.accounts))
	for a := range l.accounts {
		accounts = append(accounts, a)
	}
	sort.Strings(accounts)
	return accounts
}

// AccountsUnder returns the sorted account paths that start with the given
// prefix segment (e.g. "Assets" matches "Assets:Brokerage" but not
// "AssetsOther"). The separator is only used for this prefix filter; the
// engine itself treats account paths as opaque strings.
func (l *Ledger) AccountsUnder(prefix string) []string {
	var accounts []string
	for a := range l.accounts {
		if a == prefix || strings.HasPrefix(a, prefix+":") {
			accounts = append(accounts, a)
		}
	}
	sort.Strings(accounts)
	return accounts
}
