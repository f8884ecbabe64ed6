package returns

// EUR is a helper for test to create euro money from const
func EUR(v float64) Money { return M(v, "EUR") }

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// tx is a helper for test to create a transaction from a date string.
func tx(date string, postings ...Posting) Transaction {
	return Transaction{Date: MustParse(date), Postings: postings}
}

// post is a helper for test to create a posting.
func post(account string, amount Money) Posting {
	return Posting{Account: account, Amount: amount}
}

// postAt is a helper for test to create a posting with a source location.
func postAt(account string, amount Money, source string) Posting {
	return Posting{Account: account, Amount: amount, Source: source}
}

// postCost is a helper for test to create a posting with a per-unit cost.
func postCost(account string, amount Money, cost Money) Posting {
	return Posting{Account: account, Amount: amount, Cost: &cost}
}

// newTestLedger is a helper for test to build a sorted ledger.
func newTestLedger(txs ...Transaction) *Ledger {
	l := NewLedger()
	l.Append(txs...)
	return l
}
