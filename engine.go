package returns

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Request selects what a single Calculate call measures.
type Request struct {
	// Interesting are regular expressions selecting the accounts of the
	// measured portfolio. Internal selects transfer accounts whose flows
	// must cancel out instead of counting as external cashflows. Both are
	// alternations anchored to a full account-path match.
	Interesting []string
	Internal    []string

	// Start and End bound the measurement window, inclusive. A zero Start
	// defaults to MinDate, a zero End defaults to today. Transactions
	// outside the window are excluded entirely, not clipped.
	Start Date
	End   Date

	WantMWRR bool
	WantTWRR bool
}

// Result carries the computed metrics. A nil rate means the metric was not
// requested or had no defined value; the reason is in the engine diagnostics.
type Result struct {
	MWRR *Percent
	TWRR *Percent

	// Cashflows is the list the MWRR solver consumed, including the
	// synthetic boundary flows, in chronological order.
	Cashflows []Cashflow
	// Periods is the TWRR period table, populated when TWRR was requested.
	Periods map[Date]PeriodValue
	// InflowAccounts and OutflowAccounts are the external accounts observed
	// as counterparts of the measured flows, for diagnostics.
	InflowAccounts  []string
	OutflowAccounts []string
}

// Engine computes portfolio returns over one ledger and one price table.
//
// An Engine retains reusable state between the valuation calls of a single
// Calculate invocation (a cursor over the filtered transaction stream, the
// growing inventory, per-date valuation memos); all of it is reset at the
// next entry. Calls validly produce different results for different account
// selections, so nothing is cached across calls. An Engine is not safe for
// concurrent use; callers sharing one must serialize Calculate.
type Engine struct {
	ledger   *Ledger
	market   *Market
	currency string

	diags *DiagnosticLog
	times [phaseCount]time.Duration

	// Call-scoped state, reset at each Calculate entry.
	classifier *classifier
	filtered   []Transaction
	cursor     int
	inventory  *Inventory
	values     map[Date]map[positionKey]Money // per-date valuation memo
	dateValues map[Date]float64               // whole-portfolio value per date
}

// Calculation phases, timed individually.
const (
	phaseCompile = iota
	phaseFilter
	phaseScan
	phaseValuation
	phaseMWRR
	phaseTWRR
	phaseCount
)

// New creates an engine for the given ledger and price table. All cashflows
// and valuations are expressed in the reporting currency.
func New(ledger *Ledger, market *Market, currency string) *Engine {
	return &Engine{
		ledger:    ledger,
		market:    market,
		currency:  currency,
		diags:     NewDiagnosticLog(),
		inventory: NewInventory(),
	}
}

// Diagnostics returns the de-duplicated, non-fatal conditions met across all
// Calculate calls of this engine.
func (e *Engine) Diagnostics() []Diagnostic { return e.diags.All() }

// Elapsed returns the total time spent in all Calculate calls.
func (e *Engine) Elapsed() time.Duration {
	var total time.Duration
	for _, d := range e.times {
		total += d
	}
	return total
}

// Calculate runs one full measurement: compile the account patterns, stream
// the ledger once to extract the net external cashflows of the selected
// accounts, synthesize the boundary flows, and solve the requested metrics.
//
// Financially degenerate inputs (no cashflows, a non-convergent rate) are
// reported as diagnostics with a nil rate, never as errors. The only error
// returned is a malformed account pattern. Requesting neither metric is a
// no-op returning an empty result.
func (e *Engine) Calculate(req Request) (Result, error) {
	var res Result
	if !req.WantMWRR && !req.WantTWRR {
		return res, nil
	}

	start := req.Start
	if start.IsZero() {
		start = MinDate
	}
	end := req.End
	if end.IsZero() {
		end = Today()
	}

	// Reset the per-call state.
	e.filtered = e.filtered[:0]
	e.cursor = 0
	e.inventory.Clear()
	e.values = make(map[Date]map[positionKey]Money)
	e.dateValues = make(map[Date]float64)

	mark := time.Now()
	cl, err := newClassifier(req.Interesting, req.Internal)
	if err != nil {
		return res, err
	}
	e.classifier = cl
	mark = e.lap(phaseCompile, mark)

	// A transaction is interesting when any of its postings is; the filter
	// is independent of the date window so it can run first and the stream
	// only gets walked once for valuations.
	for tx := range e.ledger.Transactions() {
		if cl.isInterestingTransaction(tx) {
			e.filtered = append(e.filtered, tx)
		}
	}
	mark = e.lap(phaseFilter, mark)

	var cashflows []Cashflow
	periods := make(map[Date]PeriodValue)
	inflows := make(map[string]struct{})
	outflows := make(map[string]struct{})

	for _, tx := range e.filtered {
		if tx.Date.Before(start) || tx.Date.After(end) {
			continue
		}

		// Imagine a transaction
		//   [Assets:Brokerage +100, Income:Dividend -100]
		// that must net out to 0, versus
		//   [Assets:Brokerage +100, Assets:Bank -100]
		// that must net out to +100. Interesting postings are the measured
		// flow; internal postings are added too so a wholly internal entry
		// cancels to zero; everything else is only observed.
		flow := decimal.Zero
		for i := range tx.Postings {
			p := &tx.Postings[i]
			value, ok := e.convertPosting(p, tx.Date)
			if !ok {
				e.diags.Add(p.Source, fmt.Sprintf(
					"could not convert %s (%s) on %s to %s, result will be wrong",
					p.Amount.Currency(), p.Account, tx.Date, e.currency))
				continue
			}
			switch cl.classify(p.Account) {
			case Interesting, Internal:
				flow = flow.Add(value)
			default:
				if value.IsPositive() {
					outflows[p.Account] = struct{}{}
				} else {
					inflows[p.Account] = struct{}{}
				}
			}
		}

		// A flow that rounds to zero cannot move the IRR and would only
		// skew the TWRR period boundaries.
		if flow.Round(2).IsZero() {
			continue
		}
		amount := flow.InexactFloat64()
		cashflows = append(cashflows, Cashflow{Date: tx.Date, Amount: amount})
		if req.WantTWRR {
			pv, ok := periods[tx.Date]
			if !ok {
				pv = PeriodValue{Balance: e.valueAsOf(nil, tx.Date)}
			}
			pv.Cashflow += amount
			periods[tx.Date] = pv
		}
	}
	mark = e.lap(phaseScan, mark)

	// Boundary synthesis: the window is a closed system for XIRR. Money
	// already there at the start is an implicit initial investment, money
	// still there at the end an implicit terminal liquidation.
	startValue := e.valueAsOf(e.filtered, start)
	if _, ok := periods[start]; !ok && start != MinDate {
		periods[start] = PeriodValue{Balance: startValue}
	}
	// The start value includes any cashflows dated exactly on the start;
	// they are already in the list, so deduct them to avoid double-counting
	// the opening flow.
	for _, cf := range cashflows {
		if cf.Date == start {
			startValue -= cf.Amount
		}
	}
	endValue := e.valueAsOf(nil, end)
	if _, ok := periods[end]; !ok {
		periods[end] = PeriodValue{Balance: endValue}
	}
	if startValue != 0 {
		cashflows = append([]Cashflow{{Date: start, Amount: startValue}}, cashflows...)
	}
	if endValue != 0 {
		cashflows = append(cashflows, Cashflow{Date: end, Amount: -endValue})
	}
	mark = e.lap(phaseValuation, mark)

	res.Cashflows = cashflows
	res.InflowAccounts = sortedKeys(inflows)
	res.OutflowAccounts = sortedKeys(outflows)

	if req.WantMWRR {
		if len(cashflows) == 0 {
			e.diags.Add("", fmt.Sprintf("no cashflows found during the time period %s -> %s", start, end))
		} else if rate, err := XIRR(cashflows); err != nil {
			e.diags.Add("", fmt.Sprintf("no rate solves the cashflows of %s -> %s: %v", start, end, err))
		} else {
			mwrr := Percent(100 * rate)
			res.MWRR = &mwrr
		}
	}
	mark = e.lap(phaseMWRR, mark)

	if req.WantTWRR && len(periods) > 0 {
		res.Periods = periods
		if rate, err := TWRR(periods); err != nil {
			e.diags.Add("", fmt.Sprintf("cannot annualize the period table of %s -> %s: %v", start, end, err))
		} else {
			twrr := Percent(100 * rate)
			res.TWRR = &twrr
		}
	}
	e.lap(phaseTWRR, mark)

	return res, nil
}

// convertPosting values a posting in the reporting currency on a date, using
// the price table first and the recorded cost basis as fallback.
func (e *Engine) convertPosting(p *Posting, on Date) (decimal.Decimal, bool) {
	if value, ok := e.market.Convert(p.Amount, e.currency, on); ok {
		return value.Amount(), true
	}
	// The price table has no path; see if the cost basis is already in the
	// reporting currency. This must align with the inventory valuation.
	if p.Cost != nil && p.Cost.Currency() == e.currency {
		return p.Cost.Amount().Mul(p.Amount.Amount()), true
	}
	return decimal.Decimal{}, false
}

// valueAsOf returns the portfolio value on a date, in the reporting currency.
//
// With a nil transaction set it advances the engine's shared cursor over the
// filtered stream, growing the shared inventory; successive calls must then
// use non-decreasing dates, which holds because the scan is chronological.
// With an explicit set it builds a fresh inventory, which is how the start
// boundary is valued without rewinding the shared cursor.
func (e *Engine) valueAsOf(txns []Transaction, on Date) float64 {
	if txns == nil {
		if v, ok := e.dateValues[on]; ok {
			return v
		}
		for e.cursor < len(e.filtered) && !e.filtered[e.cursor].Date.After(on) {
			e.addInteresting(e.inventory, e.filtered[e.cursor])
			e.cursor++
		}
		v := e.value(e.inventory, on)
		e.dateValues[on] = v
		return v
	}

	inventory := NewInventory()
	for _, tx := range txns {
		if tx.Date.After(on) {
			break
		}
		e.addInteresting(inventory, tx)
	}
	return e.value(inventory, on)
}

func (e *Engine) addInteresting(inv *Inventory, tx Transaction) {
	for _, p := range tx.Postings {
		if e.classifier.classify(p.Account) == Interesting {
			inv.AddPosting(p)
		}
	}
}

func (e *Engine) value(inv *Inventory, on Date) float64 {
	cache, ok := e.values[on]
	if !ok {
		cache = make(map[positionKey]Money)
		e.values[on] = cache
	}
	total, _ := inv.Value(e.market, cache, e.currency, on)
	return total.AsFloat()
}

func (e *Engine) lap(phase int, since time.Time) time.Time {
	now := time.Now()
	e.times[phase] += now.Sub(since)
	return now
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
