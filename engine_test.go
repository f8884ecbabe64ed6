package returns

import (
	"math"
	"testing"
)

// scenarioA is a single lump-sum investment: 10 FUND bought for $1000 on
// 2020-01-01, sold for $1200 one year later.
func scenarioA() (*Ledger, *Market) {
	ledger := newTestLedger(
		tx("2020-01-01",
			postCost("Assets:Brokerage", M(10, "FUND"), USD(100)),
			post("Assets:Bank", USD(-1000)),
		),
		tx("2021-01-01",
			postCost("Assets:Brokerage", M(-10, "FUND"), USD(100)),
			post("Assets:Bank", USD(1200)),
		),
	)
	market := NewMarket()
	market.Add("FUND", NewDate(2020, 1, 1), USD(100))
	market.Add("FUND", NewDate(2021, 1, 1), USD(120))
	return ledger, market
}

func brokerageRequest() Request {
	return Request{
		Interesting: []string{`Assets:Brokerage(:.*)?`},
		Internal:    []string{`Income:.*`},
		Start:       NewDate(2020, 1, 1),
		End:         NewDate(2021, 1, 1),
		WantMWRR:    true,
		WantTWRR:    true,
	}
}

func TestCalculate_LumpSumInvestment(t *testing.T) {
	ledger, market := scenarioA()
	e := New(ledger, market, "USD")

	res, err := e.Calculate(brokerageRequest())
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if res.MWRR == nil {
		t.Fatal("Calculate() MWRR = nil, want ~20%")
	}
	if got := float64(*res.MWRR) / 100; math.Abs(got-0.20) > 0.01 {
		t.Errorf("MWRR = %v, want ~0.20", got)
	}
	if res.TWRR == nil {
		t.Fatal("Calculate() TWRR = nil, want ~20%")
	}
	if got := float64(*res.TWRR) / 100; math.Abs(got-0.20) > 0.01 {
		t.Errorf("TWRR = %v, want ~0.20", got)
	}

	// The bank account is the external counterpart on both sides.
	if got, want := res.InflowAccounts, []string{"Assets:Bank"}; len(got) != 1 || got[0] != want[0] {
		t.Errorf("InflowAccounts = %v, want %v", got, want)
	}
	if got, want := res.OutflowAccounts, []string{"Assets:Bank"}; len(got) != 1 || got[0] != want[0] {
		t.Errorf("OutflowAccounts = %v, want %v", got, want)
	}
	if len(e.Diagnostics()) != 0 {
		t.Errorf("Diagnostics() = %v, want none", e.Diagnostics())
	}
	if e.Elapsed() <= 0 {
		t.Error("Elapsed() = 0, want a positive duration")
	}
}

func TestCalculate_WindowExclusion(t *testing.T) {
	ledger, market := scenarioA()
	market.Add("FUND", NewDate(2019, 12, 1), USD(90))
	// One transaction before the window, one after it.
	ledger.Append(
		tx("2019-12-01",
			postCost("Assets:Brokerage", M(5, "FUND"), USD(90)),
			post("Assets:Bank", USD(-450)),
		),
		tx("2021-02-01",
			post("Assets:Brokerage:Cash", USD(100)),
			post("Assets:Bank", USD(-100)),
		),
	)
	e := New(ledger, market, "USD")

	req := brokerageRequest()
	res, err := e.Calculate(req)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	window := NewRange(req.Start, req.End)
	for _, cf := range res.Cashflows {
		if !window.Contains(cf.Date) {
			t.Errorf("cashflow at %s is outside %s", cf.Date, window)
		}
	}
	for d := range res.Periods {
		if !window.Contains(d) {
			t.Errorf("period entry at %s is outside %s", d, window)
		}
	}
}

func TestCalculate_SyntheticBoundaryFlows(t *testing.T) {
	// Holdings exist before the window and nothing trades inside it: the
	// window must be closed by exactly one synthetic flow on each boundary.
	ledger := newTestLedger(
		tx("2019-06-01",
			postCost("Assets:Brokerage", M(10, "FUND"), USD(100)),
			post("Assets:Bank", USD(-1000)),
		),
	)
	market := NewMarket()
	market.Add("FUND", NewDate(2019, 6, 1), USD(100))
	market.Add("FUND", NewDate(2020, 1, 1), USD(110))
	market.Add("FUND", NewDate(2021, 1, 1), USD(120))
	e := New(ledger, market, "USD")

	req := brokerageRequest()
	res, err := e.Calculate(req)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if len(res.Cashflows) != 2 {
		t.Fatalf("Cashflows = %v, want exactly the two boundary flows", res.Cashflows)
	}
	if got := res.Cashflows[0]; got.Date != req.Start || math.Abs(got.Amount-1100) > 1e-9 {
		t.Errorf("opening flow = %+v, want (%s, 1100)", got, req.Start)
	}
	if got := res.Cashflows[1]; got.Date != req.End || math.Abs(got.Amount+1200) > 1e-9 {
		t.Errorf("closing flow = %+v, want (%s, -1200)", got, req.End)
	}
}

func TestCalculate_InternalCancellation(t *testing.T) {
	// A dividend sweep nets to zero and must not create a cashflow or a
	// period boundary.
	ledger, market := scenarioA()
	sweep := NewDate(2020, 6, 1)
	ledger.Append(tx("2020-06-01",
		post("Assets:Brokerage:Cash", USD(50)),
		post("Income:Dividends", USD(-50)),
	))
	e := New(ledger, market, "USD")

	res, err := e.Calculate(brokerageRequest())
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	for _, cf := range res.Cashflows {
		if cf.Date == sweep {
			t.Errorf("cashflow %+v emitted for a wholly internal transaction", cf)
		}
	}
	if _, ok := res.Periods[sweep]; ok {
		t.Errorf("period entry created for a wholly internal transaction")
	}
}

func TestCalculate_InternalTransactionsDoNotMoveReturns(t *testing.T) {
	baseLedger, market := scenarioA()
	e := New(baseLedger, market, "USD")
	base, err := e.Calculate(brokerageRequest())
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}

	// The same ledger plus transactions with no external effect: a wholly
	// internal entry and a transfer between two measured accounts.
	ledger, market := scenarioA()
	ledger.Append(
		tx("2020-04-01",
			post("Income:Dividends", USD(-30)),
			post("Income:Dividends:Tax", USD(30)),
		),
		tx("2020-07-01",
			post("Assets:Brokerage", M(-2, "FUND")),
			post("Assets:Brokerage:Sub", M(2, "FUND")),
		),
	)
	market.Add("FUND", NewDate(2020, 7, 1), USD(115))
	e = New(ledger, market, "USD")
	got, err := e.Calculate(brokerageRequest())
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}

	if base.MWRR == nil || got.MWRR == nil || !got.MWRR.Equal(*base.MWRR) {
		t.Errorf("MWRR = %v, want %v", got.MWRR, base.MWRR)
	}
	if base.TWRR == nil || got.TWRR == nil || !got.TWRR.Equal(*base.TWRR) {
		t.Errorf("TWRR = %v, want %v", got.TWRR, base.TWRR)
	}
}

func TestCalculate_EmptyCashflowSet(t *testing.T) {
	ledger, market := scenarioA()
	e := New(ledger, market, "USD")

	res, err := e.Calculate(Request{
		Interesting: []string{`Assets:Nothing`},
		Start:       NewDate(2020, 1, 1),
		End:         NewDate(2021, 1, 1),
		WantMWRR:    true,
	})
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if res.MWRR != nil {
		t.Errorf("MWRR = %v, want nil", *res.MWRR)
	}
	if got := e.Diagnostics(); len(got) != 1 {
		t.Errorf("Diagnostics() = %v, want exactly one", got)
	}
}

func TestCalculate_ConversionFailureReportedOnce(t *testing.T) {
	// The same unpriced holding shows up in three transactions on the same
	// date: one diagnostic, not three, and the posting contributes zero.
	var txs []Transaction
	for range 3 {
		txs = append(txs, tx("2020-03-01",
			post("Assets:Brokerage:Cash", USD(100)),
			postAt("Assets:Brokerage:Weird", M(1, "XXX"), "ledger.jsonl:7"),
			post("Assets:Bank", USD(-100)),
		))
	}
	ledger := newTestLedger(txs...)
	e := New(ledger, NewMarket(), "USD")

	res, err := e.Calculate(Request{
		Interesting: []string{`Assets:Brokerage(:.*)?`},
		WantMWRR:    true,
	})
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	got := e.Diagnostics()
	if len(got) != 1 {
		t.Fatalf("Diagnostics() = %v, want exactly one", got)
	}
	if got[0].Source != "ledger.jsonl:7" {
		t.Errorf("Diagnostic source = %q, want the posting location", got[0].Source)
	}
	// Each transaction contributed its convertible $100 only.
	for _, cf := range res.Cashflows[:3] {
		if math.Abs(cf.Amount-100) > 1e-9 {
			t.Errorf("cashflow = %+v, want 100", cf)
		}
	}

	// A second call over the same data must not report it again.
	if _, err := e.Calculate(Request{
		Interesting: []string{`Assets:Brokerage(:.*)?`},
		WantMWRR:    true,
	}); err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if got := e.Diagnostics(); len(got) != 1 {
		t.Errorf("Diagnostics() after second call = %v, want still one", got)
	}
}

func TestCalculate_NoMetricRequestedIsANoOp(t *testing.T) {
	ledger, market := scenarioA()
	e := New(ledger, market, "USD")

	res, err := e.Calculate(Request{Interesting: []string{`Assets:.*`}})
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if res.MWRR != nil || res.TWRR != nil || res.Cashflows != nil {
		t.Errorf("Calculate() = %+v, want an empty result", res)
	}
	if len(e.Diagnostics()) != 0 {
		t.Errorf("Diagnostics() = %v, want none", e.Diagnostics())
	}
}

func TestCalculate_InvalidPattern(t *testing.T) {
	ledger, market := scenarioA()
	e := New(ledger, market, "USD")
	if _, err := e.Calculate(Request{Interesting: []string{`Assets:(`}, WantMWRR: true}); err == nil {
		t.Error("Calculate() expected an error for a malformed pattern")
	}
}

func TestCalculate_DefaultWindow(t *testing.T) {
	// No explicit dates: the window runs from the beginning of time to
	// today, and no period entry is created at MinDate.
	ledger, market := scenarioA()
	market.Add("FUND", Today(), USD(120))
	e := New(ledger, market, "USD")

	res, err := e.Calculate(Request{
		Interesting: []string{`Assets:Brokerage(:.*)?`},
		WantMWRR:    true,
		WantTWRR:    true,
	})
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if res.MWRR == nil {
		t.Fatal("MWRR = nil, want a rate")
	}
	if _, ok := res.Periods[MinDate]; ok {
		t.Error("period entry created at MinDate")
	}
}

func TestCalculate_SecondCallResetsState(t *testing.T) {
	ledger, market := scenarioA()
	e := New(ledger, market, "USD")

	first, err := e.Calculate(brokerageRequest())
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	second, err := e.Calculate(brokerageRequest())
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if first.MWRR == nil || second.MWRR == nil || !second.MWRR.Equal(*first.MWRR) {
		t.Errorf("second MWRR = %v, want %v", second.MWRR, first.MWRR)
	}
	if len(second.Cashflows) != len(first.Cashflows) {
		t.Errorf("second Cashflows = %v, want %v", second.Cashflows, first.Cashflows)
	}
}
