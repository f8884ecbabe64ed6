package returns

import (
	"errors"
	"math"
	"sort"
)

// Cashflow is a dated, signed amount in the reporting currency. Positive
// means money moving into the measured portfolio (an investment), negative
// means money moving out (a withdrawal or liquidation). The XIRR root is
// invariant under flipping every sign, so only consistency matters.
type Cashflow struct {
	Date   Date
	Amount float64
}

// ErrNoSolution is returned when the root finder cannot settle on a rate.
// A non-convergent IRR is an expected financial outcome for degenerate
// cashflow shapes (e.g. all same-sign flows), not a programming error.
var ErrNoSolution = errors.New("no solution found for rate")

// ErrNoCashflows is returned when a measurement window contains no eligible
// cashflows at all.
var ErrNoCashflows = errors.New("no cashflows in range")

const (
	xirrGuess     = 0.1
	xirrMaxIter   = 100
	xirrTolerance = 1e-6
	// A secant step with a vanishing denominator cannot make progress.
	xirrMinStep = 1e-12
)

// XNPV computes the net present value of a series of cashflows at irregular
// intervals, discounted back to the date of the earliest flow:
//
//	NPV(rate) = Σ cf / (1+rate)^((t-t0)/365)
func XNPV(rate float64, cashflows []Cashflow) float64 {
	chron := make([]Cashflow, len(cashflows))
	copy(chron, cashflows)
	sort.SliceStable(chron, func(i, j int) bool { return chron[i].Date.Before(chron[j].Date) })

	t0 := chron[0].Date
	var sum float64
	for _, cf := range chron {
		years := float64(cf.Date.Sub(t0)) / 365.0
		sum += cf.Amount / math.Pow(1+rate, years)
	}
	return sum
}

// XIRR computes the internal rate of return of a series of cashflows at
// irregular intervals: the rate at which XNPV is zero, found by bounded
// secant iteration seeded at 10%. It returns ErrNoCashflows for an empty
// series and ErrNoSolution when the iteration cannot converge.
func XIRR(cashflows []Cashflow) (float64, error) {
	if len(cashflows) == 0 {
		return 0, ErrNoCashflows
	}

	f := func(r float64) float64 { return XNPV(r, cashflows) }

	x0 := xirrGuess
	x1 := x0 * 1.1
	for range xirrMaxIter {
		f0, f1 := f(x0), f(x1)
		if math.IsNaN(f0) || math.IsNaN(f1) {
			return 0, ErrNoSolution
		}
		step := f1 - f0
		if math.Abs(step) < xirrMinStep {
			return 0, ErrNoSolution
		}
		x0, x1 = x1, x1-f1*(x1-x0)/step
		if x1 != 0 && math.Abs(x1-x0)/math.Abs(x1) < xirrTolerance {
			return x1, nil
		}
	}
	return 0, ErrNoSolution
}

// PeriodValue is one row of the TWRR period table: the portfolio balance as
// of a date, and the net external cashflow that occurred on that date.
type PeriodValue struct {
	Balance  float64
	Cashflow float64
}

// TWRR computes the annualized time-weighted rate of return from a period
// table. Each sub-period return is chained:
//
//	partial = 1 + ((balance - cashflow) - last) / last
//
// with the cashflow removed from the closing balance because it lands on the
// sub-period's end date. A sub-period starting from a zero base contributes a
// multiplier of 1. A zero-length window cannot be annualized and returns
// ErrNoSolution.
func TWRR(periods map[Date]PeriodValue) (float64, error) {
	if len(periods) == 0 {
		return 0, ErrNoSolution
	}
	dates := make([]Date, 0, len(periods))
	for d := range periods {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	days := dates[len(dates)-1].Sub(dates[0])
	if days == 0 {
		return 0, ErrNoSolution
	}

	last := periods[dates[0]].Balance
	product := 1.0
	for _, d := range dates[1:] {
		pv := periods[d]
		partial := 1.0
		if last != 0 {
			partial = 1 + ((pv.Balance-pv.Cashflow)-last)/last
		}
		product *= partial
		last = pv.Balance
	}
	return math.Pow(product, 365.0/float64(days)) - 1, nil
}
