package returns

import (
	"errors"
	"math"
	"testing"
)

func TestXNPV_DiscountsToEarliestFlow(t *testing.T) {
	cashflows := []Cashflow{
		{Date: NewDate(2020, 1, 1), Amount: 1000},
		{Date: NewDate(2021, 1, 1), Amount: -1200},
	}
	// At rate 0 the NPV is just the sum.
	if got, want := XNPV(0, cashflows), -200.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("XNPV(0) = %v, want %v", got, want)
	}
	// 2020 is a leap year: 366 days between the two flows.
	want := 1000 - 1200/math.Pow(1.2, 366.0/365.0)
	if got := XNPV(0.2, cashflows); math.Abs(got-want) > 1e-9 {
		t.Errorf("XNPV(0.2) = %v, want %v", got, want)
	}
}

func TestXIRR_LumpSumInvestment(t *testing.T) {
	// 1000 in on 2020-01-01, 1200 out one year later: the rate is ~20%.
	cashflows := []Cashflow{
		{Date: NewDate(2020, 1, 1), Amount: 1000},
		{Date: NewDate(2021, 1, 1), Amount: -1200},
	}
	rate, err := XIRR(cashflows)
	if err != nil {
		t.Fatalf("XIRR() error = %v", err)
	}
	if math.Abs(rate-0.20) > 0.01 {
		t.Errorf("XIRR() = %v, want ~0.20", rate)
	}
}

func TestXIRR_Empty(t *testing.T) {
	_, err := XIRR(nil)
	if !errors.Is(err, ErrNoCashflows) {
		t.Errorf("XIRR(nil) error = %v, want ErrNoCashflows", err)
	}
}

func TestXIRR_SameSignFlowsHasNoSolution(t *testing.T) {
	// All inflows: the NPV never crosses zero for any rate > -1.
	cashflows := []Cashflow{
		{Date: NewDate(2020, 1, 1), Amount: 1000},
		{Date: NewDate(2020, 6, 1), Amount: 500},
		{Date: NewDate(2021, 1, 1), Amount: 700},
	}
	if _, err := XIRR(cashflows); !errors.Is(err, ErrNoSolution) {
		t.Errorf("XIRR() error = %v, want ErrNoSolution", err)
	}
}

func TestXIRR_UnorderedInputIsSorted(t *testing.T) {
	ordered := []Cashflow{
		{Date: NewDate(2020, 1, 1), Amount: 1000},
		{Date: NewDate(2020, 7, 1), Amount: 500},
		{Date: NewDate(2021, 1, 1), Amount: -1700},
	}
	shuffled := []Cashflow{ordered[2], ordered[0], ordered[1]}

	a, err := XIRR(ordered)
	if err != nil {
		t.Fatalf("XIRR(ordered) error = %v", err)
	}
	b, err := XIRR(shuffled)
	if err != nil {
		t.Fatalf("XIRR(shuffled) error = %v", err)
	}
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("XIRR order dependent: %v != %v", a, b)
	}
}

func TestTWRR_SingleGrowthPeriod(t *testing.T) {
	periods := map[Date]PeriodValue{
		NewDate(2020, 1, 1): {Balance: 1000},
		NewDate(2021, 1, 1): {Balance: 1200},
	}
	rate, err := TWRR(periods)
	if err != nil {
		t.Fatalf("TWRR() error = %v", err)
	}
	want := math.Pow(1.2, 365.0/366.0) - 1
	if math.Abs(rate-want) > 1e-9 {
		t.Errorf("TWRR() = %v, want %v", rate, want)
	}
}

func TestTWRR_CashflowRemovedFromClosingBalance(t *testing.T) {
	// A 500 deposit lands on 2020-07-01; growth must be measured on the
	// pre-deposit balance.
	periods := map[Date]PeriodValue{
		NewDate(2020, 1, 1): {Balance: 1000},
		NewDate(2020, 7, 1): {Balance: 1600, Cashflow: 500},
		NewDate(2021, 1, 1): {Balance: 1760},
	}
	rate, err := TWRR(periods)
	if err != nil {
		t.Fatalf("TWRR() error = %v", err)
	}
	// Sub-period 1: (1600-500)/1000 = 1.1; sub-period 2: 1760/1600 = 1.1.
	want := math.Pow(1.1*1.1, 365.0/366.0) - 1
	if math.Abs(rate-want) > 1e-9 {
		t.Errorf("TWRR() = %v, want %v", rate, want)
	}
}

func TestTWRR_ChainingMatchesCombinedWindow(t *testing.T) {
	// With no intermediate cashflow the chained product over B0, B1, B2 is
	// the annualized form of (B1/B0)*(B2/B1) - 1.
	periods := map[Date]PeriodValue{
		NewDate(2020, 1, 1): {Balance: 1000},
		NewDate(2020, 7, 1): {Balance: 1100},
		NewDate(2021, 1, 1): {Balance: 1320},
	}
	rate, err := TWRR(periods)
	if err != nil {
		t.Fatalf("TWRR() error = %v", err)
	}
	want := math.Pow((1100.0/1000.0)*(1320.0/1100.0), 365.0/366.0) - 1
	if math.Abs(rate-want) > 1e-9 {
		t.Errorf("TWRR() = %v, want %v", rate, want)
	}
}

func TestTWRR_ZeroBaseSubPeriod(t *testing.T) {
	// The portfolio starts empty before the first deposit: the first
	// sub-period contributes a multiplier of 1, no division fault.
	periods := map[Date]PeriodValue{
		NewDate(2020, 1, 1): {Balance: 0},
		NewDate(2020, 7, 1): {Balance: 1000, Cashflow: 1000},
		NewDate(2021, 1, 1): {Balance: 1100},
	}
	rate, err := TWRR(periods)
	if err != nil {
		t.Fatalf("TWRR() error = %v", err)
	}
	want := math.Pow(1.1, 365.0/366.0) - 1
	if math.Abs(rate-want) > 1e-9 {
		t.Errorf("TWRR() = %v, want %v", rate, want)
	}
}

func TestTWRR_ZeroLengthWindow(t *testing.T) {
	periods := map[Date]PeriodValue{
		NewDate(2020, 1, 1): {Balance: 1000},
	}
	if _, err := TWRR(periods); !errors.Is(err, ErrNoSolution) {
		t.Errorf("TWRR() error = %v, want ErrNoSolution", err)
	}
}
