// Package returns computes investment performance metrics for arbitrary,
// dynamically selected groups of accounts, given a chronological ledger of
// transactions and a table of historical prices.
//
// Two metrics are supported:
//   - Money-Weighted Rate of Return (MWRR), the internal rate of return of
//     the net cashflows crossing the portfolio boundary, solved via XIRR.
//   - Time-Weighted Rate of Return (TWRR), the annualized compounded product
//     of sub-period returns, each sub-period bounded by an external cashflow.
//
// The core functionalities include:
//   - Posting Classification: tagging each posting of a transaction as
//     "interesting" (part of the measured portfolio), "internal" (a transfer
//     that must not count as an external flow, e.g. a dividend clearing
//     account) or "external", using caller-supplied account patterns.
//   - Cashflow Extraction: a single pass over the transaction stream that
//     accumulates one signed, currency-converted cashflow per transaction
//     date for the selected account scope.
//   - Point-in-time Valuation: pricing the open positions of the selected
//     accounts on any date, with a cost-basis fallback when no market price
//     converts to the reporting currency.
//   - Return Solving: a bounded secant-method XIRR and a chained sub-period
//     TWRR, both reporting degenerate inputs as values instead of faults.
//
// This package serves as the foundational logic for the `prr` command-line
// tool, which is a thin harness over the Engine.
package returns
