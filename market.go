package returns

import (
	"slices"
)

// Market holds historical prices for a set of commodities. Each commodity has
// a chronological price history quoted in some currency; currency pairs are
// just commodities whose ticker is a currency (e.g. "USD" quoted in "EUR").
type Market struct {
	histories map[string]*priceHistory
}

// NewMarket returns a new empty price table.
func NewMarket() *Market {
	return &Market{histories: make(map[string]*priceHistory)}
}

func (m *Market) Has(ticker string) bool {
	_, ok := m.histories[ticker]
	return ok
}

// Add records the price of one unit of ticker on a given day. An existing
// price at that day is overwritten.
func (m *Market) Add(ticker string, day Date, price Money) {
	h, ok := m.histories[ticker]
	if !ok {
		h = &priceHistory{}
		m.histories[ticker] = h
	}
	h.Append(day, price)
}

// PriceAsOf returns the price of one unit of ticker on the given day, or the
// most recent price before it.
func (m *Market) PriceAsOf(ticker string, day Date) (Money, bool) {
	h, ok := m.histories[ticker]
	if !ok {
		return Money{}, false
	}
	return h.ValueAsOf(day)
}

// Convert converts an amount into the target currency as of a given date.
// It tries, in order: the identity conversion, a direct price of the amount's
// commodity quoted in target, and the inverse currency pair. It returns false
// when no path resolves; the caller decides how to report that.
func (m *Market) Convert(amount Money, target string, on Date) (Money, bool) {
	if amount.Currency() == target {
		return amount, true
	}

	if price, ok := m.PriceAsOf(amount.Currency(), on); ok && price.Currency() == target {
		return M(amount.Amount().Mul(price.Amount()), target), true
	}

	// The direct pair is not quoted, try the inverse pair.
	if inverse, ok := m.PriceAsOf(target, on); ok && inverse.Currency() == amount.Currency() && !inverse.IsZero() {
		return M(amount.Amount().Div(inverse.Amount()), target), true
	}

	return Money{}, false
}

// priceHistory stores a chronological series of prices. Dates are unique and
// the series is always sorted, so as-of lookups are binary searches.
type priceHistory struct {
	days   []Date
	values []Money
}

func (h *priceHistory) Len() int { return len(h.days) }

// Append adds a point to the history. An existing value at that date is
// overwritten, giving higher priority to the last data.
func (h *priceHistory) Append(on Date, price Money) {
	i, found := h.search(on)
	if found {
		h.values[i] = price
		return
	}
	h.days = slices.Insert(h.days, i, on)
	h.values = slices.Insert(h.values, i, price)
}

// ValueAsOf returns the value on a given day, or the most recent value before it.
func (h *priceHistory) ValueAsOf(day Date) (Money, bool) {
	i, found := h.search(day)
	if found {
		return h.values[i], true
	}
	// `i` is the insertion index; the last entry before the target is at i-1.
	if i == 0 {
		return Money{}, false // No date on or before the given day.
	}
	return h.values[i-1], true
}

func (h *priceHistory) search(day Date) (int, bool) {
	return slices.BinarySearchFunc(h.days, day, func(d, t Date) int {
		if d.After(t) {
			return 1
		}
		if d.Before(t) {
			return -1
		}
		return 0
	})
}
