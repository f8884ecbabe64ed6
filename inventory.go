package returns

import (
	"github.com/shopspring/decimal"
)

// positionKey is the identity of an open position: commodity, size and cost
// basis. Valuation results are memoized per (date, positionKey).
type positionKey struct {
	commodity  string
	units      string
	costAmount string
	costCur    string
}

type position struct {
	units decimal.Decimal
	cost  *Money // per-unit acquisition cost, nil when not recorded
}

// Inventory is a multiset of open positions keyed by (commodity, cost-basis).
// It supports incremental addition of postings and point-in-time valuation.
type Inventory struct {
	positions map[lotKey]*position
}

// lotKey aggregates postings of the same commodity and cost basis into a
// single position.
type lotKey struct {
	commodity  string
	costAmount string
	costCur    string
}

// NewInventory returns an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{positions: make(map[lotKey]*position)}
}

// Clear removes all positions.
func (inv *Inventory) Clear() {
	clear(inv.positions)
}

// AddPosting merges a posting into the inventory, accumulating units per
// (commodity, cost-basis) lot.
func (inv *Inventory) AddPosting(p Posting) {
	k := lotKey{commodity: p.Amount.Currency()}
	if p.Cost != nil {
		k.costAmount = p.Cost.Amount().String()
		k.costCur = p.Cost.Currency()
	}
	pos, ok := inv.positions[k]
	if !ok {
		pos = &position{cost: p.Cost}
		inv.positions[k] = pos
	}
	pos.units = pos.units.Add(p.Amount.Amount())
}

// Value sums the market value of all positions in the target currency as of
// a given date. A position that cannot be converted and has no cost basis in
// the target currency is excluded from the sum (not an error at this layer);
// the number of such exclusions is returned for the caller to report.
//
// Resolved values are written back into the per-date cache so that repeated
// valuation of the same position at the same date is O(1) after the first
// resolution.
func (inv *Inventory) Value(market *Market, cache map[positionKey]Money, target string, on Date) (total Money, unresolved int) {
	total = M(0, target)
	for k, pos := range inv.positions {
		if pos.units.IsZero() {
			continue
		}
		id := positionKey{
			commodity:  k.commodity,
			units:      pos.units.String(),
			costAmount: k.costAmount,
			costCur:    k.costCur,
		}
		if value, ok := cache[id]; ok {
			total = total.Add(value)
			continue
		}
		value, ok := market.Convert(M(pos.units, k.commodity), target, on)
		if !ok {
			// try to convert the position via its cost basis
			if pos.cost != nil && pos.cost.Currency() == target {
				value = M(pos.cost.Amount().Mul(pos.units), target)
			} else {
				unresolved++
				continue
			}
		}
		cache[id] = value
		total = total.Add(value)
	}
	return total, unresolved
}
