package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Inventory holds the units of each currency in an account. Lots are not
// tracked; an inventory is a plain sum per currency.
type Inventory struct {
	units map[string]decimal.Decimal
}

// NewInventory creates an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{units: make(map[string]decimal.Decimal)}
}

// Add adds amount units of currency.
func (inv *Inventory) Add(currency string, amount decimal.Decimal) {
	inv.units[currency] = inv.units[currency].Add(amount)
}

// Get returns the units of currency, zero when there are none.
func (inv *Inventory) Get(currency string) decimal.Decimal {
	return inv.units[currency]
}

// Currencies returns the currencies held, sorted.
func (inv *Inventory) Currencies() []string {
	currencies := maps.Keys(inv.units)
	slices.Sort(currencies)
	return currencies
}

// IsEmpty returns true when every currency sums to zero.
func (inv *Inventory) IsEmpty() bool {
	for _, amount := range inv.units {
		if !amount.IsZero() {
			return false
		}
	}
	return true
}

// String renders the inventory as "1.00 EUR, 2.00 USD".
func (inv *Inventory) String() string {
	parts := make([]string, 0, len(inv.units))
	for _, currency := range inv.Currencies() {
		parts = append(parts, inv.units[currency].String()+" "+currency)
	}
	return strings.Join(parts, ", ")
}
