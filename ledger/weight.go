package ledger

import (
	"github.com/robinvdvleuten/beanclerk/ast"
	"github.com/shopspring/decimal"
)

// weight is the contribution of a posting to the transaction balance.
type weight struct {
	Amount   decimal.Decimal
	Currency string
}

// postingWeights calculates the weight of a posting from its units.
// A cost takes precedence over a price; a posting with neither weighs its
// own units. Empty cost specifications weigh the units as well.
func postingWeights(posting *ast.Posting, units decimal.Decimal) ([]weight, error) {
	switch {
	case posting.Cost != nil && posting.Cost.Amount != nil:
		return convertedWeight(units, posting.Cost.Amount, posting.Cost.Total)
	case posting.Price != nil:
		return convertedWeight(units, posting.Price, posting.PriceTotal)
	default:
		return []weight{{Amount: units, Currency: posting.Amount.Currency}}, nil
	}
}

// convertedWeight converts units through a per-unit or total rate.
func convertedWeight(units decimal.Decimal, rate *ast.Amount, total bool) ([]weight, error) {
	value, err := ParseAmount(rate)
	if err != nil {
		return nil, err
	}

	if total {
		// A total applies in the direction of the units.
		if units.IsNegative() {
			value = value.Neg()
		}
		return []weight{{Amount: value, Currency: rate.Currency}}, nil
	}

	return []weight{{Amount: units.Mul(value), Currency: rate.Currency}}, nil
}
