package ledger

import (
	"fmt"

	"github.com/robinvdvleuten/beanclerk/ast"
	"github.com/shopspring/decimal"
)

// toleranceMultiplier is applied to the smallest unit of the most precise
// amount, so 2 decimal places give a tolerance of 0.005.
var toleranceMultiplier = decimal.NewFromFloat(0.5)

// ParseAmount converts a ast.Amount to a decimal.Decimal
func ParseAmount(amount *ast.Amount) (decimal.Decimal, error) {
	if amount == nil {
		return decimal.Zero, fmt.Errorf("amount is nil")
	}

	d, err := decimal.NewFromString(amount.Value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount value %q: %w", amount.Value, err)
	}

	return d, nil
}

// InferTolerance calculates the tolerance from the precision of amounts:
// half of the smallest unit of the most precise amount. Amounts without
// decimal places must balance exactly.
func InferTolerance(amounts []decimal.Decimal) decimal.Decimal {
	minExp := int32(0)
	for _, amount := range amounts {
		if exp := amount.Exponent(); exp < minExp {
			minExp = exp
		}
	}

	if minExp == 0 {
		return decimal.Zero
	}
	return decimal.New(1, minExp).Mul(toleranceMultiplier)
}

// AmountEqual checks if two amounts are equal within tolerance
func AmountEqual(a, b decimal.Decimal, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}
