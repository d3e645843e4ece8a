package clerk

import (
	"fmt"

	"github.com/robinvdvleuten/beanclerk/ast"
	"github.com/robinvdvleuten/beanclerk/config"
	"github.com/shopspring/decimal"
)

// Categorize applies rule to a candidate with a single posting. The result
// is a new transaction: the balancing posting on the rule's account, when it
// has one, is appended and the rule's flag, payee and narration override the
// fetched ones. Without a rule the candidate is returned unchanged.
func Categorize(txn *ast.Transaction, rule *config.Rule) (*ast.Transaction, error) {
	if len(txn.Postings) != 1 {
		return nil, fmt.Errorf("%w: expected 1 posting, got %d", ErrInvalidCandidate, len(txn.Postings))
	}
	if rule == nil {
		return txn, nil
	}

	categorized := txn.Clone()

	if rule.Account != "" {
		units := txn.Postings[0].Amount
		if units == nil {
			return nil, fmt.Errorf("%w: posting has no amount", ErrInvalidCandidate)
		}
		negated, err := negate(units.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCandidate, err)
		}
		categorized.Postings = append(categorized.Postings,
			ast.NewPosting(rule.Account, ast.WithAmount(negated, units.Currency)))
	}

	if rule.Flag != nil {
		categorized.Flag = *rule.Flag
	}
	if rule.Payee != nil {
		categorized.Payee = *rule.Payee
	}
	if rule.Narration != nil {
		categorized.Narration = *rule.Narration
	}

	return categorized, nil
}

// negate returns -value written with the same number of decimal places.
func negate(value string) (string, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return "", fmt.Errorf("invalid amount %q: %w", value, err)
	}
	if exp := d.Exponent(); exp < 0 {
		return d.Neg().StringFixed(-exp), nil
	}
	return d.Neg().String(), nil
}
