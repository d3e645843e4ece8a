package ledger

import (
	"github.com/robinvdvleuten/beanclerk/ast"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// processTransaction validates a transaction and books its postings.
//
// Postings with a valid amount are always booked, even when the transaction
// as a whole is invalid.
func (l *Ledger) processTransaction(txn *ast.Transaction) {
	checked := make(map[ast.Account]bool)
	var inferred *ast.Posting
	residuals := make(map[string]decimal.Decimal)
	// Tolerances are inferred from the units written, not from converted weights.
	amounts := make(map[string][]decimal.Decimal)
	valid := true

	for _, posting := range txn.Postings {
		if !checked[posting.Account] {
			checked[posting.Account] = true
			l.checkOpen(txn, posting.Account)
		}

		if posting.Amount == nil {
			if inferred != nil {
				l.addError(&AmbiguousPostingError{Pos: txn.Pos, Date: txn.Date, Directive: txn})
				valid = false
			}
			inferred = posting
			continue
		}

		units, err := l.postingUnits(txn, posting)
		if err != nil {
			l.addError(err)
			valid = false
			continue
		}
		l.account(posting.Account).Inventory.Add(posting.Amount.Currency, units)
		amounts[posting.Amount.Currency] = append(amounts[posting.Amount.Currency], units)

		weights, err := postingWeights(posting, units)
		if err != nil {
			l.addError(&InvalidAmountError{Account: posting.Account, Value: posting.Amount.Value, Pos: txn.Pos, Directive: txn, Err: err})
			valid = false
			continue
		}
		for _, w := range weights {
			residuals[w.Currency] = residuals[w.Currency].Add(w.Amount)
		}
	}

	if !valid {
		return
	}

	if inferred != nil {
		// The posting without an amount absorbs the residual of every currency.
		for _, currency := range sortedKeys(residuals) {
			if residual := residuals[currency]; !residual.IsZero() {
				l.account(inferred.Account).Inventory.Add(currency, residual.Neg())
			}
		}
		return
	}

	unbalanced := make(map[string]string)
	for _, currency := range sortedKeys(residuals) {
		if !AmountEqual(residuals[currency], decimal.Zero, InferTolerance(amounts[currency])) {
			unbalanced[currency] = residuals[currency].String()
		}
	}
	if len(unbalanced) > 0 {
		l.addError(&TransactionNotBalancedError{
			Pos:         txn.Pos,
			Date:        txn.Date,
			Narration:   txn.Narration,
			Residuals:   unbalanced,
			Transaction: txn,
		})
	}
}

// postingUnits parses the posting amount and checks its currency against the
// account's constraints.
func (l *Ledger) postingUnits(txn *ast.Transaction, posting *ast.Posting) (decimal.Decimal, error) {
	units, err := ParseAmount(posting.Amount)
	if err != nil {
		return decimal.Zero, &InvalidAmountError{Account: posting.Account, Value: posting.Amount.Value, Pos: txn.Pos, Directive: txn, Err: err}
	}

	currency := posting.Amount.Currency
	if !ast.ValidCurrency(currency) {
		return decimal.Zero, &InvalidCurrencyError{Currency: currency, Pos: txn.Pos, Directive: txn}
	}

	if acc, ok := l.accounts[posting.Account]; ok && len(acc.ConstraintCurrencies) > 0 &&
		!slices.Contains(acc.ConstraintCurrencies, currency) {
		return decimal.Zero, &CurrencyConstraintError{
			Account:   posting.Account,
			Currency:  currency,
			Allowed:   acc.ConstraintCurrencies,
			Pos:       txn.Pos,
			Directive: txn,
		}
	}

	return units, nil
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}
