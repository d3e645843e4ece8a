package ledger

import (
	"github.com/robinvdvleuten/beanclerk/ast"
)

// Account represents an account in the ledger
type Account struct {
	Name                 ast.Account
	OpenDate             *ast.Date
	CloseDate            *ast.Date
	ConstraintCurrencies []string
	BookingMethod        string
	Inventory            *Inventory
}

// IsOpen returns true if the account is open at the given date
func (a *Account) IsOpen(date *ast.Date) bool {
	if a.OpenDate == nil {
		return false
	}

	// Account must be opened before or on the date
	if a.OpenDate.After(date.Time) {
		return false
	}

	// Transactions are allowed ON the close date, but not AFTER
	if a.CloseDate != nil && date.After(a.CloseDate.Time) {
		return false
	}

	return true
}

// IsClosed returns true if the account has been closed.
func (a *Account) IsClosed() bool {
	return a.CloseDate != nil
}
