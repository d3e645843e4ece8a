// Package ledger processes Beancount directives into account inventories and
// validates them the way bean-check does for the features importers use.
//
// The ledger validates that:
//   - Accounts are opened before use and not opened twice
//   - Transactions balance per currency within the inferred tolerance
//   - Balance assertions match the inventory at the start of their day
//
// At most one posting per transaction may omit its amount; it receives the
// residual of the others. A pad directive inserts the difference needed to
// satisfy the next balance assertion of its account.
//
// Invalid directives are reported but their postings still reach the
// inventories, so balances can be computed over a ledger that is known to be
// incomplete, such as one holding freshly imported, uncategorized entries.
//
// Example usage:
//
//	l := ledger.New()
//	if err := l.Process(ctx, tree.Directives); err != nil {
//	    var verr *ledger.ValidationErrors
//	    if errors.As(err, &verr) {
//	        for _, e := range verr.Errors {
//	            fmt.Println(e)
//	        }
//	    }
//	}
//	balance := l.Balance("Assets:Bank:Fio", "CZK")
package ledger

import (
	"context"
	"fmt"

	"github.com/robinvdvleuten/beanclerk/ast"
	"github.com/robinvdvleuten/beanclerk/telemetry"
	"github.com/shopspring/decimal"
)

// Ledger holds the state of all accounts after processing directives.
type Ledger struct {
	accounts map[ast.Account]*Account
	pads     map[ast.Account]*ast.Pad
	errors   []error
}

// ValidationErrors wraps multiple validation errors
type ValidationErrors struct {
	Errors []error
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d validation errors occurred", len(e.Errors))
}

// Unwrap returns the underlying errors for error unwrapping
func (e *ValidationErrors) Unwrap() []error {
	return e.Errors
}

// New creates a new empty ledger
func New() *Ledger {
	return &Ledger{
		accounts: make(map[ast.Account]*Account),
		pads:     make(map[ast.Account]*ast.Pad),
	}
}

// Process applies the directives in date order. The given slice is not
// reordered. All validation errors are collected and returned together as
// *ValidationErrors.
func (l *Ledger) Process(ctx context.Context, directives ast.Directives) error {
	timer := telemetry.FromContext(ctx).Start(fmt.Sprintf("ledger (%d directives)", len(directives)))
	defer timer.End()

	for _, directive := range directives.Sorted() {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch d := directive.(type) {
		case *ast.Open:
			l.processOpen(d)
		case *ast.Close:
			l.processClose(d)
		case *ast.Transaction:
			l.processTransaction(d)
		case *ast.Pad:
			l.processPad(d)
		case *ast.Balance:
			l.processBalance(d)
		case *ast.Note:
			l.checkOpen(d, d.Account)
		case *ast.Document:
			l.checkOpen(d, d.Account)
		}
	}

	if len(l.errors) > 0 {
		return &ValidationErrors{Errors: l.errors}
	}
	return nil
}

// Errors returns all collected errors
func (l *Ledger) Errors() []error {
	return l.errors
}

// GetAccount returns an account by name
func (l *Ledger) GetAccount(name ast.Account) (*Account, bool) {
	acc, ok := l.accounts[name]
	return acc, ok
}

// Balance returns the units of currency held by account. Unknown accounts
// and currencies have a zero balance.
func (l *Ledger) Balance(account ast.Account, currency string) decimal.Decimal {
	acc, ok := l.accounts[account]
	if !ok {
		return decimal.Zero
	}
	return acc.Inventory.Get(currency)
}

func (l *Ledger) addError(err error) {
	l.errors = append(l.errors, err)
}

// account returns the state of an account, creating it on first use so that
// postings to accounts that were never opened still accumulate.
func (l *Ledger) account(name ast.Account) *Account {
	acc, ok := l.accounts[name]
	if !ok {
		acc = &Account{Name: name, Inventory: NewInventory()}
		l.accounts[name] = acc
	}
	return acc
}

// checkOpen records an error unless account is open on the directive's date.
func (l *Ledger) checkOpen(d ast.Directive, account ast.Account) bool {
	if acc, ok := l.accounts[account]; ok && acc.IsOpen(d.GetDate()) {
		return true
	}
	l.addError(&AccountNotOpenError{Account: account, Date: d.GetDate(), Pos: d.Position(), Directive: d})
	return false
}

func (l *Ledger) processOpen(open *ast.Open) {
	acc := l.account(open.Account)
	if acc.OpenDate != nil {
		l.addError(&AccountAlreadyOpenError{
			Account:    open.Account,
			Date:       open.Date,
			OpenedDate: acc.OpenDate,
			Pos:        open.Pos,
			Directive:  open,
		})
		return
	}

	for _, currency := range open.ConstraintCurrencies {
		if !ast.ValidCurrency(currency) {
			l.addError(&InvalidCurrencyError{Currency: currency, Pos: open.Pos, Directive: open})
		}
	}

	acc.OpenDate = open.Date
	acc.ConstraintCurrencies = open.ConstraintCurrencies
	acc.BookingMethod = open.BookingMethod
}

func (l *Ledger) processClose(close *ast.Close) {
	if l.checkOpen(close, close.Account) {
		l.accounts[close.Account].CloseDate = close.Date
	}
}

func (l *Ledger) processPad(pad *ast.Pad) {
	okAccount := l.checkOpen(pad, pad.Account)
	okSource := l.checkOpen(pad, pad.AccountPad)
	if okAccount && okSource {
		l.pads[pad.Account] = pad
	}
}

func (l *Ledger) processBalance(balance *ast.Balance) {
	l.checkOpen(balance, balance.Account)

	expected, err := ParseAmount(balance.Amount)
	if err != nil {
		l.addError(&InvalidAmountError{Account: balance.Account, Value: balance.Amount.Value, Pos: balance.Pos, Directive: balance, Err: err})
		return
	}

	currency := balance.Amount.Currency
	acc := l.account(balance.Account)
	actual := acc.Inventory.Get(currency)

	if pad, ok := l.pads[balance.Account]; ok {
		delete(l.pads, balance.Account)
		if diff := expected.Sub(actual); !diff.IsZero() {
			acc.Inventory.Add(currency, diff)
			l.account(pad.AccountPad).Inventory.Add(currency, diff.Neg())
			actual = expected
		}
	}

	if !AmountEqual(expected, actual, InferTolerance([]decimal.Decimal{expected})) {
		l.addError(&BalanceMismatchError{
			Date:      balance.Date,
			Account:   balance.Account,
			Expected:  expected.String(),
			Actual:    actual.String(),
			Currency:  currency,
			Pos:       balance.Pos,
			Directive: balance,
		})
	}
}
