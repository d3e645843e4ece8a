package ledger

import (
	"fmt"
	"strings"

	"github.com/robinvdvleuten/beanclerk/ast"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// location formats the bean-check style "filename:line" prefix, falling back
// to the date for directives built in memory.
func location(pos ast.Position, date *ast.Date) string {
	if pos.Filename == "" {
		return date.String()
	}
	return fmt.Sprintf("%s:%d", pos.Filename, pos.Line)
}

// AccountNotOpenError is returned when a directive references an account that isn't open
type AccountNotOpenError struct {
	Account   ast.Account
	Date      *ast.Date
	Pos       ast.Position
	Directive ast.Directive
}

func (e *AccountNotOpenError) Error() string {
	return fmt.Sprintf("%s: Invalid reference to unknown account '%s'", location(e.Pos, e.Date), e.Account)
}

func (e *AccountNotOpenError) GetPosition() ast.Position {
	return e.Pos
}

func (e *AccountNotOpenError) GetDirective() ast.Directive {
	return e.Directive
}

// AccountAlreadyOpenError is returned when trying to open an account that's already open
type AccountAlreadyOpenError struct {
	Account    ast.Account
	Date       *ast.Date
	OpenedDate *ast.Date
	Pos        ast.Position
	Directive  ast.Directive
}

func (e *AccountAlreadyOpenError) Error() string {
	return fmt.Sprintf("%s: Account %s is already open (opened on %s)",
		location(e.Pos, e.Date), e.Account, e.OpenedDate)
}

func (e *AccountAlreadyOpenError) GetPosition() ast.Position {
	return e.Pos
}

func (e *AccountAlreadyOpenError) GetDirective() ast.Directive {
	return e.Directive
}

// TransactionNotBalancedError is returned when a transaction doesn't balance
type TransactionNotBalancedError struct {
	Pos         ast.Position
	Date        *ast.Date
	Narration   string
	Residuals   map[string]string // currency -> unbalanced amount
	Transaction *ast.Transaction
}

// Error returns a bean-check style error message with filename:line prefix.
func (e *TransactionNotBalancedError) Error() string {
	currencies := maps.Keys(e.Residuals)
	slices.Sort(currencies)

	parts := make([]string, len(currencies))
	for i, currency := range currencies {
		parts[i] = e.Residuals[currency] + " " + currency
	}

	return fmt.Sprintf("%s: Transaction does not balance: (%s)", location(e.Pos, e.Date), strings.Join(parts, ", "))
}

func (e *TransactionNotBalancedError) GetPosition() ast.Position {
	return e.Pos
}

func (e *TransactionNotBalancedError) GetDirective() ast.Directive {
	return e.Transaction
}

// AmbiguousPostingError is returned when more than one posting of a
// transaction omits its amount.
type AmbiguousPostingError struct {
	Pos       ast.Position
	Date      *ast.Date
	Directive ast.Directive
}

func (e *AmbiguousPostingError) Error() string {
	return fmt.Sprintf("%s: Transaction has more than one posting without an amount", location(e.Pos, e.Date))
}

func (e *AmbiguousPostingError) GetPosition() ast.Position {
	return e.Pos
}

func (e *AmbiguousPostingError) GetDirective() ast.Directive {
	return e.Directive
}

// InvalidAmountError is returned when an amount cannot be parsed as a decimal
type InvalidAmountError struct {
	Account   ast.Account
	Value     string
	Pos       ast.Position
	Directive ast.Directive
	Err       error
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("%s: Invalid amount %q for account %s: %v",
		location(e.Pos, e.Directive.GetDate()), e.Value, e.Account, e.Err)
}

func (e *InvalidAmountError) Unwrap() error {
	return e.Err
}

func (e *InvalidAmountError) GetPosition() ast.Position {
	return e.Pos
}

func (e *InvalidAmountError) GetDirective() ast.Directive {
	return e.Directive
}

// InvalidCurrencyError is returned when a currency is not a valid commodity symbol
type InvalidCurrencyError struct {
	Currency  string
	Pos       ast.Position
	Directive ast.Directive
}

func (e *InvalidCurrencyError) Error() string {
	return fmt.Sprintf("%s: Invalid currency '%s'", location(e.Pos, e.Directive.GetDate()), e.Currency)
}

func (e *InvalidCurrencyError) GetPosition() ast.Position {
	return e.Pos
}

func (e *InvalidCurrencyError) GetDirective() ast.Directive {
	return e.Directive
}

// CurrencyConstraintError is returned when a posting uses a currency its
// account does not allow
type CurrencyConstraintError struct {
	Account   ast.Account
	Currency  string
	Allowed   []string
	Pos       ast.Position
	Directive ast.Directive
}

func (e *CurrencyConstraintError) Error() string {
	return fmt.Sprintf("%s: Currency %s is not allowed in account %s (allowed: %s)",
		location(e.Pos, e.Directive.GetDate()), e.Currency, e.Account, strings.Join(e.Allowed, ", "))
}

func (e *CurrencyConstraintError) GetPosition() ast.Position {
	return e.Pos
}

func (e *CurrencyConstraintError) GetDirective() ast.Directive {
	return e.Directive
}

// BalanceMismatchError is returned when a balance assertion fails
type BalanceMismatchError struct {
	Date      *ast.Date
	Account   ast.Account
	Expected  string
	Actual    string
	Currency  string
	Pos       ast.Position
	Directive ast.Directive
}

func (e *BalanceMismatchError) Error() string {
	return fmt.Sprintf("%s: Balance mismatch for %s:\n  Expected: %s %s\n  Actual:   %s %s",
		location(e.Pos, e.Date), e.Account,
		e.Expected, e.Currency,
		e.Actual, e.Currency)
}

func (e *BalanceMismatchError) GetPosition() ast.Position {
	return e.Pos
}

func (e *BalanceMismatchError) GetDirective() ast.Directive {
	return e.Directive
}
