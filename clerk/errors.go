package clerk

import (
	"errors"
	"fmt"

	"github.com/robinvdvleuten/beanclerk/ast"
)

var (
	// ErrMarkNotFound is returned when the ledger has no beanclerk-mark
	// directive for an account.
	ErrMarkNotFound = errors.New("beanclerk mark not found")

	// ErrNoStartDate is returned when no start date was given and the
	// ledger holds no imported transaction to continue from.
	ErrNoStartDate = errors.New("cannot determine the initial import date, use an explicit start date")

	// ErrUnknownAction is returned for a prompt answer that is not an Action.
	ErrUnknownAction = errors.New("unknown action")

	// ErrInvalidCandidate is returned for a fetched transaction that does
	// not have exactly one posting on the imported account and an id.
	ErrInvalidCandidate = errors.New("invalid transaction candidate")
)

// Error describes a failure while importing an account.
type Error struct {
	Account ast.Account
	Op      string
	Err     error
}

func (e *Error) Error() string {
	if e.Account == "" {
		return fmt.Sprintf("clerk error: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("clerk error: %s: %s: %v", e.Account, e.Op, e.Err)
}

// GetAccount returns the account being imported when the error occurred.
func (e *Error) GetAccount() ast.Account {
	return e.Account
}

func (e *Error) Unwrap() error {
	return e.Err
}
