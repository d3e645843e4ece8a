package clerk

import (
	"github.com/robinvdvleuten/beanclerk/ast"
	"github.com/robinvdvleuten/beanclerk/importers"
	"github.com/robinvdvleuten/beanclerk/ledger"
)

// TransactionExists reports whether a transaction posting to account already
// carries id in its metadata.
func TransactionExists(directives ast.Directives, account ast.Account, id string) (bool, error) {
	if err := account.Validate(); err != nil {
		return false, err
	}

	for _, tp := range ledger.PostingsByAccount(directives)[account] {
		if v, ok := tp.Transaction.Meta(importers.IDKey); ok && v == id {
			return true, nil
		}
	}
	return false, nil
}

// LastImportDate returns the date of the last transaction posting to account
// that carries an id. "Last" follows the order of directives, not their
// dates, so an unsorted ledger yields the one written last. It returns nil
// when no transaction was imported yet.
func LastImportDate(directives ast.Directives, account ast.Account) (*ast.Date, error) {
	if err := account.Validate(); err != nil {
		return nil, err
	}

	postings := ledger.PostingsByAccount(directives)[account]
	for i := len(postings) - 1; i >= 0; i-- {
		if _, ok := postings[i].Transaction.Meta(importers.IDKey); ok {
			return postings[i].Transaction.Date, nil
		}
	}
	return nil, nil
}
