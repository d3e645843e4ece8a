package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/robinvdvleuten/beanclerk/ast"
	"github.com/shopspring/decimal"
)

// TxnPosting pairs a posting with the transaction it belongs to.
type TxnPosting struct {
	Transaction *ast.Transaction
	Posting     *ast.Posting
}

// PostingsByAccount groups the postings of all transactions by account. Within
// an account, postings keep the order of directives, so the last element is the
// one written last rather than the one dated last.
func PostingsByAccount(directives ast.Directives) map[ast.Account][]TxnPosting {
	postings := make(map[ast.Account][]TxnPosting)
	for _, txn := range directives.Transactions() {
		for _, posting := range txn.Postings {
			postings[posting.Account] = append(postings[posting.Account], TxnPosting{
				Transaction: txn,
				Posting:     posting,
			})
		}
	}
	return postings
}

// ComputeBalance returns the units of currency held by account after all
// directives. Validation errors are ignored: unbalanced or otherwise invalid
// transactions still count. An account without postings has a zero balance.
func ComputeBalance(ctx context.Context, directives ast.Directives, account ast.Account, currency string) (decimal.Decimal, error) {
	if err := account.Validate(); err != nil {
		return decimal.Zero, err
	}
	if !ast.ValidCurrency(currency) {
		return decimal.Zero, fmt.Errorf("'%s' is not a valid currency code", currency)
	}

	l := New()
	if err := l.Process(ctx, directives); err != nil {
		var verr *ValidationErrors
		if !errors.As(err, &verr) {
			return decimal.Zero, err
		}
	}

	return l.Balance(account, currency), nil
}
