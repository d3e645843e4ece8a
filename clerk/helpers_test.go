package clerk

import (
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/beanclerk/ast"
	"github.com/robinvdvleuten/beanclerk/parser"
)

func parse(t *testing.T, source string) ast.Directives {
	t.Helper()
	tree, err := parser.ParseString(context.Background(), source)
	assert.NoError(t, err)
	return tree.Directives
}

func candidate(t *testing.T, date, id string, account ast.Account, amount string, metadata ...*ast.Metadata) *ast.Transaction {
	t.Helper()
	d, err := ast.NewDate(date)
	assert.NoError(t, err)

	return ast.NewTransaction(d, "",
		ast.WithFlag("!"),
		ast.WithTransactionMetadata(append([]*ast.Metadata{ast.NewMetadata("id", id)}, metadata...)...),
		ast.WithPostings(ast.NewPosting(account, ast.WithAmount(amount, "CZK"))),
	)
}

func ptr(s string) *string {
	return &s
}
