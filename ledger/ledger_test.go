package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/beanclerk/ast"
	"github.com/robinvdvleuten/beanclerk/parser"
	"github.com/shopspring/decimal"
)

func parse(t *testing.T, source string) ast.Directives {
	t.Helper()
	tree, err := parser.ParseBytes(context.Background(), "test.beancount", []byte(source))
	assert.NoError(t, err)
	return tree.Directives
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

func validationErrors(t *testing.T, err error) []error {
	t.Helper()
	var verr *ValidationErrors
	assert.True(t, errors.As(err, &verr), "expected validation errors, got %v", err)
	return verr.Errors
}

func TestProcessPadInferenceAndBalance(t *testing.T) {
	directives := parse(t, `2023-01-01 open Assets:Bank CZK
2023-01-01 open Expenses:Food
2023-01-01 open Equity:Opening
2023-01-01 pad Assets:Bank Equity:Opening
2023-01-02 balance Assets:Bank 1000.00 CZK
2023-01-03 * "Lunch"
  Assets:Bank  -150.50 CZK
  Expenses:Food
2023-01-04 balance Assets:Bank 849.50 CZK
`)

	l := New()
	assert.NoError(t, l.Process(context.Background(), directives))

	assertDecimal(t, "849.50", l.Balance("Assets:Bank", "CZK"))
	assertDecimal(t, "150.50", l.Balance("Expenses:Food", "CZK"))
	assertDecimal(t, "-1000.00", l.Balance("Equity:Opening", "CZK"))
	assertDecimal(t, "0", l.Balance("Assets:Unknown", "CZK"))

	acc, ok := l.GetAccount("Assets:Bank")
	assert.True(t, ok)
	assert.Equal(t, []string{"CZK"}, acc.ConstraintCurrencies)
	assert.Equal(t, "849.5 CZK", acc.Inventory.String())
}

func TestProcessUsesDateOrder(t *testing.T) {
	directives := parse(t, `2023-01-05 * "Later, written first"
  Assets:Bank  -10.00 EUR
  Expenses:Food
2023-01-01 open Assets:Bank
2023-01-01 open Expenses:Food
`)

	l := New()
	assert.NoError(t, l.Process(context.Background(), directives))
	assertDecimal(t, "-10.00", l.Balance("Assets:Bank", "EUR"))

	// The input keeps its order.
	assert.Equal(t, "transaction", directives[0].Directive())
}

func TestProcessValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		check  func(t *testing.T, err error)
	}{
		{
			name: "unbalanced transaction",
			source: `2023-01-01 open Assets:Bank
2023-01-01 open Expenses:Food
2023-01-02 * "Lunch"
  Assets:Bank    -10.00 EUR
  Expenses:Food    9.00 EUR
`,
			check: func(t *testing.T, err error) {
				var target *TransactionNotBalancedError
				assert.True(t, errors.As(err, &target))
				assert.Equal(t, "-1", target.Residuals["EUR"])
				assert.Equal(t, "test.beancount:3: Transaction does not balance: (-1 EUR)", target.Error())
			},
		},
		{
			name: "account not open",
			source: `2023-01-01 open Assets:Bank
2023-01-02 * "Lunch"
  Assets:Bank    -10.00 EUR
  Expenses:Food
`,
			check: func(t *testing.T, err error) {
				var target *AccountNotOpenError
				assert.True(t, errors.As(err, &target))
				assert.Equal(t, ast.Account("Expenses:Food"), target.Account)
				assert.Equal(t, 2, target.GetPosition().Line)
			},
		},
		{
			name: "used after close",
			source: `2023-01-01 open Assets:Bank
2023-01-01 open Expenses:Food
2023-01-02 close Assets:Bank
2023-01-03 * "Lunch"
  Assets:Bank    -10.00 EUR
  Expenses:Food
`,
			check: func(t *testing.T, err error) {
				var target *AccountNotOpenError
				assert.True(t, errors.As(err, &target))
				assert.Equal(t, ast.Account("Assets:Bank"), target.Account)
			},
		},
		{
			name: "opened twice",
			source: `2023-01-01 open Assets:Bank
2023-02-01 open Assets:Bank
`,
			check: func(t *testing.T, err error) {
				var target *AccountAlreadyOpenError
				assert.True(t, errors.As(err, &target))
				assert.Equal(t, "2023-01-01", target.OpenedDate.String())
			},
		},
		{
			name: "balance mismatch",
			source: `2023-01-01 open Assets:Bank
2023-01-01 open Expenses:Food
2023-01-02 * "Lunch"
  Assets:Bank    -10.00 EUR
  Expenses:Food
2023-01-03 balance Assets:Bank -9.00 EUR
`,
			check: func(t *testing.T, err error) {
				var target *BalanceMismatchError
				assert.True(t, errors.As(err, &target))
				assert.Equal(t, "-9", target.Expected)
				assert.Equal(t, "-10", target.Actual)
			},
		},
		{
			name: "currency constraint",
			source: `2023-01-01 open Assets:Bank CZK
2023-01-01 open Expenses:Food
2023-01-02 * "Lunch"
  Assets:Bank    -10.00 EUR
  Expenses:Food
`,
			check: func(t *testing.T, err error) {
				var target *CurrencyConstraintError
				assert.True(t, errors.As(err, &target))
				assert.Equal(t, "EUR", target.Currency)
			},
		},
		{
			name: "two postings without amount",
			source: `2023-01-01 open Assets:Bank
2023-01-01 open Expenses:Food
2023-01-01 open Expenses:Drinks
2023-01-02 * "Lunch"
  Assets:Bank    -10.00 EUR
  Expenses:Food
  Expenses:Drinks
`,
			check: func(t *testing.T, err error) {
				var target *AmbiguousPostingError
				assert.True(t, errors.As(err, &target))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New().Process(context.Background(), parse(t, tt.source))
			assert.Error(t, err)
			validationErrors(t, err)
			tt.check(t, err)
		})
	}
}

func TestProcessTolerance(t *testing.T) {
	tests := []struct {
		name    string
		posting string
		wantErr bool
	}{
		{"within price tolerance", "  Assets:Cash  -10.00 USD", false},
		{"integers balance exactly", "  Assets:Cash  -10 USD", true},
		{"beyond tolerance", "  Assets:Cash  -10.01 USD", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := `2023-01-01 open Assets:Cash
2023-01-01 open Assets:Broker
2023-01-02 * "Buy"
  Assets:Broker  3 HOOL @ 3.3333 USD
` + tt.posting + "\n"

			err := New().Process(context.Background(), parse(t, source))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessWeightsCost(t *testing.T) {
	directives := parse(t, `2023-01-01 open Assets:Cash
2023-01-01 open Assets:Broker
2023-01-02 * "Buy"
  Assets:Broker  10 HOOL {{5187.30 USD}}
  Assets:Cash
`)

	l := New()
	assert.NoError(t, l.Process(context.Background(), directives))
	assertDecimal(t, "10", l.Balance("Assets:Broker", "HOOL"))
	assertDecimal(t, "-5187.30", l.Balance("Assets:Cash", "USD"))
}

func TestProcessCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New().Process(ctx, parse(t, "2023-01-01 open Assets:Bank\n"))
	assert.IsError(t, err, context.Canceled)
}

func TestInferTolerance(t *testing.T) {
	assertDecimal(t, "0.005", InferTolerance([]decimal.Decimal{decimal.RequireFromString("1.00"), decimal.RequireFromString("3.1")}))
	assertDecimal(t, "0", InferTolerance([]decimal.Decimal{decimal.RequireFromString("12")}))
	assertDecimal(t, "0", InferTolerance(nil))
}
