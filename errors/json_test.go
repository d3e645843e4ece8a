package errors

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/beanclerk/ast"
	"github.com/robinvdvleuten/beanclerk/ledger"
	"github.com/robinvdvleuten/beanclerk/parser"
)

type accountError struct {
	account ast.Account
	err     error
}

func (e *accountError) Error() string           { return fmt.Sprintf("%s: %v", e.account, e.err) }
func (e *accountError) Unwrap() error           { return e.err }
func (e *accountError) GetAccount() ast.Account { return e.account }

func TestToJSONLedgerError(t *testing.T) {
	tree, err := parser.ParseString(context.Background(), `2023-01-01 open Assets:Bank
2023-01-02 * "Lunch"
  Assets:Bank  -10.00 EUR
  Expenses:Food
`)
	assert.NoError(t, err)

	err = ledger.New().Process(context.Background(), tree.Directives)
	var verr *ledger.ValidationErrors
	assert.True(t, stdErrors.As(err, &verr))
	assert.Equal(t, 1, len(verr.Errors))

	got := NewJSONFormatter("").ToJSON(verr.Errors[0])
	assert.Equal(t, "AccountNotOpenError", got.Type)
	assert.Equal(t, "2023-01-02", got.Date)
	assert.Equal(t, 2, got.Position.Line)
	assert.Contains(t, got.Message, "Invalid reference to unknown account 'Expenses:Food'")
}

func TestToJSONWrappedError(t *testing.T) {
	_, perr := parser.ParseString(context.Background(), "2023-01-01 open Assets:bad\n")
	assert.Error(t, perr)

	err := &accountError{account: "Assets:Bank:Checking", err: perr}
	got := NewJSONFormatter("").ToJSON(err)
	assert.Equal(t, "accountError", got.Type)
	assert.Equal(t, "Assets:Bank:Checking", got.Account)
	assert.NotZero(t, got.Position)
	assert.Equal(t, 1, got.Position.Line)
	assert.Equal(t, "", got.Date)
}

func TestToJSONPlainError(t *testing.T) {
	got := NewJSONFormatter("").ToJSON(stdErrors.New("boom"))
	assert.Equal(t, ErrorJSON{Type: "errorString", Message: "boom"}, got)
}

func TestFormat(t *testing.T) {
	out, err := NewJSONFormatter("").Format(stdErrors.New("boom"))
	assert.NoError(t, err)
	assert.Equal(t, `{"type":"errorString","message":"boom"}`, out)
}

func TestFormatAll(t *testing.T) {
	jf := NewJSONFormatter("  ")

	out, err := jf.FormatAll(nil)
	assert.NoError(t, err)
	assert.Equal(t, "[]", out)

	out, err = jf.FormatAll([]error{stdErrors.New("a"), stdErrors.New("b")})
	assert.NoError(t, err)

	var items []ErrorJSON
	assert.NoError(t, json.Unmarshal([]byte(out), &items))
	assert.Equal(t, 2, len(items))
	assert.Equal(t, "b", items[1].Message)
	assert.Contains(t, out, "\n  {")
}
