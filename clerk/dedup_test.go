package clerk

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/beanclerk/ast"
)

const importedLedger = `2023-01-01 open Assets:Bank:Fio CZK
2023-01-01 open Assets:Bank:Other CZK
2023-01-01 open Expenses:Food

2023-01-05 * "Lunch"
  id: "1002"
  Assets:Bank:Fio  -100.00 CZK
  Expenses:Food

2023-01-02 * "Groceries"
  id: "1001"
  Assets:Bank:Fio  -50.00 CZK
  Expenses:Food

2023-01-07 * "Cash"
  Assets:Bank:Fio  -10.00 CZK
  Expenses:Food

2023-01-09 * "Other bank"
  id: "9001"
  Assets:Bank:Other  -20.00 CZK
  Expenses:Food
`

func TestTransactionExists(t *testing.T) {
	directives := parse(t, importedLedger)

	tests := []struct {
		account string
		id      string
		want    bool
	}{
		{"Assets:Bank:Fio", "1001", true},
		{"Assets:Bank:Fio", "1002", true},
		{"Assets:Bank:Fio", "9001", false},
		{"Assets:Bank:Other", "9001", true},
		{"Assets:Bank:Other", "1001", false},
		{"Assets:Bank:Unknown", "1001", false},
	}

	for _, tt := range tests {
		t.Run(tt.account+"/"+tt.id, func(t *testing.T) {
			exists, err := TransactionExists(directives, ast.Account(tt.account), tt.id)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, exists)
		})
	}
}

func TestLastImportDate(t *testing.T) {
	directives := parse(t, importedLedger)

	// Written last wins over dated last, and entries without id are ignored.
	date, err := LastImportDate(directives, "Assets:Bank:Fio")
	assert.NoError(t, err)
	assert.Equal(t, "2023-01-02", date.String())

	date, err = LastImportDate(directives, "Assets:Bank:Other")
	assert.NoError(t, err)
	assert.Equal(t, "2023-01-09", date.String())

	date, err = LastImportDate(directives, "Assets:Bank:Unknown")
	assert.NoError(t, err)
	assert.True(t, date == nil)
}

func TestDedupRejectsInvalidAccount(t *testing.T) {
	directives := parse(t, importedLedger)

	_, err := TransactionExists(directives, "bank", "1001")
	assert.Error(t, err)

	_, err = LastImportDate(directives, "Assets:bank")
	assert.Error(t, err)
}
