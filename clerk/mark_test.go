package clerk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
)

const markedLedger = `2023-01-01 open Assets:Bank:Fio CZK
2023-01-01 open Assets:Bank:Fio:Savings CZK

; 2023-01-01 custom "beanclerk-mark" Assets:Bank:Fio
2023-01-01 custom "beanclerk-mark" Assets:Bank:Fio:Savings
2023-01-01 custom "beanclerk-mark" Assets:Bank:Fio
`

func writeLedger(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.beancount")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readLedger(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	return string(data)
}

func TestFindMarkLine(t *testing.T) {
	path := writeLedger(t, markedLedger)

	lineno, err := FindMarkLine(path, "Assets:Bank:Fio")
	assert.NoError(t, err)
	assert.Equal(t, 6, lineno)

	lineno, err = FindMarkLine(path, "Assets:Bank:Fio:Savings")
	assert.NoError(t, err)
	assert.Equal(t, 5, lineno)

	_, err = FindMarkLine(path, "Assets:Bank:Other")
	assert.IsError(t, err, ErrMarkNotFound)
	assert.Contains(t, err.Error(), "Assets:Bank:Other")

	_, err = FindMarkLine(filepath.Join(t.TempDir(), "missing.beancount"), "Assets:Bank:Fio")
	assert.IsError(t, err, os.ErrNotExist)
}

func TestFindMarkDirective(t *testing.T) {
	directives := parse(t, markedLedger+`2023-01-01 custom "beanclerk-mark" "Assets:Bank:Quoted"
2023-01-01 custom "budget" Assets:Bank:Other
`)

	mark, err := FindMarkDirective(directives, "Assets:Bank:Fio")
	assert.NoError(t, err)
	assert.Equal(t, 6, mark.Pos.Line)

	_, err = FindMarkDirective(directives, "Assets:Bank:Quoted")
	assert.NoError(t, err)

	_, err = FindMarkDirective(directives, "Assets:Bank:Other")
	assert.IsError(t, err, ErrMarkNotFound)
}
