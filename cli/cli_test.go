package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/kong"

	beanerrors "github.com/robinvdvleuten/beanclerk/errors"
	"github.com/robinvdvleuten/beanclerk/ledger"
	"github.com/robinvdvleuten/beanclerk/output"
	"github.com/robinvdvleuten/beanclerk/parser"
)

const testLedger = `2023-01-01 open Assets:Bank:Checking CZK
2023-01-01 open Expenses:Food
2023-01-01 open Income:Salary

2023-01-01 custom "beanclerk-mark" Assets:Bank:Checking
`

const testStatement = `id,date,amount,balance,note
1,2023-01-02,100.00,100.00,Salary
2,2023-01-03,-40.00,60.00,Lunch
3,2023-02-01,-10.00,50.00,Coffee
`

type workspace struct {
	dir        string
	configFile string
	ledgerFile string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	dir := t.TempDir()
	ws := &workspace{
		dir:        dir,
		configFile: filepath.Join(dir, "beanclerk-config.yml"),
		ledgerFile: filepath.Join(dir, "ledger.beancount"),
	}

	statement := filepath.Join(dir, "statement.csv")
	assert.NoError(t, os.WriteFile(ws.ledgerFile, []byte(testLedger), 0o644))
	assert.NoError(t, os.WriteFile(statement, []byte(testStatement), 0o644))
	assert.NoError(t, os.WriteFile(ws.configFile, []byte(`input_file: ledger.beancount
history_file: .beanclerk.db
accounts:
  - account: Assets:Bank:Checking
    importer: csv
    path: `+statement+`
    currency: CZK
    id_column: id
    date_column: date
    amount_column: amount
    balance_column: balance
categorization_rules:
  - matches:
      metadata:
        note: ^Salary$
    account: Income:Salary
  - matches:
      metadata:
        note: ^Lunch$
    account: Expenses:Food
    flag: "*"
`), 0o644))
	return ws
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var cmds Commands
	var stdout, stderr bytes.Buffer

	p, err := kong.New(&cmds,
		kong.Name("beanclerk"),
		kong.Writers(&stdout, &stderr),
		kong.Bind(&cmds.Globals),
		kong.Exit(func(int) {}),
	)
	assert.NoError(t, err)

	ctx, err := p.Parse(args)
	if err != nil {
		return stdout.String(), stderr.String(), err
	}
	err = ctx.Run()
	return stdout.String(), stderr.String(), err
}

func exitCode(err error) int {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode()
	}
	return -1
}

func TestImportCmd(t *testing.T) {
	ws := newWorkspace(t)

	stdout, _, err := run(t, "import", "-c", ws.configFile, "--from-date", "2023-01-01", "--to-date", "2023-01-31", "--unmatched", "import")
	assert.NoError(t, err)
	assert.Contains(t, stdout, "Importing transactions for account: 'Assets:Bank:Checking'\n")
	assert.Contains(t, stdout, "New transactions: 2, balance OK: 60.00 CZK\n")
	assert.Contains(t, stdout, "Imported 2 transaction(s) into "+ws.ledgerFile)

	data, err := os.ReadFile(ws.ledgerFile)
	assert.NoError(t, err)
	tree, err := parser.ParseBytes(context.Background(), ws.ledgerFile, data)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(tree.Directives.Transactions()))
	assert.NoError(t, ledger.New().Process(context.Background(), tree.Directives))

	// Continuing from the last import picks up the February row only.
	stdout, _, err = run(t, "import", "-c", ws.configFile, "--to-date", "2023-02-28", "--unmatched", "import")
	assert.NoError(t, err)
	assert.Contains(t, stdout, "New transactions: 1, balance OK: 50.00 CZK\n")

	stdout, _, err = run(t, "history", "-c", ws.configFile)
	assert.NoError(t, err)
	assert.Contains(t, stdout, "Assets:Bank:Checking")
	assert.Contains(t, stdout, "2023-01-03..2023-02-28")
	assert.Contains(t, stdout, "50 CZK")
	assert.Equal(t, 2, strings.Count(stdout, " csv "))
}

func TestImportCmdInvalidDate(t *testing.T) {
	ws := newWorkspace(t)

	_, _, err := run(t, "import", "-c", ws.configFile, "--from-date", "2023-13-01")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "'2023-13-01' is not a valid date format (YYYY-MM-DD)")
}

func TestImportCmdRequiresTerminal(t *testing.T) {
	ws := newWorkspace(t)
	defer func(fn func() bool) { isTerminal = fn }(isTerminal)
	isTerminal = func() bool { return false }

	_, stderr, err := run(t, "import", "-c", ws.configFile, "--from-date", "2023-01-01")
	assert.Equal(t, 2, exitCode(err))
	assert.Contains(t, stderr, "--unmatched=import")

	data, err := os.ReadFile(ws.ledgerFile)
	assert.NoError(t, err)
	assert.Equal(t, testLedger, string(data))
}

func TestImportCmdWithoutStartDate(t *testing.T) {
	ws := newWorkspace(t)

	_, stderr, err := run(t, "import", "-c", ws.configFile, "--unmatched", "import")
	assert.Equal(t, 1, exitCode(err))
	assert.Contains(t, stderr, "cannot determine the initial import date")
}

func TestCheckCmd(t *testing.T) {
	ws := newWorkspace(t)

	stdout, _, err := run(t, "check", "-c", ws.configFile)
	assert.NoError(t, err)
	assert.Contains(t, stdout, "Assets:Bank:Checking via csv")
	assert.Contains(t, stdout, "Check passed")

	assert.NoError(t, os.WriteFile(ws.ledgerFile, []byte(`2023-01-01 open Assets:Bank:Checking CZK

2023-01-02 * "Lunch"
  Assets:Bank:Checking  -40.00 CZK
  Expenses:Food
`), 0o644))

	_, stderr, err := run(t, "check", "-c", ws.configFile)
	assert.Equal(t, 1, exitCode(err))
	assert.Contains(t, stderr, "Invalid reference to unknown account 'Expenses:Food'")
	assert.Contains(t, stderr, "1 problem(s) found")
}

func TestCheckCmdMissingMark(t *testing.T) {
	ws := newWorkspace(t)
	assert.NoError(t, os.WriteFile(ws.ledgerFile, []byte("2023-01-01 open Assets:Bank:Checking CZK\n"), 0o644))

	_, stderr, err := run(t, "check", "-c", ws.configFile)
	assert.Equal(t, 1, exitCode(err))
	assert.Contains(t, stderr, "beanclerk mark not found: 'Assets:Bank:Checking'")
}

func TestCheckCmdJSON(t *testing.T) {
	ws := newWorkspace(t)

	stdout, _, err := run(t, "check", "-c", ws.configFile, "--format", "json")
	assert.NoError(t, err)
	assert.Equal(t, "[]\n", stdout)

	assert.NoError(t, os.WriteFile(ws.ledgerFile, []byte("2023-01-01 open Assets:Bank:Checking CZK\n"), 0o644))

	stdout, _, err = run(t, "check", "-c", ws.configFile, "--format", "json")
	assert.Equal(t, 1, exitCode(err))

	var problems []beanerrors.ErrorJSON
	assert.NoError(t, json.Unmarshal([]byte(stdout), &problems))
	assert.Equal(t, 1, len(problems))
	assert.Equal(t, "Error", problems[0].Type)
	assert.Equal(t, "Assets:Bank:Checking", problems[0].Account)
	assert.Contains(t, problems[0].Message, "beanclerk mark not found")
}

func TestConfigErrors(t *testing.T) {
	_, stderr, err := run(t, "check", "-c", filepath.Join(t.TempDir(), "missing.yml"))
	assert.Equal(t, 1, exitCode(err))
	assert.Contains(t, stderr, "cannot load config file")
}

func TestHistoryCmdWithoutImports(t *testing.T) {
	ws := newWorkspace(t)

	stdout, _, err := run(t, "history", "-c", ws.configFile, "--account", "Assets:Bank:Checking")
	assert.NoError(t, err)
	assert.Contains(t, stdout, "No imports recorded in "+filepath.Join(ws.dir, ".beanclerk.db"))

	_, _, err = run(t, "history", "-c", ws.configFile, "--account", "bank")
	assert.Error(t, err)
}

func TestDatePtr(t *testing.T) {
	assert.True(t, Date{}.Ptr() == nil)

	d := Date{Time: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, d.Time, *d.Ptr())
}

func TestFlatten(t *testing.T) {
	a, b, c := errors.New("a"), errors.New("b"), errors.New("c")

	assert.Equal(t, []error{a}, Flatten(a))
	assert.Equal(t, []error{a, b, c}, Flatten(errors.Join(a, errors.Join(b, c))))

	verr := &ledger.ValidationErrors{Errors: []error{a, b}}
	assert.Equal(t, []error{a, b, c}, Flatten(errors.Join(verr, c)))
}

func TestErrorRendererShowsSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.beancount")
	source := "2023-01-01 open Assets:Bank CZK\n2023-01-02 open Assets:bad\n"
	assert.NoError(t, os.WriteFile(path, []byte(source), 0o644))

	_, err := parser.ParseBytes(context.Background(), path, []byte(source))
	assert.Error(t, err)

	var buf bytes.Buffer
	rendered := NewErrorRenderer(output.NewPlainStyles(&buf)).Render(err)
	assert.Contains(t, rendered, err.Error())
	assert.Contains(t, rendered, "   2023-01-02 open Assets:bad\n")
	assert.Contains(t, rendered, "^")
}

func TestErrorRendererShowsTransaction(t *testing.T) {
	tree, err := parser.ParseString(context.Background(), `2023-01-01 open Assets:Bank
2023-01-02 * "Lunch"
  Assets:Bank  -10.00 EUR
  Expenses:Food
`)
	assert.NoError(t, err)

	err = ledger.New().Process(context.Background(), tree.Directives)
	errs := Flatten(err)
	assert.Equal(t, 1, len(errs))

	var buf bytes.Buffer
	rendered := NewErrorRenderer(output.NewPlainStyles(&buf)).RenderAll(errs)
	assert.Contains(t, rendered, "Invalid reference to unknown account 'Expenses:Food'")
	assert.Contains(t, rendered, `   2023-01-02 * "Lunch"`)
	assert.Contains(t, rendered, "     Expenses:Food")
}

func TestTerminalPrompterNeedsTerminal(t *testing.T) {
	defer func(fn func() bool) { isTerminal = fn }(isTerminal)
	isTerminal = func() bool { return false }

	_, err := NewTerminalPrompter()
	assert.IsError(t, err, ErrNotTerminal)
}

func TestCommandError(t *testing.T) {
	err := NewCommandError(3)
	assert.Equal(t, 3, err.ExitCode())
	assert.EqualError(t, err, "command failed")
}
