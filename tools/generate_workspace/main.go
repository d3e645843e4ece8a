// Import Workspace Generator
//
// This tool generates a beanclerk workspace for performance testing and
// profiling: a ledger holding a history of imported transactions, a CSV
// statement that overlaps that history and continues past it, and a config
// file tying both together.
//
// Usage:
//
//	go run ./tools/generate_workspace -o /tmp/bench
//	go run ./tools/generate_workspace -o /tmp/bench --imported 50000 --new 500
//	beanclerk import -c /tmp/bench/beanclerk-config.yml --unmatched import
package main

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/shopspring/decimal"
)

const account = "Assets:Bank:Checking"

var (
	counterparts = []struct {
		note    string
		account string
		min     int64
		max     int64
	}{
		{"Salary", "Income:Salary", 150000, 300000},
		{"Whole Foods", "Expenses:Food:Groceries", -15000, -1000},
		{"Trader Joe's", "Expenses:Food:Groceries", -12000, -800},
		{"Coffee", "Expenses:Food:Restaurant", -900, -250},
		{"Restaurant", "Expenses:Food:Restaurant", -9000, -1500},
		{"Shell Gas", "Expenses:Transport:Gas", -8000, -2000},
		{"Transit", "Expenses:Transport:Transit", -500, -200},
		{"Rent", "Expenses:Housing:Rent", -150000, -90000},
		{"Utilities", "Expenses:Housing:Utilities", -20000, -5000},
		{"Netflix", "Expenses:Entertainment:Subscriptions", -1599, -1599},
		{"Interest", "Income:Interest", 1, 500},
	}

	// Notes without a rule end up as unmatched candidates.
	unmatched = []string{"ATM withdrawal", "Transfer", "Card payment"}
)

type cli struct {
	Output   string `short:"o" help:"Directory to write the workspace to." type:"path" required:""`
	Imported int    `help:"Transactions already imported into the ledger." default:"10000"`
	New      int    `help:"Transactions in the statement after the last import." default:"1000"`
	Currency string `help:"Currency of the bank account." default:"USD"`
	Seed     int64  `help:"Random seed, 0 for a time based seed." default:"0"`
}

type row struct {
	id      int
	date    time.Time
	amount  decimal.Decimal
	balance decimal.Decimal
	note    string
	account string
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("generate_workspace"),
		kong.Description("Generate a beanclerk workspace for performance testing."),
	)
	kctx.FatalIfErrorf(run(&c))
}

func run(c *cli) error {
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	if err := os.MkdirAll(c.Output, 0o755); err != nil {
		return err
	}

	rows := generateRows(rng, c.Imported+c.New)

	if err := writeFile(filepath.Join(c.Output, "ledger.beancount"), func(w *bufio.Writer) {
		writeLedger(w, c.Currency, rows[:c.Imported])
	}); err != nil {
		return err
	}

	// The statement repeats the last week of imported rows so that
	// duplicate detection has work to do.
	overlap := c.Imported - 7
	if overlap < 0 {
		overlap = 0
	}
	if err := writeFile(filepath.Join(c.Output, "statement.csv"), func(w *bufio.Writer) {
		writeStatement(w, rows[overlap:])
	}); err != nil {
		return err
	}

	if err := writeFile(filepath.Join(c.Output, "beanclerk-config.yml"), func(w *bufio.Writer) {
		writeConfig(w, filepath.Join(c.Output, "statement.csv"), c.Currency)
	}); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Generated %d imported and %d new transactions in %s (seed %d)\n", c.Imported, c.New, c.Output, seed)
	return nil
}

func generateRows(rng *rand.Rand, n int) []row {
	rows := make([]row, 0, n)
	date := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	balance := decimal.Zero

	for i := 0; i < n; i++ {
		r := row{id: 1000000 + i, date: date}
		if rng.Intn(10) == 0 {
			r.note = unmatched[rng.Intn(len(unmatched))]
			r.amount = decimal.New(-int64(rng.Intn(20000)+100), -2)
		} else {
			cp := counterparts[rng.Intn(len(counterparts))]
			r.note = cp.note
			r.account = cp.account
			r.amount = decimal.New(cp.min+rng.Int63n(cp.max-cp.min+1), -2)
		}
		balance = balance.Add(r.amount)
		r.balance = balance
		rows = append(rows, r)

		// Several transactions a day on average.
		if rng.Intn(3) == 0 {
			date = date.AddDate(0, 0, 1)
		}
	}
	return rows
}

func writeLedger(w *bufio.Writer, currency string, rows []row) {
	fmt.Fprintln(w, "; Generated beanclerk workspace ledger")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "2019-12-31 open %s %s\n", account, currency)
	opened := map[string]bool{}
	for _, cp := range counterparts {
		if !opened[cp.account] {
			fmt.Fprintf(w, "2019-12-31 open %s\n", cp.account)
			opened[cp.account] = true
		}
	}
	fmt.Fprintln(w, "2019-12-31 open Expenses:Unknown")
	fmt.Fprintln(w)

	for _, r := range rows {
		flag, other := "*", r.account
		if other == "" {
			flag, other = "!", "Expenses:Unknown"
		}
		fmt.Fprintf(w, "%s %s \"\"\n", r.date.Format("2006-01-02"), flag)
		fmt.Fprintf(w, "  id: \"%d\"\n", r.id)
		fmt.Fprintf(w, "  note: \"%s\"\n", r.note)
		fmt.Fprintf(w, "  %s  %s %s\n", account, r.amount.StringFixed(2), currency)
		fmt.Fprintf(w, "  %s\n\n", other)
	}

	fmt.Fprintf(w, "2019-12-31 custom \"beanclerk-mark\" %s\n", account)
}

func writeStatement(w *bufio.Writer, rows []row) {
	fmt.Fprintln(w, "id,date,amount,balance,note")
	for _, r := range rows {
		fmt.Fprintf(w, "%d,%s,%s,%s,%q\n", r.id, r.date.Format("2006-01-02"), r.amount.StringFixed(2), r.balance.StringFixed(2), r.note)
	}
}

func writeConfig(w *bufio.Writer, statement, currency string) {
	fmt.Fprintln(w, "input_file: ledger.beancount")
	fmt.Fprintln(w, "history_file: .beanclerk.db")
	fmt.Fprintln(w, "accounts:")
	fmt.Fprintf(w, "  - account: %s\n", account)
	fmt.Fprintln(w, "    importer: csv")
	fmt.Fprintf(w, "    path: %s\n", statement)
	fmt.Fprintf(w, "    currency: %s\n", currency)
	fmt.Fprintln(w, "    id_column: id")
	fmt.Fprintln(w, "    date_column: date")
	fmt.Fprintln(w, "    amount_column: amount")
	fmt.Fprintln(w, "    balance_column: balance")
	fmt.Fprintln(w, "categorization_rules:")
	for _, cp := range counterparts {
		fmt.Fprintln(w, "  - matches:")
		fmt.Fprintln(w, "      metadata:")
		fmt.Fprintf(w, "        note: \"^%s$\"\n", cp.note)
		fmt.Fprintf(w, "    account: %s\n", cp.account)
		fmt.Fprintln(w, "    flag: \"*\"")
	}
}

func writeFile(path string, fill func(*bufio.Writer)) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	fill(w)
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
