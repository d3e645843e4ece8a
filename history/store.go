package history

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/robinvdvleuten/beanclerk/ast"
	"github.com/shopspring/decimal"
)

// timeLayout has a fixed width so that stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is a recorded import of one account.
type Run struct {
	ID              int64
	Account         ast.Account
	Importer        string
	FromDate        time.Time
	ToDate          time.Time
	NewTransactions int
	Currency        string
	ImporterBalance decimal.Decimal
	LedgerBalance   decimal.Decimal
	ImportedAt      time.Time
}

// Diff returns the importer balance minus the ledger balance.
func (r Run) Diff() decimal.Decimal {
	return r.ImporterBalance.Sub(r.LedgerBalance)
}

// BalanceOK reports whether both balances agree.
func (r Run) BalanceOK() bool {
	return r.Diff().IsZero()
}

// Filter restricts the runs returned by List.
type Filter struct {
	Account ast.Account // all accounts when empty
	Limit   int         // no limit when zero
}

// Store is a SQLite backed journal.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens or creates the journal at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open history %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &Store{db: db, path: path, now: time.Now}, nil
}

// dsn builds a SQLite URI for path. The path is percent-encoded so that "?"
// and "#" in file names do not start the query or fragment.
func dsn(path string) string {
	u := url.URL{
		Scheme: "file",
		Opaque: (&url.URL{Path: path}).EscapedPath(),
		RawQuery: url.Values{
			"_journal_mode": {"WAL"},
			"_busy_timeout": {"5000"},
		}.Encode(),
	}
	return u.String()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a run and returns its id. A zero ImportedAt is set to the
// current time.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	if run.ImportedAt.IsZero() {
		run.ImportedAt = s.now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO import_runs (account, importer, from_date, to_date, new_transactions,
			currency, importer_balance, ledger_balance, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(run.Account),
		run.Importer,
		run.FromDate.Format(ast.DateLayout),
		run.ToDate.Format(ast.DateLayout),
		run.NewTransactions,
		run.Currency,
		run.ImporterBalance.String(),
		run.LedgerBalance.String(),
		run.ImportedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record import run: %w", err)
	}

	return res.LastInsertId()
}

// List returns recorded runs, most recent first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Run, error) {
	var (
		where []string
		args  []any
	)
	if filter.Account != "" {
		where = append(where, "account = ?")
		args = append(args, string(filter.Account))
	}

	query := `SELECT id, account, importer, from_date, to_date, new_transactions,
		currency, importer_balance, ledger_balance, imported_at FROM import_runs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY imported_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}

	return runs, nil
}

func scanRun(rows *sql.Rows) (Run, error) {
	var run Run
	var account, from, to, importerBal, ledgerBal, importedAt string
	if err := rows.Scan(&run.ID, &account, &run.Importer, &from, &to, &run.NewTransactions,
		&run.Currency, &importerBal, &ledgerBal, &importedAt); err != nil {
		return Run{}, fmt.Errorf("failed to scan import run: %w", err)
	}
	run.Account = ast.Account(account)

	var err error
	if run.FromDate, err = time.Parse(ast.DateLayout, from); err != nil {
		return Run{}, fmt.Errorf("import run %d: %w", run.ID, err)
	}
	if run.ToDate, err = time.Parse(ast.DateLayout, to); err != nil {
		return Run{}, fmt.Errorf("import run %d: %w", run.ID, err)
	}
	if run.ImporterBalance, err = decimal.NewFromString(importerBal); err != nil {
		return Run{}, fmt.Errorf("import run %d: %w", run.ID, err)
	}
	if run.LedgerBalance, err = decimal.NewFromString(ledgerBal); err != nil {
		return Run{}, fmt.Errorf("import run %d: %w", run.ID, err)
	}
	if run.ImportedAt, err = time.Parse(timeLayout, importedAt); err != nil {
		return Run{}, fmt.Errorf("import run %d: %w", run.ID, err)
	}

	return run, nil
}
