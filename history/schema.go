// Package history keeps a SQLite journal of import runs: which account was
// imported over which dates, how many transactions were inserted and whether
// the balances agreed afterwards.
package history

// schema creates the tables when they do not exist yet.
const schema = `
CREATE TABLE IF NOT EXISTS import_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    account TEXT NOT NULL,
    importer TEXT NOT NULL,
    from_date TEXT NOT NULL,           -- YYYY-MM-DD
    to_date TEXT NOT NULL,             -- YYYY-MM-DD
    new_transactions INTEGER NOT NULL,
    currency TEXT NOT NULL,
    importer_balance TEXT NOT NULL,    -- decimal as text
    ledger_balance TEXT NOT NULL,      -- decimal as text
    imported_at TEXT NOT NULL          -- RFC 3339
);

CREATE INDEX IF NOT EXISTS idx_import_runs_account
    ON import_runs(account, imported_at);
`
