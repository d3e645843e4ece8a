package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	assert.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	runs := []Run{
		{
			Account:         "Assets:Bank:Fio",
			Importer:        "fio_banka",
			FromDate:        time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			ToDate:          time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
			NewTransactions: 3,
			Currency:        "CZK",
			ImporterBalance: decimal.RequireFromString("2000.10"),
			LedgerBalance:   decimal.RequireFromString("2000.10"),
		},
		{
			Account:         "Assets:Bank:Csv",
			Importer:        "csv",
			FromDate:        time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			ToDate:          time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
			NewTransactions: 0,
			Currency:        "EUR",
			ImporterBalance: decimal.RequireFromString("10.00"),
			LedgerBalance:   decimal.RequireFromString("12.50"),
		},
		{
			Account:         "Assets:Bank:Fio",
			Importer:        "fio_banka",
			FromDate:        time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
			ToDate:          time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			NewTransactions: 1,
			Currency:        "CZK",
			ImporterBalance: decimal.RequireFromString("1500"),
			LedgerBalance:   decimal.RequireFromString("1500.00"),
		},
	}
	for i, run := range runs {
		id, err := s.Record(ctx, run)
		assert.NoError(t, err)
		assert.Equal(t, int64(i+1), id)
	}

	all, err := s.List(ctx, Filter{})
	assert.NoError(t, err)
	assert.Equal(t, 3, len(all))
	assert.Equal(t, int64(3), all[0].ID)
	assert.Equal(t, int64(1), all[2].ID)

	latest := all[0]
	assert.Equal(t, runs[2].Account, latest.Account)
	assert.Equal(t, "fio_banka", latest.Importer)
	assert.Equal(t, runs[2].FromDate, latest.FromDate)
	assert.Equal(t, runs[2].ToDate, latest.ToDate)
	assert.Equal(t, 1, latest.NewTransactions)
	assert.Equal(t, "CZK", latest.Currency)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 3, 0, 0, time.UTC), latest.ImportedAt)
	assert.True(t, latest.BalanceOK())

	csv := all[1]
	assert.False(t, csv.BalanceOK())
	assert.Equal(t, "-2.5", csv.Diff().String())

	fio, err := s.List(ctx, Filter{Account: "Assets:Bank:Fio", Limit: 1})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(fio))
	assert.Equal(t, int64(3), fio[0].ID)

	none, err := s.List(ctx, Filter{Account: "Assets:Bank:Other"})
	assert.NoError(t, err)
	assert.Equal(t, 0, len(none))
}

func TestRecordKeepsImportedAt(t *testing.T) {
	s := openStore(t)
	at := time.Date(2023, 12, 31, 23, 59, 59, 500, time.FixedZone("CET", 3600))

	_, err := s.Record(context.Background(), Run{Account: "Assets:Bank:Fio", Importer: "fio_banka", Currency: "CZK", ImportedAt: at})
	assert.NoError(t, err)

	runs, err := s.List(context.Background(), Filter{})
	assert.NoError(t, err)
	assert.True(t, at.Equal(runs[0].ImportedAt))
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(path)
	assert.NoError(t, err)
	assert.Equal(t, path, s.Path())
	_, err = s.Record(context.Background(), Run{Account: "Assets:Bank:Fio", Importer: "fio_banka", Currency: "CZK"})
	assert.NoError(t, err)
	assert.NoError(t, s.Close())

	s, err = Open(path)
	assert.NoError(t, err)
	defer s.Close()

	runs, err := s.List(context.Background(), Filter{})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(runs))
}

func TestOpenPathWithURISpecialCharacters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "100% sure?#1", "history?v=2#x.db")
	s, err := Open(path)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.Record(context.Background(), Run{
		Account:  "Assets:Bank:Fio",
		Importer: "fio_banka",
		Currency: "CZK",
	})
	assert.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "file:/data/a%3Fb%23c.db?_busy_timeout=5000&_journal_mode=WAL", dsn("/data/a?b#c.db"))
	assert.Equal(t, "file:.beanclerk.db?_busy_timeout=5000&_journal_mode=WAL", dsn(".beanclerk.db"))
}
