package importers

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/robinvdvleuten/beanclerk/ast"
	"github.com/robinvdvleuten/beanclerk/config"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// CSVName is the configuration name of the CSV statement importer.
const CSVName = "csv"

// CSV reads transactions from a statement exported by online banking. The
// file starts with a header row; columns other than the date, amount and
// balance columns are kept as metadata.
type CSV struct {
	Path          string
	Currency      string
	DateFormat    string
	Delimiter     rune
	IDColumn      string
	DateColumn    string
	AmountColumn  string
	BalanceColumn string
}

// NewCSV creates a CSV importer. Options: path, currency, id_column,
// date_column, amount_column and balance_column are required; date_format
// defaults to 2006-01-02 and delimiter to a comma.
func NewCSV(opts config.Options) (Importer, error) {
	c := &CSV{
		DateFormat: opts.GetDefault("date_format", ast.DateLayout),
		Delimiter:  ',',
	}

	required := []struct {
		key string
		dst *string
	}{
		{"path", &c.Path},
		{"currency", &c.Currency},
		{"id_column", &c.IDColumn},
		{"date_column", &c.DateColumn},
		{"amount_column", &c.AmountColumn},
		{"balance_column", &c.BalanceColumn},
	}
	for _, r := range required {
		v, err := opts.Required(r.key)
		if err != nil {
			return nil, err
		}
		*r.dst = v
	}

	if !ast.ValidCurrency(c.Currency) {
		return nil, fmt.Errorf("'%s' is not a valid currency code", c.Currency)
	}

	if d := opts.Get("delimiter"); d != "" {
		r, size := utf8.DecodeRuneInString(d)
		if size != len(d) {
			return nil, fmt.Errorf("delimiter must be a single character, got %q", d)
		}
		c.Delimiter = r
	}

	return c, nil
}

// Fetch reads the statement file and returns the rows dated between from and
// to, oldest first. Files may list rows in either date order. The closing
// balance is taken from the latest such row, or from the latest row of the
// file when none matches.
func (c *CSV) Fetch(ctx context.Context, account ast.Account, from, to time.Time) (*Statement, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return c.Parse(ctx, f, account, from, to)
}

// Parse reads a statement from r.
func (c *CSV) Parse(ctx context.Context, r io.Reader, account ast.Account, from, to time.Time) (*Statement, error) {
	cr := csv.NewReader(r)
	cr.Comma = c.Delimiter
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV %s: %w", c.Path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV %s has no header row", c.Path)
	}

	header := records[0]
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	cols := make(map[string]int)
	for _, name := range []string{c.IDColumn, c.DateColumn, c.AmountColumn, c.BalanceColumn} {
		i, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("CSV %s has no column %q", c.Path, name)
		}
		cols[name] = i
	}

	stmt := &Statement{}
	var (
		firstDate, lastDate       time.Time
		firstBalance, lastBalance string
		balances                  []string
	)

	for n, rec := range records[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row := n + 2
		date, err := time.Parse(c.DateFormat, strings.TrimSpace(rec[cols[c.DateColumn]]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing date %q: %w", row, rec[cols[c.DateColumn]], err)
		}

		rowBalance, err := parseDecimal(rec[cols[c.BalanceColumn]])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing balance: %w", row, err)
		}
		if n == 0 {
			firstDate, firstBalance = date, rowBalance
		}
		lastDate, lastBalance = date, rowBalance

		if !inRange(date, from, to) {
			continue
		}
		balances = append(balances, rowBalance)

		amount, err := parseDecimal(rec[cols[c.AmountColumn]])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing amount: %w", row, err)
		}

		id := strings.TrimSpace(rec[cols[c.IDColumn]])
		if id == "" {
			return nil, fmt.Errorf("row %d: empty %s", row, c.IDColumn)
		}

		metadata := []*ast.Metadata{ast.NewMetadata(IDKey, id)}
		for i, name := range header {
			name = strings.TrimSpace(name)
			if name == c.IDColumn || name == c.DateColumn || name == c.AmountColumn || name == c.BalanceColumn {
				continue
			}
			if value := strings.TrimSpace(rec[i]); value != "" {
				metadata = append(metadata, ast.NewMetadata(metadataKey(name), value))
			}
		}

		stmt.Transactions = append(stmt.Transactions, newCandidate(date, account, amount, c.Currency, metadata))
	}

	if len(records) == 1 {
		return nil, fmt.Errorf("CSV %s has no rows", c.Path)
	}

	// Exports list rows oldest first or newest first. The closing balance is
	// that of the latest row, and transactions are returned oldest first.
	balance := lastBalance
	if len(balances) > 0 {
		balance = balances[len(balances)-1]
	}
	if lastDate.Before(firstDate) {
		balance = firstBalance
		if len(balances) > 0 {
			balance = balances[0]
		}
		slices.Reverse(stmt.Transactions)
	}
	stmt.Balance = ast.Amount{Value: balance, Currency: c.Currency}

	return stmt, nil
}

// parseDecimal validates a number and returns it as written, without
// surrounding whitespace.
func parseDecimal(s string) (string, error) {
	s = strings.TrimSpace(s)
	if _, err := decimal.NewFromString(s); err != nil {
		return "", fmt.Errorf("%q: %w", s, err)
	}
	return s, nil
}

// metadataKey turns a column header into a metadata key: lower case, words
// joined by underscores, starting with a letter.
func metadataKey(header string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(header) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			if underscore && b.Len() > 0 {
				b.WriteByte('_')
			}
			underscore = false
			b.WriteRune(r)
			continue
		}
		underscore = true
	}

	key := b.String()
	if key == "" || key[0] < 'a' || key[0] > 'z' {
		key = "col_" + key
	}
	return key
}
