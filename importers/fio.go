package importers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/robinvdvleuten/beanclerk/ast"
	"github.com/robinvdvleuten/beanclerk/config"
	"github.com/shopspring/decimal"
)

// FioName is the configuration name of the Fio banka importer.
const FioName = "fio_banka"

// FioBaseURL is the production endpoint of the Fio banka API.
const FioBaseURL = "https://fioapi.fio.cz"

// fioColumns maps statement columns to metadata keys. Date, amount and
// currency become part of the posting instead.
var fioColumns = []struct {
	column string
	key    string
}{
	{"column22", IDKey},
	{"column2", "account_id"},
	{"column10", "account_name"},
	{"column3", "bank_id"},
	{"column12", "bank_name"},
	{"column4", "ks"},
	{"column5", "vs"},
	{"column6", "ss"},
	{"column7", "user_identification"},
	{"column16", "recipient_message"},
	{"column8", "type"},
	{"column9", "executor"},
	{"column18", "specification"},
	{"column25", "comment"},
	{"column26", "bic"},
	{"column17", "order_id"},
	{"column27", "payer_reference"},
}

// Fio fetches transactions from the Fio banka REST API. The token grants
// read access to a single bank account.
type Fio struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewFio creates a Fio importer. Options: token (required) and base_url.
func NewFio(opts config.Options) (Importer, error) {
	token, err := opts.Required("token")
	if err != nil {
		return nil, err
	}

	return &Fio{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimSuffix(opts.GetDefault("base_url", FioBaseURL), "/"),
		token:      token,
	}, nil
}

type fioResponse struct {
	AccountStatement struct {
		Info struct {
			AccountID      string      `json:"accountId"`
			BankID         string      `json:"bankId"`
			Currency       string      `json:"currency"`
			ClosingBalance json.Number `json:"closingBalance"`
		} `json:"info"`
		TransactionList struct {
			Transaction []map[string]*fioColumn `json:"transaction"`
		} `json:"transactionList"`
	} `json:"accountStatement"`
}

type fioColumn struct {
	Value any    `json:"value"`
	Name  string `json:"name"`
	ID    int    `json:"id"`
}

func (c *fioColumn) String() string {
	if c == nil || c.Value == nil {
		return ""
	}
	switch v := c.Value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Fetch downloads the movements between from and to.
func (f *Fio) Fetch(ctx context.Context, account ast.Account, from, to time.Time) (*Statement, error) {
	// The token is part of the path; it must never end up in error messages.
	endpoint := fmt.Sprintf("%s/v1/rest/periods/%s/%s/%s/transactions.json",
		f.baseURL, f.token, from.Format(ast.DateLayout), to.Format(ast.DateLayout))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request to %s: %w", f.baseURL, redact(err, f.token))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, f.parseError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var data fioResponse
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return f.statement(account, &data)
}

func (f *Fio) statement(account ast.Account, data *fioResponse) (*Statement, error) {
	info := data.AccountStatement.Info
	if _, err := decimal.NewFromString(info.ClosingBalance.String()); err != nil {
		return nil, fmt.Errorf("invalid closing balance %q: %w", info.ClosingBalance, err)
	}

	stmt := &Statement{
		Balance: ast.Amount{Value: info.ClosingBalance.String(), Currency: info.Currency},
	}

	for i, columns := range data.AccountStatement.TransactionList.Transaction {
		txn, err := fioTransaction(account, columns)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i+1, err)
		}
		stmt.Transactions = append(stmt.Transactions, txn)
	}

	return stmt, nil
}

func fioTransaction(account ast.Account, columns map[string]*fioColumn) (*ast.Transaction, error) {
	// Dates carry a zone offset, e.g. "2023-01-01+0100".
	rawDate := columns["column0"].String()
	if len(rawDate) < len(ast.DateLayout) {
		return nil, fmt.Errorf("invalid date %q", rawDate)
	}
	date, err := time.Parse(ast.DateLayout, rawDate[:len(ast.DateLayout)])
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", rawDate, err)
	}

	amount := columns["column1"].String()
	if _, err := decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	currency := columns["column14"].String()
	if !ast.ValidCurrency(currency) {
		return nil, fmt.Errorf("invalid currency %q", currency)
	}

	var metadata []*ast.Metadata
	for _, col := range fioColumns {
		if value := columns[col.column].String(); value != "" {
			metadata = append(metadata, ast.NewMetadata(col.key, value))
		}
	}
	if len(metadata) == 0 || metadata[0].Key != IDKey {
		return nil, fmt.Errorf("missing movement id (column22)")
	}

	return newCandidate(date, account, amount, currency, metadata), nil
}

func (f *Fio) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(body))

	switch resp.StatusCode {
	case http.StatusConflict:
		return fmt.Errorf("fio banka API rate limit exceeded, retry in 30 seconds (status %d)", resp.StatusCode)
	case http.StatusInternalServerError:
		return fmt.Errorf("fio banka API rejected the request, check the token (status %d): %s", resp.StatusCode, msg)
	default:
		return fmt.Errorf("fio banka API error (status %d): %s", resp.StatusCode, msg)
	}
}

// redactedError hides the token in the message of a transport error, which
// includes the request URL.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

func redact(err error, token string) error {
	return &redactedError{msg: strings.ReplaceAll(err.Error(), token, "***"), err: err}
}
