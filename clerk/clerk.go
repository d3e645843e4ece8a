// Package clerk imports bank transactions into a Beancount ledger.
//
// For every configured account the clerk fetches the transactions of a date
// range from the account's importer, drops the ones already in the ledger,
// categorizes the rest with the configured rules and writes each of them
// right above the account's mark:
//
//	2023-01-01 custom "beanclerk-mark" Assets:Bank:Fio
//
// The ledger file is rewritten once per inserted entry. Nothing prevents
// another process from changing it at the same time, so only one import may
// run against a ledger at once.
package clerk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robinvdvleuten/beanclerk/ast"
	"github.com/robinvdvleuten/beanclerk/config"
	"github.com/robinvdvleuten/beanclerk/formatter"
	"github.com/robinvdvleuten/beanclerk/history"
	"github.com/robinvdvleuten/beanclerk/importers"
	"github.com/robinvdvleuten/beanclerk/ledger"
	"github.com/robinvdvleuten/beanclerk/loader"
	"github.com/robinvdvleuten/beanclerk/output"
	"github.com/robinvdvleuten/beanclerk/telemetry"
	"github.com/shopspring/decimal"
)

// Clerk runs imports for the accounts of a configuration.
type Clerk struct {
	cfg      *config.Config
	registry *importers.Registry
	prompter Prompter
	logger   *log.Logger
	out      io.Writer
	styles   *output.Styles
	history  *history.Store
	now      func() time.Time
}

// Option configures a Clerk.
type Option func(*Clerk)

// WithRegistry sets the importers accounts are resolved against. Defaults to
// importers.DefaultRegistry().
func WithRegistry(registry *importers.Registry) Option {
	return func(c *Clerk) {
		c.registry = registry
	}
}

// WithPrompter sets who decides about transactions no rule matches. Without
// a prompter they are imported as is.
func WithPrompter(prompter Prompter) Option {
	return func(c *Clerk) {
		c.prompter = prompter
	}
}

// WithLogger sets the logger. Nothing is logged by default.
func WithLogger(logger *log.Logger) Option {
	return func(c *Clerk) {
		c.logger = logger
	}
}

// WithOutput sets where progress and status lines are written.
func WithOutput(w io.Writer, styles *output.Styles) Option {
	return func(c *Clerk) {
		c.out = w
		c.styles = styles
	}
}

// WithHistory records every finished account import in store.
func WithHistory(store *history.Store) Option {
	return func(c *Clerk) {
		c.history = store
	}
}

// WithClock overrides the clock used to default the end of the date range.
func WithClock(now func() time.Time) Option {
	return func(c *Clerk) {
		c.now = now
	}
}

// New creates a Clerk for cfg.
func New(cfg *config.Config, opts ...Option) *Clerk {
	c := &Clerk{
		cfg: cfg,
		out: io.Discard,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.registry == nil {
		c.registry = importers.DefaultRegistry()
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	if c.styles == nil {
		c.styles = output.NewPlainStyles(c.out)
	}
	return c
}

// DateRange limits the transactions to import. Both ends are inclusive. A
// nil From continues from the last imported transaction of each account and
// a nil To means today.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Result is the outcome of importing one account.
type Result struct {
	Account         ast.Account
	Importer        string
	From            time.Time
	To              time.Time
	NewTransactions int

	// Balance is the closing balance reported by the importer.
	Balance ast.Amount

	// LedgerBalance is the balance of the account in the ledger after the
	// import, in the currency of Balance.
	LedgerBalance decimal.Decimal

	// Diff is Balance minus LedgerBalance.
	Diff decimal.Decimal
}

// BalanceOK reports whether the ledger agrees with the importer.
func (r Result) BalanceOK() bool {
	return r.Diff.IsZero()
}

// ImportTransactions imports every configured account in order and stops at
// the first error. Entries inserted before an error stay in the ledger.
func (c *Clerk) ImportTransactions(ctx context.Context, dates DateRange) ([]Result, error) {
	timer := telemetry.FromContext(ctx).Start("import")
	defer timer.End()

	directives, err := c.loadInput(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(c.cfg.Accounts))
	for _, acc := range c.cfg.Accounts {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result, err := c.importAccount(ctx, acc, dates, &directives)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}

	return results, nil
}

// loadInput loads and validates the input ledger. Any error in it aborts the
// import before a bank is contacted.
func (c *Clerk) loadInput(ctx context.Context) (ast.Directives, error) {
	result, err := loader.Load(ctx, c.cfg.InputFile, loader.WithFollowIncludes())
	if err != nil {
		return nil, &Error{Op: "load input file", Err: err}
	}

	if err := ledger.New().Process(ctx, result.AST.Directives); err != nil {
		return nil, &Error{Op: "load input file", Err: fmt.Errorf("errors in the input file: %w", err)}
	}

	c.logger.Debug("loaded input file", "path", result.Root, "directives", len(result.AST.Directives), "includes", len(result.Includes))
	return result.AST.Directives, nil
}

func (c *Clerk) importAccount(ctx context.Context, acc config.AccountConfig, dates DateRange, directives *ast.Directives) (Result, error) {
	account := acc.Account
	fail := func(op string, err error) (Result, error) {
		return Result{}, &Error{Account: account, Op: op, Err: err}
	}

	fmt.Fprintf(c.out, "Importing transactions for account: '%s'\n", c.styles.Account(string(account)))

	if err := c.checkMark(*directives, account); err != nil {
		return fail("find mark", err)
	}

	from, to, err := c.resolveDates(*directives, account, dates)
	if err != nil {
		return fail("resolve dates", err)
	}
	c.logger.Info("importing", "account", account, "from", from.Format(ast.DateLayout), "to", to.Format(ast.DateLayout))

	importer, err := c.registry.Resolve(acc)
	if err != nil {
		return fail("resolve importer", err)
	}

	fetchTimer := telemetry.FromContext(ctx).Start("fetch " + string(account))
	statement, err := importer.Fetch(ctx, account, from, to)
	fetchTimer.End()
	if err != nil {
		return fail("fetch transactions", err)
	}
	c.logger.Debug("fetched transactions", "account", account, "count", len(statement.Transactions))

	insertTimer := telemetry.FromContext(ctx).Start("insert " + string(account))
	inserted := 0
	for _, candidate := range statement.Transactions {
		if err := ctx.Err(); err != nil {
			insertTimer.End()
			return fail("insert transactions", err)
		}

		ok, err := c.importCandidate(ctx, account, candidate, directives)
		if err != nil {
			insertTimer.End()
			return fail("insert transactions", err)
		}
		if ok {
			inserted++
		}
	}
	insertTimer.End()

	balanceTimer := telemetry.FromContext(ctx).Start("balance " + string(account))
	ledgerBalance, err := ledger.ComputeBalance(ctx, *directives, account, statement.Balance.Currency)
	balanceTimer.End()
	if err != nil {
		return fail("compute balance", err)
	}

	importerBalance, err := ledger.ParseAmount(&statement.Balance)
	if err != nil {
		return fail("compute balance", err)
	}

	result := Result{
		Account:         account,
		Importer:        acc.Importer,
		From:            from,
		To:              to,
		NewTransactions: inserted,
		Balance:         statement.Balance,
		LedgerBalance:   ledgerBalance,
		Diff:            importerBalance.Sub(ledgerBalance),
	}
	c.printStatus(result)

	if c.history != nil {
		if _, err := c.history.Record(ctx, history.Run{
			Account:         account,
			Importer:        acc.Importer,
			FromDate:        from,
			ToDate:          to,
			NewTransactions: inserted,
			Currency:        statement.Balance.Currency,
			ImporterBalance: importerBalance,
			LedgerBalance:   ledgerBalance,
		}); err != nil {
			return fail("record history", err)
		}
	}

	return result, nil
}

// importCandidate inserts candidate unless the ledger already has it. It
// reports whether an entry was written.
func (c *Clerk) importCandidate(ctx context.Context, account ast.Account, candidate *ast.Transaction, directives *ast.Directives) (bool, error) {
	id, err := validateCandidate(account, candidate)
	if err != nil {
		return false, err
	}

	exists, err := TransactionExists(*directives, account, id)
	if err != nil {
		return false, err
	}
	if exists {
		c.logger.Debug("skipping known transaction", "account", account, "id", id)
		return false, nil
	}

	rule, rules, err := FindRule(ctx, candidate, c.cfg.Rules, c.prompter, c.reloadRules)
	if err != nil {
		return false, err
	}
	c.cfg.Rules = rules

	txn, err := Categorize(candidate, rule)
	if err != nil {
		return false, err
	}

	// The mark moves down with every insertion.
	lineno, err := FindMarkLine(c.cfg.InputFile, account)
	if err != nil {
		return false, err
	}
	if err := InsertEntry(c.cfg.InputFile, lineno, formatter.FormatTransaction(txn)); err != nil {
		return false, fmt.Errorf("failed to insert transaction %s: %w", id, err)
	}
	c.logger.Debug("inserted transaction", "account", account, "id", id, "line", lineno, "categorized", rule != nil)

	// Kept unsorted; good enough for the balance check at the end.
	*directives = append(*directives, txn)
	return true, nil
}

// checkMark verifies that entries of account can be inserted, using the same
// text scan as the insertion itself. A mark the scan misses but the parser
// sees, such as one in an included file or with a quoted account, is named in
// the error.
func (c *Clerk) checkMark(directives ast.Directives, account ast.Account) error {
	_, err := FindMarkLine(c.cfg.InputFile, account)
	if err == nil || !errors.Is(err, ErrMarkNotFound) {
		return err
	}

	if mark, derr := FindMarkDirective(directives, account); derr == nil {
		return fmt.Errorf("%w: '%s', the mark at %s:%d must be a line of the form `YYYY-MM-DD custom \"%s\" %s` in %s",
			ErrMarkNotFound, account, mark.Pos.Filename, mark.Pos.Line, MarkType, account, c.cfg.InputFile)
	}
	return err
}

func (c *Clerk) reloadRules() ([]config.Rule, error) {
	c.logger.Info("reloading categorization rules", "path", c.cfg.ConfigFile)
	return config.LoadRules(c.cfg.ConfigFile)
}

func (c *Clerk) resolveDates(directives ast.Directives, account ast.Account, dates DateRange) (time.Time, time.Time, error) {
	var from, to time.Time

	if dates.From != nil {
		from = ast.NewDateFromTime(*dates.From).Time
	} else {
		last, err := LastImportDate(directives, account)
		if err != nil {
			return from, to, err
		}
		if last == nil {
			return from, to, ErrNoStartDate
		}
		from = last.Time
	}

	if dates.To != nil {
		to = ast.NewDateFromTime(*dates.To).Time
	} else {
		to = ast.NewDateFromTime(c.now()).Time
	}

	if from.After(to) {
		return from, to, fmt.Errorf("start date %s is after end date %s", from.Format(ast.DateLayout), to.Format(ast.DateLayout))
	}
	return from, to, nil
}

func (c *Clerk) printStatus(r Result) {
	status := c.styles.Success("OK") + ": " + c.styles.Amount(r.Balance.String())
	if !r.BalanceOK() {
		status = fmt.Sprintf("%s: %s (diff: %s)",
			c.styles.Error("NOT OK"),
			c.styles.Amount(r.Balance.String()),
			c.styles.Amount(signed(r.Diff, r.Balance.Value)+" "+r.Balance.Currency))
	}
	fmt.Fprintf(c.out, "New transactions: %d, balance %s\n", r.NewTransactions, status)
}

// signed formats d with an explicit sign and at least as many decimal places
// as the reported balance.
func signed(d decimal.Decimal, balance string) string {
	var places int32
	if b, err := decimal.NewFromString(balance); err == nil && b.Exponent() < 0 {
		places = -b.Exponent()
	}
	if exp := d.Exponent(); -exp > places {
		places = -exp
	}

	s := d.StringFixed(places)
	if d.IsPositive() {
		s = "+" + s
	}
	return s
}

func validateCandidate(account ast.Account, txn *ast.Transaction) (string, error) {
	if len(txn.Postings) != 1 {
		return "", fmt.Errorf("%w: expected 1 posting, got %d", ErrInvalidCandidate, len(txn.Postings))
	}
	if p := txn.Postings[0]; p.Account != account || p.Amount == nil {
		return "", fmt.Errorf("%w: posting must have an amount on %s", ErrInvalidCandidate, account)
	}
	id, ok := txn.Meta(importers.IDKey)
	if !ok || id == "" {
		return "", fmt.Errorf("%w: missing %q metadata", ErrInvalidCandidate, importers.IDKey)
	}
	return id, nil
}

// Check verifies that an import could start: the input ledger loads without
// errors, and every account has a mark and a known importer. All problems
// are reported together.
func (c *Clerk) Check(ctx context.Context) error {
	timer := telemetry.FromContext(ctx).Start("check")
	defer timer.End()

	directives, err := c.loadInput(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, acc := range c.cfg.Accounts {
		if err := c.checkMark(directives, acc.Account); err != nil {
			errs = append(errs, &Error{Account: acc.Account, Op: "find mark", Err: err})
		}
		if _, err := c.registry.Resolve(acc); err != nil {
			errs = append(errs, &Error{Account: acc.Account, Op: "resolve importer", Err: err})
		}
	}
	return errors.Join(errs...)
}
