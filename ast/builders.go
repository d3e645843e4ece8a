package ast

import (
	"fmt"
	"time"
)

// NewAmount creates a new Amount with the given value and currency.
// The value should be a decimal string (e.g., "100.50", "-42.00").
func NewAmount(value, currency string) *Amount {
	return &Amount{
		Value:    value,
		Currency: currency,
	}
}

// NewDate parses a date string in YYYY-MM-DD format and returns a Date.
//
// Example:
//
//	date, err := ast.NewDate("2024-01-15")
func NewDate(s string) (*Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %s", s)
	}
	return &Date{Time: t}, nil
}

// NewDateFromTime creates a Date from a time.Time value, dropping the time of day.
func NewDateFromTime(t time.Time) *Date {
	y, m, d := t.Date()
	return &Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// NewAccount creates an Account from the given name string and validates it.
//
// Example:
//
//	account, err := ast.NewAccount("Assets:US:BofA:Checking")
func NewAccount(name string) (Account, error) {
	account := Account(name)
	if err := account.Validate(); err != nil {
		return "", err
	}
	return account, nil
}

// NewMetadata creates a Metadata key-value pair.
func NewMetadata(key, value string) *Metadata {
	return &Metadata{Key: key, Value: value}
}

// TransactionOption is a functional option for configuring a Transaction.
type TransactionOption func(*Transaction)

// NewTransaction creates a new Transaction with the given date and narration.
// Additional fields can be set using functional options.
//
// Example:
//
//	txn := ast.NewTransaction(date, "",
//	    ast.WithFlag("!"),
//	    ast.WithTransactionMetadata(ast.NewMetadata("id", "10000000001")),
//	    ast.WithPostings(
//	        ast.NewPosting(checkingAccount, ast.WithAmount("-1500.89", "CZK")),
//	    ),
//	)
func NewTransaction(date *Date, narration string, opts ...TransactionOption) *Transaction {
	txn := &Transaction{
		Date:      date,
		Narration: narration,
		Flag:      "*",
	}

	for _, opt := range opts {
		opt(txn)
	}

	return txn
}

// WithFlag sets the transaction flag.
func WithFlag(flag string) TransactionOption {
	return func(t *Transaction) {
		t.Flag = flag
	}
}

// WithPayee sets the transaction payee.
func WithPayee(payee string) TransactionOption {
	return func(t *Transaction) {
		t.Payee = payee
	}
}

// WithTags adds tags to the transaction.
func WithTags(tags ...string) TransactionOption {
	return func(t *Transaction) {
		for _, tag := range tags {
			t.Tags = append(t.Tags, Tag(tag))
		}
	}
}

// WithLinks adds links to the transaction.
func WithLinks(links ...string) TransactionOption {
	return func(t *Transaction) {
		for _, link := range links {
			t.Links = append(t.Links, Link(link))
		}
	}
}

// WithTransactionMetadata adds metadata entries to the transaction.
func WithTransactionMetadata(metadata ...*Metadata) TransactionOption {
	return func(t *Transaction) {
		t.AddMetadata(metadata...)
	}
}

// WithPostings sets the postings for the transaction.
func WithPostings(postings ...*Posting) TransactionOption {
	return func(t *Transaction) {
		t.Postings = postings
	}
}

// PostingOption is a functional option for configuring a Posting.
type PostingOption func(*Posting)

// NewPosting creates a new Posting for the given account.
func NewPosting(account Account, opts ...PostingOption) *Posting {
	posting := &Posting{
		Account: account,
	}

	for _, opt := range opts {
		opt(posting)
	}

	return posting
}

// WithAmount sets the amount for a posting.
func WithAmount(value, currency string) PostingOption {
	return func(p *Posting) {
		p.Amount = NewAmount(value, currency)
	}
}

// WithPrice sets the per-unit price for a posting (using @ syntax).
func WithPrice(price *Amount) PostingOption {
	return func(p *Posting) {
		p.Price = price
		p.PriceTotal = false
	}
}

// WithCost sets the cost specification for a posting.
func WithCost(cost *Cost) PostingOption {
	return func(p *Posting) {
		p.Cost = cost
	}
}

// WithPostingFlag sets the flag for a posting.
func WithPostingFlag(flag string) PostingOption {
	return func(p *Posting) {
		p.Flag = flag
	}
}

// WithPostingMetadata adds metadata entries to the posting.
func WithPostingMetadata(metadata ...*Metadata) PostingOption {
	return func(p *Posting) {
		p.AddMetadata(metadata...)
	}
}

// NewCustom creates a Custom directive.
//
// Example:
//
//	mark := ast.NewCustom(date, "beanclerk-mark", ast.NewAccountValue(account))
func NewCustom(date *Date, typeName string, values ...*CustomValue) *Custom {
	return &Custom{
		Date:   date,
		Type:   typeName,
		Values: values,
	}
}

// NewAccountValue wraps an account as a custom directive value.
func NewAccountValue(account Account) *CustomValue {
	return &CustomValue{Account: &account}
}

// NewStringValue wraps a string as a custom directive value.
func NewStringValue(s string) *CustomValue {
	return &CustomValue{String: &s}
}

// NewOpen creates an Open directive for an account.
func NewOpen(date *Date, account Account, constraintCurrencies ...string) *Open {
	return &Open{
		Date:                 date,
		Account:              account,
		ConstraintCurrencies: constraintCurrencies,
	}
}

// NewBalance creates a Balance assertion directive.
func NewBalance(date *Date, account Account, amount *Amount) *Balance {
	return &Balance{
		Date:    date,
		Account: account,
		Amount:  amount,
	}
}

// NewPad creates a Pad directive.
func NewPad(date *Date, account, padAccount Account) *Pad {
	return &Pad{
		Date:       date,
		Account:    account,
		AccountPad: padAccount,
	}
}
