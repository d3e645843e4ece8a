package ast

import "golang.org/x/exp/slices"

// Transaction records a financial transaction with a date, flag, optional payee,
// narration, and a list of postings. The flag indicates transaction status: '*' for
// cleared transactions and '!' for transactions that still need attention, which is
// how freshly imported bank movements are marked.
//
// Example:
//
//	2014-05-05 * "Cafe Mogador" "Lamb tagine with wine"
//	  Liabilities:CreditCard:CapitalOne         -37.45 USD
//	  Expenses:Food:Restaurant
type Transaction struct {
	Pos       Position
	Date      *Date
	Flag      string
	Payee     string
	Narration string
	Links     []Link
	Tags      []Tag

	withMetadata

	Postings []*Posting
}

var _ Directive = &Transaction{}

func (t *Transaction) Position() Position { return t.Pos }
func (t *Transaction) GetDate() *Date     { return t.Date }
func (t *Transaction) Directive() string  { return "transaction" }

// Clone returns a deep copy of the transaction. Categorization works on clones
// so candidates fetched from a bank are never modified in place.
func (t *Transaction) Clone() *Transaction {
	clone := *t
	if t.Date != nil {
		date := *t.Date
		clone.Date = &date
	}
	clone.Links = slices.Clone(t.Links)
	clone.Tags = slices.Clone(t.Tags)
	clone.Metadata = cloneMetadata(t.Metadata)
	clone.Postings = make([]*Posting, len(t.Postings))
	for i, p := range t.Postings {
		clone.Postings[i] = p.Clone()
	}
	return &clone
}

// Posting represents a single leg of a transaction, specifying an account and optional
// amount, cost, and price. One posting per transaction may omit its amount, which is
// then inferred by the ledger.
//
// Example postings within transactions:
//
//	Assets:Investments:Brokerage    10 HOOL {518.73 USD}  ; Purchase with cost
//	Assets:Investments:Cash        200 EUR @ 1.35 USD     ; Currency conversion with price
//	Expenses:Groceries              45.60 USD              ; Simple posting
//	Assets:Checking                                        ; Inferred amount
type Posting struct {
	Pos        Position
	Flag       string
	Account    Account
	Amount     *Amount
	Cost       *Cost
	PriceTotal bool // @@ instead of @
	Price      *Amount

	withMetadata
}

// Clone returns a deep copy of the posting.
func (p *Posting) Clone() *Posting {
	clone := *p
	if p.Amount != nil {
		amount := *p.Amount
		clone.Amount = &amount
	}
	if p.Price != nil {
		price := *p.Price
		clone.Price = &price
	}
	if p.Cost != nil {
		cost := *p.Cost
		if p.Cost.Amount != nil {
			amount := *p.Cost.Amount
			cost.Amount = &amount
		}
		clone.Cost = &cost
	}
	clone.Metadata = cloneMetadata(p.Metadata)
	return &clone
}

func cloneMetadata(metadata []*Metadata) []*Metadata {
	if metadata == nil {
		return nil
	}
	cloned := make([]*Metadata, len(metadata))
	for i, m := range metadata {
		entry := *m
		cloned[i] = &entry
	}
	return cloned
}
