// Package ast declares the types used to represent Beancount ledger files.
//
// The types cover the directives an importer needs to reason about: transactions
// with their postings and metadata, account lifecycle directives, balance
// assertions and custom directives such as the beanclerk insertion mark. An AST
// is usually produced by the parser package, but directives can also be
// constructed programmatically with the builder functions, which is how bank
// importers create new transactions.
package ast

import (
	"golang.org/x/exp/slices"
)

// Directives is an ordered list of directives. Parsers keep the order in which
// directives appear in the source, which matters for "latest entry" queries.
type Directives []Directive

// AST represents a parsed Beancount file.
type AST struct {
	Directives Directives
	Options    []*Option
	Includes   []*Include
	Plugins    []*Plugin
}

// WithMetadata is implemented by nodes that can carry metadata.
type WithMetadata interface {
	AddMetadata(...*Metadata)
}

// withMetadata is an embeddable struct that implements WithMetadata.
type withMetadata struct {
	Metadata []*Metadata
}

func (w *withMetadata) AddMetadata(m ...*Metadata) {
	w.Metadata = append(w.Metadata, m...)
}

// Meta returns the value stored under key, if any.
func (w *withMetadata) Meta(key string) (string, bool) {
	for _, m := range w.Metadata {
		if m.Key == key {
			return m.Value, true
		}
	}
	return "", false
}

// Directive is the interface implemented by all dated Beancount directives.
type Directive interface {
	WithMetadata

	Position() Position
	GetDate() *Date
	Directive() string
}

// compareDirectives orders directives by date. On the same date, open
// directives come first and close directives second, so accounts exist before
// they are used.
func compareDirectives(a, b Directive) int {
	if c := a.GetDate().Compare(b.GetDate().Time); c != 0 {
		return c
	}
	return directiveTypePriority(a) - directiveTypePriority(b)
}

func directiveTypePriority(d Directive) int {
	switch d.(type) {
	case *Open:
		return 0
	case *Close:
		return 1
	case *Balance:
		// Balance assertions apply at the beginning of the day.
		return 2
	default:
		return 3
	}
}

// Sorted returns a copy of the directives ordered by date. The sort is stable,
// so directives sharing a date keep their file order.
func (d Directives) Sorted() Directives {
	sorted := slices.Clone(d)
	slices.SortStableFunc(sorted, compareDirectives)
	return sorted
}

// Transactions returns the transactions among the directives, in order.
func (d Directives) Transactions() []*Transaction {
	var txns []*Transaction
	for _, directive := range d {
		if txn, ok := directive.(*Transaction); ok {
			txns = append(txns, txn)
		}
	}
	return txns
}
