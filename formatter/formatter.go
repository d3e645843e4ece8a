// Package formatter renders directives back into Beancount source text.
//
// Only transactions are rendered, in the layout bean-format produces: a header
// line, metadata, then postings whose numbers are right-aligned so that the
// currencies line up in one column.
package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/robinvdvleuten/beanclerk/ast"
)

const (
	// DefaultCurrencyColumn is the default column position for currency alignment
	// (matches bean-format behavior)
	DefaultCurrencyColumn = 52

	// DefaultIndentation is the default indentation for postings and metadata
	DefaultIndentation = 2

	// MinimumSpacing is the minimum number of spaces between account and number
	MinimumSpacing = 2
)

// Formatter handles formatting of Beancount directives with proper alignment.
type Formatter struct {
	// CurrencyColumn is the column at which numbers end. Postings with long
	// accounts push it further right for the whole transaction.
	CurrencyColumn int

	// Indentation is the number of spaces before postings and metadata.
	Indentation int
}

// Option is a functional option for configuring a Formatter.
type Option func(*Formatter)

// WithCurrencyColumn sets a specific column for currency alignment.
func WithCurrencyColumn(col int) Option {
	return func(f *Formatter) {
		f.CurrencyColumn = col
	}
}

// WithIndentation sets the indentation of postings and metadata.
func WithIndentation(n int) Option {
	return func(f *Formatter) {
		f.Indentation = n
	}
}

// New creates a new Formatter with the given options.
func New(opts ...Option) *Formatter {
	f := &Formatter{
		CurrencyColumn: DefaultCurrencyColumn,
		Indentation:    DefaultIndentation,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// FormatTransaction renders a transaction with the default formatter. The
// result ends with a newline.
func FormatTransaction(txn *ast.Transaction) string {
	return New().FormatTransaction(txn)
}

// FormatTransaction renders a transaction. The result ends with a newline.
//
// Format: date flag ["payee"] "narration" [^link]* [#tag]*
func (f *Formatter) FormatTransaction(t *ast.Transaction) string {
	var buf strings.Builder

	buf.WriteString(t.Date.String())
	buf.WriteByte(' ')
	buf.WriteString(t.Flag)

	if t.Payee != "" {
		buf.WriteByte(' ')
		writeQuoted(&buf, t.Payee)
	}

	// Narration is always written, even when empty, so the header stays
	// unambiguous when a payee is present.
	buf.WriteByte(' ')
	writeQuoted(&buf, t.Narration)

	for _, link := range t.Links {
		buf.WriteString(" ^")
		buf.WriteString(string(link))
	}

	for _, tag := range t.Tags {
		buf.WriteString(" #")
		buf.WriteString(string(tag))
	}

	buf.WriteByte('\n')

	f.formatMetadata(t.Metadata, f.Indentation, &buf)

	column := f.currencyColumn(t.Postings)
	for _, posting := range t.Postings {
		f.formatPosting(posting, column, &buf)
	}

	return buf.String()
}

// currencyColumn widens the configured column when a posting would not fit.
func (f *Formatter) currencyColumn(postings []*ast.Posting) int {
	column := f.CurrencyColumn
	for _, p := range postings {
		if p.Amount == nil {
			continue
		}
		needed := runewidth.StringWidth(f.postingPrefix(p)) + MinimumSpacing + len(p.Amount.Value)
		if needed > column {
			column = needed
		}
	}
	return column
}

func (f *Formatter) postingPrefix(p *ast.Posting) string {
	prefix := strings.Repeat(" ", f.Indentation)
	if p.Flag != "" {
		prefix += p.Flag + " "
	}
	return prefix + string(p.Account)
}

// formatPosting formats a single posting. Postings without an amount are
// written as the bare account.
func (f *Formatter) formatPosting(p *ast.Posting, column int, buf *strings.Builder) {
	prefix := f.postingPrefix(p)
	buf.WriteString(prefix)

	if p.Amount != nil {
		padding := column - runewidth.StringWidth(prefix) - len(p.Amount.Value)
		if padding < MinimumSpacing {
			padding = MinimumSpacing
		}
		buf.WriteString(strings.Repeat(" ", padding))
		buf.WriteString(p.Amount.String())

		if p.Cost != nil {
			buf.WriteByte(' ')
			formatCost(p.Cost, buf)
		}

		if p.Price != nil {
			if p.PriceTotal {
				buf.WriteString(" @@ ")
			} else {
				buf.WriteString(" @ ")
			}
			buf.WriteString(p.Price.String())
		}
	}

	buf.WriteByte('\n')

	f.formatMetadata(p.Metadata, 2*f.Indentation, buf)
}

// formatCost formats a cost specification.
func formatCost(cost *ast.Cost, buf *strings.Builder) {
	open, closing := "{", "}"
	if cost.Total {
		open, closing = "{{", "}}"
	}
	buf.WriteString(open)

	var parts []string
	if cost.Amount != nil {
		parts = append(parts, cost.Amount.String())
	}
	if cost.Date != nil {
		parts = append(parts, cost.Date.String())
	}
	if cost.Label != "" {
		parts = append(parts, quote(cost.Label))
	}
	buf.WriteString(strings.Join(parts, ", "))

	buf.WriteString(closing)
}

// formatMetadata writes one "key: value" line per entry. Values are strings
// and are always quoted.
func (f *Formatter) formatMetadata(metadata []*ast.Metadata, indent int, buf *strings.Builder) {
	for _, m := range metadata {
		buf.WriteString(strings.Repeat(" ", indent))
		buf.WriteString(m.Key)
		buf.WriteString(": ")
		writeQuoted(buf, m.Value)
		buf.WriteByte('\n')
	}
}
