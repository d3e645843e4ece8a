package ast

// Commodity declares a commodity or currency that can be used in the ledger.
//
// Example:
//
//	2014-01-01 commodity USD
type Commodity struct {
	Pos      Position
	Date     *Date
	Currency string

	withMetadata
}

var _ Directive = &Commodity{}

func (c *Commodity) Position() Position { return c.Pos }
func (c *Commodity) GetDate() *Date     { return c.Date }
func (c *Commodity) Directive() string  { return "commodity" }

// Open declares the opening of an account at a specific date. Accounts must be
// opened before they can be used in transactions.
//
// Example:
//
//	2014-05-01 open Assets:US:BofA:Checking USD
type Open struct {
	Pos                  Position
	Date                 *Date
	Account              Account
	ConstraintCurrencies []string
	BookingMethod        string

	withMetadata
}

var _ Directive = &Open{}

func (o *Open) Position() Position { return o.Pos }
func (o *Open) GetDate() *Date     { return o.Date }
func (o *Open) Directive() string  { return "open" }

// Close declares the closing of an account at a specific date.
//
// Example:
//
//	2015-09-23 close Assets:US:BofA:Checking
type Close struct {
	Pos     Position
	Date    *Date
	Account Account

	withMetadata
}

var _ Directive = &Close{}

func (c *Close) Position() Position { return c.Pos }
func (c *Close) GetDate() *Date     { return c.Date }
func (c *Close) Directive() string  { return "close" }

// Balance asserts that an account has a specific balance at the beginning of a
// given date. It is how a ledger records a figure taken from a bank statement.
//
// Example:
//
//	2014-08-09 balance Assets:US:BofA:Checking 562.00 USD
type Balance struct {
	Pos     Position
	Date    *Date
	Account Account
	Amount  *Amount

	withMetadata
}

var _ Directive = &Balance{}

func (b *Balance) Position() Position { return b.Pos }
func (b *Balance) GetDate() *Date     { return b.Date }
func (b *Balance) Directive() string  { return "balance" }

// Pad inserts a transaction that brings Account to the balance asserted by the
// next balance directive, posting the difference against AccountPad.
//
// Example:
//
//	2014-01-01 pad Assets:US:BofA:Checking Equity:Opening-Balances
type Pad struct {
	Pos        Position
	Date       *Date
	Account    Account
	AccountPad Account

	withMetadata
}

var _ Directive = &Pad{}

func (p *Pad) Position() Position { return p.Pos }
func (p *Pad) GetDate() *Date     { return p.Date }
func (p *Pad) Directive() string  { return "pad" }

// Note attaches a dated comment to an account.
type Note struct {
	Pos         Position
	Date        *Date
	Account     Account
	Description string

	withMetadata
}

var _ Directive = &Note{}

func (n *Note) Position() Position { return n.Pos }
func (n *Note) GetDate() *Date     { return n.Date }
func (n *Note) Directive() string  { return "note" }

// Document associates an external file with an account.
type Document struct {
	Pos            Position
	Date           *Date
	Account        Account
	PathToDocument string

	withMetadata
}

var _ Directive = &Document{}

func (d *Document) Position() Position { return d.Pos }
func (d *Document) GetDate() *Date     { return d.Date }
func (d *Document) Directive() string  { return "document" }

// Price declares the price of a commodity in terms of another currency.
type Price struct {
	Pos       Position
	Date      *Date
	Commodity string
	Amount    *Amount

	withMetadata
}

var _ Directive = &Price{}

func (p *Price) Position() Position { return p.Pos }
func (p *Price) GetDate() *Date     { return p.Date }
func (p *Price) Directive() string  { return "price" }

// Event records a named event with a value at a specific date.
type Event struct {
	Pos   Position
	Date  *Date
	Name  string
	Value string

	withMetadata
}

var _ Directive = &Event{}

func (e *Event) Position() Position { return e.Pos }
func (e *Event) GetDate() *Date     { return e.Date }
func (e *Event) Directive() string  { return "event" }

// Query stores a named query in the ledger. Beanclerk keeps it but never
// runs it.
type Query struct {
	Pos   Position
	Date  *Date
	Name  string
	Query string

	withMetadata
}

var _ Directive = &Query{}

func (q *Query) Position() Position { return q.Pos }
func (q *Query) GetDate() *Date     { return q.Date }
func (q *Query) Directive() string  { return "query" }

// Custom is a directive with a type name followed by arbitrary typed values.
// Beanclerk uses it to mark where imported entries of an account go:
//
//	2023-01-01 custom "beanclerk-mark" Assets:Bank:Fio
type Custom struct {
	Pos    Position
	Date   *Date
	Type   string
	Values []*CustomValue

	withMetadata
}

var _ Directive = &Custom{}

func (c *Custom) Position() Position { return c.Pos }
func (c *Custom) GetDate() *Date     { return c.Date }
func (c *Custom) Directive() string  { return "custom" }

// CustomValue represents a single value in a custom directive. Only one field is
// set for each value.
type CustomValue struct {
	String       *string
	BooleanValue *bool
	Account      *Account
	Amount       *Amount
	Number       *string
	Date         *Date
}

// GetValue returns the actual value stored in this CustomValue.
func (cv *CustomValue) GetValue() any {
	switch {
	case cv.String != nil:
		return *cv.String
	case cv.BooleanValue != nil:
		return *cv.BooleanValue
	case cv.Account != nil:
		return *cv.Account
	case cv.Amount != nil:
		return cv.Amount
	case cv.Number != nil:
		return *cv.Number
	case cv.Date != nil:
		return cv.Date
	default:
		return nil
	}
}
