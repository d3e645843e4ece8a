package ast

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the ISO 8601 layout used for every date in a ledger.
const DateLayout = "2006-01-02"

// Amount represents a numerical value with its associated currency or commodity symbol.
// The value is stored as a string to preserve the exact decimal representation from
// the input, avoiding floating-point precision issues.
type Amount struct {
	Value    string
	Currency string
}

// String returns the amount as written in a ledger, e.g. "100.00 USD".
func (a Amount) String() string {
	if a.Currency == "" {
		return a.Value
	}
	return a.Value + " " + a.Currency
}

// Cost represents the cost basis specification for a posting.
//
// Example cost specifications:
//
//	10 HOOL {518.73 USD}              ; Per-unit cost
//	10 HOOL {518.73 USD, 2014-05-01}  ; Cost with acquisition date
//	-5 HOOL {502.12 USD, "first-lot"} ; Cost with label for lot selection
//	10 HOOL {}                        ; Any lot (automatic selection)
type Cost struct {
	Amount *Amount
	Total  bool // {{...}} total cost instead of per-unit cost
	Date   *Date
	Label  string
}

// IsEmpty returns true if this is an empty cost specification {}.
func (c *Cost) IsEmpty() bool {
	return c != nil && c.Amount == nil && c.Date == nil && c.Label == ""
}

// Account represents a Beancount account name consisting of at least two colon-separated
// segments. The first segment must be one of Assets, Liabilities, Equity, Income or
// Expenses. Subsequent segments must start with an uppercase letter or digit and can
// contain letters, numbers, and hyphens.
//
// Example accounts:
//
//	Assets:US:BofA:Checking
//	Liabilities:CreditCard:CapitalOne
//	Expenses:Home:Rent
type Account string

// accountSegmentRegex validates account segments after the root type.
var accountSegmentRegex = regexp.MustCompile(`^[\p{Lu}\p{Nd}][\p{L}\p{Nd}-]*$`)

// Validate reports whether the account name is well formed.
func (a Account) Validate() error {
	parts := strings.Split(string(a), ":")
	if len(parts) < 2 {
		return fmt.Errorf("account must have at least two segments: %q", string(a))
	}

	switch parts[0] {
	case "Assets", "Liabilities", "Equity", "Income", "Expenses":
	default:
		return fmt.Errorf("unexpected account type %q in %q", parts[0], string(a))
	}

	for i := 1; i < len(parts); i++ {
		if !accountSegmentRegex.MatchString(parts[i]) {
			return fmt.Errorf("invalid account segment at position %d: %q", i, parts[i])
		}
	}
	return nil
}

// currencyRegex matches Beancount commodity symbols.
var currencyRegex = regexp.MustCompile(`^([A-Z]|[A-Z][A-Z0-9'._-]{0,22}[A-Z0-9])$`)

// ValidCurrency reports whether s is a valid commodity symbol.
func ValidCurrency(s string) bool {
	return currencyRegex.MatchString(s)
}

// Date represents a calendar date without a time component.
type Date struct {
	time.Time
}

// String returns the date in YYYY-MM-DD form.
func (d *Date) String() string {
	if d == nil {
		return ""
	}
	return d.Format(DateLayout)
}

// IsZero returns true if the Date is nil or represents the zero time.
func (d *Date) IsZero() bool {
	if d == nil {
		return true
	}
	return d.Time.IsZero()
}

// Link represents a reference link starting with ^, used to connect related transactions.
type Link string

// Tag represents a hashtag starting with #, used to categorize transactions.
type Tag string

// Metadata represents a key-value pair attached to a directive or posting. Values are
// kept as their textual form; quoted strings are stored unquoted.
//
// Example:
//
//	2023-01-02 ! ""
//	  id: "10000000001"
//	  vs: "0001"
//	  Assets:Bank:Fio  -1500.89 CZK
type Metadata struct {
	Key   string
	Value string
}
