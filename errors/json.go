// Package errors renders ledger, parser and import errors as JSON for
// machine consumption, such as "beanclerk check --format json" in CI.
package errors

import (
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/robinvdvleuten/beanclerk/ast"
)

// JSONFormatter formats errors as JSON.
type JSONFormatter struct {
	indent string
}

// NewJSONFormatter creates a new JSON formatter. Arrays produced by
// FormatAll are indented with indent when it is not empty.
func NewJSONFormatter(indent string) *JSONFormatter {
	return &JSONFormatter{indent: indent}
}

// ErrorJSON represents an error in JSON format.
type ErrorJSON struct {
	Type     string        `json:"type"`
	Message  string        `json:"message"`
	Position *PositionJSON `json:"position,omitempty"`
	Account  string        `json:"account,omitempty"`
	Date     string        `json:"date,omitempty"`
}

// PositionJSON represents a file position in JSON format.
type PositionJSON struct {
	Filename string `json:"filename"`
	Line     int    `json:"line"`
	Column   int    `json:"column,omitempty"`
}

type positioned interface {
	GetPosition() ast.Position
}

type withDirective interface {
	GetDirective() ast.Directive
}

type withAccount interface {
	GetAccount() ast.Account
}

// Format formats a single error as a JSON object.
func (jf *JSONFormatter) Format(err error) (string, error) {
	data, merr := json.Marshal(jf.ToJSON(err))
	if merr != nil {
		return "", fmt.Errorf("cannot encode error: %w", merr)
	}
	return string(data), nil
}

// FormatAll formats errs as a JSON array. An empty slice yields "[]".
func (jf *JSONFormatter) FormatAll(errs []error) (string, error) {
	items := make([]ErrorJSON, 0, len(errs))
	for _, err := range errs {
		items = append(items, jf.ToJSON(err))
	}

	var (
		data []byte
		merr error
	)
	if jf.indent != "" {
		data, merr = json.MarshalIndent(items, "", jf.indent)
	} else {
		data, merr = json.Marshal(items)
	}
	if merr != nil {
		return "", fmt.Errorf("cannot encode errors: %w", merr)
	}
	return string(data), nil
}

// ToJSON converts err to ErrorJSON. Position, account and date are taken
// from the first error in the chain that carries them.
func (jf *JSONFormatter) ToJSON(err error) ErrorJSON {
	out := ErrorJSON{
		Type:    typeName(err),
		Message: err.Error(),
	}

	var p positioned
	if stdErrors.As(err, &p) {
		if pos := p.GetPosition(); pos.Filename != "" || pos.Line > 0 {
			out.Position = &PositionJSON{
				Filename: pos.Filename,
				Line:     pos.Line,
				Column:   pos.Column,
			}
		}
	}

	var a withAccount
	if stdErrors.As(err, &a) {
		out.Account = string(a.GetAccount())
	}

	var d withDirective
	if stdErrors.As(err, &d) {
		if directive := d.GetDirective(); directive != nil {
			out.Date = directive.GetDate().String()
		}
	}

	return out
}

// typeName returns the bare type name of err, e.g. "AccountNotOpenError".
func typeName(err error) string {
	name := strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}
