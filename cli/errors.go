package cli

import (
	"errors"
	"os"
	"strings"

	"github.com/robinvdvleuten/beanclerk/ast"
	"github.com/robinvdvleuten/beanclerk/formatter"
	"github.com/robinvdvleuten/beanclerk/ledger"
	"github.com/robinvdvleuten/beanclerk/output"
)

// CommandError signals a command failure with a specific exit code.
// Commands return this after handling all output (printing errors/warnings to stderr).
// Main centralizes exit handling instead of commands calling os.Exit directly.
type CommandError struct {
	exitCode int
}

// NewCommandError creates a new CommandError with the given exit code.
func NewCommandError(exitCode int) *CommandError {
	return &CommandError{exitCode: exitCode}
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return "command failed"
}

// ExitCode returns the exit code associated with this error.
func (e *CommandError) ExitCode() int {
	return e.exitCode
}

// ErrorRenderer renders errors with terminal styling and source context.
// Sources are read from the file named in an error's position.
type ErrorRenderer struct {
	styles  *output.Styles
	sources map[string][]string
	read    func(string) ([]byte, error)
}

// NewErrorRenderer creates a renderer using styles.
func NewErrorRenderer(styles *output.Styles) *ErrorRenderer {
	return &ErrorRenderer{
		styles:  styles,
		sources: make(map[string][]string),
		read:    os.ReadFile,
	}
}

type positioned interface {
	GetPosition() ast.Position
	Error() string
}

type withDirective interface {
	positioned
	GetDirective() ast.Directive
}

// Render formats a single error with styling and context.
// Errors wrapping a positioned error, such as a parse error of an included
// file, are rendered at that position.
func (r *ErrorRenderer) Render(err error) string {
	var wd withDirective
	if errors.As(err, &wd) {
		if txn, ok := wd.GetDirective().(*ast.Transaction); ok {
			return r.renderTransaction(wd.Error(), txn)
		}
	}

	var p positioned
	if errors.As(err, &p) {
		if lines := r.source(p.GetPosition().Filename); lines != nil {
			return r.renderWithSourceContext(p.GetPosition(), p.Error(), lines)
		}
	}

	return r.styles.Error(err.Error())
}

// RenderAll formats multiple errors, separating them with blank lines.
func (r *ErrorRenderer) RenderAll(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	var buf strings.Builder
	for i, err := range errs {
		buf.WriteString(strings.TrimRight(r.Render(err), "\n"))

		if i < len(errs)-1 {
			buf.WriteString("\n\n")
		}
	}

	return buf.String()
}

// Flatten returns the individual errors of err: the elements of joined
// errors and of ledger validation errors, in order.
func Flatten(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var errs []error
		for _, e := range joined.Unwrap() {
			errs = append(errs, Flatten(e)...)
		}
		return errs
	}

	var verr *ledger.ValidationErrors
	if errors.As(err, &verr) {
		return verr.Errors
	}

	return []error{err}
}

func (r *ErrorRenderer) source(filename string) []string {
	if filename == "" {
		return nil
	}
	if lines, ok := r.sources[filename]; ok {
		return lines
	}

	data, err := r.read(filename)
	if err != nil {
		r.sources[filename] = nil
		return nil
	}
	lines := strings.Split(string(data), "\n")
	r.sources[filename] = lines
	return lines
}

func (r *ErrorRenderer) renderWithSourceContext(pos ast.Position, message string, sourceLines []string) string {
	var buf strings.Builder

	buf.WriteString(r.styles.Error(message))
	buf.WriteString("\n\n")

	startLine := pos.Line - 3
	endLine := pos.Line + 1

	if startLine < 0 {
		startLine = 0
	}
	if endLine >= len(sourceLines) {
		endLine = len(sourceLines) - 1
	}

	for i := startLine; i <= endLine; i++ {
		buf.WriteString("   ")
		buf.WriteString(r.styles.Dim(sourceLines[i]))
		buf.WriteByte('\n')

		if i == pos.Line-1 && pos.Column > 0 {
			buf.WriteString("   ")
			buf.WriteString(strings.Repeat(" ", pos.Column-1))
			buf.WriteString(r.styles.Error("^"))
			buf.WriteByte('\n')
		}
	}

	return buf.String()
}

func (r *ErrorRenderer) renderTransaction(message string, txn *ast.Transaction) string {
	var buf strings.Builder

	buf.WriteString(r.styles.Error(message))
	buf.WriteString("\n\n")

	f := formatter.New(formatter.WithIndentation(2))
	for _, line := range strings.Split(f.FormatTransaction(txn), "\n") {
		if line == "" {
			continue
		}
		buf.WriteString("   ")
		buf.WriteString(r.styles.Dim(line))
		buf.WriteByte('\n')
	}

	return buf.String()
}
