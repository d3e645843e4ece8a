package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/robinvdvleuten/beanclerk/ast"
	"github.com/robinvdvleuten/beanclerk/clerk"
	"github.com/robinvdvleuten/beanclerk/formatter"
)

// ErrNotTerminal is returned when unmatched transactions should be prompted
// for but stdin is not a terminal.
var ErrNotTerminal = errors.New("stdin is not a terminal, use --unmatched=import to import unmatched transactions as is")

// TerminalPrompter asks the operator what to do with transactions no rule
// matches.
type TerminalPrompter struct{}

// NewTerminalPrompter returns a prompter reading from the terminal.
func NewTerminalPrompter() (*TerminalPrompter, error) {
	if !isTerminal() {
		return nil, ErrNotTerminal
	}
	return &TerminalPrompter{}, nil
}

// ChooseAction implements clerk.Prompter.
func (p *TerminalPrompter) ChooseAction(ctx context.Context, txn *ast.Transaction) (clerk.Action, error) {
	action := clerk.ActionReload

	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[clerk.Action]().
			Title("No categorization rule matches this transaction").
			Description(formatter.FormatTransaction(txn)).
			Options(
				huh.NewOption("Reload the rules and try again", clerk.ActionReload),
				huh.NewOption("Import the transaction as is", clerk.ActionImport),
			).
			Value(&action),
	))

	if err := form.RunWithContext(ctx); err != nil {
		return 0, fmt.Errorf("failed to read response: %w", err)
	}
	return action, nil
}
