package cli

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/beanclerk/clerk"
	"github.com/robinvdvleuten/beanclerk/history"
)

type ImportCmd struct {
	FromDate  Date   `help:"First date to import (YYYY-MM-DD). Defaults to the date of the last imported transaction." placeholder:"YYYY-MM-DD"`
	ToDate    Date   `help:"Last date to import (YYYY-MM-DD). Defaults to today." placeholder:"YYYY-MM-DD"`
	Unmatched string `help:"What to do with transactions no rule matches: ${enum}." enum:"prompt,import" default:"prompt"`
}

func (cmd *ImportCmd) Run(ctx *kong.Context, globals *Globals) error {
	e, err := globals.setup(ctx)
	if err != nil {
		return err
	}
	defer e.report()

	opts := []clerk.Option{
		clerk.WithLogger(e.logger),
		clerk.WithOutput(ctx.Stdout, e.stdout),
	}

	switch cmd.Unmatched {
	case "import":
		opts = append(opts, clerk.WithPrompter(&clerk.StaticPrompter{Actions: []clerk.Action{clerk.ActionImport}}))
	default:
		prompter, err := NewTerminalPrompter()
		if err != nil {
			printError(ctx.Stderr, e.stderr, err.Error())
			return NewCommandError(2)
		}
		opts = append(opts, clerk.WithPrompter(prompter))
	}

	if e.cfg.HistoryFile != "" {
		store, err := history.Open(e.cfg.HistoryFile)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, clerk.WithHistory(store))
	}

	c := clerk.New(e.cfg, opts...)
	results, err := c.ImportTransactions(e.ctx, clerk.DateRange{From: cmd.FromDate.Ptr(), To: cmd.ToDate.Ptr()})
	if err != nil {
		renderClerkError(ctx, e, err)
		return NewCommandError(1)
	}

	total := 0
	for _, r := range results {
		total += r.NewTransactions
	}
	printSuccess(ctx.Stdout, e.stdout, fmt.Sprintf("Imported %d transaction(s) into %s", total, e.stdout.FilePath(e.cfg.InputFile)))

	return nil
}

// renderClerkError prints err and, for an invalid input file, every error
// found in it.
func renderClerkError(ctx *kong.Context, e *env, err error) {
	errs := Flatten(err)
	_, _ = fmt.Fprintln(ctx.Stderr, NewErrorRenderer(e.stderr).RenderAll(errs))
	_, _ = fmt.Fprintln(ctx.Stderr)
	if len(errs) > 1 || errs[0] != err {
		printError(ctx.Stderr, e.stderr, err.Error())
		return
	}
	printError(ctx.Stderr, e.stderr, "import failed")
}
