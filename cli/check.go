package cli

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/beanclerk/clerk"
	beanerrors "github.com/robinvdvleuten/beanclerk/errors"
	"github.com/robinvdvleuten/beanclerk/importers"
)

type CheckCmd struct {
	Format string `help:"Output format for problems (${enum})." enum:"text,json" default:"text"`
}

func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	e, err := globals.setup(ctx)
	if err != nil {
		return err
	}
	defer e.report()

	c := clerk.New(e.cfg, clerk.WithLogger(e.logger))
	checkErr := c.Check(e.ctx)

	var errs []error
	if checkErr != nil {
		errs = Flatten(checkErr)
	}

	if cmd.Format == "json" {
		out, err := beanerrors.NewJSONFormatter("  ").FormatAll(errs)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(ctx.Stdout, out)
		if len(errs) > 0 {
			return NewCommandError(1)
		}
		return nil
	}

	if len(errs) > 0 {
		_, _ = fmt.Fprintln(ctx.Stderr, NewErrorRenderer(e.stderr).RenderAll(errs))
		_, _ = fmt.Fprintln(ctx.Stderr)
		printError(ctx.Stderr, e.stderr, fmt.Sprintf("%d problem(s) found", len(errs)))
		return NewCommandError(1)
	}

	for _, acc := range e.cfg.Accounts {
		printInfof(ctx.Stdout, e.stdout, "%s via %s", e.stdout.Account(string(acc.Account)), e.stdout.Keyword(acc.Importer))
	}
	printInfof(ctx.Stdout, e.stdout, "%d categorization rule(s), importers available: %v", len(e.cfg.Rules), importers.DefaultRegistry().Names())
	printSuccess(ctx.Stdout, e.stdout, "Check passed")

	return nil
}
