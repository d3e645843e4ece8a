package cli

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/robinvdvleuten/beanclerk/ast"
	"github.com/robinvdvleuten/beanclerk/history"
	"github.com/robinvdvleuten/beanclerk/output"
)

type HistoryCmd struct {
	Account string `help:"Only show imports of this account."`
	Limit   int    `help:"Maximum number of imports to show (0 for all)." default:"20"`
}

func (cmd *HistoryCmd) Run(ctx *kong.Context, globals *Globals) error {
	e, err := globals.setup(ctx)
	if err != nil {
		return err
	}
	defer e.report()

	if e.cfg.HistoryFile == "" {
		printError(ctx.Stderr, e.stderr, "no history_file configured")
		return NewCommandError(1)
	}

	filter := history.Filter{Account: ast.Account(cmd.Account), Limit: cmd.Limit}
	if filter.Account != "" {
		if err := filter.Account.Validate(); err != nil {
			return err
		}
	}

	store, err := history.Open(e.cfg.HistoryFile)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(e.ctx, filter)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		printInfof(ctx.Stdout, e.stdout, "No imports recorded in %s", e.stdout.FilePath(store.Path()))
		return nil
	}

	_, _ = fmt.Fprintln(ctx.Stdout, historyTable(e.stdout, runs))
	return nil
}

func historyTable(styles *output.Styles, runs []history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		status := "OK"
		if !run.BalanceOK() {
			status = "NOT OK (diff: " + run.Diff().String() + ")"
		}
		rows = append(rows, []string{
			strconv.FormatInt(run.ID, 10),
			run.ImportedAt.Local().Format("2006-01-02 15:04"),
			string(run.Account),
			run.Importer,
			run.FromDate.Format(ast.DateLayout) + ".." + run.ToDate.Format(ast.DateLayout),
			strconv.Itoa(run.NewTransactions),
			run.ImporterBalance.String() + " " + run.Currency,
			status,
		})
	}

	r := styles.Renderer()
	header := r.NewStyle().Bold(true).Padding(0, 1)
	cell := r.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.NewStyle().Faint(true)).
		Headers("ID", "IMPORTED", "ACCOUNT", "IMPORTER", "RANGE", "NEW", "BALANCE", "STATUS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	return t.Render()
}
