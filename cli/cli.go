// Package cli implements the beanclerk command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/robinvdvleuten/beanclerk/ast"
	"github.com/robinvdvleuten/beanclerk/config"
	"github.com/robinvdvleuten/beanclerk/output"
	"github.com/robinvdvleuten/beanclerk/telemetry"
)

var (
	successSymbol = "✓"
	errorSymbol   = "✗"
	infoSymbol    = "→"
)

func printSuccess(w io.Writer, styles *output.Styles, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", styles.Success(successSymbol), message)
}

func printError(w io.Writer, styles *output.Styles, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", styles.Error(errorSymbol), styles.Error(message))
}

func printInfof(w io.Writer, styles *output.Styles, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, "%s %s\n", styles.Keyword(infoSymbol), fmt.Sprintf(format, args...))
}

// isTerminal is swapped in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Date is a YYYY-MM-DD command-line value. The zero Date means unset.
type Date struct {
	time.Time
}

// Decode implements kong.MapperValue.
func (d *Date) Decode(ctx *kong.DecodeContext) error {
	var value string
	if err := ctx.Scan.PopValueInto("date", &value); err != nil {
		return err
	}

	t, err := time.Parse(ast.DateLayout, value)
	if err != nil {
		return fmt.Errorf("'%s' is not a valid date format (YYYY-MM-DD)", value)
	}
	d.Time = t
	return nil
}

// Ptr returns the date, or nil when it was not given.
func (d Date) Ptr() *time.Time {
	if d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// env is what every command needs to run.
type env struct {
	ctx    context.Context
	cfg    *config.Config
	logger *log.Logger
	stdout *output.Styles
	stderr *output.Styles
	report func()
}

// setup loads the configuration and prepares logging and telemetry. The
// returned report func prints the timing tree when telemetry is enabled and
// must be called once the command is done.
func (g *Globals) setup(kctx *kong.Context) (*env, error) {
	e := &env{
		ctx:    context.Background(),
		stdout: output.NewStyles(kctx.Stdout),
		stderr: output.NewStyles(kctx.Stderr),
		report: func() {},
	}

	level := log.WarnLevel
	if g.Verbose {
		level = log.DebugLevel
	}
	e.logger = log.NewWithOptions(kctx.Stderr, log.Options{
		Level:  level,
		Prefix: "beanclerk",
	})

	if g.Telemetry {
		collector := telemetry.NewTimingCollector()
		e.ctx = telemetry.WithCollector(e.ctx, collector)
		e.report = func() {
			_, _ = fmt.Fprintln(kctx.Stderr)
			collector.Report(kctx.Stderr, e.stderr)
		}
	}

	cfg, err := config.Load(g.ConfigFile)
	if err != nil {
		printError(kctx.Stderr, e.stderr, err.Error())
		return nil, NewCommandError(1)
	}
	e.cfg = cfg
	e.logger.Debug("loaded config", "path", cfg.ConfigFile, "accounts", len(cfg.Accounts), "rules", len(cfg.Rules))

	return e, nil
}
