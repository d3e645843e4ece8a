// Package importers fetches bank statements and turns them into candidate
// transactions.
//
// Every importer returns transactions with a single posting on the imported
// account and an "id" metadata entry holding the bank's identifier of the
// movement. Importers are looked up by the name used in the configuration
// file:
//
//	registry := importers.DefaultRegistry()
//	imp, err := registry.Resolve(accountConfig)
//	stmt, err := imp.Fetch(ctx, accountConfig.Account, from, to)
package importers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robinvdvleuten/beanclerk/ast"
	"github.com/robinvdvleuten/beanclerk/config"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// IDKey is the metadata key holding the bank's transaction identifier.
const IDKey = "id"

// Statement is the result of a fetch.
type Statement struct {
	// Transactions in the order the bank reported them.
	Transactions []*ast.Transaction

	// Balance is the closing balance reported by the bank.
	Balance ast.Amount
}

// Importer fetches the transactions of an account between two dates, both
// inclusive.
type Importer interface {
	Fetch(ctx context.Context, account ast.Account, from, to time.Time) (*Statement, error)
}

// Factory creates an importer from the options of an account entry.
type Factory func(opts config.Options) (Importer, error)

// ErrUnknownImporter is returned when no importer is registered under a name.
var ErrUnknownImporter = errors.New("unknown importer")

// Registry maps importer names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory. Panics on duplicate names.
func (r *Registry) Register(name string, factory Factory) {
	key := strings.ToLower(name)
	if _, ok := r.factories[key]; ok {
		panic("duplicate importer: " + key)
	}
	r.factories[key] = factory
}

// Names returns the registered importer names, sorted.
func (r *Registry) Names() []string {
	names := maps.Keys(r.factories)
	slices.Sort(names)
	return names
}

// Resolve creates the importer configured for an account.
func (r *Registry) Resolve(acc config.AccountConfig) (Importer, error) {
	factory, ok := r.factories[strings.ToLower(acc.Importer)]
	if !ok {
		return nil, fmt.Errorf("%w %q for %s (available: %s)",
			ErrUnknownImporter, acc.Importer, acc.Account, strings.Join(r.Names(), ", "))
	}

	imp, err := factory(acc.Options)
	if err != nil {
		return nil, fmt.Errorf("importer %s for %s: %w", acc.Importer, acc.Account, err)
	}
	return imp, nil
}

// DefaultRegistry returns a registry with all built-in importers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(FioName, NewFio)
	r.Register(CSVName, NewCSV)
	return r
}

// newCandidate builds a transaction with a single posting, flagged for
// review.
func newCandidate(date time.Time, account ast.Account, amount, currency string, metadata []*ast.Metadata) *ast.Transaction {
	return ast.NewTransaction(ast.NewDateFromTime(date), "",
		ast.WithFlag("!"),
		ast.WithTransactionMetadata(metadata...),
		ast.WithPostings(ast.NewPosting(account, ast.WithAmount(amount, currency))),
	)
}

// inRange reports whether date lies between from and to, both inclusive.
func inRange(date, from, to time.Time) bool {
	return !date.Before(from) && !date.After(to)
}
