// Package loader loads Beancount ledgers from disk, optionally following
// include directives into a single merged AST.
//
// When following includes, relative paths are resolved from the directory of
// the file containing the include directive, and a file included more than
// once is loaded only the first time.
//
// Example usage:
//
//	ldr := loader.New(loader.WithFollowIncludes())
//	result, err := ldr.Load(ctx, "ledger.beancount")
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/robinvdvleuten/beanclerk/ast"
	"github.com/robinvdvleuten/beanclerk/parser"
	"github.com/robinvdvleuten/beanclerk/telemetry"
)

// Loader loads Beancount files.
type Loader struct {
	// FollowIncludes determines whether included files are loaded and merged.
	// When false, only the given file is parsed and ast.Includes is preserved.
	FollowIncludes bool
}

// Option configures how files are loaded.
type Option func(*Loader)

// WithFollowIncludes makes the loader resolve include directives recursively.
// Directives of included files are appended after those of the including file
// and the returned AST has no includes left.
func WithFollowIncludes() Option {
	return func(l *Loader) {
		l.FollowIncludes = true
	}
}

// New creates a new Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Result is a loaded ledger.
type Result struct {
	AST *ast.AST

	// Root is the absolute path of the file Load was called with.
	Root string

	// Includes lists the absolute paths of the included files that were
	// loaded, in load order. It is empty unless includes are followed.
	Includes []string
}

// Load parses filename and, when configured, every file it includes.
func (l *Loader) Load(ctx context.Context, filename string) (*Result, error) {
	timer := telemetry.FromContext(ctx).Start("load " + filepath.Base(filename))
	defer timer.End()

	root, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for %s: %w", filename, err)
	}

	if !l.FollowIncludes {
		tree, err := parseFile(ctx, filename)
		if err != nil {
			return nil, err
		}
		return &Result{AST: tree, Root: root}, nil
	}

	state := &loaderState{visited: make(map[string]bool)}
	tree, err := state.load(ctx, filename, root)
	if err != nil {
		return nil, err
	}

	return &Result{AST: tree, Root: root, Includes: state.includes}, nil
}

// Load is a shortcut for New(opts...).Load(ctx, filename).
func Load(ctx context.Context, filename string, opts ...Option) (*Result, error) {
	return New(opts...).Load(ctx, filename)
}

func parseFile(ctx context.Context, filename string) (*ast.AST, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return parser.ParseBytes(ctx, filename, data)
}

type loaderState struct {
	visited  map[string]bool
	includes []string
}

func (s *loaderState) load(ctx context.Context, filename, absPath string) (*ast.AST, error) {
	if s.visited[absPath] {
		return &ast.AST{}, nil
	}
	s.visited[absPath] = true

	tree, err := parseFile(ctx, filename)
	if err != nil {
		return nil, err
	}

	baseDir := filepath.Dir(absPath)
	merged := &ast.AST{
		Directives: tree.Directives,
		Options:    tree.Options,
		Plugins:    tree.Plugins,
	}

	for _, inc := range tree.Includes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := inc.Filename
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}

		if !s.visited[path] {
			s.includes = append(s.includes, path)
		}

		included, err := s.load(ctx, path, path)
		if err != nil {
			return nil, fmt.Errorf("in file %s: %w", filename, err)
		}

		// Options of the including file take precedence.
		merged.Directives = append(merged.Directives, included.Directives...)
		merged.Plugins = append(merged.Plugins, included.Plugins...)
	}

	return merged, nil
}
