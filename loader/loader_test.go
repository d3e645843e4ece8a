package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/beanclerk/ast"
	"github.com/robinvdvleuten/beanclerk/parser"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	assert.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func accounts(directives ast.Directives) []string {
	var names []string
	for _, d := range directives {
		names = append(names, string(d.(*ast.Open).Account))
	}
	return names
}

func TestLoadSingleFile(t *testing.T) {
	tmpDir := t.TempDir()
	mainFile := filepath.Join(tmpDir, "main.beancount")
	writeFile(t, mainFile, `2024-01-01 open Assets:Checking USD
2024-01-02 * "Test"
  Assets:Checking  100.00 USD
  Equity:Opening-Balances
`)

	for _, opts := range [][]Option{nil, {WithFollowIncludes()}} {
		result, err := New(opts...).Load(context.Background(), mainFile)
		assert.NoError(t, err)
		assert.Equal(t, 2, len(result.AST.Directives))
		assert.Equal(t, mainFile, result.Root)
		assert.Equal(t, 0, len(result.Includes))
	}
}

func TestLoadWithIncludeNoFollow(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "included.beancount"), "2024-01-01 open Assets:Savings USD\n")
	mainFile := filepath.Join(tmpDir, "main.beancount")
	writeFile(t, mainFile, `include "included.beancount"

2024-01-02 open Assets:Checking USD
`)

	result, err := New().Load(context.Background(), mainFile)
	assert.NoError(t, err)
	assert.Equal(t, []string{"Assets:Checking"}, accounts(result.AST.Directives))
	assert.Equal(t, 1, len(result.AST.Includes))
	assert.Equal(t, "included.beancount", result.AST.Includes[0].Filename)
}

func TestLoadWithIncludeFollow(t *testing.T) {
	tmpDir := t.TempDir()
	includedFile := filepath.Join(tmpDir, "included.beancount")
	writeFile(t, includedFile, `2024-01-01 open Assets:Savings USD
2024-01-03 open Income:Salary USD
`)
	mainFile := filepath.Join(tmpDir, "main.beancount")
	writeFile(t, mainFile, `option "title" "Main"
include "included.beancount"

2024-01-02 open Assets:Checking USD
`)

	result, err := Load(context.Background(), mainFile, WithFollowIncludes())
	assert.NoError(t, err)

	// Directives of the including file come first.
	assert.Equal(t, []string{"Assets:Checking", "Assets:Savings", "Income:Salary"}, accounts(result.AST.Directives))
	assert.True(t, result.AST.Includes == nil)
	assert.Equal(t, 1, len(result.AST.Options))
	assert.Equal(t, []string{includedFile}, result.Includes)
}

func TestLoadNestedIncludes(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "accounts", "c.beancount"), "2024-01-03 open Expenses:Food USD\n")
	writeFile(t, filepath.Join(tmpDir, "accounts", "b.beancount"), `include "c.beancount"
2024-01-02 open Assets:Savings USD
`)
	fileA := filepath.Join(tmpDir, "a.beancount")
	writeFile(t, fileA, `include "accounts/b.beancount"
2024-01-01 open Assets:Checking USD
`)

	result, err := Load(context.Background(), fileA, WithFollowIncludes())
	assert.NoError(t, err)
	assert.Equal(t, []string{"Assets:Checking", "Assets:Savings", "Expenses:Food"}, accounts(result.AST.Directives))
	assert.Equal(t, []string{
		filepath.Join(tmpDir, "accounts", "b.beancount"),
		filepath.Join(tmpDir, "accounts", "c.beancount"),
	}, result.Includes)
}

func TestLoadFilesOnlyOnce(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  []string
	}{
		{
			name: "same file twice",
			files: map[string]string{
				"main.beancount":   "include \"common.beancount\"\ninclude \"common.beancount\"\n2024-01-02 open Assets:Checking USD\n",
				"common.beancount": "2024-01-01 open Assets:Savings USD\n",
			},
			want: []string{"Assets:Checking", "Assets:Savings"},
		},
		{
			name: "circular include",
			files: map[string]string{
				"main.beancount": "include \"b.beancount\"\n2024-01-01 open Assets:Checking USD\n",
				"b.beancount":    "include \"main.beancount\"\n2024-01-02 open Assets:Savings USD\n",
			},
			want: []string{"Assets:Checking", "Assets:Savings"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			for name, content := range tt.files {
				writeFile(t, filepath.Join(tmpDir, name), content)
			}

			result, err := Load(context.Background(), filepath.Join(tmpDir, "main.beancount"), WithFollowIncludes())
			assert.NoError(t, err)
			assert.Equal(t, tt.want, accounts(result.AST.Directives))
			assert.Equal(t, 1, len(result.Includes))
		})
	}
}

func TestLoadAbsoluteInclude(t *testing.T) {
	tmpDir := t.TempDir()
	includedFile := filepath.Join(tmpDir, "elsewhere", "included.beancount")
	writeFile(t, includedFile, "2024-01-01 open Assets:Savings USD\n")
	mainFile := filepath.Join(tmpDir, "main.beancount")
	writeFile(t, mainFile, "include \""+filepath.ToSlash(includedFile)+"\"\n")

	result, err := Load(context.Background(), mainFile, WithFollowIncludes())
	assert.NoError(t, err)
	assert.Equal(t, []string{"Assets:Savings"}, accounts(result.AST.Directives))
}

func TestLoadErrors(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := Load(context.Background(), filepath.Join(tmpDir, "missing.beancount"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	mainFile := filepath.Join(tmpDir, "main.beancount")
	writeFile(t, mainFile, "include \"does-not-exist.beancount\"\n")
	_, err = Load(context.Background(), mainFile, WithFollowIncludes())
	assert.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "in file "+mainFile)

	writeFile(t, filepath.Join(tmpDir, "broken.beancount"), "2024-01-01 open Assets:bad\n")
	writeFile(t, mainFile, "include \"broken.beancount\"\n")
	_, err = Load(context.Background(), mainFile, WithFollowIncludes())
	var perr *parser.ParseError
	assert.True(t, errors.As(err, &perr))
	assert.Equal(t, filepath.Join(tmpDir, "broken.beancount"), perr.Pos.Filename)
}
