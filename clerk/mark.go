package clerk

import (
	"bufio"
	"fmt"
	"os"
	"regexp"

	"github.com/robinvdvleuten/beanclerk/ast"
)

// MarkType is the type of the custom directive that marks where new
// transactions of an account are inserted:
//
//	2023-01-01 custom "beanclerk-mark" Assets:Bank:Fio
const MarkType = "beanclerk-mark"

// maxLineSize bounds the length of a single ledger line.
const maxLineSize = 1024 * 1024

func markPattern(account ast.Account) *regexp.Regexp {
	return regexp.MustCompile(`^\d{4}-\d{2}-\d{2} custom "` + MarkType + `" ` + regexp.QuoteMeta(string(account)) + `$`)
}

// FindMarkLine returns the 1-based line number of the mark of account in the
// ledger file at path. It scans the raw text instead of parsing the ledger,
// so it stays cheap when called before every insertion.
func FindMarkLine(path string, account ast.Account) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	mark := markPattern(account)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for lineno := 1; scanner.Scan(); lineno++ {
		if mark.Match(scanner.Bytes()) {
			return lineno, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}

	return 0, fmt.Errorf("%w: '%s'", ErrMarkNotFound, account)
}

// FindMarkDirective returns the mark of account among parsed directives. It
// is lenient: the account may be written as a string and the mark may live in
// an included file. Only marks FindMarkLine finds can receive entries.
func FindMarkDirective(directives ast.Directives, account ast.Account) (*ast.Custom, error) {
	for _, d := range directives {
		custom, ok := d.(*ast.Custom)
		if !ok || custom.Type != MarkType || len(custom.Values) != 1 {
			continue
		}
		if markAccount(custom.Values[0]) == account {
			return custom, nil
		}
	}
	return nil, fmt.Errorf("%w: '%s'", ErrMarkNotFound, account)
}

func markAccount(v *ast.CustomValue) ast.Account {
	switch {
	case v.Account != nil:
		return *v.Account
	case v.String != nil:
		return ast.Account(*v.String)
	default:
		return ""
	}
}
