package config

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/robinvdvleuten/beanclerk/ast"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Rule categorizes transactions whose metadata matches every pattern. The
// matching transaction receives a balancing posting on Account, when set,
// and the non-nil overrides.
type Rule struct {
	Matches   Matches     `yaml:"matches"`
	Account   ast.Account `yaml:"account"`
	Flag      *string     `yaml:"flag"`
	Payee     *string     `yaml:"payee"`
	Narration *string     `yaml:"narration"`

	patterns []Pattern
}

// Matches holds the patterns of a rule, keyed by metadata key.
type Matches struct {
	Metadata map[string]string `yaml:"metadata"`
}

// Pattern is a compiled metadata pattern.
type Pattern struct {
	Key    string
	Regexp *regexp.Regexp
}

// ErrNoPatterns is returned for a rule that has nothing to match.
var ErrNoPatterns = errors.New("no patterns to match")

// ErrEmptyPattern is returned for the pattern "", which matches everything.
var ErrEmptyPattern = errors.New(`dangerous pattern "" matches everything, use ".*" or "^$" instead`)

// Patterns returns the compiled patterns ordered by key. It is empty until
// the rule is compiled, which Load, LoadRules and NewRule do.
func (r *Rule) Patterns() []Pattern {
	return r.patterns
}

// NewRule builds and validates a rule from metadata patterns.
func NewRule(metadata map[string]string, account ast.Account) (Rule, error) {
	r := Rule{Matches: Matches{Metadata: metadata}, Account: account}
	if err := r.Compile(); err != nil {
		return Rule{}, err
	}
	return r, nil
}

// Compile validates the rule and compiles its metadata patterns. Rules built
// as struct literals must be compiled before they are matched.
func (r *Rule) Compile() error {
	if len(r.Matches.Metadata) == 0 {
		return ErrNoPatterns
	}

	if r.Account != "" {
		if err := r.Account.Validate(); err != nil {
			return err
		}
	}
	if r.Flag != nil && len(*r.Flag) != 1 {
		return fmt.Errorf("flag must be a single character, got %q", *r.Flag)
	}

	keys := maps.Keys(r.Matches.Metadata)
	slices.Sort(keys)

	r.patterns = make([]Pattern, 0, len(keys))
	for _, key := range keys {
		expr := r.Matches.Metadata[key]
		if expr == "" {
			return fmt.Errorf("metadata %q: %w", key, ErrEmptyPattern)
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return fmt.Errorf("metadata %q: %w", key, err)
		}
		r.patterns = append(r.patterns, Pattern{Key: key, Regexp: re})
	}
	return nil
}
