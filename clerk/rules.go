package clerk

import (
	"context"
	"fmt"
	"sync"

	"github.com/robinvdvleuten/beanclerk/ast"
	"github.com/robinvdvleuten/beanclerk/config"
)

// Action is what the operator chose to do with a transaction no rule
// matches.
type Action int

const (
	// ActionReload reloads the rules from the configuration file and
	// matches again.
	ActionReload Action = iota + 1
	// ActionImport imports the transaction as is, leaving it unbalanced.
	ActionImport
)

func (a Action) String() string {
	switch a {
	case ActionReload:
		return "reload"
	case ActionImport:
		return "import"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Prompter asks the operator what to do with an unmatched transaction.
type Prompter interface {
	ChooseAction(ctx context.Context, txn *ast.Transaction) (Action, error)
}

// StaticPrompter answers with Actions in order and repeats the last one
// once they are used up. Without actions it always imports.
type StaticPrompter struct {
	Actions []Action

	mu    sync.Mutex
	calls int
}

// ChooseAction returns the next scripted action.
func (p *StaticPrompter) ChooseAction(context.Context, *ast.Transaction) (Action, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.calls
	p.calls++

	switch {
	case len(p.Actions) == 0:
		return ActionImport, nil
	case i >= len(p.Actions):
		return p.Actions[len(p.Actions)-1], nil
	default:
		return p.Actions[i], nil
	}
}

// Calls returns how many times the prompter was asked.
func (p *StaticPrompter) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// RuleLoader returns a fresh copy of the rules, typically by reloading the
// configuration file.
type RuleLoader func() ([]config.Rule, error)

// MatchRule returns the first rule whose patterns all match the metadata of
// txn, or nil. A pattern matches when the key is present and the regular
// expression is found anywhere in its value. Rules that were not compiled yet
// are compiled in place.
func MatchRule(txn *ast.Transaction, rules []config.Rule) (*config.Rule, error) {
	for i := range rules {
		rule := &rules[i]
		if len(rule.Patterns()) == 0 {
			if err := rule.Compile(); err != nil {
				return nil, fmt.Errorf("categorization rule %d: %w", i+1, err)
			}
		}
		patterns := rule.Patterns()

		matched := true
		for _, p := range patterns {
			value, ok := txn.Meta(p.Key)
			if !ok || !p.Regexp.MatchString(value) {
				matched = false
				break
			}
		}
		if matched {
			return rule, nil
		}
	}
	return nil, nil
}

// FindRule returns the rule matching txn. When none matches, the prompter
// decides whether to reload the rules and try again or to import txn as is,
// in which case the rule is nil. The returned rules replace the given ones
// after a reload.
func FindRule(ctx context.Context, txn *ast.Transaction, rules []config.Rule, prompter Prompter, reload RuleLoader) (*config.Rule, []config.Rule, error) {
	for {
		rule, err := MatchRule(txn, rules)
		if err != nil || rule != nil {
			return rule, rules, err
		}

		if prompter == nil {
			return nil, rules, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, rules, err
		}

		action, err := prompter.ChooseAction(ctx, txn)
		if err != nil {
			return nil, rules, err
		}

		switch action {
		case ActionReload:
			if reload == nil {
				return nil, rules, fmt.Errorf("%w: rules cannot be reloaded", ErrUnknownAction)
			}
			reloaded, err := reload()
			if err != nil {
				return nil, rules, err
			}
			rules = reloaded
		case ActionImport:
			return nil, rules, nil
		default:
			return nil, rules, fmt.Errorf("%w: %s", ErrUnknownAction, action)
		}
	}
}
