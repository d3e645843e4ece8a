package ast

// Option sets a configuration parameter that affects how the ledger is processed.
//
// Example:
//
//	option "operating_currency" "USD"
type Option struct {
	Pos   Position
	Name  string
	Value string
}

func (o *Option) Position() Position { return o.Pos }

// Include imports directives from another file. Relative paths are resolved from
// the directory of the including file.
//
// Example:
//
//	include "accounts.beancount"
type Include struct {
	Pos      Position
	Filename string
}

func (i *Include) Position() Position { return i.Pos }

// Plugin names a processing plugin with an optional configuration string. Plugins
// are recorded but never run.
type Plugin struct {
	Pos    Position
	Name   string
	Config string
}

func (p *Plugin) Position() Position { return p.Pos }
