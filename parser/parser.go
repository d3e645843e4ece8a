// Package parser turns Beancount source into an AST.
//
// The parser is a hand-written recursive descent parser over the token stream
// produced by Lexer. It understands the subset of Beancount that bank imports
// touch: transactions with postings, costs, prices and metadata, account
// lifecycle directives, balance assertions, pads, queries, custom directives
// and the file-level option, include, plugin, pushtag/poptag and
// pushmeta/popmeta statements. Amounts may be arithmetic expressions.
// Directives are returned in the order in which they appear in the source.
package parser

import (
	"context"
	"os"

	"github.com/robinvdvleuten/beanclerk/ast"
	"github.com/robinvdvleuten/beanclerk/telemetry"
)

// Parser holds the state of a single parse.
type Parser struct {
	source   []byte
	filename string
	tokens   []Token
	pos      int

	// Tags pushed with pushtag and applied to every transaction until popped.
	tags []ast.Tag
	// Metadata pushed with pushmeta and applied to every directive until popped.
	meta []*ast.Metadata
}

// ParseBytes parses Beancount source. The filename is used for positions and
// error messages only.
func ParseBytes(ctx context.Context, filename string, data []byte) (*ast.AST, error) {
	timer := telemetry.FromContext(ctx).Start("parse " + filename)
	defer timer.End()

	p := &Parser{
		source:   data,
		filename: filename,
		tokens:   NewLexer(data).ScanAll(),
	}
	return p.parse(ctx)
}

// ParseString parses Beancount source held in a string.
func ParseString(ctx context.Context, data string) (*ast.AST, error) {
	return ParseBytes(ctx, "", []byte(data))
}

// ParseFile reads and parses the file at path.
func ParseFile(ctx context.Context, path string) (*ast.AST, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseBytes(ctx, path, data)
}

func (p *Parser) parse(ctx context.Context) (*ast.AST, error) {
	tree := &ast.AST{}

	for !p.isAtEnd() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tok := p.peek()
		if tok.Column != 1 {
			return nil, p.errorAtToken(tok, "unexpected indented %s %q", tok.Type, tok.String(p.source))
		}

		switch tok.Type {
		case DATE:
			directive, err := p.parseDirective()
			if err != nil {
				return nil, err
			}
			p.applyMeta(directive)
			tree.Directives = append(tree.Directives, directive)

		case OPTION:
			option, err := p.parseOption()
			if err != nil {
				return nil, err
			}
			tree.Options = append(tree.Options, option)

		case INCLUDE:
			include, err := p.parseInclude()
			if err != nil {
				return nil, err
			}
			tree.Includes = append(tree.Includes, include)

		case PLUGIN:
			plugin, err := p.parsePlugin()
			if err != nil {
				return nil, err
			}
			tree.Plugins = append(tree.Plugins, plugin)

		case PUSHTAG:
			p.advance()
			tag, err := p.parseTag()
			if err != nil {
				return nil, err
			}
			p.tags = append(p.tags, tag)

		case POPTAG:
			p.advance()
			tag, err := p.parseTag()
			if err != nil {
				return nil, err
			}
			if err := p.popTag(tag); err != nil {
				return nil, err
			}

		case PUSHMETA:
			p.advance()
			m, err := p.parseMetaStatement(tok.Line)
			if err != nil {
				return nil, err
			}
			p.meta = append(p.meta, m)

		case POPMETA:
			p.advance()
			m, err := p.parseMetaStatement(tok.Line)
			if err != nil {
				return nil, err
			}
			if err := p.popMeta(m.Key); err != nil {
				return nil, err
			}

		default:
			return nil, p.errorAtToken(tok, "unexpected %s %q", tok.Type, tok.String(p.source))
		}
	}

	if len(p.tags) > 0 {
		return nil, &ParseError{
			Pos:     p.tokenPosition(p.peek()),
			Message: "unbalanced pushtag #" + string(p.tags[len(p.tags)-1]),
		}
	}
	if len(p.meta) > 0 {
		return nil, &ParseError{
			Pos:     p.tokenPosition(p.peek()),
			Message: "unbalanced pushmeta " + p.meta[len(p.meta)-1].Key,
		}
	}

	return tree, nil
}

// parseDirective parses any directive that starts with a date.
func (p *Parser) parseDirective() (ast.Directive, error) {
	pos := p.tokenPosition(p.peek())
	date, err := p.parseDate()
	if err != nil {
		return nil, err
	}

	tok := p.peek()
	if tok.Line != pos.Line {
		return nil, p.errorAtToken(tok, "expected directive after date")
	}

	switch tok.Type {
	case TXN, ASTERISK, EXCLAIM, STRING:
		return p.parseTransaction(pos, date)
	case IDENT:
		if tok.End-tok.Start == 1 {
			return p.parseTransaction(pos, date)
		}
	case OPEN:
		return p.parseOpen(pos, date)
	case CLOSE:
		return p.parseClose(pos, date)
	case BALANCE:
		return p.parseBalance(pos, date)
	case PAD:
		return p.parsePad(pos, date)
	case COMMODITY:
		return p.parseCommodity(pos, date)
	case NOTE:
		return p.parseNote(pos, date)
	case DOCUMENT:
		return p.parseDocument(pos, date)
	case PRICE:
		return p.parsePrice(pos, date)
	case EVENT:
		return p.parseEvent(pos, date)
	case QUERY:
		return p.parseQuery(pos, date)
	case CUSTOM:
		return p.parseCustom(pos, date)
	}

	return nil, p.errorAtToken(tok, "unknown directive %q", tok.String(p.source))
}

func (p *Parser) parseOption() (*ast.Option, error) {
	tok := p.advance()
	name, err := p.parseString()
	if err != nil {
		return nil, err
	}
	value, err := p.parseString()
	if err != nil {
		return nil, err
	}
	return &ast.Option{Pos: p.tokenPosition(tok), Name: name, Value: value}, nil
}

func (p *Parser) parseInclude() (*ast.Include, error) {
	tok := p.advance()
	filename, err := p.parseString()
	if err != nil {
		return nil, err
	}
	return &ast.Include{Pos: p.tokenPosition(tok), Filename: filename}, nil
}

func (p *Parser) parsePlugin() (*ast.Plugin, error) {
	tok := p.advance()
	name, err := p.parseString()
	if err != nil {
		return nil, err
	}
	plugin := &ast.Plugin{Pos: p.tokenPosition(tok), Name: name}
	if p.checkOnLine(STRING, tok.Line) {
		if plugin.Config, err = p.parseString(); err != nil {
			return nil, err
		}
	}
	return plugin, nil
}

func (p *Parser) popTag(tag ast.Tag) error {
	for i := len(p.tags) - 1; i >= 0; i-- {
		if p.tags[i] == tag {
			p.tags = append(p.tags[:i], p.tags[i+1:]...)
			return nil
		}
	}
	return p.errorAtToken(p.previous(), "attempting to pop absent tag #%s", tag)
}

// parseMetaStatement parses the "key: value" part of pushmeta and popmeta,
// which sits on the statement's line. The value of popmeta is ignored.
func (p *Parser) parseMetaStatement(line int) (*ast.Metadata, error) {
	tok := p.peek()
	colon := p.peekAhead(1)
	if tok.Line != line || (tok.Type != IDENT && !tok.Type.isKeyword()) ||
		colon.Type != COLON || colon.Start != tok.End {
		return nil, p.errorAtToken(tok, "expected metadata key")
	}
	if c := p.source[tok.Start]; c < 'a' || c > 'z' {
		return nil, p.errorAtToken(tok, "invalid metadata key %q", tok.String(p.source))
	}
	return p.parseMetadataEntry()
}

func (p *Parser) popMeta(key string) error {
	for i := len(p.meta) - 1; i >= 0; i-- {
		if p.meta[i].Key == key {
			p.meta = append(p.meta[:i], p.meta[i+1:]...)
			return nil
		}
	}
	return p.errorAtToken(p.previous(), "attempting to pop absent metadata key %s", key)
}

// applyMeta adds the pushed metadata to directive. Keys the directive sets
// itself win, and the latest push of a key wins over earlier ones.
func (p *Parser) applyMeta(directive ast.Directive) {
	if len(p.meta) == 0 {
		return
	}
	lookup, ok := directive.(interface{ Meta(string) (string, bool) })
	if !ok {
		return
	}
	for i := len(p.meta) - 1; i >= 0; i-- {
		m := p.meta[i]
		if _, exists := lookup.Meta(m.Key); !exists {
			directive.AddMetadata(ast.NewMetadata(m.Key, m.Value))
		}
	}
}
