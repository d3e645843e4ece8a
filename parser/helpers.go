package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/robinvdvleuten/beanclerk/ast"
)

// Token stream navigation.

func (p *Parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *Parser) peekAhead(n int) Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) previous() Token {
	if p.pos == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.pos-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == EOF
}

func (p *Parser) check(typ TokenType) bool {
	return p.peek().Type == typ
}

// checkOnLine reports whether the next token has the given type and sits on line.
func (p *Parser) checkOnLine(typ TokenType, line int) bool {
	tok := p.peek()
	return tok.Type == typ && tok.Line == line
}

func (p *Parser) match(types ...TokenType) bool {
	for _, typ := range types {
		if p.check(typ) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if !p.isAtEnd() {
		p.pos++
	}
	return tok
}

// expect consumes a token of the given type or returns an error describing
// what was found instead.
func (p *Parser) expect(typ TokenType, what string) (Token, error) {
	tok := p.peek()
	if tok.Type != typ {
		if tok.Type == EOF {
			return tok, p.errorAtToken(tok, "expected %s but reached end of file", what)
		}
		return tok, p.errorAtToken(tok, "expected %s but got %s %q", what, tok.Type, tok.String(p.source))
	}
	return p.advance(), nil
}

func (p *Parser) errorAtToken(tok Token, format string, args ...any) error {
	return &ParseError{
		Pos:     p.tokenPosition(tok),
		Message: fmt.Sprintf(format, args...),
	}
}

func (p *Parser) tokenPosition(tok Token) ast.Position {
	return ast.Position{
		Filename: p.filename,
		Offset:   tok.Start,
		Line:     tok.Line,
		Column:   tok.Column,
	}
}

// Value parsers shared by the directive parsers.

func (p *Parser) parseDate() (*ast.Date, error) {
	tok, err := p.expect(DATE, "date")
	if err != nil {
		return nil, err
	}

	date, err := ast.NewDate(tok.String(p.source))
	if err != nil {
		return nil, p.errorAtToken(tok, "%v", err)
	}
	return date, nil
}

func (p *Parser) parseAccount() (ast.Account, error) {
	tok, err := p.expect(ACCOUNT, "account")
	if err != nil {
		return "", err
	}

	account, err := ast.NewAccount(tok.String(p.source))
	if err != nil {
		return "", p.errorAtToken(tok, "invalid account: %v", err)
	}
	return account, nil
}

// parseString parses a quoted string and returns it unquoted.
func (p *Parser) parseString() (string, error) {
	tok, err := p.expect(STRING, "string")
	if err != nil {
		return "", err
	}

	s, err := unquote(tok.String(p.source))
	if err != nil {
		return "", p.errorAtToken(tok, "invalid string: %v", err)
	}
	return s, nil
}

func (p *Parser) parseTag() (ast.Tag, error) {
	tok, err := p.expect(TAG, "tag")
	if err != nil {
		return "", err
	}
	return ast.Tag(tok.String(p.source)[1:]), nil
}

func (p *Parser) parseLink() (ast.Link, error) {
	tok, err := p.expect(LINK, "link")
	if err != nil {
		return "", err
	}
	return ast.Link(tok.String(p.source)[1:]), nil
}

// parseCurrency parses an identifier and checks that it is a commodity symbol.
func (p *Parser) parseCurrency() (string, error) {
	tok, err := p.expect(IDENT, "currency")
	if err != nil {
		return "", err
	}

	currency := tok.String(p.source)
	if !ast.ValidCurrency(currency) {
		return "", p.errorAtToken(tok, "invalid currency %q", currency)
	}
	return currency, nil
}

// parseNumber parses a number and strips thousands separators.
func (p *Parser) parseNumber() (string, error) {
	tok, err := p.expect(NUMBER, "number")
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(tok.String(p.source), ",", ""), nil
}

// parseAmount parses: NUMBER CURRENCY, where the number may be an expression.
func (p *Parser) parseAmount() (*ast.Amount, error) {
	value, err := p.parseNumberExpr(p.peek().Line)
	if err != nil {
		return nil, err
	}

	currency, err := p.parseCurrency()
	if err != nil {
		return nil, err
	}

	return ast.NewAmount(value, currency), nil
}

// parseAmountOptional parses: NUMBER [CURRENCY]. A missing currency is
// inferred later by the ledger.
func (p *Parser) parseAmountOptional() (*ast.Amount, error) {
	line := p.peek().Line
	value, err := p.parseNumberExpr(line)
	if err != nil {
		return nil, err
	}

	amount := ast.NewAmount(value, "")
	if p.checkOnLine(IDENT, line) {
		if amount.Currency, err = p.parseCurrency(); err != nil {
			return nil, err
		}
	}
	return amount, nil
}

// parseCost parses a cost specification: { [AMOUNT] [, DATE] [, LABEL] } or
// the total cost form using double braces.
func (p *Parser) parseCost() (*ast.Cost, error) {
	cost := &ast.Cost{}
	closing := RBRACE
	if p.match(LDBRACE) {
		cost.Total = true
		closing = RDBRACE
	} else if _, err := p.expect(LBRACE, "'{'"); err != nil {
		return nil, err
	}

	for !p.check(closing) {
		tok := p.peek()
		switch tok.Type {
		case NUMBER, LPAREN, MINUS, PLUS:
			amount, err := p.parseAmount()
			if err != nil {
				return nil, err
			}
			cost.Amount = amount
		case DATE:
			date, err := p.parseDate()
			if err != nil {
				return nil, err
			}
			cost.Date = date
		case STRING:
			label, err := p.parseString()
			if err != nil {
				return nil, err
			}
			cost.Label = label
		case ASTERISK:
			// Merge cost marker, nothing to record.
			p.advance()
		default:
			return nil, p.errorAtToken(tok, "unexpected %s %q in cost", tok.Type, tok.String(p.source))
		}

		if !p.match(COMMA) && !p.check(closing) {
			next := p.peek()
			return nil, p.errorAtToken(next, "expected ',' or closing brace in cost")
		}
	}
	p.advance()

	return cost, nil
}

// isMetadataKey reports whether the next tokens form "key:" on a new,
// indented line after line.
func (p *Parser) isMetadataKey(line int) bool {
	tok := p.peek()
	if tok.Line <= line || tok.Column <= 1 {
		return false
	}
	if tok.Type != IDENT && !tok.Type.isKeyword() {
		return false
	}
	if c := p.source[tok.Start]; c < 'a' || c > 'z' {
		return false
	}
	colon := p.peekAhead(1)
	return colon.Type == COLON && colon.Start == tok.End
}

// parseMetadataEntry parses "key: value" where value is the rest of the line.
// A value that is a single quoted string is stored unquoted.
func (p *Parser) parseMetadataEntry() (*ast.Metadata, error) {
	keyTok := p.advance()
	p.advance() // colon

	var first, last Token
	count := 0
	for !p.isAtEnd() && p.peek().Line == keyTok.Line {
		tok := p.advance()
		if count == 0 {
			first = tok
		}
		last = tok
		count++
	}

	value := ""
	if count > 0 {
		value = strings.TrimSpace(string(p.source[first.Start:last.End]))
	}
	if count == 1 && first.Type == STRING {
		s, err := unquote(value)
		if err != nil {
			return nil, p.errorAtToken(first, "invalid string: %v", err)
		}
		value = s
	}

	return ast.NewMetadata(keyTok.String(p.source), value), nil
}

// parseMetadata parses all metadata lines following line.
func (p *Parser) parseMetadata(line int) ([]*ast.Metadata, error) {
	var metadata []*ast.Metadata
	for p.isMetadataKey(line) {
		m, err := p.parseMetadataEntry()
		if err != nil {
			return nil, err
		}
		metadata = append(metadata, m)
		line = p.previous().Line
	}
	return metadata, nil
}

func unquote(s string) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", fmt.Errorf("unterminated string %s", s)
	}
	if !strings.ContainsRune(s, '\\') {
		return s[1 : len(s)-1], nil
	}
	return strconv.Unquote(s)
}
