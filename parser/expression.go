package parser

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Arithmetic in amounts, as written in hand-kept ledgers:
//
//	Expenses:Food   (40.00 + 12.50) / 3 EUR
//
// Grammar, all on one line:
//
//	expression → term (('+' | '-') term)*
//	term       → factor (('*' | '/') factor)*
//	factor     → NUMBER | '-' factor | '+' factor | '(' expression ')'

// parseNumberExpr parses a plain number or an arithmetic expression on line
// and returns its value as a decimal string. Plain numbers keep the precision
// they were written with.
func (p *Parser) parseNumberExpr(line int) (string, error) {
	if !p.isExpressionStart(line) {
		return p.parseNumber()
	}

	value, err := p.parseExpression(line)
	if err != nil {
		return "", err
	}
	return value.String(), nil
}

// isExpressionStart reports whether the next tokens form an expression rather
// than a single number.
func (p *Parser) isExpressionStart(line int) bool {
	switch tok := p.peek(); {
	case tok.Line != line:
		return false
	case tok.Type == NUMBER:
		next := p.peekAhead(1)
		return next.Line == line && isOperator(next.Type)
	default:
		return tok.Type == LPAREN || tok.Type == MINUS || tok.Type == PLUS
	}
}

// isNumberStart reports whether a number or an expression starts on line.
func (p *Parser) isNumberStart(line int) bool {
	return p.checkOnLine(NUMBER, line) || p.isExpressionStart(line)
}

func isOperator(typ TokenType) bool {
	return typ == PLUS || typ == MINUS || typ == ASTERISK || typ == SLASH
}

func (p *Parser) parseExpression(line int) (decimal.Decimal, error) {
	left, err := p.parseTerm(line)
	if err != nil {
		return decimal.Zero, err
	}

	for p.checkOnLine(PLUS, line) || p.checkOnLine(MINUS, line) {
		op := p.advance()
		right, err := p.parseTerm(line)
		if err != nil {
			return decimal.Zero, err
		}
		if op.Type == PLUS {
			left = left.Add(right)
		} else {
			left = left.Sub(right)
		}
	}
	return left, nil
}

func (p *Parser) parseTerm(line int) (decimal.Decimal, error) {
	left, err := p.parseFactor(line)
	if err != nil {
		return decimal.Zero, err
	}

	for p.checkOnLine(ASTERISK, line) || p.checkOnLine(SLASH, line) {
		op := p.advance()
		right, err := p.parseFactor(line)
		if err != nil {
			return decimal.Zero, err
		}
		if op.Type == ASTERISK {
			left = left.Mul(right)
			continue
		}
		if right.IsZero() {
			return decimal.Zero, p.errorAtToken(op, "division by zero")
		}
		left = left.Div(right)
	}
	return left, nil
}

func (p *Parser) parseFactor(line int) (decimal.Decimal, error) {
	tok := p.peek()
	if tok.Line != line {
		return decimal.Zero, p.errorAtToken(tok, "expected number or '(' in expression")
	}

	switch tok.Type {
	case NUMBER:
		p.advance()
		d, err := decimal.NewFromString(strings.ReplaceAll(tok.String(p.source), ",", ""))
		if err != nil {
			return decimal.Zero, p.errorAtToken(tok, "invalid number: %v", err)
		}
		return d, nil

	case MINUS, PLUS:
		p.advance()
		d, err := p.parseFactor(line)
		if err != nil {
			return decimal.Zero, err
		}
		if tok.Type == MINUS {
			return d.Neg(), nil
		}
		return d, nil

	case LPAREN:
		p.advance()
		d, err := p.parseExpression(line)
		if err != nil {
			return decimal.Zero, err
		}
		if !p.checkOnLine(RPAREN, line) {
			return decimal.Zero, p.errorAtToken(p.peek(), "expected ')' after expression")
		}
		p.advance()
		return d, nil
	}

	return decimal.Zero, p.errorAtToken(tok, "expected number or '(' in expression but got %s %q", tok.Type, tok.String(p.source))
}
