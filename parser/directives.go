package parser

import "github.com/robinvdvleuten/beanclerk/ast"

// Parsers for the dated directives other than transactions. Each receives the
// position and date already consumed by parseDirective.

// parseOpen parses: DATE open ACCOUNT [CURRENCY[,CURRENCY]*] ["BOOKING_METHOD"]
func (p *Parser) parseOpen(pos ast.Position, date *ast.Date) (*ast.Open, error) {
	p.advance()

	account, err := p.parseAccount()
	if err != nil {
		return nil, err
	}

	open := &ast.Open{Pos: pos, Date: date, Account: account}

	if p.checkOnLine(IDENT, pos.Line) {
		for {
			currency, err := p.parseCurrency()
			if err != nil {
				return nil, err
			}
			open.ConstraintCurrencies = append(open.ConstraintCurrencies, currency)
			if !p.match(COMMA) {
				break
			}
		}
	}

	if p.checkOnLine(STRING, pos.Line) {
		if open.BookingMethod, err = p.parseString(); err != nil {
			return nil, err
		}
	}

	if open.Metadata, err = p.parseMetadata(pos.Line); err != nil {
		return nil, err
	}
	return open, nil
}

// parseClose parses: DATE close ACCOUNT
func (p *Parser) parseClose(pos ast.Position, date *ast.Date) (*ast.Close, error) {
	p.advance()

	account, err := p.parseAccount()
	if err != nil {
		return nil, err
	}

	close := &ast.Close{Pos: pos, Date: date, Account: account}
	if close.Metadata, err = p.parseMetadata(pos.Line); err != nil {
		return nil, err
	}
	return close, nil
}

// parseBalance parses: DATE balance ACCOUNT AMOUNT
func (p *Parser) parseBalance(pos ast.Position, date *ast.Date) (*ast.Balance, error) {
	p.advance()

	account, err := p.parseAccount()
	if err != nil {
		return nil, err
	}

	amount, err := p.parseAmount()
	if err != nil {
		return nil, err
	}

	balance := &ast.Balance{Pos: pos, Date: date, Account: account, Amount: amount}
	if balance.Metadata, err = p.parseMetadata(pos.Line); err != nil {
		return nil, err
	}
	return balance, nil
}

// parsePad parses: DATE pad ACCOUNT ACCOUNT_PAD
func (p *Parser) parsePad(pos ast.Position, date *ast.Date) (*ast.Pad, error) {
	p.advance()

	account, err := p.parseAccount()
	if err != nil {
		return nil, err
	}

	accountPad, err := p.parseAccount()
	if err != nil {
		return nil, err
	}

	pad := &ast.Pad{Pos: pos, Date: date, Account: account, AccountPad: accountPad}
	if pad.Metadata, err = p.parseMetadata(pos.Line); err != nil {
		return nil, err
	}
	return pad, nil
}

// parseCommodity parses: DATE commodity CURRENCY
func (p *Parser) parseCommodity(pos ast.Position, date *ast.Date) (*ast.Commodity, error) {
	p.advance()

	currency, err := p.parseCurrency()
	if err != nil {
		return nil, err
	}

	commodity := &ast.Commodity{Pos: pos, Date: date, Currency: currency}
	if commodity.Metadata, err = p.parseMetadata(pos.Line); err != nil {
		return nil, err
	}
	return commodity, nil
}

// parseNote parses: DATE note ACCOUNT DESCRIPTION
func (p *Parser) parseNote(pos ast.Position, date *ast.Date) (*ast.Note, error) {
	p.advance()

	account, err := p.parseAccount()
	if err != nil {
		return nil, err
	}

	description, err := p.parseString()
	if err != nil {
		return nil, err
	}

	note := &ast.Note{Pos: pos, Date: date, Account: account, Description: description}
	if note.Metadata, err = p.parseMetadata(pos.Line); err != nil {
		return nil, err
	}
	return note, nil
}

// parseDocument parses: DATE document ACCOUNT PATH
func (p *Parser) parseDocument(pos ast.Position, date *ast.Date) (*ast.Document, error) {
	p.advance()

	account, err := p.parseAccount()
	if err != nil {
		return nil, err
	}

	path, err := p.parseString()
	if err != nil {
		return nil, err
	}

	document := &ast.Document{Pos: pos, Date: date, Account: account, PathToDocument: path}
	if document.Metadata, err = p.parseMetadata(pos.Line); err != nil {
		return nil, err
	}
	return document, nil
}

// parsePrice parses: DATE price COMMODITY AMOUNT
func (p *Parser) parsePrice(pos ast.Position, date *ast.Date) (*ast.Price, error) {
	p.advance()

	commodity, err := p.parseCurrency()
	if err != nil {
		return nil, err
	}

	amount, err := p.parseAmount()
	if err != nil {
		return nil, err
	}

	price := &ast.Price{Pos: pos, Date: date, Commodity: commodity, Amount: amount}
	if price.Metadata, err = p.parseMetadata(pos.Line); err != nil {
		return nil, err
	}
	return price, nil
}

// parseEvent parses: DATE event NAME VALUE
func (p *Parser) parseEvent(pos ast.Position, date *ast.Date) (*ast.Event, error) {
	p.advance()

	name, err := p.parseString()
	if err != nil {
		return nil, err
	}

	value, err := p.parseString()
	if err != nil {
		return nil, err
	}

	event := &ast.Event{Pos: pos, Date: date, Name: name, Value: value}
	if event.Metadata, err = p.parseMetadata(pos.Line); err != nil {
		return nil, err
	}
	return event, nil
}

// parseQuery parses: DATE query NAME QUERY_STRING
func (p *Parser) parseQuery(pos ast.Position, date *ast.Date) (*ast.Query, error) {
	p.advance()

	name, err := p.parseString()
	if err != nil {
		return nil, err
	}

	sql, err := p.parseString()
	if err != nil {
		return nil, err
	}

	query := &ast.Query{Pos: pos, Date: date, Name: name, Query: sql}
	if query.Metadata, err = p.parseMetadata(pos.Line); err != nil {
		return nil, err
	}
	return query, nil
}

// parseCustom parses: DATE custom TYPE VALUE*
//
// Values are strings, accounts, amounts, bare numbers, dates and the
// booleans TRUE and FALSE.
func (p *Parser) parseCustom(pos ast.Position, date *ast.Date) (*ast.Custom, error) {
	p.advance()

	typeName, err := p.parseString()
	if err != nil {
		return nil, err
	}

	custom := &ast.Custom{Pos: pos, Date: date, Type: typeName}

	for !p.isAtEnd() && p.peek().Line == pos.Line {
		tok := p.peek()
		value := &ast.CustomValue{}

		switch tok.Type {
		case STRING:
			s, err := p.parseString()
			if err != nil {
				return nil, err
			}
			value.String = &s
		case ACCOUNT:
			account, err := p.parseAccount()
			if err != nil {
				return nil, err
			}
			value.Account = &account
		case DATE:
			if value.Date, err = p.parseDate(); err != nil {
				return nil, err
			}
		case NUMBER:
			number, err := p.parseNumber()
			if err != nil {
				return nil, err
			}
			if next := p.peek(); next.Type == IDENT && next.Line == pos.Line && !isBoolean(next.String(p.source)) {
				currency, err := p.parseCurrency()
				if err != nil {
					return nil, err
				}
				value.Amount = ast.NewAmount(number, currency)
			} else {
				value.Number = &number
			}
		case IDENT:
			text := tok.String(p.source)
			if !isBoolean(text) {
				return nil, p.errorAtToken(tok, "unexpected custom value %q", text)
			}
			p.advance()
			b := text == "TRUE"
			value.BooleanValue = &b
		default:
			return nil, p.errorAtToken(tok, "unexpected custom value %q", tok.String(p.source))
		}

		custom.Values = append(custom.Values, value)
	}

	if custom.Metadata, err = p.parseMetadata(pos.Line); err != nil {
		return nil, err
	}
	return custom, nil
}

func isBoolean(s string) bool {
	return s == "TRUE" || s == "FALSE"
}
