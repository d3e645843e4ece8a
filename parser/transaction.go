package parser

import "github.com/robinvdvleuten/beanclerk/ast"

// parseTransaction parses a transaction:
//
//	DATE [txn] FLAG [[PAYEE] NARRATION] [TAG|LINK]*
//	  METADATA*
//	  POSTING*
//
// Postings and metadata sit on the following, indented lines. Metadata lines
// before the first posting belong to the transaction, later ones to the
// posting above them.
func (p *Parser) parseTransaction(pos ast.Position, date *ast.Date) (*ast.Transaction, error) {
	txn := &ast.Transaction{Pos: pos, Date: date}

	switch tok := p.peek(); tok.Type {
	case TXN:
		p.advance()
		txn.Flag = "*"
		if p.checkOnLine(ASTERISK, pos.Line) || p.checkOnLine(EXCLAIM, pos.Line) {
			txn.Flag = p.advance().String(p.source)
		}
	case ASTERISK, EXCLAIM, IDENT:
		txn.Flag = p.advance().String(p.source)
	default:
		// A transaction without a flag is an implicitly cleared one.
		txn.Flag = "*"
	}

	var texts []string
	for p.checkOnLine(STRING, pos.Line) {
		s, err := p.parseString()
		if err != nil {
			return nil, err
		}
		texts = append(texts, s)
	}
	switch len(texts) {
	case 0:
	case 1:
		txn.Narration = texts[0]
	case 2:
		txn.Payee = texts[0]
		txn.Narration = texts[1]
	default:
		return nil, p.errorAtToken(p.previous(), "too many strings in transaction header")
	}

	for !p.isAtEnd() && p.peek().Line == pos.Line {
		switch p.peek().Type {
		case TAG:
			tag, err := p.parseTag()
			if err != nil {
				return nil, err
			}
			txn.Tags = append(txn.Tags, tag)
		case LINK:
			link, err := p.parseLink()
			if err != nil {
				return nil, err
			}
			txn.Links = append(txn.Links, link)
		default:
			tok := p.peek()
			return nil, p.errorAtToken(tok, "unexpected %s %q in transaction header", tok.Type, tok.String(p.source))
		}
	}
	txn.Tags = append(txn.Tags, p.tags...)

	var err error
	if txn.Metadata, err = p.parseMetadata(pos.Line); err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if tok.Column <= 1 || tok.Type == EOF {
			break
		}
		if tok.Type != ASTERISK && tok.Type != EXCLAIM && tok.Type != ACCOUNT {
			return nil, p.errorAtToken(tok, "expected posting but got %s %q", tok.Type, tok.String(p.source))
		}

		posting, err := p.parsePosting()
		if err != nil {
			return nil, err
		}
		txn.Postings = append(txn.Postings, posting)
	}

	return txn, nil
}

// parsePosting parses a single posting:
//
//	[FLAG] ACCOUNT [AMOUNT] [COST] [@|@@ PRICE]
//	  METADATA*
func (p *Parser) parsePosting() (*ast.Posting, error) {
	first := p.peek()
	posting := &ast.Posting{Pos: p.tokenPosition(first)}

	if p.match(ASTERISK, EXCLAIM) {
		posting.Flag = p.previous().String(p.source)
	}

	account, err := p.parseAccount()
	if err != nil {
		return nil, err
	}
	posting.Account = account

	if p.isNumberStart(first.Line) {
		if posting.Amount, err = p.parseAmountOptional(); err != nil {
			return nil, err
		}
	}

	if p.checkOnLine(LBRACE, first.Line) || p.checkOnLine(LDBRACE, first.Line) {
		if posting.Cost, err = p.parseCost(); err != nil {
			return nil, err
		}
	}

	if p.checkOnLine(AT, first.Line) || p.checkOnLine(ATAT, first.Line) {
		posting.PriceTotal = p.advance().Type == ATAT
		if posting.Price, err = p.parseAmount(); err != nil {
			return nil, err
		}
	}

	if tok := p.peek(); tok.Line == first.Line && tok.Type != EOF {
		return nil, p.errorAtToken(tok, "unexpected %s %q after posting", tok.Type, tok.String(p.source))
	}

	if posting.Metadata, err = p.parseMetadata(first.Line); err != nil {
		return nil, err
	}
	return posting, nil
}
