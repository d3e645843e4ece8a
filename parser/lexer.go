package parser

// Lexer tokenizes Beancount source code in a single pass. Comments and
// org-mode section headers are skipped; everything else becomes a token that
// points back into the source buffer.
type Lexer struct {
	source []byte
	pos    int
	line   int
	column int
	tokens []Token
}

// NewLexer creates a new lexer for the given source.
func NewLexer(source []byte) *Lexer {
	return &Lexer{
		source: source,
		line:   1,
		column: 1,
		tokens: make([]Token, 0, len(source)/20+16),
	}
}

// ScanAll lexes the entire source and returns all tokens, terminated by EOF.
func (l *Lexer) ScanAll() []Token {
	for l.pos < len(l.source) {
		l.skipWhitespace()

		if l.pos >= len(l.source) {
			break
		}

		// Comments, and org-mode headers at the start of a line
		if ch := l.peek(); ch == ';' || (ch == '*' && l.column == 1) {
			l.skipLine()
			continue
		}

		l.tokens = append(l.tokens, l.scanToken())
	}

	l.tokens = append(l.tokens, Token{
		Type:   EOF,
		Start:  l.pos,
		End:    l.pos,
		Line:   l.line,
		Column: l.column,
	})

	return l.tokens
}

func (l *Lexer) scanToken() Token {
	start := l.pos
	startLine := l.line
	startCol := l.column

	ch := l.advance()

	switch {
	case isDigit(ch):
		if l.isDatePattern(start) {
			return l.scanDate(start, startLine, startCol)
		}
		return l.scanNumber(start, startLine, startCol)
	case (ch == '-' || ch == '+') && isDigit(l.peek()) && !l.afterOperand(startLine):
		return l.scanNumber(start, startLine, startCol)
	case ch == '-':
		return Token{MINUS, start, l.pos, startLine, startCol}
	case ch == '+':
		return Token{PLUS, start, l.pos, startLine, startCol}
	case ch == '/':
		return Token{SLASH, start, l.pos, startLine, startCol}
	case ch == '(':
		return Token{LPAREN, start, l.pos, startLine, startCol}
	case ch == ')':
		return Token{RPAREN, start, l.pos, startLine, startCol}

	case ch == '"':
		return l.scanString(start, startLine, startCol)

	case ch == '#':
		return l.scanWord(TAG, start, startLine, startCol)
	case ch == '^':
		return l.scanWord(LINK, start, startLine, startCol)

	// Accounts and currencies start with a capital or a non-ASCII letter
	case ch >= 'A' && ch <= 'Z' || ch >= 0x80:
		return l.scanAccountOrIdent(start, startLine, startCol)

	case ch >= 'a' && ch <= 'z':
		return l.scanKeywordOrIdent(start, startLine, startCol)

	case ch == '*':
		return Token{ASTERISK, start, l.pos, startLine, startCol}
	case ch == '!':
		return Token{EXCLAIM, start, l.pos, startLine, startCol}
	case ch == ':':
		return Token{COLON, start, l.pos, startLine, startCol}
	case ch == ',':
		return Token{COMMA, start, l.pos, startLine, startCol}

	case ch == '{':
		if l.peek() == '{' {
			l.advance()
			return Token{LDBRACE, start, l.pos, startLine, startCol}
		}
		return Token{LBRACE, start, l.pos, startLine, startCol}
	case ch == '}':
		if l.peek() == '}' {
			l.advance()
			return Token{RDBRACE, start, l.pos, startLine, startCol}
		}
		return Token{RBRACE, start, l.pos, startLine, startCol}

	case ch == '@':
		if l.peek() == '@' {
			l.advance()
			return Token{ATAT, start, l.pos, startLine, startCol}
		}
		return Token{AT, start, l.pos, startLine, startCol}

	default:
		return Token{ILLEGAL, start, l.pos, startLine, startCol}
	}
}

// afterOperand reports whether the previous token on line ends an operand,
// in which case a following sign is a binary operator: "10 -2" is 8.
func (l *Lexer) afterOperand(line int) bool {
	if len(l.tokens) == 0 {
		return false
	}
	last := l.tokens[len(l.tokens)-1]
	return last.Line == line && (last.Type == NUMBER || last.Type == RPAREN)
}

// isDatePattern checks if the position starts a date pattern YYYY-MM-DD.
func (l *Lexer) isDatePattern(start int) bool {
	if start+10 > len(l.source) {
		return false
	}
	src := l.source[start:]
	for i := 0; i < 10; i++ {
		switch i {
		case 4, 7:
			if src[i] != '-' {
				return false
			}
		default:
			if !isDigit(src[i]) {
				return false
			}
		}
	}
	return true
}

func (l *Lexer) scanDate(start, line, col int) Token {
	// First digit already consumed
	for i := 0; i < 9; i++ {
		l.advance()
	}
	return Token{DATE, start, l.pos, line, col}
}

// scanNumber scans a number: [-+]?[0-9][0-9,]*(\.[0-9]+)?
func (l *Lexer) scanNumber(start, line, col int) Token {
	for l.pos < len(l.source) {
		ch := l.source[l.pos]
		if isDigit(ch) || (ch == ',' && l.pos+1 < len(l.source) && isDigit(l.source[l.pos+1])) {
			l.advance()
			continue
		}
		break
	}

	if l.peek() == '.' {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	return Token{NUMBER, start, l.pos, line, col}
}

// scanString scans a quoted string. Strings never span lines.
func (l *Lexer) scanString(start, line, col int) Token {
	for l.pos < len(l.source) {
		ch := l.source[l.pos]
		if ch == '"' {
			l.advance()
			return Token{STRING, start, l.pos, line, col}
		}
		if ch == '\n' {
			break
		}
		if ch == '\\' && l.pos+1 < len(l.source) {
			l.advance()
		}
		l.advance()
	}

	return Token{ILLEGAL, start, l.pos, line, col}
}

// scanWord scans the body of a tag or link: [A-Za-z0-9_./-]+
func (l *Lexer) scanWord(typ TokenType, start, line, col int) Token {
	for l.pos < len(l.source) {
		ch := l.source[l.pos]
		if !isLetter(ch) && !isDigit(ch) && ch != '_' && ch != '-' && ch != '.' && ch != '/' {
			break
		}
		l.advance()
	}

	if l.pos == start+1 {
		return Token{ILLEGAL, start, l.pos, line, col}
	}
	return Token{typ, start, l.pos, line, col}
}

// scanAccountOrIdent scans an account name or an identifier such as a
// currency. Accounts contain colons, identifiers don't.
func (l *Lexer) scanAccountOrIdent(start, line, col int) Token {
	hasColon := false

	for l.pos < len(l.source) {
		ch := l.source[l.pos]
		if !isLetter(ch) && !isDigit(ch) && ch < 0x80 &&
			ch != ':' && ch != '-' && ch != '.' && ch != '_' && ch != '\'' {
			break
		}
		// A trailing colon belongs to a metadata key, not to an account
		if ch == ':' {
			if l.pos+1 >= len(l.source) || !startsSegment(l.source[l.pos+1]) {
				break
			}
			hasColon = true
		}
		l.advance()
	}

	if hasColon {
		return Token{ACCOUNT, start, l.pos, line, col}
	}
	return Token{IDENT, start, l.pos, line, col}
}

// scanKeywordOrIdent scans a keyword or identifier starting with a lowercase letter.
func (l *Lexer) scanKeywordOrIdent(start, line, col int) Token {
	for l.pos < len(l.source) {
		ch := l.source[l.pos]
		if !isLetter(ch) && !isDigit(ch) && ch != '_' && ch != '-' {
			break
		}
		l.advance()
	}

	if typ, ok := keywords[string(l.source[start:l.pos])]; ok {
		return Token{typ, start, l.pos, line, col}
	}
	return Token{IDENT, start, l.pos, line, col}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.source) {
		switch l.source[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.advance()
		default:
			return
		}
	}
}

// skipLine skips to the start of the next line.
func (l *Lexer) skipLine() {
	for l.pos < len(l.source) && l.source[l.pos] != '\n' {
		l.pos++
	}
	if l.pos < len(l.source) {
		l.advance()
	}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	ch := l.source[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z')
}

func startsSegment(ch byte) bool {
	return (ch >= 'A' && ch <= 'Z') || isDigit(ch) || ch >= 0x80
}
