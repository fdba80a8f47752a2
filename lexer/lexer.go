package lexer

import (
	"tabula/token"
)

type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           byte
	column       int
}

func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	if l.ch != 0 {
		l.column++
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	startColumn := l.column

	var tok token.Token
	switch l.ch {
	case '+':
		tok = newToken(token.PLUS, l.ch)
	case '-':
		tok = newToken(token.MINUS, l.ch)
	case '*':
		tok = newToken(token.ASTERISK, l.ch)
	case '/':
		tok = newToken(token.SLASH, l.ch)
	case '(':
		tok = newToken(token.LPAREN, l.ch)
	case ')':
		tok = newToken(token.RPAREN, l.ch)
	case 0:
		tok = token.Token{Type: token.EOF, Literal: ""}
	default:
		if isDigit(l.ch) {
			tok = l.readNumber()
			tok.Column = startColumn
			return tok
		}
		if isUpperLetter(l.ch) {
			tok = l.readCellRef()
			tok.Column = startColumn
			return tok
		}
		tok = newToken(token.ILLEGAL, l.ch)
	}

	tok.Column = startColumn
	l.readChar()
	return tok
}

// readNumber scans an unsigned decimal literal with optional fraction
// and exponent. The sign is handled by the parser as a prefix operator.
func (l *Lexer) readNumber() token.Token {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		peek := l.peekChar()
		if isDigit(peek) || peek == '+' || peek == '-' {
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			if !isDigit(l.ch) {
				return token.Token{Type: token.ILLEGAL, Literal: l.input[start:l.position]}
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	return token.Token{Type: token.NUMBER, Literal: l.input[start:l.position]}
}

// readCellRef scans a reference of the form [A-Z]+[0-9]+. A run of
// letters with no trailing row digits is not a reference.
func (l *Lexer) readCellRef() token.Token {
	start := l.position
	for isUpperLetter(l.ch) {
		l.readChar()
	}
	if !isDigit(l.ch) {
		return token.Token{Type: token.ILLEGAL, Literal: l.input[start:l.position]}
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	return token.Token{Type: token.REF, Literal: l.input[start:l.position]}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func newToken(tokenType token.TokenType, ch byte) token.Token {
	return token.Token{Type: tokenType, Literal: string(ch)}
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isUpperLetter(ch byte) bool {
	return 'A' <= ch && ch <= 'Z'
}
