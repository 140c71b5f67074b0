// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package verilog

type tokKind uint8

const (
	tokEOF tokKind = iota
	tokIdent
	tokNumber
	tokSymbol
)

type token struct {
	kind tokKind
	text string
	line int
}

// lexer produces the token stream for the parser.  Comments and
// compiler directives are discarded; escaped identifiers are returned as
// plain idents with the backslash stripped.
type lexer struct {
	src  string
	pos  int
	line int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1}
}

func (l *lexer) tokens() ([]token, error) {
	var toks []token
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.kind == tokEOF {
			return toks, nil
		}
	}
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		switch {
		case ch == '\n':
			l.line++
			l.pos++
		case ch == ' ' || ch == '\t' || ch == '\r':
			l.pos++
		case ch == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			l.skipLine()
		case ch == '`': // compiler directives are ignored wholesale
			l.skipLine()
		case ch == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*':
			if err := l.skipBlockComment(); err != nil {
				return token{}, err
			}
		default:
			return l.scan()
		}
	}
	return token{kind: tokEOF, line: l.line}, nil
}

func (l *lexer) skipLine() {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.pos++
	}
}

func (l *lexer) skipBlockComment() error {
	start := l.line
	l.pos += 2
	for l.pos+1 < len(l.src) {
		if l.src[l.pos] == '\n' {
			l.line++
		}
		if l.src[l.pos] == '*' && l.src[l.pos+1] == '/' {
			l.pos += 2
			return nil
		}
		l.pos++
	}
	return parseErrf(start, "unterminated block comment")
}

func (l *lexer) scan() (token, error) {
	ch := l.src[l.pos]
	line := l.line
	switch {
	case ch == '\\':
		// escaped identifier, runs to the next whitespace
		l.pos++
		start := l.pos
		for l.pos < len(l.src) && !isSpace(l.src[l.pos]) {
			l.pos++
		}
		if l.pos == start {
			return token{}, parseErrf(line, "empty escaped identifier")
		}
		return token{kind: tokIdent, text: l.src[start:l.pos], line: line}, nil
	case isIdentStart(ch):
		start := l.pos
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}
		return token{kind: tokIdent, text: l.src[start:l.pos], line: line}, nil
	case ch >= '0' && ch <= '9':
		start := l.pos
		for l.pos < len(l.src) && isNumberPart(l.src[l.pos]) {
			l.pos++
		}
		return token{kind: tokNumber, text: l.src[start:l.pos], line: line}, nil
	}
	// multi-character operators first
	if l.pos+1 < len(l.src) {
		two := l.src[l.pos : l.pos+2]
		switch two {
		case "<=", "&&", "||", "==", "!=":
			l.pos += 2
			return token{kind: tokSymbol, text: two, line: line}, nil
		}
	}
	switch ch {
	case '(', ')', '[', ']', '{', '}', ',', ';', ':', '.', '=', '~', '&', '|', '^', '@', '#', '!', '?', '*', '+', '-':
		l.pos++
		return token{kind: tokSymbol, text: string(ch), line: line}, nil
	}
	return token{}, parseErrf(line, "unexpected character %q", string(ch))
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch == '$' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}

func isNumberPart(ch byte) bool {
	return ch == '\'' || ch == '_' || isIdentPart(ch)
}
