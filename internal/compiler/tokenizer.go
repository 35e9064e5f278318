package compiler

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenType classifies a token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdentifier
	TokenQuotedIdentifier
	TokenKeyword
	TokenString
	TokenNumber
	TokenOperator
	TokenLeftParen
	TokenRightParen
	TokenLeftBracket
	TokenRightBracket
	TokenComma
	TokenSemicolon
	TokenDot
	TokenAsterisk
)

// keywords that end or structure a SELECT list
var keywords = map[string]struct{}{
	"SELECT":    {},
	"DISTINCT":  {},
	"ALL":       {},
	"AS":        {},
	"FROM":      {},
	"WHERE":     {},
	"GROUP":     {},
	"HAVING":    {},
	"WINDOW":    {},
	"PARTITION": {},
	"ORDER":     {},
	"LIMIT":     {},
	"EMIT":      {},
	"CASE":      {},
	"WHEN":      {},
	"THEN":      {},
	"ELSE":      {},
	"END":       {},
	"AND":       {},
	"OR":        {},
	"NOT":       {},
	"IS":        {},
	"NULL":      {},
	"IN":        {},
	"LIKE":      {},
	"BETWEEN":   {},
	"CAST":      {},
}

// Token is a lexical unit. Start and End are byte offsets into the input.
type Token struct {
	Type    TokenType
	Literal string
	Start   int
	End     int
}

// isKeyword reports whether the token is the keyword kw, compared case insensitively.
func (t Token) isKeyword(kw string) bool {
	return t.Type == TokenKeyword && strings.EqualFold(t.Literal, kw)
}

// Tokenizer splits a statement into tokens. Comments and whitespace are dropped.
type Tokenizer struct {
	input string
	pos   int
}

// NewTokenizer returns a tokenizer over input.
func NewTokenizer(input string) *Tokenizer {
	return &Tokenizer{input: input}
}

// Tokenize returns every token of the input followed by a TokenEOF.
func (t *Tokenizer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := t.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

func (t *Tokenizer) peekByte(offset int) byte {
	if t.pos+offset >= len(t.input) {
		return 0
	}
	return t.input[t.pos+offset]
}

func (t *Tokenizer) skipWhitespaceAndComments() error {
	for t.pos < len(t.input) {
		c := t.input[t.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			t.pos++
		case c == '-' && t.peekByte(1) == '-':
			for t.pos < len(t.input) && t.input[t.pos] != '\n' {
				t.pos++
			}
		case c == '/' && t.peekByte(1) == '*':
			end := strings.Index(t.input[t.pos+2:], "*/")
			if end < 0 {
				return fmt.Errorf("unterminated comment at position %d", t.pos)
			}
			t.pos += end + 4
		default:
			return nil
		}
	}
	return nil
}

func (t *Tokenizer) next() (Token, error) {
	if err := t.skipWhitespaceAndComments(); err != nil {
		return Token{}, err
	}
	start := t.pos
	if t.pos >= len(t.input) {
		return Token{Type: TokenEOF, Start: start, End: start}, nil
	}
	c := t.input[t.pos]
	single := func(typ TokenType) (Token, error) {
		t.pos++
		return Token{Type: typ, Literal: t.input[start:t.pos], Start: start, End: t.pos}, nil
	}
	switch {
	case c == '\'':
		return t.readQuoted('\'', TokenString)
	case c == '"' || c == '`':
		return t.readQuoted(c, TokenQuotedIdentifier)
	case isDigit(c) || (c == '.' && isDigit(t.peekByte(1))):
		return t.readNumber(), nil
	case isIdentStart(rune(c)) || c >= 0x80:
		return t.readIdentifier(), nil
	case c == '(':
		return single(TokenLeftParen)
	case c == ')':
		return single(TokenRightParen)
	case c == '[':
		return single(TokenLeftBracket)
	case c == ']':
		return single(TokenRightBracket)
	case c == ',':
		return single(TokenComma)
	case c == ';':
		return single(TokenSemicolon)
	case c == '.':
		return single(TokenDot)
	case c == '*':
		return single(TokenAsterisk)
	}
	return t.readOperator()
}

// readQuoted reads a literal closed by quote. A doubled quote stands for the quote itself.
func (t *Tokenizer) readQuoted(quote byte, typ TokenType) (Token, error) {
	start := t.pos
	t.pos++
	var sb strings.Builder
	for t.pos < len(t.input) {
		c := t.input[t.pos]
		if c == quote {
			if t.peekByte(1) == quote {
				sb.WriteByte(quote)
				t.pos += 2
				continue
			}
			t.pos++
			return Token{Type: typ, Literal: sb.String(), Start: start, End: t.pos}, nil
		}
		sb.WriteByte(c)
		t.pos++
	}
	return Token{}, fmt.Errorf("unterminated quoted literal at position %d", start)
}

func (t *Tokenizer) readNumber() Token {
	start := t.pos
	for t.pos < len(t.input) {
		c := t.input[t.pos]
		if isDigit(c) || c == '.' {
			t.pos++
			continue
		}
		if (c == 'e' || c == 'E') && (isDigit(t.peekByte(1)) || ((t.peekByte(1) == '+' || t.peekByte(1) == '-') && isDigit(t.peekByte(2)))) {
			t.pos += 2
			continue
		}
		break
	}
	return Token{Type: TokenNumber, Literal: t.input[start:t.pos], Start: start, End: t.pos}
}

func (t *Tokenizer) readIdentifier() Token {
	start := t.pos
	for t.pos < len(t.input) {
		r := rune(t.input[t.pos])
		if !(isIdentStart(r) || unicode.IsDigit(r) || r == '$' || r >= 0x80) {
			break
		}
		t.pos++
	}
	literal := t.input[start:t.pos]
	typ := TokenIdentifier
	if _, ok := keywords[strings.ToUpper(literal)]; ok {
		typ = TokenKeyword
	}
	return Token{Type: typ, Literal: literal, Start: start, End: t.pos}
}

var twoCharOperators = []string{"<=", ">=", "<>", "!=", "||", "->", "=>"}

func (t *Tokenizer) readOperator() (Token, error) {
	start := t.pos
	for _, op := range twoCharOperators {
		if strings.HasPrefix(t.input[t.pos:], op) {
			t.pos += len(op)
			return Token{Type: TokenOperator, Literal: op, Start: start, End: t.pos}, nil
		}
	}
	if strings.IndexByte("+-/%=<>:!", t.input[t.pos]) < 0 {
		return Token{}, fmt.Errorf("unexpected character %q at position %d", t.input[t.pos], t.pos)
	}
	t.pos++
	return Token{Type: TokenOperator, Literal: t.input[start:t.pos], Start: start, End: t.pos}, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}
