// Package compiler extracts the output column names of a SELECT statement.
package compiler

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotSelect is returned for statements that do not start with SELECT.
	ErrNotSelect = errors.New("statement is not a SELECT")
	// ErrStarProjection is returned when the select list contains * or t.*.
	ErrStarProjection = errors.New("star projections cannot be resolved to column names")
	// ErrEmptyProjection is returned when the select list is empty.
	ErrEmptyProjection = errors.New("select list is empty")
)

// Compiler resolves select lists. The zero value is ready to use and it is safe for concurrent use.
type Compiler struct{}

// New returns a Compiler.
func New() *Compiler {
	return &Compiler{}
}

// listTerminators end the select list at nesting depth zero.
var listTerminators = []string{"FROM", "WHERE", "GROUP", "HAVING", "WINDOW", "PARTITION", "ORDER", "LIMIT", "EMIT"}

// SelectColumns returns the output column names of query in select list order: the alias when
// present, the column name for a (qualified) column reference, the expression text otherwise.
func (c *Compiler) SelectColumns(query string) ([]string, error) {
	tokens, err := NewTokenizer(query).Tokenize()
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 || !tokens[0].isKeyword("SELECT") {
		return nil, ErrNotSelect
	}
	pos := 1
	if tokens[pos].isKeyword("DISTINCT") || tokens[pos].isKeyword("ALL") {
		pos++
	}

	var items [][]Token
	var current []Token
	depth := 0
loop:
	for ; pos < len(tokens); pos++ {
		tok := tokens[pos]
		switch tok.Type {
		case TokenEOF, TokenSemicolon:
			break loop
		case TokenLeftParen, TokenLeftBracket:
			depth++
		case TokenRightParen, TokenRightBracket:
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced %q at position %d", tok.Literal, tok.Start)
			}
		case TokenComma:
			if depth == 0 {
				items = append(items, current)
				current = nil
				continue
			}
		case TokenKeyword:
			if depth == 0 && isListTerminator(tok) {
				break loop
			}
		}
		current = append(current, tok)
	}
	if depth != 0 {
		return nil, errors.New("unbalanced parentheses in select list")
	}
	items = append(items, current)

	names := make([]string, 0, len(items))
	for _, item := range items {
		name, err := columnName(query, item)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func isListTerminator(tok Token) bool {
	for _, kw := range listTerminators {
		if tok.isKeyword(kw) {
			return true
		}
	}
	return false
}

func isName(tok Token) bool {
	return tok.Type == TokenIdentifier || tok.Type == TokenQuotedIdentifier
}

func columnName(query string, item []Token) (string, error) {
	n := len(item)
	if n == 0 {
		return "", ErrEmptyProjection
	}
	last := item[n-1]
	if last.Type == TokenAsterisk && (n == 1 || item[n-2].Type == TokenDot) {
		return "", ErrStarProjection
	}
	if n >= 3 && item[n-2].isKeyword("AS") && isName(last) {
		return last.Literal, nil
	}
	if n == 1 && isName(last) {
		return last.Literal, nil
	}
	if isName(last) {
		prev := item[n-2]
		switch {
		case prev.Type == TokenDot && allQualifiedName(item):
			return last.Literal, nil
		case prev.Type == TokenRightParen || prev.Type == TokenRightBracket || isName(prev) ||
			prev.Type == TokenNumber || prev.Type == TokenString || prev.isKeyword("END"):
			// implicit alias
			return last.Literal, nil
		}
	}
	return strings.TrimSpace(query[item[0].Start:last.End]), nil
}

// allQualifiedName reports whether item has the form a.b[.c...].
func allQualifiedName(item []Token) bool {
	for i, tok := range item {
		if i%2 == 0 && !isName(tok) {
			return false
		}
		if i%2 == 1 && tok.Type != TokenDot {
			return false
		}
	}
	return len(item)%2 == 1
}
