package compiler

import (
	"errors"
	"reflect"
	"testing"
)

func TestSelectColumns(t *testing.T) {
	testcases := []struct {
		query string
		want  []string
	}{
		{"select id, name from users", []string{"id", "name"}},
		{"SELECT u.id, u.name FROM users u", []string{"id", "name"}},
		{"select count(*) as cnt, max(price) top from orders group by id", []string{"cnt", "top"}},
		{"select distinct region from orders emit changes", []string{"region"}},
		{"select a + b, concat(x, ', ', y) from t", []string{"a + b", "concat(x, ', ', y)"}},
		{"select \"Order Id\", `total` from t limit 1", []string{"Order Id", "total"}},
		{"select case when a > 1 then 'x' else 'y' end as bucket from t", []string{"bucket"}},
		{"select col1,col2,col3 from src limit 1", []string{"col1", "col2", "col3"}},
		{"-- leading comment\nselect /* inline */ v from t;", []string{"v"}},
		{"select 1 one, 'it''s' label", []string{"one", "label"}},
		{"select arr[1], m['k'] as mk from t where x = 1", []string{"arr[1]", "mk"}},
	}
	c := New()
	for _, tc := range testcases {
		t.Run(tc.query, func(t *testing.T) {
			got, err := c.SelectColumns(tc.query)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("columns mismatch. expected: %v, got: %v", tc.want, got)
			}
		})
	}
}

func TestSelectColumnsFailures(t *testing.T) {
	testcases := []struct {
		query string
		err   error
	}{
		{"select * from users", ErrStarProjection},
		{"select u.* from users u", ErrStarProjection},
		{"select from users", ErrEmptyProjection},
		{"select a, from users", ErrEmptyProjection},
		{"show tables", ErrNotSelect},
		{"", ErrNotSelect},
	}
	c := New()
	for _, tc := range testcases {
		t.Run(tc.query, func(t *testing.T) {
			_, err := c.SelectColumns(tc.query)
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
		})
	}
}

func TestSelectColumnsSyntaxErrors(t *testing.T) {
	for _, query := range []string{
		"select 'unterminated from t",
		"select count(a from t",
		"select a) from t",
		"select a /* open",
		"select a # b from t",
	} {
		if _, err := New().SelectColumns(query); err == nil {
			t.Errorf("expected an error for %q", query)
		}
	}
}

func TestTokenize(t *testing.T) {
	tokens, err := NewTokenizer("SELECT a.b, 'x' FROM t").Tokenize()
	if err != nil {
		t.Fatal(err)
	}
	types := []TokenType{TokenKeyword, TokenIdentifier, TokenDot, TokenIdentifier, TokenComma, TokenString, TokenKeyword, TokenIdentifier, TokenEOF}
	if len(tokens) != len(types) {
		t.Fatalf("expected %v tokens, got %v: %v", len(types), len(tokens), tokens)
	}
	for i, tok := range tokens {
		if tok.Type != types[i] {
			t.Errorf("token %v: expected type %v, got %v (%q)", i, types[i], tok.Type, tok.Literal)
		}
	}
	if tokens[5].Literal != "x" {
		t.Errorf("string literal should be unquoted, got %q", tokens[5].Literal)
	}
}
