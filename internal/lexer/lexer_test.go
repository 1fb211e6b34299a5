package lexer

import (
	"strings"
	"testing"

	"zyxt/internal/token"
)

// tokenizeOK tokenizes input and fails the test on a lexer error.
func tokenizeOK(t *testing.T, input string) []token.Token {
	t.Helper()
	toks, err := Tokenize(input, "<test>")
	if err != nil {
		t.Fatalf("tokenize(%q): unexpected error %v", input, err)
	}
	return toks
}

func TestWhitespaceRawRoundTrip(t *testing.T) {
	tests := []string{
		"x := 1;",
		"  x  :=   1 ;  ",
		"f := |a, b| { a + b };",
		"// a comment\nx := 1;",
	}
	for _, input := range tests {
		toks := tokenizeOK(t, input)
		var rebuilt strings.Builder
		for _, tok := range toks {
			rebuilt.WriteString(tok.Raw())
		}
		if rebuilt.String() != input {
			t.Errorf("raw round-trip mismatch: got %q, want %q", rebuilt.String(), input)
		}
	}
}

func TestTokenKinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kinds []token.Kind
	}{
		{"declare", "x := 1", []token.Kind{token.Ident, token.Declare, token.LiteralNumber}},
		{"binary add", "1 + 2", []token.Kind{token.LiteralNumber, token.OpAdd, token.LiteralNumber}},
		{"string", `"hi"`, []token.Kind{token.LiteralString}},
		{"keyword if", "if true", []token.Kind{token.KwIf, token.LiteralMisc}},
		{"single bar", "|a|", []token.Kind{token.Bar, token.Ident, token.Bar}},
		{"double bar", "a || b", []token.Kind{token.Ident, token.OpOr, token.Ident}},
		{"double amp", "a && b", []token.Kind{token.Ident, token.OpAnd, token.Ident}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			toks := tokenizeOK(t, tc.input)
			if len(toks) != len(tc.kinds) {
				t.Fatalf("%s: got %d tokens, want %d (%v)", tc.name, len(toks), len(tc.kinds), toks)
			}
			for i, k := range tc.kinds {
				if toks[i].Kind != k {
					t.Errorf("%s: token %d kind = %v, want %v", tc.name, i, toks[i].Kind, k)
				}
			}
		})
	}
}

func TestStringEscapes(t *testing.T) {
	toks := tokenizeOK(t, `"a\nb\"c"`)
	if len(toks) != 1 {
		t.Fatalf("expected 1 token, got %d", len(toks))
	}
	got := Unescape(toks[0].Value[1 : len(toks[0].Value)-1])
	want := "a\nb\"c"
	if got != want {
		t.Errorf("Unescape() = %q, want %q", got, want)
	}
}

func TestNestedBlockComment(t *testing.T) {
	toks := tokenizeOK(t, "/* outer /* inner */ still outer */ x := 1;")
	if len(toks) != 5 {
		t.Fatalf("expected the comment plus 4 tokens after it, got %d: %v", len(toks), toks)
	}
}

func TestUnterminatedStringError(t *testing.T) {
	_, err := Tokenize(`"unterminated`, "<test>")
	if err == nil {
		t.Fatal("expected an error for an unterminated string")
	}
	if err.Code != "L002" {
		t.Errorf("error code = %s, want L002", err.Code)
	}
}

func TestUnterminatedBlockCommentError(t *testing.T) {
	_, err := Tokenize("/* never closes", "<test>")
	if err == nil {
		t.Fatal("expected an error for an unterminated block comment")
	}
	if err.Code != "L003" {
		t.Errorf("error code = %s, want L003", err.Code)
	}
}

func TestUnknownSymbolError(t *testing.T) {
	_, err := Tokenize("x >< y", "<test>")
	if err == nil {
		t.Fatal("expected an error for an unknown symbol")
	}
	if err.Code != "L001" {
		t.Errorf("error code = %s, want L001", err.Code)
	}
}
