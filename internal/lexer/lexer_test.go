package lexer

import (
	"bytes"
	"testing"

	"lox/internal/diagnostic"
	"lox/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `var five = 5;
var ten = 10.5;
fun add(x, y) {
  return x + y;
}
if (five <= ten) { print "ok"; } else { print "no"; }
!true != false;
// a comment
class Foo < Bar {}
this.x = 1;
super.m();
`

	tests := []struct {
		expectedType   token.Type
		expectedLexeme string
	}{
		{token.VAR, "var"},
		{token.IDENTIFIER, "five"},
		{token.EQUAL, "="},
		{token.NUMBER, "5"},
		{token.SEMICOLON, ";"},
		{token.VAR, "var"},
		{token.IDENTIFIER, "ten"},
		{token.EQUAL, "="},
		{token.NUMBER, "10.5"},
		{token.SEMICOLON, ";"},
		{token.FUN, "fun"},
		{token.IDENTIFIER, "add"},
		{token.LEFT_PAREN, "("},
		{token.IDENTIFIER, "x"},
		{token.COMMA, ","},
		{token.IDENTIFIER, "y"},
		{token.RIGHT_PAREN, ")"},
		{token.LEFT_BRACE, "{"},
		{token.RETURN, "return"},
		{token.IDENTIFIER, "x"},
		{token.PLUS, "+"},
		{token.IDENTIFIER, "y"},
		{token.SEMICOLON, ";"},
		{token.RIGHT_BRACE, "}"},
		{token.IF, "if"},
		{token.LEFT_PAREN, "("},
		{token.IDENTIFIER, "five"},
		{token.LESS_EQUAL, "<="},
		{token.IDENTIFIER, "ten"},
		{token.RIGHT_PAREN, ")"},
		{token.LEFT_BRACE, "{"},
		{token.PRINT, "print"},
		{token.STRING, `"ok"`},
		{token.SEMICOLON, ";"},
		{token.RIGHT_BRACE, "}"},
		{token.ELSE, "else"},
		{token.LEFT_BRACE, "{"},
		{token.PRINT, "print"},
		{token.STRING, `"no"`},
		{token.SEMICOLON, ";"},
		{token.RIGHT_BRACE, "}"},
		{token.BANG, "!"},
		{token.TRUE, "true"},
		{token.BANG_EQUAL, "!="},
		{token.FALSE, "false"},
		{token.SEMICOLON, ";"},
		{token.CLASS, "class"},
		{token.IDENTIFIER, "Foo"},
		{token.LESS, "<"},
		{token.IDENTIFIER, "Bar"},
		{token.LEFT_BRACE, "{"},
		{token.RIGHT_BRACE, "}"},
		{token.THIS, "this"},
		{token.DOT, "."},
		{token.IDENTIFIER, "x"},
		{token.EQUAL, "="},
		{token.NUMBER, "1"},
		{token.SEMICOLON, ";"},
		{token.SUPER, "super"},
		{token.DOT, "."},
		{token.IDENTIFIER, "m"},
		{token.LEFT_PAREN, "("},
		{token.RIGHT_PAREN, ")"},
		{token.SEMICOLON, ";"},
		{token.EOF, ""},
	}

	var buf bytes.Buffer
	l := New(input, diagnostic.New(&buf))

	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (lexeme %q)",
				i, tt.expectedType, tok.Type, tok.Lexeme)
		}
		if tok.Lexeme != tt.expectedLexeme {
			t.Fatalf("tests[%d] - lexeme wrong. expected=%q, got=%q", i, tt.expectedLexeme, tok.Lexeme)
		}
	}

	if buf.Len() != 0 {
		t.Errorf("expected no diagnostics, got: %s", buf.String())
	}
}

func TestUnterminatedString(t *testing.T) {
	var buf bytes.Buffer
	l := New(`"oops`, diagnostic.New(&buf))
	l.ScanTokens()
	if buf.Len() == 0 {
		t.Errorf("expected an unterminated string diagnostic")
	}
}

func TestLineCounting(t *testing.T) {
	var buf bytes.Buffer
	l := New("var a = 1;\nvar b = 2;\n", diagnostic.New(&buf))
	tokens := l.ScanTokens()
	var bLine int
	for _, tok := range tokens {
		if tok.Lexeme == "b" {
			bLine = tok.Line
		}
	}
	if bLine != 2 {
		t.Errorf("expected 'b' on line 2, got %d", bLine)
	}
}
