package evaluator

import (
	"bytes"
	"testing"

	"lox/internal/diagnostic"
	"lox/internal/lexer"
	"lox/internal/object"
	"lox/internal/parser"
	"lox/internal/resolver"
)

func run(t *testing.T, src string) (*Evaluator, *bytes.Buffer) {
	var buf bytes.Buffer
	diag := diagnostic.New(&buf)
	toks := lexer.New(src, diag).ScanTokens()
	stmts := parser.New(toks, diag).Parse()
	if diag.HadError() {
		t.Fatalf("unexpected parse/scan error: %s", buf.String())
	}
	r := resolver.New(diag)
	r.Resolve(stmts)
	if diag.HadError() {
		t.Fatalf("unexpected resolve error: %s", buf.String())
	}
	eval := New(diag, r.Locals())
	eval.Interpret(stmts)
	return eval, &buf
}

func global(t *testing.T, eval *Evaluator, name string) object.Object {
	v, ok := eval.Globals().Get(name)
	if !ok {
		t.Fatalf("expected global %q to be defined", name)
	}
	return v
}

func TestArithmeticPrecedence(t *testing.T) {
	eval, diags := run(t, `var r = -2 * (3 + 4);`)
	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", diags.String())
	}
	got := global(t, eval, "r").(*object.Number).Value
	if got != -14 {
		t.Fatalf("got %v, want -14", got)
	}
}

func TestStringConcatenation(t *testing.T) {
	eval, _ := run(t, `var s = "foo" + "bar";`)
	got := global(t, eval, "s").(*object.String).Value
	if got != "foobar" {
		t.Fatalf("got %q", got)
	}
}

func TestClosureCapturesDefiningEnvironment(t *testing.T) {
	eval, diags := run(t, `
fun makeCounter() {
  var i = 0;
  fun count() {
    i = i + 1;
    return i;
  }
  return count;
}
var counter = makeCounter();
counter();
var r = counter();
`)
	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", diags.String())
	}
	got := global(t, eval, "r").(*object.Number).Value
	if got != 2 {
		t.Fatalf("got %v, want 2 (closure should persist its own 'i')", got)
	}
}

func TestClassInitAndMethodDispatch(t *testing.T) {
	eval, diags := run(t, `
class Greeter {
  init(name) {
    this.name = name;
  }
  greeting() {
    return "hi " + this.name;
  }
}
var g = Greeter("world");
var r = g.greeting();
`)
	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", diags.String())
	}
	got := global(t, eval, "r").(*object.String).Value
	if got != "hi world" {
		t.Fatalf("got %q", got)
	}
}

func TestSuperDispatchesToParentMethod(t *testing.T) {
	eval, diags := run(t, `
class A {
  speak() { return "A"; }
}
class B < A {
  speak() { return super.speak() + "B"; }
}
var r = B().speak();
`)
	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", diags.String())
	}
	got := global(t, eval, "r").(*object.String).Value
	if got != "AB" {
		t.Fatalf("got %q, want \"AB\"", got)
	}
}

func TestDivisionByZeroIsNotARuntimeError(t *testing.T) {
	_, diags := run(t, `var r = 1 / 0;`)
	// 1/0 is +Inf under IEEE-754, not a runtime error; this asserts that
	// behavior explicitly rather than letting it silently mean "no error".
	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics for 1/0: %s", diags.String())
	}
}

func TestUndefinedVariableIsRuntimeError(t *testing.T) {
	_, diags := run(t, `print undefined_name;`)
	if diags.Len() == 0 {
		t.Fatalf("expected a runtime error for an undefined variable")
	}
}

func TestLogicalOperatorsShortCircuitAndReturnOperand(t *testing.T) {
	eval, diags := run(t, `
var a = nil or "yes";
var b = "first" and "second";
var c = false and missing_name;
`)
	if diags.Len() != 0 {
		t.Fatalf("'and' evaluated its right operand after a falsy left: %s", diags.String())
	}
	if global(t, eval, "c") != object.FALSE {
		t.Fatalf("'and' should return the falsy left operand")
	}
	if global(t, eval, "a").(*object.String).Value != "yes" {
		t.Fatalf("'or' should return the truthy right operand")
	}
	if global(t, eval, "b").(*object.String).Value != "second" {
		t.Fatalf("'and' should return the right operand when left is truthy")
	}
}
