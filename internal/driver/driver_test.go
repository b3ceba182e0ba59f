package driver

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunOKOnValidProgram(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run(`print "hi";`, Options{Stdout: &stdout, Stderr: &stderr})
	if code != ExitOK {
		t.Fatalf("got exit %d, want %d (stderr: %s)", code, ExitOK, stderr.String())
	}
	if stdout.String() != "hi\n" {
		t.Fatalf("got stdout %q, want %q", stdout.String(), "hi\n")
	}
}

func TestRunReturnsStaticErrorExitCode(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run(`var x = ;`, Options{Stdout: &stdout, Stderr: &stderr})
	if code != ExitStaticError {
		t.Fatalf("got exit %d, want %d", code, ExitStaticError)
	}
}

func TestRunReturnsRuntimeErrorExitCode(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run(`print clock() + "x";`, Options{Stdout: &stdout, Stderr: &stderr})
	if code != ExitRuntimeError {
		t.Fatalf("got exit %d, want %d", code, ExitRuntimeError)
	}
}

func TestDiagnosticsAndPrintOutputDoNotShareAStream(t *testing.T) {
	var stdout, stderr bytes.Buffer
	Run("print \"before\";\nprint missing_var;\n", Options{Stdout: &stdout, Stderr: &stderr})
	if strings.Contains(stdout.String(), "Error") {
		t.Fatalf("diagnostic leaked into stdout: %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "Error") {
		t.Fatalf("expected a diagnostic on stderr, got %q", stderr.String())
	}
}

func TestDebugASTSinkReceivesRenderedProgram(t *testing.T) {
	var stdout, stderr, ast bytes.Buffer
	Run(`print 1 + 2;`, Options{Stdout: &stdout, Stderr: &stderr, DebugASTSink: &ast})
	if !strings.Contains(ast.String(), "(print (+ 1 2))") {
		t.Fatalf("got %q", ast.String())
	}
}
