// Package driver implements spec.md §6.1's file-mode execution contract:
// run a script top to bottom and report the right exit code.
package driver

import (
	"bytes"
	"io"
	"os"

	"lox/internal/ast"
	"lox/internal/diagnostic"
	"lox/internal/evaluator"
	"lox/internal/irlog"
	"lox/internal/lexer"
	"lox/internal/parser"
	"lox/internal/resolver"
)

// Exit codes per SPEC_FULL.md §6 (spec.md §9 Open Question: runtime errors
// chose the stricter 70, distinct from the static-error 65).
const (
	ExitOK           = 0
	ExitStaticError  = 65
	ExitRuntimeError = 70
)

// Options configures a Run/RunFile call. Stdout and Stderr default to
// os.Stdout/os.Stderr when nil; tests supply their own buffers to capture
// `print` output and diagnostics separately, the way spec.md §6.3/§6.4 keep
// them separate streams.
type Options struct {
	Stdout       io.Writer
	Stderr       io.Writer
	DebugASTSink io.Writer
}

func (o Options) stdout() io.Writer {
	if o.Stdout != nil {
		return o.Stdout
	}
	return os.Stdout
}

func (o Options) stderr() io.Writer {
	if o.Stderr != nil {
		return o.Stderr
	}
	return os.Stderr
}

// RunFile executes the source read from path and returns the process exit
// code spec.md §6.1 specifies.
func RunFile(path string, opts Options) int {
	src, err := os.ReadFile(path)
	if err != nil {
		io.WriteString(opts.stderr(), err.Error()+"\n")
		return ExitStaticError
	}
	return Run(string(src), opts)
}

// Run executes source and returns the exit code. Diagnostics (spec.md §6.4)
// are written to opts.Stderr; `print` output (spec.md §6.3) goes to
// opts.Stdout — the two streams are never mixed.
func Run(src string, opts Options) int {
	diag := diagnostic.New(opts.stderr())

	toks := lexer.New(src, diag).ScanTokens()
	stmts := parser.New(toks, diag).Parse()

	if opts.DebugASTSink != nil {
		dumpAST(opts.DebugASTSink, stmts)
	}

	if diag.HadError() {
		return ExitStaticError
	}

	r := resolver.New(diag)
	r.Resolve(stmts)
	if diag.HadError() {
		return ExitStaticError
	}

	irlog.Info("resolved %d top-level statements", len(stmts))

	eval := evaluator.New(diag, r.Locals())
	eval.Stdout = opts.stdout()
	eval.Interpret(stmts)
	if diag.HadRuntimeError() {
		return ExitRuntimeError
	}
	return ExitOK
}

func dumpAST(w io.Writer, stmts []ast.Stmt) {
	var buf bytes.Buffer
	for _, s := range stmts {
		buf.WriteString(s.String())
		buf.WriteString("\n")
	}
	io.Copy(w, &buf)
}
