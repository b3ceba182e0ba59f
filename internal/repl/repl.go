// Package repl implements the persistent-state interactive driver described
// in spec.md §6.2/§7 and its REPL extension in §4.3: one resolver session
// and one evaluator environment survive across lines, so a `var` or `fun`
// defined on one line is visible on the next.
package repl

import (
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	"lox/internal/diagnostic"
	"lox/internal/evaluator"
	"lox/internal/lexer"
	"lox/internal/parser"
	"lox/internal/resolver"
)

// REPL owns the pipeline state that must persist across lines: a single
// diagnostic sink (reset, never replaced), one Resolver session with its
// side-table growing monotonically, and one Evaluator with one global
// environment.
type REPL struct {
	diag     *diagnostic.Sink
	resolver *resolver.Resolver
	eval     *evaluator.Evaluator
}

// New builds a REPL that writes `print` output to stdout and diagnostics
// (spec.md §6.4) to stderr, the same split file mode uses.
func New(stdout, stderr io.Writer) *REPL {
	diag := diagnostic.New(stderr)
	r := resolver.New(diag)
	r.BeginSession()
	eval := evaluator.New(diag, r.Locals())
	eval.Stdout = stdout
	return &REPL{
		diag:     diag,
		resolver: r,
		eval:     eval,
	}
}

// Run drives the readline loop until EOF (Ctrl-D) (spec.md §6.2 "REPL
// mode"). A failed line only resets the diagnostic sink (spec.md §7); it
// never aborts the session.
func (r *REPL) Run() error {
	rl, err := readline.New(pterm.LightCyan("> "))
	if err != nil {
		return err
	}
	defer rl.Close()

	pterm.Info.Prefix = pterm.Prefix{Text: " LOX ", Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack)}
	pterm.Info.Println("Lox REPL. Ctrl-D to exit.")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		r.evalLine(line)
	}
}

func (r *REPL) evalLine(line string) {
	defer r.diag.Reset()

	toks := lexer.New(line, r.diag).ScanTokens()
	stmts := parser.New(toks, r.diag).Parse()
	if r.diag.HadError() {
		return
	}

	r.resolver.Resolve(stmts)
	if r.diag.HadError() {
		return
	}

	r.eval.SetLocals(r.resolver.Locals())
	r.eval.Interpret(stmts)
}
