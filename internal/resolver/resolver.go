// Package resolver implements spec.md's single pre-order resolution pass: it
// annotates every variable reference with its lexical hop distance so the
// evaluator never has to search for a binding (spec.md §4.3).
package resolver

import (
	"lox/internal/ast"
	"lox/internal/diagnostic"
	"lox/internal/irlog"
)

type functionKind int

const (
	fnNone functionKind = iota
	fnFunction
	fnMethod
	fnInitializer
)

type classKind int

const (
	clsNone classKind = iota
	clsClass
	clsSubclass
)

// Locals is the resolver side-table: node identity -> hop distance. The
// absence of an entry for a Variable/Assign/This/Super node means "global"
// (spec.md §3).
type Locals map[uint64]int

type scope map[string]bool

// Resolver performs the pass described in spec.md §4.3. KeepOuterScope
// supports the REPL extension of spec.md §4.3: when true, a single
// persistent outer scope survives across calls to Resolve so that REPL
// `var`s behave as locals rather than globals.
type Resolver struct {
	diag            *diagnostic.Sink
	locals          Locals
	scopes          []scope
	currentFunction functionKind
	currentClass    classKind
	KeepOuterScope  bool

	// initializingGlobal names the global whose initializer is being
	// resolved, so a read of it inside that initializer is reported too.
	initializingGlobal string
}

func New(diag *diagnostic.Sink) *Resolver {
	return &Resolver{diag: diag, locals: Locals{}}
}

// Locals returns the accumulated side-table.
func (r *Resolver) Locals() Locals { return r.locals }

// BeginSession opens the persistent outer scope used by the REPL, per
// spec.md §4.3's REPL extension. Call once before the first Resolve.
func (r *Resolver) BeginSession() {
	r.KeepOuterScope = true
	r.beginScope()
}

func (r *Resolver) Resolve(stmts []ast.Stmt) {
	r.resolveStmts(stmts)
}

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, scope{})
}

func (r *Resolver) endScope() {
	if r.KeepOuterScope && len(r.scopes) == 1 {
		return // never pop the persistent REPL scope
	}
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) declare(name string, line int) {
	if len(r.scopes) == 0 {
		return
	}
	sc := r.scopes[len(r.scopes)-1]
	if _, exists := sc[name]; exists {
		r.diag.Report(line, "Already a variable with this name in this scope.")
	}
	sc[name] = false
}

func (r *Resolver) define(name string) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name] = true
}

func (r *Resolver) resolveLocal(node ast.Node, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			dist := len(r.scopes) - 1 - i
			r.locals[node.ID()] = dist
			irlog.Trace("resolved %q at hop distance %d", name, dist)
			return
		}
	}
	// not found in any scope: treated as global at evaluation time.
}

func (r *Resolver) resolveStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *Resolver) resolveStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		r.beginScope()
		r.resolveStmts(s.Statements)
		r.endScope()

	case *ast.VarStmt:
		r.declare(s.Name.Lexeme, s.Name.Line)
		if s.Initializer != nil {
			if len(r.scopes) == 0 {
				r.initializingGlobal = s.Name.Lexeme
			}
			r.resolveExpr(s.Initializer)
			r.initializingGlobal = ""
		}
		r.define(s.Name.Lexeme)

	case *ast.FunctionStmt:
		r.declare(s.Name.Lexeme, s.Name.Line)
		r.define(s.Name.Lexeme)
		r.resolveFunction(s, fnFunction)

	case *ast.ExpressionStmt:
		r.resolveExpr(s.Expression)

	case *ast.IfStmt:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Then)
		if s.ElseBranch != nil {
			r.resolveStmt(s.ElseBranch)
		}

	case *ast.PrintStmt:
		r.resolveExpr(s.Expression)

	case *ast.ReturnStmt:
		if r.currentFunction == fnNone {
			r.diag.Report(s.Keyword.Line, "Can't return from top-level code.")
		}
		if s.Value != nil {
			if r.currentFunction == fnInitializer {
				r.diag.Report(s.Keyword.Line, "Can't return a value from an initializer.")
			}
			r.resolveExpr(s.Value)
		}

	case *ast.WhileStmt:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Body)

	case *ast.ClassStmt:
		r.resolveClass(s)

	default:
		panic("resolver: unhandled statement type")
	}
}

func (r *Resolver) resolveClass(s *ast.ClassStmt) {
	enclosingClass := r.currentClass
	r.currentClass = clsClass

	r.declare(s.Name.Lexeme, s.Name.Line)
	r.define(s.Name.Lexeme)

	if s.Superclass != nil {
		if s.Superclass.Name.Lexeme == s.Name.Lexeme {
			r.diag.Report(s.Superclass.Name.Line, "A class can't inherit from itself.")
		}
		r.currentClass = clsSubclass
		r.resolveExpr(s.Superclass)
	}

	if s.Superclass != nil {
		r.beginScope()
		r.scopes[len(r.scopes)-1]["super"] = true
	}

	r.beginScope()
	r.scopes[len(r.scopes)-1]["this"] = true

	for _, method := range s.Methods {
		kind := fnMethod
		if method.Name.Lexeme == "init" {
			kind = fnInitializer
		}
		r.resolveFunction(method, kind)
	}

	r.endScope()

	if s.Superclass != nil {
		r.endScope()
	}

	r.currentClass = enclosingClass
}

func (r *Resolver) resolveFunction(fn *ast.FunctionStmt, kind functionKind) {
	enclosingFunction := r.currentFunction
	r.currentFunction = kind

	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param.Lexeme, param.Line)
		r.define(param.Lexeme)
	}
	r.resolveStmts(fn.Body.Statements)
	r.endScope()

	r.currentFunction = enclosingFunction
}

func (r *Resolver) resolveExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.VariableExpr:
		if len(r.scopes) > 0 {
			if defined, ok := r.scopes[len(r.scopes)-1][e.Name.Lexeme]; ok && !defined {
				r.diag.Report(e.Name.Line, "Can't read local variable in its own initializer.")
			}
		} else if e.Name.Lexeme == r.initializingGlobal {
			r.diag.Report(e.Name.Line, "Can't read local variable in its own initializer.")
		}
		r.resolveLocal(e, e.Name.Lexeme)

	case *ast.AssignExpr:
		r.resolveExpr(e.Value)
		r.resolveLocal(e, e.Name.Lexeme)

	case *ast.BinaryExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.LogicalExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.UnaryExpr:
		r.resolveExpr(e.Right)

	case *ast.GroupingExpr:
		r.resolveExpr(e.Inner)

	case *ast.LiteralExpr:
		// nothing to resolve

	case *ast.CallExpr:
		r.resolveExpr(e.Callee)
		for _, a := range e.Args {
			r.resolveExpr(a)
		}

	case *ast.GetExpr:
		r.resolveExpr(e.Target)

	case *ast.SetExpr:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Target)

	case *ast.ThisExpr:
		if r.currentClass == clsNone {
			r.diag.Report(e.Keyword.Line, "Can't use 'this' outside of a class.")
			return
		}
		r.resolveLocal(e, "this")

	case *ast.SuperExpr:
		if r.currentClass == clsNone {
			r.diag.Report(e.Keyword.Line, "Can't use 'super' outside of a class.")
		} else if r.currentClass != clsSubclass {
			r.diag.Report(e.Keyword.Line, "Can't use 'super' in a class with no superclass.")
		}
		r.resolveLocal(e, "super")

	default:
		panic("resolver: unhandled expression type")
	}
}
