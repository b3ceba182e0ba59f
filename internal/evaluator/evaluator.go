// Package evaluator walks the AST depth-first and produces runtime values,
// per spec.md §4.4.
package evaluator

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/emirpasic/gods/lists/arraylist"

	"lox/internal/ast"
	"lox/internal/diagnostic"
	"lox/internal/irlog"
	"lox/internal/object"
	"lox/internal/resolver"
	"lox/internal/token"
)

// controlReturn unwinds the Go call stack from a `return` statement back up
// to the enclosing call's Call site (spec.md §4.4 "Return propagation").
type controlReturn struct {
	value object.Object
}

// Evaluator walks statements and expressions against a chain of
// object.Environment, consulting the resolver's side-table for exact hop
// distances instead of searching (spec.md §4.3/§4.4).
type Evaluator struct {
	globals *object.Environment
	env     *object.Environment
	locals  resolver.Locals
	diag    *diagnostic.Sink

	// Stdout is where `print` writes (spec.md §6.3). Left nil it defaults to
	// os.Stdout, kept distinct from diag's destination so runtime output and
	// diagnostics never share a stream by accident (spec.md §6.4).
	Stdout io.Writer

	// callStack backs the supplemental stack-trace diagnostic: each call of a
	// Lox function (natives excluded) pushes the callee's name and the
	// call-site line, popped on return.
	callStack *arraylist.List
}

func New(diag *diagnostic.Sink, locals resolver.Locals) *Evaluator {
	globals := object.NewEnvironment()
	registerNatives(globals)
	return &Evaluator{
		globals:   globals,
		env:       globals,
		locals:    locals,
		diag:      diag,
		callStack: arraylist.New(),
	}
}

// Globals exposes the top-level environment, e.g. so tests can read the
// globals a program defined.
func (e *Evaluator) Globals() *object.Environment { return e.globals }

// SetLocals swaps in a freshly resolved side-table; the REPL driver calls
// this after each line is resolved (spec.md §4.3 REPL extension).
func (e *Evaluator) SetLocals(locals resolver.Locals) { e.locals = locals }

func (e *Evaluator) stdout() io.Writer {
	if e.Stdout != nil {
		return e.Stdout
	}
	return os.Stdout
}

// Interpret executes a full program. Runtime errors are reported to the
// sink and execution stops at the first one (spec.md §4.4 "Runtime error
// propagation").
func (e *Evaluator) Interpret(stmts []ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			rtErr, ok := r.(*object.RuntimeError)
			if !ok {
				panic(r)
			}
			e.diag.ReportRuntime(rtErr.Line, rtErr.Message)
			if trace := rtErr.RenderTrace(); trace != "" {
				e.diag.WriteRaw(trace)
			}
		}
	}()
	for _, s := range stmts {
		e.execute(s)
	}
}

func (e *Evaluator) runtimeError(line int, format string, args ...interface{}) {
	panic(&object.RuntimeError{
		Line:    line,
		Message: fmt.Sprintf(format, args...),
		Trace:   e.snapshotTrace(),
	})
}

func (e *Evaluator) snapshotTrace() []object.StackFrame {
	frames := make([]object.StackFrame, e.callStack.Size())
	for i := 0; i < e.callStack.Size(); i++ {
		v, _ := e.callStack.Get(e.callStack.Size() - 1 - i)
		frames[i] = v.(object.StackFrame)
	}
	return frames
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (e *Evaluator) execute(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		e.eval(s.Expression)

	case *ast.PrintStmt:
		v := e.eval(s.Expression)
		fmt.Fprintln(e.stdout(), v.Inspect())

	case *ast.VarStmt:
		var value object.Object = object.NIL
		if s.Initializer != nil {
			value = e.eval(s.Initializer)
		}
		e.env.Define(s.Name.Lexeme, value)

	case *ast.BlockStmt:
		e.executeBlock(s.Statements, object.NewEnclosedEnvironment(e.env))

	case *ast.IfStmt:
		if isTruthy(e.eval(s.Condition)) {
			e.execute(s.Then)
		} else if s.ElseBranch != nil {
			e.execute(s.ElseBranch)
		}

	case *ast.WhileStmt:
		for isTruthy(e.eval(s.Condition)) {
			e.execute(s.Body)
		}

	case *ast.FunctionStmt:
		fn := &object.Function{Declaration: s, Closure: e.env}
		e.env.Define(s.Name.Lexeme, fn)

	case *ast.ReturnStmt:
		var value object.Object = object.NIL
		if s.Value != nil {
			value = e.eval(s.Value)
		}
		panic(controlReturn{value: value})

	case *ast.ClassStmt:
		e.executeClass(s)

	default:
		panic("evaluator: unhandled statement type")
	}
}

func (e *Evaluator) executeBlock(stmts []ast.Stmt, env *object.Environment) {
	previous := e.env
	e.env = env
	defer func() { e.env = previous }()
	for _, s := range stmts {
		e.execute(s)
	}
}

func (e *Evaluator) executeClass(s *ast.ClassStmt) {
	var superclass *object.Class
	if s.Superclass != nil {
		v := e.eval(s.Superclass)
		sc, ok := v.(*object.Class)
		if !ok {
			e.runtimeError(s.Superclass.Name.Line, "Superclass must be a class.")
		}
		superclass = sc
	}

	e.env.Define(s.Name.Lexeme, object.NIL)

	classEnv := e.env
	if superclass != nil {
		classEnv = object.NewEnclosedEnvironment(e.env)
		classEnv.Define("super", superclass)
	}

	methods := make(map[string]*object.Function)
	for _, m := range s.Methods {
		methods[m.Name.Lexeme] = &object.Function{
			Declaration:   m,
			Closure:       classEnv,
			IsInitializer: m.Name.Lexeme == "init",
		}
	}

	class := &object.Class{Name: s.Name.Lexeme, Superclass: superclass, Methods: methods}
	e.env.Assign(s.Name.Lexeme, class)

	slog.Debug("class defined", slog.String("name", class.Name), slog.Int("methods", len(methods)))
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func (e *Evaluator) eval(expr ast.Expr) object.Object {
	switch x := expr.(type) {
	case *ast.LiteralExpr:
		return literalToObject(x.Value)

	case *ast.GroupingExpr:
		return e.eval(x.Inner)

	case *ast.VariableExpr:
		return e.lookupVariable(x, x.Name)

	case *ast.AssignExpr:
		value := e.eval(x.Value)
		if dist, ok := e.locals[x.ID()]; ok {
			e.env.AssignAt(dist, x.Name.Lexeme, value)
		} else if !e.globals.Assign(x.Name.Lexeme, value) {
			e.runtimeError(x.Name.Line, "Undefined variable '%s'.", x.Name.Lexeme)
		}
		return value

	case *ast.UnaryExpr:
		return e.evalUnary(x)

	case *ast.BinaryExpr:
		return e.evalBinary(x)

	case *ast.LogicalExpr:
		return e.evalLogical(x)

	case *ast.CallExpr:
		return e.evalCall(x)

	case *ast.GetExpr:
		return e.evalGet(x)

	case *ast.SetExpr:
		return e.evalSet(x)

	case *ast.ThisExpr:
		return e.lookupVariable(x, x.Keyword)

	case *ast.SuperExpr:
		return e.evalSuper(x)

	default:
		panic("evaluator: unhandled expression type")
	}
}

func (e *Evaluator) lookupVariable(node ast.Node, name token.Token) object.Object {
	if dist, ok := e.locals[node.ID()]; ok {
		v, _ := e.env.GetAt(dist, name.Lexeme)
		return v
	}
	v, ok := e.globals.Get(name.Lexeme)
	if !ok {
		e.runtimeError(name.Line, "Undefined variable '%s'.", name.Lexeme)
	}
	return v
}

func literalToObject(v interface{}) object.Object {
	switch t := v.(type) {
	case nil:
		return object.NIL
	case bool:
		return object.NativeBoolToBoolean(t)
	case float64:
		return &object.Number{Value: t}
	case string:
		return &object.String{Value: t}
	default:
		panic("evaluator: unhandled literal kind")
	}
}

func (e *Evaluator) evalUnary(x *ast.UnaryExpr) object.Object {
	right := e.eval(x.Right)
	switch x.Operator.Type {
	case token.MINUS:
		n := e.checkNumberOperand(x.Operator, right)
		return &object.Number{Value: -n}
	case token.BANG:
		return object.NativeBoolToBoolean(!isTruthy(right))
	}
	panic("evaluator: unhandled unary operator")
}

func (e *Evaluator) evalLogical(x *ast.LogicalExpr) object.Object {
	left := e.eval(x.Left)
	if x.Operator.Type == token.OR {
		if isTruthy(left) {
			return left
		}
		return e.eval(x.Right)
	}
	// AND
	if !isTruthy(left) {
		return left
	}
	return e.eval(x.Right)
}

func (e *Evaluator) evalBinary(x *ast.BinaryExpr) object.Object {
	left := e.eval(x.Left)
	right := e.eval(x.Right)

	switch x.Operator.Type {
	case token.PLUS:
		if ln, ok := left.(*object.Number); ok {
			if rn, ok := right.(*object.Number); ok {
				return &object.Number{Value: ln.Value + rn.Value}
			}
		}
		if ls, ok := left.(*object.String); ok {
			if rs, ok := right.(*object.String); ok {
				return &object.String{Value: ls.Value + rs.Value}
			}
		}
		e.runtimeError(x.Operator.Line, "Operands must be two numbers or two strings.")

	case token.MINUS:
		ln, rn := e.checkNumberOperands(x.Operator, left, right)
		return &object.Number{Value: ln - rn}
	case token.SLASH:
		ln, rn := e.checkNumberOperands(x.Operator, left, right)
		return &object.Number{Value: ln / rn}
	case token.STAR:
		ln, rn := e.checkNumberOperands(x.Operator, left, right)
		return &object.Number{Value: ln * rn}
	case token.GREATER:
		ln, rn := e.checkNumberOperands(x.Operator, left, right)
		return object.NativeBoolToBoolean(ln > rn)
	case token.GREATER_EQUAL:
		ln, rn := e.checkNumberOperands(x.Operator, left, right)
		return object.NativeBoolToBoolean(ln >= rn)
	case token.LESS:
		ln, rn := e.checkNumberOperands(x.Operator, left, right)
		return object.NativeBoolToBoolean(ln < rn)
	case token.LESS_EQUAL:
		ln, rn := e.checkNumberOperands(x.Operator, left, right)
		return object.NativeBoolToBoolean(ln <= rn)
	case token.EQUAL_EQUAL:
		return object.NativeBoolToBoolean(isEqual(left, right))
	case token.BANG_EQUAL:
		return object.NativeBoolToBoolean(!isEqual(left, right))
	}
	panic("evaluator: unhandled binary operator")
}

func (e *Evaluator) checkNumberOperand(op token.Token, v object.Object) float64 {
	n, ok := v.(*object.Number)
	if !ok {
		e.runtimeError(op.Line, "Operand must be a number.")
	}
	return n.Value
}

func (e *Evaluator) checkNumberOperands(op token.Token, left, right object.Object) (float64, float64) {
	ln, lok := left.(*object.Number)
	rn, rok := right.(*object.Number)
	if !lok || !rok {
		e.runtimeError(op.Line, "Operands must be numbers.")
	}
	return ln.Value, rn.Value
}

func isTruthy(v object.Object) bool {
	switch t := v.(type) {
	case *object.Nil:
		return false
	case *object.Boolean:
		return t.Value
	default:
		return true
	}
}

// isEqual implements spec.md §4.4's equality rule: no implicit conversions,
// NaN is unequal to itself as IEEE-754 dictates.
func isEqual(a, b object.Object) bool {
	switch x := a.(type) {
	case *object.Nil:
		_, ok := b.(*object.Nil)
		return ok
	case *object.Boolean:
		y, ok := b.(*object.Boolean)
		return ok && x.Value == y.Value
	case *object.Number:
		y, ok := b.(*object.Number)
		return ok && x.Value == y.Value && !math.IsNaN(x.Value)
	case *object.String:
		y, ok := b.(*object.String)
		return ok && x.Value == y.Value
	default:
		return a == b
	}
}

func (e *Evaluator) evalCall(x *ast.CallExpr) object.Object {
	callee := e.eval(x.Callee)

	args := make([]object.Object, len(x.Args))
	for i, a := range x.Args {
		args[i] = e.eval(a)
	}

	switch fn := callee.(type) {
	case *object.NativeFunction:
		if len(args) != fn.Arity {
			e.runtimeError(x.ClosingParen.Line, "Expected %d arguments but got %d.", fn.Arity, len(args))
		}
		result, err := fn.Fn(args)
		if err != nil {
			e.runtimeError(x.ClosingParen.Line, "%s", err.Error())
		}
		return result

	case *object.Function:
		return e.callFunction(fn, args, x.ClosingParen)

	case *object.Class:
		if fn.Arity() != len(args) {
			e.runtimeError(x.ClosingParen.Line, "Expected %d arguments but got %d.", fn.Arity(), len(args))
		}
		instance := object.NewInstance(fn)
		if init, ok := fn.FindMethod("init"); ok {
			e.callFunction(init.Bind(instance), args, x.ClosingParen)
		}
		return instance

	default:
		e.runtimeError(x.ClosingParen.Line, "Can only call functions and classes.")
	}
	panic("unreachable")
}

func (e *Evaluator) callFunction(fn *object.Function, args []object.Object, callSite token.Token) object.Object {
	if len(args) != fn.Arity() {
		e.runtimeError(callSite.Line, "Expected %d arguments but got %d.", fn.Arity(), len(args))
	}

	env := object.NewEnclosedEnvironment(fn.Closure)
	for i, param := range fn.Declaration.Params {
		env.Define(param.Lexeme, args[i])
	}

	e.callStack.Add(object.StackFrame{Function: fn.Declaration.Name.Lexeme, Line: callSite.Line})
	irlog.Debug("call %s, stack depth %d", fn.Declaration.Name.Lexeme, e.callStack.Size())
	defer e.callStack.Remove(e.callStack.Size() - 1)

	result := e.runFunctionBody(fn, env)
	if fn.IsInitializer {
		this, _ := fn.Closure.GetAt(0, "this")
		return this
	}
	return result
}

func (e *Evaluator) runFunctionBody(fn *object.Function, env *object.Environment) (result object.Object) {
	result = object.NIL
	defer func() {
		if r := recover(); r != nil {
			if ret, ok := r.(controlReturn); ok {
				result = ret.value
				return
			}
			panic(r)
		}
	}()
	e.executeBlock(fn.Declaration.Body.Statements, env)
	return result
}

func (e *Evaluator) evalGet(x *ast.GetExpr) object.Object {
	target := e.eval(x.Target)
	inst, ok := target.(*object.Instance)
	if !ok {
		e.runtimeError(x.Name.Line, "Only instances have properties.")
	}
	v, ok := inst.Get(x.Name.Lexeme)
	if !ok {
		e.runtimeError(x.Name.Line, "Undefined property '%s'.", x.Name.Lexeme)
	}
	return v
}

func (e *Evaluator) evalSet(x *ast.SetExpr) object.Object {
	target := e.eval(x.Target)
	inst, ok := target.(*object.Instance)
	if !ok {
		e.runtimeError(x.Name.Line, "Only instances have fields.")
	}
	value := e.eval(x.Value)
	inst.Set(x.Name.Lexeme, value)
	return value
}

func (e *Evaluator) evalSuper(x *ast.SuperExpr) object.Object {
	dist := e.locals[x.ID()]
	superVal, _ := e.env.GetAt(dist, "super")
	superclass := superVal.(*object.Class)

	thisVal, _ := e.env.GetAt(dist-1, "this")
	instance := thisVal.(*object.Instance)

	method, ok := superclass.FindMethod(x.Method.Lexeme)
	if !ok {
		e.runtimeError(x.Method.Line, "Undefined property '%s'.", x.Method.Lexeme)
	}
	return method.Bind(instance)
}
