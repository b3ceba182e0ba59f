// Package ast defines the expression and statement node types produced by
// the parser and walked by the resolver and evaluator.
package ast

import (
	"bytes"
	"strconv"
	"strings"
	"sync/atomic"

	"lox/internal/token"
)

var nextNodeID atomic.Uint64

func newNodeID() uint64 {
	return nextNodeID.Add(1)
}

// Node is the base of every AST node. ID is a stable identity used as the
// resolver side-table key (spec.md §3: "stable identity usable as a key").
type Node interface {
	String() string
	ID() uint64
}

type Expr interface {
	Node
	exprNode()
}

type Stmt interface {
	Node
	stmtNode()
}

type base struct {
	id uint64
}

func newBase() base { return base{id: newNodeID()} }

func (b base) ID() uint64 { return b.id }

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

type LiteralExpr struct {
	base
	Value interface{} // nil, bool, float64, or string
}

func NewLiteralExpr(v interface{}) *LiteralExpr { return &LiteralExpr{base: newBase(), Value: v} }
func (e *LiteralExpr) exprNode()                {}
func (e *LiteralExpr) String() string           { return literalString(e.Value) }

type VariableExpr struct {
	base
	Name token.Token
}

func NewVariableExpr(name token.Token) *VariableExpr {
	return &VariableExpr{base: newBase(), Name: name}
}
func (e *VariableExpr) exprNode()      {}
func (e *VariableExpr) String() string { return e.Name.Lexeme }

type AssignExpr struct {
	base
	Name  token.Token
	Value Expr
}

func NewAssignExpr(name token.Token, value Expr) *AssignExpr {
	return &AssignExpr{base: newBase(), Name: name, Value: value}
}
func (e *AssignExpr) exprNode() {}
func (e *AssignExpr) String() string {
	return paren("= "+e.Name.Lexeme, e.Value)
}

type UnaryExpr struct {
	base
	Operator token.Token
	Right    Expr
}

func NewUnaryExpr(op token.Token, right Expr) *UnaryExpr {
	return &UnaryExpr{base: newBase(), Operator: op, Right: right}
}
func (e *UnaryExpr) exprNode()      {}
func (e *UnaryExpr) String() string { return paren(e.Operator.Lexeme, e.Right) }

type BinaryExpr struct {
	base
	Left     Expr
	Operator token.Token
	Right    Expr
}

func NewBinaryExpr(left Expr, op token.Token, right Expr) *BinaryExpr {
	return &BinaryExpr{base: newBase(), Left: left, Operator: op, Right: right}
}
func (e *BinaryExpr) exprNode()      {}
func (e *BinaryExpr) String() string { return paren(e.Operator.Lexeme, e.Left, e.Right) }

type LogicalExpr struct {
	base
	Left     Expr
	Operator token.Token
	Right    Expr
}

func NewLogicalExpr(left Expr, op token.Token, right Expr) *LogicalExpr {
	return &LogicalExpr{base: newBase(), Left: left, Operator: op, Right: right}
}
func (e *LogicalExpr) exprNode()      {}
func (e *LogicalExpr) String() string { return paren(e.Operator.Lexeme, e.Left, e.Right) }

type GroupingExpr struct {
	base
	Inner Expr
}

func NewGroupingExpr(inner Expr) *GroupingExpr { return &GroupingExpr{base: newBase(), Inner: inner} }
func (e *GroupingExpr) exprNode()              {}
func (e *GroupingExpr) String() string         { return paren("group", e.Inner) }

type CallExpr struct {
	base
	Callee       Expr
	ClosingParen token.Token
	Args         []Expr
}

func NewCallExpr(callee Expr, closingParen token.Token, args []Expr) *CallExpr {
	return &CallExpr{base: newBase(), Callee: callee, ClosingParen: closingParen, Args: args}
}
func (e *CallExpr) exprNode() {}
func (e *CallExpr) String() string {
	exprs := append([]Expr{e.Callee}, e.Args...)
	return paren("call", exprs...)
}

type GetExpr struct {
	base
	Target Expr
	Name   token.Token
}

func NewGetExpr(target Expr, name token.Token) *GetExpr {
	return &GetExpr{base: newBase(), Target: target, Name: name}
}
func (e *GetExpr) exprNode()      {}
func (e *GetExpr) String() string { return paren("get "+e.Name.Lexeme, e.Target) }

type SetExpr struct {
	base
	Target Expr
	Name   token.Token
	Value  Expr
}

func NewSetExpr(target Expr, name token.Token, value Expr) *SetExpr {
	return &SetExpr{base: newBase(), Target: target, Name: name, Value: value}
}
func (e *SetExpr) exprNode()      {}
func (e *SetExpr) String() string { return paren("set "+e.Name.Lexeme, e.Target, e.Value) }

type ThisExpr struct {
	base
	Keyword token.Token
}

func NewThisExpr(keyword token.Token) *ThisExpr { return &ThisExpr{base: newBase(), Keyword: keyword} }
func (e *ThisExpr) exprNode()                   {}
func (e *ThisExpr) String() string              { return "this" }

type SuperExpr struct {
	base
	Keyword token.Token
	Method  token.Token
}

func NewSuperExpr(keyword, method token.Token) *SuperExpr {
	return &SuperExpr{base: newBase(), Keyword: keyword, Method: method}
}
func (e *SuperExpr) exprNode()      {}
func (e *SuperExpr) String() string { return "super." + e.Method.Lexeme }

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

type ExpressionStmt struct {
	base
	Expression Expr
}

func NewExpressionStmt(e Expr) *ExpressionStmt { return &ExpressionStmt{base: newBase(), Expression: e} }
func (s *ExpressionStmt) stmtNode()            {}
func (s *ExpressionStmt) String() string       { return paren("expr", s.Expression) }

type PrintStmt struct {
	base
	Expression Expr
}

func NewPrintStmt(e Expr) *PrintStmt { return &PrintStmt{base: newBase(), Expression: e} }
func (s *PrintStmt) stmtNode()       {}
func (s *PrintStmt) String() string  { return paren("print", s.Expression) }

type VarStmt struct {
	base
	Name        token.Token
	Initializer Expr // nil when absent
}

func NewVarStmt(name token.Token, init Expr) *VarStmt {
	return &VarStmt{base: newBase(), Name: name, Initializer: init}
}
func (s *VarStmt) stmtNode() {}
func (s *VarStmt) String() string {
	if s.Initializer == nil {
		return paren("var " + s.Name.Lexeme)
	}
	return paren("var "+s.Name.Lexeme, s.Initializer)
}

type BlockStmt struct {
	base
	Statements []Stmt
}

func NewBlockStmt(stmts []Stmt) *BlockStmt { return &BlockStmt{base: newBase(), Statements: stmts} }
func (s *BlockStmt) stmtNode()             {}
func (s *BlockStmt) String() string {
	var out bytes.Buffer
	out.WriteString("(block")
	for _, st := range s.Statements {
		out.WriteString(" ")
		out.WriteString(st.String())
	}
	out.WriteString(")")
	return out.String()
}

type IfStmt struct {
	base
	Condition  Expr
	Then       Stmt
	ElseBranch Stmt // nil when absent
}

func NewIfStmt(cond Expr, then, elseBranch Stmt) *IfStmt {
	return &IfStmt{base: newBase(), Condition: cond, Then: then, ElseBranch: elseBranch}
}
func (s *IfStmt) stmtNode() {}
func (s *IfStmt) String() string {
	if s.ElseBranch == nil {
		return parenStmt("if", s.Condition, s.Then)
	}
	return parenStmt("if-else", s.Condition, s.Then, s.ElseBranch)
}

type WhileStmt struct {
	base
	Condition Expr
	Body      Stmt
}

func NewWhileStmt(cond Expr, body Stmt) *WhileStmt {
	return &WhileStmt{base: newBase(), Condition: cond, Body: body}
}
func (s *WhileStmt) stmtNode() {}
func (s *WhileStmt) String() string {
	return parenStmt("while", s.Condition, s.Body)
}

type FunctionStmt struct {
	base
	Name   token.Token
	Params []token.Token
	Body   *BlockStmt
}

func NewFunctionStmt(name token.Token, params []token.Token, body *BlockStmt) *FunctionStmt {
	return &FunctionStmt{base: newBase(), Name: name, Params: params, Body: body}
}
func (s *FunctionStmt) stmtNode() {}
func (s *FunctionStmt) String() string {
	names := make([]string, len(s.Params))
	for i, p := range s.Params {
		names[i] = p.Lexeme
	}
	return "(fun " + s.Name.Lexeme + " (" + strings.Join(names, " ") + ") " + s.Body.String() + ")"
}

type ReturnStmt struct {
	base
	Keyword token.Token
	Value   Expr // nil when absent
}

func NewReturnStmt(keyword token.Token, value Expr) *ReturnStmt {
	return &ReturnStmt{base: newBase(), Keyword: keyword, Value: value}
}
func (s *ReturnStmt) stmtNode() {}
func (s *ReturnStmt) String() string {
	if s.Value == nil {
		return paren("return")
	}
	return paren("return", s.Value)
}

type ClassStmt struct {
	base
	Name       token.Token
	Superclass *VariableExpr // nil when absent
	Methods    []*FunctionStmt
}

func NewClassStmt(name token.Token, superclass *VariableExpr, methods []*FunctionStmt) *ClassStmt {
	return &ClassStmt{base: newBase(), Name: name, Superclass: superclass, Methods: methods}
}
func (s *ClassStmt) stmtNode() {}
func (s *ClassStmt) String() string {
	var out bytes.Buffer
	out.WriteString("(class ")
	out.WriteString(s.Name.Lexeme)
	if s.Superclass != nil {
		out.WriteString(" < ")
		out.WriteString(s.Superclass.Name.Lexeme)
	}
	for _, m := range s.Methods {
		out.WriteString(" ")
		out.WriteString(m.String())
	}
	out.WriteString(")")
	return out.String()
}

// ---------------------------------------------------------------------------
// rendering helpers
// ---------------------------------------------------------------------------

func paren(name string, exprs ...Expr) string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(name)
	for _, e := range exprs {
		out.WriteString(" ")
		out.WriteString(e.String())
	}
	out.WriteString(")")
	return out.String()
}

func parenStmt(name string, nodes ...Node) string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(name)
	for _, n := range nodes {
		out.WriteString(" ")
		out.WriteString(n.String())
	}
	out.WriteString(")")
	return out.String()
}

func literalString(v interface{}) string {
	if v == nil {
		return "nil"
	}
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return "<literal>"
	}
}
