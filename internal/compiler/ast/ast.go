package ast

import (
	"github.com/arnavsurve/gibberish/internal/compiler/report"
	"github.com/arnavsurve/gibberish/internal/compiler/symbols"
	"github.com/arnavsurve/gibberish/internal/compiler/token"
	"github.com/arnavsurve/gibberish/internal/compiler/types"
)

// Context carries the state shared by the three passes over one program:
// the diagnostic sink, the symbol arena, and the missing-main flag. It is
// threaded explicitly; the passes keep no process-wide state.
type Context struct {
	Reporter *report.Reporter
	Syms     *symbols.Arena
	noMain   bool
}

func NewContext(r *report.Reporter) *Context {
	return &Context{
		Reporter: r,
		Syms:     symbols.NewArena(),
		noMain:   true,
	}
}

// --- Node categories ---

// Decl is a top-level or body-level declaration.
type Decl interface {
	declNode()
}

// Stmt is a statement inside a function body or nested block.
type Stmt interface {
	stmtNode()
}

// Exp is an expression. Every expression reports the position used when a
// diagnostic must be attached to it; binary forms report their left
// operand's position.
type Exp interface {
	expNode()
	LineNum() int
	CharNum() int
}

// TypeNode is a declared type as written in the source.
type TypeNode interface {
	typeNode()
}

// --- Program ---

type Program struct {
	Decls []Decl
}

// --- Declarations ---

// VarDecl is `type id;`, at global scope, in a function body, or as a
// struct field.
type VarDecl struct {
	Type TypeNode
	ID   *Ident
}

func (*VarDecl) declNode() {}

// FormalDecl is one formal parameter in a function declaration.
type FormalDecl struct {
	Type TypeNode
	ID   *Ident
}

func (*FormalDecl) declNode() {}

// FnBody is the declaration list and statement list of a function body.
type FnBody struct {
	Decls []*VarDecl
	Stmts []Stmt
}

// FnDecl is `type id(formals) { body }`.
type FnDecl struct {
	Type    TypeNode
	ID      *Ident
	Formals []*FormalDecl
	Body    *FnBody
}

func (*FnDecl) declNode() {}

// StructDecl is `struct id { fields };`.
type StructDecl struct {
	ID     *Ident
	Fields []*VarDecl
}

func (*StructDecl) declNode() {}

// --- Type nodes ---

type IntNode struct{}

func (*IntNode) typeNode() {}

type BoolNode struct{}

func (*BoolNode) typeNode() {}

type VoidNode struct{}

func (*VoidNode) typeNode() {}

// StructNode is the type `struct T`; its ID is linked to the struct
// definition symbol during name analysis.
type StructNode struct {
	ID *Ident
}

func (*StructNode) typeNode() {}

// semType maps a scalar type node to its semantic type. Struct type nodes
// are handled at their declaration sites, where the definition handle is
// known.
func semType(tn TypeNode) types.Type {
	switch tn.(type) {
	case *IntNode:
		return types.IntType{}
	case *BoolNode:
		return types.BoolType{}
	case *VoidNode:
		return types.VoidType{}
	}
	return types.ErrorType{}
}

// --- Statements ---

type AssignStmt struct {
	Assign *AssignExp
}

func (*AssignStmt) stmtNode() {}

type PostIncStmt struct {
	Exp Exp
}

func (*PostIncStmt) stmtNode() {}

type PostDecStmt struct {
	Exp Exp
}

func (*PostDecStmt) stmtNode() {}

// ReadStmt is `cin >> loc;`.
type ReadStmt struct {
	Exp Exp
}

func (*ReadStmt) stmtNode() {}

// WriteStmt is `cout << exp;`. The checked operand type is kept so the
// code generator knows which print syscall to emit.
type WriteStmt struct {
	Exp     Exp
	expType types.Type
}

func (*WriteStmt) stmtNode() {}

type IfStmt struct {
	Cond  Exp
	Decls []*VarDecl
	Stmts []Stmt
}

func (*IfStmt) stmtNode() {}

type IfElseStmt struct {
	Cond      Exp
	ThenDecls []*VarDecl
	ThenStmts []Stmt
	ElseDecls []*VarDecl
	ElseStmts []Stmt
}

func (*IfElseStmt) stmtNode() {}

type WhileStmt struct {
	Cond  Exp
	Decls []*VarDecl
	Stmts []Stmt
}

func (*WhileStmt) stmtNode() {}

// RepeatStmt is `repeat (n) { body }`. It is analyzed and type checked but
// generates no code.
type RepeatStmt struct {
	Clause Exp
	Decls  []*VarDecl
	Stmts  []Stmt
}

func (*RepeatStmt) stmtNode() {}

type CallStmt struct {
	Call *CallExp
}

func (*CallStmt) stmtNode() {}

// ReturnStmt is `return;` or `return exp;`. Exp may be nil.
type ReturnStmt struct {
	Exp Exp
}

func (*ReturnStmt) stmtNode() {}

// --- Expressions ---

type IntLit struct {
	Tok   token.Token
	Value int
}

func (*IntLit) expNode() {}
func (n *IntLit) LineNum() int { return n.Tok.Line }
func (n *IntLit) CharNum() int { return n.Tok.Column }

// StrLit holds the literal contents without the surrounding quotes.
type StrLit struct {
	Tok   token.Token
	Value string
}

func (*StrLit) expNode() {}
func (n *StrLit) LineNum() int { return n.Tok.Line }
func (n *StrLit) CharNum() int { return n.Tok.Column }

type TrueLit struct {
	Tok token.Token
}

func (*TrueLit) expNode() {}
func (n *TrueLit) LineNum() int { return n.Tok.Line }
func (n *TrueLit) CharNum() int { return n.Tok.Column }

type FalseLit struct {
	Tok token.Token
}

func (*FalseLit) expNode() {}
func (n *FalseLit) LineNum() int { return n.Tok.Line }
func (n *FalseLit) CharNum() int { return n.Tok.Column }

// Ident is a use or declaration of a name. Sym is the arena handle filled
// in by name analysis; None means the name never resolved.
type Ident struct {
	Tok  token.Token
	Name string
	Sym  symbols.ID
}

func (*Ident) expNode() {}
func (n *Ident) LineNum() int { return n.Tok.Line }
func (n *Ident) CharNum() int { return n.Tok.Column }

// DotAccess is `loc.id`. After name analysis, sym exports the struct
// definition handle when the accessed field is itself a struct instance,
// so a chained access one level up can resolve against its field scope.
// badAccess is sticky within one chain to stop cascading diagnostics.
type DotAccess struct {
	Loc Exp
	ID  *Ident

	sym       symbols.ID
	badAccess bool
}

func (*DotAccess) expNode() {}

// Positions for a dot-access are those of its right-hand side.
func (n *DotAccess) LineNum() int { return n.ID.LineNum() }
func (n *DotAccess) CharNum() int { return n.ID.CharNum() }

// Sym returns the exported struct definition handle, None when the
// resolved field is not a struct instance.
func (n *DotAccess) Sym() symbols.ID { return n.sym }

// AssignExp is `lhs = rhs`; assignment is an expression whose value is
// the assigned value.
type AssignExp struct {
	Lhs Exp
	Rhs Exp
}

func (*AssignExp) expNode() {}
func (n *AssignExp) LineNum() int { return n.Lhs.LineNum() }
func (n *AssignExp) CharNum() int { return n.Lhs.CharNum() }

// CallExp is `id(args)`.
type CallExp struct {
	ID   *Ident
	Args []Exp
}

func (*CallExp) expNode() {}
func (n *CallExp) LineNum() int { return n.ID.LineNum() }
func (n *CallExp) CharNum() int { return n.ID.CharNum() }

type UnaryMinus struct {
	Exp Exp
}

func (*UnaryMinus) expNode() {}
func (n *UnaryMinus) LineNum() int { return n.Exp.LineNum() }
func (n *UnaryMinus) CharNum() int { return n.Exp.CharNum() }

type Not struct {
	Exp Exp
}

func (*Not) expNode() {}
func (n *Not) LineNum() int { return n.Exp.LineNum() }
func (n *Not) CharNum() int { return n.Exp.CharNum() }

// BinOp enumerates the binary operators.
type BinOp int

const (
	Plus BinOp = iota
	Minus
	Times
	Divide
	And
	Or
	Equals
	NotEquals
	Less
	Greater
	LessEq
	GreaterEq
)

// opClass groups operators by their typing rule.
type opClass int

const (
	classArithmetic opClass = iota
	classLogical
	classEquality
	classRelational
)

func (op BinOp) class() opClass {
	switch op {
	case Plus, Minus, Times, Divide:
		return classArithmetic
	case And, Or:
		return classLogical
	case Equals, NotEquals:
		return classEquality
	default:
		return classRelational
	}
}

// BinaryExp is any `lhs op rhs`. Diagnostics that cover the whole
// expression attach to the left operand's position.
type BinaryExp struct {
	Op  BinOp
	Lhs Exp
	Rhs Exp
}

func (*BinaryExp) expNode() {}
func (n *BinaryExp) LineNum() int { return n.Lhs.LineNum() }
func (n *BinaryExp) CharNum() int { return n.Lhs.CharNum() }
