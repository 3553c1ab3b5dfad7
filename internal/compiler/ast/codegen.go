package ast

import (
	"io"

	"github.com/arnavsurve/gibberish/internal/compiler/emitter"
	"github.com/arnavsurve/gibberish/internal/compiler/types"
)

// condition is implemented by the expression forms that can drive a
// branch directly. genJumpCode transfers control to trueLabel or
// falseLabel without leaving a value on the stack, which lets control
// flow statements skip materializing the boolean.
type condition interface {
	Exp
	genJumpCode(ctx *Context, e *emitter.Emitter, trueLabel, falseLabel string)
}

// CodeGen translates the program to MIPS assembly on w. Every expression
// leaves exactly one word on the runtime stack; statements consume what
// they produce.
func (p *Program) CodeGen(ctx *Context, w io.Writer) error {
	e := emitter.New(w)
	for _, d := range p.Decls {
		switch d := d.(type) {
		case *VarDecl:
			d.codeGen(ctx, e)
		case *FnDecl:
			d.codeGen(ctx, e)
		}
	}
	return e.Flush()
}

// codeGen reserves a word in .data for each non-struct global. Struct
// instances have no runtime representation in this language subset.
func (d *VarDecl) codeGen(ctx *Context, e *emitter.Emitter) {
	sym := ctx.Syms.Get(d.ID.Sym)
	if sym == nil || !sym.IsGlobal() || types.IsStruct(sym.Type) {
		return
	}
	e.GenData(d.ID.Name)
}

func (d *FnDecl) codeGen(ctx *Context, e *emitter.Emitter) {
	sym := ctx.Syms.Get(d.ID.Sym)
	if sym == nil {
		return
	}
	name := d.ID.Name
	epilogueLabel := "_" + name + "_Exit"
	e.GenFuncPreamble(name)
	e.GenFuncPrologue(sym.ParamSize, sym.LocalSize)
	codeGenStmts(ctx, e, d.Body.Stmts, epilogueLabel)
	e.GenFuncEpilogue(name, epilogueLabel, sym.ParamSize)
}

// --- Statements ---

func codeGenStmts(ctx *Context, e *emitter.Emitter, stmts []Stmt, epilogueLabel string) {
	for _, s := range stmts {
		codeGenStmt(ctx, e, s, epilogueLabel)
	}
}

func codeGenStmt(ctx *Context, e *emitter.Emitter, s Stmt, epilogueLabel string) {
	switch s := s.(type) {
	case *AssignStmt:
		s.Assign.codeGen(ctx, e)
		e.GenPop(emitter.T0) // discard the expression value

	case *PostIncStmt:
		codeGenPostOp(ctx, e, s.Exp, "add")

	case *PostDecStmt:
		codeGenPostOp(ctx, e, s.Exp, "sub")

	case *ReadStmt:
		id, ok := s.Exp.(*Ident)
		if !ok {
			return
		}
		sym := ctx.Syms.Get(id.Sym)
		switch {
		case types.IsInt(sym.Type):
			e.GenReadInt()
		case types.IsBool(sym.Type):
			e.GenReadBool()
		default:
			return
		}
		if sym.IsGlobal() {
			e.GenerateWithComment("sw", "store input", emitter.V0, "_"+id.Name)
		} else {
			e.GenerateIndexed("sw", emitter.V0, emitter.FP, sym.Offset, "store input")
		}

	case *WriteStmt:
		codeGenExp(ctx, e, s.Exp)
		e.GenPop(emitter.A0)
		switch {
		case types.IsInt(s.expType):
			e.GenWriteInt()
		case types.IsBool(s.expType):
			e.GenWriteBool()
		case types.IsString(s.expType):
			e.GenWriteString()
		}

	case *IfStmt:
		trueLabel := e.NextLabel()
		doneLabel := e.NextLabel()
		genJump(ctx, e, s.Cond, trueLabel, doneLabel)
		e.GenLabel(trueLabel)
		codeGenStmts(ctx, e, s.Stmts, epilogueLabel)
		e.GenLabel(doneLabel)

	case *IfElseStmt:
		trueLabel := e.NextLabel()
		falseLabel := e.NextLabel()
		doneLabel := e.NextLabel()
		genJump(ctx, e, s.Cond, trueLabel, falseLabel)
		e.GenLabel(trueLabel)
		codeGenStmts(ctx, e, s.ThenStmts, epilogueLabel)
		e.Generate("j", doneLabel)
		e.GenLabel(falseLabel)
		codeGenStmts(ctx, e, s.ElseStmts, epilogueLabel)
		e.GenLabel(doneLabel)

	case *WhileStmt:
		entryLabel := e.NextLabel()
		bodyLabel := e.NextLabel()
		doneLabel := e.NextLabel()
		e.GenLabel(entryLabel)
		genJump(ctx, e, s.Cond, bodyLabel, doneLabel)
		e.GenLabel(bodyLabel)
		codeGenStmts(ctx, e, s.Stmts, epilogueLabel)
		e.Generate("j", entryLabel)
		e.GenLabel(doneLabel)

	case *RepeatStmt:
		// repeat is checked but not generated in this subset

	case *CallStmt:
		s.Call.codeGen(ctx, e)
		e.GenPop(emitter.T0) // discard the return value

	case *ReturnStmt:
		if s.Exp != nil {
			codeGenExp(ctx, e, s.Exp)
			e.GenPop(emitter.V0)
		}
		e.GenerateWithComment("j", "jump to epilogue", epilogueLabel)
	}
}

// codeGenPostOp emits x++ / x--. Only plain identifier targets have a
// store-back; anything else is checked but generates nothing, matching
// the runtime subset.
func codeGenPostOp(ctx *Context, e *emitter.Emitter, exp Exp, op string) {
	id, ok := exp.(*Ident)
	if !ok {
		return
	}
	codeGenExp(ctx, e, exp)
	e.GenPop(emitter.T0)
	e.Generate(op, emitter.T0, emitter.T0, "1")
	sym := ctx.Syms.Get(id.Sym)
	if sym.IsGlobal() {
		e.Generate("sw", emitter.T0, "_"+id.Name)
	} else {
		e.GenerateIndexed("sw", emitter.T0, emitter.FP, sym.Offset)
	}
}

// --- Expressions ---

func codeGenExp(ctx *Context, e *emitter.Emitter, exp Exp) {
	switch exp := exp.(type) {
	case *IntLit:
		e.GenPushInt(exp.Value)
	case *StrLit:
		e.GenPushString(exp.Value)
	case *TrueLit:
		e.GenPushBool(true)
	case *FalseLit:
		e.GenPushBool(false)
	case *Ident:
		exp.codeGen(ctx, e)
	case *DotAccess:
		// struct values have no runtime representation
	case *AssignExp:
		exp.codeGen(ctx, e)
	case *CallExp:
		exp.codeGen(ctx, e)
	case *UnaryMinus:
		codeGenExp(ctx, e, exp.Exp)
		e.GenPop(emitter.T0)
		e.GenerateWithComment("sub", "negate", emitter.T0, emitter.ZERO, emitter.T0)
		e.GenPush(emitter.T0)
	case *Not:
		codeGenExp(ctx, e, exp.Exp)
		e.GenPop(emitter.T0)
		e.GenFlipOneBit(emitter.T0)
		e.GenPush(emitter.T0)
	case *BinaryExp:
		exp.codeGen(ctx, e)
	}
}

// codeGen pushes the identifier's value.
func (n *Ident) codeGen(ctx *Context, e *emitter.Emitter) {
	sym := ctx.Syms.Get(n.Sym)
	if sym.IsGlobal() {
		e.Generate("lw", emitter.T0, "_"+n.Name)
	} else {
		e.GenerateIndexed("lw", emitter.T0, emitter.FP, sym.Offset)
	}
	e.GenPush(emitter.T0)
}

// genAddr pushes the identifier's address.
func (n *Ident) genAddr(ctx *Context, e *emitter.Emitter) {
	sym := ctx.Syms.Get(n.Sym)
	if sym.IsGlobal() {
		e.Generate("la", emitter.T0, "_"+n.Name)
	} else {
		e.GenerateIndexed("la", emitter.T0, emitter.FP, sym.Offset)
	}
	e.GenPush(emitter.T0)
}

func (n *Ident) genJumpCode(ctx *Context, e *emitter.Emitter, trueLabel, falseLabel string) {
	sym := ctx.Syms.Get(n.Sym)
	if sym.IsGlobal() {
		e.Generate("lw", emitter.T0, "_"+n.Name)
	} else {
		e.GenerateIndexed("lw", emitter.T0, emitter.FP, sym.Offset)
	}
	e.Generate("beq", emitter.T0, emitter.FALSE, falseLabel)
	e.Generate("j", trueLabel)
}

func (n *TrueLit) genJumpCode(ctx *Context, e *emitter.Emitter, trueLabel, falseLabel string) {
	e.Generate("j", trueLabel)
}

func (n *FalseLit) genJumpCode(ctx *Context, e *emitter.Emitter, trueLabel, falseLabel string) {
	e.Generate("j", falseLabel)
}

// codeGen evaluates the right side, then the target address, stores, and
// leaves the assigned value on the stack.
func (n *AssignExp) codeGen(ctx *Context, e *emitter.Emitter) {
	codeGenExp(ctx, e, n.Rhs)
	if id, ok := n.Lhs.(*Ident); ok {
		id.genAddr(ctx, e)
	} else {
		codeGenExp(ctx, e, n.Lhs)
	}
	e.GenPop(emitter.T0) // address
	e.GenPop(emitter.T1) // value
	e.GenerateIndexed("sw", emitter.T1, emitter.T0, 0, "assign")
	e.GenPush(emitter.T1)
}

func (n *AssignExp) genJumpCode(ctx *Context, e *emitter.Emitter, trueLabel, falseLabel string) {
	n.codeGen(ctx, e)
	e.GenPop(emitter.T0)
	e.Generate("beq", emitter.T0, emitter.FALSE, falseLabel)
	e.Generate("j", trueLabel)
}

// codeGen pushes each argument in source order, calls, and pushes the
// returned value.
func (n *CallExp) codeGen(ctx *Context, e *emitter.Emitter) {
	for _, arg := range n.Args {
		codeGenExp(ctx, e, arg)
	}
	e.GenerateWithComment("jal", "function call", "_"+n.ID.Name)
	e.GenPush(emitter.V0)
}

func (n *CallExp) genJumpCode(ctx *Context, e *emitter.Emitter, trueLabel, falseLabel string) {
	n.codeGen(ctx, e)
	e.GenPop(emitter.T0)
	e.Generate("beq", emitter.T0, emitter.FALSE, falseLabel)
	e.Generate("j", trueLabel)
}

func (n *Not) genJumpCode(ctx *Context, e *emitter.Emitter, trueLabel, falseLabel string) {
	codeGenExp(ctx, e, n)
	e.GenPop(emitter.T0)
	e.Generate("beq", emitter.T0, emitter.FALSE, falseLabel)
	e.Generate("j", trueLabel)
}

var binOpcodes = map[BinOp]string{
	Plus:      "add",
	Minus:     "sub",
	Times:     "mult",
	Divide:    "div",
	And:       "and",
	Or:        "or",
	Equals:    "seq",
	NotEquals: "sne",
	Less:      "slt",
	Greater:   "sgt",
	LessEq:    "sle",
	GreaterEq: "sge",
}

// codeGen evaluates a binary expression in value position. && and ||
// short-circuit: the right operand is skipped by a branch when the left
// operand already decides the result.
func (n *BinaryExp) codeGen(ctx *Context, e *emitter.Emitter) {
	switch n.Op {
	case And:
		shortLabel := e.NextLabel()
		doneLabel := e.NextLabel()
		codeGenExp(ctx, e, n.Lhs)
		e.GenPop(emitter.T0)
		e.Generate("beq", emitter.T0, emitter.FALSE, shortLabel)
		codeGenExp(ctx, e, n.Rhs)
		e.Generate("j", doneLabel)
		e.GenLabel(shortLabel)
		e.GenPushBool(false)
		e.GenLabel(doneLabel)

	case Or:
		shortLabel := e.NextLabel()
		doneLabel := e.NextLabel()
		codeGenExp(ctx, e, n.Lhs)
		e.GenPop(emitter.T0)
		e.Generate("bne", emitter.T0, emitter.FALSE, shortLabel)
		codeGenExp(ctx, e, n.Rhs)
		e.Generate("j", doneLabel)
		e.GenLabel(shortLabel)
		e.GenPushBool(true)
		e.GenLabel(doneLabel)

	default:
		codeGenExp(ctx, e, n.Lhs)
		codeGenExp(ctx, e, n.Rhs)
		e.GenPop(emitter.T1)
		e.GenPop(emitter.T0)
		opcode := binOpcodes[n.Op]
		if n.Op == Times || n.Op == Divide {
			e.Generate(opcode, emitter.T0, emitter.T1)
			e.Generate("mflo", emitter.T0)
		} else {
			e.Generate(opcode, emitter.T0, emitter.T0, emitter.T1)
		}
		e.GenPush(emitter.T0)
	}
}

func (n *BinaryExp) genJumpCode(ctx *Context, e *emitter.Emitter, trueLabel, falseLabel string) {
	switch n.Op {
	case And:
		rhsLabel := e.NextLabel()
		genJump(ctx, e, n.Lhs, rhsLabel, falseLabel)
		e.GenLabel(rhsLabel)
		genJump(ctx, e, n.Rhs, trueLabel, falseLabel)
	case Or:
		rhsLabel := e.NextLabel()
		genJump(ctx, e, n.Lhs, trueLabel, rhsLabel)
		e.GenLabel(rhsLabel)
		genJump(ctx, e, n.Rhs, trueLabel, falseLabel)
	default:
		n.codeGen(ctx, e)
		e.GenPop(emitter.T0)
		e.Generate("beq", emitter.T0, emitter.FALSE, falseLabel)
		e.Generate("j", trueLabel)
	}
}

// genJump branches on a condition-capable expression. Type checking
// guarantees conditions are boolean, so every expression reaching here
// implements the jump protocol; anything else is silently skipped the way
// an unchecked program is.
func genJump(ctx *Context, e *emitter.Emitter, exp Exp, trueLabel, falseLabel string) {
	if c, ok := exp.(condition); ok {
		c.genJumpCode(ctx, e, trueLabel, falseLabel)
	}
}
