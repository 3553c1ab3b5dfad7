package ast

import (
	"github.com/arnavsurve/gibberish/internal/compiler/types"
)

// TypeCheck verifies every typing rule in the program. It mutates nothing
// that name analysis produced; the only AST write is the cached operand
// type on write statements. Failed checks yield ErrorType, which keeps
// every downstream check of the same expression silent.
func (p *Program) TypeCheck(ctx *Context) {
	for _, d := range p.Decls {
		if fn, ok := d.(*FnDecl); ok {
			fn.typeCheck(ctx)
		}
	}
}

func (d *FnDecl) typeCheck(ctx *Context) {
	retType := semType(d.Type)
	typeCheckStmts(ctx, d.Body.Stmts, retType)
}

// --- Statements ---

func typeCheckStmts(ctx *Context, stmts []Stmt, retType types.Type) {
	for _, s := range stmts {
		typeCheckStmt(ctx, s, retType)
	}
}

func typeCheckStmt(ctx *Context, s Stmt, retType types.Type) {
	switch s := s.(type) {
	case *AssignStmt:
		s.Assign.typeCheck(ctx)

	case *PostIncStmt:
		t := typeCheckExp(ctx, s.Exp)
		if !types.IsError(t) && !types.IsInt(t) {
			ctx.Reporter.Fatal(s.Exp.LineNum(), s.Exp.CharNum(),
				"Arithmetic operator applied to non-numeric operand")
		}

	case *PostDecStmt:
		t := typeCheckExp(ctx, s.Exp)
		if !types.IsError(t) && !types.IsInt(t) {
			ctx.Reporter.Fatal(s.Exp.LineNum(), s.Exp.CharNum(),
				"Arithmetic operator applied to non-numeric operand")
		}

	case *ReadStmt:
		t := typeCheckExp(ctx, s.Exp)
		if types.IsFn(t) {
			ctx.Reporter.Fatal(s.Exp.LineNum(), s.Exp.CharNum(), "Attempt to read a function")
		}
		if types.IsStructDef(t) {
			ctx.Reporter.Fatal(s.Exp.LineNum(), s.Exp.CharNum(), "Attempt to read a struct name")
		}
		if types.IsStruct(t) {
			ctx.Reporter.Fatal(s.Exp.LineNum(), s.Exp.CharNum(), "Attempt to read a struct variable")
		}

	case *WriteStmt:
		t := typeCheckExp(ctx, s.Exp)
		s.expType = t
		if types.IsFn(t) {
			ctx.Reporter.Fatal(s.Exp.LineNum(), s.Exp.CharNum(), "Attempt to write a function")
		}
		if types.IsStructDef(t) {
			ctx.Reporter.Fatal(s.Exp.LineNum(), s.Exp.CharNum(), "Attempt to write a struct name")
		}
		if types.IsStruct(t) {
			ctx.Reporter.Fatal(s.Exp.LineNum(), s.Exp.CharNum(), "Attempt to write a struct variable")
		}
		if types.IsVoid(t) {
			ctx.Reporter.Fatal(s.Exp.LineNum(), s.Exp.CharNum(), "Attempt to write void")
		}

	case *IfStmt:
		t := typeCheckExp(ctx, s.Cond)
		if !types.IsError(t) && !types.IsBool(t) {
			ctx.Reporter.Fatal(s.Cond.LineNum(), s.Cond.CharNum(),
				"Non-bool expression used as an if condition")
		}
		typeCheckStmts(ctx, s.Stmts, retType)

	case *IfElseStmt:
		t := typeCheckExp(ctx, s.Cond)
		if !types.IsError(t) && !types.IsBool(t) {
			ctx.Reporter.Fatal(s.Cond.LineNum(), s.Cond.CharNum(),
				"Non-bool expression used as an if condition")
		}
		typeCheckStmts(ctx, s.ThenStmts, retType)
		typeCheckStmts(ctx, s.ElseStmts, retType)

	case *WhileStmt:
		t := typeCheckExp(ctx, s.Cond)
		if !types.IsError(t) && !types.IsBool(t) {
			ctx.Reporter.Fatal(s.Cond.LineNum(), s.Cond.CharNum(),
				"Non-bool expression used as a while condition")
		}
		typeCheckStmts(ctx, s.Stmts, retType)

	case *RepeatStmt:
		t := typeCheckExp(ctx, s.Clause)
		if !types.IsError(t) && !types.IsInt(t) {
			ctx.Reporter.Fatal(s.Clause.LineNum(), s.Clause.CharNum(),
				"Non-integer expression used as a repeat clause")
		}
		typeCheckStmts(ctx, s.Stmts, retType)

	case *CallStmt:
		s.Call.typeCheck(ctx)

	case *ReturnStmt:
		if s.Exp != nil {
			t := typeCheckExp(ctx, s.Exp)
			if types.IsVoid(retType) {
				ctx.Reporter.Fatal(s.Exp.LineNum(), s.Exp.CharNum(),
					"Return with a value in a void function")
			} else if !types.IsError(retType) && !types.IsError(t) && !retType.Equals(t) {
				ctx.Reporter.Fatal(s.Exp.LineNum(), s.Exp.CharNum(), "Bad return value")
			}
		} else if !types.IsVoid(retType) {
			ctx.Reporter.Fatal(0, 0, "Missing return value")
		}
	}
}

// --- Expressions ---

func typeCheckExp(ctx *Context, e Exp) types.Type {
	switch e := e.(type) {
	case *IntLit:
		return types.IntType{}
	case *StrLit:
		return types.StringType{}
	case *TrueLit, *FalseLit:
		return types.BoolType{}
	case *Ident:
		return e.typeCheck(ctx)
	case *DotAccess:
		return e.ID.typeCheck(ctx)
	case *AssignExp:
		return e.typeCheck(ctx)
	case *CallExp:
		return e.typeCheck(ctx)
	case *UnaryMinus:
		t := typeCheckExp(ctx, e.Exp)
		if types.IsError(t) {
			return types.ErrorType{}
		}
		if !types.IsInt(t) {
			ctx.Reporter.Fatal(e.LineNum(), e.CharNum(),
				"Arithmetic operator applied to non-numeric operand")
			return types.ErrorType{}
		}
		return types.IntType{}
	case *Not:
		t := typeCheckExp(ctx, e.Exp)
		if types.IsError(t) {
			return types.ErrorType{}
		}
		if !types.IsBool(t) {
			ctx.Reporter.Fatal(e.LineNum(), e.CharNum(),
				"Logical operator applied to non-bool operand")
			return types.ErrorType{}
		}
		return types.BoolType{}
	case *BinaryExp:
		return e.typeCheck(ctx)
	}
	return types.ErrorType{}
}

// typeCheck yields the declared type of a resolved name. A None handle
// means name analysis already reported this identifier; ErrorType keeps
// the checker quiet about it.
func (n *Ident) typeCheck(ctx *Context) types.Type {
	sym := ctx.Syms.Get(n.Sym)
	if sym == nil {
		return types.ErrorType{}
	}
	return sym.Type
}

func (n *AssignExp) typeCheck(ctx *Context) types.Type {
	typeLhs := typeCheckExp(ctx, n.Lhs)
	typeRhs := typeCheckExp(ctx, n.Rhs)
	ret := typeLhs

	switch {
	case types.IsFn(typeLhs) && types.IsFn(typeRhs):
		ctx.Reporter.Fatal(n.LineNum(), n.CharNum(), "Function assignment")
		ret = types.ErrorType{}
	case types.IsStructDef(typeLhs) && types.IsStructDef(typeRhs):
		ctx.Reporter.Fatal(n.LineNum(), n.CharNum(), "Struct name assignment")
		ret = types.ErrorType{}
	case types.IsStruct(typeLhs) && types.IsStruct(typeRhs):
		ctx.Reporter.Fatal(n.LineNum(), n.CharNum(), "Struct variable assignment")
		ret = types.ErrorType{}
	}

	if !types.IsError(ret) && !types.IsError(typeLhs) && !types.IsError(typeRhs) &&
		!typeLhs.Equals(typeRhs) {
		ctx.Reporter.Fatal(n.LineNum(), n.CharNum(), "Type mismatch")
		ret = types.ErrorType{}
	}

	if types.IsError(typeLhs) || types.IsError(typeRhs) {
		ret = types.ErrorType{}
	}
	return ret
}

func (n *CallExp) typeCheck(ctx *Context) types.Type {
	if !types.IsFn(n.ID.typeCheck(ctx)) {
		ctx.Reporter.Fatal(n.ID.LineNum(), n.ID.CharNum(), "Attempt to call a non-function")
		return types.ErrorType{}
	}

	fnSym := ctx.Syms.Get(n.ID.Sym)
	ret := fnSym.Type.(types.FnType).Ret

	if len(n.Args) != fnSym.NumParams {
		ctx.Reporter.Fatal(n.ID.LineNum(), n.ID.CharNum(),
			"Function call with wrong number of args")
		return ret
	}

	for i, arg := range n.Args {
		actual := typeCheckExp(ctx, arg)
		if types.IsError(actual) {
			continue
		}
		if i < len(fnSym.ParamTypes) && !fnSym.ParamTypes[i].Equals(actual) {
			ctx.Reporter.Fatal(arg.LineNum(), arg.CharNum(),
				"Type of actual does not match type of formal")
		}
	}
	return ret
}

func (n *BinaryExp) typeCheck(ctx *Context) types.Type {
	type1 := typeCheckExp(ctx, n.Lhs)
	type2 := typeCheckExp(ctx, n.Rhs)

	switch n.Op.class() {
	case classArithmetic:
		return checkOperands(ctx, n, type1, type2, types.IsInt, types.IntType{},
			"Arithmetic operator applied to non-numeric operand")
	case classLogical:
		return checkOperands(ctx, n, type1, type2, types.IsBool, types.BoolType{},
			"Logical operator applied to non-bool operand")
	case classRelational:
		return checkOperands(ctx, n, type1, type2, types.IsInt, types.BoolType{},
			"Relational operator applied to non-numeric operand")
	default:
		return n.typeCheckEquality(ctx, type1, type2)
	}
}

// checkOperands applies the shared arithmetic/logical/relational rule:
// each operand must satisfy want, with the diagnostic attached to the
// offending operand.
func checkOperands(ctx *Context, n *BinaryExp, type1, type2 types.Type,
	want func(types.Type) bool, result types.Type, msg string) types.Type {

	ret := result
	if !types.IsError(type1) && !want(type1) {
		ctx.Reporter.Fatal(n.Lhs.LineNum(), n.Lhs.CharNum(), msg)
		ret = types.ErrorType{}
	}
	if !types.IsError(type2) && !want(type2) {
		ctx.Reporter.Fatal(n.Rhs.LineNum(), n.Rhs.CharNum(), msg)
		ret = types.ErrorType{}
	}
	if types.IsError(type1) || types.IsError(type2) {
		ret = types.ErrorType{}
	}
	return ret
}

func (n *BinaryExp) typeCheckEquality(ctx *Context, type1, type2 types.Type) types.Type {
	ret := types.Type(types.BoolType{})

	switch {
	case types.IsVoid(type1) && types.IsVoid(type2):
		ctx.Reporter.Fatal(n.LineNum(), n.CharNum(), "Equality operator applied to void functions")
		ret = types.ErrorType{}
	case types.IsFn(type1) && types.IsFn(type2):
		ctx.Reporter.Fatal(n.LineNum(), n.CharNum(), "Equality operator applied to functions")
		ret = types.ErrorType{}
	case types.IsStructDef(type1) && types.IsStructDef(type2):
		ctx.Reporter.Fatal(n.LineNum(), n.CharNum(), "Equality operator applied to struct names")
		ret = types.ErrorType{}
	case types.IsStruct(type1) && types.IsStruct(type2):
		ctx.Reporter.Fatal(n.LineNum(), n.CharNum(), "Equality operator applied to struct variables")
		ret = types.ErrorType{}
	}

	if !types.IsError(ret) && !types.IsError(type1) && !types.IsError(type2) &&
		!type1.Equals(type2) {
		ctx.Reporter.Fatal(n.LineNum(), n.CharNum(), "Type mismatch")
		ret = types.ErrorType{}
	}

	if types.IsError(type1) || types.IsError(type2) {
		ret = types.ErrorType{}
	}
	return ret
}
