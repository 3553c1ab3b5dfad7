package ast

import (
	"fmt"

	"github.com/arnavsurve/gibberish/internal/compiler/symbols"
	"github.com/arnavsurve/gibberish/internal/compiler/types"
)

// NameAnalysis resolves every name in the program: declarations are
// inserted into the symbol table, identifier uses are linked to arena
// handles, struct fields are resolved through their definition scopes,
// and frame offsets are assigned. User errors go to the reporter; a
// non-nil return is an internal compiler error.
func (p *Program) NameAnalysis(ctx *Context) error {
	symTab := symbols.NewSymTable()
	if err := nameAnalysisDecls(ctx, p.Decls, symTab, symTab); err != nil {
		return err
	}
	if ctx.noMain {
		ctx.Reporter.Fatal(0, 0, "No main function")
	}
	return nil
}

// nameAnalysisDecls processes a declaration list. globalTab is the table
// used to resolve struct type names in variable declarations; it differs
// from symTab only while processing a struct body.
func nameAnalysisDecls(ctx *Context, decls []Decl, symTab, globalTab *symbols.SymTable) error {
	for _, d := range decls {
		var err error
		switch d := d.(type) {
		case *VarDecl:
			_, err = d.nameAnalysis(ctx, symTab, globalTab)
		case *FnDecl:
			err = d.nameAnalysis(ctx, symTab)
		case *StructDecl:
			err = d.nameAnalysis(ctx, symTab)
		default:
			err = fmt.Errorf("name analysis: unexpected declaration %T", d)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func nameAnalysisVarDecls(ctx *Context, decls []*VarDecl, symTab, globalTab *symbols.SymTable) error {
	for _, d := range decls {
		if _, err := d.nameAnalysis(ctx, symTab, globalTab); err != nil {
			return err
		}
	}
	return nil
}

// nameAnalysis checks a variable declaration and, when well formed,
// creates its symbol. Scalars declared inside a function body consume one
// 4-byte frame slot through the table's offset cursor; globals get the
// sentinel offset; struct instances occupy no frame space.
func (d *VarDecl) nameAnalysis(ctx *Context, symTab, globalTab *symbols.SymTable) (symbols.ID, error) {
	badDecl := false
	name := d.ID.Name
	var structDefID symbols.ID

	switch t := d.Type.(type) {
	case *VoidNode:
		ctx.Reporter.Fatal(d.ID.LineNum(), d.ID.CharNum(), "Non-function declared void")
		badDecl = true

	case *StructNode:
		id, err := globalTab.LookupGlobal(t.ID.Name)
		if err != nil {
			return symbols.None, fmt.Errorf("var decl %q: %w", name, err)
		}
		sym := ctx.Syms.Get(id)
		if sym == nil || sym.Kind != symbols.KindStructDef {
			ctx.Reporter.Fatal(t.ID.LineNum(), t.ID.CharNum(), "Invalid name of struct type")
			badDecl = true
		} else {
			t.ID.Sym = id
			structDefID = id
		}
	}

	local, err := symTab.LookupLocal(name)
	if err != nil {
		return symbols.None, fmt.Errorf("var decl %q: %w", name, err)
	}
	if local != symbols.None {
		ctx.Reporter.Fatal(d.ID.LineNum(), d.ID.CharNum(), "Multiply declared identifier")
		badDecl = true
	}

	if badDecl {
		return symbols.None, nil
	}

	sym := symbols.Symbol{Kind: symbols.KindVar}
	if sn, ok := d.Type.(*StructNode); ok {
		sym.Type = types.StructType{Name: sn.ID.Name, Ref: int(structDefID)}
		if globalTab.GlobalScope() {
			sym.Storage = symbols.Global
		} else {
			sym.Storage = symbols.Local
		}
		sym.Offset = symbols.GlobalOffset
	} else {
		sym.Type = semType(d.Type)
		if globalTab.GlobalScope() {
			sym.Storage = symbols.Global
			sym.Offset = symbols.GlobalOffset
		} else {
			sym.Storage = symbols.Local
			sym.Offset = globalTab.Offset()
			globalTab.SetOffset(sym.Offset - 4) // every local is one word
		}
	}

	id := ctx.Syms.New(sym)
	if err := symTab.AddDecl(name, id); err != nil {
		return symbols.None, fmt.Errorf("var decl %q: %w", name, err)
	}
	d.ID.Sym = id
	return id, nil
}

// nameAnalysis registers the function symbol, then opens the function
// scope, allocates formals downward from offset 0, reserves the two saved
// slots, and processes the body. ParamSize and LocalSize are captured on
// the function symbol for the code generator.
func (d *FnDecl) nameAnalysis(ctx *Context, symTab *symbols.SymTable) error {
	name := d.ID.Name
	fnID := symbols.None

	local, err := symTab.LookupLocal(name)
	if err != nil {
		return fmt.Errorf("fn decl %q: %w", name, err)
	}
	if local != symbols.None {
		ctx.Reporter.Fatal(d.ID.LineNum(), d.ID.CharNum(), "Multiply declared identifier")
	} else {
		if name == "main" {
			ctx.noMain = false
		}
		fnID = ctx.Syms.New(symbols.Symbol{
			Kind:      symbols.KindFn,
			Type:      types.FnType{Ret: semType(d.Type)},
			NumParams: len(d.Formals),
		})
		if err := symTab.AddDecl(name, fnID); err != nil {
			return fmt.Errorf("fn decl %q: %w", name, err)
		}
		d.ID.Sym = fnID
	}

	symTab.SetGlobalScope(false)
	symTab.SetOffset(0)
	symTab.AddScope()

	var paramTypes []types.Type
	for _, f := range d.Formals {
		id, err := f.nameAnalysis(ctx, symTab)
		if err != nil {
			return err
		}
		if id != symbols.None {
			paramTypes = append(paramTypes, ctx.Syms.Get(id).Type)
		}
	}
	if fnID != symbols.None {
		fnSym := ctx.Syms.Get(fnID)
		fnSym.ParamTypes = paramTypes
		fnSym.Type = types.FnType{Params: paramTypes, Ret: semType(d.Type)}
		fnSym.ParamSize = -symTab.Offset()
	}

	// Reserve the saved-RA and saved-FP slots between formals and locals.
	symTab.SetOffset(symTab.Offset() - 8)
	bodyStart := symTab.Offset()

	if err := nameAnalysisVarDecls(ctx, d.Body.Decls, symTab, symTab); err != nil {
		return err
	}
	if err := nameAnalysisStmts(ctx, d.Body.Stmts, symTab); err != nil {
		return err
	}
	if fnID != symbols.None {
		ctx.Syms.Get(fnID).LocalSize = -(symTab.Offset() - bodyStart)
	}

	symTab.SetGlobalScope(true)
	if err := symTab.RemoveScope(); err != nil {
		return fmt.Errorf("fn decl %q: %w", name, err)
	}
	return nil
}

// nameAnalysis checks one formal: void formals are rejected, duplicates
// reported, and each accepted formal takes the next 4-byte slot from
// offset 0 downward.
func (d *FormalDecl) nameAnalysis(ctx *Context, symTab *symbols.SymTable) (symbols.ID, error) {
	name := d.ID.Name
	badDecl := false

	if _, ok := d.Type.(*VoidNode); ok {
		ctx.Reporter.Fatal(d.ID.LineNum(), d.ID.CharNum(), "Non-function declared void")
		badDecl = true
	}

	local, err := symTab.LookupLocal(name)
	if err != nil {
		return symbols.None, fmt.Errorf("formal %q: %w", name, err)
	}
	if local != symbols.None {
		ctx.Reporter.Fatal(d.ID.LineNum(), d.ID.CharNum(), "Multiply declared identifier")
		badDecl = true
	}

	if badDecl {
		return symbols.None, nil
	}

	offset := symTab.Offset()
	id := ctx.Syms.New(symbols.Symbol{
		Kind:    symbols.KindVar,
		Type:    semType(d.Type),
		Storage: symbols.Formal,
		Offset:  offset,
	})
	symTab.SetOffset(offset - 4) // formals are one word each
	if err := symTab.AddDecl(name, id); err != nil {
		return symbols.None, fmt.Errorf("formal %q: %w", name, err)
	}
	d.ID.Sym = id
	return id, nil
}

// nameAnalysis registers a struct definition. The fields are processed in
// a fresh table owned by the definition symbol; the enclosing table is
// passed through for resolving struct-typed fields. Field offsets are not
// assigned.
func (d *StructDecl) nameAnalysis(ctx *Context, symTab *symbols.SymTable) error {
	name := d.ID.Name

	local, err := symTab.LookupLocal(name)
	if err != nil {
		return fmt.Errorf("struct decl %q: %w", name, err)
	}
	if local != symbols.None {
		ctx.Reporter.Fatal(d.ID.LineNum(), d.ID.CharNum(), "Multiply declared identifier")
		return nil
	}

	fieldTab := symbols.NewSymTable()
	if err := nameAnalysisVarDecls(ctx, d.Fields, fieldTab, symTab); err != nil {
		return err
	}
	id := ctx.Syms.New(symbols.Symbol{
		Kind:   symbols.KindStructDef,
		Type:   types.StructDefType{},
		Fields: fieldTab,
	})
	if err := symTab.AddDecl(name, id); err != nil {
		return fmt.Errorf("struct decl %q: %w", name, err)
	}
	d.ID.Sym = id
	return nil
}

// --- Statements ---

func nameAnalysisStmts(ctx *Context, stmts []Stmt, symTab *symbols.SymTable) error {
	for _, s := range stmts {
		if err := nameAnalysisStmt(ctx, s, symTab); err != nil {
			return err
		}
	}
	return nil
}

// nameAnalysisBlock handles the scoped body shared by if, else, while,
// and repeat: push a scope, process declarations then statements, pop.
func nameAnalysisBlock(ctx *Context, decls []*VarDecl, stmts []Stmt, symTab *symbols.SymTable) error {
	symTab.AddScope()
	if err := nameAnalysisVarDecls(ctx, decls, symTab, symTab); err != nil {
		return err
	}
	if err := nameAnalysisStmts(ctx, stmts, symTab); err != nil {
		return err
	}
	if err := symTab.RemoveScope(); err != nil {
		return fmt.Errorf("block scope: %w", err)
	}
	return nil
}

func nameAnalysisStmt(ctx *Context, s Stmt, symTab *symbols.SymTable) error {
	switch s := s.(type) {
	case *AssignStmt:
		return s.Assign.nameAnalysis(ctx, symTab)
	case *PostIncStmt:
		return nameAnalysisExp(ctx, s.Exp, symTab)
	case *PostDecStmt:
		return nameAnalysisExp(ctx, s.Exp, symTab)
	case *ReadStmt:
		return nameAnalysisExp(ctx, s.Exp, symTab)
	case *WriteStmt:
		return nameAnalysisExp(ctx, s.Exp, symTab)
	case *IfStmt:
		if err := nameAnalysisExp(ctx, s.Cond, symTab); err != nil {
			return err
		}
		return nameAnalysisBlock(ctx, s.Decls, s.Stmts, symTab)
	case *IfElseStmt:
		if err := nameAnalysisExp(ctx, s.Cond, symTab); err != nil {
			return err
		}
		if err := nameAnalysisBlock(ctx, s.ThenDecls, s.ThenStmts, symTab); err != nil {
			return err
		}
		return nameAnalysisBlock(ctx, s.ElseDecls, s.ElseStmts, symTab)
	case *WhileStmt:
		if err := nameAnalysisExp(ctx, s.Cond, symTab); err != nil {
			return err
		}
		return nameAnalysisBlock(ctx, s.Decls, s.Stmts, symTab)
	case *RepeatStmt:
		if err := nameAnalysisExp(ctx, s.Clause, symTab); err != nil {
			return err
		}
		return nameAnalysisBlock(ctx, s.Decls, s.Stmts, symTab)
	case *CallStmt:
		return s.Call.nameAnalysis(ctx, symTab)
	case *ReturnStmt:
		if s.Exp != nil {
			return nameAnalysisExp(ctx, s.Exp, symTab)
		}
		return nil
	default:
		return fmt.Errorf("name analysis: unexpected statement %T", s)
	}
}

// --- Expressions ---

func nameAnalysisExp(ctx *Context, e Exp, symTab *symbols.SymTable) error {
	switch e := e.(type) {
	case *IntLit, *StrLit, *TrueLit, *FalseLit:
		return nil
	case *Ident:
		return e.nameAnalysis(ctx, symTab)
	case *DotAccess:
		return e.nameAnalysis(ctx, symTab)
	case *AssignExp:
		return e.nameAnalysis(ctx, symTab)
	case *CallExp:
		return e.nameAnalysis(ctx, symTab)
	case *UnaryMinus:
		return nameAnalysisExp(ctx, e.Exp, symTab)
	case *Not:
		return nameAnalysisExp(ctx, e.Exp, symTab)
	case *BinaryExp:
		if err := nameAnalysisExp(ctx, e.Lhs, symTab); err != nil {
			return err
		}
		return nameAnalysisExp(ctx, e.Rhs, symTab)
	default:
		return fmt.Errorf("name analysis: unexpected expression %T", e)
	}
}

// nameAnalysis resolves a name use against all open scopes.
func (n *Ident) nameAnalysis(ctx *Context, symTab *symbols.SymTable) error {
	id, err := symTab.LookupGlobal(n.Name)
	if err != nil {
		return fmt.Errorf("ident %q: %w", n.Name, err)
	}
	if id == symbols.None {
		ctx.Reporter.Fatal(n.LineNum(), n.CharNum(), "Undeclared identifier")
		return nil
	}
	n.Sym = id
	return nil
}

// nameAnalysis resolves one link of a dot-access chain. The left side is
// resolved first; its struct definition's field scope is then used to
// look up the right side. When the resolved field is itself a struct
// instance, its definition handle is exported for the enclosing access.
func (n *DotAccess) nameAnalysis(ctx *Context, symTab *symbols.SymTable) error {
	n.badAccess = false
	var fieldTab *symbols.SymTable

	if err := nameAnalysisExp(ctx, n.Loc, symTab); err != nil {
		return err
	}

	switch loc := n.Loc.(type) {
	case *Ident:
		sym := ctx.Syms.Get(loc.Sym)
		switch {
		case sym == nil: // LHS never resolved
			n.badAccess = true
		case sym.Kind == symbols.KindVar && types.IsStruct(sym.Type):
			st := sym.Type.(types.StructType)
			def := ctx.Syms.Get(symbols.ID(st.Ref))
			if def == nil || def.Fields == nil {
				return fmt.Errorf("dot-access: struct %q has no field scope", st.Name)
			}
			fieldTab = def.Fields
		default:
			ctx.Reporter.Fatal(loc.LineNum(), loc.CharNum(), "Dot-access of non-struct type")
			n.badAccess = true
		}

	case *DotAccess:
		if loc.badAccess {
			n.badAccess = true
			break
		}
		def := ctx.Syms.Get(loc.sym)
		if def == nil {
			ctx.Reporter.Fatal(loc.LineNum(), loc.CharNum(), "Dot-access of non-struct type")
			n.badAccess = true
			break
		}
		if def.Kind != symbols.KindStructDef || def.Fields == nil {
			return fmt.Errorf("dot-access: unexpected symbol kind on LHS")
		}
		fieldTab = def.Fields

	default:
		return fmt.Errorf("dot-access: unexpected node %T on LHS", n.Loc)
	}

	if n.badAccess {
		return nil
	}

	id, err := fieldTab.LookupGlobal(n.ID.Name)
	if err != nil {
		return fmt.Errorf("dot-access field %q: %w", n.ID.Name, err)
	}
	if id == symbols.None {
		ctx.Reporter.Fatal(n.ID.LineNum(), n.ID.CharNum(), "Invalid struct field name")
		n.badAccess = true
		return nil
	}
	n.ID.Sym = id

	// Export the field's struct definition for a chained access.
	if field := ctx.Syms.Get(id); types.IsStruct(field.Type) {
		n.sym = symbols.ID(field.Type.(types.StructType).Ref)
	}
	return nil
}

func (n *AssignExp) nameAnalysis(ctx *Context, symTab *symbols.SymTable) error {
	if err := nameAnalysisExp(ctx, n.Lhs, symTab); err != nil {
		return err
	}
	return nameAnalysisExp(ctx, n.Rhs, symTab)
}

func (n *CallExp) nameAnalysis(ctx *Context, symTab *symbols.SymTable) error {
	if err := n.ID.nameAnalysis(ctx, symTab); err != nil {
		return err
	}
	for _, arg := range n.Args {
		if err := nameAnalysisExp(ctx, arg, symTab); err != nil {
			return err
		}
	}
	return nil
}
