package parser

import (
	"testing"

	"github.com/nalgeon/be"

	"github.com/arnavsurve/gibberish/internal/compiler/ast"
	"github.com/arnavsurve/gibberish/internal/compiler/lexer"
)

// checkParserErrors is a common helper function for parser tests.
func checkParserErrors(t *testing.T, p *Parser) {
	t.Helper()
	errors := p.Errors()
	if len(errors) == 0 {
		return
	}
	t.Errorf("Parser has %d errors:", len(errors))
	for i, msg := range errors {
		t.Errorf("   Error %d: %q", i+1, msg)
	}
	t.FailNow()
}

func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	p := NewParser(lexer.NewLexer(input))
	prog := p.ParseProgram()
	checkParserErrors(t, p)
	return prog
}

func TestGlobalVarDecls(t *testing.T) {
	prog := parse(t, `
int x;
bool flag;
struct Point origin;
`)
	be.Equal(t, 3, len(prog.Decls))

	vd, ok := prog.Decls[0].(*ast.VarDecl)
	be.True(t, ok)
	_, ok = vd.Type.(*ast.IntNode)
	be.True(t, ok)
	be.Equal(t, "x", vd.ID.Name)

	vd, ok = prog.Decls[1].(*ast.VarDecl)
	be.True(t, ok)
	_, ok = vd.Type.(*ast.BoolNode)
	be.True(t, ok)

	vd, ok = prog.Decls[2].(*ast.VarDecl)
	be.True(t, ok)
	sn, ok := vd.Type.(*ast.StructNode)
	be.True(t, ok)
	be.Equal(t, "Point", sn.ID.Name)
	be.Equal(t, "origin", vd.ID.Name)
}

func TestStructDecl(t *testing.T) {
	prog := parse(t, `
struct Point {
    int x;
    int y;
};
`)
	be.Equal(t, 1, len(prog.Decls))

	sd, ok := prog.Decls[0].(*ast.StructDecl)
	be.True(t, ok)
	be.Equal(t, "Point", sd.ID.Name)
	be.Equal(t, 2, len(sd.Fields))
	be.Equal(t, "x", sd.Fields[0].ID.Name)
	be.Equal(t, "y", sd.Fields[1].ID.Name)
}

func TestFnDeclWithFormalsAndBody(t *testing.T) {
	prog := parse(t, `
int add(int a, int b) {
    int sum;
    sum = a + b;
    return sum;
}
`)
	fd, ok := prog.Decls[0].(*ast.FnDecl)
	be.True(t, ok)
	be.Equal(t, "add", fd.ID.Name)
	be.Equal(t, 2, len(fd.Formals))
	be.Equal(t, "a", fd.Formals[0].ID.Name)
	be.Equal(t, "b", fd.Formals[1].ID.Name)
	be.Equal(t, 1, len(fd.Body.Decls))
	be.Equal(t, 2, len(fd.Body.Stmts))

	_, ok = fd.Body.Stmts[0].(*ast.AssignStmt)
	be.True(t, ok)
	ret, ok := fd.Body.Stmts[1].(*ast.ReturnStmt)
	be.True(t, ok)
	be.True(t, ret.Exp != nil)
}

func TestPrecedence(t *testing.T) {
	prog := parse(t, `
void main() {
    int x;
    x = 1 + 2 * 3;
}
`)
	fd := prog.Decls[0].(*ast.FnDecl)
	assign := fd.Body.Stmts[0].(*ast.AssignStmt).Assign

	sum, ok := assign.Rhs.(*ast.BinaryExp)
	be.True(t, ok)
	be.Equal(t, ast.Plus, sum.Op)

	_, ok = sum.Lhs.(*ast.IntLit)
	be.True(t, ok)
	product, ok := sum.Rhs.(*ast.BinaryExp)
	be.True(t, ok)
	be.Equal(t, ast.Times, product.Op)
}

func TestLogicalPrecedence(t *testing.T) {
	prog := parse(t, `
void main() {
    bool b;
    b = true || false && false;
}
`)
	fd := prog.Decls[0].(*ast.FnDecl)
	assign := fd.Body.Stmts[0].(*ast.AssignStmt).Assign

	// && binds tighter than ||.
	or, ok := assign.Rhs.(*ast.BinaryExp)
	be.True(t, ok)
	be.Equal(t, ast.Or, or.Op)
	and, ok := or.Rhs.(*ast.BinaryExp)
	be.True(t, ok)
	be.Equal(t, ast.And, and.Op)
}

func TestDotAccessChain(t *testing.T) {
	prog := parse(t, `
void main() {
    a.b.c = 1;
}
`)
	fd := prog.Decls[0].(*ast.FnDecl)
	assign := fd.Body.Stmts[0].(*ast.AssignStmt).Assign

	outer, ok := assign.Lhs.(*ast.DotAccess)
	be.True(t, ok)
	be.Equal(t, "c", outer.ID.Name)
	inner, ok := outer.Loc.(*ast.DotAccess)
	be.True(t, ok)
	be.Equal(t, "b", inner.ID.Name)
	id, ok := inner.Loc.(*ast.Ident)
	be.True(t, ok)
	be.Equal(t, "a", id.Name)
}

func TestControlFlowStatements(t *testing.T) {
	prog := parse(t, `
void main() {
    int i;
    if (i < 10) {
        i++;
    }
    if (i == 0) {
        i--;
    } else {
        int j;
        j = i;
    }
    while (true) {
        i = i - 1;
    }
    repeat (3) {
        cout << i;
    }
}
`)
	fd := prog.Decls[0].(*ast.FnDecl)
	be.Equal(t, 4, len(fd.Body.Stmts))

	_, ok := fd.Body.Stmts[0].(*ast.IfStmt)
	be.True(t, ok)
	ifElse, ok := fd.Body.Stmts[1].(*ast.IfElseStmt)
	be.True(t, ok)
	be.Equal(t, 1, len(ifElse.ElseDecls))
	_, ok = fd.Body.Stmts[2].(*ast.WhileStmt)
	be.True(t, ok)
	_, ok = fd.Body.Stmts[3].(*ast.RepeatStmt)
	be.True(t, ok)
}

func TestReadWriteStatements(t *testing.T) {
	prog := parse(t, `
void main() {
    int x;
    cin >> x;
    cout << x + 1;
    cout << "done";
}
`)
	fd := prog.Decls[0].(*ast.FnDecl)
	be.Equal(t, 3, len(fd.Body.Stmts))

	read, ok := fd.Body.Stmts[0].(*ast.ReadStmt)
	be.True(t, ok)
	_, ok = read.Exp.(*ast.Ident)
	be.True(t, ok)

	write, ok := fd.Body.Stmts[1].(*ast.WriteStmt)
	be.True(t, ok)
	_, ok = write.Exp.(*ast.BinaryExp)
	be.True(t, ok)

	write, ok = fd.Body.Stmts[2].(*ast.WriteStmt)
	be.True(t, ok)
	_, ok = write.Exp.(*ast.StrLit)
	be.True(t, ok)
}

func TestCallStatementAndExpression(t *testing.T) {
	prog := parse(t, `
void main() {
    int x;
    ping();
    x = add(1, x * 2);
}
`)
	fd := prog.Decls[0].(*ast.FnDecl)

	call, ok := fd.Body.Stmts[0].(*ast.CallStmt)
	be.True(t, ok)
	be.Equal(t, "ping", call.Call.ID.Name)
	be.Equal(t, 0, len(call.Call.Args))

	assign := fd.Body.Stmts[1].(*ast.AssignStmt).Assign
	callExp, ok := assign.Rhs.(*ast.CallExp)
	be.True(t, ok)
	be.Equal(t, "add", callExp.ID.Name)
	be.Equal(t, 2, len(callExp.Args))
}

func TestUnaryOperators(t *testing.T) {
	prog := parse(t, `
void main() {
    int x;
    bool b;
    x = -x;
    b = !b;
}
`)
	fd := prog.Decls[0].(*ast.FnDecl)

	neg := fd.Body.Stmts[0].(*ast.AssignStmt).Assign
	_, ok := neg.Rhs.(*ast.UnaryMinus)
	be.True(t, ok)

	not := fd.Body.Stmts[1].(*ast.AssignStmt).Assign
	_, ok = not.Rhs.(*ast.Not)
	be.True(t, ok)
}

func TestReturnWithoutValue(t *testing.T) {
	prog := parse(t, `
void main() {
    return;
}
`)
	fd := prog.Decls[0].(*ast.FnDecl)
	ret, ok := fd.Body.Stmts[0].(*ast.ReturnStmt)
	be.True(t, ok)
	be.True(t, ret.Exp == nil)
}

func TestParserRecordsErrors(t *testing.T) {
	p := NewParser(lexer.NewLexer(`int ;`))
	p.ParseProgram()
	be.True(t, len(p.Errors()) > 0)
}

func TestEmptyProgram(t *testing.T) {
	prog := parse(t, ``)
	be.Equal(t, 0, len(prog.Decls))
}
