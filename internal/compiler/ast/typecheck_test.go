package ast_test

import (
	"io"
	"testing"

	"github.com/nalgeon/be"

	"github.com/arnavsurve/gibberish/internal/compiler/ast"
	"github.com/arnavsurve/gibberish/internal/compiler/lexer"
	"github.com/arnavsurve/gibberish/internal/compiler/parser"
	"github.com/arnavsurve/gibberish/internal/compiler/report"
)

// check parses src and runs name analysis followed by type checking,
// returning the reporter with the accumulated diagnostics.
func check(t *testing.T, src string) *report.Reporter {
	t.Helper()
	p := parser.NewParser(lexer.NewLexer(src))
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parser errors: %v", errs)
	}
	r := report.New(io.Discard)
	ctx := ast.NewContext(r)
	if err := prog.NameAnalysis(ctx); err != nil {
		t.Fatalf("name analysis: %v", err)
	}
	prog.TypeCheck(ctx)
	return r
}

func TestWellTypedProgram(t *testing.T) {
	r := check(t, `
int g;
bool flag;
int add(int a, int b) {
    return a + b;
}
void main() {
    int x;
    x = add(g, 2) * 3;
    flag = x < 10 && !(x == 0);
    if (flag) {
        cout << x;
    } else {
        cout << "nope";
    }
    while (x > 0) {
        x--;
    }
    cin >> g;
}
`)
	be.Equal(t, 0, len(r.Diagnostics()))
}

func TestAssignTypeMismatch(t *testing.T) {
	r := check(t, `
void foo() {
    int x;
    x = true;
}
void main() {
}
`)
	be.Equal(t, []string{"Type mismatch"}, messages(r))
}

func TestArithmeticOperandErrors(t *testing.T) {
	r := check(t, `
void main() {
    int x;
    x = true + 1;
}
`)
	be.Equal(t, []string{"Arithmetic operator applied to non-numeric operand"}, messages(r))
}

func TestArithmeticErrorReportedPerOperand(t *testing.T) {
	r := check(t, `
void main() {
    int x;
    x = true + false;
}
`)
	be.Equal(t, []string{
		"Arithmetic operator applied to non-numeric operand",
		"Arithmetic operator applied to non-numeric operand",
	}, messages(r))
}

func TestLogicalOperandError(t *testing.T) {
	r := check(t, `
void main() {
    if (1 && true) {
    }
}
`)
	be.Equal(t, []string{"Logical operator applied to non-bool operand"}, messages(r))
}

func TestRelationalOperandError(t *testing.T) {
	r := check(t, `
void main() {
    if (1 < true) {
    }
}
`)
	be.Equal(t, []string{"Relational operator applied to non-numeric operand"}, messages(r))
}

func TestUnaryMinusOnBool(t *testing.T) {
	r := check(t, `
void main() {
    int x;
    x = -true;
}
`)
	be.Equal(t, []string{"Arithmetic operator applied to non-numeric operand"}, messages(r))
}

func TestNotOnInt(t *testing.T) {
	r := check(t, `
void main() {
    bool b;
    b = !3;
}
`)
	be.Equal(t, []string{"Logical operator applied to non-bool operand"}, messages(r))
}

func TestErrorTypeSuppressesCascades(t *testing.T) {
	// The undeclared x yields the error type, so the arithmetic and the
	// assignment stay quiet about it.
	r := check(t, `
void main() {
    int y;
    y = x + 1;
}
`)
	be.Equal(t, []string{"Undeclared identifier"}, messages(r))
}

func TestNonBoolIfCondition(t *testing.T) {
	r := check(t, `
int main() {
    if (1) {
    }
}
`)
	be.Equal(t, []string{"Non-bool expression used as an if condition"}, messages(r))
}

func TestNonBoolWhileCondition(t *testing.T) {
	r := check(t, `
void main() {
    while (1) {
    }
}
`)
	be.Equal(t, []string{"Non-bool expression used as a while condition"}, messages(r))
}

func TestNonIntRepeatClause(t *testing.T) {
	r := check(t, `
void main() {
    repeat (true) {
    }
}
`)
	be.Equal(t, []string{"Non-integer expression used as a repeat clause"}, messages(r))
}

func TestPostIncrementRequiresInt(t *testing.T) {
	r := check(t, `
void main() {
    bool b;
    b++;
}
`)
	be.Equal(t, []string{"Arithmetic operator applied to non-numeric operand"}, messages(r))
}

func TestReadErrors(t *testing.T) {
	r := check(t, `
struct P {
    int x;
};
void main() {
    cin >> main;
}
`)
	be.Equal(t, []string{"Attempt to read a function"}, messages(r))

	r = check(t, `
struct P {
    int x;
};
void main() {
    cin >> P;
}
`)
	be.Equal(t, []string{"Attempt to read a struct name"}, messages(r))

	r = check(t, `
struct P {
    int x;
};
void main() {
    struct P p;
    cin >> p;
}
`)
	be.Equal(t, []string{"Attempt to read a struct variable"}, messages(r))
}

func TestWriteErrors(t *testing.T) {
	r := check(t, `
void g() {
    cout << g;
}
void main() {
}
`)
	be.Equal(t, []string{"Attempt to write a function"}, messages(r))

	r = check(t, `
struct P {
    int x;
};
void main() {
    cout << P;
}
`)
	be.Equal(t, []string{"Attempt to write a struct name"}, messages(r))

	r = check(t, `
struct P {
    int x;
};
void main() {
    struct P p;
    cout << p;
}
`)
	be.Equal(t, []string{"Attempt to write a struct variable"}, messages(r))

	r = check(t, `
void f() {
}
void main() {
    cout << f();
}
`)
	be.Equal(t, []string{"Attempt to write void"}, messages(r))
}

func TestEqualityErrors(t *testing.T) {
	r := check(t, `
void f() {
}
void main() {
    if (f() == f()) {
    }
}
`)
	be.Equal(t, []string{"Equality operator applied to void functions"}, messages(r))

	r = check(t, `
void f() {
}
void main() {
    if (f == f) {
    }
}
`)
	be.Equal(t, []string{"Equality operator applied to functions"}, messages(r))

	r = check(t, `
struct P {
    int x;
};
void main() {
    if (P == P) {
    }
}
`)
	be.Equal(t, []string{"Equality operator applied to struct names"}, messages(r))

	r = check(t, `
struct P {
    int x;
};
void main() {
    struct P p;
    struct P q;
    if (p == q) {
    }
}
`)
	be.Equal(t, []string{"Equality operator applied to struct variables"}, messages(r))
}

func TestEqualityTypeMismatch(t *testing.T) {
	r := check(t, `
void main() {
    if (1 == true) {
    }
}
`)
	be.Equal(t, []string{"Type mismatch"}, messages(r))
}

func TestAssignmentKindErrors(t *testing.T) {
	r := check(t, `
void f() {
}
void g() {
}
void main() {
    f = g;
}
`)
	be.Equal(t, []string{"Function assignment"}, messages(r))

	r = check(t, `
struct P {
    int x;
};
struct Q {
    int x;
};
void main() {
    P = Q;
}
`)
	be.Equal(t, []string{"Struct name assignment"}, messages(r))

	r = check(t, `
struct P {
    int x;
};
void main() {
    struct P p;
    struct P q;
    p = q;
}
`)
	be.Equal(t, []string{"Struct variable assignment"}, messages(r))
}

func TestCallErrors(t *testing.T) {
	r := check(t, `
int x;
void main() {
    x();
}
`)
	be.Equal(t, []string{"Attempt to call a non-function"}, messages(r))

	r = check(t, `
void f(int a) {
}
void main() {
    f();
}
`)
	be.Equal(t, []string{"Function call with wrong number of args"}, messages(r))

	r = check(t, `
void f(int a) {
}
void main() {
    f(true);
}
`)
	be.Equal(t, []string{"Type of actual does not match type of formal"}, messages(r))
}

func TestReturnErrors(t *testing.T) {
	r := check(t, `
int f() {
    return;
}
void main() {
}
`)
	be.Equal(t, []string{"Missing return value"}, messages(r))
	be.Equal(t, 0, r.Diagnostics()[0].Line)
	be.Equal(t, 0, r.Diagnostics()[0].Char)

	r = check(t, `
void f() {
    return 3;
}
void main() {
}
`)
	be.Equal(t, []string{"Return with a value in a void function"}, messages(r))

	r = check(t, `
int f() {
    return true;
}
void main() {
}
`)
	be.Equal(t, []string{"Bad return value"}, messages(r))
}

func TestAssignmentAsCondition(t *testing.T) {
	r := check(t, `
void main() {
    bool b;
    if (b = true) {
    }
}
`)
	be.Equal(t, 0, len(r.Diagnostics()))
}

func TestStructFieldTyping(t *testing.T) {
	r := check(t, `
struct P {
    int x;
    bool ok;
};
void main() {
    struct P p;
    p.x = 1;
    p.ok = p.x < 2;
}
`)
	be.Equal(t, 0, len(r.Diagnostics()))

	r = check(t, `
struct P {
    int x;
};
void main() {
    struct P p;
    p.x = true;
}
`)
	be.Equal(t, []string{"Type mismatch"}, messages(r))
}
