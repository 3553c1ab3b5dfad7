package compiler

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"github.com/arnavsurve/gibberish/internal/compiler/report"
)

// run compiles src from source text, returning the reporter, the
// assembly buffer, and Compile's error.
func run(t *testing.T, src string) (*report.Reporter, *bytes.Buffer, error) {
	t.Helper()
	prog, err := parseProgram(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	r := report.New(io.Discard)
	var out bytes.Buffer
	return r, &out, Compile(prog, r, &out)
}

func diagnostics(r *report.Reporter) []string {
	var msgs []string
	for _, d := range r.Diagnostics() {
		msgs = append(msgs, d.Message)
	}
	return msgs
}

func TestCompileEmptyMain(t *testing.T) {
	r, out, err := run(t, `void main() { }`)
	be.Err(t, err, nil)
	be.Equal(t, 0, len(r.Diagnostics()))
	be.True(t, strings.Contains(out.String(), "_main_Exit:"))
	be.True(t, strings.Contains(out.String(), "li\t$v0, 10"))
	be.True(t, strings.Contains(out.String(), "syscall"))
}

func TestCompileRedeclaration(t *testing.T) {
	r, out, err := run(t, `int x; int x; void main() { }`)
	be.Err(t, err, ErrCompileFailed)
	be.Equal(t, []string{"Multiply declared identifier"}, diagnostics(r))
	be.Equal(t, 0, out.Len())
}

func TestCompileTypeMismatch(t *testing.T) {
	r, out, err := run(t, `
void foo() {
    int x;
    x = true;
}
void main() {
}
`)
	be.Err(t, err, ErrCompileFailed)
	be.Equal(t, []string{"Type mismatch"}, diagnostics(r))
	be.Equal(t, 0, out.Len())
}

func TestCompileMissingReturnValue(t *testing.T) {
	r, _, err := run(t, `
int f() {
    return;
}
void main() {
}
`)
	be.Err(t, err, ErrCompileFailed)
	be.Equal(t, []string{"Missing return value"}, diagnostics(r))
	be.Equal(t, 0, r.Diagnostics()[0].Line)
	be.Equal(t, 0, r.Diagnostics()[0].Char)
}

func TestCompileWriteFunction(t *testing.T) {
	r, _, err := run(t, `
void g() {
    cout << g;
}
void main() {
}
`)
	be.Err(t, err, ErrCompileFailed)
	be.Equal(t, []string{"Attempt to write a function"}, diagnostics(r))
}

func TestCompileIntMainCondition(t *testing.T) {
	// main exists, so no missing-main diagnostic alongside the condition
	// error; the int return type is not flagged in this subset.
	r, _, err := run(t, `
int main() {
    if (1) {
    }
}
`)
	be.Err(t, err, ErrCompileFailed)
	be.Equal(t, []string{"Non-bool expression used as an if condition"}, diagnostics(r))
}

func TestTypeCheckingRunsAfterNameErrors(t *testing.T) {
	// The undeclared identifier comes from name analysis; the bad repeat
	// clause only surfaces because type checking still runs.
	r, out, err := run(t, `
void main() {
    x = 1;
    repeat (true) {
    }
}
`)
	be.Err(t, err, ErrCompileFailed)
	be.Equal(t, []string{
		"Undeclared identifier",
		"Non-integer expression used as a repeat clause",
	}, diagnostics(r))
	be.Equal(t, 0, out.Len())
}

func TestCompileAndWrite(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "hello.gib")
	src := `
void main() {
    cout << "hello";
}
`
	be.Err(t, os.WriteFile(srcPath, []byte(src), 0o644), nil)

	outPath, err := CompileAndWrite(srcPath, dir)
	be.Err(t, err, nil)
	be.Equal(t, filepath.Join(dir, "hello.s"), outPath)

	asm, err := os.ReadFile(outPath)
	be.Err(t, err, nil)
	be.True(t, strings.Contains(string(asm), `.asciiz "hello"`))
}

func TestCompileAndWriteRejectsWrongExtension(t *testing.T) {
	_, err := CompileAndWrite("prog.txt", t.TempDir())
	be.True(t, err != nil)
}

func TestNoOutputFileOnErrors(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "bad.gib")
	be.Err(t, os.WriteFile(srcPath, []byte(`int x; int x; void main() { }`), 0o644), nil)

	_, err := CompileAndWrite(srcPath, dir)
	be.Err(t, err, ErrCompileFailed)

	_, statErr := os.Stat(filepath.Join(dir, "bad.s"))
	be.True(t, os.IsNotExist(statErr))
}
