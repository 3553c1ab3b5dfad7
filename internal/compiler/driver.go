package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arnavsurve/gibberish/internal/compiler/ast"
	"github.com/arnavsurve/gibberish/internal/compiler/lexer"
	"github.com/arnavsurve/gibberish/internal/compiler/parser"
	"github.com/arnavsurve/gibberish/internal/compiler/report"
)

// ErrCompileFailed reports that one or more user diagnostics fired; the
// diagnostics themselves went to the reporter.
var ErrCompileFailed = errors.New("compilation failed")

// Compile runs the three semantic passes over a parsed program and
// writes MIPS assembly to out. Type checking runs even when name
// analysis reported errors so that as many diagnostics as possible
// surface, but nothing is written once any diagnostic fired. A returned
// error other than ErrCompileFailed is an internal compiler error.
func Compile(prog *ast.Program, r *report.Reporter, out io.Writer) error {
	ctx := ast.NewContext(r)
	if err := prog.NameAnalysis(ctx); err != nil {
		return fmt.Errorf("internal compiler error: %w", err)
	}
	prog.TypeCheck(ctx)
	if r.HasErrors() {
		return ErrCompileFailed
	}
	return prog.CodeGen(ctx, out)
}

// CompileAndWrite compiles srcPath and writes the assembly into outDir as
// <base name>.s, returning the output path. No output file is produced when the
// source has errors.
func CompileAndWrite(srcPath, outDir string) (string, error) {
	if err := validateExtension(srcPath); err != nil {
		return "", err
	}

	content, err := os.ReadFile(srcPath)
	if err != nil {
		return "", err
	}

	prog, err := parseProgram(string(content))
	if err != nil {
		return "", err
	}

	var asm bytes.Buffer
	if err := Compile(prog, report.New(os.Stderr), &asm); err != nil {
		return "", err
	}

	return writeOutput(asm.Bytes(), srcPath, outDir)
}

func validateExtension(path string) error {
	if filepath.Ext(path) != ".gib" {
		return fmt.Errorf("source must have .gib extension")
	}
	return nil
}

func parseProgram(src string) (*ast.Program, error) {
	lex := lexer.NewLexer(src)
	p := parser.NewParser(lex)
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("parser errors: %v", errs)
	}
	return prog, nil
}

func writeOutput(asm []byte, srcPath, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	outFile := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(srcPath), ".gib")+".s")
	return outFile, os.WriteFile(outFile, asm, 0o644)
}
