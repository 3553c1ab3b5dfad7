package parser

import (
	"fmt"
	"strconv"

	"github.com/arnavsurve/gibberish/internal/compiler/ast"
	"github.com/arnavsurve/gibberish/internal/compiler/lexer"
	"github.com/arnavsurve/gibberish/internal/compiler/token"
)

// Parser is a recursive-descent parser with one token of lookahead. It
// produces the declaration/statement/expression AST consumed by the
// semantic passes; syntax errors are collected, not fatal.
type Parser struct {
	l *lexer.Lexer

	curTok  token.Token
	peekTok token.Token

	errors []string
}

func NewParser(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	// Prime curTok and peekTok.
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) addError(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	p.peekTok = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curTok.Type == t }
func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekTok.Type == t }

// expect consumes the current token if it matches, otherwise records an
// error and leaves the token stream in place for recovery.
func (p *Parser) expect(t token.TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	p.addError("%d:%d: expected %s, got %q", p.curTok.Line, p.curTok.Column, t, p.curTok.Literal)
	return false
}

// ParseProgram parses a sequence of global declarations until EOF.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.curTokenIs(token.TokenEOF) {
		decl := p.parseDecl()
		if decl == nil {
			// Skip a token so a malformed declaration cannot loop forever.
			p.nextToken()
			continue
		}
		prog.Decls = append(prog.Decls, decl)
	}
	return prog
}

// parseDecl parses one global declaration: a struct definition, a
// variable declaration, or a function declaration.
func (p *Parser) parseDecl() ast.Decl {
	if p.curTokenIs(token.TokenStruct) && p.peekTokenIs(token.TokenIdent) {
		p.nextToken() // onto the struct name
		nameTok := p.curTok
		p.nextToken()
		if p.curTokenIs(token.TokenLBrace) {
			return p.parseStructDeclBody(nameTok)
		}
		// struct-typed variable: struct T id;
		return p.parseVarOrFnRest(&ast.StructNode{ID: identFrom(nameTok)})
	}

	if !p.curTok.IsTypeKeyword() {
		p.addError("%d:%d: expected declaration, got %q", p.curTok.Line, p.curTok.Column, p.curTok.Literal)
		return nil
	}
	typeNode := p.parseScalarType()
	return p.parseVarOrFnRest(typeNode)
}

// parseVarOrFnRest parses the remainder of a declaration once the type is
// known: `id;` for variables, `id(...) {...}` for functions.
func (p *Parser) parseVarOrFnRest(typeNode ast.TypeNode) ast.Decl {
	if !p.curTokenIs(token.TokenIdent) {
		p.addError("%d:%d: expected identifier, got %q", p.curTok.Line, p.curTok.Column, p.curTok.Literal)
		return nil
	}
	id := identFrom(p.curTok)
	p.nextToken()

	if p.curTokenIs(token.TokenLParen) {
		return p.parseFnDeclRest(typeNode, id)
	}

	p.expect(token.TokenSemicolon)
	return &ast.VarDecl{Type: typeNode, ID: id}
}

func (p *Parser) parseScalarType() ast.TypeNode {
	var tn ast.TypeNode
	switch p.curTok.Type {
	case token.TokenInt:
		tn = &ast.IntNode{}
	case token.TokenBool:
		tn = &ast.BoolNode{}
	case token.TokenVoid:
		tn = &ast.VoidNode{}
	}
	p.nextToken()
	return tn
}

// parseType parses any declared type, including struct T.
func (p *Parser) parseType() ast.TypeNode {
	if p.curTokenIs(token.TokenStruct) {
		p.nextToken()
		if !p.curTokenIs(token.TokenIdent) {
			p.addError("%d:%d: expected struct type name, got %q", p.curTok.Line, p.curTok.Column, p.curTok.Literal)
			return &ast.IntNode{}
		}
		tn := &ast.StructNode{ID: identFrom(p.curTok)}
		p.nextToken()
		return tn
	}
	return p.parseScalarType()
}

// parseStructDeclBody parses `{ fields };` after `struct name`.
func (p *Parser) parseStructDeclBody(nameTok token.Token) ast.Decl {
	p.expect(token.TokenLBrace)
	var fields []*ast.VarDecl
	for p.curTok.IsTypeKeyword() {
		field := p.parseBodyVarDecl()
		if field == nil {
			p.nextToken()
			continue
		}
		fields = append(fields, field)
	}
	p.expect(token.TokenRBrace)
	p.expect(token.TokenSemicolon)
	return &ast.StructDecl{ID: identFrom(nameTok), Fields: fields}
}

// parseBodyVarDecl parses `type id;` inside a struct or function body.
func (p *Parser) parseBodyVarDecl() *ast.VarDecl {
	typeNode := p.parseType()
	if !p.curTokenIs(token.TokenIdent) {
		p.addError("%d:%d: expected identifier, got %q", p.curTok.Line, p.curTok.Column, p.curTok.Literal)
		return nil
	}
	id := identFrom(p.curTok)
	p.nextToken()
	p.expect(token.TokenSemicolon)
	return &ast.VarDecl{Type: typeNode, ID: id}
}

// parseFnDeclRest parses `(formals) { decls stmts }`.
func (p *Parser) parseFnDeclRest(typeNode ast.TypeNode, id *ast.Ident) ast.Decl {
	p.expect(token.TokenLParen)

	var formals []*ast.FormalDecl
	for !p.curTokenIs(token.TokenRParen) && !p.curTokenIs(token.TokenEOF) {
		formalType := p.parseType()
		if !p.curTokenIs(token.TokenIdent) {
			p.addError("%d:%d: expected formal name, got %q", p.curTok.Line, p.curTok.Column, p.curTok.Literal)
			break
		}
		formals = append(formals, &ast.FormalDecl{Type: formalType, ID: identFrom(p.curTok)})
		p.nextToken()
		if p.curTokenIs(token.TokenComma) {
			p.nextToken()
		} else {
			break
		}
	}
	p.expect(token.TokenRParen)

	body := p.parseBlockBody()
	return &ast.FnDecl{Type: typeNode, ID: id, Formals: formals, Body: body}
}

// parseBlockBody parses `{ decls stmts }`: declarations come first, then
// statements, as in every block of the language.
func (p *Parser) parseBlockBody() *ast.FnBody {
	p.expect(token.TokenLBrace)
	body := &ast.FnBody{}
	for p.curTok.IsTypeKeyword() {
		decl := p.parseBodyVarDecl()
		if decl == nil {
			p.nextToken()
			continue
		}
		body.Decls = append(body.Decls, decl)
	}
	for !p.curTokenIs(token.TokenRBrace) && !p.curTokenIs(token.TokenEOF) {
		stmt := p.parseStmt()
		if stmt == nil {
			p.nextToken()
			continue
		}
		body.Stmts = append(body.Stmts, stmt)
	}
	p.expect(token.TokenRBrace)
	return body
}

// --- Statements ---

func (p *Parser) parseStmt() ast.Stmt {
	switch p.curTok.Type {
	case token.TokenIf:
		return p.parseIfStmt()
	case token.TokenWhile:
		return p.parseWhileStmt()
	case token.TokenRepeat:
		return p.parseRepeatStmt()
	case token.TokenReturn:
		return p.parseReturnStmt()
	case token.TokenCin:
		return p.parseReadStmt()
	case token.TokenCout:
		return p.parseWriteStmt()
	case token.TokenIdent:
		return p.parseSimpleStmt()
	default:
		p.addError("%d:%d: expected statement, got %q", p.curTok.Line, p.curTok.Column, p.curTok.Literal)
		return nil
	}
}

func (p *Parser) parseIfStmt() ast.Stmt {
	p.expect(token.TokenIf)
	p.expect(token.TokenLParen)
	cond := p.parseExp()
	p.expect(token.TokenRParen)
	thenBody := p.parseBlockBody()

	if !p.curTokenIs(token.TokenElse) {
		return &ast.IfStmt{Cond: cond, Decls: thenBody.Decls, Stmts: thenBody.Stmts}
	}
	p.nextToken()
	elseBody := p.parseBlockBody()
	return &ast.IfElseStmt{
		Cond:      cond,
		ThenDecls: thenBody.Decls,
		ThenStmts: thenBody.Stmts,
		ElseDecls: elseBody.Decls,
		ElseStmts: elseBody.Stmts,
	}
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	p.expect(token.TokenWhile)
	p.expect(token.TokenLParen)
	cond := p.parseExp()
	p.expect(token.TokenRParen)
	body := p.parseBlockBody()
	return &ast.WhileStmt{Cond: cond, Decls: body.Decls, Stmts: body.Stmts}
}

func (p *Parser) parseRepeatStmt() ast.Stmt {
	p.expect(token.TokenRepeat)
	p.expect(token.TokenLParen)
	clause := p.parseExp()
	p.expect(token.TokenRParen)
	body := p.parseBlockBody()
	return &ast.RepeatStmt{Clause: clause, Decls: body.Decls, Stmts: body.Stmts}
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	p.expect(token.TokenReturn)
	if p.curTokenIs(token.TokenSemicolon) {
		p.nextToken()
		return &ast.ReturnStmt{}
	}
	exp := p.parseExp()
	p.expect(token.TokenSemicolon)
	return &ast.ReturnStmt{Exp: exp}
}

func (p *Parser) parseReadStmt() ast.Stmt {
	p.expect(token.TokenCin)
	p.expect(token.TokenRead)
	loc := p.parseLoc()
	p.expect(token.TokenSemicolon)
	return &ast.ReadStmt{Exp: loc}
}

func (p *Parser) parseWriteStmt() ast.Stmt {
	p.expect(token.TokenCout)
	p.expect(token.TokenWrite)
	exp := p.parseExp()
	p.expect(token.TokenSemicolon)
	return &ast.WriteStmt{Exp: exp}
}

// parseSimpleStmt parses the statements that begin with an identifier:
// assignment, post-increment/decrement, and a call statement.
func (p *Parser) parseSimpleStmt() ast.Stmt {
	if p.peekTokenIs(token.TokenLParen) {
		call := p.parseCallExp()
		p.expect(token.TokenSemicolon)
		return &ast.CallStmt{Call: call}
	}

	loc := p.parseLoc()
	switch p.curTok.Type {
	case token.TokenAssign:
		p.nextToken()
		rhs := p.parseExp()
		p.expect(token.TokenSemicolon)
		return &ast.AssignStmt{Assign: &ast.AssignExp{Lhs: loc, Rhs: rhs}}
	case token.TokenPlusPlus:
		p.nextToken()
		p.expect(token.TokenSemicolon)
		return &ast.PostIncStmt{Exp: loc}
	case token.TokenMinusMinus:
		p.nextToken()
		p.expect(token.TokenSemicolon)
		return &ast.PostDecStmt{Exp: loc}
	default:
		p.addError("%d:%d: expected statement, got %q", p.curTok.Line, p.curTok.Column, p.curTok.Literal)
		return nil
	}
}

// --- Expressions ---

// parseExp parses a full expression. Assignment is lowest precedence and
// right-associative.
func (p *Parser) parseExp() ast.Exp {
	lhs := p.parseOrExp()
	if p.curTokenIs(token.TokenAssign) && isLoc(lhs) {
		p.nextToken()
		rhs := p.parseExp()
		return &ast.AssignExp{Lhs: lhs, Rhs: rhs}
	}
	return lhs
}

// isLoc reports whether an expression can be assigned to.
func isLoc(e ast.Exp) bool {
	switch e.(type) {
	case *ast.Ident, *ast.DotAccess:
		return true
	}
	return false
}

func (p *Parser) parseOrExp() ast.Exp {
	lhs := p.parseAndExp()
	for p.curTokenIs(token.TokenOr) {
		p.nextToken()
		rhs := p.parseAndExp()
		lhs = &ast.BinaryExp{Op: ast.Or, Lhs: lhs, Rhs: rhs}
	}
	return lhs
}

func (p *Parser) parseAndExp() ast.Exp {
	lhs := p.parseEqualityExp()
	for p.curTokenIs(token.TokenAnd) {
		p.nextToken()
		rhs := p.parseEqualityExp()
		lhs = &ast.BinaryExp{Op: ast.And, Lhs: lhs, Rhs: rhs}
	}
	return lhs
}

func (p *Parser) parseEqualityExp() ast.Exp {
	lhs := p.parseRelationalExp()
	for p.curTokenIs(token.TokenEq) || p.curTokenIs(token.TokenNotEq) {
		op := ast.Equals
		if p.curTokenIs(token.TokenNotEq) {
			op = ast.NotEquals
		}
		p.nextToken()
		rhs := p.parseRelationalExp()
		lhs = &ast.BinaryExp{Op: op, Lhs: lhs, Rhs: rhs}
	}
	return lhs
}

func (p *Parser) parseRelationalExp() ast.Exp {
	lhs := p.parseAdditiveExp()
	for {
		var op ast.BinOp
		switch p.curTok.Type {
		case token.TokenLess:
			op = ast.Less
		case token.TokenGreater:
			op = ast.Greater
		case token.TokenLessEq:
			op = ast.LessEq
		case token.TokenGreaterEq:
			op = ast.GreaterEq
		default:
			return lhs
		}
		p.nextToken()
		rhs := p.parseAdditiveExp()
		lhs = &ast.BinaryExp{Op: op, Lhs: lhs, Rhs: rhs}
	}
}

func (p *Parser) parseAdditiveExp() ast.Exp {
	lhs := p.parseMultiplicativeExp()
	for p.curTokenIs(token.TokenPlus) || p.curTokenIs(token.TokenMinus) {
		op := ast.Plus
		if p.curTokenIs(token.TokenMinus) {
			op = ast.Minus
		}
		p.nextToken()
		rhs := p.parseMultiplicativeExp()
		lhs = &ast.BinaryExp{Op: op, Lhs: lhs, Rhs: rhs}
	}
	return lhs
}

func (p *Parser) parseMultiplicativeExp() ast.Exp {
	lhs := p.parseUnaryExp()
	for p.curTokenIs(token.TokenAsterisk) || p.curTokenIs(token.TokenSlash) {
		op := ast.Times
		if p.curTokenIs(token.TokenSlash) {
			op = ast.Divide
		}
		p.nextToken()
		rhs := p.parseUnaryExp()
		lhs = &ast.BinaryExp{Op: op, Lhs: lhs, Rhs: rhs}
	}
	return lhs
}

func (p *Parser) parseUnaryExp() ast.Exp {
	switch p.curTok.Type {
	case token.TokenMinus:
		p.nextToken()
		return &ast.UnaryMinus{Exp: p.parseUnaryExp()}
	case token.TokenNot:
		p.nextToken()
		return &ast.Not{Exp: p.parseUnaryExp()}
	default:
		return p.parsePrimaryExp()
	}
}

func (p *Parser) parsePrimaryExp() ast.Exp {
	switch p.curTok.Type {
	case token.TokenIntLit:
		tok := p.curTok
		v, err := strconv.Atoi(tok.Literal)
		if err != nil {
			p.addError("%d:%d: integer literal too large: %q", tok.Line, tok.Column, tok.Literal)
		}
		p.nextToken()
		return &ast.IntLit{Tok: tok, Value: v}
	case token.TokenString:
		tok := p.curTok
		p.nextToken()
		return &ast.StrLit{Tok: tok, Value: tok.Literal}
	case token.TokenTrue:
		tok := p.curTok
		p.nextToken()
		return &ast.TrueLit{Tok: tok}
	case token.TokenFalse:
		tok := p.curTok
		p.nextToken()
		return &ast.FalseLit{Tok: tok}
	case token.TokenLParen:
		p.nextToken()
		exp := p.parseExp()
		p.expect(token.TokenRParen)
		return exp
	case token.TokenIdent:
		if p.peekTokenIs(token.TokenLParen) {
			return p.parseCallExp()
		}
		return p.parseLoc()
	default:
		p.addError("%d:%d: expected expression, got %q", p.curTok.Line, p.curTok.Column, p.curTok.Literal)
		tok := p.curTok
		p.nextToken()
		return &ast.IntLit{Tok: tok}
	}
}

// parseLoc parses an identifier with any chain of dot-accesses.
func (p *Parser) parseLoc() ast.Exp {
	if !p.curTokenIs(token.TokenIdent) {
		p.addError("%d:%d: expected identifier, got %q", p.curTok.Line, p.curTok.Column, p.curTok.Literal)
		tok := p.curTok
		p.nextToken()
		return &ast.IntLit{Tok: tok}
	}
	var loc ast.Exp = identFrom(p.curTok)
	p.nextToken()
	for p.curTokenIs(token.TokenDot) {
		p.nextToken()
		if !p.curTokenIs(token.TokenIdent) {
			p.addError("%d:%d: expected field name, got %q", p.curTok.Line, p.curTok.Column, p.curTok.Literal)
			break
		}
		loc = &ast.DotAccess{Loc: loc, ID: identFrom(p.curTok)}
		p.nextToken()
	}
	return loc
}

func (p *Parser) parseCallExp() *ast.CallExp {
	id := identFrom(p.curTok)
	p.nextToken()
	p.expect(token.TokenLParen)

	var args []ast.Exp
	for !p.curTokenIs(token.TokenRParen) && !p.curTokenIs(token.TokenEOF) {
		args = append(args, p.parseExp())
		if p.curTokenIs(token.TokenComma) {
			p.nextToken()
		} else {
			break
		}
	}
	p.expect(token.TokenRParen)
	return &ast.CallExp{ID: id, Args: args}
}

func identFrom(tok token.Token) *ast.Ident {
	return &ast.Ident{Tok: tok, Name: tok.Literal}
}
