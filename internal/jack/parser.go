package jack

import (
	"fmt"
)

// Parser is a recursive-descent parser producing the typed tree of spec
// §3.3 — the teacher (libklein-jackcompiler's recursive_decent_parser.go)
// interleaves exactly this grammar with VM emission; here the same
// grammar only builds AST nodes, and a separate Generator (codegen.go)
// walks the result. Parse errors are signaled by panicking with an error
// value (matching the teacher's panic-on-mismatch style) and recovered at
// the Parse entry point into a returned error — spec §4.4: "all parse
// errors ... are fatal with a descriptive message. No error recovery."
type Parser struct {
	lex *Lexer
}

func NewParser(lex *Lexer) *Parser {
	return &Parser{lex: lex}
}

func (p *Parser) cur() Token  { return p.lex.Current() }
func (p *Parser) peek() Token { return p.lex.Peek() }

func (p *Parser) advance() Token {
	if err := p.lex.Advance(); err != nil {
		panic(err)
	}
	return p.cur()
}

// consume advances past each expected terminal in order, panicking if the
// current token doesn't match.
func (p *Parser) consume(expected ...string) {
	if len(expected) == 0 {
		p.advance()
		return
	}
	for _, want := range expected {
		if !IsTerminal(p.cur(), want) {
			panic(fmt.Errorf("jack: expected %q, got %q", want, p.cur().Terminal))
		}
		p.advance()
	}
}

// Parse runs the parser over a whole compilation unit (one class) and
// recovers any internal panic into a returned error.
func (p *Parser) Parse() (class *Class, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("jack: %v", r)
			}
		}
	}()
	class = p.parseClass()
	return class, nil
}

func (p *Parser) parseClass() *Class {
	p.consume("class")

	name, err := parseIdentifier(p.cur())
	if err != nil {
		panic(err)
	}
	p.advance()

	p.consume("{")

	class := &Class{Name: name}
	for {
		dec, ok := p.tryParseClassVarDec()
		if !ok {
			break
		}
		class.Variables = append(class.Variables, dec)
	}
	for {
		dec, ok := p.tryParseSubroutineDec()
		if !ok {
			break
		}
		class.Subroutines = append(class.Subroutines, dec)
	}

	if p.cur().Terminal != "}" {
		panic(fmt.Errorf("jack: expected '}' to close class %q, got %q", name, p.cur().Terminal))
	}
	if err := p.lex.Advance(); err != nil {
		panic(err)
	}
	if p.cur().Kind != KindEOF {
		panic(fmt.Errorf("jack: unexpected content after class %q", name))
	}

	return class
}

func (p *Parser) tryParseClassVarDec() (ClassVarDec, bool) {
	var scope VarScope
	switch {
	case IsTerminal(p.cur(), "static"):
		scope = ScopeStatic
	case IsTerminal(p.cur(), "field"):
		scope = ScopeField
	default:
		return ClassVarDec{}, false
	}
	p.advance()

	typ, names := p.parseVarSequence()
	return ClassVarDec{Scope: scope, Type: typ, Names: names}, true
}

// parseVarSequence parses "type name (, name)* ;" and returns the declared
// type and variable names, shared by class-var and local-var declarations.
func (p *Parser) parseVarSequence() (string, []string) {
	typ, err := parseType(p.cur())
	if err != nil {
		panic(err)
	}
	p.advance()

	var names []string
	for {
		name, err := parseIdentifier(p.cur())
		if err != nil {
			panic(err)
		}
		p.advance()
		names = append(names, name)

		if IsTerminal(p.cur(), ",") {
			p.consume(",")
			continue
		}
		break
	}
	p.consume(";")
	return typ, names
}

func (p *Parser) tryParseSubroutineDec() (SubroutineDec, bool) {
	kind, err := parseSubroutineKind(p.cur())
	if err != nil {
		return SubroutineDec{}, false
	}
	p.advance()

	returnType := p.cur().Terminal
	p.advance()

	name, err := parseIdentifier(p.cur())
	if err != nil {
		panic(err)
	}
	p.advance()

	p.consume("(")
	var params []Param
	if !IsTerminal(p.cur(), ")") {
		params = p.parseParameterList()
	}
	p.consume(")")

	body := p.parseSubroutineBody()

	return SubroutineDec{Kind: kind, ReturnType: returnType, Name: name, Params: params, Body: body}, true
}

func (p *Parser) parseParameterList() []Param {
	var params []Param
	for {
		typ, err := parseType(p.cur())
		if err != nil {
			panic(err)
		}
		p.advance()
		name, err := parseIdentifier(p.cur())
		if err != nil {
			panic(err)
		}
		p.advance()
		params = append(params, Param{Type: typ, Name: name})

		if IsTerminal(p.cur(), ",") {
			p.consume(",")
			continue
		}
		break
	}
	return params
}

func (p *Parser) parseSubroutineBody() SubroutineBody {
	p.consume("{")
	var body SubroutineBody
	for IsTerminal(p.cur(), "var") {
		p.consume("var")
		typ, names := p.parseVarSequence()
		body.Locals = append(body.Locals, VarDec{Type: typ, Names: names})
	}
	body.Statements = p.parseStatements()
	p.consume("}")
	return body
}

func (p *Parser) parseStatements() []Statement {
	var stmts []Statement
	for !IsTerminal(p.cur(), "}") {
		stmts = append(stmts, p.parseStatement())
	}
	return stmts
}

func (p *Parser) parseStatement() Statement {
	switch {
	case IsTerminal(p.cur(), "let"):
		s := p.parseLet()
		return Statement{Let: &s}
	case IsTerminal(p.cur(), "if"):
		s := p.parseIf()
		return Statement{If: &s}
	case IsTerminal(p.cur(), "while"):
		s := p.parseWhile()
		return Statement{While: &s}
	case IsTerminal(p.cur(), "do"):
		call := p.parseDo()
		return Statement{Do: &call}
	case IsTerminal(p.cur(), "return"):
		s := p.parseReturn()
		return Statement{Return: &s}
	default:
		panic(fmt.Errorf("jack: unexpected token %q, expected a statement", p.cur().Terminal))
	}
}

func (p *Parser) parseDo() SubroutineCall {
	p.consume("do")
	name, err := parseIdentifier(p.cur())
	if err != nil {
		panic(err)
	}
	p.advance()
	call := p.parseSubroutineCallTail(name)
	p.consume(";")
	return call
}

func (p *Parser) parseLet() LetStatement {
	p.consume("let")
	name, err := parseIdentifier(p.cur())
	if err != nil {
		panic(err)
	}
	p.advance()

	var index *Expr
	if IsTerminal(p.cur(), "[") {
		p.consume("[")
		e := p.parseExpression()
		index = &e
		p.consume("]")
	}

	p.consume("=")
	value := p.parseExpression()
	p.consume(";")

	return LetStatement{Name: name, Index: index, Value: value}
}

func (p *Parser) parseWhile() WhileStatement {
	p.consume("while", "(")
	cond := p.parseExpression()
	p.consume(")", "{")
	body := p.parseStatements()
	p.consume("}")
	return WhileStatement{Cond: cond, Body: body}
}

func (p *Parser) parseIf() IfStatement {
	p.consume("if", "(")
	cond := p.parseExpression()
	p.consume(")", "{")
	thenBody := p.parseStatements()
	p.consume("}")

	var elseBody []Statement
	if IsTerminal(p.cur(), "else") {
		p.consume("else", "{")
		elseBody = p.parseStatements()
		p.consume("}")
	}

	return IfStatement{Cond: cond, Then: thenBody, Else: elseBody}
}

func (p *Parser) parseReturn() ReturnStatement {
	p.consume("return")
	if IsTerminal(p.cur(), ";") {
		p.consume(";")
		return ReturnStatement{}
	}
	e := p.parseExpression()
	p.consume(";")
	return ReturnStatement{Value: &e}
}

// parseExpression implements the deliberately flat grammar of §4.3.2:
// `expression = term (op term)*`, no precedence.
func (p *Parser) parseExpression() Expr {
	lhs := p.parseTerm()
	var rhs []OpTerm
	for isBinaryOp(p.cur()) {
		op := p.cur().Terminal[0]
		p.advance()
		rhs = append(rhs, OpTerm{Op: op, Term: p.parseTerm()})
	}
	return Expr{LHS: lhs, RHS: rhs}
}

func (p *Parser) parseExpressionList() []Expr {
	var exprs []Expr
	if IsTerminal(p.cur(), ")") {
		return exprs
	}
	for {
		exprs = append(exprs, p.parseExpression())
		if IsTerminal(p.cur(), ",") {
			p.consume(",")
			continue
		}
		break
	}
	return exprs
}

// parseSubroutineCallTail parses the `(args)` or `.name(args)` continuation
// after a bare identifier has already been consumed as `name`.
func (p *Parser) parseSubroutineCallTail(name string) SubroutineCall {
	switch p.cur().Terminal {
	case ".":
		p.consume(".")
		method, err := parseIdentifier(p.cur())
		if err != nil {
			panic(err)
		}
		p.advance()
		p.consume("(")
		args := p.parseExpressionList()
		p.consume(")")
		return SubroutineCall{Receiver: name, Name: method, Args: args}
	case "(":
		p.consume("(")
		args := p.parseExpressionList()
		p.consume(")")
		return SubroutineCall{Name: name, Args: args}
	default:
		panic(fmt.Errorf("jack: expected '(' or '.' after %q, got %q", name, p.cur().Terminal))
	}
}

func (p *Parser) parseTerm() Term {
	tok := p.cur()
	switch {
	case IsKind(tok, KindIntegerConstant):
		n, err := tok.AsInt()
		if err != nil {
			panic(err)
		}
		p.advance()
		return Term{Integer: &n}
	case IsKind(tok, KindStringConstant):
		s := tok.Terminal
		p.advance()
		return Term{Str: &s}
	case IsKind(tok, KindKeyword):
		return p.parseKeywordTerm(tok)
	case IsTerminal(tok, "("):
		p.consume("(")
		e := p.parseExpression()
		p.consume(")")
		return Term{Group: &e}
	case isUnaryOp(tok):
		op := tok.Terminal[0]
		p.advance()
		sub := p.parseTerm()
		return Term{Unary: &UnaryTerm{Op: op, Term: &sub}}
	default:
		return p.parseVarNameTerm()
	}
}

func (p *Parser) parseKeywordTerm(tok Token) Term {
	switch {
	case IsTerminal(tok, "true"):
		p.advance()
		return Term{True: true}
	case IsTerminal(tok, "false"):
		p.advance()
		return Term{False: true}
	case IsTerminal(tok, "null"):
		p.advance()
		return Term{Null: true}
	case IsTerminal(tok, "this"):
		p.advance()
		return Term{This: true}
	default:
		panic(fmt.Errorf("jack: unexpected keyword %q in expression", tok.Terminal))
	}
}

func (p *Parser) parseVarNameTerm() Term {
	name, err := parseIdentifier(p.cur())
	if err != nil {
		panic(fmt.Errorf("jack: unable to parse variable or call name: %w", err))
	}
	p.advance()

	switch p.cur().Terminal {
	case "[":
		p.consume("[")
		idx := p.parseExpression()
		p.consume("]")
		return Term{Access: &AccessTerm{Name: name, Index: &idx}}
	case "(", ".":
		call := p.parseSubroutineCallTail(name)
		return Term{Call: &call}
	default:
		return Term{Var: &VarTerm{Name: name}}
	}
}

func isBinaryOp(t Token) bool {
	return IsTerminal(t, "+", "-", "*", "/", "&", "|", "<", ">", "=")
}

func isUnaryOp(t Token) bool {
	return IsTerminal(t, "-", "~")
}

func parseType(t Token) (string, error) {
	if IsTerminal(t, "int", "char", "boolean") {
		return t.Terminal, nil
	}
	return parseIdentifier(t)
}

func parseIdentifier(t Token) (string, error) {
	if t.Kind != KindIdentifier {
		return t.Terminal, fmt.Errorf("jack: invalid identifier %q", t.Terminal)
	}
	return t.Terminal, nil
}

func parseSubroutineKind(t Token) (SubroutineKind, error) {
	if IsTerminal(t, "function", "constructor", "method") {
		return SubroutineKind(t.Terminal), nil
	}
	return "", fmt.Errorf("jack: expected \"function\", \"constructor\" or \"method\", got %q", t.Terminal)
}
