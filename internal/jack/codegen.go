package jack

import (
	"fmt"

	"go.uber.org/zap"
)

// Generator is the tree-walking code generator of spec §4.3.4: it walks a
// *Class built by Parser and writes VM commands through an Emitter. This
// replaces the teacher's inline codegen (interleaved into
// recursive_decent_parser.go's compileX methods) with methods that walk
// AST nodes instead of advancing a token scanner, while keeping the
// teacher's per-class label-counter and symbol-table approach.
type Generator struct {
	out          Emitter
	symtab       *SymbolTable
	log          *zap.SugaredLogger
	className    string
	labelCounter int
	subKind      SubroutineKind
}

func NewGenerator(out Emitter, symtab *SymbolTable, log *zap.SugaredLogger) *Generator {
	return &Generator{out: out, symtab: symtab, log: log}
}

// Generate emits VM code for an entire class.
func (g *Generator) Generate(class *Class) error {
	g.className = class.Name
	g.symtab.ResetClass()

	if g.log != nil {
		g.log.Debugw("generating class", "class", class.Name, "subroutines", len(class.Subroutines))
	}

	for _, dec := range class.Variables {
		for _, name := range dec.Names {
			if _, err := g.symtab.Declare(name, dec.Type, dec.Scope); err != nil {
				return err
			}
		}
	}

	for _, sub := range class.Subroutines {
		if err := g.generateSubroutine(class, sub); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) generateSubroutine(class *Class, sub SubroutineDec) error {
	g.symtab.ResetSubroutine()
	g.subKind = sub.Kind

	if sub.Kind == KindMethod {
		if _, err := g.symtab.Declare("this", class.Name, ScopeArgument); err != nil {
			return err
		}
	}
	for _, param := range sub.Params {
		if _, err := g.symtab.Declare(param.Name, param.Type, ScopeArgument); err != nil {
			return err
		}
	}

	var nlocals uint16
	for _, local := range sub.Body.Locals {
		for _, name := range local.Names {
			if _, err := g.symtab.Declare(name, local.Type, ScopeLocal); err != nil {
				return err
			}
			nlocals++
		}
	}

	g.out.WriteFunction(class.Name+"."+sub.Name, nlocals)

	if g.log != nil {
		g.log.Debugw("generating subroutine", "name", class.Name+"."+sub.Name, "kind", sub.Kind, "locals", nlocals)
	}

	switch sub.Kind {
	case KindConstructor:
		nfields := g.symtab.Count(ScopeField)
		if nfields < 1 {
			nfields = 1
		}
		g.out.WritePush(SegConst, nfields)
		g.out.WriteCall("Memory.alloc", 1)
		g.out.WritePop(SegPointer, 0)
	case KindMethod:
		g.out.WritePush(SegArgument, 0)
		g.out.WritePop(SegPointer, 0)
	}

	return g.generateStatements(sub.Body.Statements)
}

func (g *Generator) generateStatements(stmts []Statement) error {
	for _, s := range stmts {
		if err := g.generateStatement(s); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) generateStatement(s Statement) error {
	switch {
	case s.Let != nil:
		return g.generateLet(*s.Let)
	case s.If != nil:
		return g.generateIf(*s.If)
	case s.While != nil:
		return g.generateWhile(*s.While)
	case s.Do != nil:
		if err := g.generateCall(*s.Do); err != nil {
			return err
		}
		g.out.WritePop(SegTemp, 0)
		return nil
	case s.Return != nil:
		return g.generateReturn(*s.Return)
	default:
		return fmt.Errorf("jack: internal error: empty statement node")
	}
}

func (g *Generator) generateLet(s LetStatement) error {
	if s.Index == nil {
		if err := g.generateExpr(s.Value); err != nil {
			return err
		}
		segment, index, err := g.resolveVariable(s.Name)
		if err != nil {
			return err
		}
		g.out.WritePop(segment, index)
		return nil
	}

	if err := g.generateExpr(s.Value); err != nil {
		return err
	}
	if err := g.generateExpr(*s.Index); err != nil {
		return err
	}
	segment, index, err := g.resolveVariable(s.Name)
	if err != nil {
		return err
	}
	g.out.WritePush(segment, index)
	g.out.WriteArithmetic(OpAdd)
	g.out.WritePop(SegPointer, 1)
	g.out.WritePop(SegThat, 0)
	return nil
}

func (g *Generator) generateIf(s IfStatement) error {
	k := g.nextLabel()
	ifTrue := fmt.Sprintf("IF_TRUE%d", k)
	ifFalse := fmt.Sprintf("IF_FALSE%d", k)
	ifEnd := fmt.Sprintf("IF_END%d", k)

	if err := g.generateExpr(s.Cond); err != nil {
		return err
	}
	g.out.WriteIf(ifTrue)
	g.out.WriteGoto(ifFalse)
	g.out.WriteLabel(ifTrue)
	if err := g.generateStatements(s.Then); err != nil {
		return err
	}
	if s.Else != nil {
		g.out.WriteGoto(ifEnd)
	}
	g.out.WriteLabel(ifFalse)
	if s.Else != nil {
		if err := g.generateStatements(s.Else); err != nil {
			return err
		}
		g.out.WriteLabel(ifEnd)
	}
	return nil
}

func (g *Generator) generateWhile(s WhileStatement) error {
	k := g.nextLabel()
	whileExp := fmt.Sprintf("WHILE_EXP%d", k)
	whileEnd := fmt.Sprintf("WHILE_END%d", k)

	g.out.WriteLabel(whileExp)
	if err := g.generateExpr(s.Cond); err != nil {
		return err
	}
	g.out.WriteArithmetic(OpNot)
	g.out.WriteIf(whileEnd)
	if err := g.generateStatements(s.Body); err != nil {
		return err
	}
	g.out.WriteGoto(whileExp)
	g.out.WriteLabel(whileEnd)
	return nil
}

func (g *Generator) generateReturn(s ReturnStatement) error {
	if s.Value == nil {
		g.out.WritePush(SegConst, 0)
	} else if err := g.generateExpr(*s.Value); err != nil {
		return err
	}
	g.out.WriteReturn()
	return nil
}

func (g *Generator) generateExpr(e Expr) error {
	if err := g.generateTerm(e.LHS); err != nil {
		return err
	}
	for _, ot := range e.RHS {
		if err := g.generateTerm(ot.Term); err != nil {
			return err
		}
		g.out.WriteArithmetic(binaryOpcode(ot.Op))
	}
	return nil
}

func binaryOpcode(op byte) Operation {
	switch op {
	case '+':
		return OpAdd
	case '-':
		return OpSub
	case '*':
		return OpMul
	case '/':
		return OpDiv
	case '&':
		return OpAnd
	case '|':
		return OpOr
	case '<':
		return OpLt
	case '>':
		return OpGt
	case '=':
		return OpEq
	}
	return ""
}

func (g *Generator) generateTerm(t Term) error {
	switch {
	case t.Integer != nil:
		g.out.WritePush(SegConst, uint16(*t.Integer))
		return nil
	case t.Str != nil:
		g.out.WriteStringConstant(*t.Str)
		return nil
	case t.True:
		g.out.WritePush(SegConst, 0)
		g.out.WriteArithmetic(OpNot)
		return nil
	case t.False, t.Null:
		g.out.WritePush(SegConst, 0)
		return nil
	case t.This:
		g.out.WritePush(SegPointer, 0)
		return nil
	case t.Var != nil:
		segment, index, err := g.resolveVariable(t.Var.Name)
		if err != nil {
			return err
		}
		g.out.WritePush(segment, index)
		return nil
	case t.Access != nil:
		if err := g.generateExpr(*t.Access.Index); err != nil {
			return err
		}
		segment, index, err := g.resolveVariable(t.Access.Name)
		if err != nil {
			return err
		}
		g.out.WritePush(segment, index)
		g.out.WriteArithmetic(OpAdd)
		g.out.WritePop(SegPointer, 1)
		g.out.WritePush(SegThat, 0)
		return nil
	case t.Call != nil:
		return g.generateCall(*t.Call)
	case t.Group != nil:
		return g.generateExpr(*t.Group)
	case t.Unary != nil:
		if err := g.generateTerm(*t.Unary.Term); err != nil {
			return err
		}
		g.out.WriteArithmetic(unaryOpcode(t.Unary.Op))
		return nil
	default:
		return fmt.Errorf("jack: internal error: empty term node")
	}
}

func unaryOpcode(op byte) Operation {
	switch op {
	case '-':
		return OpNeg
	case '~':
		return OpNot
	}
	return ""
}

// generateCall emits a subroutine call term (the shared logic for both Do
// statements and Call terms), per spec §4.3.4's two call shapes.
func (g *Generator) generateCall(call SubroutineCall) error {
	if !call.IsMethod() {
		if g.subKind != KindMethod && g.subKind != KindConstructor {
			return fmt.Errorf("jack: unqualified call to %q is only allowed inside a method or constructor", call.Name)
		}
		g.out.WritePush(SegPointer, 0)
		for _, arg := range call.Args {
			if err := g.generateExpr(arg); err != nil {
				return err
			}
		}
		g.out.WriteCall(g.className+"."+call.Name, uint16(len(call.Args))+1)
		return nil
	}

	if sym, ok := g.symtab.Lookup(call.Receiver); ok {
		if g.log != nil {
			g.log.Debugw("method dispatch", "receiver", call.Receiver, "type", sym.Type, "call", call.Name)
		}
		segment, index := mapSegment(sym.Scope), sym.Index
		g.out.WritePush(segment, index)
		for _, arg := range call.Args {
			if err := g.generateExpr(arg); err != nil {
				return err
			}
		}
		g.out.WriteCall(sym.Type+"."+call.Name, uint16(len(call.Args))+1)
		return nil
	}

	for _, arg := range call.Args {
		if err := g.generateExpr(arg); err != nil {
			return err
		}
	}
	g.out.WriteCall(call.Receiver+"."+call.Name, uint16(len(call.Args)))
	return nil
}

func (g *Generator) resolveVariable(name string) (Segment, uint16, error) {
	sym, ok := g.symtab.Lookup(name)
	if !ok {
		return "", 0, fmt.Errorf("jack: undefined variable %q", name)
	}
	return mapSegment(sym.Scope), sym.Index, nil
}

func mapSegment(scope VarScope) Segment {
	switch scope {
	case ScopeStatic:
		return SegStatic
	case ScopeField:
		return SegThis
	case ScopeArgument:
		return SegArgument
	case ScopeLocal:
		return SegLocal
	}
	return ""
}

func (g *Generator) nextLabel() int {
	k := g.labelCounter
	g.labelCounter++
	return k
}
