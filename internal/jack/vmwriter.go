package jack

import (
	"fmt"
	"io"
	"strconv"
)

// Segment is a VM memory segment as addressed from Jack's code generator
// (spec §4.3.4's segment mapping: Static->static, Field->this,
// Local->local, Argument->argument).
type Segment string

const (
	SegConst    Segment = "constant"
	SegArgument Segment = "argument"
	SegLocal    Segment = "local"
	SegStatic   Segment = "static"
	SegThis     Segment = "this"
	SegThat     Segment = "that"
	SegPointer  Segment = "pointer"
	SegTemp     Segment = "temp"
)

// Operation is a VM arithmetic/logical command.
type Operation string

const (
	OpAdd Operation = "add"
	OpSub Operation = "sub"
	OpNeg Operation = "neg"
	OpEq  Operation = "eq"
	OpGt  Operation = "gt"
	OpLt  Operation = "lt"
	OpAnd Operation = "and"
	OpOr  Operation = "or"
	OpNot Operation = "not"
	OpMul Operation = "mul" // not a real VM op; expanded to Math.multiply
	OpDiv Operation = "div" // not a real VM op; expanded to Math.divide
)

// Emitter is the sink codegen.go writes VM commands through, kept separate
// from the AST so the tree-walking generator has no I/O concerns of its
// own (SPEC_FULL.md glossary: "Emitter").
type Emitter interface {
	WritePush(Segment, uint16)
	WritePop(Segment, uint16)
	WriteArithmetic(Operation)
	WriteLabel(string)
	WriteGoto(string)
	WriteIf(string)
	WriteCall(string, uint16)
	WriteFunction(string, uint16)
	WriteReturn()
	WriteStringConstant(string)
}

// VMWriter is a straightforward io.Writer-backed Emitter, ported from the
// teacher's vm_writer.go.
type VMWriter struct {
	out io.Writer
}

func NewVMWriter(w io.Writer) *VMWriter {
	return &VMWriter{out: w}
}

func (w *VMWriter) writeCommand(cmd string) {
	io.WriteString(w.out, cmd)
	io.WriteString(w.out, "\n")
}

func (w *VMWriter) WritePush(segment Segment, index uint16) {
	w.writeCommand(fmt.Sprintf("push %s %d", segment, index))
}

func (w *VMWriter) WritePop(segment Segment, index uint16) {
	w.writeCommand(fmt.Sprintf("pop %s %d", segment, index))
}

func (w *VMWriter) WriteStringConstant(constant string) {
	w.WritePush(SegConst, uint16(len(constant)))
	w.WriteCall("String.new", 1)
	w.WritePop(SegTemp, 0)
	for _, c := range constant {
		w.WritePush(SegTemp, 0)
		w.WritePush(SegConst, uint16(c))
		w.WriteCall("String.appendChar", 2)
		w.WritePop(SegTemp, 1)
	}
	w.WritePush(SegTemp, 0)
}

func (w *VMWriter) WriteArithmetic(op Operation) {
	switch op {
	case OpDiv:
		w.WriteCall("Math.divide", 2)
	case OpMul:
		w.WriteCall("Math.multiply", 2)
	default:
		w.writeCommand(string(op))
	}
}

func (w *VMWriter) WriteLabel(label string)  { w.writeCommand("label " + label) }
func (w *VMWriter) WriteGoto(label string)   { w.writeCommand("goto " + label) }
func (w *VMWriter) WriteIf(label string)     { w.writeCommand("if-goto " + label) }
func (w *VMWriter) WriteReturn()             { w.writeCommand("return") }

func (w *VMWriter) WriteCall(name string, nargs uint16) {
	w.writeCommand("call " + name + " " + strconv.FormatUint(uint64(nargs), 10))
}

func (w *VMWriter) WriteFunction(name string, nlocals uint16) {
	w.writeCommand("function " + name + " " + strconv.FormatUint(uint64(nlocals), 10))
}
