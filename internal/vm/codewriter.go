package vm

import (
	"fmt"
	"io"
)

// CodeWriter is a stateful emitter: one call sequence per output handle,
// tracking the current module (for `static`), the current enclosing
// function (for function-scoped labels), and two monotonic counters for
// unique eq/gt/lt and return labels. Ported from
// original_source/vm-to-asm/src/code_writer.rs's write_* methods.
type CodeWriter struct {
	out             io.Writer
	module          string
	currentFunction string
	jumpCounter     int
	returnCounter   int
}

func NewCodeWriter(w io.Writer) *CodeWriter {
	return &CodeWriter{out: w}
}

// SetModule must be called before translating push/pop static commands
// from a new input file, since `static i` expands to `<module>.i`.
func (c *CodeWriter) SetModule(name string) {
	c.module = name
}

func (c *CodeWriter) write(lines ...string) {
	for _, l := range lines {
		io.WriteString(c.out, l)
		io.WriteString(c.out, "\n")
	}
}

// WriteInit emits the bootstrap sequence: SP <- 256, call Sys.init 0.
func (c *CodeWriter) WriteInit() error {
	c.write(
		"@256",
		"D=A",
		"@SP",
		"M=D",
	)
	return c.WriteCall("Sys.init", 0)
}

func (c *CodeWriter) WriteArithmetic(op string) error {
	switch op {
	case "add":
		c.popToD()
		c.write("A=A-1", "M=D+M")
	case "sub":
		c.popToD()
		c.write("A=A-1", "M=M-D")
	case "and":
		c.popToD()
		c.write("A=A-1", "M=D&M")
	case "or":
		c.popToD()
		c.write("A=A-1", "M=D|M")
	case "neg":
		c.write("@SP", "A=M-1", "M=-M")
	case "not":
		c.write("@SP", "A=M-1", "M=!M")
	case "eq", "gt", "lt":
		return c.writeComparison(op)
	default:
		return fmt.Errorf("vm: unknown arithmetic command %q", op)
	}
	return nil
}

func (c *CodeWriter) popToD() {
	c.write("@SP", "AM=M-1", "D=M")
}

var jumpMnemonic = map[string]string{"eq": "JEQ", "gt": "JGT", "lt": "JLT"}

func (c *CodeWriter) writeComparison(op string) error {
	id := c.jumpCounter
	c.jumpCounter++
	trueLabel := fmt.Sprintf("__%s_%s_%d_true", c.module, op, id)
	endLabel := fmt.Sprintf("__%s_%s_%d_end", c.module, op, id)

	c.popToD()
	c.write(
		"A=A-1",
		"D=M-D",
		"@"+trueLabel,
		"D;"+jumpMnemonic[op],
		"@SP",
		"A=M-1",
		"M=0",
		"@"+endLabel,
		"0;JMP",
		"("+trueLabel+")",
		"@SP",
		"A=M-1",
		"M=-1",
		"("+endLabel+")",
	)
	return nil
}

func (c *CodeWriter) WritePushPop(cmdType CommandType, segment string, index uint16) error {
	switch cmdType {
	case CmdPush:
		return c.writePush(segment, index)
	case CmdPop:
		return c.writePop(segment, index)
	default:
		return fmt.Errorf("vm: WritePushPop called with non push/pop command")
	}
}

func segmentBase(segment string) (string, bool) {
	switch segment {
	case "argument":
		return "ARG", true
	case "local":
		return "LCL", true
	case "this":
		return "THIS", true
	case "that":
		return "THAT", true
	}
	return "", false
}

func (c *CodeWriter) writePush(segment string, index uint16) error {
	switch segment {
	case "constant":
		c.write(fmt.Sprintf("@%d", index), "D=A")
	case "argument", "local", "this", "that":
		base, _ := segmentBase(segment)
		c.write(fmt.Sprintf("@%d", index), "D=A", "@"+base, "A=D+M", "D=M")
	case "pointer":
		reg, err := pointerRegister(index)
		if err != nil {
			return err
		}
		c.write("@"+reg, "D=M")
	case "temp":
		if index > 7 {
			return fmt.Errorf("vm: temp index %d out of range [0,7]", index)
		}
		c.write(fmt.Sprintf("@%d", 5+index), "D=M")
	case "static":
		c.write(fmt.Sprintf("@%s.%d", c.module, index), "D=M")
	default:
		return fmt.Errorf("vm: unknown segment %q", segment)
	}
	c.write("@SP", "M=M+1", "A=M-1", "M=D")
	return nil
}

func (c *CodeWriter) writePop(segment string, index uint16) error {
	if segment == "constant" {
		return fmt.Errorf("vm: cannot pop into read-only segment constant")
	}

	switch segment {
	case "argument", "local", "this", "that":
		base, _ := segmentBase(segment)
		c.write(fmt.Sprintf("@%d", index), "D=A", "@"+base, "D=D+M", "@R13", "M=D")
		c.popToD()
		c.write("@R13", "A=M", "M=D")
	case "pointer":
		reg, err := pointerRegister(index)
		if err != nil {
			return err
		}
		c.popToD()
		c.write("@"+reg, "M=D")
	case "temp":
		if index > 7 {
			return fmt.Errorf("vm: temp index %d out of range [0,7]", index)
		}
		c.popToD()
		c.write(fmt.Sprintf("@%d", 5+index), "M=D")
	case "static":
		c.popToD()
		c.write(fmt.Sprintf("@%s.%d", c.module, index), "M=D")
	default:
		return fmt.Errorf("vm: unknown segment %q", segment)
	}
	return nil
}

func pointerRegister(index uint16) (string, error) {
	switch index {
	case 0:
		return "THIS", nil
	case 1:
		return "THAT", nil
	default:
		return "", fmt.Errorf("vm: pointer index %d out of range [0,1]", index)
	}
}

// localLabel decorates a VM-level label with the enclosing function's
// name, per spec §4.2.2: "labels are function-scoped and decorated as
// <fn>_local__<label>". This deliberately scopes by the current function
// rather than the module, differing from the original Rust implementation
// — see SPEC_FULL.md §4.2 and DESIGN.md.
func (c *CodeWriter) localLabel(label string) string {
	return c.currentFunction + "_local__" + label
}

func (c *CodeWriter) WriteLabel(label string) error {
	if !IsValidLabel(label) {
		return fmt.Errorf("vm: invalid label %q", label)
	}
	c.write("(" + c.localLabel(label) + ")")
	return nil
}

func (c *CodeWriter) WriteGoto(label string) error {
	if !IsValidLabel(label) {
		return fmt.Errorf("vm: invalid label %q", label)
	}
	c.write("@"+c.localLabel(label), "0;JMP")
	return nil
}

func (c *CodeWriter) WriteIf(label string) error {
	if !IsValidLabel(label) {
		return fmt.Errorf("vm: invalid label %q", label)
	}
	c.popToD()
	c.write("@"+c.localLabel(label), "D;JNE")
	return nil
}

func (c *CodeWriter) WriteFunction(name string, nlocals uint16) error {
	c.currentFunction = name
	c.write("(" + name + ")")
	for i := uint16(0); i < nlocals; i++ {
		c.write("@SP", "M=M+1", "A=M-1", "M=0")
	}
	return nil
}

func (c *CodeWriter) WriteCall(name string, nargs uint16) error {
	id := c.returnCounter
	c.returnCounter++
	returnLabel := fmt.Sprintf("%s__return_%d", name, id)

	c.write(
		"@"+returnLabel, "D=A", "@SP", "M=M+1", "A=M-1", "M=D",
		"@LCL", "D=M", "@SP", "M=M+1", "A=M-1", "M=D",
		"@ARG", "D=M", "@SP", "M=M+1", "A=M-1", "M=D",
		"@THIS", "D=M", "@SP", "M=M+1", "A=M-1", "M=D",
		"@THAT", "D=M", "@SP", "M=M+1", "A=M-1", "M=D",
	)
	c.write(
		fmt.Sprintf("@%d", nargs+5), "D=A", "@SP", "D=M-D", "@ARG", "M=D",
		"@SP", "D=M", "@LCL", "M=D",
		"@"+name, "0;JMP",
		"(" + returnLabel + ")",
	)
	return nil
}

// WriteReturn implements the frame save/restore sequence: FRAME (R13) <-
// LCL, retAddr (R14) <- *(FRAME-5), *ARG <- pop(), SP <- ARG+1, then
// restore THAT/THIS/ARG/LCL from FRAME-1..FRAME-4, jump to retAddr.
func (c *CodeWriter) WriteReturn() error {
	c.write(
		"@LCL", "D=M", "@R13", "M=D", // FRAME = LCL
		"@5", "A=D-A", "D=M", "@R14", "M=D", // retAddr = *(FRAME-5)
	)
	c.popToD()
	c.write(
		"@ARG", "A=M", "M=D", // *ARG = pop()
		"@ARG", "D=M+1", "@SP", "M=D", // SP = ARG+1
		"@R13", "AM=M-1", "D=M", "@THAT", "M=D", // THAT = *(FRAME-1)
		"@R13", "AM=M-1", "D=M", "@THIS", "M=D", // THIS = *(FRAME-2)
		"@R13", "AM=M-1", "D=M", "@ARG", "M=D", // ARG = *(FRAME-3)
		"@R13", "AM=M-1", "D=M", "@LCL", "M=D", // LCL = *(FRAME-4)
		"@R14", "A=M", "0;JMP", // jump to retAddr
	)
	return nil
}

// IsValidLabel enforces spec §4.2.2's label-validation rule: non-empty,
// first character not a digit, remaining characters in [A-Za-z0-9._:].
func IsValidLabel(label string) bool {
	if len(label) == 0 {
		return false
	}
	if label[0] >= '0' && label[0] <= '9' {
		return false
	}
	for _, r := range label {
		if !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' ||
			r == '.' || r == '_' || r == ':') {
			return false
		}
	}
	return true
}
