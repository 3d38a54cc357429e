package asm

import (
	"fmt"
	"strings"

	"github.com/pacokwon/n2t/internal/hack"
)

// lineInstruction pairs an instruction with its resolved line number (the
// address a following jump target refers to), mirroring
// original_source/assembler/src/pass.rs's line_resolution.
type lineInstruction struct {
	line uint16
	inst Instruction
}

// lineResolution assigns a sequential line number to every non-label
// instruction; a run of labels preceding an instruction all share that
// instruction's line number. A label chain that reaches EOF without a
// following instruction is a fatal error.
func lineResolution(insts []Instruction) ([]lineInstruction, error) {
	var out []lineInstruction
	i := 0
	var line uint16

	for i < len(insts) {
		if insts[i].Kind == InstLabel {
			start := i
			for i < len(insts) && insts[i].Kind == InstLabel {
				i++
			}
			if i >= len(insts) {
				return nil, fmt.Errorf("asm: reached end of file while resolving line for label(s) starting at index %d", start)
			}
			i++
			for l := start; l < i; l++ {
				out = append(out, lineInstruction{line: line, inst: insts[l]})
			}
			line++
		} else {
			out = append(out, lineInstruction{line: line, inst: insts[i]})
			line++
			i++
		}
	}
	return out, nil
}

// symbolResolution builds the full symbol table: the 23 reserved names,
// every label at its resolved line number, then every newly seen variable
// symbol at the next free address starting at 0x10. Register/jump
// mnemonics used as bare @-operands are folded in here too (the preserved
// open question — see spec §9).
func symbolResolution(insts []Instruction) (map[string]uint16, error) {
	lineInsts, err := lineResolution(insts)
	if err != nil {
		return nil, err
	}

	table := hack.ReservedSymbols()

	for _, li := range lineInsts {
		if li.inst.Kind == InstLabel {
			table[li.inst.Label] = li.line
		}
	}

	nextVar := hack.FirstVariableAddress
	for _, li := range lineInsts {
		if li.inst.Kind != InstAddress || li.inst.Operand.IsNumber {
			continue
		}
		name := li.inst.Operand.Symbol
		if _, ok := table[name]; !ok {
			table[name] = nextVar
			nextVar++
		}
	}

	return table, nil
}

// Translate runs all three passes and produces the joined, newline-separated
// machine code text (§4.1.3, pass 3 — emission).
func Translate(insts []Instruction) (string, error) {
	table, err := symbolResolution(insts)
	if err != nil {
		return "", err
	}

	var lines []string
	for _, inst := range insts {
		switch inst.Kind {
		case InstAddress:
			var value uint16
			if inst.Operand.IsNumber {
				value = inst.Operand.Number
			} else {
				addr, ok := table[inst.Operand.Symbol]
				if !ok {
					return "", fmt.Errorf("asm: symbol %q not found in table", inst.Operand.Symbol)
				}
				value = addr
			}
			line, err := hack.EncodeAInstruction(value)
			if err != nil {
				return "", err
			}
			if !hack.ValidLine(line) {
				return "", fmt.Errorf("asm: internal error: produced malformed line %q", line)
			}
			lines = append(lines, line)
		case InstCommand:
			line, err := hack.EncodeCInstruction(inst.Comp, inst.Dest, inst.Jump)
			if err != nil {
				return "", err
			}
			if !hack.ValidLine(line) {
				return "", fmt.Errorf("asm: internal error: produced malformed line %q", line)
			}
			lines = append(lines, line)
		case InstLabel:
			// skipped
		}
	}

	return strings.Join(lines, "\n"), nil
}

// Assemble is the top-level entry point: lex, parse, translate.
func Assemble(src string) (string, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return "", err
	}
	insts, err := NewParser(toks).Parse()
	if err != nil {
		return "", err
	}
	return Translate(insts)
}
