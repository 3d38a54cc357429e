package asm

import (
	"fmt"

	"github.com/pacokwon/n2t/internal/hack"
)

// Parser groups a flat token stream into per-line Instruction values, per
// §4.1.2: split at Newline/Eof, discard empty lines, then classify each
// line as an Address, Label, or Command instruction.
type Parser struct {
	toks []Token
	pos  int
}

func NewParser(toks []Token) *Parser {
	return &Parser{toks: toks}
}

func (p *Parser) peek() Token {
	return p.toks[p.pos]
}

func (p *Parser) advance() Token {
	t := p.toks[p.pos]
	if t.Kind != TokEOF {
		p.pos++
	}
	return t
}

// Parse consumes the whole token stream and returns the instruction list.
func (p *Parser) Parse() ([]Instruction, error) {
	var insts []Instruction
	for {
		// discard blank lines
		for p.peek().Kind == TokNewline {
			p.advance()
		}
		if p.peek().Kind == TokEOF {
			return insts, nil
		}

		line := collectLine(p)
		if len(line) == 0 {
			continue
		}
		inst, err := parseLine(line)
		if err != nil {
			return nil, err
		}
		insts = append(insts, inst)
	}
}

func collectLine(p *Parser) []Token {
	var line []Token
	for p.peek().Kind != TokNewline && p.peek().Kind != TokEOF {
		line = append(line, p.advance())
	}
	if p.peek().Kind == TokNewline {
		p.advance()
	}
	return line
}

func parseLine(line []Token) (Instruction, error) {
	switch line[0].Kind {
	case TokAt:
		return parseAddress(line)
	case TokLParen:
		return parseLabel(line)
	default:
		return parseCommand(line)
	}
}

func parseAddress(line []Token) (Instruction, error) {
	if len(line) != 2 {
		return Instruction{}, fmt.Errorf("asm: malformed address instruction at line %d", line[0].Line)
	}
	operand, err := parseOperand(line[1])
	if err != nil {
		return Instruction{}, err
	}
	return Instruction{Kind: InstAddress, Operand: operand}, nil
}

// parseOperand accepts a number, a plain symbol, or — per the preserved
// open question — a bare register/jump mnemonic re-interpreted as a
// symbolic name (e.g. "@A" becomes Address(Symbol("A"))).
func parseOperand(t Token) (Operand, error) {
	switch t.Kind {
	case TokNumber:
		return Operand{IsNumber: true, Number: t.Number}, nil
	case TokSymbol:
		return Operand{Symbol: t.Text}, nil
	case TokRegister, TokJump:
		return Operand{Symbol: t.Text}, nil
	default:
		return Operand{}, fmt.Errorf("asm: invalid operand for address instruction at line %d", t.Line)
	}
}

func parseLabel(line []Token) (Instruction, error) {
	if len(line) != 3 || line[1].Kind != TokSymbol || line[2].Kind != TokRParen {
		return Instruction{}, fmt.Errorf("asm: malformed label declaration at line %d", line[0].Line)
	}
	return Instruction{Kind: InstLabel, Label: line[1].Text}, nil
}

// parseCommand parses "[dest=]comp[;jump]".
func parseCommand(line []Token) (Instruction, error) {
	idx := 0
	dest := hack.DestNull

	if eq := indexOfEqual(line); eq >= 0 {
		d, err := parseDest(line[:eq])
		if err != nil {
			return Instruction{}, err
		}
		dest = d
		idx = eq + 1
	}

	semi := indexOfSemicolon(line[idx:])
	var compToks []Token
	jump := hack.JumpNull
	if semi >= 0 {
		compToks = line[idx : idx+semi]
		jumpToks := line[idx+semi+1:]
		j, err := parseJump(jumpToks)
		if err != nil {
			return Instruction{}, err
		}
		jump = j
	} else {
		compToks = line[idx:]
	}

	comp, err := parseComputation(compToks)
	if err != nil {
		return Instruction{}, err
	}

	return Instruction{Kind: InstCommand, Dest: dest, Comp: comp, Jump: jump}, nil
}

func indexOfEqual(line []Token) int {
	for i, t := range line {
		if t.Kind == TokEqual {
			return i
		}
	}
	return -1
}

func indexOfSemicolon(line []Token) int {
	for i, t := range line {
		if t.Kind == TokSemicolon {
			return i
		}
	}
	return -1
}

func parseDest(toks []Token) (hack.Dest, error) {
	if len(toks) != 1 || toks[0].Kind != TokRegister {
		return "", fmt.Errorf("asm: malformed destination at line %d", toks[0].Line)
	}
	return hack.Dest(toks[0].Text), nil
}

func parseJump(toks []Token) (hack.Jump, error) {
	if len(toks) != 1 || toks[0].Kind != TokJump {
		line := 0
		if len(toks) > 0 {
			line = toks[0].Line
		}
		return "", fmt.Errorf("asm: malformed jump mnemonic at line %d", line)
	}
	return hack.Jump(toks[0].Text), nil
}

// parseComputation renders a computation token sequence back into the
// textual form used as a key into hack.CompTable ("D+1", "D&M", ...) — a
// literal value, a unary -/! applied to a value, or a binary +/-/&/| of
// two values.
func parseComputation(toks []Token) (string, error) {
	switch len(toks) {
	case 1:
		return valueText(toks[0])
	case 2:
		val, err := valueText(toks[1])
		if err != nil {
			return "", err
		}
		switch toks[0].Kind {
		case TokMinus:
			return "-" + val, nil
		case TokBang:
			return "!" + val, nil
		default:
			return "", fmt.Errorf("asm: invalid unary operator at line %d", toks[0].Line)
		}
	case 3:
		lhs, err := valueText(toks[0])
		if err != nil {
			return "", err
		}
		rhs, err := valueText(toks[2])
		if err != nil {
			return "", err
		}
		var op string
		switch toks[1].Kind {
		case TokPlus:
			op = "+"
		case TokMinus:
			op = "-"
		case TokAmpersand:
			op = "&"
		case TokPipe:
			op = "|"
		default:
			return "", fmt.Errorf("asm: invalid binary operator at line %d", toks[1].Line)
		}
		return lhs + op + rhs, nil
	default:
		line := 0
		if len(toks) > 0 {
			line = toks[0].Line
		}
		return "", fmt.Errorf("asm: malformed computation at line %d", line)
	}
}

func valueText(t Token) (string, error) {
	switch {
	case t.Kind == TokRegister:
		return t.Text, nil
	case t.Kind == TokNumber && (t.Number == 0 || t.Number == 1):
		return fmt.Sprintf("%d", t.Number), nil
	default:
		return "", fmt.Errorf("asm: invalid computation value at line %d", t.Line)
	}
}
