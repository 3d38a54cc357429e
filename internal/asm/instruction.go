package asm

import "github.com/pacokwon/n2t/internal/hack"

// Operand is an Address instruction's operand: a numeric literal or a
// symbolic name (including bare register/jump mnemonics — see the open
// question preserved from the spec in resolve.go).
type Operand struct {
	IsNumber bool
	Number   uint16
	Symbol   string
}

// Instruction is the tagged variant described by §3.1: Address | Command | Label.
type Instruction struct {
	Kind InstructionKind

	// Address
	Operand Operand

	// Command
	Dest hack.Dest
	Comp string
	Jump hack.Jump

	// Label
	Label string
}

type InstructionKind int

const (
	InstAddress InstructionKind = iota
	InstCommand
	InstLabel
)
