package asm

import "github.com/pacokwon/n2t/internal/hack"

// TokenKind tags the lexical category of a Token.
type TokenKind int

const (
	TokAt TokenKind = iota
	TokLParen
	TokRParen
	TokPlus
	TokMinus
	TokAmpersand
	TokPipe
	TokBang
	TokEqual
	TokSemicolon
	TokNewline
	TokEOF
	TokRegister // A, D, M, AM, AD, MD, AMD
	TokJump     // JGT, JEQ, JGE, JLT, JNE, JLE, JMP
	TokNumber
	TokSymbol
)

// Token is a single lexed unit of assembly source.
type Token struct {
	Kind   TokenKind
	Text   string // register name, jump mnemonic, or symbol text
	Number uint16 // valid when Kind == TokNumber
	Line   int
}

var registerSet = map[string]bool{}
var jumpSet = map[string]bool{
	string(hack.JumpJGT): true, string(hack.JumpJEQ): true, string(hack.JumpJGE): true,
	string(hack.JumpJLT): true, string(hack.JumpJNE): true, string(hack.JumpJLE): true,
	string(hack.JumpJMP): true,
}

func init() {
	for _, r := range hack.RegisterNames {
		registerSet[r] = true
	}
}
