package vm

import (
	"fmt"
	"io"
)

// Module is one named VM source unit: a module name (file stem, used for
// `static` and, historically, bootstrap file detection) and its source
// text.
type Module struct {
	Name   string
	Source string
}

// Translate writes the assembly translation of a single module's commands
// through the given CodeWriter, first setting its current module to
// mod.Name.
func Translate(cw *CodeWriter, mod Module) error {
	cw.SetModule(mod.Name)
	p := NewParser(mod.Source)
	for p.HasMoreCommands() {
		cmd, err := p.Current()
		if err != nil {
			return err
		}
		if err := translateCommand(cw, cmd); err != nil {
			return fmt.Errorf("vm: module %s: %w", mod.Name, err)
		}
		p.Advance()
	}
	return nil
}

func translateCommand(cw *CodeWriter, cmd Command) error {
	switch cmd.Type {
	case CmdArithmetic:
		return cw.WriteArithmetic(cmd.Arg1)
	case CmdPush, CmdPop:
		return cw.WritePushPop(cmd.Type, cmd.Arg1, cmd.Arg2)
	case CmdLabel:
		return cw.WriteLabel(cmd.Arg1)
	case CmdGoto:
		return cw.WriteGoto(cmd.Arg1)
	case CmdIf:
		return cw.WriteIf(cmd.Arg1)
	case CmdFunction:
		return cw.WriteFunction(cmd.Arg1, cmd.Arg2)
	case CmdCall:
		return cw.WriteCall(cmd.Arg1, cmd.Arg2)
	case CmdReturn:
		return cw.WriteReturn()
	default:
		return fmt.Errorf("vm: unhandled command type %v", cmd.Type)
	}
}

// TranslateAll translates every module in order to w, emitting a single
// bootstrap sequence first when bootstrap is true — the "concatenate
// translations of every *.vm file after a single bootstrap" behavior of
// spec §6, matching original_source/vm-to-asm/src/main.rs's always-on
// bootstrap (made optional here, see SPEC_FULL.md §6).
func TranslateAll(w io.Writer, mods []Module, bootstrap bool) error {
	cw := NewCodeWriter(w)
	if bootstrap {
		if err := cw.WriteInit(); err != nil {
			return err
		}
	}
	for _, mod := range mods {
		if err := Translate(cw, mod); err != nil {
			return err
		}
	}
	return nil
}
