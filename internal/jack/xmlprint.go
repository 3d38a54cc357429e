package jack

import (
	"fmt"
	"io"
	"strings"
)

// WriteXML renders a parsed *Class as an XML parse tree, the external
// collaborator spec.md explicitly scopes out of the core translation
// logic (§1: "the XML pretty-printer used for debugging parse trees").
// original_source/compiler/src/xml_printer.rs does the analogous job over
// the Rust AST; this is possible here only because parsing and codegen
// were split (§4.3) — the teacher's fused implementation has no
// standalone tree to print from. formatXML's escaping rules are ported
// verbatim from the teacher's recursive_decent_parser.go.
func WriteXML(w io.Writer, class *Class) error {
	io.WriteString(w, "<class>\n")
	io.WriteString(w, formatXML("identifier", class.Name)+"\n")
	for _, v := range class.Variables {
		writeClassVarDecXML(w, v)
	}
	for _, s := range class.Subroutines {
		writeSubroutineXML(w, s)
	}
	io.WriteString(w, "</class>\n")
	return nil
}

func writeClassVarDecXML(w io.Writer, v ClassVarDec) {
	fmt.Fprintf(w, "<classVarDec> %s %s %s </classVarDec>\n",
		formatXML("keyword", string(v.Scope)),
		formatXML("keyword", v.Type),
		strings.Join(identifierList(v.Names), " "))
}

func identifierList(names []string) []string {
	var out []string
	for _, n := range names {
		out = append(out, formatXML("identifier", n))
	}
	return out
}

func writeSubroutineXML(w io.Writer, s SubroutineDec) {
	fmt.Fprintf(w, "<subroutineDec> %s %s %s (%s) </subroutineDec>\n",
		formatXML("keyword", string(s.Kind)),
		formatXML("keyword", s.ReturnType),
		formatXML("identifier", s.Name),
		paramListText(s.Params))
}

func paramListText(params []Param) string {
	var parts []string
	for _, p := range params {
		parts = append(parts, formatXML("keyword", p.Type)+" "+formatXML("identifier", p.Name))
	}
	return strings.Join(parts, ", ")
}

func formatXML(tag, content string) string {
	for _, pair := range [][2]string{
		{"&", "&amp;"}, {"<", "&lt;"}, {">", "&gt;"}, {"\"", "&quot;"},
	} {
		content = strings.ReplaceAll(content, pair[0], pair[1])
	}
	return fmt.Sprintf("<%s> %s </%s>", tag, content, tag)
}
