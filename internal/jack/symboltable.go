package jack

import (
	"fmt"

	"go.uber.org/zap"
)

// SymbolTable holds two independent scopes: class (Static, Field) persists
// for the whole class; subroutine (Argument, Local) resets on every
// subroutine. Ported from the teacher's symbol_table.go, generalized to
// track per-scope-tag counts directly instead of re-counting the map on
// every Declare call, and fixing a scope-mixing defect in the teacher's
// Clear (its FunctionScope case fell through into also clearing
// ClassScope).
type SymbolTable struct {
	class      map[string]Symbol
	subroutine map[string]Symbol
	classCount map[VarScope]uint16
	subCount   map[VarScope]uint16
	log        *zap.SugaredLogger
}

func NewSymbolTable(log *zap.SugaredLogger) *SymbolTable {
	return &SymbolTable{
		class:      make(map[string]Symbol),
		subroutine: make(map[string]Symbol),
		classCount: make(map[VarScope]uint16),
		subCount:   make(map[VarScope]uint16),
		log:        log,
	}
}

// ResetClass clears the class scope; called on entry to a new Class.
func (s *SymbolTable) ResetClass() {
	s.class = make(map[string]Symbol)
	s.classCount = make(map[VarScope]uint16)
}

// ResetSubroutine clears the subroutine scope; called on entry to every
// SubroutineDec, independent of ResetClass.
func (s *SymbolTable) ResetSubroutine() {
	s.subroutine = make(map[string]Symbol)
	s.subCount = make(map[VarScope]uint16)
}

func (s *SymbolTable) tableFor(scope VarScope) (map[string]Symbol, map[VarScope]uint16) {
	switch scope {
	case ScopeStatic, ScopeField:
		return s.class, s.classCount
	default:
		return s.subroutine, s.subCount
	}
}

// Count returns the number of symbols declared so far under the given scope tag.
func (s *SymbolTable) Count(scope VarScope) uint16 {
	_, counts := s.tableFor(scope)
	return counts[scope]
}

// Declare registers name under scope with the given type, assigning it the
// next index for that scope tag. Redeclaring a name already present in the
// same table (class or subroutine) is a semantic error (spec §7.3:
// "duplicate symbol in same scope").
func (s *SymbolTable) Declare(name, typ string, scope VarScope) (Symbol, error) {
	table, counts := s.tableFor(scope)
	if _, exists := table[name]; exists {
		return Symbol{}, fmt.Errorf("jack: duplicate symbol %q declared twice in the same scope", name)
	}
	sym := Symbol{Scope: scope, Type: typ, Index: counts[scope]}
	counts[scope]++
	table[name] = sym
	if s.log != nil {
		s.log.Debugw("declared symbol", "name", name, "symbol", sym)
	}
	return sym, nil
}

// Lookup resolves name, trying subroutine scope first, then class scope.
func (s *SymbolTable) Lookup(name string) (Symbol, bool) {
	if sym, ok := s.subroutine[name]; ok {
		return sym, true
	}
	if sym, ok := s.class[name]; ok {
		return sym, true
	}
	return Symbol{}, false
}
