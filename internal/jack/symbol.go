package jack

// Symbol is a resolved variable binding, generalized from the teacher's
// symbol.go to the four independent scopes spec §3.3/§4.3.3 names
// explicitly (Static, Field, Argument, Local) instead of the teacher's
// two maps keyed by a single SymbolType.
type Symbol struct {
	Scope VarScope
	Type  string
	Index uint16
}
