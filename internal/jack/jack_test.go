package jack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileSource(t *testing.T, src string) string {
	t.Helper()
	lex, err := NewLexer(strings.NewReader(src))
	require.NoError(t, err)
	class, err := NewParser(lex).Parse()
	require.NoError(t, err)

	var sb strings.Builder
	gen := NewGenerator(NewVMWriter(&sb), NewSymbolTable(nil), nil)
	require.NoError(t, gen.Generate(class))
	return sb.String()
}

func TestEmptyClassProducesNoCode(t *testing.T) {
	out := compileSource(t, "class Main { }")
	assert.Empty(t, out)
}

func TestSimpleFunctionReturnsConstant(t *testing.T) {
	out := compileSource(t, `
		class Main {
			function void main() {
				return;
			}
		}
	`)
	assert.Contains(t, out, "function Main.main 0")
	assert.Contains(t, out, "push constant 0")
	assert.Contains(t, out, "return")
}

// Spec §8: Argument count inside a Method is parameters.len()+1.
func TestMethodArgumentCountIncludesReceiver(t *testing.T) {
	lex, err := NewLexer(strings.NewReader(`
		class Point {
			method int getX(int dummy) {
				return dummy;
			}
		}
	`))
	require.NoError(t, err)
	class, err := NewParser(lex).Parse()
	require.NoError(t, err)

	symtab := NewSymbolTable(nil)
	gen := NewGenerator(NewVMWriter(&strings.Builder{}), symtab, nil)
	require.NoError(t, gen.Generate(class))

	sym, ok := symtab.Lookup("dummy")
	require.True(t, ok)
	assert.EqualValues(t, 1, sym.Index) // this=0, dummy=1
}

// Spec §8, scenario 6: method dispatch via a declared-type variable.
func TestMethodDispatchOnDeclaredVariable(t *testing.T) {
	out := compileSource(t, `
		class Main {
			function void main() {
				var Bat bat;
				do bat.dispose();
				return;
			}
		}
	`)
	assert.Contains(t, out, "call Bat.dispose 1")
	assert.Contains(t, out, "pop temp 0")
}

func TestConstructorAllocatesAtLeastOneWordWithZeroFields(t *testing.T) {
	out := compileSource(t, `
		class Empty {
			constructor Empty new() {
				return this;
			}
		}
	`)
	assert.Contains(t, out, "push constant 1")
	assert.Contains(t, out, "call Memory.alloc 1")
}

func TestWhileLoopLabelsUnique(t *testing.T) {
	out := compileSource(t, `
		class Main {
			function void main() {
				while (true) {
					while (true) {
						return;
					}
				}
				return;
			}
		}
	`)
	assert.Contains(t, out, "WHILE_EXP0")
	assert.Contains(t, out, "WHILE_EXP1")
}

func TestFlatExpressionEvaluatesLeftToRight(t *testing.T) {
	out := compileSource(t, `
		class Main {
			function int main() {
				return 1 + 2 * 3;
			}
		}
	`)
	// left-to-right, no precedence: push 1, push 2, add, push 3, call Math.multiply
	idxAdd := strings.Index(out, "add")
	idxMul := strings.Index(out, "call Math.multiply 2")
	require.True(t, idxAdd >= 0 && idxMul >= 0)
	assert.True(t, idxAdd < idxMul)
}

func TestSymbolTableEmptyAtSubroutineStart(t *testing.T) {
	symtab := NewSymbolTable(nil)
	symtab.ResetClass()
	_, err := symtab.Declare("field1", "int", ScopeField)
	require.NoError(t, err)

	symtab.ResetSubroutine()
	assert.EqualValues(t, 0, symtab.Count(ScopeLocal))
	assert.EqualValues(t, 0, symtab.Count(ScopeArgument))
	// class scope must survive a subroutine reset
	_, ok := symtab.Lookup("field1")
	assert.True(t, ok)
}

func TestDuplicateSymbolFails(t *testing.T) {
	symtab := NewSymbolTable(nil)
	_, err := symtab.Declare("x", "int", ScopeLocal)
	require.NoError(t, err)
	_, err = symtab.Declare("x", "int", ScopeLocal)
	assert.Error(t, err)
}

func TestEmptySourceYieldsEOF(t *testing.T) {
	lex, err := NewLexer(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, KindEOF, lex.Current().Kind)
}

func TestBlockCommentWithNestedStars(t *testing.T) {
	lex, err := NewLexer(strings.NewReader("/** a * b ** c */ class"))
	require.NoError(t, err)
	assert.Equal(t, "class", lex.Current().Terminal)
}
