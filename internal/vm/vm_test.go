package vm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParserSkipsCommentsAndBlankLines(t *testing.T) {
	src := "\n// a comment\npush constant 7 // trailing\nadd\n"
	p := NewParser(src)
	require.True(t, p.HasMoreCommands())
	cmd, err := p.Current()
	require.NoError(t, err)
	assert.Equal(t, CmdPush, cmd.Type)
	assert.Equal(t, "constant", cmd.Arg1)
	assert.EqualValues(t, 7, cmd.Arg2)
	p.Advance()

	cmd, err = p.Current()
	require.NoError(t, err)
	assert.Equal(t, CmdArithmetic, cmd.Type)
	assert.Equal(t, "add", cmd.Arg1)
	p.Advance()
	assert.False(t, p.HasMoreCommands())
}

// Scenario 4 in spec §8: static segment emits a line referencing <module>.i.
func TestStaticSegmentKeyLine(t *testing.T) {
	var sb strings.Builder
	cw := NewCodeWriter(&sb)
	cw.SetModule("Foo")
	require.NoError(t, cw.WritePushPop(CmdPush, "static", 3))
	assert.Contains(t, sb.String(), "@Foo.3")
}

// Scenario 5 in spec §8: call/return frame shape.
func TestCallEmitsFivePushesAndFrameSetup(t *testing.T) {
	var sb strings.Builder
	cw := NewCodeWriter(&sb)
	cw.SetModule("Bar")
	require.NoError(t, cw.WriteCall("Bar.f", 2))
	out := sb.String()
	assert.Equal(t, 5, strings.Count(out, "M=M+1"))
	assert.Contains(t, out, "@7")
	assert.Contains(t, out, "@Bar.f")
	assert.Contains(t, out, "0;JMP")
}

func TestReturnRestoresFrame(t *testing.T) {
	var sb strings.Builder
	cw := NewCodeWriter(&sb)
	require.NoError(t, cw.WriteReturn())
	out := sb.String()
	assert.Contains(t, out, "@THAT")
	assert.Contains(t, out, "@THIS")
	assert.Contains(t, out, "@ARG")
	assert.Contains(t, out, "@LCL")
}

func TestLabelScopingByFunction(t *testing.T) {
	var sb strings.Builder
	cw := NewCodeWriter(&sb)
	require.NoError(t, cw.WriteFunction("Foo.bar", 0))
	require.NoError(t, cw.WriteLabel("LOOP"))
	out := sb.String()
	assert.Contains(t, out, "(Foo.bar_local__LOOP)")
}

func TestIsValidLabel(t *testing.T) {
	assert.True(t, IsValidLabel("LOOP"))
	assert.True(t, IsValidLabel("a.b:c_1"))
	assert.False(t, IsValidLabel(""))
	assert.False(t, IsValidLabel("1abc"))
	assert.False(t, IsValidLabel("bad label"))
}

func TestBootstrapEmitsSPInitAndSysInitCall(t *testing.T) {
	var sb strings.Builder
	cw := NewCodeWriter(&sb)
	require.NoError(t, cw.WriteInit())
	out := sb.String()
	assert.True(t, strings.HasPrefix(out, "@256\nD=A\n@SP\nM=D\n"))
	assert.Contains(t, out, "@Sys.init")
}

func TestPopConstantFails(t *testing.T) {
	var sb strings.Builder
	cw := NewCodeWriter(&sb)
	err := cw.WritePushPop(CmdPop, "constant", 0)
	assert.Error(t, err)
}
