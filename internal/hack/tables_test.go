package hack

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservedSymbols(t *testing.T) {
	table := ReservedSymbols()
	assert.Equal(t, 23, len(table))
	assert.EqualValues(t, 0, table["SP"])
	assert.EqualValues(t, 4, table["THAT"])
	assert.EqualValues(t, 0x4000, table["SCREEN"])
	assert.EqualValues(t, 0x6000, table["KBD"])
	for r := 0; r <= 15; r++ {
		assert.Contains(t, table, fmt.Sprintf("R%d", r))
	}
}

// Encodes the D=A line of the reserved-symbol scenario (@R5, @R5, D=A);
// the symbol lookup itself is covered by TestReservedSymbols.
func TestEncodeCInstructionReservedSymbol(t *testing.T) {
	line, err := EncodeCInstruction("A", DestD, JumpNull)
	require.NoError(t, err)
	assert.Equal(t, "111"+"0110000"+"010"+"000", line)
}

func TestEncodeCInstructionUnknownComputation(t *testing.T) {
	_, err := EncodeCInstruction("D+D", DestNull, JumpNull)
	assert.Error(t, err)
}

func TestEncodeAInstruction(t *testing.T) {
	line, err := EncodeAInstruction(5)
	require.NoError(t, err)
	assert.Equal(t, "0000000000000101", line)
}

func TestEncodeAInstructionOverflow(t *testing.T) {
	_, err := EncodeAInstruction(0x8000)
	assert.Error(t, err)
}

func TestValidLine(t *testing.T) {
	assert.True(t, ValidLine("0000000000000101"))
	assert.True(t, ValidLine("1110101010000111"))
	assert.False(t, ValidLine("1010101010000111"))
	assert.False(t, ValidLine("00101"))
	assert.False(t, ValidLine("000000000000010x"))
}
