package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimplifyFoldsConstantArithmetic(t *testing.T) {
	pos := Position{Filename: "t", Line: 1, Column: 1}
	n := newBinary(NodePlus, pos, newInteger(pos, 2), newInteger(pos, 3))
	assert.Equal(t, NodeInteger, n.Kind)
	assert.Equal(t, uint64(5), n.Int)
}

func TestSimplifyLeavesDivisionByZeroUnfolded(t *testing.T) {
	pos := Position{Filename: "t", Line: 1, Column: 1}
	n := newBinary(NodeDivide, pos, newInteger(pos, 4), newInteger(pos, 0))
	assert.Equal(t, NodeDivide, n.Kind, "division by the literal zero is left as an unfolded node")
}

func TestSimplifyArithmeticShiftIsSignExtending(t *testing.T) {
	pos := Position{Filename: "t", Line: 1, Column: 1}
	negativeOne := newInteger(pos, ^uint64(0))
	n := newBinary(NodeAshr, pos, negativeOne, newInteger(pos, 4))
	require.Equal(t, NodeInteger, n.Kind)
	assert.Equal(t, ^uint64(0), n.Int, "arithmetic shift of all-ones stays all-ones")
}

func TestSimplifyDoesNotFoldNonConstantOperands(t *testing.T) {
	pos := Position{Filename: "t", Line: 1, Column: 1}
	ident := &Node{Kind: NodeIdentifier, Name: "LABEL", Pos: pos}
	n := newBinary(NodePlus, pos, ident, newInteger(pos, 1))
	assert.Equal(t, NodePlus, n.Kind)
}

func TestEmitterSimplifyResolvesIdentifiersViaProvider(t *testing.T) {
	pos := Position{Filename: "t", Line: 1, Column: 1}
	ident := &Node{Kind: NodeIdentifier, Name: "BASE", Pos: pos}
	provider := func(name string) (uint64, bool) {
		if name == "BASE" {
			return 0x1000, true
		}
		return 0, false
	}
	resolved, ok := EmitterSimplify(ident, provider, 0)
	require.True(t, ok)
	assert.Equal(t, NodeInteger, resolved.Kind)
	assert.Equal(t, uint64(0x1000), resolved.Int)
}

func TestEmitterSimplifyReportsUnresolved(t *testing.T) {
	pos := Position{Filename: "t", Line: 1, Column: 1}
	ident := &Node{Kind: NodeIdentifier, Name: "UNKNOWN", Pos: pos}
	_, ok := EmitterSimplify(ident, func(string) (uint64, bool) { return 0, false }, 0)
	assert.False(t, ok)
}

func TestEmitterSimplifyResolvesPcValue(t *testing.T) {
	pos := Position{Filename: "t", Line: 1, Column: 1}
	pc := &Node{Kind: NodePcValue, Pos: pos}
	resolved, ok := EmitterSimplify(pc, func(string) (uint64, bool) { return 0, false }, 0x40)
	require.True(t, ok)
	assert.Equal(t, uint64(0x40), resolved.Int)
}

func TestParseIntegerLiteralPrefixesAndUnderscores(t *testing.T) {
	cases := map[string]uint64{
		"0x1F":    0x1F,
		"0o17":    15,
		"0b101":   5,
		"1_000":   1000,
		"0d42":    42,
		"123":     123,
	}
	for lit, want := range cases {
		got, err := parseIntegerLiteral(lit)
		require.NoError(t, err, lit)
		assert.Equal(t, want, got, lit)
	}
}
