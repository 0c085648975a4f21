package encoder_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lookbusy1344/rvasm-go/encoder"
	"github.com/lookbusy1344/rvasm-go/isa"
	"github.com/lookbusy1344/rvasm-go/loader"
	"github.com/lookbusy1344/rvasm-go/parser"
)

const rv32iFixture = `
[meta]
name = "RV32I test fixture"
code = "RV32I"
spec = "20191213"

[registers.names]
0 = ["x0"]
1 = ["x1"]
5 = ["x5"]
6 = ["x6"]
7 = ["x7"]

[registers.lengths]
0 = 32
1 = 32
5 = 32
6 = 32
7 = 32

[instruction_formats.I.opcode]
length = 7
encoding = [[6, 0, 0]]

[instruction_formats.I.rd]
type = "register"
length = 5
encoding = [[4, 0, 7]]

[instruction_formats.I.funct3]
length = 3
encoding = [[2, 0, 12]]

[instruction_formats.I.rs1]
type = "register"
length = 5
encoding = [[4, 0, 15]]

[instruction_formats.I.imm]
length = 12
encoding = [[11, 0, 20]]

[instruction_formats.R.opcode]
length = 7
encoding = [[6, 0, 0]]

[instruction_formats.R.rd]
type = "register"
length = 5
encoding = [[4, 0, 7]]

[instruction_formats.R.funct3]
length = 3
encoding = [[2, 0, 12]]

[instruction_formats.R.rs1]
type = "register"
length = 5
encoding = [[4, 0, 15]]

[instruction_formats.R.rs2]
type = "register"
length = 5
encoding = [[4, 0, 20]]

[instruction_formats.R.funct7]
length = 7
encoding = [[6, 0, 25]]

[instruction_formats.B.opcode]
length = 7
encoding = [[6, 0, 0]]

[instruction_formats.B.funct3]
length = 3
encoding = [[2, 0, 12]]

[instruction_formats.B.rs1]
type = "register"
length = 5
encoding = [[4, 0, 15]]

[instruction_formats.B.rs2]
type = "register"
length = 5
encoding = [[4, 0, 20]]

[instruction_formats.B.imm]
length = 13
encoding = [
  [12, 12, 31],
  [10, 5, 25],
  [4, 1, 8],
  [11, 11, 7],
]

[instructions.addi]
format = "I"
args = ["rd", "rs1", "imm"]
fields = { opcode = 0x13, funct3 = 0x0 }

[instructions.nop]
format = "I"
args = []
fields = { opcode = 0x13, funct3 = 0x0, rd = 0, rs1 = 0, imm = 0 }

[instructions.xor]
format = "R"
args = ["rd", "rs1", "rs2"]
fields = { opcode = 0x33, funct3 = 0x4, funct7 = 0x0 }

[instructions.beq]
format = "B"
args = ["rs1", "rs2", "imm"]
fields = { opcode = 0x63, funct3 = 0x0 }
`

func loadFixtureSpec(t *testing.T) *isa.Spec {
	t.Helper()
	spec := isa.NewSpec()
	require.NoError(t, loader.LoadString(spec, rv32iFixture))
	return spec
}

func emitSource(t *testing.T, spec *isa.Spec, src string) []byte {
	t.Helper()
	p := parser.NewParser(src, "test.s", spec)
	root, err := p.ParseProgram()
	require.NoError(t, err)
	out, err := encoder.NewEmitter(spec).Emit(root)
	require.NoError(t, err)
	return out
}

func TestEmitAddi(t *testing.T) {
	spec := loadFixtureSpec(t)
	out := emitSource(t, spec, "addi x1,x0,1")
	require.Equal(t, []byte{0x93, 0x00, 0x10, 0x00}, out) // 0x00100093, little-endian
}

func TestEmitNop(t *testing.T) {
	spec := loadFixtureSpec(t)
	out := emitSource(t, spec, "nop")
	require.Equal(t, []byte{0x13, 0x00, 0x00, 0x00}, out) // 0x00000013
}

func TestEmitTwoSequentialInstructions(t *testing.T) {
	spec := loadFixtureSpec(t)
	out := emitSource(t, spec, "addi x1,x0,1\naddi x1,x0,1")
	require.Len(t, out, 8)
}

func TestEmitOrgThenXor(t *testing.T) {
	spec := loadFixtureSpec(t)
	out := emitSource(t, spec, ".org 0x10\nxor x5,x6,x7")
	require.Len(t, out, 20)
	for _, b := range out[:16] {
		require.Equal(t, byte(0), b, "bytes before .org target are zero-filled")
	}
	require.Equal(t, []byte{0xB3, 0x42, 0x73, 0x00}, out[16:20]) // 0x007342B3
}

func TestEmitBeqSelfBranch(t *testing.T) {
	spec := loadFixtureSpec(t)
	out := emitSource(t, spec, "beq x0,x0,-4")
	require.Equal(t, []byte{0xE3, 0x0E, 0x00, 0xFE}, out) // 0xFE000EE3
}

func TestEmitInvalidArgumentTypeReportsOperandPosition(t *testing.T) {
	spec := loadFixtureSpec(t)
	// Two statements, so a statement index and an operand index would
	// disagree: the bad operand is the third argument (index 2) of the
	// second statement (index 1).
	p := parser.NewParser("nop\naddi x1,x0,x5", "test.s", spec)
	root, err := p.ParseProgram()
	require.NoError(t, err)

	out, err := encoder.NewEmitter(spec).Emit(root)
	require.Error(t, err)
	require.Nil(t, out)

	var emitErr *encoder.Error
	require.ErrorAs(t, err, &emitErr)
	require.Equal(t, encoder.InvalidArgumentType, emitErr.Kind)
	require.Equal(t, 2, emitErr.Position) // third operand, not statement index 1
}

func TestEmitUnknownMnemonic(t *testing.T) {
	spec := loadFixtureSpec(t)
	p := parser.NewParser("floop x1,x2", "test.s", spec)
	root, err := p.ParseProgram()
	require.NoError(t, err)

	out, err := encoder.NewEmitter(spec).Emit(root)
	require.Error(t, err)
	require.Nil(t, out)

	var emitErr *encoder.Error
	require.ErrorAs(t, err, &emitErr)
	require.Equal(t, encoder.InvalidInstruction, emitErr.Kind)
	require.Equal(t, "floop", emitErr.Name)
}
