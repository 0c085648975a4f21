// Package isa holds the data model for a declaratively described
// instruction set: registers, instruction fields, instruction formats,
// and instruction definitions, plus the read-only Spec container that
// aggregates them once loading is finished.
package isa

import "github.com/lookbusy1344/rvasm-go/bitrange"

// FieldType distinguishes an instruction field that carries an operand
// value the assembler must supply (Value or Register) from one whose
// value is always fixed by the instruction definition (still tagged
// Value — there is no separate "constant" type, a fixed field is simply
// a Value field with no corresponding entry in an instruction's Args).
type FieldType int

const (
	// FieldValue is a plain numeric operand (an immediate, a constant
	// opcode/funct bit group, or anything that isn't a register index).
	FieldValue FieldType = iota
	// FieldRegister is an operand that must be a register reference.
	FieldRegister
)

func (t FieldType) String() string {
	if t == FieldRegister {
		return "register"
	}
	return "value"
}

// Field is one named slice of an instruction word: a total bit Length
// and the list of BitRangeMaps describing where its bits land.
type Field struct {
	Name     string
	Type     FieldType
	Length   int
	Encoding []bitrange.Map
}

// Format is a named collection of fields shared by every instruction
// definition built on it.
type Format struct {
	Name   string
	Fields []Field
}

// ILen returns the instruction length in bits implied by this format's
// bit-range maps: one past the highest instruction bit any field's
// encoding ever touches. A format with no fields or no encodings has an
// ILen of 0.
func (f *Format) ILen() int {
	max := -1
	for _, fld := range f.Fields {
		for _, m := range fld.Encoding {
			top := m.InstructionFirst + (m.ValueLast - m.ValueFirst)
			if top > max {
				max = top
			}
		}
	}
	return max + 1
}

// FieldIndex returns the index of the named field within the format, or
// -1 if no field has that name.
func (f *Format) FieldIndex(name string) int {
	for i, fld := range f.Fields {
		if fld.Name == name {
			return i
		}
	}
	return -1
}

// FieldAssignment is a (field index, constant value) pair fixed by an
// instruction definition — opcode bits, funct bits, and the like.
type FieldAssignment struct {
	FieldIndex int
	Value      int64
}

// Definition is one named instruction: which format it uses, which
// format fields are supplied by the assembler at each operand position
// (Args, in source order) and which are fixed constants (Fields).
type Definition struct {
	Name        string
	FormatIndex int
	Args        []int
	Fields      []FieldAssignment
}

// Register describes one architectural register: its canonical index,
// every alias name it answers to, and its bit width.
type Register struct {
	Index int32
	Names []string
	Size  int
}

// DocMeta records one loaded document's identity.
type DocMeta struct {
	Name string
	Code string
	Spec string
}
