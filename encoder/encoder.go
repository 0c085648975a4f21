package encoder

import (
	"strings"

	"github.com/lookbusy1344/rvasm-go/bitrange"
	"github.com/lookbusy1344/rvasm-go/isa"
	"github.com/lookbusy1344/rvasm-go/parser"
)

const (
	defaultIAlignBits = 32
	defaultILenBits   = 32
)

// Emitter walks a parsed Root node and renders it into a flat binary
// image against a loaded isa.Spec. It owns a growable, zero-padded
// output buffer; emission never shrinks it.
type Emitter struct {
	spec   *isa.Spec
	buf    []byte
	outPos int
}

// NewEmitter creates an Emitter with an empty output buffer.
func NewEmitter(spec *isa.Spec) *Emitter {
	return &Emitter{spec: spec}
}

func bitsToBytes(bits int) int { return (bits + 7) / 8 }

func (e *Emitter) ialignBytes() int {
	return bitsToBytes(int(e.spec.ConstOr("IALIGN", defaultIAlignBits)))
}

func (e *Emitter) ilenBytes() int {
	return bitsToBytes(int(e.spec.ConstOr("ILEN", defaultILenBits)))
}

// ensure grows buf (zero-filled) so that it is at least n bytes long.
func (e *Emitter) ensure(n int) {
	if n <= len(e.buf) {
		return
	}
	if n <= cap(e.buf) {
		old := len(e.buf)
		e.buf = e.buf[:n]
		clear(e.buf[old:])
		return
	}
	grown := make([]byte, n, 2*n) // over-reserve so later growth rarely reallocates
	copy(grown, e.buf)
	e.buf = grown
}

// align rounds outPos up to the next ialign boundary, zero-padding the gap.
func (e *Emitter) align() {
	align := e.ialignBytes()
	if align <= 1 {
		return
	}
	rem := e.outPos % align
	if rem != 0 {
		e.outPos += align - rem
	}
	e.ensure(e.outPos)
}

// Emit renders root (a NodeRoot) into a flat binary image.
func (e *Emitter) Emit(root *parser.Node) ([]byte, error) {
	if root.Kind != parser.NodeRoot {
		return nil, &Error{Kind: UnexpectedNodeType, Name: root.Kind.String(), Position: 0}
	}
	for i, stmt := range root.Children {
		if err := e.emitStatement(stmt, i); err != nil {
			return nil, err
		}
	}
	return e.buf, nil
}

func (e *Emitter) emitStatement(n *parser.Node, index int) error {
	switch n.Kind {
	case parser.NodeLabel:
		return nil // no-op sink: see DESIGN.md on label resolution
	case parser.NodeInstruction:
		return e.emitInstruction(n, index)
	default:
		return &Error{Kind: UnexpectedNodeType, Name: n.Kind.String(), Position: index}
	}
}

func isOrgDirective(name string) bool {
	return strings.EqualFold(name, ".org")
}

func (e *Emitter) emitInstruction(n *parser.Node, index int) error {
	if isOrgDirective(n.Name) {
		return e.emitOrg(n, index)
	}

	def, ok := e.spec.InstructionByName(n.Name)
	if !ok {
		return &Error{Kind: InvalidInstruction, Name: n.Name, Position: index}
	}
	if len(n.Children) != len(def.Args) {
		return &Error{Kind: InvalidArgumentCount, Name: n.Name, Position: index}
	}

	format := e.spec.Format(def.FormatIndex)
	ilenBytes := bitsToBytes(format.ILen())
	if ilenBytes > e.ilenBytes() {
		return &Error{Kind: InvalidEncoding, Name: n.Name, Position: index}
	}

	e.align()
	start := e.outPos
	e.ensure(start + ilenBytes)
	word := e.buf[start : start+ilenBytes]

	// fixed fields encode first, operand args after, so an operand can
	// legitimately overlap (and win) a fixed field's bit range.
	for _, fa := range def.Fields {
		field := format.Fields[fa.FieldIndex]
		for _, m := range field.Encoding {
			bitrange.Encode(word, m, uint64(fa.Value))
		}
	}

	for argPos, fieldIdx := range def.Args {
		field := format.Fields[fieldIdx]
		argNode := n.Children[argPos]
		value, err := e.argValue(field, argNode, n.Name, argPos)
		if err != nil {
			return err
		}
		for _, m := range field.Encoding {
			bitrange.Encode(word, m, value)
		}
	}

	e.outPos = start + ilenBytes
	return nil
}

// argValue extracts the numeric value an argument contributes, checking
// it against the field's declared type. argPos is the operand's index
// within the instruction's argument list, not the statement index.
func (e *Emitter) argValue(field isa.Field, arg *parser.Node, instName string, argPos int) (uint64, error) {
	operand := arg
	if arg.Kind == parser.NodeArgument {
		operand = arg.Left
	}

	switch field.Type {
	case isa.FieldRegister:
		if operand.Kind != parser.NodeRegister {
			return 0, &Error{Kind: InvalidArgumentType, Name: instName, Position: argPos}
		}
		return uint64(uint32(operand.Reg)), nil
	default:
		if operand.Kind != parser.NodeInteger {
			return 0, &Error{Kind: InvalidArgumentType, Name: instName, Position: argPos}
		}
		return operand.Int, nil
	}
}

// emitOrg handles the `.org <addr>` pseudo-instruction: it sets (and, if
// necessary, grows) outPos directly, zero-filling any new gap.
func (e *Emitter) emitOrg(n *parser.Node, index int) error {
	if len(n.Children) != 1 {
		return &Error{Kind: InvalidArgumentCount, Name: n.Name, Position: index}
	}
	arg := n.Children[0]
	operand := arg
	if arg.Kind == parser.NodeArgument {
		operand = arg.Left
	}
	if operand.Kind != parser.NodeInteger {
		return &Error{Kind: InvalidArgumentType, Name: n.Name, Position: 0} // the only operand
	}

	target := int(operand.Int)
	e.ensure(target)
	e.outPos = target
	return nil
}
