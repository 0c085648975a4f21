// Package encoder walks a parsed AST and emits the flat binary image it
// describes, against a loaded isa.Spec. It is the terminal stage of the
// pipeline: loader produces a Spec, parser produces an AST, encoder
// produces bytes.
package encoder

import "fmt"

// ErrorKind categorizes a failure to emit a single AST node.
type ErrorKind int

const (
	UnexpectedNodeType ErrorKind = iota
	InvalidInstruction
	InvalidArgumentCount
	InvalidArgumentType
	InvalidEncoding
)

func (k ErrorKind) String() string {
	switch k {
	case UnexpectedNodeType:
		return "unexpected node type"
	case InvalidInstruction:
		return "invalid instruction"
	case InvalidArgumentCount:
		return "invalid argument count"
	case InvalidArgumentType:
		return "invalid argument type"
	case InvalidEncoding:
		return "invalid encoding"
	default:
		return "unknown emit error"
	}
}

// Error reports a failure while emitting a node. Position isn't
// byte-addressable before emission, so an index stands in for it: the
// statement's index in the Root's Children for every ErrorKind except
// InvalidArgumentType, which reports the operand's index within that
// statement's argument list instead, since that's the position the
// original flatbin.rs's EmitError::InvalidArgumentType names.
type Error struct {
	Kind     ErrorKind
	Name     string
	Position int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s at position %d", e.Kind, e.Name, e.Position)
}
