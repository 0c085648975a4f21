package isa

import "strings"

// Spec is the aggregate, queryable instruction set description produced
// by loading zero or more documents. It is safe to query concurrently
// once the caller stops calling its mutator methods; the mutators
// themselves are not safe for concurrent use against the same Spec (see
// SPEC_FULL.md's CONCURRENCY & RESOURCE MODEL).
type Spec struct {
	docs []DocMeta

	consts map[string]int64

	registerNames  map[int32][]string
	registerSizes  map[int32]int
	registerLookup map[string]int32

	formats     []Format
	formatIndex map[string]int

	instructions     []Definition
	instructionIndex map[string]int // lowercased name -> index
}

// NewSpec returns an empty Spec ready for Load calls.
func NewSpec() *Spec {
	return &Spec{
		consts:           map[string]int64{},
		registerNames:    map[int32][]string{},
		registerSizes:    map[int32]int{},
		registerLookup:   map[string]int32{},
		formatIndex:      map[string]int{},
		instructionIndex: map[string]int{},
	}
}

// --- document metadata -----------------------------------------------

func (s *Spec) AppendDoc(meta DocMeta) { s.docs = append(s.docs, meta) }

// HasCode reports whether a document with the given code has already
// been loaded (used to validate a later document's meta.requires).
func (s *Spec) HasCode(code string) bool {
	for _, d := range s.docs {
		if d.Code == code {
			return true
		}
	}
	return false
}

func (s *Spec) Docs() []DocMeta { return append([]DocMeta(nil), s.docs...) }

// --- consts -------------------------------------------------------------

func (s *Spec) SetConst(name string, v int64) { s.consts[name] = v }

func (s *Spec) GetConst(name string) (int64, bool) {
	v, ok := s.consts[name]
	return v, ok
}

// ConstOr returns the named const, or def if it isn't defined.
func (s *Spec) ConstOr(name string, def int64) int64 {
	if v, ok := s.consts[name]; ok {
		return v
	}
	return def
}

// --- registers ------------------------------------------------------

// SetRegisterNames replaces the full alias list for index outright.
func (s *Spec) SetRegisterNames(index int32, names []string) {
	s.registerNames[index] = append([]string(nil), names...)
}

// SetRegisterSize sets the bit width of the register at index.
func (s *Spec) SetRegisterSize(index int32, bits int) {
	s.registerSizes[index] = bits
}

// RebuildRegisterLookup recomputes the name->index lookup from scratch
// from the current register name table, so a name removed from an
// index's alias list by a later document stops resolving to it.
func (s *Spec) RebuildRegisterLookup() {
	s.registerLookup = make(map[string]int32, len(s.registerNames))
	for idx, names := range s.registerNames {
		for _, n := range names {
			s.registerLookup[n] = idx
		}
	}
}

// RegisterIndexByName looks up a register by any of its alias names.
func (s *Spec) RegisterIndexByName(name string) (int32, bool) {
	idx, ok := s.registerLookup[name]
	return idx, ok
}

// Register returns the full register record for index, if known.
func (s *Spec) Register(index int32) (Register, bool) {
	names, ok := s.registerNames[index]
	if !ok {
		return Register{}, false
	}
	return Register{Index: index, Names: names, Size: s.registerSizes[index]}, true
}

// --- formats ----------------------------------------------------------

func (s *Spec) AppendFormat(f Format) int {
	idx := len(s.formats)
	s.formats = append(s.formats, f)
	s.formatIndex[f.Name] = idx
	return idx
}

func (s *Spec) FormatByName(name string) (int, bool) {
	idx, ok := s.formatIndex[name]
	return idx, ok
}

func (s *Spec) Format(index int) *Format { return &s.formats[index] }

// --- instructions -------------------------------------------------------

// AppendInstruction registers def under its (already lowercased) name.
// Returns false without modifying the Spec if that name is already
// registered (the caller reports DuplicateInstruction).
func (s *Spec) AppendInstruction(def Definition) bool {
	key := strings.ToLower(def.Name)
	if _, exists := s.instructionIndex[key]; exists {
		return false
	}
	s.instructionIndex[key] = len(s.instructions)
	s.instructions = append(s.instructions, def)
	return true
}

func (s *Spec) InstructionByName(name string) (*Definition, bool) {
	idx, ok := s.instructionIndex[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return &s.instructions[idx], true
}
