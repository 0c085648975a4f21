package loader

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lookbusy1344/rvasm-go/bitrange"
	"github.com/lookbusy1344/rvasm-go/isa"
)

// LoadString parses raw as a TOML ISA-description document and merges it
// into spec, in place, following the document's own requires/consts/
// registers/instruction_formats/instructions sections in that fixed
// order regardless of how the TOML source orders its tables.
func LoadString(spec *isa.Spec, raw string) error {
	var tree map[string]interface{}
	if _, err := toml.Decode(raw, &tree); err != nil {
		return &Error{MalformedDocument, err.Error()}
	}
	return mergeTree(spec, tree)
}

// LoadFile reads path and loads it as a document via LoadString.
func LoadFile(spec *isa.Spec, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("loader: reading %s: %w", path, err)
	}
	return LoadString(spec, string(content))
}

func mergeTree(spec *isa.Spec, tree map[string]interface{}) error {
	meta, ok := tree["meta"].(map[string]interface{})
	if !ok {
		if _, present := tree["meta"]; !present {
			return missingNode("meta")
		}
		return badType("meta")
	}

	name, err := getString(meta, "name", "meta.name")
	if err != nil {
		return err
	}
	code, err := getString(meta, "code", "meta.code")
	if err != nil {
		return err
	}
	specVer, err := getString(meta, "spec", "meta.spec")
	if err != nil {
		return err
	}

	if requiresRaw, present := meta["requires"]; present {
		requires, ok := requiresRaw.([]interface{})
		if !ok {
			return badType("meta.requires")
		}
		for _, r := range requires {
			reqCode, ok := r.(string)
			if !ok {
				return badType("meta.requires item")
			}
			if !spec.HasCode(reqCode) {
				return &Error{RequirementNotFound, reqCode}
			}
		}
	}

	spec.AppendDoc(isa.DocMeta{Name: name, Code: code, Spec: specVer})

	if err := mergeConsts(spec, tree); err != nil {
		return err
	}
	if err := mergeRegisters(spec, tree); err != nil {
		return err
	}
	if err := mergeFormats(spec, tree); err != nil {
		return err
	}
	if err := mergeInstructions(spec, tree); err != nil {
		return err
	}
	return nil
}

func mergeConsts(spec *isa.Spec, tree map[string]interface{}) error {
	raw, present := tree["consts"]
	if !present {
		return nil
	}
	table, ok := raw.(map[string]interface{})
	if !ok {
		return badType("consts")
	}
	for _, k := range sortedKeys(table) {
		v, err := tomlInt(spec, "consts."+k, table[k])
		if err != nil {
			return err
		}
		spec.SetConst(k, v)
	}
	return nil
}

func mergeRegisters(spec *isa.Spec, tree map[string]interface{}) error {
	raw, present := tree["registers"]
	if !present {
		return nil
	}
	registers, ok := raw.(map[string]interface{})
	if !ok {
		return badType("registers")
	}

	if namesRaw, present := registers["names"]; present {
		namesTable, ok := namesRaw.(map[string]interface{})
		if !ok {
			return badType("registers.names")
		}
		for _, key := range sortedKeys(namesTable) {
			idx, err := parseRegisterIndex(key, "registers.names."+key+" key")
			if err != nil {
				return err
			}
			arr, ok := namesTable[key].([]interface{})
			if !ok {
				return badType("registers.names." + key + " value")
			}
			names := make([]string, 0, len(arr))
			for _, el := range arr {
				s, ok := el.(string)
				if !ok {
					return badType("registers.names." + key + " element")
				}
				names = append(names, s)
			}
			spec.SetRegisterNames(idx, names)
		}
	}

	if lengthsRaw, present := registers["lengths"]; present {
		lengthsTable, ok := lengthsRaw.(map[string]interface{})
		if !ok {
			return badType("registers.lengths")
		}
		for _, key := range sortedKeys(lengthsTable) {
			idx, err := parseRegisterIndex(key, "registers.lengths."+key+" key")
			if err != nil {
				return err
			}
			v, err := tomlInt(spec, "registers.lengths."+key, lengthsTable[key])
			if err != nil {
				return err
			}
			size, err := bitrange.SafeInt64ToInt(v)
			if err != nil {
				return badType("registers.lengths." + key + " value")
			}
			spec.SetRegisterSize(idx, size)
		}
	}

	spec.RebuildRegisterLookup()
	return nil
}

func mergeFormats(spec *isa.Spec, tree map[string]interface{}) error {
	raw, present := tree["instruction_formats"]
	if !present {
		return nil
	}
	formatsTable, ok := raw.(map[string]interface{})
	if !ok {
		return badType("instruction_formats")
	}

	for _, fmtName := range sortedKeys(formatsTable) {
		fmtTable, ok := formatsTable[fmtName].(map[string]interface{})
		if !ok {
			return badType("instruction_formats." + fmtName)
		}
		format := isa.Format{Name: fmtName}

		for _, fldName := range sortedKeys(fmtTable) {
			fldPath := fmt.Sprintf("instruction_formats.%s.%s", fmtName, fldName)
			fldTable, ok := fmtTable[fldName].(map[string]interface{})
			if !ok {
				return badType(fldPath)
			}

			field := isa.Field{Name: fldName, Type: isa.FieldValue}
			if typeRaw, present := fldTable["type"]; present {
				typeStr, ok := typeRaw.(string)
				if !ok {
					return badType(fldPath + ".type")
				}
				switch typeStr {
				case "value":
					field.Type = isa.FieldValue
				case "register":
					field.Type = isa.FieldRegister
				default:
					return badType(fldPath + ".type")
				}
			}

			lengthRaw, present := fldTable["length"]
			if !present {
				return missingNode(fldPath + ".length")
			}
			length, err := tomlInt(spec, fldPath+".length", lengthRaw)
			if err != nil {
				return err
			}
			fieldLen, err := bitrange.SafeInt64ToInt(length)
			if err != nil {
				return badType(fldPath + ".length")
			}
			field.Length = fieldLen

			encodingRaw, present := fldTable["encoding"]
			if !present {
				return missingNode(fldPath + ".encoding")
			}
			encodingArr, ok := encodingRaw.([]interface{})
			if !ok {
				return badType(fldPath + ".encoding")
			}
			for _, subRaw := range encodingArr {
				sub, ok := subRaw.([]interface{})
				if !ok || len(sub) != 3 {
					return badType(fldPath + ".encoding[][] length (must be 3)")
				}
				vlast, err := tomlInt(spec, fldPath+".encoding[][]", sub[0])
				if err != nil {
					return err
				}
				vfirst, err := tomlInt(spec, fldPath+".encoding[][]", sub[1])
				if err != nil {
					return err
				}
				ifirst, err := tomlInt(spec, fldPath+".encoding[][]", sub[2])
				if err != nil {
					return err
				}
				valueLast, err := bitrange.SafeInt64ToInt32(vlast)
				if err != nil {
					return badType(fldPath + ".encoding[][0]")
				}
				valueFirst, err := bitrange.SafeInt64ToInt32(vfirst)
				if err != nil {
					return badType(fldPath + ".encoding[][1]")
				}
				instructionFirst, err := bitrange.SafeInt64ToInt32(ifirst)
				if err != nil {
					return badType(fldPath + ".encoding[][2]")
				}
				field.Encoding = append(field.Encoding, bitrange.Map{
					ValueLast:        int(valueLast),
					ValueFirst:       int(valueFirst),
					InstructionFirst: int(instructionFirst),
				})
			}
			format.Fields = append(format.Fields, field)
		}
		spec.AppendFormat(format)
	}
	return nil
}

func mergeInstructions(spec *isa.Spec, tree map[string]interface{}) error {
	raw, present := tree["instructions"]
	if !present {
		return nil
	}
	instructionsTable, ok := raw.(map[string]interface{})
	if !ok {
		return badType("instructions")
	}

	for _, rawName := range sortedKeys(instructionsTable) {
		name := strings.ToLower(rawName)
		itable, ok := instructionsTable[rawName].(map[string]interface{})
		if !ok {
			return badType("instructions." + name)
		}

		formatName, err := getString(itable, "format", "instructions."+name+".format")
		if err != nil {
			return err
		}
		formatIdx, ok := spec.FormatByName(formatName)
		if !ok {
			return &Error{BadInstructionFormat, "instructions." + name + ".format"}
		}
		format := spec.Format(formatIdx)

		argsRaw, present := itable["args"]
		if !present {
			return missingNode("instructions." + name + ".args")
		}
		argsArr, ok := argsRaw.([]interface{})
		if !ok {
			return badType("instructions." + name + ".args")
		}
		args := make([]int, 0, len(argsArr))
		for _, a := range argsArr {
			argName, ok := a.(string)
			if !ok {
				return badType("instructions." + name + ".args[] item")
			}
			fi := format.FieldIndex(argName)
			if fi < 0 {
				return &Error{BadInstructionFormat, fmt.Sprintf("instructions.%s.args[%s]", name, argName)}
			}
			args = append(args, fi)
		}

		fieldsRaw, present := itable["fields"]
		if !present {
			return missingNode("instructions." + name + ".fields")
		}
		fieldsTable, ok := fieldsRaw.(map[string]interface{})
		if !ok {
			return badType("instructions." + name + ".fields")
		}
		var assignments []isa.FieldAssignment
		for _, fname := range sortedKeys(fieldsTable) {
			fv, err := tomlInt(spec, fmt.Sprintf("instructions.%s.fields[%s]", name, fname), fieldsTable[fname])
			if err != nil {
				return err
			}
			fi := format.FieldIndex(fname)
			if fi < 0 {
				return &Error{BadInstructionFormat, fmt.Sprintf("instructions.%s.fields[%s]", name, fname)}
			}
			assignments = append(assignments, isa.FieldAssignment{FieldIndex: fi, Value: fv})
		}

		def := isa.Definition{Name: name, FormatIndex: formatIdx, Args: args, Fields: assignments}
		if !spec.AppendInstruction(def) {
			return &Error{DuplicateInstruction, name}
		}
	}
	return nil
}

// tomlInt coerces a decoded TOML value into an int64, resolving a string
// value against spec's consts table.
func tomlInt(spec *isa.Spec, path string, v interface{}) (int64, error) {
	switch val := v.(type) {
	case int64:
		return val, nil
	case string:
		n, ok := spec.GetConst(val)
		if !ok {
			return 0, &Error{ConstNotFound, val}
		}
		return n, nil
	default:
		return 0, badType(path)
	}
}

func getString(table map[string]interface{}, key, path string) (string, error) {
	v, present := table[key]
	if !present {
		return "", missingNode(path)
	}
	s, ok := v.(string)
	if !ok {
		return "", badType(path)
	}
	return s, nil
}

func parseRegisterIndex(key, path string) (int32, error) {
	n, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return 0, badType(path)
	}
	idx, err := bitrange.SafeInt64ToInt32(n)
	if err != nil {
		return 0, badType(path)
	}
	return idx, nil
}

// sortedKeys gives deterministic, alphabetical iteration order over a
// decoded TOML table — Go's map has none, but the reference loader's
// underlying table type does (see DESIGN.md).
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
