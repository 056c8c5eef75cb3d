package bindgen

import (
	"fmt"
	"strings"

	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/pkg/errors"
)

// unitType is the Go type used for functions without outputs.
const unitType = "struct{}"

// BoundParam describes a single function input as it appears in a generated accessor.
type BoundParam struct {
	// Name is the Go parameter name. It is unique within the function and never a reserved word.
	Name string

	// Field is the exported field name used for this input in the signature accessor's input tuple.
	Field string

	// Type is the Go type expression of the parameter.
	Type string
}

// MapType converts an ABI type to a Go type expression. Since there is no clear mapping from all Solidity types to
// Go ones (e.g. uint17), those that cannot be exactly mapped use an upscaled type (*big.Int). Tuples become
// anonymous structs whose fields follow the tuple's component names.
func MapType(kind abi.Type) (string, error) {
	switch kind.T {
	case abi.BoolTy:
		return "bool", nil
	case abi.StringTy:
		return "string", nil
	case abi.AddressTy:
		return "common.Address", nil
	case abi.HashTy:
		return "common.Hash", nil
	case abi.IntTy, abi.UintTy:
		prefix := "int"
		if kind.T == abi.UintTy {
			prefix = "uint"
		}
		switch kind.Size {
		case 8, 16, 32, 64:
			return fmt.Sprintf("%s%d", prefix, kind.Size), nil
		}
		if kind.Size <= 0 || kind.Size > 256 || kind.Size%8 != 0 {
			return "", errors.Errorf("invalid integer bit size %d", kind.Size)
		}
		return "*big.Int", nil
	case abi.FixedBytesTy:
		if kind.Size <= 0 || kind.Size > 32 {
			return "", errors.Errorf("invalid fixed bytes size %d", kind.Size)
		}
		return fmt.Sprintf("[%d]byte", kind.Size), nil
	case abi.BytesTy:
		return "[]byte", nil
	case abi.FunctionTy:
		return "[24]byte", nil
	case abi.SliceTy:
		elem, err := mapElemType(kind)
		if err != nil {
			return "", err
		}
		return "[]" + elem, nil
	case abi.ArrayTy:
		if kind.Size < 0 {
			return "", errors.Errorf("invalid array length %d", kind.Size)
		}
		elem, err := mapElemType(kind)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("[%d]%s", kind.Size, elem), nil
	case abi.TupleTy:
		return mapTupleType(kind)
	default:
		return "", errors.Errorf("unsupported ABI type '%s'", kind.String())
	}
}

// mapElemType maps the element type of an array or slice.
func mapElemType(kind abi.Type) (string, error) {
	if kind.Elem == nil {
		return "", errors.Errorf("array type '%s' has no element type", kind.String())
	}
	elem, err := MapType(*kind.Elem)
	if err != nil {
		return "", errors.Wrapf(err, "invalid element type of '%s'", kind.String())
	}
	return elem, nil
}

// mapTupleType maps a tuple to an anonymous struct. Field names are the camel-cased component names, or Field<i>
// for unnamed components, made unique in declaration order.
func mapTupleType(kind abi.Type) (string, error) {
	if len(kind.TupleElems) == 0 {
		return unitType, nil
	}

	fields := make([]string, len(kind.TupleElems))
	used := make(map[string]bool, len(kind.TupleElems))
	for i, elem := range kind.TupleElems {
		if elem == nil {
			return "", errors.Errorf("tuple component %d of '%s' has no type", i, kind.String())
		}
		elemType, err := MapType(*elem)
		if err != nil {
			return "", errors.Wrapf(err, "invalid component %d of '%s'", i, kind.String())
		}

		var rawName string
		if i < len(kind.TupleRawNames) {
			rawName = kind.TupleRawNames[i]
		}
		name := capitalise(sanitizeIdentifier(abi.ToCamelCase(rawName)))
		if name == "" || !isLetter(name) {
			name = fmt.Sprintf("Field%d", i)
		}
		name = abi.ResolveNameConflict(name, func(s string) bool { return used[s] })
		used[name] = true

		fields[i] = fmt.Sprintf("%s %s", name, elemType)
	}
	return fmt.Sprintf("struct{ %s }", strings.Join(fields, "; ")), nil
}

// MapOutputs maps the outputs of a function to a single Go type: the unit type for no outputs, the output's own type
// for a single output, and an ordered tuple struct (Ret0, Ret1, ...) for two or more.
// Returns the position of the failing output alongside the error, if any.
func MapOutputs(outputs abi.Arguments) (string, int, error) {
	switch len(outputs) {
	case 0:
		return unitType, -1, nil
	case 1:
		output, err := MapType(outputs[0].Type)
		if err != nil {
			return "", 0, err
		}
		return output, -1, nil
	}

	fields := make([]string, len(outputs))
	for i, output := range outputs {
		outputType, err := MapType(output.Type)
		if err != nil {
			return "", i, err
		}
		fields[i] = fmt.Sprintf("Ret%d %s", i, outputType)
	}
	return fmt.Sprintf("struct{ %s }", strings.Join(fields, "; ")), -1, nil
}

// MapInputs maps the inputs of a function to a flat, ordered list of Go parameters. Inputs are never collapsed,
// even when there is exactly one. Returns the position of the failing input alongside the error, if any.
func MapInputs(inputs abi.Arguments) ([]BoundParam, int, error) {
	params := make([]BoundParam, len(inputs))
	used := make(map[string]bool, len(inputs))
	for i, input := range inputs {
		inputType, err := MapType(input.Type)
		if err != nil {
			return nil, i, err
		}

		name := abi.ResolveNameConflict(inputName(i, input.Name), func(s string) bool { return used[s] })
		used[name] = true

		params[i] = BoundParam{
			Name:  name,
			Field: capitalise(name),
			Type:  inputType,
		}
	}
	return params, -1, nil
}

// InputTuple renders the struct type grouping the given parameters, used as the input type of a signature
// accessor. Functions without inputs use the unit type.
func InputTuple(params []BoundParam) string {
	if len(params) == 0 {
		return unitType
	}
	fields := make([]string, len(params))
	for i, param := range params {
		fields[i] = fmt.Sprintf("%s %s", param.Field, param.Type)
	}
	return fmt.Sprintf("struct{ %s }", strings.Join(fields, "; "))
}
