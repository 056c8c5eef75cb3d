package bindgen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/crytic/abibind/compilation/types"
	"github.com/crytic/medusa-geth/accounts/abi"
)

// DefaultDoc is the documentation attached to an accessor when neither the developer nor the user documentation
// describes the function.
const DefaultDoc = "Generated by abibind."

// CallKind describes which call builder a generated accessor returns.
type CallKind int

const (
	// CallKindView indicates a read-only call (pure and view functions).
	CallKindView CallKind = iota
	// CallKindMutating indicates a state-mutating call (nonpayable and payable functions).
	CallKindMutating
)

// callKindOf resolves the call builder variant of a function from its state mutability.
func callKindOf(method abi.Method) CallKind {
	// IsConstant also honors the legacy `constant` flag of ABIs predating stateMutability.
	if method.IsConstant() {
		return CallKindView
	}
	return CallKindMutating
}

// String returns the state mutability class of the CallKind.
func (k CallKind) String() string {
	switch k {
	case CallKindView:
		return "view"
	case CallKindMutating:
		return "mutating"
	default:
		return fmt.Sprintf("CallKind(%d)", int(k))
	}
}

// FunctionBinding is the resolved binding record of a single contract function. Everything the renderer needs is
// computed and validated up front, so rendering cannot fail on account of the ABI.
type FunctionBinding struct {
	// Identifier is the generated method name, unique within the contract.
	Identifier string

	// Signature is the canonical ABI signature of the function.
	Signature string

	// Selector is the 4-byte function selector derived from Signature.
	Selector [4]byte

	// Inputs are the accessor parameters, in declaration order.
	Inputs []BoundParam

	// InputTuple is the Go type grouping all inputs, used by the signature accessor.
	InputTuple string

	// Output is the Go type the call builder decodes results into.
	Output string

	// Doc is the documentation string attached to the accessor.
	Doc string

	// Kind selects the read-only or the state-mutating call builder.
	Kind CallKind

	// Accessor is the rendered, formatted accessor method. It is populated by the renderer.
	Accessor string

	// SignatureAccessor is the rendered, formatted signature accessor method. It is populated by the renderer.
	SignatureAccessor string
}

// bindFunction resolves the binding record of a function under the given identifier. Type mapping failures are
// reported as a TypeMappingError naming the function signature and the offending parameter.
func bindFunction(method abi.Method, identifier string, docs types.ContractDocs) (*FunctionBinding, error) {
	signature := Signature(method)

	inputs, position, err := MapInputs(method.Inputs)
	if err != nil {
		return nil, &TypeMappingError{
			Signature: signature,
			Direction: ParamDirectionInput,
			Position:  position,
			Type:      method.Inputs[position].Type.String(),
			Err:       err,
		}
	}

	output, position, err := MapOutputs(method.Outputs)
	if err != nil {
		return nil, &TypeMappingError{
			Signature: signature,
			Direction: ParamDirectionOutput,
			Position:  position,
			Type:      method.Outputs[position].Type.String(),
			Err:       err,
		}
	}

	doc, ok := docs.Detail(signature)
	if !ok {
		doc = DefaultDoc
	}

	return &FunctionBinding{
		Identifier: identifier,
		Signature:  signature,
		Selector:   SelectorFromSignature(signature),
		Inputs:     inputs,
		InputTuple: InputTuple(inputs),
		Output:     output,
		Doc:        doc,
		Kind:       callKindOf(method),
	}, nil
}

// SelectorLiteral renders the function selector as a Go array literal.
func (f *FunctionBinding) SelectorLiteral() string {
	return SelectorLiteral(f.Selector)
}

// SelectorHex renders the function selector as a 0x-prefixed hex string.
func (f *FunctionBinding) SelectorHex() string {
	return fmt.Sprintf("0x%x", f.Selector[:])
}

// Params renders the accessor's parameter list, e.g. `to common.Address, value *big.Int`.
func (f *FunctionBinding) Params() string {
	params := make([]string, len(f.Inputs))
	for i, input := range f.Inputs {
		params[i] = fmt.Sprintf("%s %s", input.Name, input.Type)
	}
	return strings.Join(params, ", ")
}

// Args renders the call arguments forwarded to the call builder, e.g. `to, value`. It is empty for functions
// without inputs.
func (f *FunctionBinding) Args() string {
	args := make([]string, len(f.Inputs))
	for i, input := range f.Inputs {
		args[i] = input.Name
	}
	return strings.Join(args, ", ")
}

// Builder returns the name of the call builder type the accessor returns.
func (f *FunctionBinding) Builder() string {
	if f.Kind == CallKindView {
		return "ViewMethodBuilder"
	}
	return "MethodBuilder"
}

// Constructor returns the name of the runtime function constructing the accessor's call builder.
func (f *FunctionBinding) Constructor() string {
	if f.Kind == CallKindView {
		return "NewViewMethod"
	}
	return "NewMethod"
}

// CommentSignature renders the signature for a line comment. Function names are not restricted by the ABI, so
// non-printable runes are escaped and cannot end the comment.
func (f *FunctionBinding) CommentSignature() string {
	return escapeComment(f.Signature)
}

// DocLines splits the documentation string into comment lines. Control characters other than tabs are dropped.
func (f *FunctionBinding) DocLines() []string {
	lines := strings.Split(strings.TrimSpace(f.Doc), "\n")
	for i, line := range lines {
		line = strings.Map(func(r rune) rune {
			if r != '\t' && !unicode.IsPrint(r) {
				return -1
			}
			return r
		}, line)
		lines[i] = strings.TrimRight(line, " \t")
	}
	return lines
}

// escapeComment returns s unchanged if every rune is printable, or its Go-escaped form otherwise.
func escapeComment(s string) string {
	if strings.IndexFunc(s, func(r rune) bool { return !unicode.IsPrint(r) }) < 0 {
		return s
	}
	quoted := strconv.Quote(s)
	return quoted[1 : len(quoted)-1]
}
