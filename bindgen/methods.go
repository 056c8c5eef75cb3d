package bindgen

import (
	"bytes"
	"go/format"
	"strings"
	"text/template"

	"github.com/crytic/abibind/compilation/types"
	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// orderedMethods returns the functions of a contract ABI in a deterministic order. abi.ABI keeps its methods in a
// map keyed by a normalized name, where overloads are suffixed in declaration order (foo, foo0, foo1, ...). Sorting by
// the declared name, then by the normalized one, groups overloads together and keeps them in declaration order.
func orderedMethods(contractAbi abi.ABI) []abi.Method {
	methods := make([]abi.Method, 0, len(contractAbi.Methods))
	for _, method := range contractAbi.Methods {
		methods = append(methods, method)
	}
	slices.SortFunc(methods, func(a, b abi.Method) int {
		if a.RawName != b.RawName {
			return strings.Compare(a.RawName, b.RawName)
		}
		// "foo10" must sort after "foo9".
		if len(a.Name) != len(b.Name) {
			return len(a.Name) - len(b.Name)
		}
		return strings.Compare(a.Name, b.Name)
	})
	return methods
}

// ResolveFunctions resolves the binding record of every function of a contract ABI, in a deterministic order. It
// validates the whole contract up front: the first alias, type mapping or naming failure aborts the resolution.
func ResolveFunctions(contractAbi abi.ABI, aliases map[string]string, docs types.ContractDocs) ([]*FunctionBinding, error) {
	methods := orderedMethods(contractAbi)

	identifiers, err := ResolveIdentifiers(methods, aliases)
	if err != nil {
		return nil, err
	}

	functions := make([]*FunctionBinding, len(methods))
	claimed := make(map[string]string, len(methods))
	for i, method := range methods {
		function, err := bindFunction(method, identifiers[i], docs)
		if err != nil {
			return nil, err
		}

		// Two functions may only share a name if the caller renames one of them.
		if first, exists := claimed[function.Identifier]; exists {
			return nil, &DuplicateIdentifierError{
				Identifier: function.Identifier,
				First:      first,
				Second:     function.Signature,
			}
		}
		claimed[function.Identifier] = function.Signature
		functions[i] = function
	}
	return functions, nil
}

// renderFunction renders the accessor and the signature accessor of a resolved function, storing the formatted
// fragments on the record.
func renderFunction(contractName string, function *FunctionBinding) error {
	data := &accessorData{
		Contract:        contractName,
		FunctionBinding: function,
	}

	accessor, err := renderFragment(accessorTemplate, data)
	if err != nil {
		return errors.Wrapf(err, "could not render the accessor of '%s'", function.Signature)
	}
	signatureAccessor, err := renderFragment(signatureAccessorTemplate, data)
	if err != nil {
		return errors.Wrapf(err, "could not render the signature accessor of '%s'", function.Signature)
	}

	function.Accessor = accessor
	function.SignatureAccessor = signatureAccessor
	return nil
}

// renderFragment executes a template producing a list of declarations and returns it gofmt-formatted, without
// surrounding blank lines.
func renderFragment(tmpl *template.Template, data any) (string, error) {
	buffer := new(bytes.Buffer)
	if err := tmpl.Execute(buffer, data); err != nil {
		return "", errors.WithStack(err)
	}
	code, err := format.Source(buffer.Bytes())
	if err != nil {
		return "", errors.Wrapf(err, "generated code is not valid Go\n%s", buffer)
	}
	return strings.TrimSpace(string(code)), nil
}
