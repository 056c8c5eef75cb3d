package bindgen

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"strconv"
	"strings"

	"github.com/crytic/abibind/compilation/types"
	"github.com/crytic/abibind/logging"
	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/pkg/errors"
)

const (
	// DefaultPackage is the package name generated files use when none is provided.
	DefaultPackage = "bindings"

	// DefaultRuntimePackage is the import path of the runtime package generated bindings call into.
	DefaultRuntimePackage = "github.com/crytic/abibind/contract"

	// DefaultCommonPackage is the import path of the go-ethereum `common` package generated bindings use for
	// addresses and hashes. It must be the same module the runtime package is built against.
	DefaultCommonPackage = "github.com/crytic/medusa-geth/common"
)

// Options describes the options used when generating the binding of a single contract.
type Options struct {
	// Package is the name of the package the generated file belongs to.
	Package string

	// Aliases maps function signatures to the method name to generate for them, overriding the derived name.
	Aliases map[string]string

	// Docs provides the documentation attached to the generated accessors. If both lookups are empty, the docs of
	// the compiled contract are used.
	Docs types.ContractDocs

	// RuntimePackage is the import path of the runtime package generated bindings call into.
	RuntimePackage string

	// CommonPackage is the import path of the go-ethereum `common` package.
	CommonPackage string
}

// DefaultOptions returns Options with every field set to its default value.
func DefaultOptions() Options {
	return Options{
		Package:        DefaultPackage,
		Aliases:        make(map[string]string),
		Docs:           types.NewContractDocs(),
		RuntimePackage: DefaultRuntimePackage,
		CommonPackage:  DefaultCommonPackage,
	}
}

// withDefaults returns a copy of the Options where unset fields take their default value.
func (o Options) withDefaults(compiled *types.CompiledContract) Options {
	if o.Package == "" {
		o.Package = DefaultPackage
	}
	if o.RuntimePackage == "" {
		o.RuntimePackage = DefaultRuntimePackage
	}
	if o.CommonPackage == "" {
		o.CommonPackage = DefaultCommonPackage
	}
	if len(o.Docs.DevDoc) == 0 && len(o.Docs.UserDoc) == 0 {
		o.Docs = compiled.Docs
	}
	return o
}

// Binding is the result of generating the binding of a single contract.
type Binding struct {
	// ContractName is the generated contract type name.
	ContractName string

	// Functions are the bindings of the contract's functions, in the order they appear in Source.
	Functions []FunctionBinding

	// Fallback indicates whether a fallback accessor was generated.
	Fallback bool

	// Source is the complete, gofmt-formatted Go source file.
	Source []byte
}

// Generate generates the Go binding of a compiled contract under the given contract name. Every function is
// resolved and validated before anything is rendered, so either the complete binding is returned or none of it.
// Invalid names, aliases or types are reported through the typed errors of this package; an InternalError
// indicates the generator itself produced invalid code.
func Generate(compiled *types.CompiledContract, name string, opts Options) (*Binding, error) {
	logger := logging.GlobalLogger.NewSubLogger("module", logging.BINDGEN_SERVICE)

	if compiled == nil {
		return nil, errors.New("cannot generate a binding without a compiled contract")
	}
	if compiled.RawAbi == "" {
		return nil, errors.New("cannot generate a binding for a contract without its raw ABI")
	}
	opts = opts.withDefaults(compiled)
	if !token.IsIdentifier(opts.Package) || opts.Package == "_" {
		return nil, &InvalidPackageError{Package: opts.Package}
	}

	contractName := ContractIdentifier(name)
	if contractName == "" {
		return nil, &InvalidContractNameError{Name: name}
	}

	// Resolve every function before rendering anything.
	functions, err := ResolveFunctions(compiled.Abi, opts.Aliases, opts.Docs)
	if err != nil {
		return nil, err
	}
	logger.Debug("Resolved ", len(functions), " functions of contract ", contractName)

	for _, function := range functions {
		if err = renderFunction(contractName, function); err != nil {
			return nil, &InternalError{Err: err}
		}
		logger.Trace("Bound ", function.Signature, " as ", function.Identifier, " with selector ", function.SelectorHex())
	}

	fallback := compiled.Abi.HasFallback() || compiled.Abi.HasReceive()
	deployments := make(map[string]string, len(compiled.Deployments))
	for network, address := range compiled.Deployments {
		deployments[network] = address.Hex()
	}
	source, err := renderFile(&fileData{
		Package:         opts.Package,
		CompilerVersion: compiled.CompilerVersion(),
		Imports:         fileImports(functions, opts),
		Contract:        contractName,
		ABI:             strconv.Quote(compiled.RawAbi),
		Deployments:     deployments,
		Functions:       functions,
		Fallback:        fallback,
	})
	if err != nil {
		return nil, &InternalError{Err: err}
	}

	binding := &Binding{
		ContractName: contractName,
		Functions:    make([]FunctionBinding, len(functions)),
		Fallback:     fallback,
		Source:       source,
	}
	for i, function := range functions {
		binding.Functions[i] = *function
	}
	return binding, nil
}

// ContractIdentifier derives the generated contract type name from a contract name. Returns an empty string if no
// usable identifier can be derived.
func ContractIdentifier(name string) string {
	identifier := capitalise(sanitizeIdentifier(abi.ToCamelCase(name)))
	if identifier == "" || !token.IsExported(identifier) {
		return ""
	}
	return identifier
}

// fileImports returns the import specs of a generated file. `math/big` is only imported when a function type
// refers to it, as unused imports do not compile.
func fileImports(functions []*FunctionBinding, opts Options) []string {
	imports := make([]string, 0, 4)
	for _, function := range functions {
		// The input tuple holds every input type.
		if strings.Contains(function.InputTuple, "big.Int") || strings.Contains(function.Output, "big.Int") {
			imports = append(imports, strconv.Quote("math/big"), "")
			break
		}
	}
	imports = append(imports,
		strconv.Quote(opts.CommonPackage),
		fmt.Sprintf("contract %s", strconv.Quote(opts.RuntimePackage)),
	)
	return imports
}

// renderFile executes the file template and formats the result.
func renderFile(data *fileData) ([]byte, error) {
	buffer := new(bytes.Buffer)
	if err := fileTemplate.Execute(buffer, data); err != nil {
		return nil, errors.WithStack(err)
	}
	code, err := format.Source(buffer.Bytes())
	if err != nil {
		return nil, errors.Wrapf(err, "generated code is not valid Go\n%s", buffer)
	}
	return code, nil
}
