package bindgen

import (
	"errors"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
	"testing"
	"text/template"

	"github.com/crytic/abibind/compilation/types"
	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/crytic/medusa-geth/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTokenABI is the interface of a token-like contract exercising views, mutating functions, overloads, tuples,
// multiple outputs and a receive function.
const testTokenABI = `[
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"getReserves","stateMutability":"view","inputs":[],"outputs":[{"name":"reserve0","type":"uint112"},{"name":"reserve1","type":"uint112"},{"name":"blockTimestampLast","type":"uint32"}]},
	{"type":"function","name":"submit","stateMutability":"payable","inputs":[{"name":"order","type":"tuple","components":[{"name":"maker","type":"address"},{"name":"amount","type":"uint256"}]},{"name":"type","type":"uint8"}],"outputs":[]},
	{"type":"function","name":"safeTransferFrom","stateMutability":"nonpayable","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"id","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"safeTransferFrom","stateMutability":"nonpayable","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"id","type":"uint256"},{"name":"data","type":"bytes"}],"outputs":[]},
	{"type":"event","name":"Transfer","anonymous":false,"inputs":[{"indexed":true,"name":"from","type":"address"},{"indexed":true,"name":"to","type":"address"},{"indexed":false,"name":"value","type":"uint256"}]},
	{"type":"receive","stateMutability":"payable"}
]`

// testTokenAliases renames the overloaded safeTransferFrom so the token's functions resolve to distinct names.
var testTokenAliases = map[string]string{
	"safeTransferFrom(address,address,uint256,bytes)": "SafeTransferFromWithData",
}

// newTestContract parses a contract ABI, failing the test if it is invalid.
func newTestContract(t *testing.T, abiJSON string) *types.CompiledContract {
	compiled, err := types.NewCompiledContract(abiJSON)
	require.NoError(t, err)
	return compiled
}

// parseGeneratedMethods parses a generated source file and returns the method names declared on each receiver type.
func parseGeneratedMethods(t *testing.T, source []byte) map[string][]string {
	file, err := parser.ParseFile(token.NewFileSet(), "binding.go", source, parser.ParseComments)
	require.NoError(t, err, "generated source is not valid Go:\n%s", source)

	methods := make(map[string][]string)
	for _, decl := range file.Decls {
		funcDecl, ok := decl.(*ast.FuncDecl)
		if !ok || funcDecl.Recv == nil {
			continue
		}
		receiver := funcDecl.Recv.List[0].Type
		if star, ok := receiver.(*ast.StarExpr); ok {
			receiver = star.X
		}
		ident, ok := receiver.(*ast.Ident)
		require.True(t, ok, "unexpected receiver type on %s", funcDecl.Name.Name)
		methods[ident.Name] = append(methods[ident.Name], funcDecl.Name.Name)
	}
	return methods
}

// TestGenerate verifies a complete binding is generated with one accessor and one signature accessor per function.
func TestGenerate(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.Package = "token"
	opts.Aliases = testTokenAliases
	binding, err := Generate(newTestContract(t, testTokenABI), "my_token", opts)
	require.NoError(t, err)

	assert.EqualValues(t, "MyToken", binding.ContractName)
	assert.True(t, binding.Fallback)

	// Functions are ordered by declared name, overloads in declaration order.
	identifiers := make([]string, len(binding.Functions))
	for i, function := range binding.Functions {
		identifiers[i] = function.Identifier
	}
	expected := []string{"BalanceOf", "GetReserves", "SafeTransferFrom", "SafeTransferFromWithData", "Submit", "Transfer"}
	assert.EqualValues(t, expected, identifiers)

	methods := parseGeneratedMethods(t, binding.Source)
	assert.EqualValues(t, expected, methods["MyTokenMethods"])
	assert.EqualValues(t, expected, methods["MyTokenSignatures"])
	assert.ElementsMatch(t, []string{"Address", "Instance", "Methods", "Signatures", "Fallback"}, methods["MyToken"])

	source := string(binding.Source)
	assert.True(t, strings.HasPrefix(source, "// Code generated by abibind. DO NOT EDIT."))
	assert.Contains(t, source, "package token\n")
	assert.Contains(t, source, `"math/big"`)
	assert.Contains(t, source, `"github.com/crytic/medusa-geth/common"`)
	assert.Contains(t, source, `contract "github.com/crytic/abibind/contract"`)
	assert.Contains(t, source, "const MyTokenABI = ")
	assert.Contains(t, source, "func NewMyToken(address common.Address, backend contract.Backend) (*MyToken, error)")
}

// TestGenerateFunctionBindings verifies the resolved records of individual functions.
func TestGenerateFunctionBindings(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.Aliases = testTokenAliases
	binding, err := Generate(newTestContract(t, testTokenABI), "Token", opts)
	require.NoError(t, err)

	functions := make(map[string]FunctionBinding)
	for _, function := range binding.Functions {
		functions[function.Identifier] = function
	}

	transfer := functions["Transfer"]
	assert.EqualValues(t, "transfer(address,uint256)", transfer.Signature)
	assert.EqualValues(t, [4]byte{0xa9, 0x05, 0x9c, 0xbb}, transfer.Selector)
	assert.EqualValues(t, CallKindMutating, transfer.Kind)
	assert.EqualValues(t, "bool", transfer.Output)
	assert.EqualValues(t, "to common.Address, value *big.Int", transfer.Params())
	assert.Contains(t, transfer.Accessor, "func (m *TokenMethods) Transfer(to common.Address, value *big.Int) *contract.MethodBuilder[bool] {")
	assert.Contains(t, transfer.Accessor, "contract.NewMethod[bool](m.instance, [4]byte{0xa9, 0x05, 0x9c, 0xbb}, to, value)")
	assert.Contains(t, transfer.Accessor, "// Transfer binds the contract function `transfer(address,uint256)` with selector 0xa9059cbb.")
	assert.Contains(t, transfer.SignatureAccessor, "func (TokenSignatures) Transfer() contract.Signature[")

	balanceOf := functions["BalanceOf"]
	assert.EqualValues(t, CallKindView, balanceOf.Kind)
	assert.EqualValues(t, "*big.Int", balanceOf.Output)
	assert.Contains(t, balanceOf.Accessor, "*contract.ViewMethodBuilder[*big.Int]")
	assert.Contains(t, balanceOf.Accessor, "contract.NewViewMethod[*big.Int](m.instance, [4]byte{0x70, 0xa0, 0x82, 0x31}, owner)")

	getReserves := functions["GetReserves"]
	assert.EqualValues(t, "struct{ Ret0 *big.Int; Ret1 *big.Int; Ret2 uint32 }", getReserves.Output)
	assert.Empty(t, getReserves.Inputs)
	assert.EqualValues(t, "struct{}", getReserves.InputTuple)

	submit := functions["Submit"]
	assert.EqualValues(t, CallKindMutating, submit.Kind)
	assert.EqualValues(t, "struct{}", submit.Output)
	require.Len(t, submit.Inputs, 2)
	assert.EqualValues(t, "struct{ Maker common.Address; Amount *big.Int }", submit.Inputs[0].Type)
	assert.EqualValues(t, "type_", submit.Inputs[1].Name)

	withData := functions["SafeTransferFromWithData"]
	assert.EqualValues(t, "safeTransferFrom(address,address,uint256,bytes)", withData.Signature)
	assert.EqualValues(t, "from, to, id, data", withData.Args())
}

// TestGenerateDocs verifies accessors are documented by the developer docs, then the user docs, then a default.
func TestGenerateDocs(t *testing.T) {
	t.Parallel()

	compiled := newTestContract(t, testTokenABI)
	compiled.Docs.DevDoc["transfer(address,uint256)"] = "Moves tokens to a recipient.\nReverts on insufficient balance."
	compiled.Docs.UserDoc["transfer(address,uint256)"] = "Transfers tokens."
	compiled.Docs.UserDoc["balanceOf(address)"] = "Returns the balance of an owner."

	opts := DefaultOptions()
	opts.Aliases = testTokenAliases
	binding, err := Generate(compiled, "Token", opts)
	require.NoError(t, err)

	for _, function := range binding.Functions {
		switch function.Identifier {
		case "Transfer":
			assert.EqualValues(t, []string{"Moves tokens to a recipient.", "Reverts on insufficient balance."}, function.DocLines())
			assert.Contains(t, function.Accessor, "// Moves tokens to a recipient.\n// Reverts on insufficient balance.\nfunc")
		case "BalanceOf":
			assert.EqualValues(t, "Returns the balance of an owner.", function.Doc)
		default:
			assert.EqualValues(t, DefaultDoc, function.Doc)
		}
	}

	// Docs provided through the options take precedence over the contract's.
	opts.Docs = types.NewContractDocs()
	opts.Docs.UserDoc["submit((address,uint256),uint8)"] = "Submits an order."
	binding, err = Generate(compiled, "Token", opts)
	require.NoError(t, err)
	for _, function := range binding.Functions {
		if function.Identifier == "Submit" {
			assert.EqualValues(t, "Submits an order.", function.Doc)
		} else {
			assert.EqualValues(t, DefaultDoc, function.Doc)
		}
	}
}

// TestGenerateCommentInjection verifies function names and docs that would end a line comment are escaped, so they
// cannot declare code in the generated file.
func TestGenerateCommentInjection(t *testing.T) {
	t.Parallel()

	abiJSON := "[" +
		`{"type":"function","name":"x\nfunc init() { panic(1) }\n//","stateMutability":"nonpayable","inputs":[],"outputs":[]},` +
		"{\"type\":\"function\",\"name\":\"a`b\\nc\",\"stateMutability\":\"view\",\"inputs\":[],\"outputs\":[]}" +
		"]"
	compiled := newTestContract(t, abiJSON)
	compiled.Docs.DevDoc["a`b\nc()"] = "Reads.\rfunc init() { panic(2) }"

	binding, err := Generate(compiled, "Injected", DefaultOptions())
	require.NoError(t, err)

	file, err := parser.ParseFile(token.NewFileSet(), "binding.go", binding.Source, parser.ParseComments)
	require.NoError(t, err, "generated source is not valid Go:\n%s", binding.Source)
	for _, decl := range file.Decls {
		if funcDecl, ok := decl.(*ast.FuncDecl); ok {
			assert.NotEqualValues(t, "init", funcDecl.Name.Name)
		}
	}

	source := string(binding.Source)
	assert.Contains(t, source, "`x\\nfunc init() { panic(1) }\\n//()`")
	assert.Contains(t, source, "`a`b\\nc()`")
	assert.Contains(t, source, "// Reads.func init() { panic(2) }\n")
	assert.NotContains(t, source, "\nfunc init()")
}

// TestGenerateDeterministic verifies generating the same contract twice yields byte-identical output.
func TestGenerateDeterministic(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.Aliases = testTokenAliases
	first, err := Generate(newTestContract(t, testTokenABI), "Token", opts)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		next, err := Generate(newTestContract(t, testTokenABI), "Token", opts)
		require.NoError(t, err)
		assert.EqualValues(t, first.Source, next.Source)
	}
}

// TestGenerateWithoutFunctions verifies the containers are emitted for a contract without functions, but the glue
// and the accessors are not.
func TestGenerateWithoutFunctions(t *testing.T) {
	t.Parallel()

	binding, err := Generate(newTestContract(t, `[]`), "Empty", DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, binding.Functions)
	assert.False(t, binding.Fallback)

	methods := parseGeneratedMethods(t, binding.Source)
	assert.EqualValues(t, []string{"Address", "Instance"}, methods["Empty"])
	assert.Empty(t, methods["EmptyMethods"])
	assert.Empty(t, methods["EmptySignatures"])

	source := string(binding.Source)
	assert.Contains(t, source, "type EmptyMethods struct {")
	assert.Contains(t, source, "type EmptySignatures struct{}")
	assert.NotContains(t, source, `"math/big"`)
}

// TestGenerateFallback verifies exactly one fallback accessor is emitted when a fallback or receive is declared.
func TestGenerateFallback(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		`[{"type":"fallback","stateMutability":"nonpayable"}]`: true,
		`[{"type":"receive","stateMutability":"payable"}]`:     true,
		`[{"type":"fallback","stateMutability":"payable"},{"type":"receive","stateMutability":"payable"}]`: true,
		`[{"type":"function","name":"poke","stateMutability":"nonpayable","inputs":[],"outputs":[]}]`:      false,
	}
	for abiJSON, hasFallback := range tests {
		binding, err := Generate(newTestContract(t, abiJSON), "Target", DefaultOptions())
		require.NoError(t, err)
		assert.EqualValues(t, hasFallback, binding.Fallback)

		count := 0
		for _, name := range parseGeneratedMethods(t, binding.Source)["Target"] {
			if name == "Fallback" {
				count++
			}
		}
		if hasFallback {
			assert.EqualValues(t, 1, count, "expected a single fallback accessor for %s", abiJSON)
		} else {
			assert.Zero(t, count, "expected no fallback accessor for %s", abiJSON)
		}
	}
}

// TestGenerateDeployments verifies known deployment addresses are emitted as a map sorted by network name.
func TestGenerateDeployments(t *testing.T) {
	t.Parallel()

	compiled := newTestContract(t, testTokenABI)
	binding, err := Generate(compiled, "Token", DefaultOptions())
	require.NoError(t, err)
	assert.NotContains(t, string(binding.Source), "TokenDeployments")

	compiled.Deployments = map[string]common.Address{
		"sepolia": common.HexToAddress("0x2222222222222222222222222222222222222222"),
		"mainnet": common.HexToAddress("0x1111111111111111111111111111111111111111"),
	}
	binding, err = Generate(compiled, "Token", DefaultOptions())
	require.NoError(t, err)
	parseGeneratedMethods(t, binding.Source)

	source := string(binding.Source)
	mainnet := strings.Index(source, `"mainnet": common.HexToAddress("0x1111111111111111111111111111111111111111")`)
	sepolia := strings.Index(source, `"sepolia": common.HexToAddress("0x2222222222222222222222222222222222222222")`)
	assert.Contains(t, source, "var TokenDeployments = map[string]common.Address{")
	require.True(t, mainnet > 0 && sepolia > 0, "missing deployment entries:\n%s", source)
	assert.Less(t, mainnet, sepolia)
}

// TestGenerateErrors verifies invalid input aborts generation with the matching typed error.
func TestGenerateErrors(t *testing.T) {
	t.Parallel()

	compiled := newTestContract(t, testTokenABI)

	// Overloads resolve to the same name unless one of them is aliased.
	_, err := Generate(compiled, "Token", DefaultOptions())
	var duplicateErr *DuplicateIdentifierError
	require.True(t, errors.As(err, &duplicateErr))
	assert.EqualValues(t, "SafeTransferFrom", duplicateErr.Identifier)
	assert.EqualValues(t, "safeTransferFrom(address,address,uint256)", duplicateErr.First)
	assert.EqualValues(t, "safeTransferFrom(address,address,uint256,bytes)", duplicateErr.Second)

	// An alias colliding with another function's name is a duplicate as well.
	opts := DefaultOptions()
	opts.Aliases = map[string]string{
		"safeTransferFrom(address,address,uint256,bytes)": "SafeTransferFromWithData",
		"balanceOf(address)": "Transfer",
	}
	_, err = Generate(compiled, "Token", opts)
	require.True(t, errors.As(err, &duplicateErr))
	assert.EqualValues(t, "Transfer", duplicateErr.Identifier)

	opts.Aliases = map[string]string{"mint(address,uint256)": "Mint"}
	_, err = Generate(compiled, "Token", opts)
	var danglingErr *DanglingAliasError
	assert.True(t, errors.As(err, &danglingErr))

	opts.Aliases = map[string]string{"transfer(address,uint256)": "not valid"}
	_, err = Generate(compiled, "Token", opts)
	var invalidErr *InvalidAliasError
	assert.True(t, errors.As(err, &invalidErr))

	_, err = Generate(compiled, "$$", DefaultOptions())
	var nameErr *InvalidContractNameError
	assert.True(t, errors.As(err, &nameErr))

	opts = DefaultOptions()
	opts.Package = "type"
	opts.Aliases = testTokenAliases
	_, err = Generate(compiled, "Token", opts)
	var packageErr *InvalidPackageError
	assert.True(t, errors.As(err, &packageErr))

	_, err = Generate(nil, "Token", DefaultOptions())
	assert.Error(t, err)
}

// TestGenerateTypeMappingError verifies an unmappable parameter type reports the function, direction and position.
func TestGenerateTypeMappingError(t *testing.T) {
	t.Parallel()

	compiled := newTestContract(t, `[]`)
	compiled.Abi.Methods = map[string]abi.Method{
		"broken": abi.NewMethod("broken", "broken", abi.Function, "view", true, false,
			abi.Arguments{{Name: "ok", Type: mustNewType(t, "bool")}},
			abi.Arguments{
				{Name: "fine", Type: mustNewType(t, "uint256")},
				{Name: "bad", Type: abi.Type{T: abi.SliceTy}},
			},
		),
	}

	binding, err := Generate(compiled, "Broken", DefaultOptions())
	assert.Nil(t, binding)

	var mappingErr *TypeMappingError
	require.True(t, errors.As(err, &mappingErr))
	assert.EqualValues(t, "broken(bool)", mappingErr.Signature)
	assert.EqualValues(t, ParamDirectionOutput, mappingErr.Direction)
	assert.EqualValues(t, 1, mappingErr.Position)
	assert.Contains(t, err.Error(), "broken(bool)")
}

// TestRenderFragmentInternalError verifies templates producing invalid Go are reported rather than emitted.
func TestRenderFragmentInternalError(t *testing.T) {
	t.Parallel()

	_, err := renderFragment(template.Must(template.New("broken").Parse("func {{.}} {")), "Broken")
	require.Error(t, err)

	internalErr := &InternalError{Err: err}
	var target *InternalError
	assert.True(t, errors.As(error(internalErr), &target))
	assert.ErrorIs(t, internalErr, err)
}
