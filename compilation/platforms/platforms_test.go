package platforms

import (
	"testing"

	"github.com/crytic/abibind/compilation/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// findContract returns the loaded contract with the given name, failing the test if it is missing.
func findContract(t *testing.T, compilations []types.Compilation, name string) types.NamedContract {
	for _, contract := range types.Contracts(compilations) {
		if contract.Name == name {
			return contract
		}
	}
	require.FailNow(t, "contract not loaded", "expected contract '%s' to be loaded", name)
	return types.NamedContract{}
}

// assertTokenContract verifies the token fixture was loaded with its functions, bytecode and documentation.
func assertTokenContract(t *testing.T, contract *types.CompiledContract) {
	assert.Contains(t, contract.Abi.Methods, "balanceOf")
	assert.Contains(t, contract.Abi.Methods, "transfer")
	assert.NotEmpty(t, contract.RawAbi)
	assert.NotEmpty(t, contract.InitBytecode)
	assert.EqualValues(t, "0.8.19", contract.CompilerVersion())

	detail, ok := contract.Docs.Detail("transfer(address,uint256)")
	assert.True(t, ok)
	assert.EqualValues(t, "Moves `value` tokens to `to`.", detail)
	detail, ok = contract.Docs.Detail("balanceOf(address)")
	assert.True(t, ok)
	assert.EqualValues(t, "Returns the balance of an owner.", detail)
}

// TestLoaderTargets verifies each loader reports its platform and exposes its target.
func TestLoaderTargets(t *testing.T) {
	t.Parallel()

	loaders := map[string]ArtifactLoader{
		"truffle": NewTruffleArtifactConfig("."),
		"hardhat": NewHardhatArtifactConfig("."),
		"solc":    NewSolcArtifactConfig("combined.json"),
	}
	for platform, loader := range loaders {
		assert.EqualValues(t, platform, loader.Platform())
		loader.SetTarget("project")
		assert.EqualValues(t, "project", loader.GetTarget())
	}
}
