package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/crytic/abibind/cmd/exitcodes"
	"github.com/crytic/abibind/compilation/types"
	"github.com/crytic/abibind/config"
	"github.com/crytic/abibind/utils/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTruffleProjectConfig copies the truffle fixture project into a test directory and returns a project config
// loading it, writing bindings below the project.
func newTruffleProjectConfig(t *testing.T) *config.ProjectConfig {
	projectDirectory := testutils.CopyToTestDirectory(t, "../compilation/platforms/testdata/truffle")
	projectConfig, err := config.GetDefaultProjectConfig("truffle")
	require.NoError(t, err)
	require.NoError(t, projectConfig.Artifacts.SetTarget(projectDirectory))
	projectConfig.Generation.OutputDirectory = filepath.Join(projectDirectory, "bindings")
	return projectConfig
}

// TestGenerateBindings verifies a generate run writes one file per contract and skips unchanged contracts on the
// next run unless forced.
func TestGenerateBindings(t *testing.T) {
	projectConfig := newTruffleProjectConfig(t)
	outputDirectory := projectConfig.Generation.OutputDirectory

	summary, err := generateBindings(context.Background(), projectConfig, false)
	require.NoError(t, err)
	assert.EqualValues(t, 2, summary.Generated)
	assert.EqualValues(t, 0, summary.Skipped)
	assert.Empty(t, summary.Failed)
	assert.ElementsMatch(t, []string{
		filepath.Join(outputDirectory, "i_ownable.go"),
		filepath.Join(outputDirectory, "token.go"),
	}, summary.Files)

	source, err := os.ReadFile(filepath.Join(outputDirectory, "token.go"))
	require.NoError(t, err)
	assert.Contains(t, string(source), "package bindings")
	assert.Contains(t, string(source), "func NewToken(")
	assert.Contains(t, string(source), "TokenDeployments")

	// The cache records both contracts, so nothing is regenerated.
	summary, err = generateBindings(context.Background(), projectConfig, false)
	require.NoError(t, err)
	assert.EqualValues(t, 0, summary.Generated)
	assert.EqualValues(t, 2, summary.Skipped)

	// Changing the options of a contract invalidates its entry only.
	projectConfig.Generation.Aliases["Token"] = map[string]string{"transfer(address,uint256)": "Send"}
	summary, err = generateBindings(context.Background(), projectConfig, false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, summary.Generated)
	assert.EqualValues(t, 1, summary.Skipped)
	source, err = os.ReadFile(filepath.Join(outputDirectory, "token.go"))
	require.NoError(t, err)
	assert.Contains(t, string(source), "Send(")

	// Forcing regenerates everything.
	summary, err = generateBindings(context.Background(), projectConfig, true)
	require.NoError(t, err)
	assert.EqualValues(t, 2, summary.Generated)
	assert.EqualValues(t, 0, summary.Skipped)
}

// TestGenerateBindingsOutputDirectory verifies a shared cache does not skip contracts whose bindings are written to a
// new output directory.
func TestGenerateBindingsOutputDirectory(t *testing.T) {
	projectConfig := newTruffleProjectConfig(t)
	projectConfig.Generation.CacheFile = filepath.Join(t.TempDir(), "cache.db")

	summary, err := generateBindings(context.Background(), projectConfig, false)
	require.NoError(t, err)
	assert.EqualValues(t, 2, summary.Generated)

	movedDirectory := filepath.Join(t.TempDir(), "moved")
	projectConfig.Generation.OutputDirectory = movedDirectory
	summary, err = generateBindings(context.Background(), projectConfig, false)
	require.NoError(t, err)
	assert.EqualValues(t, 2, summary.Generated)
	assert.EqualValues(t, 0, summary.Skipped)
	assert.FileExists(t, filepath.Join(movedDirectory, "token.go"))
	assert.FileExists(t, filepath.Join(movedDirectory, "i_ownable.go"))

	summary, err = generateBindings(context.Background(), projectConfig, false)
	require.NoError(t, err)
	assert.EqualValues(t, 0, summary.Generated)
	assert.EqualValues(t, 2, summary.Skipped)
}

// TestGenerateBindingsFailures verifies a contract whose binding cannot be generated is reported without stopping
// the run.
func TestGenerateBindingsFailures(t *testing.T) {
	projectConfig := newTruffleProjectConfig(t)
	projectConfig.Generation.CacheEnabled = false
	projectConfig.Generation.Aliases["Token"] = map[string]string{"missing()": "Missing"}

	summary, err := generateBindings(context.Background(), projectConfig, false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, summary.Generated)
	assert.EqualValues(t, []string{"Token"}, summary.Failed)
	assert.NoFileExists(t, filepath.Join(projectConfig.Generation.OutputDirectory, "token.go"))
	assert.NoFileExists(t, projectConfig.Generation.CachePath())
}

// TestGenerateCommand runs the generate command against a config file and verifies its exit codes.
func TestGenerateCommand(t *testing.T) {
	projectDirectory := testutils.CopyToTestDirectory(t, "../compilation/platforms/testdata/truffle")
	projectConfig, err := config.GetDefaultProjectConfig("truffle")
	require.NoError(t, err)
	require.NoError(t, projectConfig.Artifacts.SetTarget("."))
	configPath := filepath.Join(projectDirectory, DefaultProjectConfigFilename)
	require.NoError(t, projectConfig.WriteToFile(configPath))

	testutils.ExecuteInDirectory(t, projectDirectory, func() {
		rootCmd.SetArgs([]string{"generate", "--config", configPath, "--contracts", "Token", "--no-color"})
		err := rootCmd.Execute()
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(projectDirectory, "bindings", "token.go"))
		assert.NoFileExists(t, filepath.Join(projectDirectory, "bindings", "i_ownable.go"))

		// An alias matching no function fails the contract with the generation exit code.
		rootCmd.SetArgs([]string{"generate", "--config", configPath, "--contracts", "Token", "--no-color",
			"--alias", "Token:missing()=Missing"})
		err = rootCmd.Execute()
		_, exitCode := exitcodes.GetInnerErrorAndExitCode(err)
		assert.EqualValues(t, exitcodes.ExitCodeGenerationError, exitCode)
	})
}

// TestSelectContracts verifies contract selection rejects unknown and ambiguous contract names.
func TestSelectContracts(t *testing.T) {
	contracts := []types.NamedContract{
		{Name: "Token", SourcePath: "contracts/Token.sol"},
		{Name: "Vault", SourcePath: "contracts/Vault.sol"},
	}

	selected, err := selectContracts(contracts, &config.GenerationConfig{})
	require.NoError(t, err)
	assert.Len(t, selected, 2)

	selected, err = selectContracts(contracts, &config.GenerationConfig{Contracts: []string{"Vault"}})
	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.EqualValues(t, "Vault", selected[0].Name)

	_, err = selectContracts(contracts, &config.GenerationConfig{Contracts: []string{"Missing"}})
	assert.ErrorContains(t, err, "'Missing' was not found")

	duplicated := append(contracts, types.NamedContract{Name: "Token", SourcePath: "contracts/legacy/Token.sol"})
	_, err = selectContracts(duplicated, &config.GenerationConfig{})
	assert.ErrorContains(t, err, "declared in both")

	// Selecting the other contract sidesteps the ambiguity.
	_, err = selectContracts(duplicated, &config.GenerationConfig{Contracts: []string{"Vault"}})
	assert.NoError(t, err)

	// Distinct names mapping to the same binding type would overwrite each other's file.
	colliding := append(contracts,
		types.NamedContract{Name: "my_token", SourcePath: "contracts/MyToken.sol"},
		types.NamedContract{Name: "MyToken", SourcePath: "contracts/legacy/MyToken.sol"},
	)
	_, err = selectContracts(colliding, &config.GenerationConfig{})
	assert.ErrorContains(t, err, "both generate the binding type 'MyToken'")
	assert.ErrorContains(t, err, "select the contracts to generate bindings for")

	selected, err = selectContracts(colliding, &config.GenerationConfig{Contracts: []string{"Token", "MyToken"}})
	require.NoError(t, err)
	assert.Len(t, selected, 2)

	_, err = selectContracts(nil, &config.GenerationConfig{})
	assert.Error(t, err)
}

// TestParseAliasFlag verifies the parsing of --alias values.
func TestParseAliasFlag(t *testing.T) {
	contract, signature, alias, err := parseAliasFlag("Token:transfer(address,uint256)=Send")
	require.NoError(t, err)
	assert.EqualValues(t, "Token", contract)
	assert.EqualValues(t, "transfer(address,uint256)", signature)
	assert.EqualValues(t, "Send", alias)

	for _, value := range []string{"transfer()=Send", ":transfer()=Send", "Token:transfer()", "Token:=Send", "Token:transfer()="} {
		_, _, _, err = parseAliasFlag(value)
		assert.Error(t, err, value)
	}
}

// TestBindingFileName verifies binding file names are snake_case and never excluded by the go tool.
func TestBindingFileName(t *testing.T) {
	cases := map[string]string{
		"Token":        "token.go",
		"IOwnable":     "i_ownable.go",
		"ERC20Token":   "erc20_token.go",
		"MyHTTPClient": "my_http_client.go",
		"TokenTest":    "token_test_binding.go",
		"BridgeLinux":  "bridge_linux_binding.go",
		"Amd64":        "amd64.go",
	}
	for contractName, expected := range cases {
		assert.EqualValues(t, expected, bindingFileName(contractName), contractName)
	}
}
