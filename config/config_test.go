package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crytic/abibind/bindgen"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultProjectConfig verifies the default config is valid once an artifact platform is chosen.
func TestDefaultProjectConfig(t *testing.T) {
	t.Parallel()

	projectConfig, err := GetDefaultProjectConfig("truffle")
	require.NoError(t, err)
	require.NotNil(t, projectConfig.Artifacts)
	assert.EqualValues(t, "truffle", projectConfig.Artifacts.Platform)
	assert.EqualValues(t, bindgen.DefaultPackage, projectConfig.Generation.Package)
	assert.NoError(t, projectConfig.Validate())

	projectConfig, err = GetDefaultProjectConfig("")
	require.NoError(t, err)
	assert.Nil(t, projectConfig.Artifacts)
	assert.Error(t, projectConfig.Validate())

	_, err = GetDefaultProjectConfig("brownie")
	assert.Error(t, err)
}

// TestProjectConfigRoundTrip verifies a config written to disk is read back unchanged.
func TestProjectConfigRoundTrip(t *testing.T) {
	t.Parallel()

	projectConfig, err := GetDefaultProjectConfig("hardhat")
	require.NoError(t, err)
	projectConfig.Generation.Package = "token"
	projectConfig.Generation.Contracts = []string{"Token"}
	projectConfig.Generation.Aliases["Token"] = map[string]string{
		"safeTransferFrom(address,address,uint256,bytes)": "SafeTransferFromWithData",
	}
	projectConfig.Logging.Level = zerolog.DebugLevel

	path := filepath.Join(t.TempDir(), "abibind.json")
	require.NoError(t, projectConfig.WriteToFile(path))

	readConfig, err := ReadProjectConfigFromFile(path)
	require.NoError(t, err)
	assert.EqualValues(t, projectConfig.Generation, readConfig.Generation)
	assert.EqualValues(t, projectConfig.Logging, readConfig.Logging)
	assert.EqualValues(t, projectConfig.Artifacts.Platform, readConfig.Artifacts.Platform)
	assert.JSONEq(t, string(*projectConfig.Artifacts.PlatformConfig), string(*readConfig.Artifacts.PlatformConfig))
	assert.NoError(t, readConfig.Validate())
}

// TestReadProjectConfigDefaults verifies fields absent from a config file keep their defaults.
func TestReadProjectConfigDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "abibind.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"artifacts":{"platform":"solc"},"generation":{"package":"erc20"}}`), 0644))

	projectConfig, err := ReadProjectConfigFromFile(path)
	require.NoError(t, err)
	assert.EqualValues(t, "erc20", projectConfig.Generation.Package)
	assert.EqualValues(t, "bindings", projectConfig.Generation.OutputDirectory)
	assert.EqualValues(t, bindgen.DefaultRuntimePackage, projectConfig.Generation.RuntimePackage)
	assert.EqualValues(t, zerolog.InfoLevel, projectConfig.Logging.Level)
	assert.NoError(t, projectConfig.Validate())

	require.NoError(t, os.WriteFile(path, []byte(`{"generation":`), 0644))
	_, err = ReadProjectConfigFromFile(path)
	assert.Error(t, err)

	_, err = ReadProjectConfigFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// TestProjectConfigValidate verifies each invalid setting is rejected.
func TestProjectConfigValidate(t *testing.T) {
	t.Parallel()

	tests := map[string]func(p *ProjectConfig){
		"unsupported platform": func(p *ProjectConfig) { p.Artifacts.Platform = "brownie" },
		"empty output":         func(p *ProjectConfig) { p.Generation.OutputDirectory = "" },
		"invalid package":      func(p *ProjectConfig) { p.Generation.Package = "my-bindings" },
		"blank package":        func(p *ProjectConfig) { p.Generation.Package = "_" },
		"empty runtime":        func(p *ProjectConfig) { p.Generation.RuntimePackage = "" },
		"invalid contract":     func(p *ProjectConfig) { p.Generation.Contracts = []string{"???"} },
		"unknown alias target": func(p *ProjectConfig) {
			p.Generation.Contracts = []string{"Token"}
			p.Generation.Aliases["Vault"] = map[string]string{"deposit()": "Deposit"}
		},
		"empty cache file": func(p *ProjectConfig) { p.Generation.CacheFile = "" },
		"unknown level":    func(p *ProjectConfig) { p.Logging.Level = zerolog.Level(42) },
	}
	for name, mutate := range tests {
		projectConfig, err := GetDefaultProjectConfig("solc")
		require.NoError(t, err)
		mutate(projectConfig)
		assert.Error(t, projectConfig.Validate(), "expected '%s' to be rejected", name)
	}
}

// TestGenerationConfig verifies contract selection and the options passed to the generator.
func TestGenerationConfig(t *testing.T) {
	t.Parallel()

	projectConfig, err := GetDefaultProjectConfig("solc")
	require.NoError(t, err)
	generation := projectConfig.Generation
	assert.True(t, generation.IncludesContract("Anything"))

	generation.Package = "token"
	generation.Contracts = []string{"Token"}
	generation.Aliases["Token"] = map[string]string{"foo(address)": "FooByAddress"}
	assert.True(t, generation.IncludesContract("Token"))
	assert.False(t, generation.IncludesContract("Vault"))

	opts := generation.BindgenOptions("Token")
	assert.EqualValues(t, "token", opts.Package)
	assert.EqualValues(t, map[string]string{"foo(address)": "FooByAddress"}, opts.Aliases)
	assert.EqualValues(t, bindgen.DefaultCommonPackage, opts.CommonPackage)
	assert.Empty(t, generation.BindgenOptions("Vault").Aliases)

	// Mutating the options does not leak into the config.
	opts.Aliases["bar()"] = "Bar"
	assert.Len(t, generation.Aliases["Token"], 1)

	assert.EqualValues(t, filepath.Join("bindings", ".abibind-cache.db"), generation.CachePath())
	generation.CacheFile = filepath.Join(t.TempDir(), "cache.db")
	assert.EqualValues(t, generation.CacheFile, generation.CachePath())
}
