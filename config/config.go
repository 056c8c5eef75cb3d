package config

import (
	"encoding/json"
	"go/token"
	"os"
	"path/filepath"

	"github.com/crytic/abibind/bindgen"
	"github.com/crytic/abibind/compilation"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/exp/slices"
)

// ProjectConfig describes the configuration of a project bindings are generated for.
type ProjectConfig struct {
	// Artifacts describes the configuration used to load the compiled contracts of the project.
	Artifacts *compilation.ArtifactConfig `json:"artifacts"`

	// Generation describes the configuration used to generate bindings.
	Generation GenerationConfig `json:"generation"`

	// Logging describes the configuration used for logging.
	Logging LoggingConfig `json:"logging"`
}

// GenerationConfig describes the configuration options used when generating bindings.
type GenerationConfig struct {
	// OutputDirectory describes the directory generated files are written to.
	OutputDirectory string `json:"outputDirectory"`

	// Package describes the package name of the generated files.
	Package string `json:"package"`

	// Contracts lists the names of the contracts to generate bindings for. If empty, bindings are generated for
	// every loaded contract.
	Contracts []string `json:"contracts"`

	// Aliases maps a contract name to the method aliases of its binding, which map function signatures to the
	// method name to generate for them.
	Aliases map[string]map[string]string `json:"aliases"`

	// RuntimePackage describes the import path of the runtime package generated bindings call into.
	RuntimePackage string `json:"runtimePackage"`

	// CommonPackage describes the import path of the go-ethereum `common` package generated bindings use.
	CommonPackage string `json:"commonPackage"`

	// CacheEnabled describes whether contracts whose artifacts did not change since their last generation are
	// skipped.
	CacheEnabled bool `json:"cacheEnabled"`

	// CacheFile describes the path of the generation cache database. Relative paths are resolved against the output
	// directory.
	CacheFile string `json:"cacheFile"`
}

// LoggingConfig describes the configuration options used for logging
type LoggingConfig struct {
	// Level describes whether logs of certain severity levels (eg info, warning, etc.) will be emitted or discarded.
	// Increasing level values represent more severe logs
	Level zerolog.Level `json:"level"`

	// LogDirectory describes the directory where structured log _files_ will be outputted. If the string is empty, then
	// no log files are kept
	LogDirectory string `json:"logDirectory"`

	// NoColor indicates whether console output should be colorized.
	NoColor bool `json:"noColor"`
}

// ReadProjectConfigFromFile reads a JSON-serialized ProjectConfig from a provided file path. Fields absent from the
// file keep their default value.
// Returns the ProjectConfig if it succeeds, or an error if one occurs.
func ReadProjectConfigFromFile(path string) (*ProjectConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	projectConfig, err := GetDefaultProjectConfig("")
	if err != nil {
		return nil, err
	}
	err = json.Unmarshal(b, projectConfig)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse project config '%s'", path)
	}

	return projectConfig, nil
}

// WriteToFile writes the ProjectConfig to a provided file path in a JSON-serialized format.
// Returns an error if one occurs.
func (p *ProjectConfig) WriteToFile(path string) error {
	b, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}

	err = os.WriteFile(path, b, 0644)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Validate validates that the ProjectConfig meets certain requirements.
// Returns an error if one occurs.
func (p *ProjectConfig) Validate() error {
	// Verify the artifact platform is known
	if p.Artifacts == nil {
		return errors.New("project config must specify an artifacts config")
	}
	if !compilation.IsSupportedArtifactPlatform(p.Artifacts.Platform) {
		return errors.Errorf("artifact platform '%s' is unsupported, expected one of %v", p.Artifacts.Platform,
			compilation.GetSupportedArtifactPlatforms())
	}

	// Verify the generated files have somewhere to go and a valid package
	if p.Generation.OutputDirectory == "" {
		return errors.New("output directory must not be empty")
	}
	if !token.IsIdentifier(p.Generation.Package) || p.Generation.Package == "_" {
		return errors.Errorf("'%s' is not a valid package name", p.Generation.Package)
	}
	if p.Generation.RuntimePackage == "" || p.Generation.CommonPackage == "" {
		return errors.New("runtime and common package import paths must not be empty")
	}

	// Verify contract names are usable
	for _, contract := range p.Generation.Contracts {
		if bindgen.ContractIdentifier(contract) == "" {
			return errors.Errorf("cannot generate a binding for contract '%s'", contract)
		}
	}
	for contract := range p.Generation.Aliases {
		if len(p.Generation.Contracts) > 0 && !slices.Contains(p.Generation.Contracts, contract) {
			return errors.Errorf("aliases are specified for contract '%s' which bindings are not generated for", contract)
		}
	}

	// Verify the cache has somewhere to go
	if p.Generation.CacheEnabled && p.Generation.CacheFile == "" {
		return errors.New("cache file must not be empty when the cache is enabled")
	}

	// Verify the log level exists
	if p.Logging.Level < zerolog.TraceLevel || p.Logging.Level > zerolog.Disabled {
		return errors.Errorf("unknown log level %d", p.Logging.Level)
	}
	return nil
}

// IncludesContract returns whether bindings are generated for the contract with the given name.
func (g *GenerationConfig) IncludesContract(name string) bool {
	return len(g.Contracts) == 0 || slices.Contains(g.Contracts, name)
}

// BindgenOptions returns the options used to generate the binding of the contract with the given name.
func (g *GenerationConfig) BindgenOptions(contract string) bindgen.Options {
	opts := bindgen.DefaultOptions()
	opts.Package = g.Package
	opts.RuntimePackage = g.RuntimePackage
	opts.CommonPackage = g.CommonPackage
	for signature, alias := range g.Aliases[contract] {
		opts.Aliases[signature] = alias
	}
	return opts
}

// CachePath returns the path of the generation cache database.
func (g *GenerationConfig) CachePath() string {
	if filepath.IsAbs(g.CacheFile) {
		return g.CacheFile
	}
	return filepath.Join(g.OutputDirectory, g.CacheFile)
}
