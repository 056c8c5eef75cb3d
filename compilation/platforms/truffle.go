package platforms

import (
	"path/filepath"

	"github.com/crytic/abibind/compilation/types"
	"github.com/crytic/medusa-geth/common"
	"github.com/pkg/errors"
)

// TruffleArtifactConfig describes the configuration used to load the contract artifacts of a Truffle project.
type TruffleArtifactConfig struct {
	// Target is the root directory of the Truffle project.
	Target string `json:"target"`

	// BuildDirectory overrides the directory the contract artifacts are read from. Defaults to
	// `<target>/build/contracts`.
	BuildDirectory string `json:"buildDirectory,omitempty"`
}

// truffleArtifact describes a Truffle contract artifact.
type truffleArtifact struct {
	artifactContract
	SourcePath string `json:"sourcePath"`
	Networks   map[string]struct {
		Address string `json:"address"`
	} `json:"networks"`
}

// NewTruffleArtifactConfig returns a TruffleArtifactConfig for the project at the given target.
func NewTruffleArtifactConfig(target string) *TruffleArtifactConfig {
	return &TruffleArtifactConfig{
		Target:         target,
		BuildDirectory: "",
	}
}

// Platform returns the platform identifier of the config.
func (t *TruffleArtifactConfig) Platform() string {
	return "truffle"
}

// GetTarget returns the project directory artifacts are loaded from
func (t *TruffleArtifactConfig) GetTarget() string {
	return t.Target
}

// SetTarget sets the project directory artifacts are loaded from
func (t *TruffleArtifactConfig) SetTarget(newTarget string) {
	t.Target = newTarget
}

// Load reads every contract artifact of the build directory into a single compilation. Addresses recorded for the
// networks the contract was migrated to become its deployments, keyed by network id.
func (t *TruffleArtifactConfig) Load() ([]types.Compilation, error) {
	buildDirectory := t.BuildDirectory
	if buildDirectory == "" {
		buildDirectory = filepath.Join(t.Target, "build", "contracts")
	}
	matches, err := filepath.Glob(filepath.Join(buildDirectory, "*.json"))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(matches) == 0 {
		return nil, errors.Errorf("no truffle artifacts found in '%s'", buildDirectory)
	}

	compilation := types.NewCompilation()
	for _, match := range matches {
		var artifact truffleArtifact
		if err = readJSONFile(match, &artifact); err != nil {
			return nil, err
		}
		if artifact.ContractName == "" {
			return nil, errors.Errorf("truffle artifact '%s' does not declare a contract name", match)
		}

		contract, err := newCompiledContract(artifact.ContractName, artifact.Abi, artifact.Bytecode,
			artifact.DeployedBytecode, artifact.DevDoc, artifact.UserDoc)
		if err != nil {
			return nil, err
		}

		for network, deployment := range artifact.Networks {
			if !common.IsHexAddress(deployment.Address) {
				continue
			}
			if contract.Deployments == nil {
				contract.Deployments = make(map[string]common.Address)
			}
			contract.Deployments[network] = common.HexToAddress(deployment.Address)
		}

		compilation.AddContract(artifact.SourcePath, artifact.ContractName, *contract)
	}

	return []types.Compilation{*compilation}, nil
}
