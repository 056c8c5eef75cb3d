package platforms

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/crytic/abibind/compilation/types"
	"github.com/crytic/abibind/logging"
	"github.com/crytic/abibind/utils"
	"github.com/crytic/medusa-geth/common"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// HardhatArtifactConfig describes the configuration used to load the contract artifacts of a Hardhat project, either
// from its artifacts directory or from the deployment records of hardhat-deploy.
type HardhatArtifactConfig struct {
	// Target is the root directory of the Hardhat project.
	Target string `json:"target"`

	// ArtifactsDirectory overrides the directory compiled artifacts are read from. Defaults to `<target>/artifacts`.
	ArtifactsDirectory string `json:"artifactsDirectory,omitempty"`

	// UseDeployments indicates contracts should be read from deployment records instead of compiled artifacts.
	UseDeployments bool `json:"useDeployments"`

	// DeploymentsDirectory overrides the directory deployment records are read from. Defaults to
	// `<target>/deployments`.
	DeploymentsDirectory string `json:"deploymentsDirectory,omitempty"`

	// DenyNetworks lists the networks whose deployment records are ignored.
	DenyNetworks []string `json:"denyNetworks"`
}

// hardhatArtifact describes a Hardhat compiled contract artifact.
type hardhatArtifact struct {
	artifactContract
	SourceName string `json:"sourceName"`
}

// hardhatDebugFile describes the `.dbg.json` file Hardhat writes next to each artifact.
type hardhatDebugFile struct {
	BuildInfo string `json:"buildInfo"`
}

// hardhatBuildInfo describes the parts of a Hardhat build info file we read: the documentation solc produced for each
// contract, keyed by source name and contract name.
type hardhatBuildInfo struct {
	Output struct {
		Contracts map[string]map[string]struct {
			DevDoc  json.RawMessage `json:"devdoc"`
			UserDoc json.RawMessage `json:"userdoc"`
		} `json:"contracts"`
	} `json:"output"`
}

// hardhatDeployment describes a hardhat-deploy deployment record.
type hardhatDeployment struct {
	artifactContract
	Address string `json:"address"`
}

// NewHardhatArtifactConfig returns a HardhatArtifactConfig for the project at the given target. Deployment records of
// the local development network are ignored by default.
func NewHardhatArtifactConfig(target string) *HardhatArtifactConfig {
	return &HardhatArtifactConfig{
		Target:         target,
		UseDeployments: false,
		DenyNetworks:   []string{"localhost"},
	}
}

// Platform returns the platform identifier of the config.
func (h *HardhatArtifactConfig) Platform() string {
	return "hardhat"
}

// GetTarget returns the project directory artifacts are loaded from
func (h *HardhatArtifactConfig) GetTarget() string {
	return h.Target
}

// SetTarget sets the project directory artifacts are loaded from
func (h *HardhatArtifactConfig) SetTarget(newTarget string) {
	h.Target = newTarget
}

// Load reads the contracts of the project into a single compilation.
func (h *HardhatArtifactConfig) Load() ([]types.Compilation, error) {
	if h.UseDeployments {
		return h.loadDeployments()
	}
	return h.loadArtifacts()
}

// loadArtifacts reads every `<source>.sol/<contract>.json` artifact below the artifacts directory. Documentation is
// taken from the build info referenced by the artifact's debug file, when present.
func (h *HardhatArtifactConfig) loadArtifacts() ([]types.Compilation, error) {
	artifactsDirectory := h.ArtifactsDirectory
	if artifactsDirectory == "" {
		artifactsDirectory = filepath.Join(h.Target, "artifacts")
	}

	var matches []string
	err := filepath.WalkDir(artifactsDirectory, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(path, ".json") || strings.HasSuffix(path, ".dbg.json") {
			return nil
		}
		if filepath.Ext(filepath.Dir(path)) == ".sol" {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(matches) == 0 {
		return nil, errors.Errorf("no hardhat artifacts found in '%s'", artifactsDirectory)
	}

	buildInfos := make(map[string]*hardhatBuildInfo)
	compilation := types.NewCompilation()
	for _, match := range matches {
		var artifact hardhatArtifact
		if err = readJSONFile(match, &artifact); err != nil {
			return nil, err
		}
		if artifact.ContractName == "" {
			return nil, errors.Errorf("hardhat artifact '%s' does not declare a contract name", match)
		}

		devdoc, userdoc, err := hardhatDocs(match, artifact, buildInfos)
		if err != nil {
			return nil, err
		}
		contract, err := newCompiledContract(artifact.ContractName, artifact.Abi, artifact.Bytecode,
			artifact.DeployedBytecode, devdoc, userdoc)
		if err != nil {
			return nil, err
		}
		compilation.AddContract(artifact.SourceName, artifact.ContractName, *contract)
	}

	return []types.Compilation{*compilation}, nil
}

// hardhatDocs returns the devdoc and userdoc of an artifact from the build info its debug file references. Build
// infos are cached as many artifacts share one. Artifacts without a debug file have no documentation.
func hardhatDocs(artifactPath string, artifact hardhatArtifact, buildInfos map[string]*hardhatBuildInfo) (json.RawMessage, json.RawMessage, error) {
	debugPath := utils.GetFilePathWithoutExtension(artifactPath) + ".dbg.json"
	if _, err := os.Stat(debugPath); err != nil {
		return nil, nil, nil
	}
	var debugFile hardhatDebugFile
	if err := readJSONFile(debugPath, &debugFile); err != nil {
		return nil, nil, err
	}
	if debugFile.BuildInfo == "" {
		return nil, nil, nil
	}

	buildInfoPath := filepath.Join(filepath.Dir(debugPath), filepath.FromSlash(debugFile.BuildInfo))
	buildInfo, ok := buildInfos[buildInfoPath]
	if !ok {
		buildInfo = new(hardhatBuildInfo)
		if err := readJSONFile(buildInfoPath, buildInfo); err != nil {
			return nil, nil, err
		}
		buildInfos[buildInfoPath] = buildInfo
	}

	output := buildInfo.Output.Contracts[artifact.SourceName][artifact.ContractName]
	return output.DevDoc, output.UserDoc, nil
}

// loadDeployments reads the deployment records of every network directory which is not denied. A contract deployed
// to several networks is loaded once, with one deployment per network.
func (h *HardhatArtifactConfig) loadDeployments() ([]types.Compilation, error) {
	deploymentsDirectory := h.DeploymentsDirectory
	if deploymentsDirectory == "" {
		deploymentsDirectory = filepath.Join(h.Target, "deployments")
	}
	networks, err := os.ReadDir(deploymentsDirectory)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	logger := logging.GlobalLogger.NewSubLogger("module", logging.COMPILATION_SERVICE)
	compilation := types.NewCompilation()
	contracts := make(map[string]*types.CompiledContract)
	names := make([]string, 0)
	for _, network := range networks {
		if !network.IsDir() {
			continue
		}
		if slices.Contains(h.DenyNetworks, network.Name()) {
			logger.Debug("Ignoring the deployments of denied network ", network.Name())
			continue
		}

		networkDirectory := filepath.Join(deploymentsDirectory, network.Name())
		records, err := os.ReadDir(networkDirectory)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		for _, record := range records {
			if record.IsDir() || filepath.Ext(record.Name()) != ".json" {
				continue
			}

			recordPath := filepath.Join(networkDirectory, record.Name())
			var deployment hardhatDeployment
			if err = readJSONFile(recordPath, &deployment); err != nil {
				return nil, err
			}
			if !common.IsHexAddress(deployment.Address) {
				return nil, errors.Errorf("deployment record '%s' does not hold a valid address", recordPath)
			}

			name := utils.GetFileNameWithoutExtension(record.Name())
			contract, ok := contracts[name]
			if !ok {
				contract, err = newCompiledContract(name, deployment.Abi, deployment.Bytecode,
					deployment.DeployedBytecode, deployment.DevDoc, deployment.UserDoc)
				if err != nil {
					return nil, err
				}
				contract.Deployments = make(map[string]common.Address)
				contracts[name] = contract
				names = append(names, name)
			}
			contract.Deployments[network.Name()] = common.HexToAddress(deployment.Address)
		}
	}
	if len(contracts) == 0 {
		return nil, errors.Errorf("no deployment records found in '%s'", deploymentsDirectory)
	}

	for _, name := range names {
		compilation.AddContract(deploymentsDirectory, name, *contracts[name])
	}
	return []types.Compilation{*compilation}, nil
}
