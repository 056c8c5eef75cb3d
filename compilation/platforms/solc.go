package platforms

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver"
	"github.com/crytic/abibind/compilation/types"
	"github.com/crytic/abibind/logging"
	"github.com/crytic/abibind/utils"
	"github.com/pkg/errors"
)

// solcOutputOptions are the combined-json outputs bindings are generated from.
const solcOutputOptions = "abi,bin,bin-runtime,devdoc,userdoc"

// SolcArtifactConfig describes the configuration used to load contracts from solc's combined-json output.
type SolcArtifactConfig struct {
	// Target is either a combined-json output file, or a Solidity source file which is compiled with the solc binary
	// on the path to obtain one.
	Target string `json:"target"`
}

// solcCombinedOutput describes the output of `solc --combined-json`.
type solcCombinedOutput struct {
	Contracts map[string]struct {
		Abi        json.RawMessage `json:"abi"`
		Bin        string          `json:"bin"`
		BinRuntime string          `json:"bin-runtime"`
		DevDoc     json.RawMessage `json:"devdoc"`
		UserDoc    json.RawMessage `json:"userdoc"`
	} `json:"contracts"`
	Version string `json:"version"`
}

// NewSolcArtifactConfig returns a SolcArtifactConfig for the given target.
func NewSolcArtifactConfig(target string) *SolcArtifactConfig {
	return &SolcArtifactConfig{
		Target: target,
	}
}

// Platform returns the platform identifier of the config.
func (s *SolcArtifactConfig) Platform() string {
	return "solc"
}

// GetTarget returns the combined-json file or Solidity source contracts are loaded from
func (s *SolcArtifactConfig) GetTarget() string {
	return s.Target
}

// SetTarget sets the combined-json file or Solidity source contracts are loaded from
func (s *SolcArtifactConfig) SetTarget(newTarget string) {
	s.Target = newTarget
}

// GetSystemSolcVersion returns the version of the solc binary on the path.
func GetSystemSolcVersion() (*semver.Version, error) {
	out, err := exec.Command("solc", "--version").CombinedOutput()
	if err != nil {
		return nil, errors.Errorf("error while executing solc:\nOUTPUT:\n%s\nERROR: %s\n", string(out), err.Error())
	}

	exp := regexp.MustCompile(`\d+\.\d+\.\d+`)
	versionStr := exp.FindString(string(out))
	if versionStr == "" {
		return nil, errors.New("could not parse solc version using 'solc --version'")
	}
	return semver.NewVersion(versionStr)
}

// Load reads the combined-json output of the target into a single compilation, compiling the target first if it is
// a Solidity source file.
func (s *SolcArtifactConfig) Load() ([]types.Compilation, error) {
	var (
		output []byte
		err    error
	)
	if strings.EqualFold(filepath.Ext(s.Target), ".sol") {
		output, err = s.compile()
	} else {
		output, err = os.ReadFile(s.Target)
		err = errors.WithStack(err)
	}
	if err != nil {
		return nil, err
	}
	return ParseCombinedJSON(output)
}

// compile runs solc on the target and returns its combined-json output.
func (s *SolcArtifactConfig) compile() ([]byte, error) {
	// Make sure a compiler is available before invoking it, so the error names the actual problem.
	version, err := GetSystemSolcVersion()
	if err != nil {
		return nil, err
	}
	logging.GlobalLogger.NewSubLogger("module", logging.COMPILATION_SERVICE).
		Info("Compiling ", s.Target, " with solc ", version.String())

	cmd := exec.Command("solc", s.Target, "--combined-json", solcOutputOptions)
	cmdStdout, _, cmdCombined, err := utils.RunCommandWithOutputAndError(cmd)
	if err != nil {
		return nil, errors.Errorf("error while executing solc:\n%s\n\nCommand Output:\n%s\n", err.Error(), string(cmdCombined))
	}
	return cmdStdout, nil
}

// ParseCombinedJSON parses the output of `solc --combined-json` into a compilation. Contracts are keyed
// `<source path>:<contract name>` in the output.
func ParseCombinedJSON(output []byte) ([]types.Compilation, error) {
	var combined solcCombinedOutput
	if err := json.Unmarshal(output, &combined); err != nil {
		return nil, errors.Wrap(err, "could not parse solc combined-json output")
	}
	if len(combined.Contracts) == 0 {
		return nil, errors.New("solc combined-json output does not contain any contracts")
	}

	compilation := types.NewCompilation()
	for key, solcContract := range combined.Contracts {
		separator := strings.LastIndex(key, ":")
		sourcePath, contractName := key[:max(separator, 0)], key[separator+1:]
		if contractName == "" {
			return nil, errors.Errorf("could not determine the contract name of '%s'", key)
		}

		contract, err := newCompiledContract(contractName, solcContract.Abi, solcContract.Bin, solcContract.BinRuntime,
			unquoteJSON(solcContract.DevDoc), unquoteJSON(solcContract.UserDoc))
		if err != nil {
			return nil, err
		}
		compilation.AddContract(sourcePath, contractName, *contract)
	}
	return []types.Compilation{*compilation}, nil
}
