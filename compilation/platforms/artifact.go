package platforms

import (
	"encoding/json"
	"os"

	"github.com/crytic/abibind/compilation/types"
	"github.com/pkg/errors"
)

// artifactContract describes the fields shared by the JSON contract artifacts the supported platforms emit.
type artifactContract struct {
	ContractName     string          `json:"contractName"`
	Abi              json.RawMessage `json:"abi"`
	Bytecode         string          `json:"bytecode"`
	DeployedBytecode string          `json:"deployedBytecode"`
	DevDoc           json.RawMessage `json:"devdoc"`
	UserDoc          json.RawMessage `json:"userdoc"`
}

// readJSONFile reads the file at the given path and decodes it into the provided value.
func readJSONFile(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.WithStack(err)
	}
	if err = json.Unmarshal(b, v); err != nil {
		return errors.Wrapf(err, "could not parse artifact '%s'", path)
	}
	return nil
}

// newCompiledContract builds a CompiledContract from the ABI, bytecode and NatSpec documentation of an artifact.
func newCompiledContract(name string, abiDefinition json.RawMessage, bytecode string, deployedBytecode string,
	devdoc json.RawMessage, userdoc json.RawMessage) (*types.CompiledContract, error) {
	contractAbi, rawAbi, err := types.ParseABIFromInterface(unquoteJSON(abiDefinition))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to parse the ABI of contract '%s'", name)
	}
	docs, err := types.ParseContractDocs(devdoc, userdoc)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to parse the documentation of contract '%s'", name)
	}

	return &types.CompiledContract{
		Abi:             *contractAbi,
		RawAbi:          rawAbi,
		InitBytecode:    types.DecodeBytecode(bytecode),
		RuntimeBytecode: types.DecodeBytecode(deployedBytecode),
		Docs:            docs,
	}, nil
}

// unquoteJSON returns the JSON document held by a JSON string, as older compilers emit nested documents encoded as
// strings. Any other value is returned unchanged.
func unquoteJSON(raw json.RawMessage) json.RawMessage {
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return raw
	}
	return json.RawMessage(encoded)
}
