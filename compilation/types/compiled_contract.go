package types

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/crytic/medusa-geth/common"
	"github.com/pkg/errors"
)

// CompiledContract represents a single contract unit from a smart contract compilation.
type CompiledContract struct {
	// Abi describes a contract's application binary interface, a structure used to describe information needed
	// to interact with the contract such as constructor and function definitions with input/output variable
	// information, event declarations, and fallback and receive methods.
	Abi abi.ABI

	// RawAbi holds the compacted JSON the Abi was parsed from. Generated bindings embed it so the runtime can
	// re-create the same abi.ABI.
	RawAbi string

	// InitBytecode describes the bytecode used to deploy a contract.
	InitBytecode []byte

	// RuntimeBytecode represents the rudimentary bytecode to be expected once the contract has been successfully
	// deployed. This may differ at runtime based on constructor arguments, immutables, linked libraries, etc.
	RuntimeBytecode []byte

	// Docs holds the developer and user documentation attached to the contract's functions, keyed by signature.
	Docs ContractDocs

	// Deployments maps network names to the address the contract is deployed at on that network. It is only
	// populated by loaders reading deployment records.
	Deployments map[string]common.Address
}

// NewCompiledContract parses the provided ABI definition (a JSON string, raw JSON bytes, or any JSON-serializable
// value) and returns a CompiledContract wrapping it. Returns an error if the ABI could not be parsed.
func NewCompiledContract(abiDefinition any) (*CompiledContract, error) {
	contractAbi, rawAbi, err := ParseABIFromInterface(abiDefinition)
	if err != nil {
		return nil, err
	}
	return &CompiledContract{
		Abi:    *contractAbi,
		RawAbi: rawAbi,
		Docs:   NewContractDocs(),
	}, nil
}

// ParseABIFromInterface parses a generic object into an abi.ABI and returns it along with the compacted JSON it was
// parsed from, or an error if one occurs.
func ParseABIFromInterface(i any) (*abi.ABI, string, error) {
	var (
		b   []byte
		err error
	)

	// Strings and raw JSON are parsed directly. Otherwise, we assume it's a decoded JSON value and serialize it.
	switch t := i.(type) {
	case string:
		b = []byte(t)
	case []byte:
		b = t
	case json.RawMessage:
		b = t
	default:
		b, err = json.Marshal(i)
		if err != nil {
			return nil, "", errors.WithStack(err)
		}
	}

	// Compact the JSON so the embedded copy does not depend on the artifact's formatting.
	compacted := new(bytes.Buffer)
	if err = json.Compact(compacted, b); err != nil {
		return nil, "", errors.Wrap(err, "could not parse contract ABI")
	}

	result, err := abi.JSON(strings.NewReader(compacted.String()))
	if err != nil {
		return nil, "", errors.Wrap(err, "could not parse contract ABI")
	}
	return &result, compacted.String(), nil
}

// DecodeBytecode decodes a hex-encoded bytecode string with an optional 0x prefix. Unlinked bytecode (containing
// library placeholders) cannot be decoded and yields a nil slice rather than an error, as bindings do not depend on it.
func DecodeBytecode(bytecode string) []byte {
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(bytecode), "0x"))
	if err != nil {
		return nil
	}
	return b
}

// CompilerVersion returns the compiler version embedded in the contract's runtime bytecode metadata, or an empty
// string if it could not be determined.
func (c *CompiledContract) CompilerVersion() string {
	metadata := ExtractContractMetadata(c.RuntimeBytecode)
	if metadata == nil {
		return ""
	}
	version := metadata.ExtractCompilerVersion()
	if version == nil {
		return ""
	}
	return version.String()
}
