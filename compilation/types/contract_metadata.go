package types

import (
	"bytes"
	"fmt"

	"github.com/Masterminds/semver"
	"github.com/fxamacker/cbor"
)

// ContractMetadata is an CBOR-encoded structure describing contract information which is embedded within smart contract
// bytecode by the Solidity compiler (unless explicitly directed not to).
// Reference: https://docs.soliditylang.org/en/v0.8.16/metadata.html
type ContractMetadata map[string]any

// metadataHashPrefixes defines patterns to use in search for CBOR-encoded contract metadata appended to the end of
// bytecode.
var metadataHashPrefixes = [][]byte{
	{0xa1, 0x65, 98, 122, 122, 114, 48, 0x58, 0x20},  // a1 65 "bzzr0" 0x58 0x20 (solc <= 0.5.8)
	{0xa2, 0x65, 98, 122, 122, 114, 48, 0x58, 0x20},  // a2 65 "bzzr0" 0x58 0x20 (solc >= 0.5.9)
	{0xa2, 0x65, 98, 122, 122, 114, 49, 0x58, 0x20},  // a2 65 "bzzr1" 0x58 0x20 (solc >= 0.5.11)
	{0xa2, 0x64, 0x69, 0x70, 0x66, 0x73, 0x58, 0x22}, // a2 64 "ipfs" 0x58 0x22 (solc >= 0.6.0)
}

// byteCodeHashMetadataKeys defines the keys in the CBOR-encoded ContractMetadata which contain bytecode hashes.
var byteCodeHashMetadataKeys = [...]string{
	"bzzr0",
	"bzzr1",
	"ipfs",
}

// ExtractContractMetadata extracts contract metadata from provided byte code and returns it. If contract metadata
// could not be extracted, nil is returned.
func ExtractContractMetadata(bytecode []byte) *ContractMetadata {
	// Since solc 0.4.7 the last two bytes hold the big-endian length of the metadata preceding them.
	if len(bytecode) >= 2 {
		metadataLength := int(bytecode[len(bytecode)-2])<<8 | int(bytecode[len(bytecode)-1])
		if metadataLength > 0 && metadataLength+2 <= len(bytecode) {
			var metadata ContractMetadata
			err := cbor.Unmarshal(bytecode[len(bytecode)-2-metadataLength:len(bytecode)-2], &metadata)
			if err == nil && len(metadata) > 0 {
				return &metadata
			}
		}
	}

	// Otherwise, try matching each metadata hash prefix in the file. Metadata is appended to the end of the file.
	for _, metadataHashPrefix := range metadataHashPrefixes {
		metadataOffset := bytes.LastIndex(bytecode, metadataHashPrefix[:])

		// If we found a match, decode the embedded metadata and return it.
		if metadataOffset != -1 {
			var metadata ContractMetadata
			err := cbor.Unmarshal(bytecode[metadataOffset:], &metadata)
			if err != nil {
				continue
			}
			return &metadata
		}
	}
	return nil
}

// compilerVersionMetadataKey defines the key in the CBOR-encoded ContractMetadata which holds the solc version.
const compilerVersionMetadataKey = "solc"

// ExtractBytecodeHash extracts the bytecode hash from given contract metadata and returns the bytes representing the
// hash. If it could not be detected or extracted, nil is returned.
func (m ContractMetadata) ExtractBytecodeHash() []byte {
	// Try every known metadata key to see if we can resolve the bytecode hash
	for _, possibleMetadataKey := range byteCodeHashMetadataKeys {
		if bytecodeHashData, keyExists := m[possibleMetadataKey]; keyExists {
			// Try to cast it to a byte array and return it if we succeeded.
			if bytecodeHash, ok := bytecodeHashData.([]byte); ok {
				return bytecodeHash
			}
		}
	}
	return nil
}

// ExtractCompilerVersion extracts the solc version from given contract metadata. Release builds encode it as three
// bytes (major, minor, patch), while pre-release builds encode the full version string. If it could not be detected
// or parsed, nil is returned.
func (m ContractMetadata) ExtractCompilerVersion() *semver.Version {
	versionData, keyExists := m[compilerVersionMetadataKey]
	if !keyExists {
		return nil
	}

	var versionStr string
	switch v := versionData.(type) {
	case []byte:
		if len(v) != 3 {
			return nil
		}
		versionStr = fmt.Sprintf("%d.%d.%d", v[0], v[1], v[2])
	case string:
		versionStr = v
	default:
		return nil
	}

	version, err := semver.NewVersion(versionStr)
	if err != nil {
		return nil
	}
	return version
}
