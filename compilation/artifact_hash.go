package compilation

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"sort"

	"github.com/crytic/abibind/compilation/types"
	"github.com/crytic/medusa-geth/common"
)

// writeSorted writes the entries of a string map to the hasher in key order.
func writeSorted[V any](hasher hash.Hash, entries map[string]V, value func(V) []byte) {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		hasher.Write([]byte(key))
		hasher.Write([]byte{0})
		hasher.Write(value(entries[key]))
		hasher.Write([]byte{0})
	}
}

// ComputeContractHash computes a SHA-256 hash of everything a contract's binding is generated from: its name, raw
// ABI, bytecode, documentation and deployments. Additional salt, such as a digest of the generation options, is
// hashed after the contract.
func ComputeContractHash(contract types.NamedContract, salt ...string) string {
	hasher := sha256.New()
	hasher.Write([]byte(contract.Name))
	hasher.Write([]byte{0})
	if contract.Contract != nil {
		hasher.Write([]byte(contract.Contract.RawAbi))
		hasher.Write([]byte{0})
		hasher.Write(contract.Contract.InitBytecode)
		hasher.Write([]byte{0})
		hasher.Write(contract.Contract.RuntimeBytecode)
		hasher.Write([]byte{0})

		writeString := func(s string) []byte { return []byte(s) }
		writeSorted(hasher, contract.Contract.Docs.DevDoc, writeString)
		hasher.Write([]byte{1})
		writeSorted(hasher, contract.Contract.Docs.UserDoc, writeString)
		hasher.Write([]byte{1})
		writeSorted(hasher, contract.Contract.Deployments, func(address common.Address) []byte { return address.Bytes() })
	}
	for _, s := range salt {
		hasher.Write([]byte{2})
		hasher.Write([]byte(s))
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

// ComputeArtifactHash computes a SHA-256 hash of every contract of the provided compilations. The hash is computed
// deterministically as contracts are hashed in name order.
func ComputeArtifactHash(compilations []types.Compilation) string {
	hasher := sha256.New()
	for _, contract := range types.Contracts(compilations) {
		hasher.Write([]byte(contract.SourcePath))
		hasher.Write([]byte{0})
		hasher.Write([]byte(ComputeContractHash(contract)))
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
