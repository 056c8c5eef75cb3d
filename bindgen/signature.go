package bindgen

import (
	"fmt"
	"strings"

	"github.com/crytic/medusa-geth/accounts/abi"
	"golang.org/x/crypto/sha3"
)

// Signature returns the canonical ABI signature of a function, e.g. `transfer(address,uint256)`. It depends only on
// the declared name and the ordered input types.
func Signature(method abi.Method) string {
	inputTypes := make([]string, len(method.Inputs))
	for i, input := range method.Inputs {
		inputTypes[i] = input.Type.String()
	}
	return fmt.Sprintf("%s(%s)", method.RawName, strings.Join(inputTypes, ","))
}

// Selector returns the 4-byte function selector of a function: the first four bytes of the Keccak-256 digest of its
// signature.
func Selector(method abi.Method) [4]byte {
	return SelectorFromSignature(Signature(method))
}

// SelectorFromSignature returns the 4-byte function selector for a canonical signature string.
func SelectorFromSignature(signature string) [4]byte {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(signature))

	var selector [4]byte
	copy(selector[:], hasher.Sum(nil))
	return selector
}

// SelectorLiteral renders a selector as a Go array literal, e.g. `[4]byte{0xa9, 0x05, 0x9c, 0xbb}`.
func SelectorLiteral(selector [4]byte) string {
	return fmt.Sprintf("[4]byte{0x%02x, 0x%02x, 0x%02x, 0x%02x}", selector[0], selector[1], selector[2], selector[3])
}
