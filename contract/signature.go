package contract

import (
	"fmt"
)

// Signature describes a contract function by its selector, with I the struct of its inputs and O the type its
// results decode into. It carries no instance and is used to refer to a function without calling it.
type Signature[I any, O any] struct {
	selector [4]byte
}

// NewSignature returns the Signature of the function with the given selector.
func NewSignature[I any, O any](selector [4]byte) Signature[I, O] {
	return Signature[I, O]{selector: selector}
}

// Selector returns the 4-byte function selector.
func (s Signature[I, O]) Selector() [4]byte {
	return s.selector
}

// String returns the selector as a hex string, implementing fmt.Stringer.
func (s Signature[I, O]) String() string {
	return fmt.Sprintf("%#x", s.selector[:])
}
