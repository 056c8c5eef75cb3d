package contract

import (
	"fmt"

	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/crytic/medusa-geth/accounts/abi/bind"
	"github.com/crytic/medusa-geth/common"
	coreTypes "github.com/crytic/medusa-geth/core/types"
	"github.com/pkg/errors"
)

// ViewMethodBuilder describes a read-only call of a contract function whose results decode into R.
type ViewMethodBuilder[R any] struct {
	// instance is the contract the call is made against.
	instance *Instance

	// method is the called function, or nil for fallback calls with raw call data.
	method *abi.Method

	// data is the encoded call data: the function selector followed by the packed arguments.
	data []byte
}

// MethodBuilder describes a state-mutating call of a contract function whose results decode into R. It can be sent
// as a transaction or simulated as a call.
type MethodBuilder[R any] struct {
	ViewMethodBuilder[R]
}

// NewViewMethod creates a read-only call builder for the function with the given selector, encoding the provided
// arguments. Returns an error if the contract has no such function or the arguments do not match its inputs.
func NewViewMethod[R any](instance *Instance, selector [4]byte, args ...any) (*ViewMethodBuilder[R], error) {
	method, data, err := encodeCall(instance, selector, args)
	if err != nil {
		return nil, err
	}
	return &ViewMethodBuilder[R]{
		instance: instance,
		method:   method,
		data:     data,
	}, nil
}

// NewMethod creates a state-mutating call builder for the function with the given selector, encoding the provided
// arguments. Returns an error if the contract has no such function or the arguments do not match its inputs.
func NewMethod[R any](instance *Instance, selector [4]byte, args ...any) (*MethodBuilder[R], error) {
	method, data, err := encodeCall(instance, selector, args)
	if err != nil {
		return nil, err
	}
	return &MethodBuilder[R]{
		ViewMethodBuilder: ViewMethodBuilder[R]{
			instance: instance,
			method:   method,
			data:     data,
		},
	}, nil
}

// encodeCall resolves the function with the given selector and encodes a call to it.
func encodeCall(instance *Instance, selector [4]byte, args []any) (*abi.Method, []byte, error) {
	if instance == nil {
		return nil, nil, errors.New("cannot build a call without a contract instance")
	}
	method, err := instance.abi.MethodById(selector[:])
	if err != nil {
		return nil, nil, errors.Wrapf(err, "no function with selector %#x", selector[:])
	}
	packed, err := method.Inputs.Pack(args...)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "could not encode the arguments of '%s'", method.Sig)
	}
	data := make([]byte, 0, len(method.ID)+len(packed))
	data = append(data, method.ID...)
	data = append(data, packed...)
	return method, data, nil
}

// Data returns the encoded call data.
func (b *ViewMethodBuilder[R]) Data() []byte {
	return common.CopyBytes(b.data)
}

// Call executes the call against the backend and decodes its results.
func (b *ViewMethodBuilder[R]) Call(opts *bind.CallOpts) (R, error) {
	var result R
	expectsOutput := b.method != nil && len(b.method.Outputs) > 0
	output, err := b.instance.call(opts, b.data, expectsOutput)
	if err != nil {
		return result, err
	}
	if b.method == nil {
		return result, nil
	}
	return decodeResults[R](b.method, output)
}

// Transact signs and sends the call as a transaction.
func (b *MethodBuilder[R]) Transact(opts *bind.TransactOpts) (*coreTypes.Transaction, error) {
	if opts == nil {
		return nil, errors.New("cannot send a transaction without transaction options")
	}
	return b.instance.bound.RawTransact(opts, b.data)
}

// String returns a string representation of the call, implementing fmt.Stringer.
func (b *ViewMethodBuilder[R]) String() string {
	if b.method == nil {
		return fmt.Sprintf("fallback(%#x)", b.data)
	}
	return fmt.Sprintf("%s(%#x)", b.method.Sig, b.data[len(b.method.ID):])
}
