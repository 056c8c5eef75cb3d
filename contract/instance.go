package contract

import (
	"context"
	"strings"

	ethereum "github.com/crytic/medusa-geth"
	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/crytic/medusa-geth/accounts/abi/bind"
	"github.com/crytic/medusa-geth/common"
	"github.com/pkg/errors"
)

var (
	// ErrNoCode is returned by calls whose result is empty because there is no contract code at the bound address.
	ErrNoCode = errors.New("no contract code at given address")

	// ErrNoPendingState is returned by calls requesting the pending state, which bindings do not support.
	ErrNoPendingState = errors.New("calls against the pending state are not supported")
)

// Backend describes the chain backend a binding dispatches calls and transactions through.
type Backend = bind.ContractBackend

// Instance describes a contract deployed at a given address, with the ABI used to encode its calls. Generated
// bindings hold an Instance and create their call builders from it.
type Instance struct {
	// address is the address of the deployed contract.
	address common.Address

	// abi describes the contract's interface.
	abi abi.ABI

	// backend is used to perform calls.
	backend Backend

	// bound is used to sign and send transactions.
	bound *bind.BoundContract
}

// NewInstance parses the provided ABI JSON and returns an Instance of the contract deployed at the given address.
func NewInstance(address common.Address, abiJSON string, backend Backend) (*Instance, error) {
	if backend == nil {
		return nil, errors.New("cannot create a contract instance without a backend")
	}
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, errors.Wrap(err, "could not parse contract ABI")
	}
	return &Instance{
		address: address,
		abi:     parsed,
		backend: backend,
		bound:   bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

// Address returns the address of the contract.
func (i *Instance) Address() common.Address {
	return i.address
}

// ABI returns the contract's parsed interface.
func (i *Instance) ABI() abi.ABI {
	return i.abi
}

// Fallback returns a call builder invoking the contract's fallback or receive function with the given raw call data.
func (i *Instance) Fallback(data []byte) *MethodBuilder[struct{}] {
	return &MethodBuilder[struct{}]{
		ViewMethodBuilder: ViewMethodBuilder[struct{}]{
			instance: i,
			data:     common.CopyBytes(data),
		},
	}
}

// call executes a message call with the given call data against the latest state and returns the raw result.
func (i *Instance) call(opts *bind.CallOpts, data []byte, expectsOutput bool) ([]byte, error) {
	// Don't crash on a nil options pointer.
	if opts == nil {
		opts = new(bind.CallOpts)
	}
	if opts.Pending {
		return nil, ErrNoPendingState
	}

	ctx := ensureContext(opts.Context)
	msg := ethereum.CallMsg{From: opts.From, To: &i.address, Data: data}
	output, err := i.backend.CallContract(ctx, msg, opts.BlockNumber)
	if err != nil {
		return nil, err
	}

	// An empty result for a function declaring outputs usually means nothing is deployed at the address.
	if expectsOutput && len(output) == 0 {
		code, err := i.backend.CodeAt(ctx, i.address, opts.BlockNumber)
		if err != nil {
			return nil, err
		} else if len(code) == 0 {
			return nil, ErrNoCode
		}
	}
	return output, nil
}

// ensureContext returns a background context if the provided one is nil.
func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
