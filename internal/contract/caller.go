package contract

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Backend executes a read-only call and returns the raw return data.
type Backend interface {
	Call(from, to common.Address, data []byte) ([]byte, error)
}

// Caller calls read-only (view/pure) contract functions.
type Caller struct {
	backend Backend
	abi     abi.ABI
	address common.Address
	from    common.Address
}

// NewCaller creates a Caller for the contract at address.
func NewCaller(backend Backend, contractABI abi.ABI, address common.Address) *Caller {
	return &Caller{backend: backend, abi: contractABI, address: address}
}

// From sets the account the calls are made as. Views that do not depend on
// the caller ignore it.
func (c *Caller) From(from common.Address) *Caller {
	cp := *c
	cp.from = from
	return &cp
}

// Address returns the contract being called.
func (c *Caller) Address() common.Address { return c.address }

// Call runs a view function and returns its decoded outputs.
func (c *Caller) Call(funcName string, args ...interface{}) ([]interface{}, error) {
	fn, ok := c.abi.Methods[funcName]
	if !ok {
		return nil, fmt.Errorf("function %q not found in ABI", funcName)
	}
	if !fn.IsConstant() {
		return nil, fmt.Errorf("function %q is not a read function (stateMutability: %s)", funcName, fn.StateMutability)
	}

	calldata, err := c.abi.Pack(funcName, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding call: %w", err)
	}

	result, err := c.backend.Call(c.from, c.address, calldata)
	if err != nil {
		return nil, fmt.Errorf("contract call failed: %w", err)
	}

	decoded, err := c.abi.Unpack(funcName, result)
	if err != nil {
		return nil, fmt.Errorf("decoding result: %w", err)
	}
	return decoded, nil
}

// CallOne runs a view function with a single output.
func (c *Caller) CallOne(funcName string, args ...interface{}) (interface{}, error) {
	out, err := c.Call(funcName, args...)
	if err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("function %q returned %d values", funcName, len(out))
	}
	return out[0], nil
}
