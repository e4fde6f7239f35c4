package contract

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// TxSigner signs a transaction and returns its RLP encoding.
type TxSigner interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error)
}

// Sender builds and signs write transactions. The local chain charges no
// gas, so fee fields are zero and the gas limit is nominal.
type Sender struct {
	signer  TxSigner
	chainID *big.Int
}

// DefaultGas is the gas limit written into every transaction.
const DefaultGas = 1_000_000

// NewSender creates a Sender.
func NewSender(signer TxSigner, chainID *big.Int) *Sender {
	return &Sender{signer: signer, chainID: chainID}
}

// From returns the signing account.
func (s *Sender) From() common.Address { return s.signer.Address() }

// Call builds a signed transaction invoking funcName on the contract at to.
func (s *Sender) Call(contractABI abi.ABI, nonce uint64, to common.Address, value *big.Int, funcName string, args ...interface{}) ([]byte, error) {
	fn, ok := contractABI.Methods[funcName]
	if !ok {
		return nil, fmt.Errorf("function %q not found in ABI", funcName)
	}
	if fn.IsConstant() {
		return nil, fmt.Errorf("function %q is not a write function", funcName)
	}
	if value != nil && value.Sign() > 0 && !fn.IsPayable() {
		return nil, fmt.Errorf("function %q is not payable", funcName)
	}
	calldata, err := contractABI.Pack(funcName, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding call: %w", err)
	}
	return s.sign(nonce, &to, value, calldata)
}

// Transfer builds a signed plain currency transfer. Sent to a sale, it is a
// direct purchase.
func (s *Sender) Transfer(nonce uint64, to common.Address, value *big.Int) ([]byte, error) {
	return s.sign(nonce, &to, value, nil)
}

// Deploy builds a signed deployment of the built-in id.
func (s *Sender) Deploy(nonce uint64, id string, args ...interface{}) ([]byte, error) {
	payload, err := EncodeDeploy(id, args...)
	if err != nil {
		return nil, err
	}
	return s.sign(nonce, nil, nil, payload)
}

func (s *Sender) sign(nonce uint64, to *common.Address, value *big.Int, data []byte) ([]byte, error) {
	if value == nil {
		value = new(big.Int)
	}
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   s.chainID,
		Nonce:     nonce,
		GasTipCap: new(big.Int),
		GasFeeCap: new(big.Int),
		Gas:       DefaultGas,
		To:        to,
		Value:     value,
		Data:      data,
	})
	raw, err := s.signer.SignTx(tx, s.chainID)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	return raw, nil
}
