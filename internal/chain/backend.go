package chain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Backend is what commands need from a chain, whether it runs in this
// process (Local) or behind a w3sale node (Client).
type Backend interface {
	ChainID() (*big.Int, error)
	BlockNumber() (uint64, error)
	BlockTime() (time.Time, error)
	BalanceAt(addr common.Address) (*big.Int, error)
	NonceAt(addr common.Address) (uint64, error)
	Call(from, to common.Address, data []byte) ([]byte, error)
	SendRawTransaction(raw []byte) (*Receipt, error)
	TransactionReceipt(hash common.Hash) (*Receipt, error)
	FilterLogs(q LogQuery) ([]*Log, error)
	Faucet(to common.Address, amount *big.Int) error
}

// Local adapts an in-process Chain to Backend.
func Local(c *Chain) Backend { return local{c} }

type local struct{ c *Chain }

func (l local) ChainID() (*big.Int, error)                   { return l.c.ChainID(), nil }
func (l local) BlockNumber() (uint64, error)                 { return l.c.Height(), nil }
func (l local) BlockTime() (time.Time, error)                { return l.c.Time(), nil }
func (l local) BalanceAt(a common.Address) (*big.Int, error) { return l.c.Balance(a), nil }
func (l local) NonceAt(a common.Address) (uint64, error)     { return l.c.Nonce(a), nil }

func (l local) Call(from, to common.Address, data []byte) ([]byte, error) {
	return l.c.Call(from, to, data)
}

func (l local) SendRawTransaction(raw []byte) (*Receipt, error) {
	return l.c.SendTransaction(raw)
}

func (l local) TransactionReceipt(hash common.Hash) (*Receipt, error) {
	return l.c.Receipt(hash)
}

func (l local) FilterLogs(q LogQuery) ([]*Log, error) { return l.c.Logs(q) }

func (l local) Faucet(to common.Address, amount *big.Int) error {
	return l.c.Faucet(to, amount)
}
