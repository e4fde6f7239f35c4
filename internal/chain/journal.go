package chain

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Entry kinds.
const (
	EntryTx     = "tx"
	EntryFaucet = "faucet"
)

// Entry is one committed block: a transaction or a faucet credit. Replaying
// the entries in order from genesis rebuilds the chain exactly.
type Entry struct {
	Kind   string         `json:"kind"`
	Height uint64         `json:"height"`
	Time   uint64         `json:"time"`
	Raw    hexutil.Bytes  `json:"raw,omitempty"`
	To     common.Address `json:"to"`
	Amount *big.Int       `json:"amount,omitempty"`
}

func (e Entry) encode() ([]byte, error) { return json.Marshal(e) }

func decodeEntry(data []byte) (Entry, error) {
	var e Entry
	err := json.Unmarshal(data, &e)
	return e, err
}

// Journal is the append-only log of committed entries.
type Journal interface {
	Append(kind string, payload []byte) error
	// Replay calls fn for every entry in append order.
	Replay(fn func(kind string, payload []byte) error) error
}

// Store persists the latest state and the receipts.
type Store interface {
	// LoadState returns the latest snapshot, or nil when there is none.
	LoadState() ([]byte, error)
	// Commit writes the snapshot at height and, if receipt is non-nil, the
	// receipt of the transaction hash, atomically.
	Commit(height uint64, state []byte, hash common.Hash, receipt []byte) error
	// Receipts calls fn for every stored receipt in height order.
	Receipts(fn func(height uint64, receipt []byte) error) error
}

// Observer is told about every transaction outcome.
type Observer interface {
	Committed(r *Receipt)
	Rejected(from common.Address, err error)
}
