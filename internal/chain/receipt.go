package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// Log is one event recorded in a receipt.
type Log struct {
	Address     common.Address `json:"address"`
	Topics      []common.Hash  `json:"topics"`
	Data        hexutil.Bytes  `json:"data"`
	BlockNumber uint64         `json:"blockNumber"`
	TxHash      common.Hash    `json:"transactionHash"`
	Index       uint           `json:"logIndex"`
}

// Eth converts the log to go-ethereum's representation.
func (l *Log) Eth() *types.Log {
	return &types.Log{
		Address:     l.Address,
		Topics:      l.Topics,
		Data:        l.Data,
		BlockNumber: l.BlockNumber,
		TxHash:      l.TxHash,
		Index:       l.Index,
	}
}

// Receipt is the record of a committed transaction. Rejected transactions
// produce no receipt.
type Receipt struct {
	TxHash          common.Hash     `json:"transactionHash"`
	From            common.Address  `json:"from"`
	To              *common.Address `json:"to,omitempty"`
	ContractAddress *common.Address `json:"contractAddress,omitempty"`
	Nonce           uint64          `json:"nonce"`
	Value           *big.Int        `json:"value"`
	Method          string          `json:"method"`
	BlockNumber     uint64          `json:"blockNumber"`
	BlockTime       uint64          `json:"blockTime"`
	Status          uint64          `json:"status"`
	Logs            []*Log          `json:"logs"`
}

// LogQuery selects logs. Zero fields match everything.
type LogQuery struct {
	Address   *common.Address `json:"address,omitempty"`
	Event     string          `json:"event,omitempty"`
	FromBlock uint64          `json:"fromBlock,omitempty"`
	Limit     int             `json:"limit,omitempty"`
}
