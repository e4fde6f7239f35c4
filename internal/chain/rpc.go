package chain

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// JSON-RPC methods served by a w3sale node. The eth_ methods follow the
// Ethereum JSON-RPC conventions closely enough for wallet frontends.
const (
	MethodChainID         = "eth_chainId"
	MethodBlockNumber     = "eth_blockNumber"
	MethodGetBlock        = "eth_getBlockByNumber"
	MethodGetBalance      = "eth_getBalance"
	MethodGetNonce        = "eth_getTransactionCount"
	MethodCall            = "eth_call"
	MethodSendRawTx       = "eth_sendRawTransaction"
	MethodGetReceipt      = "eth_getTransactionReceipt"
	MethodGetLogs         = "eth_getLogs"
	MethodFaucet          = "w3sale_faucet"
	MethodSendRawTxSync   = "w3sale_sendRawTransaction"
	rpcCodeRejected       = -32000
	rpcCodeInvalidRequest = -32600
)

// RPCRequest is a JSON-RPC 2.0 request.
type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      json.RawMessage   `json:"id"`
}

// RPCResponse is a JSON-RPC 2.0 response.
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// RPCError carries the rejection code in Data so clients can rebuild the
// original error identity.
type RPCError struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Data    *RPCErrorData `json:"data,omitempty"`
}

// RPCErrorData is the w3sale extension of a JSON-RPC error.
type RPCErrorData struct {
	Code string `json:"code"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// NewRPCError converts err for the wire.
func NewRPCError(err error) *RPCError {
	e := &RPCError{Code: rpcCodeRejected, Message: err.Error()}
	if code := Code(err); code != "" {
		e.Data = &RPCErrorData{Code: code}
	}
	return e
}

// InvalidRequest is the error for malformed requests.
func InvalidRequest(format string, args ...interface{}) *RPCError {
	return &RPCError{Code: rpcCodeInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

// Err rebuilds an error that matches the original with errors.Is.
func (e *RPCError) Err() error {
	if e.Data != nil {
		if sentinel := ErrorForCode(e.Data.Code); sentinel != nil {
			return &remoteError{sentinel: sentinel, msg: e.Message}
		}
	}
	return e
}

type remoteError struct {
	sentinel error
	msg      string
}

func (e *remoteError) Error() string { return e.msg }
func (e *remoteError) Unwrap() error { return e.sentinel }

// CallArgs are the parameters of eth_call.
type CallArgs struct {
	From  *common.Address `json:"from,omitempty"`
	To    common.Address  `json:"to"`
	Data  hexutil.Bytes   `json:"data,omitempty"`
	Input hexutil.Bytes   `json:"input,omitempty"`
}

// Calldata prefers input over data, as geth does.
func (a CallArgs) Calldata() []byte {
	if len(a.Input) > 0 {
		return a.Input
	}
	return a.Data
}

// FilterArgs are the parameters of eth_getLogs. Event and Limit are w3sale
// extensions.
type FilterArgs struct {
	Address   *common.Address `json:"address,omitempty"`
	FromBlock *hexutil.Uint64 `json:"fromBlock,omitempty"`
	Event     string          `json:"event,omitempty"`
	Limit     int             `json:"limit,omitempty"`
}

// Query converts the filter.
func (f FilterArgs) Query() LogQuery {
	q := LogQuery{Address: f.Address, Event: f.Event, Limit: f.Limit}
	if f.FromBlock != nil {
		q.FromBlock = uint64(*f.FromBlock)
	}
	return q
}

// FaucetArgs are the parameters of w3sale_faucet.
type FaucetArgs struct {
	To     common.Address `json:"to"`
	Amount *hexutil.Big   `json:"amount"`
}

// RPCBlock is the subset of a block header w3sale reports.
type RPCBlock struct {
	Number    hexutil.Uint64 `json:"number"`
	Timestamp hexutil.Uint64 `json:"timestamp"`
}

// RPCLog is a log in Ethereum JSON-RPC encoding.
type RPCLog struct {
	Address         common.Address `json:"address"`
	Topics          []common.Hash  `json:"topics"`
	Data            hexutil.Bytes  `json:"data"`
	BlockNumber     hexutil.Uint64 `json:"blockNumber"`
	TransactionHash common.Hash    `json:"transactionHash"`
	LogIndex        hexutil.Uint   `json:"logIndex"`
}

// RPCReceipt is a receipt in Ethereum JSON-RPC encoding.
type RPCReceipt struct {
	TransactionHash common.Hash     `json:"transactionHash"`
	From            common.Address  `json:"from"`
	To              *common.Address `json:"to"`
	ContractAddress *common.Address `json:"contractAddress"`
	Nonce           hexutil.Uint64  `json:"nonce"`
	Value           *hexutil.Big    `json:"value"`
	Method          string          `json:"method"`
	BlockNumber     hexutil.Uint64  `json:"blockNumber"`
	BlockTime       hexutil.Uint64  `json:"blockTime"`
	Status          hexutil.Uint64  `json:"status"`
	GasUsed         hexutil.Uint64  `json:"gasUsed"`
	Logs            []*RPCLog       `json:"logs"`
}

// ToRPCLogs converts logs for the wire.
func ToRPCLogs(logs []*Log) []*RPCLog {
	out := make([]*RPCLog, len(logs))
	for i, l := range logs {
		out[i] = &RPCLog{
			Address:         l.Address,
			Topics:          l.Topics,
			Data:            l.Data,
			BlockNumber:     hexutil.Uint64(l.BlockNumber),
			TransactionHash: l.TxHash,
			LogIndex:        hexutil.Uint(l.Index),
		}
	}
	return out
}

// FromRPCLogs is the inverse of ToRPCLogs.
func FromRPCLogs(logs []*RPCLog) []*Log {
	out := make([]*Log, len(logs))
	for i, l := range logs {
		out[i] = &Log{
			Address:     l.Address,
			Topics:      l.Topics,
			Data:        l.Data,
			BlockNumber: uint64(l.BlockNumber),
			TxHash:      l.TransactionHash,
			Index:       uint(l.LogIndex),
		}
	}
	return out
}

// ToRPCReceipt converts a receipt for the wire.
func ToRPCReceipt(r *Receipt) *RPCReceipt {
	value := r.Value
	if value == nil {
		value = new(big.Int)
	}
	return &RPCReceipt{
		TransactionHash: r.TxHash,
		From:            r.From,
		To:              r.To,
		ContractAddress: r.ContractAddress,
		Nonce:           hexutil.Uint64(r.Nonce),
		Value:           (*hexutil.Big)(value),
		Method:          r.Method,
		BlockNumber:     hexutil.Uint64(r.BlockNumber),
		BlockTime:       hexutil.Uint64(r.BlockTime),
		Status:          hexutil.Uint64(r.Status),
		Logs:            ToRPCLogs(r.Logs),
	}
}

// Receipt converts back from the wire form.
func (r *RPCReceipt) Receipt() *Receipt {
	out := &Receipt{
		TxHash:          r.TransactionHash,
		From:            r.From,
		To:              r.To,
		ContractAddress: r.ContractAddress,
		Nonce:           uint64(r.Nonce),
		Value:           new(big.Int),
		Method:          r.Method,
		BlockNumber:     uint64(r.BlockNumber),
		BlockTime:       uint64(r.BlockTime),
		Status:          uint64(r.Status),
		Logs:            FromRPCLogs(r.Logs),
	}
	if r.Value != nil {
		out.Value = r.Value.ToInt()
	}
	return out
}
