package chain

import (
	"encoding/json"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Dispatch answers one JSON-RPC request against b. Transport is the
// caller's business.
func Dispatch(b Backend, req *RPCRequest) *RPCResponse {
	resp := &RPCResponse{JSONRPC: "2.0", ID: req.ID}
	result, rpcErr := dispatch(b, req)
	if rpcErr != nil {
		resp.Error = rpcErr
		return resp
	}
	data, err := json.Marshal(result)
	if err != nil {
		resp.Error = NewRPCError(err)
		return resp
	}
	resp.Result = data
	return resp
}

func param(req *RPCRequest, i int, v interface{}) *RPCError {
	if i >= len(req.Params) {
		return InvalidRequest("%s: missing parameter %d", req.Method, i)
	}
	if err := json.Unmarshal(req.Params[i], v); err != nil {
		return InvalidRequest("%s: parameter %d: %v", req.Method, i, err)
	}
	return nil
}

func dispatch(b Backend, req *RPCRequest) (interface{}, *RPCError) {
	wrap := func(v interface{}, err error) (interface{}, *RPCError) {
		if err != nil {
			return nil, NewRPCError(err)
		}
		return v, nil
	}

	switch req.Method {
	case MethodChainID:
		id, err := b.ChainID()
		return wrap((*hexutil.Big)(id), err)

	case MethodBlockNumber:
		n, err := b.BlockNumber()
		return wrap(hexutil.Uint64(n), err)

	case MethodGetBlock:
		n, err := b.BlockNumber()
		if err != nil {
			return nil, NewRPCError(err)
		}
		ts, err := b.BlockTime()
		return wrap(RPCBlock{Number: hexutil.Uint64(n), Timestamp: hexutil.Uint64(ts.Unix())}, err)

	case MethodGetBalance:
		var addr common.Address
		if e := param(req, 0, &addr); e != nil {
			return nil, e
		}
		bal, err := b.BalanceAt(addr)
		return wrap((*hexutil.Big)(bal), err)

	case MethodGetNonce:
		var addr common.Address
		if e := param(req, 0, &addr); e != nil {
			return nil, e
		}
		n, err := b.NonceAt(addr)
		return wrap(hexutil.Uint64(n), err)

	case MethodCall:
		var args CallArgs
		if e := param(req, 0, &args); e != nil {
			return nil, e
		}
		var from common.Address
		if args.From != nil {
			from = *args.From
		}
		out, err := b.Call(from, args.To, args.Calldata())
		return wrap(hexutil.Bytes(out), err)

	case MethodSendRawTx, MethodSendRawTxSync:
		var raw hexutil.Bytes
		if e := param(req, 0, &raw); e != nil {
			return nil, e
		}
		r, err := b.SendRawTransaction(raw)
		if err != nil {
			return nil, NewRPCError(err)
		}
		if req.Method == MethodSendRawTx {
			return r.TxHash, nil
		}
		return ToRPCReceipt(r), nil

	case MethodGetReceipt:
		var hash common.Hash
		if e := param(req, 0, &hash); e != nil {
			return nil, e
		}
		r, err := b.TransactionReceipt(hash)
		if errors.Is(err, ErrReceiptNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, NewRPCError(err)
		}
		return ToRPCReceipt(r), nil

	case MethodGetLogs:
		var args FilterArgs
		if len(req.Params) > 0 {
			if e := param(req, 0, &args); e != nil {
				return nil, e
			}
		}
		logs, err := b.FilterLogs(args.Query())
		return wrap(ToRPCLogs(logs), err)

	case MethodFaucet:
		var args FaucetArgs
		if e := param(req, 0, &args); e != nil {
			return nil, e
		}
		if args.Amount == nil {
			return nil, InvalidRequest("%s: missing amount", req.Method)
		}
		return wrap(true, b.Faucet(args.To, args.Amount.ToInt()))
	}
	return nil, &RPCError{Code: -32601, Message: "method not found: " + req.Method}
}
