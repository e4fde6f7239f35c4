package chain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Client is a minimal JSON-RPC client for a running w3sale node.
type Client struct {
	url    string
	client *http.Client
}

// NewClient creates a client pointed at a node's RPC endpoint, e.g.
// http://127.0.0.1:8545/rpc.
func NewClient(url string) *Client {
	return &Client{
		url: url,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ChainID returns the node's chain id.
func (c *Client) ChainID() (*big.Int, error) {
	var out hexutil.Big
	if err := c.call(&out, MethodChainID); err != nil {
		return nil, err
	}
	return out.ToInt(), nil
}

// BlockNumber returns the latest block number.
func (c *Client) BlockNumber() (uint64, error) {
	var out hexutil.Uint64
	if err := c.call(&out, MethodBlockNumber); err != nil {
		return 0, err
	}
	return uint64(out), nil
}

// BlockTime returns the timestamp of the latest block.
func (c *Client) BlockTime() (time.Time, error) {
	var out RPCBlock
	if err := c.call(&out, MethodGetBlock, "latest", false); err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(out.Timestamp), 0), nil
}

// BalanceAt returns the native balance of addr.
func (c *Client) BalanceAt(addr common.Address) (*big.Int, error) {
	var out hexutil.Big
	if err := c.call(&out, MethodGetBalance, addr, "latest"); err != nil {
		return nil, err
	}
	return out.ToInt(), nil
}

// NonceAt returns the next nonce of addr.
func (c *Client) NonceAt(addr common.Address) (uint64, error) {
	var out hexutil.Uint64
	if err := c.call(&out, MethodGetNonce, addr, "latest"); err != nil {
		return 0, err
	}
	return uint64(out), nil
}

// Call executes a read-only contract call.
func (c *Client) Call(from, to common.Address, data []byte) ([]byte, error) {
	var out hexutil.Bytes
	args := CallArgs{From: &from, To: to, Data: data}
	if err := c.call(&out, MethodCall, args, "latest"); err != nil {
		return nil, err
	}
	return out, nil
}

// SendRawTransaction submits a signed transaction and returns its receipt.
func (c *Client) SendRawTransaction(raw []byte) (*Receipt, error) {
	var out RPCReceipt
	if err := c.call(&out, MethodSendRawTxSync, hexutil.Bytes(raw)); err != nil {
		return nil, err
	}
	return out.Receipt(), nil
}

// TransactionReceipt fetches the receipt for hash.
func (c *Client) TransactionReceipt(hash common.Hash) (*Receipt, error) {
	var out *RPCReceipt
	if err := c.call(&out, MethodGetReceipt, hash); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("%w: %s", ErrReceiptNotFound, hash.Hex())
	}
	return out.Receipt(), nil
}

// FilterLogs returns logs matching q.
func (c *Client) FilterLogs(q LogQuery) ([]*Log, error) {
	args := FilterArgs{Address: q.Address, Event: q.Event, Limit: q.Limit}
	if q.FromBlock > 0 {
		from := hexutil.Uint64(q.FromBlock)
		args.FromBlock = &from
	}
	var out []*RPCLog
	if err := c.call(&out, MethodGetLogs, args); err != nil {
		return nil, err
	}
	return FromRPCLogs(out), nil
}

// Faucet asks the node to credit amount to to.
func (c *Client) Faucet(to common.Address, amount *big.Int) error {
	return c.call(nil, MethodFaucet, FaucetArgs{To: to, Amount: (*hexutil.Big)(amount)})
}

func (c *Client) call(result interface{}, method string, params ...interface{}) error {
	raw := make([]json.RawMessage, len(params))
	for i, p := range params {
		b, err := json.Marshal(p)
		if err != nil {
			return err
		}
		raw[i] = b
	}
	reqBody, err := json.Marshal(RPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  raw,
		ID:      json.RawMessage("1"),
	})
	if err != nil {
		return err
	}

	resp, err := c.client.Post(c.url, "application/json", bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("RPC request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var rpcResp RPCResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error.Err()
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return fmt.Errorf("parsing result: %w", err)
	}
	return nil
}
