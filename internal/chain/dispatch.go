package chain

import (
	"fmt"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/w3sale/internal/contract"
	"github.com/Mohsinsiddi/w3sale/internal/crowdsale"
	"github.com/Mohsinsiddi/w3sale/internal/event"
	"github.com/Mohsinsiddi/w3sale/internal/token"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// call is one message being executed against a state.
type call struct {
	s      *state
	now    time.Time
	from   common.Address
	nonce  uint64
	value  *big.Int
	events *event.Recorder
}

func (c *call) tokenFor(addr common.Address) (token.Bound, error) {
	l, ok := c.s.tokens[addr]
	if !ok {
		return token.Bound{}, fmt.Errorf("%w: token %s", ErrNoContract, addr.Hex())
	}
	return l.Bind(c.events.For(addr)), nil
}

func (c *call) saleEnv(addr common.Address, e *crowdsale.Engine) (crowdsale.Env, error) {
	tok, err := c.tokenFor(e.Token())
	if err != nil {
		return crowdsale.Env{}, err
	}
	return crowdsale.Env{
		Self:  addr,
		Now:   c.now,
		Token: tok,
		Bank:  bank{c.s},
		Emit:  c.events.For(addr),
	}, nil
}

// deploy creates a built-in contract at the address derived from the
// sender and nonce.
func (c *call) deploy(data []byte) (common.Address, string, error) {
	kind, args, err := contract.DecodeDeploy(data)
	if err != nil {
		return common.Address{}, "", fmt.Errorf("%w: %v", ErrInvalidTx, err)
	}
	if c.value.Sign() > 0 {
		return common.Address{}, "", fmt.Errorf("%w: %s constructor", ErrNotPayable, kind.ID)
	}
	addr := crypto.CreateAddress(c.from, c.nonce)
	if c.s.hasCode(addr) {
		return common.Address{}, "", fmt.Errorf("%w: %s", ErrAddressInUse, addr.Hex())
	}
	method := "deploy " + kind.ID

	switch kind.ID {
	case contract.TokenID:
		l, err := token.New(args[0].(string), args[1].(string), args[2].(*big.Int), c.from)
		if err != nil {
			return common.Address{}, "", err
		}
		c.s.tokens[addr] = l
		c.events.For(addr).Emit(token.Transfer{From: common.Address{}, To: c.from, Value: l.TotalSupply()})

	case contract.CrowdsaleID:
		tokenAddr := args[0].(common.Address)
		if _, ok := c.s.tokens[tokenAddr]; !ok {
			return common.Address{}, "", fmt.Errorf("%w: token %s", ErrNoContract, tokenAddr.Hex())
		}
		opening := args[3].(*big.Int)
		if !opening.IsUint64() {
			return common.Address{}, "", fmt.Errorf("%w: opening time out of range", ErrBadArguments)
		}
		e, err := crowdsale.New(crowdsale.Params{
			Owner:           c.from,
			Token:           tokenAddr,
			Price:           args[1].(*big.Int),
			MaxTokens:       args[2].(*big.Int),
			OpeningTime:     opening.Uint64(),
			MinContribution: args[4].(*big.Int),
			MaxContribution: args[5].(*big.Int),
		})
		if err != nil {
			return common.Address{}, "", err
		}
		c.s.sales[addr] = e

	default:
		return common.Address{}, "", fmt.Errorf("%w: %s", contract.ErrUnknownArtifact, kind.ID)
	}
	return addr, method, nil
}

func lookup(a abi.ABI, data []byte) (*abi.Method, []interface{}, error) {
	if len(data) < 4 {
		return nil, nil, fmt.Errorf("%w: calldata too short", ErrUnknownMethod)
	}
	m, err := a.MethodById(data[:4])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %x", ErrUnknownMethod, data[:4])
	}
	args, err := m.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrBadArguments, m.Name, err)
	}
	return m, args, nil
}

// invoke routes calldata to the contract at addr and returns the
// ABI-encoded outputs.
func (c *call) invoke(addr common.Address, data []byte) ([]byte, string, error) {
	if l, ok := c.s.tokens[addr]; ok {
		return c.invokeToken(addr, l, data)
	}
	if e, ok := c.s.sales[addr]; ok {
		return c.invokeSale(addr, e, data)
	}
	return nil, "", fmt.Errorf("%w: %s", ErrNoContract, addr.Hex())
}

func (c *call) invokeToken(addr common.Address, l *token.Ledger, data []byte) ([]byte, string, error) {
	m, args, err := lookup(contract.TokenABI(), data)
	if err != nil {
		return nil, "", err
	}
	if c.value.Sign() > 0 {
		return nil, m.Name, fmt.Errorf("%w: %s", ErrNotPayable, m.Name)
	}

	var out []interface{}
	switch m.Name {
	case "name":
		out = []interface{}{l.Name()}
	case "symbol":
		out = []interface{}{l.Symbol()}
	case "decimals":
		out = []interface{}{l.Decimals()}
	case "totalSupply":
		out = []interface{}{l.TotalSupply()}
	case "balanceOf":
		out = []interface{}{l.BalanceOf(args[0].(common.Address))}
	case "transfer":
		if err := l.Bind(c.events.For(addr)).Transfer(c.from, args[0].(common.Address), args[1].(*big.Int)); err != nil {
			return nil, m.Name, err
		}
		out = []interface{}{true}
	default:
		return nil, m.Name, fmt.Errorf("%w: %s", ErrUnknownMethod, m.Name)
	}
	return pack(m, out)
}

func (c *call) invokeSale(addr common.Address, e *crowdsale.Engine, data []byte) ([]byte, string, error) {
	if len(data) == 0 {
		env, err := c.saleEnv(addr, e)
		if err != nil {
			return nil, "receive", err
		}
		return nil, "receive", e.Receive(env, c.from, c.value)
	}

	m, args, err := lookup(contract.CrowdsaleABI(), data)
	if err != nil {
		return nil, "", err
	}
	if c.value.Sign() > 0 && !m.IsPayable() {
		return nil, m.Name, fmt.Errorf("%w: %s", ErrNotPayable, m.Name)
	}

	var out []interface{}
	switch m.Name {
	case "buyTokens":
		env, err := c.saleEnv(addr, e)
		if err != nil {
			return nil, m.Name, err
		}
		err = e.BuyTokens(env, c.from, args[0].(*big.Int), c.value)
		return nil, m.Name, err
	case "setPrice":
		return nil, m.Name, e.SetPrice(c.from, args[0].(*big.Int))
	case "addToWhitelist":
		return nil, m.Name, e.AddToWhitelist(c.from, args[0].(common.Address))
	case "removeFromWhitelist":
		return nil, m.Name, e.RemoveFromWhitelist(c.from, args[0].(common.Address))
	case "toggleWhitelist":
		return nil, m.Name, e.ToggleWhitelist(c.from, args[0].(bool))
	case "openSale":
		return nil, m.Name, e.OpenSale(c.from)
	case "closeSale":
		return nil, m.Name, e.CloseSale(c.from)
	case "finalize":
		env, err := c.saleEnv(addr, e)
		if err != nil {
			return nil, m.Name, err
		}
		return nil, m.Name, e.Finalize(env, c.from)

	case "owner":
		out = []interface{}{e.Owner()}
	case "token":
		out = []interface{}{e.Token()}
	case "price":
		out = []interface{}{e.Price()}
	case "maxTokens":
		out = []interface{}{e.MaxTokens()}
	case "tokensSold":
		out = []interface{}{e.TokensSold()}
	case "openingTime":
		out = []interface{}{new(big.Int).SetUint64(e.OpeningTime())}
	case "minContribution":
		out = []interface{}{e.MinContribution()}
	case "maxContribution":
		out = []interface{}{e.MaxContribution()}
	case "isOpen":
		out = []interface{}{e.IsOpen()}
	case "whitelistEnabled":
		out = []interface{}{e.WhitelistEnabled()}
	case "finalized":
		out = []interface{}{e.Finalized()}
	case "whitelist":
		out = []interface{}{e.IsWhitelisted(args[0].(common.Address))}
	case "getWhitelistedAddresses":
		out = []interface{}{e.WhitelistedAddresses()}
	default:
		return nil, m.Name, fmt.Errorf("%w: %s", ErrUnknownMethod, m.Name)
	}
	return pack(m, out)
}

func pack(m *abi.Method, out []interface{}) ([]byte, string, error) {
	data, err := m.Outputs.Pack(out...)
	if err != nil {
		return nil, m.Name, fmt.Errorf("encoding %s result: %w", m.Name, err)
	}
	return data, m.Name, nil
}
