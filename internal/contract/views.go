package contract

import (
	"fmt"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/w3sale/internal/crowdsale"
	"github.com/Mohsinsiddi/w3sale/internal/units"
	"github.com/ethereum/go-ethereum/common"
)

// SaleState is every public view of a crowdsale read in one go.
type SaleState struct {
	Address          common.Address
	Owner            common.Address
	Token            common.Address
	Price            *big.Int
	MaxTokens        *big.Int
	TokensSold       *big.Int
	OpeningTime      uint64
	MinContribution  *big.Int
	MaxContribution  *big.Int
	IsOpen           bool
	WhitelistEnabled bool
	Finalized        bool
	Whitelist        []common.Address
}

// Remaining is the number of tokens still for sale.
func (s *SaleState) Remaining() *big.Int {
	r := new(big.Int).Sub(s.MaxTokens, s.TokensSold)
	if r.Sign() < 0 {
		r.SetInt64(0)
	}
	return r
}

// Cost is the smallest payment the sale accepts for amount tokens.
func (s *SaleState) Cost(amount *big.Int) *big.Int {
	return units.MulDivCeil(amount, s.Price, units.One)
}

// Status reports the sale phase at now.
func (s *SaleState) Status(now time.Time) crowdsale.Status {
	switch {
	case s.Finalized:
		return crowdsale.StatusFinalized
	case !s.IsOpen:
		return crowdsale.StatusClosed
	case now.Unix() < 0 || uint64(now.Unix()) < s.OpeningTime:
		return crowdsale.StatusPending
	default:
		return crowdsale.StatusOpen
	}
}

// ReadSale reads the crowdsale at addr.
func ReadSale(b Backend, addr common.Address) (*SaleState, error) {
	c := NewCaller(b, CrowdsaleABI(), addr)
	s := &SaleState{Address: addr}

	var opening *big.Int
	fields := []struct {
		name string
		dst  interface{}
	}{
		{"owner", &s.Owner},
		{"token", &s.Token},
		{"price", &s.Price},
		{"maxTokens", &s.MaxTokens},
		{"tokensSold", &s.TokensSold},
		{"openingTime", &opening},
		{"minContribution", &s.MinContribution},
		{"maxContribution", &s.MaxContribution},
		{"isOpen", &s.IsOpen},
		{"whitelistEnabled", &s.WhitelistEnabled},
		{"finalized", &s.Finalized},
		{"getWhitelistedAddresses", &s.Whitelist},
	}
	for _, f := range fields {
		if err := callInto(c, f.name, f.dst); err != nil {
			return nil, err
		}
	}
	if !opening.IsUint64() {
		return nil, fmt.Errorf("openingTime %s out of range", opening)
	}
	s.OpeningTime = opening.Uint64()
	return s, nil
}

// TokenState is the metadata of a token ledger.
type TokenState struct {
	Address     common.Address
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply *big.Int
}

// ReadToken reads the token at addr.
func ReadToken(b Backend, addr common.Address) (*TokenState, error) {
	c := NewCaller(b, TokenABI(), addr)
	t := &TokenState{Address: addr}
	for name, dst := range map[string]interface{}{
		"name":        &t.Name,
		"symbol":      &t.Symbol,
		"decimals":    &t.Decimals,
		"totalSupply": &t.TotalSupply,
	} {
		if err := callInto(c, name, dst); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// TokenBalance reads account's balance of the token at addr.
func TokenBalance(b Backend, addr, account common.Address) (*big.Int, error) {
	var bal *big.Int
	err := callInto(NewCaller(b, TokenABI(), addr), "balanceOf", &bal, account)
	return bal, err
}

// IsWhitelisted reads whether account is on the sale's whitelist.
func IsWhitelisted(b Backend, sale, account common.Address) (bool, error) {
	var ok bool
	err := callInto(NewCaller(b, CrowdsaleABI(), sale), "whitelist", &ok, account)
	return ok, err
}

func callInto(c *Caller, name string, dst interface{}, args ...interface{}) error {
	out, err := c.CallOne(name, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	switch d := dst.(type) {
	case *common.Address:
		*d, err = as[common.Address](name, out)
	case **big.Int:
		*d, err = as[*big.Int](name, out)
	case *bool:
		*d, err = as[bool](name, out)
	case *string:
		*d, err = as[string](name, out)
	case *uint8:
		*d, err = as[uint8](name, out)
	case *[]common.Address:
		*d, err = as[[]common.Address](name, out)
	default:
		err = fmt.Errorf("%s: unsupported destination %T", name, dst)
	}
	return err
}

func as[T any](name string, v interface{}) (T, error) {
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s: unexpected result type %T", name, v)
	}
	return t, nil
}
