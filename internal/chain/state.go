package chain

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/w3sale/internal/crowdsale"
	"github.com/Mohsinsiddi/w3sale/internal/token"
	"github.com/ethereum/go-ethereum/common"
)

// state is everything a transaction can change.
type state struct {
	height   uint64
	time     uint64
	balances map[common.Address]*big.Int
	nonces   map[common.Address]uint64
	tokens   map[common.Address]*token.Ledger
	sales    map[common.Address]*crowdsale.Engine
}

func newState() *state {
	return &state{
		balances: make(map[common.Address]*big.Int),
		nonces:   make(map[common.Address]uint64),
		tokens:   make(map[common.Address]*token.Ledger),
		sales:    make(map[common.Address]*crowdsale.Engine),
	}
}

func (s *state) clone() *state {
	c := &state{
		height:   s.height,
		time:     s.time,
		balances: make(map[common.Address]*big.Int, len(s.balances)),
		nonces:   make(map[common.Address]uint64, len(s.nonces)),
		tokens:   make(map[common.Address]*token.Ledger, len(s.tokens)),
		sales:    make(map[common.Address]*crowdsale.Engine, len(s.sales)),
	}
	for a, b := range s.balances {
		c.balances[a] = new(big.Int).Set(b)
	}
	for a, n := range s.nonces {
		c.nonces[a] = n
	}
	for a, l := range s.tokens {
		c.tokens[a] = l.Clone()
	}
	for a, e := range s.sales {
		c.sales[a] = e.Clone()
	}
	return c
}

func (s *state) hasCode(a common.Address) bool {
	_, tok := s.tokens[a]
	_, sale := s.sales[a]
	return tok || sale
}

// bank settles native currency against the state's balances.
type bank struct{ s *state }

func (b bank) BalanceOf(a common.Address) *big.Int {
	if v, ok := b.s.balances[a]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

func (b bank) Transfer(from, to common.Address, amount *big.Int) error {
	bal := b.BalanceOf(from)
	if bal.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s", ErrInsufficientFunds, from.Hex())
	}
	b.set(from, bal.Sub(bal, amount))
	b.set(to, new(big.Int).Add(b.BalanceOf(to), amount))
	return nil
}

func (b bank) credit(to common.Address, amount *big.Int) {
	b.set(to, new(big.Int).Add(b.BalanceOf(to), amount))
}

func (b bank) set(a common.Address, v *big.Int) {
	if v.Sign() == 0 {
		delete(b.s.balances, a)
		return
	}
	b.s.balances[a] = v
}

// stateJSON is the persisted snapshot.
type stateJSON struct {
	ChainID  *big.Int                              `json:"chainId"`
	Height   uint64                                `json:"height"`
	Time     uint64                                `json:"time"`
	Balances map[common.Address]*big.Int           `json:"balances"`
	Nonces   map[common.Address]uint64             `json:"nonces"`
	Tokens   map[common.Address]token.Snapshot     `json:"tokens"`
	Sales    map[common.Address]crowdsale.Snapshot `json:"sales"`
}

func (s *state) encode(chainID *big.Int) ([]byte, error) {
	out := stateJSON{
		ChainID:  chainID,
		Height:   s.height,
		Time:     s.time,
		Balances: s.balances,
		Nonces:   s.nonces,
		Tokens:   make(map[common.Address]token.Snapshot, len(s.tokens)),
		Sales:    make(map[common.Address]crowdsale.Snapshot, len(s.sales)),
	}
	for a, l := range s.tokens {
		out.Tokens[a] = l.Snapshot()
	}
	for a, e := range s.sales {
		out.Sales[a] = e.Snapshot()
	}
	return json.Marshal(out)
}

func decodeState(data []byte, chainID *big.Int) (*state, error) {
	var in stateJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decoding state: %w", err)
	}
	if in.ChainID != nil && chainID != nil && in.ChainID.Cmp(chainID) != 0 {
		return nil, fmt.Errorf("%w: stored state is for chain %s, not %s", ErrWrongChain, in.ChainID, chainID)
	}
	s := newState()
	s.height = in.Height
	s.time = in.Time
	for a, b := range in.Balances {
		if b == nil || b.Sign() < 0 {
			return nil, fmt.Errorf("decoding state: bad balance for %s", a.Hex())
		}
		if b.Sign() > 0 {
			s.balances[a] = b
		}
	}
	for a, n := range in.Nonces {
		s.nonces[a] = n
	}
	for a, snap := range in.Tokens {
		l, err := token.Restore(snap)
		if err != nil {
			return nil, fmt.Errorf("decoding token %s: %w", a.Hex(), err)
		}
		s.tokens[a] = l
	}
	for a, snap := range in.Sales {
		e, err := crowdsale.Restore(snap)
		if err != nil {
			return nil, fmt.Errorf("decoding sale %s: %w", a.Hex(), err)
		}
		s.sales[a] = e
	}
	return s, nil
}
