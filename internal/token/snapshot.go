package token

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Snapshot is the serializable form of a Ledger.
type Snapshot struct {
	Name        string                      `json:"name"`
	Symbol      string                      `json:"symbol"`
	TotalSupply *big.Int                    `json:"total_supply"`
	Balances    map[common.Address]*big.Int `json:"balances"`
}

// Snapshot captures the ledger's state. The result shares nothing with l.
func (l *Ledger) Snapshot() Snapshot {
	s := Snapshot{
		Name:        l.name,
		Symbol:      l.symbol,
		TotalSupply: new(big.Int).Set(l.totalSupply),
		Balances:    make(map[common.Address]*big.Int, len(l.balances)),
	}
	for a, b := range l.balances {
		s.Balances[a] = new(big.Int).Set(b)
	}
	return s
}

// Restore rebuilds a Ledger from a snapshot, checking the conservation invariant.
func Restore(s Snapshot) (*Ledger, error) {
	if s.TotalSupply == nil {
		return nil, fmt.Errorf("restoring %s: missing total supply", s.Symbol)
	}
	l := &Ledger{
		name:        s.Name,
		symbol:      s.Symbol,
		totalSupply: new(big.Int).Set(s.TotalSupply),
		balances:    make(map[common.Address]*big.Int, len(s.Balances)),
	}
	sum := new(big.Int)
	for a, b := range s.Balances {
		if b == nil || b.Sign() < 0 {
			return nil, fmt.Errorf("restoring %s: bad balance for %s", s.Symbol, a.Hex())
		}
		if b.Sign() > 0 {
			l.balances[a] = new(big.Int).Set(b)
			sum.Add(sum, b)
		}
	}
	if sum.Cmp(l.totalSupply) != 0 {
		return nil, fmt.Errorf("restoring %s: balances sum to %s, supply is %s", s.Symbol, sum, l.totalSupply)
	}
	return l, nil
}

// Clone returns an independent deep copy.
func (l *Ledger) Clone() *Ledger {
	c, _ := Restore(l.Snapshot())
	return c
}
