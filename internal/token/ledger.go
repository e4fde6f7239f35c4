// Package token implements the fixed-supply fungible token sold by the
// crowdsale. The ledger never creates or destroys value: the sum of all
// balances equals the total supply after every operation.
package token

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/Mohsinsiddi/w3sale/internal/event"
	"github.com/Mohsinsiddi/w3sale/internal/units"
	"github.com/ethereum/go-ethereum/common"
)

// Errors.
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidRecipient    = errors.New("invalid recipient")
	ErrInvalidAmount       = errors.New("invalid amount")
)

// Transfer is emitted for every successful transfer.
type Transfer struct {
	From  common.Address
	To    common.Address
	Value *big.Int
}

// EventName implements event.Event.
func (Transfer) EventName() string { return "Transfer" }

// Ledger tracks balances of a single token.
type Ledger struct {
	name        string
	symbol      string
	totalSupply *big.Int
	balances    map[common.Address]*big.Int
}

// New creates a ledger and credits the whole supply to deployer.
func New(name, symbol string, supply *big.Int, deployer common.Address) (*Ledger, error) {
	if supply == nil || supply.Sign() < 0 {
		return nil, fmt.Errorf("%w: supply must be non-negative", ErrInvalidAmount)
	}
	l := &Ledger{
		name:        name,
		symbol:      symbol,
		totalSupply: new(big.Int).Set(supply),
		balances:    make(map[common.Address]*big.Int),
	}
	if supply.Sign() > 0 {
		l.balances[deployer] = new(big.Int).Set(supply)
	}
	return l, nil
}

// Name returns the token name.
func (l *Ledger) Name() string { return l.name }

// Symbol returns the token symbol.
func (l *Ledger) Symbol() string { return l.symbol }

// Decimals is always 18.
func (l *Ledger) Decimals() uint8 { return units.Decimals }

// TotalSupply returns a copy of the fixed total supply.
func (l *Ledger) TotalSupply() *big.Int { return new(big.Int).Set(l.totalSupply) }

// BalanceOf returns a copy of account's balance; zero for unknown accounts.
func (l *Ledger) BalanceOf(account common.Address) *big.Int {
	if b, ok := l.balances[account]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// Transfer moves amount from one account to another. Nothing changes unless
// every precondition holds.
func (l *Ledger) Transfer(from, to common.Address, amount *big.Int) (Transfer, error) {
	if amount == nil || amount.Sign() < 0 {
		return Transfer{}, ErrInvalidAmount
	}
	if to == (common.Address{}) {
		return Transfer{}, ErrInvalidRecipient
	}
	bal := l.BalanceOf(from)
	if bal.Cmp(amount) < 0 {
		return Transfer{}, fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientBalance,
			from.Hex(), units.Format(bal), units.Format(amount))
	}

	l.set(from, bal.Sub(bal, amount))
	l.set(to, new(big.Int).Add(l.BalanceOf(to), amount))

	return Transfer{From: from, To: to, Value: new(big.Int).Set(amount)}, nil
}

func (l *Ledger) set(account common.Address, v *big.Int) {
	if v.Sign() == 0 {
		delete(l.balances, account)
		return
	}
	l.balances[account] = v
}

// Holding is one non-zero balance.
type Holding struct {
	Account common.Address
	Balance *big.Int
}

// Holders returns every non-zero balance sorted by address.
func (l *Ledger) Holders() []Holding {
	out := make([]Holding, 0, len(l.balances))
	for a, b := range l.balances {
		out = append(out, Holding{Account: a, Balance: new(big.Int).Set(b)})
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Account.Bytes(), out[j].Account.Bytes()) < 0
	})
	return out
}

// Bind returns a view of l whose transfers report to emit.
func (l *Ledger) Bind(emit event.Emitter) Bound {
	return Bound{ledger: l, emit: emit}
}

// Bound is a Ledger wired to an event emitter.
type Bound struct {
	ledger *Ledger
	emit   event.Emitter
}

// BalanceOf returns account's balance.
func (b Bound) BalanceOf(account common.Address) *big.Int {
	return b.ledger.BalanceOf(account)
}

// Transfer moves tokens and emits a Transfer event on success.
func (b Bound) Transfer(from, to common.Address, amount *big.Int) error {
	ev, err := b.ledger.Transfer(from, to, amount)
	if err != nil {
		return err
	}
	b.emit.Emit(ev)
	return nil
}
