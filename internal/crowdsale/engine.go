// Package crowdsale implements the sale engine: it sells tokens held in its
// own ledger account for native currency, subject to an allow-list, an
// open/closed flag, an opening time, per-purchase bounds and a cap.
//
// The engine holds no reference to the chain. Every operation receives an Env
// describing the engine's own address, the current time, and the token and
// currency ledgers it settles against. Callers serialize operations and roll
// back every ledger touched when an operation fails; the engine itself checks
// all preconditions before its first mutation.
package crowdsale

import (
	"fmt"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/w3sale/internal/event"
	"github.com/Mohsinsiddi/w3sale/internal/units"
	"github.com/ethereum/go-ethereum/common"
)

// TokenLedger is the token the engine distributes.
type TokenLedger interface {
	BalanceOf(account common.Address) *big.Int
	Transfer(from, to common.Address, amount *big.Int) error
}

// Bank settles the native currency.
type Bank interface {
	BalanceOf(account common.Address) *big.Int
	Transfer(from, to common.Address, amount *big.Int) error
}

// Env is the execution context of one engine call.
type Env struct {
	Self  common.Address
	Now   time.Time
	Token TokenLedger
	Bank  Bank
	Emit  event.Emitter
}

func (e Env) emit(ev event.Event) {
	if e.Emit != nil {
		e.Emit.Emit(ev)
	}
}

// Params are fixed at deployment.
type Params struct {
	Owner           common.Address
	Token           common.Address
	Price           *big.Int
	MaxTokens       *big.Int
	OpeningTime     uint64
	MinContribution *big.Int
	MaxContribution *big.Int
}

// Engine is one crowdsale.
type Engine struct {
	owner     common.Address
	token     common.Address
	price     *big.Int
	maxTokens *big.Int
	sold      *big.Int
	opening   uint64
	minBuy    *big.Int
	maxBuy    *big.Int

	open             bool
	whitelistEnabled bool
	finalized        bool
	whitelist        map[common.Address]bool
	everAdded        []common.Address
}

// New creates a closed sale with the allow-list enabled and nothing sold.
func New(p Params) (*Engine, error) {
	if p.Token == (common.Address{}) {
		return nil, ErrInvalidToken
	}
	price, err := nonNegative("price", p.Price)
	if err != nil {
		return nil, err
	}
	maxTokens, err := nonNegative("max tokens", p.MaxTokens)
	if err != nil {
		return nil, err
	}
	minBuy, err := nonNegative("min contribution", p.MinContribution)
	if err != nil {
		return nil, err
	}
	maxBuy, err := nonNegative("max contribution", p.MaxContribution)
	if err != nil {
		return nil, err
	}
	if minBuy.Cmp(maxBuy) > 0 {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidBounds, units.Format(minBuy), units.Format(maxBuy))
	}
	return &Engine{
		owner:            p.Owner,
		token:            p.Token,
		price:            price,
		maxTokens:        maxTokens,
		sold:             new(big.Int),
		opening:          p.OpeningTime,
		minBuy:           minBuy,
		maxBuy:           maxBuy,
		whitelistEnabled: true,
		whitelist:        make(map[common.Address]bool),
	}, nil
}

func nonNegative(name string, v *big.Int) (*big.Int, error) {
	if v == nil {
		return new(big.Int), nil
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%s must not be negative", name)
	}
	return new(big.Int).Set(v), nil
}

// Owner returns the deployer.
func (e *Engine) Owner() common.Address { return e.owner }

// Token returns the address of the token being sold.
func (e *Engine) Token() common.Address { return e.token }

func (e *Engine) Price() *big.Int           { return new(big.Int).Set(e.price) }
func (e *Engine) MaxTokens() *big.Int       { return new(big.Int).Set(e.maxTokens) }
func (e *Engine) TokensSold() *big.Int      { return new(big.Int).Set(e.sold) }
func (e *Engine) OpeningTime() uint64       { return e.opening }
func (e *Engine) MinContribution() *big.Int { return new(big.Int).Set(e.minBuy) }
func (e *Engine) MaxContribution() *big.Int { return new(big.Int).Set(e.maxBuy) }
func (e *Engine) IsOpen() bool              { return e.open }
func (e *Engine) WhitelistEnabled() bool    { return e.whitelistEnabled }
func (e *Engine) Finalized() bool           { return e.finalized }

// Remaining returns how many tokens can still be sold under the cap.
func (e *Engine) Remaining() *big.Int {
	return new(big.Int).Sub(e.maxTokens, e.sold)
}

// Cost returns the minimum payment accepted for amount tokens at the current
// price, rounded up to the next base unit.
func (e *Engine) Cost(amount *big.Int) *big.Int {
	return units.MulDivCeil(amount, e.price, units.One)
}

// Status is the lifecycle phase of a sale.
type Status string

// Phases.
const (
	StatusClosed    Status = "closed"
	StatusPending   Status = "pending"
	StatusOpen      Status = "open"
	StatusFinalized Status = "finalized"
)

// Status reports the phase at now. A sale whose flag is open but whose
// opening time has not yet come is pending.
func (e *Engine) Status(now time.Time) Status {
	switch {
	case e.finalized:
		return StatusFinalized
	case !e.open:
		return StatusClosed
	case !e.started(now):
		return StatusPending
	default:
		return StatusOpen
	}
}

func (e *Engine) started(now time.Time) bool {
	ts := now.Unix()
	return ts >= 0 && uint64(ts) >= e.opening
}
