package crowdsale

import (
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/w3sale/internal/units"
	"github.com/ethereum/go-ethereum/common"
)

// BuyTokens sells amount tokens to buyer, who has already paid paid units of
// currency into the engine's account. Excess payment is kept.
func (e *Engine) BuyTokens(env Env, buyer common.Address, amount, paid *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("%w: negative token amount", ErrBelowMinimum)
	}
	if paid == nil {
		paid = new(big.Int)
	}
	if err := e.admit(env, buyer, amount, paid); err != nil {
		return err
	}
	if err := env.Token.Transfer(env.Self, buyer, amount); err != nil {
		return err
	}
	e.sold.Add(e.sold, amount)
	env.emit(Buy{Amount: new(big.Int).Set(amount), Buyer: buyer})
	return nil
}

// Receive handles currency sent without a call: the payment buys as many
// whole base units of token as it covers at the current price.
func (e *Engine) Receive(env Env, buyer common.Address, paid *big.Int) error {
	if e.finalized {
		return ErrSaleFinalized
	}
	if e.price.Sign() == 0 {
		return ErrZeroPrice
	}
	if paid == nil {
		paid = new(big.Int)
	}
	return e.BuyTokens(env, buyer, e.TokensFor(paid), paid)
}

// TokensFor returns how many tokens paid buys at the current price, rounded
// down. It is zero when the price is zero.
func (e *Engine) TokensFor(paid *big.Int) *big.Int {
	if e.price.Sign() == 0 {
		return new(big.Int)
	}
	return units.MulDiv(paid, units.One, e.price)
}

func (e *Engine) admit(env Env, buyer common.Address, amount, paid *big.Int) error {
	if e.finalized {
		return ErrSaleFinalized
	}
	if !e.open {
		return ErrSaleClosed
	}
	if !e.started(env.Now) {
		return fmt.Errorf("%w: opens at %d", ErrSaleNotStarted, e.opening)
	}
	if e.whitelistEnabled && !e.whitelist[buyer] {
		return fmt.Errorf("%w: %s", ErrNotWhitelisted, buyer.Hex())
	}
	if amount.Cmp(e.minBuy) < 0 {
		return fmt.Errorf("%w: %s < %s", ErrBelowMinimum, units.Format(amount), units.Format(e.minBuy))
	}
	if amount.Cmp(e.maxBuy) > 0 {
		return fmt.Errorf("%w: %s > %s", ErrAboveMaximum, units.Format(amount), units.Format(e.maxBuy))
	}
	if cost := e.Cost(amount); paid.Cmp(cost) < 0 {
		return fmt.Errorf("%w: paid %s, cost %s", ErrInsufficientPayment, units.Format(paid), units.Format(cost))
	}
	if total := new(big.Int).Add(e.sold, amount); total.Cmp(e.maxTokens) > 0 {
		return fmt.Errorf("%w: %s remaining", ErrCapExceeded, units.Format(e.Remaining()))
	}
	return nil
}
