package crowdsale

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

func (e *Engine) onlyOwner(caller common.Address) error {
	if caller != e.owner {
		return fmt.Errorf("%w: %s", ErrNotOwner, caller.Hex())
	}
	return nil
}

// SetPrice replaces the price per whole token.
func (e *Engine) SetPrice(caller common.Address, price *big.Int) error {
	if err := e.onlyOwner(caller); err != nil {
		return err
	}
	if price == nil || price.Sign() < 0 {
		return fmt.Errorf("price must not be negative")
	}
	e.price = new(big.Int).Set(price)
	return nil
}

// OpenSale sets the open flag. A finalized sale cannot be reopened.
func (e *Engine) OpenSale(caller common.Address) error {
	if err := e.onlyOwner(caller); err != nil {
		return err
	}
	if e.finalized {
		return ErrSaleFinalized
	}
	e.open = true
	return nil
}

// CloseSale clears the open flag.
func (e *Engine) CloseSale(caller common.Address) error {
	if err := e.onlyOwner(caller); err != nil {
		return err
	}
	e.open = false
	return nil
}

// Finalize sweeps every token and every unit of currency the engine holds to
// the owner and ends the sale for good.
func (e *Engine) Finalize(env Env, caller common.Address) error {
	if err := e.onlyOwner(caller); err != nil {
		return err
	}
	if e.finalized {
		return ErrSaleFinalized
	}

	tokens := env.Token.BalanceOf(env.Self)
	raised := env.Bank.BalanceOf(env.Self)
	if err := env.Token.Transfer(env.Self, e.owner, tokens); err != nil {
		return fmt.Errorf("sweep tokens: %w", err)
	}
	if err := env.Bank.Transfer(env.Self, e.owner, raised); err != nil {
		return fmt.Errorf("sweep currency: %w", err)
	}

	e.open = false
	e.finalized = true
	env.emit(Finalize{TokensSold: e.TokensSold(), EthRaised: raised})
	return nil
}
