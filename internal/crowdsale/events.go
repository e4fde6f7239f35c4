package crowdsale

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Buy is emitted after every successful purchase.
type Buy struct {
	Amount *big.Int
	Buyer  common.Address
}

// EventName implements event.Event.
func (Buy) EventName() string { return "Buy" }

// Finalize is emitted once, when the owner closes out the sale.
type Finalize struct {
	TokensSold *big.Int
	EthRaised  *big.Int
}

// EventName implements event.Event.
func (Finalize) EventName() string { return "Finalize" }
