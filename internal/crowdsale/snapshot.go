package crowdsale

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Snapshot is the persisted form of an Engine.
type Snapshot struct {
	Owner            common.Address   `json:"owner"`
	Token            common.Address   `json:"token"`
	Price            *big.Int         `json:"price"`
	MaxTokens        *big.Int         `json:"maxTokens"`
	TokensSold       *big.Int         `json:"tokensSold"`
	OpeningTime      uint64           `json:"openingTime"`
	MinContribution  *big.Int         `json:"minContribution"`
	MaxContribution  *big.Int         `json:"maxContribution"`
	IsOpen           bool             `json:"isOpen"`
	WhitelistEnabled bool             `json:"whitelistEnabled"`
	Finalized        bool             `json:"finalized"`
	EverAdded        []common.Address `json:"everAdded,omitempty"`
	Members          []common.Address `json:"members,omitempty"`
}

// Snapshot returns a deep copy of the engine's state.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Owner:            e.owner,
		Token:            e.token,
		Price:            e.Price(),
		MaxTokens:        e.MaxTokens(),
		TokensSold:       e.TokensSold(),
		OpeningTime:      e.opening,
		MinContribution:  e.MinContribution(),
		MaxContribution:  e.MaxContribution(),
		IsOpen:           e.open,
		WhitelistEnabled: e.whitelistEnabled,
		Finalized:        e.finalized,
		EverAdded:        append([]common.Address(nil), e.everAdded...),
		Members:          e.WhitelistedAddresses(),
	}
}

// Restore rebuilds an engine from a snapshot.
func Restore(s Snapshot) (*Engine, error) {
	e, err := New(Params{
		Owner:           s.Owner,
		Token:           s.Token,
		Price:           s.Price,
		MaxTokens:       s.MaxTokens,
		OpeningTime:     s.OpeningTime,
		MinContribution: s.MinContribution,
		MaxContribution: s.MaxContribution,
	})
	if err != nil {
		return nil, err
	}
	if s.TokensSold != nil {
		if s.TokensSold.Sign() < 0 || s.TokensSold.Cmp(e.maxTokens) > 0 {
			return nil, fmt.Errorf("restore sale: tokens sold %s outside cap %s", s.TokensSold, e.maxTokens)
		}
		e.sold.Set(s.TokensSold)
	}
	e.open = s.IsOpen
	e.whitelistEnabled = s.WhitelistEnabled
	e.finalized = s.Finalized
	for _, a := range s.EverAdded {
		if _, dup := e.whitelist[a]; dup {
			continue
		}
		e.everAdded = append(e.everAdded, a)
		e.whitelist[a] = false
	}
	for _, a := range s.Members {
		if _, ok := e.whitelist[a]; !ok {
			return nil, fmt.Errorf("restore sale: member %s was never added", a.Hex())
		}
		e.whitelist[a] = true
	}
	return e, nil
}

// Clone returns an independent copy.
func (e *Engine) Clone() *Engine {
	c, err := Restore(e.Snapshot())
	if err != nil {
		panic(fmt.Sprintf("crowdsale: clone of a valid engine failed: %v", err))
	}
	return c
}
