package chain_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/Mohsinsiddi/w3sale/internal/chain"
	"github.com/Mohsinsiddi/w3sale/internal/contract"
	"github.com/Mohsinsiddi/w3sale/internal/crowdsale"
	"github.com/Mohsinsiddi/w3sale/internal/units"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSaleAndToken(t *testing.T) {
	e := newEnv(t, chain.Options{})
	e.mustSend(e.owner, e.saleTx(e.owner, nil, "addToWhitelist", e.user1.addr))
	e.mustSend(e.owner, e.saleTx(e.owner, nil, "openSale"))
	e.mustSend(e.user1, e.saleTx(e.user1, units.MustParse("25"), "buyTokens", units.MustParse("25")))

	b := chain.Local(e.c)
	s, err := contract.ReadSale(b, e.sale)
	require.NoError(t, err)

	assert.Equal(t, e.sale, s.Address)
	assert.Equal(t, e.owner.addr, s.Owner)
	assert.Equal(t, e.token, s.Token)
	assert.Equal(t, units.MustParse("1").String(), s.Price.String())
	assert.Equal(t, units.MustParse("1000000").String(), s.MaxTokens.String())
	assert.Equal(t, units.MustParse("25").String(), s.TokensSold.String())
	assert.Equal(t, units.MustParse("999975").String(), s.Remaining().String())
	assert.Equal(t, uint64(genesis.Add(-time.Minute).Unix()), s.OpeningTime)
	assert.Equal(t, units.MustParse("0.01").String(), s.MinContribution.String())
	assert.Equal(t, units.MustParse("10000").String(), s.MaxContribution.String())
	assert.True(t, s.IsOpen)
	assert.True(t, s.WhitelistEnabled)
	assert.False(t, s.Finalized)
	assert.Equal(t, []common.Address{e.user1.addr}, s.Whitelist)

	assert.Equal(t, crowdsale.StatusOpen, s.Status(genesis))
	assert.Equal(t, crowdsale.StatusPending, s.Status(genesis.Add(-time.Hour)))

	ok, err := contract.IsWhitelisted(b, e.sale, e.user1.addr)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = contract.IsWhitelisted(b, e.sale, e.user2.addr)
	require.NoError(t, err)
	assert.False(t, ok)

	tok, err := contract.ReadToken(b, e.token)
	require.NoError(t, err)
	assert.Equal(t, "Sale Token", tok.Name)
	assert.Equal(t, "SALE", tok.Symbol)
	assert.Equal(t, uint8(18), tok.Decimals)
	assert.Equal(t, units.MustParse("1000000").String(), tok.TotalSupply.String())

	bal, err := contract.TokenBalance(b, e.token, e.user1.addr)
	require.NoError(t, err)
	assert.Equal(t, units.MustParse("25").String(), bal.String())
}

func TestReadSaleStatusAfterFinalize(t *testing.T) {
	e := newEnv(t, chain.Options{})
	e.mustSend(e.owner, e.saleTx(e.owner, nil, "finalize"))

	s, err := contract.ReadSale(chain.Local(e.c), e.sale)
	require.NoError(t, err)
	assert.Equal(t, crowdsale.StatusFinalized, s.Status(genesis))
	assert.False(t, s.IsOpen)
}

func TestReadSaleWrongAddress(t *testing.T) {
	e := newEnv(t, chain.Options{})
	_, err := contract.ReadSale(chain.Local(e.c), e.token)
	assert.Error(t, err)
	_, err = contract.ReadSale(chain.Local(e.c), e.user1.addr)
	assert.ErrorIs(t, err, chain.ErrNoContract)
}

func TestSaleCostRoundsUp(t *testing.T) {
	s := &contract.SaleState{Price: units.MustParse("0.3")}
	assert.Equal(t, units.MustParse("3").String(), s.Cost(units.MustParse("10")).String())
	assert.Equal(t, "1", s.Cost(big.NewInt(1)).String())
	assert.Equal(t, 0, s.Cost(new(big.Int)).Sign())
}
