package chain_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/Mohsinsiddi/w3sale/internal/chain"
	"github.com/Mohsinsiddi/w3sale/internal/contract"
	"github.com/Mohsinsiddi/w3sale/internal/crowdsale"
	"github.com/Mohsinsiddi/w3sale/internal/token"
	"github.com/Mohsinsiddi/w3sale/internal/units"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeployAndFund(t *testing.T) {
	e := newEnv(t, chain.Options{})

	assert.Equal(t, uint64(6), e.c.Height())
	assert.Equal(t, crypto.CreateAddress(e.owner.addr, 0), e.token)
	assert.Equal(t, crypto.CreateAddress(e.owner.addr, 1), e.sale)
	assert.Equal(t, units.MustParse("1000000").String(), e.tokenBalance(e.sale).String())
	assert.Equal(t, 0, e.tokenBalance(e.owner.addr).Sign())

	sale, err := e.c.Sale(e.sale)
	require.NoError(t, err)
	assert.Equal(t, e.owner.addr, sale.Owner())
	assert.Equal(t, e.token, sale.Token())
	assert.False(t, sale.IsOpen())
	assert.True(t, sale.WhitelistEnabled())

	kinds := e.c.Contracts()
	assert.Equal(t, contract.TokenID, kinds[e.token])
	assert.Equal(t, contract.CrowdsaleID, kinds[e.sale])
}

func TestPurchaseThroughTransactions(t *testing.T) {
	e := newEnv(t, chain.Options{})
	e.mustSend(e.owner, e.saleTx(e.owner, nil, "addToWhitelist", e.user1.addr))
	e.mustSend(e.owner, e.saleTx(e.owner, nil, "openSale"))

	before := e.c.Balance(e.user1.addr)
	r := e.mustSend(e.user1, e.saleTx(e.user1, units.MustParse("10"), "buyTokens", units.MustParse("10")))

	assert.Equal(t, "buyTokens", r.Method)
	assert.Equal(t, uint64(1), r.Status)
	require.Len(t, r.Logs, 2)
	transfer, err := contract.DecodeLog(r.Logs[0].Eth())
	require.NoError(t, err)
	assert.Equal(t, "Transfer", transfer.Name)
	assert.Equal(t, e.token, r.Logs[0].Address)
	buy, err := contract.DecodeLog(r.Logs[1].Eth())
	require.NoError(t, err)
	assert.Equal(t, "Buy(amount=10, buyer="+e.user1.addr.Hex()+")", buy.String())

	assert.Equal(t, units.MustParse("10").String(), e.tokenBalance(e.user1.addr).String())
	assert.Equal(t, units.MustParse("999990").String(), e.tokenBalance(e.sale).String())
	assert.Equal(t, units.MustParse("10").String(), e.c.Balance(e.sale).String())
	assert.Equal(t, new(big.Int).Sub(before, units.MustParse("10")).String(), e.c.Balance(e.user1.addr).String())

	got, err := e.c.Receipt(r.TxHash)
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestRejectedTransactionChangesNothing(t *testing.T) {
	e := newEnv(t, chain.Options{})
	e.mustSend(e.owner, e.saleTx(e.owner, nil, "openSale"))

	height := e.c.Height()
	nonce := e.c.Nonce(e.user2.addr)
	bal := e.c.Balance(e.user2.addr)
	saleBal := e.c.Balance(e.sale)
	before, err := e.c.Sale(e.sale)
	require.NoError(t, err)

	raw := e.saleTx(e.user2, units.MustParse("10"), "buyTokens", units.MustParse("10"))
	_, err = e.c.SendTransaction(raw)
	assert.ErrorIs(t, err, crowdsale.ErrNotWhitelisted)
	assert.Equal(t, "NOT_WHITELISTED", chain.Code(err))

	assert.Equal(t, height, e.c.Height())
	assert.Equal(t, nonce, e.c.Nonce(e.user2.addr))
	assert.Equal(t, bal.String(), e.c.Balance(e.user2.addr).String())
	assert.Equal(t, saleBal.String(), e.c.Balance(e.sale).String())
	after, err := e.c.Sale(e.sale)
	require.NoError(t, err)
	assert.Equal(t, before.Snapshot(), after.Snapshot())
	assert.Equal(t, 0, e.tokenBalance(e.user2.addr).Sign())

	// the same nonce is still usable once the buyer is admitted
	e.mustSend(e.owner, e.saleTx(e.owner, nil, "toggleWhitelist", false))
	e.mustSend(e.user2, raw)
	assert.Equal(t, units.MustParse("10").String(), e.tokenBalance(e.user2.addr).String())
}

func TestDirectPayment(t *testing.T) {
	e := newEnv(t, chain.Options{})
	e.mustSend(e.owner, e.saleTx(e.owner, nil, "addToWhitelist", e.user1.addr))
	e.mustSend(e.owner, e.saleTx(e.owner, nil, "openSale"))
	e.mustSend(e.owner, e.saleTx(e.owner, nil, "setPrice", units.MustParse("0.5")))

	r := e.mustSend(e.user1, e.payTx(e.user1, e.sale, units.MustParse("3")))
	assert.Equal(t, "receive", r.Method)
	assert.Equal(t, units.MustParse("6").String(), e.tokenBalance(e.user1.addr).String())
	assert.Equal(t, units.MustParse("3").String(), e.c.Balance(e.sale).String())
}

func TestPlainTransferBetweenAccounts(t *testing.T) {
	e := newEnv(t, chain.Options{})
	before := e.c.Balance(e.user2.addr)

	r := e.mustSend(e.user1, e.payTx(e.user1, e.user2.addr, units.MustParse("1.25")))
	assert.Equal(t, "transfer", r.Method)
	assert.Empty(t, r.Logs)
	assert.Equal(t, new(big.Int).Add(before, units.MustParse("1.25")).String(), e.c.Balance(e.user2.addr).String())
}

func TestFinalizeSweepsToOwner(t *testing.T) {
	e := newEnv(t, chain.Options{})
	e.mustSend(e.owner, e.saleTx(e.owner, nil, "toggleWhitelist", false))
	e.mustSend(e.owner, e.saleTx(e.owner, nil, "openSale"))
	e.mustSend(e.user1, e.saleTx(e.user1, units.MustParse("10"), "buyTokens", units.MustParse("10")))
	e.mustSend(e.user2, e.saleTx(e.user2, units.MustParse("12"), "buyTokens", units.MustParse("10")))

	ownerBefore := e.c.Balance(e.owner.addr)
	r := e.mustSend(e.owner, e.saleTx(e.owner, nil, "finalize"))

	assert.Equal(t, 0, e.tokenBalance(e.sale).Sign())
	assert.Equal(t, units.MustParse("999980").String(), e.tokenBalance(e.owner.addr).String())
	assert.Equal(t, 0, e.c.Balance(e.sale).Sign())
	assert.Equal(t, new(big.Int).Add(ownerBefore, units.MustParse("22")).String(), e.c.Balance(e.owner.addr).String())

	fin, err := contract.DecodeLog(r.Logs[len(r.Logs)-1].Eth())
	require.NoError(t, err)
	assert.Equal(t, "Finalize(tokensSold=20, ethRaised=22)", fin.String())

	_, err = e.c.SendTransaction(e.saleTx(e.owner, nil, "finalize"))
	assert.ErrorIs(t, err, crowdsale.ErrSaleFinalized)
	_, err = e.c.SendTransaction(e.saleTx(e.user1, units.MustParse("1"), "buyTokens", units.MustParse("1")))
	assert.ErrorIs(t, err, crowdsale.ErrSaleFinalized)
}

func TestNonOwnerAdminRejected(t *testing.T) {
	e := newEnv(t, chain.Options{})
	_, err := e.c.SendTransaction(e.saleTx(e.user1, nil, "openSale"))
	assert.ErrorIs(t, err, crowdsale.ErrNotOwner)
	assert.Equal(t, "NOT_OWNER", chain.Code(err))
}

func TestTransactionValidation(t *testing.T) {
	e := newEnv(t, chain.Options{})

	_, err := e.c.SendTransaction([]byte{0x02, 0xff})
	assert.ErrorIs(t, err, chain.ErrInvalidTx)

	e.owner.nonce--
	stale := e.tokenTx(e.owner, "transfer", e.user1.addr, big.NewInt(0))
	_, err = e.c.SendTransaction(stale)
	assert.ErrorIs(t, err, chain.ErrNonceTooLow)
	e.owner.nonce++

	e.owner.nonce += 5
	_, err = e.c.SendTransaction(e.tokenTx(e.owner, "transfer", e.user1.addr, big.NewInt(0)))
	assert.ErrorIs(t, err, chain.ErrNonceTooHigh)
	e.owner.nonce -= 5

	other := contract.NewSender(e.owner, big.NewInt(1))
	raw, err := other.Transfer(e.owner.nonce, e.user1.addr, big.NewInt(1))
	require.NoError(t, err)
	_, err = e.c.SendTransaction(raw)
	assert.ErrorIs(t, err, chain.ErrWrongChain)

	broke := newAccount(t)
	_, err = e.c.SendTransaction(e.payTx(broke, e.user1.addr, big.NewInt(1)))
	assert.ErrorIs(t, err, chain.ErrInsufficientFunds)
	assert.Equal(t, "INSUFFICIENT_FUNDS", chain.Code(err))
}

func TestNotPayableAndUnknownTargets(t *testing.T) {
	e := newEnv(t, chain.Options{})

	raw, err := e.owner.sender.Call(contract.TokenABI(), e.owner.nonce, e.user1.addr, nil, "transfer", e.user2.addr, big.NewInt(1))
	require.NoError(t, err)
	_, err = e.c.SendTransaction(raw)
	assert.ErrorIs(t, err, chain.ErrNoContract)

	// value sent to the token is refused
	_, err = e.c.SendTransaction(e.payTx(e.user1, e.token, big.NewInt(1)))
	assert.ErrorIs(t, err, chain.ErrUnknownMethod)
}

func TestTokenTransferByHolder(t *testing.T) {
	e := newEnv(t, chain.Options{})
	e.mustSend(e.owner, e.saleTx(e.owner, nil, "toggleWhitelist", false))
	e.mustSend(e.owner, e.saleTx(e.owner, nil, "openSale"))
	e.mustSend(e.user1, e.saleTx(e.user1, units.MustParse("5"), "buyTokens", units.MustParse("5")))

	e.mustSend(e.user1, e.tokenTx(e.user1, "transfer", e.user2.addr, units.MustParse("2")))
	assert.Equal(t, units.MustParse("3").String(), e.tokenBalance(e.user1.addr).String())
	assert.Equal(t, units.MustParse("2").String(), e.tokenBalance(e.user2.addr).String())

	_, err := e.c.SendTransaction(e.tokenTx(e.user1, "transfer", e.user2.addr, units.MustParse("4")))
	assert.ErrorIs(t, err, token.ErrInsufficientBalance)
	_, err = e.c.SendTransaction(e.tokenTx(e.user1, "transfer", common.Address{}, big.NewInt(1)))
	assert.ErrorIs(t, err, token.ErrInvalidRecipient)
	assert.Equal(t, "INVALID_RECIPIENT", chain.Code(err))
}

func TestCallViews(t *testing.T) {
	e := newEnv(t, chain.Options{})
	e.mustSend(e.owner, e.saleTx(e.owner, nil, "addToWhitelist", e.user1.addr))
	e.mustSend(e.owner, e.saleTx(e.owner, nil, "addToWhitelist", e.user2.addr))
	e.mustSend(e.owner, e.saleTx(e.owner, nil, "removeFromWhitelist", e.user1.addr))

	sale := contract.NewCaller(chain.Local(e.c), contract.CrowdsaleABI(), e.sale)
	members, err := sale.CallOne("getWhitelistedAddresses")
	require.NoError(t, err)
	assert.Equal(t, []common.Address{e.user2.addr}, members)

	in, err := sale.CallOne("whitelist", e.user1.addr)
	require.NoError(t, err)
	assert.Equal(t, false, in)

	opening, err := sale.CallOne("openingTime")
	require.NoError(t, err)
	assert.Equal(t, genesis.Add(-time.Minute).Unix(), opening.(*big.Int).Int64())

	tok := contract.NewCaller(chain.Local(e.c), contract.TokenABI(), e.token)
	sym, err := tok.CallOne("symbol")
	require.NoError(t, err)
	assert.Equal(t, "SALE", sym)
	dec, err := tok.CallOne("decimals")
	require.NoError(t, err)
	assert.Equal(t, uint8(18), dec)
}

func TestCallDoesNotCommit(t *testing.T) {
	e := newEnv(t, chain.Options{})
	data, err := contract.CrowdsaleABI().Pack("openSale")
	require.NoError(t, err)

	_, err = e.c.Call(e.owner.addr, e.sale, data)
	require.NoError(t, err)
	sale, err := e.c.Sale(e.sale)
	require.NoError(t, err)
	assert.False(t, sale.IsOpen())

	_, err = e.c.Call(e.user1.addr, e.sale, data)
	assert.ErrorIs(t, err, crowdsale.ErrNotOwner)
}

func TestLogsQuery(t *testing.T) {
	e := newEnv(t, chain.Options{})
	e.mustSend(e.owner, e.saleTx(e.owner, nil, "toggleWhitelist", false))
	e.mustSend(e.owner, e.saleTx(e.owner, nil, "openSale"))
	e.mustSend(e.user1, e.saleTx(e.user1, units.MustParse("1"), "buyTokens", units.MustParse("1")))
	e.mustSend(e.user2, e.saleTx(e.user2, units.MustParse("2"), "buyTokens", units.MustParse("2")))

	buys, err := e.c.Logs(chain.LogQuery{Event: "Buy"})
	require.NoError(t, err)
	require.Len(t, buys, 2)

	last, err := e.c.Logs(chain.LogQuery{Event: "Buy", Limit: 1})
	require.NoError(t, err)
	require.Len(t, last, 1)
	d, err := contract.DecodeLog(last[0].Eth())
	require.NoError(t, err)
	assert.Equal(t, e.user2.addr, d.Fields["buyer"])

	// mint, funding and two purchases
	transfers, err := e.c.Logs(chain.LogQuery{Address: &e.token, Event: "Transfer"})
	require.NoError(t, err)
	assert.Len(t, transfers, 4)

	later, err := e.c.Logs(chain.LogQuery{FromBlock: buys[1].BlockNumber})
	require.NoError(t, err)
	assert.Len(t, later, 2)

	_, err = e.c.Logs(chain.LogQuery{Event: "Approval"})
	assert.ErrorIs(t, err, contract.ErrUnknownEvent)
}

func TestOpeningTimeFollowsBlockClock(t *testing.T) {
	c, clk := newChain(t, chain.Options{})
	e := &env{t: t, c: c, clock: clk, owner: newAccount(t), user1: newAccount(t), user2: newAccount(t)}
	clk.now = genesis.Add(-2 * time.Minute)
	deployInto(t, e)
	e.mustSend(e.owner, e.saleTx(e.owner, nil, "toggleWhitelist", false))
	e.mustSend(e.owner, e.saleTx(e.owner, nil, "openSale"))

	_, err := e.c.SendTransaction(e.saleTx(e.user1, units.MustParse("1"), "buyTokens", units.MustParse("1")))
	assert.ErrorIs(t, err, crowdsale.ErrSaleNotStarted)

	clk.now = genesis
	e.mustSend(e.user1, e.saleTx(e.user1, units.MustParse("1"), "buyTokens", units.MustParse("1")))

	// a clock running backwards does not rewind blocks
	clk.now = genesis.Add(-time.Hour)
	require.NoError(t, e.c.Faucet(e.user1.addr, big.NewInt(1)))
	assert.Equal(t, genesis.Unix(), e.c.Time().Unix())
}

type recordingObserver struct {
	committed []*chain.Receipt
	rejected  []string
}

func (o *recordingObserver) Committed(r *chain.Receipt) { o.committed = append(o.committed, r) }
func (o *recordingObserver) Rejected(_ common.Address, err error) {
	o.rejected = append(o.rejected, chain.Code(err))
}

func TestObserversSeeOutcomes(t *testing.T) {
	obs := &recordingObserver{}
	e := newEnv(t, chain.Options{Observers: []chain.Observer{obs}})
	assert.Len(t, obs.committed, 3)

	_, err := e.c.SendTransaction(e.saleTx(e.user1, units.MustParse("1"), "buyTokens", units.MustParse("1")))
	require.Error(t, err)
	assert.Equal(t, []string{"SALE_CLOSED"}, obs.rejected)
}

func TestFaucetRejectsNonPositive(t *testing.T) {
	c, _ := newChain(t, chain.Options{})
	assert.ErrorIs(t, c.Faucet(common.Address{1}, big.NewInt(0)), units.ErrInvalidAmount)
	assert.Equal(t, uint64(0), c.Height())
}
