package chain_test

import (
	"crypto/ecdsa"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/Mohsinsiddi/w3sale/internal/chain"
	"github.com/Mohsinsiddi/w3sale/internal/contract"
	"github.com/Mohsinsiddi/w3sale/internal/units"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

var genesis = time.Unix(1_700_000_000, 0)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

type account struct {
	key    *ecdsa.PrivateKey
	addr   common.Address
	sender *contract.Sender
	nonce  uint64
}

func (a *account) Address() common.Address { return a.addr }

func (a *account) SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error) {
	signed, err := types.SignTx(tx, types.NewLondonSigner(chainID), a.key)
	if err != nil {
		return nil, err
	}
	return signed.MarshalBinary()
}

func newAccount(t *testing.T) *account {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	a := &account{key: key, addr: crypto.PubkeyToAddress(key.PublicKey)}
	a.sender = contract.NewSender(a, big.NewInt(chain.DefaultChainID))
	return a
}

// env is a chain with an owner who has deployed and funded a sale.
type env struct {
	t     *testing.T
	c     *chain.Chain
	clock *clock
	owner *account
	user1 *account
	user2 *account
	token common.Address
	sale  common.Address
}

// mustSend submits raw, requires success and advances from's nonce.
func (e *env) mustSend(from *account, raw []byte) *chain.Receipt {
	e.t.Helper()
	r, err := e.c.SendTransaction(raw)
	require.NoError(e.t, err)
	from.nonce++
	return r
}

func (e *env) saleTx(from *account, value *big.Int, method string, args ...interface{}) []byte {
	e.t.Helper()
	raw, err := from.sender.Call(contract.CrowdsaleABI(), from.nonce, e.sale, value, method, args...)
	require.NoError(e.t, err)
	return raw
}

func (e *env) tokenTx(from *account, method string, args ...interface{}) []byte {
	e.t.Helper()
	raw, err := from.sender.Call(contract.TokenABI(), from.nonce, e.token, nil, method, args...)
	require.NoError(e.t, err)
	return raw
}

func (e *env) deployTx(from *account, id string, args ...interface{}) []byte {
	e.t.Helper()
	raw, err := from.sender.Deploy(from.nonce, id, args...)
	require.NoError(e.t, err)
	return raw
}

func (e *env) payTx(from *account, to common.Address, value *big.Int) []byte {
	e.t.Helper()
	raw, err := from.sender.Transfer(from.nonce, to, value)
	require.NoError(e.t, err)
	return raw
}

func (e *env) tokenBalance(addr common.Address) *big.Int {
	e.t.Helper()
	out, err := contract.NewCaller(chain.Local(e.c), contract.TokenABI(), e.token).CallOne("balanceOf", addr)
	require.NoError(e.t, err)
	return out.(*big.Int)
}

func newChain(t *testing.T, opts chain.Options) (*chain.Chain, *clock) {
	t.Helper()
	clk := &clock{now: genesis}
	opts.Clock = clk.Now
	return chain.New(opts), clk
}

// newEnv deploys a 1,000,000 token supply and a sale at one unit of currency
// per token opening a minute before genesis, then funds the sale fully.
func newEnv(t *testing.T, opts chain.Options) *env {
	t.Helper()
	c, clk := newChain(t, opts)
	e := &env{t: t, c: c, clock: clk, owner: newAccount(t), user1: newAccount(t), user2: newAccount(t)}
	deployInto(t, e)
	return e
}

func deployInto(t *testing.T, e *env) {
	t.Helper()
	for _, a := range []*account{e.owner, e.user1, e.user2} {
		require.NoError(t, e.c.Faucet(a.addr, units.MustParse("100000")))
	}

	r := e.mustSend(e.owner, e.deployTx(e.owner, contract.TokenID, "Sale Token", "SALE", units.MustParse("1000000")))
	require.NotNil(t, r.ContractAddress)
	e.token = *r.ContractAddress

	r = e.mustSend(e.owner, e.deployTx(e.owner, contract.CrowdsaleID,
		e.token,
		units.MustParse("1"),
		units.MustParse("1000000"),
		big.NewInt(genesis.Add(-time.Minute).Unix()),
		units.MustParse("0.01"),
		units.MustParse("10000"),
	))
	e.sale = *r.ContractAddress

	e.mustSend(e.owner, e.tokenTx(e.owner, "transfer", e.sale, units.MustParse("1000000")))
}

// memStore and memJournal keep persistence in memory.
type memStore struct {
	mu       sync.Mutex
	state    []byte
	height   uint64
	receipts map[uint64][]byte
	fail     bool
}

func newMemStore() *memStore { return &memStore{receipts: map[uint64][]byte{}} }

func (m *memStore) LoadState() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, nil
}

func (m *memStore) Commit(height uint64, state []byte, _ common.Hash, receipt []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errDisk
	}
	m.state, m.height = state, height
	if receipt != nil {
		m.receipts[height] = receipt
	}
	return nil
}

func (m *memStore) Receipts(fn func(uint64, []byte) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for h := uint64(1); h <= m.height; h++ {
		if r, ok := m.receipts[h]; ok {
			if err := fn(h, r); err != nil {
				return err
			}
		}
	}
	return nil
}

type memJournal struct {
	entries [][]byte
	fail    bool
}

func (j *memJournal) Append(_ string, payload []byte) error {
	if j.fail {
		return errDisk
	}
	j.entries = append(j.entries, append([]byte(nil), payload...))
	return nil
}

func (j *memJournal) Replay(fn func(string, []byte) error) error {
	for _, p := range j.entries {
		if err := fn("", p); err != nil {
			return err
		}
	}
	return nil
}

type diskError struct{}

func (diskError) Error() string { return "disk full" }

var errDisk error = diskError{}
