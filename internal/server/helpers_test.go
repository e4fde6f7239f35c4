package server_test

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"math/big"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Mohsinsiddi/w3sale/internal/chain"
	"github.com/Mohsinsiddi/w3sale/internal/contract"
	"github.com/Mohsinsiddi/w3sale/internal/server"
	"github.com/Mohsinsiddi/w3sale/internal/units"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

var genesis = time.Unix(1_700_000_000, 0)

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

// fixture is a served chain with a funded, open sale.
type fixture struct {
	t     *testing.T
	c     *chain.Chain
	srv   *server.Server
	reg   *prometheus.Registry
	owner *account
	buyer *account
	token common.Address
	sale  common.Address
}

func newFixture(t *testing.T, opts server.Options) *fixture {
	t.Helper()
	f := &fixture{
		t:     t,
		c:     chain.New(chain.Options{Clock: func() time.Time { return genesis }}),
		reg:   prometheus.NewRegistry(),
		owner: newAccount(t),
		buyer: newAccount(t),
	}
	opts.Registry = f.reg
	srv, err := server.New(chain.Local(f.c), opts)
	require.NoError(t, err)
	f.srv = srv
	f.c.Observe(srv.Metrics())

	require.NoError(t, f.c.Faucet(f.owner.addr, units.MustParse("10")))
	require.NoError(t, f.c.Faucet(f.buyer.addr, units.MustParse("100")))

	raw, err := f.owner.sender.Deploy(f.owner.nonce, contract.TokenID, "Sale Token", "SALE", units.MustParse("1000"))
	require.NoError(t, err)
	f.token = *f.send(f.owner, raw).ContractAddress

	raw, err = f.owner.sender.Deploy(f.owner.nonce, contract.CrowdsaleID, f.token, units.MustParse("0.5"),
		units.MustParse("1000"), big.NewInt(genesis.Add(-time.Hour).Unix()), units.MustParse("1"), units.MustParse("100"))
	require.NoError(t, err)
	f.sale = *f.send(f.owner, raw).ContractAddress

	f.send(f.owner, f.tokenTx(f.owner, "transfer", f.sale, units.MustParse("1000")))
	f.send(f.owner, f.saleTx(f.owner, nil, "openSale"))
	f.send(f.owner, f.saleTx(f.owner, nil, "addToWhitelist", f.buyer.addr))
	return f
}

func (f *fixture) send(from *account, raw []byte) *chain.Receipt {
	f.t.Helper()
	r, err := f.c.SendTransaction(raw)
	require.NoError(f.t, err)
	from.nonce++
	return r
}

func (f *fixture) saleTx(from *account, value *big.Int, method string, args ...interface{}) []byte {
	f.t.Helper()
	raw, err := from.sender.Call(contract.CrowdsaleABI(), from.nonce, f.sale, value, method, args...)
	require.NoError(f.t, err)
	return raw
}

func (f *fixture) tokenTx(from *account, method string, args ...interface{}) []byte {
	f.t.Helper()
	raw, err := from.sender.Call(contract.TokenABI(), from.nonce, f.token, nil, method, args...)
	require.NoError(f.t, err)
	return raw
}

func (f *fixture) payTx(from *account, value *big.Int) []byte {
	f.t.Helper()
	raw, err := from.sender.Transfer(from.nonce, f.sale, value)
	require.NoError(f.t, err)
	return raw
}

func (f *fixture) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	f.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(f.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}
