package wallet_test

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/Mohsinsiddi/w3sale/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known local development account #0; never fund on a public network.
const (
	testPrivKeyHex = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testSignerAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestAddWatchOnlyWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())

	_, err := mgr.AddWatchOnly("mywallet", "0x1234567890abcdef1234567890abcdef12345678")
	require.NoError(t, err)

	w, err := mgr.Get("mywallet")
	require.NoError(t, err)
	assert.Equal(t, "mywallet", w.Name)
	assert.Equal(t, wallet.TypeWatchOnly, w.Type)
	assert.Equal(t, common.HexToAddress("0x1234567890abcdef1234567890abcdef12345678").Hex(), w.Address)
}

func TestAddWatchOnlyInvalidAddress(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	_, err := mgr.AddWatchOnly("bad", "0x123")
	assert.ErrorIs(t, err, wallet.ErrInvalidAddress)
}

func TestAddDuplicateWalletErrors(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())

	_, err := mgr.AddWatchOnly("dup", testSignerAddr)
	require.NoError(t, err)

	_, err = mgr.AddWithKey("dup", testPrivKeyHex)
	assert.ErrorIs(t, err, wallet.ErrWalletExists)
	_, err = mgr.Generate("dup")
	assert.ErrorIs(t, err, wallet.ErrWalletExists)
}

func TestAddSigningWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())

	w, err := mgr.AddWithKey("signer", testPrivKeyHex)
	require.NoError(t, err)
	assert.Equal(t, wallet.TypeSigning, w.Type)
	assert.Equal(t, testSignerAddr, w.Address)
	assert.Equal(t, "w3sale.signer", w.KeyRef)

	key, err := mgr.PrivateKey("signer")
	require.NoError(t, err)
	assert.Equal(t, testSignerAddr, w.Addr().Hex())
	assert.NotNil(t, key)

	exported, err := mgr.ExportKey("signer")
	require.NoError(t, err)
	assert.Equal(t, testPrivKeyHex, exported)
}

func TestInvalidPrivateKey(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	_, err := mgr.AddWithKey("bad", "not-a-valid-key")
	assert.ErrorIs(t, err, wallet.ErrInvalidKey)
}

func TestGenerateWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())

	a, err := mgr.Generate("a")
	require.NoError(t, err)
	b, err := mgr.Generate("b")
	require.NoError(t, err)

	assert.Equal(t, wallet.TypeSigning, a.Type)
	assert.True(t, common.IsHexAddress(a.Address))
	assert.NotEqual(t, a.Address, b.Address)
}

func TestListWalletsSorted(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	for _, name := range []string{"carol", "alice", "bob"} {
		_, err := mgr.Generate(name)
		require.NoError(t, err)
	}

	var names []string
	for _, w := range mgr.List() {
		names = append(names, w.Name)
	}
	assert.Equal(t, []string{"alice", "bob", "carol"}, names)
}

func TestRemoveWalletDeletesKey(t *testing.T) {
	ks := wallet.NewInMemoryKeystore()
	mgr := wallet.NewManager(wallet.WithInMemoryStore(), wallet.WithKeystore(ks))

	w, err := mgr.AddWithKey("w1", testPrivKeyHex)
	require.NoError(t, err)

	require.NoError(t, mgr.Remove("w1"))

	_, err = mgr.Get("w1")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
	_, err = ks.Retrieve(w.KeyRef)
	assert.Error(t, err)
}

func TestRemoveNonExistentWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	assert.ErrorIs(t, mgr.Remove("ghost"), wallet.ErrWalletNotFound)
}

func TestDefaultWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	assert.Nil(t, mgr.Default())

	_, err := mgr.Generate("only")
	require.NoError(t, err)
	require.NotNil(t, mgr.Default())
	assert.Equal(t, "only", mgr.Default().Name)

	_, err = mgr.Generate("second")
	require.NoError(t, err)
	assert.Nil(t, mgr.Default())

	require.NoError(t, mgr.SetDefault("second"))
	assert.Equal(t, "second", mgr.Default().Name)

	assert.ErrorIs(t, mgr.SetDefault("ghost"), wallet.ErrWalletNotFound)
}

func TestResolve(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	_, err := mgr.AddWithKey("deployer", testPrivKeyHex)
	require.NoError(t, err)

	w, err := mgr.Resolve("deployer")
	require.NoError(t, err)
	assert.Equal(t, "deployer", w.Name)

	w, err = mgr.Resolve("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
	require.NoError(t, err)
	assert.Equal(t, "deployer", w.Name)

	w, err = mgr.Resolve("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	require.NoError(t, err)
	assert.Equal(t, wallet.TypeWatchOnly, w.Type)

	_, err = mgr.Resolve("nobody")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
}

func TestJSONStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wallets.json")
	ks := wallet.NewInMemoryKeystore()

	mgr := wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(path)), wallet.WithKeystore(ks))
	_, err := mgr.AddWithKey("deployer", testPrivKeyHex)
	require.NoError(t, err)
	require.NoError(t, mgr.SetDefault("deployer"))

	again := wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(path)), wallet.WithKeystore(ks))
	w, err := again.Get("deployer")
	require.NoError(t, err)
	assert.Equal(t, testSignerAddr, w.Address)
	assert.True(t, w.IsDefault)

	_, err = again.PrivateKey("deployer")
	require.NoError(t, err)
}

func TestJSONStoreLoadNoFile(t *testing.T) {
	wallets, err := wallet.NewJSONStore(filepath.Join(t.TempDir(), "missing.json")).Load()
	require.NoError(t, err)
	assert.Nil(t, wallets)
}

func TestSignerSignsForWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	_, err := mgr.AddWithKey("deployer", testPrivKeyHex)
	require.NoError(t, err)

	s, err := mgr.Signer("deployer")
	require.NoError(t, err)
	assert.Equal(t, testSignerAddr, s.Address().Hex())

	chainID := big.NewInt(31337)
	to := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	raw, err := s.SignTx(types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     7,
		GasTipCap: new(big.Int),
		GasFeeCap: new(big.Int),
		Gas:       21000,
		To:        &to,
		Value:     big.NewInt(1),
	}), chainID)
	require.NoError(t, err)

	tx := new(types.Transaction)
	require.NoError(t, tx.UnmarshalBinary(raw))
	from, err := types.Sender(types.LatestSignerForChainID(chainID), tx)
	require.NoError(t, err)
	assert.Equal(t, testSignerAddr, from.Hex())
	assert.Equal(t, uint64(7), tx.Nonce())
}

func TestSignerWatchOnly(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	_, err := mgr.AddWatchOnly("watcher", testSignerAddr)
	require.NoError(t, err)

	_, err = mgr.Signer("watcher")
	assert.ErrorIs(t, err, wallet.ErrWatchOnly)

	w, _ := mgr.Get("watcher")
	s := wallet.NewSigner(w, wallet.NewInMemoryKeystore())
	_, err = s.SignTx(types.NewTx(&types.DynamicFeeTx{ChainID: big.NewInt(1)}), big.NewInt(1))
	assert.ErrorIs(t, err, wallet.ErrWatchOnly)
}
