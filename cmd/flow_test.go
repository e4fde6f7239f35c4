package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Mohsinsiddi/w3sale/internal/chain"
	"github.com/Mohsinsiddi/w3sale/internal/config"
	"github.com/Mohsinsiddi/w3sale/internal/contract"
	"github.com/Mohsinsiddi/w3sale/internal/crowdsale"
	"github.com/Mohsinsiddi/w3sale/internal/units"
	"github.com/Mohsinsiddi/w3sale/internal/wallet"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const flowManifest = `name: demo
token:
  name: Demo Token
  symbol: DEMO
  supply: "1000"
sale:
  price: "0.5"
  max_tokens: "1000"
  min_contribution: "1"
  max_contribution: "100"
  open: true
`

// runCLI executes the root command in process. Flag variables outlive a
// run, so callers pass every flag a command depends on.
func runCLI(t *testing.T, dir string, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(append([]string{"--config", dir, "--yes"}, args...))
	return rootCmd.Execute()
}

func signWhitelistRequest(t *testing.T, walletName, saleName string) string {
	t.Helper()
	mgr, err := newWalletManager()
	require.NoError(t, err)
	signer, err := mgr.Signer(walletName)
	require.NoError(t, err)
	sale, err := resolveSale(saleName)
	require.NoError(t, err)
	sig, err := signer.SignMessage(wallet.WhitelistRequest(sale, signer.Address()))
	require.NoError(t, err)
	return hexutil.Encode(sig)
}

func TestSaleLifecycle(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.EnvPassphrase, "test-passphrase")
	t.Setenv(config.EnvNode, "")

	require.NoError(t, runCLI(t, dir, "init", "--keystore", "file", "--chain-id", "31337", "--wallet", "owner"))
	require.NoError(t, runCLI(t, dir, "wallet", "generate", "buyer"))
	require.NoError(t, runCLI(t, dir, "wallet", "generate", "carol"))
	for _, w := range []string{"owner", "buyer", "carol"} {
		require.NoError(t, runCLI(t, dir, "faucet", w, "100"))
	}

	manifest := filepath.Join(dir, "sale.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte(flowManifest), 0o600))
	require.NoError(t, runCLI(t, dir, "deploy", "--manifest", manifest, "--wallet", "owner", "--name", ""))
	require.NoError(t, runCLI(t, dir, "whitelist", "add", "buyer", "--sale", "demo", "--wallet", "owner"))

	require.NoError(t, runCLI(t, dir, "buy", "10", "--sale", "demo", "--wallet", "buyer", "--pay", ""))
	require.NoError(t, runCLI(t, dir, "send", "--to", "demo", "--value", "1", "--wallet", "buyer"))

	err := runCLI(t, dir, "buy", "1", "--sale", "demo", "--wallet", "carol", "--pay", "")
	assert.ErrorIs(t, err, crowdsale.ErrNotWhitelisted)

	require.NoError(t, runCLI(t, dir, "wallet", "sign", "--sale", "demo", "--wallet", "carol"))
	sig := signWhitelistRequest(t, "carol", "demo")
	err = runCLI(t, dir, "whitelist", "approve", "buyer", "--sig", sig, "--sale", "demo", "--wallet", "owner")
	assert.ErrorIs(t, err, wallet.ErrBadSignature)
	require.NoError(t, runCLI(t, dir, "whitelist", "approve", "carol", "--sig", sig, "--sale", "demo", "--wallet", "owner"))
	require.NoError(t, runCLI(t, dir, "buy", "2", "--sale", "demo", "--wallet", "carol", "--pay", ""))

	err = runCLI(t, dir, "price", "set", "2", "demo", "--wallet", "buyer")
	assert.ErrorIs(t, err, crowdsale.ErrNotOwner)

	require.NoError(t, runCLI(t, dir, "sale", "close", "demo", "--wallet", "owner"))
	err = runCLI(t, dir, "buy", "1", "--sale", "demo", "--wallet", "buyer", "--pay", "")
	assert.ErrorIs(t, err, crowdsale.ErrSaleClosed)

	require.NoError(t, runCLI(t, dir, "finalize", "demo", "--wallet", "owner"))

	owner, err := resolveAddress("owner")
	require.NoError(t, err)
	buyer, err := resolveAddress("buyer")
	require.NoError(t, err)

	reg, err := loadRegistry()
	require.NoError(t, err)
	d, err := reg.Get("demo")
	require.NoError(t, err)
	assert.Equal(t, owner, d.Deployer)

	c, closers, err := openLocalChain()
	require.NoError(t, err)
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]() //nolint:errcheck
		}
	}()
	b := chain.Local(c)

	st, err := contract.ReadSale(b, d.Sale)
	require.NoError(t, err)
	assert.True(t, st.Finalized)
	assert.False(t, st.IsOpen)
	assert.Equal(t, units.MustParse("14").String(), st.TokensSold.String())

	bought, err := contract.TokenBalance(b, d.Token, buyer)
	require.NoError(t, err)
	assert.Equal(t, units.MustParse("12").String(), bought.String())

	swept, err := contract.TokenBalance(b, d.Token, owner)
	require.NoError(t, err)
	assert.Equal(t, units.MustParse("986").String(), swept.String())

	ownerBal, err := b.BalanceAt(owner)
	require.NoError(t, err)
	assert.Equal(t, units.MustParse("107").String(), ownerBal.String())

	buyerBal, err := b.BalanceAt(buyer)
	require.NoError(t, err)
	assert.Equal(t, units.MustParse("94").String(), buyerBal.String())
}
