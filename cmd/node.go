package cmd

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/Mohsinsiddi/w3sale/internal/chain"
	"github.com/Mohsinsiddi/w3sale/internal/config"
	"github.com/Mohsinsiddi/w3sale/internal/contract"
	"github.com/Mohsinsiddi/w3sale/internal/store"
	"github.com/Mohsinsiddi/w3sale/internal/ui"
	"github.com/Mohsinsiddi/w3sale/internal/units"
	"github.com/Mohsinsiddi/w3sale/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// node is the chain a command talks to: a running node when one is
// configured, otherwise the data directory opened in process.
type node struct {
	chain.Backend
	chainID *big.Int
	closers []func() error
}

func (n *node) Close() error {
	var first error
	for i := len(n.closers) - 1; i >= 0; i-- {
		if err := n.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// targetNode is the node URL from --node, the environment or config.
func targetNode() string {
	if nodeURL != "" {
		return nodeURL
	}
	return cfg.NodeURL()
}

// openNode connects to the target node or opens the local chain.
func openNode() (*node, error) {
	if url := targetNode(); url != "" {
		client := chain.NewClient(url)
		id, err := client.ChainID()
		if err != nil {
			return nil, fmt.Errorf("connecting to node %s: %w", url, err)
		}
		logger.Debug("using node", zap.String("url", url), zap.String("chain_id", id.String()))
		return &node{Backend: client, chainID: id}, nil
	}
	c, closers, err := openLocalChain()
	if err != nil {
		return nil, err
	}
	return &node{Backend: chain.Local(c), chainID: c.ChainID(), closers: closers}, nil
}

// openLocalChain opens the state database and journal under the data
// directory and resumes the chain from them.
func openLocalChain() (*chain.Chain, []func() error, error) {
	db, err := store.OpenBolt(cfg.DataPath())
	if errors.Is(err, store.ErrLocked) {
		return nil, nil, fmt.Errorf("%w\n  If 'w3sale serve' is running, use --node http://%s/rpc", err, cfg.Listen)
	}
	if err != nil {
		return nil, nil, err
	}
	journal, err := store.OpenWAL(cfg.JournalPath())
	if err != nil {
		db.Close() //nolint:errcheck
		return nil, nil, err
	}
	c, err := chain.Open(chain.Options{
		ChainID: big.NewInt(cfg.ChainID),
		Logger:  logger,
		Store:   db,
		Journal: journal,
	})
	if err != nil {
		journal.Close() //nolint:errcheck
		db.Close()      //nolint:errcheck
		return nil, nil, err
	}
	return c, []func() error{db.Close, journal.Close}, nil
}

// newKeystore returns the key backend selected in config.
func newKeystore() (wallet.KeystoreBackend, error) {
	if cfg.Keystore != config.KeystoreFile {
		return wallet.DefaultKeystore(), nil
	}
	pass := os.Getenv(config.EnvPassphrase)
	if pass == "" {
		return nil, fmt.Errorf("file keystore needs a passphrase: set %s", config.EnvPassphrase)
	}
	return wallet.FileKeystore(cfg.KeysDir(), pass)
}

// newWalletManager creates a Manager backed by the config-dir JSON store.
func newWalletManager() (*wallet.Manager, error) {
	ks, err := newKeystore()
	if err != nil {
		return nil, err
	}
	return wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())), wallet.WithKeystore(ks)), nil
}

// loadSigner returns the signer for walletName, or for the default wallet
// when walletName is empty.
func loadSigner(walletName string) (*wallet.Signer, error) {
	mgr, err := newWalletManager()
	if err != nil {
		return nil, err
	}
	if walletName == "" {
		walletName = cfg.DefaultWallet
	}
	if walletName == "" {
		w := mgr.Default()
		if w == nil {
			return nil, fmt.Errorf("no wallet selected: pass --wallet or set a default with `w3sale wallet use <name>`")
		}
		walletName = w.Name
	}
	s, err := mgr.Signer(walletName)
	if errors.Is(err, wallet.ErrWatchOnly) {
		return nil, fmt.Errorf("%w\n  To add a signing wallet: w3sale wallet add <name> --key <private-key>", err)
	}
	return s, err
}

// resolveAddress accepts a hex address or a wallet name.
func resolveAddress(nameOrAddr string) (common.Address, error) {
	if common.IsHexAddress(nameOrAddr) {
		return common.HexToAddress(nameOrAddr), nil
	}
	mgr, err := newWalletManager()
	if err != nil {
		return common.Address{}, err
	}
	w, err := mgr.Resolve(nameOrAddr)
	if err != nil {
		return common.Address{}, err
	}
	return w.Addr(), nil
}

func loadRegistry() (*contract.Registry, error) {
	reg := contract.NewRegistry(cfg.ContractsPath())
	if err := reg.Load(); err != nil {
		return nil, fmt.Errorf("loading %s: %w", cfg.ContractsPath(), err)
	}
	return reg, nil
}

// resolveSale accepts a sale address or a deployment name. An empty arg
// picks the only deployment, if there is exactly one.
func resolveSale(arg string) (common.Address, error) {
	if common.IsHexAddress(arg) {
		return common.HexToAddress(arg), nil
	}
	reg, err := loadRegistry()
	if err != nil {
		return common.Address{}, err
	}
	if arg == "" {
		all := reg.All()
		if len(all) != 1 {
			return common.Address{}, fmt.Errorf("%d deployments known: name the sale with --sale", len(all))
		}
		return all[0].Sale, nil
	}
	d, err := reg.Get(arg)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w\n  List deployments with: w3sale deploy list", err)
	}
	return d.Sale, nil
}

func parseAmount(s string) (*big.Int, error) {
	v, err := units.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}

// txBuilder builds a signed transaction at nonce.
type txBuilder func(s *contract.Sender, nonce uint64) ([]byte, error)

// submit signs the transaction at the signer's next nonce and sends it.
func submit(n *node, signer *wallet.Signer, msg string, build txBuilder) (*chain.Receipt, error) {
	nonce, err := n.NonceAt(signer.Address())
	if err != nil {
		return nil, err
	}
	raw, err := build(contract.NewSender(signer, n.chainID), nonce)
	if err != nil {
		return nil, err
	}

	spin := ui.NewSpinner(msg)
	spin.Start()
	r, err := n.SendRawTransaction(raw)
	spin.Stop()
	if err != nil {
		return nil, err
	}
	logger.Debug("transaction committed", zap.String("tx", r.TxHash.Hex()), zap.Uint64("block", r.BlockNumber))
	return r, nil
}

// callSale returns a builder for a crowdsale method call.
func callSale(sale common.Address, value *big.Int, method string, args ...interface{}) txBuilder {
	return func(s *contract.Sender, nonce uint64) ([]byte, error) {
		return s.Call(contract.CrowdsaleABI(), nonce, sale, value, method, args...)
	}
}

// confirm asks unless --yes was given.
func confirm(prompt string) bool {
	return assumeYes || ui.Confirm(prompt)
}

// errorLine renders err for the terminal with its rejection code, if any.
func errorLine(err error) string {
	if code := chain.Code(err); code != "" {
		return ui.Err(fmt.Sprintf("%s [%s]", err, code))
	}
	return ui.Err(err.Error())
}

func printReceipt(r *chain.Receipt) {
	pairs := [][2]string{
		{"Hash", ui.Addr(r.TxHash.Hex())},
		{"Block", fmt.Sprintf("%d", r.BlockNumber)},
		{"Time", time.Unix(int64(r.BlockTime), 0).Format(time.RFC3339)},
		{"Method", ui.Val(r.Method)},
		{"From", ui.Addr(r.From.Hex())},
	}
	if r.To != nil {
		pairs = append(pairs, [2]string{"To", ui.Addr(r.To.Hex())})
	}
	if r.ContractAddress != nil {
		pairs = append(pairs, [2]string{"Contract", ui.Addr(r.ContractAddress.Hex())})
	}
	if r.Value != nil && r.Value.Sign() > 0 {
		pairs = append(pairs, [2]string{"Value", units.Format(r.Value)})
	}
	for i, l := range r.Logs {
		ev := "?"
		if d, err := contract.DecodeLog(l.Eth()); err == nil {
			ev = d.String()
		}
		pairs = append(pairs, [2]string{fmt.Sprintf("Event %d", i), ev})
	}
	fmt.Println(ui.KeyValueBlock("Transaction", pairs))
}

// shortList joins addresses for one-line display.
func shortList(addrs []common.Address) string {
	s := make([]string, len(addrs))
	for i, a := range addrs {
		s[i] = ui.TruncateAddr(a.Hex())
	}
	return strings.Join(s, ", ")
}
