package cmd

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3sale/internal/contract"
	"github.com/Mohsinsiddi/w3sale/internal/ui"
	"github.com/Mohsinsiddi/w3sale/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

var (
	whitelistSale   string
	whitelistWallet string
	approveSig      string
)

var whitelistCmd = &cobra.Command{
	Use:   "whitelist",
	Short: "Manage a sale's whitelist (owner only)",
}

var whitelistAddCmd = &cobra.Command{
	Use:   "add <wallet|address>...",
	Short: "Allow accounts to buy",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return whitelistUpdate("addToWhitelist", args)
	},
}

var whitelistRemoveCmd = &cobra.Command{
	Use:   "remove <wallet|address>...",
	Short: "Stop accounts from buying",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return whitelistUpdate("removeFromWhitelist", args)
	},
}

var whitelistApproveCmd = &cobra.Command{
	Use:   "approve <address> --sig <signature>",
	Short: "Whitelist a buyer from a signed request",
	Long: `Check a whitelist request signed with 'w3sale wallet sign --sale' and,
if it was signed by the buyer for this sale, add the buyer.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if approveSig == "" {
			return fmt.Errorf("--sig is required")
		}
		sig, err := hexutil.Decode(approveSig)
		if err != nil {
			return fmt.Errorf("invalid signature hex: %w", err)
		}
		sale, err := resolveSale(whitelistSale)
		if err != nil {
			return err
		}
		buyer, err := resolveAddress(args[0])
		if err != nil {
			return err
		}
		if err := wallet.VerifyWhitelistRequest(sale, buyer, sig); err != nil {
			return err
		}
		fmt.Println(ui.Success("Request signed by " + ui.TruncateAddr(buyer.Hex()) + "."))
		return whitelistUpdate("addToWhitelist", []string{buyer.Hex()})
	},
}

var whitelistToggleCmd = &cobra.Command{
	Use:   "toggle <on|off>",
	Short: "Enable or disable the whitelist check",
	Long: `With the whitelist off, anyone may buy. Entries are kept either way.

Examples:
  w3sale whitelist toggle off --sale demo`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var enabled bool
		switch strings.ToLower(args[0]) {
		case "on", "true", "enable":
			enabled = true
		case "off", "false", "disable":
		default:
			return fmt.Errorf("expected on or off, got %q", args[0])
		}
		sale, err := resolveSale(whitelistSale)
		if err != nil {
			return err
		}
		signer, err := loadSigner(whitelistWallet)
		if err != nil {
			return err
		}
		n, err := openNode()
		if err != nil {
			return err
		}
		defer n.Close() //nolint:errcheck

		if _, err := submit(n, signer, "Updating whitelist...", callSale(sale, nil, "toggleWhitelist", enabled)); err != nil {
			return err
		}
		fmt.Println(ui.Success("Whitelist " + onOff(enabled) + "."))
		return nil
	},
}

var whitelistListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show whitelisted accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		sale, err := resolveSale(whitelistSale)
		if err != nil {
			return err
		}
		n, err := openNode()
		if err != nil {
			return err
		}
		defer n.Close() //nolint:errcheck

		st, err := contract.ReadSale(n, sale)
		if err != nil {
			return err
		}
		fmt.Println(ui.Meta(fmt.Sprintf("Whitelist %s for sale %s", onOff(st.WhitelistEnabled), sale.Hex())))
		if len(st.Whitelist) == 0 {
			fmt.Println(ui.Info("No whitelisted accounts."))
			return nil
		}
		names := walletNames()
		t := ui.NewTable([]ui.Column{
			{Title: "#", Width: 4},
			{Title: "Address", Width: 44},
			{Title: "Wallet", Width: 16},
		})
		for i, a := range st.Whitelist {
			t.AddRow(ui.Row{fmt.Sprintf("%d", i+1), ui.Addr(a.Hex()), ui.Meta(names[a])})
		}
		fmt.Println(t.Render())
		return nil
	},
}

func whitelistUpdate(method string, accounts []string) error {
	sale, err := resolveSale(whitelistSale)
	if err != nil {
		return err
	}
	addrs := make([]common.Address, len(accounts))
	for i, a := range accounts {
		if addrs[i], err = resolveAddress(a); err != nil {
			return err
		}
	}
	signer, err := loadSigner(whitelistWallet)
	if err != nil {
		return err
	}
	n, err := openNode()
	if err != nil {
		return err
	}
	defer n.Close() //nolint:errcheck

	for _, a := range addrs {
		if _, err := submit(n, signer, "Updating "+ui.TruncateAddr(a.Hex())+"...", callSale(sale, nil, method, a)); err != nil {
			return err
		}
	}
	verb := "added to"
	if method == "removeFromWhitelist" {
		verb = "removed from"
	}
	fmt.Println(ui.Success(fmt.Sprintf("%s %s the whitelist.", shortList(addrs), verb)))
	return nil
}

// walletNames maps known addresses to wallet names. Failures give an empty map.
func walletNames() map[common.Address]string {
	out := map[common.Address]string{}
	mgr, err := newWalletManager()
	if err != nil {
		return out
	}
	for _, w := range mgr.List() {
		out[w.Addr()] = w.Name
	}
	return out
}

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func init() {
	whitelistCmd.PersistentFlags().StringVar(&whitelistSale, "sale", "", "sale deployment name or address")
	whitelistCmd.PersistentFlags().StringVar(&whitelistWallet, "wallet", "", "owner wallet (default: config)")
	whitelistApproveCmd.Flags().StringVar(&approveSig, "sig", "", "signature from the buyer (required)")
	whitelistCmd.AddCommand(whitelistAddCmd, whitelistRemoveCmd, whitelistApproveCmd, whitelistToggleCmd, whitelistListCmd)
}
