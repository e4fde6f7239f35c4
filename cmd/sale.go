package cmd

import (
	"fmt"
	"time"

	"github.com/Mohsinsiddi/w3sale/internal/contract"
	"github.com/Mohsinsiddi/w3sale/internal/ui"
	"github.com/Mohsinsiddi/w3sale/internal/units"
	"github.com/spf13/cobra"
)

var saleWallet string

var saleCmd = &cobra.Command{
	Use:   "sale",
	Short: "Open, close and inspect a sale",
}

var saleOpenCmd = &cobra.Command{
	Use:   "open [sale]",
	Short: "Open the sale for purchases (owner only)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return saleAdmin(args, "openSale", "Sale opened.")
	},
}

var saleCloseCmd = &cobra.Command{
	Use:   "close [sale]",
	Short: "Stop purchases until reopened (owner only)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return saleAdmin(args, "closeSale", "Sale closed.")
	},
}

var saleStatusCmd = &cobra.Command{
	Use:   "status [sale]",
	Short: "Show a sale's parameters and progress",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sale, err := resolveSale(firstArg(args))
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
		tok, err := contract.ReadToken(n, st.Token)
		if err != nil {
			return err
		}
		raised, err := n.BalanceAt(sale)
		if err != nil {
			return err
		}
		now, err := n.BlockTime()
		if err != nil {
			return err
		}
		if wall := time.Now(); wall.After(now) {
			now = wall
		}

		opening := "immediately"
		if st.OpeningTime > 0 {
			opening = time.Unix(int64(st.OpeningTime), 0).UTC().Format(time.RFC3339)
		}
		fmt.Println(ui.KeyValueBlock("Sale "+tok.Symbol, [][2]string{
			{"Address", ui.Addr(sale.Hex())},
			{"Status", ui.StatusLabel(string(st.Status(now)))},
			{"Owner", ui.Addr(st.Owner.Hex())},
			{"Token", ui.Addr(st.Token.Hex()) + " " + ui.Meta(tok.Name)},
			{"Price", units.Format(st.Price) + " per " + tok.Symbol},
			{"Sold", units.Format(st.TokensSold) + " / " + units.Format(st.MaxTokens) + " " + tok.Symbol},
			{"Remaining", units.Format(st.Remaining())},
			{"Raised", units.Format(raised)},
			{"Opens", opening},
			{"Per purchase", units.Format(st.MinContribution) + " to " + units.Format(st.MaxContribution) + " " + tok.Symbol},
			{"Whitelist", fmt.Sprintf("%s (%d)", onOff(st.WhitelistEnabled), len(st.Whitelist))},
		}))
		fmt.Println("  " + ui.ProgressBar(st.TokensSold, st.MaxTokens, 40))
		return nil
	},
}

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Manage the token price",
}

var priceSetCmd = &cobra.Command{
	Use:   "set <price> [sale]",
	Short: "Change the price per whole token (owner only)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		price, err := parseAmount(args[0])
		if err != nil {
			return err
		}
		return saleAdmin(args[1:], "setPrice", "Price set to "+units.Format(price)+".", price)
	},
}

var finalizeCmd = &cobra.Command{
	Use:   "finalize [sale]",
	Short: "End the sale for good and collect the proceeds (owner only)",
	Long: `Finalize transfers every unsold token and all currency held by the sale
to the owner. It cannot be undone: a finalized sale rejects purchases
and every admin call except reads.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sale, err := resolveSale(firstArg(args))
		if err != nil {
			return err
		}
		fmt.Println(ui.DangerBox("Finalize sale "+sale.Hex(),
			"Unsold tokens and all raised currency go to the owner.",
			"The sale can never be reopened."))
		if !assumeYes && !ui.ConfirmDanger("Finalize this sale?") {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		return saleAdmin(args, "finalize", "Sale finalized.")
	},
}

// saleAdmin sends one owner-only call to the sale named by args[0].
func saleAdmin(args []string, method, done string, params ...interface{}) error {
	sale, err := resolveSale(firstArg(args))
	if err != nil {
		return err
	}
	signer, err := loadSigner(saleWallet)
	if err != nil {
		return err
	}
	n, err := openNode()
	if err != nil {
		return err
	}
	defer n.Close() //nolint:errcheck

	r, err := submit(n, signer, "Sending "+method+"...", callSale(sale, nil, method, params...))
	if err != nil {
		return err
	}
	fmt.Println(ui.Success(done))
	if len(r.Logs) > 0 {
		printReceipt(r)
	}
	return nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func init() {
	for _, c := range []*cobra.Command{saleCmd, priceCmd, finalizeCmd} {
		c.PersistentFlags().StringVar(&saleWallet, "wallet", "", "owner wallet (default: config)")
	}
	saleCmd.AddCommand(saleOpenCmd, saleCloseCmd, saleStatusCmd)
	priceCmd.AddCommand(priceSetCmd)
}
