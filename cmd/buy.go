package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3sale/internal/contract"
	"github.com/Mohsinsiddi/w3sale/internal/ui"
	"github.com/Mohsinsiddi/w3sale/internal/units"
	"github.com/spf13/cobra"
)

var (
	buySale   string
	buyWallet string
	buyPay    string
)

var buyCmd = &cobra.Command{
	Use:   "buy <amount>",
	Short: "Buy tokens from a sale",
	Long: `Buy <amount> whole tokens (decimals allowed) from a sale. The payment
defaults to the exact cost at the current price, rounded up to the
smallest unit. Overpayment is kept by the sale.

Examples:
  w3sale buy 100 --sale demo
  w3sale buy 2.5 --sale 0xSale... --pay 0.01 --wallet bob`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseAmount(args[0])
		if err != nil {
			return err
		}
		sale, err := resolveSale(buySale)
		if err != nil {
			return err
		}
		signer, err := loadSigner(buyWallet)
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
		pay := st.Cost(amount)
		if buyPay != "" {
			if pay, err = parseAmount(buyPay); err != nil {
				return err
			}
		}
		tok, err := contract.ReadToken(n, st.Token)
		if err != nil {
			return err
		}

		fmt.Println(ui.KeyValueBlock("Purchase Preview", [][2]string{
			{"Sale", ui.Addr(sale.Hex())},
			{"Buyer", ui.Addr(signer.Address().Hex())},
			{"Amount", units.Format(amount) + " " + tok.Symbol},
			{"Price", units.Format(st.Price) + " per " + tok.Symbol},
			{"Cost", units.Format(st.Cost(amount))},
			{"Paying", units.Format(pay)},
		}))
		if !confirm("Send this purchase?") {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		r, err := submit(n, signer, "Buying...", callSale(sale, pay, "buyTokens", amount))
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Bought %s %s", units.Format(amount), tok.Symbol)))
		printReceipt(r)
		return nil
	},
}

func init() {
	buyCmd.Flags().StringVar(&buySale, "sale", "", "sale deployment name or address")
	buyCmd.Flags().StringVar(&buyWallet, "wallet", "", "buyer wallet (default: config)")
	buyCmd.Flags().StringVar(&buyPay, "pay", "", "payment in currency (default: exact cost)")
}
