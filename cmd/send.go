package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3sale/internal/contract"
	"github.com/Mohsinsiddi/w3sale/internal/ui"
	"github.com/Mohsinsiddi/w3sale/internal/units"
	"github.com/spf13/cobra"
)

var (
	sendTo     string
	sendValue  string
	sendWallet string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send native currency to an account or a sale",
	Long: `Send native currency. Sending to a sale is a direct payment: the sale
works out the token amount from the value at the current price (rounded
down) and applies the same checks as 'w3sale buy'.

Examples:
  w3sale send --to bob --value 1.5
  w3sale send --to demo --value 0.1      # pay the "demo" sale directly`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if sendTo == "" {
			return fmt.Errorf("--to is required")
		}
		if sendValue == "" {
			return fmt.Errorf("--value is required")
		}
		value, err := parseAmount(sendValue)
		if err != nil {
			return err
		}
		to, err := resolveAddress(sendTo)
		if err != nil {
			if sale, serr := resolveSale(sendTo); serr == nil {
				to, err = sale, nil
			}
		}
		if err != nil {
			return err
		}
		signer, err := loadSigner(sendWallet)
		if err != nil {
			return err
		}
		n, err := openNode()
		if err != nil {
			return err
		}
		defer n.Close() //nolint:errcheck

		fmt.Println(ui.KeyValueBlock("Transaction Preview", [][2]string{
			{"From", ui.Addr(signer.Address().Hex())},
			{"To", ui.Addr(to.Hex())},
			{"Value", units.Format(value)},
		}))
		if !confirm("Send this transaction?") {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		r, err := submit(n, signer, "Sending...", func(s *contract.Sender, nonce uint64) ([]byte, error) {
			return s.Transfer(nonce, to, value)
		})
		if err != nil {
			return err
		}
		fmt.Println(ui.Success("Transaction committed."))
		printReceipt(r)
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendTo, "to", "", "recipient: address, wallet name or sale deployment (required)")
	sendCmd.Flags().StringVar(&sendValue, "value", "", "amount of currency (required)")
	sendCmd.Flags().StringVar(&sendWallet, "wallet", "", "sender wallet (default: config)")
}
