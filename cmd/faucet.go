package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3sale/internal/ui"
	"github.com/Mohsinsiddi/w3sale/internal/units"
	"github.com/spf13/cobra"
)

var faucetCmd = &cobra.Command{
	Use:   "faucet <wallet|address> <amount>",
	Short: "Credit native currency on the local chain",
	Long: `Mint native currency to an account. Development only: the credit is
journaled like any transaction and survives restarts.

Examples:
  w3sale faucet alice 100
  w3sale faucet 0xAbC... 0.5`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, err := resolveAddress(args[0])
		if err != nil {
			return err
		}
		amount, err := parseAmount(args[1])
		if err != nil {
			return err
		}
		if amount.Sign() <= 0 {
			return fmt.Errorf("amount must be positive")
		}

		n, err := openNode()
		if err != nil {
			return err
		}
		defer n.Close() //nolint:errcheck

		if err := n.Faucet(to, amount); err != nil {
			return err
		}
		bal, err := n.BalanceAt(to)
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Credited %s to %s", units.Format(amount), ui.Addr(to.Hex()))))
		fmt.Println(ui.Meta("Balance: " + units.Format(bal)))
		return nil
	},
}
