package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var txCmd = &cobra.Command{
	Use:   "tx <hash>",
	Short: "Show a transaction receipt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := hexBytes(args[0])
		if err != nil || len(b) != common.HashLength {
			return fmt.Errorf("invalid transaction hash %q", args[0])
		}
		n, err := openNode()
		if err != nil {
			return err
		}
		defer n.Close() //nolint:errcheck

		r, err := n.TransactionReceipt(common.BytesToHash(b))
		if err != nil {
			return err
		}
		printReceipt(r)
		return nil
	},
}
