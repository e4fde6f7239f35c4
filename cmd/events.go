package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3sale/internal/chain"
	"github.com/Mohsinsiddi/w3sale/internal/contract"
	"github.com/Mohsinsiddi/w3sale/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	eventsName     string
	eventsContract string
	eventsFrom     uint64
	eventsCount    int
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show decoded contract events",
	Long: `List Transfer, Buy and Finalize events recorded on the chain, oldest
first. --count keeps the most recent matches.

Examples:
  w3sale events --name Buy --contract demo
  w3sale events --from 10 --count 50`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q := chain.LogQuery{Event: eventsName, FromBlock: eventsFrom, Limit: eventsCount}
		if eventsContract != "" {
			addr, err := eventsAddress(eventsContract)
			if err != nil {
				return err
			}
			q.Address = &addr
		}

		n, err := openNode()
		if err != nil {
			return err
		}
		defer n.Close() //nolint:errcheck

		spin := ui.NewSpinner("Fetching events...")
		spin.Start()
		logs, err := n.FilterLogs(q)
		spin.Stop()
		if err != nil {
			return fmt.Errorf("querying events: %w", err)
		}
		if len(logs) == 0 {
			fmt.Println(ui.Info("No events found."))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Block", Width: 6},
			{Title: "Contract", Width: 14},
			{Title: "Event", Width: 64},
			{Title: "Tx", Width: 14},
		})
		for _, l := range logs {
			ev := ui.Meta("undecodable")
			if d, err := contract.DecodeLog(l.Eth()); err == nil {
				ev = d.String()
			}
			t.AddRow(ui.Row{
				fmt.Sprintf("%d", l.BlockNumber),
				ui.Addr(ui.TruncateAddr(l.Address.Hex())),
				ev,
				ui.Meta(ui.TruncateAddr(l.TxHash.Hex())),
			})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d event(s)", len(logs))))
		return nil
	},
}

// eventsAddress accepts an address or a deployment name, which selects the
// deployment's sale.
func eventsAddress(arg string) (common.Address, error) {
	if common.IsHexAddress(arg) {
		return common.HexToAddress(arg), nil
	}
	return resolveSale(arg)
}

func init() {
	eventsCmd.Flags().StringVar(&eventsName, "name", "", "event name: Transfer, Buy or Finalize")
	eventsCmd.Flags().StringVar(&eventsContract, "contract", "", "emitting contract address or sale deployment name")
	eventsCmd.Flags().Uint64Var(&eventsFrom, "from", 0, "first block")
	eventsCmd.Flags().IntVar(&eventsCount, "count", 20, "max events to show (0 for all)")
}
