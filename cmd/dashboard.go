package cmd

import (
	"fmt"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/w3sale/internal/chain"
	"github.com/Mohsinsiddi/w3sale/internal/contract"
	"github.com/Mohsinsiddi/w3sale/internal/ui"
	"github.com/Mohsinsiddi/w3sale/internal/units"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	dashboardInterval time.Duration
	dashboardRecent   int
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard [sale]",
	Short: "Live view of a sale",
	Long: `Show a sale's status, progress and latest purchases, refreshed every
--interval. Point it at a running node with --node to watch purchases
made by other clients.

Keyboard controls:
  r   refresh now
  q   quit`,
	Args: cobra.MaximumNArgs(1),
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

		if _, err := contract.ReadSale(n, sale); err != nil {
			return err
		}
		p := ui.NewDashboard(dashboardInterval, func() (*ui.SaleView, error) {
			return fetchSaleView(n, sale, dashboardRecent)
		})
		_, err = p.Run()
		return err
	},
}

// fetchSaleView reads everything the dashboard shows in one pass.
func fetchSaleView(b chain.Backend, sale common.Address, recent int) (*ui.SaleView, error) {
	st, err := contract.ReadSale(b, sale)
	if err != nil {
		return nil, err
	}
	tok, err := contract.ReadToken(b, st.Token)
	if err != nil {
		return nil, err
	}
	raised, err := b.BalanceAt(sale)
	if err != nil {
		return nil, err
	}
	height, err := b.BlockNumber()
	if err != nil {
		return nil, err
	}
	now, err := b.BlockTime()
	if err != nil {
		return nil, err
	}
	if wall := time.Now(); wall.After(now) {
		now = wall
	}
	logs, err := b.FilterLogs(chain.LogQuery{Address: &sale, Event: "Buy", Limit: recent})
	if err != nil {
		return nil, err
	}

	v := &ui.SaleView{
		Sale:        sale.Hex(),
		Token:       tok.Name,
		Symbol:      tok.Symbol,
		Status:      string(st.Status(now)),
		Price:       units.Format(st.Price) + " per " + tok.Symbol,
		Raised:      units.Format(raised),
		Whitelist:   fmt.Sprintf("%s (%d)", onOff(st.WhitelistEnabled), len(st.Whitelist)),
		Height:      height,
		Sold:        st.TokensSold,
		Cap:         st.MaxTokens,
		SoldDisplay: units.Format(st.TokensSold),
		CapDisplay:  units.Format(st.MaxTokens) + " " + tok.Symbol,
	}
	for i := len(logs) - 1; i >= 0; i-- {
		d, err := contract.DecodeLog(logs[i].Eth())
		if err != nil {
			continue
		}
		amount, _ := d.Fields["amount"].(*big.Int)
		buyer, _ := d.Fields["buyer"].(common.Address)
		v.Recent = append(v.Recent, ui.Purchase{
			Block:  logs[i].BlockNumber,
			Buyer:  buyer.Hex(),
			Amount: units.Format(amount) + " " + tok.Symbol,
		})
	}
	return v, nil
}

func init() {
	dashboardCmd.Flags().DurationVar(&dashboardInterval, "interval", 2*time.Second, "refresh interval")
	dashboardCmd.Flags().IntVar(&dashboardRecent, "recent", 8, "purchases to show")
}
