package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3sale/internal/contract"
	"github.com/Mohsinsiddi/w3sale/internal/ui"
	"github.com/Mohsinsiddi/w3sale/internal/units"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var balanceToken string

var balanceCmd = &cobra.Command{
	Use:   "balance [wallet|address]",
	Short: "Show currency and token balances",
	Long: `Show an account's native balance and nonce, and its balance of every
deployed token (or only --token).

Examples:
  w3sale balance
  w3sale balance bob
  w3sale balance 0xAbC... --token demo`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := cfg.DefaultWallet
		if len(args) == 1 {
			target = args[0]
		}
		if target == "" {
			return fmt.Errorf("no wallet selected: name one or set a default with `w3sale wallet use <name>`")
		}
		addr, err := resolveAddress(target)
		if err != nil {
			return err
		}

		tokens, err := balanceTokens()
		if err != nil {
			return err
		}

		n, err := openNode()
		if err != nil {
			return err
		}
		defer n.Close() //nolint:errcheck

		bal, err := n.BalanceAt(addr)
		if err != nil {
			return err
		}
		nonce, err := n.NonceAt(addr)
		if err != nil {
			return err
		}
		pairs := [][2]string{
			{"Address", ui.Addr(addr.Hex())},
			{"Balance", ui.Val(units.Format(bal))},
			{"Nonce", fmt.Sprintf("%d", nonce)},
		}
		for _, t := range tokens {
			info, err := contract.ReadToken(n, t)
			if err != nil {
				pairs = append(pairs, [2]string{ui.TruncateAddr(t.Hex()), ui.Err(err.Error())})
				continue
			}
			held, err := contract.TokenBalance(n, t, addr)
			if err != nil {
				return err
			}
			pairs = append(pairs, [2]string{info.Symbol, ui.Val(units.Format(held))})
		}
		fmt.Println(ui.KeyValueBlock("Balances", pairs))
		return nil
	},
}

// balanceTokens lists the tokens to report: --token, else every deployment's.
func balanceTokens() ([]common.Address, error) {
	if common.IsHexAddress(balanceToken) {
		return []common.Address{common.HexToAddress(balanceToken)}, nil
	}
	reg, err := loadRegistry()
	if err != nil {
		return nil, err
	}
	if balanceToken != "" {
		d, err := reg.Get(balanceToken)
		if err != nil {
			return nil, err
		}
		return []common.Address{d.Token}, nil
	}
	var out []common.Address
	for _, d := range reg.All() {
		out = append(out, d.Token)
	}
	return out, nil
}

func init() {
	balanceCmd.Flags().StringVar(&balanceToken, "token", "", "token address or deployment name")
}
