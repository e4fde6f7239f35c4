package cmd

import (
	"fmt"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/w3sale/internal/config"
	"github.com/Mohsinsiddi/w3sale/internal/contract"
	"github.com/Mohsinsiddi/w3sale/internal/ui"
	"github.com/Mohsinsiddi/w3sale/internal/units"
	"github.com/Mohsinsiddi/w3sale/internal/wallet"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	deployManifest string
	deployWallet   string
	deployName     string
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy a token and its crowdsale from a manifest",
	Long: `Deploy the token and crowdsale described by a YAML manifest, then fund,
whitelist and open the sale as the manifest asks. The deployment is
recorded under its name so other commands can refer to it.

Manifest:
  name: demo
  token:
    name: Demo Token
    symbol: DEMO
    supply: "1000000"
  sale:
    price: "0.001"          # currency per whole token
    max_tokens: "500000"    # cap, defaults to supply
    opening_time: "2026-01-01T00:00:00Z"
    min_contribution: "10"  # tokens per purchase
    max_contribution: "50000"
    fund: true              # transfer max_tokens to the sale (default)
    open: true
    whitelist: ["0xAbc..."]
    disable_whitelist: false

Example:
  w3sale deploy --manifest sale.yaml --wallet owner`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if deployManifest == "" {
			return fmt.Errorf("--manifest is required")
		}
		m, err := config.LoadManifest(deployManifest)
		if err != nil {
			return err
		}
		if deployName != "" {
			m.Name = deployName
		}
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		if _, err := reg.Get(m.Name); err == nil {
			return fmt.Errorf("deployment %q already exists: pick another --name", m.Name)
		}

		signer, err := loadSigner(deployWallet)
		if err != nil {
			return err
		}
		n, err := openNode()
		if err != nil {
			return err
		}
		defer n.Close() //nolint:errcheck

		d, err := deployManifestTo(n, signer, m)
		if d != nil {
			reg.Add(d)
			if serr := reg.Save(); serr != nil {
				return fmt.Errorf("saving deployment: %w", serr)
			}
		}
		if err != nil {
			return err
		}
		logger.Info("deployed", zap.String("name", d.Name), zap.String("token", d.Token.Hex()), zap.String("sale", d.Sale.Hex()))

		fmt.Println(ui.KeyValueBlock("Deployed "+d.Name, [][2]string{
			{"Token", ui.Addr(d.Token.Hex())},
			{"Sale", ui.Addr(d.Sale.Hex())},
			{"Owner", ui.Addr(d.Deployer.Hex())},
			{"Price", units.Format(m.Price) + " per token"},
			{"Cap", units.Format(m.MaxTokens) + " " + m.TokenSymbol},
			{"Block", fmt.Sprintf("%d", d.Block)},
		}))
		if !m.Open {
			fmt.Println(ui.Hint("The sale starts closed. Open it with: w3sale sale open " + d.Name))
		}
		return nil
	},
}

type setupStep struct {
	name  string
	build txBuilder
}

// deployManifestTo runs every transaction m calls for, in order.
func deployManifestTo(n *node, signer *wallet.Signer, m *config.Manifest) (*contract.Deployment, error) {
	r, err := submit(n, signer, "Deploying token...", func(s *contract.Sender, nonce uint64) ([]byte, error) {
		return s.Deploy(nonce, contract.TokenID, m.TokenName, m.TokenSymbol, m.Supply)
	})
	if err != nil {
		return nil, fmt.Errorf("deploying token: %w", err)
	}
	d := &contract.Deployment{
		Name:       m.Name,
		Token:      *r.ContractAddress,
		Deployer:   signer.Address(),
		DeployedAt: time.Now().UTC(),
	}

	r, err = submit(n, signer, "Deploying crowdsale...", func(s *contract.Sender, nonce uint64) ([]byte, error) {
		return s.Deploy(nonce, contract.CrowdsaleID, d.Token, m.Price, m.MaxTokens,
			new(big.Int).SetUint64(m.OpeningTime), m.MinContribution, m.MaxContribution)
	})
	if err != nil {
		return nil, fmt.Errorf("deploying crowdsale: %w", err)
	}
	// From here on the deployment exists and is returned even if a setup
	// step fails.
	d.Sale = *r.ContractAddress
	d.Block = r.BlockNumber

	var steps []setupStep
	if m.Fund {
		steps = append(steps, setupStep{"funding sale", func(s *contract.Sender, nonce uint64) ([]byte, error) {
			return s.Call(contract.TokenABI(), nonce, d.Token, nil, "transfer", d.Sale, m.MaxTokens)
		}})
	}
	for _, a := range m.Whitelist {
		steps = append(steps, setupStep{"whitelisting " + a.Hex(), callSale(d.Sale, nil, "addToWhitelist", a)})
	}
	if m.DisableWhitelist {
		steps = append(steps, setupStep{"disabling whitelist", callSale(d.Sale, nil, "toggleWhitelist", false)})
	}
	if m.Open {
		steps = append(steps, setupStep{"opening sale", callSale(d.Sale, nil, "openSale")})
	}
	for _, st := range steps {
		if _, err := submit(n, signer, st.name+"...", st.build); err != nil {
			return d, fmt.Errorf("%s: %w", st.name, err)
		}
	}
	return d, nil
}

var deployListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded deployments",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		all := reg.All()
		if len(all) == 0 {
			fmt.Println(ui.Info("No deployments yet."))
			fmt.Println(ui.Hint("Deploy one with: w3sale deploy --manifest sale.yaml"))
			return nil
		}
		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 14},
			{Title: "Token", Width: 44},
			{Title: "Sale", Width: 44},
			{Title: "Block", Width: 6},
		})
		for _, d := range all {
			t.AddRow(ui.Row{ui.Val(d.Name), ui.Addr(d.Token.Hex()), ui.Addr(d.Sale.Hex()), fmt.Sprintf("%d", d.Block)})
		}
		fmt.Println(t.Render())
		return nil
	},
}

func init() {
	deployCmd.Flags().StringVar(&deployManifest, "manifest", "", "YAML manifest (required)")
	deployCmd.Flags().StringVar(&deployWallet, "wallet", "", "deployer wallet (default: config)")
	deployCmd.Flags().StringVar(&deployName, "name", "", "deployment name (default: from manifest)")
	deployCmd.AddCommand(deployListCmd)
}
