package cmd

import (
	"fmt"
	"os"

	"github.com/Mohsinsiddi/w3sale/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/w3sale/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir    string
	cfg       *config.Config
	logger    = zap.NewNop()
	verbose   bool
	nodeURL   string
	assumeYes bool
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "w3sale",
	Short: "Run a token crowdsale on a local chain",
	Long: `w3sale deploys a token and its crowdsale to a local EVM-style chain,
and lets you buy, administer and watch the sale from the terminal.

State lives in the config directory (default ~/.w3sale). Commands open it
directly unless a node is running: start one with 'w3sale serve' and point
other commands at it with --node or W3SALE_NODE.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if verbose {
			logger, err = zap.NewDevelopment()
			if err != nil {
				return err
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync() //nolint:errcheck
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorLine(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: $W3SALE_CONFIG_DIR or ~/.w3sale)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&nodeURL, "node", "", "JSON-RPC URL of a running node (default: $W3SALE_NODE or config)")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to confirmation prompts")

	rootCmd.AddCommand(
		initCmd,
		configCmd,
		walletCmd,
		faucetCmd,
		deployCmd,
		buyCmd,
		sendCmd,
		whitelistCmd,
		saleCmd,
		priceCmd,
		finalizeCmd,
		balanceCmd,
		eventsCmd,
		txCmd,
		callCmd,
		dashboardCmd,
		serveCmd,
		convertCmd,
	)
}
