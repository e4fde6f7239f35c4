package cmd

import (
	"fmt"
	"strconv"

	"github.com/Mohsinsiddi/w3sale/internal/config"
	"github.com/Mohsinsiddi/w3sale/internal/ui"
	"github.com/spf13/cobra"
)

var (
	initKeystore string
	initChainID  int64
	initWallet   string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up the config directory",
	Long: `Write config.json and, optionally, generate a first wallet.

Flags skip the prompts:
  w3sale init --keystore file --chain-id 31337 --wallet owner`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(ui.StyleTitle.Render("w3sale setup"))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		fmt.Println()

		interactive := !assumeYes
		if !cmd.Flags().Changed("keystore") && interactive {
			initKeystore = ui.PromptInput("Keystore (system|file)", cfg.Keystore)
		}
		if initKeystore != "" {
			cfg.Keystore = initKeystore
		}
		if !cmd.Flags().Changed("chain-id") && interactive {
			v := ui.PromptInput("Chain id", strconv.FormatInt(cfg.ChainID, 10))
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid chain id %q", v)
			}
			initChainID = id
		}
		if initChainID != 0 {
			cfg.ChainID = initChainID
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Println(ui.Success("Config saved."))

		if cfg.Keystore == config.KeystoreFile {
			fmt.Println(ui.Hint(fmt.Sprintf("The file keystore reads its passphrase from %s.", config.EnvPassphrase)))
		}

		if initWallet == "" {
			fmt.Println(ui.Hint("Create a wallet with: w3sale wallet generate <name>"))
			return nil
		}
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		w, err := mgr.Generate(initWallet)
		if err != nil {
			return err
		}
		if err := mgr.SetDefault(w.Name); err != nil {
			return err
		}
		cfg.DefaultWallet = w.Name
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q created as default: %s", w.Name, ui.Addr(w.Address))))
		fmt.Println(ui.Hint("Next: w3sale faucet " + w.Name + " 100, then w3sale deploy --manifest sale.yaml"))
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initKeystore, "keystore", "", "key storage: system (OS keychain) or file")
	initCmd.Flags().Int64Var(&initChainID, "chain-id", 0, "chain id of the local chain")
	initCmd.Flags().StringVar(&initWallet, "wallet", "", "generate a default wallet with this name")
}
