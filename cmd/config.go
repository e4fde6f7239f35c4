package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Mohsinsiddi/w3sale/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("%s\n\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Println(string(data))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		fmt.Println(ui.Meta("Data directory:   " + cfg.DataPath()))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Long: `Set one of: default_wallet, chain_id, data_dir, listen, rate_limit, node, keystore.

Examples:
  w3sale config set node http://127.0.0.1:8545/rpc
  w3sale config set rate_limit 30-M`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		switch key {
		case "default_wallet":
			cfg.DefaultWallet = value
		case "chain_id":
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid chain id %q", value)
			}
			cfg.ChainID = id
		case "data_dir":
			cfg.DataDir = value
		case "listen":
			cfg.Listen = value
		case "rate_limit":
			cfg.RateLimit = value
		case "node":
			cfg.Node = value
		case "keystore":
			cfg.Keystore = value
		default:
			return fmt.Errorf("unknown config key %q", key)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s set to %q", key, value)))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configListCmd, configSetCmd)
}
