package cmd

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3sale/internal/ui"
	"github.com/Mohsinsiddi/w3sale/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

var (
	signWallet string
	signSale   string

	verifySig     string
	verifyAddress string
)

var walletSignCmd = &cobra.Command{
	Use:   "sign [message]",
	Short: "Sign a message with EIP-191 (personal_sign)",
	Long: `Sign a plaintext message using EIP-191 personal_sign.

With --sale and no message, sign a whitelist request for that sale. The
sale operator approves it with 'w3sale whitelist approve'.

Examples:
  w3sale wallet sign "login nonce: 12345" --wallet alice
  w3sale wallet sign --sale demo --wallet alice`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		signer, err := loadSigner(signWallet)
		if err != nil {
			return err
		}
		addr := signer.Address().Hex()

		var message string
		switch {
		case len(args) == 1:
			message = args[0]
		case signSale != "":
			sale, err := resolveSale(signSale)
			if err != nil {
				return err
			}
			message = string(wallet.WhitelistRequest(sale, signer.Address()))
		default:
			return fmt.Errorf("pass a message or --sale")
		}

		sig, err := signer.SignMessage([]byte(message))
		if err != nil {
			return fmt.Errorf("signing failed: %w", err)
		}
		sigHex := hexutil.Encode(sig)
		fmt.Println(ui.KeyValueBlock("Message Signed", [][2]string{
			{"Signer", ui.Addr(addr)},
			{"Message", message},
			{"Signature", sigHex},
		}))
		if len(args) == 0 {
			fmt.Println(ui.Hint("Send the operator: w3sale whitelist approve " + addr + " --sig " + sigHex + " --sale " + signSale))
			return nil
		}
		fmt.Println(ui.Hint("Verify: w3sale wallet verify \"" + message + "\" --sig " + sigHex + " --address " + addr))
		return nil
	},
}

var walletVerifyCmd = &cobra.Command{
	Use:   "verify <message>",
	Short: "Verify an EIP-191 signed message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := args[0]
		if verifySig == "" {
			return fmt.Errorf("--sig is required")
		}
		sig, err := hexutil.Decode(verifySig)
		if err != nil {
			return fmt.Errorf("invalid signature hex: %w", err)
		}
		recovered, err := wallet.VerifyMessage([]byte(message), sig)
		if err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}

		pairs := [][2]string{
			{"Message", message},
			{"Recovered Signer", ui.Addr(recovered.Hex())},
		}
		if verifyAddress != "" {
			if common.IsHexAddress(verifyAddress) && common.HexToAddress(verifyAddress) == recovered {
				pairs = append(pairs, [2]string{"Match", ui.Success("signer matches")})
			} else {
				pairs = append(pairs, [2]string{"Expected", ui.Addr(strings.TrimSpace(verifyAddress))})
				pairs = append(pairs, [2]string{"Match", ui.Err("signature does NOT match expected address")})
			}
		}
		fmt.Println(ui.KeyValueBlock("Signature Verification", pairs))
		return nil
	},
}

func init() {
	walletSignCmd.Flags().StringVar(&signWallet, "wallet", "", "wallet name (default: config)")
	walletSignCmd.Flags().StringVar(&signSale, "sale", "", "sign a whitelist request for this sale")
	walletVerifyCmd.Flags().StringVar(&verifySig, "sig", "", "hex signature to verify (required)")
	walletVerifyCmd.Flags().StringVar(&verifyAddress, "address", "", "expected signer address")
}
