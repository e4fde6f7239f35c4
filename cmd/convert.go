package cmd

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/w3sale/internal/ui"
	"github.com/Mohsinsiddi/w3sale/internal/units"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert <amount> [unit]",
	Short: "Convert between whole units, base units and hex",
	Long: `Convert amounts between whole units (18 decimals, used for both the
currency and tokens), base units and hex.

Units: whole, base, hex
If no unit is given, a 0x value is read as hex and anything else as whole units.

Examples:
  w3sale convert 1.5              # → 1500000000000000000 base units
  w3sale convert 1000 base        # → 0.000000000000001
  w3sale convert 0xde0b6b3a7640000
  w3sale convert 255 hex          # → 0xff`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		unit := ""
		if len(args) > 1 {
			unit = args[1]
		}
		title, rows, err := convertAmount(args[0], unit)
		if err != nil {
			return err
		}
		for i := range rows {
			rows[i][1] = ui.Val(rows[i][1])
		}
		fmt.Println(ui.KeyValueBlock(title, rows))
		return nil
	},
}

// convertAmount returns the rows shown for amount read in unit.
func convertAmount(amount, unit string) (string, [][2]string, error) {
	unit = strings.ToLower(unit)
	if unit == "" {
		unit = "whole"
		if strings.HasPrefix(strings.ToLower(amount), "0x") {
			unit = "hex_input"
		}
	}

	switch unit {
	case "whole", "token", "tokens", "eth":
		base, err := units.Parse(amount)
		if err != nil {
			return "", nil, fmt.Errorf("invalid amount %q: %w", amount, err)
		}
		return "Unit Conversion", [][2]string{
			{"Whole", units.Format(base)},
			{"Base units", base.String()},
			{"Hex", hexutil.EncodeBig(base)},
		}, nil
	case "base", "wei":
		base, ok := new(big.Int).SetString(amount, 10)
		if !ok || base.Sign() < 0 {
			return "", nil, fmt.Errorf("invalid base-unit amount %q", amount)
		}
		return "Unit Conversion", [][2]string{
			{"Base units", base.String()},
			{"Whole", units.Format(base)},
			{"Hex", hexutil.EncodeBig(base)},
		}, nil
	case "hex_input":
		n, ok := new(big.Int).SetString(amount[2:], 16)
		if !ok {
			return "", nil, fmt.Errorf("invalid hex value %q", amount)
		}
		return "Hex → Decimal", [][2]string{
			{"Hex", amount},
			{"Decimal", n.String()},
			{"Whole", units.Format(n)},
		}, nil
	case "hex", "decimal", "dec":
		n, ok := new(big.Int).SetString(amount, 10)
		if !ok || n.Sign() < 0 {
			return "", nil, fmt.Errorf("invalid decimal value %q", amount)
		}
		return "Decimal → Hex", [][2]string{
			{"Decimal", n.String()},
			{"Hex", hexutil.EncodeBig(n)},
		}, nil
	default:
		return "", nil, fmt.Errorf("unknown unit %q: use whole, base or hex", unit)
	}
}

// hexBytes decodes a 0x-prefixed hex string.
func hexBytes(s string) ([]byte, error) {
	return hexutil.Decode(strings.TrimSpace(s))
}
