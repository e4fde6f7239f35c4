package cmd

import (
	"fmt"
	"strconv"

	"github.com/Mohsinsiddi/w3sale/internal/contract"
	"github.com/Mohsinsiddi/w3sale/internal/ui"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/spf13/cobra"
)

var callCmd = &cobra.Command{
	Use:   "call <contract> <function> [args...]",
	Short: "Call a read-only token or sale function",
	Long: `Call a view function on a deployed token or sale. The function is looked
up in the crowdsale ABI, then the token ABI. Amount arguments are whole
units; address arguments accept wallet names.

Examples:
  w3sale call demo tokensSold
  w3sale call demo whitelist bob
  w3sale call 0xToken... balanceOf alice`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, funcName, raw := args[0], args[1], args[2:]
		addr, err := eventsAddress(target)
		if err != nil {
			return err
		}
		contractABI, err := abiFor(funcName)
		if err != nil {
			return err
		}
		params, err := callArgs(contractABI.Methods[funcName], raw)
		if err != nil {
			return err
		}

		n, err := openNode()
		if err != nil {
			return err
		}
		defer n.Close() //nolint:errcheck

		results, err := contract.NewCaller(n, contractABI, addr).Call(funcName, params...)
		if err != nil {
			return err
		}
		pairs := [][2]string{
			{"Contract", ui.Addr(addr.Hex())},
			{"Function", ui.Val(funcName)},
		}
		for i, r := range results {
			label := "Result"
			if len(results) > 1 {
				label = fmt.Sprintf("Result[%d]", i)
			}
			pairs = append(pairs, [2]string{label, ui.Val(contract.FormatValue(r))})
		}
		fmt.Println(ui.KeyValueBlock("Contract Call", pairs))
		return nil
	},
}

func abiFor(funcName string) (abi.ABI, error) {
	for _, a := range []abi.ABI{contract.CrowdsaleABI(), contract.TokenABI()} {
		if _, ok := a.Methods[funcName]; ok {
			return a, nil
		}
	}
	return abi.ABI{}, fmt.Errorf("unknown function %q", funcName)
}

// callArgs converts command-line strings to the Go types m expects.
func callArgs(m abi.Method, raw []string) ([]interface{}, error) {
	if len(raw) != len(m.Inputs) {
		return nil, fmt.Errorf("%s takes %d argument(s), got %d", m.Sig, len(m.Inputs), len(raw))
	}
	out := make([]interface{}, len(raw))
	for i, in := range m.Inputs {
		var err error
		switch in.Type.T {
		case abi.AddressTy:
			out[i], err = resolveAddress(raw[i])
		case abi.UintTy:
			out[i], err = parseAmount(raw[i])
		case abi.BoolTy:
			out[i], err = strconv.ParseBool(raw[i])
		default:
			err = fmt.Errorf("unsupported argument type %s", in.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s): %w", i+1, in.Name, err)
		}
	}
	return out, nil
}
