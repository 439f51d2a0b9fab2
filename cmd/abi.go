package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3mint/internal/contract"
	"github.com/Mohsinsiddi/w3mint/internal/ui"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

var abiCmd = &cobra.Command{
	Use:   "abi",
	Short: "Offline selector, calldata and revert helpers",
}

var abiSelectorCmd = &cobra.Command{
	Use:   "selector <signature>",
	Short: "Compute the 4-byte selector of a function signature",
	Long: `Compute the 4-byte function selector.

Examples:
  w3mint abi selector "mint(address,uint256)"   # 0x40c10f19
  w3mint abi selector "safeMint(address)"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := contract.ParseSignature(args[0])
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("Selector", [][2]string{
			{"Signature", m.Signature},
			{"Selector", hexutil.Encode(m.Selector[:])},
		}))
		return nil
	},
}

var abiEncodeCmd = &cobra.Command{
	Use:   "encode <signature> [args...]",
	Short: "Encode calldata from a function signature and arguments",
	Long: `Build ABI-encoded calldata from a function signature and arguments.

Integers accept decimal or 0x-hex. Array and tuple parameters are not
supported.

Examples:
  w3mint abi encode "mint(address,uint256)" 0xRecipient 1000000000000000
  w3mint abi encode "safeMint(address)" 0xRecipient`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := contract.ParseSignature(args[0])
		if err != nil {
			return err
		}
		data, err := m.PackStrings(args[1:])
		if err != nil {
			return fmt.Errorf("encoding failed: %w", err)
		}

		pairs := [][2]string{
			{"Signature", m.Signature},
			{"Selector", hexutil.Encode(m.Selector[:])},
		}
		for i, arg := range args[1:] {
			pairs = append(pairs, [2]string{fmt.Sprintf("[%d] %s", i, m.Inputs[i].Type), arg})
		}
		fmt.Println(ui.KeyValueBlock("Calldata", pairs))
		fmt.Println(hexutil.Encode(data))
		return nil
	},
}

var abiRevertCmd = &cobra.Command{
	Use:   "revert <hex>",
	Short: "Decode revert data into a readable reason",
	Long: `Decode Error(string), Panic(uint256) and common OpenZeppelin custom errors.

Examples:
  w3mint abi revert 0x118cdaa7000000000000000000000000f39fd6e51aad88f6f4ce6ab8827279cfffb92266`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := hexutil.Decode(args[0])
		if err != nil {
			return fmt.Errorf("invalid hex %q: %w", args[0], err)
		}
		fmt.Println(contract.DecodeRevert(data, ""))
		return nil
	},
}

func init() {
	abiCmd.AddCommand(abiSelectorCmd, abiEncodeCmd, abiRevertCmd)
}
