package cmd

import (
	"fmt"
	"strconv"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
	"github.com/Mohsinsiddi/w3mint/internal/ui"
	"github.com/spf13/cobra"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "List chains and pick the default one",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported chains for the active mode",
	Long: `List supported chains. Chain IDs and explorers follow the active mode,
so pass --testnet to see test networks. The default chain is highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := cfg.NetworkMode
		chains := chain.NewRegistry().All()
		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 12},
			{Title: "Network", Width: 22},
			{Title: "Chain ID", Width: 10, Align: ui.AlignRight},
			{Title: "Currency", Width: 8},
			{Title: "Explorer", Width: 36},
		})
		for i, c := range chains {
			if c.Name == cfg.DefaultNetwork {
				t.SelIdx = i
			}
			display, id := c.NetworkName(mode), "-"
			if n := c.ID(mode); n != 0 {
				id = strconv.FormatInt(n, 10)
			}
			t.AddRow(ui.Row{c.Name, display, id, c.NativeCurrency, c.Explorer(mode)})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d chains, %s mode", len(chains), mode)))
		return nil
	},
}

var networkShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the chain commands will use",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := lookupChain(selectedChain())
		if err != nil {
			return err
		}
		mode := cfg.NetworkMode
		fmt.Println(ui.KeyValueBlock(c.DisplayName, [][2]string{
			{"Mode", mode},
			{"Chain ID", strconv.FormatInt(c.ID(mode), 10)},
			{"Currency", c.NativeCurrency},
			{"RPCs", fmt.Sprintf("%d (%d custom)", len(rpcCandidates(c, mode, cfg.GetRPCs(c.Name))), len(cfg.GetRPCs(c.Name)))},
			{"Algorithm", cfg.RPCAlgorithm},
			{"Explorer", c.Explorer(mode)},
		}))
		return nil
	},
}

var networkUseCmd = &cobra.Command{
	Use:   "use <chain>",
	Short: "Set the default chain",
	Long: `Set and persist the default chain. With --testnet or --mainnet the mode
is persisted too.

Examples:
  w3mint network use base
  w3mint network use base --testnet`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := lookupChain(args[0])
		if err != nil {
			return err
		}
		if err := cfg.Set("default_network", c.Name); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default network set to %s (%s)", ui.ChainName(c.Name), cfg.NetworkMode)))
		return nil
	},
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkShowCmd, networkUseCmd)
}
