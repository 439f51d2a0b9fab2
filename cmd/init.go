package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
	"github.com/Mohsinsiddi/w3mint/internal/ui"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup wizard",
	Long: `Pick a default network and mode, and optionally add a signing wallet.

Every choice can be changed later with ` + "`w3mint config set`" + ` and
` + "`w3mint wallet add`" + `.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(ui.Banner())

		chains := chain.NewRegistry().All()
		picked, err := ui.PickItem("Default network", lo.Map(chains, func(c chain.Chain, _ int) ui.PickerItem {
			return ui.PickerItem{Label: c.DisplayName, SubLabel: c.NativeCurrency, Value: c.Name}
		}))
		if err != nil {
			return err
		}
		if picked != "" {
			if err := cfg.Set("default_network", picked); err != nil {
				return err
			}
		}

		mode, err := ui.PickItem("Network mode", []ui.PickerItem{
			{Label: chain.Mainnet, Value: chain.Mainnet},
			{Label: chain.Testnet, SubLabel: "dry-runs and mints against test networks", Value: chain.Testnet},
		})
		if err != nil {
			return err
		}
		if mode != "" {
			if err := cfg.Set("network_mode", mode); err != nil {
				return err
			}
		}

		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		if name := ui.PromptInput("Signing wallet name (empty to skip)"); name != "" {
			key := ui.PromptInput("Private key (hex)")
			mgr := newWalletManager()
			if err := mgr.AddWithKey(name, key); err != nil {
				fmt.Println(ui.Warn(fmt.Sprintf("Could not add wallet: %v", err)))
			} else if err := mgr.SetDefault(name); err != nil {
				fmt.Println(ui.Warn(fmt.Sprintf("Could not set default wallet: %v", err)))
			} else {
				cfg.DefaultWallet = name
				if err := cfg.Save(); err != nil {
					return fmt.Errorf("saving config: %w", err)
				}
			}
		}

		fmt.Println(ui.Success(fmt.Sprintf("w3mint configured for %s (%s). Run `w3mint mint <contract>` to mint.",
			ui.ChainName(cfg.DefaultNetwork), cfg.NetworkMode)))
		return nil
	},
}
