package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3mint/internal/ui"
	"github.com/Mohsinsiddi/w3mint/internal/wallet"
	"github.com/spf13/cobra"
)

var (
	walletKeyFlag     string
	walletMakeDefault bool
	walletRemoveYes   bool
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage minting wallets",
	Long: `Signing wallets send mints; their keys live in the OS keychain.
Watch-only wallets can only act as the caller of ` + "`w3mint plan --from`" + `.`,
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Add a signing wallet (--key) or a watch-only address",
	Long: `Add a wallet.

Examples:
  w3mint wallet add minter --key -            # prompt for the key
  w3mint wallet add minter --key 0xabc... --default
  w3mint wallet add vault 0xWatchedAddress    # watch-only`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr := newWalletManager()

		if walletKeyFlag == "-" {
			walletKeyFlag = ui.PromptInput("Private key (hex)")
		}
		switch {
		case walletKeyFlag != "":
			if err := mgr.AddWithKey(name, walletKeyFlag); err != nil {
				return err
			}
		case len(args) == 2:
			if known, ok := mgr.FindByAddress(args[1]); ok {
				fmt.Println(ui.Warn(fmt.Sprintf("%s is already stored as %q", known.Address, known.Name)))
			}
			if err := mgr.Add(name, &wallet.Wallet{Address: args[1], Type: wallet.TypeWatchOnly}); err != nil {
				return err
			}
		default:
			return fmt.Errorf("pass --key for a signing wallet or an address for a watch-only one")
		}

		w, err := mgr.Get(name)
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s wallet %q added: %s", walletTypeLabel(w.Type), name, ui.Addr(w.Address))))
		if walletMakeDefault {
			return setDefaultWallet(mgr, name)
		}
		fmt.Println(ui.Hint("Make it the default with: w3mint wallet use " + name))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallets; the highlighted row is the default",
	RunE: func(cmd *cobra.Command, args []string) error {
		wallets := newWalletManager().List()
		if len(wallets) == 0 {
			fmt.Println(ui.Info("No wallets yet."))
			fmt.Println(ui.Hint("Add one with: w3mint wallet add <name> --key -"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 42},
			{Title: "Type", Width: 10},
			{Title: "Can mint", Width: 8},
		})
		for i, w := range wallets {
			if w.IsDefault || w.Name == cfg.DefaultWallet {
				t.SelIdx = i
			}
			canMint := "no"
			if w.CanSign() {
				canMint = "yes"
			}
			t.AddRow(ui.Row{w.Name, w.Address, walletTypeLabel(w.Type), canMint})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d wallet(s)", len(wallets))))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !walletRemoveYes && !ui.ConfirmDanger(fmt.Sprintf("Remove wallet %q and delete its key?", name)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		if err := newWalletManager().Remove(name); err != nil {
			return err
		}
		if cfg.DefaultWallet == name {
			cfg.DefaultWallet = ""
			if err := cfg.Save(); err != nil {
				return err
			}
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setDefaultWallet(newWalletManager(), args[0])
	},
}

var walletGenerateCmd = &cobra.Command{
	Use:   "generate <name>",
	Short: "Generate a new signing wallet",
	Long: `Generate a keypair and store the private key in the OS keychain.

The key is printed once. Re-export later with: w3mint wallet export <name>`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr := newWalletManager()
		w, hexKey, err := mgr.Generate(name)
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("New wallet", [][2]string{
			{"Name", w.Name},
			{"Address", w.Address},
		}))
		fmt.Println(ui.DangerBox(
			ui.Warn("Private key, shown once. Never share it.") + "\n\n" + ui.Val(hexKey),
		))
		if walletMakeDefault {
			return setDefaultWallet(mgr, name)
		}
		return nil
	},
}

var walletExportCmd = &cobra.Command{
	Use:   "export <name>",
	Short: "Print the private key of a signing wallet",
	Long:  `Print a stored private key after the wallet name is typed again to confirm.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		fmt.Println(ui.Warn("You are about to reveal a private key."))
		if ui.PromptInput(fmt.Sprintf("Type %q to confirm", name)) != name {
			fmt.Println(ui.Err("Name mismatch, export cancelled."))
			return nil
		}
		hexKey, err := newWalletManager().ExportKey(name)
		if err != nil {
			return err
		}
		fmt.Println(ui.DangerBox(ui.Warn("Private key. Do not share it.") + "\n\n" + ui.Val(hexKey)))
		return nil
	},
}

// setDefaultWallet marks name as default in the store and in config.
func setDefaultWallet(mgr *wallet.Manager, name string) error {
	if err := mgr.SetDefault(name); err != nil {
		return err
	}
	if err := cfg.Set("default_wallet", name); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Println(ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
	if w, err := mgr.Get(name); err == nil && !w.CanSign() {
		fmt.Println(ui.Warn("This wallet is watch-only: `w3mint mint` needs --wallet with a signing wallet."))
	}
	return nil
}

func walletTypeLabel(t string) string {
	if t == wallet.TypeSigning {
		return "signing"
	}
	return "watch-only"
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", `private key, stored in the OS keychain; "-" prompts for it`)
	for _, c := range []*cobra.Command{walletAddCmd, walletGenerateCmd} {
		c.Flags().BoolVar(&walletMakeDefault, "default", false, "also make this the default wallet")
	}
	walletRemoveCmd.Flags().BoolVarP(&walletRemoveYes, "yes", "y", false, "remove without asking")

	walletCmd.AddCommand(walletAddCmd, walletListCmd, walletRemoveCmd, walletUseCmd,
		walletGenerateCmd, walletExportCmd)
}
