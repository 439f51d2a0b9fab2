package cmd

import (
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/w3mint/internal/resolver"
	"github.com/Mohsinsiddi/w3mint/internal/ui"
	"github.com/Mohsinsiddi/w3mint/internal/wallet"
	"github.com/spf13/cobra"
)

var (
	planTo   string
	planFee  string
	planURI  string
	planFrom string
)

var planCmd = &cobra.Command{
	Use:   "plan <contract>",
	Short: "Show how a mint would be resolved, without sending anything",
	Long: `Run fee discovery and every dry-run a mint would perform, then print
the candidate list, each outcome and the invocation that would be chosen.

Nothing is signed. The caller may be a watch-only wallet or a raw address.

Examples:
  w3mint plan 0xContract
  w3mint plan 0xContract --from 0xCaller --fee 0.01`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := checkMintInput(args[0], planFee); err != nil {
			return err
		}

		mgr := newWalletManager()
		caller, err := planCaller(mgr)
		if err != nil {
			return err
		}
		recipient := caller
		if planTo != "" {
			if recipient, err = resolveRecipient(ctx, planTo, mgr); err != nil {
				return err
			}
		}

		cc, err := connect(ctx)
		if err != nil {
			return err
		}
		addr, err := requireContract(ctx, cc, args[0])
		if err != nil {
			return err
		}

		spin := ui.NewSpinner(ui.StateLabel(resolver.StateSimulating))
		spin.Start()
		res, err := newEngine(cc).Resolve(ctx, resolver.Request{
			Intent:      resolver.MintTo(recipient).WithTokenURI(planURI),
			Contract:    addr.Hex(),
			Caller:      caller,
			FeeOverride: planFee,
		})
		spin.Stop()
		if err != nil {
			return err
		}

		fmt.Println(ui.RenderResolution(res, cc.symbol()))
		fmt.Println(ui.Meta(fmt.Sprintf("%d candidate(s), %d dry-run(s), caller %s", len(res.Candidates), len(res.Attempts), caller)))
		return nil
	},
}

// planCaller is --from, else the default wallet of any type.
func planCaller(mgr *wallet.Manager) (string, error) {
	if planFrom != "" {
		return resolveAddress(planFrom, mgr)
	}
	w, err := mgr.Resolve(cfg.DefaultWallet)
	if errors.Is(err, wallet.ErrNoWallet) {
		return "", fmt.Errorf("no caller, pass --from <address> or add a wallet with `w3mint wallet add`")
	}
	if err != nil {
		return "", err
	}
	return w.Address, nil
}

func init() {
	planCmd.Flags().StringVar(&planTo, "to", "", "recipient address, wallet name or ENS name (default: the caller)")
	planCmd.Flags().StringVar(&planFee, "fee", "", "mint fee in native units; skips fee discovery")
	planCmd.Flags().StringVar(&planURI, "uri", "", "token URI; adds the (address,string) mint forms")
	planCmd.Flags().StringVar(&planFrom, "from", "", "caller address or wallet name (default: default wallet)")
}
