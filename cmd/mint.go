package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/Mohsinsiddi/w3mint/internal/config"
	"github.com/Mohsinsiddi/w3mint/internal/resolver"
	"github.com/Mohsinsiddi/w3mint/internal/ui"
	"github.com/spf13/cobra"
)

var (
	mintTo     string
	mintFee    string
	mintURI    string
	mintWallet string
	mintYes    bool
)

// errNotSubmitted makes the process exit non-zero after the outcome was printed.
var errNotSubmitted = errors.New("transaction not submitted")

var mintCmd = &cobra.Command{
	Use:   "mint <contract>",
	Short: "Mint one NFT without knowing the contract ABI",
	Long: `Discover the mint fee, dry-run every plausible mint signature and send
the first one the node accepts.

The fee is read from mintFee(), fee(), mintPrice() and publicMintPrice()
unless --fee is given. Candidates are tried in this order:

  mint(address,uint256)     fee passed as argument
  safeMint(address,uint256) fee passed as argument
  mint(address)             fee attached as value
  safeMint(address)         fee attached as value
  mint(address)             no payment
  safeMint(address)         no payment

With --uri, mint(address,string) and safeMint(address,string) are tried last.

A preview of the chosen call and every dry-run is shown before signing.

Examples:
  w3mint mint 0xContract
  w3mint mint 0xContract --to alice --fee 0.001 --network base
  w3mint mint 0xContract --to vitalik.eth --testnet --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := checkMintInput(args[0], mintFee); err != nil {
			return err
		}

		w, mgr, err := loadSigningWallet(mintWallet)
		if err != nil {
			return err
		}
		recipient := w.Address
		if mintTo != "" {
			if recipient, err = resolveRecipient(ctx, mintTo, mgr); err != nil {
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

		var spin *ui.Spinner
		tracker := resolver.NewTracker(spinnerHook(&spin))
		preview := approval(os.Stdin, os.Stdout, cc.symbol(), mintYes)
		approve := func(res *resolver.Resolution) bool {
			spin.Stop()
			if !preview(res) {
				return false
			}
			spin = ui.NewSpinner(ui.StateLabel(resolver.StateSubmitting))
			spin.Start()
			return true
		}

		spin = ui.NewSpinner(fmt.Sprintf("Resolving mint on %s...", cc.chain.DisplayName))
		spin.Start()
		session := resolver.NewSession(newEngine(cc), newSender(cc, w, mgr, config.GasLimitNFTMint), approve, tracker)
		_, sub, err := session.Run(ctx, resolver.Request{
			Intent:      resolver.MintTo(recipient).WithTokenURI(mintURI),
			Contract:    addr.Hex(),
			Caller:      w.Address,
			FeeOverride: mintFee,
		})
		spin.Stop()
		if err != nil {
			return err
		}

		explorer := ""
		if sub.OK() {
			explorer = cc.txURL(sub.TxHash)
		}
		fmt.Println(ui.RenderSubmission(sub, explorer))
		return submissionErr(sub)
	},
}

// submissionErr is nil only when the transaction reached the network, so a
// declined or failed submission exits non-zero.
func submissionErr(sub resolver.Submission) error {
	if sub.OK() {
		return nil
	}
	return errNotSubmitted
}

func init() {
	mintCmd.Flags().StringVar(&mintTo, "to", "", "recipient address, wallet name or ENS name (default: the signing wallet)")
	mintCmd.Flags().StringVar(&mintFee, "fee", "", "mint fee in native units; skips fee discovery")
	mintCmd.Flags().StringVar(&mintURI, "uri", "", "token URI; also tries mint(address,string) and safeMint(address,string)")
	mintCmd.Flags().StringVarP(&mintWallet, "wallet", "w", "", "signing wallet (default: configured default)")
	mintCmd.Flags().BoolVarP(&mintYes, "yes", "y", false, "send without asking for confirmation")
}
