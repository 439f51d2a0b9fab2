package cmd

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
	"github.com/Mohsinsiddi/w3mint/internal/config"
	"github.com/Mohsinsiddi/w3mint/internal/resolver"
	"github.com/Mohsinsiddi/w3mint/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var feeManual string

var feeCmd = &cobra.Command{
	Use:   "fee <contract>",
	Short: "Show the mint fee a contract advertises",
	Long: `Query every known fee accessor and show which one would be used.

Accessors are checked in order: mintFee(), fee(), mintPrice(),
publicMintPrice(). The first one answering a non-zero amount wins. A
--fee amount overrides whatever was discovered; both are shown.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		manual, err := resolver.ParseManualFee(feeManual, config.NativeDecimals)
		if err != nil {
			return err
		}
		cc, err := connect(ctx)
		if err != nil {
			return err
		}
		addr, err := requireContract(ctx, cc, args[0])
		if err != nil {
			return err
		}

		spin := ui.NewSpinner("Reading fee accessors...")
		spin.Start()
		answers := readAccessors(ctx, cc, addr)
		quote, err := resolver.NewFeeDiscovery(cc.backend, config.FeeDiscoveryTimeout, nil).Discover(ctx, addr)
		if err != nil {
			spin.Stop()
			return err
		}
		spin.StopWithMsg(ui.Meta(fmt.Sprintf("Read %d fee accessors on %s", len(answers), cc.chain.DisplayName)))

		t := ui.NewTable([]ui.Column{
			{Title: "Accessor", Width: 20},
			{Title: "Answer", Width: 30},
		})
		for i, src := range resolver.FeeAccessors {
			if quote != nil && quote.Source == src {
				t.SelIdx = i
			}
			t.AddRow(ui.Row{src.Signature(), answers[i]})
		}
		fmt.Println(t.Render())
		pairs := [][2]string{{"Contract", addr.Hex()}, {"Discovered", ui.FeeLine(quote, cc.symbol())}}
		if manual != nil {
			pairs = append(pairs, [2]string{"Active", ui.FeeLine(resolver.ActiveFee(quote, manual), cc.symbol())})
		}
		fmt.Println(ui.KeyValueBlock("Mint fee", pairs))
		return nil
	},
}

// readAccessors reports each accessor's raw answer for display.
func readAccessors(ctx context.Context, cc *chainContext, addr common.Address) []string {
	out := make([]string, len(resolver.FeeAccessors))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range resolver.FeeAccessors {
		g.Go(func() error {
			qctx, cancel := context.WithTimeout(gctx, config.FeeDiscoveryTimeout)
			defer cancel()
			out[i] = accessorAnswer(cc.backend.ReadUint(qctx, addr, src.Signature()))
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func accessorAnswer(v *big.Int, err error) string {
	switch {
	case err != nil:
		return "no answer"
	case v.Sign() == 0:
		return "0 (ignored)"
	default:
		return chain.FormatUnits(v, config.NativeDecimals)
	}
}

func init() {
	feeCmd.Flags().StringVar(&feeManual, "fee", "", "manual fee in native units; overrides the discovered one")
}
