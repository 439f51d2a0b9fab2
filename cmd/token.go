package cmd

import (
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
	"github.com/Mohsinsiddi/w3mint/internal/config"
	"github.com/Mohsinsiddi/w3mint/internal/contract"
	"github.com/Mohsinsiddi/w3mint/internal/resolver"
	"github.com/Mohsinsiddi/w3mint/internal/ui"
	"github.com/Mohsinsiddi/w3mint/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

// ── flag vars ─────────────────────────────────────────────────────────────────

var (
	tokenWallet string
	tokenTo     string
	tokenAmount string
	tokenForce  bool
	tokenYes    bool
)

// ── root token command ────────────────────────────────────────────────────────

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Transfer, mint and burn ERC-20 tokens",
	Long: `Send fixed ERC-20 calls through the same dry-run and submission path as
NFT mints.

Sub-commands:
  w3mint token info       symbol and decimals
  w3mint token balance    balance of an address
  w3mint token transfer   transfer(address,uint256)
  w3mint token mint       mint(address,uint256), usually owner only
  w3mint token burn       burn(uint256) from your wallet

A dry-run that reverts aborts the command; pass --force to send anyway.`,
}

// tokenOp builds the single invocation for a write command.
type tokenOp struct {
	verb     string
	gasLimit uint64
	build    func(to common.Address, amount *big.Int) resolver.Candidate
}

var tokenInfoCmd = &cobra.Command{
	Use:   "info <token>",
	Short: "Show token symbol and decimals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cc, err := connect(ctx)
		if err != nil {
			return err
		}
		addr, err := requireContract(ctx, cc, args[0])
		if err != nil {
			return err
		}
		info, err := cc.backend.TokenInfo(ctx, addr)
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("Token", [][2]string{
			{"Address", info.Address.Hex()},
			{"Symbol", info.Symbol},
			{"Decimals", fmt.Sprintf("%d", info.Decimals)},
			{"Network", fmt.Sprintf("%s (%s)", cc.chain.DisplayName, cc.mode)},
		}))
		return nil
	},
}

var tokenBalanceCmd = &cobra.Command{
	Use:   "balance <token> [address|wallet]",
	Short: "Show the token balance of an address",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		mgr := newWalletManager()

		var owner string
		var err error
		if len(args) == 2 {
			owner, err = resolveAddress(args[1], mgr)
		} else {
			var w *wallet.Wallet
			if w, err = mgr.Resolve(cfg.DefaultWallet); err == nil {
				owner = w.Address
			}
		}
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
		info, err := cc.backend.TokenInfo(ctx, addr)
		if err != nil {
			return err
		}
		bal, err := cc.backend.BalanceOf(ctx, addr, common.HexToAddress(owner))
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s %s\n", ui.Addr(owner), ui.Val(chain.FormatUnits(bal, int(info.Decimals))), info.Symbol)
		return nil
	},
}

var tokenTransferCmd = &cobra.Command{
	Use:   "transfer <token>",
	Short: "Transfer tokens from your wallet",
	Long: `Transfer tokens to an address or wallet name.

Examples:
  w3mint token transfer 0xToken --to 0xRecipient --amount 12.5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTokenOp(cmd, args[0], tokenOp{
			verb:     "transfer",
			gasLimit: config.GasLimitERC20Transfer,
			build: func(to common.Address, amount *big.Int) resolver.Candidate {
				return contract.TransferCandidate(to, amount)
			},
		})
	},
}

var tokenMintCmd = &cobra.Command{
	Use:   "mint <token>",
	Short: "Mint additional tokens (owner only)",
	Long: `Mint new tokens to an address. Caller usually must be the contract owner.

Examples:
  w3mint token mint 0xToken --to 0xRecipient --amount 5000 --network base`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTokenOp(cmd, args[0], tokenOp{
			verb:     "mint",
			gasLimit: config.GasLimitERC20Mint,
			build: func(to common.Address, amount *big.Int) resolver.Candidate {
				return contract.MintCandidate(to, amount)
			},
		})
	},
}

var tokenBurnCmd = &cobra.Command{
	Use:   "burn <token>",
	Short: "Burn tokens from your wallet",
	Long: `Burn tokens held by the signing wallet.

Examples:
  w3mint token burn 0xToken --amount 100`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTokenOp(cmd, args[0], tokenOp{
			verb:     "burn",
			gasLimit: config.GasLimitERC20Transfer,
			build: func(_ common.Address, amount *big.Int) resolver.Candidate {
				return contract.BurnCandidate(amount)
			},
		})
	},
}

// runTokenOp dry-runs op once and submits it after confirmation.
func runTokenOp(cmd *cobra.Command, token string, op tokenOp) error {
	ctx := cmd.Context()
	if tokenAmount == "" {
		tokenAmount = ui.PromptInput("Amount (token units)")
	}

	w, mgr, err := loadSigningWallet(tokenWallet)
	if err != nil {
		return err
	}
	to := w.Address
	if op.verb != "burn" {
		if tokenTo == "" {
			tokenTo = ui.PromptInput(fmt.Sprintf("%s to address or wallet name", op.verb))
		}
		if to, err = resolveRecipient(ctx, tokenTo, mgr); err != nil {
			return err
		}
	}

	cc, err := connect(ctx)
	if err != nil {
		return err
	}
	addr, err := requireContract(ctx, cc, token)
	if err != nil {
		return err
	}

	spin := ui.NewSpinner(fmt.Sprintf("Preparing %s on %s...", op.verb, cc.chain.DisplayName))
	spin.Start()
	info, err := cc.backend.TokenInfo(ctx, addr)
	if err != nil {
		spin.Stop()
		return err
	}
	amount, err := chain.ParseUnits(tokenAmount, int32(info.Decimals))
	if err != nil {
		spin.Stop()
		return err
	}
	candidate := op.build(common.HexToAddress(to), amount)

	spin.SetMessage(ui.StateLabel(resolver.StateSimulating))
	res, err := newEngine(cc).ResolveCandidate(ctx, candidate, addr, common.HexToAddress(w.Address))
	spin.Stop()
	if err != nil {
		return err
	}

	fmt.Println(ui.KeyValueBlock(fmt.Sprintf("%s %s %s", op.verb, chain.FormatUnits(amount, int(info.Decimals)), info.Symbol), [][2]string{
		{"Token", addr.Hex()},
		{"From", w.Address},
		{"To", to},
	}))
	if err := checkDryRun(res, tokenForce); err != nil {
		fmt.Println(ui.RenderResolution(res, cc.symbol()))
		return err
	}

	sub := resolver.NewSubmitter(
		newSender(cc, w, mgr, op.gasLimit),
		approval(os.Stdin, os.Stdout, cc.symbol(), tokenYes),
		nil, nil,
	).Execute(ctx, res)

	explorer := ""
	if sub.OK() {
		explorer = cc.txURL(sub.TxHash)
	}
	fmt.Println(ui.RenderSubmission(sub, explorer))
	return submissionErr(sub)
}

// checkDryRun refuses a fixed invocation the node rejected. An unavailable
// simulation is not a rejection.
func checkDryRun(res *resolver.Resolution, force bool) error {
	if force || res.Rationale != resolver.RationaleFallback || res.SimulationUnavailable() {
		return nil
	}
	reason := "execution reverted"
	if rej := res.Rejections(); len(rej) > 0 && rej[0].Reason != "" {
		reason = rej[0].Reason
	}
	return errors.New("dry-run rejected: " + reason + " (pass --force to send anyway)")
}

func init() {
	for _, c := range []*cobra.Command{tokenTransferCmd, tokenMintCmd, tokenBurnCmd} {
		c.Flags().StringVarP(&tokenWallet, "wallet", "w", "", "signing wallet (default: configured default)")
		c.Flags().StringVar(&tokenAmount, "amount", "", "amount in token units, e.g. 1.5")
		c.Flags().BoolVar(&tokenForce, "force", false, "send even if the dry-run reverts")
		c.Flags().BoolVarP(&tokenYes, "yes", "y", false, "send without asking for confirmation")
	}
	tokenTransferCmd.Flags().StringVar(&tokenTo, "to", "", "recipient address, wallet name or ENS name")
	tokenMintCmd.Flags().StringVar(&tokenTo, "to", "", "recipient address, wallet name or ENS name")

	tokenCmd.AddCommand(tokenInfoCmd, tokenBalanceCmd, tokenTransferCmd, tokenMintCmd, tokenBurnCmd)
}
