package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
	"github.com/Mohsinsiddi/w3mint/internal/config"
	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/w3mint/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir  string
	cfg     *config.Config
	verbose bool
	testnet bool
	mainnet bool
	network string
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "w3mint",
	Short: "Mint on contracts you have no ABI for",
	Long: `w3mint resolves how to call a mint function on a contract whose ABI
is unknown. It reads the mint fee from common accessors, dry-runs every
plausible mint signature and sends the one the node accepts.

Global flags --testnet and --mainnet override the configured network mode
for a single invocation. Without either flag the persisted mode is used
(default: mainnet). Persist with: w3mint config set network_mode <mode>`,
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(verbose)

		// Load config (skip for commands that don't need it).
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if testnet {
			cfg.NetworkMode = chain.Testnet
		}
		if mainnet {
			cfg.NetworkMode = chain.Mainnet
		}
		return nil
	},
}

// Execute runs the root command. Ctrl-C cancels in-flight RPC work.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// setupLogging routes diagnostics to stderr. Warnings only unless verbose.
func setupLogging(verbose bool) {
	lvl := log.LevelWarn
	if verbose {
		lvl = log.LevelDebug
	}
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, lvl, true)))
}

func init() {
	// W3MINT_CONFIG_DIR env var overrides --config flag.
	if envDir := os.Getenv("W3MINT_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.w3mint)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	rootCmd.PersistentFlags().BoolVar(&testnet, "testnet", false, "use testnet instead of mainnet")
	rootCmd.PersistentFlags().BoolVar(&mainnet, "mainnet", false, "use mainnet instead of testnet")
	rootCmd.PersistentFlags().StringVarP(&network, "network", "n", "", "chain name (default: configured default_network)")
	rootCmd.MarkFlagsMutuallyExclusive("testnet", "mainnet")

	// Register all sub-commands.
	rootCmd.AddCommand(
		initCmd,
		mintCmd,
		planCmd,
		feeCmd,
		tokenCmd,
		walletCmd,
		networkCmd,
		rpcCmd,
		configCmd,
		abiCmd,
	)
}
