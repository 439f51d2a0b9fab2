package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
	"github.com/Mohsinsiddi/w3mint/internal/config"
	"github.com/Mohsinsiddi/w3mint/internal/rpc"
	"github.com/Mohsinsiddi/w3mint/internal/ui"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Manage and rank the RPC endpoints mints go through",
	Long: `Custom endpoints are tried before the built-in ones. Every command that
touches a chain ranks the candidates with the configured algorithm first.`,
}

var rpcAddCmd = &cobra.Command{
	Use:   "add <chain> <url>",
	Short: "Add a custom endpoint, checking the chain ID it serves",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := lookupChain(args[0])
		if err != nil {
			return err
		}
		url := args[1]
		if err := checkEndpointChain(cmd.Context(), chain.NewRegistry(), c, url); err != nil {
			fmt.Println(ui.Warn(err.Error()))
		}
		if err := cfg.AddRPC(c.Name, url); err != nil {
			return err
		}
		if err := saveValidConfig(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s now tries %s first", ui.ChainName(c.Name), url)))
		return nil
	},
}

var rpcRemoveCmd = &cobra.Command{
	Use:   "remove <chain> <url>",
	Short: "Remove a custom endpoint",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.ToLower(args[0])
		if err := cfg.RemoveRPC(name, args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Removed %s from %s", args[1], name)))
		return nil
	},
}

var rpcListCmd = &cobra.Command{
	Use:   "list [chain]",
	Short: "List the endpoints of a chain in the order they are tried",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := selectedChain()
		if len(args) == 1 {
			name = args[0]
		}
		c, err := lookupChain(name)
		if err != nil {
			return err
		}

		custom := cfg.GetRPCs(c.Name)
		t := ui.NewTable([]ui.Column{
			{Title: "#", Width: 3, Align: ui.AlignRight},
			{Title: "Endpoint", Width: 48},
			{Title: "Source", Width: 8},
			{Title: "Mode", Width: 8},
		})
		rows := endpointRows(c, custom)
		for i, r := range rows {
			t.AddRow(ui.Row{strconv.Itoa(i + 1), r[0], r[1], r[2]})
		}
		fmt.Println(ui.StyleTitle.Render("Endpoints for " + c.DisplayName))
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d in %s mode, %s selection", len(rpcCandidates(c, cfg.NetworkMode, custom)), cfg.NetworkMode, cfg.RPCAlgorithm)))
		return nil
	},
}

var rpcBenchmarkCmd = &cobra.Command{
	Use:   "benchmark [chain]",
	Short: "Probe every endpoint and show which one the algorithm picks",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := selectedChain()
		if len(args) == 1 {
			name = args[0]
		}
		c, err := lookupChain(name)
		if err != nil {
			return err
		}
		urls := rpcCandidates(c, cfg.NetworkMode, cfg.GetRPCs(c.Name))
		if len(urls) == 0 {
			return fmt.Errorf("no %s endpoints for %s", cfg.NetworkMode, c.Name)
		}

		spin := ui.NewSpinner(fmt.Sprintf("Probing %d %s endpoints...", len(urls), c.DisplayName))
		spin.Start()
		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCBenchmarkTimeout)
		defer cancel()
		results := rpc.Benchmark(ctx, urls, nil)
		spin.Stop()

		best, pickErr := rpc.Pick(results, rpc.Algorithm(cfg.RPCAlgorithm))
		t := ui.NewTable([]ui.Column{
			{Title: "Endpoint", Width: 40},
			{Title: "Latency", Width: 10, Align: ui.AlignRight},
			{Title: "Block", Width: 12, Align: ui.AlignRight},
			{Title: "Status", Width: 10},
		})
		for i, r := range results {
			if pickErr == nil && best.URL == r.URL {
				t.SelIdx = i
			}
			if !r.Healthy {
				t.AddRow(ui.Row{r.URL, "-", "-", "down"})
				continue
			}
			t.AddRow(ui.Row{r.URL, fmt.Sprintf("%dms", r.Latency.Milliseconds()), strconv.FormatUint(r.BlockNumber, 10), "healthy"})
		}
		fmt.Println(t.Render())
		if pickErr != nil {
			return pickErr
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s picks %s", cfg.RPCAlgorithm, best.URL)))
		return nil
	},
}

var rpcAlgorithmCmd = &cobra.Command{
	Use:   "algorithm",
	Short: "Show or set how endpoints are ranked",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(ui.Info("RPC algorithm: " + cfg.RPCAlgorithm))
		return nil
	},
}

var rpcAlgorithmSetCmd = &cobra.Command{
	Use:       "set <fastest|failover>",
	Short:     "Set the endpoint ranking algorithm",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(rpc.AlgorithmFastest), string(rpc.AlgorithmFailover)},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Set("rpc_algorithm", args[0]); err != nil {
			return fmt.Errorf("invalid algorithm %q, choose fastest or failover", args[0])
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("RPC algorithm set to %q", args[0])))
		return nil
	},
}

// endpointRows lists custom endpoints, then the built-in ones of each mode,
// as {url, source, mode} triples.
func endpointRows(c *chain.Chain, custom []string) [][3]string {
	rows := lo.Map(custom, func(u string, _ int) [3]string { return [3]string{u, "custom", "any"} })
	for _, mode := range []string{chain.Mainnet, chain.Testnet} {
		for _, u := range c.RPCs(mode) {
			rows = append(rows, [3]string{u, "built-in", mode})
		}
	}
	return rows
}

// saveValidConfig validates before writing so a bad edit never lands on disk.
func saveValidConfig() error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return cfg.Save()
}

// checkEndpointChain asks url for its chain ID and reports a mismatch with c.
func checkEndpointChain(ctx context.Context, reg *chain.Registry, c *chain.Chain, url string) error {
	ctx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
	defer cancel()
	id, err := chain.NewEVMClient(url).ChainID(ctx)
	if err != nil {
		return fmt.Errorf("could not read chain ID from %s: %v", url, err)
	}
	got, err := reg.GetByChainID(id.Int64())
	if err != nil {
		return fmt.Errorf("%s serves unknown chain ID %s", url, id)
	}
	if got.Name != c.Name {
		return fmt.Errorf("%s serves %s (chain ID %s), not %s", url, got.DisplayName, id, c.DisplayName)
	}
	return nil
}

func init() {
	rpcAlgorithmCmd.AddCommand(rpcAlgorithmSetCmd)
	rpcCmd.AddCommand(rpcAddCmd, rpcRemoveCmd, rpcListCmd, rpcBenchmarkCmd, rpcAlgorithmCmd)
}
