package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
	"github.com/Mohsinsiddi/w3mint/internal/config"
	"github.com/Mohsinsiddi/w3mint/internal/contract"
	"github.com/Mohsinsiddi/w3mint/internal/ens"
	"github.com/Mohsinsiddi/w3mint/internal/resolver"
	"github.com/Mohsinsiddi/w3mint/internal/rpc"
	"github.com/Mohsinsiddi/w3mint/internal/ui"
	"github.com/Mohsinsiddi/w3mint/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/samber/lo"
)

// chainContext is everything an on-chain command needs for one network.
type chainContext struct {
	chain   *chain.Chain
	mode    string
	client  *chain.EVMClient
	backend *contract.Backend
}

// symbol is the native currency ticker.
func (cc *chainContext) symbol() string { return cc.chain.NativeCurrency }

// txURL is the explorer link for hash, or "" when the chain has none.
func (cc *chainContext) txURL(hash common.Hash) string {
	return cc.chain.TxURL(cc.mode, hash.Hex())
}

// chainID returns the configured chain ID for the active mode, or nil so
// the sender asks the node.
func (cc *chainContext) chainID() *big.Int {
	if id := cc.chain.ID(cc.mode); id != 0 {
		return big.NewInt(id)
	}
	return nil
}

// selectedChain is the chain named by --network, else the configured default.
func selectedChain() string {
	if network != "" {
		return network
	}
	return cfg.DefaultNetwork
}

// lookupChain finds a registry chain by name with a hint on failure.
func lookupChain(name string) (*chain.Chain, error) {
	c, err := chain.NewRegistry().GetByName(name)
	if err != nil {
		return nil, fmt.Errorf("unknown chain %q, run `w3mint network list` to see all chains", name)
	}
	return c, nil
}

// connect resolves the selected chain and picks an RPC endpoint for it.
func connect(ctx context.Context) (*chainContext, error) {
	c, err := lookupChain(selectedChain())
	if err != nil {
		return nil, err
	}
	url, err := pickBestRPC(ctx, c, cfg.NetworkMode)
	if err != nil {
		return nil, err
	}
	log.Debug("Using RPC endpoint", "chain", c.Name, "mode", cfg.NetworkMode, "url", url)
	client := chain.NewEVMClient(url)
	return &chainContext{chain: c, mode: cfg.NetworkMode, client: client, backend: contract.NewBackend(client)}, nil
}

// rpcCandidates lists custom endpoints before built-in ones, without duplicates.
func rpcCandidates(c *chain.Chain, mode string, custom []string) []string {
	return lo.Uniq(append(append([]string{}, custom...), c.RPCs(mode)...))
}

// pickBestRPC selects the best RPC for a chain using the configured algorithm.
func pickBestRPC(ctx context.Context, c *chain.Chain, mode string) (string, error) {
	urls := rpcCandidates(c, mode, cfg.GetRPCs(c.Name))
	if len(urls) == 0 {
		return "", fmt.Errorf("no RPCs configured for %s (%s), add one with with `w3mint rpc add %s <url>`", c.Name, mode, c.Name)
	}
	ctx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
	defer cancel()
	url, err := rpc.SelectBest(ctx, urls, cfg.RPCAlgorithm, nil)
	if err != nil {
		return "", fmt.Errorf("selecting RPC for %s: %w", c.Name, err)
	}
	return url, nil
}

// engineOptions maps config onto resolver options.
func engineOptions(c *config.Config) []resolver.Option {
	return []resolver.Option{
		resolver.WithClassifier(resolver.NewClassifier(c.InconclusivePatterns, c.LooseRevertMatching)),
		resolver.WithSimulationTimeout(c.SimulationTimeout()),
		resolver.WithFeeTimeout(config.FeeDiscoveryTimeout),
		resolver.WithFeeDecimals(config.NativeDecimals),
	}
}

// newEngine builds a resolution engine over the connected chain.
func newEngine(cc *chainContext) *resolver.Engine {
	return resolver.NewEngine(cc.backend, cc.backend, engineOptions(cfg)...)
}

// checkMintInput validates the contract address and manual fee offline, so
// malformed input fails before any RPC request.
func checkMintInput(contractAddr, fee string) error {
	if !common.IsHexAddress(strings.TrimSpace(contractAddr)) {
		return &resolver.ValidationError{Field: "contract", Value: contractAddr, Reason: "not a hex address"}
	}
	_, err := resolver.ParseManualFee(fee, config.NativeDecimals)
	return err
}

// requireContract fails when addr holds no code. A plain eth_call to an
// externally owned account always succeeds, so every candidate would look
// verified.
func requireContract(ctx context.Context, cc *chainContext, addr string) (common.Address, error) {
	addr = strings.TrimSpace(addr)
	if !common.IsHexAddress(addr) {
		return common.Address{}, &resolver.ValidationError{Field: "contract", Value: addr, Reason: "not a hex address"}
	}
	a := common.HexToAddress(addr)
	ok, err := cc.backend.HasCode(ctx, a)
	if err != nil {
		return common.Address{}, fmt.Errorf("checking contract code: %w", err)
	}
	if !ok {
		return common.Address{}, fmt.Errorf("no contract deployed at %s on %s (%s)", a.Hex(), cc.chain.DisplayName, cc.mode)
	}
	return a, nil
}

// newWalletManager creates a Manager backed by the config-dir JSON store and
// the OS keychain (file backend under the config dir as last resort).
func newWalletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeystore(wallet.DefaultKeystore(cfg.KeysDir())),
	)
}

// loadSigningWallet loads a wallet by name and verifies it can sign
// transactions. An empty name uses the configured default, then the
// manager's default, then an interactive pick among signing wallets.
func loadSigningWallet(name string) (*wallet.Wallet, *wallet.Manager, error) {
	mgr := newWalletManager()
	if name == "" {
		name = cfg.DefaultWallet
	}

	w, err := mgr.Resolve(name)
	if errors.Is(err, wallet.ErrNoWallet) {
		w, err = pickSigningWallet(mgr)
	}
	if err != nil {
		if errors.Is(err, wallet.ErrWalletNotFound) {
			return nil, nil, fmt.Errorf("wallet %q not found, run `w3mint wallet list` or set a default with `w3mint wallet use <name>`", name)
		}
		return nil, nil, err
	}
	if !w.CanSign() {
		return nil, nil, fmt.Errorf(
			"wallet %q is watch-only and cannot sign transactions\n  To add a signing wallet: w3mint wallet add <name> --key <private-key>",
			w.Name,
		)
	}
	return w, mgr, nil
}

// pickSigningWallet asks the user to choose when no default is set.
func pickSigningWallet(mgr *wallet.Manager) (*wallet.Wallet, error) {
	signing := mgr.Signing()
	switch len(signing) {
	case 0:
		return nil, fmt.Errorf("%w, add one with `w3mint wallet add <name> --key <private-key>`", wallet.ErrNoWallet)
	case 1:
		return signing[0], nil
	}
	items := lo.Map(signing, func(w *wallet.Wallet, _ int) ui.PickerItem {
		return ui.PickerItem{Label: w.Name, SubLabel: ui.TruncateAddr(w.Address), Value: w.Name}
	})
	picked, err := ui.PickItem("Signing wallet  ·  select the caller", items)
	if err != nil {
		return nil, err
	}
	if picked == "" {
		return nil, resolver.ErrUserRejected
	}
	return mgr.Get(picked)
}

// resolveAddress accepts a hex address or the name of a known wallet.
func resolveAddress(s string, mgr *wallet.Manager) (string, error) {
	s = strings.TrimSpace(s)
	if common.IsHexAddress(s) {
		return common.HexToAddress(s).Hex(), nil
	}
	if mgr != nil {
		if w, err := mgr.Get(s); err == nil {
			return w.Address, nil
		}
	}
	return "", fmt.Errorf("%q is neither an address nor a known wallet", s)
}

// resolveRecipient is resolveAddress plus ENS names, looked up on Ethereum
// in the active network mode. A wallet with the same name wins.
func resolveRecipient(ctx context.Context, s string, mgr *wallet.Manager) (string, error) {
	s = strings.TrimSpace(s)
	if !ens.IsName(s) {
		return resolveAddress(s, mgr)
	}
	if mgr != nil {
		if w, err := mgr.Get(s); err == nil {
			return w.Address, nil
		}
	}
	c, err := chain.NewRegistry().GetByName(ens.Chain)
	if err != nil {
		return "", err
	}
	url, err := pickBestRPC(ctx, c, cfg.NetworkMode)
	if err != nil {
		return "", err
	}
	addr, err := ens.Resolve(ctx, chain.NewEVMClient(url), s)
	if err != nil {
		return "", fmt.Errorf("resolving ENS name: %w", err)
	}
	log.Debug("Resolved ENS name", "name", s, "address", addr.Hex())
	return addr.Hex(), nil
}

// newSender signs with w and broadcasts through the connected chain.
func newSender(cc *chainContext, w *wallet.Wallet, mgr *wallet.Manager, gasLimit uint64) *contract.Sender {
	return contract.NewSender(cc.client, wallet.NewSigner(w, mgr.Keystore()), cc.chainID(), gasLimit)
}

// approval shows the resolution and asks for confirmation. skip bypasses
// the prompt after the preview is printed.
func approval(in io.Reader, out io.Writer, symbol string, skip bool) resolver.ApproveFunc {
	return func(res *resolver.Resolution) bool {
		fmt.Fprintln(out, ui.RenderResolution(res, symbol))
		if skip {
			return true
		}
		return ui.ConfirmFrom(in, out, ui.StyleWarning.Render("Sign and send this transaction?"))
	}
}

// spinnerHook redraws spin with the label of every lifecycle state.
func spinnerHook(spin **ui.Spinner) func(from, to resolver.State) {
	return func(_, to resolver.State) {
		if *spin != nil {
			(*spin).SetMessage(ui.StateLabel(to))
		}
		log.Debug("Lifecycle", "state", to)
	}
}
