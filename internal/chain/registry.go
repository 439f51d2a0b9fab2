package chain

import (
	"errors"
	"slices"
	"strings"
)

// Network modes.
const (
	Mainnet = "mainnet"
	Testnet = "testnet"
)

// ErrChainNotFound is returned when a chain is not in the registry.
var ErrChainNotFound = errors.New("chain not found")

// Network is one deployment of a chain.
type Network struct {
	Name     string   `json:"name"`
	ChainID  int64    `json:"chain_id"`
	RPCs     []string `json:"rpcs"`
	Explorer string   `json:"explorer"`
}

// Chain is an EVM chain with a mainnet and a testnet deployment.
type Chain struct {
	Name           string  `json:"name"`
	DisplayName    string  `json:"display_name"`
	NativeCurrency string  `json:"native_currency"`
	Mainnet        Network `json:"mainnet"`
	Testnet        Network `json:"testnet"`
}

// Network returns the deployment for mode. Anything but Testnet is mainnet.
func (c *Chain) Network(mode string) *Network {
	if mode == Testnet {
		return &c.Testnet
	}
	return &c.Mainnet
}

// NetworkName is the display name in mode, e.g. "Base Sepolia".
func (c *Chain) NetworkName(mode string) string {
	if n := c.Network(mode).Name; n != "" {
		return n
	}
	return c.DisplayName
}

func (c *Chain) RPCs(mode string) []string   { return c.Network(mode).RPCs }
func (c *Chain) Explorer(mode string) string { return c.Network(mode).Explorer }
func (c *Chain) ID(mode string) int64        { return c.Network(mode).ChainID }

// TxURL returns the explorer link for a transaction hash, or "" without an
// explorer.
func (c *Chain) TxURL(mode, hash string) string {
	base := c.Explorer(mode)
	if base == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/tx/" + hash
}

// Registry indexes the supported chains by name and by chain ID.
type Registry struct {
	chains []Chain
	byName map[string]*Chain
	byID   map[int64]*Chain
}

func NewRegistry() *Registry {
	chains := builtinChains()
	slices.SortFunc(chains, func(a, b Chain) int { return strings.Compare(a.Name, b.Name) })
	r := &Registry{
		chains: chains,
		byName: make(map[string]*Chain, len(chains)),
		byID:   make(map[int64]*Chain, 2*len(chains)),
	}
	for i := range r.chains {
		c := &r.chains[i]
		r.byName[c.Name] = c
		for _, n := range []Network{c.Mainnet, c.Testnet} {
			if n.ChainID != 0 {
				r.byID[n.ChainID] = c
			}
		}
	}
	return r
}

// All returns a copy of every chain sorted by name.
func (r *Registry) All() []Chain { return slices.Clone(r.chains) }

// GetByName finds a chain by slug, case-insensitively.
func (r *Registry) GetByName(name string) (*Chain, error) {
	if c, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c, nil
	}
	return nil, ErrChainNotFound
}

// GetByChainID finds a chain by its mainnet or testnet chain ID.
func (r *Registry) GetByChainID(id int64) (*Chain, error) {
	if c, ok := r.byID[id]; ok {
		return c, nil
	}
	return nil, ErrChainNotFound
}

func builtinChains() []Chain {
	return []Chain{
		{
			Name: "base", DisplayName: "Base", NativeCurrency: "ETH",
			Mainnet: Network{ChainID: 8453, Explorer: "https://basescan.org",
				RPCs: []string{"https://mainnet.base.org", "https://base.llamarpc.com"}},
			Testnet: Network{Name: "Base Sepolia", ChainID: 84532, Explorer: "https://sepolia.basescan.org",
				RPCs: []string{"https://sepolia.base.org"}},
		},
		{
			Name: "ethereum", DisplayName: "Ethereum", NativeCurrency: "ETH",
			Mainnet: Network{ChainID: 1, Explorer: "https://etherscan.io",
				RPCs: []string{"https://eth.llamarpc.com", "https://ethereum-rpc.publicnode.com"}},
			Testnet: Network{Name: "Sepolia", ChainID: 11155111, Explorer: "https://sepolia.etherscan.io",
				RPCs: []string{"https://rpc.sepolia.org", "https://sepolia.gateway.tenderly.co"}},
		},
		{
			Name: "optimism", DisplayName: "Optimism", NativeCurrency: "ETH",
			Mainnet: Network{ChainID: 10, Explorer: "https://optimistic.etherscan.io",
				RPCs: []string{"https://mainnet.optimism.io", "https://optimism.llamarpc.com"}},
			Testnet: Network{Name: "OP Sepolia", ChainID: 11155420, Explorer: "https://sepolia-optimism.etherscan.io",
				RPCs: []string{"https://sepolia.optimism.io"}},
		},
		{
			Name: "arbitrum", DisplayName: "Arbitrum", NativeCurrency: "ETH",
			Mainnet: Network{ChainID: 42161, Explorer: "https://arbiscan.io",
				RPCs: []string{"https://arb1.arbitrum.io/rpc", "https://arbitrum.llamarpc.com"}},
			Testnet: Network{Name: "Arb Sepolia", ChainID: 421614, Explorer: "https://sepolia.arbiscan.io",
				RPCs: []string{"https://sepolia-rollup.arbitrum.io/rpc"}},
		},
		{
			Name: "polygon", DisplayName: "Polygon", NativeCurrency: "POL",
			Mainnet: Network{ChainID: 137, Explorer: "https://polygonscan.com",
				RPCs: []string{"https://polygon-bor-rpc.publicnode.com", "https://polygon-pokt.nodies.app"}},
			Testnet: Network{Name: "Amoy", ChainID: 80002, Explorer: "https://amoy.polygonscan.com",
				RPCs: []string{"https://rpc-amoy.polygon.technology"}},
		},
		{
			Name: "bnb", DisplayName: "BNB Chain", NativeCurrency: "BNB",
			Mainnet: Network{ChainID: 56, Explorer: "https://bscscan.com",
				RPCs: []string{"https://bsc-dataseed.binance.org", "https://bsc-rpc.publicnode.com"}},
			Testnet: Network{Name: "BSC Testnet", ChainID: 97, Explorer: "https://testnet.bscscan.com",
				RPCs: []string{"https://data-seed-prebsc-1-s1.binance.org:8545"}},
		},
		{
			Name: "zora", DisplayName: "Zora", NativeCurrency: "ETH",
			Mainnet: Network{ChainID: 7777777, Explorer: "https://explorer.zora.energy",
				RPCs: []string{"https://rpc.zora.energy"}},
			Testnet: Network{Name: "Zora Sepolia", ChainID: 999999999, Explorer: "https://sepolia.explorer.zora.energy",
				RPCs: []string{"https://sepolia.rpc.zora.energy"}},
		},
	}
}
