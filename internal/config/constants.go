package config

import "time"

// Gas limits used as EstimateGas fallbacks when the node cannot estimate the tx.
const (
	GasLimitNFTMint       = uint64(250_000)
	GasLimitERC20Transfer = uint64(60_000) // transfer or burn
	GasLimitERC20Mint     = uint64(80_000)
)

// Timeouts.
const (
	RPCSelectTimeout         = 10 * time.Second
	RPCBenchmarkTimeout      = 15 * time.Second
	DefaultSimulationTimeout = 5 * time.Second
	FeeDiscoveryTimeout      = 8 * time.Second
)

// NativeDecimals is the decimal precision of the native currency on every
// supported EVM chain.
const NativeDecimals = 18
