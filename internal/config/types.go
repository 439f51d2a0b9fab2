package config

// Config holds all w3mint configuration.
type Config struct {
	DefaultNetwork string              `json:"default_network" validate:"required"`
	DefaultWallet  string              `json:"default_wallet"`
	NetworkMode    string              `json:"network_mode" validate:"oneof=mainnet testnet"`
	RPCAlgorithm   string              `json:"rpc_algorithm" validate:"oneof=fastest failover"`
	CustomRPCs     map[string][]string `json:"custom_rpcs" validate:"dive,dive,url"`

	// SimulationTimeoutMS bounds every single dry-run call.
	SimulationTimeoutMS int `json:"simulation_timeout_ms" validate:"gte=0,lte=120000"`

	// InconclusivePatterns replaces the built-in allow-list of revert reasons
	// that are treated as "might still work for another caller". Matching is
	// case-insensitive substring. Empty means built-in defaults.
	InconclusivePatterns []string `json:"inconclusive_patterns,omitempty"`

	// LooseRevertMatching treats every revert as inconclusive.
	LooseRevertMatching bool `json:"loose_revert_matching,omitempty"`

	// internal: config dir path used for Save()
	configDir string
}
