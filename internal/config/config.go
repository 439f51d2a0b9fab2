package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	defaultNetwork   = "base"
	defaultMode      = "mainnet"
	defaultAlgorithm = "fastest"

	configFile  = "config.json"
	walletsFile = "wallets.json"
	keysDir     = "keys"
)

var validate = validator.New()

// Load reads config from dir (or creates defaults). dir defaults to ~/.w3mint.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".w3mint")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}
	if cfg.SimulationTimeoutMS <= 0 {
		cfg.SimulationTimeoutMS = int(DefaultSimulationTimeout / time.Millisecond)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("invalid %s %v: must satisfy %s %s", fe.Field(), fe.Value(), fe.Tag(), fe.Param())
	}
	return err
}

// Set updates a scalar setting by its JSON name.
func (c *Config) Set(key, value string) error {
	next := *c
	switch key {
	case "default_network":
		next.DefaultNetwork = strings.ToLower(value)
	case "default_wallet":
		next.DefaultWallet = value
	case "network_mode":
		next.NetworkMode = value
	case "rpc_algorithm":
		next.RPCAlgorithm = value
	case "simulation_timeout_ms":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("simulation_timeout_ms must be an integer: %w", err)
		}
		next.SimulationTimeoutMS = n
	case "loose_revert_matching":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("loose_revert_matching must be true or false: %w", err)
		}
		next.LooseRevertMatching = b
	case "inconclusive_patterns":
		next.InconclusivePatterns = nil
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				next.InconclusivePatterns = append(next.InconclusivePatterns, p)
			}
		}
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// Save replaces config.json through a temp file in the config dir.
func (c *Config) Save() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(c.configDir, ".config-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(c.configDir, configFile))
}

// AddRPC appends a custom endpoint for chain. Chain names are case-insensitive.
func (c *Config) AddRPC(chain, url string) error {
	chain, url = strings.ToLower(chain), strings.TrimSpace(url)
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[string][]string)
	}
	if slices.Contains(c.CustomRPCs[chain], url) {
		return fmt.Errorf("%s is already an endpoint of %s", url, chain)
	}
	c.CustomRPCs[chain] = append(c.CustomRPCs[chain], url)
	return nil
}

// RemoveRPC drops a custom endpoint. The chain entry goes once it is empty.
func (c *Config) RemoveRPC(chain, url string) error {
	chain, url = strings.ToLower(chain), strings.TrimSpace(url)
	rest := slices.DeleteFunc(slices.Clone(c.CustomRPCs[chain]), func(u string) bool { return u == url })
	if len(rest) == len(c.CustomRPCs[chain]) {
		return fmt.Errorf("%s is not a custom endpoint of %s", url, chain)
	}
	if len(rest) == 0 {
		delete(c.CustomRPCs, chain)
		return nil
	}
	c.CustomRPCs[chain] = rest
	return nil
}

// GetRPCs returns the custom endpoints of chain in insertion order.
func (c *Config) GetRPCs(chain string) []string {
	return c.CustomRPCs[strings.ToLower(chain)]
}

// SimulationTimeout returns the per-call dry-run bound.
func (c *Config) SimulationTimeout() time.Duration {
	if c.SimulationTimeoutMS <= 0 {
		return DefaultSimulationTimeout
	}
	return time.Duration(c.SimulationTimeoutMS) * time.Millisecond
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath returns the path of wallets.json.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// KeysDir is where the file keyring backend keeps encrypted keys.
func (c *Config) KeysDir() string {
	return filepath.Join(c.configDir, keysDir)
}

func defaults(dir string) *Config {
	return &Config{
		DefaultNetwork:      defaultNetwork,
		NetworkMode:         defaultMode,
		RPCAlgorithm:        defaultAlgorithm,
		CustomRPCs:          make(map[string][]string),
		SimulationTimeoutMS: int(DefaultSimulationTimeout / time.Millisecond),
		configDir:           dir,
	}
}
