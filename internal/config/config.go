package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	defaultChainID   = 31337
	defaultListen    = "127.0.0.1:8545"
	defaultRateLimit = "60-M"

	configFile    = "config.json"
	walletsFile   = "wallets.json"
	contractsFile = "contracts.json"
	dataDir       = "data"
	keysDir       = "keys"
	journalDir    = "journal"
)

// DefaultDir returns the config directory used when none is given:
// $W3SALE_CONFIG_DIR, else ~/.w3sale.
func DefaultDir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home dir: %w", err)
	}
	return filepath.Join(home, ".w3sale"), nil
}

// Load reads config from dir (or creates defaults). dir defaults to DefaultDir.
func Load(dir string) (*Config, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
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
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg.configDir = dir
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.ChainID <= 0 {
		return fmt.Errorf("chain_id must be positive, got %d", c.ChainID)
	}
	switch c.Keystore {
	case KeystoreSystem, KeystoreFile:
	default:
		return fmt.Errorf("keystore must be %q or %q, got %q", KeystoreSystem, KeystoreFile, c.Keystore)
	}
	return nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath is the wallets.json location.
func (c *Config) WalletsPath() string { return filepath.Join(c.configDir, walletsFile) }

// ContractsPath is the contracts.json location.
func (c *Config) ContractsPath() string { return filepath.Join(c.configDir, contractsFile) }

// KeysDir holds the file keystore.
func (c *Config) KeysDir() string { return filepath.Join(c.configDir, keysDir) }

// DataPath is where the chain's state database lives.
func (c *Config) DataPath() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	return filepath.Join(c.configDir, dataDir)
}

// JournalPath is where the chain's journal lives.
func (c *Config) JournalPath() string { return filepath.Join(c.DataPath(), journalDir) }

// NodeURL returns the node to talk to: $W3SALE_NODE, else the configured one.
// Empty means open the data directory in process.
func (c *Config) NodeURL() string {
	if n := os.Getenv(EnvNode); n != "" {
		return n
	}
	return c.Node
}

func defaults(dir string) *Config {
	return &Config{
		ChainID:   defaultChainID,
		Listen:    defaultListen,
		RateLimit: defaultRateLimit,
		Keystore:  KeystoreSystem,
		configDir: dir,
	}
}
