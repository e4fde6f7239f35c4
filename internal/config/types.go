package config

// Config holds all w3sale configuration.
type Config struct {
	DefaultWallet string `json:"default_wallet"`
	ChainID       int64  `json:"chain_id"`
	DataDir       string `json:"data_dir,omitempty"` // defaults to <config dir>/data
	Listen        string `json:"listen"`             // serve address
	RateLimit     string `json:"rate_limit"`         // limiter format, e.g. "30-M"
	Node          string `json:"node,omitempty"`     // JSON-RPC URL of a running node
	Keystore      string `json:"keystore"`           // "system" | "file"

	// internal: config dir path used for Save()
	configDir string
}

// Keystore backends.
const (
	KeystoreSystem = "system"
	KeystoreFile   = "file"
)
