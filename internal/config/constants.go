package config

// Environment overrides.
const (
	EnvConfigDir  = "W3SALE_CONFIG_DIR"
	EnvPassphrase = "W3SALE_KEYSTORE_PASSPHRASE"
	EnvNode       = "W3SALE_NODE"
)
