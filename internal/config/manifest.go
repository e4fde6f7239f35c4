package config

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Mohsinsiddi/w3sale/internal/units"
	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// ErrInvalidManifest wraps every manifest validation failure.
var ErrInvalidManifest = errors.New("invalid manifest")

// manifestFile mirrors the YAML layout. Amounts are human decimal strings.
type manifestFile struct {
	Name  string `yaml:"name"`
	Token struct {
		Name   string `yaml:"name"`
		Symbol string `yaml:"symbol"`
		Supply string `yaml:"supply"`
	} `yaml:"token"`
	Sale struct {
		Price           string   `yaml:"price"`
		MaxTokens       string   `yaml:"max_tokens"`
		OpeningTime     string   `yaml:"opening_time"`
		MinContribution string   `yaml:"min_contribution"`
		MaxContribution string   `yaml:"max_contribution"`
		Fund            *bool    `yaml:"fund"`
		Open            bool     `yaml:"open"`
		Whitelist       []string `yaml:"whitelist"`
		WhitelistOff    bool     `yaml:"disable_whitelist"`
	} `yaml:"sale"`
}

// Manifest describes one token and its crowdsale, amounts in base units.
type Manifest struct {
	Name string

	TokenName   string
	TokenSymbol string
	Supply      *big.Int

	Price           *big.Int
	MaxTokens       *big.Int
	OpeningTime     uint64
	MinContribution *big.Int
	MaxContribution *big.Int

	// Fund transfers MaxTokens from the deployer to the sale.
	Fund bool
	// Open opens the sale right after deployment.
	Open             bool
	Whitelist        []common.Address
	DisableWhitelist bool
}

// LoadManifest reads and validates a YAML manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes a YAML manifest. Unknown keys are rejected.
func ParseManifest(data []byte) (*Manifest, error) {
	var f manifestFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	m := &Manifest{
		Name:             strings.TrimSpace(f.Name),
		TokenName:        f.Token.Name,
		TokenSymbol:      f.Token.Symbol,
		Fund:             f.Sale.Fund == nil || *f.Sale.Fund,
		Open:             f.Sale.Open,
		DisableWhitelist: f.Sale.WhitelistOff,
	}
	if m.Name == "" {
		m.Name = strings.ToLower(m.TokenSymbol)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("%w: name or token.symbol is required", ErrInvalidManifest)
	}

	var err error
	amounts := []struct {
		field string
		raw   string
		dst   **big.Int
		def   string
	}{
		{"token.supply", f.Token.Supply, &m.Supply, ""},
		{"sale.price", f.Sale.Price, &m.Price, ""},
		{"sale.max_tokens", f.Sale.MaxTokens, &m.MaxTokens, f.Token.Supply},
		{"sale.min_contribution", f.Sale.MinContribution, &m.MinContribution, "0"},
		{"sale.max_contribution", f.Sale.MaxContribution, &m.MaxContribution, ""},
	}
	for _, a := range amounts {
		raw := strings.TrimSpace(a.raw)
		if raw == "" {
			raw = a.def
		}
		if raw == "" {
			return nil, fmt.Errorf("%w: %s is required", ErrInvalidManifest, a.field)
		}
		if *a.dst, err = units.Parse(raw); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidManifest, a.field, err)
		}
	}
	if m.MinContribution.Cmp(m.MaxContribution) > 0 {
		return nil, fmt.Errorf("%w: sale.min_contribution exceeds sale.max_contribution", ErrInvalidManifest)
	}
	if m.Fund && m.MaxTokens.Cmp(m.Supply) > 0 {
		return nil, fmt.Errorf("%w: sale.max_tokens exceeds token.supply", ErrInvalidManifest)
	}

	if m.OpeningTime, err = ParseTime(f.Sale.OpeningTime); err != nil {
		return nil, fmt.Errorf("%w: sale.opening_time: %v", ErrInvalidManifest, err)
	}

	for _, a := range f.Sale.Whitelist {
		if !common.IsHexAddress(a) {
			return nil, fmt.Errorf("%w: sale.whitelist: %q is not an address", ErrInvalidManifest, a)
		}
		m.Whitelist = append(m.Whitelist, common.HexToAddress(a))
	}
	return m, nil
}

// ParseTime accepts RFC 3339, a unix timestamp, or empty (zero).
func ParseTime(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return n, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, fmt.Errorf("want RFC 3339 or unix seconds, got %q", s)
	}
	if t.Unix() < 0 {
		return 0, fmt.Errorf("%q is before the epoch", s)
	}
	return uint64(t.Unix()), nil
}
