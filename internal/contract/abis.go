package contract

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ErrUnknownArtifact is returned for a deployment payload or a name that
// matches no built-in contract.
var ErrUnknownArtifact = errors.New("unknown contract artifact")

// BuiltinKind is a contract type the local chain can deploy. New built-ins
// register themselves from init() in their own <name>_abi.go file.
type BuiltinKind struct {
	ID          string  // machine key, e.g. "token"
	Name        string  // human label, e.g. "Token (fixed-supply ERC-20)"
	Description string  // one-line summary
	Artifact    [4]byte // deployment payload prefix
	ABI         abi.ABI
}

var builtinRegistry = map[string]BuiltinKind{}

// RegisterBuiltin parses abiJSON and adds the contract type to the registry.
// It panics on a malformed ABI; built-ins are compiled in.
func RegisterBuiltin(id, name, description, abiJSON string) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		panic(fmt.Sprintf("contract: builtin %s: %v", id, err))
	}
	builtinRegistry[id] = BuiltinKind{
		ID:          id,
		Name:        name,
		Description: description,
		Artifact:    Selector(artifactName(id)),
		ABI:         parsed,
	}
}

// artifactName is the contract's source name, "token" -> "Token".
func artifactName(id string) string {
	if id == "" {
		return id
	}
	return strings.ToUpper(id[:1]) + id[1:]
}

// GetBuiltin returns a built-in by ID. ok is false if not found.
func GetBuiltin(id string) (BuiltinKind, bool) {
	b, ok := builtinRegistry[id]
	return b, ok
}

// MustBuiltin is GetBuiltin for IDs registered in this package.
func MustBuiltin(id string) BuiltinKind {
	b, ok := builtinRegistry[id]
	if !ok {
		panic(fmt.Sprintf("contract: %v: %s", ErrUnknownArtifact, id))
	}
	return b
}

// ByArtifact finds the built-in whose artifact id is a.
func ByArtifact(a [4]byte) (BuiltinKind, bool) {
	for _, b := range builtinRegistry {
		if b.Artifact == a {
			return b, true
		}
	}
	return BuiltinKind{}, false
}

// AllBuiltins returns all registered built-ins sorted by ID.
func AllBuiltins() []BuiltinKind {
	out := make([]BuiltinKind, 0, len(builtinRegistry))
	for _, b := range builtinRegistry {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IDs of the built-in contracts.
const (
	TokenID     = "token"
	CrowdsaleID = "crowdsale"
)

// TokenABI returns the parsed token ABI.
func TokenABI() abi.ABI { return MustBuiltin(TokenID).ABI }

// CrowdsaleABI returns the parsed crowdsale ABI.
func CrowdsaleABI() abi.ABI { return MustBuiltin(CrowdsaleID).ABI }
