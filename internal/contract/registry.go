package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ErrContractNotFound is returned when a deployment is not found.
var ErrContractNotFound = errors.New("contract not found")

// Deployment is a token and the sale that distributes it.
type Deployment struct {
	Name       string         `json:"name"`
	Token      common.Address `json:"token"`
	Sale       common.Address `json:"sale"`
	Deployer   common.Address `json:"deployer"`
	Block      uint64         `json:"block"`
	DeployedAt time.Time      `json:"deployed_at"`
}

// Registry stores deployments by name.
type Registry struct {
	path        string
	deployments map[string]*Deployment
}

// NewRegistry creates a Registry backed by a JSON file.
func NewRegistry(path string) *Registry {
	return &Registry{
		path:        path,
		deployments: make(map[string]*Deployment),
	}
}

// Load reads stored deployments from disk.
func (r *Registry) Load() error {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var entries []Deployment
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	for i := range entries {
		d := &entries[i]
		r.deployments[d.Name] = d
	}
	return nil
}

// Save writes all deployments to disk.
func (r *Registry) Save() error {
	data, err := json.MarshalIndent(r.All(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0o600)
}

// Add adds or replaces a deployment.
func (r *Registry) Add(d *Deployment) {
	r.deployments[d.Name] = d
}

// Get returns a deployment by name.
func (r *Registry) Get(name string) (*Deployment, error) {
	d, ok := r.deployments[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContractNotFound, name)
	}
	return d, nil
}

// BySale finds the deployment whose sale lives at addr.
func (r *Registry) BySale(addr common.Address) (*Deployment, error) {
	for _, d := range r.deployments {
		if d.Sale == addr {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: sale %s", ErrContractNotFound, addr.Hex())
}

// All returns every deployment sorted by name.
func (r *Registry) All() []*Deployment {
	out := make([]*Deployment, 0, len(r.deployments))
	for _, d := range r.deployments {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Remove deletes a deployment.
func (r *Registry) Remove(name string) error {
	if _, ok := r.deployments[name]; !ok {
		return fmt.Errorf("%w: %s", ErrContractNotFound, name)
	}
	delete(r.deployments, name)
	return nil
}
