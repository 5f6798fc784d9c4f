// Package tier handles loading and lookup of subscription tier definitions.
package tier

import (
	"embed"
	"fmt"

	"github.com/reasonforge/reasonforge/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed builtin/tiers.yaml
var builtinFS embed.FS

// Definition describes a subscription tier and its credit caps.
type Definition struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	MaxBasic    int    `yaml:"max_basic"`
	MaxAdvanced int    `yaml:"max_advanced"`
}

// Catalog holds all known tier definitions in declaration order.
type Catalog struct {
	Tiers []Definition `yaml:"tiers"`
}

// LoadBuiltin parses the embedded tier catalog.
func LoadBuiltin() (*Catalog, error) {
	data, err := builtinFS.ReadFile("builtin/tiers.yaml")
	if err != nil {
		return nil, fmt.Errorf("tier.LoadBuiltin: read catalog: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("tier.LoadBuiltin: parse catalog: %w", err)
	}
	if len(c.Tiers) == 0 {
		return nil, fmt.Errorf("tier.LoadBuiltin: catalog is empty")
	}
	return &c, nil
}

// Lookup returns the definition for the given tier id.
func (c *Catalog) Lookup(id string) (Definition, bool) {
	for _, t := range c.Tiers {
		if t.ID == id {
			return t, true
		}
	}
	return Definition{}, false
}

// Default returns the tier assigned to new accounts.
func (c *Catalog) Default() Definition {
	if d, ok := c.Lookup(string(domain.TierFree)); ok {
		return d
	}
	return c.Tiers[0]
}
