package powerups

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tank-arena/server/internal/state"
)

//go:embed configs/rewards.json
var embeddedCatalog []byte

// ErrEmptyCatalog is returned when a reward document defines no rewards.
var ErrEmptyCatalog = errors.New("powerups: catalog has no rewards")

var bundledCatalog = mustParseCatalog(embeddedCatalog)

// Definition describes one reward type as it appears on the map.
type Definition struct {
	Kind      state.RewardKind `json:"type"`
	Color     string           `json:"color"`
	Duration  float64          `json:"duration"`
	Radius    float64          `json:"radius"`
	Stackable bool             `json:"stackable"`
}

// Catalog indexes reward definitions by kind.
type Catalog map[state.RewardKind]Definition

type catalogDocument struct {
	Rewards []Definition `json:"rewards"`
}

// DefaultCatalog returns a copy of the bundled reward definitions. Health
// packs are instant, so their duration is zero.
func DefaultCatalog() Catalog {
	out := make(Catalog, len(bundledCatalog))
	for kind, def := range bundledCatalog {
		out[kind] = def
	}
	return out
}

// ParseCatalog decodes a reward document. Every kind must be known and
// appear once.
func ParseCatalog(data []byte) (Catalog, error) {
	var doc catalogDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("powerups: decode catalog: %w", err)
	}
	if len(doc.Rewards) == 0 {
		return nil, ErrEmptyCatalog
	}
	catalog := make(Catalog, len(doc.Rewards))
	for _, def := range doc.Rewards {
		kind, ok := state.ParseRewardKind(string(def.Kind))
		if !ok {
			return nil, fmt.Errorf("powerups: unknown reward type %q", def.Kind)
		}
		if _, dup := catalog[kind]; dup {
			return nil, fmt.Errorf("powerups: reward type %q defined twice", kind)
		}
		if def.Radius <= 0 || def.Duration < 0 {
			return nil, fmt.Errorf("powerups: reward %q needs a positive radius and non-negative duration", kind)
		}
		def.Kind = kind
		catalog[kind] = def
	}
	return catalog, nil
}

func mustParseCatalog(data []byte) Catalog {
	catalog, err := ParseCatalog(data)
	if err != nil {
		panic(fmt.Errorf("powerups: load embedded catalog: %w", err))
	}
	return catalog
}

// Lookup returns the definition for kind, falling back to the bundled catalog.
func (c Catalog) Lookup(kind state.RewardKind) (Definition, bool) {
	if def, ok := c[kind]; ok {
		return def, true
	}
	def, ok := bundledCatalog[kind]
	return def, ok
}

// NewReward instantiates a reward of the given definition at (x, y).
func (d Definition) NewReward(x, y float64, spawnedAt time.Time) *state.Reward {
	return &state.Reward{
		Kind:      d.Kind,
		X:         x,
		Y:         y,
		Color:     d.Color,
		Radius:    d.Radius,
		Duration:  d.Duration,
		Stackable: d.Stackable,
		SpawnedAt: spawnedAt,
	}
}
