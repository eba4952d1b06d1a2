// Package creature defines creature types and the catalog that resolves them.
package creature

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/bonus"
)

var (
	// ErrCreatureIDInvalid indicates a negative creature id.
	ErrCreatureIDInvalid = errors.New("creature id must be non-negative")
	// ErrCreatureNameRequired indicates a creature without names.
	ErrCreatureNameRequired = errors.New("creature names are required")
	// ErrCreatureHealthInvalid indicates a creature with no health.
	ErrCreatureHealthInvalid = errors.New("creature max health must be positive")
	// ErrCreatureDamageInvalid indicates an inverted or negative damage range.
	ErrCreatureDamageInvalid = errors.New("creature damage range is invalid")
)

// Creature is one creature type.
type Creature struct {
	ID           int        `json:"id"`
	NameSingular string     `json:"name_singular"`
	NamePlural   string     `json:"name_plural"`
	Level        int        `json:"level"`
	MaxHealth    int        `json:"max_health"`
	Attack       int        `json:"attack"`
	Defence      int        `json:"defence"`
	MinDamage    int        `json:"min_damage"`
	MaxDamage    int        `json:"max_damage"`
	Speed        int        `json:"speed"`
	Shots        int        `json:"shots,omitempty"`
	Casts        int        `json:"casts,omitempty"`
	Shooter      bool       `json:"shooter,omitempty"`
	DoubleWide   bool       `json:"double_wide,omitempty"`
	WarMachine   bool       `json:"war_machine,omitempty"`
	Bonuses      bonus.List `json:"bonuses,omitempty"`
}

// Name returns the singular or plural name.
func (c Creature) Name(plural bool) string {
	if plural {
		return c.NamePlural
	}
	return c.NameSingular
}

// Validate checks the creature definition.
func (c Creature) Validate() error {
	if c.ID < 0 {
		return ErrCreatureIDInvalid
	}
	if strings.TrimSpace(c.NameSingular) == "" || strings.TrimSpace(c.NamePlural) == "" {
		return ErrCreatureNameRequired
	}
	if c.MaxHealth <= 0 {
		return ErrCreatureHealthInvalid
	}
	if c.MinDamage < 0 || c.MaxDamage < c.MinDamage {
		return ErrCreatureDamageInvalid
	}
	return nil
}

// Lookup resolves creature types by id.
type Lookup interface {
	Creature(id int) (Creature, bool)
}

// Catalog is an immutable set of creature types.
type Catalog struct {
	byID map[int]Creature
}

// NewCatalog validates and indexes the given creatures.
func NewCatalog(creatures []Creature) (*Catalog, error) {
	c := &Catalog{byID: make(map[int]Creature, len(creatures))}
	for _, cr := range creatures {
		if err := cr.Validate(); err != nil {
			return nil, fmt.Errorf("creature %d: %w", cr.ID, err)
		}
		if _, exists := c.byID[cr.ID]; exists {
			return nil, fmt.Errorf("creature %d: duplicate id", cr.ID)
		}
		cr.Bonuses = append(bonus.List(nil), cr.Bonuses...)
		c.byID[cr.ID] = cr
	}
	return c, nil
}

// Creature returns the creature with the given id.
func (c *Catalog) Creature(id int) (Creature, bool) {
	if c == nil {
		return Creature{}, false
	}
	cr, ok := c.byID[id]
	return cr, ok
}

// All returns every creature ordered by id.
func (c *Catalog) All() []Creature {
	if c == nil {
		return nil
	}
	out := make([]Creature, 0, len(c.byID))
	for _, cr := range c.byID {
		out = append(out, cr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
