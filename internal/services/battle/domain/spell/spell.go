// Package spell defines spell definitions and the per-mastery data effects
// are compiled from.
package spell

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/bonus"
)

// Spell ids the engine refers to by name.
const (
	Fireball            = 11
	MagicArrow          = 15
	LightningBolt       = 17
	ChainLightning      = 19
	RemoveObstacle      = 64
	SummonFireElemental = 66
	Thunderbolt         = 74
)

// School is a magic school.
type School int

// SchoolNone marks a level not tied to any school.
const SchoolNone School = -1

const (
	Air School = iota
	Fire
	Water
	Earth
)

// String returns the school name.
func (s School) String() string {
	switch s {
	case Air:
		return "air"
	case Fire:
		return "fire"
	case Water:
		return "water"
	case Earth:
		return "earth"
	case SchoolNone:
		return "none"
	}
	return fmt.Sprintf("school(%d)", int(s))
}

// Immunity returns the elemental immunity bonus type for the school.
func (s School) Immunity() bonus.Type {
	switch s {
	case Air:
		return bonus.AirImmunity
	case Fire:
		return bonus.FireImmunity
	case Water:
		return bonus.WaterImmunity
	case Earth:
		return bonus.EarthImmunity
	}
	return ""
}

// Positivity classifies whether a spell helps or harms its targets.
type Positivity int

const (
	Negative Positivity = -1
	Neutral  Positivity = 0
	Positive Positivity = 1
)

// Mastery tiers index LevelInfo.
const (
	MasteryNone = iota
	MasteryBasic
	MasteryAdvanced
	MasteryExpert
	MasteryCount
)

// LevelInfo holds the data for one mastery tier.
type LevelInfo struct {
	Cost    int                        `json:"cost"`
	Power   int64                      `json:"power"`
	Radius  int                        `json:"radius,omitempty"`
	Massive bool                       `json:"massive,omitempty"`
	Effects map[string]json.RawMessage `json:"effects,omitempty"`
}

// Spell is one spell definition.
type Spell struct {
	ID         int                     `json:"id"`
	Name       string                  `json:"name"`
	Level      int                     `json:"level"`
	Schools    []School                `json:"schools"`
	Positivity Positivity              `json:"positivity"`
	Power      int64                   `json:"power"`
	Creature   bool                    `json:"creature_ability,omitempty"`
	Levels     [MasteryCount]LevelInfo `json:"levels"`
}

// IsPositive reports whether the spell is beneficial.
func (s *Spell) IsPositive() bool {
	return s.Positivity == Positive
}

// IsNegative reports whether the spell is harmful.
func (s *Spell) IsNegative() bool {
	return s.Positivity == Negative
}

// LevelInfo returns the data for a mastery tier, clamped to the valid range.
func (s *Spell) LevelInfo(level int) LevelInfo {
	return s.Levels[clampLevel(level)]
}

// RawEffectValue returns the unadjusted magnitude for a mastery tier and power.
func (s *Spell) RawEffectValue(effectLevel, effectPower int) int64 {
	return int64(effectPower)*s.Power + s.LevelInfo(effectLevel).Power
}

// ElementalImmunity lists the immunity bonus types matching the spell's schools.
func (s *Spell) ElementalImmunity() []bonus.Type {
	out := make([]bonus.Type, 0, len(s.Schools))
	for _, school := range s.Schools {
		if t := school.Immunity(); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Validate checks the spell definition.
func (s *Spell) Validate() error {
	if s.ID < 0 {
		return errors.New("spell id must be non-negative")
	}
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("spell name is required")
	}
	if s.Level < 1 || s.Level > 5 {
		return fmt.Errorf("spell level %d out of range", s.Level)
	}
	switch s.Positivity {
	case Negative, Neutral, Positive:
	default:
		return fmt.Errorf("spell positivity %d is invalid", s.Positivity)
	}
	for _, school := range s.Schools {
		if school < Air || school > Earth {
			return fmt.Errorf("spell school %d is invalid", school)
		}
	}
	return nil
}

func clampLevel(level int) int {
	if level < MasteryNone {
		return MasteryNone
	}
	if level >= MasteryCount {
		return MasteryCount - 1
	}
	return level
}

// Book is an immutable collection of spells indexed by id.
type Book struct {
	byID map[int]*Spell
}

// NewBook validates and indexes spells.
func NewBook(spells []Spell) (*Book, error) {
	b := &Book{byID: make(map[int]*Spell, len(spells))}
	for i := range spells {
		sp := spells[i]
		if err := sp.Validate(); err != nil {
			return nil, fmt.Errorf("spell %d: %w", sp.ID, err)
		}
		if _, exists := b.byID[sp.ID]; exists {
			return nil, fmt.Errorf("spell %d: duplicate id", sp.ID)
		}
		b.byID[sp.ID] = &sp
	}
	return b, nil
}

// Spell returns the spell with the given id.
func (b *Book) Spell(id int) (*Spell, bool) {
	if b == nil {
		return nil, false
	}
	sp, ok := b.byID[id]
	return sp, ok
}

// All returns the spells ordered by id.
func (b *Book) All() []*Spell {
	if b == nil {
		return nil
	}
	out := make([]*Spell, 0, len(b.byID))
	for _, sp := range b.byID {
		out = append(out, sp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
