// Package caster defines what it takes to cast a spell: school level, power,
// cost, bonus adjustment and cast narration. Creature stacks and side heroes
// implement the contract.
package caster

import (
	"github.com/louisbranch/skirmish/internal/services/battle/domain/narrative"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/spell"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/unit"
)

// Mode is how a spell is being cast.
type Mode string

const (
	// ModeHero is a hero casting from the spellbook.
	ModeHero Mode = "hero"
	// ModeCreatureActive is a creature using one of its cast charges.
	ModeCreatureActive Mode = "creature_active"
	// ModePassive is an innate ability triggering on its own.
	ModePassive Mode = "passive"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeHero, ModeCreatureActive, ModePassive:
		return true
	}
	return false
}

// Reason explains why a caster cannot cast.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonNoCapability Reason = "no_capability"
	ReasonWrongMode    Reason = "wrong_mode"
	ReasonDead         Reason = "caster_dead"
	ReasonSpellUnknown Reason = "spell_unknown"
	ReasonNoCharges    Reason = "no_charges"
	ReasonNoMana       Reason = "insufficient_mana"
	ReasonAlreadyCast  Reason = "already_cast"
)

// Caster is anything able to cast a spell.
type Caster interface {
	// SpellSchoolLevel returns the mastery tier used for sp and the school
	// that granted it, or spell.SchoolNone.
	SpellSchoolLevel(mode Mode, sp *spell.Spell) (int, spell.School)
	EffectLevel(mode Mode, sp *spell.Spell) int
	EffectPower(mode Mode, sp *spell.Spell) int
	EnchantPower(mode Mode, sp *spell.Spell) int
	// EffectValue overrides the level and power scaling when non-zero.
	EffectValue(mode Mode, sp *spell.Spell) int64
	SpellBonus(sp *spell.Spell, base int64, target unit.View) int64
	SpecificSpellBonus(sp *spell.Spell, base int64) int64
	ManaCost(mode Mode, sp *spell.Spell) int
	CanCast(mode Mode, sp *spell.Spell) (bool, Reason)

	Owner() string
	Side() int
	// CasterUnitID is the casting unit, or -1 for heroes.
	CasterUnitID() int
	CasterName(line *narrative.Line)
	CastDescription(sp *spell.Spell, affected []unit.View, line *narrative.Line)
}

// NoUnit is the caster unit id of a hero.
const NoUnit = -1

func clampLevel(level int) int {
	if level < spell.MasteryNone {
		return spell.MasteryNone
	}
	if level > spell.MasteryExpert {
		return spell.MasteryExpert
	}
	return level
}
