package caster

import (
	"github.com/louisbranch/skirmish/internal/services/battle/domain/bonus"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/narrative"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/spell"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/unit"
)

// Cast narration text ids.
const (
	textCreatureCasts = 565
	textHeroCastsOn   = 195
	textHeroCasts     = 196
)

// defaultEnchantPower is the duration of creature casts without an enchant bonus.
const defaultEnchantPower = 3

// UnitCaster casts on behalf of a creature stack. Power scales with the stack
// size.
type UnitCaster struct {
	u unit.View
}

var _ Caster = (*UnitCaster)(nil)

// NewUnitCaster wraps u.
func NewUnitCaster(u unit.View) *UnitCaster {
	return &UnitCaster{u: u}
}

// Unit returns the casting unit.
func (c *UnitCaster) Unit() unit.View { return c.u }

func (c *UnitCaster) SpellSchoolLevel(mode Mode, sp *spell.Spell) (int, spell.School) {
	return clampLevel(c.u.BonusValueSubtype(bonus.Spellcaster, sp.ID)), spell.SchoolNone
}

func (c *UnitCaster) EffectLevel(mode Mode, sp *spell.Spell) int {
	level, _ := c.SpellSchoolLevel(mode, sp)
	return level
}

// EffectPower is the per-hundred creature spell power times the count.
func (c *UnitCaster) EffectPower(mode Mode, sp *spell.Spell) int {
	return c.u.BonusValue(bonus.CreatureSpellPower) * c.u.Count() / 100
}

func (c *UnitCaster) EnchantPower(mode Mode, sp *spell.Spell) int {
	if v := c.u.BonusValue(bonus.CreatureEnchantPower); v > 0 {
		return v
	}
	return defaultEnchantPower
}

func (c *UnitCaster) EffectValue(mode Mode, sp *spell.Spell) int64 {
	return int64(c.u.BonusValueSubtype(bonus.SpecificSpellPower, sp.ID)) * int64(c.u.Count())
}

func (c *UnitCaster) SpellBonus(sp *spell.Spell, base int64, target unit.View) int64 {
	return base
}

func (c *UnitCaster) SpecificSpellBonus(sp *spell.Spell, base int64) int64 {
	return base
}

// ManaCost is always zero; creatures spend charges instead.
func (c *UnitCaster) ManaCost(mode Mode, sp *spell.Spell) int { return 0 }

func (c *UnitCaster) CanCast(mode Mode, sp *spell.Spell) (bool, Reason) {
	switch mode {
	case ModeCreatureActive, ModePassive:
	default:
		return false, ReasonWrongMode
	}
	if !c.u.Alive() {
		return false, ReasonDead
	}
	if mode == ModePassive {
		return true, ReasonNone
	}
	if !c.u.HasBonusSubtype(bonus.Spellcaster, sp.ID) {
		return false, ReasonNoCapability
	}
	if c.u.CastsLeft() <= 0 {
		return false, ReasonNoCharges
	}
	return true, ReasonNone
}

func (c *UnitCaster) Owner() string     { return c.u.UnitOwner() }
func (c *UnitCaster) Side() int         { return c.u.UnitSide() }
func (c *UnitCaster) CasterUnitID() int { return c.u.UnitID() }

func (c *UnitCaster) CasterName(line *narrative.Line) {
	c.u.AddNameReplacement(line, narrative.ByCount)
}

// CastDescription renders "The %s casts %s." in the count-matching form.
func (c *UnitCaster) CastDescription(sp *spell.Spell, affected []unit.View, line *narrative.Line) {
	c.u.AddText(line, textCreatureCasts, narrative.ByCount)
	c.CasterName(line)
	line.ReplaceSpell(sp.ID)
}
