package caster

import (
	"github.com/louisbranch/skirmish/internal/services/battle/domain/battle"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/bonus"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/narrative"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/spell"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/unit"
)

// HeroCaster casts on behalf of a side's hero.
type HeroCaster struct {
	hero  *battle.Hero
	side  int
	owner string
}

var _ Caster = (*HeroCaster)(nil)

// NewHeroCaster wraps a snapshot of the side's hero.
func NewHeroCaster(side int, owner string, hero *battle.Hero) *HeroCaster {
	return &HeroCaster{hero: hero, side: side, owner: owner}
}

// SpellSchoolLevel picks the best school skill among the spell's schools.
func (c *HeroCaster) SpellSchoolLevel(mode Mode, sp *spell.Spell) (int, spell.School) {
	best, school := 0, spell.SchoolNone
	for _, s := range sp.Schools {
		if v := c.hero.Bonuses.ValueSubtype(bonus.MagicSchoolSkill, int(s)); school == spell.SchoolNone || v > best {
			best, school = v, s
		}
	}
	return clampLevel(best), school
}

func (c *HeroCaster) EffectLevel(mode Mode, sp *spell.Spell) int {
	level, _ := c.SpellSchoolLevel(mode, sp)
	return level
}

func (c *HeroCaster) EffectPower(mode Mode, sp *spell.Spell) int {
	return c.hero.Power + c.hero.Bonuses.Value(bonus.SpellPower)
}

func (c *HeroCaster) EnchantPower(mode Mode, sp *spell.Spell) int {
	return c.EffectPower(mode, sp) + c.hero.Bonuses.Value(bonus.SpellDuration)
}

func (c *HeroCaster) EffectValue(mode Mode, sp *spell.Spell) int64 { return 0 }

// SpellBonus applies the hero's general and spell-specific damage percent.
func (c *HeroCaster) SpellBonus(sp *spell.Spell, base int64, target unit.View) int64 {
	pct := int64(100 + c.hero.Bonuses.Value(bonus.SpellDamage) + c.hero.Bonuses.ValueSubtype(bonus.SpecificSpellDamage, sp.ID))
	return base * pct / 100
}

func (c *HeroCaster) SpecificSpellBonus(sp *spell.Spell, base int64) int64 {
	pct := int64(100 + c.hero.Bonuses.ValueSubtype(bonus.SpecificSpellDamage, sp.ID))
	return base * pct / 100
}

// ManaCost is the tier cost minus mana reduction, never negative.
func (c *HeroCaster) ManaCost(mode Mode, sp *spell.Spell) int {
	cost := sp.LevelInfo(c.EffectLevel(mode, sp)).Cost - c.hero.Bonuses.Value(bonus.ManaReduction)
	if cost < 0 {
		return 0
	}
	return cost
}

func (c *HeroCaster) CanCast(mode Mode, sp *spell.Spell) (bool, Reason) {
	if mode != ModeHero {
		return false, ReasonWrongMode
	}
	if c.hero == nil {
		return false, ReasonNoCapability
	}
	if !c.hero.Knows(sp.ID) {
		return false, ReasonSpellUnknown
	}
	if c.hero.CastThisRound {
		return false, ReasonAlreadyCast
	}
	if c.hero.Mana < c.ManaCost(mode, sp) {
		return false, ReasonNoMana
	}
	return true, ReasonNone
}

func (c *HeroCaster) Owner() string     { return c.owner }
func (c *HeroCaster) Side() int         { return c.side }
func (c *HeroCaster) CasterUnitID() int { return NoUnit }

func (c *HeroCaster) CasterName(line *narrative.Line) {
	line.ReplaceRaw(c.hero.Name)
}

// CastDescription names the target when exactly one unit was affected.
func (c *HeroCaster) CastDescription(sp *spell.Spell, affected []unit.View, line *narrative.Line) {
	if len(affected) == 1 {
		line.AddText(textHeroCastsOn)
		c.CasterName(line)
		line.ReplaceSpell(sp.ID)
		affected[0].AddNameReplacement(line, narrative.ByCount)
		return
	}
	line.AddText(textHeroCasts)
	c.CasterName(line)
	line.ReplaceSpell(sp.ID)
}
