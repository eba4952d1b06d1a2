package effect

import (
	"errors"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/battle"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/bonus"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/caster"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/creature"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/spell"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/unit"
)

// MechanicsConfig holds the collaborators of one cast.
type MechanicsConfig struct {
	Caster    caster.Caster
	Spell     *spell.Spell
	Mode      caster.Mode
	Battle    battle.View
	Creatures creature.Lookup
}

// Mechanics is the read-only context of one cast. Every derived value is
// computed once when the cast starts.
type Mechanics struct {
	caster    caster.Caster
	spell     *spell.Spell
	mode      caster.Mode
	battle    battle.View
	creatures creature.Lookup

	level   int
	school  spell.School
	power   int
	enchant int
	value   int64
}

// NewMechanics validates cfg and snapshots the caster numbers.
func NewMechanics(cfg MechanicsConfig) (*Mechanics, error) {
	if cfg.Caster == nil {
		return nil, errors.New("caster is required")
	}
	if cfg.Spell == nil {
		return nil, errors.New("spell is required")
	}
	if cfg.Battle == nil {
		return nil, errors.New("battle view is required")
	}
	if !cfg.Mode.Valid() {
		return nil, errors.New("cast mode is invalid")
	}
	m := &Mechanics{
		caster:    cfg.Caster,
		spell:     cfg.Spell,
		mode:      cfg.Mode,
		battle:    cfg.Battle,
		creatures: cfg.Creatures,
	}
	m.level, m.school = cfg.Caster.SpellSchoolLevel(cfg.Mode, cfg.Spell)
	m.level = cfg.Caster.EffectLevel(cfg.Mode, cfg.Spell)
	m.power = cfg.Caster.EffectPower(cfg.Mode, cfg.Spell)
	m.enchant = cfg.Caster.EnchantPower(cfg.Mode, cfg.Spell)
	m.value = cfg.Caster.EffectValue(cfg.Mode, cfg.Spell)
	return m, nil
}

func (m *Mechanics) Caster() caster.Caster      { return m.caster }
func (m *Mechanics) Spell() *spell.Spell        { return m.spell }
func (m *Mechanics) SpellID() int               { return m.spell.ID }
func (m *Mechanics) Mode() caster.Mode          { return m.mode }
func (m *Mechanics) Battle() battle.View        { return m.battle }
func (m *Mechanics) Creatures() creature.Lookup { return m.creatures }
func (m *Mechanics) CasterSide() int            { return m.caster.Side() }
func (m *Mechanics) CasterOwner() string        { return m.caster.Owner() }
func (m *Mechanics) EffectLevel() int           { return m.level }
func (m *Mechanics) School() spell.School       { return m.school }
func (m *Mechanics) EffectPower() int           { return m.power }
func (m *Mechanics) EnchantPower() int          { return m.enchant }
func (m *Mechanics) EffectValue() int64         { return m.value }
func (m *Mechanics) IsPositive() bool           { return m.spell.IsPositive() }
func (m *Mechanics) IsNegative() bool           { return m.spell.IsNegative() }

// IsMassive reports whether the cast tier affects the whole field.
func (m *Mechanics) IsMassive() bool { return m.spell.LevelInfo(m.level).Massive }

// Radius is the area radius of the cast tier.
func (m *Mechanics) Radius() int { return m.spell.LevelInfo(m.level).Radius }

// ElementalImmunity lists the immunity bonus types that can block the spell.
func (m *Mechanics) ElementalImmunity() []bonus.Type { return m.spell.ElementalImmunity() }

// CalculateRawEffectValue scales the spell's base power and tier power by the
// given multipliers.
func (m *Mechanics) CalculateRawEffectValue(basePowerMultiplier, levelPowerMultiplier int) int64 {
	return int64(basePowerMultiplier)*m.spell.Power + int64(levelPowerMultiplier)*m.spell.LevelInfo(m.level).Power
}

// RawEffectValue is the caster override when set, else the tier value for
// the caster's power.
func (m *Mechanics) RawEffectValue() int64 {
	if m.value != 0 {
		return m.value
	}
	return m.spell.RawEffectValue(m.level, m.power)
}

// AdjustEffectValue applies target protections, target vulnerabilities and
// caster bonuses to the raw effect value, in that order. Only the first
// matching school reduction counts.
func (m *Mechanics) AdjustEffectValue(target unit.View) int64 {
	v := m.RawEffectValue()
	if target != nil {
		for _, school := range m.spell.Schools {
			if target.HasBonusSubtype(bonus.SpellDamageReduction, int(school)) {
				v = v * int64(100-target.BonusValueSubtype(bonus.SpellDamageReduction, int(school))) / 100
				break
			}
		}
		if target.HasBonusSubtype(bonus.SpellDamageReduction, -1) {
			v = v * int64(100-target.BonusValueSubtype(bonus.SpellDamageReduction, -1)) / 100
		}
		if target.HasBonusSubtype(bonus.MoreDamageFromSpell, m.spell.ID) {
			v = v * int64(100+target.BonusValueSubtype(bonus.MoreDamageFromSpell, m.spell.ID)) / 100
		}
	}
	return m.caster.SpellBonus(m.spell, v, target)
}

// ApplySpecificBonus applies the caster's spell-specific bonus to v.
func (m *Mechanics) ApplySpecificBonus(v int64) int64 {
	return m.caster.SpecificSpellBonus(m.spell, v)
}
