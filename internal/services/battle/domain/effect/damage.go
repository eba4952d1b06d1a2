package effect

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/battle"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/bonus"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/narrative"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/spell"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/unit"
)

// TypeDamage is the registry name of Damage.
const TypeDamage = "core:damage"

// General text ids used by damage narration.
const (
	textCreature      = 42
	textCreatures     = 43
	textDoesDamage    = 343
	textThunderbolt   = -367
	textSpellDamage   = 376
	textOnePerishes   = 378
	textSeveralPerish = 379
	noCustomEffect    = -1
)

// Damage deals spell damage to units.
type Damage struct {
	unitEffect
	customEffectID int
}

// NewDamage returns a damage effect for a mastery level.
func NewDamage(level int) *Damage {
	e := &Damage{unitEffect: unitEffect{baseEffect: newBaseEffect(level)}}
	e.unitEffect.bind()
	e.schema.Int("customEffectId", &e.customEffectID, noCustomEffect)
	return e
}

func (e *Damage) Type() string { return TypeDamage }

// IsReceptive extends the default filter: harmful damage also skips units
// immune to damage of the spell's element.
func (e *Damage) IsReceptive(m *Mechanics, u unit.View) bool {
	if !e.isReceptive(m, u) {
		return false
	}
	if e.ignoreImmunity || m.IsPositive() {
		return true
	}
	for _, t := range m.ElementalImmunity() {
		if u.HasBonusSubtype(t, bonus.ImmunityDamage) {
			return false
		}
	}
	return true
}

func (e *Damage) Applicable(p *Problem, m *Mechanics) bool {
	return e.applicable(p, m, e.IsReceptive)
}

func (e *Damage) ApplicableTarget(p *Problem, m *Mechanics, aim, target Target) bool {
	return e.applicableTarget(p, m, aim, e.IsReceptive)
}

func (e *Damage) TransformTarget(m *Mechanics, aim, spellTarget Target) Target {
	return e.transformTarget(m, aim, spellTarget, e.IsReceptive)
}

// Apply submits one injury batch when at least one target was hit.
func (e *Damage) Apply(ctx context.Context, proxy StateProxy, rng *rand.Rand, m *Mechanics, target Target) error {
	injured := e.PrepareEffects(rng, m, target, proxy.Describe())
	if len(injured.Attacks) == 0 {
		return nil
	}
	if err := proxy.Submit(ctx, injured); err != nil {
		return fmt.Errorf("submit damage: %w", err)
	}
	return nil
}

// PrepareEffects computes the outcome of the effect against target in
// order. Entries without a living unit and repeats of an earlier unit are
// skipped but still advance the chain index. With describe set, one
// narration set is added when positive damage was dealt.
func (e *Damage) PrepareEffects(rng *rand.Rand, m *Mechanics, target Target, describe bool) battle.UnitsInjured {
	injured := battle.UnitsInjured{SpellID: m.SpellID(), AttackerID: unit.NoAttacker}

	var (
		first    unit.View
		multiple bool
		total    int64
		kills    int
	)
	hit := make(map[int]bool, len(target))
	for index, d := range target {
		if !d.HasUnit() || !d.Unit.Alive() || hit[d.Unit.UnitID()] {
			continue
		}
		u := d.Unit
		hit[u.UnitID()] = true
		attacked := unit.Attacked{
			StackAttacked: u.UnitID(),
			AttackerID:    unit.NoAttacker,
			DamageAmount:  e.damageForTarget(index, m, u),
		}
		unit.PrepareAttacked(&attacked, rng, u.Acquire())
		if describe {
			if first == nil {
				first = u
			} else {
				multiple = true
			}
			total += attacked.DamageAmount
			kills += attacked.KilledAmount
		}
		if e.customEffectID > noCustomEffect {
			attacked.EffectID = e.customEffectID
			attacked.Flags |= unit.FlagEffect
		}
		injured.Attacks = append(injured.Attacks, attacked)
	}

	if describe && first != nil && total > 0 {
		injured.Log = e.describe(m, first, kills, total, multiple)
	}
	return injured
}

// damageForTarget applies chain falloff: the primary target takes the full
// adjusted value, the i-th hop takes it scaled by chainFactor^i.
func (e *Damage) damageForTarget(index int, m *Mechanics, u unit.View) int64 {
	base := m.AdjustEffectValue(u)
	if e.chained() && index > 0 {
		return int64(math.Round(float64(base) * math.Pow(e.chainFactor, float64(index))))
	}
	return base
}

func (e *Damage) describe(m *Mechanics, first unit.View, kills int, damage int64, multiple bool) []narrative.Line {
	if m.SpellID() == spell.Thunderbolt && !multiple {
		var struck narrative.Line
		first.AddText(&struck, textThunderbolt, narrative.Plural)
		first.AddNameReplacement(&struck, narrative.Plural)

		var dealt narrative.Line
		dealt.AddTrimmedText(textDoesDamage)
		dealt.ReplaceNumber(damage)
		return []narrative.Line{struck, dealt}
	}

	var dealt narrative.Line
	dealt.AddText(textSpellDamage)
	dealt.ReplaceSpell(m.SpellID())
	dealt.ReplaceNumber(damage)
	lines := []narrative.Line{dealt}
	if kills == 0 {
		return lines
	}

	var perish narrative.Line
	if kills > 1 {
		perish.AddText(textSeveralPerish)
		perish.ReplaceNumber(int64(kills))
		if multiple {
			perish.ReplaceText(textCreatures)
		} else {
			first.AddNameReplacement(&perish, narrative.Plural)
		}
	} else {
		perish.AddText(textOnePerishes)
		if multiple {
			perish.ReplaceText(textCreature)
		} else {
			first.AddNameReplacement(&perish, narrative.Singular)
		}
	}
	return append(lines, perish)
}
