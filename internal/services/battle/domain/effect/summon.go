package effect

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/battle"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/caster"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/creature"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/roster"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/unit"
)

// TypeSummon is the registry name of Summon.
const TypeSummon = "core:summon"

// Summon brings a new creature stack into battle.
type Summon struct {
	globalEffect
	creatureID int
	permanent  bool
	exclusive  bool
}

// NewSummon returns a summon effect for a mastery level.
func NewSummon(level int) *Summon {
	e := &Summon{globalEffect: globalEffect{baseEffect: newBaseEffect(level)}}
	e.bind()
	e.schema.Int("id", &e.creatureID, -1)
	e.schema.Bool("permanent", &e.permanent, false)
	e.schema.Bool("exclusive", &e.exclusive, true)
	return e
}

func (e *Summon) Type() string { return TypeSummon }

// CreatureID is the summoned creature type.
func (e *Summon) CreatureID() int { return e.creatureID }

func (e *Summon) Applicable(p *Problem, m *Mechanics) bool {
	if m.Mode() == caster.ModePassive {
		p.Add(ProblemInvalidCastMode, "summons cannot trigger passively")
		return false
	}
	if _, ok := e.creature(m); !ok {
		p.Add(ProblemNoCreature, fmt.Sprintf("creature %d is not available", e.creatureID))
		return false
	}
	if e.amount(m) < 1 {
		p.Add(ProblemSummonAmount, "caster is too weak to summon anything")
		return false
	}
	if e.exclusive {
		for _, u := range m.Battle().AliveUnits() {
			if e.ownSummon(m, u) && u.Creature().ID != e.creatureID {
				p.Add(ProblemSummonConflict, "a different creature is already summoned")
				return false
			}
		}
	}
	if len(e.TransformTarget(m, nil, nil)) == 0 {
		p.Add(ProblemNoFreeHex, "no free hex to summon to")
		return false
	}
	return true
}

func (e *Summon) ApplicableTarget(p *Problem, m *Mechanics, aim, target Target) bool {
	return e.Applicable(p, m)
}

// TransformTarget picks the stack an exclusive summon replaces, or the free
// hex closest to the caster's deployment origin.
func (e *Summon) TransformTarget(m *Mechanics, aim, spellTarget Target) Target {
	if e.exclusive {
		for _, u := range m.Battle().AliveUnits() {
			if e.ownSummon(m, u) && u.Creature().ID == e.creatureID {
				return Target{UnitDestination(u)}
			}
		}
	}
	cr, ok := e.creature(m)
	if !ok {
		return Target{}
	}
	h := m.Battle().FreeHex(m.CasterSide(), cr.DoubleWide)
	if !h.Valid() {
		return Target{}
	}
	return Target{HexDestination(h)}
}

// Apply adds the summoned stack. Replaced stacks leave the battle in the
// same change. It panics when Applicable would have rejected the cast.
func (e *Summon) Apply(ctx context.Context, proxy StateProxy, rng *rand.Rand, m *Mechanics, target Target) error {
	cr, ok := e.creature(m)
	if !ok {
		panic(fmt.Sprintf("summon: creature %d is not available", e.creatureID))
	}
	amount := e.amount(m)
	if amount < 1 {
		panic(fmt.Sprintf("summon: amount %d is not positive", amount))
	}

	var changes []battle.UnitChange
	nextID := m.Battle().NextUnitID()
	for _, d := range target {
		if !d.HasUnit() && !d.Hex.Valid() {
			continue
		}
		pos := d.Hex
		if d.HasUnit() {
			changes = append(changes, battle.UnitChange{Op: battle.UnitRemoved, ID: d.Unit.UnitID()})
			pos = d.Unit.Position()
		}
		u, err := unit.New(unit.Spec{
			ID:       nextID,
			Side:     m.CasterSide(),
			Owner:    m.CasterOwner(),
			Slot:     roster.SlotSummoned,
			Type:     cr,
			Amount:   int(amount),
			Position: pos,
			Summoned: !e.permanent,
		})
		if err != nil {
			return fmt.Errorf("summon: %w", err)
		}
		changes = append(changes, battle.UnitChange{Op: battle.UnitAdded, ID: u.ID, Unit: u})
		nextID++
	}
	if len(changes) == 0 {
		return nil
	}
	if err := proxy.Submit(ctx, battle.UnitsChanged{Changes: changes}); err != nil {
		return fmt.Errorf("submit summon: %w", err)
	}
	return nil
}

// amount is the summoned stack size: effect power times the tier power,
// after the caster's spell-specific bonus.
func (e *Summon) amount(m *Mechanics) int64 {
	return m.ApplySpecificBonus(m.CalculateRawEffectValue(0, m.EffectPower()))
}

func (e *Summon) creature(m *Mechanics) (creature.Creature, bool) {
	if e.creatureID < 0 || m.Creatures() == nil {
		return creature.Creature{}, false
	}
	return m.Creatures().Creature(e.creatureID)
}

// ownSummon reports whether u is a temporary stack summoned by the caster's
// owner. Clones do not count.
func (e *Summon) ownSummon(m *Mechanics, u unit.View) bool {
	return u.UnitOwner() == m.CasterOwner() && u.IsSummoned() && !u.IsClone()
}
