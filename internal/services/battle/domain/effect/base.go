package effect

import (
	"sort"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/bonus"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/hex"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/unit"
)

// baseEffect carries the fields every effect shares.
type baseEffect struct {
	level    int
	indirect bool
	optional bool
	schema   Schema
}

func newBaseEffect(level int) baseEffect {
	return baseEffect{level: level}
}

// bind registers the shared fields. It must be called on the final address
// of the effect.
func (e *baseEffect) bind() {
	e.schema.Bool("indirect", &e.indirect, false)
	e.schema.Bool("optional", &e.optional, false)
}

func (e *baseEffect) Level() int      { return e.level }
func (e *baseEffect) Indirect() bool  { return e.indirect }
func (e *baseEffect) Optional() bool  { return e.optional }
func (e *baseEffect) Schema() *Schema { return &e.schema }

type receptiveFunc func(m *Mechanics, u unit.View) bool

// unitEffect is the shared behavior of effects acting on units.
type unitEffect struct {
	baseEffect
	chainLength    int
	chainFactor    float64
	ignoreImmunity bool
}

func (e *unitEffect) bind() {
	e.baseEffect.bind()
	e.schema.Int("chainLength", &e.chainLength, 0)
	e.schema.Float("chainFactor", &e.chainFactor, 0)
	e.schema.Bool("ignoreImmunity", &e.ignoreImmunity, false)
}

// chained reports whether targets are picked by chain hopping.
func (e *unitEffect) chained() bool { return e.chainLength > 1 }

// isReceptive is the default unit filter: living units without a matching
// elemental, spell-specific or level-based immunity.
func (e *unitEffect) isReceptive(m *Mechanics, u unit.View) bool {
	if u == nil || !u.Alive() {
		return false
	}
	if e.ignoreImmunity {
		return true
	}
	for _, t := range m.ElementalImmunity() {
		if u.HasBonusSubtype(t, bonus.ImmunityAll) {
			return false
		}
		if !m.IsPositive() && u.HasBonusSubtype(t, bonus.ImmunityHarmful) {
			return false
		}
	}
	if u.HasBonus(bonus.LevelSpellImmunity) && m.Spell().Level <= levelImmunity(u) {
		return false
	}
	return !u.HasBonusSubtype(bonus.SpellImmunity, m.SpellID())
}

// levelImmunity returns the highest spell level the unit ignores.
func levelImmunity(u unit.View) int {
	return u.Bonuses().Max(bonus.LevelSpellImmunity)
}

// applicable reports whether any unit on the field would be affected.
func (e *unitEffect) applicable(p *Problem, m *Mechanics, receptive receptiveFunc) bool {
	for _, u := range m.Battle().AliveUnits() {
		if e.inScope(m, u) && receptive(m, u) {
			return true
		}
	}
	p.Add(ProblemNoTargets, "no unit can be affected")
	return false
}

func (e *unitEffect) applicableTarget(p *Problem, m *Mechanics, aim Target, receptive receptiveFunc) bool {
	for _, u := range e.transformTarget(m, aim, aim, receptive).Units() {
		if receptive(m, u) {
			return true
		}
	}
	p.Add(ProblemNoTargets, "no unit at the target can be affected")
	return false
}

// inScope applies the side filter of massive casts: positive spells affect
// the caster's side, negative ones the enemy and neutral ones everybody.
func (e *unitEffect) inScope(m *Mechanics, u unit.View) bool {
	switch {
	case m.IsPositive():
		return u.UnitSide() == m.CasterSide()
	case m.IsNegative():
		return u.UnitSide() != m.CasterSide()
	}
	return true
}

func (e *unitEffect) transformTarget(m *Mechanics, aim, spellTarget Target, receptive receptiveFunc) Target {
	if e.chained() {
		return e.chainTarget(m, aim, receptive)
	}
	return e.rangeTarget(m, aim, spellTarget, receptive)
}

// rangeTarget collects the receptive units covered by the cast, ordered by
// unit id.
func (e *unitEffect) rangeTarget(m *Mechanics, aim, spellTarget Target, receptive receptiveFunc) Target {
	picked := map[int]unit.View{}
	pick := func(u unit.View) {
		if u != nil && receptive(m, u) {
			picked[u.UnitID()] = u
		}
	}

	switch {
	case m.IsMassive():
		for _, u := range m.Battle().AliveUnits() {
			if e.inScope(m, u) {
				pick(u)
			}
		}
	case m.Radius() > 0:
		center := aim.aimHex()
		if !center.Valid() {
			return nil
		}
		for _, u := range m.Battle().AliveUnits() {
			for _, h := range u.Hexes() {
				if hex.Distance(center, h) <= m.Radius() {
					pick(u)
					break
				}
			}
		}
	default:
		for _, d := range spellTarget {
			if d.HasUnit() {
				if u, ok := m.Battle().Unit(d.Unit.UnitID()); ok {
					pick(u)
				}
				continue
			}
			if u, ok := m.Battle().UnitAt(d.Hex); ok {
				pick(u)
			}
		}
	}

	ids := make([]int, 0, len(picked))
	for id := range picked {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make(Target, 0, len(ids))
	for _, id := range ids {
		out = append(out, UnitDestination(picked[id]))
	}
	return out
}

// chainTarget hops from the aimed unit to the closest remaining unit until
// chainLength units were visited. Non-receptive units keep their index as
// placeholders so falloff stays aligned with the hop count.
func (e *unitEffect) chainTarget(m *Mechanics, aim Target, receptive receptiveFunc) Target {
	dest := aim.aimHex()
	if !dest.Valid() {
		return nil
	}
	candidates := map[hex.Hex]bool{}
	for _, u := range m.Battle().AliveUnits() {
		for _, h := range u.Hexes() {
			candidates[h] = true
		}
	}

	var out Target
	for i := 0; i < e.chainLength && dest.Valid(); i++ {
		u, ok := m.Battle().UnitAt(dest)
		if !ok {
			break
		}
		if receptive(m, u) {
			out = append(out, UnitDestination(u))
		} else {
			out = append(out, Placeholder())
		}
		for _, h := range u.Hexes() {
			delete(candidates, h)
		}
		if len(candidates) == 0 {
			break
		}
		dest = closestHex(dest, candidates)
	}
	return out
}

func closestHex(from hex.Hex, candidates map[hex.Hex]bool) hex.Hex {
	best := hex.Invalid
	bestDist := 0
	for h := range candidates {
		d := hex.Distance(from, h)
		if !best.Valid() || d < bestDist || (d == bestDist && h < best) {
			best, bestDist = h, d
		}
	}
	return best
}

// locationEffect acts on hexes; the spell target is used as given.
type locationEffect struct {
	baseEffect
}

func (e *locationEffect) IsReceptive(m *Mechanics, u unit.View) bool { return true }

func (e *locationEffect) TransformTarget(m *Mechanics, aim, spellTarget Target) Target {
	return spellTarget
}

// globalEffect acts on the battlefield as a whole and takes no target.
type globalEffect struct {
	baseEffect
}

func (e *globalEffect) IsReceptive(m *Mechanics, u unit.View) bool { return true }

func (e *globalEffect) TransformTarget(m *Mechanics, aim, spellTarget Target) Target {
	return Target{}
}
