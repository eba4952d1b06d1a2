package unit

import (
	"math/rand"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/bonus"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/hex"
)

// Flag marks properties of an attack outcome.
type Flag uint8

const (
	// FlagKilled marks a stack that died.
	FlagKilled Flag = 1 << iota
	// FlagSecondary marks splash or secondary targets.
	FlagSecondary
	// FlagRebirth marks a stack raised again after dying.
	FlagRebirth
	// FlagCloneKilled marks a destroyed clone.
	FlagCloneKilled
	// FlagEffect marks an outcome carrying an animation effect id.
	FlagEffect
)

// NoAttacker is the attacker id of spell damage.
const NoAttacker = -1

// Attacked is the outcome of damage dealt to one unit.
type Attacked struct {
	StackAttacked int   `json:"stack_attacked"`
	AttackerID    int   `json:"attacker_id"`
	DamageAmount  int64 `json:"damage_amount"`
	KilledAmount  int   `json:"killed_amount"`
	// PartialDamage is the damage absorbed by the front creature that
	// survived. It is zero when the stack died.
	PartialDamage int64 `json:"partial_damage"`
	Flags         Flag  `json:"flags,omitempty"`
	EffectID      int   `json:"effect_id,omitempty"`
	NewState      State `json:"new_state"`
}

func (a *Attacked) Has(f Flag) bool { return a.Flags&f != 0 }

// Killed reports whether the stack died.
func (a *Attacked) Killed() bool { return a.Has(FlagKilled) || a.Has(FlagCloneKilled) }

// PrepareAttacked fills the outcome of a.DamageAmount dealt to the working
// copy state. DamageAmount must already be set; it is clamped to the health
// the unit has left. state is mutated and its final runtime state is stored
// in a.NewState.
func PrepareAttacked(a *Attacked, rng *rand.Rand, state *Unit) {
	if a.DamageAmount < 0 {
		a.DamageAmount = 0
	}
	maxHP := state.Type.MaxHealth
	before := state.State.Health
	initialCount := before.Count()

	if state.State.Cloned {
		if a.DamageAmount > 0 {
			a.DamageAmount = state.AvailableHealth()
			state.State.Health.Reset()
		}
	} else {
		a.DamageAmount = state.State.Health.Damage(a.DamageAmount, maxHP)
	}

	a.KilledAmount = initialCount - state.State.Health.Count()
	a.PartialDamage = partialDamage(a.DamageAmount, a.KilledAmount, before.FirstHPLeft, maxHP, state.Alive())

	switch {
	case !state.Alive() && state.State.Cloned:
		a.Flags |= FlagCloneKilled
	case !state.Alive():
		a.Flags |= FlagKilled
		if raised := rebirthCount(rng, state); raised > 0 {
			state.State.CastsUsed++
			state.State.Health.Heal(int64(raised)*int64(maxHP), maxHP, state.BaseAmount)
			a.Flags |= FlagRebirth
		}
	}
	a.NewState = state.State
}

// partialDamage returns the damage left over for the surviving front creature
// once the killed creatures absorbed theirs.
func partialDamage(damage int64, killed int, firstHP int, maxHP int, alive bool) int64 {
	if !alive || damage <= 0 {
		return 0
	}
	if killed == 0 {
		return damage
	}
	absorbed := int64(firstHP) + int64(killed-1)*int64(maxHP)
	if rest := damage - absorbed; rest > 0 {
		return rest
	}
	return 0
}

// rebirthCount returns how many creatures a dead stack raises. Value percent
// of the base amount is raised; the fractional creature is raised with the
// matching chance. Subtype 1 always raises at least one.
func rebirthCount(rng *rand.Rand, state *Unit) int {
	percent := state.BonusValue(bonus.Rebirth)
	if percent <= 0 || state.CastsLeft() <= 0 {
		return 0
	}
	scaled := state.BaseAmount * percent
	raised := scaled / 100
	if frac := scaled % 100; frac > 0 && rng != nil && rng.Intn(100) < frac {
		raised++
	}
	if state.HasBonusSubtype(bonus.Rebirth, 1) && raised < 1 {
		raised = 1
	}
	if raised > state.BaseAmount {
		raised = state.BaseAmount
	}
	return raised
}

// IsMeleeAttackPossible reports whether attacker standing at attackerPos can
// strike defender standing at defenderPos. Invalid positions default to the
// units' current positions.
func IsMeleeAttackPossible(attacker, defender View, attackerPos, defenderPos hex.Hex) bool {
	if attacker == nil || defender == nil {
		return false
	}
	if !attackerPos.Valid() {
		attackerPos = attacker.Position()
	}
	if !defenderPos.Valid() {
		defenderPos = defender.Position()
	}
	for _, a := range OccupiedHexes(attackerPos, attacker.DoubleWide(), attacker.UnitSide()) {
		for _, d := range OccupiedHexes(defenderPos, defender.DoubleWide(), defender.UnitSide()) {
			if hex.Adjacent(a, d) {
				return true
			}
		}
	}
	return false
}
