package unit

import (
	"github.com/louisbranch/skirmish/internal/services/battle/domain/bonus"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/creature"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/hex"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/narrative"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/roster"
)

// View is the read-only capability surface of a unit. Effects and mechanics
// only ever see units through it.
type View interface {
	bonus.Bearer

	UnitID() int
	UnitSide() int
	UnitOwner() string
	UnitSlot() roster.Slot
	UnitBaseAmount() int
	Creature() creature.Creature

	Alive() bool
	IsGhost() bool
	IsClone() bool
	HasClone() bool
	IsSummoned() bool
	CanCast() bool
	IsCaster() bool
	CanShoot() bool
	IsShooter() bool
	AbleToRetaliate() bool

	CanMove(turn int) bool
	Defended(turn int) bool
	Moved(turn int) bool
	WillMove(turn int) bool
	Waited(turn int) bool
	BattleQueuePhase(turn int) int
	Initiative(turn int) int

	CanBeHealed() bool
	Level() int
	MagicResistance() int
	MinDamage(ranged bool) int
	MaxDamage(ranged bool) int
	Attack(ranged bool) int
	Defence(ranged bool) int

	MaxHealth() int
	TotalHealth() int64
	AvailableHealth() int64
	FirstHPLeft() int
	Killed() int
	Count() int
	CastsLeft() int
	ShotsLeft() int

	Position() hex.Hex
	DoubleWide() bool
	Hexes() []hex.Hex

	HasBonus(t bonus.Type) bool
	HasBonusSubtype(t bonus.Type, subtype int) bool
	BonusValue(t bonus.Type) int
	BonusValueSubtype(t bonus.Type, subtype int) int

	AddText(line *narrative.Line, id int, p narrative.Plurality)
	AddNameReplacement(line *narrative.Line, p narrative.Plurality)

	Acquire() *Unit
}

var _ View = (*Unit)(nil)

func (u *Unit) UnitID() int                 { return u.ID }
func (u *Unit) UnitSide() int               { return u.Side }
func (u *Unit) UnitOwner() string           { return u.Owner }
func (u *Unit) UnitSlot() roster.Slot       { return u.Slot }
func (u *Unit) UnitBaseAmount() int         { return u.BaseAmount }
func (u *Unit) Creature() creature.Creature { return u.Type }

// Bonuses returns the creature's innate bonuses followed by unit-level ones.
func (u *Unit) Bonuses() bonus.List {
	return u.Type.Bonuses.Merge(u.Extra)
}

func (u *Unit) HasBonus(t bonus.Type) bool {
	return u.Type.Bonuses.Has(t) || u.Extra.Has(t)
}

func (u *Unit) HasBonusSubtype(t bonus.Type, subtype int) bool {
	return u.Type.Bonuses.HasSubtype(t, subtype) || u.Extra.HasSubtype(t, subtype)
}

func (u *Unit) BonusValue(t bonus.Type) int {
	return u.Type.Bonuses.Value(t) + u.Extra.Value(t)
}

func (u *Unit) BonusValueSubtype(t bonus.Type, subtype int) int {
	return u.Type.Bonuses.ValueSubtype(t, subtype) + u.Extra.ValueSubtype(t, subtype)
}

// Alive reports whether the unit has living creatures and is not a ghost.
func (u *Unit) Alive() bool {
	return !u.State.Ghost && u.State.Health.Count() > 0
}

func (u *Unit) IsGhost() bool    { return u.State.Ghost }
func (u *Unit) IsClone() bool    { return u.State.Cloned }
func (u *Unit) HasClone() bool   { return u.State.CloneID >= 0 }
func (u *Unit) IsSummoned() bool { return u.State.Summoned }

// IsCaster reports whether the creature has spell charges or a spellcaster bonus.
func (u *Unit) IsCaster() bool {
	return u.Type.Casts > 0 || u.HasBonus(bonus.Spellcaster)
}

// CanCast reports whether a charge is left.
func (u *Unit) CanCast() bool {
	return u.Alive() && u.CastsLeft() > 0
}

func (u *Unit) IsShooter() bool { return u.Type.Shooter }

// CanShoot reports whether the unit is a shooter with ammunition left.
func (u *Unit) CanShoot() bool {
	return u.Alive() && u.IsShooter() && u.ShotsLeft() > 0
}

// AbleToRetaliate reports whether the unit may counterattack now.
func (u *Unit) AbleToRetaliate() bool {
	if !u.Alive() || u.Type.WarMachine {
		return false
	}
	if u.HasBonus(bonus.NoRetaliation) || u.HasBonus(bonus.NotActive) {
		return false
	}
	if u.HasBonus(bonus.UnlimitedRetaliations) {
		return true
	}
	return u.State.RetaliationsUsed < 1+u.BonusValue(bonus.AdditionalRetaliation)
}

// CanMove reports whether the unit may act. Turn 0 is the current turn;
// later turns assume round-scoped flags have been reset.
func (u *Unit) CanMove(turn int) bool {
	if !u.Alive() || u.HasBonus(bonus.NotActive) {
		return false
	}
	return turn > 0 || !u.State.Moved
}

func (u *Unit) Defended(turn int) bool {
	return turn == 0 && u.State.Defending
}

func (u *Unit) Moved(turn int) bool {
	return turn == 0 && u.State.Moved
}

func (u *Unit) Waited(turn int) bool {
	return turn == 0 && u.State.Waiting
}

// WillMove reports whether the unit still acts in the given turn.
func (u *Unit) WillMove(turn int) bool {
	return (turn > 0 || !u.State.Defending) && !u.Moved(turn) && u.CanMove(turn)
}

// BattleQueuePhase orders units within a turn: 0 for war machines, 1 for
// regular units, 2 for waiting units that had morale and 3 for other waiting
// units.
func (u *Unit) BattleQueuePhase(turn int) int {
	if turn <= 0 && u.Waited(0) {
		if u.State.HadMorale {
			return 2
		}
		return 3
	}
	if u.Type.WarMachine || u.InitialPosition.Special() {
		return 0
	}
	return 1
}

func (u *Unit) Initiative(turn int) int {
	return u.Type.Speed
}

// CanBeHealed reports whether the front creature is wounded.
func (u *Unit) CanBeHealed() bool {
	return u.Alive() && !u.Type.WarMachine && u.State.Health.FirstHPLeft < u.Type.MaxHealth
}

func (u *Unit) Level() int { return u.Type.Level }

// MagicResistance returns the chance in percent to resist a spell, clamped
// to 0..100. Effects never roll it; it is read by callers that pick spell
// targets before a cast reaches the session.
func (u *Unit) MagicResistance() int {
	v := u.BonusValue(bonus.MagicResistance)
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func (u *Unit) MinDamage(ranged bool) int { return u.Type.MinDamage }
func (u *Unit) MaxDamage(ranged bool) int { return u.Type.MaxDamage }

func (u *Unit) Attack(ranged bool) int {
	return u.Type.Attack + u.BonusValue(bonus.Attack)
}

// Defence includes the defending-stance bonus of one fifth, at least one point.
func (u *Unit) Defence(ranged bool) int {
	d := u.Type.Defence + u.BonusValue(bonus.Defence)
	if u.State.Defending {
		extra := d / 5
		if extra < 1 {
			extra = 1
		}
		d += extra
	}
	return d
}

func (u *Unit) MaxHealth() int { return u.Type.MaxHealth }

// TotalHealth is the health of the full base stack.
func (u *Unit) TotalHealth() int64 {
	return int64(u.BaseAmount) * int64(u.Type.MaxHealth)
}

func (u *Unit) AvailableHealth() int64 {
	return u.State.Health.Available(u.Type.MaxHealth)
}

func (u *Unit) FirstHPLeft() int { return u.State.Health.FirstHPLeft }

// Killed is the number of base creatures lost, never negative.
func (u *Unit) Killed() int {
	k := u.BaseAmount - u.Count() + u.State.Health.Resurrected
	if k < 0 {
		return 0
	}
	return k
}

func (u *Unit) Count() int { return u.State.Health.Count() }

func (u *Unit) CastsLeft() int {
	if left := u.Type.Casts - u.State.CastsUsed; left > 0 {
		return left
	}
	return 0
}

func (u *Unit) ShotsLeft() int {
	if left := u.Type.Shots - u.State.ShotsUsed; left > 0 {
		return left
	}
	return 0
}

func (u *Unit) Position() hex.Hex { return u.State.Position }
func (u *Unit) DoubleWide() bool  { return u.Type.DoubleWide }

// Hexes returns the hexes the unit occupies.
func (u *Unit) Hexes() []hex.Hex {
	return OccupiedHexes(u.State.Position, u.Type.DoubleWide, u.Side)
}

// OccupiedHexes returns the hexes covered by a unit standing at pos. Wide
// attackers extend to the left, wide defenders to the right.
func OccupiedHexes(pos hex.Hex, doubleWide bool, side int) []hex.Hex {
	if !pos.Valid() {
		return nil
	}
	out := []hex.Hex{pos}
	if !doubleWide {
		return out
	}
	dir := hex.Left
	if side == SideDefender {
		dir = hex.Right
	}
	if tail := pos.Neighbour(dir); tail.Valid() {
		out = append(out, tail)
	}
	return out
}

// AddText appends the count-dependent form of text id to line.
func (u *Unit) AddText(line *narrative.Line, id int, p narrative.Plurality) {
	line.AddText(narrative.PluralText(id, p.Count(u.Count())))
}

// AddNameReplacement fills the next placeholder with the creature name.
func (u *Unit) AddNameReplacement(line *narrative.Line, p narrative.Plurality) {
	line.ReplaceCreatureCount(u.Type.ID, p.Count(u.Count()))
}
