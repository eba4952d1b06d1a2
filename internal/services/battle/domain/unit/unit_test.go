package unit

import (
	"errors"
	"reflect"
	"testing"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/bonus"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/creature"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/hex"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/narrative"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/roster"
)

func pikeman() creature.Creature {
	return creature.Creature{
		ID:           0,
		NameSingular: "Pikeman",
		NamePlural:   "Pikemen",
		Level:        1,
		MaxHealth:    30,
		Attack:       4,
		Defence:      10,
		MinDamage:    1,
		MaxDamage:    3,
		Speed:        4,
	}
}

func newTestUnit(t *testing.T, cr creature.Creature, amount int) *Unit {
	t.Helper()
	u, err := New(Spec{ID: 1, Side: SideAttacker, Owner: "p1", Slot: 0, Type: cr, Amount: amount, Position: hex.New(3, 5)})
	if err != nil {
		t.Fatalf("new unit: %v", err)
	}
	return u
}

func TestHealthArithmetic(t *testing.T) {
	h := NewHealth(4, 30)
	if h.Count() != 4 || h.FirstHPLeft != 30 || h.FullUnits != 3 {
		t.Fatalf("health = %+v, want 4 creatures at full health", h)
	}
	if got := h.Damage(30, 30); got != 30 {
		t.Fatalf("damage = %d, want 30", got)
	}
	if h.Count() != 3 || h.FirstHPLeft != 30 {
		t.Fatalf("health = %+v, want 3 full creatures", h)
	}
	if got := h.Damage(1000, 30); got != 90 {
		t.Fatalf("clamped damage = %d, want 90", got)
	}
	if h.Count() != 0 || h.Available(30) != 0 {
		t.Fatalf("health = %+v, want empty", h)
	}
	if got := h.Heal(100, 30, 2); got != 60 {
		t.Fatalf("heal = %d, want 60", got)
	}
	if h.Count() != 2 {
		t.Fatalf("count = %d, want 2", h.Count())
	}
}

func TestNewRejectsInvalidSpecs(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want error
	}{
		{name: "negative id", spec: Spec{ID: -1, Type: pikeman(), Amount: 1}, want: ErrUnitIDInvalid},
		{name: "bad side", spec: Spec{ID: 1, Side: 2, Type: pikeman(), Amount: 1}, want: ErrSideInvalid},
		{name: "empty stack", spec: Spec{ID: 1, Type: pikeman()}, want: ErrAmountInvalid},
		{name: "bad creature", spec: Spec{ID: 1, Type: creature.Creature{ID: 1}, Amount: 1}, want: creature.ErrCreatureNameRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.spec)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCloneIsDetached(t *testing.T) {
	cr := pikeman()
	cr.Bonuses = bonus.List{{Type: bonus.MagicResistance, Value: 20}}
	u := newTestUnit(t, cr, 5)
	u.Base = &roster.Ref{ArmyID: "a1", Slot: 0}

	c := u.Clone()
	c.State.Health.Damage(40, cr.MaxHealth)
	c.Type.Bonuses[0].Value = 90
	c.Base.Slot = 4

	if u.Count() != 5 {
		t.Fatalf("original count = %d, want 5", u.Count())
	}
	if u.MagicResistance() != 20 {
		t.Fatalf("original resistance = %d, want 20", u.MagicResistance())
	}
	if u.Base.Slot != 0 {
		t.Fatalf("original base slot = %d, want 0", u.Base.Slot)
	}
}

func TestMagicResistanceIsClamped(t *testing.T) {
	tests := []struct {
		value, want int
	}{
		{value: 20, want: 20},
		{value: 150, want: 100},
		{value: -10, want: 0},
	}
	for _, tt := range tests {
		cr := pikeman()
		cr.Bonuses = bonus.List{{Type: bonus.MagicResistance, Value: tt.value}}
		if got := newTestUnit(t, cr, 1).MagicResistance(); got != tt.want {
			t.Fatalf("resistance(%d) = %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestViewInvariants(t *testing.T) {
	u := newTestUnit(t, pikeman(), 4)
	u.State.Health.Damage(50, 30)

	if u.AvailableHealth() > u.TotalHealth() {
		t.Fatalf("available %d exceeds total %d", u.AvailableHealth(), u.TotalHealth())
	}
	if got := u.Killed(); got != 1 {
		t.Fatalf("killed = %d, want 1", got)
	}
	if !u.CanBeHealed() {
		t.Fatal("expected wounded unit to be healable")
	}

	u.State.Health.Damage(1000, 30)
	if u.Alive() {
		t.Fatal("expected empty stack to be dead")
	}
	if got := u.Killed(); got != u.BaseAmount {
		t.Fatalf("killed = %d, want %d", got, u.BaseAmount)
	}
}

func TestDefenceWhileDefending(t *testing.T) {
	tests := []struct {
		defence int
		want    int
	}{
		{defence: 10, want: 12},
		{defence: 3, want: 4},
	}
	for _, tt := range tests {
		cr := pikeman()
		cr.Defence = tt.defence
		u := newTestUnit(t, cr, 1)
		u.State.Defending = true
		if got := u.Defence(false); got != tt.want {
			t.Fatalf("defence(%d) = %d, want %d", tt.defence, got, tt.want)
		}
	}
}

func TestRetaliation(t *testing.T) {
	u := newTestUnit(t, pikeman(), 3)
	if !u.AbleToRetaliate() {
		t.Fatal("expected fresh unit to retaliate")
	}
	u.State.RetaliationsUsed = 1
	if u.AbleToRetaliate() {
		t.Fatal("expected no retaliation after one use")
	}
	u.Extra = bonus.List{{Type: bonus.AdditionalRetaliation, Value: 1}}
	if !u.AbleToRetaliate() {
		t.Fatal("expected additional retaliation")
	}
	u.Extra = bonus.List{{Type: bonus.NoRetaliation}}
	u.State.RetaliationsUsed = 0
	if u.AbleToRetaliate() {
		t.Fatal("expected no-retaliation bonus to block")
	}
}

func TestTurnQueries(t *testing.T) {
	u := newTestUnit(t, pikeman(), 3)
	if !u.WillMove(0) {
		t.Fatal("expected fresh unit to move this turn")
	}
	u.State.Moved = true
	if u.WillMove(0) || !u.WillMove(1) {
		t.Fatalf("will move = %v/%v, want false/true", u.WillMove(0), u.WillMove(1))
	}
	if got := u.BattleQueuePhase(0); got != 1 {
		t.Fatalf("phase = %d, want 1", got)
	}
	u.State.Waiting = true
	if got := u.BattleQueuePhase(0); got != 3 {
		t.Fatalf("waiting phase = %d, want 3", got)
	}
	u.State.HadMorale = true
	if got := u.BattleQueuePhase(0); got != 2 {
		t.Fatalf("morale phase = %d, want 2", got)
	}
	if got := u.BattleQueuePhase(1); got != 1 {
		t.Fatalf("next turn phase = %d, want 1", got)
	}
}

func TestHexesForWideUnits(t *testing.T) {
	pos := hex.New(5, 5)
	if got := OccupiedHexes(pos, true, SideAttacker); !reflect.DeepEqual(got, []hex.Hex{pos, hex.New(4, 5)}) {
		t.Fatalf("attacker hexes = %v", got)
	}
	if got := OccupiedHexes(pos, true, SideDefender); !reflect.DeepEqual(got, []hex.Hex{pos, hex.New(6, 5)}) {
		t.Fatalf("defender hexes = %v", got)
	}
	if got := OccupiedHexes(hex.Invalid, false, SideAttacker); got != nil {
		t.Fatalf("invalid hexes = %v, want nil", got)
	}
}

func TestNameReplacementFollowsCount(t *testing.T) {
	u := newTestUnit(t, pikeman(), 1)
	var line narrative.Line
	u.AddNameReplacement(&line, narrative.ByCount)
	u.AddNameReplacement(&line, narrative.Plural)
	u.AddText(&line, 42, narrative.ByCount)

	wantRepl := []narrative.Part{
		{Kind: narrative.KindCreatureSingular, ID: 0},
		{Kind: narrative.KindCreaturePlural, ID: 0},
	}
	if !reflect.DeepEqual(line.Replacements, wantRepl) {
		t.Fatalf("replacements = %+v, want %+v", line.Replacements, wantRepl)
	}
	if line.Message[0].ID != 42 {
		t.Fatalf("text id = %d, want 42", line.Message[0].ID)
	}
}

func TestPrepareAttackedPartialDamage(t *testing.T) {
	u := newTestUnit(t, pikeman(), 4)
	a := Attacked{StackAttacked: u.ID, AttackerID: NoAttacker, DamageAmount: 50}
	PrepareAttacked(&a, nil, u.Acquire())

	if a.KilledAmount != 1 {
		t.Fatalf("killed = %d, want 1", a.KilledAmount)
	}
	if a.PartialDamage != 20 {
		t.Fatalf("partial damage = %d, want 20", a.PartialDamage)
	}
	if a.NewState.Health.FirstHPLeft != 10 {
		t.Fatalf("first hp left = %d, want 10", a.NewState.Health.FirstHPLeft)
	}
	if a.Killed() {
		t.Fatal("did not expect stack to die")
	}
	if u.Count() != 4 {
		t.Fatalf("source unit count = %d, want 4", u.Count())
	}
}

func TestPrepareAttackedClampsOverkill(t *testing.T) {
	u := newTestUnit(t, pikeman(), 4)
	a := Attacked{StackAttacked: u.ID, DamageAmount: 500}
	PrepareAttacked(&a, nil, u.Acquire())

	if a.DamageAmount != 120 {
		t.Fatalf("damage = %d, want 120", a.DamageAmount)
	}
	if a.KilledAmount != 4 || !a.Has(FlagKilled) {
		t.Fatalf("attacked = %+v, want stack killed", a)
	}
	if a.PartialDamage != 0 {
		t.Fatalf("partial damage = %d, want 0", a.PartialDamage)
	}
}

func TestPrepareAttackedCloneDiesFromAnyDamage(t *testing.T) {
	u := newTestUnit(t, pikeman(), 4)
	u.State.Cloned = true
	a := Attacked{StackAttacked: u.ID, DamageAmount: 1}
	PrepareAttacked(&a, nil, u.Acquire())

	if !a.Has(FlagCloneKilled) || a.Has(FlagKilled) {
		t.Fatalf("flags = %b, want clone killed only", a.Flags)
	}
	if a.DamageAmount != 120 || a.KilledAmount != 4 {
		t.Fatalf("attacked = %+v, want full wipe", a)
	}
}

func TestPrepareAttackedRebirth(t *testing.T) {
	phoenix := creature.Creature{
		ID: 131, NameSingular: "Phoenix", NamePlural: "Phoenixes", Level: 7,
		MaxHealth: 150, MinDamage: 20, MaxDamage: 40, Casts: 1,
		Bonuses: bonus.List{{Type: bonus.Rebirth, Value: 20}},
	}
	tests := []struct {
		name    string
		amount  int
		subtype int
		want    int
	}{
		{name: "percent of base", amount: 10, want: 2},
		{name: "guaranteed single", amount: 1, subtype: 1, want: 1},
		{name: "fraction without roll", amount: 1, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cr := phoenix
			cr.Bonuses = bonus.List{{Type: bonus.Rebirth, Subtype: tt.subtype, Value: 20}}
			u := newTestUnit(t, cr, tt.amount)
			state := u.Acquire()
			a := Attacked{StackAttacked: u.ID, DamageAmount: 1 << 20}
			PrepareAttacked(&a, nil, state)

			if got := a.NewState.Health.Count(); got != tt.want {
				t.Fatalf("revived = %d, want %d", got, tt.want)
			}
			if a.Has(FlagRebirth) != (tt.want > 0) {
				t.Fatalf("rebirth flag = %v, want %v", a.Has(FlagRebirth), tt.want > 0)
			}
			if tt.want > 0 && a.NewState.CastsUsed != 1 {
				t.Fatalf("casts used = %d, want 1", a.NewState.CastsUsed)
			}
		})
	}
}

func TestPrepareAttackedRebirthNeedsCharge(t *testing.T) {
	cr := pikeman()
	cr.Casts = 1
	cr.Bonuses = bonus.List{{Type: bonus.Rebirth, Value: 50}}
	u := newTestUnit(t, cr, 4)
	u.State.CastsUsed = 1
	a := Attacked{StackAttacked: u.ID, DamageAmount: 1000}
	PrepareAttacked(&a, nil, u.Acquire())
	if a.Has(FlagRebirth) {
		t.Fatal("did not expect rebirth without charges")
	}
}

func TestIsMeleeAttackPossible(t *testing.T) {
	attacker := newTestUnit(t, pikeman(), 1)
	defender, err := New(Spec{ID: 2, Side: SideDefender, Type: pikeman(), Amount: 1, Position: hex.New(4, 5)})
	if err != nil {
		t.Fatalf("new defender: %v", err)
	}
	if !IsMeleeAttackPossible(attacker, defender, hex.Invalid, hex.Invalid) {
		t.Fatal("expected adjacent units to fight")
	}
	if IsMeleeAttackPossible(attacker, defender, hex.Invalid, hex.New(8, 5)) {
		t.Fatal("did not expect distant units to fight")
	}
	if IsMeleeAttackPossible(nil, defender, hex.Invalid, hex.Invalid) {
		t.Fatal("did not expect nil attacker to fight")
	}
}
