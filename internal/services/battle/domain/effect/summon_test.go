package effect

import (
	"context"
	"testing"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/battle"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/caster"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/creature"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/hex"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/roster"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/spell"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/unit"
)

func summonSpell() *spell.Spell {
	sp := &spell.Spell{ID: spell.SummonFireElemental, Name: "Summon Fire Elemental", Level: 5, Schools: []spell.School{spell.Fire}}
	for i := range sp.Levels {
		sp.Levels[i] = spell.LevelInfo{Cost: 25, Power: 3}
	}
	return sp
}

func summonField(t *testing.T) *battle.State {
	t.Helper()
	s := newField(t, placement{id: 0, side: 1, cr: grunt(10), amount: 5, pos: hex.New(15, 5)})
	s.Sides[0].Hero.Power = 5
	return s
}

func addSummoned(t *testing.T, s *battle.State, id, side int, owner string, cr creature.Creature, pos hex.Hex) {
	t.Helper()
	u, err := unit.New(unit.Spec{ID: id, Side: side, Owner: owner, Slot: roster.SlotSummoned, Type: cr, Amount: 4, Position: pos, Summoned: true})
	if err != nil {
		t.Fatalf("new unit: %v", err)
	}
	s.AddUnit(u)
}

func TestSummonAddsStack(t *testing.T) {
	tests := []struct {
		name      string
		permanent bool
	}{
		{name: "temporary"},
		{name: "permanent", permanent: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := summonField(t)
			m := newMechanics(t, s, summonSpell(), caster.ModeHero)
			e := decoded(t, NewSummon(0), Config{"id": 114, "permanent": tt.permanent})

			var p Problem
			if !e.Applicable(&p, m) {
				t.Fatalf("expected applicable, problem = %v", p.Entries())
			}
			target := e.TransformTarget(m, nil, nil)
			if len(target) != 1 || target[0].Hex != hex.New(1, 5) {
				t.Fatalf("target = %+v, want free hex (1,5)", target)
			}

			proxy := &recordingProxy{}
			if err := e.Apply(context.Background(), proxy, nil, m, target); err != nil {
				t.Fatalf("apply: %v", err)
			}
			if len(proxy.payloads) != 1 {
				t.Fatalf("payloads = %d, want 1", len(proxy.payloads))
			}
			changes := proxy.payloads[0].(battle.UnitsChanged).Changes
			if len(changes) != 1 || changes[0].Op != battle.UnitAdded {
				t.Fatalf("changes = %+v, want one addition", changes)
			}
			u := changes[0].Unit
			if u.ID != 1 || u.Count() != 15 || u.Owner != "p1" || u.Side != 0 || u.Slot != roster.SlotSummoned {
				t.Fatalf("summoned = id %d count %d owner %s side %d slot %d", u.ID, u.Count(), u.Owner, u.Side, u.Slot)
			}
			if u.IsSummoned() == tt.permanent {
				t.Fatalf("summoned flag = %v, want %v", u.IsSummoned(), !tt.permanent)
			}
			if u.Position() != hex.New(1, 5) {
				t.Fatalf("position = %v, want (1,5)", u.Position())
			}
		})
	}
}

func TestSummonReplacesSameKind(t *testing.T) {
	s := summonField(t)
	addSummoned(t, s, 4, 0, "p1", fireElemental(), hex.New(2, 3))
	m := newMechanics(t, s, summonSpell(), caster.ModeHero)
	e := decoded(t, NewSummon(0), Config{"id": 114})

	target := e.TransformTarget(m, nil, nil)
	if len(target) != 1 || !target[0].HasUnit() || target[0].Unit.UnitID() != 4 {
		t.Fatalf("target = %+v, want existing elemental", target)
	}
	proxy := &recordingProxy{}
	if err := e.Apply(context.Background(), proxy, nil, m, target); err != nil {
		t.Fatalf("apply: %v", err)
	}
	changes := proxy.payloads[0].(battle.UnitsChanged).Changes
	if len(changes) != 2 {
		t.Fatalf("changes = %+v, want removal and addition", changes)
	}
	if changes[0].Op != battle.UnitRemoved || changes[0].ID != 4 {
		t.Fatalf("first change = %+v, want removal of 4", changes[0])
	}
	if changes[1].Op != battle.UnitAdded || changes[1].ID != 5 || changes[1].Unit.Position() != hex.New(2, 3) {
		t.Fatalf("second change = %+v, want unit 5 at (2,3)", changes[1])
	}
}

func TestSummonNotApplicable(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		mode  caster.Mode
		setup func(t *testing.T, s *battle.State)
		code  string
	}{
		{name: "passive", cfg: Config{"id": 114}, mode: caster.ModePassive, code: ProblemInvalidCastMode},
		{name: "unknown creature", cfg: Config{"id": 999}, mode: caster.ModeHero, code: ProblemNoCreature},
		{name: "unset creature", cfg: Config{}, mode: caster.ModeHero, code: ProblemNoCreature},
		{
			name: "powerless caster", cfg: Config{"id": 114}, mode: caster.ModeHero, code: ProblemSummonAmount,
			setup: func(t *testing.T, s *battle.State) { s.Sides[0].Hero.Power = 0 },
		},
		{
			name: "other elemental summoned", cfg: Config{"id": 114}, mode: caster.ModeHero, code: ProblemSummonConflict,
			setup: func(t *testing.T, s *battle.State) {
				addSummoned(t, s, 4, 0, "p1", earthElemental(), hex.New(2, 3))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := summonField(t)
			if tt.setup != nil {
				tt.setup(t, s)
			}
			m := newMechanics(t, s, summonSpell(), tt.mode)
			e := decoded(t, NewSummon(0), tt.cfg)

			var p Problem
			if e.Applicable(&p, m) {
				t.Fatal("expected not applicable")
			}
			if !p.Has(tt.code) {
				t.Fatalf("problem = %v, want %s", p.Entries(), tt.code)
			}
		})
	}
}

func TestSummonIgnoresOtherSummoners(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		side int
		own  string
	}{
		{name: "enemy summon", cfg: Config{"id": 114}, side: 1, own: "p2"},
		{name: "not exclusive", cfg: Config{"id": 114, "exclusive": false}, side: 0, own: "p1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := summonField(t)
			addSummoned(t, s, 4, tt.side, tt.own, earthElemental(), hex.New(12, 3))
			m := newMechanics(t, s, summonSpell(), caster.ModeHero)

			var p Problem
			if !decoded(t, NewSummon(0), tt.cfg).Applicable(&p, m) {
				t.Fatalf("expected applicable, problem = %v", p.Entries())
			}
		})
	}
}

func TestSummonApplyUncheckedPanics(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		power int
	}{
		{name: "unknown creature", cfg: Config{"id": 999}, power: 5},
		{name: "no creatures to summon", cfg: Config{"id": 114}, power: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := summonField(t)
			s.Sides[0].Hero.Power = tt.power
			m := newMechanics(t, s, summonSpell(), caster.ModeHero)
			e := decoded(t, NewSummon(0), tt.cfg)

			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			_ = e.Apply(context.Background(), &recordingProxy{}, nil, m, Target{HexDestination(hex.New(1, 5))})
		})
	}
}
