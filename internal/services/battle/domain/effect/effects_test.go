package effect

import (
	"context"
	"testing"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/battle"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/caster"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/hex"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/spell"
)

func mixedSet(t *testing.T, obstacleCfg Config) *Effects {
	t.Helper()
	set := NewEffects(0)
	if err := set.Add("damage", decoded(t, NewDamage(0), Config{})); err != nil {
		t.Fatalf("add damage: %v", err)
	}
	if err := set.Add("clear", decoded(t, NewRemoveObstacle(0), obstacleCfg)); err != nil {
		t.Fatalf("add clear: %v", err)
	}
	return set
}

func mixedField(t *testing.T) *battle.State {
	t.Helper()
	s := newField(t, placement{id: 1, side: 1, cr: grunt(10), amount: 5, pos: hex.New(8, 5)})
	s.AddObstacle(battle.Obstacle{ID: 0, Kind: battle.ObstacleUsual, SpellID: battle.NoSpell, Hexes: []hex.Hex{hex.New(8, 5)}})
	return s
}

func TestEffectsApplicability(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		targeted bool
		want     bool
		code     string
	}{
		{name: "all pass", cfg: Config{"removeUsual": true}, want: true},
		{name: "optional fails", cfg: Config{"optional": true}, want: true},
		{name: "required fails", cfg: Config{}, code: ProblemNoObstacles},
		{name: "targeted required fails", cfg: Config{}, targeted: true, code: ProblemNoObstacles},
		{name: "targeted optional fails", cfg: Config{"optional": true}, targeted: true, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mixedField(t)
			m := newMechanics(t, s, damageSpell(spell.MagicArrow, spell.Air, 5), caster.ModeHero)
			set := mixedSet(t, tt.cfg)

			var p Problem
			var got bool
			if tt.targeted {
				got = set.ApplicableTarget(&p, m, Target{HexDestination(hex.New(8, 5))})
			} else {
				got = set.Applicable(&p, m)
			}
			if got != tt.want {
				t.Fatalf("applicable = %v, want %v (problem %v)", got, tt.want, p.Entries())
			}
			if tt.code != "" && !p.Has(tt.code) {
				t.Fatalf("problem = %v, want %s", p.Entries(), tt.code)
			}
			if tt.want && !p.Empty() {
				t.Fatalf("problem = %v, want none", p.Entries())
			}
		})
	}
}

func TestEffectsNothingApplicable(t *testing.T) {
	s := newField(t)
	m := newMechanics(t, s, damageSpell(spell.MagicArrow, spell.Air, 5), caster.ModeHero)
	set := NewEffects(0)
	if err := set.Add("damage", decoded(t, NewDamage(0), Config{"optional": true})); err != nil {
		t.Fatalf("add: %v", err)
	}

	var p Problem
	if set.Applicable(&p, m) {
		t.Fatal("expected not applicable on an empty field")
	}
	if !p.Has(ProblemNoApplicable) || !p.Has(ProblemNoTargets) {
		t.Fatalf("problem = %v", p.Entries())
	}
}

func TestEffectsApplyInNameOrder(t *testing.T) {
	s := mixedField(t)
	m := newMechanics(t, s, damageSpell(spell.MagicArrow, spell.Air, 5), caster.ModeHero)
	set := mixedSet(t, Config{"removeUsual": true})
	proxy := &recordingProxy{}

	aim := Target{UnitDestination(unitAt(t, s, 1))}
	if err := set.Apply(context.Background(), proxy, nil, m, aim, aim); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(proxy.payloads) != 2 {
		t.Fatalf("payloads = %d, want 2", len(proxy.payloads))
	}
	if _, ok := proxy.payloads[0].(battle.ObstaclesChanged); !ok {
		t.Fatalf("first payload = %T, want obstacle change", proxy.payloads[0])
	}
	if _, ok := proxy.payloads[1].(battle.UnitsInjured); !ok {
		t.Fatalf("second payload = %T, want injuries", proxy.payloads[1])
	}
}

func TestEffectsApplySkipsInapplicableOptional(t *testing.T) {
	s := mixedField(t)
	m := newMechanics(t, s, damageSpell(spell.MagicArrow, spell.Air, 5), caster.ModeHero)
	set := NewEffects(0)
	if err := set.Add("damage", decoded(t, NewDamage(0), Config{})); err != nil {
		t.Fatalf("add damage: %v", err)
	}
	if err := set.Add("summon", decoded(t, NewSummon(0), Config{"id": 114, "optional": true})); err != nil {
		t.Fatalf("add summon: %v", err)
	}
	aim := Target{UnitDestination(unitAt(t, s, 1))}

	var p Problem
	if !set.ApplicableTarget(&p, m, aim) {
		t.Fatalf("expected applicable, problem = %v", p.Entries())
	}
	proxy := &recordingProxy{}
	if err := set.Apply(context.Background(), proxy, nil, m, aim, aim); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(proxy.payloads) != 1 {
		t.Fatalf("payloads = %d, want 1", len(proxy.payloads))
	}
	if _, ok := proxy.payloads[0].(battle.UnitsInjured); !ok {
		t.Fatalf("payload = %T, want injuries", proxy.payloads[0])
	}
}

func TestEffectsAffectedUnitsDeduplicates(t *testing.T) {
	s := newField(t,
		placement{id: 1, side: 1, cr: grunt(10), amount: 5, pos: hex.New(8, 5)},
		placement{id: 2, side: 1, cr: grunt(10), amount: 5, pos: hex.New(12, 5)},
	)
	m := newMechanics(t, s, damageSpell(spell.MagicArrow, spell.Air, 5), caster.ModeHero)
	set := NewEffects(0)
	for _, name := range []string{"first", "second"} {
		if err := set.Add(name, decoded(t, NewDamage(0), Config{})); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := set.Add("first", NewDamage(0)); err == nil {
		t.Fatal("expected duplicate name error")
	}

	aim := Target{UnitDestination(unitAt(t, s, 2))}
	affected := set.AffectedUnits(m, aim, aim)
	if len(affected) != 1 || affected[0].UnitID() != 2 {
		t.Fatalf("affected = %v, want unit 2 once", affected)
	}
}
