package app_test

import (
	"context"
	"reflect"
	"testing"

	apperrors "github.com/louisbranch/skirmish/internal/platform/errors"
	"github.com/louisbranch/skirmish/internal/services/battle/app"
	"github.com/louisbranch/skirmish/internal/services/battle/content"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/battle"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/battlestate"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/creature"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/hex"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/unit"
)

const (
	swordsmanID = 900
	bowmanID    = 901
)

// Unit ids of the fixture battle.
const (
	attackerSwordsmen = 0
	defenderSwordsmen = 1
	troglodytes       = 2
	thunderbird       = 3
	bowmen            = 4
)

func testContent(t *testing.T) content.Content {
	t.Helper()
	data, err := content.Load()
	if err != nil {
		t.Fatalf("load content: %v", err)
	}
	creatures := []creature.Creature{
		{ID: swordsmanID, NameSingular: "Swordsman", NamePlural: "Swordsmen", Level: 4,
			MaxHealth: 10, Attack: 10, Defence: 10, MinDamage: 2, MaxDamage: 2, Speed: 5},
		{ID: bowmanID, NameSingular: "Bowman", NamePlural: "Bowmen", Level: 2,
			MaxHealth: 10, Attack: 10, Defence: 10, MinDamage: 3, MaxDamage: 3, Speed: 4, Shots: 1, Shooter: true},
	}
	for _, id := range []int{70, 114, 123} {
		cr, ok := data.Creatures.Creature(id)
		if !ok {
			t.Fatalf("creature %d missing from content", id)
		}
		creatures = append(creatures, cr)
	}
	catalog, err := creature.NewCatalog(creatures)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return content.Content{Creatures: catalog, Spells: data.Spells}
}

func testState(t *testing.T, data content.Content) *battle.State {
	t.Helper()
	s := battle.NewState("b1")
	s.Sides[0] = battle.Side{Player: "p1", Hero: &battle.Hero{Name: "Gem", Mana: 10, Power: 2, Spells: []int{15}}}
	s.Sides[1] = battle.Side{Player: "p2"}
	for _, spec := range []struct {
		id, side, creatureID, amount int
		owner                        string
		at                           hex.Hex
	}{
		{attackerSwordsmen, 0, swordsmanID, 10, "p1", hex.New(5, 5)},
		{defenderSwordsmen, 1, swordsmanID, 5, "p2", hex.New(6, 5)},
		{troglodytes, 1, 70, 10, "p2", hex.New(10, 3)},
		{thunderbird, 0, 123, 1, "p1", hex.New(2, 8)},
		{bowmen, 0, bowmanID, 4, "p1", hex.New(1, 1)},
	} {
		cr, ok := data.Creatures.Creature(spec.creatureID)
		if !ok {
			t.Fatalf("creature %d missing", spec.creatureID)
		}
		u, err := unit.New(unit.Spec{ID: spec.id, Side: spec.side, Owner: spec.owner, Type: cr, Amount: spec.amount, Position: spec.at})
		if err != nil {
			t.Fatalf("new unit %d: %v", spec.id, err)
		}
		s.AddUnit(u)
	}
	return s
}

func newSession(t *testing.T, opts ...app.Option) *app.Session {
	t.Helper()
	data := testContent(t)
	return newSessionWith(t, testState(t, data), battlestate.NewMemoryJournal(), data, opts...)
}

func newSessionWith(t *testing.T, state *battle.State, journal battlestate.Journal, data content.Content, opts ...app.Option) *app.Session {
	t.Helper()
	opts = append([]app.Option{app.WithSeed(7)}, opts...)
	session, err := app.NewSession(state, journal, data, opts...)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return session
}

func mustUnit(t *testing.T, session *app.Session, id int) unit.View {
	t.Helper()
	u, ok := session.View().Unit(id)
	if !ok {
		t.Fatalf("unit %d not in battle", id)
	}
	return u
}

func assertCode(t *testing.T, err error, want apperrors.Code) {
	t.Helper()
	if got := apperrors.CodeOf(err); got != want {
		t.Fatalf("code = %s, want %s (err %v)", got, want, err)
	}
}

func assertNarration(t *testing.T, session *app.Session, from int, want []string) {
	t.Helper()
	if got := session.Narration(from); !reflect.DeepEqual(got, want) {
		t.Fatalf("narration = %q, want %q", got, want)
	}
}

var ctx = context.Background()
