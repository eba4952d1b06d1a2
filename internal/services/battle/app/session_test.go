package app_test

import (
	"encoding/json"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/mock/gomock"

	apperrors "github.com/louisbranch/skirmish/internal/platform/errors"
	"github.com/louisbranch/skirmish/internal/services/battle/app"
	"github.com/louisbranch/skirmish/internal/services/battle/content"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/action"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/battle"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/battlestate"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/battlestate/mocks"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/event"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/replay"
)

func payload(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("encode payload: %v", err)
	}
	return data
}

func TestNewSessionValidation(t *testing.T) {
	data := testContent(t)
	state := testState(t, data)
	if _, err := app.NewSession(state, battlestate.NewMemoryJournal(), content.Content{}); !errors.Is(err, app.ErrContentRequired) {
		t.Fatalf("err = %v, want %v", err, app.ErrContentRequired)
	}
	if _, err := app.NewSession(nil, battlestate.NewMemoryJournal(), data); err == nil {
		t.Fatal("expected error without state")
	}
	if _, err := app.NewSession(state, nil, data); err == nil {
		t.Fatal("expected error without journal")
	}
	if _, err := app.NewSession(state, battlestate.NewMemoryJournal(), data, app.WithLocale("??")); err == nil {
		t.Fatal("expected error for a malformed locale")
	}
}

func TestSeedIsKept(t *testing.T) {
	session := newSession(t, app.WithSeed(42))
	if session.Seed() != 42 {
		t.Fatalf("seed = %d, want 42", session.Seed())
	}
	fresh := newSession(t, app.WithSeed(0))
	if fresh.Seed() == 0 {
		t.Fatal("expected a drawn seed")
	}
}

func TestHandleDispatchesActions(t *testing.T) {
	session := newSession(t)
	actions := []action.Action{
		{BattleID: "b1", Type: action.TypeWait, ActorID: "p1", PayloadJSON: payload(t, action.UnitTurn{UnitID: attackerSwordsmen})},
		{BattleID: "b1", Type: action.TypeAttack, ActorID: "p1", PayloadJSON: payload(t, action.Attack{AttackerID: attackerSwordsmen, DefenderID: defenderSwordsmen})},
		{BattleID: "b1", Type: action.TypeDefend, ActorID: "p2", PayloadJSON: payload(t, action.UnitTurn{UnitID: troglodytes})},
		{BattleID: "b1", Type: action.TypeCastSpell, ActorID: "p1", PayloadJSON: payload(t, action.CastSpell{
			Side: 0, CasterUnitID: action.NoCasterUnit, SpellID: 15, Targets: unitTarget(troglodytes),
		})},
		{BattleID: "b1", Type: action.TypeEndRound},
	}
	for _, act := range actions {
		if err := session.Handle(ctx, act); err != nil {
			t.Fatalf("handle %s: %v", act.Type, err)
		}
	}
	if got := session.View().CurrentRound(); got != 1 {
		t.Fatalf("round = %d, want 1", got)
	}
	if hero, _ := session.View().Hero(0); hero.Mana != 5 {
		t.Fatalf("mana = %d, want 5", hero.Mana)
	}
}

func TestHandleRejections(t *testing.T) {
	tests := []struct {
		name string
		act  action.Action
		code apperrors.Code
	}{
		{
			name: "other battle",
			act:  action.Action{BattleID: "b2", Type: action.TypeEndRound},
			code: apperrors.CodeBattleNotFound,
		},
		{
			name: "unknown type",
			act:  action.Action{BattleID: "b1", Type: "battle.retreat", ActorID: "p1"},
			code: apperrors.CodeActionTypeUnknown,
		},
		{
			name: "missing actor",
			act:  action.Action{BattleID: "b1", Type: action.TypeWait, PayloadJSON: []byte(`{"unit_id":0}`)},
			code: apperrors.CodeActionActorRequired,
		},
		{
			name: "bad payload",
			act:  action.Action{BattleID: "b1", Type: action.TypeWait, ActorID: "p1", PayloadJSON: []byte(`{"unit":0}`)},
			code: apperrors.CodeActionPayloadInvalid,
		},
		{
			name: "enemy unit",
			act:  action.Action{BattleID: "b1", Type: action.TypeWait, ActorID: "p2", PayloadJSON: []byte(`{"unit_id":0}`)},
			code: apperrors.CodeBattleUnitCannotAct,
		},
		{
			name: "enemy hero",
			act: action.Action{BattleID: "b1", Type: action.TypeCastSpell, ActorID: "p2",
				PayloadJSON: []byte(`{"side":0,"caster_unit_id":-1,"spell_id":15,"targets":[{"unit_id":2}]}`)},
			code: apperrors.CodeBattleCasterCannotCast,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := newSession(t)
			assertCode(t, session.Handle(ctx, tt.act), tt.code)
			if session.LastSeq() != 0 {
				t.Fatalf("last seq = %d, want no events", session.LastSeq())
			}
		})
	}
}

func TestJournalFailureLeavesStateUntouched(t *testing.T) {
	ctrl := gomock.NewController(t)
	journal := mocks.NewMockJournal(ctrl)
	journal.EXPECT().AppendEvent(gomock.Any(), gomock.Any()).Return(event.Event{}, errors.New("disk full"))

	data := testContent(t)
	session := newSessionWith(t, testState(t, data), journal, data)

	assertCode(t, session.Wait(ctx, attackerSwordsmen), apperrors.CodeBattleSubmitFailed)
	if mustUnit(t, session, attackerSwordsmen).Waited(0) {
		t.Fatal("expected failed append to leave the unit untouched")
	}
	if len(session.Narration(0)) != 0 {
		t.Fatal("expected no narration")
	}
}

func TestActionsAreTraced(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	session := newSession(t, app.WithTracer(provider.Tracer("test")))

	if err := session.Wait(ctx, attackerSwordsmen); err != nil {
		t.Fatalf("wait: %v", err)
	}
	_ = session.Wait(ctx, attackerSwordsmen)

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("spans = %d, want 2", len(spans))
	}
	if spans[0].Name() != "battle.wait" || spans[0].Status().Code != codes.Unset {
		t.Fatalf("first span = %s %v", spans[0].Name(), spans[0].Status())
	}
	if spans[1].Status().Code != codes.Error {
		t.Fatalf("rejected span status = %v, want error", spans[1].Status())
	}
}

func TestReplayRebuildsSessionState(t *testing.T) {
	data := testContent(t)
	journal := battlestate.NewMemoryJournal()
	initial := testState(t, data)
	session := newSessionWith(t, initial, journal, data)

	if err := session.CastSpell(ctx, heroCast(15, unitTarget(troglodytes))); err != nil {
		t.Fatalf("cast: %v", err)
	}
	if err := session.Attack(ctx, app.AttackRequest{AttackerID: attackerSwordsmen, DefenderID: defenderSwordsmen}); err != nil {
		t.Fatalf("attack: %v", err)
	}
	if err := session.EndRound(ctx); err != nil {
		t.Fatalf("end round: %v", err)
	}

	result, err := replay.Replay(ctx, journal, "b1", initial, replay.Options{})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if result.LastSeq != session.LastSeq() {
		t.Fatalf("replayed seq = %d, want %d", result.LastSeq, session.LastSeq())
	}
	live := session.Snapshot()
	assertSameUnits(t, result.State, live)
	if len(result.State.Log) != len(live.Log) {
		t.Fatalf("replayed log = %d lines, want %d", len(result.State.Log), len(live.Log))
	}
}

func assertSameUnits(t *testing.T, got, want *battle.State) {
	t.Helper()
	if len(got.Stacks) != len(want.Stacks) {
		t.Fatalf("units = %d, want %d", len(got.Stacks), len(want.Stacks))
	}
	for id, u := range want.Stacks {
		other, ok := got.Stacks[id]
		if !ok {
			t.Fatalf("unit %d missing after replay", id)
		}
		if other.State != u.State {
			t.Fatalf("unit %d state = %+v, want %+v", id, other.State, u.State)
		}
	}
}
