package action

import (
	"errors"
	"testing"

	apperrors "github.com/louisbranch/skirmish/internal/platform/errors"
)

func TestValidateNormalizes(t *testing.T) {
	r := DefaultRegistry()
	act, err := r.Validate(Action{
		BattleID:    " b1 ",
		Type:        " battle.cast_spell",
		ActorID:     "p1 ",
		PayloadJSON: []byte(`{"targets":[{"unit_id":3}],"spell_id":15,"side":0,"caster_unit_id":-1}`),
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if act.BattleID != "b1" || act.Type != TypeCastSpell || act.ActorID != "p1" {
		t.Fatalf("action = %+v", act)
	}
	if got, want := string(act.PayloadJSON), `{"caster_unit_id":-1,"side":0,"spell_id":15,"targets":[{"unit_id":3}]}`; got != want {
		t.Fatalf("payload = %s, want %s", got, want)
	}

	var cast CastSpell
	if err := act.Decode(&cast); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cast.SpellID != 15 || len(cast.Targets) != 1 || *cast.Targets[0].UnitID != 3 {
		t.Fatalf("cast = %+v", cast)
	}
}

func TestValidateRejects(t *testing.T) {
	r := DefaultRegistry()
	tests := []struct {
		name string
		act  Action
		want error
	}{
		{name: "battle", act: Action{Type: TypeEndRound}, want: ErrBattleIDRequired},
		{name: "type", act: Action{BattleID: "b1"}, want: ErrTypeRequired},
		{name: "unknown", act: Action{BattleID: "b1", Type: "battle.flee"}, want: ErrTypeUnknown},
		{name: "actor", act: Action{BattleID: "b1", Type: TypeWait, PayloadJSON: []byte(`{"unit_id":1}`)}, want: ErrActorIDRequired},
		{name: "json", act: Action{BattleID: "b1", Type: TypeEndRound, PayloadJSON: []byte(`{`)}, want: ErrPayloadInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Validate(tt.act); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPayloadValidation(t *testing.T) {
	r := DefaultRegistry()
	tests := []struct {
		name    string
		typ     Type
		payload string
		ok      bool
	}{
		{name: "cast at hex", typ: TypeCastSpell, payload: `{"side":1,"caster_unit_id":-1,"spell_id":19,"targets":[{"at":{"x":7,"y":5}}]}`, ok: true},
		{name: "cast bad side", typ: TypeCastSpell, payload: `{"side":2,"caster_unit_id":-1,"spell_id":19}`},
		{name: "cast empty target", typ: TypeCastSpell, payload: `{"side":0,"caster_unit_id":-1,"spell_id":19,"targets":[{}]}`},
		{name: "cast off field", typ: TypeCastSpell, payload: `{"side":0,"caster_unit_id":-1,"spell_id":19,"targets":[{"at":{"x":40,"y":5}}]}`},
		{name: "cast unknown field", typ: TypeCastSpell, payload: `{"side":0,"caster_unit_id":-1,"spell_id":19,"mana":3}`},
		{name: "attack", typ: TypeAttack, payload: `{"attacker_id":0,"defender_id":1}`, ok: true},
		{name: "attack self", typ: TypeAttack, payload: `{"attacker_id":1,"defender_id":1}`},
		{name: "defend", typ: TypeDefend, payload: `{"unit_id":2}`, ok: true},
		{name: "wait negative", typ: TypeWait, payload: `{"unit_id":-1}`},
		{name: "end round", typ: TypeEndRound, payload: ``, ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Validate(Action{BattleID: "b1", Type: tt.typ, ActorID: "p1", PayloadJSON: []byte(tt.payload)})
			if (err == nil) != tt.ok {
				t.Fatalf("err = %v, want ok %v", err, tt.ok)
			}
		})
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := DefaultRegistry()
	if err := r.Register(Definition{Type: TypeWait}); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := r.Register(Definition{Type: " "}); !errors.Is(err, ErrTypeRequired) {
		t.Fatalf("err = %v, want %v", err, ErrTypeRequired)
	}
	if got := len(r.Types()); got != 5 {
		t.Fatalf("types = %d, want 5", got)
	}
}

func TestRejectionUnwrapsToDomainError(t *testing.T) {
	var err error = Reject(apperrors.CodeBattleSpellNotApplicable, "no targets", nil)
	if apperrors.CodeOf(err) != apperrors.CodeBattleSpellNotApplicable {
		t.Fatalf("code = %s", apperrors.CodeOf(err))
	}
	var rej Rejection
	if !errors.As(err, &rej) || rej.Message != "no targets" {
		t.Fatalf("rejection = %+v", rej)
	}
}
