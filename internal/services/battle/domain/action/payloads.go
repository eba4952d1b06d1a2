package action

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/hex"
)

// Point is a battlefield coordinate as written by clients.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Hex converts p to a battlefield position.
func (p Point) Hex() hex.Hex { return hex.New(p.X, p.Y) }

// TargetRef names a unit or a battlefield location.
type TargetRef struct {
	UnitID *int   `json:"unit_id,omitempty"`
	At     *Point `json:"at,omitempty"`
}

func (t TargetRef) validate() error {
	if t.UnitID == nil && t.At == nil {
		return errors.New("target needs a unit or a location")
	}
	if t.UnitID != nil && *t.UnitID < 0 {
		return errors.New("target unit id must be non-negative")
	}
	if t.At != nil && !t.At.Hex().Valid() {
		return fmt.Errorf("target location (%d,%d) is off the field", t.At.X, t.At.Y)
	}
	return nil
}

// NoCasterUnit selects the side hero as caster.
const NoCasterUnit = -1

// CastSpell casts SpellID. CasterUnitID selects a creature caster; heroes
// cast with NoCasterUnit.
type CastSpell struct {
	Side         int         `json:"side"`
	CasterUnitID int         `json:"caster_unit_id"`
	SpellID      int         `json:"spell_id"`
	Targets      []TargetRef `json:"targets,omitempty"`
}

func (p CastSpell) Validate() error {
	if p.Side != 0 && p.Side != 1 {
		return errors.New("side must be 0 or 1")
	}
	if p.SpellID < 0 {
		return errors.New("spell id must be non-negative")
	}
	if p.CasterUnitID < NoCasterUnit {
		return errors.New("caster unit id is invalid")
	}
	for i, t := range p.Targets {
		if err := t.validate(); err != nil {
			return fmt.Errorf("target %d: %w", i, err)
		}
	}
	return nil
}

// Attack strikes DefenderID. Ranged attacks need ammunition; melee attacks
// need adjacency.
type Attack struct {
	AttackerID int  `json:"attacker_id"`
	DefenderID int  `json:"defender_id"`
	Ranged     bool `json:"ranged,omitempty"`
}

func (p Attack) Validate() error {
	if p.AttackerID < 0 || p.DefenderID < 0 {
		return errors.New("unit ids must be non-negative")
	}
	if p.AttackerID == p.DefenderID {
		return errors.New("a unit cannot attack itself")
	}
	return nil
}

// UnitTurn is the payload of wait and defend.
type UnitTurn struct {
	UnitID int `json:"unit_id"`
}

func (p UnitTurn) Validate() error {
	if p.UnitID < 0 {
		return errors.New("unit id must be non-negative")
	}
	return nil
}

// EndRound has no fields.
type EndRound struct{}

func (EndRound) Validate() error { return nil }

type validatable interface{ Validate() error }

func validator[P validatable]() PayloadValidator {
	return func(raw json.RawMessage) error {
		var payload P
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&payload); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return payload.Validate()
	}
}

// Definitions lists the battle action definitions.
func Definitions() []Definition {
	return []Definition{
		{Type: TypeCastSpell, PlayerOnly: true, ValidatePayload: validator[CastSpell]()},
		{Type: TypeAttack, PlayerOnly: true, ValidatePayload: validator[Attack]()},
		{Type: TypeWait, PlayerOnly: true, ValidatePayload: validator[UnitTurn]()},
		{Type: TypeDefend, PlayerOnly: true, ValidatePayload: validator[UnitTurn]()},
		{Type: TypeEndRound, ValidatePayload: validator[EndRound]()},
	}
}

// DefaultRegistry returns a registry holding every battle action.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, def := range Definitions() {
		if err := r.Register(def); err != nil {
			panic(err)
		}
	}
	return r
}
