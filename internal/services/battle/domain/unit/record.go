package unit

import (
	"fmt"
	"log"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/bonus"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/creature"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/hex"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/roster"
)

// Record is the persisted form of a unit. Runtime state is not part of it;
// a decoded unit always starts with fresh state.
type Record struct {
	CreatureID      int         `json:"creature_id"`
	ID              int         `json:"id"`
	BaseAmount      int         `json:"base_amount"`
	Owner           string      `json:"owner"`
	Slot            roster.Slot `json:"slot"`
	Side            int         `json:"side"`
	InitialPosition hex.Hex     `json:"initial_position"`
	ArmyID          string      `json:"army_id,omitempty"`
	ExtSlot         roster.Slot `json:"ext_slot"`
	Bonuses         bonus.List  `json:"bonuses,omitempty"`
}

// Warnings lists non-fatal inconsistencies found while decoding.
type Warnings []string

// Encode captures the persisted fields of u.
func Encode(u *Unit) Record {
	rec := Record{
		CreatureID:      u.Type.ID,
		ID:              u.ID,
		BaseAmount:      u.BaseAmount,
		Owner:           u.Owner,
		Slot:            u.Slot,
		Side:            u.Side,
		InitialPosition: u.InitialPosition,
		ExtSlot:         roster.SlotNone,
		Bonuses:         append(bonus.List(nil), u.Extra...),
	}
	if u.Base != nil {
		rec.ArmyID = u.Base.ArmyID
		rec.ExtSlot = u.Base.Slot
	}
	return rec
}

// Decode rebuilds a unit from its record. The base reference is resolved
// against armies: commander placeholders resolve through the hero's
// commander, summoned and war machine slots never have a base, and any other
// unresolvable reference yields a base-less unit plus a warning. Only an
// unknown creature type is an error.
func Decode(rec Record, creatures creature.Lookup, armies roster.Lookup) (*Unit, Warnings, error) {
	if creatures == nil {
		return nil, nil, fmt.Errorf("creature lookup is required")
	}
	cr, ok := creatures.Creature(rec.CreatureID)
	if !ok {
		return nil, nil, fmt.Errorf("unit %d: unknown creature %d", rec.ID, rec.CreatureID)
	}

	base, warnings := resolveBase(rec, cr, armies)
	u, err := New(Spec{
		ID:       rec.ID,
		Side:     rec.Side,
		Owner:    rec.Owner,
		Slot:     rec.Slot,
		Type:     cr,
		Amount:   rec.BaseAmount,
		Position: rec.InitialPosition,
		Base:     base,
		Extra:    rec.Bonuses,
		Summoned: rec.Slot == roster.SlotSummoned,
	})
	if err != nil {
		return nil, warnings, fmt.Errorf("unit %d: %w", rec.ID, err)
	}
	return u, warnings, nil
}

func resolveBase(rec Record, cr creature.Creature, armies roster.Lookup) (*roster.Ref, Warnings) {
	if rec.Slot.WithoutBase() {
		return nil, nil
	}
	var army *roster.Army
	if armies != nil && rec.ArmyID != "" {
		army, _ = armies.Army(rec.ArmyID)
	}
	if rec.ExtSlot == roster.SlotCommander {
		if army != nil && army.HeroLed() && army.Commander != nil {
			return &roster.Ref{ArmyID: army.ID, Slot: roster.SlotCommander}, nil
		}
		return nil, missingBase(cr)
	}
	if army == nil || rec.ExtSlot == roster.SlotNone || !army.HasStackAt(rec.ExtSlot) {
		return nil, missingBase(cr)
	}
	return &roster.Ref{ArmyID: army.ID, Slot: rec.ExtSlot}, nil
}

func missingBase(cr creature.Creature) Warnings {
	msg := fmt.Sprintf("%s doesn't have a base stack!", cr.NameSingular)
	log.Printf("%s", msg)
	return Warnings{msg}
}
