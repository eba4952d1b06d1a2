// Package unit models battle units: their identity, the mutable runtime
// state owned by the battle session and the read-only capability surface the
// rest of the engine queries.
package unit

import (
	"errors"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/bonus"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/creature"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/hex"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/roster"
)

// Battle sides.
const (
	SideAttacker = 0
	SideDefender = 1
)

var (
	// ErrUnitIDInvalid indicates a negative unit id.
	ErrUnitIDInvalid = errors.New("unit id must be non-negative")
	// ErrSideInvalid indicates a side other than attacker or defender.
	ErrSideInvalid = errors.New("unit side must be 0 or 1")
	// ErrAmountInvalid indicates a non-positive stack size.
	ErrAmountInvalid = errors.New("unit amount must be positive")
)

// State is the battle-local runtime state of a unit. It is never persisted
// with the unit record.
type State struct {
	Position         hex.Hex `json:"position"`
	Health           Health  `json:"health"`
	Cloned           bool    `json:"cloned,omitempty"`
	CloneID          int     `json:"clone_id"`
	Ghost            bool    `json:"ghost,omitempty"`
	Summoned         bool    `json:"summoned,omitempty"`
	Defending        bool    `json:"defending,omitempty"`
	Waiting          bool    `json:"waiting,omitempty"`
	Moved            bool    `json:"moved,omitempty"`
	HadMorale        bool    `json:"had_morale,omitempty"`
	ShotsUsed        int     `json:"shots_used,omitempty"`
	CastsUsed        int     `json:"casts_used,omitempty"`
	RetaliationsUsed int     `json:"retaliations_used,omitempty"`
}

// Unit is one combat entity.
type Unit struct {
	ID              int               `json:"id"`
	Side            int               `json:"side"`
	Owner           string            `json:"owner"`
	Slot            roster.Slot       `json:"slot"`
	Type            creature.Creature `json:"type"`
	BaseAmount      int               `json:"base_amount"`
	InitialPosition hex.Hex           `json:"initial_position"`
	Base            *roster.Ref       `json:"base,omitempty"`
	Extra           bonus.List        `json:"extra_bonuses,omitempty"`
	State           State             `json:"state"`
}

// Spec describes a unit to create.
type Spec struct {
	ID       int
	Side     int
	Owner    string
	Slot     roster.Slot
	Type     creature.Creature
	Amount   int
	Position hex.Hex
	Base     *roster.Ref
	Extra    bonus.List
	Summoned bool
}

// New creates a unit with fresh runtime state.
func New(spec Spec) (*Unit, error) {
	if spec.ID < 0 {
		return nil, ErrUnitIDInvalid
	}
	if spec.Side != SideAttacker && spec.Side != SideDefender {
		return nil, ErrSideInvalid
	}
	if spec.Amount <= 0 {
		return nil, ErrAmountInvalid
	}
	if err := spec.Type.Validate(); err != nil {
		return nil, err
	}
	u := &Unit{
		ID:              spec.ID,
		Side:            spec.Side,
		Owner:           spec.Owner,
		Slot:            spec.Slot,
		Type:            spec.Type,
		BaseAmount:      spec.Amount,
		InitialPosition: spec.Position,
		Extra:           append(bonus.List(nil), spec.Extra...),
	}
	if spec.Base != nil {
		ref := *spec.Base
		u.Base = &ref
	}
	u.State = freshState(u, spec.Position, spec.Summoned)
	return u, nil
}

func freshState(u *Unit, position hex.Hex, summoned bool) State {
	return State{
		Position: position,
		Health:   NewHealth(u.BaseAmount, u.Type.MaxHealth),
		CloneID:  -1,
		Summoned: summoned,
	}
}

// Clone returns a deep copy detached from battle state. Mutating the copy
// never affects the original.
func (u *Unit) Clone() *Unit {
	if u == nil {
		return nil
	}
	out := *u
	out.Type.Bonuses = append(bonus.List(nil), u.Type.Bonuses...)
	out.Extra = append(bonus.List(nil), u.Extra...)
	if u.Base != nil {
		ref := *u.Base
		out.Base = &ref
	}
	return &out
}

// Acquire returns a mutable working copy for outcome computation.
func (u *Unit) Acquire() *Unit {
	return u.Clone()
}
