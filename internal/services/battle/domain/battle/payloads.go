package battle

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/event"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/narrative"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/unit"
)

// Event types emitted by the battle engine.
const (
	EventTypeUnitsInjured      event.Type = "battle.units_injured"
	EventTypeObstaclesChanged  event.Type = "battle.obstacles_changed"
	EventTypeUnitsChanged      event.Type = "battle.units_changed"
	EventTypeSpellCast         event.Type = "battle.spell_cast"
	EventTypeRoundStarted      event.Type = "battle.round_started"
	EventTypeUnitStatusChanged event.Type = "battle.unit_status_changed"
)

// Payload is a state-change submitted through the battle proxy.
type Payload interface {
	EventType() event.Type
	Validate() error
}

// Addressed is implemented by payloads that target a single entity.
type Addressed interface {
	Entity() (entityType, entityID string)
}

// NoSpell marks injuries not caused by a spell.
const NoSpell = -1

// UnitsInjured is one batch of damage outcomes.
type UnitsInjured struct {
	SpellID    int              `json:"spell_id"`
	AttackerID int              `json:"attacker_id"`
	Ranged     bool             `json:"ranged,omitempty"`
	Counter    bool             `json:"counter,omitempty"`
	Attacks    []unit.Attacked  `json:"attacks"`
	Log        []narrative.Line `json:"log,omitempty"`
}

func (UnitsInjured) EventType() event.Type { return EventTypeUnitsInjured }

func (p UnitsInjured) Validate() error {
	if len(p.Attacks) == 0 {
		return errors.New("at least one attack is required")
	}
	seen := make(map[int]bool, len(p.Attacks))
	for _, a := range p.Attacks {
		if a.DamageAmount < 0 || a.KilledAmount < 0 {
			return fmt.Errorf("unit %d: negative outcome", a.StackAttacked)
		}
		if seen[a.StackAttacked] {
			return fmt.Errorf("unit %d: attacked twice in one batch", a.StackAttacked)
		}
		seen[a.StackAttacked] = true
	}
	return nil
}

// ObstaclesChanged removes and places obstacles.
type ObstaclesChanged struct {
	Removed []int      `json:"removed,omitempty"`
	Added   []Obstacle `json:"added,omitempty"`
}

func (ObstaclesChanged) EventType() event.Type { return EventTypeObstaclesChanged }

func (p ObstaclesChanged) Validate() error {
	if len(p.Removed) == 0 && len(p.Added) == 0 {
		return errors.New("obstacle change is empty")
	}
	for _, o := range p.Added {
		switch o.Kind {
		case ObstacleAbsolute, ObstacleUsual, ObstacleSpell:
		default:
			return fmt.Errorf("obstacle %d: kind %q is invalid", o.ID, o.Kind)
		}
		if len(o.Hexes) == 0 {
			return fmt.Errorf("obstacle %d: hexes are required", o.ID)
		}
	}
	return nil
}

// UnitChangeOp is the kind of a unit roster change.
type UnitChangeOp string

const (
	UnitAdded   UnitChangeOp = "add"
	UnitRemoved UnitChangeOp = "remove"
)

// UnitChange adds or removes a unit. Added units carry their full state.
type UnitChange struct {
	Op   UnitChangeOp `json:"op"`
	ID   int          `json:"id"`
	Unit *unit.Unit   `json:"unit,omitempty"`
}

// UnitsChanged alters the set of units in battle.
type UnitsChanged struct {
	Changes []UnitChange `json:"changes"`
}

func (UnitsChanged) EventType() event.Type { return EventTypeUnitsChanged }

func (p UnitsChanged) Validate() error {
	if len(p.Changes) == 0 {
		return errors.New("at least one unit change is required")
	}
	for _, c := range p.Changes {
		switch c.Op {
		case UnitRemoved:
		case UnitAdded:
			if c.Unit == nil {
				return fmt.Errorf("unit %d: added unit is required", c.ID)
			}
			if c.Unit.ID != c.ID {
				return fmt.Errorf("unit %d: id does not match unit %d", c.ID, c.Unit.ID)
			}
		default:
			return fmt.Errorf("unit %d: op %q is invalid", c.ID, c.Op)
		}
	}
	return nil
}

// SpellCast records the resources a cast consumed and its narration.
type SpellCast struct {
	Side         int              `json:"side"`
	CasterUnitID int              `json:"caster_unit_id"`
	SpellID      int              `json:"spell_id"`
	Mode         string           `json:"mode"`
	ManaSpent    int              `json:"mana_spent,omitempty"`
	CastsSpent   int              `json:"casts_spent,omitempty"`
	Log          []narrative.Line `json:"log,omitempty"`
}

func (SpellCast) EventType() event.Type { return EventTypeSpellCast }

func (p SpellCast) Validate() error {
	if p.Side != unit.SideAttacker && p.Side != unit.SideDefender {
		return unit.ErrSideInvalid
	}
	if p.SpellID < 0 {
		return errors.New("spell id must be non-negative")
	}
	if p.ManaSpent < 0 || p.CastsSpent < 0 {
		return errors.New("spent resources must be non-negative")
	}
	return nil
}

// RoundStarted begins a new round and resets round-scoped unit flags.
type RoundStarted struct {
	Round int              `json:"round"`
	Log   []narrative.Line `json:"log,omitempty"`
}

func (RoundStarted) EventType() event.Type { return EventTypeRoundStarted }

func (p RoundStarted) Validate() error {
	if p.Round < 1 {
		return errors.New("round must be positive")
	}
	return nil
}

// UnitStatusChanged sets the turn flags of one unit.
type UnitStatusChanged struct {
	UnitID    int              `json:"unit_id"`
	Waiting   bool             `json:"waiting,omitempty"`
	Defending bool             `json:"defending,omitempty"`
	Moved     bool             `json:"moved,omitempty"`
	HadMorale bool             `json:"had_morale,omitempty"`
	Log       []narrative.Line `json:"log,omitempty"`
}

func (UnitStatusChanged) EventType() event.Type { return EventTypeUnitStatusChanged }

func (p UnitStatusChanged) Validate() error {
	if p.UnitID < 0 {
		return unit.ErrUnitIDInvalid
	}
	return nil
}

func (p UnitStatusChanged) Entity() (string, string) {
	return "unit", strconv.Itoa(p.UnitID)
}
