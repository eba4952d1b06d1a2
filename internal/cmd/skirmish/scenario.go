package skirmish

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/action"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/battle"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/bonus"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/creature"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/hex"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/roster"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/unit"
	"github.com/louisbranch/skirmish/internal/services/battle/storage/sqlite"
)

// Scenario is a battle setup plus the actions to play against it.
type Scenario struct {
	Seed      int64               `json:"seed,omitempty"`
	Locale    string              `json:"locale,omitempty"`
	Sides     [2]battle.Side      `json:"sides"`
	Armies    []roster.Army       `json:"armies,omitempty"`
	Units     []Placement         `json:"units"`
	Obstacles []ObstaclePlacement `json:"obstacles,omitempty"`
	Actions   []action.Action     `json:"actions"`
}

// Placement puts a creature stack on the field.
type Placement struct {
	ID         int          `json:"id"`
	CreatureID int          `json:"creature_id"`
	Amount     int          `json:"amount"`
	Side       int          `json:"side"`
	Owner      string       `json:"owner"`
	Slot       roster.Slot  `json:"slot"`
	ArmyID     string       `json:"army_id,omitempty"`
	ExtSlot    *roster.Slot `json:"ext_slot,omitempty"`
	At         action.Point `json:"at"`
	Bonuses    bonus.List   `json:"bonuses,omitempty"`
}

// ObstaclePlacement puts an obstacle on the field. SpellID defaults to
// battle.NoSpell.
type ObstaclePlacement struct {
	ID       int                 `json:"id"`
	Kind     battle.ObstacleKind `json:"kind"`
	SpellID  *int                `json:"spell_id,omitempty"`
	At       []action.Point      `json:"at"`
	Blocking bool                `json:"blocking,omitempty"`
}

// LoadScenario reads and decodes the scenario file at path.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes a scenario document. Unknown fields are rejected.
func ParseScenario(data []byte) (Scenario, error) {
	var sc Scenario
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sc); err != nil {
		return Scenario{}, fmt.Errorf("decode scenario: %w", err)
	}
	if len(sc.Units) == 0 {
		return Scenario{}, errors.New("scenario needs at least one unit")
	}
	for _, p := range sc.Units {
		if !p.At.Hex().Valid() {
			return Scenario{}, fmt.Errorf("unit %d: position (%d,%d) is off the field", p.ID, p.At.X, p.At.Y)
		}
	}
	return sc, nil
}

// Records returns the persisted unit records of the scenario. The external
// slot defaults to the unit slot for garrison and commander stacks.
func (sc Scenario) Records() []unit.Record {
	out := make([]unit.Record, 0, len(sc.Units))
	for _, p := range sc.Units {
		ext := roster.SlotNone
		switch {
		case p.ExtSlot != nil:
			ext = *p.ExtSlot
		case p.Slot.Regular() || p.Slot == roster.SlotCommander:
			ext = p.Slot
		}
		out = append(out, unit.Record{
			CreatureID:      p.CreatureID,
			ID:              p.ID,
			BaseAmount:      p.Amount,
			Owner:           p.Owner,
			Slot:            p.Slot,
			Side:            p.Side,
			InitialPosition: p.At.Hex(),
			ArmyID:          p.ArmyID,
			ExtSlot:         ext,
			Bonuses:         p.Bonuses,
		})
	}
	return out
}

// Battle returns the stored setup of the scenario under battleID.
func (sc Scenario) Battle(battleID string, seed int64, locale string) sqlite.BattleRecord {
	rec := sqlite.BattleRecord{
		ID:     battleID,
		Seed:   seed,
		Locale: locale,
		Sides:  sc.Sides,
		Armies: sc.Armies,
	}
	for _, o := range sc.Obstacles {
		spellID := battle.NoSpell
		if o.SpellID != nil {
			spellID = *o.SpellID
		}
		hexes := make([]hex.Hex, 0, len(o.At))
		for _, p := range o.At {
			hexes = append(hexes, p.Hex())
		}
		rec.Obstacles = append(rec.Obstacles, battle.Obstacle{
			ID:       o.ID,
			Kind:     o.Kind,
			SpellID:  spellID,
			Hexes:    hexes,
			Blocking: o.Blocking,
		})
	}
	return rec
}

// buildState rebuilds the starting state of a battle from its stored setup.
// Base stack warnings are logged by the decoder and do not stop the battle.
func buildState(rec sqlite.BattleRecord, records []unit.Record, creatures creature.Lookup) (*battle.State, error) {
	armies := make([]*roster.Army, 0, len(rec.Armies))
	for i := range rec.Armies {
		armies = append(armies, &rec.Armies[i])
	}
	registry, err := roster.NewRegistry(armies...)
	if err != nil {
		return nil, fmt.Errorf("build armies: %w", err)
	}

	state := battle.NewState(rec.ID)
	for i, side := range rec.Sides {
		state.Sides[i] = side
		state.Sides[i].Hero = side.Hero.Clone()
	}
	for _, r := range records {
		u, _, err := unit.Decode(r, creatures, registry)
		if err != nil {
			return nil, err
		}
		if _, exists := state.Stacks[u.ID]; exists {
			return nil, fmt.Errorf("unit %d is placed twice", u.ID)
		}
		state.AddUnit(u)
	}
	for _, o := range rec.Obstacles {
		state.AddObstacle(o)
	}
	return state, nil
}
