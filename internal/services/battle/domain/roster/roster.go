// Package roster models the armies units are drawn from and the weak
// references a battle unit keeps to its originating army slot.
package roster

import (
	"fmt"
	"sort"
	"strings"
)

// Slot is a position in an army garrison. Negative values are placeholders
// for units that never come from a regular slot.
type Slot int

const (
	// SlotNone marks an unset slot.
	SlotNone Slot = -1
	// SlotCommander marks the hero commander.
	SlotCommander Slot = -2
	// SlotSummoned marks creatures summoned during battle.
	SlotSummoned Slot = -3
	// SlotWarMachines marks war machines.
	SlotWarMachines Slot = -4
	// SlotArrowTowers marks fortification turrets.
	SlotArrowTowers Slot = -5
)

// MaxSlots is the number of regular garrison slots.
const MaxSlots = 7

// Regular reports whether the slot is a garrison slot.
func (s Slot) Regular() bool {
	return s >= 0 && s < MaxSlots
}

// WithoutBase reports whether units in this slot can never have a base stack.
func (s Slot) WithoutBase() bool {
	return s == SlotSummoned || s == SlotWarMachines || s == SlotArrowTowers
}

// StackInstance is a creature stack held by an army.
type StackInstance struct {
	CreatureID int `json:"creature_id"`
	Count      int `json:"count"`
	Experience int `json:"experience,omitempty"`
}

// Army is a roster of stacks owned by a player, optionally led by a hero.
type Army struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Owner     string                 `json:"owner"`
	Hero      string                 `json:"hero,omitempty"`
	Slots     map[Slot]StackInstance `json:"slots"`
	Commander *StackInstance         `json:"commander,omitempty"`
}

// HasStackAt reports whether a regular slot holds a stack.
func (a *Army) HasStackAt(slot Slot) bool {
	if a == nil || !slot.Regular() {
		return false
	}
	_, ok := a.Slots[slot]
	return ok
}

// Stack returns the stack at the slot.
func (a *Army) Stack(slot Slot) (StackInstance, bool) {
	if a == nil {
		return StackInstance{}, false
	}
	st, ok := a.Slots[slot]
	return st, ok
}

// HeroLed reports whether the army is led by a hero.
func (a *Army) HeroLed() bool {
	return a != nil && strings.TrimSpace(a.Hero) != ""
}

// OccupiedSlots returns the slots that hold stacks, ordered.
func (a *Army) OccupiedSlots() []Slot {
	if a == nil {
		return nil
	}
	out := make([]Slot, 0, len(a.Slots))
	for slot := range a.Slots {
		out = append(out, slot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Lookup resolves armies by id.
type Lookup interface {
	Army(id string) (*Army, bool)
}

// Registry is an in-memory army lookup.
type Registry struct {
	armies map[string]*Army
}

// NewRegistry indexes armies by id.
func NewRegistry(armies ...*Army) (*Registry, error) {
	r := &Registry{armies: make(map[string]*Army, len(armies))}
	for _, army := range armies {
		if army == nil {
			continue
		}
		id := strings.TrimSpace(army.ID)
		if id == "" {
			return nil, fmt.Errorf("army id is required")
		}
		if _, exists := r.armies[id]; exists {
			return nil, fmt.Errorf("army %s: duplicate id", id)
		}
		for slot := range army.Slots {
			if !slot.Regular() {
				return nil, fmt.Errorf("army %s: slot %d is not a garrison slot", id, slot)
			}
		}
		r.armies[id] = army
	}
	return r, nil
}

// Army returns the army with the given id.
func (r *Registry) Army(id string) (*Army, bool) {
	if r == nil {
		return nil, false
	}
	army, ok := r.armies[strings.TrimSpace(id)]
	return army, ok
}

// Ref is a weak reference from a battle unit to its originating stack. It
// stores only coordinates and is resolved on demand.
type Ref struct {
	ArmyID string `json:"army_id"`
	Slot   Slot   `json:"slot"`
}

// Resolve looks the referenced stack up. Missing armies or slots resolve to
// false rather than an error.
func (r *Ref) Resolve(lookup Lookup) (StackInstance, bool) {
	if r == nil || lookup == nil {
		return StackInstance{}, false
	}
	army, ok := lookup.Army(r.ArmyID)
	if !ok {
		return StackInstance{}, false
	}
	if r.Slot == SlotCommander {
		if army.Commander == nil {
			return StackInstance{}, false
		}
		return *army.Commander, true
	}
	return army.Stack(r.Slot)
}
