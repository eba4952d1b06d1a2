package battle

import (
	"encoding/json"
	"fmt"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/event"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/unit"
)

// foldRouter dispatches events to typed fold handlers by event type.
type foldRouter struct {
	handlers map[event.Type]func(*State, event.Event) error
	types    []event.Type
}

func newFoldRouter() *foldRouter {
	return &foldRouter{handlers: make(map[event.Type]func(*State, event.Event) error)}
}

// handleFold registers a handler receiving the decoded, validated payload.
func handleFold[P Payload](r *foldRouter, fn func(*State, P) error) {
	var zero P
	t := zero.EventType()
	r.handlers[t] = func(s *State, evt event.Event) error {
		var payload P
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return fmt.Errorf("decode %s payload: %w", evt.Type, err)
		}
		if err := payload.Validate(); err != nil {
			return fmt.Errorf("%s payload: %w", evt.Type, err)
		}
		return fn(s, payload)
	}
	r.types = append(r.types, t)
}

func (r *foldRouter) fold(s *State, evt event.Event) error {
	handler, ok := r.handlers[evt.Type]
	if !ok {
		return fmt.Errorf("unhandled fold event type: %s", evt.Type)
	}
	return handler(s, evt)
}

var router = func() *foldRouter {
	r := newFoldRouter()
	handleFold(r, foldUnitsInjured)
	handleFold(r, foldObstaclesChanged)
	handleFold(r, foldUnitsChanged)
	handleFold(r, foldSpellCast)
	handleFold(r, foldRoundStarted)
	handleFold(r, foldUnitStatusChanged)
	return r
}()

// Fold applies evt to s in place. A failing fold may leave s partially
// changed, so callers fold into a clone and discard it on error.
func Fold(s *State, evt event.Event) error {
	if s == nil {
		return fmt.Errorf("battle state is required")
	}
	return router.fold(s, evt)
}

// FoldHandledTypes returns the folded event types in registration order.
func FoldHandledTypes() []event.Type {
	return append([]event.Type(nil), router.types...)
}

func (s *State) mustUnit(id int) (*unit.Unit, error) {
	u, ok := s.Stacks[id]
	if !ok {
		return nil, fmt.Errorf("unit %d not found", id)
	}
	return u, nil
}

func foldUnitsInjured(s *State, p UnitsInjured) error {
	for _, a := range p.Attacks {
		u, err := s.mustUnit(a.StackAttacked)
		if err != nil {
			return err
		}
		u.State = a.NewState
	}
	if p.AttackerID >= 0 {
		attacker, err := s.mustUnit(p.AttackerID)
		if err != nil {
			return err
		}
		if p.Ranged {
			attacker.State.ShotsUsed++
		}
		if p.Counter {
			attacker.State.RetaliationsUsed++
		}
	}
	s.Log = append(s.Log, p.Log...)
	return nil
}

func foldObstaclesChanged(s *State, p ObstaclesChanged) error {
	for _, id := range p.Removed {
		idx := -1
		for i, o := range s.Field {
			if o.ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("obstacle %d not found", id)
		}
		s.Field = append(s.Field[:idx], s.Field[idx+1:]...)
	}
	for _, o := range p.Added {
		for _, existing := range s.Field {
			if existing.ID == o.ID {
				return fmt.Errorf("obstacle %d already placed", o.ID)
			}
		}
		s.AddObstacle(o)
	}
	return nil
}

func foldUnitsChanged(s *State, p UnitsChanged) error {
	for _, c := range p.Changes {
		switch c.Op {
		case UnitRemoved:
			if _, err := s.mustUnit(c.ID); err != nil {
				return err
			}
			delete(s.Stacks, c.ID)
		case UnitAdded:
			if _, exists := s.Stacks[c.ID]; exists {
				return fmt.Errorf("unit %d already in battle", c.ID)
			}
			s.AddUnit(c.Unit.Clone())
		}
	}
	return nil
}

func foldSpellCast(s *State, p SpellCast) error {
	if p.CasterUnitID >= 0 {
		u, err := s.mustUnit(p.CasterUnitID)
		if err != nil {
			return err
		}
		u.State.CastsUsed += p.CastsSpent
	} else if hero := s.Sides[p.Side].Hero; hero != nil {
		if hero.Mana < p.ManaSpent {
			return fmt.Errorf("hero %s: mana %d below cost %d", hero.Name, hero.Mana, p.ManaSpent)
		}
		hero.Mana -= p.ManaSpent
		hero.CastThisRound = true
	} else {
		return fmt.Errorf("side %d has no caster", p.Side)
	}
	s.Log = append(s.Log, p.Log...)
	return nil
}

func foldRoundStarted(s *State, p RoundStarted) error {
	if p.Round != s.Round+1 {
		return fmt.Errorf("round %d does not follow %d", p.Round, s.Round)
	}
	s.Round = p.Round
	for _, u := range s.Stacks {
		u.State.Waiting = false
		u.State.Defending = false
		u.State.Moved = false
		u.State.HadMorale = false
		u.State.RetaliationsUsed = 0
	}
	for i := range s.Sides {
		if hero := s.Sides[i].Hero; hero != nil {
			hero.CastThisRound = false
		}
	}
	s.Log = append(s.Log, p.Log...)
	return nil
}

func foldUnitStatusChanged(s *State, p UnitStatusChanged) error {
	u, err := s.mustUnit(p.UnitID)
	if err != nil {
		return err
	}
	u.State.Waiting = p.Waiting
	u.State.Defending = p.Defending
	u.State.Moved = p.Moved
	u.State.HadMorale = p.HadMorale
	s.Log = append(s.Log, p.Log...)
	return nil
}
