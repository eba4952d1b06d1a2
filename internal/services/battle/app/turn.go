package app

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/battle"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/narrative"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/unit"
)

// Turn narration text ids.
const (
	textUnitWaits   = 600
	textUnitDefends = 602
	textRoundBegins = 604
)

// Wait moves a unit to the end of the current round's queue. A unit waits
// once per round.
func (s *Session) Wait(ctx context.Context, unitID int) (err error) {
	ctx, span := s.startSpan(ctx, "battle.wait", attribute.Int("battle.unit_id", unitID))
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	u, status, err := s.actingUnit(unitID)
	if err != nil {
		return err
	}
	if u.Waited(0) {
		return cannotAct(unitID, "already waited this round")
	}
	change := battle.UnitStatusChanged{
		UnitID:    unitID,
		Waiting:   true,
		HadMorale: status.HadMorale,
	}
	if s.proxy.Describe() {
		change.Log = []narrative.Line{unitLine(u, textUnitWaits)}
	}
	return s.proxy.Submit(ctx, change)
}

// Defend ends a unit's turn in the defending stance.
func (s *Session) Defend(ctx context.Context, unitID int) (err error) {
	ctx, span := s.startSpan(ctx, "battle.defend", attribute.Int("battle.unit_id", unitID))
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	u, status, err := s.actingUnit(unitID)
	if err != nil {
		return err
	}
	change := battle.UnitStatusChanged{
		UnitID:    unitID,
		Waiting:   status.Waiting,
		Defending: true,
		Moved:     true,
		HadMorale: status.HadMorale,
	}
	if s.proxy.Describe() {
		change.Log = []narrative.Line{unitLine(u, textUnitDefends)}
	}
	return s.proxy.Submit(ctx, change)
}

// EndRound starts the next round, clearing round-scoped unit and hero flags.
func (s *Session) EndRound(ctx context.Context) (err error) {
	ctx, span := s.startSpan(ctx, "battle.end_round")
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	next := battle.RoundStarted{Round: s.proxy.CurrentRound() + 1}
	span.SetAttributes(attribute.Int("battle.round", next.Round))
	if s.proxy.Describe() {
		var line narrative.Line
		line.AddText(textRoundBegins)
		line.ReplaceNumber(int64(next.Round))
		next.Log = []narrative.Line{line}
	}
	return s.proxy.Submit(ctx, next)
}

func (s *Session) actingUnit(unitID int) (unit.View, unit.State, error) {
	u, ok := s.proxy.Unit(unitID)
	if !ok {
		return nil, unit.State{}, unitNotFound(unitID)
	}
	if !u.CanMove(0) {
		return nil, unit.State{}, cannotAct(unitID, "has no move left")
	}
	status, _ := s.unitState(unitID)
	return u, status, nil
}

func (s *Session) unitState(unitID int) (unit.State, bool) {
	var (
		status unit.State
		ok     bool
	)
	s.proxy.Read(func(state *battle.State) {
		if u, found := state.Stacks[unitID]; found {
			status, ok = u.State, true
		}
	})
	return status, ok
}

func unitLine(u unit.View, text int) narrative.Line {
	var line narrative.Line
	u.AddText(&line, text, narrative.ByCount)
	u.AddNameReplacement(&line, narrative.ByCount)
	return line
}
