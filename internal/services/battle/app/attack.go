package app

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"github.com/louisbranch/skirmish/internal/core/dice"
	apperrors "github.com/louisbranch/skirmish/internal/platform/errors"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/action"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/battle"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/hex"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/narrative"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/unit"
)

// Strike narration text ids.
const (
	textUnitDoesDamage = 376
	textOnePerishes    = 378
	textSeveralPerish  = 379
)

// Attack/defence modifier bounds, in permille of the rolled damage.
const (
	attackBonusPerPoint      = 50
	maxAttackBonus           = 3000
	defenceReductionPerPoint = 25
	maxDefenceReduction      = 700
)

// AttackRequest asks a unit to strike an enemy stack.
type AttackRequest struct {
	AttackerID int
	DefenderID int
	Ranged     bool
}

// Attack resolves a melee or ranged strike. A melee defender that survives
// and can still retaliate strikes back once. The attacker ends its turn.
func (s *Session) Attack(ctx context.Context, req AttackRequest) (err error) {
	ctx, span := s.startSpan(ctx, "battle.attack",
		attribute.Int("battle.attacker_id", req.AttackerID),
		attribute.Int("battle.defender_id", req.DefenderID),
		attribute.Bool("battle.ranged", req.Ranged),
	)
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	attacker, defender, err := s.combatants(req)
	if err != nil {
		return err
	}

	injured, err := s.strike(attacker, defender, req.Ranged, false)
	if err != nil {
		return err
	}
	if err := s.proxy.Submit(ctx, injured); err != nil {
		return err
	}

	if !req.Ranged {
		defender, _ = s.proxy.Unit(req.DefenderID)
		attacker, _ = s.proxy.Unit(req.AttackerID)
		if defender.Alive() && defender.AbleToRetaliate() && attacker.Alive() {
			counter, err := s.strike(defender, attacker, false, true)
			if err != nil {
				return err
			}
			if err := s.proxy.Submit(ctx, counter); err != nil {
				return err
			}
		}
	}

	status, _ := s.unitState(req.AttackerID)
	return s.proxy.Submit(ctx, battle.UnitStatusChanged{
		UnitID:    req.AttackerID,
		Moved:     true,
		HadMorale: status.HadMorale,
	})
}

func (s *Session) combatants(req AttackRequest) (unit.View, unit.View, error) {
	attacker, ok := s.proxy.Unit(req.AttackerID)
	if !ok {
		return nil, nil, unitNotFound(req.AttackerID)
	}
	defender, ok := s.proxy.Unit(req.DefenderID)
	if !ok {
		return nil, nil, unitNotFound(req.DefenderID)
	}
	if !attacker.CanMove(0) {
		return nil, nil, cannotAct(req.AttackerID, "has no move left")
	}
	impossible := func(reason string) error {
		return action.Reject(apperrors.CodeBattleAttackImpossible,
			fmt.Sprintf("unit %d cannot attack unit %d: %s", req.AttackerID, req.DefenderID, reason),
			map[string]string{"UnitID": strconv.Itoa(req.DefenderID)})
	}
	switch {
	case !defender.Alive():
		return nil, nil, impossible("target is dead")
	case defender.UnitSide() == attacker.UnitSide():
		return nil, nil, impossible("target is an ally")
	case req.Ranged && !attacker.CanShoot():
		return nil, nil, impossible("no shots left")
	case !req.Ranged && !unit.IsMeleeAttackPossible(attacker, defender, hex.Invalid, hex.Invalid):
		return nil, nil, impossible("target is out of reach")
	}
	return attacker, defender, nil
}

// strike rolls the damage attacker deals to defender and prepares its
// outcome. Retaliations are marked as counter strikes.
func (s *Session) strike(attacker, defender unit.View, ranged, counter bool) (battle.UnitsInjured, error) {
	rolled, err := dice.StackDamage(s.rng, attacker.Count(), attacker.MinDamage(ranged), attacker.MaxDamage(ranged))
	if err != nil {
		return battle.UnitsInjured{}, fmt.Errorf("roll damage of unit %d: %w", attacker.UnitID(), err)
	}
	attacked := unit.Attacked{
		StackAttacked: defender.UnitID(),
		AttackerID:    attacker.UnitID(),
		DamageAmount:  ModifiedDamage(rolled, attacker.Attack(ranged), defender.Defence(ranged)),
	}
	unit.PrepareAttacked(&attacked, s.rng, defender.Acquire())

	injured := battle.UnitsInjured{
		SpellID:    battle.NoSpell,
		AttackerID: attacker.UnitID(),
		Ranged:     ranged,
		Counter:    counter,
		Attacks:    []unit.Attacked{attacked},
	}
	if s.proxy.Describe() {
		injured.Log = describeStrike(attacker, defender, attacked)
	}
	return injured, nil
}

// ModifiedDamage scales rolled damage by the attack/defence difference: 5%
// more per point of attack advantage up to 300%, 2.5% less per point of
// defence advantage up to 70%. Positive damage never drops below one.
func ModifiedDamage(rolled int64, attack, defence int) int64 {
	if rolled <= 0 {
		return 0
	}
	permille := int64(1000)
	if diff := attack - defence; diff > 0 {
		permille += min(int64(diff)*attackBonusPerPoint, maxAttackBonus)
	} else if diff < 0 {
		permille -= min(int64(-diff)*defenceReductionPerPoint, maxDefenceReduction)
	}
	return max(rolled*permille/1000, 1)
}

func describeStrike(attacker, defender unit.View, attacked unit.Attacked) []narrative.Line {
	var dealt narrative.Line
	attacker.AddText(&dealt, textUnitDoesDamage, narrative.ByCount)
	attacker.AddNameReplacement(&dealt, narrative.ByCount)
	dealt.ReplaceNumber(attacked.DamageAmount)
	lines := []narrative.Line{dealt}
	if attacked.KilledAmount == 0 {
		return lines
	}

	var perish narrative.Line
	if attacked.KilledAmount == 1 {
		perish.AddText(textOnePerishes)
		defender.AddNameReplacement(&perish, narrative.Singular)
	} else {
		perish.AddText(textSeveralPerish)
		perish.ReplaceNumber(int64(attacked.KilledAmount))
		defender.AddNameReplacement(&perish, narrative.Plural)
	}
	return append(lines, perish)
}

func cannotAct(unitID int, reason string) error {
	return action.Reject(apperrors.CodeBattleUnitCannotAct,
		fmt.Sprintf("unit %d %s", unitID, reason),
		map[string]string{"UnitID": strconv.Itoa(unitID)})
}
