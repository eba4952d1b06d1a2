package app

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/louisbranch/skirmish/internal/platform/errors"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/action"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/battle"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/caster"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/effect"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/narrative"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/spell"
)

// CastRequest asks a hero or a unit to cast a spell. CasterUnitID is
// action.NoCasterUnit for the side's hero. An empty Mode casts as a hero or
// as an active creature ability depending on the caster.
type CastRequest struct {
	Side         int
	CasterUnitID int
	SpellID      int
	Mode         caster.Mode
	Targets      []action.TargetRef
}

// CastSpell resolves the caster, checks that it can cast and that the spell
// applies to the aimed target, then records the cast and applies its
// effects. Every check runs before the first change is submitted.
func (s *Session) CastSpell(ctx context.Context, req CastRequest) (err error) {
	ctx, span := s.startSpan(ctx, "battle.cast_spell",
		attribute.Int("battle.side", req.Side),
		attribute.Int("battle.spell_id", req.SpellID),
		attribute.Int("battle.caster_unit_id", req.CasterUnitID),
	)
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok := s.content.Spells.Spell(req.SpellID)
	if !ok {
		return action.Reject(apperrors.CodeBattleSpellUnknown,
			fmt.Sprintf("spell %d is unknown", req.SpellID),
			map[string]string{"SpellID": strconv.Itoa(req.SpellID)})
	}
	c, mode, err := s.resolveCaster(req)
	if err != nil {
		return err
	}
	if ok, reason := c.CanCast(mode, sp); !ok {
		return castRejected(sp, mode, reason)
	}

	m, err := effect.NewMechanics(effect.MechanicsConfig{
		Caster:    c,
		Spell:     sp,
		Mode:      mode,
		Battle:    s.proxy,
		Creatures: s.content.Creatures,
	})
	if err != nil {
		return fmt.Errorf("build mechanics: %w", err)
	}
	effects, ok := s.spells.Effects(sp.ID, m.EffectLevel())
	if !ok {
		return notApplicable(sp, fmt.Sprintf("spell %s has no effects at level %d", sp.Name, m.EffectLevel()))
	}
	aim, err := s.aim(req.Targets)
	if err != nil {
		return err
	}

	var problem effect.Problem
	if !effects.Applicable(&problem, m) || !effects.ApplicableTarget(&problem, m, aim) {
		return notApplicable(sp, problem.String())
	}

	cast := battle.SpellCast{
		Side:         c.Side(),
		CasterUnitID: c.CasterUnitID(),
		SpellID:      sp.ID,
		Mode:         string(mode),
		ManaSpent:    c.ManaCost(mode, sp),
	}
	if mode == caster.ModeCreatureActive {
		cast.CastsSpent = 1
	}
	if s.proxy.Describe() {
		var line narrative.Line
		c.CastDescription(sp, effects.AffectedUnits(m, aim, aim), &line)
		cast.Log = []narrative.Line{line}
	}
	if err := s.proxy.Submit(ctx, cast); err != nil {
		return err
	}
	if err := effects.Apply(ctx, s.proxy, s.rng, m, aim, aim); err != nil {
		return fmt.Errorf("cast %s: %w", sp.Name, err)
	}
	return nil
}

func (s *Session) resolveCaster(req CastRequest) (caster.Caster, caster.Mode, error) {
	if req.CasterUnitID == action.NoCasterUnit {
		mode := req.Mode
		if mode == "" {
			mode = caster.ModeHero
		}
		hero, ok := s.proxy.Hero(req.Side)
		if !ok {
			return nil, mode, action.Reject(apperrors.CodeBattleCasterCannotCast,
				fmt.Sprintf("side %d has no hero", req.Side),
				map[string]string{"Side": strconv.Itoa(req.Side), "Reason": string(caster.ReasonNoCapability)})
		}
		return caster.NewHeroCaster(req.Side, s.proxy.SidePlayer(req.Side), hero), mode, nil
	}

	mode := req.Mode
	if mode == "" {
		mode = caster.ModeCreatureActive
	}
	u, ok := s.proxy.Unit(req.CasterUnitID)
	if !ok {
		return nil, mode, unitNotFound(req.CasterUnitID)
	}
	if u.UnitSide() != req.Side {
		return nil, mode, action.Reject(apperrors.CodeBattleCasterCannotCast,
			fmt.Sprintf("unit %d does not fight for side %d", u.UnitID(), req.Side),
			map[string]string{"UnitID": strconv.Itoa(u.UnitID()), "Side": strconv.Itoa(req.Side)})
	}
	return caster.NewUnitCaster(u), mode, nil
}

// aim turns target references into destinations. A location with a unit on
// it aims at that unit.
func (s *Session) aim(refs []action.TargetRef) (effect.Target, error) {
	aim := make(effect.Target, 0, len(refs))
	for _, ref := range refs {
		switch {
		case ref.UnitID != nil:
			u, ok := s.proxy.Unit(*ref.UnitID)
			if !ok {
				return nil, unitNotFound(*ref.UnitID)
			}
			d := effect.UnitDestination(u)
			if ref.At != nil {
				d.Hex = ref.At.Hex()
			}
			aim = append(aim, d)
		case ref.At != nil:
			h := ref.At.Hex()
			if u, ok := s.proxy.UnitAt(h); ok {
				aim = append(aim, effect.Destination{Unit: u, Hex: h})
				continue
			}
			aim = append(aim, effect.HexDestination(h))
		default:
			aim = append(aim, effect.Placeholder())
		}
	}
	return aim, nil
}

func castRejected(sp *spell.Spell, mode caster.Mode, reason caster.Reason) error {
	code := apperrors.CodeBattleCasterCannotCast
	if reason == caster.ReasonNoMana {
		code = apperrors.CodeBattleInsufficientMana
	}
	return action.Reject(code,
		fmt.Sprintf("cannot cast %s in %s mode: %s", sp.Name, mode, reason),
		map[string]string{"SpellID": strconv.Itoa(sp.ID), "Reason": string(reason)})
}

func notApplicable(sp *spell.Spell, problem string) error {
	return action.Reject(apperrors.CodeBattleSpellNotApplicable,
		fmt.Sprintf("%s is not applicable: %s", sp.Name, problem),
		map[string]string{"SpellID": strconv.Itoa(sp.ID), "Problem": problem})
}
