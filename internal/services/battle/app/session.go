package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/skirmish/internal/platform/errors"
	"github.com/louisbranch/skirmish/internal/platform/i18n/catalog"
	"github.com/louisbranch/skirmish/internal/platform/otel"
	"github.com/louisbranch/skirmish/internal/random"
	"github.com/louisbranch/skirmish/internal/services/battle/content"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/action"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/battle"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/battlestate"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/effect"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/narrative"
)

const tracerName = "github.com/louisbranch/skirmish/internal/services/battle/app"

var (
	// ErrContentRequired indicates a session without creature or spell data.
	ErrContentRequired = errors.New("battle content is required")
)

// Session runs the actions of one battle. Actions are handled one at a
// time; a rejected action leaves the battle untouched.
type Session struct {
	mu sync.Mutex

	proxy    *battlestate.Proxy
	content  content.Content
	spells   *Spellbook
	actions  *action.Registry
	rng      *rand.Rand
	seed     int64
	resolver *narrative.Resolver
	tracer   trace.Tracer
}

type sessionOptions struct {
	seed         int64
	locale       string
	bundle       *catalog.Bundle
	tracer       trace.Tracer
	effects      *effect.Registry
	actions      *action.Registry
	proxyOptions []battlestate.Option
}

// Option configures a session.
type Option func(*sessionOptions)

// WithSeed fixes the seed of the battle RNG. A zero seed draws a fresh one.
func WithSeed(seed int64) Option {
	return func(o *sessionOptions) { o.seed = seed }
}

// WithLocale sets the locale narration renders in.
func WithLocale(locale string) Option {
	return func(o *sessionOptions) { o.locale = locale }
}

// WithCatalog overrides the locale catalog used for narration.
func WithCatalog(bundle *catalog.Bundle) Option {
	return func(o *sessionOptions) { o.bundle = bundle }
}

// WithTracer overrides the tracer wrapping each action.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *sessionOptions) { o.tracer = tracer }
}

// WithEffectRegistry overrides the effect types spells compile against.
func WithEffectRegistry(registry *effect.Registry) Option {
	return func(o *sessionOptions) { o.effects = registry }
}

// WithActionRegistry overrides the registry Handle validates actions with.
func WithActionRegistry(registry *action.Registry) Option {
	return func(o *sessionOptions) { o.actions = registry }
}

// WithProxyOptions passes options to the battle state proxy.
func WithProxyOptions(opts ...battlestate.Option) Option {
	return func(o *sessionOptions) { o.proxyOptions = append(o.proxyOptions, opts...) }
}

// NewSession starts a session over state. Every accepted change is appended
// to journal.
func NewSession(state *battle.State, journal battlestate.Journal, data content.Content, opts ...Option) (*Session, error) {
	if data.Creatures == nil || data.Spells == nil {
		return nil, ErrContentRequired
	}
	o := sessionOptions{locale: catalog.BaseLocale}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.effects == nil {
		o.effects = effect.DefaultRegistry()
	}
	if o.actions == nil {
		o.actions = action.DefaultRegistry()
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}

	registry, err := battle.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("build event registry: %w", err)
	}
	proxyOptions := append([]battlestate.Option{battlestate.WithDescribe(true)}, o.proxyOptions...)
	proxy, err := battlestate.New(state, registry, journal, proxyOptions...)
	if err != nil {
		return nil, fmt.Errorf("build state proxy: %w", err)
	}
	spells, err := NewSpellbook(o.effects, data.Spells)
	if err != nil {
		return nil, fmt.Errorf("compile spells: %w", err)
	}
	rng, seed, err := random.Source(o.seed)
	if err != nil {
		return nil, err
	}
	texts := narrative.NewCatalogTexts(o.bundle, o.locale, data.Creatures, data.Spells)
	resolver, err := narrative.NewResolver(texts, o.locale)
	if err != nil {
		return nil, fmt.Errorf("build narration: %w", err)
	}

	return &Session{
		proxy:    proxy,
		content:  data,
		spells:   spells,
		actions:  o.actions,
		rng:      rng,
		seed:     seed,
		resolver: resolver,
		tracer:   o.tracer,
	}, nil
}

// Seed returns the seed the battle RNG was built from.
func (s *Session) Seed() int64 { return s.seed }

// View returns the live read-only view of the battle.
func (s *Session) View() battle.View { return s.proxy }

// Snapshot returns a detached copy of the current state.
func (s *Session) Snapshot() *battle.State { return s.proxy.Snapshot() }

// LastSeq returns the sequence number of the last accepted event.
func (s *Session) LastSeq() uint64 { return s.proxy.LastSeq() }

// Narration renders the battle log from line from onwards.
func (s *Session) Narration(from int) []string {
	var lines []narrative.Line
	s.proxy.Read(func(state *battle.State) {
		if from < 0 {
			from = 0
		}
		if from < len(state.Log) {
			lines = append(lines, state.Log[from:]...)
		}
	})
	return s.resolver.RenderAll(lines)
}

// Handle validates act and dispatches it. The acting player must control the
// side or unit the action names.
func (s *Session) Handle(ctx context.Context, act action.Action) error {
	validated, err := s.actions.Validate(act)
	if err != nil {
		return actionError(act, err)
	}
	if validated.BattleID != s.proxy.BattleID() {
		return action.Reject(apperrors.CodeBattleNotFound,
			fmt.Sprintf("battle %s is not running", validated.BattleID),
			map[string]string{"BattleID": validated.BattleID})
	}
	if validated.ActorID != "" {
		ctx = battlestate.ContextWithActor(ctx, validated.ActorID)
	}

	switch validated.Type {
	case action.TypeCastSpell:
		var p action.CastSpell
		if err := validated.Decode(&p); err != nil {
			return err
		}
		if err := s.checkSide(validated.ActorID, p.Side); err != nil {
			return err
		}
		return s.CastSpell(ctx, CastRequest{
			Side:         p.Side,
			CasterUnitID: p.CasterUnitID,
			SpellID:      p.SpellID,
			Targets:      p.Targets,
		})
	case action.TypeAttack:
		var p action.Attack
		if err := validated.Decode(&p); err != nil {
			return err
		}
		if err := s.checkUnit(validated.ActorID, p.AttackerID); err != nil {
			return err
		}
		return s.Attack(ctx, AttackRequest{AttackerID: p.AttackerID, DefenderID: p.DefenderID, Ranged: p.Ranged})
	case action.TypeWait, action.TypeDefend:
		var p action.UnitTurn
		if err := validated.Decode(&p); err != nil {
			return err
		}
		if err := s.checkUnit(validated.ActorID, p.UnitID); err != nil {
			return err
		}
		if validated.Type == action.TypeWait {
			return s.Wait(ctx, p.UnitID)
		}
		return s.Defend(ctx, p.UnitID)
	case action.TypeEndRound:
		return s.EndRound(ctx)
	}
	return apperrors.WithMetadata(apperrors.CodeActionTypeUnknown,
		fmt.Sprintf("action %s has no handler", validated.Type),
		map[string]string{"Type": string(validated.Type)})
}

func actionError(act action.Action, err error) error {
	switch {
	case errors.Is(err, action.ErrTypeUnknown), errors.Is(err, action.ErrTypeRequired):
		return apperrors.WrapWithMetadata(apperrors.CodeActionTypeUnknown, err.Error(),
			map[string]string{"Type": string(act.Type)}, err)
	case errors.Is(err, action.ErrActorIDRequired):
		return apperrors.Wrap(apperrors.CodeActionActorRequired, err.Error(), err)
	case errors.Is(err, action.ErrBattleIDRequired):
		return apperrors.WrapWithMetadata(apperrors.CodeBattleNotFound, err.Error(),
			map[string]string{"BattleID": act.BattleID}, err)
	}
	return apperrors.Wrap(apperrors.CodeActionPayloadInvalid, err.Error(), err)
}

func (s *Session) checkSide(actorID string, side int) error {
	if actorID == "" || s.proxy.SidePlayer(side) == actorID {
		return nil
	}
	return action.Reject(apperrors.CodeBattleCasterCannotCast,
		fmt.Sprintf("player %s does not control side %d", actorID, side),
		map[string]string{"Side": strconv.Itoa(side)})
}

func (s *Session) checkUnit(actorID string, unitID int) error {
	if actorID == "" {
		return nil
	}
	u, ok := s.proxy.Unit(unitID)
	if !ok {
		return unitNotFound(unitID)
	}
	if u.UnitOwner() != actorID {
		return action.Reject(apperrors.CodeBattleUnitCannotAct,
			fmt.Sprintf("player %s does not control unit %d", actorID, unitID),
			map[string]string{"UnitID": strconv.Itoa(unitID)})
	}
	return nil
}

func unitNotFound(id int) error {
	return action.Reject(apperrors.CodeBattleUnitNotFound,
		fmt.Sprintf("unit %d is not in battle", id),
		map[string]string{"UnitID": strconv.Itoa(id)})
}

func (s *Session) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append([]attribute.KeyValue{attribute.String("battle.id", s.proxy.BattleID())}, attrs...)
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if code := apperrors.CodeOf(err); code != apperrors.CodeUnknown {
			span.SetAttributes(attribute.String("battle.error_code", string(code)))
		}
	}
	span.End()
}
