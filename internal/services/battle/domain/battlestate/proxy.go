// Package battlestate owns the authoritative battle state and the proxy that
// every state change goes through.
//
// A submitted payload is encoded, validated, folded into a clone of the
// current state and journaled. Only then is the clone swapped in, so readers
// never observe a partially applied change. The live state is never mutated
// in place; views handed out before a swap keep describing the state they
// were taken from.
package battlestate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/louisbranch/skirmish/internal/platform/errors"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/battle"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/effect"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/event"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/hex"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/unit"
)

var (
	// ErrStateRequired indicates a missing initial state.
	ErrStateRequired = errors.New("battle state is required")
	// ErrRegistryRequired indicates a missing event registry.
	ErrRegistryRequired = errors.New("event registry is required")
	// ErrJournalRequired indicates a missing journal.
	ErrJournalRequired = errors.New("journal is required")
	// ErrPayloadRequired indicates a nil payload submission.
	ErrPayloadRequired = errors.New("payload is required")
)

// Observer is notified after an event became authoritative.
type Observer func(ctx context.Context, evt event.Event)

// Option configures a Proxy.
type Option func(*Proxy)

// WithDescribe sets whether effects should generate narration.
func WithDescribe(describe bool) Option {
	return func(p *Proxy) { p.describe = describe }
}

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(p *Proxy) {
		if o != nil {
			p.observers = append(p.observers, o)
		}
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Proxy) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLastSeq sets the journal sequence the initial state already reflects.
func WithLastSeq(seq uint64) Option {
	return func(p *Proxy) { p.lastSeq = seq }
}

type actorKey struct{}

type actor struct {
	typ event.ActorType
	id  string
}

// ContextWithActor attributes events submitted under ctx to a player.
func ContextWithActor(ctx context.Context, playerID string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor{typ: event.ActorTypePlayer, id: playerID})
}

func actorFrom(ctx context.Context) actor {
	if a, ok := ctx.Value(actorKey{}).(actor); ok {
		return a
	}
	return actor{typ: event.ActorTypeSystem}
}

// Proxy is the battle state proxy. It implements battle.View for reads and
// effect.StateProxy for writes. Submissions are serialized.
type Proxy struct {
	submitMu sync.Mutex

	mu      sync.RWMutex
	state   *battle.State
	lastSeq uint64

	registry  *event.Registry
	journal   Journal
	describe  bool
	observers []Observer
	now       func() time.Time
}

var (
	_ battle.View       = (*Proxy)(nil)
	_ effect.StateProxy = (*Proxy)(nil)
)

// New wraps a copy of state.
func New(state *battle.State, registry *event.Registry, journal Journal, opts ...Option) (*Proxy, error) {
	if state == nil {
		return nil, ErrStateRequired
	}
	if registry == nil {
		return nil, ErrRegistryRequired
	}
	if journal == nil {
		return nil, ErrJournalRequired
	}
	p := &Proxy{
		state:    state.Clone(),
		registry: registry,
		journal:  journal,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Describe reports whether narration is requested.
func (p *Proxy) Describe() bool { return p.describe }

// LastSeq returns the sequence of the last applied event.
func (p *Proxy) LastSeq() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastSeq
}

// Submit makes payload authoritative. On failure the state is unchanged and
// the returned error carries CodeBattleSubmitFailed.
func (p *Proxy) Submit(ctx context.Context, payload battle.Payload) error {
	if payload == nil {
		return submitFailed("", ErrPayloadRequired)
	}
	p.submitMu.Lock()
	defer p.submitMu.Unlock()

	evtType := payload.EventType()
	if err := ctx.Err(); err != nil {
		return submitFailed(evtType, err)
	}
	if err := payload.Validate(); err != nil {
		return submitFailed(evtType, fmt.Errorf("validate payload: %w", err))
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return submitFailed(evtType, fmt.Errorf("encode payload: %w", err))
	}

	current := p.current()
	a := actorFrom(ctx)
	evt := event.Event{
		BattleID:    current.ID,
		Type:        evtType,
		Timestamp:   p.now().UTC(),
		ActorType:   a.typ,
		ActorID:     a.id,
		PayloadJSON: data,
	}
	if addressed, ok := payload.(battle.Addressed); ok {
		evt.EntityType, evt.EntityID = addressed.Entity()
	}
	evt, err = p.registry.ValidateForAppend(evt)
	if err != nil {
		return submitFailed(evtType, err)
	}

	next := current.Clone()
	if err := battle.Fold(next, evt); err != nil {
		return submitFailed(evtType, fmt.Errorf("fold: %w", err))
	}
	stored, err := p.journal.AppendEvent(ctx, evt)
	if err != nil {
		return submitFailed(evtType, fmt.Errorf("append event: %w", err))
	}

	p.mu.Lock()
	p.state = next
	p.lastSeq = stored.Seq
	p.mu.Unlock()

	for _, o := range p.observers {
		o(ctx, stored)
	}
	return nil
}

func submitFailed(t event.Type, cause error) error {
	return apperrors.WrapWithMetadata(
		apperrors.CodeBattleSubmitFailed,
		fmt.Sprintf("submit %s: %v", t, cause),
		map[string]string{"Type": string(t)},
		cause,
	)
}

func (p *Proxy) current() *battle.State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Snapshot returns an isolated copy of the current state.
func (p *Proxy) Snapshot() *battle.State {
	return p.current().Clone()
}

// Read runs fn against the current state. fn must not retain or modify it.
func (p *Proxy) Read(fn func(*battle.State)) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	fn(p.state)
}

func (p *Proxy) BattleID() string  { return p.current().BattleID() }
func (p *Proxy) CurrentRound() int { return p.current().CurrentRound() }

func (p *Proxy) Unit(id int) (unit.View, bool) { return p.current().Unit(id) }
func (p *Proxy) Units() []unit.View            { return p.current().Units() }
func (p *Proxy) AliveUnits() []unit.View       { return p.current().AliveUnits() }

func (p *Proxy) UnitAt(h hex.Hex) (unit.View, bool) { return p.current().UnitAt(h) }

func (p *Proxy) Obstacles() []battle.Obstacle { return p.current().Obstacles() }

func (p *Proxy) ObstaclesAt(h hex.Hex) []battle.Obstacle { return p.current().ObstaclesAt(h) }

func (p *Proxy) Hero(side int) (*battle.Hero, bool) { return p.current().Hero(side) }
func (p *Proxy) SidePlayer(side int) string         { return p.current().SidePlayer(side) }
func (p *Proxy) IsFree(h hex.Hex) bool              { return p.current().IsFree(h) }
func (p *Proxy) NextUnitID() int                    { return p.current().NextUnitID() }

func (p *Proxy) FreeHex(side int, doubleWide bool) hex.Hex {
	return p.current().FreeHex(side, doubleWide)
}
