// Package effect implements spell effects: targeting, applicability,
// receptivity, configuration and application through the battle proxy.
//
// Effects never mutate battle state. Apply builds payloads and submits them
// to a StateProxy, which is the only way outcomes become authoritative.
package effect

import (
	"context"
	"math/rand"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/battle"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/unit"
)

// StateProxy receives the state changes an effect produces.
type StateProxy interface {
	Submit(ctx context.Context, payload battle.Payload) error
	// Describe reports whether narration should be generated.
	Describe() bool
}

// Effect is one spell effect variant.
type Effect interface {
	Type() string
	Level() int
	// Indirect effects are triggered by other effects and never applied from
	// a cast directly.
	Indirect() bool
	// Optional effects do not block a cast when they are not applicable.
	Optional() bool

	Applicable(p *Problem, m *Mechanics) bool
	ApplicableTarget(p *Problem, m *Mechanics, aim, target Target) bool
	IsReceptive(m *Mechanics, u unit.View) bool
	TransformTarget(m *Mechanics, aim, spellTarget Target) Target
	// Apply performs one application. Callers must check applicability first.
	Apply(ctx context.Context, proxy StateProxy, rng *rand.Rand, m *Mechanics, target Target) error

	Schema() *Schema
}
