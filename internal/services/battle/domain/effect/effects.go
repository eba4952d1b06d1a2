package effect

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/unit"
)

// Effects is the ordered effect set of one spell mastery level.
type Effects struct {
	level int
	names []string
	items map[string]Effect
}

// NewEffects returns an empty set for level.
func NewEffects(level int) *Effects {
	return &Effects{level: level, items: make(map[string]Effect)}
}

// LoadEffects builds the set for level from raw configuration keyed by
// effect name. Every entry names its type under "type".
func LoadEffects(r *Registry, level int, raw map[string]json.RawMessage) (*Effects, error) {
	set := NewEffects(level)
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cfg, err := ParseConfig(raw[name])
		if err != nil {
			return nil, fmt.Errorf("effect %s: %w", name, err)
		}
		typ, _ := cfg[typeKey].(string)
		e, err := r.Create(typ, level)
		if err != nil {
			return nil, fmt.Errorf("effect %s: %w", name, err)
		}
		if err := Decode(e, cfg); err != nil {
			return nil, fmt.Errorf("effect %s: %w", name, err)
		}
		if err := set.Add(name, e); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// Add places e under name.
func (s *Effects) Add(name string, e Effect) error {
	if _, exists := s.items[name]; exists {
		return fmt.Errorf("effect %s already in set", name)
	}
	s.items[name] = e
	s.names = append(s.names, name)
	sort.Strings(s.names)
	return nil
}

func (s *Effects) Level() int { return s.level }
func (s *Effects) Len() int   { return len(s.names) }

// Get returns the effect stored under name.
func (s *Effects) Get(name string) (Effect, bool) {
	e, ok := s.items[name]
	return e, ok
}

// direct returns the effects a cast applies, in name order.
func (s *Effects) direct() []Effect {
	out := make([]Effect, 0, len(s.names))
	for _, name := range s.names {
		if e := s.items[name]; !e.Indirect() {
			out = append(out, e)
		}
	}
	return out
}

// Applicable reports whether the cast can proceed at all: every required
// effect must be applicable and at least one effect must be.
func (s *Effects) Applicable(p *Problem, m *Mechanics) bool {
	return s.check(p, func(e Effect, ep *Problem) bool { return e.Applicable(ep, m) })
}

// ApplicableTarget is Applicable for a concrete aim point.
func (s *Effects) ApplicableTarget(p *Problem, m *Mechanics, aim Target) bool {
	return s.check(p, func(e Effect, ep *Problem) bool {
		return e.ApplicableTarget(ep, m, aim, e.TransformTarget(m, aim, aim))
	})
}

func (s *Effects) check(p *Problem, applicable func(Effect, *Problem) bool) bool {
	var optional Problem
	passed := false
	for _, e := range s.direct() {
		var ep Problem
		if applicable(e, &ep) {
			passed = true
			continue
		}
		if !e.Optional() {
			for _, entry := range ep.Entries() {
				p.Add(entry.Code, entry.Message)
			}
			return false
		}
		for _, entry := range ep.Entries() {
			optional.Add(entry.Code, entry.Message)
		}
	}
	if !passed {
		for _, entry := range optional.Entries() {
			p.Add(entry.Code, entry.Message)
		}
		p.Add(ProblemNoApplicable, "no effect is applicable")
	}
	return passed
}

// Apply runs every direct effect in order. Each effect sees the state left
// by the previous one, and units failing its receptivity filter are replaced
// by placeholders before it runs. Optional effects that are not applicable
// at that point are skipped.
func (s *Effects) Apply(ctx context.Context, proxy StateProxy, rng *rand.Rand, m *Mechanics, aim, spellTarget Target) error {
	for _, e := range s.direct() {
		transformed := e.TransformTarget(m, aim, spellTarget)
		if e.Optional() {
			var skipped Problem
			if !e.ApplicableTarget(&skipped, m, aim, transformed) {
				continue
			}
		}
		target := receptiveOnly(m, e, transformed)
		if err := e.Apply(ctx, proxy, rng, m, target); err != nil {
			return fmt.Errorf("apply %s: %w", e.Type(), err)
		}
	}
	return nil
}

func receptiveOnly(m *Mechanics, e Effect, target Target) Target {
	out := make(Target, len(target))
	for i, d := range target {
		if d.HasUnit() && !e.IsReceptive(m, d.Unit) {
			out[i] = Placeholder()
			continue
		}
		out[i] = d
	}
	return out
}

// AffectedUnits lists the units the cast would touch, ordered by first
// appearance and without duplicates.
func (s *Effects) AffectedUnits(m *Mechanics, aim, spellTarget Target) []unit.View {
	seen := map[int]bool{}
	var out []unit.View
	for _, e := range s.direct() {
		for _, u := range receptiveOnly(m, e, e.TransformTarget(m, aim, spellTarget)).Units() {
			if seen[u.UnitID()] {
				continue
			}
			seen[u.UnitID()] = true
			out = append(out, u)
		}
	}
	return out
}

// Encode returns the configuration of every effect keyed by name.
func (s *Effects) Encode() map[string]Config {
	out := make(map[string]Config, len(s.names))
	for _, name := range s.names {
		out[name] = Encode(s.items[name])
	}
	return out
}
