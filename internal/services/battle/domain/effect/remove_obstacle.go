package effect

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/battle"
)

// TypeRemoveObstacle is the registry name of RemoveObstacle.
const TypeRemoveObstacle = "core:removeObstacle"

// RemoveObstacle clears obstacles from the field.
type RemoveObstacle struct {
	locationEffect
	removeAbsolute  bool
	removeUsual     bool
	removeAllSpells bool
	removeSpells    []int
}

// NewRemoveObstacle returns an obstacle removal effect for a mastery level.
func NewRemoveObstacle(level int) *RemoveObstacle {
	e := &RemoveObstacle{locationEffect: locationEffect{baseEffect: newBaseEffect(level)}}
	e.bind()
	e.schema.Bool("removeAbsolute", &e.removeAbsolute, false)
	e.schema.Bool("removeUsual", &e.removeUsual, false)
	e.schema.Bool("removeAllSpells", &e.removeAllSpells, false)
	e.schema.IntSet("removeSpells", &e.removeSpells, nil)
	return e
}

func (e *RemoveObstacle) Type() string { return TypeRemoveObstacle }

// Applicable reports whether the field holds any removable obstacle.
func (e *RemoveObstacle) Applicable(p *Problem, m *Mechanics) bool {
	if len(e.targets(m, nil, true)) == 0 {
		p.Add(ProblemNoObstacles, "no removable obstacle on the field")
		return false
	}
	return true
}

// ApplicableTarget reports whether the cast would remove anything.
func (e *RemoveObstacle) ApplicableTarget(p *Problem, m *Mechanics, aim, target Target) bool {
	if len(e.targets(m, target, false)) == 0 {
		p.Add(ProblemNoObstacles, "no removable obstacle at the target")
		return false
	}
	return true
}

func (e *RemoveObstacle) Apply(ctx context.Context, proxy StateProxy, rng *rand.Rand, m *Mechanics, target Target) error {
	removed := e.targets(m, target, false)
	if len(removed) == 0 {
		return nil
	}
	ids := make([]int, 0, len(removed))
	for _, o := range removed {
		ids = append(ids, o.ID)
	}
	if err := proxy.Submit(ctx, battle.ObstaclesChanged{Removed: ids}); err != nil {
		return fmt.Errorf("submit obstacle removal: %w", err)
	}
	return nil
}

// targets returns the removable obstacles the cast covers, ordered by id.
func (e *RemoveObstacle) targets(m *Mechanics, target Target, alwaysMassive bool) []battle.Obstacle {
	seen := map[int]battle.Obstacle{}
	if alwaysMassive || m.IsMassive() {
		for _, o := range m.Battle().Obstacles() {
			if e.canRemove(o) {
				seen[o.ID] = o
			}
		}
	} else {
		for _, h := range target.Hexes() {
			for _, o := range m.Battle().ObstaclesAt(h) {
				if e.canRemove(o) {
					seen[o.ID] = o
				}
			}
		}
	}
	out := make([]battle.Obstacle, 0, len(seen))
	for _, o := range seen {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (e *RemoveObstacle) canRemove(o battle.Obstacle) bool {
	switch o.Kind {
	case battle.ObstacleAbsolute:
		return e.removeAbsolute
	case battle.ObstacleUsual:
		return e.removeUsual
	case battle.ObstacleSpell:
		if e.removeAllSpells {
			return true
		}
		i := sort.SearchInts(e.removeSpells, o.SpellID)
		return i < len(e.removeSpells) && e.removeSpells[i] == o.SpellID
	}
	return false
}
