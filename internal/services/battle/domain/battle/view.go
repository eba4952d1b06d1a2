package battle

import (
	"sort"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/hex"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/unit"
)

// View is the read-only battle surface used by effects and mechanics.
type View interface {
	BattleID() string
	CurrentRound() int
	Unit(id int) (unit.View, bool)
	// Units returns every unit ordered by id, dead ones included.
	Units() []unit.View
	// AliveUnits returns living units ordered by id.
	AliveUnits() []unit.View
	// UnitAt returns the living unit occupying h.
	UnitAt(h hex.Hex) (unit.View, bool)
	Obstacles() []Obstacle
	ObstaclesAt(h hex.Hex) []Obstacle
	Hero(side int) (*Hero, bool)
	SidePlayer(side int) string
	// IsFree reports whether no living unit or blocking obstacle covers h.
	IsFree(h hex.Hex) bool
	// FreeHex returns the free available hex closest to the side's deployment
	// origin, or hex.Invalid when the field is full.
	FreeHex(side int, doubleWide bool) hex.Hex
	NextUnitID() int
}

var _ View = (*State)(nil)

// Deployment origins per side.
var origins = [2]hex.Hex{hex.New(1, 5), hex.New(hex.Width-2, 5)}

func (s *State) BattleID() string  { return s.ID }
func (s *State) CurrentRound() int { return s.Round }

func (s *State) Unit(id int) (unit.View, bool) {
	u, ok := s.Stacks[id]
	if !ok {
		return nil, false
	}
	return u, true
}

func (s *State) Units() []unit.View {
	return s.collect(func(*unit.Unit) bool { return true })
}

func (s *State) AliveUnits() []unit.View {
	return s.collect((*unit.Unit).Alive)
}

func (s *State) collect(keep func(*unit.Unit) bool) []unit.View {
	ids := make([]int, 0, len(s.Stacks))
	for id, u := range s.Stacks {
		if keep(u) {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	out := make([]unit.View, len(ids))
	for i, id := range ids {
		out[i] = s.Stacks[id]
	}
	return out
}

func (s *State) UnitAt(h hex.Hex) (unit.View, bool) {
	if !h.Valid() {
		return nil, false
	}
	for _, u := range s.AliveUnits() {
		for _, uh := range u.Hexes() {
			if uh == h {
				return u, true
			}
		}
	}
	return nil, false
}

// Obstacles returns copies ordered by id.
func (s *State) Obstacles() []Obstacle {
	out := make([]Obstacle, len(s.Field))
	for i, o := range s.Field {
		out[i] = o.clone()
	}
	return out
}

func (s *State) ObstaclesAt(h hex.Hex) []Obstacle {
	var out []Obstacle
	for _, o := range s.Field {
		if o.Covers(h) {
			out = append(out, o.clone())
		}
	}
	return out
}

// Hero returns a copy of the side's hero.
func (s *State) Hero(side int) (*Hero, bool) {
	if side < 0 || side >= len(s.Sides) || s.Sides[side].Hero == nil {
		return nil, false
	}
	return s.Sides[side].Hero.Clone(), true
}

func (s *State) SidePlayer(side int) string {
	if side < 0 || side >= len(s.Sides) {
		return ""
	}
	return s.Sides[side].Player
}

func (s *State) IsFree(h hex.Hex) bool {
	if !h.Valid() {
		return false
	}
	if _, occupied := s.UnitAt(h); occupied {
		return false
	}
	for _, o := range s.Field {
		if o.Blocking && o.Covers(h) {
			return false
		}
	}
	return true
}

func (s *State) FreeHex(side int, doubleWide bool) hex.Hex {
	if side < 0 || side >= len(origins) {
		return hex.Invalid
	}
	origin := origins[side]
	best, bestDist := hex.Invalid, -1
	for h := hex.Hex(0); h < hex.Size; h++ {
		if !h.Available() || !s.IsFree(h) {
			continue
		}
		if doubleWide && !s.fitsWide(h, side) {
			continue
		}
		if d := hex.Distance(origin, h); bestDist < 0 || d < bestDist {
			best, bestDist = h, d
		}
	}
	return best
}

func (s *State) fitsWide(h hex.Hex, side int) bool {
	for _, oh := range unit.OccupiedHexes(h, true, side) {
		if !oh.Available() || !s.IsFree(oh) {
			return false
		}
	}
	return len(unit.OccupiedHexes(h, true, side)) == 2
}

func (s *State) NextUnitID() int { return s.UnitSeq }
