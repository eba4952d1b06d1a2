// Package battle holds the authoritative battle state, the read-only view
// effects query and the payloads that change it.
package battle

import (
	"sort"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/bonus"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/hex"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/narrative"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/unit"
)

// ObstacleKind classifies how an obstacle may be removed.
type ObstacleKind string

const (
	// ObstacleAbsolute is terrain spanning several hexes that only strong
	// removal can clear.
	ObstacleAbsolute ObstacleKind = "absolute"
	// ObstacleUsual is ordinary terrain.
	ObstacleUsual ObstacleKind = "usual"
	// ObstacleSpell is created by a spell; SpellID names it.
	ObstacleSpell ObstacleKind = "spell"
)

// Obstacle is a placed battlefield obstacle.
type Obstacle struct {
	ID       int          `json:"id"`
	Kind     ObstacleKind `json:"kind"`
	SpellID  int          `json:"spell_id"`
	Hexes    []hex.Hex    `json:"hexes"`
	Blocking bool         `json:"blocking,omitempty"`
}

// Covers reports whether the obstacle covers h.
func (o Obstacle) Covers(h hex.Hex) bool {
	for _, oh := range o.Hexes {
		if oh == h {
			return true
		}
	}
	return false
}

func (o Obstacle) clone() Obstacle {
	o.Hexes = append([]hex.Hex(nil), o.Hexes...)
	return o
}

// Hero is a side commander able to cast from a spellbook.
type Hero struct {
	Name          string     `json:"name"`
	Mana          int        `json:"mana"`
	Power         int        `json:"power"`
	Bonuses       bonus.List `json:"bonuses,omitempty"`
	Spells        []int      `json:"spells,omitempty"`
	CastThisRound bool       `json:"cast_this_round,omitempty"`
}

// Knows reports whether the hero's spellbook contains spellID.
func (h *Hero) Knows(spellID int) bool {
	if h == nil {
		return false
	}
	for _, id := range h.Spells {
		if id == spellID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (h *Hero) Clone() *Hero {
	if h == nil {
		return nil
	}
	out := *h
	out.Bonuses = append(bonus.List(nil), h.Bonuses...)
	out.Spells = append([]int(nil), h.Spells...)
	return &out
}

// Side is one of the two battle participants.
type Side struct {
	Player string `json:"player"`
	ArmyID string `json:"army_id,omitempty"`
	Hero   *Hero  `json:"hero,omitempty"`
}

// State is the authoritative state of one battle. It is only changed by
// folding events; readers receive clones or views.
type State struct {
	ID          string             `json:"id"`
	Round       int                `json:"round"`
	Sides       [2]Side            `json:"sides"`
	Stacks      map[int]*unit.Unit `json:"units"`
	Field       []Obstacle         `json:"obstacles,omitempty"`
	UnitSeq     int                `json:"next_unit_id"`
	ObstacleSeq int                `json:"next_obstacle_id"`
	Log         []narrative.Line   `json:"log,omitempty"`
}

// NewState returns an empty battle.
func NewState(id string) *State {
	return &State{ID: id, Stacks: make(map[int]*unit.Unit)}
}

// AddUnit places u in the battle outside of event folding. It is meant for
// battle setup only.
func (s *State) AddUnit(u *unit.Unit) {
	if s.Stacks == nil {
		s.Stacks = make(map[int]*unit.Unit)
	}
	s.Stacks[u.ID] = u
	if u.ID >= s.UnitSeq {
		s.UnitSeq = u.ID + 1
	}
}

// AddObstacle places o in the battle during setup.
func (s *State) AddObstacle(o Obstacle) {
	s.Field = append(s.Field, o.clone())
	sortObstacles(s.Field)
	if o.ID >= s.ObstacleSeq {
		s.ObstacleSeq = o.ID + 1
	}
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	for i := range out.Sides {
		out.Sides[i].Hero = s.Sides[i].Hero.Clone()
	}
	out.Stacks = make(map[int]*unit.Unit, len(s.Stacks))
	for id, u := range s.Stacks {
		out.Stacks[id] = u.Clone()
	}
	out.Field = make([]Obstacle, len(s.Field))
	for i, o := range s.Field {
		out.Field[i] = o.clone()
	}
	out.Log = make([]narrative.Line, len(s.Log))
	for i, line := range s.Log {
		out.Log[i] = line.Clone()
	}
	return &out
}

func sortObstacles(obstacles []Obstacle) {
	sort.Slice(obstacles, func(i, j int) bool { return obstacles[i].ID < obstacles[j].ID })
}
