package app

import (
	"fmt"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/effect"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/spell"
)

type spellLevel struct {
	spellID int
	level   int
}

// Spellbook holds the compiled effect sets of every spell and mastery level.
type Spellbook struct {
	sets map[spellLevel]*effect.Effects
}

// NewSpellbook compiles the effect configuration of every spell in book.
// An unknown effect type or a malformed option fails the whole book.
func NewSpellbook(registry *effect.Registry, book *spell.Book) (*Spellbook, error) {
	if registry == nil {
		return nil, fmt.Errorf("effect registry is required")
	}
	sb := &Spellbook{sets: make(map[spellLevel]*effect.Effects)}
	for _, sp := range book.All() {
		for level := spell.MasteryNone; level < spell.MasteryCount; level++ {
			raw := sp.Levels[level].Effects
			if len(raw) == 0 {
				continue
			}
			set, err := effect.LoadEffects(registry, level, raw)
			if err != nil {
				return nil, fmt.Errorf("spell %d level %d: %w", sp.ID, level, err)
			}
			sb.sets[spellLevel{spellID: sp.ID, level: level}] = set
		}
	}
	return sb, nil
}

// Effects returns the effect set of spellID at level.
func (b *Spellbook) Effects(spellID, level int) (*effect.Effects, bool) {
	if b == nil {
		return nil, false
	}
	set, ok := b.sets[spellLevel{spellID: spellID, level: level}]
	return set, ok
}
