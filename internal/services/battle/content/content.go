// Package content holds the embedded creature and spell definitions a battle
// session is built from.
package content

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/creature"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/spell"
)

//go:embed data/creatures.v1.json
var creaturesJSON []byte

//go:embed data/spells.v1.json
var spellsJSON []byte

// documentVersion is the only data file version this package reads.
const documentVersion = 1

type creaturesDocument struct {
	Version   int                 `json:"version"`
	Creatures []creature.Creature `json:"creatures"`
}

type spellsDocument struct {
	Version int           `json:"version"`
	Spells  []spell.Spell `json:"spells"`
}

// Content is the decoded game data.
type Content struct {
	Creatures *creature.Catalog
	Spells    *spell.Book
}

var (
	loadOnce sync.Once
	embedded Content
	loadErr  error
)

// Load decodes the embedded data once and returns the shared catalogs.
func Load() (Content, error) {
	loadOnce.Do(func() {
		embedded, loadErr = Parse(creaturesJSON, spellsJSON)
	})
	return embedded, loadErr
}

// Parse decodes creature and spell documents. Unknown fields are rejected.
func Parse(creaturesData, spellsData []byte) (Content, error) {
	var creatures creaturesDocument
	if err := decodeStrict(creaturesData, &creatures); err != nil {
		return Content{}, fmt.Errorf("decode creatures: %w", err)
	}
	if creatures.Version != documentVersion {
		return Content{}, fmt.Errorf("creatures: unsupported version %d", creatures.Version)
	}
	var spells spellsDocument
	if err := decodeStrict(spellsData, &spells); err != nil {
		return Content{}, fmt.Errorf("decode spells: %w", err)
	}
	if spells.Version != documentVersion {
		return Content{}, fmt.Errorf("spells: unsupported version %d", spells.Version)
	}

	catalog, err := creature.NewCatalog(creatures.Creatures)
	if err != nil {
		return Content{}, fmt.Errorf("creatures: %w", err)
	}
	book, err := spell.NewBook(spells.Spells)
	if err != nil {
		return Content{}, fmt.Errorf("spells: %w", err)
	}
	return Content{Creatures: catalog, Spells: book}, nil
}

func decodeStrict(data []byte, target any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}
