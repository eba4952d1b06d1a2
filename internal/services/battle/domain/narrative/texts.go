package narrative

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/louisbranch/skirmish/internal/platform/i18n/catalog"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/creature"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/spell"
)

// Texts resolves numeric text ids and content names for one locale.
type Texts interface {
	General(id int) string
	SpellName(spellID int) string
	CreatureName(creatureID int, plural bool) string
}

// GeneralKey returns the catalog key for a general text id.
func GeneralKey(id int) string {
	return "battle.general." + strconv.Itoa(id)
}

// CatalogTexts backs Texts with the embedded locale catalog for general texts
// and with the content catalogs for names.
type CatalogTexts struct {
	bundle    *catalog.Bundle
	locale    string
	creatures creature.Lookup
	spells    *spell.Book
}

// NewCatalogTexts builds a text table for locale. Missing general texts fall
// back to the base locale.
func NewCatalogTexts(bundle *catalog.Bundle, locale string, creatures creature.Lookup, spells *spell.Book) *CatalogTexts {
	if bundle == nil {
		bundle = catalog.Default()
	}
	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = catalog.BaseLocale
	}
	return &CatalogTexts{bundle: bundle, locale: locale, creatures: creatures, spells: spells}
}

// Locale returns the configured locale.
func (t *CatalogTexts) Locale() string {
	return t.locale
}

// General returns the text for id.
func (t *CatalogTexts) General(id int) string {
	if value, ok := t.bundle.Message(t.locale, GeneralKey(id)); ok {
		return value
	}
	return fmt.Sprintf("[text %d]", id)
}

// SpellName returns the spell name for spellID.
func (t *CatalogTexts) SpellName(spellID int) string {
	if value, ok := t.bundle.Message(t.locale, "battle.spell."+strconv.Itoa(spellID)); ok {
		return value
	}
	if sp, ok := t.spells.Spell(spellID); ok {
		return sp.Name
	}
	return fmt.Sprintf("[spell %d]", spellID)
}

// CreatureName returns the creature name for creatureID.
func (t *CatalogTexts) CreatureName(creatureID int, plural bool) string {
	if t.creatures != nil {
		if cr, ok := t.creatures.Creature(creatureID); ok {
			return cr.Name(plural)
		}
	}
	return fmt.Sprintf("[creature %d]", creatureID)
}
