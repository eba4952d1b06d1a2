// Package bonus defines the modifier records attached to creatures, units and
// heroes, and the queries the rest of the engine runs against them.
package bonus

import "sort"

// Type identifies a bonus kind.
type Type string

const (
	FireImmunity  Type = "fire_immunity"
	WaterImmunity Type = "water_immunity"
	AirImmunity   Type = "air_immunity"
	EarthImmunity Type = "earth_immunity"

	// SpellImmunity grants immunity to the spell id stored in Subtype.
	SpellImmunity Type = "spell_immunity"
	// LevelSpellImmunity grants immunity to spells of level <= Value.
	LevelSpellImmunity Type = "level_spell_immunity"
	// SpellDamageReduction reduces damage from spells of the school in Subtype
	// by Value percent.
	SpellDamageReduction Type = "spell_damage_reduction"
	// MoreDamageFromSpell increases damage from the spell id in Subtype by
	// Value percent.
	MoreDamageFromSpell Type = "more_damage_from_spell"
	// SpellDamage increases damage of every spell the bearer casts by Value
	// percent.
	SpellDamage Type = "spell_damage"
	// SpecificSpellDamage increases damage of the spell id in Subtype by Value
	// percent.
	SpecificSpellDamage Type = "specific_spell_damage"

	// Spellcaster lets a creature cast the spell id in Subtype at school level
	// Value.
	Spellcaster Type = "spellcaster"
	// CreatureSpellPower is the per-100-creatures spell power of a caster stack.
	CreatureSpellPower Type = "creature_spell_power"
	// CreatureEnchantPower is the duration multiplier of a caster stack.
	CreatureEnchantPower Type = "creature_enchant_power"
	// SpecificSpellPower overrides the raw effect value per creature of the
	// spell id in Subtype.
	SpecificSpellPower Type = "specific_spell_power"

	MagicResistance       Type = "magic_resistance"
	NotActive             Type = "not_active"
	NoRetaliation         Type = "no_retaliation"
	UnlimitedRetaliations Type = "unlimited_retaliations"
	AdditionalRetaliation Type = "additional_retaliation"
	// Rebirth revives Value percent of the base amount when the stack dies.
	Rebirth Type = "rebirth"

	// MagicSchoolSkill raises a hero's level in the school stored in Subtype.
	MagicSchoolSkill Type = "magic_school_skill"
	// ManaReduction lowers a hero's spell cost by Value points.
	ManaReduction Type = "mana_reduction"
	SpellPower    Type = "spell_power"
	SpellDuration Type = "spell_duration"

	Attack  Type = "attack"
	Defence Type = "defence"
)

// Elemental immunity subtypes.
const (
	// ImmunityAll blocks every spell of the element.
	ImmunityAll = 0
	// ImmunityHarmful blocks non-positive spells of the element.
	ImmunityHarmful = 1
	// ImmunityDamage blocks only damage-dealing spells of the element.
	ImmunityDamage = 2
)

// Bonus is one modifier record.
type Bonus struct {
	Type    Type   `json:"type"`
	Subtype int    `json:"subtype,omitempty"`
	Value   int    `json:"value,omitempty"`
	Source  string `json:"source,omitempty"`
}

// List is an ordered collection of bonuses.
type List []Bonus

// Has reports whether any bonus of the type is present.
func (l List) Has(t Type) bool {
	for _, b := range l {
		if b.Type == t {
			return true
		}
	}
	return false
}

// HasSubtype reports whether a bonus of the type and subtype is present.
func (l List) HasSubtype(t Type, subtype int) bool {
	for _, b := range l {
		if b.Type == t && b.Subtype == subtype {
			return true
		}
	}
	return false
}

// Value sums the values of all bonuses of the type.
func (l List) Value(t Type) int {
	total := 0
	for _, b := range l {
		if b.Type == t {
			total += b.Value
		}
	}
	return total
}

// ValueSubtype sums the values of all bonuses of the type and subtype.
func (l List) ValueSubtype(t Type, subtype int) int {
	total := 0
	for _, b := range l {
		if b.Type == t && b.Subtype == subtype {
			total += b.Value
		}
	}
	return total
}

// Max returns the largest value among bonuses of the type, or 0.
func (l List) Max(t Type) int {
	best := 0
	found := false
	for _, b := range l {
		if b.Type != t {
			continue
		}
		if !found || b.Value > best {
			best = b.Value
			found = true
		}
	}
	return best
}

// Merge returns a new list holding l followed by others.
func (l List) Merge(others ...List) List {
	size := len(l)
	for _, o := range others {
		size += len(o)
	}
	out := make(List, 0, size)
	out = append(out, l...)
	for _, o := range others {
		out = append(out, o...)
	}
	return out
}

// Sorted returns a copy of the list in stable type/subtype/value order.
func (l List) Sorted() List {
	out := append(List(nil), l...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		if out[i].Subtype != out[j].Subtype {
			return out[i].Subtype < out[j].Subtype
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// Bearer is anything that answers bonus queries.
type Bearer interface {
	Bonuses() List
}
