// Package narrative builds battle-log lines as positional templates and
// renders them against a localized text table.
//
// A Line never holds rendered text. It records which text ids make up the
// message and which replacements fill its %s and %d placeholders, so the same
// line renders identically for every observer that uses the same locale.
package narrative

// Kind identifies what a Part refers to.
type Kind string

const (
	// KindText is a general text id.
	KindText Kind = "text"
	// KindTrimmedText is a general text id rendered with surrounding space removed.
	KindTrimmedText Kind = "trimmed_text"
	// KindNumber is a numeric value.
	KindNumber Kind = "number"
	// KindSpell is a spell name by spell id.
	KindSpell Kind = "spell"
	// KindCreatureSingular is a singular creature name by creature id.
	KindCreatureSingular Kind = "creature_singular"
	// KindCreaturePlural is a plural creature name by creature id.
	KindCreaturePlural Kind = "creature_plural"
	// KindRaw is a literal string.
	KindRaw Kind = "raw"
)

// Part is one message fragment or replacement.
type Part struct {
	Kind   Kind   `json:"kind"`
	ID     int    `json:"id,omitempty"`
	Number int64  `json:"number,omitempty"`
	Raw    string `json:"raw,omitempty"`
}

// Line is one battle-log entry.
type Line struct {
	Message      []Part `json:"message"`
	Replacements []Part `json:"replacements,omitempty"`
}

// Plurality selects singular or plural forms when a unit adds its name or a
// count-dependent text.
type Plurality int

const (
	// ByCount picks the form from the current count.
	ByCount Plurality = iota
	Singular
	Plural
)

// Count returns the count plurality resolves to for a unit with count units.
func (p Plurality) Count(count int) int {
	switch p {
	case Singular:
		return 1
	case Plural:
		return 2
	}
	return count
}

// AddText appends a general text id to the message.
func (l *Line) AddText(id int) {
	l.Message = append(l.Message, Part{Kind: KindText, ID: id})
}

// AddTrimmedText appends a general text id rendered without surrounding space.
func (l *Line) AddTrimmedText(id int) {
	l.Message = append(l.Message, Part{Kind: KindTrimmedText, ID: id})
}

// AddRaw appends a literal string to the message.
func (l *Line) AddRaw(s string) {
	l.Message = append(l.Message, Part{Kind: KindRaw, Raw: s})
}

// ReplaceNumber fills the next placeholder with a number.
func (l *Line) ReplaceNumber(n int64) {
	l.Replacements = append(l.Replacements, Part{Kind: KindNumber, Number: n})
}

// ReplaceText fills the next placeholder with a general text.
func (l *Line) ReplaceText(id int) {
	l.Replacements = append(l.Replacements, Part{Kind: KindText, ID: id})
}

// ReplaceSpell fills the next placeholder with a spell name.
func (l *Line) ReplaceSpell(spellID int) {
	l.Replacements = append(l.Replacements, Part{Kind: KindSpell, ID: spellID})
}

// ReplaceCreature fills the next placeholder with a creature name.
func (l *Line) ReplaceCreature(creatureID int, plural bool) {
	kind := KindCreatureSingular
	if plural {
		kind = KindCreaturePlural
	}
	l.Replacements = append(l.Replacements, Part{Kind: kind, ID: creatureID})
}

// ReplaceCreatureCount fills the next placeholder with the creature name form
// matching count.
func (l *Line) ReplaceCreatureCount(creatureID int, count int) {
	l.ReplaceCreature(creatureID, count != 1)
}

// ReplaceRaw fills the next placeholder with a literal string.
func (l *Line) ReplaceRaw(s string) {
	l.Replacements = append(l.Replacements, Part{Kind: KindRaw, Raw: s})
}

// Empty reports whether the line has no message parts.
func (l Line) Empty() bool {
	return len(l.Message) == 0
}

// Clone returns a deep copy of the line.
func (l Line) Clone() Line {
	return Line{
		Message:      append([]Part(nil), l.Message...),
		Replacements: append([]Part(nil), l.Replacements...),
	}
}

// PluralText selects the text id for count. Negative ids name a fixed text
// that ignores count; otherwise the plural form is stored at id+1.
func PluralText(id int, count int) int {
	switch {
	case id == 0:
		return 0
	case id < 0:
		return -id
	case count == 1:
		return id
	default:
		return id + 1
	}
}
