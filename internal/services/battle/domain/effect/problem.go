package effect

import "strings"

// Problem codes reported by applicability checks.
const (
	ProblemNoTargets       = "no_appropriate_target"
	ProblemNoObstacles     = "no_removable_obstacle"
	ProblemNoCreature      = "creature_unavailable"
	ProblemNoFreeHex       = "no_free_hex"
	ProblemSummonConflict  = "summon_conflict"
	ProblemSummonAmount    = "summon_amount_too_small"
	ProblemInvalidCastMode = "invalid_cast_mode"
	ProblemNoApplicable    = "no_applicable_effect"
)

// ProblemEntry is one diagnostic.
type ProblemEntry struct {
	Code    string
	Message string
}

// Problem collects the reasons a cast cannot proceed, in the order they were
// found.
type Problem struct {
	entries []ProblemEntry
}

// Add records a diagnostic.
func (p *Problem) Add(code, message string) {
	p.entries = append(p.entries, ProblemEntry{Code: code, Message: message})
}

// Empty reports whether nothing was recorded.
func (p *Problem) Empty() bool { return p == nil || len(p.entries) == 0 }

// Entries returns the recorded diagnostics.
func (p *Problem) Entries() []ProblemEntry {
	if p == nil {
		return nil
	}
	return append([]ProblemEntry(nil), p.entries...)
}

// Has reports whether a diagnostic with code was recorded.
func (p *Problem) Has(code string) bool {
	for _, e := range p.Entries() {
		if e.Code == code {
			return true
		}
	}
	return false
}

// String joins the messages.
func (p *Problem) String() string {
	msgs := make([]string, 0, len(p.Entries()))
	for _, e := range p.Entries() {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}
