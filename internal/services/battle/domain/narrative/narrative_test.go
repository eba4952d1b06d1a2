package narrative

import (
	"fmt"
	"testing"
)

type fakeTexts map[int]string

func (f fakeTexts) General(id int) string {
	if v, ok := f[id]; ok {
		return v
	}
	return fmt.Sprintf("<%d>", id)
}

func (f fakeTexts) SpellName(spellID int) string {
	return fmt.Sprintf("spell-%d", spellID)
}

func (f fakeTexts) CreatureName(creatureID int, plural bool) string {
	if plural {
		return fmt.Sprintf("creatures-%d", creatureID)
	}
	return fmt.Sprintf("creature-%d", creatureID)
}

func TestPluralText(t *testing.T) {
	tests := []struct {
		id, count, want int
	}{
		{0, 5, 0},
		{-367, 1, 367},
		{-367, 9, 367},
		{565, 1, 565},
		{565, 2, 566},
		{565, 0, 566},
	}
	for _, tt := range tests {
		if got := PluralText(tt.id, tt.count); got != tt.want {
			t.Fatalf("PluralText(%d, %d) = %d, want %d", tt.id, tt.count, got, tt.want)
		}
	}
}

func TestRenderFillsPlaceholdersInOrder(t *testing.T) {
	resolver, err := NewResolver(fakeTexts{376: "%s does %d damage.", 42: "creature"}, "en-US")
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	var line Line
	line.AddText(376)
	line.ReplaceSpell(17)
	line.ReplaceNumber(1250)

	if got, want := resolver.Render(line), "spell-17 does 1,250 damage."; got != want {
		t.Fatalf("render = %q, want %q", got, want)
	}
}

func TestRenderTrimmedAndRaw(t *testing.T) {
	resolver, err := NewResolver(fakeTexts{343: "\n  Does %d points of damage.\n"}, "en-US")
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	var line Line
	line.AddTrimmedText(343)
	line.ReplaceNumber(40)
	if got, want := resolver.Render(line), "Does 40 points of damage."; got != want {
		t.Fatalf("render = %q, want %q", got, want)
	}

	var raw Line
	raw.AddRaw("100%% of %s")
	raw.ReplaceCreature(3, true)
	if got, want := resolver.Render(raw), "100% of creatures-3"; got != want {
		t.Fatalf("render raw = %q, want %q", got, want)
	}
}

func TestRenderLeavesMissingReplacements(t *testing.T) {
	resolver, err := NewResolver(fakeTexts{1: "%d %s"}, "en-US")
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	var line Line
	line.AddText(1)
	line.ReplaceNumber(2)
	if got, want := resolver.Render(line), "2 %s"; got != want {
		t.Fatalf("render = %q, want %q", got, want)
	}
}

func TestNewResolverRejectsBadLocale(t *testing.T) {
	if _, err := NewResolver(fakeTexts{}, "not a locale!"); err == nil {
		t.Fatal("expected locale error")
	}
	if _, err := NewResolver(nil, "en-US"); err == nil {
		t.Fatal("expected texts error")
	}
}

func TestCloneDetaches(t *testing.T) {
	var line Line
	line.AddText(1)
	clone := line.Clone()
	clone.Message[0].ID = 2
	if line.Message[0].ID != 1 {
		t.Fatal("clone shares message storage")
	}
}
