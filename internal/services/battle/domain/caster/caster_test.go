package caster

import (
	"reflect"
	"testing"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/battle"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/bonus"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/creature"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/hex"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/narrative"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/spell"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/unit"
)

func magicArrow() *spell.Spell {
	return &spell.Spell{
		ID: spell.MagicArrow, Name: "Magic Arrow", Level: 1,
		Schools:    []spell.School{spell.Air, spell.Fire, spell.Water, spell.Earth},
		Positivity: spell.Negative, Power: 10,
		Levels: [spell.MasteryCount]spell.LevelInfo{
			{Cost: 5, Power: 10}, {Cost: 4, Power: 20}, {Cost: 4, Power: 30}, {Cost: 4, Power: 50},
		},
	}
}

func casterUnit(t *testing.T, amount int, bonuses bonus.List) *unit.Unit {
	t.Helper()
	cr := creature.Creature{
		ID: 27, NameSingular: "Master Genie", NamePlural: "Master Genies", Level: 6,
		MaxHealth: 40, MinDamage: 12, MaxDamage: 14, Casts: 3, Bonuses: bonuses,
	}
	u, err := unit.New(unit.Spec{ID: 4, Side: 1, Owner: "p2", Type: cr, Amount: amount, Position: hex.New(10, 5)})
	if err != nil {
		t.Fatalf("new unit: %v", err)
	}
	return u
}

func TestUnitCasterScalesWithCount(t *testing.T) {
	sp := magicArrow()
	u := casterUnit(t, 250, bonus.List{
		{Type: bonus.Spellcaster, Subtype: spell.MagicArrow, Value: 5},
		{Type: bonus.CreatureSpellPower, Value: 40},
		{Type: bonus.SpecificSpellPower, Subtype: spell.MagicArrow, Value: 3},
	})
	c := NewUnitCaster(u)

	if level, school := c.SpellSchoolLevel(ModeCreatureActive, sp); level != spell.MasteryExpert || school != spell.SchoolNone {
		t.Fatalf("school level = %d/%v, want clamped expert without school", level, school)
	}
	if got := c.EffectPower(ModeCreatureActive, sp); got != 100 {
		t.Fatalf("effect power = %d, want 100", got)
	}
	if got := c.EnchantPower(ModeCreatureActive, sp); got != defaultEnchantPower {
		t.Fatalf("enchant power = %d, want %d", got, defaultEnchantPower)
	}
	if got := c.EffectValue(ModeCreatureActive, sp); got != 750 {
		t.Fatalf("effect value = %d, want 750", got)
	}
	if got := c.SpellBonus(sp, 42, u); got != 42 {
		t.Fatalf("spell bonus = %d, want 42", got)
	}
	if got := c.ManaCost(ModeCreatureActive, sp); got != 0 {
		t.Fatalf("mana cost = %d, want 0", got)
	}
}

func TestUnitCasterCanCast(t *testing.T) {
	sp := magicArrow()
	caster := bonus.List{{Type: bonus.Spellcaster, Subtype: spell.MagicArrow, Value: 2}}
	tests := []struct {
		name    string
		bonuses bonus.List
		mode    Mode
		used    int
		want    Reason
	}{
		{name: "ready", bonuses: caster, mode: ModeCreatureActive, want: ReasonNone},
		{name: "hero mode", bonuses: caster, mode: ModeHero, want: ReasonWrongMode},
		{name: "not a caster", mode: ModeCreatureActive, want: ReasonNoCapability},
		{name: "out of charges", bonuses: caster, mode: ModeCreatureActive, used: 3, want: ReasonNoCharges},
		{name: "passive ignores charges", mode: ModePassive, used: 3, want: ReasonNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := casterUnit(t, 2, tt.bonuses)
			u.State.CastsUsed = tt.used
			ok, reason := NewUnitCaster(u).CanCast(tt.mode, sp)
			if reason != tt.want || ok != (tt.want == ReasonNone) {
				t.Fatalf("can cast = %v/%q, want %q", ok, reason, tt.want)
			}
		})
	}
}

func TestUnitCasterDescriptionFollowsCount(t *testing.T) {
	sp := magicArrow()
	tests := []struct {
		amount int
		textID int
		kind   narrative.Kind
	}{
		{amount: 1, textID: 565, kind: narrative.KindCreatureSingular},
		{amount: 3, textID: 566, kind: narrative.KindCreaturePlural},
	}
	for _, tt := range tests {
		var line narrative.Line
		NewUnitCaster(casterUnit(t, tt.amount, nil)).CastDescription(sp, nil, &line)
		if line.Message[0].ID != tt.textID {
			t.Fatalf("text = %d, want %d", line.Message[0].ID, tt.textID)
		}
		want := []narrative.Part{{Kind: tt.kind, ID: 27}, {Kind: narrative.KindSpell, ID: spell.MagicArrow}}
		if !reflect.DeepEqual(line.Replacements, want) {
			t.Fatalf("replacements = %+v, want %+v", line.Replacements, want)
		}
	}
}

func testHero() *battle.Hero {
	return &battle.Hero{
		Name:   "Solmyr",
		Mana:   10,
		Power:  4,
		Spells: []int{spell.MagicArrow},
		Bonuses: bonus.List{
			{Type: bonus.MagicSchoolSkill, Subtype: int(spell.Water), Value: 2},
			{Type: bonus.MagicSchoolSkill, Subtype: int(spell.Air), Value: 1},
			{Type: bonus.SpellPower, Value: 1},
			{Type: bonus.SpellDuration, Value: 2},
			{Type: bonus.SpellDamage, Value: 10},
			{Type: bonus.SpecificSpellDamage, Subtype: spell.MagicArrow, Value: 5},
			{Type: bonus.ManaReduction, Value: 1},
		},
	}
}

func TestHeroCasterNumbers(t *testing.T) {
	sp := magicArrow()
	c := NewHeroCaster(0, "p1", testHero())

	if level, school := c.SpellSchoolLevel(ModeHero, sp); level != spell.MasteryAdvanced || school != spell.Water {
		t.Fatalf("school level = %d/%v, want advanced water", level, school)
	}
	if got := c.EffectPower(ModeHero, sp); got != 5 {
		t.Fatalf("effect power = %d, want 5", got)
	}
	if got := c.EnchantPower(ModeHero, sp); got != 7 {
		t.Fatalf("enchant power = %d, want 7", got)
	}
	if got := c.SpellBonus(sp, 100, nil); got != 115 {
		t.Fatalf("spell bonus = %d, want 115", got)
	}
	if got := c.SpecificSpellBonus(sp, 100); got != 105 {
		t.Fatalf("specific bonus = %d, want 105", got)
	}
	if got := c.ManaCost(ModeHero, sp); got != 3 {
		t.Fatalf("mana cost = %d, want 3", got)
	}
	if c.CasterUnitID() != NoUnit {
		t.Fatalf("caster unit id = %d, want %d", c.CasterUnitID(), NoUnit)
	}
}

func TestHeroCasterCanCast(t *testing.T) {
	sp := magicArrow()
	tests := []struct {
		name string
		edit func(*battle.Hero)
		mode Mode
		want Reason
	}{
		{name: "ready", mode: ModeHero, want: ReasonNone},
		{name: "creature mode", mode: ModeCreatureActive, want: ReasonWrongMode},
		{name: "unknown spell", mode: ModeHero, edit: func(h *battle.Hero) { h.Spells = nil }, want: ReasonSpellUnknown},
		{name: "already cast", mode: ModeHero, edit: func(h *battle.Hero) { h.CastThisRound = true }, want: ReasonAlreadyCast},
		{name: "no mana", mode: ModeHero, edit: func(h *battle.Hero) { h.Mana = 2 }, want: ReasonNoMana},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hero := testHero()
			if tt.edit != nil {
				tt.edit(hero)
			}
			ok, reason := NewHeroCaster(0, "p1", hero).CanCast(tt.mode, sp)
			if reason != tt.want || ok != (tt.want == ReasonNone) {
				t.Fatalf("can cast = %v/%q, want %q", ok, reason, tt.want)
			}
		})
	}
}

func TestHeroCastDescription(t *testing.T) {
	sp := magicArrow()
	c := NewHeroCaster(0, "p1", testHero())
	target := casterUnit(t, 1, nil)

	var single narrative.Line
	c.CastDescription(sp, []unit.View{target}, &single)
	if single.Message[0].ID != 195 || len(single.Replacements) != 3 {
		t.Fatalf("single target line = %+v", single)
	}

	var mass narrative.Line
	c.CastDescription(sp, []unit.View{target, target}, &mass)
	want := narrative.Line{
		Message:      []narrative.Part{{Kind: narrative.KindText, ID: 196}},
		Replacements: []narrative.Part{{Kind: narrative.KindRaw, Raw: "Solmyr"}, {Kind: narrative.KindSpell, ID: spell.MagicArrow}},
	}
	if !reflect.DeepEqual(mass, want) {
		t.Fatalf("mass line = %+v, want %+v", mass, want)
	}
}
