package skirmish

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	apperrors "github.com/louisbranch/skirmish/internal/platform/errors"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/roster"
)

const duelScenario = "testdata/duel.json"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SKIRMISH_SCENARIO_FILE", "SKIRMISH_DB_PATH", "SKIRMISH_LOCALE", "SKIRMISH_SEED",
		"SKIRMISH_BATTLE_HMAC_KEYS", "SKIRMISH_BATTLE_HMAC_KEY", "SKIRMISH_OTEL_ENDPOINT",
	} {
		t.Setenv(key, "")
	}
}

func TestParseConfigDefaults(t *testing.T) {
	clearEnv(t)
	fs := flag.NewFlagSet("skirmish", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg != (Config{}) {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SKIRMISH_DB_PATH", "env.db")
	t.Setenv("SKIRMISH_SEED", "9")
	fs := flag.NewFlagSet("skirmish", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-scenario", "duel.json", "-locale", "pt-BR", "-seed", "3", "-replay", "b1"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	want := Config{Scenario: "duel.json", DBPath: "env.db", Locale: "pt-BR", Seed: 3, Replay: "b1"}
	if cfg != want {
		t.Fatalf("config = %+v, want %+v", cfg, want)
	}
}

func TestParseScenarioValidation(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "unknown field", data: `{"units":[{"id":0,"at":{"x":1,"y":1}}],"weather":"rain"}`},
		{name: "no units", data: `{"units":[]}`},
		{name: "off field", data: `{"units":[{"id":0,"at":{"x":17,"y":1}}]}`},
		{name: "not json", data: `units`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseScenario([]byte(tt.data)); err == nil {
				t.Fatal("expected scenario error")
			}
		})
	}
}

func TestScenarioRecordsDefaultExternalSlot(t *testing.T) {
	sc, err := LoadScenario(duelScenario)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	summoned := roster.SlotSummoned
	sc.Units = append(sc.Units,
		Placement{ID: 3, CreatureID: 0, Amount: 1, Slot: roster.SlotSummoned},
		Placement{ID: 4, CreatureID: 0, Amount: 1, Slot: 2, ExtSlot: &summoned},
	)
	var got []roster.Slot
	for _, rec := range sc.Records() {
		got = append(got, rec.ExtSlot)
	}
	want := []roster.Slot{0, 1, 0, roster.SlotNone, roster.SlotSummoned}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ext slots = %v, want %v", got, want)
	}

	setup := sc.Battle("b1", 5, "en-US")
	if len(setup.Obstacles) != 1 || setup.Obstacles[0].SpellID != -1 || len(setup.Armies) != 2 {
		t.Fatalf("setup = %+v", setup)
	}
}

func TestRunScenarioInMemory(t *testing.T) {
	clearEnv(t)
	var out bytes.Buffer
	if err := Run(context.Background(), Config{Scenario: duelScenario}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := outputLines(&out)
	if !strings.HasPrefix(lines[0], "battle ") || !strings.HasSuffix(lines[0], " seed 11") {
		t.Fatalf("header = %q", lines[0])
	}
	for _, want := range []string{
		"Round 1 begins.",
		"Gem casts Magic Arrow on Troglodytes.",
		"Magic Arrow does 30 damage.",
		"6 Troglodytes perish.",
		"rejected battle.cast_spell: The caster cannot cast this spell.",
		"The Pikemen wait.",
		"The Troglodytes defend.",
		"rejected battle.attack: Unit 2 cannot act this turn.",
		"Round 2 begins.",
	} {
		if !containsLine(lines, want) {
			t.Fatalf("missing line %q in:\n%s", want, strings.Join(lines, "\n"))
		}
	}
	if last := lines[len(lines)-1]; !strings.HasPrefix(last, "round 2, ") {
		t.Fatalf("summary = %q", last)
	}
}

func TestRunScenarioSeedOverride(t *testing.T) {
	clearEnv(t)
	var out bytes.Buffer
	if err := Run(context.Background(), Config{Scenario: duelScenario, Seed: 99}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if header := outputLines(&out)[0]; !strings.HasSuffix(header, " seed 99") {
		t.Fatalf("header = %q", header)
	}
}

func TestRunAndReplayFromDatabase(t *testing.T) {
	clearEnv(t)
	t.Setenv("SKIRMISH_BATTLE_HMAC_KEY", "replay-test-secret")
	dbPath := filepath.Join(t.TempDir(), "battles.db")

	var live bytes.Buffer
	if err := Run(context.Background(), Config{Scenario: duelScenario, DBPath: dbPath}, &live); err != nil {
		t.Fatalf("run: %v", err)
	}
	liveLines := outputLines(&live)
	battleID := strings.Fields(liveLines[0])[1]

	var replayed bytes.Buffer
	if err := Run(context.Background(), Config{DBPath: dbPath, Replay: battleID}, &replayed); err != nil {
		t.Fatalf("replay: %v", err)
	}
	replayLines := outputLines(&replayed)

	var narration []string
	for _, line := range liveLines {
		if !strings.HasPrefix(line, "rejected ") {
			narration = append(narration, line)
		}
	}
	if len(replayLines) < len(narration) || !reflect.DeepEqual(replayLines[:len(narration)], narration) {
		t.Fatalf("replay output:\n%s\nwant prefix:\n%s", strings.Join(replayLines, "\n"), strings.Join(narration, "\n"))
	}
	survivors := replayLines[len(narration):]
	if len(survivors) != 3 || survivors[0] != "side 0: 20 Pikemen" {
		t.Fatalf("survivors = %v", survivors)
	}

	t.Setenv("SKIRMISH_BATTLE_HMAC_KEY", "another-secret")
	err := Run(context.Background(), Config{DBPath: dbPath, Replay: battleID}, &bytes.Buffer{})
	if code := apperrors.CodeOf(err); code != apperrors.CodeJournalSignatureBad {
		t.Fatalf("replay with wrong key code = %v (%v), want %v", code, err, apperrors.CodeJournalSignatureBad)
	}
}

func TestRunValidation(t *testing.T) {
	clearEnv(t)
	missing := filepath.Join(t.TempDir(), "missing.json")
	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"units":[]}`), 0o600); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "no scenario", cfg: Config{}},
		{name: "missing scenario", cfg: Config{Scenario: missing}},
		{name: "bad scenario", cfg: Config{Scenario: bad}},
		{name: "bad locale", cfg: Config{Scenario: duelScenario, Locale: "??"}},
		{name: "replay without database", cfg: Config{Replay: "b1"}},
		{name: "replay unknown battle", cfg: Config{Replay: "b1", DBPath: filepath.Join(t.TempDir(), "empty.db")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Run(context.Background(), tt.cfg, nil); err == nil {
				t.Fatal("expected run error")
			}
		})
	}
}

func TestPickLocale(t *testing.T) {
	tests := []struct {
		requested, stored, want string
	}{
		{"pt-BR", "en-US", "pt-BR"},
		{" ", "pt-BR", "pt-BR"},
		{"", "", "en-US"},
	}
	for _, tt := range tests {
		if got := pickLocale(tt.requested, tt.stored); got != tt.want {
			t.Fatalf("pickLocale(%q, %q) = %q, want %q", tt.requested, tt.stored, got, tt.want)
		}
	}
}

func outputLines(buf *bytes.Buffer) []string {
	return strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
}

func containsLine(lines []string, want string) bool {
	for _, line := range lines {
		if line == want {
			return true
		}
	}
	return false
}
