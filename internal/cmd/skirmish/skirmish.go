// Package skirmish runs scripted battles and replays stored ones.
package skirmish

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"
	entrypoint "github.com/louisbranch/skirmish/internal/platform/cmd"
	apperrors "github.com/louisbranch/skirmish/internal/platform/errors"
	errori18n "github.com/louisbranch/skirmish/internal/platform/errors/i18n"
	"github.com/louisbranch/skirmish/internal/platform/i18n/catalog"
	"github.com/louisbranch/skirmish/internal/services/battle/app"
	"github.com/louisbranch/skirmish/internal/services/battle/content"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/battle"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/battlestate"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/narrative"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/replay"
	"github.com/louisbranch/skirmish/internal/services/battle/storage/integrity"
	"github.com/louisbranch/skirmish/internal/services/battle/storage/sqlite"
)

// Config holds skirmish command configuration.
type Config struct {
	Scenario string `env:"SKIRMISH_SCENARIO_FILE"`
	DBPath   string `env:"SKIRMISH_DB_PATH"`
	Locale   string `env:"SKIRMISH_LOCALE"`
	Seed     int64  `env:"SKIRMISH_SEED"`
	// Replay names a stored battle to replay instead of running a scenario.
	Replay string
}

// ParseConfig parses environment defaults and then flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "path to scenario json file")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "battle database path; battles stay in memory when empty")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "narration locale, defaults to the scenario locale")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed, defaults to the scenario seed")
	fs.StringVar(&cfg.Replay, "replay", cfg.Replay, "battle id to replay from the database")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the skirmish command and writes narration to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSkirmish, func(ctx context.Context) error {
		if strings.TrimSpace(cfg.Replay) != "" {
			return runReplay(ctx, cfg, out)
		}
		return runScenario(ctx, cfg, out)
	})
}

func runScenario(ctx context.Context, cfg Config, out io.Writer) error {
	if strings.TrimSpace(cfg.Scenario) == "" {
		return errors.New("scenario path is required")
	}
	sc, err := LoadScenario(cfg.Scenario)
	if err != nil {
		return err
	}
	data, err := content.Load()
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	locale := pickLocale(cfg.Locale, sc.Locale)
	seed := sc.Seed
	if cfg.Seed != 0 {
		seed = cfg.Seed
	}

	battleID := uuid.NewString()
	setup := sc.Battle(battleID, seed, locale)
	records := sc.Records()
	state, err := buildState(setup, records, data.Creatures)
	if err != nil {
		return err
	}

	var journal battlestate.Journal = battlestate.NewMemoryJournal()
	var store *sqlite.Store
	if strings.TrimSpace(cfg.DBPath) != "" {
		store, err = openStore(ctx, cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("close battle store: %v", err)
			}
		}()
		journal = store
	}

	session, err := app.NewSession(state, journal, data, app.WithSeed(seed), app.WithLocale(locale))
	if err != nil {
		return err
	}
	if store != nil {
		setup.Seed = session.Seed()
		if err := store.SaveBattle(ctx, setup); err != nil {
			return err
		}
		if err := store.SaveUnits(ctx, battleID, records); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "battle %s seed %d\n", battleID, session.Seed())
	shown := len(state.Log)
	for i, act := range sc.Actions {
		act.BattleID = battleID
		if err := session.Handle(ctx, act); err != nil {
			code := apperrors.CodeOf(err)
			if code == apperrors.CodeUnknown || code == apperrors.CodeBattleSubmitFailed {
				return fmt.Errorf("action %d (%s): %w", i+1, act.Type, err)
			}
			fmt.Fprintf(out, "rejected %s: %s\n", act.Type, errori18n.Localize(locale, err))
			continue
		}
		for _, line := range session.Narration(shown) {
			fmt.Fprintln(out, line)
		}
		shown = len(session.Snapshot().Log)
	}
	fmt.Fprintf(out, "round %d, %d events\n", session.View().CurrentRound(), session.LastSeq())
	return nil
}

func runReplay(ctx context.Context, cfg Config, out io.Writer) error {
	if strings.TrimSpace(cfg.DBPath) == "" {
		return errors.New("replay needs a battle database")
	}
	data, err := content.Load()
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	store, err := openStore(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close battle store: %v", err)
		}
	}()

	setup, err := store.GetBattle(ctx, cfg.Replay)
	if err != nil {
		return err
	}
	records, err := store.LoadUnitRecords(ctx, setup.ID)
	if err != nil {
		return err
	}
	initial, err := buildState(setup, records, data.Creatures)
	if err != nil {
		return err
	}

	options := replay.Options{}
	if keyring := store.Keyring(); keyring != nil {
		options.Verifier = keyring
	}
	result, err := replay.Replay(ctx, store, setup.ID, initial, options)
	if err != nil {
		return fmt.Errorf("replay battle %s: %w", setup.ID, err)
	}

	locale := pickLocale(cfg.Locale, setup.Locale)
	texts := narrative.NewCatalogTexts(catalog.Default(), locale, data.Creatures, data.Spells)
	resolver, err := narrative.NewResolver(texts, locale)
	if err != nil {
		return fmt.Errorf("build narration: %w", err)
	}
	fmt.Fprintf(out, "battle %s seed %d\n", setup.ID, setup.Seed)
	for _, line := range resolver.RenderAll(result.State.Log) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "round %d, %d events\n", result.State.CurrentRound(), result.LastSeq)
	writeSurvivors(out, result.State)
	return nil
}

// openStore opens the battle database, signing events when a keyring is
// configured.
func openStore(ctx context.Context, path string) (*sqlite.Store, error) {
	registry, err := battle.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("build event registry: %w", err)
	}
	keys, err := integrity.LoadConfig()
	if err != nil {
		return nil, err
	}
	var opts []sqlite.Option
	if keys.Configured() {
		keyring, err := keys.Keyring()
		if err != nil {
			return nil, fmt.Errorf("load keyring: %w", err)
		}
		opts = append(opts, sqlite.WithKeyring(keyring))
	}
	return sqlite.Open(ctx, path, registry, opts...)
}

func writeSurvivors(out io.Writer, state *battle.State) {
	for _, u := range state.AliveUnits() {
		cr := u.Creature()
		fmt.Fprintf(out, "side %d: %d %s\n", u.UnitSide(), u.Count(), cr.Name(u.Count() != 1))
	}
}

// pickLocale prefers the requested locale, then the battle's own, then the
// base locale.
func pickLocale(requested, stored string) string {
	if locale := strings.TrimSpace(requested); locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(stored); locale != "" {
		return locale
	}
	return catalog.BaseLocale
}
