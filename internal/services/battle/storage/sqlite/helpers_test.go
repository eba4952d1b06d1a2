package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/battle"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/event"
	"github.com/louisbranch/skirmish/internal/services/battle/storage/integrity"
)

var testNow = time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)

func testKeyring(t *testing.T) *integrity.Keyring {
	t.Helper()
	keyring, err := integrity.NewKeyring(
		map[string][]byte{"test-key-1": []byte("0123456789abcdef0123456789abcdef")},
		"test-key-1",
	)
	if err != nil {
		t.Fatalf("create test keyring: %v", err)
	}
	return keyring
}

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	registry, err := battle.NewRegistry()
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	path := filepath.Join(t.TempDir(), "battle.sqlite")
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	store, err := Open(context.Background(), path, registry, opts...)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func roundEvent(t *testing.T, battleID string, round int) event.Event {
	t.Helper()
	payload, err := json.Marshal(battle.RoundStarted{Round: round})
	if err != nil {
		t.Fatalf("encode payload: %v", err)
	}
	return event.Event{
		BattleID:    battleID,
		Type:        battle.EventTypeRoundStarted,
		ActorType:   event.ActorTypeSystem,
		PayloadJSON: payload,
	}
}
