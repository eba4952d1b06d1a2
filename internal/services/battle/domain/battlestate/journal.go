package battlestate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/event"
)

//go:generate go tool mockgen -destination=./mocks/journal_mock.go -package=mocks . Journal

// Journal persists sealed battle events in sequence order.
type Journal interface {
	// AppendEvent assigns the next sequence number, seals the event hashes
	// and stores it. The stored event is returned.
	AppendEvent(ctx context.Context, evt event.Event) (event.Event, error)
	// ListEvents returns up to limit events with Seq > afterSeq.
	ListEvents(ctx context.Context, battleID string, afterSeq uint64, limit int) ([]event.Event, error)
}

// MemoryJournal is a process-local Journal. Events are hash chained but not
// signed.
type MemoryJournal struct {
	mu     sync.Mutex
	events map[string][]event.Event
}

var _ Journal = (*MemoryJournal)(nil)

// NewMemoryJournal returns an empty journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{events: make(map[string][]event.Event)}
}

func (j *MemoryJournal) AppendEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	battleID := strings.TrimSpace(evt.BattleID)
	if battleID == "" {
		return event.Event{}, event.ErrBattleIDRequired
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	stored := j.events[battleID]
	evt.Seq = uint64(len(stored)) + 1
	prevHash := ""
	if len(stored) > 0 {
		prevHash = stored[len(stored)-1].ChainHash
	}
	hash, err := event.EventHash(evt)
	if err != nil {
		return event.Event{}, fmt.Errorf("compute event hash: %w", err)
	}
	evt.Hash = hash
	chainHash, err := event.ChainHash(evt, prevHash)
	if err != nil {
		return event.Event{}, fmt.Errorf("compute chain hash: %w", err)
	}
	evt.PrevHash = prevHash
	evt.ChainHash = chainHash
	evt.PayloadJSON = append([]byte(nil), evt.PayloadJSON...)

	j.events[battleID] = append(stored, evt)
	return evt, nil
}

func (j *MemoryJournal) ListEvents(ctx context.Context, battleID string, afterSeq uint64, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	stored := j.events[strings.TrimSpace(battleID)]
	if afterSeq >= uint64(len(stored)) {
		return nil, nil
	}
	page := stored[afterSeq:]
	if len(page) > limit {
		page = page[:limit]
	}
	return append([]event.Event(nil), page...), nil
}
