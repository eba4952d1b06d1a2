package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/battlestate"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/event"
)

var _ battlestate.Journal = (*Store)(nil)

const eventColumns = `battle_id, seq, event_hash, prev_event_hash, chain_hash, signature_key_id,
    event_signature, timestamp, event_type, actor_type, actor_id, entity_type, entity_id, payload_json`

// AppendEvent atomically appends an event and returns it with sequence,
// hashes and signature set.
func (s *Store) AppendEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	if err := s.ready(); err != nil {
		return event.Event{}, err
	}

	validated, err := s.eventRegistry.ValidateForAppend(evt)
	if err != nil {
		return event.Event{}, err
	}
	evt = validated

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return event.Event{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if evt.Timestamp.IsZero() {
		evt.Timestamp = s.now()
	}
	evt.Timestamp = evt.Timestamp.UTC().Truncate(time.Millisecond)

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO event_seq (battle_id, next_seq) VALUES (?, 1) ON CONFLICT(battle_id) DO NOTHING`,
		evt.BattleID,
	); err != nil {
		return event.Event{}, fmt.Errorf("init event seq: %w", err)
	}
	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT next_seq FROM event_seq WHERE battle_id = ?`, evt.BattleID).Scan(&seq); err != nil {
		return event.Event{}, fmt.Errorf("get event seq: %w", err)
	}
	evt.Seq = uint64(seq)
	if _, err := tx.ExecContext(ctx, `UPDATE event_seq SET next_seq = next_seq + 1 WHERE battle_id = ?`, evt.BattleID); err != nil {
		return event.Event{}, fmt.Errorf("increment event seq: %w", err)
	}

	hash, err := event.EventHash(evt)
	if err != nil {
		return event.Event{}, fmt.Errorf("compute event hash: %w", err)
	}
	evt.Hash = hash

	prevHash := ""
	if evt.Seq > 1 {
		if err := tx.QueryRowContext(ctx,
			`SELECT chain_hash FROM events WHERE battle_id = ? AND seq = ?`,
			evt.BattleID, int64(evt.Seq-1),
		).Scan(&prevHash); err != nil {
			return event.Event{}, fmt.Errorf("load previous event: %w", err)
		}
	}

	chainHash, err := event.ChainHash(evt, prevHash)
	if err != nil {
		return event.Event{}, fmt.Errorf("compute chain hash: %w", err)
	}
	evt.PrevHash = prevHash
	evt.ChainHash = chainHash
	evt.Signature, evt.SignatureKeyID = "", ""
	if s.keyring != nil {
		signature, keyID, err := s.keyring.SignChainHash(evt.BattleID, chainHash)
		if err != nil {
			return event.Event{}, fmt.Errorf("sign chain hash: %w", err)
		}
		evt.Signature = signature
		evt.SignatureKeyID = keyID
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO events (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		evt.BattleID,
		int64(evt.Seq),
		evt.Hash,
		evt.PrevHash,
		evt.ChainHash,
		evt.SignatureKeyID,
		evt.Signature,
		toMillis(evt.Timestamp),
		string(evt.Type),
		string(evt.ActorType),
		evt.ActorID,
		evt.EntityType,
		evt.EntityID,
		evt.PayloadJSON,
	); err != nil {
		if isConstraintError(err) {
			return event.Event{}, fmt.Errorf("append event %d: sequence already stored: %w", evt.Seq, err)
		}
		return event.Event{}, fmt.Errorf("append event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return event.Event{}, fmt.Errorf("commit: %w", err)
	}
	return evt, nil
}

// ListEvents returns up to limit events with Seq > afterSeq in order.
func (s *Store) ListEvents(ctx context.Context, battleID string, afterSeq uint64, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(battleID) == "" {
		return nil, event.ErrBattleIDRequired
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE battle_id = ? AND seq > ? ORDER BY seq LIMIT ?`,
		battleID, int64(afterSeq), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		evt, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return events, nil
}

// GetEventBySeq returns one stored event.
func (s *Store) GetEventBySeq(ctx context.Context, battleID string, seq uint64) (event.Event, error) {
	if err := s.ready(); err != nil {
		return event.Event{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE battle_id = ? AND seq = ?`,
		battleID, int64(seq),
	)
	evt, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return event.Event{}, ErrNotFound
	}
	return evt, err
}

// LatestSeq returns the last stored sequence number of a battle, or zero.
func (s *Store) LatestSeq(ctx context.Context, battleID string) (uint64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	var seq int64
	if err := s.sqlDB.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM events WHERE battle_id = ?`, battleID,
	).Scan(&seq); err != nil {
		return 0, fmt.Errorf("latest seq: %w", err)
	}
	return uint64(seq), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (event.Event, error) {
	var (
		evt       event.Event
		seq       int64
		timestamp int64
		eventType string
		actorType string
	)
	if err := row.Scan(
		&evt.BattleID,
		&seq,
		&evt.Hash,
		&evt.PrevHash,
		&evt.ChainHash,
		&evt.SignatureKeyID,
		&evt.Signature,
		&timestamp,
		&eventType,
		&actorType,
		&evt.ActorID,
		&evt.EntityType,
		&evt.EntityID,
		&evt.PayloadJSON,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return event.Event{}, err
		}
		return event.Event{}, fmt.Errorf("scan event: %w", err)
	}
	evt.Seq = uint64(seq)
	evt.Timestamp = fromMillis(timestamp)
	evt.Type = event.Type(eventType)
	evt.ActorType = event.ActorType(actorType)
	return evt, nil
}

func isConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
