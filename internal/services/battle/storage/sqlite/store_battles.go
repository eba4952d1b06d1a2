package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/battle"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/hex"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/roster"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/unit"
)

// BattleRecord is the setup a battle started from. Together with the unit
// records it rebuilds the initial state replay folds events into.
type BattleRecord struct {
	ID        string
	Seed      int64
	Locale    string
	Sides     [2]battle.Side
	Armies    []roster.Army
	Obstacles []battle.Obstacle
	CreatedAt time.Time
}

// SaveBattle stores the battle setup. A battle id is stored once.
func (s *Store) SaveBattle(ctx context.Context, rec BattleRecord) error {
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(rec.ID) == "" {
		return fmt.Errorf("battle id is required")
	}
	sides, err := json.Marshal(rec.Sides)
	if err != nil {
		return fmt.Errorf("encode sides: %w", err)
	}
	obstaclesJSON, err := encodeList(rec.Obstacles)
	if err != nil {
		return fmt.Errorf("encode obstacles: %w", err)
	}
	armiesJSON, err := encodeList(rec.Armies)
	if err != nil {
		return fmt.Errorf("encode armies: %w", err)
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	if _, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO battles (id, seed, locale, sides_json, obstacles_json, armies_json, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Seed, rec.Locale, sides, obstaclesJSON, armiesJSON, toMillis(createdAt),
	); err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("battle %s already stored: %w", rec.ID, err)
		}
		return fmt.Errorf("save battle: %w", err)
	}
	return nil
}

// GetBattle loads a battle setup.
func (s *Store) GetBattle(ctx context.Context, battleID string) (BattleRecord, error) {
	if err := s.ready(); err != nil {
		return BattleRecord{}, err
	}
	var (
		rec           BattleRecord
		sides         []byte
		obstaclesJSON []byte
		armiesJSON    []byte
		createdAt     int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, seed, locale, sides_json, obstacles_json, armies_json, created_at FROM battles WHERE id = ?`, battleID,
	).Scan(&rec.ID, &rec.Seed, &rec.Locale, &sides, &obstaclesJSON, &armiesJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return BattleRecord{}, ErrNotFound
	}
	if err != nil {
		return BattleRecord{}, fmt.Errorf("get battle: %w", err)
	}
	if err := json.Unmarshal(sides, &rec.Sides); err != nil {
		return BattleRecord{}, fmt.Errorf("decode sides: %w", err)
	}
	if err := decodeList(obstaclesJSON, &rec.Obstacles); err != nil {
		return BattleRecord{}, fmt.Errorf("decode obstacles: %w", err)
	}
	if err := decodeList(armiesJSON, &rec.Armies); err != nil {
		return BattleRecord{}, fmt.Errorf("decode armies: %w", err)
	}
	rec.CreatedAt = fromMillis(createdAt)
	return rec, nil
}

// SaveUnits replaces the unit records of a battle.
func (s *Store) SaveUnits(ctx context.Context, battleID string, records []unit.Record) error {
	if err := s.ready(); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM battle_units WHERE battle_id = ?`, battleID); err != nil {
		return fmt.Errorf("clear units: %w", err)
	}
	for _, rec := range records {
		bonusesJSON, err := encodeList(rec.Bonuses)
		if err != nil {
			return fmt.Errorf("encode unit %d bonuses: %w", rec.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO battle_units (battle_id, unit_id, creature_id, base_amount, owner, slot, side,
    initial_position, army_id, ext_slot, bonuses_json) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			battleID, rec.ID, rec.CreatureID, rec.BaseAmount, rec.Owner, int(rec.Slot), rec.Side,
			int(rec.InitialPosition), rec.ArmyID, int(rec.ExtSlot), bonusesJSON,
		); err != nil {
			return fmt.Errorf("save unit %d: %w", rec.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadUnitRecords returns the unit records of a battle ordered by unit id.
func (s *Store) LoadUnitRecords(ctx context.Context, battleID string) ([]unit.Record, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT unit_id, creature_id, base_amount, owner, slot, side, initial_position, army_id, ext_slot, bonuses_json
FROM battle_units WHERE battle_id = ? ORDER BY unit_id`, battleID,
	)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()

	var records []unit.Record
	for rows.Next() {
		var (
			rec         unit.Record
			slot        int
			position    int
			extSlot     int
			bonusesJSON []byte
		)
		if err := rows.Scan(&rec.ID, &rec.CreatureID, &rec.BaseAmount, &rec.Owner, &slot, &rec.Side,
			&position, &rec.ArmyID, &extSlot, &bonusesJSON); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		rec.Slot = roster.Slot(slot)
		rec.ExtSlot = roster.Slot(extSlot)
		rec.InitialPosition = hex.Hex(position)
		if err := decodeList(bonusesJSON, &rec.Bonuses); err != nil {
			return nil, fmt.Errorf("decode unit %d bonuses: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read units: %w", err)
	}
	return records, nil
}

// encodeList stores a nil list as an empty JSON array.
func encodeList[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}

// decodeList reads a JSON array, leaving an empty one as nil.
func decodeList[S ~[]T, T any](data []byte, target *S) error {
	var items S
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	if len(items) == 0 {
		items = nil
	}
	*target = items
	return nil
}
