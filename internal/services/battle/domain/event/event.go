package event

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/skirmish/internal/services/battle/core/encoding"
)

// Type identifies the event type string.
type Type string

// ActorType identifies who caused the event.
type ActorType string

const (
	// ActorTypeSystem marks engine-originated events.
	ActorTypeSystem ActorType = "system"
	// ActorTypePlayer marks events caused by a player action.
	ActorTypePlayer ActorType = "player"
)

// Event is the persisted battle event envelope.
type Event struct {
	BattleID       string
	Seq            uint64
	Type           Type
	Timestamp      time.Time
	ActorType      ActorType
	ActorID        string
	EntityType     string
	EntityID       string
	PayloadJSON    []byte
	Hash           string
	PrevHash       string
	ChainHash      string
	Signature      string
	SignatureKeyID string
}

var errHashRequired = errors.New("event hash is required")

// envelope is the hashed portion of an event. Timestamps are excluded so two
// runs of the same seeded battle produce the same chain.
func envelope(evt Event) map[string]any {
	payload := json.RawMessage(evt.PayloadJSON)
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	env := map[string]any{
		"battle_id":  strings.TrimSpace(evt.BattleID),
		"event_type": string(evt.Type),
		"actor_type": string(evt.ActorType),
		"payload":    payload,
	}
	if evt.ActorID != "" {
		env["actor_id"] = evt.ActorID
	}
	if evt.EntityType != "" {
		env["entity_type"] = evt.EntityType
	}
	if evt.EntityID != "" {
		env["entity_id"] = evt.EntityID
	}
	return env
}

// EventHash returns the content hash of the event envelope.
func EventHash(evt Event) (string, error) {
	return encoding.ContentHash(envelope(evt))
}

// ChainHash links evt to its predecessor. evt.Hash must already be set.
func ChainHash(evt Event, prevHash string) (string, error) {
	if strings.TrimSpace(evt.Hash) == "" {
		return "", errHashRequired
	}
	data, err := encoding.CanonicalJSON(map[string]any{
		"seq":        evt.Seq,
		"event_hash": evt.Hash,
		"prev_hash":  prevHash,
	})
	if err != nil {
		return "", fmt.Errorf("canonical chain input: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
