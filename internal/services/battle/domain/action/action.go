// Package action defines the battle action envelope, its payloads and the
// registry that validates actions before a session handles them.
package action

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/louisbranch/skirmish/internal/platform/errors"
	"github.com/louisbranch/skirmish/internal/services/battle/core/encoding"
)

var (
	// ErrBattleIDRequired indicates a missing battle id.
	ErrBattleIDRequired = errors.New("battle id is required")
	// ErrTypeRequired indicates a missing action type.
	ErrTypeRequired = errors.New("action type is required")
	// ErrTypeUnknown indicates an unregistered action type.
	ErrTypeUnknown = errors.New("action type is not registered")
	// ErrActorIDRequired indicates a player action without a player.
	ErrActorIDRequired = errors.New("actor id is required")
	// ErrPayloadInvalid indicates malformed payload JSON.
	ErrPayloadInvalid = errors.New("payload json must be valid")
)

// Type identifies an action type.
type Type string

const (
	TypeCastSpell Type = "battle.cast_spell"
	TypeAttack    Type = "battle.attack"
	TypeWait      Type = "battle.wait"
	TypeDefend    Type = "battle.defend"
	TypeEndRound  Type = "battle.end_round"
)

// Action is the envelope of one requested battle action.
type Action struct {
	BattleID    string          `json:"battle_id"`
	Type        Type            `json:"type"`
	ActorID     string          `json:"actor_id,omitempty"`
	PayloadJSON json.RawMessage `json:"payload,omitempty"`
}

// Decode unmarshals the payload into target.
func (a Action) Decode(target any) error {
	if err := json.Unmarshal(a.PayloadJSON, target); err != nil {
		return fmt.Errorf("decode %s payload: %w", a.Type, err)
	}
	return nil
}

// PayloadValidator validates a canonical payload JSON document.
type PayloadValidator func(json.RawMessage) error

// Definition registers metadata for an action type.
type Definition struct {
	Type Type
	// PlayerOnly actions must name the acting player.
	PlayerOnly      bool
	ValidatePayload PayloadValidator
}

// Registry stores action definitions.
type Registry struct {
	definitions map[Type]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{definitions: make(map[Type]Definition)}
}

// Register adds an action definition.
func (r *Registry) Register(def Definition) error {
	def.Type = Type(strings.TrimSpace(string(def.Type)))
	if def.Type == "" {
		return ErrTypeRequired
	}
	if _, exists := r.definitions[def.Type]; exists {
		return fmt.Errorf("action type already registered: %s", def.Type)
	}
	r.definitions[def.Type] = def
	return nil
}

// Types returns the registered action types in order.
func (r *Registry) Types() []Type {
	out := make([]Type, 0, len(r.definitions))
	for t := range r.definitions {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Validate normalizes act and checks it against its definition.
func (r *Registry) Validate(act Action) (Action, error) {
	act.BattleID = strings.TrimSpace(act.BattleID)
	if act.BattleID == "" {
		return Action{}, ErrBattleIDRequired
	}
	act.Type = Type(strings.TrimSpace(string(act.Type)))
	if act.Type == "" {
		return Action{}, ErrTypeRequired
	}
	def, ok := r.definitions[act.Type]
	if !ok {
		return Action{}, fmt.Errorf("%w: %s", ErrTypeUnknown, act.Type)
	}
	act.ActorID = strings.TrimSpace(act.ActorID)
	if def.PlayerOnly && act.ActorID == "" {
		return Action{}, ErrActorIDRequired
	}

	if len(act.PayloadJSON) == 0 {
		act.PayloadJSON = json.RawMessage("{}")
	}
	if !json.Valid(act.PayloadJSON) {
		return Action{}, ErrPayloadInvalid
	}
	canonical, err := encoding.CanonicalJSON(act.PayloadJSON)
	if err != nil {
		return Action{}, fmt.Errorf("canonical payload json: %w", err)
	}
	act.PayloadJSON = canonical
	if def.ValidatePayload != nil {
		if err := def.ValidatePayload(act.PayloadJSON); err != nil {
			return Action{}, fmt.Errorf("payload invalid: %w", err)
		}
	}
	return act, nil
}

// Rejection captures a precondition an action failed. Rejected actions
// never change the battle. It unwraps to the matching domain error so
// callers can map it to a transport status.
type Rejection struct {
	Code     apperrors.Code
	Message  string
	Metadata map[string]string
}

// Reject builds a rejection.
func Reject(code apperrors.Code, message string, metadata map[string]string) Rejection {
	return Rejection{Code: code, Message: message, Metadata: metadata}
}

func (r Rejection) Error() string { return r.Message }

func (r Rejection) Unwrap() error {
	return apperrors.WithMetadata(r.Code, r.Message, r.Metadata)
}
