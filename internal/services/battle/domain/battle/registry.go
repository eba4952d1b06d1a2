package battle

import (
	"encoding/json"
	"fmt"

	"github.com/louisbranch/skirmish/internal/services/battle/domain/event"
)

func validator[P Payload]() event.PayloadValidator {
	return func(raw json.RawMessage) error {
		var payload P
		if err := json.Unmarshal(raw, &payload); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return payload.Validate()
	}
}

// Definitions lists the event definitions for every battle payload.
func Definitions() []event.Definition {
	return []event.Definition{
		{Type: EventTypeUnitsInjured, ValidatePayload: validator[UnitsInjured]()},
		{Type: EventTypeObstaclesChanged, ValidatePayload: validator[ObstaclesChanged]()},
		{Type: EventTypeUnitsChanged, ValidatePayload: validator[UnitsChanged]()},
		{Type: EventTypeSpellCast, ValidatePayload: validator[SpellCast]()},
		{Type: EventTypeRoundStarted, ValidatePayload: validator[RoundStarted]()},
		{Type: EventTypeUnitStatusChanged, Addressing: event.AddressingPolicyEntityTarget, ValidatePayload: validator[UnitStatusChanged]()},
	}
}

// RegisterEvents adds the battle event definitions to registry.
func RegisterEvents(registry *event.Registry) error {
	for _, def := range Definitions() {
		if err := registry.Register(def); err != nil {
			return fmt.Errorf("register %s: %w", def.Type, err)
		}
	}
	return nil
}

// NewRegistry returns a registry holding the battle event definitions.
func NewRegistry() (*event.Registry, error) {
	registry := event.NewRegistry()
	if err := RegisterEvents(registry); err != nil {
		return nil, err
	}
	return registry, nil
}
