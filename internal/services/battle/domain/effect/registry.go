package effect

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrTypeRequired indicates a missing effect type.
	ErrTypeRequired = errors.New("effect type is required")
	// ErrTypeUnknown indicates an effect type without a factory.
	ErrTypeUnknown = errors.New("effect type is not registered")
)

// Factory creates an unconfigured effect for a mastery level.
type Factory func(level int) Effect

// Registry maps effect type names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry with every built-in effect.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for name, f := range map[string]Factory{
		TypeDamage:         func(level int) Effect { return NewDamage(level) },
		TypeRemoveObstacle: func(level int) Effect { return NewRemoveObstacle(level) },
		TypeSummon:         func(level int) Effect { return NewSummon(level) },
	} {
		if err := r.Register(name, f); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds a factory under name.
func (r *Registry) Register(name string, f Factory) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrTypeRequired
	}
	if f == nil {
		return fmt.Errorf("effect %s: factory is required", name)
	}
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("effect %s already registered", name)
	}
	r.factories[name] = f
	return nil
}

// Create builds an unconfigured effect.
func (r *Registry) Create(name string, level int) (Effect, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTypeRequired
	}
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTypeUnknown, name)
	}
	return f(level), nil
}

// Names returns the registered type names in order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
