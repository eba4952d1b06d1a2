package effect

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Config is the structured configuration of one effect.
type Config map[string]any

// typeKey names the effect type inside a Config.
const typeKey = "type"

type fieldKind int

const (
	kindInt fieldKind = iota
	kindBool
	kindFloat
	kindIntSet
)

type field struct {
	name string
	kind fieldKind
	ptr  any
	def  any
}

// Schema describes the configurable fields of an effect. The same
// description drives loading and saving, so both directions always agree on
// names and defaults.
type Schema struct {
	fields []field
	loaded bool
}

// Int binds an integer field.
func (s *Schema) Int(name string, ptr *int, def int) {
	*ptr = def
	s.fields = append(s.fields, field{name: name, kind: kindInt, ptr: ptr, def: def})
}

// Bool binds a boolean field.
func (s *Schema) Bool(name string, ptr *bool, def bool) {
	*ptr = def
	s.fields = append(s.fields, field{name: name, kind: kindBool, ptr: ptr, def: def})
}

// Float binds a floating point field.
func (s *Schema) Float(name string, ptr *float64, def float64) {
	*ptr = def
	s.fields = append(s.fields, field{name: name, kind: kindFloat, ptr: ptr, def: def})
}

// IntSet binds a set of integers. The set is kept sorted and deduplicated.
func (s *Schema) IntSet(name string, ptr *[]int, def []int) {
	*ptr = normalizeSet(def)
	s.fields = append(s.fields, field{name: name, kind: kindIntSet, ptr: ptr, def: normalizeSet(def)})
}

// Fields returns the bound field names in declaration order.
func (s *Schema) Fields() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.name
	}
	return names
}

// Loaded reports whether configuration was decoded into the schema.
func (s *Schema) Loaded() bool { return s.loaded }

func (s *Schema) decode(cfg Config) error {
	known := make(map[string]bool, len(s.fields))
	for _, f := range s.fields {
		known[f.name] = true
	}
	for key := range cfg {
		if key != typeKey && !known[key] {
			return fmt.Errorf("unknown field %q", key)
		}
	}
	for _, f := range s.fields {
		raw, ok := cfg[f.name]
		if !ok {
			f.reset()
			continue
		}
		if err := f.set(raw); err != nil {
			return fmt.Errorf("field %q: %w", f.name, err)
		}
	}
	s.loaded = true
	return nil
}

func (s *Schema) encode() Config {
	cfg := make(Config, len(s.fields))
	for _, f := range s.fields {
		switch f.kind {
		case kindInt:
			cfg[f.name] = *f.ptr.(*int)
		case kindBool:
			cfg[f.name] = *f.ptr.(*bool)
		case kindFloat:
			cfg[f.name] = *f.ptr.(*float64)
		case kindIntSet:
			cfg[f.name] = append([]int{}, *f.ptr.(*[]int)...)
		}
	}
	return cfg
}

func (f field) reset() {
	switch f.kind {
	case kindInt:
		*f.ptr.(*int) = f.def.(int)
	case kindBool:
		*f.ptr.(*bool) = f.def.(bool)
	case kindFloat:
		*f.ptr.(*float64) = f.def.(float64)
	case kindIntSet:
		*f.ptr.(*[]int) = append([]int(nil), f.def.([]int)...)
	}
}

func (f field) set(raw any) error {
	switch f.kind {
	case kindInt:
		v, err := asInt(raw)
		if err != nil {
			return err
		}
		*f.ptr.(*int) = v
	case kindBool:
		v, ok := raw.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", raw)
		}
		*f.ptr.(*bool) = v
	case kindFloat:
		v, err := asFloat(raw)
		if err != nil {
			return err
		}
		*f.ptr.(*float64) = v
	case kindIntSet:
		v, err := asIntSet(raw)
		if err != nil {
			return err
		}
		*f.ptr.(*[]int) = v
	}
	return nil
}

func asInt(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %s", v)
		}
		return int(n), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("expected integer, got %v", v)
		}
		return int(v), nil
	}
	return 0, fmt.Errorf("expected integer, got %T", raw)
}

func asFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("expected number, got %s", v)
		}
		return f, nil
	}
	return 0, fmt.Errorf("expected number, got %T", raw)
}

func asIntSet(raw any) ([]int, error) {
	switch v := raw.(type) {
	case []int:
		return normalizeSet(v), nil
	case []any:
		out := make([]int, 0, len(v))
		for _, item := range v {
			n, err := asInt(item)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return normalizeSet(out), nil
	}
	return nil, fmt.Errorf("expected integer list, got %T", raw)
}

func normalizeSet(values []int) []int {
	out := make([]int, 0, len(values))
	seen := make(map[int]bool, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

// Decode loads cfg into e. Decoding into an effect that was already loaded
// is a programming error and panics.
func Decode(e Effect, cfg Config) error {
	s := e.Schema()
	if s.loaded {
		panic(fmt.Sprintf("effect %s: configuration already loaded", e.Type()))
	}
	if t, ok := cfg[typeKey]; ok && t != e.Type() {
		return fmt.Errorf("effect type %v does not match %s", t, e.Type())
	}
	if err := s.decode(cfg); err != nil {
		return fmt.Errorf("decode %s: %w", e.Type(), err)
	}
	return nil
}

// Encode returns the configuration of e, defaults included.
func Encode(e Effect) Config {
	cfg := e.Schema().encode()
	cfg[typeKey] = e.Type()
	return cfg
}

// ParseConfig decodes raw JSON keeping numbers exact.
func ParseConfig(raw json.RawMessage) (Config, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse effect config: %w", err)
	}
	if cfg == nil {
		cfg = Config{}
	}
	return cfg, nil
}
