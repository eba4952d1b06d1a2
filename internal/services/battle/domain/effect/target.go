package effect

import (
	"github.com/louisbranch/skirmish/internal/services/battle/domain/hex"
	"github.com/louisbranch/skirmish/internal/services/battle/domain/unit"
)

// Destination is one target entry: a unit, a location or both. A
// destination with neither is a placeholder keeping its index in a chain.
type Destination struct {
	Unit unit.View
	Hex  hex.Hex
}

// UnitDestination targets u at its current position.
func UnitDestination(u unit.View) Destination {
	return Destination{Unit: u, Hex: u.Position()}
}

// HexDestination targets a location.
func HexDestination(h hex.Hex) Destination {
	return Destination{Hex: h}
}

// Placeholder is an empty destination.
func Placeholder() Destination {
	return Destination{Hex: hex.Invalid}
}

// HasUnit reports whether the destination refers to a unit.
func (d Destination) HasUnit() bool { return d.Unit != nil }

// Target is an ordered target list. Index 0 is the primary target.
type Target []Destination

// Units returns the units in target order, skipping placeholders.
func (t Target) Units() []unit.View {
	out := make([]unit.View, 0, len(t))
	for _, d := range t {
		if d.HasUnit() {
			out = append(out, d.Unit)
		}
	}
	return out
}

// Hexes returns the valid locations in target order.
func (t Target) Hexes() []hex.Hex {
	out := make([]hex.Hex, 0, len(t))
	for _, d := range t {
		if d.Hex.Valid() {
			out = append(out, d.Hex)
		}
	}
	return out
}

// aimHex returns the location of the primary aim point.
func (t Target) aimHex() hex.Hex {
	if len(t) == 0 {
		return hex.Invalid
	}
	if t[0].Hex.Valid() {
		return t[0].Hex
	}
	if t[0].HasUnit() {
		return t[0].Unit.Position()
	}
	return hex.Invalid
}
