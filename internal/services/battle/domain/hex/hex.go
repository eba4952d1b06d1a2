// Package hex models positions on the hexagonal battlefield.
//
// The field is 17 columns by 11 rows. Odd rows are shifted half a hex to the
// right. Columns 0 and 16 are reserved for war machines and are never
// available to regular units.
package hex

import "sort"

const (
	// Width is the number of columns on the battlefield.
	Width = 17
	// Height is the number of rows on the battlefield.
	Height = 11
	// Size is the number of addressable hexes.
	Size = Width * Height
)

// Hex is a battlefield position index (y*Width + x).
type Hex int16

const (
	// Invalid marks an absent position.
	Invalid Hex = -1
	// Keep is the siege keep turret position.
	Keep Hex = -2
	// LowerTower is the lower siege tower position.
	LowerTower Hex = -3
	// UpperTower is the upper siege tower position.
	UpperTower Hex = -4
)

// Direction names the six hex neighbour directions.
type Direction int

const (
	TopLeft Direction = iota
	TopRight
	Right
	BottomRight
	BottomLeft
	Left
)

// Directions lists every direction in clockwise order starting at top-left.
var Directions = [...]Direction{TopLeft, TopRight, Right, BottomRight, BottomLeft, Left}

// New returns the hex at column x and row y, or Invalid when out of range.
func New(x, y int) Hex {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return Invalid
	}
	return Hex(y*Width + x)
}

// X returns the column of a valid hex.
func (h Hex) X() int {
	return int(h) % Width
}

// Y returns the row of a valid hex.
func (h Hex) Y() int {
	return int(h) / Width
}

// Valid reports whether the hex is an on-field position.
func (h Hex) Valid() bool {
	return h >= 0 && h < Size
}

// Special reports whether the hex is one of the fortification turret slots.
func (h Hex) Special() bool {
	return h == Keep || h == LowerTower || h == UpperTower
}

// Available reports whether a regular unit may stand on the hex.
func (h Hex) Available() bool {
	if !h.Valid() {
		return false
	}
	x := h.X()
	return x > 0 && x < Width-1
}

// Neighbour returns the adjacent hex in the given direction, or Invalid.
func (h Hex) Neighbour(dir Direction) Hex {
	if !h.Valid() {
		return Invalid
	}
	x, y := h.X(), h.Y()
	odd := y%2 == 1
	switch dir {
	case TopLeft:
		if odd {
			return New(x, y-1)
		}
		return New(x-1, y-1)
	case TopRight:
		if odd {
			return New(x+1, y-1)
		}
		return New(x, y-1)
	case Right:
		return New(x+1, y)
	case BottomRight:
		if odd {
			return New(x+1, y+1)
		}
		return New(x, y+1)
	case BottomLeft:
		if odd {
			return New(x, y+1)
		}
		return New(x-1, y+1)
	case Left:
		return New(x-1, y)
	}
	return Invalid
}

// Neighbours returns the valid adjacent hexes in clockwise order.
func (h Hex) Neighbours() []Hex {
	out := make([]Hex, 0, len(Directions))
	for _, dir := range Directions {
		if n := h.Neighbour(dir); n.Valid() {
			out = append(out, n)
		}
	}
	return out
}

// Adjacent reports whether a and b share an edge.
func Adjacent(a, b Hex) bool {
	return a.Valid() && b.Valid() && Distance(a, b) == 1
}

// Distance returns the number of steps between two valid hexes. Distances
// involving an invalid hex are reported as -1.
func Distance(a, b Hex) int {
	if !a.Valid() || !b.Valid() {
		return -1
	}
	aq, ar := a.cube()
	bq, br := b.cube()
	dq := aq - bq
	dr := ar - br
	return (abs(dq) + abs(dr) + abs(dq+dr)) / 2
}

// Ordered returns a sorted copy of hexes with duplicates removed.
func Ordered(hexes []Hex) []Hex {
	seen := make(map[Hex]struct{}, len(hexes))
	out := make([]Hex, 0, len(hexes))
	for _, h := range hexes {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Within returns every valid hex at most radius steps from center, ordered.
func Within(center Hex, radius int) []Hex {
	if !center.Valid() || radius < 0 {
		return nil
	}
	out := make([]Hex, 0, 1+3*radius*(radius+1))
	for i := Hex(0); i < Size; i++ {
		if Distance(center, i) <= radius {
			out = append(out, i)
		}
	}
	return out
}

// cube converts odd-row offset coordinates into axial q/r.
func (h Hex) cube() (int, int) {
	x, y := h.X(), h.Y()
	q := x - (y-(y&1))/2
	return q, y
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
