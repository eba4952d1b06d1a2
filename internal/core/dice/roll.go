// Package dice rolls damage ranges from an explicit random source so battle
// outcomes replay exactly from a seed.
package dice

import (
	"math/rand"

	apperrors "github.com/louisbranch/skirmish/internal/platform/errors"
)

var (
	// ErrMissingDice is returned when no spec is given.
	ErrMissingDice = apperrors.New(apperrors.CodeDiceMissing, "at least one die spec is required")
	// ErrInvalidDiceSpec is returned for empty or inverted ranges.
	ErrInvalidDiceSpec = apperrors.New(apperrors.CodeDiceInvalidSpec, "die spec needs count > 0 and 0 < min <= max")
)

// Spec is Count dice each yielding a value in [Min, Max].
type Spec struct {
	Min   int
	Max   int
	Count int
}

// D returns count dice with sides faces.
func D(count, sides int) Spec {
	return Spec{Min: 1, Max: sides, Count: count}
}

func (s Spec) valid() bool {
	return s.Count > 0 && s.Min > 0 && s.Min <= s.Max
}

// Roll is the outcome of one spec.
type Roll struct {
	Spec    Spec
	Results []int
	Total   int
}

// Result is the outcome of a set of specs. Rolls keep the spec order.
type Result struct {
	Rolls []Roll
	Total int
}

// RollWithRng rolls specs in order using rng.
func RollWithRng(rng *rand.Rand, specs []Spec) (Result, error) {
	if len(specs) == 0 {
		return Result{}, ErrMissingDice
	}
	out := Result{Rolls: make([]Roll, 0, len(specs))}
	for _, spec := range specs {
		if !spec.valid() {
			return Result{}, ErrInvalidDiceSpec
		}
		roll := Roll{Spec: spec, Results: make([]int, spec.Count)}
		for i := range roll.Results {
			roll.Results[i] = rollDie(rng, spec.Min, spec.Max)
			roll.Total += roll.Results[i]
		}
		out.Rolls = append(out.Rolls, roll)
		out.Total += roll.Total
	}
	return out, nil
}

// maxIndividualRolls caps how many creatures of a stack roll separately.
const maxIndividualRolls = 10

// StackDamage rolls the base damage of count creatures dealing min..max
// each. Stacks above ten creatures roll ten dice and scale the sum.
func StackDamage(rng *rand.Rand, count, min, max int) (int64, error) {
	rolled := count
	if rolled > maxIndividualRolls {
		rolled = maxIndividualRolls
	}
	res, err := RollWithRng(rng, []Spec{{Min: min, Max: max, Count: rolled}})
	if err != nil {
		return 0, err
	}
	return int64(res.Total) * int64(count) / int64(rolled), nil
}

func rollDie(rng *rand.Rand, min, max int) int {
	if min == max {
		return min
	}
	return min + rng.Intn(max-min+1)
}
