package wheel

import (
	"fmt"

	"prize_wheel/internal/model"
)

// RandSource - uniform random floats in [0,1). *rand.Rand from math/rand/v2 satisfies it.
type RandSource interface {
	Float64() float64
}

// Selector picks the slice the wheel lands on
type Selector struct {
	rnd RandSource
}

func NewSelector(rnd RandSource) *Selector {
	return &Selector{rnd: rnd}
}

// Select returns forced unchanged when it is inside the table, without
// touching the random source. Otherwise it draws r in [0, totalWeight) and
// walks the slices subtracting weights until the remainder drops to <= 0.
func (s *Selector) Select(table *SliceTable, forced int) (int, error) {
	if table == nil || table.Len() == 0 {
		return 0, fmt.Errorf("%w: slice table is empty", model.ErrInvalidConfiguration)
	}
	if forced >= 0 && forced < table.Len() {
		return forced, nil
	}

	total := table.TotalWeight()
	if total <= 0 {
		return 0, fmt.Errorf("%w: total slice weight is %v", model.ErrInvalidConfiguration, total)
	}

	r := s.rnd.Float64() * total

	last := -1
	for i, sl := range table.slices {
		// Zero weight slices are never picked, even when r is exactly 0
		if sl.Weight <= 0 {
			continue
		}
		last = i
		r -= sl.Weight
		if r <= 0 {
			return i, nil
		}
	}

	// Float rounding can leave a tiny positive remainder
	if last >= 0 {
		return last, nil
	}
	return 0, fmt.Errorf("%w: no slice could be selected", model.ErrInvalidConfiguration)
}
