package wheel

import (
	"fmt"
	"math"

	"prize_wheel/internal/model"
)

// NoSlice - no forced slice, pick by weight
const NoSlice = -1

// SliceTable - immutable ordered list of wheel slices
type SliceTable struct {
	slices      []model.Slice
	totalWeight float64
}

// NewSliceTable validates and copies the slices.
// Returns ErrInvalidConfiguration if the table is empty, a weight is negative
// or not finite, or all weights are zero.
func NewSliceTable(slices []model.Slice) (*SliceTable, error) {
	if len(slices) == 0 {
		return nil, fmt.Errorf("%w: slice table is empty", model.ErrInvalidConfiguration)
	}

	var total float64
	for i, s := range slices {
		if s.Weight < 0 || math.IsNaN(s.Weight) || math.IsInf(s.Weight, 0) {
			return nil, fmt.Errorf("%w: slice %d has invalid weight %v", model.ErrInvalidConfiguration, i, s.Weight)
		}
		total += s.Weight
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: total slice weight is %v", model.ErrInvalidConfiguration, total)
	}

	cp := make([]model.Slice, len(slices))
	copy(cp, slices)

	return &SliceTable{
		slices:      cp,
		totalWeight: total,
	}, nil
}

func (t *SliceTable) Len() int {
	return len(t.slices)
}

func (t *SliceTable) TotalWeight() float64 {
	return t.totalWeight
}

// Slice returns slice i; ok is false when i is out of range
func (t *SliceTable) Slice(i int) (model.Slice, bool) {
	if i < 0 || i >= len(t.slices) {
		return model.Slice{}, false
	}
	return t.slices[i], true
}

// Slices returns a copy of the table
func (t *SliceTable) Slices() []model.Slice {
	cp := make([]model.Slice, len(t.slices))
	copy(cp, t.slices)
	return cp
}

// SectorWidth - angular width of a slice in degrees
func (t *SliceTable) SectorWidth() float64 {
	return 360 / float64(len(t.slices))
}

// Probability - exact selection probability of slice i
func (t *SliceTable) Probability(i int) float64 {
	s, ok := t.Slice(i)
	if !ok {
		return 0
	}
	return s.Weight / t.totalWeight
}
