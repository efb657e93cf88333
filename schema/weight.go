package schema

import (
	"fmt"
	"math"
	"strconv"
)

// Weight is a share expressed in basis points, 0..10000 (0.00% .. 100.00%).
type Weight struct {
	bps int
}

// NewWeight builds a Weight from raw basis points.
func NewWeight(bps int) (Weight, error) {
	if bps < MinWeightBPS || bps > MaxWeightBPS {
		return Weight{}, fmt.Errorf("weight must be between %d and %d bps (received %d)", MinWeightBPS, MaxWeightBPS, bps)
	}
	return Weight{bps: bps}, nil
}

// WeightFromPercent builds a Weight from a percentage with at most two decimals.
// Values are rounded to the nearest basis point.
func WeightFromPercent(percent float64) (Weight, error) {
	if math.IsNaN(percent) || math.IsInf(percent, 0) {
		return Weight{}, fmt.Errorf("weight percent must be a finite number")
	}
	return NewWeight(int(math.Round(percent * 100)))
}

// MustWeight is NewWeight for constants and tests; it panics on out-of-range input.
func MustWeight(bps int) Weight {
	w, err := NewWeight(bps)
	if err != nil {
		panic(err)
	}
	return w
}

// BPS returns the weight in basis points.
func (w Weight) BPS() int { return w.bps }

// Percent returns the weight as a percentage (bps / 100).
func (w Weight) Percent() float64 { return float64(w.bps) / 100 }

// String renders the weight as a percentage, e.g. "40.00%".
func (w Weight) String() string { return fmt.Sprintf("%.2f%%", w.Percent()) }

// OrderIndex is a non-negative display position. It carries no uniqueness guarantee.
type OrderIndex struct {
	value int
}

// NewOrderIndex validates and wraps a display position.
func NewOrderIndex(v int) (OrderIndex, error) {
	if v < 0 {
		return OrderIndex{}, fmt.Errorf("order index must be non-negative (received %d)", v)
	}
	return OrderIndex{value: v}, nil
}

// Int returns the raw position.
func (o OrderIndex) Int() int { return o.value }

// MarshalJSON renders the position as a plain number.
func (o OrderIndex) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(o.value)), nil
}
