package tensor

import (
	"fmt"
	"slices"
)

// Shape lists the size of each dimension, outermost first. The empty
// shape is a scalar.
type Shape []int

// NumElements is the product of the dimensions; 1 for a scalar.
func (s Shape) NumElements() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// Validate rejects zero and negative dimensions.
func (s Shape) Validate() error {
	if i := slices.IndexFunc(s, func(d int) bool { return d <= 0 }); i >= 0 {
		return fmt.Errorf("dimension %d of %v is %d, must be positive", i, s, s[i])
	}
	return nil
}

// Equal reports whether s and other have the same rank and sizes.
func (s Shape) Equal(other Shape) bool { return slices.Equal(s, other) }

// Clone returns an independent copy of s.
func (s Shape) Clone() Shape { return append(Shape(make([]int, 0, len(s))), s...) }

// ComputeStrides returns the row-major element strides of s: the last
// axis is contiguous and each earlier axis steps over everything after it.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	step := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = step
		step *= s[i]
	}
	return strides
}

// BroadcastShapes combines a and b under NumPy rules: aligned from the
// right, a missing axis counts as 1, and sizes must match unless one is 1.
// The bool reports whether either side has to be expanded.
//
//	[10,500] with [1,500] -> [10,500], true
//	[3,5]    with [3,5]   -> [3,5],    false
//	[3,4]    with [3,5]   -> error
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	rank := max(len(a), len(b))
	out := make(Shape, rank)
	expanded := len(a) != len(b)

	dim := func(s Shape, axis int) int {
		if i := axis - (rank - len(s)); i >= 0 {
			return s[i]
		}
		return 1
	}

	for axis := range rank {
		da, db := dim(a, axis), dim(b, axis)
		switch {
		case da == db:
			out[axis] = da
		case da == 1 || db == 1:
			out[axis] = max(da, db)
			expanded = true
		default:
			return nil, false, fmt.Errorf("cannot broadcast %v with %v: axis %d has %d vs %d", a, b, axis, da, db)
		}
	}
	return out, expanded, nil
}
