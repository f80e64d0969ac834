package tensor

import "fmt"

func (t *Tensor[T, B]) wrap(raw *RawTensor) *Tensor[T, B] { return New[T, B](raw, t.backend) }

// Elementwise arithmetic. Operands broadcast against each other, e.g. a
// [n,500] activation plus a [1,500] bias row.

func (t *Tensor[T, B]) Add(other *Tensor[T, B]) *Tensor[T, B] {
	return t.wrap(t.backend.Add(t.raw, other.raw))
}

func (t *Tensor[T, B]) Sub(other *Tensor[T, B]) *Tensor[T, B] {
	return t.wrap(t.backend.Sub(t.raw, other.raw))
}

func (t *Tensor[T, B]) Mul(other *Tensor[T, B]) *Tensor[T, B] {
	return t.wrap(t.backend.Mul(t.raw, other.raw))
}

// MulScalar scales every element by s.
func (t *Tensor[T, B]) MulScalar(s float32) *Tensor[T, B] {
	return t.wrap(t.backend.MulScalar(t.raw, s))
}

// MatMul is the 2D product [m,k]·[k,n] -> [m,n].
func (t *Tensor[T, B]) MatMul(other *Tensor[T, B]) *Tensor[T, B] {
	return t.wrap(t.backend.MatMul(t.raw, other.raw))
}

// Reshape views the same elements under dims; the count must match.
func (t *Tensor[T, B]) Reshape(dims ...int) *Tensor[T, B] {
	return t.wrap(t.backend.Reshape(t.raw, Shape(dims)))
}

// Transpose permutes axes; with none given the axis order is reversed.
func (t *Tensor[T, B]) Transpose(axes ...int) *Tensor[T, B] {
	return t.wrap(t.backend.Transpose(t.raw, axes...))
}

// T transposes a matrix and panics on any other rank.
func (t *Tensor[T, B]) T() *Tensor[T, B] {
	if r := len(t.Shape()); r != 2 {
		panic(fmt.Sprintf("tensor: T on rank-%d tensor", r))
	}
	return t.Transpose(1, 0)
}

// SumDim adds up the elements along dim, keeping it as size 1 if keepDim.
func (t *Tensor[T, B]) SumDim(dim int, keepDim bool) *Tensor[T, B] {
	return t.wrap(t.backend.SumDim(t.raw, dim, keepDim))
}

// Argmax returns, per slice along dim, the index of the largest element.
// On [n,10] logits Argmax(1) yields the n predicted digits.
func (t *Tensor[T, B]) Argmax(dim int) *Tensor[int32, B] {
	return New[int32, B](t.backend.Argmax(t.raw, dim), t.backend)
}
