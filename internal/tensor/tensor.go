package tensor

import "fmt"

// Tensor pairs a RawTensor with the backend that computes on it. The type
// parameter T fixes the element type at compile time; B fixes the backend,
// so tensors from an autodiff backend cannot be mixed with plain CPU ones.
//
//	x, _ := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
//	y := x.MatMul(x.T())
type Tensor[T DType, B Backend] struct {
	raw     *RawTensor
	backend B
}

// New wraps raw for use with backend b. raw is not copied.
func New[T DType, B Backend](raw *RawTensor, b B) *Tensor[T, B] {
	return &Tensor[T, B]{raw: raw, backend: b}
}

// FromSlice copies data into a new tensor of the given shape.
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	if want := shape.NumElements(); want != len(data) {
		return nil, fmt.Errorf("shape %v holds %d elements, got %d", shape, want, len(data))
	}
	raw, err := NewRaw(shape, dataTypeOf[T](), b.Device())
	if err != nil {
		return nil, err
	}
	t := New[T, B](raw, b)
	copy(t.Data(), data)
	return t, nil
}

// Accessors delegate to the underlying RawTensor.

func (t *Tensor[T, B]) Shape() Shape { return t.raw.Shape() }
func (t *Tensor[T, B]) DType() DataType { return t.raw.DType() }
func (t *Tensor[T, B]) Device() Device { return t.raw.Device() }
func (t *Tensor[T, B]) NumElements() int { return t.raw.NumElements() }
func (t *Tensor[T, B]) Raw() *RawTensor { return t.raw }
func (t *Tensor[T, B]) Backend() B { return t.backend }

// Data exposes the backing storage. Writes through the slice are visible
// to every tensor sharing it, which is how optimizers update weights in place.
func (t *Tensor[T, B]) Data() []T {
	var data any
	if t.raw.DType() == Int32 {
		data = t.raw.AsInt32()
	} else {
		data = t.raw.AsFloat32()
	}
	out, ok := data.([]T)
	if !ok {
		panic(fmt.Sprintf("tensor: %s storage does not match element type", t.raw.DType()))
	}
	return out
}

// Item is the value of a tensor holding exactly one element, such as a loss.
func (t *Tensor[T, B]) Item() T {
	if n := t.NumElements(); n != 1 {
		panic(fmt.Sprintf("tensor: Item on %v (%d elements)", t.Shape(), n))
	}
	return t.Data()[0]
}

// At reads the element at the given index, one coordinate per dimension.
func (t *Tensor[T, B]) At(indices ...int) T {
	return t.Data()[t.flatIndex(indices)]
}

// Set writes value at the given index.
func (t *Tensor[T, B]) Set(value T, indices ...int) {
	t.Data()[t.flatIndex(indices)] = value
}

func (t *Tensor[T, B]) flatIndex(indices []int) int {
	shape, strides := t.Shape(), t.raw.Strides()
	if len(indices) != len(shape) {
		panic(fmt.Sprintf("tensor: %d indices for rank-%d tensor", len(indices), len(shape)))
	}
	flat := 0
	for axis, i := range indices {
		if i < 0 || i >= shape[axis] {
			panic(fmt.Sprintf("tensor: index %d out of range on axis %d of %v", i, axis, shape))
		}
		flat += i * strides[axis]
	}
	return flat
}

func (t *Tensor[T, B]) String() string {
	return fmt.Sprintf("Tensor[%s]%v on %s", t.raw.DType(), t.raw.Shape(), t.raw.Device())
}

// Clone deep-copies the storage.
func (t *Tensor[T, B]) Clone() *Tensor[T, B] {
	return New[T, B](t.raw.Clone(), t.backend)
}

// Detach shares storage with t but has no recorded history, so gradients
// stop here.
func (t *Tensor[T, B]) Detach() *Tensor[T, B] {
	return New[T, B](t.raw, t.backend)
}
