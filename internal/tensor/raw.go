package tensor

import "fmt"

// Device identifies where tensor storage lives. Only host memory exists.
type Device int

// CPU is host memory.
const CPU Device = 0

func (d Device) String() string {
	if d == CPU {
		return "CPU"
	}
	return fmt.Sprintf("Device(%d)", int(d))
}

// RawTensor is the untyped, row-major storage that backends compute on.
// A float32 tensor keeps its elements in f32 and an int32 tensor in i32;
// the other slice stays nil. Views share the slice with their source.
type RawTensor struct {
	f32    []float32
	i32    []int32
	shape  Shape
	stride []int
	dtype  DataType
	device Device
}

func layout(shape Shape) (Shape, []int, error) {
	if err := shape.Validate(); err != nil {
		return nil, nil, fmt.Errorf("tensor: %w", err)
	}
	return shape.Clone(), shape.ComputeStrides(), nil
}

// NewRaw allocates zeroed storage for shape.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	s, strides, err := layout(shape)
	if err != nil {
		return nil, err
	}
	r := &RawTensor{shape: s, stride: strides, dtype: dtype, device: device}

	switch n := s.NumElements(); dtype {
	case Float32:
		r.f32 = make([]float32, n)
	case Int32:
		r.i32 = make([]int32, n)
	default:
		return nil, fmt.Errorf("tensor: cannot allocate dtype %s", dtype)
	}
	return r, nil
}

// View reinterprets r with a new shape of equal element count. The result
// aliases r's storage.
func (r *RawTensor) View(shape Shape) (*RawTensor, error) {
	s, strides, err := layout(shape)
	if err != nil {
		return nil, err
	}
	if have, want := r.NumElements(), s.NumElements(); have != want {
		return nil, fmt.Errorf("tensor: view %v as %v: %d elements vs %d", r.shape, s, have, want)
	}
	v := *r
	v.shape, v.stride = s, strides
	return &v, nil
}

// Accessors.

func (r *RawTensor) Shape() Shape { return r.shape }
func (r *RawTensor) Strides() []int { return r.stride }
func (r *RawTensor) DType() DataType { return r.dtype }
func (r *RawTensor) Device() Device { return r.device }
func (r *RawTensor) NumElements() int { return r.shape.NumElements() }

// ByteSize is the storage footprint in bytes.
func (r *RawTensor) ByteSize() int { return r.NumElements() * r.dtype.Size() }

// AsFloat32 returns the float32 storage. It panics for any other dtype.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("tensor: AsFloat32 on %s tensor", r.dtype))
	}
	return r.f32
}

// AsInt32 returns the int32 storage. It panics for any other dtype.
func (r *RawTensor) AsInt32() []int32 {
	if r.dtype != Int32 {
		panic(fmt.Sprintf("tensor: AsInt32 on %s tensor", r.dtype))
	}
	return r.i32
}

// Clone copies the storage so the result no longer aliases r.
func (r *RawTensor) Clone() *RawTensor {
	c := *r
	c.shape = r.shape.Clone()
	c.stride = append([]int(nil), r.stride...)
	if r.f32 != nil {
		c.f32 = append([]float32(nil), r.f32...)
	}
	if r.i32 != nil {
		c.i32 = append([]int32(nil), r.i32...)
	}
	return &c
}
