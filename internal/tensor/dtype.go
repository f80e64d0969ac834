// Package tensor provides the core tensor types and operations used by the MLP trainer.
package tensor

// DType constrains the element types a Tensor may hold. Pixels, weights
// and activations are float32; class labels are int32.
type DType interface {
	~float32 | ~int32
}

// DataType tags a RawTensor with its element type at runtime.
type DataType int

// Element types known to RawTensor.
const (
	Float32 DataType = iota
	Int32
)

var dataTypeInfo = [...]struct {
	name string
	size int
}{
	Float32: {"float32", 4},
	Int32:   {"int32", 4},
}

func (dt DataType) valid() bool { return dt >= 0 && int(dt) < len(dataTypeInfo) }

// Size is the width of one element in bytes.
func (dt DataType) Size() int {
	if !dt.valid() {
		panic("tensor: unknown data type")
	}
	return dataTypeInfo[dt].size
}

func (dt DataType) String() string {
	if !dt.valid() {
		return "unknown"
	}
	return dataTypeInfo[dt].name
}

// dataTypeOf maps the static element type T to its runtime tag.
func dataTypeOf[T DType]() DataType {
	var zero T
	if _, ok := any(zero).(int32); ok {
		return Int32
	}
	if _, ok := any(zero).(float32); ok {
		return Float32
	}
	panic("tensor: unsupported element type")
}
