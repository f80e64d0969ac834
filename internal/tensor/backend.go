package tensor

// Backend computes on RawTensors. Operations allocate their result and
// panic, naming the operation, when handed shapes or dtypes they cannot
// combine; those are programming errors rather than runtime conditions.
type Backend interface {
	// Add, Sub and Mul are elementwise and broadcast their operands.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	MulScalar(x *RawTensor, scalar float32) *RawTensor

	// MatMul is the 2D product [m,k]·[k,n].
	MatMul(a, b *RawTensor) *RawTensor

	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	// Argmax yields int32 indices with dim removed.
	Argmax(x *RawTensor, dim int) *RawTensor

	Name() string
	Device() Device
}
