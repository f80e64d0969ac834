package tensor

func mustRaw[T DType](shape Shape, device Device) *RawTensor {
	raw, err := NewRaw(shape, dataTypeOf[T](), device)
	if err != nil {
		panic(err)
	}
	return raw
}

// Zeros allocates a zero-valued tensor of the given shape on b.
// It panics when a dimension is not positive.
//
//	w := tensor.Zeros[float32](tensor.Shape{500, 784}, backend)
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return New[T, B](mustRaw[T](shape, b.Device()), b)
}

// Full allocates a tensor with every element set to value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	if value == 0 {
		return t
	}
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Ones is Full with value 1.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, 1, b)
}
