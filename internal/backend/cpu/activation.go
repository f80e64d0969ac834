package cpu

import "github.com/born-ml/mnist-mlp/internal/tensor"

// ReLU applies max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	requireFloat32("relu", x)

	result := cpu.newResult("relu", x.Shape(), tensor.Float32)
	out := result.AsFloat32()
	for i, v := range x.AsFloat32() {
		if v > 0 {
			out[i] = v
		}
	}
	return result
}
