package nn

import (
	"math"
	"math/rand"

	"github.com/born-ml/mnist-mlp/internal/tensor"
)

// Uniform creates a tensor with values drawn from U(-bound, bound).
func Uniform[B tensor.Backend](shape tensor.Shape, bound float64, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	t := tensor.Zeros[float32](shape, backend)
	data := t.Data()
	for i := range data {
		data[i] = float32((rng.Float64()*2 - 1) * bound)
	}
	return t
}

// Xavier (Glorot) initialization: U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out))).
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	return Uniform(shape, math.Sqrt(6.0/float64(fanIn+fanOut)), rng, backend)
}

// LeCunUniform draws from U(-1/sqrt(fan_in), 1/sqrt(fan_in)).
//
// This is the default weight and bias initialization of torch.nn.Linear
// (kaiming_uniform with a=sqrt(5) reduces to the same bound).
func LeCunUniform[B tensor.Backend](fanIn int, shape tensor.Shape, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	return Uniform(shape, 1/math.Sqrt(float64(fanIn)), rng, backend)
}

// Zeros creates a tensor filled with zeros.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](shape, backend)
}
