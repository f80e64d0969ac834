package main

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/born-ml/mnist-mlp/internal/backend/cpu"
	"github.com/born-ml/mnist-mlp/internal/nn"
	"github.com/born-ml/mnist-mlp/internal/tensor"
)

// reluDemo prints a random 5x3 matrix in [-1, 1) and its ReLU, computed
// once element by element and once with the nn.ReLU module.
func reluDemo(w io.Writer, rng *rand.Rand) {
	backend := cpu.New()
	x := tensor.Zeros[float32](tensor.Shape{5, 3}, backend)
	for i := range x.Data() {
		x.Data()[i] = rng.Float32()*2 - 1
	}

	byMax := x.Clone()
	for i, v := range byMax.Data() {
		byMax.Data()[i] = max(0, v)
	}

	byModule := nn.NewReLU[*cpu.CPUBackend]().Forward(x)

	printMatrix(w, "x", x)
	printMatrix(w, "x after ReLU with max", byMax)
	printMatrix(w, "x after ReLU with nn.ReLU", byModule)
}

func printMatrix(w io.Writer, title string, t *tensor.Tensor[float32, *cpu.CPUBackend]) {
	fmt.Fprintf(w, "%s:\n", title)
	shape := t.Shape()
	for r := range shape[0] {
		for c := range shape[1] {
			fmt.Fprintf(w, " %8.4f", t.At(r, c))
		}
		fmt.Fprintln(w)
	}
}
