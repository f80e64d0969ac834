// Package cpu implements the CPU compute backend.
//
// Dense float32 kernels (matrix multiplication, axpy, scaling) are delegated
// to gonum's BLAS implementation; broadcasting, reductions and shape
// manipulation are implemented directly on the row-major buffers.
package cpu
