package ops

import (
	"fmt"
	"math"

	"github.com/born-ml/mnist-mlp/internal/tensor"
)

// CrossEntropyOp represents the fused softmax + cross-entropy loss.
//
// Forward:
//
//	Loss = mean(-log_softmax(logits)[targets])
//	log_softmax(z) = z - (max(z) + log(Σ exp(z - max(z))))
//
// Backward:
//
//	∂L/∂logits = (softmax(logits) - y_one_hot) / batch_size
//
// Logits are [batch_size, num_classes]; targets are int32 class indices
// [batch_size]. The output is a scalar.
type CrossEntropyOp struct {
	node
	targets *tensor.RawTensor
}

// NewCrossEntropyOp records loss(logits, targets) = output. Only logits
// are reported as an input; targets are labels and carry no gradient.
func NewCrossEntropyOp(logits, targets, output *tensor.RawTensor) *CrossEntropyOp {
	return &CrossEntropyOp{node: newNode(output, logits), targets: targets}
}

// Backward implements Operation.
func (op *CrossEntropyOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	logits := op.in[0]
	batchSize, numClasses := checkCrossEntropyShapes(logits, op.targets)

	logitsGrad, err := tensor.NewRaw(logits.Shape(), tensor.Float32, logits.Device())
	if err != nil {
		panic(err)
	}

	logitsData := logits.AsFloat32()
	targetsData := op.targets.AsInt32()
	gradData := logitsGrad.AsFloat32()
	gradScale := outputGrad.AsFloat32()[0] / float32(batchSize)

	for b := 0; b < batchSize; b++ {
		probs := Softmax(logitsData[b*numClasses : (b+1)*numClasses])
		target := int(targetsData[b])
		for i, p := range probs {
			if i == target {
				p--
			}
			gradData[b*numClasses+i] = gradScale * p
		}
	}

	return []*tensor.RawTensor{logitsGrad}
}

// CrossEntropyForward computes mean cross-entropy over the batch.
// Panics on malformed shapes or out-of-range targets.
func CrossEntropyForward(logits, targets *tensor.RawTensor, device tensor.Device) *tensor.RawTensor {
	batchSize, numClasses := checkCrossEntropyShapes(logits, targets)

	logitsData := logits.AsFloat32()
	targetsData := targets.AsInt32()

	var total float64
	for b := 0; b < batchSize; b++ {
		row := logitsData[b*numClasses : (b+1)*numClasses]
		total -= float64(LogSoftmax(row)[targetsData[b]])
	}

	result, err := tensor.NewRaw(tensor.Shape{}, tensor.Float32, device)
	if err != nil {
		panic(err)
	}
	result.AsFloat32()[0] = float32(total / float64(batchSize))
	return result
}

func checkCrossEntropyShapes(logits, targets *tensor.RawTensor) (batchSize, numClasses int) {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("cross_entropy: logits must be 2D [batch_size, num_classes], got %v", shape))
	}
	batchSize, numClasses = shape[0], shape[1]

	if targets.DType() != tensor.Int32 || targets.NumElements() != batchSize {
		panic(fmt.Sprintf("cross_entropy: targets must be int32 [%d], got %s %v", batchSize, targets.DType(), targets.Shape()))
	}
	for i, t := range targets.AsInt32() {
		if t < 0 || int(t) >= numClasses {
			panic(fmt.Sprintf("cross_entropy: target %d at index %d out of range [0, %d)", t, i, numClasses))
		}
	}
	return batchSize, numClasses
}

// Softmax computes a numerically stable softmax of a single row.
func Softmax(logits []float32) []float32 {
	maxVal := logits[0]
	for _, v := range logits[1:] {
		if v > maxVal {
			maxVal = v
		}
	}

	probs := make([]float32, len(logits))
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v - maxVal))
		probs[i] = float32(e)
		sum += e
	}
	for i := range probs {
		probs[i] = float32(float64(probs[i]) / sum)
	}
	return probs
}

// LogSoftmax computes log(softmax(logits)) of a single row with the
// log-sum-exp trick.
func LogSoftmax(logits []float32) []float32 {
	maxVal := logits[0]
	for _, v := range logits[1:] {
		if v > maxVal {
			maxVal = v
		}
	}

	var sumExp float64
	for _, v := range logits {
		sumExp += math.Exp(float64(v - maxVal))
	}
	logSumExp := float64(maxVal) + math.Log(sumExp)

	out := make([]float32, len(logits))
	for i, v := range logits {
		out[i] = float32(float64(v) - logSumExp)
	}
	return out
}
