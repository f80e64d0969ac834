package mnist

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/mnist-mlp/internal/tensor"
)

// Batch is one mini-batch ready for the model.
type Batch[B tensor.Backend] struct {
	Images *tensor.Tensor[float32, B] // [n, 784]
	Labels *tensor.Tensor[int32, B]   // [n]
}

// Size returns the number of samples in the batch.
func (b *Batch[B]) Size() int {
	return b.Labels.NumElements()
}

// LoaderOptions configures a DataLoader.
type LoaderOptions struct {
	BatchSize int
	Shuffle   bool  // reshuffle the sample order at the start of every epoch
	Seed      int64 // seed for the shuffle source
}

// DataLoader splits a Dataset into mini-batches. The last batch holds the
// remainder and may be shorter than BatchSize.
//
//	loader, _ := mnist.NewDataLoader(ds, backend, mnist.LoaderOptions{BatchSize: 10, Shuffle: true})
//	loader.Reset()
//	for i := range loader.NumBatches() {
//	    batch := loader.Batch(i)
//	}
type DataLoader[B tensor.Backend] struct {
	ds      *Dataset
	backend B
	opts    LoaderOptions
	rng     *rand.Rand
	order   []int
}

// NewDataLoader creates a DataLoader over ds.
func NewDataLoader[B tensor.Backend](ds *Dataset, backend B, opts LoaderOptions) (*DataLoader[B], error) {
	if opts.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", opts.BatchSize)
	}

	order := make([]int, ds.Len())
	for i := range order {
		order[i] = i
	}

	return &DataLoader[B]{
		ds:      ds,
		backend: backend,
		opts:    opts,
		rng:     rand.New(rand.NewSource(opts.Seed)), //nolint:gosec // shuffling is not security-critical
		order:   order,
	}, nil
}

// Len returns the number of samples.
func (l *DataLoader[B]) Len() int {
	return l.ds.Len()
}

// BatchSize returns the configured batch size.
func (l *DataLoader[B]) BatchSize() int {
	return l.opts.BatchSize
}

// NumBatches returns ceil(Len / BatchSize).
func (l *DataLoader[B]) NumBatches() int {
	return (l.ds.Len() + l.opts.BatchSize - 1) / l.opts.BatchSize
}

// Reset starts a new epoch, drawing a new sample order when shuffling.
func (l *DataLoader[B]) Reset() {
	if !l.opts.Shuffle {
		return
	}
	l.rng.Shuffle(len(l.order), func(i, j int) {
		l.order[i], l.order[j] = l.order[j], l.order[i]
	})
}

// Batch builds batch i of the current epoch.
// Panics if i is out of range.
func (l *DataLoader[B]) Batch(i int) *Batch[B] {
	if i < 0 || i >= l.NumBatches() {
		panic(fmt.Sprintf("DataLoader.Batch: index %d out of range [0, %d)", i, l.NumBatches()))
	}

	start := i * l.opts.BatchSize
	end := min(start+l.opts.BatchSize, l.ds.Len())
	n := end - start

	images := tensor.Zeros[float32](tensor.Shape{n, ImageSize}, l.backend)
	labels := tensor.Zeros[int32](tensor.Shape{n}, l.backend)
	imageData := images.Data()
	labelData := labels.Data()

	for row, idx := range l.order[start:end] {
		copy(imageData[row*ImageSize:(row+1)*ImageSize], l.ds.Images[idx])
		labelData[row] = l.ds.Labels[idx]
	}

	return &Batch[B]{Images: images, Labels: labels}
}

// Batches starts a new epoch and returns all of its batches.
func (l *DataLoader[B]) Batches() []*Batch[B] {
	l.Reset()
	batches := make([]*Batch[B], l.NumBatches())
	for i := range batches {
		batches[i] = l.Batch(i)
	}
	return batches
}
