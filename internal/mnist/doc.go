// Package mnist reads, downloads and batches the MNIST handwritten digit
// dataset.
//
// Files use the IDX binary format and may be stored raw or gzip-compressed:
//
//	train-images-idx3-ubyte(.gz)  60,000 images, 28x28
//	train-labels-idx1-ubyte(.gz)  60,000 labels, 0-9
//	t10k-images-idx3-ubyte(.gz)   10,000 images
//	t10k-labels-idx1-ubyte(.gz)   10,000 labels
//
// Typical use:
//
//	if err := mnist.Download(ctx, dir, mnist.Options{}); err != nil { ... }
//	ds, err := mnist.Load(dir, mnist.Train, 0)
//	loader, err := mnist.NewDataLoader(ds, backend, mnist.LoaderOptions{BatchSize: 10})
package mnist
