package mnist

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/born-ml/mnist-mlp/internal/parallel"
)

// ImageSize is the number of pixels in one MNIST image (28x28).
const ImageSize = 28 * 28

// NumClasses is the number of digit classes.
const NumClasses = 10

// Split selects the training or test portion of MNIST.
type Split int

// Dataset splits.
const (
	Train Split = iota
	Test
)

func (s Split) String() string {
	if s == Train {
		return "train"
	}
	return "test"
}

// files returns the base names (without .gz) of the image and label files.
func (s Split) files() (images, labels string) {
	if s == Train {
		return "train-images-idx3-ubyte", "train-labels-idx1-ubyte"
	}
	return "t10k-images-idx3-ubyte", "t10k-labels-idx1-ubyte"
}

// Dataset holds decoded MNIST samples.
type Dataset struct {
	Images [][]float32 // [num_samples][784], normalized to [0, 1]
	Labels []int32     // [num_samples], 0-9
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Labels)
}

// Load reads one split from dir. Each file may be present raw or as .gz.
//
// Pixels are scaled from 0-255 to [0, 1]. maxSamples limits the number of
// samples kept (0 = all).
func Load(dir string, split Split, maxSamples int) (*Dataset, error) {
	imageName, labelName := split.files()

	imagePath, err := locate(dir, imageName)
	if err != nil {
		return nil, err
	}
	labelPath, err := locate(dir, labelName)
	if err != nil {
		return nil, err
	}

	images, err := ReadImagesFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s images: %w", split, err)
	}
	if images.Rows*images.Cols != ImageSize {
		return nil, fmt.Errorf("failed to load %s images: got %dx%d, want 28x28", split, images.Rows, images.Cols)
	}

	labels, err := ReadLabelsFile(labelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s labels: %w", split, err)
	}

	if len(images.Pixels) != len(labels) {
		return nil, fmt.Errorf("%s: image count (%d) != label count (%d)", split, len(images.Pixels), len(labels))
	}

	numSamples := len(labels)
	if maxSamples > 0 && numSamples > maxSamples {
		numSamples = maxSamples
	}

	ds := &Dataset{
		Images: make([][]float32, numSamples),
		Labels: make([]int32, numSamples),
	}
	for i := range numSamples {
		if labels[i] >= NumClasses {
			return nil, fmt.Errorf("%s: label out of range [0, 9] at index %d: %d", split, i, labels[i])
		}
		ds.Labels[i] = int32(labels[i])
	}

	parallel.For(numSamples, func(i int) {
		img := make([]float32, ImageSize)
		for j, p := range images.Pixels[i] {
			img[j] = float32(p) / 255.0
		}
		ds.Images[i] = img
	}, parallel.DefaultConfig())

	return ds, nil
}

// locate finds name or name.gz in dir, preferring the uncompressed file.
func locate(dir, name string) (string, error) {
	for _, candidate := range []string{name, name + ".gz"} {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%s not found in %s (raw or .gz): %w", name, dir, os.ErrNotExist)
}
