package mnist

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// IDX magic numbers (big-endian): 0x00000803 for 3-D ubyte tensors (images),
// 0x00000801 for 1-D ubyte tensors (labels).
const (
	imagesMagic = 2051
	labelsMagic = 2049
)

// maxImageBytes bounds rows*cols so a corrupt header cannot request an
// absurd per-image buffer.
const maxImageBytes = 1 << 20

// ErrBadMagic is returned when an IDX header carries an unexpected magic number.
var ErrBadMagic = errors.New("mnist: bad IDX magic number")

// Images is the decoded content of an IDX image file.
type Images struct {
	Rows   int
	Cols   int
	Pixels [][]byte // one row-major slice of Rows*Cols bytes per image
}

// readMagic consumes the leading magic number alone so that short inputs of
// the wrong kind still report ErrBadMagic.
func readMagic(r io.Reader, what string, want uint32) error {
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return fmt.Errorf("read %s magic: %w", what, err)
	}
	if magic != want {
		return fmt.Errorf("%w: got %d, want %d", ErrBadMagic, magic, want)
	}
	return nil
}

// ReadImages decodes an IDX image stream.
//
// IDX file format for images:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes (28)
//	number of cols: 4 bytes (28)
//	pixel data: unsigned bytes (0-255)
//
// Memory grows with the bytes actually read, never with the header count.
func ReadImages(r io.Reader) (*Images, error) {
	if err := readMagic(r, "image", imagesMagic); err != nil {
		return nil, err
	}
	var header struct {
		Count, Rows, Cols uint32
	}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("read image header: %w", err)
	}

	rows, cols := int(header.Rows), int(header.Cols)
	if rows <= 0 || cols <= 0 || rows*cols > maxImageBytes {
		return nil, fmt.Errorf("read image header: invalid image size %dx%d", rows, cols)
	}

	var pixels [][]byte
	for i := 0; i < int(header.Count); i++ {
		img := make([]byte, rows*cols)
		if _, err := io.ReadFull(r, img); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("read image %d of %d: %w", i, header.Count, err)
		}
		pixels = append(pixels, img)
	}

	return &Images{Rows: rows, Cols: cols, Pixels: pixels}, nil
}

// ReadLabels decodes an IDX label stream.
//
// IDX file format for labels:
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes (0-9)
func ReadLabels(r io.Reader) ([]byte, error) {
	if err := readMagic(r, "label", labelsMagic); err != nil {
		return nil, err
	}
	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, fmt.Errorf("read label header: %w", err)
	}

	var buf bytes.Buffer
	n, err := io.CopyN(&buf, r, int64(count))
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("read labels: got %d of %d: %w", n, count, err)
	}
	return buf.Bytes(), nil
}

// ReadImagesFile decodes an IDX image file, raw or gzip-compressed.
func ReadImagesFile(path string) (*Images, error) {
	var images *Images
	err := withReader(path, func(r io.Reader) (err error) {
		images, err = ReadImages(r)
		return err
	})
	return images, err
}

// ReadLabelsFile decodes an IDX label file, raw or gzip-compressed.
func ReadLabelsFile(path string) ([]byte, error) {
	var labels []byte
	err := withReader(path, func(r io.Reader) (err error) {
		labels, err = ReadLabels(r)
		return err
	})
	return labels, err
}

// withReader opens path and hands fn a reader over its decompressed bytes.
// Gzip input is recognised by its 0x1f 0x8b signature, not by file name.
func withReader(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	sig, err := br.Peek(2)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	var r io.Reader = br
	if sig[0] == 0x1f && sig[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	if err := fn(r); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
