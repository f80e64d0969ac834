package mnist

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ErrChecksum is returned when a downloaded file does not match its digest.
var ErrChecksum = errors.New("mnist: checksum mismatch")

// DefaultMirrors are tried in order for every file.
var DefaultMirrors = []string{
	"https://ossci-datasets.s3.amazonaws.com/mnist/",
	"https://storage.googleapis.com/cvdf-datasets/mnist/",
}

// DefaultChecksums maps each compressed file to its SHA-256 digest.
var DefaultChecksums = map[string]string{
	"train-images-idx3-ubyte.gz": "440fcabf73cc546fa21475e81ea370265605f56be210a4024d2ca8f203523609",
	"train-labels-idx1-ubyte.gz": "3552534a0a558bbed6aed32b30c495cca23d567ec52cac8be1a0730e8010255c",
	"t10k-images-idx3-ubyte.gz":  "8d422c7b0a1c1c79245a5bcf07fe86e33eeafee792b84584aec276f5a2dbc4e6",
	"t10k-labels-idx1-ubyte.gz":  "f7ae60f92e00ec6debd23a6088c31dbd2371eca3ffa0defaefb259924204aec6",
}

// Files lists the base names of the four MNIST files.
var Files = []string{
	"train-images-idx3-ubyte",
	"train-labels-idx1-ubyte",
	"t10k-images-idx3-ubyte",
	"t10k-labels-idx1-ubyte",
}

// Options configures Download. The zero value uses DefaultMirrors,
// DefaultChecksums and http.DefaultClient.
type Options struct {
	Mirrors   []string
	Checksums map[string]string // file name -> hex SHA-256; missing entries are not verified
	Client    *http.Client
	Logf      func(format string, args ...any)
}

// Download fetches every MNIST file missing from dir.
//
// A file counts as present when either its raw or .gz form exists. Missing
// files are written as <name>.gz via a temporary file and a rename, so a
// failed or cancelled download never leaves a partial file behind.
func Download(ctx context.Context, dir string, opts Options) error {
	if len(opts.Mirrors) == 0 {
		opts.Mirrors = DefaultMirrors
	}
	if opts.Checksums == nil {
		opts.Checksums = DefaultChecksums
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Logf == nil {
		opts.Logf = func(string, ...any) {}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	for _, name := range Files {
		if _, err := locate(dir, name); err == nil {
			continue
		}

		gzName := name + ".gz"
		dest := filepath.Join(dir, gzName)

		var errs []error
		for _, mirror := range opts.Mirrors {
			url := strings.TrimSuffix(mirror, "/") + "/" + gzName
			opts.Logf("downloading %s", url)

			err := fetch(ctx, opts.Client, url, dest, opts.Checksums[gzName])
			if err == nil {
				errs = nil
				break
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			opts.Logf("mirror failed: %v", err)
			errs = append(errs, err)
		}
		if len(errs) > 0 {
			return fmt.Errorf("download %s: %w", gzName, errors.Join(errs...))
		}
	}
	return nil
}

// fetch downloads url to dest atomically, verifying wantSum when non-empty.
func fetch(ctx context.Context, client *http.Client, url, dest, wantSum string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: download failed with status %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, h), resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: %w", url, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if wantSum != "" {
		if got := hex.EncodeToString(h.Sum(nil)); got != wantSum {
			return fmt.Errorf("%w: %s: got %s, want %s", ErrChecksum, url, got, wantSum)
		}
	}

	return os.Rename(tmp.Name(), dest)
}
