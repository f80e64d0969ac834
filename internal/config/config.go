// Package config loads the runtime knobs of a training run from YAML and
// command-line overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/mnist-mlp/internal/model"
	"github.com/born-ml/mnist-mlp/internal/nn"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config captures the runtime knobs for a training run.
type Config struct {
	DataDir  string `yaml:"data_dir"`
	Download bool   `yaml:"download"`

	Epochs        int   `yaml:"epochs"`
	BatchSize     int   `yaml:"batch_size"`
	TestBatchSize int   `yaml:"test_batch_size"`
	ShuffleTrain  bool  `yaml:"shuffle_train"`
	ShuffleTest   bool  `yaml:"shuffle_test"`
	MaxTrain      int   `yaml:"max_train_samples"` // 0 = all
	MaxTest       int   `yaml:"max_test_samples"`  // 0 = all
	Seed          int64 `yaml:"seed"`

	LearningRate float64 `yaml:"learning_rate"`
	Momentum     float64 `yaml:"momentum"`

	HiddenDim  int    `yaml:"hidden_dim"`
	OutputReLU bool   `yaml:"output_relu"`
	Init       string `yaml:"init"` // "lecun" or "xavier"

	LogEvery int    `yaml:"log_every"` // 0 disables per-batch log lines
	Plot     string `yaml:"plot"`      // loss curve output path; empty disables
}

// Overrides captures CLI supplied values. Zero values leave the config
// untouched.
type Overrides struct {
	DataDir      string
	NoDownload   bool
	Epochs       int
	BatchSize    int
	LearningRate float64
	Momentum     float64
	HiddenDim    int
	Seed         int64
	OutputReLU   bool
	Plot         string
}

// Defaults returns the configuration of the reference run: one epoch of
// SGD at lr 0.01 over batches of 10, test batches shuffled.
func Defaults() *Config {
	return &Config{
		DataDir:       "./datasets/MNIST/raw",
		Download:      true,
		Epochs:        1,
		BatchSize:     10,
		TestBatchSize: 10,
		ShuffleTrain:  false,
		ShuffleTest:   true,
		Seed:          1,
		LearningRate:  0.01,
		HiddenDim:     500,
		Init:          "lecun",
	}
}

// Load reads and validates a Config from YAML. Keys missing from the file
// keep their Defaults value; unknown keys are rejected.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse decodes YAML from r on top of Defaults. An empty document yields
// the defaults.
func Parse(r io.Reader) (*Config, error) {
	cfg := Defaults()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates c using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	if o.NoDownload {
		c.Download = false
	}
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.Momentum > 0 {
		c.Momentum = o.Momentum
	}
	if o.HiddenDim > 0 {
		c.HiddenDim = o.HiddenDim
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.OutputReLU {
		c.OutputReLU = true
	}
	if o.Plot != "" {
		c.Plot = o.Plot
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalid)
	}
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir must be set", ErrInvalid)
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("%w: epochs must be > 0 (got %d)", ErrInvalid, c.Epochs)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch_size must be > 0 (got %d)", ErrInvalid, c.BatchSize)
	}
	if c.TestBatchSize <= 0 {
		return fmt.Errorf("%w: test_batch_size must be > 0 (got %d)", ErrInvalid, c.TestBatchSize)
	}
	if c.MaxTrain < 0 || c.MaxTest < 0 {
		return fmt.Errorf("%w: sample limits must be >= 0", ErrInvalid)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("%w: learning_rate must be > 0 (got %g)", ErrInvalid, c.LearningRate)
	}
	if c.Momentum < 0 || c.Momentum >= 1 {
		return fmt.Errorf("%w: momentum must be in [0, 1) (got %g)", ErrInvalid, c.Momentum)
	}
	if c.HiddenDim <= 0 {
		return fmt.Errorf("%w: hidden_dim must be > 0 (got %d)", ErrInvalid, c.HiddenDim)
	}
	if _, err := c.initScheme(); err != nil {
		return err
	}
	if c.LogEvery < 0 {
		return fmt.Errorf("%w: log_every must be >= 0 (got %d)", ErrInvalid, c.LogEvery)
	}
	return nil
}

// Model returns the network architecture described by c.
// c must be valid.
func (c *Config) Model() model.Config {
	scheme, _ := c.initScheme()
	cfg := model.DefaultConfig()
	cfg.HiddenDim = c.HiddenDim
	cfg.OutputReLU = c.OutputReLU
	cfg.Init = scheme
	cfg.Seed = c.Seed
	return cfg
}

func (c *Config) initScheme() (nn.Init, error) {
	switch c.Init {
	case "", "lecun":
		return nn.InitLeCun, nil
	case "xavier":
		return nn.InitXavier, nil
	default:
		return 0, fmt.Errorf("%w: unknown init %q (want lecun or xavier)", ErrInvalid, c.Init)
	}
}
