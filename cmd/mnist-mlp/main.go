// Package main provides the mnist-mlp CLI: it trains a two-layer MLP on
// MNIST and reports test accuracy and the trainable-parameter count.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/born-ml/mnist-mlp/internal/autodiff"
	"github.com/born-ml/mnist-mlp/internal/backend/cpu"
	"github.com/born-ml/mnist-mlp/internal/config"
	"github.com/born-ml/mnist-mlp/internal/mnist"
	"github.com/born-ml/mnist-mlp/internal/model"
	"github.com/born-ml/mnist-mlp/internal/optim"
	"github.com/born-ml/mnist-mlp/internal/report"
	"github.com/born-ml/mnist-mlp/internal/train"
)

const version = "v0.1.0"

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr))
}

// realMain parses args, runs the selected command and returns the process
// exit code. Deferred cleanup runs before main exits.
func realMain(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "version":
			fmt.Fprintf(stdout, "mnist-mlp %s\n", version)
			return 0
		case "relu":
			reluDemo(stdout, rand.New(rand.NewSource(1))) //nolint:gosec // demo input
			return 0
		}
	}

	fs := flag.NewFlagSet("mnist-mlp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "Path to YAML config (defaults are used when empty)")
	dataDir := fs.String("data-dir", "", "Directory holding the MNIST IDX files")
	noDownload := fs.Bool("no-download", false, "Fail instead of downloading missing dataset files")
	epochs := fs.Int("epochs", 0, "Number of training epochs")
	batchSize := fs.Int("batch-size", 0, "Training batch size")
	lr := fs.Float64("lr", 0, "SGD learning rate")
	momentum := fs.Float64("momentum", 0, "SGD momentum (0 keeps the config value)")
	hidden := fs.Int("hidden", 0, "Hidden layer width")
	seed := fs.Int64("seed", 0, "PRNG seed for initialization and shuffling")
	outputReLU := fs.Bool("output-relu", false, "Apply ReLU to the output layer")
	plotPath := fs.String("plot", "", "Write the training loss curve to this file (.png, .svg, .pdf)")
	quiet := fs.Bool("quiet", false, "Disable progress bars")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := config.Defaults()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			log.Printf("failed to load config: %v", err)
			return 1
		}
	}

	cfg.ApplyOverrides(config.Overrides{
		DataDir:      *dataDir,
		NoDownload:   *noDownload,
		Epochs:       *epochs,
		BatchSize:    *batchSize,
		LearningRate: *lr,
		Momentum:     *momentum,
		HiddenDim:    *hidden,
		Seed:         *seed,
		OutputReLU:   *outputReLU,
		Plot:         *plotPath,
	})

	if err := cfg.Validate(); err != nil {
		log.Printf("invalid config: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := stderr
	if *quiet {
		progress = nil
	}

	if err := run(ctx, cfg, stdout, progress); err != nil {
		log.Printf("run failed: %v", err)
		return 1
	}
	return 0
}

// run downloads (if allowed) and loads MNIST, trains the model, evaluates
// it on the test split and prints the summary to stdout.
func run(ctx context.Context, cfg *config.Config, stdout, progress io.Writer) error {
	runID := uuid.NewString()
	cpuBackend := cpu.New()
	backend := autodiff.New(cpuBackend)
	log.Printf("run=%s version=%s backend=%q cpu=%q", runID, version, backend.Name(), cpuBackend.Describe())

	if cfg.Download {
		if err := mnist.Download(ctx, cfg.DataDir, mnist.Options{Logf: log.Printf}); err != nil {
			return fmt.Errorf("download dataset: %w", err)
		}
	}

	trainSet, err := mnist.Load(cfg.DataDir, mnist.Train, cfg.MaxTrain)
	if err != nil {
		return err
	}
	testSet, err := mnist.Load(cfg.DataDir, mnist.Test, cfg.MaxTest)
	if err != nil {
		return err
	}
	log.Printf("run=%s train_samples=%d test_samples=%d", runID, trainSet.Len(), testSet.Len())

	trainLoader, err := mnist.NewDataLoader(trainSet, backend, mnist.LoaderOptions{
		BatchSize: cfg.BatchSize,
		Shuffle:   cfg.ShuffleTrain,
		Seed:      cfg.Seed,
	})
	if err != nil {
		return fmt.Errorf("train loader: %w", err)
	}
	testLoader, err := mnist.NewDataLoader(testSet, backend, mnist.LoaderOptions{
		BatchSize: cfg.TestBatchSize,
		Shuffle:   cfg.ShuffleTest,
		Seed:      cfg.Seed + 1,
	})
	if err != nil {
		return fmt.Errorf("test loader: %w", err)
	}

	mdl := model.NewMLP(cfg.Model(), backend)
	optimizer := optim.NewSGD(mdl.Parameters(), optim.SGDConfig{
		LR:       float32(cfg.LearningRate),
		Momentum: float32(cfg.Momentum),
	}, backend)
	log.Printf("run=%s model=%q params=%d lr=%g momentum=%g batch_size=%d epochs=%d",
		runID, mdl.String(), mdl.NumParameters(), cfg.LearningRate, cfg.Momentum, cfg.BatchSize, cfg.Epochs)

	trainer := train.New(mdl, optimizer, backend, train.Options{
		Epochs:   cfg.Epochs,
		LogEvery: cfg.LogEvery,
		Progress: progress,
	})
	rep, err := trainer.Fit(ctx, trainLoader, testLoader)
	if err != nil {
		return err
	}

	summary := report.Summary{
		RunID:    runID,
		Correct:  rep.Test.Correct,
		Total:    rep.Test.Total,
		Accuracy: rep.Test.Accuracy(),
		Params:   mdl.NumParameters(),
		Epochs:   cfg.Epochs,
		Duration: rep.Duration,
	}
	log.Printf("%s", summary)
	if err := summary.Print(stdout); err != nil {
		return err
	}

	if cfg.Plot != "" {
		if err := report.PlotLoss(cfg.Plot, rep.Losses); err != nil {
			return err
		}
		log.Printf("run=%s plot=%s", runID, cfg.Plot)
	}
	return nil
}
