// Package train runs the optimization and evaluation loops.
package train

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/born-ml/mnist-mlp/internal/autodiff"
	"github.com/born-ml/mnist-mlp/internal/mnist"
	"github.com/born-ml/mnist-mlp/internal/nn"
	"github.com/born-ml/mnist-mlp/internal/optim"
	"github.com/born-ml/mnist-mlp/internal/tensor"
)

// ErrDiverged is returned when the training loss stops being finite.
var ErrDiverged = errors.New("train: loss diverged")

// Options configures a Trainer.
type Options struct {
	Epochs   int       // passes over the training set (default 1)
	LogEvery int       // log a line every N batches; 0 disables step logging
	Progress io.Writer // progress bar destination; nil disables the bar
	Logf     func(format string, args ...any)
}

// Result holds evaluation counts.
type Result struct {
	Correct int
	Total   int
	Loss    float64 // mean per-batch loss
}

// Accuracy returns the share of correct predictions in percent, or 0 when
// nothing was evaluated.
func (r Result) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return 100 * float64(r.Correct) / float64(r.Total)
}

// EpochStats summarizes one pass over the training set.
type EpochStats struct {
	Epoch    int
	Loss     Average // per-batch loss
	Correct  int     // training predictions that matched, measured before each step
	Samples  int
	Duration time.Duration
}

// Accuracy returns the training accuracy of the epoch in percent.
func (s EpochStats) Accuracy() float64 {
	return Result{Correct: s.Correct, Total: s.Samples}.Accuracy()
}

// Report is the outcome of Fit.
type Report struct {
	Epochs   []EpochStats
	Test     Result
	Losses   []float64 // every training batch loss, in order
	Duration time.Duration
}

// Trainer owns the training loop for a model on an autodiff backend.
//
//	backend := autodiff.New(cpu.New())
//	mdl := model.NewMLP(model.DefaultConfig(), backend)
//	opt := optim.NewSGD(mdl.Parameters(), optim.SGDConfig{LR: 0.01}, backend)
//	trainer := train.New(mdl, opt, backend, train.Options{Epochs: 1})
//	report, err := trainer.Fit(ctx, trainLoader, testLoader)
type Trainer[B tensor.Backend] struct {
	model     nn.Module[*autodiff.AutodiffBackend[B]]
	criterion *nn.CrossEntropyLoss[*autodiff.AutodiffBackend[B]]
	optimizer optim.Optimizer
	backend   *autodiff.AutodiffBackend[B]
	opts      Options

	epoch  int
	losses []float64

	progressErr bool // a progress write already failed and was logged
}

// New creates a Trainer. The loss is softmax cross-entropy over the
// model's logits.
func New[B tensor.Backend](
	model nn.Module[*autodiff.AutodiffBackend[B]],
	optimizer optim.Optimizer,
	backend *autodiff.AutodiffBackend[B],
	opts Options,
) *Trainer[B] {
	if opts.Epochs <= 0 {
		opts.Epochs = 1
	}
	if opts.Logf == nil {
		opts.Logf = log.Printf
	}

	return &Trainer[B]{
		model:     model,
		criterion: nn.NewCrossEntropyLoss(backend),
		optimizer: optimizer,
		backend:   backend,
		opts:      opts,
	}
}

// Losses returns every training batch loss recorded so far.
func (t *Trainer[B]) Losses() []float64 {
	return t.losses
}

// TrainEpoch runs one pass over loader: for every batch it zeroes the
// gradients, records the forward pass and loss, backpropagates and steps
// the optimizer.
//
// Cancellation is checked between batches. A non-finite loss aborts the
// epoch with ErrDiverged before the optimizer step.
func (t *Trainer[B]) TrainEpoch(ctx context.Context, loader *mnist.DataLoader[*autodiff.AutodiffBackend[B]]) (EpochStats, error) {
	t.epoch++
	stats := EpochStats{Epoch: t.epoch}
	start := time.Now()

	tape := t.backend.Tape()
	defer tape.StopRecording()

	bar := t.newBar(loader.NumBatches(), fmt.Sprintf("epoch %d/%d", t.epoch, t.opts.Epochs))
	defer bar.Close()

	var window Window
	loader.Reset()
	for i := range loader.NumBatches() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		batch := loader.Batch(i)
		stepStart := time.Now()

		t.optimizer.ZeroGrad()
		tape.Clear()
		tape.StartRecording()

		logits := t.model.Forward(batch.Images)
		loss := t.criterion.Forward(logits, batch.Labels)
		grads := autodiff.Backward(loss, t.backend)
		tape.StopRecording()

		lossValue := float64(loss.Item())
		if math.IsNaN(lossValue) || math.IsInf(lossValue, 0) {
			return stats, fmt.Errorf("%w: epoch %d batch %d loss=%v", ErrDiverged, t.epoch, i, lossValue)
		}

		t.optimizer.Step(grads)

		stats.Correct += nn.CountCorrect(logits, batch.Labels)
		stats.Samples += batch.Size()
		stats.Loss.Add(lossValue)
		t.losses = append(t.losses, lossValue)
		window.Record(batch.Size(), time.Since(stepStart), lossValue)

		t.tick(bar)
		if t.opts.LogEvery > 0 && (i+1)%t.opts.LogEvery == 0 {
			snap := window.Snapshot()
			t.opts.Logf("epoch=%d batch=%d/%d images_per_sec=%.1f compute_ms=%.2f loss=%.4f",
				t.epoch, i+1, loader.NumBatches(), snap.ImagesPerSec, snap.AvgComputeMS, snap.LastLoss)
		}
	}
	tape.Clear()

	stats.Duration = time.Since(start)
	return stats, nil
}

// Evaluate counts the batches' argmax predictions that match their labels.
// Nothing is recorded on the tape.
func (t *Trainer[B]) Evaluate(ctx context.Context, loader *mnist.DataLoader[*autodiff.AutodiffBackend[B]]) (Result, error) {
	tape := t.backend.Tape()
	wasRecording := tape.IsRecording()
	tape.StopRecording()
	defer func() {
		if wasRecording {
			tape.StartRecording()
		}
	}()

	bar := t.newBar(loader.NumBatches(), "evaluate")
	defer bar.Close()

	var result Result
	var loss Average
	loader.Reset()
	for i := range loader.NumBatches() {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		batch := loader.Batch(i)
		logits := t.model.Forward(batch.Images)
		loss.Add(float64(t.criterion.Forward(logits, batch.Labels).Item()))

		result.Correct += nn.CountCorrect(logits, batch.Labels)
		result.Total += batch.Size()
		t.tick(bar)
	}
	result.Loss = loss.Mean

	return result, nil
}

// Fit trains for the configured number of epochs, then evaluates on test.
func (t *Trainer[B]) Fit(ctx context.Context, trainLoader, testLoader *mnist.DataLoader[*autodiff.AutodiffBackend[B]]) (*Report, error) {
	start := time.Now()
	report := &Report{}

	for range t.opts.Epochs {
		stats, err := t.TrainEpoch(ctx, trainLoader)
		if err != nil {
			return nil, err
		}
		t.opts.Logf("epoch=%d loss_mean=%.4f loss_std=%.4f train_acc=%.2f duration=%s",
			stats.Epoch, stats.Loss.Mean, stats.Loss.StdDev, stats.Accuracy(), stats.Duration.Round(time.Millisecond))
		report.Epochs = append(report.Epochs, stats)
	}

	result, err := t.Evaluate(ctx, testLoader)
	if err != nil {
		return nil, err
	}
	t.opts.Logf("test correct=%d total=%d accuracy=%.2f loss=%.4f", result.Correct, result.Total, result.Accuracy(), result.Loss)

	report.Test = result
	report.Losses = t.losses
	report.Duration = time.Since(start)
	return report, nil
}

// tick advances bar. Progress output is cosmetic, so a write failure is
// logged the first time and otherwise does not interrupt training.
func (t *Trainer[B]) tick(bar *progressbar.ProgressBar) {
	if err := bar.Add(1); err != nil && !t.progressErr {
		t.progressErr = true
		t.opts.Logf("progress output failed: %v", err)
	}
}

func (t *Trainer[B]) newBar(total int, description string) *progressbar.ProgressBar {
	w := t.opts.Progress
	if w == nil {
		w = io.Discard
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetItsString("batch"),
		progressbar.OptionShowIts(),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() { _, _ = fmt.Fprintln(w) }),
	)
}
