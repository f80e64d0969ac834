// Package report formats the outcome of a training run.
package report

import (
	"fmt"
	"io"
	"time"
)

// Summary is the final outcome of a run.
type Summary struct {
	RunID    string
	Correct  int
	Total    int
	Accuracy float64 // percent
	Params   int
	Epochs   int
	Duration time.Duration
}

// Print writes the human-readable result:
//
//	Accuracy: 97.87 %
//	Trainable parameters: 397510
func (s Summary) Print(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Accuracy: %.2f %%\nTrainable parameters: %d\n", s.Accuracy, s.Params)
	return err
}

// String returns a one-line key=value form for logs.
func (s Summary) String() string {
	return fmt.Sprintf("run=%s epochs=%d correct=%d total=%d accuracy=%.2f params=%d duration=%s",
		s.RunID, s.Epochs, s.Correct, s.Total, s.Accuracy, s.Params, s.Duration.Round(time.Millisecond))
}
