package report

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("report: no data to plot")

// smoothing is the span of the exponential moving average drawn over the
// raw batch losses.
const smoothing = 100

// EMA is an exponential moving average.
type EMA float64

// Add returns the average after folding in val with span n.
func (e EMA) Add(val, n float64) float64 {
	if e == 0 {
		return val
	}
	k := 2.0 / (n + 1.0)
	return val*k + float64(e)*(1-k)
}

// PlotLoss draws the per-batch training loss and its moving average to
// path. The image format follows the file extension (.png, .svg, .pdf).
func PlotLoss(path string, losses []float64) error {
	if len(losses) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = "Training loss"
	p.X.Label.Text = "batch"
	p.Y.Label.Text = "cross-entropy"
	p.X.Padding, p.Y.Padding = 0, 0
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	raw := make(plotter.XYs, len(losses))
	smooth := make(plotter.XYs, len(losses))
	var ema EMA
	for i, loss := range losses {
		ema = EMA(ema.Add(loss, smoothing))
		raw[i].X, raw[i].Y = float64(i+1), loss
		smooth[i].X, smooth[i].Y = float64(i+1), float64(ema)
	}

	for i, series := range []struct {
		name string
		xys  plotter.XYs
	}{
		{"batch loss", raw},
		{"moving average", smooth},
	} {
		line, err := plotter.NewLine(series.xys)
		if err != nil {
			return fmt.Errorf("plot %s: %w", series.name, err)
		}
		line.Width = vg.Points(1 + float64(i))
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(series.name, line)
	}

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}
