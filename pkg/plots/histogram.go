package plots

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/nerds-ufes/polka-perf/pkg/histogram"
	log "github.com/nerds-ufes/polka-perf/pkg/logging"
)

const (
	histogramTitle  = "HTTP Response Time Density Curve per Path"
	histogramXLabel = "Response Time (ms)"
	histogramYLabel = "Probability Density"
)

func positive(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if v > 0 {
			out = append(out, v)
		}
	}
	return out
}

// stepOutline traces the top of the bars, starting and ending on the floor so the fill
// closes. Zero densities and non-positive edges are raised to the given floors to stay
// drawable on log axes.
func stepOutline(bins []histogram.Bin, xFloor, yFloor float64) plotter.XYs {
	clampX := func(x float64) float64 { return math.Max(x, xFloor) }
	clampY := func(y float64) float64 { return math.Max(y, yFloor) }
	xys := make(plotter.XYs, 0, 2*len(bins)+2)
	xys = append(xys, plotter.XY{X: clampX(bins[0].Min), Y: yFloor})
	for _, b := range bins {
		d := clampY(b.Density)
		xys = append(xys, plotter.XY{X: clampX(b.Min), Y: d}, plotter.XY{X: clampX(b.Max), Y: d})
	}
	xys = append(xys, plotter.XY{X: clampX(bins[len(bins)-1].Max), Y: yFloor})
	return xys
}

// densityFloor is a decade under the smallest non-zero density.
func densityFloor(bins []histogram.Bin) float64 {
	lowest := math.Inf(1)
	for _, b := range bins {
		if b.Density > 0 && b.Density < lowest {
			lowest = b.Density
		}
	}
	return lowest / 10
}

// densityTile draws one path. Only positive values are binned, and a path without any is
// left as an empty tile flagged in its title.
func densityTile(panel Panel, idx, bins int, bottom, left bool) (*plot.Plot, bool, error) {
	p := newPlot(panel.Label, "", "")
	if bottom {
		p.X.Label.Text = histogramXLabel
	}
	if left {
		p.Y.Label.Text = histogramYLabel
	}
	vals := positive(panel.Data.Values())
	if len(vals) == 0 {
		log.WithFile(panel.Data.Source).Warnf("%s has no positive values", panel.Label)
		p.Title.Text = panel.Label + " (no positive values)"
		return p, false, nil
	}

	bs := histogram.Density(vals, bins)
	line, err := plotter.NewLine(stepOutline(bs, floats.Min(vals)/2, densityFloor(bs)))
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", panel.Label, err)
	}
	c := pick(panel.Color, idx)
	line.Color = c
	line.Width = vg.Points(1)
	line.FillColor = fade(c, 0.7)
	p.Add(dottedGrid(vg.Points(1), vg.Points(2)), line)

	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	return p, true, nil
}

// HistogramGrid writes the 2x2 density grid to path. Every path is binned over its own
// range with the shared bin count. At least one panel needs positive values.
func HistogramGrid(panels []Panel, bins int, dpi float64, path string) error {
	if bins < 1 {
		return fmt.Errorf("bin count must be > 0, got %d", bins)
	}
	drawn := 0
	tiles := make([]*plot.Plot, 0, len(panels))
	for i, panel := range panels {
		p, ok, err := densityTile(panel, i, bins, i >= 2, i%2 == 0)
		if err != nil {
			return err
		}
		if ok {
			drawn++
		}
		tiles = append(tiles, p)
	}
	if drawn == 0 {
		return fmt.Errorf("no positive response times to plot")
	}
	log.Debugf("Binning %d paths with %d bins", len(panels), bins)
	return saveGrid(grid2x2(tiles), histogramTitle, 15*vg.Inch, 10*vg.Inch, dpi, path)
}
