package plots

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	log "github.com/nerds-ufes/polka-perf/pkg/logging"
	"github.com/nerds-ufes/polka-perf/pkg/sample"
)

const (
	stressTitle  = "Average Throughput Comparison: IP vs PolKA 1, 2, 3"
	stressXLabel = "Time (minutes)"
	stressYLabel = "Average Throughput (Gb/s)"
)

var stressGlyphs = []draw.GlyphDrawer{
	draw.CircleGlyph{},
	draw.BoxGlyph{},
	draw.PyramidGlyph{},
	draw.CrossGlyph{},
}

// SeriesPanel is one throughput series with its legend color.
type SeriesPanel struct {
	Color  string
	Series sample.Series
}

// FormatThroughput prints more decimals the smaller the value is.
func FormatThroughput(v float64) string {
	switch {
	case v >= 1:
		return fmt.Sprintf("%.1f", v)
	case v >= 0.1:
		return fmt.Sprintf("%.2f", v)
	default:
		return fmt.Sprintf("%.3f", v)
	}
}

func throughputTicks() plot.ConstantTicks {
	var ticks plot.ConstantTicks
	for _, v := range []float64{0.01, 0.1, 1, 10, 100} {
		ticks = append(ticks, plot.Tick{Value: v, Label: FormatThroughput(v)})
	}
	return ticks
}

// WithinWindow keeps the points with x, in seconds, inside window, in minutes. Points
// with a non-positive y cannot be drawn on the log axis and are dropped too.
func WithinWindow(s sample.Series, window time.Duration) plotter.XYs {
	limit := window.Seconds()
	xys := make(plotter.XYs, 0, len(s.Points))
	for _, pt := range s.Points {
		if pt.X > limit || pt.Y <= 0 {
			continue
		}
		xys = append(xys, plotter.XY{X: pt.X / 60, Y: pt.Y})
	}
	return xys
}

// decades widens [lo, hi] to whole powers of ten, spanning at least one decade.
func decades(lo, hi float64) (float64, float64) {
	lo, hi = math.Pow(10, math.Floor(math.Log10(lo))), math.Pow(10, math.Ceil(math.Log10(hi)))
	if lo == hi {
		hi *= 10
	}
	return lo, hi
}

// StressChart writes the throughput comparison of every series to path.
func StressChart(series []SeriesPanel, window time.Duration, dpi float64, path string) error {
	p := newPlot(stressTitle, stressXLabel, stressYLabel)
	p.Add(dottedGrid(vg.Points(2), vg.Points(2)))

	yLo, yHi := math.Inf(1), math.Inf(-1)
	for i, s := range series {
		xys := WithinWindow(s.Series, window)
		if len(xys) == 0 {
			log.WithFile(s.Series.Source).Warnf("No throughput samples within %s, skipping %s", window, s.Series.Label)
			continue
		}
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return fmt.Errorf("%s: %w", s.Series.Label, err)
		}
		c := pick(s.Color, i)
		line.Color = c
		line.Width = vg.Points(2)
		points.Color = c
		points.Shape = stressGlyphs[i%len(stressGlyphs)]
		points.Radius = vg.Points(2)
		p.Add(line, points)
		p.Legend.Add(s.Series.Label, line, points)
		for _, xy := range xys {
			yLo = math.Min(yLo, xy.Y)
			yHi = math.Max(yHi, xy.Y)
		}
	}
	if math.IsInf(yLo, 1) {
		return fmt.Errorf("no throughput samples to plot")
	}

	minutes := window.Minutes()
	p.X.Min, p.X.Max = 0, minutes
	p.X.Tick.Marker = stepTicks(0, minutes, 2)
	p.Y.Scale = plot.LogScale{}
	p.Y.Min, p.Y.Max = decades(yLo, yHi)
	p.Y.Tick.Marker = throughputTicks()
	// bottom right
	p.Legend.Top = false
	p.Legend.Left = false
	p.Legend.XOffs = -vg.Points(8)
	p.Legend.YOffs = vg.Points(8)
	return savePlot(p, 10*vg.Inch, 6*vg.Inch, dpi, path)
}
