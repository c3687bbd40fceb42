package plots

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	log "github.com/nerds-ufes/polka-perf/pkg/logging"
	"github.com/nerds-ufes/polka-perf/pkg/timeofday"
)

const (
	timelineTitle  = "HTTP Response Time Over 24-Hour Period"
	timelineXLabel = "Time (HH:MM)"
	timelineYLabel = "Response Time (ms)"
)

// hourTicks labels the day every four hours, "00:00" to "24:00".
func hourTicks() plot.ConstantTicks {
	var ticks plot.ConstantTicks
	for h := 0; h <= 24; h += 4 {
		ticks = append(ticks, plot.Tick{Value: float64(h), Label: fmt.Sprintf("%02d:00", h)})
	}
	return ticks
}

// stepTicks labels lo to hi every step.
func stepTicks(lo, hi, step float64) plot.ConstantTicks {
	var ticks plot.ConstantTicks
	for v := lo; v <= hi+step/1e6; v += step {
		ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf("%g", v)})
	}
	return ticks
}

func timelineXYs(pts []timeofday.Point) plotter.XYs {
	xys := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		xys[i] = plotter.XY{X: pt.Hour, Y: pt.Value}
	}
	return xys
}

// timelineTile draws one path over the day. The axes are fixed so tiles compare, and a
// path without timestamped samples leaves the tile blank.
func timelineTile(panel Panel, idx int, yMax float64, bottom, left bool) (*plot.Plot, bool, error) {
	p := newPlot(panel.Label, "", "")
	if bottom {
		p.X.Label.Text = timelineXLabel
	}
	if left {
		p.Y.Label.Text = timelineYLabel
	}
	p.Add(dottedGrid(vg.Points(1), vg.Points(2)))

	pts := timeofday.Normalize(panel.Data)
	drawn := len(pts) > 0
	if drawn {
		line, err := plotter.NewLine(timelineXYs(pts))
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", panel.Label, err)
		}
		line.Color = fade(pick(panel.Color, idx), 0.7)
		line.Width = vg.Points(0.8)
		p.Add(line)
	} else {
		log.WithFile(panel.Data.Source).Warnf("No data found, skipping %s", panel.Label)
	}

	// set after Add, which would otherwise widen the ranges to the data
	p.X.Min, p.X.Max = 0, 24
	p.Y.Min, p.Y.Max = 0, yMax
	p.X.Tick.Marker = hourTicks()
	p.Y.Tick.Marker = stepTicks(0, yMax, 200)
	return p, drawn, nil
}

// TimelineGrid writes the 2x2 grid of response time against time of day, in ms, to path.
func TimelineGrid(panels []Panel, yMax, dpi float64, path string) error {
	drawn := 0
	tiles := make([]*plot.Plot, 0, len(panels))
	for i, panel := range panels {
		p, ok, err := timelineTile(panel, i, yMax, i >= 2, i%2 == 0)
		if err != nil {
			return err
		}
		if ok {
			drawn++
		}
		tiles = append(tiles, p)
	}
	if drawn == 0 {
		return fmt.Errorf("no timestamped response times to plot")
	}
	return saveGrid(grid2x2(tiles), timelineTitle, 15*vg.Inch, 10*vg.Inch, dpi, path)
}
