package plots

import (
	"fmt"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	routeSwapXLabel = "Request Number"
	routeSwapYLabel = "HTTP Request Time (ms)"
)

// requestXYs numbers the samples from 1 in file order.
func requestXYs(vals []float64) plotter.XYs {
	xys := make(plotter.XYs, len(vals))
	for i, v := range vals {
		xys[i] = plotter.XY{X: float64(i + 1), Y: v}
	}
	return xys
}

// RouteSwapChart writes request time against request number for one dataset, in ms.
func RouteSwapChart(panel Panel, dpi float64, path string) error {
	vals := panel.Data.Values()
	if len(vals) == 0 {
		return fmt.Errorf("no request times to plot from %s", panel.Data.Source)
	}
	p := newPlot(fmt.Sprintf("HTTP Request Times - %s", panel.Label), routeSwapXLabel, routeSwapYLabel)
	p.Add(dottedGrid(vg.Points(4), vg.Points(2)))
	line, err := plotter.NewLine(requestXYs(vals))
	if err != nil {
		return fmt.Errorf("%s: %w", panel.Label, err)
	}
	line.Color = pick(panel.Color, 0)
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.X.Min = 1
	return savePlot(p, 10*vg.Inch, 6*vg.Inch, dpi, path)
}
