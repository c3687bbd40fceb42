package plots

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	log "github.com/nerds-ufes/polka-perf/pkg/logging"
	"github.com/nerds-ufes/polka-perf/pkg/timeofday"
)

// HTMLPath swaps the extension of a PNG output for .html.
func HTMLPath(png string) string {
	return strings.TrimSuffix(png, filepath.Ext(png)) + ".html"
}

func newLineChart(title, subtitle, xName, yName string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: xName, NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: yName, NameLocation: "middle", NameGap: 45}),
	)
	return line
}

func addSeries(line *charts.Line, name, color string, xs, ys []float64) {
	data := make([]opts.LineData, len(xs))
	for i := range xs {
		data[i] = opts.LineData{Value: []interface{}{xs[i], ys[i]}}
	}
	line.AddSeries(name, data,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 1}),
	)
}

func renderPage(path string, chartList ...components.Charter) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("unable to create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", path, err)
	}
	page := components.NewPage()
	page.AddCharts(chartList...)
	if err := page.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("unable to render %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Infof("🌐 Interactive chart saved to: %s", path)
	return nil
}

// TimelineHTML renders one interactive chart per path over the day.
func TimelineHTML(panels []Panel, yMax float64, path string) error {
	var list []components.Charter
	for i, panel := range panels {
		pts := timeofday.Normalize(panel.Data)
		if len(pts) == 0 {
			continue
		}
		line := newLineChart(panel.Label, timelineTitle, "Hour of day (UTC)", timelineYLabel)
		line.SetGlobalOptions(
			charts.WithXAxisOpts(opts.XAxis{Type: "value", Min: 0, Max: 24, Name: "Hour of day (UTC)"}),
			charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: 0, Max: yMax, Name: timelineYLabel}),
		)
		xs := make([]float64, len(pts))
		ys := make([]float64, len(pts))
		for j, pt := range pts {
			xs[j], ys[j] = pt.Hour, pt.Value
		}
		addSeries(line, panel.Label, hexOf(panel.Color, i), xs, ys)
		list = append(list, line)
	}
	if len(list) == 0 {
		return fmt.Errorf("no timestamped response times to chart")
	}
	return renderPage(path, list...)
}

// StressHTML renders the throughput comparison with a logarithmic y axis.
func StressHTML(series []SeriesPanel, window time.Duration, path string) error {
	line := newLineChart(stressTitle, fmt.Sprintf("first %s", window), stressXLabel, stressYLabel)
	line.SetGlobalOptions(
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Min: 0, Max: window.Minutes(), Name: stressXLabel}),
		charts.WithYAxisOpts(opts.YAxis{Type: "log", Name: stressYLabel}),
	)
	added := 0
	for i, s := range series {
		xys := WithinWindow(s.Series, window)
		if len(xys) == 0 {
			continue
		}
		xs := make([]float64, len(xys))
		ys := make([]float64, len(xys))
		for j, xy := range xys {
			xs[j], ys[j] = xy.X, xy.Y
		}
		addSeries(line, s.Series.Label, hexOf(s.Color, i), xs, ys)
		added++
	}
	if added == 0 {
		return fmt.Errorf("no throughput samples to chart")
	}
	return renderPage(path, line)
}

// RouteSwapHTML renders request time against request number.
func RouteSwapHTML(panel Panel, path string) error {
	vals := panel.Data.Values()
	if len(vals) == 0 {
		return fmt.Errorf("no request times to chart from %s", panel.Data.Source)
	}
	line := newLineChart(fmt.Sprintf("HTTP Request Times - %s", panel.Label), filepath.Base(panel.Data.Source), routeSwapXLabel, routeSwapYLabel)
	xys := requestXYs(vals)
	xs := make([]float64, len(xys))
	for i, xy := range xys {
		xs[i] = xy.X
	}
	addSeries(line, panel.Label, hexOf(panel.Color, 0), xs, vals)
	return renderPage(path, line)
}
