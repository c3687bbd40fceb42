package plots

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerds-ufes/polka-perf/pkg/histogram"
	"github.com/nerds-ufes/polka-perf/pkg/sample"
)

const testDPI = 30

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	buf, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf, pngMagic), "%s is not a PNG", path)
}

func valuesDataset(label string, vals ...float64) sample.Dataset {
	d := sample.Dataset{Label: label, Source: label + ".csv"}
	for _, v := range vals {
		d.Samples = append(d.Samples, sample.Sample{Value: v, Label: label})
	}
	return d
}

func timedDataset(label string, start time.Time, step time.Duration, vals ...float64) sample.Dataset {
	d := sample.Dataset{Label: label, Source: label + ".csv"}
	for i, v := range vals {
		d.Samples = append(d.Samples, sample.Sample{Value: v, Timestamp: start.Add(time.Duration(i) * step)})
	}
	return d
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#1f77b4")
	require.NoError(t, err)
	r, g, b, a := c.RGBA()
	assert.Equal(t, uint32(0x1f), r>>8)
	assert.Equal(t, uint32(0x77), g>>8)
	assert.Equal(t, uint32(0xb4), b>>8)
	assert.Equal(t, uint32(0xff), a>>8)

	_, err = ParseHex("blue")
	assert.Error(t, err)
	// invalid colors fall back to the palette
	assert.Equal(t, Palette[1], hexOf("blue", 1))
}

func TestStepOutline(t *testing.T) {
	bins := []histogram.Bin{
		{Min: 1, Max: 2, Density: 0.5},
		{Min: 2, Max: 3, Density: 0},
		{Min: 3, Max: 4, Density: 0.25},
	}
	floor := densityFloor(bins)
	assert.InDelta(t, 0.025, floor, 1e-12)
	xys := stepOutline(bins, 0.5, floor)
	require.Len(t, xys, 8)
	assert.Equal(t, floor, xys[0].Y)
	assert.Equal(t, 0.5, xys[1].Y)
	// the empty bin sits on the floor instead of zero
	assert.Equal(t, floor, xys[3].Y)
	assert.Equal(t, 4.0, xys[7].X)
	assert.Equal(t, floor, xys[7].Y)
}

func TestHistogramGrid(t *testing.T) {
	panels := []Panel{
		{Label: "PolKA 1", Data: valuesDataset("polka1", 100, 110, 120, 150, 300)},
		{Label: "PolKA 2", Data: valuesDataset("polka2", 90, 95, 96, 97, 400)},
		{Label: "PolKA 3", Data: valuesDataset("polka3", 0, -1)},
		{Label: "IP", Color: "#1f77b4", Data: valuesDataset("ip", 0.2)},
	}
	bins := histogram.NewBinning(sample.Merge(panels[0].Data, panels[1].Data, panels[2].Data, panels[3].Data), histogram.DefaultRule()).Count
	path := filepath.Join(t.TempDir(), "result-plots", "24h-histogram.png")
	require.NoError(t, HistogramGrid(panels, bins, testDPI, path))
	assertPNG(t, path)
}

func TestHistogramGridNothingPositive(t *testing.T) {
	panels := []Panel{{Label: "IP", Data: valuesDataset("ip", 0, 0)}}
	err := HistogramGrid(panels, 10, testDPI, filepath.Join(t.TempDir(), "h.png"))
	assert.Error(t, err)
}

func TestHourTicks(t *testing.T) {
	ticks := hourTicks()
	require.Len(t, ticks, 7)
	assert.Equal(t, "00:00", ticks[0].Label)
	assert.Equal(t, "16:00", ticks[4].Label)
	assert.Equal(t, 24.0, ticks[6].Value)

	ys := stepTicks(0, 1200, 200)
	require.Len(t, ys, 7)
	assert.Equal(t, "1200", ys[6].Label)
}

func TestTimelineGrid(t *testing.T) {
	start := time.Date(2025, 6, 11, 18, 0, 0, 0, time.UTC)
	panels := []Panel{
		{Label: "PolKA 1", Data: timedDataset("polka1", start, time.Hour, 200, 210, 1500, 190, 220, 205, 230)},
		{Label: "PolKA 2", Data: sample.Dataset{Label: "PolKA 2", Source: "missing.csv"}},
		{Label: "PolKA 3", Data: timedDataset("polka3", start, 30*time.Minute, 300, 310)},
		{Label: "IP", Data: valuesDataset("ip", 1, 2, 3)},
	}
	path := filepath.Join(t.TempDir(), "phase1", "http-times-over-time-24h.png")
	require.NoError(t, TimelineGrid(panels, 1200, testDPI, path))
	assertPNG(t, path)

	html := HTMLPath(path)
	require.NoError(t, TimelineHTML(panels, 1200, html))
	buf, err := os.ReadFile(html)
	require.NoError(t, err)
	assert.Contains(t, string(buf), "PolKA 3")
	assert.NotContains(t, string(buf), "PolKA 2")
}

func TestTimelineGridEmpty(t *testing.T) {
	panels := []Panel{{Label: "IP", Data: valuesDataset("ip", 1)}}
	assert.Error(t, TimelineGrid(panels, 1200, testDPI, filepath.Join(t.TempDir(), "t.png")))
}

func TestFormatThroughput(t *testing.T) {
	assert.Equal(t, "0.010", FormatThroughput(0.01))
	assert.Equal(t, "0.10", FormatThroughput(0.1))
	assert.Equal(t, "1.0", FormatThroughput(1))
	assert.Equal(t, "100.0", FormatThroughput(100))
}

func TestWithinWindow(t *testing.T) {
	s := sample.Series{Points: []sample.Point{{X: 0, Y: 1.5}, {X: 600, Y: 2}, {X: 1200, Y: 0}, {X: 1200, Y: 3}, {X: 1260, Y: 4}}}
	xys := WithinWindow(s, 20*time.Minute)
	require.Len(t, xys, 3)
	assert.Equal(t, 10.0, xys[1].X)
	assert.Equal(t, 20.0, xys[2].X)
	assert.Equal(t, 3.0, xys[2].Y)

	lo, hi := decades(0.03, 12)
	assert.InDelta(t, 0.01, lo, 1e-12)
	assert.InDelta(t, 100, hi, 1e-9)

	lo, hi = decades(1, 1)
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 10.0, hi)
}

func TestStressChart(t *testing.T) {
	series := []SeriesPanel{
		{Color: "#1f77b4", Series: sample.Series{Label: "IP: 17 Hops", Points: []sample.Point{{X: 0, Y: 9.1}, {X: 60, Y: 9.4}, {X: 120, Y: 8.8}}}},
		{Series: sample.Series{Label: "PolKA 1", Points: []sample.Point{{X: 0, Y: 0.05}, {X: 60, Y: 0.2}, {X: 1800, Y: 3}}}},
		{Series: sample.Series{Label: "PolKA 2"}},
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "stress.png")
	require.NoError(t, StressChart(series, 20*time.Minute, testDPI, path))
	assertPNG(t, path)
	require.NoError(t, StressHTML(series, 20*time.Minute, HTMLPath(path)))
	assert.FileExists(t, filepath.Join(dir, "stress.html"))

	assert.Error(t, StressChart(series[2:], 20*time.Minute, testDPI, path))

	// a flat line on a power of ten still gets a log range
	flat := []SeriesPanel{{Series: sample.Series{Label: "IP", Points: []sample.Point{{X: 0, Y: 1}, {X: 60, Y: 1}}}}}
	assert.NotPanics(t, func() {
		assert.NoError(t, StressChart(flat, 20*time.Minute, testDPI, filepath.Join(dir, "flat.png")))
	})
	assertPNG(t, filepath.Join(dir, "flat.png"))
}

func TestRouteSwapChart(t *testing.T) {
	panel := Panel{Label: "Route Swap", Color: "#0000ff", Data: valuesDataset("route-swap", 210, 205, 890, 220, 215)}
	path := filepath.Join(t.TempDir(), "route-swap.png")
	require.NoError(t, RouteSwapChart(panel, testDPI, path))
	assertPNG(t, path)
	require.NoError(t, RouteSwapHTML(panel, HTMLPath(path)))

	xys := requestXYs([]float64{5, 6})
	assert.Equal(t, 1.0, xys[0].X)
	assert.Equal(t, 2.0, xys[1].X)

	assert.Error(t, RouteSwapChart(Panel{Label: "Route Swap"}, testDPI, path))
}
