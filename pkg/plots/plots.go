// Package plots renders the experiment charts as PNG files with gonum/plot, and the
// time series as interactive HTML pages with go-echarts.
package plots

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	log "github.com/nerds-ufes/polka-perf/pkg/logging"
	"github.com/nerds-ufes/polka-perf/pkg/sample"
)

// Palette is the tab10 color cycle.
var Palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Panel is one dataset drawn in its own tile or as one series.
type Panel struct {
	Label string
	// Color is a "#rrggbb" hex string; empty picks from Palette.
	Color string
	Data  sample.Dataset
}

// ParseHex converts "#rrggbb" into a color.
func ParseHex(hex string) (color.Color, error) {
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// pick returns the panel color, or the i-th palette entry when it has none or it is invalid.
func pick(hex string, i int) color.Color {
	if hex != "" {
		c, err := ParseHex(hex)
		if err == nil {
			return c
		}
		log.Warn(err)
	}
	c, _ := ParseHex(Palette[i%len(Palette)])
	return c
}

// hexOf is the inverse of pick for the HTML charts.
func hexOf(hex string, i int) string {
	if _, err := ParseHex(hex); err == nil {
		return hex
	}
	return Palette[i%len(Palette)]
}

// fade returns c with alpha a in [0, 1], premultiplied.
func fade(c color.Color, a float64) color.Color {
	r, g, b, _ := c.RGBA()
	return color.RGBA{
		R: uint8(float64(r>>8) * a),
		G: uint8(float64(g>>8) * a),
		B: uint8(float64(b>>8) * a),
		A: uint8(255 * a),
	}
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.X.Label.TextStyle.Font.Size = vg.Points(12)
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)
	return p
}

// dottedGrid returns grid lines drawn with dashes of the given lengths.
func dottedGrid(on, off vg.Length) *plotter.Grid {
	g := plotter.NewGrid()
	g.Vertical.Dashes = []vg.Length{on, off}
	g.Horizontal.Dashes = []vg.Length{on, off}
	return g
}

func newCanvas(w, h vg.Length, dpi float64) *vgimg.Canvas {
	return vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(int(dpi)))
}

// writePNG encodes img into path, creating its parent directories.
func writePNG(img *vgimg.Canvas, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("unable to create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", path, err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("unable to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Infof("📈 Plot saved to: %s", path)
	return nil
}

func savePlot(p *plot.Plot, w, h vg.Length, dpi float64, path string) error {
	img := newCanvas(w, h, dpi)
	p.Draw(draw.New(img))
	return writePNG(img, path)
}

// saveGrid draws plots as a grid of tiles under a centered figure title.
func saveGrid(plots [][]*plot.Plot, title string, w, h vg.Length, dpi float64, path string) error {
	img := newCanvas(w, h, dpi)
	dc := draw.New(img)

	var top vg.Length
	if title != "" {
		sty := text.Style{
			Color:   color.Black,
			Font:    font.From(plot.DefaultFont, vg.Points(20)),
			XAlign:  draw.XCenter,
			YAlign:  draw.YTop,
			Handler: plot.DefaultTextHandler,
		}
		pad := vg.Points(8)
		dc.FillText(sty, vg.Point{X: dc.Center().X, Y: dc.Max.Y - pad}, title)
		top = sty.Height(title) + 2*pad
	}
	body := draw.Crop(dc, 0, 0, 0, -top)

	t := draw.Tiles{
		Rows:      len(plots),
		Cols:      len(plots[0]),
		PadX:      4 * vg.Millimeter,
		PadY:      4 * vg.Millimeter,
		PadTop:    vg.Points(2),
		PadBottom: vg.Points(6),
		PadLeft:   vg.Points(6),
		PadRight:  vg.Points(6),
	}
	canvases := plot.Align(plots, t, body)
	for i := range plots {
		for j := range plots[i] {
			if plots[i][j] != nil {
				plots[i][j].Draw(canvases[i][j])
			}
		}
	}
	return writePNG(img, path)
}

// grid2x2 lays tiles out row by row.
func grid2x2(tiles []*plot.Plot) [][]*plot.Plot {
	rows := [][]*plot.Plot{make([]*plot.Plot, 2), make([]*plot.Plot, 2)}
	for i, p := range tiles {
		if i >= 4 {
			break
		}
		rows[i/2][i%2] = p
	}
	return rows
}
