// Package histogram picks a shared bin count for datasets that are plotted side by side.
package histogram

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/nerds-ufes/polka-perf/pkg/stats"
)

const (
	// DefaultMinBins is the floor applied to the Freedman–Diaconis count.
	DefaultMinBins = 10
	// DefaultFallbackBins is used when the bin width degenerates, e.g. a zero IQR.
	DefaultFallbackBins = 100
)

// Rule holds the tuning constants of the Freedman–Diaconis count.
type Rule struct {
	MinBins      int
	FallbackBins int
}

// DefaultRule returns the 10/100 rule.
func DefaultRule() Rule {
	return Rule{MinBins: DefaultMinBins, FallbackBins: DefaultFallbackBins}
}

// Bins applies the Freedman–Diaconis rule: width = 2*IQR / n^(1/3) and
// count = max(MinBins, floor((max-min)/width)).
func (r Rule) Bins(vals []float64) int {
	if len(vals) == 0 {
		return r.FallbackBins
	}
	width := 2 * stats.IQR(vals) / math.Cbrt(float64(len(vals)))
	if width <= 0 || math.IsNaN(width) {
		return r.FallbackBins
	}
	count := int(math.Floor((floats.Max(vals) - floats.Min(vals)) / width))
	if count < r.MinBins {
		return r.MinBins
	}
	return count
}

// FreedmanDiaconis is Bins with the default constants.
func FreedmanDiaconis(vals []float64) int {
	return DefaultRule().Bins(vals)
}

// Binning is the bin layout derived from the merged samples of every compared dataset.
type Binning struct {
	Count int
	Min   float64
	Max   float64
	Edges []float64
}

// NewBinning computes the shared count and uniform edges over the merged range.
func NewBinning(merged []float64, r Rule) Binning {
	b := Binning{Count: r.Bins(merged)}
	if len(merged) == 0 {
		return b
	}
	b.Min = floats.Min(merged)
	b.Max = floats.Max(merged)
	b.Edges = Edges(b.Min, b.Max, b.Count)
	return b
}

// Edges returns count+1 evenly spaced edges from lo to hi. A zero-width range is widened
// by 0.5 on each side so every value still falls in a bin.
func Edges(lo, hi float64, count int) []float64 {
	if count < 1 {
		return nil
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	edges := make([]float64, count+1)
	floats.Span(edges, lo, hi)
	return edges
}

// Bin is one histogram bar.
type Bin struct {
	Min     float64
	Max     float64
	Count   int
	Density float64
}

// Density bins vals over their own range using count bins and normalizes each bin so the
// histogram integrates to one: density = count / (n * width).
func Density(vals []float64, count int) []Bin {
	if len(vals) == 0 || count < 1 {
		return nil
	}
	edges := Edges(floats.Min(vals), floats.Max(vals), count)
	bins := make([]Bin, count)
	for i := range bins {
		bins[i].Min = edges[i]
		bins[i].Max = edges[i+1]
	}
	lo, hi := edges[0], edges[count]
	width := (hi - lo) / float64(count)
	for _, v := range vals {
		i := int((v - lo) / width)
		if i >= count {
			// the maximum belongs to the last, closed bin
			i = count - 1
		}
		if i < 0 {
			i = 0
		}
		bins[i].Count++
	}
	n := float64(len(vals))
	for i := range bins {
		bins[i].Density = float64(bins[i].Count) / (n * (bins[i].Max - bins[i].Min))
	}
	return bins
}
