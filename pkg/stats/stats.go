package stats

import (
	"math"
	"sort"

	moremath "github.com/aclements/go-moremath/stats"
	mstats "github.com/montanaflynn/stats"
)

// Summary describes one dataset. Every field is zero for an empty input.
type Summary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	P95    float64 `json:"p95"`
	// 95% confidence interval of the mean, only set with more than one value.
	CILow  float64 `json:"ciLow"`
	CIHigh float64 `json:"ciHigh"`
}

// Calculate accepts array of floats and summarizes it. Nothing is cached: callers get a
// fresh Summary computed from vals every time.
func Calculate(vals []float64) Summary {
	if len(vals) == 0 {
		return Summary{}
	}
	s := Summary{Count: len(vals)}
	s.Min, _ = mstats.Min(vals)
	s.Max, _ = mstats.Max(vals)
	s.Mean, _ = Average(vals)
	s.Median, _ = mstats.Median(vals)
	s.P90 = Percentile(vals, 90)
	s.P95 = Percentile(vals, 95)
	if len(vals) > 1 {
		_, s.CILow, s.CIHigh = ConfidenceInterval(vals, 0.95)
	}
	return s
}

// Average accepts array of floats to calculate average
func Average(vals []float64) (float64, error) {
	return mstats.Mean(vals)
}

// ConfidenceInterval returns the mean and the bounds of its ci confidence interval.
func ConfidenceInterval(vals []float64, ci float64) (float64, float64, float64) {
	return moremath.MeanCI(vals, ci)
}

// Percentile accepts array of floats and the desired %tile to calculate. Values between
// order statistics are linearly interpolated: rank = p/100 * (n-1).
func Percentile(vals []float64, ptile float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	return percentileSorted(sorted, ptile)
}

// Percentiles computes several percentiles with a single sort.
func Percentiles(vals []float64, ptiles ...float64) []float64 {
	out := make([]float64, len(ptiles))
	if len(vals) == 0 {
		return out
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	for i, p := range ptiles {
		out[i] = percentileSorted(sorted, p)
	}
	return out
}

func percentileSorted(sorted []float64, ptile float64) float64 {
	ptile = math.Max(0, math.Min(100, ptile))
	rank := ptile / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (rank-float64(lo))*(sorted[hi]-sorted[lo])
}

// IQR returns the interquartile range, p75 - p25.
func IQR(vals []float64) float64 {
	q := Percentiles(vals, 25, 75)
	return q[1] - q[0]
}
