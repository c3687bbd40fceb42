// Package timeofday folds capture timestamps onto a single 24-hour axis so runs recorded
// on different calendar days can be overlaid.
package timeofday

import (
	"fmt"
	"sort"
	"time"

	"github.com/nerds-ufes/polka-perf/pkg/sample"
)

// Hours returns the fractional hour of day of t, in [0, 24).
func Hours(t time.Time) float64 {
	return float64(t.Hour()) +
		float64(t.Minute())/60 +
		float64(t.Second())/3600 +
		float64(t.Nanosecond())/3.6e12
}

// ParseClock converts a bare "15:04:05" (optionally with fractional seconds) to hours.
func ParseClock(clock string) (float64, error) {
	t, err := time.Parse("15:04:05", clock)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", clock, err)
	}
	return Hours(t), nil
}

// Point pairs an hour of day with the measured value.
type Point struct {
	Hour  float64
	Value float64
}

// Normalize maps every timestamped sample of d to its hour of day and sorts the result by
// hour. Samples without a timestamp are dropped. Equal hours keep file order.
func Normalize(d sample.Dataset) []Point {
	pts := make([]Point, 0, d.Len())
	for _, s := range d.Samples {
		if !s.HasTime() {
			continue
		}
		pts = append(pts, Point{Hour: Hours(s.Timestamp), Value: s.Value})
	}
	sort.SliceStable(pts, func(i, j int) bool {
		return pts[i].Hour < pts[j].Hour
	})
	return pts
}
