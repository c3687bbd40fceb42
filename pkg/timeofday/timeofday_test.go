package timeofday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerds-ufes/polka-perf/pkg/sample"
)

func TestParseClock(t *testing.T) {
	h, err := ParseClock("14:30:00")
	require.NoError(t, err)
	assert.Equal(t, 14.5, h)

	_, err = ParseClock("25:99")
	assert.Error(t, err)
}

func TestHoursFraction(t *testing.T) {
	ts := time.Date(2025, time.June, 11, 18, 7, 49, 728608000, time.UTC)
	want := 18 + 7.0/60 + 49.0/3600 + 0.728608/3600
	assert.InDelta(t, want, Hours(ts), 1e-12)
}

// Samples from two days overlay on one axis and come back sorted.
func TestNormalizeAcrossDays(t *testing.T) {
	d := sample.Dataset{Samples: []sample.Sample{
		{Value: 1, Timestamp: time.Date(2025, 6, 11, 23, 0, 0, 0, time.UTC)},
		{Value: 2, Timestamp: time.Date(2025, 6, 12, 1, 30, 0, 0, time.UTC)},
		{Value: 3},
		{Value: 4, Timestamp: time.Date(2025, 6, 12, 0, 15, 0, 0, time.UTC)},
		{Value: 5, Timestamp: time.Date(2025, 6, 11, 23, 0, 0, 0, time.UTC)},
	}}
	pts := Normalize(d)
	require.Len(t, pts, 4)
	for i := 1; i < len(pts); i++ {
		assert.LessOrEqual(t, pts[i-1].Hour, pts[i].Hour)
	}
	values := make([]float64, len(pts))
	for i, p := range pts {
		values[i] = p.Value
	}
	// ties keep file order
	assert.Equal(t, []float64{4, 2, 1, 5}, values)
}
