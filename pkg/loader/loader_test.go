package loader

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerds-ufes/polka-perf/pkg/logging"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadThreeRowsInOrder(t *testing.T) {
	path := writeCSV(t, "24h-ip.csv", "Request Number,UTC Arrival Time,HTTP Request Time\n"+
		`1,"Jun 11, 2025 18:07:49.728608000 UTC",0.210` + "\n" +
		`2,"Jun 11, 2025 18:07:50.001000000 UTC",0.105` + "\n" +
		`3,"Jun 11, 2025 18:07:51.500000000 UTC",0.330` + "\n")

	d, err := Load(path, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 3, d.Len())
	assert.Equal(t, "HTTP Request Time", d.Column)
	assert.Equal(t, []float64{0.210, 0.105, 0.330}, d.Values())
}

func TestLoadNoRecognisedColumn(t *testing.T) {
	path := writeCSV(t, "odd.csv", "foo,bar\n1,2\n3,4\n")

	var buf bytes.Buffer
	logging.SetOutput(&buf)
	defer logging.SetOutput(os.Stdout)

	d, err := Load(path, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, d.Empty())
	assert.Contains(t, buf.String(), "No timing data found")
	assert.Contains(t, buf.String(), "foo")
}

func TestLoadIndexPastHeader(t *testing.T) {
	path := writeCSV(t, "route-swap.csv", "n,seconds\n1,0.2\n2,0.3\n")

	var buf bytes.Buffer
	logging.SetOutput(&buf)
	defer logging.SetOutput(os.Stdout)

	d, err := Load(path, Options{Index: 5, TimeIndex: -1})
	require.NoError(t, err)
	assert.True(t, d.Empty())
	assert.Contains(t, buf.String(), "Column index 5 out of range")
	assert.Contains(t, buf.String(), "seconds")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"), DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadSkipsBadRows(t *testing.T) {
	path := writeCSV(t, "stress.csv", "time,avg\n1,0.5\n2,\n3,abc\n4,NaN\n5\n6,0.7\n")

	d, err := Load(path, DefaultOptions())
	require.NoError(t, err)
	// "time" outranks "avg" in the priority list
	assert.Equal(t, "time", d.Column)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, d.Values())

	d, err = Load(path, Options{Columns: []string{"avg"}, Index: -1, TimeIndex: -1})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.7}, d.Values())
}

func TestLoadPriorityOrder(t *testing.T) {
	path := writeCSV(t, "both.csv", "latency,HTTP Request Time\n9,0.1\n")
	d, err := Load(path, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1}, d.Values())
}

func TestLoadPositionalScaled(t *testing.T) {
	path := writeCSV(t, "route-swap.csv", "n,seconds\n1,0.2\n2,x\n3,0.25\n")
	d, err := Load(path, Options{Index: 1, TimeIndex: -1, Scale: 1000, Label: "Route Swap"})
	require.NoError(t, err)
	require.Equal(t, 2, d.Len())
	assert.InDelta(t, 200, d.Samples[0].Value, 1e-9)
	assert.InDelta(t, 250, d.Samples[1].Value, 1e-9)
	assert.Equal(t, "Route Swap", d.Samples[1].Label)
	assert.Equal(t, "seconds", d.Column)
}

func TestLoadRequireTime(t *testing.T) {
	content := "Request Number,UTC Arrival Time,HTTP Request Time\n" +
		`1,"Jun 11, 2025 18:07:49.728608000 UTC",0.2` + "\n" +
		`2,garbage,0.3` + "\n" +
		`3,"Jun 12, 2025 02:00:00.000000000 UTC",0.4` + "\n"
	opts := Options{
		Columns:     []string{"HTTP Request Time"},
		Index:       -1,
		TimeColumn:  "UTC Arrival Time",
		TimeIndex:   -1,
		RequireTime: true,
	}
	d, err := Read(strings.NewReader(content), "inline", opts)
	require.NoError(t, err)
	require.Equal(t, 2, d.Len())
	assert.Equal(t, time.Date(2025, 6, 11, 18, 7, 49, 728608000, time.UTC), d.Samples[0].Timestamp)
	assert.Equal(t, 2, d.Samples[1].Timestamp.Hour())
}

func TestLoadEmptyFile(t *testing.T) {
	d, err := Read(strings.NewReader(""), "empty", DefaultOptions())
	require.NoError(t, err)
	assert.True(t, d.Empty())
}

func TestParseTimestamp(t *testing.T) {
	for _, in := range []string{
		"Jun 11, 2025 18:07:49.728608000 UTC",
		`"Jun 11, 2025 18:07:49.728608000 UTC"`,
		"Jun 11,  2025 18:07:49.728608 UTC",
		"2025-06-11T18:07:49.728608Z",
		"2025-06-11 18:07:49.728608",
	} {
		ts, err := ParseTimestamp(in)
		require.NoError(t, err, in)
		assert.Equal(t, 18, ts.Hour(), in)
		assert.Equal(t, 728608000, ts.Nanosecond(), in)
	}
	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestLoadSeries(t *testing.T) {
	path := writeCSV(t, "stress-ip.csv", "time,avg,min\n0,1.5,1\n60,2.5,2\nx,3,3\n1260,0.2,0\n")
	s, err := LoadSeries(path, "time", "avg", "IP: 17 Hops")
	require.NoError(t, err)
	require.Len(t, s.Points, 3)
	assert.Equal(t, 60.0, s.Points[1].X)
	assert.Equal(t, 2.5, s.Points[1].Y)

	s, err = LoadSeries(path, "time", "throughput", "IP")
	require.NoError(t, err)
	assert.Empty(t, s.Points)
}
