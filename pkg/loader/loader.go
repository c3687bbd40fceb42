// Package loader reads measurement CSV files into datasets. Bad rows are skipped rather
// than failing the file, and a file without any recognised column yields an empty dataset.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/nerds-ufes/polka-perf/pkg/logging"
	"github.com/nerds-ufes/polka-perf/pkg/sample"
)

// DefaultColumns is the value column priority used when Options.Columns is empty.
var DefaultColumns = []string{"HTTP Request Time", "time", "avg", "latency", "duration"}

// Options selects the columns to read. Indexes are positional fallbacks used when no
// header name matches; -1 disables them.
type Options struct {
	Label      string
	Columns    []string
	Index      int
	TimeColumn string
	TimeIndex  int
	// RequireTime drops rows whose timestamp is missing or unparsable.
	RequireTime bool
	// Scale multiplies every value, 1000 turns seconds into milliseconds. Zero means 1.
	Scale float64
}

// DefaultOptions reads the first priority column, without timestamps.
func DefaultOptions() Options {
	return Options{Columns: DefaultColumns, Index: -1, TimeIndex: -1}
}

// Load opens path and reads it with opts. A missing file is returned as an error wrapping
// os.ErrNotExist so callers can warn and move on.
func Load(path string, opts Options) (sample.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return sample.Dataset{Label: opts.Label, Source: path}, fmt.Errorf("unable to open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, path, opts)
}

// Read parses CSV from r. source only labels the dataset and log lines.
func Read(r io.Reader, source string, opts Options) (sample.Dataset, error) {
	d := sample.Dataset{Label: opts.Label, Source: source}
	reader := newReader(r)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		log.WithFile(source).Warn("File is empty")
		return d, nil
	}
	if err != nil {
		return d, fmt.Errorf("unable to read header of %s: %w", source, err)
	}
	header = cleanHeader(header)

	columns := opts.Columns
	if len(columns) == 0 && opts.Index < 0 {
		columns = DefaultColumns
	}
	valueIdx, name := pickColumn(header, columns, opts.Index)
	if valueIdx < 0 {
		if opts.Index >= len(header) {
			log.WithFile(source).Warnf("Column index %d out of range. Available columns: %v", opts.Index, header)
		} else {
			log.WithFile(source).Warnf("No timing data found. Available columns: %v", header)
		}
		return d, nil
	}
	d.Column = name
	timeIdx, _ := pickColumn(header, nonEmpty(opts.TimeColumn), opts.TimeIndex)

	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}
	skipped := 0
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			log.WithFile(source).Debugf("Skipping line %d: %v", line, err)
			skipped++
			continue
		}
		if err != nil {
			return d, fmt.Errorf("reading %s: %w", source, err)
		}
		s, ok := parseRow(row, valueIdx, timeIdx, opts.RequireTime)
		if !ok {
			log.WithFile(source).Debugf("Skipping line %d: %v", line, row)
			skipped++
			continue
		}
		s.Value *= scale
		s.Label = opts.Label
		d.Samples = append(d.Samples, s)
	}
	if skipped > 0 {
		log.WithFile(source).Debugf("Skipped %d unusable rows, kept %d", skipped, d.Len())
	}
	return d, nil
}

func parseRow(row []string, valueIdx, timeIdx int, requireTime bool) (sample.Sample, bool) {
	var s sample.Sample
	if valueIdx >= len(row) {
		return s, false
	}
	v, err := ParseValue(row[valueIdx])
	if err != nil {
		return s, false
	}
	s.Value = v
	if timeIdx >= 0 && timeIdx < len(row) {
		if ts, err := ParseTimestamp(row[timeIdx]); err == nil {
			s.Timestamp = ts
		}
	}
	if requireTime && !s.HasTime() {
		return s, false
	}
	return s, true
}

// ParseValue parses a numeric cell. Blank cells and NaN count as missing.
func ParseValue(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, fmt.Errorf("empty value")
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("value %q is not finite", cell)
	}
	return v, nil
}

// timestampLayouts are tried in order. The first is tshark's frame.time_utc; fractional
// seconds after the seconds field are accepted by every layout.
var timestampLayouts = []string{
	"Jan 2, 2006 15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"15:04:05",
}

// ParseTimestamp understands tshark's "Jun 11, 2025 18:07:49.728608000 UTC" and a few
// common alternatives. Times without a zone are read as UTC.
func ParseTimestamp(cell string) (time.Time, error) {
	s := strings.Trim(strings.TrimSpace(cell), `"`)
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimSuffix(s, " UTC")
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", cell)
}

// LoadSeries reads two named numeric columns as (x, y) points, e.g. the stress test's
// elapsed "time" and average throughput "avg".
func LoadSeries(path, xCol, yCol, label string) (sample.Series, error) {
	series := sample.Series{Label: label, Source: path}
	f, err := os.Open(path)
	if err != nil {
		return series, fmt.Errorf("unable to open %s: %w", path, err)
	}
	defer f.Close()

	reader := newReader(f)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		log.WithFile(path).Warn("File is empty")
		return series, nil
	}
	if err != nil {
		return series, fmt.Errorf("unable to read header of %s: %w", path, err)
	}
	header = cleanHeader(header)
	xi, _ := pickColumn(header, []string{xCol}, -1)
	yi, _ := pickColumn(header, []string{yCol}, -1)
	if xi < 0 || yi < 0 {
		log.WithFile(path).Warnf("Columns %q and %q not both present. Available columns: %v", xCol, yCol, header)
		return series, nil
	}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			continue
		}
		if err != nil {
			return series, fmt.Errorf("reading %s: %w", path, err)
		}
		if xi >= len(row) || yi >= len(row) {
			continue
		}
		x, errX := ParseValue(row[xi])
		y, errY := ParseValue(row[yi])
		if errX != nil || errY != nil {
			continue
		}
		series.Points = append(series.Points, sample.Point{X: x, Y: y})
	}
	return series, nil
}

func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	return reader
}

func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return out
}

// pickColumn returns the index and name of the first wanted header present, falling back
// to index when none is and the header is wide enough.
func pickColumn(header, wanted []string, index int) (int, string) {
	for _, w := range wanted {
		for i, h := range header {
			if h == w {
				return i, h
			}
		}
	}
	if index >= 0 && index < len(header) {
		return index, header[index]
	}
	return -1, ""
}

func nonEmpty(name string) []string {
	if name == "" {
		return nil
	}
	return []string{name}
}
