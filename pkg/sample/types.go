package sample

import "time"

// Sample is a single measured duration, with the capture time when the source had one.
type Sample struct {
	Value     float64
	Timestamp time.Time
	Label     string
}

// HasTime reports whether the sample carries a capture timestamp.
func (s Sample) HasTime() bool {
	return !s.Timestamp.IsZero()
}

// Dataset is the ordered set of samples read from one file.
type Dataset struct {
	Label   string
	Source  string
	Column  string
	Samples []Sample
}

// Len returns the number of samples.
func (d Dataset) Len() int {
	return len(d.Samples)
}

// Empty reports whether nothing usable was loaded.
func (d Dataset) Empty() bool {
	return len(d.Samples) == 0
}

// Values returns the sample values in file order.
func (d Dataset) Values() []float64 {
	vals := make([]float64, 0, len(d.Samples))
	for _, s := range d.Samples {
		vals = append(vals, s.Value)
	}
	return vals
}

// Scale returns a copy with every value multiplied by factor, e.g. 1000 for s -> ms.
func (d Dataset) Scale(factor float64) Dataset {
	out := d
	out.Samples = make([]Sample, len(d.Samples))
	for i, s := range d.Samples {
		s.Value *= factor
		out.Samples[i] = s
	}
	return out
}

// Filter returns a copy holding only the samples keep accepts.
func (d Dataset) Filter(keep func(Sample) bool) Dataset {
	out := d
	out.Samples = nil
	for _, s := range d.Samples {
		if keep(s) {
			out.Samples = append(out.Samples, s)
		}
	}
	return out
}

// Merge concatenates the values of every dataset, in order.
func Merge(sets ...Dataset) []float64 {
	var vals []float64
	for _, d := range sets {
		vals = append(vals, d.Values()...)
	}
	return vals
}

// Point is one (x, y) pair of a two-column series, e.g. elapsed seconds and throughput.
type Point struct {
	X float64
	Y float64
}

// Series is the ordered set of points read from one file.
type Series struct {
	Label  string
	Source string
	Points []Point
}

// Record is one row extracted from a capture: the response frame time and its http.time.
// HTTPTime is empty when the frame had no http.time field.
type Record struct {
	Number   int
	Arrival  string
	HTTPTime string
}
