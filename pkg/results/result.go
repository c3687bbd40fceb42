package result

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nerds-ufes/polka-perf/pkg/logging"
	"github.com/nerds-ufes/polka-perf/pkg/sample"
	"github.com/nerds-ufes/polka-perf/pkg/stats"
)

// Specify Language specific case wrapper as global variable
var caser = cases.Title(language.English)

// printer groups thousands in packet counts.
var printer = message.NewPrinter(language.English)

// Data describes the result of one input file.
type Data struct {
	File    string
	Label   string
	Column  string
	Summary stats.Summary
}

// FromDataset summarizes a loaded dataset. The file name becomes the label when the
// dataset has none.
func FromDataset(d sample.Dataset) Data {
	label := d.Label
	if label == "" {
		label = filepath.Base(d.Source)
	}
	return Data{
		File:    d.Source,
		Label:   label,
		Column:  d.Column,
		Summary: stats.Calculate(d.Values()),
	}
}

// ScenarioResults holds every file of one metrics run.
type ScenarioResults struct {
	Preset  string
	Results []Data
}

// WithData returns the results that produced at least one sample.
func (s ScenarioResults) WithData() []Data {
	var out []Data
	for _, r := range s.Results {
		if r.Summary.Count > 0 {
			out = append(out, r)
		}
	}
	return out
}

// Method to init common table structure.
func initTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	return table
}

func rule(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 80))
}

// ShowBanner prints the report heading.
func ShowBanner(w io.Writer, preset string) {
	rule(w)
	fmt.Fprintln(w, "NETWORK PERFORMANCE METRICS EXTRACTION")
	if preset != "" {
		fmt.Fprintf(w, "Preset: %s\n", caser.String(preset))
	}
	rule(w)
	fmt.Fprintln(w)
}

// ShowFileResult prints the statistics block of one file, durations in seconds.
func ShowFileResult(w io.Writer, r Data) {
	name := filepath.Base(r.File)
	if r.Summary.Count == 0 {
		fmt.Fprintf(w, "No data extracted from: %s\n\n", name)
		return
	}
	s := r.Summary
	fmt.Fprintf(w, "FILE: %s\n", name)
	fmt.Fprintln(w, strings.Repeat("-", 50))
	printer.Fprintf(w, "Number of packets/requests: %d\n", s.Count)
	fmt.Fprintf(w, "Minimum duration (s):       %.6f\n", s.Min)
	fmt.Fprintf(w, "Maximum duration (s):       %.6f\n", s.Max)
	fmt.Fprintf(w, "Average duration (s):       %.6f\n", s.Mean)
	fmt.Fprintf(w, "Median duration (s):        %.6f\n", s.Median)
	fmt.Fprintf(w, "90th percentile (s):        %.6f\n", s.P90)
	fmt.Fprintf(w, "95th percentile (s):        %.6f\n", s.P95)
	fmt.Fprintln(w)
}

// ShowComparison renders every file that produced data side by side. Nothing is printed
// for fewer than two such files.
func ShowComparison(w io.Writer, s ScenarioResults) {
	rows := s.WithData()
	if len(rows) < 2 {
		logging.Debugf("Skipping comparison, %d file(s) with data", len(rows))
		return
	}
	rule(w)
	fmt.Fprintln(w, "COMPARISON SUMMARY")
	rule(w)
	fmt.Fprintln(w)
	table := initTable(w, []string{"File", "Packets", "Min (s)", "Max (s)", "Avg (s)", "Median (s)", "P90 (s)", "P95 (s)", "95% Confidence Interval (s)"})
	for _, r := range rows {
		st := r.Summary
		ci := "-"
		if st.Count > 1 {
			ci = fmt.Sprintf("%.6f-%.6f", st.CILow, st.CIHigh)
		}
		table.Append([]string{
			filepath.Base(r.File),
			printer.Sprintf("%d", st.Count),
			fmt.Sprintf("%.6f", st.Min),
			fmt.Sprintf("%.6f", st.Max),
			fmt.Sprintf("%.6f", st.Mean),
			fmt.Sprintf("%.6f", st.Median),
			fmt.Sprintf("%.6f", st.P90),
			fmt.Sprintf("%.6f", st.P95),
			ci,
		})
	}
	table.Render()
	fmt.Fprintln(w)
}

// ShowScenario prints the banner, each file block and the comparison table.
func ShowScenario(w io.Writer, s ScenarioResults) {
	ShowBanner(w, s.Preset)
	for _, r := range s.Results {
		ShowFileResult(w, r)
	}
	ShowComparison(w, s)
}

// ShowPathSummary renders a compact per-path table, used by the chart commands to echo
// what they plotted. unit labels the value columns, e.g. "ms".
func ShowPathSummary(w io.Writer, title string, sets []sample.Dataset, unit string) {
	logging.Debugf("Rendering %s summary", title)
	table := initTable(w, []string{"Result Type", "Path", "Samples", "Median", "P90", "P95", "Max"})
	for _, d := range sets {
		st := stats.Calculate(d.Values())
		table.Append([]string{
			fmt.Sprintf("📊 %s", caser.String(title)),
			d.Label,
			printer.Sprintf("%d", st.Count),
			fmt.Sprintf("%.3f (%s)", st.Median, unit),
			fmt.Sprintf("%.3f (%s)", st.P90, unit),
			fmt.Sprintf("%.3f (%s)", st.P95, unit),
			fmt.Sprintf("%.3f (%s)", st.Max, unit),
		})
	}
	table.Render()
}
