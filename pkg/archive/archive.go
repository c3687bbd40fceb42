package archive

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cloud-bulldozer/go-commons/indexers"

	"github.com/nerds-ufes/polka-perf/pkg/logging"
	result "github.com/nerds-ufes/polka-perf/pkg/results"
	"github.com/nerds-ufes/polka-perf/pkg/sample"
)

const durationMetric = "s"

// TimingHeader is the header of every extracted timing CSV.
var TimingHeader = []string{"Request Number", "UTC Arrival Time", "HTTP Request Time"}

// Doc struct of the JSON document to be indexed
type Doc struct {
	UUID       string    `json:"uuid"`
	Timestamp  time.Time `json:"timestamp"`
	Preset     string    `json:"preset,omitempty"`
	File       string    `json:"file"`
	Label      string    `json:"label"`
	Column     string    `json:"column"`
	Metric     string    `json:"metric"`
	Samples    int       `json:"samples"`
	Min        float64   `json:"min"`
	Max        float64   `json:"max"`
	Mean       float64   `json:"mean"`
	Median     float64   `json:"median"`
	P90        float64   `json:"p90"`
	P95        float64   `json:"p95"`
	Confidence []float64 `json:"confidence"`
}

// Connect returns a client connected to the desired cluster.
func Connect(url, index string, skip bool) (*indexers.Indexer, error) {
	indexerConfig := indexers.IndexerConfig{
		Type:               "opensearch",
		Servers:            []string{url},
		Index:              index,
		InsecureSkipVerify: skip,
	}
	logging.Infof("📁 Creating indexer: %s", indexerConfig.Type)
	indexer, err := indexers.NewIndexer(indexerConfig)
	if err != nil {
		logging.Errorf("%v indexer: %v", indexerConfig.Type, err.Error())
		return nil, fmt.Errorf("failure while connecting to OpenSearch: %w", err)
	}
	logging.Infof("Connected to : %s ", url)
	return indexer, nil
}

// Index ships docs through the indexer and logs its summary.
func Index(client *indexers.Indexer, docs []interface{}) error {
	msg, err := (*client).Index(docs, indexers.IndexingOpts{})
	if err != nil {
		return fmt.Errorf("indexing %d documents: %w", len(docs), err)
	}
	logging.Info(msg)
	return nil
}

// BuildDocs returns one document per file that produced data, or an error when there is
// none.
func BuildDocs(sr result.ScenarioResults, uuid string) ([]interface{}, error) {
	now := time.Now().UTC()
	var docs []interface{}
	for _, r := range sr.WithData() {
		s := r.Summary
		docs = append(docs, Doc{
			UUID:       uuid,
			Timestamp:  now,
			Preset:     sr.Preset,
			File:       r.File,
			Label:      r.Label,
			Column:     r.Column,
			Metric:     durationMetric,
			Samples:    s.Count,
			Min:        s.Min,
			Max:        s.Max,
			Mean:       s.Mean,
			Median:     s.Median,
			P90:        s.P90,
			P95:        s.P95,
			Confidence: []float64{s.CILow, s.CIHigh},
		})
	}
	if len(docs) < 1 {
		return nil, fmt.Errorf("no result documents")
	}
	return docs, nil
}

// WriteJSONResult writes the result documents as indented JSON to w.
func WriteJSONResult(w io.Writer, r result.ScenarioResults, uuid string) error {
	docs, err := BuildDocs(r, uuid)
	if err != nil {
		return err
	}
	p, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(p))
	return err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// WriteCSVResult will write the summaries to metrics-result-<unix>.csv under dir and
// return the file name.
func WriteCSVResult(dir string, r result.ScenarioResults) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	fn := filepath.Join(dir, fmt.Sprintf("metrics-result-%d.csv", time.Now().Unix()))
	fp, err := os.Create(fn)
	if err != nil {
		return "", fmt.Errorf("failed to open archive file: %w", err)
	}
	defer fp.Close()
	archive := csv.NewWriter(fp)
	header := []string{
		"File",
		"Column",
		"# of Samples",
		"Min (s)",
		"Max (s)",
		"Avg (s)",
		"Median (s)",
		"P90 (s)",
		"P95 (s)",
		"Confidence metric - low",
		"Confidence metric - high",
	}
	if err := archive.Write(header); err != nil {
		return "", fmt.Errorf("failed to write result archive to file")
	}
	for _, row := range r.Results {
		s := row.Summary
		if err := archive.Write([]string{
			row.File,
			row.Column,
			strconv.Itoa(s.Count),
			formatFloat(s.Min),
			formatFloat(s.Max),
			formatFloat(s.Mean),
			formatFloat(s.Median),
			formatFloat(s.P90),
			formatFloat(s.P95),
			formatFloat(s.CILow),
			formatFloat(s.CIHigh),
		}); err != nil {
			return "", fmt.Errorf("failed to write result archive to file")
		}
	}
	archive.Flush()
	return fn, archive.Error()
}

// WriteTimings writes extracted capture records as a timing CSV.
func WriteTimings(w io.Writer, records []sample.Record) error {
	archive := csv.NewWriter(w)
	if err := archive.Write(TimingHeader); err != nil {
		return fmt.Errorf("failed to write timing header: %w", err)
	}
	for _, rec := range records {
		if err := archive.Write([]string{strconv.Itoa(rec.Number), rec.Arrival, rec.HTTPTime}); err != nil {
			return fmt.Errorf("failed to write timing row %d: %w", rec.Number, err)
		}
	}
	archive.Flush()
	return archive.Error()
}

// WriteTimingCSV creates fn, and its parent directories, holding records.
func WriteTimingCSV(fn string, records []sample.Record) error {
	if err := os.MkdirAll(filepath.Dir(fn), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(fn), err)
	}
	fp, err := os.Create(fn)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", fn, err)
	}
	defer fp.Close()
	if err := WriteTimings(fp, records); err != nil {
		return err
	}
	logging.WithFile(fn).Infof("Wrote %d records", len(records))
	return nil
}
