package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/prometheus/common/model"
	"gopkg.in/yaml.v3"

	log "github.com/nerds-ufes/polka-perf/pkg/logging"
)

// Path describes one network path dataset: its legend label, source CSV and plot color.
type Path struct {
	Label string `yaml:"label"`
	File  string `yaml:"file"`
	Color string `yaml:"color,omitempty"`
}

// Columns drives the CSV loader. Value lists header names by priority; the first one
// present in a file wins. The indexes are positional fallbacks, -1 disables them.
type Columns struct {
	Value      []string `yaml:"value"`
	ValueIndex int      `yaml:"valueIndex"`
	Time       string   `yaml:"time"`
	TimeIndex  int      `yaml:"timeIndex"`
}

// Histogram describes the density histogram grid.
type Histogram struct {
	MinBins      int    `yaml:"minBins"`
	FallbackBins int    `yaml:"fallbackBins"`
	Paths        []Path `yaml:"paths"`
	Output       string `yaml:"output"`
}

// Timeline describes the 24-hour response time grid.
type Timeline struct {
	Paths  []Path  `yaml:"paths"`
	YMax   float64 `yaml:"yMax"`
	Output string  `yaml:"output"`
}

// Stress describes the throughput comparison of the stress test.
type Stress struct {
	Paths   []Path         `yaml:"paths"`
	XColumn string         `yaml:"xColumn"`
	YColumn string         `yaml:"yColumn"`
	Window  model.Duration `yaml:"window"`
	Output  string         `yaml:"output"`
}

// RouteSwap describes the single route swap series. Index is the value column.
type RouteSwap struct {
	Label  string `yaml:"label"`
	File   string `yaml:"file"`
	Index  int    `yaml:"index"`
	Color  string `yaml:"color,omitempty"`
	Output string `yaml:"output"`
}

// Remote is the capture host tshark runs on when extraction is not local.
type Remote struct {
	Host string `yaml:"host"`
	User string `yaml:"user"`
	Port uint   `yaml:"port"`
	Key  string `yaml:"key"`
}

// Output controls where and how charts are written.
type Output struct {
	Dir  string  `yaml:"dir"`
	DPI  float64 `yaml:"dpi"`
	HTML bool    `yaml:"html"`
}

// Config describes a whole experiment: where its CSV files live and how to chart them.
type Config struct {
	DataDir   string              `yaml:"dataDir"`
	Columns   Columns             `yaml:"columns"`
	Presets   map[string][]string `yaml:"presets"`
	Histogram Histogram           `yaml:"histogram"`
	Timeline  Timeline            `yaml:"timeline"`
	Stress    Stress              `yaml:"stress"`
	RouteSwap RouteSwap           `yaml:"routeSwap"`
	Remote    Remote              `yaml:"remote"`
	Output    Output              `yaml:"output"`
}

// DefaultPreset is used by the metrics command when neither files nor a preset are given.
const DefaultPreset = "24h"

// Default returns the file sets and chart settings of the VIX-MIA experiment.
func Default() Config {
	return Config{
		DataDir: ".",
		Columns: Columns{
			Value:      []string{"HTTP Request Time", "time", "avg", "latency", "duration"},
			ValueIndex: -1,
			Time:       "UTC Arrival Time",
			TimeIndex:  -1,
		},
		Presets: map[string][]string{
			"24h": {
				"data/24h/24h-bh-rj.csv",
				"data/24h/24h-bh.csv",
				"data/24h/24h-ip.csv",
				"data/24h/24h-rj.csv",
			},
			"phase0": {
				"data/phase0/times_raw_ip.csv",
				"data/phase0/times_raw_polka.csv",
				"data/phase0/times_treated_ip.csv",
				"data/phase0/times_treated_polka.csv",
			},
			"stress": {
				"data/stress/stress-ip.csv",
				"data/stress/stress-polka1.csv",
				"data/stress/stress-polka2.csv",
				"data/stress/stress-polka3.csv",
			},
		},
		Histogram: Histogram{
			MinBins:      10,
			FallbackBins: 100,
			Paths: []Path{
				{Label: "PolKA 1: VIT-RIO-SAO-MIA", File: "csv-data/24h-polka-1.csv", Color: "#ff7f0e"},
				{Label: "PolKA 2: VIT-BHZ-SAO-MIA", File: "csv-data/24h-polka-2.csv", Color: "#2ca02c"},
				{Label: "PolKA 3: VIT-BHZ-RIO-SAO-MIA", File: "csv-data/24h-polka-3.csv", Color: "#d62728"},
				{Label: "IP: 17 Hops", File: "csv-data/24h-ip.csv", Color: "#1f77b4"},
			},
			Output: "24h-histogram.png",
		},
		Timeline: Timeline{
			Paths: []Path{
				{Label: "PolKA 1: VIT-RIO-SAO-MIA", File: "data/24h/24h-rj.csv", Color: "#ff7f0e"},
				{Label: "PolKA 2: VIT-BHZ-SAO-MIA", File: "data/24h/24h-bh.csv", Color: "#2ca02c"},
				{Label: "PolKA 3: VIT-BHZ-RIO-SAO-MIA", File: "data/24h/24h-bh-rj.csv", Color: "#d62728"},
				{Label: "IP: 17 Hops", File: "data/24h/24h-ip.csv", Color: "#1f77b4"},
			},
			YMax:   1200,
			Output: "phase1/http-times-over-time-24h.png",
		},
		Stress: Stress{
			Paths: []Path{
				{Label: "IP: 17 Hops", File: "csv-data/stress-ip.csv", Color: "#1f77b4"},
				{Label: "PolKA 1: VIX-RIO-SAO-MIA", File: "csv-data/stress-polka-1.csv", Color: "#ff7f0e"},
				{Label: "PolKA 2: VIX-BHZ-SAO-MIA", File: "csv-data/stress-polka-2.csv", Color: "#2ca02c"},
				{Label: "PolKA 3: VIX-BHZ-RIO-SAO-MIA", File: "csv-data/stress-polka-3.csv", Color: "#d62728"},
			},
			XColumn: "time",
			YColumn: "avg",
			Window:  model.Duration(20 * time.Minute),
			Output:  "stress.png",
		},
		RouteSwap: RouteSwap{
			Label:  "Route Swap",
			File:   "csv-data/route-swap.csv",
			Index:  1,
			Color:  "#0000ff",
			Output: "route-swap.png",
		},
		Remote: Remote{
			Port: 22,
		},
		Output: Output{
			Dir: "result-plots",
			DPI: 300,
		},
	}
}

func validConfig(cfg Config) (bool, error) {
	if len(cfg.Columns.Value) == 0 && cfg.Columns.ValueIndex < 0 {
		return false, fmt.Errorf("columns: need at least one value column or a valueIndex")
	}
	if cfg.Histogram.MinBins < 1 {
		return false, fmt.Errorf("histogram: minBins must be > 0")
	}
	if cfg.Histogram.FallbackBins < 1 {
		return false, fmt.Errorf("histogram: fallbackBins must be > 0")
	}
	if cfg.Stress.Window <= 0 {
		return false, fmt.Errorf("stress: window must be > 0")
	}
	if cfg.Timeline.YMax <= 0 {
		return false, fmt.Errorf("timeline: yMax must be > 0")
	}
	if cfg.Output.DPI <= 0 {
		return false, fmt.Errorf("output: dpi must be > 0")
	}
	for section, paths := range map[string][]Path{
		"histogram": cfg.Histogram.Paths,
		"timeline":  cfg.Timeline.Paths,
		"stress":    cfg.Stress.Paths,
	} {
		for i, p := range paths {
			if p.Label == "" || p.File == "" {
				return false, fmt.Errorf("%s: path %d needs both label and file", section, i)
			}
		}
	}
	for name, files := range cfg.Presets {
		if len(files) == 0 {
			return false, fmt.Errorf("preset %q has no files", name)
		}
	}
	return true, nil
}

// ParseConf will read in the experiment configuration file. Keys left out of the file
// keep their Default value.
func ParseConf(fn string) (Config, error) {
	log.Infof("📒 Reading %s file. ", fn)
	cfg := Default()
	buf, err := os.ReadFile(fn)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return cfg, fmt.Errorf("in file %q: %v", fn, err)
	}
	if ok, err := validConfig(cfg); !ok {
		return cfg, fmt.Errorf("in file %q: %w", fn, err)
	}
	return cfg, nil
}

// Load returns the Default config when fn does not exist, and ParseConf otherwise.
func Load(fn string) (Config, error) {
	if _, err := os.Stat(fn); os.IsNotExist(err) {
		log.Debugf("No %s found, using built-in experiment settings", fn)
		return Default(), nil
	}
	return ParseConf(fn)
}

// Resolve joins a relative data file with DataDir.
func (c Config) Resolve(file string) string {
	if filepath.IsAbs(file) || c.DataDir == "" {
		return file
	}
	return filepath.Join(c.DataDir, file)
}

// OutputPath places a chart file under the output directory.
func (c Config) OutputPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Output.Dir, name)
}

// PresetNames lists the configured presets in a stable order.
func (c Config) PresetNames() []string {
	names := make([]string, 0, len(c.Presets))
	for n := range c.Presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Preset returns the resolved file set of the named preset.
func (c Config) Preset(name string) ([]string, error) {
	files, ok := c.Presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset: %s (choose from %v)", name, c.PresetNames())
	}
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, c.Resolve(f))
	}
	return out, nil
}

// Show Display the chart settings in use
func Show(c Config) {
	log.Debugf("🗒️  Data dir %s, output dir %s (%.0f dpi, html %t)", c.DataDir, c.Output.Dir, c.Output.DPI, c.Output.HTML)
	log.Debugf("🗒️  Value columns %v, time column %q", c.Columns.Value, c.Columns.Time)
	log.Debugf("🗒️  Histogram bins: min %d, fallback %d; stress window %s", c.Histogram.MinBins, c.Histogram.FallbackBins, c.Stress.Window)
}
