package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/common/model"
)

// TestParseConf Test for success. Ensure we successfully parse a good config file
func TestParseConf(t *testing.T) {
	cfg, err := ParseConf("testdata/test-config.yml")
	if err != nil {
		t.Fatalf("Parsing config file failed: %v", err)
	}
	if cfg.DataDir != "/srv/vix-mia" {
		t.Fatalf("unexpected dataDir %q", cfg.DataDir)
	}
	if len(cfg.Columns.Value) != 2 || cfg.Columns.ValueIndex != 2 {
		t.Fatalf("unexpected columns %+v", cfg.Columns)
	}
	if cfg.Histogram.MinBins != 20 || cfg.Histogram.FallbackBins != 100 {
		t.Fatalf("histogram settings not merged with defaults: %+v", cfg.Histogram)
	}
	if cfg.Stress.Window != model.Duration(15*time.Minute) {
		t.Fatalf("unexpected stress window %s", cfg.Stress.Window)
	}
	if !cfg.Output.HTML || cfg.Output.Dir != "plots" || cfg.Output.DPI != 300 {
		t.Fatalf("unexpected output %+v", cfg.Output)
	}
	// built-in presets survive next to the new one
	if _, ok := cfg.Presets["24h"]; !ok {
		t.Fatal("24h preset lost while merging")
	}
	files, err := cfg.Preset("route")
	if err != nil {
		t.Fatal(err)
	}
	if files[0] != filepath.Join("/srv/vix-mia", "captures/route-swap.csv") {
		t.Fatalf("preset file not resolved against dataDir: %v", files)
	}
}

// TestDefaultConf Ensure the built-in experiment settings are valid
func TestDefaultConf(t *testing.T) {
	ok, err := validConfig(Default())
	if !ok {
		t.Fatalf("default config is invalid: %v", err)
	}
	for _, name := range []string{"24h", "phase0", "stress"} {
		files, err := Default().Preset(name)
		if err != nil {
			t.Fatal(err)
		}
		if len(files) != 4 {
			t.Fatalf("preset %s: expected 4 files, got %d", name, len(files))
		}
	}
}

// TestUnknownPreset Testing for failure. Presets outside the configured set are rejected
func TestUnknownPreset(t *testing.T) {
	if _, err := Default().Preset("weekly"); err == nil {
		t.Fatal("Unknown preset should have failed but succeeded")
	}
}

// TestBadWindowParseConf Testing for failure. A zero stress window is rejected
func TestBadWindowParseConf(t *testing.T) {
	if _, err := ParseConf("testdata/test-bad-window-config.yml"); err == nil {
		t.Fatal("Parsing config file should have failed but succeeded")
	}
}

// TestBadPathParseConf Testing for failure. User leaves out a path file
func TestBadPathParseConf(t *testing.T) {
	if _, err := ParseConf("testdata/test-bad-path-config.yml"); err == nil {
		t.Fatal("Parsing config file should have failed but succeeded")
	}
}

// TestBadYAMLParseConf Testing for failure. Broken YAML
func TestBadYAMLParseConf(t *testing.T) {
	if _, err := ParseConf("testdata/test-bad-yaml-config.yml"); err == nil {
		t.Fatal("Parsing config file should have failed but succeeded")
	}
}

// TestLoadMissingFile Ensure a missing config falls back to the defaults
func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "polka-perf.yml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output.Dir != "result-plots" {
		t.Fatalf("expected default output dir, got %q", cfg.Output.Dir)
	}
	if got := cfg.OutputPath("stress.png"); got != filepath.Join("result-plots", "stress.png") {
		t.Fatalf("unexpected output path %q", got)
	}
}
