package drivers

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/nerds-ufes/polka-perf/pkg/config"
	log "github.com/nerds-ufes/polka-perf/pkg/logging"
	"github.com/nerds-ufes/polka-perf/pkg/sample"
)

// Driver extracts per-response HTTP timings from a packet capture.
type Driver interface {
	// Run produces tshark style output: one line per response holding the frame UTC
	// time and http.time, tab separated.
	Run(capture string) (bytes.Buffer, error)
	ParseResults(stdout *bytes.Buffer) ([]sample.Record, error)
}

type tshark struct {
	driverName string
	remote     *config.Remote
}

type native struct {
	driverName string
}

// NewDriver returns a Driver based on the given driverName and configuration.
// It currently supports the "tshark" and "native" drivers. With remote set, tshark
// runs on the capture host described by cfg.Remote.
// If the driverName is not recognized, it returns an error.
func NewDriver(driverName string, cfg config.Config, remote bool) (Driver, error) {
	switch driverName {
	case "tshark":
		d := &tshark{driverName: driverName}
		if remote {
			if cfg.Remote.Host == "" {
				return nil, fmt.Errorf("remote extraction needs remote.host in the config")
			}
			r := cfg.Remote
			d.remote = &r
		}
		return d, nil
	case "native":
		if remote {
			return nil, fmt.Errorf("the native driver only reads local captures")
		}
		return &native{driverName: driverName}, nil
	default:
		return nil, fmt.Errorf("unknown driver: %s", driverName)
	}
}

// Extract runs d against capture and parses what it printed.
func Extract(d Driver, capture string) ([]sample.Record, error) {
	stdout, err := d.Run(capture)
	if err != nil {
		return nil, err
	}
	return d.ParseResults(&stdout)
}

// parseFields numbers every output line from 1, counting blank lines too. A line with
// only a timestamp keeps an empty HTTP time.
func parseFields(stdout *bytes.Buffer) []sample.Record {
	var records []sample.Record
	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return records
	}
	for idx, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		rec := sample.Record{Number: idx + 1, Arrival: fields[0]}
		if len(fields) >= 2 {
			rec.HTTPTime = fields[1]
		} else if fields[0] == "" {
			continue
		}
		records = append(records, rec)
	}
	return records
}

func (t *tshark) ParseResults(stdout *bytes.Buffer) ([]sample.Record, error) {
	records := parseFields(stdout)
	log.Debugf("%s produced %d records", t.driverName, len(records))
	return records, nil
}

func (n *native) ParseResults(stdout *bytes.Buffer) ([]sample.Record, error) {
	records := parseFields(stdout)
	for _, r := range records {
		if _, err := strconv.ParseFloat(r.HTTPTime, 64); err != nil {
			return nil, fmt.Errorf("record %d has a malformed http.time %q", r.Number, r.HTTPTime)
		}
	}
	log.Debugf("%s produced %d records", n.driverName, len(records))
	return records, nil
}
