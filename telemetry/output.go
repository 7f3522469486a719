package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/flowfield/config"
)

// csvFile is an output file whose header is written with the first batch.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

func (c *csvFile) write(records any) error {
	if !c.headerWritten {
		if err := gocsv.Marshal(records, c.f); err != nil {
			return err
		}
		c.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, c.f)
}

// OutputManager handles structured run output with CSV logging.
// A nil *OutputManager discards everything.
type OutputManager struct {
	dir      string
	solves   *csvFile
	perf     *csvFile
	tiles    *csvFile
	segments *csvFile
	arrivals *csvFile
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	files := []struct {
		name string
		dst  **csvFile
	}{
		{"solves.csv", &om.solves},
		{"perf.csv", &om.perf},
		{"tiles.csv", &om.tiles},
		{"segments.csv", &om.segments},
		{"arrivals.csv", &om.arrivals},
	}
	for _, file := range files {
		f, err := os.Create(filepath.Join(dir, file.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", file.name, err)
		}
		*file.dst = &csvFile{f: f}
	}

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteSolve appends a row to solves.csv.
func (om *OutputManager) WriteSolve(r SolveRecord) error {
	if om == nil {
		return nil
	}
	if err := om.solves.write([]SolveRecord{r}); err != nil {
		return fmt.Errorf("writing solve: %w", err)
	}
	return nil
}

// WritePerf appends a row to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, run int) error {
	if om == nil {
		return nil
	}
	if err := om.perf.write([]PerfStatsCSV{stats.ToCSV(run)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteTiles appends rows to tiles.csv.
func (om *OutputManager) WriteTiles(records []TileRecord) error {
	if om == nil || len(records) == 0 {
		return nil
	}
	if err := om.tiles.write(records); err != nil {
		return fmt.Errorf("writing tiles: %w", err)
	}
	return nil
}

// WriteSegments appends rows to segments.csv.
func (om *OutputManager) WriteSegments(records []SegmentRecord) error {
	if om == nil || len(records) == 0 {
		return nil
	}
	if err := om.segments.write(records); err != nil {
		return fmt.Errorf("writing segments: %w", err)
	}
	return nil
}

// WriteArrivals appends rows to arrivals.csv.
func (om *OutputManager) WriteArrivals(records []ArrivalRecord) error {
	if om == nil || len(records) == 0 {
		return nil
	}
	if err := om.arrivals.write(records); err != nil {
		return fmt.Errorf("writing arrivals: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, c := range []*csvFile{om.solves, om.perf, om.tiles, om.segments, om.arrivals} {
		if c == nil || c.f == nil {
			continue
		}
		if err := c.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
