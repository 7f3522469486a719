// Package main benchmarks repeated flow field solves on a configured scenario
// and prints a timing summary per worker count.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"runtime"
	"strconv"
	"strings"

	"github.com/pthm-cable/flowfield/config"
	"github.com/pthm-cable/flowfield/field"
	"github.com/pthm-cable/flowfield/grid"
	"github.com/pthm-cable/flowfield/telemetry"
	"github.com/pthm-cable/flowfield/terrain"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	solves := flag.Int("solves", 100, "Solves per worker count")
	workerList := flag.String("workers", "", "Comma-separated worker counts (empty = 1 and GOMAXPROCS)")
	randomDest := flag.Bool("random-dest", false, "Pick a random destination per solve")
	seed := flag.Int64("seed", 42, "RNG seed for -random-dest")
	flag.Parse()

	config.MustInit(*configPath)
	cfg := config.Cfg()

	counts, err := parseWorkers(*workerList)
	if err != nil {
		log.Fatalf("invalid -workers: %v", err)
	}

	fmt.Printf("Grid %dx%d, %d blockers, %d solves per run\n",
		cfg.Grid.Width, cfg.Grid.Height, len(cfg.Blockers), *solves)

	for _, workers := range counts {
		s, err := bench(cfg, workers, *solves, *randomDest, *seed)
		if err != nil {
			log.Fatalf("workers=%d: %v", workers, err)
		}
		fmt.Printf("workers=%-3d mean=%-10s stddev=%-10s min=%-10s p50=%-10s p95=%-10s max=%s\n",
			workers, s.Mean, s.StdDev, s.Min, s.P50, s.P95, s.Max)
	}
}

func parseWorkers(list string) ([]int, error) {
	if list == "" {
		procs := runtime.GOMAXPROCS(0)
		if procs == 1 {
			return []int{1}, nil
		}
		return []int{1, procs}, nil
	}
	var counts []int
	for _, part := range strings.Split(list, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		if n < 1 {
			return nil, fmt.Errorf("worker count %d must be positive", n)
		}
		counts = append(counts, n)
	}
	return counts, nil
}

func bench(cfg *config.Config, workers, solves int, randomDest bool, seed int64) (telemetry.Summary, error) {
	f, err := field.NewWithOptions(cfg.Grid.Width, cfg.Grid.Height, field.Options{
		Workers:           workers,
		ParallelThreshold: cfg.Solver.ParallelThreshold,
	})
	if err != nil {
		return telemetry.Summary{}, err
	}
	defer f.Dispose()

	for _, b := range cfg.Blockers {
		if _, err := f.BlockRect(grid.Pt(b.Min.X, b.Min.Y), grid.Pt(b.Max.X, b.Max.Y)); err != nil {
			return telemetry.Summary{}, err
		}
	}

	dest := grid.Pt(cfg.Destination.X, cfg.Destination.Y)
	if tc := cfg.Terrain; tc.Enabled {
		p := terrain.Params{
			Seed:          tc.Seed,
			Scale:         tc.Scale,
			Threshold:     tc.Threshold,
			CaveThreshold: tc.CaveThreshold,
			Border:        tc.Border,
			ClearRadius:   tc.ClearRadius,
		}
		if _, err := terrain.Apply(f, p, dest); err != nil {
			return telemetry.Summary{}, err
		}
	}

	rng := rand.New(rand.NewSource(seed))
	perf := telemetry.NewPerfCollector(solves)
	for i := 0; i < solves; i++ {
		if randomDest {
			dest = grid.Pt(rng.Intn(f.Width()), rng.Intn(f.Height()))
		}
		stats, err := f.Solve(dest)
		if err != nil {
			return telemetry.Summary{}, err
		}
		perf.RecordSolve(stats)
	}
	return telemetry.Summarize(perf.Durations()), nil
}
