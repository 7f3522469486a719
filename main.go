package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/pthm-cable/flowfield/config"
	"github.com/pthm-cable/flowfield/field"
	"github.com/pthm-cable/flowfield/grid"
	"github.com/pthm-cable/flowfield/swarm"
	"github.com/pthm-cable/flowfield/telemetry"
	"github.com/pthm-cable/flowfield/terrain"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	destX := flag.Int("dest-x", -1, "Destination X (-1 = use config)")
	destY := flag.Int("dest-y", -1, "Destination Y (-1 = use config)")
	repeat := flag.Int("repeat", 0, "Solves to run (0 = use config)")
	maxSteps := flag.Int("max-steps", 0, "Swarm step limit (0 = use config)")
	dumpTiles := flag.Bool("tiles", true, "Write tiles.csv and segments.csv after the last solve")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if err := run(cfg, *outputDir, *destX, *destY, *repeat, *maxSteps, *dumpTiles); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, outputDir string, destX, destY, repeat, maxSteps int, dumpTiles bool) error {
	dest := grid.Pt(cfg.Destination.X, cfg.Destination.Y)
	if destX >= 0 {
		dest.X = destX
	}
	if destY >= 0 {
		dest.Y = destY
	}
	if repeat <= 0 {
		repeat = cfg.Telemetry.Repeat
	}
	if maxSteps <= 0 {
		maxSteps = cfg.Swarm.MaxSteps
	}

	out, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		return err
	}

	f, err := field.NewWithOptions(cfg.Grid.Width, cfg.Grid.Height, field.Options{
		Workers:           cfg.Derived.Workers,
		ParallelThreshold: cfg.Solver.ParallelThreshold,
		Logger:            slog.Default(),
	})
	if err != nil {
		return err
	}
	defer f.Dispose()

	blocked := 0
	for _, b := range cfg.Blockers {
		n, err := f.BlockRect(grid.Pt(b.Min.X, b.Min.Y), grid.Pt(b.Max.X, b.Max.Y))
		if err != nil {
			return err
		}
		blocked += n
	}
	if cfg.Terrain.Enabled {
		n, err := terrain.Apply(f, terrainParams(cfg), dest)
		if err != nil {
			return err
		}
		blocked += n
	}

	slog.Info("starting run",
		"width", f.Width(),
		"height", f.Height(),
		"dest", dest.String(),
		"blocked", blocked,
		"workers", f.Workers(),
		"repeat", repeat,
		"output_dir", out.Dir(),
	)

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	for i := 0; i < repeat; i++ {
		stats, err := f.Solve(dest)
		if err != nil {
			return err
		}
		perf.RecordSolve(stats)
		if err := out.WriteSolve(telemetry.NewSolveRecord(i, stats)); err != nil {
			return err
		}
		if i == repeat-1 {
			slog.Info("solved", "stats", stats)
		}
	}

	summary := telemetry.Summarize(perf.Durations())
	slog.Info("solve timing", "summary", summary)

	if dumpTiles && out != nil {
		records, err := telemetry.TileRecords(f)
		if err != nil {
			return err
		}
		if err := out.WriteTiles(records); err != nil {
			return err
		}
		segments, err := telemetry.SegmentRecords(f)
		if err != nil {
			return err
		}
		if err := out.WriteSegments(segments); err != nil {
			return err
		}
	}

	// Swarm run, timed as a single sample of its own
	swarmPerf := telemetry.NewPerfCollector(1)
	swarmPerf.StartRun()
	swarmPerf.StartPhase(telemetry.PhaseSwarm)

	sys := swarm.New(f)
	spawned, err := sys.Spawn(swarm.Spawner{
		CountX:  cfg.Spawner.CountX,
		CountY:  cfg.Spawner.CountY,
		Origin:  grid.Pt(cfg.Spawner.Origin.X, cfg.Spawner.Origin.Y),
		Spacing: cfg.Spawner.Spacing,
	})
	if err != nil {
		return err
	}
	res, err := sys.Run(maxSteps)
	if err != nil {
		return err
	}

	swarmPerf.StartPhase(telemetry.PhaseOutput)
	arrivals := sys.Arrivals()
	records := make([]telemetry.ArrivalRecord, len(arrivals))
	for i, a := range arrivals {
		records[i] = telemetry.ArrivalRecord{
			Agent:  a.Agent,
			StartX: a.Start.X,
			StartY: a.Start.Y,
			Steps:  a.Steps,
			Step:   a.Step,
		}
	}
	if err := out.WriteArrivals(records); err != nil {
		return err
	}
	swarmPerf.EndRun()

	if err := out.WritePerf(perf.Stats(), 0); err != nil {
		return err
	}
	if err := out.WritePerf(swarmPerf.Stats(), 1); err != nil {
		return err
	}

	slog.Info("swarm complete",
		"spawned", spawned,
		"arrived", res.Arrived,
		"remaining", res.Remaining,
		"stuck", res.Stuck,
		"steps", res.Steps,
		"perf", swarmPerf.Stats(),
	)
	return nil
}

func terrainParams(cfg *config.Config) terrain.Params {
	t := cfg.Terrain
	return terrain.Params{
		Seed:          t.Seed,
		Scale:         t.Scale,
		Threshold:     t.Threshold,
		CaveThreshold: t.CaveThreshold,
		Border:        t.Border,
		ClearRadius:   t.ClearRadius,
	}
}
