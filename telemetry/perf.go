package telemetry

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/flowfield/field"
)

// Phase names for a run.
const (
	PhasePropagate = "propagate"
	PhaseExtract   = "extract"
	PhaseSwarm     = "swarm"
	PhaseOutput    = "output"
)

var phaseOrder = []string{PhasePropagate, PhaseExtract, PhaseSwarm, PhaseOutput}

// PerfSample holds timing data for a single run.
type PerfSample struct {
	Duration time.Duration
	Phases   map[string]time.Duration
}

// PerfCollector tracks performance metrics over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	runStart      time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of runs to average over.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartRun begins timing a new run.
func (p *PerfCollector) StartRun() {
	p.runStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase, ending the previous one.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndRun finishes timing the current run and records the sample.
func (p *PerfCollector) EndRun() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.record(PerfSample{
		Duration: now.Sub(p.runStart),
		Phases:   p.currentPhases,
	})
}

// RecordSolve records a solve as one sample using the stage timings
// measured by the field itself.
func (p *PerfCollector) RecordSolve(s field.SolveStats) {
	p.record(PerfSample{
		Duration: s.Total(),
		Phases: map[string]time.Duration{
			PhasePropagate: s.Propagate,
			PhaseExtract:   s.Extract,
		},
	})
}

func (p *PerfCollector) record(sample PerfSample) {
	p.samples[p.writeIndex] = sample
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// Durations returns the run durations currently in the window, oldest first.
func (p *PerfCollector) Durations() []time.Duration {
	out := make([]time.Duration, 0, p.sampleCount)
	start := 0
	if p.sampleCount == p.windowSize {
		start = p.writeIndex
	}
	for i := 0; i < p.sampleCount; i++ {
		out = append(out, p.samples[(start+i)%p.windowSize].Duration)
	}
	return out
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgDuration time.Duration
	MinDuration time.Duration
	MaxDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total run time
	PhasePct map[string]float64

	RunsPerSecond float64
	Samples       int
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
		}
	}

	var total time.Duration
	var minRun, maxRun time.Duration
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.Duration

		if i == 0 || s.Duration < minRun {
			minRun = s.Duration
		}
		if s.Duration > maxRun {
			maxRun = s.Duration
		}

		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avg := total / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	var perSec float64
	if avg > 0 {
		perSec = float64(time.Second) / float64(avg)
	}

	return PerfStats{
		AvgDuration:   avg,
		MinDuration:   minRun,
		MaxDuration:   maxRun,
		PhaseAvg:      phaseAvg,
		PhasePct:      phasePct,
		RunsPerSecond: perSec,
		Samples:       p.sampleCount,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_us", s.AvgDuration.Microseconds()),
		slog.Int64("min_us", s.MinDuration.Microseconds()),
		slog.Int64("max_us", s.MaxDuration.Microseconds()),
		slog.Float64("runs_per_sec", s.RunsPerSecond),
		slog.Int("samples", s.Samples),
	}

	for _, phase := range phaseOrder {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Run          int     `csv:"run"`
	AvgUS        int64   `csv:"avg_us"`
	MinUS        int64   `csv:"min_us"`
	MaxUS        int64   `csv:"max_us"`
	RunsPerSec   float64 `csv:"runs_per_sec"`
	PropagatePct float64 `csv:"propagate_pct"`
	ExtractPct   float64 `csv:"extract_pct"`
	SwarmPct     float64 `csv:"swarm_pct"`
	OutputPct    float64 `csv:"output_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(run int) PerfStatsCSV {
	return PerfStatsCSV{
		Run:          run,
		AvgUS:        s.AvgDuration.Microseconds(),
		MinUS:        s.MinDuration.Microseconds(),
		MaxUS:        s.MaxDuration.Microseconds(),
		RunsPerSec:   s.RunsPerSecond,
		PropagatePct: s.PhasePct[PhasePropagate],
		ExtractPct:   s.PhasePct[PhaseExtract],
		SwarmPct:     s.PhasePct[PhaseSwarm],
		OutputPct:    s.PhasePct[PhaseOutput],
	}
}
