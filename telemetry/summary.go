package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Summary describes a set of durations.
type Summary struct {
	Count  int
	Mean   time.Duration
	StdDev time.Duration
	Min    time.Duration
	Max    time.Duration
	P50    time.Duration
	P95    time.Duration
}

// Summarize computes distribution statistics for ds. It does not modify ds.
func Summarize(ds []time.Duration) Summary {
	if len(ds) == 0 {
		return Summary{}
	}

	xs := make([]float64, len(ds))
	for i, d := range ds {
		xs[i] = float64(d)
	}
	sort.Float64s(xs)

	s := Summary{
		Count: len(xs),
		Mean:  time.Duration(stat.Mean(xs, nil)),
		Min:   time.Duration(xs[0]),
		Max:   time.Duration(xs[len(xs)-1]),
		P50:   time.Duration(stat.Quantile(0.5, stat.Empirical, xs, nil)),
		P95:   time.Duration(stat.Quantile(0.95, stat.Empirical, xs, nil)),
	}
	// Sample std-dev is undefined for a single value
	if len(xs) > 1 {
		s.StdDev = time.Duration(stat.StdDev(xs, nil))
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("count", s.Count),
		slog.Int64("mean_us", s.Mean.Microseconds()),
		slog.Int64("stddev_us", s.StdDev.Microseconds()),
		slog.Int64("min_us", s.Min.Microseconds()),
		slog.Int64("max_us", s.Max.Microseconds()),
		slog.Int64("p50_us", s.P50.Microseconds()),
		slog.Int64("p95_us", s.P95.Microseconds()),
	)
}
