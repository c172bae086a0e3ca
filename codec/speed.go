package codec

import (
	"fmt"
	"slices"
	"time"
)

// SpeedStats collects elapsed times of repeated encode or decode runs.
type SpeedStats struct {
	elapsed []time.Duration
}

// NotifyElapsed records one run.
func (s *SpeedStats) NotifyElapsed(d time.Duration) {
	s.elapsed = append(s.elapsed, d)
}

// Speed summarizes a SpeedStats.
type Speed struct {
	Reps   int
	Min    time.Duration
	Median time.Duration
	Max    time.Duration
	// MPPS is megapixels per second at the median time.
	MPPS float64
}

func (s Speed) String() string {
	if s.Reps == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.2f MP/s (median %v, min %v, max %v, %d reps)",
		s.MPPS, s.Median, s.Min, s.Max, s.Reps)
}

// Summary returns the statistics for images of the given pixel count. The
// second result is false when nothing was recorded.
func (s *SpeedStats) Summary(pixels int) (Speed, bool) {
	n := len(s.elapsed)
	if n == 0 {
		return Speed{}, false
	}
	sorted := slices.Clone(s.elapsed)
	slices.Sort(sorted)
	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	sp := Speed{Reps: n, Min: sorted[0], Median: median, Max: sorted[n-1]}
	if median > 0 {
		sp.MPPS = float64(pixels) / 1e6 / median.Seconds()
	}
	return sp, true
}
