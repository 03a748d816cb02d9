// Package compare derives relative performance figures from two benchmark
// results. Everything here is pure computation.
package compare

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/signalnine/benchduel/internal/result"
)

var (
	// ErrComparisonUnavailable means one side has no result, usually because
	// its tool failed. It is a reportable state rather than a fault.
	ErrComparisonUnavailable = errors.New("comparison unavailable")
	ErrDegenerateInput       = errors.New("degenerate benchmark input")
)

const (
	DaysPerWeek   = 5
	WeeksPerMonth = 4
)

type Options struct {
	RunsPerDay int
}

type Tier string

const (
	TierRevolutionary Tier = "revolutionary"
	TierSignificant   Tier = "significant"
	TierNoticeable    Tier = "noticeable"
	TierMarginal      Tier = "marginal"
)

// TierFor classifies a speedup ratio.
func TierFor(speedup float64) Tier {
	switch {
	case speedup >= 10:
		return TierRevolutionary
	case speedup >= 5:
		return TierSignificant
	case speedup >= 2:
		return TierNoticeable
	default:
		return TierMarginal
	}
}

// Description is the one-line verdict printed next to the tier.
func (t Tier) Description() string {
	switch t {
	case TierRevolutionary:
		return "a difference of this size changes how the build feels"
	case TierSignificant:
		return "clearly noticeable in day-to-day work"
	case TierNoticeable:
		return "improves the development loop"
	default:
		return "small per run, but it adds up over time"
	}
}

// Projection scales the time saved by one run to longer periods.
type Projection struct {
	RunsPerDay    int   `json:"runs_per_day"`
	DailyMillis   int64 `json:"daily_ms"`
	WeeklyMillis  int64 `json:"weekly_ms"`
	MonthlyMillis int64 `json:"monthly_ms"`
}

func Project(savedMillis int64, runsPerDay int) Projection {
	daily := savedMillis * int64(runsPerDay)
	weekly := daily * DaysPerWeek
	return Projection{
		RunsPerDay:    runsPerDay,
		DailyMillis:   daily,
		WeeklyMillis:  weekly,
		MonthlyMillis: weekly * WeeksPerMonth,
	}
}

// Comparison describes tool B relative to baseline tool A. A speedup above
// 1 means B is faster.
type Comparison struct {
	Baseline              string     `json:"baseline"`
	Candidate             string     `json:"candidate"`
	SpeedupRatio          float64    `json:"speedup_ratio"`
	TimeSavedMillis       int64      `json:"time_saved_ms"`
	MemoryRatioAvailable  bool       `json:"memory_ratio_available"`
	MemoryEfficiencyRatio float64    `json:"memory_efficiency_ratio,omitempty"`
	PeakRSSRatioAvailable bool       `json:"peak_rss_ratio_available"`
	PeakRSSRatio          float64    `json:"peak_rss_ratio,omitempty"`
	Tier                  Tier       `json:"tier"`
	Projection            Projection `json:"projection"`
}

// Compare computes the figures for b against a. It fails with
// ErrComparisonUnavailable when either result is missing and with
// ErrDegenerateInput when either duration is not positive. Ratios whose
// denominator is zero are marked unavailable instead of being computed.
func Compare(a, b *result.BenchmarkResult, opts Options) (*Comparison, error) {
	if a == nil || b == nil {
		return nil, ErrComparisonUnavailable
	}
	if a.DurationMillis <= 0 || b.DurationMillis <= 0 {
		return nil, fmt.Errorf("%w: durations %dms and %dms", ErrDegenerateInput, a.DurationMillis, b.DurationMillis)
	}
	runs := opts.RunsPerDay
	if runs < 1 {
		runs = 1
	}

	speedup := float64(a.DurationMillis) / float64(b.DurationMillis)
	saved := a.DurationMillis - b.DurationMillis
	c := &Comparison{
		Baseline:        a.Tool,
		Candidate:       b.Tool,
		SpeedupRatio:    speedup,
		TimeSavedMillis: saved,
		Tier:            TierFor(speedup),
		Projection:      Project(saved, runs),
	}
	if b.MemoryDelta != 0 {
		c.MemoryRatioAvailable = true
		c.MemoryEfficiencyRatio = math.Abs(float64(a.MemoryDelta)) / math.Abs(float64(b.MemoryDelta))
	}
	if a.PeakRSSMB > 0 && b.PeakRSSMB > 0 {
		c.PeakRSSRatioAvailable = true
		c.PeakRSSRatio = float64(a.PeakRSSMB) / float64(b.PeakRSSMB)
	}
	return c, nil
}

// Entry is one baseline/candidate pair. Comparison is nil and Reason says
// why when the pair could not be compared.
type Entry struct {
	Baseline   string      `json:"baseline"`
	Candidate  string      `json:"candidate"`
	Comparison *Comparison `json:"comparison,omitempty"`
	Reason     string      `json:"reason,omitempty"`
}

// CompareAll compares the first outcome against every other outcome.
func CompareAll(outcomes []result.Outcome, opts Options) []Entry {
	if len(outcomes) < 2 {
		return nil
	}
	base := outcomes[0]
	entries := make([]Entry, 0, len(outcomes)-1)
	for _, o := range outcomes[1:] {
		e := Entry{Baseline: base.Tool, Candidate: o.Tool}
		c, err := Compare(base.Result, o.Result, opts)
		switch {
		case err == nil:
			e.Comparison = c
		case errors.Is(err, ErrComparisonUnavailable):
			e.Reason = unavailableReason(base, o)
		default:
			e.Reason = err.Error()
		}
		entries = append(entries, e)
	}
	return entries
}

func unavailableReason(base, other result.Outcome) string {
	var missing []string
	for _, o := range []result.Outcome{base, other} {
		if !o.Succeeded() {
			missing = append(missing, fmt.Sprintf("%s %s", o.Tool, o.ExitReason))
		}
	}
	return strings.Join(missing, ", ")
}
