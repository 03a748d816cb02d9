package result

import "github.com/signalnine/benchduel/internal/measure"

// BenchmarkResult is the measured outcome of one successful tool run. It is
// built only after the tool's process has exited.
type BenchmarkResult struct {
	Tool           string               `json:"tool"`
	Label          string               `json:"label"`
	DurationMillis int64                `json:"duration_ms"`
	FilesProcessed int                  `json:"files_processed"`
	StartMemory    measure.MemorySample `json:"start_memory"`
	EndMemory      measure.MemorySample `json:"end_memory"`
	MemoryDelta    int64                `json:"memory_delta_mb"`
	GCExpected     bool                 `json:"gc_expected"`
	PeakRSSMB      int64                `json:"peak_rss_mb"`
	Samples        int                  `json:"samples"`
}

// FilesPerSecond is the throughput of the run, or 0 for a zero duration.
func (r *BenchmarkResult) FilesPerSecond() float64 {
	if r == nil || r.DurationMillis <= 0 {
		return 0
	}
	return float64(r.FilesProcessed) / (float64(r.DurationMillis) / 1000)
}

// Outcome records what happened to one tool in a session. Result is nil
// when the tool failed or was skipped.
type Outcome struct {
	Tool       string           `json:"tool"`
	Label      string           `json:"label"`
	Result     *BenchmarkResult `json:"result,omitempty"`
	ExitReason string           `json:"exit_reason"`
	Error      string           `json:"error,omitempty"`
}

func (o Outcome) Succeeded() bool {
	return o.Result != nil
}
