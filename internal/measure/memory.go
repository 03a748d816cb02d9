// Package measure samples memory figures for benchmark runs.
package measure

import (
	"math"
	"runtime"
)

const bytesPerMB = 1024 * 1024

// MemorySample is a point-in-time view of the harness's memory, in whole
// megabytes.
type MemorySample struct {
	RSS       int64 `json:"rss_mb"`
	HeapUsed  int64 `json:"heap_used_mb"`
	HeapTotal int64 `json:"heap_total_mb"`
	External  int64 `json:"external_mb"`

	numGC uint32
}

// Sample reads the Go runtime's memory statistics. RSS is approximated by
// the memory obtained from the OS; External is everything outside the heap
// (stacks, runtime metadata, buffers).
func Sample() MemorySample {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return fromStats(&m)
}

func fromStats(m *runtime.MemStats) MemorySample {
	external := uint64(0)
	if m.Sys > m.HeapSys {
		external = m.Sys - m.HeapSys
	}
	return MemorySample{
		RSS:       ToMB(m.Sys),
		HeapUsed:  ToMB(m.HeapAlloc),
		HeapTotal: ToMB(m.HeapSys),
		External:  ToMB(external),
		numGC:     m.NumGC,
	}
}

// GCBetween reports whether the runtime completed a GC cycle between two
// samples taken in order.
func GCBetween(start, end MemorySample) bool {
	return end.numGC != start.numGC
}

// ToMB rounds a byte count to the nearest megabyte.
func ToMB(b uint64) int64 {
	return int64(math.Round(float64(b) / bytesPerMB))
}
