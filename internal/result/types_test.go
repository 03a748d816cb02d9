package result_test

import (
	"testing"

	"github.com/signalnine/benchduel/internal/result"
)

func TestFilesPerSecond(t *testing.T) {
	tests := []struct {
		name string
		r    *result.BenchmarkResult
		want float64
	}{
		{"nil", nil, 0},
		{"zero duration", &result.BenchmarkResult{FilesProcessed: 10}, 0},
		{"ten seconds", &result.BenchmarkResult{FilesProcessed: 10000, DurationMillis: 10000}, 1000},
		{"half second", &result.BenchmarkResult{FilesProcessed: 50, DurationMillis: 500}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.FilesPerSecond(); got != tt.want {
				t.Errorf("FilesPerSecond() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOutcomeSucceeded(t *testing.T) {
	if (result.Outcome{Tool: "a"}).Succeeded() {
		t.Error("outcome without result should not succeed")
	}
	if !(result.Outcome{Tool: "a", Result: &result.BenchmarkResult{}}).Succeeded() {
		t.Error("outcome with result should succeed")
	}
}
