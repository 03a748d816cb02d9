// Package observe carries progress and narration out of the benchmark core.
package observe

import (
	"time"

	"github.com/signalnine/benchduel/internal/measure"
	"github.com/signalnine/benchduel/internal/result"
)

// Observer receives notifications from a session. Implementations must not
// block; none of the calls affect the benchmark's outcome.
type Observer interface {
	StateChanged(from, to string)
	CorpusProgress(done, total int)
	ToolStarted(tool string, argv []string)
	ToolSampled(tool string, elapsed time.Duration, sample measure.MemorySample)
	ToolFinished(r *result.BenchmarkResult)
	ToolFailed(tool string, err error)
	CleanupFailed(path string, err error)
}

// Nop discards every notification.
type Nop struct{}

func (Nop) StateChanged(string, string) {}
func (Nop) CorpusProgress(int, int) {}
func (Nop) ToolStarted(string, []string) {}
func (Nop) ToolSampled(string, time.Duration, measure.MemorySample) {}
func (Nop) ToolFinished(*result.BenchmarkResult) {}
func (Nop) ToolFailed(string, error) {}
func (Nop) CleanupFailed(string, error) {}

var _ Observer = Nop{}
