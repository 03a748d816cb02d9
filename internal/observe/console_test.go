package observe_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/signalnine/benchduel/internal/measure"
	"github.com/signalnine/benchduel/internal/observe"
	"github.com/signalnine/benchduel/internal/result"
)

func newConsole() (*observe.Console, *bytes.Buffer, *bytes.Buffer) {
	var out, logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return observe.NewConsole(&out, logger), &out, &logs
}

func TestConsoleToolLifecycle(t *testing.T) {
	c, out, logs := newConsole()

	c.ToolStarted("swc", []string{"npx", "swc", "./in", "-d", "./out"})
	c.ToolSampled("swc", 5*time.Second, measure.MemorySample{HeapUsed: 12, RSS: 40})
	c.ToolFinished(&result.BenchmarkResult{Tool: "swc", Label: "SWC (Rust)", DurationMillis: 1500, FilesProcessed: 10})

	assert.Contains(t, out.String(), "npx swc ./in -d ./out")
	assert.Contains(t, out.String(), "SWC (Rust) done in 1.5s")
	assert.Contains(t, logs.String(), "heap_mb=12")
	assert.Contains(t, logs.String(), "duration_ms=1500")
}

func TestConsoleFailures(t *testing.T) {
	c, out, logs := newConsole()

	c.ToolFailed("babel", errors.New("exit code 1"))
	c.CleanupFailed("./babel_output", errors.New("permission denied"))

	assert.Contains(t, out.String(), "babel failed: exit code 1")
	assert.Contains(t, logs.String(), "level=ERROR")
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "path=./babel_output")
}

func TestConsoleProgressAndState(t *testing.T) {
	c, out, logs := newConsole()

	c.StateChanged("idle", "tools_verified")
	c.CorpusProgress(1000, 10000)

	assert.Contains(t, out.String(), "1000/10000 files")
	assert.Contains(t, logs.String(), "to=tools_verified")
}

func TestNopSatisfiesObserver(t *testing.T) {
	var o observe.Observer = observe.Nop{}
	o.ToolFailed("x", errors.New("ignored"))
}
