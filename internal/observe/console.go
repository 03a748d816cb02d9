package observe

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/signalnine/benchduel/internal/measure"
	"github.com/signalnine/benchduel/internal/result"
)

var (
	successText = color.New(color.FgGreen).SprintFunc()
	failedText  = color.New(color.FgRed).SprintFunc()
	stageText   = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// Console prints progress lines for a person watching the run and logs the
// same events as structured records.
type Console struct {
	Out    io.Writer
	Logger *slog.Logger

	mu sync.Mutex
}

func NewConsole(out io.Writer, logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{Out: out, Logger: logger}
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Console) StateChanged(from, to string) {
	c.Logger.Debug("session state changed", "from", from, "to", to)
}

func (c *Console) CorpusProgress(done, total int) {
	c.printf("  %s %d/%d files\n", stageText("corpus"), done, total)
}

func (c *Console) ToolStarted(tool string, argv []string) {
	c.Logger.Info("tool started", "tool", tool, "command", strings.Join(argv, " "))
	c.printf("%s running %s\n", stageText(tool), strings.Join(argv, " "))
}

func (c *Console) ToolSampled(tool string, elapsed time.Duration, sample measure.MemorySample) {
	c.Logger.Info("tool progress",
		"tool", tool,
		"elapsed", elapsed.Round(time.Second),
		"heap_mb", sample.HeapUsed,
		"rss_mb", sample.RSS,
	)
}

func (c *Console) ToolFinished(r *result.BenchmarkResult) {
	c.Logger.Info("tool finished",
		"tool", r.Tool,
		"duration_ms", r.DurationMillis,
		"files", r.FilesProcessed,
		"memory_delta_mb", r.MemoryDelta,
		"peak_rss_mb", r.PeakRSSMB,
	)
	c.printf("%s %s done in %.1fs\n", successText("✓"), r.Label, float64(r.DurationMillis)/1000)
}

func (c *Console) ToolFailed(tool string, err error) {
	c.Logger.Error("tool failed", "tool", tool, "error", err)
	c.printf("%s %s failed: %v\n", failedText("✗"), tool, err)
}

func (c *Console) CleanupFailed(path string, err error) {
	c.Logger.Warn("cleanup failed", "path", path, "error", err)
}

var _ Observer = (*Console)(nil)
