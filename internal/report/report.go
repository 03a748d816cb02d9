package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/signalnine/benchduel/internal/compare"
	"github.com/signalnine/benchduel/internal/result"
)

// NoComparison is printed in place of the comparison figures when one of
// the two results is missing.
const NoComparison = "no comparison available"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
)

type Report struct {
	SessionID   string           `json:"session_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	FileCount   int              `json:"file_count"`
	CorpusDir   string           `json:"corpus_dir"`
	Outcomes    []result.Outcome `json:"outcomes"`
	Comparisons []compare.Entry  `json:"comparisons"`
}

// Generate renders r in the given format: table (default), markdown or json.
func Generate(w io.Writer, format string, r *Report) error {
	switch format {
	case "markdown":
		return writeMarkdown(r, w)
	case "json":
		return writeJSON(r, w)
	default:
		return writeTable(r, w)
	}
}

func writeTable(r *Report, w io.Writer) error {
	fmt.Fprintln(w, titleStyle.Render("Transpiler benchmark"))
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("session %s, %d files in %s", r.SessionID, r.FileCount, r.CorpusDir)))
	fmt.Fprintln(w)

	fmt.Fprintln(w, sectionStyle.Render("Results"))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TOOL\tSTATUS\tDURATION\tFILES\tFILES/S\tHEAP START\tHEAP END\tDELTA\tPEAK RSS")
	fmt.Fprintln(tw, strings.Repeat("-", 96))
	for _, o := range r.Outcomes {
		res := o.Result
		if res == nil {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t-\t-\t-\t-\n", o.Label, o.ExitReason)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.0f\t%d MB\t%d MB\t%+d MB%s\t%s\n",
			o.Label, o.ExitReason, seconds(res.DurationMillis), res.FilesProcessed, res.FilesPerSecond(),
			res.StartMemory.HeapUsed, res.EndMemory.HeapUsed, res.MemoryDelta, gcMarker(res), peak(res.PeakRSSMB))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, o := range r.Outcomes {
		if o.Error != "" {
			fmt.Fprintln(w, failStyle.Render(fmt.Sprintf("%s: %s", o.Tool, o.Error)))
		}
	}

	for _, e := range r.Comparisons {
		fmt.Fprintln(w)
		fmt.Fprintln(w, sectionStyle.Render(fmt.Sprintf("Comparison: %s vs %s", e.Baseline, e.Candidate)))
		c := e.Comparison
		if c == nil {
			fmt.Fprintf(w, "%s (%s)\n", NoComparison, e.Reason)
			continue
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "Speedup\t%.1fx\t%s\n", c.SpeedupRatio, direction(c))
		fmt.Fprintf(tw, "Memory ratio\t%s\n", ratio(c.MemoryRatioAvailable, c.MemoryEfficiencyRatio))
		fmt.Fprintf(tw, "Peak RSS ratio\t%s\n", ratio(c.PeakRSSRatioAvailable, c.PeakRSSRatio))
		fmt.Fprintf(tw, "Time saved\t%s\n", seconds(c.TimeSavedMillis))
		fmt.Fprintf(tw, "Tier\t%s\t%s\n", c.Tier, c.Tier.Description())
		p := c.Projection
		fmt.Fprintf(tw, "Daily (%d runs)\t%s\n", p.RunsPerDay, minutes(p.DailyMillis))
		fmt.Fprintf(tw, "Weekly\t%s\n", minutes(p.WeeklyMillis))
		fmt.Fprintf(tw, "Monthly\t%s\t(%s)\n", minutes(p.MonthlyMillis), hours(p.MonthlyMillis))
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func writeMarkdown(r *Report, w io.Writer) error {
	fmt.Fprintln(w, "# Transpiler benchmark")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Session `%s`, %d files in `%s`.\n\n", r.SessionID, r.FileCount, r.CorpusDir)
	fmt.Fprintln(w, "| Tool | Status | Duration | Files | Files/s | Heap start | Heap end | Delta | Peak RSS |")
	fmt.Fprintln(w, "|---|---|---|---|---|---|---|---|---|")
	for _, o := range r.Outcomes {
		res := o.Result
		if res == nil {
			fmt.Fprintf(w, "| %s | %s | - | - | - | - | - | - | - |\n", o.Label, o.ExitReason)
			continue
		}
		fmt.Fprintf(w, "| %s | %s | %s | %d | %.0f | %d MB | %d MB | %+d MB%s | %s |\n",
			o.Label, o.ExitReason, seconds(res.DurationMillis), res.FilesProcessed, res.FilesPerSecond(),
			res.StartMemory.HeapUsed, res.EndMemory.HeapUsed, res.MemoryDelta, gcMarker(res), peak(res.PeakRSSMB))
	}
	for _, e := range r.Comparisons {
		fmt.Fprintf(w, "\n## %s vs %s\n\n", e.Baseline, e.Candidate)
		c := e.Comparison
		if c == nil {
			fmt.Fprintf(w, "_%s (%s)_\n", NoComparison, e.Reason)
			continue
		}
		fmt.Fprintln(w, "| Metric | Value |")
		fmt.Fprintln(w, "|---|---|")
		fmt.Fprintf(w, "| Speedup | %.1fx (%s) |\n", c.SpeedupRatio, direction(c))
		fmt.Fprintf(w, "| Memory ratio | %s |\n", ratio(c.MemoryRatioAvailable, c.MemoryEfficiencyRatio))
		fmt.Fprintf(w, "| Peak RSS ratio | %s |\n", ratio(c.PeakRSSRatioAvailable, c.PeakRSSRatio))
		fmt.Fprintf(w, "| Time saved | %s |\n", seconds(c.TimeSavedMillis))
		fmt.Fprintf(w, "| Tier | %s: %s |\n", c.Tier, c.Tier.Description())
		fmt.Fprintf(w, "| Daily (%d runs) | %s |\n", c.Projection.RunsPerDay, minutes(c.Projection.DailyMillis))
		fmt.Fprintf(w, "| Weekly | %s |\n", minutes(c.Projection.WeeklyMillis))
		fmt.Fprintf(w, "| Monthly | %s (%s) |\n", minutes(c.Projection.MonthlyMillis), hours(c.Projection.MonthlyMillis))
	}
	return nil
}

func writeJSON(r *Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func direction(c *compare.Comparison) string {
	if c.SpeedupRatio >= 1 {
		return c.Candidate + " faster"
	}
	return c.Baseline + " faster"
}

func ratio(ok bool, v float64) string {
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.2fx", v)
}

func gcMarker(r *result.BenchmarkResult) string {
	if r.GCExpected {
		return " (gc)"
	}
	return ""
}

func peak(mb int64) string {
	if mb <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%d MB", mb)
}

func seconds(ms int64) string {
	return fmt.Sprintf("%.1fs", float64(ms)/1000)
}

func minutes(ms int64) string {
	return fmt.Sprintf("%.1f min", float64(ms)/60000)
}

func hours(ms int64) string {
	return fmt.Sprintf("%.1f h", float64(ms)/3600000)
}
