// Package corpus generates the deterministic synthetic source files every
// benchmarked tool is given.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// ProgressInterval is how many files are written between progress reports.
const ProgressInterval = 1000

// ErrGeneration marks any failure that leaves the corpus unusable.
var ErrGeneration = errors.New("corpus generation failed")

type Options struct {
	FileCount int
	Dir       string
	Ext       string
	// Templates defaults to DefaultTemplates when empty.
	Templates []Template
	// Progress, when set, is called every ProgressInterval files and once
	// when the last file is written.
	Progress func(done, total int)
}

type Corpus struct {
	Dir            string
	Files          []string
	TemplateCounts []int
}

// Generate recreates opts.Dir from empty and writes opts.FileCount files into
// it. File i is rendered from template i mod len(templates), so the same
// index always produces the same bytes.
func Generate(ctx context.Context, opts Options) (*Corpus, error) {
	if opts.FileCount < 1 {
		return nil, fmt.Errorf("%w: file count must be positive, got %d", ErrGeneration, opts.FileCount)
	}
	templates := opts.Templates
	if len(templates) == 0 {
		templates = DefaultTemplates()
	}
	ext := opts.Ext
	if ext == "" {
		ext = ".tsx"
	}

	if err := os.RemoveAll(opts.Dir); err != nil {
		return nil, fmt.Errorf("%w: clearing %s: %v", ErrGeneration, opts.Dir, err)
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", ErrGeneration, opts.Dir, err)
	}

	c := &Corpus{
		Dir:            opts.Dir,
		Files:          make([]string, 0, opts.FileCount),
		TemplateCounts: make([]int, len(templates)),
	}
	for i := 0; i < opts.FileCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
		}
		t := TemplateFor(i, len(templates))
		name := FileName(i, opts.FileCount, ext)
		path := filepath.Join(opts.Dir, name)
		if err := os.WriteFile(path, []byte(templates[t].Render(i)), 0o644); err != nil {
			return nil, fmt.Errorf("%w: writing %s: %v", ErrGeneration, path, err)
		}
		c.Files = append(c.Files, name)
		c.TemplateCounts[t]++

		if opts.Progress != nil && ((i+1)%ProgressInterval == 0 || i+1 == opts.FileCount) {
			opts.Progress(i+1, opts.FileCount)
		}
	}
	return c, nil
}

// TemplateFor returns the template index used for file i.
func TemplateFor(i, templateCount int) int {
	return i % templateCount
}

// FileName zero-pads i to the width of the largest index so a lexicographic
// listing matches generation order.
func FileName(i, total int, ext string) string {
	width := len(strconv.Itoa(max(total-1, 0)))
	return fmt.Sprintf("file%0*d%s", width, i, ext)
}
