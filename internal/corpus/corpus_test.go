package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCorpus(t *testing.T, dir string) map[string]string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		out[e.Name()] = string(data)
	}
	return out
}

func TestGenerateIsDeterministic(t *testing.T) {
	base := t.TempDir()
	a, err := Generate(context.Background(), Options{FileCount: 37, Dir: filepath.Join(base, "a")})
	require.NoError(t, err)
	b, err := Generate(context.Background(), Options{FileCount: 37, Dir: filepath.Join(base, "b")})
	require.NoError(t, err)

	assert.Equal(t, a.Files, b.Files)
	assert.Equal(t, readCorpus(t, a.Dir), readCorpus(t, b.Dir))
}

func TestGenerateSingleTemplate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "corpus")
	tmpl := fromText("only", "export const value__N__ = __N__;\n")

	c, err := Generate(context.Background(), Options{
		FileCount: 5,
		Dir:       dir,
		Ext:       ".ext",
		Templates: []Template{tmpl},
	})
	require.NoError(t, err)

	want := []string{"file0.ext", "file1.ext", "file2.ext", "file3.ext", "file4.ext"}
	assert.Equal(t, want, c.Files)

	files := readCorpus(t, dir)
	require.Len(t, files, 5)
	for i, name := range want {
		assert.Equal(t, tmpl.Render(i), files[name])
	}
	assert.Equal(t, "export const value3 = 3;\n", files["file3.ext"])
}

func TestGenerateEvenDistribution(t *testing.T) {
	templates := DefaultTemplates()
	for _, n := range []int{1, 3, 4, 10, 1001} {
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			c, err := Generate(context.Background(), Options{FileCount: n, Dir: filepath.Join(t.TempDir(), "c")})
			require.NoError(t, err)

			lo, hi := n/len(templates), (n+len(templates)-1)/len(templates)
			total := 0
			for i, count := range c.TemplateCounts {
				assert.True(t, count == lo || count == hi, "template %d used %d times, want %d or %d", i, count, lo, hi)
				total += count
			}
			assert.Equal(t, n, total)
		})
	}
}

func TestFileMapsToTemplateByIndex(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "c")
	templates := DefaultTemplates()
	_, err := Generate(context.Background(), Options{FileCount: 9, Dir: dir})
	require.NoError(t, err)

	files := readCorpus(t, dir)
	for i := 0; i < 9; i++ {
		name := FileName(i, 9, ".tsx")
		assert.Equal(t, templates[i%len(templates)].Render(i), files[name], "file %d", i)
	}
}

func TestFileNamesSortInOrder(t *testing.T) {
	var names []string
	for i := 0; i < 1200; i++ {
		names = append(names, FileName(i, 1200, ".tsx"))
	}
	assert.True(t, sort.StringsAreSorted(names))
	assert.Equal(t, "file0000.tsx", names[0])
	assert.Equal(t, "file1199.tsx", names[1199])
	assert.Equal(t, "file9999.tsx", FileName(9999, 10000, ".tsx"))
	assert.Equal(t, "file0.tsx", FileName(0, 1, ".tsx"))
}

func TestTemplatesDoNotShareIdentifiers(t *testing.T) {
	for _, tmpl := range DefaultTemplates() {
		a, b := tmpl.Render(1), tmpl.Render(2)
		assert.NotEqual(t, a, b, tmpl.Name)
		assert.NotContains(t, a, indexMarker, tmpl.Name)
		assert.Contains(t, a, "1", tmpl.Name)
	}
}

func TestGenerateRecreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "c")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.txt"), []byte("old"), 0o644))

	_, err := Generate(context.Background(), Options{FileCount: 2, Dir: dir})
	require.NoError(t, err)

	files := readCorpus(t, dir)
	assert.Len(t, files, 2)
	assert.NotContains(t, files, "stale.txt")
}

func TestGenerateProgress(t *testing.T) {
	var calls []int
	_, err := Generate(context.Background(), Options{
		FileCount: 2500,
		Dir:       filepath.Join(t.TempDir(), "c"),
		Templates: []Template{fromText("tiny", "x__N__\n")},
		Progress:  func(done, total int) { calls = append(calls, done) },
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1000, 2000, 2500}, calls)
}

func TestGenerateFailsOnUnwritableDir(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := Generate(context.Background(), Options{FileCount: 1, Dir: filepath.Join(blocker, "corpus")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGeneration))
}

func TestGenerateRejectsZeroFiles(t *testing.T) {
	_, err := Generate(context.Background(), Options{FileCount: 0, Dir: t.TempDir()})
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestGenerateHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Generate(ctx, Options{FileCount: 3, Dir: filepath.Join(t.TempDir(), "c")})
	require.ErrorIs(t, err, ErrGeneration)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, strings.Contains(err.Error(), "canceled"))
}
