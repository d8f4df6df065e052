package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/gast/internal/state"
	"github.com/leapstack-labs/gast/internal/testutil"
	"github.com/leapstack-labs/gast/pkg/cst"
	"github.com/leapstack-labs/gast/pkg/gast"
	"github.com/leapstack-labs/gast/pkg/grammar"
)

const (
	goodJava   = "class A {\n  void m() {\n    if (x) { f(); } else { g(); }\n  }\n}\n"
	brokenJava = "class B { void m() { int x = ; } }\n"
	goodPython = "def f(x):\n    return g(x)\n"
)

// writeTree creates files relative to a new temp dir and returns the dir.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return dir
}

func newEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	cfg.Logger = testutil.NewTestLogger(t)
	e, err := New(cfg)
	require.NoError(t, err)
	return e
}

func paths(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		e := newEngine(t, Config{})
		assert.Equal(t, []string{"."}, e.Roots())
		assert.Positive(t, e.workers)
		assert.Equal(t, DefaultMaxFileSize, e.maxFileSize)
		assert.Equal(t, DefaultDebounce, e.debounce)
		assert.True(t, e.excluded(".git"))

		_, ok := e.Grammar("A.JAVA")
		assert.True(t, ok, "extensions match case-insensitively")
		_, ok = e.Grammar("x.py")
		assert.True(t, ok)
	})

	t.Run("restricted grammars", func(t *testing.T) {
		e := newEngine(t, Config{Grammars: []string{"python"}})
		_, ok := e.Grammar("A.java")
		assert.False(t, ok)
	})

	t.Run("unknown grammar", func(t *testing.T) {
		_, err := New(Config{Grammars: []string{"cobol"}})
		require.Error(t, err)
		assert.True(t, errors.Is(err, grammar.ErrUnknownGrammar))
		assert.Contains(t, err.Error(), "cobol")
	})
}

func TestDiscover(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"src/b/B.java":           goodJava,
		"src/a.py":               goodPython,
		"src/notes.txt":          "hello",
		"node_modules/dep/x.py":  goodPython,
		"src/vendor/lib/V.java":  goodJava,
		"src/generated/Gen.java": goodJava,
		"single/Only.java":       goodJava,
		"single/Other.java":      goodJava,
	})

	t.Run("walks roots", func(t *testing.T) {
		e := newEngine(t, Config{Roots: []string{dir}})
		files, err := e.Discover(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "single/Only.java"),
			filepath.Join(dir, "single/Other.java"),
			filepath.Join(dir, "src/a.py"),
			filepath.Join(dir, "src/b/B.java"),
			filepath.Join(dir, "src/generated/Gen.java"),
		}, paths(files))
		assert.Equal(t, "python", files[2].Grammar.Name)
		assert.Equal(t, int64(len(goodPython)), files[2].Size)
	})

	t.Run("custom exclude", func(t *testing.T) {
		e := newEngine(t, Config{Roots: []string{filepath.Join(dir, "src")}, Exclude: []string{"generated"}})
		files, err := e.Discover(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "src/a.py"),
			filepath.Join(dir, "src/b/B.java"),
			filepath.Join(dir, "src/vendor/lib/V.java"),
		}, paths(files))
	})

	t.Run("file root", func(t *testing.T) {
		only := filepath.Join(dir, "single/Only.java")
		e := newEngine(t, Config{Roots: []string{only, only, filepath.Join(dir, "src/notes.txt")}})
		files, err := e.Discover(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{only}, paths(files))
	})

	t.Run("missing root", func(t *testing.T) {
		e := newEngine(t, Config{Roots: []string{filepath.Join(dir, "nope")}})
		_, err := e.Discover(context.Background())
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		e := newEngine(t, Config{Roots: []string{dir}})
		_, err := e.Discover(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestExtractAll_IsolatesFailures(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"A.java": goodJava,
		"B.java": brokenJava,
		"f.py":   goodPython,
	})
	e := newEngine(t, Config{Roots: []string{dir}, Strict: true, Workers: 2})

	sum, err := e.ExtractAll(context.Background())
	require.NoError(t, err)
	require.Len(t, sum.Results, 3)
	assert.Empty(t, sum.RunID, "no store, no run")
	assert.Equal(t, 2, sum.Extracted)
	assert.Equal(t, 1, sum.Failed)

	failures := sum.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, filepath.Join(dir, "B.java"), failures[0].Path)
	var se *cst.SyntaxError
	assert.ErrorAs(t, failures[0].Err, &se)

	a := sum.Results[0]
	assert.Equal(t, StatusExtracted, a.Status)
	require.NotNil(t, a.Root)
	assert.Equal(t, gast.KindFile, a.Root.Kind())
	assert.Equal(t, a.Path, a.Root.Name())
	assert.Len(t, a.Hash, 64)
	assert.Equal(t, 1, a.Stats.ByKind[gast.KindClass])

	assert.Equal(t, a.Stats.Nodes+sum.Results[2].Stats.Nodes, sum.Stats.Nodes)
}

func TestExtractAll_Lenient(t *testing.T) {
	dir := writeTree(t, map[string]string{"B.java": brokenJava})
	e := newEngine(t, Config{Roots: []string{dir}})

	sum, err := e.ExtractAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Extracted)
	assert.Zero(t, sum.Failed)
}

func TestExtractFile_SkipsLargeFiles(t *testing.T) {
	dir := writeTree(t, map[string]string{"A.java": goodJava})
	e := newEngine(t, Config{Roots: []string{dir}, MaxFileSize: 10})

	sum, err := e.ExtractAll(context.Background())
	require.NoError(t, err)
	require.Len(t, sum.Results, 1)
	assert.Equal(t, StatusSkipped, sum.Results[0].Status)
	assert.Equal(t, 1, sum.Skipped)
	assert.ErrorContains(t, sum.Results[0].Err, "exceeds max file size")
}

func TestRun_Cancelled(t *testing.T) {
	dir := writeTree(t, map[string]string{"A.java": goodJava})
	e := newEngine(t, Config{Roots: []string{dir}})
	files, err := e.Discover(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Run(ctx, files)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_PersistsAndSkipsUnchanged(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"A.java": goodJava,
		"B.java": brokenJava,
	})
	store := state.NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	t.Cleanup(func() { _ = store.Close() })

	e := newEngine(t, Config{Roots: []string{dir}, Strict: true, Store: store})
	a := filepath.Join(dir, "A.java")

	first, err := e.ExtractAll(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, first.RunID)
	assert.Equal(t, 1, first.Extracted)
	assert.Equal(t, 1, first.Failed)

	run, err := store.GetRun(first.RunID)
	require.NoError(t, err)
	assert.Equal(t, state.RunStatusCompleted, run.Status)
	assert.Equal(t, 2, run.Files)
	assert.Equal(t, 1, run.Failures)

	tree, err := store.LoadTree(a)
	require.NoError(t, err)
	assert.Equal(t, first.Results[0].Root.Exchange(), tree.Exchange())

	// Unchanged content is not extracted again, failed files always are.
	second, err := e.ExtractAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusUnchanged, second.Results[0].Status)
	assert.Equal(t, StatusFailed, second.Results[1].Status)

	require.NoError(t, os.WriteFile(a, []byte("class A { }\n"), 0o600))
	third, err := e.ExtractAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusExtracted, third.Results[0].Status)

	runs, err := store.ListRuns(10)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}
