package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatch(t *testing.T) {
	dir := writeTree(t, map[string]string{"keep.txt": ""})
	e := newEngine(t, Config{Roots: []string{dir}, Debounce: 20 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	results := make(chan Result, 64)
	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Watch(ctx, func(r Result) {
			select {
			case results <- r:
			case <-ctx.Done():
			}
		})
	}()
	defer func() {
		cancel()
		require.NoError(t, <-errCh)
	}()

	// The watcher may not be registered yet, so keep writing until a
	// result shows up.
	sub := filepath.Join(dir, "pkg")
	require.NoError(t, os.Mkdir(sub, 0o750))
	path := filepath.Join(dir, "A.java")
	waitFor(t, results, func(r Result) bool {
		return r.Path == path && r.Status == StatusExtracted
	}, func() {
		require.NoError(t, os.WriteFile(path, []byte(goodJava), 0o600))
	})

	nested := filepath.Join(sub, "f.py")
	waitFor(t, results, func(r Result) bool {
		return r.Path == nested && r.Status == StatusExtracted && r.Grammar == "python"
	}, func() {
		require.NoError(t, os.WriteFile(nested, []byte(goodPython), 0o600))
	})

	require.NoError(t, os.Remove(path))
	waitFor(t, results, func(r Result) bool {
		return r.Path == path && r.Status == StatusRemoved
	}, nil)
}

func waitFor(t *testing.T, results <-chan Result, match func(Result) bool, poke func()) {
	t.Helper()
	timeout := time.After(10 * time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	if poke != nil {
		poke()
	}
	for {
		select {
		case r := <-results:
			if match(r) {
				return
			}
		case <-ticker.C:
			if poke != nil {
				poke()
			}
		case <-timeout:
			t.Fatal("timed out waiting for watch result")
		}
	}
}
