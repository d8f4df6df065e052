package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/gast/internal/state"
	"github.com/leapstack-labs/gast/pkg/gast"
	"github.com/leapstack-labs/gast/pkg/grammar"
)

// Status is the outcome of extracting one file.
type Status string

// Extraction outcomes.
const (
	StatusExtracted Status = "extracted"
	StatusUnchanged Status = "unchanged"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
	StatusRemoved   Status = "removed"
)

// Result is the outcome of extracting one file.
type Result struct {
	Path     string
	Grammar  string
	Status   Status
	Root     *gast.Node
	Stats    gast.Stats
	Hash     string
	Err      error
	Duration time.Duration
}

// Summary aggregates the results of a run, in discovery order.
type Summary struct {
	RunID     string
	Results   []Result
	Extracted int
	Unchanged int
	Skipped   int
	Failed    int
	Stats     gast.Stats
	Duration  time.Duration
}

func (s *Summary) add(r Result) {
	switch r.Status {
	case StatusExtracted:
		s.Extracted++
		s.Stats.Merge(r.Stats)
	case StatusUnchanged:
		s.Unchanged++
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
	}
}

// Failures returns the failed results.
func (s *Summary) Failures() []Result {
	var out []Result
	for _, r := range s.Results {
		if r.Status == StatusFailed {
			out = append(out, r)
		}
	}
	return out
}

// ExtractFile extracts a single file. Failures are reported in the result,
// never as a panic or a shared error.
func (e *Engine) ExtractFile(ctx context.Context, f File) (r Result) {
	start := time.Now()
	r = Result{Path: f.Path, Grammar: f.Grammar.Name}
	defer func() { r.Duration = time.Since(start) }()

	if e.maxFileSize > 0 && f.Size > e.maxFileSize {
		r.Status = StatusSkipped
		r.Err = fmt.Errorf("%s exceeds max file size (%d > %d bytes)", f.Path, f.Size, e.maxFileSize)
		e.logger.Debug("skipping large file", slog.String("path", f.Path), slog.Int64("size", f.Size))
		return r
	}

	src, err := os.ReadFile(f.Path)
	if err != nil {
		r.Status = StatusFailed
		r.Err = fmt.Errorf("failed to read %s: %w", f.Path, err)
		return r
	}
	r.Hash = computeHash(src)

	if e.store != nil {
		prev, err := e.store.GetContentHash(f.Path)
		if err != nil {
			e.logger.Warn("failed to check content hash",
				slog.String("path", f.Path), slog.String("error", err.Error()))
		} else if prev == r.Hash {
			r.Status = StatusUnchanged
			return r
		}
	}

	root, err := f.Grammar.Extract(ctx, f.Path, src, grammar.ExtractOptions{
		Strict: e.strict,
		Logger: e.logger,
	})
	if err != nil {
		r.Status = StatusFailed
		r.Err = err
		e.logger.Warn("extraction failed", slog.String("path", f.Path), slog.String("error", err.Error()))
		return r
	}

	r.Status = StatusExtracted
	r.Root = root
	r.Stats = gast.Compute(root)
	return r
}

// Run extracts files on a bounded worker pool and, when a store is
// configured, records the run. Only cancellation and store failures are
// returned as errors; per-file failures stay in the summary.
func (e *Engine) Run(ctx context.Context, files []File) (*Summary, error) {
	start := time.Now()
	results := make([]Result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.ExtractFile(gctx, f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sum := &Summary{Results: results}
	for _, r := range results {
		sum.add(r)
	}

	if e.store != nil {
		runID, err := e.persist(results)
		sum.RunID = runID
		if err != nil {
			return sum, err
		}
	}

	sum.Duration = time.Since(start)
	e.logger.Info("extraction complete",
		slog.Int("files", len(files)),
		slog.Int("extracted", sum.Extracted),
		slog.Int("unchanged", sum.Unchanged),
		slog.Int("skipped", sum.Skipped),
		slog.Int("failed", sum.Failed),
		slog.Duration("duration", sum.Duration))
	return sum, nil
}

// ExtractAll discovers the files under the roots and runs them.
func (e *Engine) ExtractAll(ctx context.Context) (*Summary, error) {
	files, err := e.Discover(ctx)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, files)
}

// persist records extracted and failed results under a new run.
func (e *Engine) persist(results []Result) (string, error) {
	run, err := e.store.CreateRun()
	if err != nil {
		return "", err
	}

	var files, failures int
	for _, r := range results {
		rec := state.FileRecord{Path: r.Path, Grammar: r.Grammar, ContentHash: r.Hash}
		switch r.Status {
		case StatusExtracted:
			err = e.store.SaveFile(run.ID, rec, r.Root)
		case StatusFailed:
			rec.Error = r.Err.Error()
			err = e.store.SaveFile(run.ID, rec, nil)
			failures++
		default:
			continue
		}
		if err != nil {
			_ = e.store.CompleteRun(run.ID, state.RunStatusFailed, files, failures, err.Error())
			return run.ID, err
		}
		files++
	}

	if err := e.store.CompleteRun(run.ID, state.RunStatusCompleted, files, failures, ""); err != nil {
		return run.ID, err
	}
	return run.ID, nil
}

// computeHash returns the hex sha256 of content.
func computeHash(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}
