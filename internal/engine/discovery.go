package engine

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/leapstack-labs/gast/pkg/grammar"
)

// File is a source file selected for extraction.
type File struct {
	Path    string
	Grammar *grammar.Grammar
	Size    int64
}

// Discover walks the roots and returns the files of enabled grammars,
// sorted by path. Excluded directories are not descended into. A root that
// is a file is taken as is when its extension is known.
func (e *Engine) Discover(ctx context.Context) ([]File, error) {
	seen := make(map[string]bool)
	var files []File

	add := func(path string, size int64) {
		g, ok := e.Grammar(path)
		if !ok || seen[path] {
			return
		}
		seen[path] = true
		files = append(files, File{Path: path, Grammar: g, Size: size})
	}

	for _, root := range e.roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("root %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root, info.Size())
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if walkErr != nil {
				e.logger.Warn("skipping unreadable path", slog.String("path", path), slog.String("error", walkErr.Error()))
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if path != root && e.excluded(d.Name()) {
					return fs.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil //nolint:nilerr // file vanished during the walk
			}
			add(path, info.Size())
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	e.logger.Debug("discovered files", slog.Int("count", len(files)))
	return files, nil
}
