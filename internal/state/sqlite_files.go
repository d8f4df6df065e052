package state

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/gast/pkg/gast"
	"github.com/leapstack-labs/gast/pkg/token"
)

// GetContentHash returns the content hash of the last successful extraction
// of path, or "" if there is none.
func (s *SQLiteStore) GetContentHash(path string) (string, error) {
	if s.db == nil {
		return "", errNotOpen
	}

	var hash string
	err := s.db.QueryRow(
		`SELECT content_hash FROM files WHERE path = ? AND error IS NULL`, path,
	).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get content hash: %w", err)
	}
	return hash, nil
}

// SaveFile upserts the record for rec.Path and replaces its stored tree.
func (s *SQLiteStore) SaveFile(runID string, rec FileRecord, root *gast.Node) (err error) {
	if s.db == nil {
		return errNotOpen
	}
	if rec.ExtractedAt.IsZero() {
		rec.ExtractedAt = time.Now().UTC()
	}
	rec.Nodes = 0
	if root != nil {
		rec.Nodes = gast.Compute(root).Nodes
		rec.Error = ""
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var fileID int64
	err = tx.QueryRow(`INSERT INTO files (path, run_id, grammar, content_hash, nodes, error, extracted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (path) DO UPDATE SET
			run_id = excluded.run_id,
			grammar = excluded.grammar,
			content_hash = excluded.content_hash,
			nodes = excluded.nodes,
			error = excluded.error,
			extracted_at = excluded.extracted_at
		RETURNING id`,
		rec.Path, runID, rec.Grammar, rec.ContentHash, rec.Nodes, nullString(rec.Error), rec.ExtractedAt,
	).Scan(&fileID)
	if err != nil {
		return fmt.Errorf("failed to save file %s: %w", rec.Path, err)
	}

	if _, err = tx.Exec(`DELETE FROM nodes WHERE file_id = ?`, fileID); err != nil {
		return fmt.Errorf("failed to clear nodes of %s: %w", rec.Path, err)
	}
	if root != nil {
		if err = insertNodes(tx, fileID, root); err != nil {
			return fmt.Errorf("failed to save nodes of %s: %w", rec.Path, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit file %s: %w", rec.Path, err)
	}

	s.logger.Debug("saved file",
		slog.String("path", rec.Path),
		slog.Int("nodes", rec.Nodes),
		slog.Bool("failed", rec.Error != ""))
	return nil
}

// insertNodes stores root's subtree in pre-order. Each row keeps the
// sequence number of its parent, so sibling order is the order of seq.
func insertNodes(tx *sql.Tx, fileID int64, root *gast.Node) error {
	stmt, err := tx.Prepare(`INSERT INTO nodes (file_id, seq, parent_seq, kind, name, declared_type, value, else_if,
		start_line, start_column, start_offset, end_line, end_column, end_offset)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	type frame struct {
		n      *gast.Node
		parent sql.NullInt64
	}
	stack := []frame{{n: root}}
	var seq int64
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		sp := f.n.Span()
		if _, err := stmt.Exec(fileID, seq, f.parent, string(f.n.Kind()), f.n.Name(), f.n.DeclaredType(),
			f.n.Value(), f.n.ElseIf(),
			sp.Start.Line, sp.Start.Column, sp.Start.Offset, sp.End.Line, sp.End.Column, sp.End.Offset,
		); err != nil {
			return err
		}

		for i := f.n.NumChildren() - 1; i >= 0; i-- {
			stack = append(stack, frame{n: f.n.Child(i), parent: sql.NullInt64{Int64: seq, Valid: true}})
		}
		seq++
	}
	return nil
}

// DeleteFile removes the record and tree of path.
func (s *SQLiteStore) DeleteFile(path string) error {
	if s.db == nil {
		return errNotOpen
	}
	if _, err := s.db.Exec(`DELETE FROM files WHERE path = ?`, path); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", path, err)
	}
	return nil
}

const fileColumns = `id, path, run_id, grammar, content_hash, nodes, error, extracted_at`

// GetFile retrieves the record of path.
func (s *SQLiteStore) GetFile(path string) (*FileRecord, error) {
	if s.db == nil {
		return nil, errNotOpen
	}

	rec, err := scanFile(s.db.QueryRow(`SELECT `+fileColumns+` FROM files WHERE path = ?`, path))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("file %s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return rec, nil
}

// ListFiles returns all file records ordered by path.
func (s *SQLiteStore) ListFiles() ([]*FileRecord, error) {
	if s.db == nil {
		return nil, errNotOpen
	}

	rows, err := s.db.Query(`SELECT ` + fileColumns + ` FROM files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var files []*FileRecord
	for rows.Next() {
		rec, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, rec)
	}
	return files, rows.Err()
}

func scanFile(row scanner) (*FileRecord, error) {
	rec := &FileRecord{}
	var errMsg sql.NullString
	if err := row.Scan(&rec.ID, &rec.Path, &rec.RunID, &rec.Grammar, &rec.ContentHash, &rec.Nodes,
		&errMsg, &rec.ExtractedAt); err != nil {
		return nil, err
	}
	rec.Error = errMsg.String
	return rec, nil
}

// LoadTree rebuilds the stored tree of path.
func (s *SQLiteStore) LoadTree(path string) (*gast.Node, error) {
	rec, err := s.GetFile(path)
	if err != nil {
		return nil, err
	}
	if rec.Error != "" {
		return nil, fmt.Errorf("file %s has no tree, its last extraction failed: %s", path, rec.Error)
	}

	rows, err := s.db.Query(`SELECT seq, parent_seq, kind, name, declared_type, value, else_if,
		start_line, start_column, start_offset, end_line, end_column, end_offset
		FROM nodes WHERE file_id = ? ORDER BY seq`, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load nodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	type flat struct {
		ex       gast.Exchange
		children []int
	}
	var items []*flat
	index := make(map[int64]int)
	for rows.Next() {
		var (
			seq    int64
			parent sql.NullInt64
			f      flat
			sp     token.Span
		)
		if err := rows.Scan(&seq, &parent, &f.ex.Kind, &f.ex.Name, &f.ex.DeclaredType, &f.ex.Value, &f.ex.ElseIf,
			&sp.Start.Line, &sp.Start.Column, &sp.Start.Offset, &sp.End.Line, &sp.End.Column, &sp.End.Offset,
		); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		f.ex.Span = sp
		index[seq] = len(items)
		items = append(items, &f)
		if parent.Valid {
			p, ok := index[parent.Int64]
			if !ok {
				return nil, fmt.Errorf("node %d of %s refers to unknown parent %d", seq, path, parent.Int64)
			}
			items[p].children = append(items[p].children, index[seq])
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load nodes: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("tree of %s: %w", path, ErrNotFound)
	}

	var build func(i int) gast.Exchange
	build = func(i int) gast.Exchange {
		ex := items[i].ex
		ex.Children = make([]gast.Exchange, 0, len(items[i].children))
		for _, c := range items[i].children {
			ex.Children = append(ex.Children, build(c))
		}
		return ex
	}
	return gast.FromExchange(build(0))
}
