package state

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/gast/internal/testutil"
	"github.com/leapstack-labs/gast/pkg/gast"
	"github.com/leapstack-labs/gast/pkg/token"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

type ref struct{ span token.Span }

func (r ref) Span() token.Span { return r.span }
func (r ref) Text() string     { return "" }

func at(start, end int) ref {
	return ref{token.Span{
		Start: token.Position{Line: 1, Column: start + 1, Offset: start},
		End:   token.Position{Line: 1, Column: end + 1, Offset: end},
	}}
}

// sampleTree builds: class A { void m() { if (x) { f(); } else if (y) {} } }
func sampleTree(t *testing.T) *gast.Node {
	t.Helper()
	b := gast.NewBuilder("A.java")
	b.AddClass(at(0, 60), "A")
	b.AddMethod(at(10, 58), "m", "void")
	b.AddIfStatement(at(21, 56), "x", false)
	b.AddVariable(at(25, 26), "x", "")
	b.AddGenericStatement(at(30, 34), "")
	b.AddFunctionCall(at(30, 33), "f")
	b.ExitStatementOrExpression()
	b.ExitStatementOrExpression()
	b.AddIfStatement(at(42, 56), "y", true)
	b.ExitElseIfOrElseStatement()
	b.ExitIfStatement()
	b.ExitFunctionOrMethodDeclaration()
	b.ExitClass()
	root, err := b.Finish()
	require.NoError(t, err)
	return root
}

func TestSQLiteStore_OpenMigrates(t *testing.T) {
	store := setupTestStore(t)

	version, err := store.MigrationVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	for _, table := range []string{"runs", "files", "nodes"} {
		rows, err := store.db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		require.NoError(t, err, "table %s", table)
		_ = rows.Close()
	}
}

func TestSQLiteStore_OpenFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".gast", "state.db")

	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(path))
	assert.Equal(t, path, store.Path())
	require.NoError(t, store.Close())

	// Reopening applies no migration twice.
	store = NewSQLiteStore(nil)
	require.NoError(t, store.Open(path))
	require.NoError(t, store.Close())
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)

	_, err := store.CreateRun()
	assert.ErrorIs(t, err, errNotOpen)
	_, err = store.GetContentHash("a")
	assert.ErrorIs(t, err, errNotOpen)
	_, err = store.MigrationVersion(context.Background())
	assert.ErrorIs(t, err, errNotOpen)
	assert.Error(t, store.SaveFile("r", FileRecord{Path: "a"}, nil))
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	tests := []struct {
		name   string
		status RunStatus
		errMsg string
	}{
		{name: "completed", status: RunStatusCompleted},
		{name: "failed", status: RunStatusFailed, errMsg: "persistence failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupTestStore(t)

			run, err := store.CreateRun()
			require.NoError(t, err)
			assert.NotEmpty(t, run.ID)
			assert.Equal(t, RunStatusRunning, run.Status)

			require.NoError(t, store.CompleteRun(run.ID, tt.status, 3, 1, tt.errMsg))

			got, err := store.GetRun(run.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, 3, got.Files)
			assert.Equal(t, 1, got.Failures)
			assert.Equal(t, tt.errMsg, got.Error)
			require.NotNil(t, got.CompletedAt)
		})
	}
}

func TestSQLiteStore_RunNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetRun("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(store.CompleteRun("missing", RunStatusCompleted, 0, 0, ""), ErrNotFound))
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	store := setupTestStore(t)

	var ids []string
	for range 3 {
		run, err := store.CreateRun()
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}

	runs, err := store.ListRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID, "most recent first")
	assert.Equal(t, ids[1], runs[1].ID)
}

func TestSQLiteStore_SaveAndLoadTree(t *testing.T) {
	store := setupTestStore(t)
	root := sampleTree(t)

	run, err := store.CreateRun()
	require.NoError(t, err)

	require.NoError(t, store.SaveFile(run.ID, FileRecord{
		Path: "src/A.java", Grammar: "java", ContentHash: "abc",
	}, root))

	rec, err := store.GetFile("src/A.java")
	require.NoError(t, err)
	assert.Equal(t, gast.Compute(root).Nodes, rec.Nodes)
	assert.Equal(t, run.ID, rec.RunID)
	assert.Empty(t, rec.Error)

	hash, err := store.GetContentHash("src/A.java")
	require.NoError(t, err)
	assert.Equal(t, "abc", hash)

	back, err := store.LoadTree("src/A.java")
	require.NoError(t, err)
	assert.Equal(t, root.Exchange(), back.Exchange())

	elseIf := gast.Find(back, func(n *gast.Node) bool { return n.ElseIf() })
	require.NotNil(t, elseIf)
	assert.Equal(t, "y", elseIf.Value())
}

func TestSQLiteStore_SaveFailureDropsTree(t *testing.T) {
	store := setupTestStore(t)
	run, err := store.CreateRun()
	require.NoError(t, err)

	require.NoError(t, store.SaveFile(run.ID, FileRecord{Path: "A.java", Grammar: "java", ContentHash: "v1"}, sampleTree(t)))
	require.NoError(t, store.SaveFile(run.ID, FileRecord{
		Path: "A.java", Grammar: "java", ContentHash: "v2", Error: "syntax error",
	}, nil))

	hash, err := store.GetContentHash("A.java")
	require.NoError(t, err)
	assert.Empty(t, hash, "a failed file is never considered unchanged")

	_, err = store.LoadTree("A.java")
	assert.ErrorContains(t, err, "syntax error")

	var count int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM nodes`).Scan(&count))
	assert.Zero(t, count)
}

func TestSQLiteStore_DeleteAndList(t *testing.T) {
	store := setupTestStore(t)
	run, err := store.CreateRun()
	require.NoError(t, err)

	for _, p := range []string{"b.py", "a.java"} {
		require.NoError(t, store.SaveFile(run.ID, FileRecord{Path: p, Grammar: "x", ContentHash: p}, sampleTree(t)))
	}

	files, err := store.ListFiles()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.java", files[0].Path)

	require.NoError(t, store.DeleteFile("a.java"))
	_, err = store.GetFile("a.java")
	assert.True(t, errors.Is(err, ErrNotFound))

	var count int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM nodes`).Scan(&count))
	assert.Equal(t, gast.Compute(sampleTree(t)).Nodes, count, "nodes cascade with their file")
}

func TestSQLiteStore_DatabaseErrors(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		run       func(s *SQLiteStore) error
		errMsg    string
	}{
		{
			name: "create run",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO runs").WillReturnError(assert.AnError)
			},
			run: func(s *SQLiteStore) error {
				_, err := s.CreateRun()
				return err
			},
			errMsg: "failed to create run",
		},
		{
			name: "content hash",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT content_hash FROM files").WillReturnError(assert.AnError)
			},
			run: func(s *SQLiteStore) error {
				_, err := s.GetContentHash("a.java")
				return err
			},
			errMsg: "failed to get content hash",
		},
		{
			name: "save rolls back on node failure",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery("INSERT INTO files").
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
				mock.ExpectExec("DELETE FROM nodes").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectPrepare("INSERT INTO nodes").ExpectExec().WillReturnError(assert.AnError)
				mock.ExpectRollback()
			},
			run: func(s *SQLiteStore) error {
				return s.SaveFile("run", FileRecord{Path: "a.java"}, sampleTree(t))
			},
			errMsg: "failed to save nodes of a.java",
		},
		{
			name: "list runs",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, status").WillReturnError(assert.AnError)
			},
			run: func(s *SQLiteStore) error {
				_, err := s.ListRuns(10)
				return err
			},
			errMsg: "failed to list runs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			tt.setupMock(mock)
			store := &SQLiteStore{db: db, logger: testutil.NewTestLogger(t)}

			err = tt.run(store)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.ErrorIs(t, err, assert.AnError)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
