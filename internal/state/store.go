// Package state persists extraction runs and the generic ASTs they produce
// in SQLite, so unchanged files can be skipped and trees reloaded later.
package state

import (
	"errors"
	"time"

	"github.com/leapstack-labs/gast/pkg/gast"
)

// ErrNotFound is returned when a file or run has no stored record.
var ErrNotFound = errors.New("not found")

// RunStatus is the lifecycle state of a run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one extraction pass over a set of files.
type Run struct {
	ID          string     `json:"id" yaml:"id"`
	Status      RunStatus  `json:"status" yaml:"status"`
	StartedAt   time.Time  `json:"started_at" yaml:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Files       int        `json:"files" yaml:"files"`
	Failures    int        `json:"failures" yaml:"failures"`
	Error       string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// FileRecord is the latest stored outcome for one source file.
type FileRecord struct {
	ID          int64     `json:"id" yaml:"id"`
	Path        string    `json:"path" yaml:"path"`
	RunID       string    `json:"run_id" yaml:"run_id"`
	Grammar     string    `json:"grammar" yaml:"grammar"`
	ContentHash string    `json:"content_hash" yaml:"content_hash"`
	Nodes       int       `json:"nodes" yaml:"nodes"`
	Error       string    `json:"error,omitempty" yaml:"error,omitempty"`
	ExtractedAt time.Time `json:"extracted_at" yaml:"extracted_at"`
}

// Store is the persistence used by the extraction engine.
type Store interface {
	CreateRun() (*Run, error)
	CompleteRun(id string, status RunStatus, files, failures int, errMsg string) error
	GetRun(id string) (*Run, error)
	ListRuns(limit int) ([]*Run, error)

	// GetContentHash returns the hash of the last successful extraction of
	// path, or "" when there is none.
	GetContentHash(path string) (string, error)
	// SaveFile records the outcome for rec.Path. A nil root records a
	// failure and drops any previously stored tree.
	SaveFile(runID string, rec FileRecord, root *gast.Node) error
	DeleteFile(path string) error
	GetFile(path string) (*FileRecord, error)
	ListFiles() ([]*FileRecord, error)
	LoadTree(path string) (*gast.Node, error)

	Close() error
}
