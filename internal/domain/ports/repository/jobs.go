package repository

import (
	"ruga-file-analysis/internal/domain/model"
)

// JobRegistry is the process-wide job table. Created empty at startup,
// discarded at process exit; entries are never deleted while running.
type JobRegistry interface {
	// Create registers a new job with every listed file pending.
	// Fails with domain.ErrInvalidArgument when filePaths is empty.
	Create(kind model.JobKind, rootPath, targetPath string, filePaths []string) (*model.Job, error)

	// Get returns a snapshot of one job, file statuses included.
	// Fails with domain.ErrNotFound for unknown ids.
	Get(jobID string) (*model.Job, error)

	// List returns snapshots of all jobs; per-file detail only when
	// includeFileStatuses is set.
	List(includeFileStatuses bool) []*model.Job

	// UpdateFileStatus applies one per-file transition atomically with
	// the counter increments and aggregate recompute. Transitions that
	// would move a status backward are ignored.
	UpdateFileStatus(jobID, filePath string, status model.FileStatus, errorMessage string) error
}
