package model

import "time"

type JobKind string

const (
	JobKindFolder JobKind = "folder"
	JobKindFile   JobKind = "file"
)

// FileStatus is the per-file analysis state. Transitions are monotonic:
// pending -> in_process -> analyzed|error, with not_found reachable
// directly from pending when the file vanished before the worker got to it.
type FileStatus string

const (
	FileStatusPending   FileStatus = "pending"
	FileStatusInProcess FileStatus = "in_process"
	FileStatusAnalyzed  FileStatus = "analyzed"
	FileStatusError     FileStatus = "error"
	FileStatusNotFound  FileStatus = "not_found"
)

// Terminal reports whether no further transition is allowed from s.
func (s FileStatus) Terminal() bool {
	switch s {
	case FileStatusAnalyzed, FileStatusError, FileStatusNotFound:
		return true
	}
	return false
}

// CanTransitionTo encodes the transition table. A status never moves
// backward and terminal states accept nothing.
func (s FileStatus) CanTransitionTo(next FileStatus) bool {
	if s.Terminal() {
		return false
	}
	switch s {
	case FileStatusPending:
		return next == FileStatusInProcess || next == FileStatusNotFound ||
			next == FileStatusAnalyzed || next == FileStatusError
	case FileStatusInProcess:
		return next == FileStatusAnalyzed || next == FileStatusError
	}
	return false
}

// JobStatus is the aggregate status of a job, always recomputed from the
// per-file statuses.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusInProcess JobStatus = "in_process"
	JobStatusAnalyzed  JobStatus = "analyzed"
	JobStatusError     JobStatus = "error"
)

// Job tracks one analysis submission covering one or many files.
// Lives only in the process-wide registry; never persisted.
type Job struct {
	ID             string                `json:"job_id"`
	Kind           JobKind               `json:"job_type"`
	RootPath       string                `json:"root_path"`
	TargetPath     string                `json:"target_path"`
	Status         JobStatus             `json:"status"`
	FilesQueued    int                   `json:"files_queued"`
	FilesProcessed int                   `json:"files_processed"`
	FilesFailed    int                   `json:"files_failed"`
	CreatedAt      time.Time             `json:"created_at"`
	ErrorMessage   string                `json:"error_message,omitempty"`
	FileStatuses   map[string]FileStatus `json:"file_statuses,omitempty"`
}
