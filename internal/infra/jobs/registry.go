// File: internal/infra/jobs/registry.go
package jobs

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ruga-file-analysis/internal/domain"
	"ruga-file-analysis/internal/domain/model"
	"ruga-file-analysis/internal/domain/ports/repository"
	"ruga-file-analysis/internal/infra/metrics"
)

// Compile-time check
var _ repository.JobRegistry = (*Registry)(nil)

// Registry is the process-wide in-memory job table. Starts empty,
// is never persisted and is discarded with the process.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*model.Job
	log  *zerolog.Logger
}

func NewRegistry(log *zerolog.Logger) *Registry {
	return &Registry{jobs: map[string]*model.Job{}, log: log}
}

func (r *Registry) Create(kind model.JobKind, rootPath, targetPath string, filePaths []string) (*model.Job, error) {
	if len(filePaths) == 0 {
		return nil, fmt.Errorf("%w: job needs at least one file", domain.ErrInvalidArgument)
	}

	statuses := make(map[string]model.FileStatus, len(filePaths))
	for _, p := range filePaths {
		statuses[p] = model.FileStatusPending
	}

	job := &model.Job{
		ID:           uuid.NewString(),
		Kind:         kind,
		RootPath:     rootPath,
		TargetPath:   targetPath,
		Status:       model.JobStatusInProcess,
		FilesQueued:  len(filePaths),
		CreatedAt:    time.Now(),
		FileStatuses: statuses,
	}

	r.mu.Lock()
	r.jobs[job.ID] = job
	r.mu.Unlock()

	metrics.IncJobCreated(string(kind))
	r.log.Info().Str("job_id", job.ID).Str("kind", string(kind)).
		Int("files_queued", job.FilesQueued).Msg("job created")
	return snapshot(job, true), nil
}

func (r *Registry) Get(jobID string) (*model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", jobID, domain.ErrNotFound)
	}
	return snapshot(job, true), nil
}

func (r *Registry) List(includeFileStatuses bool) []*model.Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		out = append(out, snapshot(job, includeFileStatuses))
	}
	return out
}

// UpdateFileStatus applies one per-file transition. The counter bump and
// the aggregate recompute happen under the same lock, so concurrent
// workers on one job never lose updates.
func (r *Registry) UpdateFileStatus(jobID, filePath string, status model.FileStatus, errorMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[jobID]
	if !ok {
		return fmt.Errorf("job %s: %w", jobID, domain.ErrNotFound)
	}
	prev, ok := job.FileStatuses[filePath]
	if !ok {
		return fmt.Errorf("job %s has no file %s: %w", jobID, filePath, domain.ErrNotFound)
	}
	if prev == status {
		return nil
	}
	if !prev.CanTransitionTo(status) {
		r.log.Warn().Str("job_id", jobID).Str("path", filePath).
			Str("from", string(prev)).Str("to", string(status)).
			Msg("ignoring backward file status transition")
		return nil
	}

	job.FileStatuses[filePath] = status
	switch status {
	case model.FileStatusAnalyzed, model.FileStatusNotFound:
		// not_found is terminal but not a failure
		job.FilesProcessed++
	case model.FileStatusError:
		job.FilesFailed++
	}
	if errorMessage != "" {
		job.ErrorMessage = errorMessage
	}
	if status.Terminal() {
		metrics.IncFileOutcome(string(status))
	}

	job.Status = aggregate(job.FileStatuses)
	return nil
}

// aggregate derives the job status purely from the per-file statuses.
func aggregate(statuses map[string]model.FileStatus) model.JobStatus {
	allTerminal := true
	anyError := false
	for _, s := range statuses {
		if !s.Terminal() {
			allTerminal = false
		}
		if s == model.FileStatusError {
			anyError = true
		}
	}
	switch {
	case allTerminal && anyError:
		return model.JobStatusError
	case allTerminal:
		return model.JobStatusAnalyzed
	default:
		return model.JobStatusInProcess
	}
}

func snapshot(job *model.Job, includeFiles bool) *model.Job {
	cp := *job
	if includeFiles {
		fs := make(map[string]model.FileStatus, len(job.FileStatuses))
		for k, v := range job.FileStatuses {
			fs[k] = v
		}
		cp.FileStatuses = fs
	} else {
		cp.FileStatuses = nil
	}
	return &cp
}
