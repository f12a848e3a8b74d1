// File: internal/usecase/analysis_uc.go
package usecase

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"ruga-file-analysis/internal/domain"
	"ruga-file-analysis/internal/domain/model"
	"ruga-file-analysis/internal/domain/ports/adapter"
	"ruga-file-analysis/internal/domain/ports/repository"
	"ruga-file-analysis/internal/infra/ruga"
	"ruga-file-analysis/internal/infra/worker"
)

// AnalysisUC creates analysis jobs and feeds their per-file tasks to the
// worker pool. Job status is polled through the registry.
type AnalysisUC struct {
	registry repository.JobRegistry
	store    repository.MetadataStore
	analyzer *worker.Analyzer
	pool     *worker.Pool
	parser   adapter.DocumentParser // nil when no converter is configured
	log      *zerolog.Logger
}

func NewAnalysisUC(
	registry repository.JobRegistry,
	store repository.MetadataStore,
	analyzer *worker.Analyzer,
	pool *worker.Pool,
	docParser adapter.DocumentParser,
	log *zerolog.Logger,
) *AnalysisUC {
	return &AnalysisUC{
		registry: registry,
		store:    store,
		analyzer: analyzer,
		pool:     pool,
		parser:   docParser,
		log:      log,
	}
}

// StartFolder queues analysis for every analyzable file under rootPath
// that has no sidecar yet.
func (uc *AnalysisUC) StartFolder(ctx context.Context, rootPath string) (*model.Job, error) {
	if err := ValidateRootPath(rootPath); err != nil {
		return nil, err
	}
	info, err := os.Stat(rootPath)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("directory %s: %w", rootPath, domain.ErrNotFound)
	}

	paths, err := uc.candidates(rootPath)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no unanalyzed files under %s", domain.ErrInvalidArgument, rootPath)
	}

	job, err := uc.registry.Create(model.JobKindFolder, rootPath, rootPath, paths)
	if err != nil {
		return nil, err
	}
	uc.enqueue(job.ID, paths)
	return job, nil
}

// StartFile queues analysis for one file. The file is re-analyzed even
// when a sidecar exists (the analyzer reuses it if still readable).
func (uc *AnalysisUC) StartFile(ctx context.Context, absolutePath, rootPath string) (*model.Job, error) {
	if absolutePath == "" {
		return nil, fmt.Errorf("absolute_path required: %w", domain.ErrInvalidArgument)
	}
	if strings.HasSuffix(absolutePath, ruga.Ext) {
		return nil, fmt.Errorf("%s is a sidecar, not a document: %w", absolutePath, domain.ErrInvalidArgument)
	}
	info, err := os.Stat(absolutePath)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("file %s: %w", absolutePath, domain.ErrNotFound)
	}

	if rootPath == "" {
		rootPath = filepath.Dir(absolutePath)
	}
	rel, err := filepath.Rel(rootPath, absolutePath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("%s is outside root %s: %w", absolutePath, rootPath, domain.ErrInvalidArgument)
	}

	job, err := uc.registry.Create(model.JobKindFile, rootPath, filepath.ToSlash(rel), []string{absolutePath})
	if err != nil {
		return nil, err
	}
	uc.enqueue(job.ID, []string{absolutePath})
	return job, nil
}

func (uc *AnalysisUC) Get(jobID string) (*model.Job, error) {
	return uc.registry.Get(jobID)
}

func (uc *AnalysisUC) List(includeFileStatuses bool) []*model.Job {
	jobs := uc.registry.List(includeFileStatuses)
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.Before(jobs[j].CreatedAt) })
	return jobs
}

func (uc *AnalysisUC) enqueue(jobID string, paths []string) {
	for _, p := range paths {
		if err := uc.pool.Submit(uc.analyzer.Task(jobID, p)); err != nil {
			uc.log.Error().Err(err).Str("job_id", jobID).Str("path", p).Msg("enqueue failed")
		}
	}
}

// candidates walks rootPath and returns every regular file that the
// pipeline can extract text from and that has no sidecar yet.
func (uc *AnalysisUC) candidates(rootPath string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, ruga.Ext) {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !worker.IsTextExt(ext) && (uc.parser == nil || !uc.parser.Supports(ext)) {
			return nil
		}
		if uc.store.Has(path) {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", rootPath, err)
	}
	sort.Strings(out)
	return out, nil
}
