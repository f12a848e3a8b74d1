//go:build !integration

package jobs

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"ruga-file-analysis/internal/domain"
	"ruga-file-analysis/internal/domain/model"
)

func testRegistry() *Registry {
	log := zerolog.Nop()
	return NewRegistry(&log)
}

func TestCreateRejectsEmptyFileList(t *testing.T) {
	r := testRegistry()
	_, err := r.Create(model.JobKindFolder, "/docs", "/docs", nil)
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestCreateStartsInProcessWithPendingFiles(t *testing.T) {
	r := testRegistry()
	job, err := r.Create(model.JobKindFolder, "/docs", "/docs", []string{"/docs/a.txt", "/docs/b.txt"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if job.Status != model.JobStatusInProcess {
		t.Errorf("status = %s, want in_process", job.Status)
	}
	if job.FilesQueued != 2 || job.FilesProcessed != 0 || job.FilesFailed != 0 {
		t.Errorf("counts = %d/%d/%d, want 2/0/0", job.FilesQueued, job.FilesProcessed, job.FilesFailed)
	}
	for p, s := range job.FileStatuses {
		if s != model.FileStatusPending {
			t.Errorf("file %s status = %s, want pending", p, s)
		}
	}
}

func TestGetUnknownJob(t *testing.T) {
	r := testRegistry()
	if _, err := r.Get("nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateFileStatusCountsAndAggregate(t *testing.T) {
	r := testRegistry()
	job, _ := r.Create(model.JobKindFolder, "/docs", "/docs",
		[]string{"/docs/a.txt", "/docs/b.txt", "/docs/c.txt"})

	// a: analyzed, b: analyzed, c: not_found (deleted before its turn)
	mustUpdate(t, r, job.ID, "/docs/a.txt", model.FileStatusInProcess, "")
	mustUpdate(t, r, job.ID, "/docs/a.txt", model.FileStatusAnalyzed, "")
	mustUpdate(t, r, job.ID, "/docs/b.txt", model.FileStatusInProcess, "")
	mustUpdate(t, r, job.ID, "/docs/b.txt", model.FileStatusAnalyzed, "")
	mustUpdate(t, r, job.ID, "/docs/c.txt", model.FileStatusNotFound, "")

	got, err := r.Get(job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.JobStatusAnalyzed {
		t.Errorf("aggregate = %s, want analyzed", got.Status)
	}
	if got.FilesProcessed != 3 || got.FilesFailed != 0 {
		t.Errorf("processed/failed = %d/%d, want 3/0", got.FilesProcessed, got.FilesFailed)
	}
	if got.FilesProcessed+got.FilesFailed != got.FilesQueued {
		t.Errorf("processed+failed != queued once terminal: %d+%d vs %d",
			got.FilesProcessed, got.FilesFailed, got.FilesQueued)
	}
}

func TestErrorFileYieldsErrorAggregate(t *testing.T) {
	r := testRegistry()
	job, _ := r.Create(model.JobKindFolder, "/docs", "/docs", []string{"/docs/a.txt", "/docs/b.txt"})

	mustUpdate(t, r, job.ID, "/docs/a.txt", model.FileStatusInProcess, "")
	mustUpdate(t, r, job.ID, "/docs/a.txt", model.FileStatusError, "extraction failed")

	got, _ := r.Get(job.ID)
	if got.Status != model.JobStatusInProcess {
		t.Errorf("aggregate with pending sibling = %s, want in_process", got.Status)
	}

	mustUpdate(t, r, job.ID, "/docs/b.txt", model.FileStatusInProcess, "")
	mustUpdate(t, r, job.ID, "/docs/b.txt", model.FileStatusAnalyzed, "")

	got, _ = r.Get(job.ID)
	if got.Status != model.JobStatusError {
		t.Errorf("aggregate = %s, want error", got.Status)
	}
	if got.ErrorMessage != "extraction failed" {
		t.Errorf("error message = %q", got.ErrorMessage)
	}
}

func TestStatusNeverRegresses(t *testing.T) {
	r := testRegistry()
	job, _ := r.Create(model.JobKindFile, "/docs", "a.txt", []string{"/docs/a.txt"})

	mustUpdate(t, r, job.ID, "/docs/a.txt", model.FileStatusInProcess, "")
	mustUpdate(t, r, job.ID, "/docs/a.txt", model.FileStatusAnalyzed, "")

	// Ignored, not an error; counters stay put.
	mustUpdate(t, r, job.ID, "/docs/a.txt", model.FileStatusPending, "")
	mustUpdate(t, r, job.ID, "/docs/a.txt", model.FileStatusError, "late failure")

	got, _ := r.Get(job.ID)
	if got.FileStatuses["/docs/a.txt"] != model.FileStatusAnalyzed {
		t.Errorf("status regressed to %s", got.FileStatuses["/docs/a.txt"])
	}
	if got.FilesProcessed != 1 || got.FilesFailed != 0 {
		t.Errorf("counters moved on ignored transition: %d/%d", got.FilesProcessed, got.FilesFailed)
	}
}

func TestConcurrentUpdatesDoNotLoseCounts(t *testing.T) {
	r := testRegistry()
	const n = 100
	paths := make([]string, n)
	for i := range paths {
		paths[i] = fmt.Sprintf("/docs/f%03d.txt", i)
	}
	job, err := r.Create(model.JobKindFolder, "/docs", "/docs", paths)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var wg sync.WaitGroup
	for _, p := range paths {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			_ = r.UpdateFileStatus(job.ID, path, model.FileStatusInProcess, "")
			_ = r.UpdateFileStatus(job.ID, path, model.FileStatusAnalyzed, "")
		}(p)
	}
	wg.Wait()

	got, _ := r.Get(job.ID)
	if got.FilesProcessed != n {
		t.Errorf("processed = %d, want %d", got.FilesProcessed, n)
	}
	if got.Status != model.JobStatusAnalyzed {
		t.Errorf("aggregate = %s, want analyzed", got.Status)
	}
}

func TestListIncludesFileStatusesOnlyOnRequest(t *testing.T) {
	r := testRegistry()
	if _, err := r.Create(model.JobKindFolder, "/docs", "/docs", []string{"/docs/a.txt"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	summaries := r.List(false)
	if len(summaries) != 1 || summaries[0].FileStatuses != nil {
		t.Errorf("summary list should omit file statuses")
	}
	detailed := r.List(true)
	if len(detailed) != 1 || len(detailed[0].FileStatuses) != 1 {
		t.Errorf("detailed list should include file statuses")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	r := testRegistry()
	job, _ := r.Create(model.JobKindFolder, "/docs", "/docs", []string{"/docs/a.txt"})

	snap, _ := r.Get(job.ID)
	snap.FileStatuses["/docs/a.txt"] = model.FileStatusError

	fresh, _ := r.Get(job.ID)
	if fresh.FileStatuses["/docs/a.txt"] != model.FileStatusPending {
		t.Errorf("mutating a snapshot leaked into the registry")
	}
}

func mustUpdate(t *testing.T, r *Registry, jobID, path string, status model.FileStatus, msg string) {
	t.Helper()
	if err := r.UpdateFileStatus(jobID, path, status, msg); err != nil {
		t.Fatalf("update %s -> %s: %v", path, status, err)
	}
}
