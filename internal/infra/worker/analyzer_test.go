//go:build !integration

package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"ruga-file-analysis/internal/domain/model"
	"ruga-file-analysis/internal/domain/ports/adapter"
	"ruga-file-analysis/internal/domain/ports/repository"
	"ruga-file-analysis/internal/infra/jobs"
	"ruga-file-analysis/internal/infra/ruga"
)

// --- Fakes ---

type fakeAI struct {
	mu           sync.Mutex
	extractCalls int
	ExtractError error
}

func (f *fakeAI) ExtractMetadata(ctx context.Context, fileName, text string) (*model.MetadataRecord, error) {
	f.mu.Lock()
	f.extractCalls++
	f.mu.Unlock()
	if f.ExtractError != nil {
		return nil, f.ExtractError
	}
	return &model.MetadataRecord{
		Title:       fileName,
		Categories:  []string{"Test"},
		Summary:     "summary of " + fileName,
		LLMModel:    "fake",
		ExtractedAt: time.Now(),
	}, nil
}

func (f *fakeAI) GeneratePlan(ctx context.Context, files []model.FileSummary) (*model.FolderStructure, error) {
	return &model.FolderStructure{RootFolderName: "Organized"}, nil
}

func (f *fakeAI) ChatStream(ctx context.Context, messages []adapter.Message, onToken adapter.TokenFunc) error {
	return onToken("ok")
}

func (f *fakeAI) ListModels(ctx context.Context) ([]string, error) { return []string{"fake"}, nil }

func (f *fakeAI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.extractCalls
}

type fakeIndex struct {
	mu      sync.Mutex
	ingests map[string]int // file id -> chunk count returned
	Error   error
}

func (f *fakeIndex) Ingest(ctx context.Context, rec *model.MetadataRecord, text string) (int, error) {
	if f.Error != nil {
		return 0, f.Error
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ingests == nil {
		f.ingests = map[string]int{}
	}
	f.ingests[rec.FileID] = 1
	return 1, nil
}

func (f *fakeIndex) Search(ctx context.Context, q string, flt model.ChunkFilters, k int) ([]model.ScoredChunk, error) {
	return nil, nil
}
func (f *fakeIndex) Remove(fileID string) {}
func (f *fakeIndex) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ingests)
}

type passTruncator struct{}

func (passTruncator) Truncate(text string, maxTokens int) string { return text }

// --- Helpers ---

func newTestAnalyzer(t *testing.T, ai *fakeAI, index repository.VectorIndex) (*Analyzer, *jobs.Registry, *ruga.Store) {
	t.Helper()
	log := zerolog.Nop()
	registry := jobs.NewRegistry(&log)
	store := ruga.NewStore()
	an := NewAnalyzer(registry, store, ai, nil, passTruncator{}, index, 1000, &log)
	return an, registry, store
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// --- Tests ---

func TestAnalyzeWritesSidecarAndMarksAnalyzed(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.txt", "hello world")

	ai := &fakeAI{}
	index := &fakeIndex{}
	an, registry, store := newTestAnalyzer(t, ai, index)

	job, _ := registry.Create(model.JobKindFile, dir, "doc.txt", []string{path})
	an.Analyze(context.Background(), job.ID, path)

	got, _ := registry.Get(job.ID)
	if got.FileStatuses[path] != model.FileStatusAnalyzed {
		t.Fatalf("status = %s, want analyzed", got.FileStatuses[path])
	}
	if !store.Has(path) {
		t.Fatalf("sidecar missing")
	}
	rec, err := store.Load(path)
	if err != nil {
		t.Fatalf("load sidecar: %v", err)
	}
	if rec.FileID == "" || rec.ContentHash == "" {
		t.Errorf("record missing identity: id=%q hash=%q", rec.FileID, rec.ContentHash)
	}
	if rec.FileType != "txt" {
		t.Errorf("file type = %q, want txt", rec.FileType)
	}
	if rec.ChunkCount != 1 {
		t.Errorf("chunk count = %d, want 1", rec.ChunkCount)
	}
	if index.Count() != 1 {
		t.Errorf("index holds %d files, want 1", index.Count())
	}
}

func TestAnalyzeMissingFileIsNotFoundNotFailure(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "alpha")
	b := writeFile(t, dir, "b.txt", "beta")
	c := writeFile(t, dir, "c.txt", "gamma")

	ai := &fakeAI{}
	an, registry, _ := newTestAnalyzer(t, ai, &fakeIndex{})

	job, _ := registry.Create(model.JobKindFolder, dir, dir, []string{a, b, c})

	// c disappears before the worker reaches it
	if err := os.Remove(c); err != nil {
		t.Fatalf("remove: %v", err)
	}

	for _, p := range []string{a, b, c} {
		an.Analyze(context.Background(), job.ID, p)
	}

	got, _ := registry.Get(job.ID)
	if got.FilesQueued != 3 {
		t.Errorf("queued = %d, want 3", got.FilesQueued)
	}
	if got.FileStatuses[c] != model.FileStatusNotFound {
		t.Errorf("deleted file status = %s, want not_found", got.FileStatuses[c])
	}
	if got.FileStatuses[a] != model.FileStatusAnalyzed || got.FileStatuses[b] != model.FileStatusAnalyzed {
		t.Errorf("surviving files not analyzed: %s / %s", got.FileStatuses[a], got.FileStatuses[b])
	}
	if got.Status != model.JobStatusAnalyzed {
		t.Errorf("aggregate = %s, want analyzed", got.Status)
	}
	if got.FilesFailed != 0 {
		t.Errorf("not_found counted as failure: failed=%d", got.FilesFailed)
	}
}

func TestAnalyzeFailureIsIsolated(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.txt", "fine")
	bad := writeFile(t, dir, "bad.bin", "binary")

	ai := &fakeAI{}
	an, registry, _ := newTestAnalyzer(t, ai, &fakeIndex{})

	job, _ := registry.Create(model.JobKindFolder, dir, dir, []string{good, bad})
	an.Analyze(context.Background(), job.ID, bad) // unsupported extension
	an.Analyze(context.Background(), job.ID, good)

	got, _ := registry.Get(job.ID)
	if got.FileStatuses[bad] != model.FileStatusError {
		t.Errorf("bad file status = %s, want error", got.FileStatuses[bad])
	}
	if got.FileStatuses[good] != model.FileStatusAnalyzed {
		t.Errorf("good file status = %s, want analyzed", got.FileStatuses[good])
	}
	if got.Status != model.JobStatusError {
		t.Errorf("aggregate = %s, want error", got.Status)
	}
	if got.ErrorMessage == "" {
		t.Errorf("error message not recorded")
	}
}

func TestAnalyzeExtractionErrorRecorded(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.txt", "text")

	ai := &fakeAI{ExtractError: errors.New("model unavailable")}
	an, registry, store := newTestAnalyzer(t, ai, &fakeIndex{})

	job, _ := registry.Create(model.JobKindFile, dir, "doc.txt", []string{path})
	an.Analyze(context.Background(), job.ID, path)

	got, _ := registry.Get(job.ID)
	if got.FileStatuses[path] != model.FileStatusError {
		t.Errorf("status = %s, want error", got.FileStatuses[path])
	}
	if store.Has(path) {
		t.Errorf("sidecar written despite extraction failure")
	}
}

func TestAnalyzeSkipsLLMWhenSidecarExists(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.txt", "text")

	ai := &fakeAI{}
	an, registry, store := newTestAnalyzer(t, ai, &fakeIndex{})

	job1, _ := registry.Create(model.JobKindFile, dir, "doc.txt", []string{path})
	an.Analyze(context.Background(), job1.ID, path)
	if ai.calls() != 1 {
		t.Fatalf("extract calls = %d, want 1", ai.calls())
	}

	job2, _ := registry.Create(model.JobKindFile, dir, "doc.txt", []string{path})
	an.Analyze(context.Background(), job2.ID, path)

	if ai.calls() != 1 {
		t.Errorf("re-analysis hit the LLM despite existing sidecar")
	}
	got, _ := registry.Get(job2.ID)
	if got.FileStatuses[path] != model.FileStatusAnalyzed {
		t.Errorf("status = %s, want analyzed", got.FileStatuses[path])
	}
	if !store.Has(path) {
		t.Errorf("sidecar vanished")
	}
}

func TestAnalyzeFlagsDuplicateContent(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "identical body")
	b := writeFile(t, dir, "b.txt", "identical body")

	an, registry, store := newTestAnalyzer(t, &fakeAI{}, &fakeIndex{})
	job, _ := registry.Create(model.JobKindFolder, dir, dir, []string{a, b})

	an.Analyze(context.Background(), job.ID, a)
	an.Analyze(context.Background(), job.ID, b)

	recA, _ := store.Load(a)
	recB, _ := store.Load(b)
	if recA.PossibleDuplicate {
		t.Errorf("first file flagged as duplicate")
	}
	if !recB.PossibleDuplicate {
		t.Errorf("second identical file not flagged as duplicate")
	}
}
