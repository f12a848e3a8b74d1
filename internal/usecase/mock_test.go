//go:build !integration

package usecase

import (
	"context"
	"path/filepath"
	"sync"

	"ruga-file-analysis/internal/domain/model"
	"ruga-file-analysis/internal/domain/ports/adapter"
)

// --- Mock AI adapter ---

type mockAI struct {
	mu         sync.Mutex
	planInputs []model.FileSummary
	PlanError  error

	chatTokens []string // tokens ChatStream emits; default single "ok"
	ChatError  error    // returned after emitting chatTokens
}

func (m *mockAI) ExtractMetadata(ctx context.Context, fileName, text string) (*model.MetadataRecord, error) {
	return &model.MetadataRecord{Title: fileName}, nil
}

func (m *mockAI) GeneratePlan(ctx context.Context, files []model.FileSummary) (*model.FolderStructure, error) {
	if m.PlanError != nil {
		return nil, m.PlanError
	}
	m.mu.Lock()
	m.planInputs = files
	m.mu.Unlock()

	structure := &model.FolderStructure{
		RootFolderName:        "Organized_Documents",
		Folders:               []string{"ByCategory"},
		OrganizationRationale: "test plan",
	}
	for _, f := range files {
		structure.FileMoves = append(structure.FileMoves, model.FileMove{
			SourcePath:      f.Path,
			DestinationPath: "ByCategory/" + filepath.Base(f.Path),
			Reason:          "test",
		})
	}
	return structure, nil
}

func (m *mockAI) ChatStream(ctx context.Context, messages []adapter.Message, onToken adapter.TokenFunc) error {
	tokens := m.chatTokens
	if tokens == nil {
		tokens = []string{"ok"}
	}
	for _, tok := range tokens {
		if err := onToken(tok); err != nil {
			return err
		}
	}
	return m.ChatError
}

func (m *mockAI) ListModels(ctx context.Context) ([]string, error) { return []string{"mock"}, nil }

func (m *mockAI) lastPlanInputs() []model.FileSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.planInputs
}

// --- Mock vector index ---

type mockIndex struct {
	mu          sync.Mutex
	hits        []model.ScoredChunk
	lastFilters model.ChunkFilters
	SearchError error
}

func (m *mockIndex) Ingest(ctx context.Context, rec *model.MetadataRecord, text string) (int, error) {
	return 1, nil
}

func (m *mockIndex) Search(ctx context.Context, query string, filters model.ChunkFilters, k int) ([]model.ScoredChunk, error) {
	if m.SearchError != nil {
		return nil, m.SearchError
	}
	m.mu.Lock()
	m.lastFilters = filters
	m.mu.Unlock()
	if len(m.hits) > k {
		return m.hits[:k], nil
	}
	return m.hits, nil
}

func (m *mockIndex) Remove(fileID string) {}
func (m *mockIndex) Count() int           { return len(m.hits) }

func (m *mockIndex) filters() model.ChunkFilters {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastFilters
}
