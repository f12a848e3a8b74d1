//go:build !integration

package web

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"ruga-file-analysis/internal/domain/model"
	"ruga-file-analysis/internal/domain/ports/adapter"
)

// --- Mock AI adapter ---

type mockAI struct {
	mu        sync.Mutex
	ChatError error
}

func (m *mockAI) ExtractMetadata(ctx context.Context, fileName, text string) (*model.MetadataRecord, error) {
	return &model.MetadataRecord{Title: fileName, Categories: []string{"Test"}}, nil
}

func (m *mockAI) GeneratePlan(ctx context.Context, files []model.FileSummary) (*model.FolderStructure, error) {
	structure := &model.FolderStructure{
		RootFolderName:        "Organized",
		Folders:               []string{"All"},
		OrganizationRationale: "flat",
	}
	for _, f := range files {
		structure.FileMoves = append(structure.FileMoves, model.FileMove{
			SourcePath:      f.Path,
			DestinationPath: "All/" + filepath.Base(f.Path),
		})
	}
	return structure, nil
}

func (m *mockAI) ChatStream(ctx context.Context, messages []adapter.Message, onToken adapter.TokenFunc) error {
	m.mu.Lock()
	chatErr := m.ChatError
	m.mu.Unlock()
	for _, tok := range []string{"hello ", "world"} {
		if err := onToken(tok); err != nil {
			return err
		}
	}
	return chatErr
}

func (m *mockAI) ListModels(ctx context.Context) ([]string, error) { return []string{"mock"}, nil }

// --- Mock vector index ---

type mockIndex struct {
	mu     sync.Mutex
	chunks map[string]model.Chunk // file id -> last chunk
	Error  error
}

func (m *mockIndex) Ingest(ctx context.Context, rec *model.MetadataRecord, text string) (int, error) {
	if m.Error != nil {
		return 0, m.Error
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.chunks == nil {
		m.chunks = map[string]model.Chunk{}
	}
	m.chunks[rec.FileID] = model.Chunk{FileID: rec.FileID, SourcePath: rec.OriginalPath, Text: text}
	return 1, nil
}

func (m *mockIndex) Search(ctx context.Context, query string, filters model.ChunkFilters, k int) ([]model.ScoredChunk, error) {
	if m.Error != nil {
		return nil, errors.New("search failed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ScoredChunk
	for _, ch := range m.chunks {
		out = append(out, model.ScoredChunk{Chunk: ch, Score: 1})
		if len(out) == k {
			break
		}
	}
	return out, nil
}

func (m *mockIndex) Remove(fileID string) {}

func (m *mockIndex) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chunks)
}
