// File: internal/infra/adapters/ai/noop_ai.go
package ai

import (
	"context"
	"fmt"
	"hash/fnv"
	"path/filepath"
	"strings"
	"time"

	"ruga-file-analysis/internal/domain/model"
	"ruga-file-analysis/internal/domain/ports/adapter"
)

var (
	_ adapter.AIServiceAdapter = (*NoOpAdapter)(nil)
	_ adapter.EmbeddingAdapter = (*NoOpAdapter)(nil)
)

// NoOpAdapter is a deterministic stand-in for dev mode and tests: no
// network, stable outputs derived from the inputs.
type NoOpAdapter struct{}

func NewNoOpAdapter() *NoOpAdapter { return &NoOpAdapter{} }

func (n *NoOpAdapter) ListModels(ctx context.Context) ([]string, error) {
	return []string{"noop"}, nil
}

func (n *NoOpAdapter) ExtractMetadata(ctx context.Context, fileName, text string) (*model.MetadataRecord, error) {
	base := filepath.Base(fileName)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	summary := text
	if len(summary) > 200 {
		summary = summary[:200]
	}
	return &model.MetadataRecord{
		Title:             stem,
		SuggestedFilename: stem,
		Categories:        []string{"Uncategorized"},
		Summary:           strings.TrimSpace(summary),
		LLMModel:          "noop",
		ExtractedAt:       time.Now(),
	}, nil
}

func (n *NoOpAdapter) GeneratePlan(ctx context.Context, files []model.FileSummary) (*model.FolderStructure, error) {
	// Everything under one folder per first category, flat otherwise.
	structure := &model.FolderStructure{
		RootFolderName:        "Organized_Documents",
		OrganizationRationale: "Grouped by category (offline placeholder plan).",
	}
	seen := map[string]bool{}
	for _, f := range files {
		folder := "Uncategorized"
		if len(f.Categories) > 0 && f.Categories[0] != "" {
			folder = f.Categories[0]
		}
		if !seen[folder] {
			seen[folder] = true
			structure.Folders = append(structure.Folders, folder)
		}
		structure.FileMoves = append(structure.FileMoves, model.FileMove{
			SourcePath:      f.Path,
			DestinationPath: folder + "/" + filepath.Base(f.Path),
			Reason:          "category match",
		})
	}
	return structure, nil
}

func (n *NoOpAdapter) ChatStream(ctx context.Context, messages []adapter.Message, onToken adapter.TokenFunc) error {
	last := ""
	if len(messages) > 0 {
		last = messages[len(messages)-1].Content
	}
	for _, tok := range []string{"echo: ", last} {
		if err := onToken(tok); err != nil {
			return err
		}
	}
	return nil
}

const noopDims = 64

func (n *NoOpAdapter) Embed(ctx context.Context, text string) ([]float32, error) {
	// Bag-of-words hashing keeps similar texts close enough for tests.
	vec := make([]float32, noopDims)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(w))
		vec[h.Sum32()%noopDims]++
	}
	return vec, nil
}

func (n *NoOpAdapter) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := n.Embed(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("embed %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func (n *NoOpAdapter) Model() string { return "noop" }
