package repository

import (
	"context"

	"ruga-file-analysis/internal/domain/model"
)

// VectorIndex stores embedded document chunks and answers filtered
// similarity queries.
type VectorIndex interface {
	// Ingest chunks, embeds and stores the record's text. Re-ingesting
	// the same file id replaces its prior chunks.
	Ingest(ctx context.Context, rec *model.MetadataRecord, text string) (int, error)

	// Search returns up to k chunks nearest to query among entries
	// matching all filters. An empty result is not an error.
	Search(ctx context.Context, query string, filters model.ChunkFilters, k int) ([]model.ScoredChunk, error)

	// Remove drops every chunk belonging to fileID.
	Remove(fileID string)

	// Count returns the number of stored chunks.
	Count() int
}
