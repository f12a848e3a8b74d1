// File: internal/infra/vector/index.go
package vector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"ruga-file-analysis/internal/domain/model"
	"ruga-file-analysis/internal/domain/ports/adapter"
	"ruga-file-analysis/internal/domain/ports/repository"
)

// Splitter cuts document text into bounded chunks; satisfied by the
// token chunker.
type Splitter interface {
	Split(text string) []string
}

// Compile-time check
var _ repository.VectorIndex = (*Index)(nil)

// Index is the in-memory retrieval index: embedded chunks with metadata
// filters and cosine similarity search. Lives and dies with the process.
type Index struct {
	mu       sync.RWMutex
	chunks   []model.Chunk
	embedder adapter.EmbeddingAdapter
	chunker  Splitter
	log      *zerolog.Logger
}

func NewIndex(embedder adapter.EmbeddingAdapter, chunker Splitter, log *zerolog.Logger) *Index {
	return &Index{embedder: embedder, chunker: chunker, log: log}
}

// Ingest splits text, embeds each chunk and stores the results under the
// record's file id. Prior chunks for the same file id are replaced.
func (ix *Index) Ingest(ctx context.Context, rec *model.MetadataRecord, text string) (int, error) {
	pieces := ix.chunker.Split(text)
	if len(pieces) == 0 {
		return 0, nil
	}

	vectors, err := ix.embedder.EmbedBatch(ctx, pieces)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(pieces) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(pieces))
	}

	fresh := make([]model.Chunk, len(pieces))
	for i, piece := range pieces {
		fresh[i] = model.Chunk{
			FileID:     rec.FileID,
			SourcePath: rec.OriginalPath,
			ChunkNo:    i,
			Text:       piece,
			Categories: rec.Categories,
			Topics:     rec.Topics,
			Tags:       rec.Tags,
			Vector:     vectors[i],
		}
	}

	ix.mu.Lock()
	ix.removeLocked(rec.FileID)
	ix.chunks = append(ix.chunks, fresh...)
	ix.mu.Unlock()

	ix.log.Debug().Str("file_id", rec.FileID).Int("chunks", len(fresh)).Msg("ingested document")
	return len(fresh), nil
}

func (ix *Index) Search(ctx context.Context, query string, filters model.ChunkFilters, k int) ([]model.ScoredChunk, error) {
	if k <= 0 {
		return nil, nil
	}
	qv, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var hits []model.ScoredChunk
	for _, ch := range ix.chunks {
		if !matches(ch, filters) {
			continue
		}
		hits = append(hits, model.ScoredChunk{Chunk: ch, Score: cosine(qv, ch.Vector)})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (ix *Index) Remove(fileID string) {
	ix.mu.Lock()
	ix.removeLocked(fileID)
	ix.mu.Unlock()
}

func (ix *Index) removeLocked(fileID string) {
	kept := ix.chunks[:0]
	for _, ch := range ix.chunks {
		if ch.FileID != fileID {
			kept = append(kept, ch)
		}
	}
	ix.chunks = kept
}

func (ix *Index) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.chunks)
}

// matches applies every set filter: category/topic/tag by
// case-insensitive containment, paths by exact match or prefix.
func matches(ch model.Chunk, f model.ChunkFilters) bool {
	if f.Category != "" && !containsFold(ch.Categories, f.Category) {
		return false
	}
	if f.Topic != "" && !containsFold(ch.Topics, f.Topic) {
		return false
	}
	if f.Tag != "" && !containsFold(ch.Tags, f.Tag) {
		return false
	}
	if len(f.Paths) > 0 {
		ok := false
		for _, p := range f.Paths {
			if ch.SourcePath == p || strings.HasPrefix(ch.SourcePath, strings.TrimSuffix(p, "/")+"/") {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) || strings.Contains(strings.ToLower(v), strings.ToLower(want)) {
			return true
		}
	}
	return false
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
