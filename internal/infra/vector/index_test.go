//go:build !integration

package vector

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"ruga-file-analysis/internal/domain/model"
)

// fakeEmbedder maps known words onto axis-aligned vectors so similarity
// is predictable: identical word sets are identical vectors.
type fakeEmbedder struct{}

var axes = []string{"cats", "dogs", "birds", "fish"}

func (fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	v := make([]float32, len(axes))
	low := strings.ToLower(text)
	for i, w := range axes {
		if strings.Contains(low, w) {
			v[i] = 1
		}
	}
	return v, nil
}

func (f fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = f.Embed(ctx, t)
	}
	return out, nil
}

func (fakeEmbedder) Model() string { return "fake" }

// paragraphSplitter stands in for the token chunker.
type paragraphSplitter struct{}

func (paragraphSplitter) Split(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func newTestIndex() *Index {
	log := zerolog.Nop()
	return NewIndex(fakeEmbedder{}, paragraphSplitter{}, &log)
}

func rec(fileID, path string, categories, topics, tags []string) *model.MetadataRecord {
	return &model.MetadataRecord{
		FileID:       fileID,
		OriginalPath: path,
		Categories:   categories,
		Topics:       topics,
		Tags:         tags,
	}
}

func TestIngestAndSearch(t *testing.T) {
	ix := newTestIndex()
	ctx := context.Background()

	n, err := ix.Ingest(ctx, rec("f1", "/docs/cats.txt", []string{"Pets"}, nil, nil),
		"all about cats\n\nmore about cats")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if n != 2 {
		t.Fatalf("chunks = %d, want 2", n)
	}
	if _, err := ix.Ingest(ctx, rec("f2", "/docs/dogs.txt", []string{"Pets"}, nil, nil),
		"all about dogs"); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	hits, err := ix.Search(ctx, "tell me about cats", model.ChunkFilters{}, 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].FileID != "f1" {
		t.Fatalf("top hit = %+v, want f1", hits)
	}
}

func TestReingestReplacesChunks(t *testing.T) {
	ix := newTestIndex()
	ctx := context.Background()

	_, _ = ix.Ingest(ctx, rec("f1", "/docs/a.txt", nil, nil, nil), "one\n\ntwo\n\nthree")
	if ix.Count() != 3 {
		t.Fatalf("count = %d, want 3", ix.Count())
	}
	_, _ = ix.Ingest(ctx, rec("f1", "/docs/a.txt", nil, nil, nil), "single chunk")
	if ix.Count() != 1 {
		t.Errorf("count after re-ingest = %d, want 1", ix.Count())
	}
}

func TestSearchFilters(t *testing.T) {
	ix := newTestIndex()
	ctx := context.Background()

	_, _ = ix.Ingest(ctx, rec("f1", "/docs/pets/cats.txt", []string{"Pets"}, []string{"felines"}, []string{"cute"}), "cats")
	_, _ = ix.Ingest(ctx, rec("f2", "/docs/work/report.txt", []string{"Work"}, []string{"finance"}, nil), "dogs")

	hits, _ := ix.Search(ctx, "cats dogs", model.ChunkFilters{Category: "pets"}, 10)
	if len(hits) != 1 || hits[0].FileID != "f1" {
		t.Errorf("category filter failed: %+v", hits)
	}

	hits, _ = ix.Search(ctx, "cats dogs", model.ChunkFilters{Topic: "finance"}, 10)
	if len(hits) != 1 || hits[0].FileID != "f2" {
		t.Errorf("topic filter failed: %+v", hits)
	}

	hits, _ = ix.Search(ctx, "cats dogs", model.ChunkFilters{Paths: []string{"/docs/pets"}}, 10)
	if len(hits) != 1 || hits[0].FileID != "f1" {
		t.Errorf("path prefix filter failed: %+v", hits)
	}

	hits, _ = ix.Search(ctx, "cats dogs", model.ChunkFilters{Paths: []string{"/docs/work/report.txt"}}, 10)
	if len(hits) != 1 || hits[0].FileID != "f2" {
		t.Errorf("exact path filter failed: %+v", hits)
	}

	hits, _ = ix.Search(ctx, "cats", model.ChunkFilters{Tag: "nope"}, 10)
	if len(hits) != 0 {
		t.Errorf("non-matching tag returned %d hits", len(hits))
	}
}

func TestSearchSmallerThanK(t *testing.T) {
	ix := newTestIndex()
	ctx := context.Background()

	hits, err := ix.Search(ctx, "anything", model.ChunkFilters{}, 5)
	if err != nil {
		t.Fatalf("search on empty index: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("empty index returned %d hits", len(hits))
	}

	_, _ = ix.Ingest(ctx, rec("f1", "/docs/a.txt", nil, nil, nil), "cats")
	hits, _ = ix.Search(ctx, "cats", model.ChunkFilters{}, 5)
	if len(hits) != 1 {
		t.Errorf("got %d hits, want 1", len(hits))
	}
}

func TestRemove(t *testing.T) {
	ix := newTestIndex()
	ctx := context.Background()

	_, _ = ix.Ingest(ctx, rec("f1", "/docs/a.txt", nil, nil, nil), "cats")
	_, _ = ix.Ingest(ctx, rec("f2", "/docs/b.txt", nil, nil, nil), "dogs")

	ix.Remove("f1")
	if ix.Count() != 1 {
		t.Fatalf("count = %d, want 1", ix.Count())
	}
	hits, _ := ix.Search(ctx, "cats", model.ChunkFilters{}, 10)
	for _, h := range hits {
		if h.FileID == "f1" {
			t.Errorf("removed file still searchable")
		}
	}
}
