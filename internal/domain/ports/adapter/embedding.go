package adapter

import "context"

// EmbeddingAdapter is the port for the embedding collaborator.
type EmbeddingAdapter interface {
	// Embed generates an embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts; cheaper than
	// repeated Embed calls for bulk ingestion.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Model returns the embedding model name in use.
	Model() string
}
