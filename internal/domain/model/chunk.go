package model

// Chunk is one bounded slice of a document's text held by the retrieval
// index together with its embedding.
type Chunk struct {
	FileID     string
	SourcePath string
	ChunkNo    int
	Text       string
	Categories []string
	Topics     []string
	Tags       []string
	Vector     []float32
}

// ChunkFilters narrows a similarity search. Zero-value fields match
// everything; set fields must all match.
type ChunkFilters struct {
	Category string
	Topic    string
	Tag      string
	Paths    []string
}

// ScoredChunk is a search hit with its cosine similarity.
type ScoredChunk struct {
	Chunk
	Score float32
}
