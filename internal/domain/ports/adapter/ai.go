package adapter

import (
	"context"

	"ruga-file-analysis/internal/domain/model"
)

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// TokenFunc receives one streamed completion token. Returning an error
// aborts the stream.
type TokenFunc func(token string) error

// AIServiceAdapter is the port for the language-model collaborators:
// metadata extraction, structured plan generation and chat completion.
type AIServiceAdapter interface {
	// ExtractMetadata turns extracted document text into a structured
	// record. fileName is the original relative path, used as a hint.
	ExtractMetadata(ctx context.Context, fileName, text string) (*model.MetadataRecord, error)

	// GeneratePlan requests a reorganized folder layout for the given
	// file summaries, grouped by category and academic year.
	GeneratePlan(ctx context.Context, files []model.FileSummary) (*model.FolderStructure, error)

	// ChatStream runs a chat completion and forwards tokens in arrival
	// order. Blocks until the stream finishes or fails.
	ChatStream(ctx context.Context, messages []Message, onToken TokenFunc) error

	ListModels(ctx context.Context) ([]string, error)
}
