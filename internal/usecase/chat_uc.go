// File: internal/usecase/chat_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"ruga-file-analysis/internal/domain"
	"ruga-file-analysis/internal/domain/model"
	"ruga-file-analysis/internal/domain/ports/adapter"
	"ruga-file-analysis/internal/domain/ports/repository"
	"ruga-file-analysis/internal/infra/metrics"
)

const chatSystemPrompt = `You are a document assistant. Answer using the
provided document excerpts when they are relevant; say so when they are
not. Cite the source path when you rely on an excerpt.`

// ChatUC answers questions about the analyzed corpus: retrieve relevant
// chunks, assemble the prompt, stream the completion token-by-token.
type ChatUC struct {
	index repository.VectorIndex
	ai    adapter.AIServiceAdapter
	topK  int
	log   *zerolog.Logger
}

func NewChatUC(index repository.VectorIndex, ai adapter.AIServiceAdapter, topK int, log *zerolog.Logger) *ChatUC {
	if topK <= 0 {
		topK = 5
	}
	return &ChatUC{index: index, ai: ai, topK: topK, log: log}
}

// Ask streams the answer through onToken. contextDocuments, when given,
// restrict retrieval to those paths (exact or prefix). A mid-stream
// failure is returned after whatever tokens already went out.
func (uc *ChatUC) Ask(ctx context.Context, question string, contextDocuments []string, history []adapter.Message, onToken adapter.TokenFunc) error {
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("question required: %w", domain.ErrInvalidArgument)
	}

	hits, err := uc.index.Search(ctx, question, model.ChunkFilters{Paths: contextDocuments}, uc.topK)
	if err != nil {
		metrics.IncChatStream("error")
		return fmt.Errorf("retrieval: %w", err)
	}

	messages := make([]adapter.Message, 0, len(history)+2)
	messages = append(messages, adapter.Message{Role: "system", Content: chatSystemPrompt})
	messages = append(messages, history...)
	messages = append(messages, adapter.Message{Role: "user", Content: buildQuestion(question, hits)})

	tokens := 0
	err = uc.ai.ChatStream(ctx, messages, func(token string) error {
		tokens++
		return onToken(token)
	})
	metrics.AddChatTokens(tokens)
	if err != nil {
		metrics.IncChatStream("error")
		return fmt.Errorf("%w: %v", domain.ErrCompletion, err)
	}
	metrics.IncChatStream("done")
	uc.log.Debug().Int("chunks", len(hits)).Int("tokens", tokens).Msg("chat answered")
	return nil
}

// buildQuestion inlines the retrieved excerpts above the question, each
// labelled with its source path.
func buildQuestion(question string, hits []model.ScoredChunk) string {
	if len(hits) == 0 {
		return question
	}
	var b strings.Builder
	b.WriteString("Document excerpts:\n\n")
	for i, h := range hits {
		fmt.Fprintf(&b, "[%d] %s\n%s\n\n", i+1, h.Chunk.SourcePath, h.Chunk.Text)
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}
