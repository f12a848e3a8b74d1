// File: internal/infra/adapters/ai/gemini_adapter.go
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"ruga-file-analysis/internal/domain/model"
	"ruga-file-analysis/internal/domain/ports/adapter"
	"ruga-file-analysis/internal/infra/metrics"
)

var _ adapter.AIServiceAdapter = (*GeminiAdapter)(nil)

// GeminiAdapter implements the LLM collaborators using the official SDK.
// The SDK surface used here has no incremental token API, so ChatStream
// completes single-shot and forwards the reply as one token.
type GeminiAdapter struct {
	client       *genai.Client
	defaultModel string
	maxOut       int
}

func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, defaultModel string, maxOut int) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c, defaultModel: defaultModel, maxOut: maxOut}, nil
}

func (g *GeminiAdapter) ListModels(ctx context.Context) ([]string, error) {
	models := g.client.Models.All(ctx)
	var out []string
	for m := range models {
		if m.Name != "" {
			out = append(out, m.Name)
		}
	}
	if len(out) == 0 && g.defaultModel != "" {
		out = []string{g.defaultModel}
	}
	return out, nil
}

func (g *GeminiAdapter) ExtractMetadata(ctx context.Context, fileName, text string) (*model.MetadataRecord, error) {
	user := fmt.Sprintf("File: %s\n\nDocument text:\n%s", fileName, text)
	raw, err := g.jsonGenerate(ctx, "extract", extractSystemPrompt, user)
	if err != nil {
		return nil, err
	}

	var meta llmMetadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, fmt.Errorf("parse extraction response: %w", err)
	}

	rec := &model.MetadataRecord{
		Title:             meta.Title,
		SuggestedFilename: meta.SuggestedFilename,
		Categories:        emptyToNil(meta.Categories),
		Topics:            emptyToNil(meta.Topics),
		Tags:              emptyToNil(meta.Tags),
		Summary:           meta.Summary,
		LLMModel:          g.defaultModel,
		ExtractedAt:       time.Now(),
	}
	if t, err := time.Parse("2006-01-02", meta.CreationDate); err == nil {
		rec.CreationDate = &t
	}
	for _, au := range meta.Authors {
		if au.Name != "" {
			rec.Authors = append(rec.Authors, model.Author{Name: au.Name, ORCID: au.ORCID})
		}
	}
	for _, term := range meta.GlossaryTerms {
		if term.Term != "" {
			rec.GlossaryTerms = append(rec.GlossaryTerms, model.GlossaryTerm{
				Term: term.Term, Definition: term.Definition, Source: "llm_extracted",
			})
		}
	}
	return rec, nil
}

func (g *GeminiAdapter) GeneratePlan(ctx context.Context, files []model.FileSummary) (*model.FolderStructure, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Suggest an organized folder structure for these %d files.\n\n", len(files))
	for i, f := range files {
		fmt.Fprintf(&b, "%d. %s (title=%q categories=%v topics=%v created=%s)\n",
			i+1, f.Path, f.Title, f.Categories, f.Topics, f.CreationDate)
	}

	raw, err := g.jsonGenerate(ctx, "plan", planSystemPrompt, b.String())
	if err != nil {
		return nil, err
	}

	var structure model.FolderStructure
	if err := json.Unmarshal([]byte(raw), &structure); err != nil {
		return nil, fmt.Errorf("parse plan response: %w", err)
	}
	if structure.RootFolderName == "" {
		structure.RootFolderName = "Organized_Documents"
	}
	return &structure, nil
}

func (g *GeminiAdapter) ChatStream(ctx context.Context, messages []adapter.Message, onToken adapter.TokenFunc) error {
	if len(messages) == 0 {
		return errors.New("gemini: no messages")
	}
	history := toGenAIHistory(messages[:len(messages)-1])

	chat, err := g.client.Chats.Create(
		ctx,
		g.defaultModel,
		&genai.GenerateContentConfig{
			MaxOutputTokens: int32(g.maxOut),
		},
		history,
	)
	if err != nil {
		return err
	}

	last := messages[len(messages)-1]
	if strings.ToLower(last.Role) != "user" {
		return errors.New("gemini: last message must be from user")
	}

	start := time.Now()
	resp, err := chat.SendMessage(ctx, genai.Part{Text: last.Content})
	metrics.ObserveAICall("chat", "gemini", int(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		return err
	}
	text := firstText(resp)
	if text == "" {
		return errors.New("gemini: empty completion")
	}
	return onToken(text)
}

// --- internal ---

func (g *GeminiAdapter) jsonGenerate(ctx context.Context, op, system, user string) (string, error) {
	start := time.Now()
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.defaultModel,
		[]*genai.Content{{Role: genai.RoleUser, Parts: []*genai.Part{{Text: user}}}},
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
			ResponseMIMEType:  "application/json",
			MaxOutputTokens:   int32(g.maxOut),
		},
	)
	metrics.ObserveAICall(op, "gemini", int(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		return "", err
	}
	text := firstText(resp)
	if text == "" {
		return "", errors.New("gemini: empty response")
	}
	return text, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			return part.Text
		}
	}
	return ""
}

func toGenAIHistory(msgs []adapter.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := genai.RoleUser
		switch strings.ToLower(m.Role) {
		case "assistant", "model":
			role = genai.RoleModel
		case "system":
			// Gemini has no system role in history; fold into a user turn.
			role = genai.RoleUser
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return out
}
