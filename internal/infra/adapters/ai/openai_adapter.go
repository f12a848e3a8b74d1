// File: internal/infra/adapters/ai/openai_adapter.go
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"ruga-file-analysis/internal/domain/model"
	"ruga-file-analysis/internal/domain/ports/adapter"
	"ruga-file-analysis/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the ports
var (
	_ adapter.AIServiceAdapter = (*OpenAIAdapter)(nil)
	_ adapter.EmbeddingAdapter = (*OpenAIAdapter)(nil)
)

// OpenAIAdapter implements the LLM and embedding collaborators on the
// official SDK: chat completions with JSON responses for extraction and
// planning, token streaming for chat, the embeddings API for retrieval.
type OpenAIAdapter struct {
	client   openai.Client
	model    string
	embModel string
	maxOut   int
}

func NewOpenAIAdapter(apiKey, chatModel, embeddingModel string, maxOutputTokens int) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if chatModel == "" {
		chatModel = "gpt-4o-mini"
	}
	if embeddingModel == "" {
		embeddingModel = "text-embedding-3-small"
	}
	if maxOutputTokens <= 0 {
		maxOutputTokens = 2048
	}
	return &OpenAIAdapter{
		client:   openai.NewClient(option.WithAPIKey(apiKey)),
		model:    chatModel,
		embModel: embeddingModel,
		maxOut:   maxOutputTokens,
	}, nil
}

func (a *OpenAIAdapter) ListModels(ctx context.Context) ([]string, error) {
	return []string{a.model}, nil
}

const extractSystemPrompt = `You extract structured metadata from document text.
Respond with a single JSON object using exactly these keys:
"title" (string), "suggested_filename" (string, no extension),
"categories" (array of strings), "creation_date" (string YYYY-MM-DD or null),
"authors" (array of {"name": string, "orcid": string or null}),
"topics" (array of strings), "tags" (array of strings),
"summary" (string, at most 5 sentences),
"glossary_terms" (array of {"term": string, "definition": string}).
Use the document text only; leave fields empty when the text gives no answer.`

// llmMetadata is the wire shape of the extraction response.
type llmMetadata struct {
	Title             string   `json:"title"`
	SuggestedFilename string   `json:"suggested_filename"`
	Categories        []string `json:"categories"`
	CreationDate      string   `json:"creation_date"`
	Authors           []struct {
		Name  string `json:"name"`
		ORCID string `json:"orcid"`
	} `json:"authors"`
	Topics        []string `json:"topics"`
	Tags          []string `json:"tags"`
	Summary       string   `json:"summary"`
	GlossaryTerms []struct {
		Term       string `json:"term"`
		Definition string `json:"definition"`
	} `json:"glossary_terms"`
}

func (a *OpenAIAdapter) ExtractMetadata(ctx context.Context, fileName, text string) (*model.MetadataRecord, error) {
	user := fmt.Sprintf("File: %s\n\nDocument text:\n%s", fileName, text)

	raw, err := a.jsonCompletion(ctx, "extract", extractSystemPrompt, user)
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
		LLMModel:          a.model,
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
	for _, g := range meta.GlossaryTerms {
		if g.Term != "" {
			rec.GlossaryTerms = append(rec.GlossaryTerms, model.GlossaryTerm{
				Term: g.Term, Definition: g.Definition, Source: "llm_extracted",
			})
		}
	}
	return rec, nil
}

const planSystemPrompt = `You organize analyzed documents into a clear folder layout.
Group files by category first, then by academic year derived from creation dates.
Use descriptive folder names, avoid nesting deeper than 3-4 levels and keep
related files together. Every input file must appear in exactly one move.
Respond with a single JSON object using exactly these keys:
"root_folder_name" (string),
"folders" (array of relative folder paths, e.g. "Education/2023-2024"),
"file_moves" (array of {"source_path": string, "destination_path": string, "reason": string}),
"organization_rationale" (string).`

func (a *OpenAIAdapter) GeneratePlan(ctx context.Context, files []model.FileSummary) (*model.FolderStructure, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Suggest an organized folder structure for these %d files.\n\n", len(files))
	for i, f := range files {
		fmt.Fprintf(&b, "%d. %s\n", i+1, f.Path)
		if f.Title != "" {
			fmt.Fprintf(&b, "   Title: %s\n", f.Title)
		}
		if len(f.Categories) > 0 {
			fmt.Fprintf(&b, "   Categories: %s\n", strings.Join(f.Categories, ", "))
		}
		if len(f.Topics) > 0 {
			fmt.Fprintf(&b, "   Topics: %s\n", strings.Join(f.Topics, ", "))
		}
		if len(f.Tags) > 0 {
			fmt.Fprintf(&b, "   Tags: %s\n", strings.Join(f.Tags, ", "))
		}
		if f.Summary != "" {
			fmt.Fprintf(&b, "   Summary: %s\n", f.Summary)
		}
		if len(f.Authors) > 0 {
			fmt.Fprintf(&b, "   Authors: %s\n", strings.Join(f.Authors, ", "))
		}
		if f.CreationDate != "" {
			fmt.Fprintf(&b, "   Creation Date: %s\n", f.CreationDate)
		}
		if f.LastModifiedDate != "" {
			fmt.Fprintf(&b, "   Last Modified: %s\n", f.LastModifiedDate)
		}
		b.WriteString("\n")
	}

	raw, err := a.jsonCompletion(ctx, "plan", planSystemPrompt, b.String())
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

func (a *OpenAIAdapter) ChatStream(ctx context.Context, messages []adapter.Message, onToken adapter.TokenFunc) error {
	params := openai.ChatCompletionNewParams{
		Model:     shared.ChatModel(a.model),
		Messages:  toOpenAIMessages(messages),
		MaxTokens: openai.Int(int64(a.maxOut)),
	}

	start := time.Now()
	stream := a.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			if err := onToken(delta); err != nil {
				metrics.ObserveAICall("chat", "openai", int(time.Since(start).Milliseconds()), false)
				return err
			}
		}
	}
	err := stream.Err()
	metrics.ObserveAICall("chat", "openai", int(time.Since(start).Milliseconds()), err == nil)
	return err
}

func (a *OpenAIAdapter) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := a.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, errors.New("no embedding returned")
	}
	return vecs[0], nil
}

func (a *OpenAIAdapter) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	start := time.Now()
	resp, err := a.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(a.embModel),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	})
	metrics.ObserveAICall("embed", "openai", int(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		out[i] = vec
	}
	return out, nil
}

func (a *OpenAIAdapter) Model() string { return a.embModel }

// jsonCompletion runs a single completion constrained to a JSON object
// and returns the raw response body.
func (a *OpenAIAdapter) jsonCompletion(ctx context.Context, op, system, user string) (string, error) {
	start := time.Now()
	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
		MaxTokens: openai.Int(int64(a.maxOut)),
	})
	metrics.ObserveAICall(op, "openai", int(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		return "", err
	}
	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, nil
		}
	}
	return "", errors.New("no choice content")
}

func toOpenAIMessages(messages []adapter.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch strings.ToLower(m.Role) {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func emptyToNil(ss []string) []string {
	out := ss[:0]
	for _, s := range ss {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
