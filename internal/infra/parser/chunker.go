// File: internal/infra/parser/chunker.go
package parser

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pkoukk/tiktoken-go"
)

// ChunkConfig defines chunking parameters, all in tokens.
type ChunkConfig struct {
	// MaxTokens: upper bound per chunk
	MaxTokens int
	// Overlap: token overlap carried from the previous chunk
	Overlap int
}

// DefaultChunkConfig returns sensible defaults.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{MaxTokens: 256, Overlap: 32}
}

// Chunker splits document text into token-bounded chunks, preferring
// paragraph boundaries, then sentence boundaries.
type Chunker struct {
	enc *tiktoken.Tiktoken
	cfg ChunkConfig
}

func NewChunker(cfg ChunkConfig) (*Chunker, error) {
	if cfg.MaxTokens <= 0 {
		cfg = DefaultChunkConfig()
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.MaxTokens {
		cfg.Overlap = 0
	}
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("load encoding: %w", err)
	}
	return &Chunker{enc: enc, cfg: cfg}, nil
}

func (c *Chunker) CountTokens(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// Truncate cuts text to at most maxTokens tokens.
func (c *Chunker) Truncate(text string, maxTokens int) string {
	toks := c.enc.Encode(text, nil, nil)
	if len(toks) <= maxTokens {
		return text
	}
	return c.enc.Decode(toks[:maxTokens])
}

// Split chunks text. Short input comes back as a single chunk.
func (c *Chunker) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if c.CountTokens(text) <= c.cfg.MaxTokens {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if current.Len() > 0 && c.CountTokens(current.String()+"\n\n"+para) > c.cfg.MaxTokens {
			flush()
		}
		if c.CountTokens(para) > c.cfg.MaxTokens {
			flush()
			for _, sent := range c.splitSentences(para) {
				chunks = append(chunks, sent)
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()

	return c.applyOverlap(chunks)
}

// splitSentences packs sentences into token-bounded pieces, hard-cutting
// any single sentence that exceeds the bound on its own.
func (c *Chunker) splitSentences(text string) []string {
	var out []string
	var current strings.Builder
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			out = append(out, s)
		}
		current.Reset()
	}

	for _, sent := range sentences(text) {
		if c.CountTokens(sent) > c.cfg.MaxTokens {
			flush()
			toks := c.enc.Encode(sent, nil, nil)
			for len(toks) > 0 {
				n := c.cfg.MaxTokens
				if n > len(toks) {
					n = len(toks)
				}
				out = append(out, strings.TrimSpace(c.enc.Decode(toks[:n])))
				toks = toks[n:]
			}
			continue
		}
		if current.Len() > 0 && c.CountTokens(current.String()+" "+sent) > c.cfg.MaxTokens {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sent)
	}
	flush()
	return out
}

// applyOverlap prepends the tail tokens of each chunk to its successor.
func (c *Chunker) applyOverlap(chunks []string) []string {
	if c.cfg.Overlap == 0 || len(chunks) < 2 {
		return chunks
	}
	out := make([]string, len(chunks))
	out[0] = chunks[0]
	for i := 1; i < len(chunks); i++ {
		prev := c.enc.Encode(chunks[i-1], nil, nil)
		start := len(prev) - c.cfg.Overlap
		if start < 0 {
			start = 0
		}
		tail := strings.TrimSpace(c.enc.Decode(prev[start:]))
		if tail != "" {
			out[i] = tail + " " + chunks[i]
		} else {
			out[i] = chunks[i]
		}
	}
	return out
}

// sentences splits on terminal punctuation followed by whitespace.
func sentences(text string) []string {
	var out []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if (r == '.' || r == '!' || r == '?') &&
			(i+1 >= len(runes) || unicode.IsSpace(runes[i+1])) {
			s := strings.TrimSpace(string(runes[start : i+1]))
			if s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}
