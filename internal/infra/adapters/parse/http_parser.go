// File: internal/infra/adapters/parse/http_parser.go
package parse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ruga-file-analysis/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.DocumentParser = (*HTTPParser)(nil)

// HTTPParser extracts text from binary document formats through an
// external converter service. The service accepts a multipart upload on
// POST /convert and returns {"text": "..."}.
type HTTPParser struct {
	base   string
	client *http.Client
}

var binaryExts = map[string]struct{}{
	".pdf": {}, ".doc": {}, ".docx": {}, ".ppt": {}, ".pptx": {},
	".odt": {}, ".odp": {}, ".rtf": {},
}

func NewHTTPParser(baseURL string) (*HTTPParser, error) {
	if baseURL == "" {
		return nil, errors.New("parser base url empty")
	}
	return &HTTPParser{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (p *HTTPParser) Supports(ext string) bool {
	_, ok := binaryExts[strings.ToLower(ext)]
	return ok
}

func (p *HTTPParser) Extract(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.base+"/convert", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("converter request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("converter http %d", resp.StatusCode)
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("converter response: %w", err)
	}
	if payload.Text == "" {
		return "", errors.New("converter returned no text")
	}
	return payload.Text, nil
}
