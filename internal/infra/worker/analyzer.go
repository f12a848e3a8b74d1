// File: internal/infra/worker/analyzer.go
package worker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ruga-file-analysis/internal/domain/model"
	"ruga-file-analysis/internal/domain/ports/adapter"
	"ruga-file-analysis/internal/domain/ports/repository"
	"ruga-file-analysis/internal/infra/logging"
)

// TextTruncator bounds the extraction prompt; satisfied by the token
// chunker.
type TextTruncator interface {
	Truncate(text string, maxTokens int) string
}

// textExts are read directly; anything else goes through the converter.
var textExts = map[string]struct{}{
	".txt": {}, ".md": {}, ".markdown": {}, ".rst": {}, ".tex": {},
	".csv": {}, ".json": {}, ".xml": {}, ".yaml": {}, ".yml": {},
	".html": {}, ".htm": {}, ".log": {},
}

// IsTextExt reports whether ext is read as plain text.
func IsTextExt(ext string) bool {
	_, ok := textExts[strings.ToLower(ext)]
	return ok
}

// Analyzer runs the per-file pipeline: extract text, ask the LLM for
// metadata, write the sidecar, feed the retrieval index, report status.
// One failed file never touches the others in the job.
type Analyzer struct {
	registry repository.JobRegistry
	store    repository.MetadataStore
	ai       adapter.AIServiceAdapter
	parser   adapter.DocumentParser // nil when no converter is configured
	chunker  TextTruncator
	index    repository.VectorIndex
	log      *zerolog.Logger

	maxInputTokens int

	mu         sync.Mutex
	seenHashes map[string]string // content hash -> first path seen
}

func NewAnalyzer(
	registry repository.JobRegistry,
	store repository.MetadataStore,
	ai adapter.AIServiceAdapter,
	docParser adapter.DocumentParser,
	chunker TextTruncator,
	index repository.VectorIndex,
	maxInputTokens int,
	log *zerolog.Logger,
) *Analyzer {
	if maxInputTokens <= 0 {
		maxInputTokens = 8000
	}
	return &Analyzer{
		registry:       registry,
		store:          store,
		ai:             ai,
		parser:         docParser,
		chunker:        chunker,
		index:          index,
		log:            log,
		maxInputTokens: maxInputTokens,
		seenHashes:     map[string]string{},
	}
}

// Task returns a pool task that analyzes one file for one job.
func (a *Analyzer) Task(jobID, path string) Task {
	return func(ctx context.Context) error {
		a.Analyze(ctx, jobID, path)
		return nil
	}
}

// Analyze runs the pipeline for a single file. Outcomes are reported
// through the job registry; the returned error is for logging only.
func (a *Analyzer) Analyze(ctx context.Context, jobID, path string) {
	ctx = logging.WithJobID(logging.WithPath(ctx, path), jobID)
	log := logging.With(ctx, a.log)

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		log.Warn().Msg("file missing, marking not_found")
		a.report(jobID, path, model.FileStatusNotFound, "")
		return
	}

	a.report(jobID, path, model.FileStatusInProcess, "")

	// A present sidecar means the file was analyzed in an earlier run.
	// Reuse the record, refresh the retrieval index, skip the LLM.
	if a.store.Has(path) {
		if rec, err := a.store.Load(path); err == nil {
			a.reingest(ctx, log, rec, path)
			a.report(jobID, path, model.FileStatusAnalyzed, "")
			return
		}
		log.Warn().Msg("unreadable sidecar, re-analyzing")
	}

	text, err := a.extractText(ctx, path)
	if err != nil {
		log.Error().Err(err).Msg("text extraction failed")
		a.report(jobID, path, model.FileStatusError, err.Error())
		return
	}
	prompt := a.chunker.Truncate(text, a.maxInputTokens)

	rec, err := a.ai.ExtractMetadata(ctx, filepath.Base(path), prompt)
	if err != nil {
		log.Error().Err(err).Msg("metadata extraction failed")
		a.report(jobID, path, model.FileStatusError, err.Error())
		return
	}

	hash, err := hashFile(path)
	if err != nil {
		log.Error().Err(err).Msg("hashing failed")
		a.report(jobID, path, model.FileStatusError, err.Error())
		return
	}

	rec.FileID = uuid.NewString()
	rec.OriginalPath = path
	rec.FileType = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	rec.ContentHash = hash
	rec.LastModifiedDate = info.ModTime()
	rec.AnalysisDate = time.Now()
	rec.PossibleDuplicate = a.markHash(hash, path)

	chunks, err := a.index.Ingest(ctx, rec, text)
	if err != nil {
		// Retrieval is best-effort; the sidecar is still worth writing.
		log.Warn().Err(err).Msg("index ingest failed")
	}
	rec.ChunkCount = chunks

	if err := a.store.Save(path, rec); err != nil {
		log.Error().Err(err).Msg("sidecar write failed")
		a.report(jobID, path, model.FileStatusError, err.Error())
		return
	}

	a.report(jobID, path, model.FileStatusAnalyzed, "")
	log.Info().Str("file_id", rec.FileID).Int("chunks", chunks).Msg("file analyzed")
}

func (a *Analyzer) reingest(ctx context.Context, log *zerolog.Logger, rec *model.MetadataRecord, path string) {
	a.markHash(rec.ContentHash, path)
	text, err := a.extractText(ctx, path)
	if err != nil {
		log.Warn().Err(err).Msg("skipping reingest, extraction failed")
		return
	}
	if _, err := a.index.Ingest(ctx, rec, text); err != nil {
		log.Warn().Err(err).Msg("reingest failed")
	}
}

// markHash records a content hash and reports whether it was seen before
// under a different path.
func (a *Analyzer) markHash(hash, path string) bool {
	if hash == "" {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	first, seen := a.seenHashes[hash]
	if !seen {
		a.seenHashes[hash] = path
		return false
	}
	return first != path
}

func (a *Analyzer) extractText(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := textExts[ext]; ok {
		b, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("file vanished: %w", err)
			}
			return "", fmt.Errorf("read file: %w", err)
		}
		return string(b), nil
	}
	if a.parser != nil && a.parser.Supports(ext) {
		return a.parser.Extract(ctx, path)
	}
	return "", fmt.Errorf("unsupported file type %q", ext)
}

func (a *Analyzer) report(jobID, path string, status model.FileStatus, errMsg string) {
	if err := a.registry.UpdateFileStatus(jobID, path, status, errMsg); err != nil {
		a.log.Error().Err(err).Str("job_id", jobID).Str("path", path).Msg("status update failed")
	}
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
